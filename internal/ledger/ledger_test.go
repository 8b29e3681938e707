package ledger

import (
	"testing"
	"time"

	"paisa/internal/models"
	"paisa/internal/testutil"
)

func TestDelta(t *testing.T) {
	cases := []struct {
		name        string
		accountType models.AccountType
		effect      models.TransactionType
		amount      int64
		want        int64
	}{
		{"income_on_asset", models.AccountTypeAsset, models.TransactionTypeIncome, 1000, 1000},
		{"expense_on_asset", models.AccountTypeAsset, models.TransactionTypeExpense, 1000, -1000},
		{"income_on_liability", models.AccountTypeLiability, models.TransactionTypeIncome, 1000, -1000},
		{"expense_on_liability", models.AccountTypeLiability, models.TransactionTypeExpense, 1000, 1000},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Delta(tc.accountType, tc.effect, tc.amount)
			testutil.AssertNoError(t, err)
			if got != tc.want {
				t.Errorf("expected delta %d, got %d", tc.want, got)
			}
		})
	}

	t.Run("transfer_rejected", func(t *testing.T) {
		_, err := Delta(models.AccountTypeAsset, models.TransactionTypeTransfer, 1000)
		testutil.AssertAppError(t, err, "INVALID_TRANSACTION_TYPE")
	})
}

func TestApplyReverseRoundTrip(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	account := testutil.CreateTestAccount(t, db, models.AccountCategoryBank, 100000)

	testutil.AssertNoError(t, Apply(db, account, models.TransactionTypeExpense, 25000))
	if account.CurrentBalance != 75000 {
		t.Fatalf("expected balance 75000 after expense, got %d", account.CurrentBalance)
	}

	testutil.AssertNoError(t, Reverse(db, account, models.TransactionTypeExpense, 25000))
	if account.CurrentBalance != 100000 {
		t.Fatalf("expected balance restored to 100000, got %d", account.CurrentBalance)
	}

	var stored models.Account
	testutil.AssertNoError(t, db.Where("id = ?", account.ID).First(&stored).Error)
	if stored.CurrentBalance != 100000 {
		t.Errorf("expected persisted balance 100000, got %d", stored.CurrentBalance)
	}
}

func TestApplyTransaction_Transfer(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	bank := testutil.CreateTestAccount(t, db, models.AccountCategoryBank, 100000)
	card := testutil.CreateTestAccount(t, db, models.AccountCategoryCreditCard, 30000)

	txn := &models.Transaction{
		Date:           time.Now(),
		Amount:         20000,
		Type:           models.TransactionTypeTransfer,
		AccountID:      bank.ID,
		PayeeAccountID: &card.ID,
	}
	testutil.AssertNoError(t, db.Create(txn).Error)
	testutil.AssertNoError(t, ApplyTransaction(db, txn))

	var gotBank, gotCard models.Account
	testutil.AssertNoError(t, db.Where("id = ?", bank.ID).First(&gotBank).Error)
	testutil.AssertNoError(t, db.Where("id = ?", card.ID).First(&gotCard).Error)

	if gotBank.CurrentBalance != 80000 {
		t.Errorf("expected source balance 80000, got %d", gotBank.CurrentBalance)
	}
	// Paying a credit card reduces what is owed.
	if gotCard.CurrentBalance != 10000 {
		t.Errorf("expected card balance 10000, got %d", gotCard.CurrentBalance)
	}

	testutil.AssertNoError(t, ReverseTransaction(db, txn))
	testutil.AssertNoError(t, db.Where("id = ?", card.ID).First(&gotCard).Error)
	if gotCard.CurrentBalance != 30000 {
		t.Errorf("expected card balance restored to 30000, got %d", gotCard.CurrentBalance)
	}
}

func TestRecomputeBalances(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	account := testutil.CreateTestAccount(t, db, models.AccountCategoryBank, 50000)
	testutil.CreateTestTransaction(t, db, account.ID, models.TransactionTypeExpense, 10000, time.Now())
	testutil.CreateTestTransaction(t, db, account.ID, models.TransactionTypeIncome, 5000, time.Now())

	// Corrupt the denormalized balance.
	testutil.AssertNoError(t, db.Model(account).Update("current_balance", 999999).Error)

	testutil.AssertNoError(t, RecomputeBalances(db))

	var repaired models.Account
	testutil.AssertNoError(t, db.Where("id = ?", account.ID).First(&repaired).Error)
	if repaired.CurrentBalance != 45000 {
		t.Errorf("expected recomputed balance 45000, got %d", repaired.CurrentBalance)
	}
}

func TestRecomputeBalances_LoanRepayments(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	account := testutil.CreateTestAccount(t, db, models.AccountCategoryLoanReceivable, 100000)
	loan := &models.Loan{
		PersonName: "Asha",
		Type:       models.LoanTypeGiven,
		Principal:  100000,
		StartDate:  time.Now(),
		AccountID:  account.ID,
	}
	testutil.AssertNoError(t, db.Create(loan).Error)
	testutil.AssertNoError(t, db.Create(&models.LoanRepayment{
		LoanID: loan.ID,
		Amount: 40000,
		Date:   time.Now(),
	}).Error)
	// Interest payments must not affect the replayed balance.
	testutil.AssertNoError(t, db.Create(&models.LoanRepayment{
		LoanID:     loan.ID,
		Amount:     5000,
		Date:       time.Now(),
		IsInterest: true,
	}).Error)

	testutil.AssertNoError(t, db.Model(account).Update("current_balance", 0).Error)
	testutil.AssertNoError(t, RecomputeBalances(db))

	var repaired models.Account
	testutil.AssertNoError(t, db.Where("id = ?", account.ID).First(&repaired).Error)
	if repaired.CurrentBalance != 60000 {
		t.Errorf("expected recomputed balance 60000, got %d", repaired.CurrentBalance)
	}
}
