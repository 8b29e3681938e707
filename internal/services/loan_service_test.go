package services

import (
	"testing"
	"time"

	"paisa/internal/models"
	"paisa/internal/testutil"
)

func TestCreateLoan(t *testing.T) {
	t.Run("given_creates_receivable_account", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewLoanService(db)

		loan, err := svc.CreateLoan(LoanInput{
			PersonName: "Ravi",
			Type:       models.LoanTypeGiven,
			Principal:  500000,
			StartDate:  time.Now(),
		})
		testutil.AssertNoError(t, err)

		if loan.Account == nil {
			t.Fatal("expected linked account to be preloaded")
		}
		if loan.Account.Category != models.AccountCategoryLoanReceivable {
			t.Errorf("expected loan_receivable account, got %s", loan.Account.Category)
		}
		if loan.Account.Type != models.AccountTypeAsset {
			t.Errorf("expected asset account, got %s", loan.Account.Type)
		}
		if loan.Account.CurrentBalance != 500000 {
			t.Errorf("expected account balance 500000, got %d", loan.Account.CurrentBalance)
		}
		if loan.Account.Name != "Loan to Ravi" {
			t.Errorf("unexpected account name %q", loan.Account.Name)
		}
	})

	t.Run("taken_creates_payable_account", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewLoanService(db)

		loan, err := svc.CreateLoan(LoanInput{
			PersonName: "Meera",
			Type:       models.LoanTypeTaken,
			Principal:  200000,
			StartDate:  time.Now(),
		})
		testutil.AssertNoError(t, err)

		if loan.Account.Category != models.AccountCategoryLoanPayable {
			t.Errorf("expected loan_payable account, got %s", loan.Account.Category)
		}
		if loan.Account.Type != models.AccountTypeLiability {
			t.Errorf("expected liability account, got %s", loan.Account.Type)
		}
		if loan.Account.Name != "Loan from Meera" {
			t.Errorf("unexpected account name %q", loan.Account.Name)
		}
	})

	t.Run("rejects_zero_principal", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewLoanService(db)

		_, err := svc.CreateLoan(LoanInput{PersonName: "X", Type: models.LoanTypeGiven, Principal: 0})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestRecordRepayment(t *testing.T) {
	t.Run("principal_reduces_outstanding_and_balance", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewLoanService(db)

		loan, err := svc.CreateLoan(LoanInput{
			PersonName: "Ravi", Type: models.LoanTypeGiven, Principal: 500000, StartDate: time.Now(),
		})
		testutil.AssertNoError(t, err)

		_, err = svc.RecordRepayment(loan.ID, 200000, time.Now(), false, "")
		testutil.AssertNoError(t, err)

		updated, err := svc.GetLoanByID(loan.ID)
		testutil.AssertNoError(t, err)
		if updated.TotalRepaid != 200000 {
			t.Errorf("expected total repaid 200000, got %d", updated.TotalRepaid)
		}
		if updated.Outstanding() != 300000 {
			t.Errorf("expected outstanding 300000, got %d", updated.Outstanding())
		}
		if updated.Account.CurrentBalance != 300000 {
			t.Errorf("expected account balance 300000, got %d", updated.Account.CurrentBalance)
		}
	})

	t.Run("interest_leaves_principal_untouched", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewLoanService(db)

		loan, err := svc.CreateLoan(LoanInput{
			PersonName: "Ravi", Type: models.LoanTypeGiven, Principal: 500000, StartDate: time.Now(),
		})
		testutil.AssertNoError(t, err)

		_, err = svc.RecordRepayment(loan.ID, 10000, time.Now(), true, "")
		testutil.AssertNoError(t, err)

		updated, err := svc.GetLoanByID(loan.ID)
		testutil.AssertNoError(t, err)
		if updated.InterestPaid != 10000 {
			t.Errorf("expected interest paid 10000, got %d", updated.InterestPaid)
		}
		if updated.TotalRepaid != 0 {
			t.Errorf("expected total repaid 0, got %d", updated.TotalRepaid)
		}
		if updated.Account.CurrentBalance != 500000 {
			t.Errorf("expected account balance unchanged at 500000, got %d", updated.Account.CurrentBalance)
		}
	})

	t.Run("payable_repayment_reduces_owed", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewLoanService(db)

		loan, err := svc.CreateLoan(LoanInput{
			PersonName: "Meera", Type: models.LoanTypeTaken, Principal: 200000, StartDate: time.Now(),
		})
		testutil.AssertNoError(t, err)

		_, err = svc.RecordRepayment(loan.ID, 50000, time.Now(), false, "")
		testutil.AssertNoError(t, err)

		updated, err := svc.GetLoanByID(loan.ID)
		testutil.AssertNoError(t, err)
		if updated.Account.CurrentBalance != 150000 {
			t.Errorf("expected owed balance 150000, got %d", updated.Account.CurrentBalance)
		}
	})
}

func TestAccruedInterest(t *testing.T) {
	setup := func(t *testing.T) (*loanService, *models.Loan, func()) {
		db := testutil.SetupTestDB(t)
		svc := NewLoanService(db).(*loanService)
		loan, err := svc.CreateLoan(LoanInput{
			PersonName:   "Ravi",
			Type:         models.LoanTypeGiven,
			Principal:    1000000, // Rs 10,000
			InterestRate: 12,
			StartDate:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		})
		testutil.AssertNoError(t, err)
		return svc, loan, func() { testutil.TeardownTestDB(t, db) }
	}

	t.Run("simple_full_year", func(t *testing.T) {
		svc, loan, teardown := setup(t)
		defer teardown()

		asOf := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) // 365 days
		interest, err := svc.AccruedInterest(loan.ID, models.InterestModeSimple, asOf)
		testutil.AssertNoError(t, err)

		// Rs 10,000 at 12% over a full year is Rs 1,200.
		if interest != 120000 {
			t.Errorf("expected interest 120000, got %d", interest)
		}
	})

	t.Run("compound_exceeds_simple", func(t *testing.T) {
		svc, loan, teardown := setup(t)
		defer teardown()

		asOf := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		simple, err := svc.AccruedInterest(loan.ID, models.InterestModeSimple, asOf)
		testutil.AssertNoError(t, err)
		compound, err := svc.AccruedInterest(loan.ID, models.InterestModeCompound, asOf)
		testutil.AssertNoError(t, err)

		if compound <= simple {
			t.Errorf("expected compound (%d) to exceed simple (%d)", compound, simple)
		}
	})

	t.Run("before_start_is_zero", func(t *testing.T) {
		svc, loan, teardown := setup(t)
		defer teardown()

		asOf := time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)
		interest, err := svc.AccruedInterest(loan.ID, models.InterestModeSimple, asOf)
		testutil.AssertNoError(t, err)
		if interest != 0 {
			t.Errorf("expected zero interest before start date, got %d", interest)
		}
	})

	t.Run("same_day_is_zero", func(t *testing.T) {
		svc, loan, teardown := setup(t)
		defer teardown()

		interest, err := svc.AccruedInterest(loan.ID, models.InterestModeSimple, loan.StartDate)
		testutil.AssertNoError(t, err)
		if interest != 0 {
			t.Errorf("expected zero interest on the start date, got %d", interest)
		}
	})
}

func TestDeleteLoan(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewLoanService(db)

	loan, err := svc.CreateLoan(LoanInput{
		PersonName: "Ravi", Type: models.LoanTypeGiven, Principal: 100000, StartDate: time.Now(),
	})
	testutil.AssertNoError(t, err)
	_, err = svc.RecordRepayment(loan.ID, 10000, time.Now(), false, "")
	testutil.AssertNoError(t, err)

	testutil.AssertNoError(t, svc.DeleteLoan(loan.ID))

	_, err = svc.GetLoanByID(loan.ID)
	testutil.AssertAppError(t, err, "LOAN_NOT_FOUND")

	var repayments int64
	testutil.AssertNoError(t, db.Model(&models.LoanRepayment{}).Where("loan_id = ?", loan.ID).Count(&repayments).Error)
	if repayments != 0 {
		t.Errorf("expected repayments removed, found %d", repayments)
	}

	var accounts int64
	testutil.AssertNoError(t, db.Model(&models.Account{}).Where("id = ?", loan.AccountID).Count(&accounts).Error)
	if accounts != 0 {
		t.Errorf("expected linked account removed, found %d", accounts)
	}
}
