// Package ledger owns the bookkeeping convention: how a transaction's
// amount turns into a signed delta on an account's current balance, and how
// balances are repaired when that incremental maintenance goes wrong.
//
// The convention is debit-normal for assets: income adds to an asset account
// and subtracts from a liability account (a payment against a credit card or
// a loan payable reduces what is owed); expense is the inverse. Transfers are
// decomposed by the caller into an expense effect on the source account and
// an income effect on the destination account of equal magnitude.
package ledger

import (
	"errors"

	"gorm.io/gorm"

	apperrors "paisa/internal/errors"
	"paisa/internal/models"
)

// Delta returns the signed change Apply would make to the account's current
// balance for one effect. Transfer is not a valid effect type here; callers
// decompose transfers before reaching the ledger.
func Delta(accountType models.AccountType, effect models.TransactionType, amount int64) (int64, error) {
	switch effect {
	case models.TransactionTypeIncome:
		if accountType == models.AccountTypeLiability {
			return -amount, nil
		}
		return amount, nil
	case models.TransactionTypeExpense:
		if accountType == models.AccountTypeLiability {
			return amount, nil
		}
		return -amount, nil
	default:
		return 0, apperrors.ErrInvalidTransactionType
	}
}

// Apply adds the effect's signed delta to the account's current balance and
// persists it. It must run inside the same database transaction as the write
// that caused it so a failed mutation aborts the whole operation.
func Apply(tx *gorm.DB, account *models.Account, effect models.TransactionType, amount int64) error {
	delta, err := Delta(account.Type, effect, amount)
	if err != nil {
		return err
	}
	account.CurrentBalance += delta
	if err := tx.Model(account).Update("current_balance", account.CurrentBalance).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// Reverse undoes a previously applied effect: income is reversed as expense
// and vice versa. Used before re-applying on edit, and on delete.
func Reverse(tx *gorm.DB, account *models.Account, effect models.TransactionType, amount int64) error {
	switch effect {
	case models.TransactionTypeIncome:
		return Apply(tx, account, models.TransactionTypeExpense, amount)
	case models.TransactionTypeExpense:
		return Apply(tx, account, models.TransactionTypeIncome, amount)
	default:
		return apperrors.ErrInvalidTransactionType
	}
}

// ApplyByID loads the account and applies the effect. A missing account is
// reported as ACCOUNT_NOT_FOUND so the enclosing transaction aborts before
// any half-applied transfer can be committed.
func ApplyByID(tx *gorm.DB, accountID string, effect models.TransactionType, amount int64) error {
	var account models.Account
	if err := tx.Where("id = ?", accountID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrAccountNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return Apply(tx, &account, effect, amount)
}

// ReverseByID loads the account and reverses the effect.
func ReverseByID(tx *gorm.DB, accountID string, effect models.TransactionType, amount int64) error {
	switch effect {
	case models.TransactionTypeIncome:
		return ApplyByID(tx, accountID, models.TransactionTypeExpense, amount)
	case models.TransactionTypeExpense:
		return ApplyByID(tx, accountID, models.TransactionTypeIncome, amount)
	default:
		return apperrors.ErrInvalidTransactionType
	}
}

// ApplyTransaction applies a transaction's full balance effect: one leg for
// income/expense, both legs for a transfer.
func ApplyTransaction(tx *gorm.DB, txn *models.Transaction) error {
	switch txn.Type {
	case models.TransactionTypeIncome, models.TransactionTypeExpense:
		return ApplyByID(tx, txn.AccountID, txn.Type, txn.Amount)
	case models.TransactionTypeTransfer:
		if txn.PayeeAccountID == nil {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "transfer requires a destination account")
		}
		if err := ApplyByID(tx, txn.AccountID, models.TransactionTypeExpense, txn.Amount); err != nil {
			return err
		}
		return ApplyByID(tx, *txn.PayeeAccountID, models.TransactionTypeIncome, txn.Amount)
	default:
		return apperrors.ErrInvalidTransactionType
	}
}

// ReverseTransaction undoes a transaction's full balance effect.
func ReverseTransaction(tx *gorm.DB, txn *models.Transaction) error {
	switch txn.Type {
	case models.TransactionTypeIncome, models.TransactionTypeExpense:
		return ReverseByID(tx, txn.AccountID, txn.Type, txn.Amount)
	case models.TransactionTypeTransfer:
		if txn.PayeeAccountID == nil {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "transfer requires a destination account")
		}
		if err := ApplyByID(tx, txn.AccountID, models.TransactionTypeIncome, txn.Amount); err != nil {
			return err
		}
		return ApplyByID(tx, *txn.PayeeAccountID, models.TransactionTypeExpense, txn.Amount)
	default:
		return apperrors.ErrInvalidTransactionType
	}
}

// RepaymentEffect is the effect type a principal repayment has on a loan's
// linked account: it shrinks a receivable (asset) via an expense effect and
// shrinks a payable (liability) via an income effect.
func RepaymentEffect(loanType models.LoanType) models.TransactionType {
	if loanType == models.LoanTypeTaken {
		return models.TransactionTypeIncome
	}
	return models.TransactionTypeExpense
}

// RecomputeBalances rebuilds every account's current balance from its opening
// balance plus the replayed effects of all non-deleted transactions, plus
// principal repayment effects for loan-linked accounts. This is the repair
// tool for the denormalized balance invariant; normal operation never needs it.
func RecomputeBalances(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var accounts []models.Account
		if err := tx.Find(&accounts).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		for i := range accounts {
			account := &accounts[i]
			balance := account.OpeningBalance

			var txns []models.Transaction
			if err := tx.Where("account_id = ? OR payee_account_id = ?", account.ID, account.ID).
				Order("date ASC, created_at ASC").
				Find(&txns).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}

			for _, txn := range txns {
				effect := txn.Type
				if txn.Type == models.TransactionTypeTransfer {
					if txn.AccountID == account.ID {
						effect = models.TransactionTypeExpense
					} else {
						effect = models.TransactionTypeIncome
					}
				}
				delta, err := Delta(account.Type, effect, txn.Amount)
				if err != nil {
					return err
				}
				balance += delta
			}

			// Principal repayments on the linked loan reduce the outstanding
			// balance without going through the transaction table.
			if account.Category == models.AccountCategoryLoanReceivable ||
				account.Category == models.AccountCategoryLoanPayable {
				var loan models.Loan
				err := tx.Where("account_id = ?", account.ID).First(&loan).Error
				if err == nil {
					var repayments []models.LoanRepayment
					if err := tx.Where("loan_id = ? AND is_interest = ?", loan.ID, false).
						Find(&repayments).Error; err != nil {
						return apperrors.Wrap(apperrors.ErrInternalServer, err)
					}
					effect := RepaymentEffect(loan.Type)
					for _, r := range repayments {
						delta, derr := Delta(account.Type, effect, r.Amount)
						if derr != nil {
							return derr
						}
						balance += delta
					}
				} else if !errors.Is(err, gorm.ErrRecordNotFound) {
					return apperrors.Wrap(apperrors.ErrInternalServer, err)
				}
			}

			if balance != account.CurrentBalance {
				if err := tx.Model(account).Update("current_balance", balance).Error; err != nil {
					return apperrors.Wrap(apperrors.ErrInternalServer, err)
				}
			}
		}

		return nil
	})
}
