package models

import "gorm.io/gorm"

// AccountCategory classifies what kind of ledger an account is.
type AccountCategory string

const (
	AccountCategoryBank           AccountCategory = "bank"
	AccountCategoryCash           AccountCategory = "cash"
	AccountCategoryCreditCard     AccountCategory = "credit_card"
	AccountCategoryInvestment     AccountCategory = "investment"
	AccountCategoryLoanReceivable AccountCategory = "loan_receivable"
	AccountCategoryLoanPayable    AccountCategory = "loan_payable"
	AccountCategoryOther          AccountCategory = "other"
)

// AccountType is the balance-sheet side of an account, derived from its category.
type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
)

// TypeForCategory returns the balance-sheet side for an account category.
// Credit cards and loans payable are liabilities; everything else is an asset.
func TypeForCategory(category AccountCategory) AccountType {
	switch category {
	case AccountCategoryCreditCard, AccountCategoryLoanPayable:
		return AccountTypeLiability
	default:
		return AccountTypeAsset
	}
}

// Account is a named balance-bearing ledger (bank, cash, loan, credit card...).
// CurrentBalance is a denormalized aggregate: it always equals OpeningBalance
// plus the signed effects of all non-deleted transactions applied against it.
// All amounts are in paise.
type Account struct {
	Base
	Name           string          `gorm:"not null" json:"name"`
	Category       AccountCategory `gorm:"not null" json:"category"`
	Type           AccountType     `gorm:"not null" json:"type"`
	OpeningBalance int64           `gorm:"not null;default:0" json:"opening_balance"`
	CurrentBalance int64           `gorm:"not null;default:0" json:"current_balance"`
	Description    string          `json:"description"`
	PersonName     string          `json:"person_name,omitempty"` // loan categories only

	Transactions []Transaction `gorm:"foreignKey:AccountID" json:"transactions,omitempty"`
}

// BeforeCreate derives the balance-sheet side from the category.
func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if err := a.Base.BeforeCreate(tx); err != nil {
		return err
	}
	a.Type = TypeForCategory(a.Category)
	return nil
}
