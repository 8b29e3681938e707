package models

import "time"

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeExpense  TransactionType = "expense"
	TransactionTypeIncome   TransactionType = "income"
	TransactionTypeTransfer TransactionType = "transfer"
)

// TransactionSource records how a transaction entered the system.
type TransactionSource string

const (
	SourceManual     TransactionSource = "manual"
	SourceBankImport TransactionSource = "bank_import"
)

// Transaction is a dated monetary event affecting one account, or two for
// transfers (AccountID is the source, PayeeAccountID the destination).
// Amount is a non-negative magnitude in paise; the sign of the balance effect
// comes from Type and the account's balance-sheet side.
type Transaction struct {
	Base
	Date           time.Time         `gorm:"not null;index" json:"date"`
	Description    string            `json:"description"`
	Amount         int64             `gorm:"type:bigint;not null" json:"amount"`
	Type           TransactionType   `gorm:"not null" json:"type"`
	AccountID      string            `gorm:"type:uuid;not null;index" json:"account_id"`
	PayeeAccountID *string           `gorm:"type:uuid;index" json:"payee_account_id,omitempty"`
	CategoryID     *string           `gorm:"type:uuid;index" json:"category_id,omitempty"`
	LoanID         *string           `gorm:"type:uuid" json:"loan_id,omitempty"`
	Reference      string            `json:"reference"`
	Notes          string            `json:"notes"`
	Source         TransactionSource `gorm:"not null;default:'manual'" json:"source"`

	Account      Account   `gorm:"foreignKey:AccountID" json:"account,omitempty"`
	PayeeAccount *Account  `gorm:"foreignKey:PayeeAccountID" json:"payee_account,omitempty"`
	Category     *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}
