package models

import "time"

// LoanType says which direction a person-to-person loan runs.
type LoanType string

const (
	LoanTypeGiven LoanType = "given" // we lent money out
	LoanTypeTaken LoanType = "taken" // we borrowed money
)

// InterestMode selects the accrual formula for on-demand interest queries.
type InterestMode string

const (
	InterestModeSimple   InterestMode = "simple"
	InterestModeCompound InterestMode = "compound" // daily compounding
)

// Loan tracks principal, repayments, and interest for a person-to-person loan.
// Each loan owns a linked ledger account (loan_receivable or loan_payable)
// whose balance mirrors the outstanding principal. Amounts are in paise;
// InterestRate is an annual percentage. Accrued interest is computed on
// demand, never stored.
type Loan struct {
	Base
	PersonName   string    `gorm:"not null" json:"person_name"`
	Type         LoanType  `gorm:"not null" json:"type"`
	Principal    int64     `gorm:"type:bigint;not null" json:"principal"`
	InterestRate float64   `gorm:"not null;default:0" json:"interest_rate"`
	StartDate    time.Time `gorm:"not null" json:"start_date"`
	TotalRepaid  int64     `gorm:"type:bigint;not null;default:0" json:"total_repaid"`
	InterestPaid int64     `gorm:"type:bigint;not null;default:0" json:"interest_paid"`
	Notes        string    `json:"notes"`
	AccountID    string    `gorm:"type:uuid;not null" json:"account_id"`

	Account    *Account        `gorm:"foreignKey:AccountID" json:"account,omitempty"`
	Repayments []LoanRepayment `gorm:"foreignKey:LoanID" json:"repayments,omitempty"`
}

// Outstanding is the unrepaid principal.
func (l *Loan) Outstanding() int64 {
	return l.Principal - l.TotalRepaid
}

// LoanRepayment is one payment against a loan. Interest payments count
// toward InterestPaid and leave the outstanding principal untouched.
type LoanRepayment struct {
	Base
	LoanID     string    `gorm:"type:uuid;not null;index" json:"loan_id"`
	Amount     int64     `gorm:"type:bigint;not null" json:"amount"`
	Date       time.Time `gorm:"not null" json:"date"`
	IsInterest bool      `gorm:"not null;default:false" json:"is_interest"`
	Notes      string    `json:"notes"`
}
