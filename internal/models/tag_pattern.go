package models

// TagPattern maps a previously tagged transaction description to the
// category/payee that was chosen for it, so repeated transactions can be
// tagged automatically. Pattern is the description with digits stripped and
// truncated to 50 runes; matching is a case-insensitive substring check, not
// a rule engine.
type TagPattern struct {
	Base
	Pattern        string  `gorm:"not null;uniqueIndex" json:"pattern"`
	CategoryID     *string `gorm:"type:uuid" json:"category_id,omitempty"`
	PayeeAccountID *string `gorm:"type:uuid" json:"payee_account_id,omitempty"`
}
