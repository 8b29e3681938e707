package models

import "time"

// Credential holds the single stored password hash. The app is single-user:
// there is at most one row in this table.
type Credential struct {
	Base
	PasswordHash string `gorm:"not null" json:"-"`
}

// Session is an opaque login token. Only the SHA-256 hex digest of the token
// is stored; the raw token lives with the client.
type Session struct {
	Base
	TokenHash string    `gorm:"size:64;not null;uniqueIndex" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
}

// Expired reports whether the session is past its expiry.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
