package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"paisa/internal/config"
	"paisa/internal/database"
	apperrors "paisa/internal/errors"
	"paisa/internal/logger"
	"paisa/internal/models"
)

// authService handles the single-user password and session lifecycle.
type authService struct {
	db  *gorm.DB
	ttl time.Duration
}

// NewAuthService creates a new AuthServicer.
func NewAuthService(db *gorm.DB, cfg *config.Config) AuthServicer {
	return &authService{db: db, ttl: cfg.SessionTTL}
}

// HashToken returns the hex SHA-256 digest of a raw session token. Only the
// digest is ever stored, so a leaked database does not leak live sessions.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return hex.EncodeToString(buf), nil
}

func (s *authService) credential() (*models.Credential, error) {
	var cred models.Credential
	if err := s.db.First(&cred).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &cred, nil
}

// PasswordSet reports whether initial setup has been completed.
func (s *authService) PasswordSet() (bool, error) {
	cred, err := s.credential()
	if err != nil {
		return false, err
	}
	return cred != nil, nil
}

// SetupPassword stores the password hash on first run. It refuses to run
// twice; changing the password afterwards requires the current one.
func (s *authService) SetupPassword(password string) error {
	if len(password) < 8 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "password must be at least 8 characters")
	}

	cred, err := s.credential()
	if err != nil {
		return err
	}
	if cred != nil {
		return apperrors.ErrPasswordAlreadySet
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.db.Create(&models.Credential{PasswordHash: string(hash)}).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	logger.Get().Info("Password set up")
	return nil
}

func (s *authService) verify(password string) (*models.Credential, error) {
	cred, err := s.credential()
	if err != nil {
		return nil, err
	}
	if cred == nil {
		return nil, apperrors.ErrPasswordNotSet
	}
	if bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)) != nil {
		return nil, apperrors.ErrInvalidCredentials
	}
	return cred, nil
}

// ChangePassword swaps the stored hash and revokes every live session.
func (s *authService) ChangePassword(currentPassword, newPassword string) error {
	if len(newPassword) < 8 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "password must be at least 8 characters")
	}

	cred, err := s.verify(currentPassword)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(cred).Update("password_hash", string(hash)).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Where("1 = 1").Delete(&models.Session{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// Login verifies the password and issues a new opaque session token.
func (s *authService) Login(password string) (string, time.Time, error) {
	if _, err := s.verify(password); err != nil {
		return "", time.Time{}, err
	}

	token, err := generateToken()
	if err != nil {
		return "", time.Time{}, err
	}

	expiresAt := time.Now().Add(s.ttl)
	session := &models.Session{
		TokenHash: HashToken(token),
		ExpiresAt: expiresAt,
	}
	if err := s.db.Create(session).Error; err != nil {
		return "", time.Time{}, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return token, expiresAt, nil
}

// Logout revokes the session for the given token. Unknown tokens are a no-op.
func (s *authService) Logout(token string) error {
	if err := s.db.Where("token_hash = ?", HashToken(token)).Delete(&models.Session{}).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// ValidateToken checks that the token belongs to a live session. Expired
// sessions are deleted on sight.
func (s *authService) ValidateToken(token string) error {
	var session models.Session
	err := s.db.Where("token_hash = ?", HashToken(token)).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUnauthorized
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if session.Expired(time.Now()) {
		if err := s.db.Delete(&session).Error; err != nil {
			logger.Get().Warnw("Failed to delete expired session", "error", err)
		}
		return apperrors.ErrSessionExpired
	}

	return nil
}

// ResetAllData wipes every table except the credential after re-verifying the
// password, then restores the default categories and cash account. Used by
// the settings screen's factory reset.
func (s *authService) ResetAllData(password string) error {
	if _, err := s.verify(password); err != nil {
		return err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, model := range database.AllModels {
			if _, ok := model.(*models.Credential); ok {
				continue
			}
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(model).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		return SeedDefaults(tx)
	})
	if err != nil {
		return err
	}

	logger.Get().Warn("All data reset")
	return nil
}
