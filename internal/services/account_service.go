package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "paisa/internal/errors"
	"paisa/internal/models"
)

// DefaultCashAccountName is the account bank imports and quick entries fall
// back to when no explicit account exists yet.
const DefaultCashAccountName = "Cash"

// accountService handles account-related business logic.
type accountService struct {
	db *gorm.DB
}

// NewAccountService creates a new AccountServicer.
func NewAccountService(db *gorm.DB) AccountServicer {
	return &accountService{db: db}
}

// CreateAccount creates an account. The balance-sheet side is derived from
// the category; the current balance starts at the opening balance.
func (s *accountService) CreateAccount(name string, category models.AccountCategory, openingBalance int64, description, personName string) (*models.Account, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account name is required")
	}

	account := &models.Account{
		Name:           name,
		Category:       category,
		OpeningBalance: openingBalance,
		CurrentBalance: openingBalance,
		Description:    description,
		PersonName:     personName,
	}

	if err := s.db.Create(account).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return account, nil
}

// GetAccounts lists accounts, optionally filtered by category or type,
// ordered by name.
func (s *accountService) GetAccounts(category *models.AccountCategory, accountType *models.AccountType) ([]models.Account, error) {
	query := s.db.Model(&models.Account{})
	if category != nil {
		query = query.Where("category = ?", *category)
	}
	if accountType != nil {
		query = query.Where("type = ?", *accountType)
	}

	var accounts []models.Account
	if err := query.Order("name ASC").Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return accounts, nil
}

// GetAccountByID retrieves a single account.
func (s *accountService) GetAccountByID(id string) (*models.Account, error) {
	var account models.Account
	if err := s.db.Where("id = ?", id).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &account, nil
}

// UpdateAccount updates the editable fields. Category and opening balance are
// immutable; create a new account instead.
func (s *accountService) UpdateAccount(id string, name, description *string) (*models.Account, error) {
	account, err := s.GetAccountByID(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if name != nil {
		if *name == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account name cannot be empty")
		}
		updates["name"] = *name
	}
	if description != nil {
		updates["description"] = *description
	}

	if len(updates) > 0 {
		if err := s.db.Model(account).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return account, nil
}

// DeleteAccount soft-deletes an account. Accounts referenced by any
// transaction (either leg) are protected so history stays consistent.
func (s *accountService) DeleteAccount(id string) error {
	account, err := s.GetAccountByID(id)
	if err != nil {
		return err
	}

	var count int64
	if err := s.db.Model(&models.Transaction{}).
		Where("account_id = ? OR payee_account_id = ?", id, id).
		Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.ErrAccountInUse
	}

	if err := s.db.Delete(account).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetOrCreateCashAccount returns the default cash account, creating it on
// first use. Idempotent.
func (s *accountService) GetOrCreateCashAccount() (*models.Account, error) {
	var account models.Account
	err := s.db.Where("category = ? AND name = ?", models.AccountCategoryCash, DefaultCashAccountName).
		First(&account).Error
	if err == nil {
		return &account, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.CreateAccount(DefaultCashAccountName, models.AccountCategoryCash, 0, "Default cash account", "")
}
