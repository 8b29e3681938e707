package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "paisa/internal/errors"
	"paisa/internal/ledger"
	"paisa/internal/logger"
	"paisa/internal/models"
	"paisa/internal/pagination"
)

// transactionService handles transaction-related business logic. Every write
// that touches a balance runs inside a database transaction so the
// denormalized account balances can never drift from the transaction log.
type transactionService struct {
	db      *gorm.DB
	autotag AutotagServicer
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB, autotag AutotagServicer) TransactionServicer {
	return &transactionService{db: db, autotag: autotag}
}

// categoryMatchesType checks that a category's type agrees with the
// transaction type it is being attached to.
func (s *transactionService) categoryMatchesType(categoryID string, txnType models.TransactionType) error {
	var category models.Category
	if err := s.db.Where("id = ?", categoryID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrCategoryNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	switch txnType {
	case models.TransactionTypeExpense:
		if category.Type != models.CategoryTypeExpense {
			return apperrors.ErrCategoryTypeMismatch
		}
	case models.TransactionTypeIncome:
		if category.Type != models.CategoryTypeIncome {
			return apperrors.ErrCategoryTypeMismatch
		}
	}
	return nil
}

// CreateTransaction records an income or expense and applies its balance
// effect. Untagged transactions are run through the learned patterns; tagged
// ones teach a new pattern.
func (s *transactionService) CreateTransaction(in TransactionInput) (*models.Transaction, error) {
	if in.Amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be positive")
	}
	if in.Type != models.TransactionTypeExpense && in.Type != models.TransactionTypeIncome {
		return nil, apperrors.ErrInvalidTransactionType
	}
	if in.Date.IsZero() {
		in.Date = time.Now()
	}

	if in.CategoryID != nil {
		if err := s.categoryMatchesType(*in.CategoryID, in.Type); err != nil {
			return nil, err
		}
	} else if in.Description != "" {
		match, err := s.autotag.Match(in.Description)
		if err != nil {
			return nil, err
		}
		if match != nil && match.CategoryID != nil {
			if err := s.categoryMatchesType(*match.CategoryID, in.Type); err == nil {
				in.CategoryID = match.CategoryID
			}
		}
	}

	txn := &models.Transaction{
		Date:        in.Date,
		Description: in.Description,
		Amount:      in.Amount,
		Type:        in.Type,
		AccountID:   in.AccountID,
		CategoryID:  in.CategoryID,
		Reference:   in.Reference,
		Notes:       in.Notes,
		Source:      models.SourceManual,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(txn).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return ledger.ApplyTransaction(tx, txn)
	})
	if err != nil {
		return nil, err
	}

	// Learning happens outside the transaction: a failed pattern write must
	// not roll back a booked transaction.
	if in.CategoryID != nil && in.Description != "" {
		if err := s.autotag.Learn(in.Description, in.CategoryID, nil); err != nil {
			logger.Get().Warnw("Failed to learn tag pattern", "error", err)
		}
	}

	return s.GetTransactionByID(txn.ID)
}

// CreateTransfer records a single transfer transaction moving money between
// two accounts.
func (s *transactionService) CreateTransfer(fromAccountID, toAccountID string, amount int64, date time.Time, description, notes string) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be positive")
	}
	if fromAccountID == toAccountID {
		return nil, apperrors.ErrSameAccountTransfer
	}
	if date.IsZero() {
		date = time.Now()
	}

	txn := &models.Transaction{
		Date:           date,
		Description:    description,
		Amount:         amount,
		Type:           models.TransactionTypeTransfer,
		AccountID:      fromAccountID,
		PayeeAccountID: &toAccountID,
		Notes:          notes,
		Source:         models.SourceManual,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(txn).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return ledger.ApplyTransaction(tx, txn)
	})
	if err != nil {
		return nil, err
	}

	return s.GetTransactionByID(txn.ID)
}

// transactionFilterQuery builds the WHERE clause for a transaction filter.
// Shared by listing and export.
func transactionFilterQuery(db *gorm.DB, filter TransactionFilter) (*gorm.DB, error) {
	query := db.Model(&models.Transaction{})

	if filter.AccountID != nil {
		query = query.Where("account_id = ? OR payee_account_id = ?", *filter.AccountID, *filter.AccountID)
	}
	if filter.CategoryID != nil {
		// A parent category's filter includes its children.
		var childIDs []string
		if err := db.Model(&models.Category{}).
			Where("parent_id = ?", *filter.CategoryID).
			Pluck("id", &childIDs).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		ids := append([]string{*filter.CategoryID}, childIDs...)
		query = query.Where("category_id IN ?", ids)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.FromDate != nil {
		query = query.Where("date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("date <= ?", *filter.ToDate)
	}
	if filter.Untagged {
		query = query.Where("category_id IS NULL AND type <> ?", models.TransactionTypeTransfer)
	}
	if filter.Search != "" {
		query = query.Where("description LIKE ?", "%"+filter.Search+"%")
	}

	return query, nil
}

// GetTransactions lists transactions newest first, with ties broken by
// insertion order, filtered and paginated.
func (s *transactionService) GetTransactions(page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	query, err := transactionFilterQuery(s.db, filter)
	if err != nil {
		return nil, err
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var txns []models.Transaction
	if err := query.Scopes(pagination.Paginate(page)).
		Preload("Account").
		Preload("PayeeAccount").
		Preload("Category").
		Order("date DESC, created_at ASC").
		Find(&txns).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	resp := pagination.NewPageResponse(txns, page.Page, page.PageSize, total)
	return &resp, nil
}

// GetTransactionByID retrieves a single transaction with its relations.
func (s *transactionService) GetTransactionByID(id string) (*models.Transaction, error) {
	var txn models.Transaction
	err := s.db.Where("id = ?", id).
		Preload("Account").
		Preload("PayeeAccount").
		Preload("Category").
		First(&txn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &txn, nil
}

// UpdateTransaction edits an income/expense transaction. The old balance
// effect is reversed and the new one applied in the same database
// transaction. Transfers cannot be edited, and a transaction cannot change
// to or from the transfer type; delete and re-create instead.
func (s *transactionService) UpdateTransaction(id string, in TransactionUpdate) (*models.Transaction, error) {
	txn, err := s.GetTransactionByID(id)
	if err != nil {
		return nil, err
	}

	if txn.Type == models.TransactionTypeTransfer {
		return nil, apperrors.ErrTransactionNotEditable
	}
	if in.Type != nil && *in.Type == models.TransactionTypeTransfer {
		return nil, apperrors.ErrInvalidTypeChange
	}

	newTxn := *txn
	if in.Date != nil {
		newTxn.Date = *in.Date
	}
	if in.Description != nil {
		newTxn.Description = *in.Description
	}
	if in.Amount != nil {
		if *in.Amount <= 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be positive")
		}
		newTxn.Amount = *in.Amount
	}
	if in.Type != nil {
		newTxn.Type = *in.Type
	}
	if in.AccountID != nil {
		newTxn.AccountID = *in.AccountID
	}
	if in.ClearTag {
		newTxn.CategoryID = nil
	} else if in.CategoryID != nil {
		newTxn.CategoryID = in.CategoryID
	}
	if in.Reference != nil {
		newTxn.Reference = *in.Reference
	}
	if in.Notes != nil {
		newTxn.Notes = *in.Notes
	}

	if newTxn.CategoryID != nil {
		if err := s.categoryMatchesType(*newTxn.CategoryID, newTxn.Type); err != nil {
			return nil, err
		}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := ledger.ReverseByID(tx, txn.AccountID, txn.Type, txn.Amount); err != nil {
			return err
		}
		updates := map[string]interface{}{
			"date":        newTxn.Date,
			"description": newTxn.Description,
			"amount":      newTxn.Amount,
			"type":        newTxn.Type,
			"account_id":  newTxn.AccountID,
			"category_id": newTxn.CategoryID,
			"reference":   newTxn.Reference,
			"notes":       newTxn.Notes,
		}
		if err := tx.Model(&models.Transaction{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return ledger.ApplyByID(tx, newTxn.AccountID, newTxn.Type, newTxn.Amount)
	})
	if err != nil {
		return nil, err
	}

	if in.CategoryID != nil && newTxn.Description != "" {
		if err := s.autotag.Learn(newTxn.Description, in.CategoryID, nil); err != nil {
			logger.Get().Warnw("Failed to learn tag pattern", "error", err)
		}
	}

	return s.GetTransactionByID(id)
}

// DeleteTransaction reverses the balance effect (both legs for a transfer)
// and soft-deletes the transaction.
func (s *transactionService) DeleteTransaction(id string) error {
	txn, err := s.GetTransactionByID(id)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := ledger.ReverseTransaction(tx, txn); err != nil {
			return err
		}
		if err := tx.Delete(&models.Transaction{}, "id = ?", id).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// BulkTag assigns a category to several transactions at once and learns a
// pattern from each distinct description. Transfers are skipped. Returns the
// number of transactions updated.
func (s *transactionService) BulkTag(ids []string, categoryID, payeeAccountID *string) (int, error) {
	if len(ids) == 0 {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "no transaction ids given")
	}
	if categoryID == nil && payeeAccountID == nil {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "nothing to tag")
	}

	var txns []models.Transaction
	if err := s.db.Where("id IN ? AND type <> ?", ids, models.TransactionTypeTransfer).
		Find(&txns).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	updated := 0
	seen := map[string]bool{}
	for i := range txns {
		txn := &txns[i]
		if categoryID != nil {
			if err := s.categoryMatchesType(*categoryID, txn.Type); err != nil {
				continue
			}
			txn.CategoryID = categoryID
		}
		if err := s.db.Model(txn).Update("category_id", txn.CategoryID).Error; err != nil {
			return updated, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		updated++

		if txn.Description != "" && !seen[txn.Description] {
			seen[txn.Description] = true
			if err := s.autotag.Learn(txn.Description, categoryID, payeeAccountID); err != nil {
				logger.Get().Warnw("Failed to learn tag pattern", "error", err)
			}
		}
	}

	return updated, nil
}

// SaveImported persists confirmed statement rows against the target account,
// applying balance effects row by row inside one database transaction. Rows
// arrive pre-tagged by the parser where a pattern matched.
func (s *transactionService) SaveImported(accountID string, rows []StatementRow) (*ImportResult, error) {
	if len(rows) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "no rows to import")
	}

	result := &ImportResult{}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, row := range rows {
			if row.Amount <= 0 {
				return apperrors.WithMessage(apperrors.ErrInvalidInput, "imported amounts must be positive")
			}
			if row.Type != models.TransactionTypeExpense && row.Type != models.TransactionTypeIncome {
				return apperrors.ErrInvalidTransactionType
			}

			txn := &models.Transaction{
				Date:        row.Date,
				Description: row.Description,
				Amount:      row.Amount,
				Type:        row.Type,
				AccountID:   accountID,
				CategoryID:  row.CategoryID,
				Reference:   row.Reference,
				Source:      models.SourceBankImport,
			}
			if err := tx.Create(txn).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			if err := ledger.ApplyTransaction(tx, txn); err != nil {
				return err
			}

			result.Imported++
			if row.CategoryID != nil {
				result.Tagged++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Get().Infow("Statement import saved",
		"account_id", accountID, "imported", result.Imported, "tagged", result.Tagged)
	return result, nil
}
