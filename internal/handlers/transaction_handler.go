package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "paisa/internal/errors"
	"paisa/internal/models"
	"paisa/internal/pagination"
	"paisa/internal/services"
)

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// CreateTransactionRequest represents the request payload for creating a transaction.
type CreateTransactionRequest struct {
	AccountID   string  `json:"account_id" binding:"required"`
	CategoryID  *string `json:"category_id"`
	Type        string  `json:"type" binding:"required,oneof=income expense"`
	Amount      int64   `json:"amount" binding:"required,gt=0"`
	Description string  `json:"description" binding:"max=500"`
	Date        string  `json:"date"`
	Reference   string  `json:"reference" binding:"max=100"`
	Notes       string  `json:"notes" binding:"max=1000"`
}

// CreateTransaction records an income or expense.
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var date time.Time
	if req.Date != "" {
		parsed, err := parseDate(req.Date)
		if err != nil {
			respondWithError(c, err)
			return
		}
		date = parsed
	}

	txn, err := h.transactionService.CreateTransaction(services.TransactionInput{
		Date:        date,
		Description: req.Description,
		Amount:      req.Amount,
		Type:        models.TransactionType(req.Type),
		AccountID:   req.AccountID,
		CategoryID:  req.CategoryID,
		Reference:   req.Reference,
		Notes:       req.Notes,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"transaction": txn})
}

// CreateTransferRequest represents the request payload for creating a transfer.
type CreateTransferRequest struct {
	FromAccountID string `json:"from_account_id" binding:"required"`
	ToAccountID   string `json:"to_account_id" binding:"required"`
	Amount        int64  `json:"amount" binding:"required,gt=0"`
	Description   string `json:"description" binding:"max=500"`
	Date          string `json:"date"`
	Notes         string `json:"notes" binding:"max=1000"`
}

// CreateTransfer moves money between two accounts.
func (h *TransactionHandler) CreateTransfer(c *gin.Context) {
	var req CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var date time.Time
	if req.Date != "" {
		parsed, err := parseDate(req.Date)
		if err != nil {
			respondWithError(c, err)
			return
		}
		date = parsed
	}

	txn, err := h.transactionService.CreateTransfer(
		req.FromAccountID, req.ToAccountID, req.Amount, date, req.Description, req.Notes)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"transaction": txn})
}

// ListTransactionsRequest represents the query parameters for listing transactions.
type ListTransactionsRequest struct {
	pagination.PageRequest
	AccountID  string `form:"account_id"`
	CategoryID string `form:"category_id"`
	Type       string `form:"type" binding:"omitempty,transaction_type"`
	FromDate   string `form:"from_date"`
	ToDate     string `form:"to_date"`
	Untagged   bool   `form:"untagged"`
	Search     string `form:"search" binding:"max=200"`
}

// ListTransactions lists transactions newest first, filtered and paginated.
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	var req ListTransactionsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter := services.TransactionFilter{
		Untagged: req.Untagged,
		Search:   req.Search,
	}
	if req.AccountID != "" {
		filter.AccountID = &req.AccountID
	}
	if req.CategoryID != "" {
		filter.CategoryID = &req.CategoryID
	}
	if req.Type != "" {
		t := models.TransactionType(req.Type)
		filter.Type = &t
	}
	if req.FromDate != "" {
		from, err := parseDate(req.FromDate)
		if err != nil {
			respondWithError(c, err)
			return
		}
		filter.FromDate = &from
	}
	if req.ToDate != "" {
		to, err := parseDate(req.ToDate)
		if err != nil {
			respondWithError(c, err)
			return
		}
		filter.ToDate = &to
	}

	page, err := h.transactionService.GetTransactions(req.PageRequest, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// GetTransaction retrieves a single transaction.
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	txn, err := h.transactionService.GetTransactionByID(c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": txn})
}

// UpdateTransactionRequest represents the request payload for updating a transaction.
type UpdateTransactionRequest struct {
	Date        *string `json:"date"`
	Description *string `json:"description" binding:"omitempty,max=500"`
	Amount      *int64  `json:"amount" binding:"omitempty,gt=0"`
	Type        *string `json:"type" binding:"omitempty,transaction_type"`
	AccountID   *string `json:"account_id"`
	CategoryID  *string `json:"category_id"`
	ClearTag    bool    `json:"clear_tag"`
	Reference   *string `json:"reference" binding:"omitempty,max=100"`
	Notes       *string `json:"notes" binding:"omitempty,max=1000"`
}

// UpdateTransaction edits an income/expense transaction.
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	update := services.TransactionUpdate{
		Description: req.Description,
		Amount:      req.Amount,
		AccountID:   req.AccountID,
		CategoryID:  req.CategoryID,
		ClearTag:    req.ClearTag,
		Reference:   req.Reference,
		Notes:       req.Notes,
	}
	if req.Date != nil && *req.Date != "" {
		date, err := parseDate(*req.Date)
		if err != nil {
			respondWithError(c, err)
			return
		}
		update.Date = &date
	}
	if req.Type != nil {
		t := models.TransactionType(*req.Type)
		update.Type = &t
	}

	txn, err := h.transactionService.UpdateTransaction(c.Param("id"), update)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": txn})
}

// DeleteTransaction deletes a transaction and reverses its balance effect.
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	if err := h.transactionService.DeleteTransaction(c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Transaction deleted"})
}

// BulkTagRequest represents the request payload for tagging several transactions.
type BulkTagRequest struct {
	TransactionIDs []string `json:"transaction_ids" binding:"required,min=1"`
	CategoryID     *string  `json:"category_id"`
	PayeeAccountID *string  `json:"payee_account_id"`
}

// BulkTag assigns a category to several transactions at once.
func (h *TransactionHandler) BulkTag(c *gin.Context) {
	var req BulkTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	updated, err := h.transactionService.BulkTag(req.TransactionIDs, req.CategoryID, req.PayeeAccountID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": updated})
}
