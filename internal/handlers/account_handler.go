package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "paisa/internal/errors"
	"paisa/internal/models"
	"paisa/internal/services"
)

// AccountHandler handles account-related requests.
type AccountHandler struct {
	accountService services.AccountServicer
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountService services.AccountServicer) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

// CreateAccountRequest represents the request payload for creating an account.
type CreateAccountRequest struct {
	Name           string `json:"name" binding:"required,max=100"`
	Category       string `json:"category" binding:"required,account_category"`
	OpeningBalance int64  `json:"opening_balance"`
	Description    string `json:"description" binding:"max=500"`
	PersonName     string `json:"person_name" binding:"max=100"`
}

// CreateAccount creates a new account.
func (h *AccountHandler) CreateAccount(c *gin.Context) {
	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	account, err := h.accountService.CreateAccount(
		req.Name,
		models.AccountCategory(req.Category),
		req.OpeningBalance,
		req.Description,
		req.PersonName,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"account": account})
}

// ListAccounts lists accounts, optionally filtered by category or type.
func (h *AccountHandler) ListAccounts(c *gin.Context) {
	var category *models.AccountCategory
	if v := c.Query("category"); v != "" {
		cat := models.AccountCategory(v)
		category = &cat
	}
	var accountType *models.AccountType
	if v := c.Query("type"); v != "" {
		t := models.AccountType(v)
		accountType = &t
	}

	accounts, err := h.accountService.GetAccounts(category, accountType)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"accounts": accounts})
}

// GetAccount retrieves a single account.
func (h *AccountHandler) GetAccount(c *gin.Context) {
	account, err := h.accountService.GetAccountByID(c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"account": account})
}

// UpdateAccountRequest represents the request payload for updating an account.
type UpdateAccountRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=100"`
	Description *string `json:"description" binding:"omitempty,max=500"`
}

// UpdateAccount updates an account's editable fields.
func (h *AccountHandler) UpdateAccount(c *gin.Context) {
	var req UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	account, err := h.accountService.UpdateAccount(c.Param("id"), req.Name, req.Description)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"account": account})
}

// DeleteAccount deletes an account that has no transactions.
func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	if err := h.accountService.DeleteAccount(c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Account deleted"})
}
