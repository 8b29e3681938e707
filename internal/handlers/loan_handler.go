package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "paisa/internal/errors"
	"paisa/internal/models"
	"paisa/internal/services"
)

// LoanHandler handles loan-related requests.
type LoanHandler struct {
	loanService services.LoanServicer
}

// NewLoanHandler creates a new LoanHandler.
func NewLoanHandler(loanService services.LoanServicer) *LoanHandler {
	return &LoanHandler{loanService: loanService}
}

// CreateLoanRequest represents the request payload for opening a loan.
type CreateLoanRequest struct {
	PersonName   string  `json:"person_name" binding:"required,max=100"`
	Type         string  `json:"type" binding:"required,loan_type"`
	Principal    int64   `json:"principal" binding:"required,gt=0"`
	InterestRate float64 `json:"interest_rate" binding:"gte=0,lte=100"`
	StartDate    string  `json:"start_date"`
	Notes        string  `json:"notes" binding:"max=1000"`
}

// CreateLoan opens a loan with its linked account.
func (h *LoanHandler) CreateLoan(c *gin.Context) {
	var req CreateLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var startDate time.Time
	if req.StartDate != "" {
		parsed, err := parseDate(req.StartDate)
		if err != nil {
			respondWithError(c, err)
			return
		}
		startDate = parsed
	}

	loan, err := h.loanService.CreateLoan(services.LoanInput{
		PersonName:   req.PersonName,
		Type:         models.LoanType(req.Type),
		Principal:    req.Principal,
		InterestRate: req.InterestRate,
		StartDate:    startDate,
		Notes:        req.Notes,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"loan": loan})
}

// ListLoans lists loans, optionally filtered by direction.
func (h *LoanHandler) ListLoans(c *gin.Context) {
	var loanType *models.LoanType
	if v := c.Query("type"); v != "" {
		t := models.LoanType(v)
		loanType = &t
	}

	loans, err := h.loanService.GetLoans(loanType)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"loans": loans})
}

// GetLoan retrieves a loan with its repayment history and outstanding amount.
func (h *LoanHandler) GetLoan(c *gin.Context) {
	loan, err := h.loanService.GetLoanByID(c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"loan":        loan,
		"outstanding": loan.Outstanding(),
	})
}

// UpdateLoanRequest represents the request payload for updating a loan.
type UpdateLoanRequest struct {
	PersonName   *string  `json:"person_name" binding:"omitempty,max=100"`
	Notes        *string  `json:"notes" binding:"omitempty,max=1000"`
	InterestRate *float64 `json:"interest_rate" binding:"omitempty,gte=0,lte=100"`
}

// UpdateLoan updates a loan's descriptive fields.
func (h *LoanHandler) UpdateLoan(c *gin.Context) {
	var req UpdateLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	loan, err := h.loanService.UpdateLoan(c.Param("id"), req.PersonName, req.Notes, req.InterestRate)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"loan": loan})
}

// DeleteLoan removes a loan with its repayments and linked account.
func (h *LoanHandler) DeleteLoan(c *gin.Context) {
	if err := h.loanService.DeleteLoan(c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Loan deleted"})
}

// RecordRepaymentRequest represents the request payload for booking a repayment.
type RecordRepaymentRequest struct {
	Amount     int64  `json:"amount" binding:"required,gt=0"`
	Date       string `json:"date"`
	IsInterest bool   `json:"is_interest"`
	Notes      string `json:"notes" binding:"max=1000"`
}

// RecordRepayment books a principal or interest payment against a loan.
func (h *LoanHandler) RecordRepayment(c *gin.Context) {
	var req RecordRepaymentRequest
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

	repayment, err := h.loanService.RecordRepayment(c.Param("id"), req.Amount, date, req.IsInterest, req.Notes)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"repayment": repayment})
}

// GetInterest computes accrued interest for a loan as of a date.
func (h *LoanHandler) GetInterest(c *gin.Context) {
	mode := models.InterestModeSimple
	if v := c.Query("mode"); v != "" {
		switch v {
		case "simple":
			mode = models.InterestModeSimple
		case "compound":
			mode = models.InterestModeCompound
		default:
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "mode must be simple or compound"))
			return
		}
	}

	asOf := time.Now()
	if v := c.Query("as_of"); v != "" {
		parsed, err := parseDate(v)
		if err != nil {
			respondWithError(c, err)
			return
		}
		asOf = parsed
	}

	interest, err := h.loanService.AccruedInterest(c.Param("id"), mode, asOf)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"interest": interest,
		"mode":     mode,
		"as_of":    asOf,
	})
}
