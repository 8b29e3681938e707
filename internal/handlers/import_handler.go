package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "paisa/internal/errors"
	"paisa/internal/services"
)

// maxStatementSize caps uploaded statement files at 10 MiB.
const maxStatementSize = 10 << 20

// ImportHandler handles bank statement uploads.
type ImportHandler struct {
	statementService   services.StatementServicer
	transactionService services.TransactionServicer
}

// NewImportHandler creates a new ImportHandler.
func NewImportHandler(statementService services.StatementServicer, transactionService services.TransactionServicer) *ImportHandler {
	return &ImportHandler{statementService: statementService, transactionService: transactionService}
}

// UploadStatement parses an uploaded XLSX statement and returns transaction
// candidates for review. Nothing is stored at this stage.
func (h *ImportHandler) UploadStatement(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "a statement file is required"))
		return
	}
	if fileHeader.Size > maxStatementSize {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "statement file too large"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrImportFailed, err))
		return
	}
	defer file.Close()

	result, err := h.statementService.ParseStatement(file)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ConfirmImportRequest represents the request payload for saving reviewed rows.
type ConfirmImportRequest struct {
	AccountID string                  `json:"account_id" binding:"required"`
	Rows      []services.StatementRow `json:"rows" binding:"required,min=1"`
}

// ConfirmImport persists reviewed statement rows against an account.
func (h *ImportHandler) ConfirmImport(c *gin.Context) {
	var req ConfirmImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.transactionService.SaveImported(req.AccountID, req.Rows)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}
