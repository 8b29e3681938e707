package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"paisa/internal/models"
	"paisa/internal/services"
)

// ExportHandler handles downloadable report requests.
type ExportHandler struct {
	exportService services.ExportServicer
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(exportService services.ExportServicer) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func exportFilter(c *gin.Context) (services.TransactionFilter, error) {
	filter := services.TransactionFilter{}
	if v := c.Query("account_id"); v != "" {
		filter.AccountID = &v
	}
	if v := c.Query("category_id"); v != "" {
		filter.CategoryID = &v
	}
	if v := c.Query("type"); v != "" {
		t := models.TransactionType(v)
		filter.Type = &t
	}
	if v := c.Query("from_date"); v != "" {
		from, err := parseDate(v)
		if err != nil {
			return filter, err
		}
		filter.FromDate = &from
	}
	if v := c.Query("to_date"); v != "" {
		to, err := parseDate(v)
		if err != nil {
			return filter, err
		}
		to = to.Add(24*time.Hour - time.Nanosecond)
		filter.ToDate = &to
	}
	return filter, nil
}

func attachment(c *gin.Context, name, contentType string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, contentType, data)
}

// TransactionsXLSX downloads the filtered transactions as a workbook.
func (h *ExportHandler) TransactionsXLSX(c *gin.Context) {
	filter, err := exportFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	data, err := h.exportService.TransactionsXLSX(filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	name := "transactions-" + time.Now().Format("2006-01-02") + ".xlsx"
	attachment(c, name, xlsxContentType, data)
}

// TransactionsCSV downloads the filtered transactions as CSV.
func (h *ExportHandler) TransactionsCSV(c *gin.Context) {
	filter, err := exportFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	data, err := h.exportService.TransactionsCSV(filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	name := "transactions-" + time.Now().Format("2006-01-02") + ".csv"
	attachment(c, name, "text/csv", data)
}

// BalanceSheetXLSX downloads the balance sheet as a workbook.
func (h *ExportHandler) BalanceSheetXLSX(c *gin.Context) {
	asOf := time.Now()
	if v := c.Query("as_of"); v != "" {
		parsed, err := parseDate(v)
		if err != nil {
			respondWithError(c, err)
			return
		}
		asOf = parsed.Add(24*time.Hour - time.Nanosecond)
	}

	data, err := h.exportService.BalanceSheetXLSX(asOf)
	if err != nil {
		respondWithError(c, err)
		return
	}

	name := "balance-sheet-" + time.Now().Format("2006-01-02") + ".xlsx"
	attachment(c, name, xlsxContentType, data)
}
