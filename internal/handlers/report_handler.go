package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"paisa/internal/services"
)

// ReportHandler handles aggregated reporting requests.
type ReportHandler struct {
	reportService services.ReportServicer
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService services.ReportServicer) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// periodFromQuery reads from_date/to_date, defaulting to the current month.
func periodFromQuery(c *gin.Context) (time.Time, time.Time, error) {
	now := time.Now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	to := now

	if v := c.Query("from_date"); v != "" {
		parsed, err := parseDate(v)
		if err != nil {
			return from, to, err
		}
		from = parsed
	}
	if v := c.Query("to_date"); v != "" {
		parsed, err := parseDate(v)
		if err != nil {
			return from, to, err
		}
		// Include the whole to_date day.
		to = parsed.Add(24*time.Hour - time.Nanosecond)
	}
	return from, to, nil
}

// Dashboard returns the landing-page summary.
func (h *ReportHandler) Dashboard(c *gin.Context) {
	dash, err := h.reportService.GetDashboard(time.Now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dash)
}

// BalanceSheet returns grouped account balances as of a date.
func (h *ReportHandler) BalanceSheet(c *gin.Context) {
	asOf := time.Now()
	if v := c.Query("as_of"); v != "" {
		parsed, err := parseDate(v)
		if err != nil {
			respondWithError(c, err)
			return
		}
		asOf = parsed.Add(24*time.Hour - time.Nanosecond)
	}

	sheet, err := h.reportService.GetBalanceSheet(asOf)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, sheet)
}

// IncomeExpense returns the income and expense breakdown for a period.
func (h *ReportHandler) IncomeExpense(c *gin.Context) {
	from, to, err := periodFromQuery(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	report, err := h.reportService.GetIncomeExpense(from, to)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// CategoryReport returns one category's summary and transactions for a period.
func (h *ReportHandler) CategoryReport(c *gin.Context) {
	from, to, err := periodFromQuery(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, txns, err := h.reportService.GetCategoryReport(c.Param("id"), from, to)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"summary":      summary,
		"transactions": txns,
	})
}
