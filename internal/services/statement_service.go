package services

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	apperrors "paisa/internal/errors"
	"paisa/internal/logger"
	"paisa/internal/models"
)

// statementService parses uploaded bank statement workbooks into transaction
// candidates. Parsing is read-only: nothing is stored until the user confirms
// the import through SaveImported.
type statementService struct {
	autotag AutotagServicer
}

// NewStatementService creates a new StatementServicer.
func NewStatementService(autotag AutotagServicer) StatementServicer {
	return &statementService{autotag: autotag}
}

// statementColumns holds the resolved column index for each field of
// interest, -1 when the statement does not carry that column.
type statementColumns struct {
	date       int
	narration  int
	reference  int
	withdrawal int
	deposit    int
}

// dateLayouts are tried in order. Bank exports in the wild use two-digit and
// four-digit years interchangeably.
var dateLayouts = []string{
	"02/01/06",
	"02/01/2006",
	"2006-01-02",
	"02-01-2006",
	"02 Jan 2006",
}

func parseStatementDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// parseAmount converts a statement amount cell to paise. Thousands
// separators are tolerated; an empty cell means zero.
func parseAmount(s string) (int64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("unrecognized amount %q", s)
	}
	return d.Shift(2).Round(0).IntPart(), nil
}

// findHeader locates the header row and maps the columns. Bank exports put
// branding and account details above the table, so the header is found by
// looking for a row containing both a date and a narration column.
func findHeader(rows [][]string) (headerIdx int, cols statementColumns, ok bool) {
	for i, row := range rows {
		cols = statementColumns{date: -1, narration: -1, reference: -1, withdrawal: -1, deposit: -1}
		for j, cell := range row {
			h := strings.ToLower(strings.TrimSpace(cell))
			switch {
			case h == "date" || strings.HasPrefix(h, "txn date") || strings.HasPrefix(h, "transaction date") || h == "value date":
				if cols.date == -1 {
					cols.date = j
				}
			case strings.Contains(h, "narration") || strings.Contains(h, "description") || strings.Contains(h, "particulars"):
				cols.narration = j
			case strings.Contains(h, "ref"):
				cols.reference = j
			case strings.Contains(h, "withdrawal") || strings.Contains(h, "debit"):
				cols.withdrawal = j
			case strings.Contains(h, "deposit") || strings.Contains(h, "credit"):
				cols.deposit = j
			}
		}
		if cols.date != -1 && cols.narration != -1 && (cols.withdrawal != -1 || cols.deposit != -1) {
			return i, cols, true
		}
	}
	return 0, statementColumns{}, false
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// ParseStatement reads an XLSX bank statement and returns transaction
// candidates plus per-row warnings for everything it had to skip. Withdrawals
// become expenses, deposits become income; rows with both or neither amount
// are skipped. Each candidate is run through the learned tag patterns.
func (s *statementService) ParseStatement(r io.Reader) (*StatementParseResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrImportFailed, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrImportFailed, "workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrImportFailed, err)
	}

	headerIdx, cols, ok := findHeader(rows)
	if !ok {
		return nil, apperrors.WithMessage(apperrors.ErrImportFailed, "could not find a header row with date and narration columns")
	}

	result := &StatementParseResult{Rows: []StatementRow{}}
	for i := headerIdx + 1; i < len(rows); i++ {
		row := rows[i]
		dateCell := cellAt(row, cols.date)
		narration := cellAt(row, cols.narration)
		if dateCell == "" && narration == "" {
			continue // trailing blank or footer rows
		}

		date, err := parseStatementDate(dateCell)
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("row %d skipped: %v", i+1, err))
			continue
		}

		withdrawal, err := parseAmount(cellAt(row, cols.withdrawal))
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("row %d skipped: %v", i+1, err))
			continue
		}
		deposit, err := parseAmount(cellAt(row, cols.deposit))
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("row %d skipped: %v", i+1, err))
			continue
		}

		var (
			amount  int64
			txnType models.TransactionType
		)
		switch {
		case withdrawal > 0 && deposit > 0:
			result.Warnings = append(result.Warnings, fmt.Sprintf("row %d skipped: both withdrawal and deposit present", i+1))
			continue
		case withdrawal > 0:
			amount, txnType = withdrawal, models.TransactionTypeExpense
		case deposit > 0:
			amount, txnType = deposit, models.TransactionTypeIncome
		default:
			result.Warnings = append(result.Warnings, fmt.Sprintf("row %d skipped: no amount", i+1))
			continue
		}

		candidate := StatementRow{
			Date:        date,
			Description: narration,
			Amount:      amount,
			Type:        txnType,
			Reference:   cellAt(row, cols.reference),
		}

		if narration != "" {
			match, err := s.autotag.Match(narration)
			if err != nil {
				return nil, err
			}
			if match != nil && match.CategoryID != nil {
				candidate.CategoryID = match.CategoryID
				candidate.Tagged = true
			}
		}

		result.Rows = append(result.Rows, candidate)
	}

	logger.Get().Infow("Statement parsed",
		"rows", len(result.Rows), "warnings", len(result.Warnings))
	return result, nil
}
