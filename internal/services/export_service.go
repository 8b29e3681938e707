package services

import (
	"fmt"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	apperrors "paisa/internal/errors"
	"paisa/internal/models"
)

// exportService renders transactions and reports as downloadable files.
type exportService struct {
	db      *gorm.DB
	reports ReportServicer
}

// NewExportService creates a new ExportServicer.
func NewExportService(db *gorm.DB, reports ReportServicer) ExportServicer {
	return &exportService{db: db, reports: reports}
}

const exportDateLayout = "02/01/2006"

// rupees renders a paise amount as a decimal rupee value for spreadsheets.
func rupees(paise int64) float64 {
	return float64(paise) / 100
}

func (s *exportService) exportRows(filter TransactionFilter) ([]models.Transaction, error) {
	query, err := transactionFilterQuery(s.db, filter)
	if err != nil {
		return nil, err
	}

	var txns []models.Transaction
	if err := query.Preload("Account").
		Preload("PayeeAccount").
		Preload("Category.Parent").
		Order("date DESC, created_at ASC").
		Find(&txns).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return txns, nil
}

func categoryDisplay(txn *models.Transaction) string {
	if txn.Category == nil {
		return ""
	}
	if txn.Category.Parent != nil {
		return txn.Category.Parent.Name + " > " + txn.Category.Name
	}
	return txn.Category.Name
}

func payeeDisplay(txn *models.Transaction) string {
	if txn.PayeeAccount == nil {
		return ""
	}
	return txn.PayeeAccount.Name
}

// headerStyle returns the shared header style: bold white text on indigo.
func headerStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4F46E5"}, Pattern: 1},
	})
}

// TransactionsXLSX renders the filtered transactions as a styled workbook.
func (s *exportService) TransactionsXLSX(filter TransactionFilter) ([]byte, error) {
	txns, err := s.exportRows(filter)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Transactions"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Date", "Description", "Category", "Account", "Payee Account", "Type", "Amount", "Reference", "Notes"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	style, err := headerStyle(f)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	f.SetCellStyle(sheet, "A1", last, style)
	f.SetColWidth(sheet, "A", "A", 12)
	f.SetColWidth(sheet, "B", "B", 40)
	f.SetColWidth(sheet, "C", "E", 22)

	for i := range txns {
		txn := &txns[i]
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), txn.Date.Format(exportDateLayout))
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), txn.Description)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), categoryDisplay(txn))
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), txn.Account.Name)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), payeeDisplay(txn))
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), string(txn.Type))
		f.SetCellValue(sheet, fmt.Sprintf("G%d", row), rupees(txn.Amount))
		f.SetCellValue(sheet, fmt.Sprintf("H%d", row), txn.Reference)
		f.SetCellValue(sheet, fmt.Sprintf("I%d", row), txn.Notes)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return buf.Bytes(), nil
}

// transactionCSVRow is the CSV projection of a transaction.
type transactionCSVRow struct {
	Date        string  `csv:"Date"`
	Description string  `csv:"Description"`
	Category    string  `csv:"Category"`
	Account     string  `csv:"Account"`
	Payee       string  `csv:"Payee Account"`
	Type        string  `csv:"Type"`
	Amount      float64 `csv:"Amount"`
	Reference   string  `csv:"Reference"`
	Notes       string  `csv:"Notes"`
}

// TransactionsCSV renders the filtered transactions as CSV. A UTF-8 BOM is
// prepended so spreadsheet apps detect the encoding.
func (s *exportService) TransactionsCSV(filter TransactionFilter) ([]byte, error) {
	txns, err := s.exportRows(filter)
	if err != nil {
		return nil, err
	}

	rows := make([]transactionCSVRow, 0, len(txns))
	for i := range txns {
		txn := &txns[i]
		rows = append(rows, transactionCSVRow{
			Date:        txn.Date.Format(exportDateLayout),
			Description: txn.Description,
			Category:    categoryDisplay(txn),
			Account:     txn.Account.Name,
			Payee:       payeeDisplay(txn),
			Type:        string(txn.Type),
			Amount:      rupees(txn.Amount),
			Reference:   txn.Reference,
			Notes:       txn.Notes,
		})
	}

	data, err := gocsv.MarshalBytes(&rows)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	bom := []byte{0xEF, 0xBB, 0xBF}
	return append(bom, data...), nil
}

// BalanceSheetXLSX renders the balance sheet as of a date as a styled
// workbook: assets, then liabilities, then net worth.
func (s *exportService) BalanceSheetXLSX(asOf time.Time) ([]byte, error) {
	sheetData, err := s.reports.GetBalanceSheet(asOf)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Balance Sheet"
	f.SetSheetName("Sheet1", sheet)

	style, err := headerStyle(f)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	f.SetCellValue(sheet, "A1", "Balance Sheet as of "+asOf.Format(exportDateLayout))
	f.SetColWidth(sheet, "A", "A", 36)
	f.SetColWidth(sheet, "B", "C", 18)

	row := 3
	writeSection := func(title string, groups map[models.AccountCategory][]AccountBalance, total int64) {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), title)
		f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("C%d", row), style)
		row++
		for _, category := range []models.AccountCategory{
			models.AccountCategoryBank,
			models.AccountCategoryCash,
			models.AccountCategoryInvestment,
			models.AccountCategoryCreditCard,
			models.AccountCategoryLoanReceivable,
			models.AccountCategoryLoanPayable,
			models.AccountCategoryOther,
		} {
			for _, entry := range groups[category] {
				f.SetCellValue(sheet, fmt.Sprintf("A%d", row), entry.Name)
				f.SetCellValue(sheet, fmt.Sprintf("B%d", row), string(entry.Category))
				f.SetCellValue(sheet, fmt.Sprintf("C%d", row), rupees(entry.Balance))
				row++
			}
		}
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Total "+title)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), rupees(total))
		row += 2
	}

	writeSection("Assets", sheetData.Assets, sheetData.TotalAssets)
	writeSection("Liabilities", sheetData.Liabilities, sheetData.TotalLiabilities)

	f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Net Worth")
	f.SetCellValue(sheet, fmt.Sprintf("C%d", row), rupees(sheetData.NetWorth))
	f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("C%d", row), style)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return buf.Bytes(), nil
}
