package services

import (
	"sort"
	"time"

	"gorm.io/gorm"

	apperrors "paisa/internal/errors"
	"paisa/internal/ledger"
	"paisa/internal/models"
)

// reportService produces aggregated views over accounts and transactions.
// Everything here is read-only.
type reportService struct {
	db         *gorm.DB
	categories CategoryServicer
}

// NewReportService creates a new ReportServicer.
func NewReportService(db *gorm.DB, categories CategoryServicer) ReportServicer {
	return &reportService{db: db, categories: categories}
}

// GetDashboard builds the landing-page summary: net worth, current-month
// income and expense totals, the top expense categories of the month, and
// the most recent transactions.
func (s *reportService) GetDashboard(now time.Time) (*Dashboard, error) {
	var accounts []models.Account
	if err := s.db.Order("name ASC").Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	dash := &Dashboard{Accounts: []AccountBalance{}}
	for _, a := range accounts {
		dash.Accounts = append(dash.Accounts, AccountBalance{
			AccountID: a.ID,
			Name:      a.Name,
			Category:  a.Category,
			Balance:   a.CurrentBalance,
		})
		if a.Type == models.AccountTypeLiability {
			dash.TotalLiabilities += a.CurrentBalance
		} else {
			dash.TotalAssets += a.CurrentBalance
		}
	}
	dash.NetWorth = dash.TotalAssets - dash.TotalLiabilities

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	type sumRow struct {
		Type  models.TransactionType
		Total int64
	}
	var sums []sumRow
	if err := s.db.Model(&models.Transaction{}).
		Select("type, COALESCE(SUM(amount), 0) AS total").
		Where("date >= ? AND date <= ? AND type IN ?", monthStart, now,
			[]models.TransactionType{models.TransactionTypeIncome, models.TransactionTypeExpense}).
		Group("type").
		Scan(&sums).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for _, row := range sums {
		if row.Type == models.TransactionTypeIncome {
			dash.MonthIncome = row.Total
		} else {
			dash.MonthExpense = row.Total
		}
	}

	topExpenses, err := s.categorySummaries(models.TransactionTypeExpense, monthStart, now)
	if err != nil {
		return nil, err
	}
	if len(topExpenses) > 5 {
		topExpenses = topExpenses[:5]
	}
	dash.TopExpenses = topExpenses

	var recent []models.Transaction
	if err := s.db.Preload("Account").
		Preload("PayeeAccount").
		Preload("Category").
		Order("date DESC, created_at DESC").
		Limit(10).
		Find(&recent).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	dash.Recent = recent

	return dash, nil
}

// balanceAsOf replays an account's balance at a point in time: opening
// balance, transaction effects dated on or before the cutoff, and principal
// repayment effects for loan-linked accounts.
func (s *reportService) balanceAsOf(account *models.Account, asOf time.Time) (int64, error) {
	balance := account.OpeningBalance

	var txns []models.Transaction
	if err := s.db.Where("(account_id = ? OR payee_account_id = ?) AND date <= ?",
		account.ID, account.ID, asOf).
		Find(&txns).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	for _, txn := range txns {
		effect := txn.Type
		if txn.Type == models.TransactionTypeTransfer {
			if txn.AccountID == account.ID {
				effect = models.TransactionTypeExpense
			} else {
				effect = models.TransactionTypeIncome
			}
		}
		delta, err := ledger.Delta(account.Type, effect, txn.Amount)
		if err != nil {
			return 0, err
		}
		balance += delta
	}

	if account.Category == models.AccountCategoryLoanReceivable ||
		account.Category == models.AccountCategoryLoanPayable {
		var loan models.Loan
		if err := s.db.Where("account_id = ?", account.ID).First(&loan).Error; err == nil {
			var repaid int64
			if err := s.db.Model(&models.LoanRepayment{}).
				Where("loan_id = ? AND is_interest = ? AND date <= ?", loan.ID, false, asOf).
				Select("COALESCE(SUM(amount), 0)").
				Scan(&repaid).Error; err != nil {
				return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			delta, err := ledger.Delta(account.Type, ledger.RepaymentEffect(loan.Type), repaid)
			if err != nil {
				return 0, err
			}
			balance += delta
		}
	}

	return balance, nil
}

// GetBalanceSheet groups account balances as of a date by balance-sheet side
// and account category.
func (s *reportService) GetBalanceSheet(asOf time.Time) (*BalanceSheet, error) {
	var accounts []models.Account
	if err := s.db.Order("name ASC").Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	sheet := &BalanceSheet{
		AsOf:        asOf,
		Assets:      map[models.AccountCategory][]AccountBalance{},
		Liabilities: map[models.AccountCategory][]AccountBalance{},
	}

	for i := range accounts {
		account := &accounts[i]
		balance, err := s.balanceAsOf(account, asOf)
		if err != nil {
			return nil, err
		}

		entry := AccountBalance{
			AccountID: account.ID,
			Name:      account.Name,
			Category:  account.Category,
			Balance:   balance,
		}
		if account.Type == models.AccountTypeLiability {
			sheet.Liabilities[account.Category] = append(sheet.Liabilities[account.Category], entry)
			sheet.TotalLiabilities += balance
		} else {
			sheet.Assets[account.Category] = append(sheet.Assets[account.Category], entry)
			sheet.TotalAssets += balance
		}
	}

	sheet.NetWorth = sheet.TotalAssets - sheet.TotalLiabilities
	return sheet, nil
}

// categorySummaries aggregates one transaction type over a period by
// category, largest total first. Subcategories are reported under their
// "Parent > Child" display name; untagged transactions land in Uncategorized.
func (s *reportService) categorySummaries(txnType models.TransactionType, from, to time.Time) ([]CategorySummary, error) {
	var txns []models.Transaction
	if err := s.db.Where("type = ? AND date >= ? AND date <= ?", txnType, from, to).
		Preload("Category.Parent").
		Find(&txns).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	byID := map[string]*CategorySummary{}
	for _, txn := range txns {
		key := ""
		name := "Uncategorized"
		icon, color := "", ""
		if txn.CategoryID != nil && txn.Category != nil {
			key = *txn.CategoryID
			name = txn.Category.Name
			if txn.Category.Parent != nil {
				name = txn.Category.Parent.Name + " > " + txn.Category.Name
			}
			icon = txn.Category.Icon
			color = txn.Category.Color
		}

		summary, ok := byID[key]
		if !ok {
			summary = &CategorySummary{CategoryID: key, Name: name, Icon: icon, Color: color}
			byID[key] = summary
		}
		summary.Total += txn.Amount
		summary.Count++
	}

	summaries := make([]CategorySummary, 0, len(byID))
	for _, summary := range byID {
		summaries = append(summaries, *summary)
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].Total != summaries[j].Total {
			return summaries[i].Total > summaries[j].Total
		}
		return summaries[i].Name < summaries[j].Name
	})
	return summaries, nil
}

// GetIncomeExpense breaks down income and expenses by category over a period.
// The totals always equal the sum of their breakdown rows.
func (s *reportService) GetIncomeExpense(from, to time.Time) (*IncomeExpenseReport, error) {
	income, err := s.categorySummaries(models.TransactionTypeIncome, from, to)
	if err != nil {
		return nil, err
	}
	expenses, err := s.categorySummaries(models.TransactionTypeExpense, from, to)
	if err != nil {
		return nil, err
	}

	report := &IncomeExpenseReport{
		FromDate: from,
		ToDate:   to,
		Income:   income,
		Expenses: expenses,
	}
	for _, summary := range income {
		report.TotalIncome += summary.Total
	}
	for _, summary := range expenses {
		report.TotalExpense += summary.Total
	}
	report.Net = report.TotalIncome - report.TotalExpense
	return report, nil
}

// GetCategoryReport summarizes one category (including its children) over a
// period and returns the matching transactions.
func (s *reportService) GetCategoryReport(categoryID string, from, to time.Time) (*CategorySummary, []models.Transaction, error) {
	category, err := s.categories.GetCategoryByID(categoryID)
	if err != nil {
		return nil, nil, err
	}

	var childIDs []string
	if err := s.db.Model(&models.Category{}).
		Where("parent_id = ?", categoryID).
		Pluck("id", &childIDs).Error; err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	ids := append([]string{categoryID}, childIDs...)

	var txns []models.Transaction
	if err := s.db.Where("category_id IN ? AND date >= ? AND date <= ?", ids, from, to).
		Preload("Account").
		Preload("Category").
		Order("date DESC, created_at ASC").
		Find(&txns).Error; err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	name, err := s.categories.DisplayName(categoryID)
	if err != nil {
		name = category.Name
	}

	summary := &CategorySummary{
		CategoryID: categoryID,
		Name:       name,
		Icon:       category.Icon,
		Color:      category.Color,
	}
	for _, txn := range txns {
		summary.Total += txn.Amount
		summary.Count++
	}

	return summary, txns, nil
}
