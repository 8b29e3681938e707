package services

import (
	"io"
	"time"

	"paisa/internal/models"
	"paisa/internal/pagination"
)

// AuthServicer defines the contract for password and session management.
type AuthServicer interface {
	PasswordSet() (bool, error)
	SetupPassword(password string) error
	ChangePassword(currentPassword, newPassword string) error
	Login(password string) (token string, expiresAt time.Time, err error)
	Logout(token string) error
	ValidateToken(token string) error
	ResetAllData(password string) error
}

// AccountServicer defines the contract for account-related business logic.
type AccountServicer interface {
	CreateAccount(name string, category models.AccountCategory, openingBalance int64, description, personName string) (*models.Account, error)
	GetAccounts(category *models.AccountCategory, accountType *models.AccountType) ([]models.Account, error)
	GetAccountByID(id string) (*models.Account, error)
	UpdateAccount(id string, name, description *string) (*models.Account, error)
	DeleteAccount(id string) error
	GetOrCreateCashAccount() (*models.Account, error)
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(name string, categoryType models.CategoryType, icon, color string, parentID *string) (*models.Category, error)
	GetCategories(categoryType *models.CategoryType) ([]models.Category, error)
	GetCategoryTree(categoryType *models.CategoryType) ([]models.Category, error)
	GetCategoryByID(id string) (*models.Category, error)
	UpdateCategory(id string, name, icon, color *string, parentID *string) (*models.Category, error)
	DeleteCategory(id string) error
	DisplayName(id string) (string, error)
}

// AutotagServicer defines the contract for learned description-to-tag rules.
type AutotagServicer interface {
	Match(description string) (*models.TagPattern, error)
	Learn(description string, categoryID, payeeAccountID *string) error
	GetPatterns(page pagination.PageRequest) (*pagination.PageResponse[models.TagPattern], error)
	DeletePattern(id string) error
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	AccountID  *string
	CategoryID *string
	Type       *models.TransactionType
	FromDate   *time.Time
	ToDate     *time.Time
	Untagged   bool
	Search     string
}

// TransactionInput carries the caller-editable fields of a transaction.
type TransactionInput struct {
	Date        time.Time
	Description string
	Amount      int64
	Type        models.TransactionType
	AccountID   string
	CategoryID  *string
	Reference   string
	Notes       string
}

// TransactionUpdate carries optional fields for a partial update.
type TransactionUpdate struct {
	Date        *time.Time
	Description *string
	Amount      *int64
	Type        *models.TransactionType
	AccountID   *string
	CategoryID  *string
	ClearTag    bool
	Reference   *string
	Notes       *string
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(in TransactionInput) (*models.Transaction, error)
	CreateTransfer(fromAccountID, toAccountID string, amount int64, date time.Time, description, notes string) (*models.Transaction, error)
	GetTransactions(page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(id string) (*models.Transaction, error)
	UpdateTransaction(id string, in TransactionUpdate) (*models.Transaction, error)
	DeleteTransaction(id string) error
	BulkTag(ids []string, categoryID, payeeAccountID *string) (int, error)
	SaveImported(accountID string, rows []StatementRow) (*ImportResult, error)
}

// StatementRow is one parsed row of an uploaded bank statement, expressed as
// a transaction candidate. It is transient: nothing is stored until the user
// confirms the import.
type StatementRow struct {
	Date        time.Time              `json:"date"`
	Description string                 `json:"description"`
	Amount      int64                  `json:"amount"`
	Type        models.TransactionType `json:"type"`
	Reference   string                 `json:"reference"`
	CategoryID  *string                `json:"category_id,omitempty"`
	Tagged      bool                   `json:"tagged"`
}

// StatementParseResult is the outcome of parsing an uploaded statement.
type StatementParseResult struct {
	Rows     []StatementRow `json:"rows"`
	Warnings []string       `json:"warnings"`
}

// ImportResult summarizes a confirmed statement import.
type ImportResult struct {
	Imported int `json:"imported"`
	Tagged   int `json:"tagged"`
}

// StatementServicer defines the contract for bank statement parsing.
type StatementServicer interface {
	ParseStatement(r io.Reader) (*StatementParseResult, error)
}

// LoanInput carries the fields needed to open a loan.
type LoanInput struct {
	PersonName   string
	Type         models.LoanType
	Principal    int64
	InterestRate float64
	StartDate    time.Time
	Notes        string
}

// LoanServicer defines the contract for loan-related business logic.
type LoanServicer interface {
	CreateLoan(in LoanInput) (*models.Loan, error)
	GetLoans(loanType *models.LoanType) ([]models.Loan, error)
	GetLoanByID(id string) (*models.Loan, error)
	UpdateLoan(id string, personName, notes *string, interestRate *float64) (*models.Loan, error)
	DeleteLoan(id string) error
	RecordRepayment(loanID string, amount int64, date time.Time, isInterest bool, notes string) (*models.LoanRepayment, error)
	AccruedInterest(loanID string, mode models.InterestMode, asOf time.Time) (int64, error)
}

// CategorySummary is one category's share of an income/expense breakdown.
type CategorySummary struct {
	CategoryID string `json:"category_id"`
	Name       string `json:"name"`
	Icon       string `json:"icon"`
	Color      string `json:"color"`
	Total      int64  `json:"total"`
	Count      int64  `json:"count"`
}

// AccountBalance is one account line on the balance sheet.
type AccountBalance struct {
	AccountID string                 `json:"account_id"`
	Name      string                 `json:"name"`
	Category  models.AccountCategory `json:"category"`
	Balance   int64                  `json:"balance"`
}

// BalanceSheet groups account balances by balance-sheet side.
type BalanceSheet struct {
	AsOf             time.Time                                   `json:"as_of"`
	Assets           map[models.AccountCategory][]AccountBalance `json:"assets"`
	Liabilities      map[models.AccountCategory][]AccountBalance `json:"liabilities"`
	TotalAssets      int64                                       `json:"total_assets"`
	TotalLiabilities int64                                       `json:"total_liabilities"`
	NetWorth         int64                                       `json:"net_worth"`
}

// IncomeExpenseReport breaks down income and expenses by category over a period.
type IncomeExpenseReport struct {
	FromDate     time.Time         `json:"from_date"`
	ToDate       time.Time         `json:"to_date"`
	TotalIncome  int64             `json:"total_income"`
	TotalExpense int64             `json:"total_expense"`
	Net          int64             `json:"net"`
	Income       []CategorySummary `json:"income"`
	Expenses     []CategorySummary `json:"expenses"`
}

// Dashboard is the landing-page summary.
type Dashboard struct {
	NetWorth         int64                `json:"net_worth"`
	TotalAssets      int64                `json:"total_assets"`
	TotalLiabilities int64                `json:"total_liabilities"`
	MonthIncome      int64                `json:"month_income"`
	MonthExpense     int64                `json:"month_expense"`
	Accounts         []AccountBalance     `json:"accounts"`
	TopExpenses      []CategorySummary    `json:"top_expenses"`
	Recent           []models.Transaction `json:"recent_transactions"`
}

// ReportServicer defines the contract for aggregated reporting.
type ReportServicer interface {
	GetDashboard(now time.Time) (*Dashboard, error)
	GetBalanceSheet(asOf time.Time) (*BalanceSheet, error)
	GetIncomeExpense(from, to time.Time) (*IncomeExpenseReport, error)
	GetCategoryReport(categoryID string, from, to time.Time) (*CategorySummary, []models.Transaction, error)
}

// ExportServicer defines the contract for report/transaction downloads.
type ExportServicer interface {
	TransactionsXLSX(filter TransactionFilter) ([]byte, error)
	TransactionsCSV(filter TransactionFilter) ([]byte, error)
	BalanceSheetXLSX(asOf time.Time) ([]byte, error)
}
