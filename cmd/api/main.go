package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"paisa/internal/config"
	"paisa/internal/database"
	"paisa/internal/handlers"
	"paisa/internal/logger"
	"paisa/internal/middleware"
	"paisa/internal/services"
	"paisa/internal/validator"
)

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbManager, err := database.NewManager(appConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	if err := dbManager.Migrate(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	db := dbManager.DB()
	if err := services.SeedDefaults(db); err != nil {
		return fmt.Errorf("failed to seed defaults: %w", err)
	}

	validator.Register()

	// Services
	authService := services.NewAuthService(db, appConfig)
	accountService := services.NewAccountService(db)
	categoryService := services.NewCategoryService(db)
	autotagService := services.NewAutotagService(db)
	transactionService := services.NewTransactionService(db, autotagService)
	statementService := services.NewStatementService(autotagService)
	loanService := services.NewLoanService(db)
	reportService := services.NewReportService(db, categoryService)
	exportService := services.NewExportService(db, reportService)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	accountHandler := handlers.NewAccountHandler(accountService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	transactionHandler := handlers.NewTransactionHandler(transactionService)
	importHandler := handlers.NewImportHandler(statementService, transactionService)
	loanHandler := handlers.NewLoanHandler(loanService)
	reportHandler := handlers.NewReportHandler(reportService)
	exportHandler := handlers.NewExportHandler(exportService)
	tagPatternHandler := handlers.NewTagPatternHandler(autotagService)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.GET("/status", authHandler.Status)
	auth.POST("/setup", authHandler.Setup)
	auth.POST("/login", authHandler.Login)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(authService))

	protected.POST("/auth/logout", authHandler.Logout)
	protected.POST("/auth/change-password", authHandler.ChangePassword)
	protected.POST("/auth/reset-data", authHandler.ResetData)

	accounts := protected.Group("/accounts")
	accounts.POST("", accountHandler.CreateAccount)
	accounts.GET("", accountHandler.ListAccounts)
	accounts.GET("/:id", accountHandler.GetAccount)
	accounts.PUT("/:id", accountHandler.UpdateAccount)
	accounts.DELETE("/:id", accountHandler.DeleteAccount)

	categories := protected.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.ListCategories)
	categories.GET("/:id", categoryHandler.GetCategory)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.POST("/transfer", transactionHandler.CreateTransfer)
	transactions.GET("", transactionHandler.ListTransactions)
	transactions.GET("/:id", transactionHandler.GetTransaction)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)
	transactions.POST("/bulk-tag", transactionHandler.BulkTag)

	importGroup := protected.Group("/import")
	importGroup.POST("/statement", importHandler.UploadStatement)
	importGroup.POST("/confirm", importHandler.ConfirmImport)

	loans := protected.Group("/loans")
	loans.POST("", loanHandler.CreateLoan)
	loans.GET("", loanHandler.ListLoans)
	loans.GET("/:id", loanHandler.GetLoan)
	loans.PUT("/:id", loanHandler.UpdateLoan)
	loans.DELETE("/:id", loanHandler.DeleteLoan)
	loans.POST("/:id/repayments", loanHandler.RecordRepayment)
	loans.GET("/:id/interest", loanHandler.GetInterest)

	reports := protected.Group("/reports")
	reports.GET("/dashboard", reportHandler.Dashboard)
	reports.GET("/balance-sheet", reportHandler.BalanceSheet)
	reports.GET("/income-expense", reportHandler.IncomeExpense)
	reports.GET("/category/:id", reportHandler.CategoryReport)

	export := protected.Group("/export")
	export.GET("/transactions.xlsx", exportHandler.TransactionsXLSX)
	export.GET("/transactions.csv", exportHandler.TransactionsCSV)
	export.GET("/balance-sheet.xlsx", exportHandler.BalanceSheetXLSX)

	patterns := protected.Group("/tag-patterns")
	patterns.GET("", tagPatternHandler.ListPatterns)
	patterns.DELETE("/:id", tagPatternHandler.DeletePattern)

	log.Infof("Starting Paisa server on port %s", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
