package database

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"paisa/internal/config"
	"paisa/internal/logger"
	"paisa/internal/models"
)

// AllModels is the full set of GORM models managed by Migrate.
var AllModels = []interface{}{
	&models.Credential{},
	&models.Session{},
	&models.Account{},
	&models.Category{},
	&models.Transaction{},
	&models.Loan{},
	&models.LoanRepayment{},
	&models.TagPattern{},
}

// Manager handles database operations
type Manager struct {
	db *gorm.DB
}

// NewManager opens a database connection for the configured driver.
// sqlite is the default; postgres is available for setups that want it.
func NewManager(cfg *config.Config) (*Manager, error) {
	var (
		db  *gorm.DB
		err error
	)

	switch cfg.DBDriver {
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode)
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	case "sqlite", "":
		db, err = gorm.Open(sqlite.Open(cfg.DBPath), &gorm.Config{})
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return &Manager{db: db}, nil
}

// Migrate brings the schema up to date.
func (m *Manager) Migrate() error {
	logger.Get().Info("Running database migrations...")
	if err := m.db.AutoMigrate(AllModels...); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Get().Info("Database migrations completed successfully")
	return nil
}

// DB returns the underlying GORM database instance
func (m *Manager) DB() *gorm.DB {
	return m.db
}
