package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/gorm"

	"paisa/internal/models"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestAccount creates an account of the given category with the given
// opening balance.
func CreateTestAccount(t *testing.T, db *gorm.DB, category models.AccountCategory, openingBalance int64) *models.Account {
	t.Helper()

	account := &models.Account{
		Name:           fmt.Sprintf("Account %d", nextID()),
		Category:       category,
		OpeningBalance: openingBalance,
		CurrentBalance: openingBalance,
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test account: %v", err)
	}
	return account
}

// CreateTestCategory creates a top-level category of the given type.
func CreateTestCategory(t *testing.T, db *gorm.DB, categoryType models.CategoryType) *models.Category {
	t.Helper()

	category := &models.Category{
		Name: fmt.Sprintf("Category %d", nextID()),
		Type: categoryType,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestSubcategory creates a category under the given parent.
func CreateTestSubcategory(t *testing.T, db *gorm.DB, parent *models.Category) *models.Category {
	t.Helper()

	category := &models.Category{
		Name:     fmt.Sprintf("Subcategory %d", nextID()),
		Type:     parent.Type,
		ParentID: &parent.ID,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test subcategory: %v", err)
	}
	return category
}

// CreateTestTransaction inserts a transaction row directly, without applying
// any balance effect. Use the transaction service when the effect matters.
func CreateTestTransaction(t *testing.T, db *gorm.DB, accountID string, txnType models.TransactionType, amount int64, date time.Time) *models.Transaction {
	t.Helper()

	txn := &models.Transaction{
		Date:        date,
		Description: fmt.Sprintf("Transaction %d", nextID()),
		Amount:      amount,
		Type:        txnType,
		AccountID:   accountID,
		Source:      models.SourceManual,
	}
	if err := db.Create(txn).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return txn
}
