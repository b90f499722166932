package testutil

import (
	"sync/atomic"
	"testing"
	"time"

	"kopilka/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

// NextUserID returns a fresh user id, unique within the test run.
func NextUserID() int64 {
	return counter.Add(1)
}

// CreateTestCategory creates a private category for the user.
func CreateTestCategory(t *testing.T, db *gorm.DB, userID int64, name string) *models.Category {
	t.Helper()

	category := &models.Category{UserID: userID, Name: name}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestTransaction creates a transaction with the given decimal amount
// (as a string, e.g. "1000.50") dated on the given day.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID int64, categoryID uint, amount string, date time.Time) *models.Transaction {
	t.Helper()

	transaction := &models.Transaction{
		UserID:     userID,
		CategoryID: categoryID,
		Amount:     decimal.RequireFromString(amount),
		Date:       time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC),
	}
	if err := db.Create(transaction).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return transaction
}

// SharedCategoryID looks up the id of a seeded shared category by name.
func SharedCategoryID(t *testing.T, db *gorm.DB, name string) uint {
	t.Helper()

	var category models.Category
	if err := db.Where("user_id = ? AND name = ?", models.SharedOwnerID, name).
		First(&category).Error; err != nil {
		t.Fatalf("shared category %s not seeded: %v", name, err)
	}
	return category.ID
}
