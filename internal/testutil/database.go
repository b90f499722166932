// Package testutil provides test helpers for setting up in-memory databases,
// creating fixtures, and making assertions.
package testutil

import (
	"testing"

	"kopilka/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// allModels is the list of all GORM models to auto-migrate in tests.
var allModels = []interface{}{
	&models.Category{},
	&models.Transaction{},
}

// DefaultCategories mirrors the shared set seeded by the init migration.
var DefaultCategories = []string{"ПТТ", "ПРИОРИТЕТ", "СТАНКИ", "СКИПЕТР"}

// SetupTestDB creates an in-memory SQLite database with all models migrated
// and the shared default categories seeded. Each call returns an isolated
// database: the connection pool is pinned to a single connection so the
// in-memory store is not duplicated per connection.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get underlying DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	for _, name := range DefaultCategories {
		category := models.Category{UserID: models.SharedOwnerID, Name: name}
		if err := db.Create(&category).Error; err != nil {
			t.Fatalf("failed to seed shared category %s: %v", name, err)
		}
	}

	return db
}

// TeardownTestDB closes the underlying database connection.
func TeardownTestDB(t *testing.T, db *gorm.DB) {
	t.Helper()

	sqlDB, err := db.DB()
	if err != nil {
		t.Errorf("failed to get underlying DB for teardown: %v", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		t.Errorf("failed to close test database: %v", err)
	}
}
