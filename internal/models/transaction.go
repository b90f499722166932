package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction represents a single recorded income entry. Amounts are exact
// decimals stored in a TEXT column (numeric affinity would round the value
// through a binary float); aggregation always happens in Go, never via SQL
// SUM. Transactions are append-only: created by a completed add flow,
// deleted by explicit confirmation, never updated in place.
type Transaction struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	UserID     int64           `gorm:"not null;index" json:"user_id"`
	CategoryID uint            `gorm:"not null" json:"category_id"`
	Amount     decimal.Decimal `gorm:"type:text;not null" json:"amount"`
	Date       time.Time       `gorm:"type:date;not null" json:"date"`
	CreatedAt  time.Time       `json:"created_at"`

	// Relationships
	Category Category `gorm:"foreignKey:CategoryID" json:"category"`
}
