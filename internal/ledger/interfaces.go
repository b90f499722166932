package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"kopilka/internal/models"
)

// CategorySum is one row of a statistics view: a category name and the
// exact decimal sum of its transactions over the queried period.
type CategorySum struct {
	Name  string
	Total decimal.Decimal
}

// Storer defines the contract for the ledger persistence layer. All
// operations are scoped to the requesting user: a user sees the shared
// categories plus their own, and can only touch their own transactions.
type Storer interface {
	// Categories returns the names visible to the user (private plus
	// shared), alphabetically ordered, collapsed by name.
	Categories(userID int64) ([]string, error)

	// AddCategory persists a new private category. The name is upper-cased
	// first; ErrCategoryExists is returned when a category with that name
	// is already visible to the user.
	AddCategory(userID int64, name string) (*models.Category, error)

	// ResolveCategory looks the name up case-insensitively within the
	// user's visible set.
	ResolveCategory(userID int64, name string) (*models.Category, error)

	// AddTransaction resolves the category and appends a transaction row.
	AddTransaction(userID int64, categoryName string, amount decimal.Decimal, date time.Time) (*models.Transaction, error)

	// CategoryTotal sums all transaction amounts for the category and user.
	// It returns zero when the category does not resolve or has no rows.
	CategoryTotal(userID int64, categoryName string) (decimal.Decimal, error)

	// MonthTotal sums the user's transactions dated within the given
	// calendar month.
	MonthTotal(userID int64, year int, month time.Month) (decimal.Decimal, error)

	// LifetimeTotal sums all of the user's transactions.
	LifetimeTotal(userID int64) (decimal.Decimal, error)

	// MonthStatistics returns per-category sums for the month, zero totals
	// excluded, descending by total, ties in category insertion order.
	MonthStatistics(userID int64, year int, month time.Month) ([]CategorySum, error)

	// LifetimeStatistics is MonthStatistics without the calendar filter.
	LifetimeStatistics(userID int64) ([]CategorySum, error)

	// RecentTransactions returns the user's most recently created
	// transactions, newest first, with the category preloaded.
	RecentTransactions(userID int64, limit int) ([]models.Transaction, error)

	// Transaction is an ownership-checked lookup by id.
	Transaction(id uint, userID int64) (*models.Transaction, error)

	// DeleteTransaction deletes the row only if it belongs to the user;
	// ErrTransactionNotFound otherwise, with no partial side effects.
	DeleteTransaction(id uint, userID int64) error
}
