package ledger

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "kopilka/internal/errors"
	"kopilka/internal/models"
)

// store is the GORM-backed implementation of Storer.
type store struct {
	db *gorm.DB
}

// NewStore creates a new Storer backed by the given database.
func NewStore(db *gorm.DB) Storer {
	return &store{db: db}
}

// NormalizeName returns the canonical form of a category name: surrounding
// whitespace dropped, then upper-cased. Matching is case-insensitive via
// upper-casing, as are stored names.
func NormalizeName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// visible scopes a query to the categories the user can see.
func (s *store) visible(userID int64) *gorm.DB {
	return s.db.Model(&models.Category{}).
		Where("user_id IN ?", []int64{userID, models.SharedOwnerID})
}

// Categories returns the names visible to the user, alphabetically ordered.
func (s *store) Categories(userID int64) ([]string, error) {
	var names []string
	if err := s.visible(userID).
		Distinct().
		Order("name").
		Pluck("name", &names).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err)
	}
	return names, nil
}

// AddCategory persists a new private category for the user.
func (s *store) AddCategory(userID int64, name string) (*models.Category, error) {
	normalized := NormalizeName(name)
	if normalized == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}

	category := &models.Category{UserID: userID, Name: normalized}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Category{}).
			Where("user_id IN ? AND name = ?", []int64{userID, models.SharedOwnerID}, normalized).
			Count(&count).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrStorage, err)
		}
		if count > 0 {
			return apperrors.ErrCategoryExists
		}
		if err := tx.Create(category).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrStorage, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

// ResolveCategory looks the name up within the user's visible set. A
// private category shadows a shared one with the same name.
func (s *store) ResolveCategory(userID int64, name string) (*models.Category, error) {
	var categories []models.Category
	if err := s.visible(userID).
		Where("name = ?", NormalizeName(name)).
		Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err)
	}
	if len(categories) == 0 {
		return nil, apperrors.ErrCategoryNotFound
	}

	for i := range categories {
		if !categories[i].Shared() {
			return &categories[i], nil
		}
	}
	return &categories[0], nil
}

// AddTransaction resolves the category and appends a transaction row.
func (s *store) AddTransaction(userID int64, categoryName string, amount decimal.Decimal, date time.Time) (*models.Transaction, error) {
	if !amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}

	category, err := s.ResolveCategory(userID, categoryName)
	if err != nil {
		return nil, err
	}

	transaction := &models.Transaction{
		UserID:     userID,
		CategoryID: category.ID,
		Amount:     amount,
		Date:       dateOnly(date),
	}
	if err := s.db.Create(transaction).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err)
	}
	transaction.Category = *category
	return transaction, nil
}

// CategoryTotal sums all amounts for the category; zero when unresolved.
func (s *store) CategoryTotal(userID int64, categoryName string) (decimal.Decimal, error) {
	category, err := s.ResolveCategory(userID, categoryName)
	if err != nil {
		if errors.Is(err, apperrors.ErrCategoryNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}

	return s.sumAmounts(s.db.Model(&models.Transaction{}).
		Where("user_id = ? AND category_id = ?", userID, category.ID))
}

// MonthTotal sums the user's transactions within the calendar month.
func (s *store) MonthTotal(userID int64, year int, month time.Month) (decimal.Decimal, error) {
	from, to := monthRange(year, month)
	return s.sumAmounts(s.db.Model(&models.Transaction{}).
		Where("user_id = ? AND date >= ? AND date < ?", userID, from, to))
}

// LifetimeTotal sums all of the user's transactions.
func (s *store) LifetimeTotal(userID int64) (decimal.Decimal, error) {
	return s.sumAmounts(s.db.Model(&models.Transaction{}).
		Where("user_id = ?", userID))
}

// MonthStatistics returns per-category sums for the month.
func (s *store) MonthStatistics(userID int64, year int, month time.Month) ([]CategorySum, error) {
	from, to := monthRange(year, month)
	return s.statistics(userID, s.db.Model(&models.Transaction{}).
		Where("user_id = ? AND date >= ? AND date < ?", userID, from, to))
}

// LifetimeStatistics returns per-category sums over all transactions.
func (s *store) LifetimeStatistics(userID int64) ([]CategorySum, error) {
	return s.statistics(userID, s.db.Model(&models.Transaction{}).
		Where("user_id = ?", userID))
}

// RecentTransactions returns the newest transactions first.
func (s *store) RecentTransactions(userID int64, limit int) ([]models.Transaction, error) {
	var transactions []models.Transaction
	if err := s.db.Preload("Category").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err)
	}
	return transactions, nil
}

// Transaction retrieves a transaction by id for a specific user.
func (s *store) Transaction(id uint, userID int64) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.Preload("Category").
		Where("id = ? AND user_id = ?", id, userID).
		First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrStorage, err)
	}
	return &transaction, nil
}

// DeleteTransaction deletes the row only if it belongs to the user.
func (s *store) DeleteTransaction(id uint, userID int64) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var transaction models.Transaction
		if err := tx.Where("id = ? AND user_id = ?", id, userID).
			First(&transaction).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrTransactionNotFound
			}
			return apperrors.Wrap(apperrors.ErrStorage, err)
		}
		if err := tx.Delete(&transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrStorage, err)
		}
		return nil
	})
}

// sumAmounts loads the matching amounts and adds them up with exact
// decimal arithmetic. SQL SUM is deliberately not used: SQLite would
// accumulate the decimal text column in binary floating point.
func (s *store) sumAmounts(query *gorm.DB) (decimal.Decimal, error) {
	var rows []models.Transaction
	if err := query.Select("amount").Find(&rows).Error; err != nil {
		return decimal.Zero, apperrors.Wrap(apperrors.ErrStorage, err)
	}

	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(row.Amount)
	}
	return total, nil
}

// statistics groups the matching transactions by visible category.
// Zero totals are dropped; rows are ordered by total descending with ties
// kept in category insertion order.
func (s *store) statistics(userID int64, query *gorm.DB) ([]CategorySum, error) {
	var categories []models.Category
	if err := s.visible(userID).Order("id").Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err)
	}

	var rows []models.Transaction
	if err := query.Select("category_id, amount").Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err)
	}

	totals := make(map[uint]decimal.Decimal, len(categories))
	for _, row := range rows {
		totals[row.CategoryID] = totals[row.CategoryID].Add(row.Amount)
	}

	sums := make([]CategorySum, 0, len(categories))
	for _, category := range categories {
		total, ok := totals[category.ID]
		if !ok || total.IsZero() {
			continue
		}
		sums = append(sums, CategorySum{Name: category.Name, Total: total})
	}

	sort.SliceStable(sums, func(i, j int) bool {
		return sums[i].Total.GreaterThan(sums[j].Total)
	})
	return sums, nil
}

// dateOnly strips the time-of-day component; transaction dates are
// calendar dates.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// monthRange returns the half-open [from, to) interval covering the month.
func monthRange(year int, month time.Month) (time.Time, time.Time) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0)
}
