package dialogue

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	apperrors "kopilka/internal/errors"
)

// Amount parse failures, distinguished so the re-prompt can name the
// actual problem.
var (
	errAmountNotNumber   = apperrors.WithMessage(apperrors.ErrInvalidInput, "amount is not a number")
	errAmountNotPositive = apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be positive")
)

// ParseAmount parses a user-entered income amount. The comma is accepted as
// a decimal separator; the value must be a positive number.
func ParseAmount(text string) (decimal.Decimal, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(text), ",", ".")

	amount, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, errAmountNotNumber
	}
	if !amount.IsPositive() {
		return decimal.Zero, errAmountNotPositive
	}
	return amount, nil
}

// dateLayouts are tried in order: day-first forms, then ISO. The strict
// ДД.ММ.ГГГГ layout comes first.
var dateLayouts = []string{
	"02.01.2006",
	"2.1.2006",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2-1-2006",
	"2006-01-02",
}

// ParseDate parses a user-entered transaction date. The literal tokens
// "сегодня" and "today" (case-insensitive) map to the current date; other
// input is matched against the day-first layout list.
func ParseDate(text string, now time.Time) (time.Time, error) {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "сегодня" || normalized == "today" {
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}

	for _, layout := range dateLayouts {
		if date, err := time.Parse(layout, normalized); err == nil {
			return date, nil
		}
	}
	return time.Time{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "unrecognized date format")
}
