package dialogue

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// monthNames maps months to their Russian names for menu and report text.
var monthNames = map[time.Month]string{
	time.January:   "Январь",
	time.February:  "Февраль",
	time.March:     "Март",
	time.April:     "Апрель",
	time.May:       "Май",
	time.June:      "Июнь",
	time.July:      "Июль",
	time.August:    "Август",
	time.September: "Сентябрь",
	time.October:   "Октябрь",
	time.November:  "Ноябрь",
	time.December:  "Декабрь",
}

// monthLabel renders "Месяц год", e.g. "Февраль 2026".
func monthLabel(year int, month time.Month) string {
	return fmt.Sprintf("%s %d", monthNames[month], year)
}

// formatAmount renders a decimal as "1,234.56": two fixed decimals with
// comma thousands separators.
func formatAmount(amount decimal.Decimal) string {
	fixed := amount.StringFixed(2)

	intPart, fracPart, _ := strings.Cut(fixed, ".")
	sign := ""
	if strings.HasPrefix(intPart, "-") {
		sign = "-"
		intPart = intPart[1:]
	}

	var groups []string
	for len(intPart) > 3 {
		groups = append([]string{intPart[len(intPart)-3:]}, groups...)
		intPart = intPart[:len(intPart)-3]
	}
	groups = append([]string{intPart}, groups...)

	return sign + strings.Join(groups, ",") + "." + fracPart
}

// formatDate renders a calendar date as "ДД.ММ.ГГГГ".
func formatDate(date time.Time) string {
	return date.Format("02.01.2006")
}

// formatPercent renders a share of a total as a percentage with one decimal
// place. A zero total yields "0.0".
func formatPercent(amount, total decimal.Decimal) string {
	if total.IsZero() {
		return "0.0"
	}
	return amount.Div(total).Mul(decimal.NewFromInt(100)).StringFixed(1)
}
