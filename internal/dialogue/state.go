package dialogue

import (
	"sync"

	"github.com/shopspring/decimal"
)

// State identifies a position in the conversation. StateMainMenu is both
// the initial state and the state every completed or cancelled flow
// returns to.
type State int

const (
	StateMainMenu State = iota
	StateCategoryPick
	StateAwaitingAmount
	StateAwaitingDate
	StateAwaitingCategoryName
	StateStatsMenu
	StateStatsMonthPick
	StateStatsMonthView
	StateStatsLifetimeView
	StateDeletePick
	StateDeleteConfirm
)

// String returns the state name for logging.
func (s State) String() string {
	switch s {
	case StateMainMenu:
		return "main_menu"
	case StateCategoryPick:
		return "category_pick"
	case StateAwaitingAmount:
		return "awaiting_amount"
	case StateAwaitingDate:
		return "awaiting_date"
	case StateAwaitingCategoryName:
		return "awaiting_category_name"
	case StateStatsMenu:
		return "stats_menu"
	case StateStatsMonthPick:
		return "stats_month_pick"
	case StateStatsMonthView:
		return "stats_month_view"
	case StateStatsLifetimeView:
		return "stats_lifetime_view"
	case StateDeletePick:
		return "delete_pick"
	case StateDeleteConfirm:
		return "delete_confirm"
	default:
		return "unknown"
	}
}

// session holds one user's transient dialogue progress. The mutex
// serializes events for that user; different users never share a session.
type session struct {
	mu       sync.Mutex
	state    State
	category string
	amount   decimal.Decimal
}

// reset returns the session to the main menu and drops partial input.
func (s *session) reset() {
	s.state = StateMainMenu
	s.clearInput()
}

// clearInput drops accumulated partial input without changing state.
func (s *session) clearInput() {
	s.category = ""
	s.amount = decimal.Zero
}
