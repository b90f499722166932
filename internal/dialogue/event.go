package dialogue

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	apperrors "kopilka/internal/errors"
)

// Kind discriminates the closed set of event kinds the controller accepts.
type Kind int

const (
	KindCommand Kind = iota
	KindButton
	KindText
)

// String returns the kind name for logging.
func (k Kind) String() string {
	switch k {
	case KindCommand:
		return "command"
	case KindButton:
		return "button"
	case KindText:
		return "text"
	default:
		return "unknown"
	}
}

// Commands understood by the controller.
const (
	CommandStart  = "start"
	CommandCancel = "cancel"
)

// Action identifies a decoded button press.
type Action int

const (
	ActionNone Action = iota
	ActionAdd
	ActionNewCategory
	ActionPickCategory
	ActionStats
	ActionStatsMonthly
	ActionStatsAll
	ActionPickMonth
	ActionDelete
	ActionPickDelete
	ActionConfirmDelete
	ActionBack
)

// Button is a button press decoded from its opaque token, carrying the
// payload fields the action needs.
type Button struct {
	Action        Action
	Category      string
	Year          int
	Month         time.Month
	TransactionID uint
}

// Event is one user input delivered by the transport adapter.
type Event struct {
	UserID  int64
	Kind    Kind
	Command string
	Button  Button
	Text    string
}

// Fixed button tokens.
const (
	TokenAdd          = "add"
	TokenNewCategory  = "newcat"
	TokenStats        = "stats"
	TokenStatsMonthly = "stats:monthly"
	TokenStatsAll     = "stats:all"
	TokenDelete       = "delete"
	TokenBack         = "back"
)

// Prefixes of tokens that carry a payload.
const (
	tokenCategoryPrefix      = "cat:"
	tokenMonthPrefix         = "month:"
	tokenPickDeletePrefix    = "del:"
	tokenConfirmDeletePrefix = "delok:"
)

// EncodeCategoryToken builds the token selecting a category by name.
func EncodeCategoryToken(name string) string {
	return tokenCategoryPrefix + name
}

// EncodeMonthToken builds the token selecting a statistics month.
func EncodeMonthToken(year int, month time.Month) string {
	return fmt.Sprintf("%s%d:%d", tokenMonthPrefix, year, int(month))
}

// EncodePickDeleteToken builds the token selecting a transaction to delete.
func EncodePickDeleteToken(id uint) string {
	return fmt.Sprintf("%s%d", tokenPickDeletePrefix, id)
}

// EncodeConfirmDeleteToken builds the token confirming a deletion.
func EncodeConfirmDeleteToken(id uint) string {
	return fmt.Sprintf("%s%d", tokenConfirmDeletePrefix, id)
}

// DecodeToken decodes an opaque button token into a Button. Tokens are
// decoded once here, at the boundary; the transition logic only ever
// matches on Action.
func DecodeToken(token string) (Button, error) {
	switch token {
	case TokenAdd:
		return Button{Action: ActionAdd}, nil
	case TokenNewCategory:
		return Button{Action: ActionNewCategory}, nil
	case TokenStats:
		return Button{Action: ActionStats}, nil
	case TokenStatsMonthly:
		return Button{Action: ActionStatsMonthly}, nil
	case TokenStatsAll:
		return Button{Action: ActionStatsAll}, nil
	case TokenDelete:
		return Button{Action: ActionDelete}, nil
	case TokenBack:
		return Button{Action: ActionBack}, nil
	}

	switch {
	case strings.HasPrefix(token, tokenCategoryPrefix):
		name := strings.TrimPrefix(token, tokenCategoryPrefix)
		if name == "" {
			return Button{}, badToken(token)
		}
		return Button{Action: ActionPickCategory, Category: name}, nil

	case strings.HasPrefix(token, tokenMonthPrefix):
		parts := strings.Split(strings.TrimPrefix(token, tokenMonthPrefix), ":")
		if len(parts) != 2 {
			return Button{}, badToken(token)
		}
		year, err := strconv.Atoi(parts[0])
		if err != nil {
			return Button{}, badToken(token)
		}
		month, err := strconv.Atoi(parts[1])
		if err != nil || month < 1 || month > 12 {
			return Button{}, badToken(token)
		}
		return Button{Action: ActionPickMonth, Year: year, Month: time.Month(month)}, nil

	case strings.HasPrefix(token, tokenPickDeletePrefix):
		id, err := parseID(strings.TrimPrefix(token, tokenPickDeletePrefix))
		if err != nil {
			return Button{}, badToken(token)
		}
		return Button{Action: ActionPickDelete, TransactionID: id}, nil

	case strings.HasPrefix(token, tokenConfirmDeletePrefix):
		id, err := parseID(strings.TrimPrefix(token, tokenConfirmDeletePrefix))
		if err != nil {
			return Button{}, badToken(token)
		}
		return Button{Action: ActionConfirmDelete, TransactionID: id}, nil
	}

	return Button{}, badToken(token)
}

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

func badToken(token string) error {
	return apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("unknown button token %q", token))
}
