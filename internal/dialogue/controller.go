// Package dialogue implements the conversational state machine that turns a
// stream of user events into ledger operations and transport-agnostic
// render instructions.
package dialogue

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	apperrors "kopilka/internal/errors"
	"kopilka/internal/ledger"
	"kopilka/internal/logger"
)

const (
	// recentDeleteLimit bounds the delete-pick list.
	recentDeleteLimit = 10
	// statsMonthCount is how many past months the statistics menu offers.
	statsMonthCount = 6
)

// Controller owns the per-user dialogue sessions and drives all state
// transitions. One event per user is processed at a time; events from
// different users are handled concurrently.
type Controller struct {
	store ledger.Storer
	log   *zap.SugaredLogger
	now   func() time.Time

	mu       sync.Mutex
	sessions map[int64]*session
}

// NewController creates a controller on top of the given ledger store.
func NewController(store ledger.Storer) *Controller {
	return &Controller{
		store:    store,
		log:      logger.Get(),
		now:      time.Now,
		sessions: make(map[int64]*session),
	}
}

// HandleEvent processes one user event and returns the render instruction
// for the adapter. It never fails: validation problems re-prompt in place
// and storage problems produce a generic failure message.
func (c *Controller) HandleEvent(ev Event) Render {
	eventID := uuid.NewString()
	sess := c.session(ev.UserID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	before := sess.state
	render := c.transition(sess, ev)

	c.log.Infow("dialogue event",
		"event_id", eventID,
		"user_id", ev.UserID,
		"kind", ev.Kind.String(),
		"state_before", before.String(),
		"state_after", sess.state.String(),
	)
	return render
}

// session returns the user's session, creating it on first contact.
func (c *Controller) session(userID int64) *session {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess, ok := c.sessions[userID]
	if !ok {
		sess = &session{state: StateMainMenu}
		c.sessions[userID] = sess
	}
	return sess
}

func (c *Controller) transition(sess *session, ev Event) Render {
	switch ev.Kind {
	case KindCommand:
		return c.handleCommand(sess, ev)
	case KindButton:
		return c.handleButton(sess, ev)
	case KindText:
		return c.handleText(sess, ev)
	default:
		sess.reset()
		return c.mainMenu(ev.UserID)
	}
}

func (c *Controller) handleCommand(sess *session, ev Event) Render {
	switch ev.Command {
	case CommandCancel:
		sess.reset()
		render := c.mainMenu(ev.UserID)
		render.Text = "Операция отменена.\n\n" + render.Text
		return render
	default:
		// /start and anything unrecognized land on the main menu.
		sess.reset()
		return c.mainMenu(ev.UserID)
	}
}

func (c *Controller) handleButton(sess *session, ev Event) Render {
	switch ev.Button.Action {
	case ActionBack:
		sess.reset()
		return c.mainMenu(ev.UserID)

	case ActionAdd:
		return c.showCategoryPick(sess, ev.UserID)

	case ActionNewCategory:
		sess.state = StateAwaitingCategoryName
		return Render{
			Text:    "Введите название новой категории:",
			Options: []Option{{Label: "◀️ Отмена", Token: TokenAdd}},
		}

	case ActionPickCategory:
		sess.clearInput()
		sess.category = ev.Button.Category
		sess.state = StateAwaitingAmount
		return Render{
			Text:    fmt.Sprintf("Категория: %s\n\nВведите сумму дохода:", sess.category),
			Options: []Option{{Label: "◀️ Назад", Token: TokenAdd}},
		}

	case ActionStats:
		sess.clearInput()
		sess.state = StateStatsMenu
		return Render{Text: "Выберите тип статистики:", Options: statsMenuOptions()}

	case ActionStatsMonthly:
		sess.state = StateStatsMonthPick
		return Render{Text: "Выберите месяц:", Options: c.monthPickOptions()}

	case ActionStatsAll:
		return c.showLifetimeStats(sess, ev.UserID)

	case ActionPickMonth:
		return c.showMonthStats(sess, ev.UserID, ev.Button.Year, ev.Button.Month)

	case ActionDelete:
		return c.showDeletePick(sess, ev.UserID)

	case ActionPickDelete:
		return c.showDeleteConfirm(sess, ev.UserID, ev.Button.TransactionID)

	case ActionConfirmDelete:
		return c.deleteTransaction(sess, ev.UserID, ev.Button.TransactionID)

	default:
		sess.reset()
		return c.mainMenu(ev.UserID)
	}
}

func (c *Controller) handleText(sess *session, ev Event) Render {
	switch sess.state {
	case StateAwaitingAmount:
		return c.handleAmountInput(sess, ev)
	case StateAwaitingDate:
		return c.handleDateInput(sess, ev)
	case StateAwaitingCategoryName:
		return c.handleCategoryNameInput(sess, ev)
	default:
		// Free text outside an input state just re-renders the main menu.
		sess.reset()
		return c.mainMenu(ev.UserID)
	}
}

// mainMenu renders the main menu with the current month's and lifetime
// totals.
func (c *Controller) mainMenu(userID int64) Render {
	now := c.now()
	monthTotal, err := c.store.MonthTotal(userID, now.Year(), now.Month())
	if err != nil {
		return c.storageFailure(err)
	}
	lifetime, err := c.store.LifetimeTotal(userID)
	if err != nil {
		return c.storageFailure(err)
	}

	text := fmt.Sprintf(
		"📊 Главное меню\n\n📅 За %s: %s ₽\n💰 Итого за все время: %s ₽\n\nВыберите действие:",
		monthLabel(now.Year(), now.Month()), formatAmount(monthTotal), formatAmount(lifetime))
	return Render{Text: text, Options: mainMenuOptions()}
}

func (c *Controller) showCategoryPick(sess *session, userID int64) Render {
	sess.clearInput()
	names, err := c.store.Categories(userID)
	if err != nil {
		sess.reset()
		return c.storageFailure(err)
	}

	sess.state = StateCategoryPick
	return Render{Text: "Выберите категорию:", Options: categoryOptions(names)}
}

func (c *Controller) handleAmountInput(sess *session, ev Event) Render {
	amount, err := ParseAmount(ev.Text)
	if err != nil {
		if errors.Is(err, errAmountNotPositive) {
			return Render{Text: "Сумма должна быть положительным числом. Попробуйте еще раз:"}
		}
		return Render{Text: "Неверный формат суммы. Введите число (например: 1000 или 1000.50):"}
	}

	sess.amount = amount
	sess.state = StateAwaitingDate
	return Render{
		Text: fmt.Sprintf(
			"Сумма: %s ₽\nКатегория: %s\n\nВведите дату (ДД.ММ.ГГГГ) или отправьте 'сегодня' для сегодняшней даты:",
			formatAmount(amount), sess.category),
		Options: []Option{{Label: "◀️ Отмена", Token: TokenAdd}},
	}
}

func (c *Controller) handleDateInput(sess *session, ev Event) Render {
	date, err := ParseDate(ev.Text, c.now())
	if err != nil {
		return Render{Text: "Неверный формат даты. Введите дату в формате ДД.ММ.ГГГГ (например: 01.02.2026) или 'сегодня':"}
	}

	category := sess.category
	transaction, err := c.store.AddTransaction(ev.UserID, category, sess.amount, date)
	if err != nil {
		sess.reset()
		if errors.Is(err, apperrors.ErrCategoryNotFound) {
			render := c.mainMenu(ev.UserID)
			render.Text = "❌ Ошибка при добавлении дохода. Попробуйте еще раз.\n\n" + render.Text
			return render
		}
		return c.storageFailure(err)
	}

	text := fmt.Sprintf("✅ Доход добавлен!\n\nКатегория: %s\nСумма: %s ₽\nДата: %s",
		category, formatAmount(transaction.Amount), formatDate(transaction.Date))

	total, err := c.store.CategoryTotal(ev.UserID, category)
	if err != nil {
		c.log.Errorw("category total unavailable", "user_id", ev.UserID, "error", err)
	} else {
		text += fmt.Sprintf("\n\nВсего по категории: %s ₽", formatAmount(total))
	}

	sess.reset()
	return Render{Text: text, Options: mainMenuOptions()}
}

func (c *Controller) handleCategoryNameInput(sess *session, ev Event) Render {
	name := strings.TrimSpace(ev.Text)
	if name == "" {
		return Render{Text: "Название категории не может быть пустым. Попробуйте еще раз:"}
	}

	category, err := c.store.AddCategory(ev.UserID, name)
	sess.reset()
	if err != nil {
		if errors.Is(err, apperrors.ErrCategoryExists) {
			render := c.mainMenu(ev.UserID)
			render.Text = fmt.Sprintf("❌ Категория %s уже существует.\n\n", ledger.NormalizeName(name)) + render.Text
			return render
		}
		return c.storageFailure(err)
	}

	render := c.mainMenu(ev.UserID)
	render.Text = fmt.Sprintf("✅ Категория %s добавлена!\n\n", category.Name) + render.Text
	return render
}

// monthPickOptions offers the last statsMonthCount calendar months, most
// recent first.
func (c *Controller) monthPickOptions() []Option {
	now := c.now()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	options := make([]Option, 0, statsMonthCount+1)
	for i := 0; i < statsMonthCount; i++ {
		month := first.AddDate(0, -i, 0)
		options = append(options, Option{
			Label: monthLabel(month.Year(), month.Month()),
			Token: EncodeMonthToken(month.Year(), month.Month()),
		})
	}
	return append(options, Option{Label: "◀️ Назад", Token: TokenStats})
}

func (c *Controller) showMonthStats(sess *session, userID int64, year int, month time.Month) Render {
	stats, err := c.store.MonthStatistics(userID, year, month)
	if err != nil {
		sess.reset()
		return c.storageFailure(err)
	}

	sess.state = StateStatsMonthView
	text := fmt.Sprintf("📅 Статистика за %s\n\n", monthLabel(year, month))
	if len(stats) == 0 {
		text += "Нет данных за этот период."
	} else {
		text += statsBody(stats)
	}
	return Render{Text: text, Options: c.monthPickOptions()}
}

func (c *Controller) showLifetimeStats(sess *session, userID int64) Render {
	stats, err := c.store.LifetimeStatistics(userID)
	if err != nil {
		sess.reset()
		return c.storageFailure(err)
	}

	sess.state = StateStatsLifetimeView
	text := "📈 Общая статистика\n\n"
	if len(stats) == 0 {
		text += "Нет данных."
	} else {
		text += statsBody(stats)
	}
	return Render{Text: text, Options: statsMenuOptions()}
}

// statsBody renders category/amount/percentage lines plus the grand total.
func statsBody(stats []ledger.CategorySum) string {
	total := decimal.Zero
	for _, row := range stats {
		total = total.Add(row.Total)
	}

	var b strings.Builder
	for _, row := range stats {
		fmt.Fprintf(&b, "%s: %s ₽ (%s%%)\n", row.Name, formatAmount(row.Total), formatPercent(row.Total, total))
	}
	fmt.Fprintf(&b, "\nИтого: %s ₽", formatAmount(total))
	return b.String()
}

func (c *Controller) showDeletePick(sess *session, userID int64) Render {
	sess.clearInput()
	transactions, err := c.store.RecentTransactions(userID, recentDeleteLimit)
	if err != nil {
		sess.reset()
		return c.storageFailure(err)
	}

	sess.state = StateDeletePick
	if len(transactions) == 0 {
		return Render{
			Text:    "🗑️ Удаление записей\n\nНет записей для удаления.",
			Options: backOption(),
		}
	}

	var b strings.Builder
	b.WriteString("🗑️ Выберите запись для удаления:\n\n")
	options := make([]Option, 0, len(transactions)+1)
	for i, transaction := range transactions {
		fmt.Fprintf(&b, "%d. %s: %s ₽ (%s)\n",
			i+1, transaction.Category.Name, formatAmount(transaction.Amount), formatDate(transaction.Date))
		options = append(options, Option{
			Label: fmt.Sprintf("🗑️ %s - %s ₽", transaction.Category.Name, formatAmount(transaction.Amount)),
			Token: EncodePickDeleteToken(transaction.ID),
		})
	}
	options = append(options, backOption()...)
	return Render{Text: b.String(), Options: options}
}

func (c *Controller) showDeleteConfirm(sess *session, userID int64, transactionID uint) Render {
	transaction, err := c.store.Transaction(transactionID, userID)
	if err != nil {
		sess.reset()
		if errors.Is(err, apperrors.ErrTransactionNotFound) {
			render := c.mainMenu(userID)
			render.Text = "Запись не найдена!\n\n" + render.Text
			return render
		}
		return c.storageFailure(err)
	}

	sess.state = StateDeleteConfirm
	return Render{
		Text: fmt.Sprintf("⚠️ Подтвердите удаление:\n\nКатегория: %s\nСумма: %s ₽\nДата: %s",
			transaction.Category.Name, formatAmount(transaction.Amount), formatDate(transaction.Date)),
		Options: []Option{
			{Label: "✅ Да, удалить", Token: EncodeConfirmDeleteToken(transaction.ID)},
			{Label: "❌ Отмена", Token: TokenDelete},
		},
	}
}

func (c *Controller) deleteTransaction(sess *session, userID int64, transactionID uint) Render {
	sess.reset()

	transaction, err := c.store.Transaction(transactionID, userID)
	if err == nil {
		err = c.store.DeleteTransaction(transactionID, userID)
	}
	if err != nil {
		if errors.Is(err, apperrors.ErrTransactionNotFound) {
			render := c.mainMenu(userID)
			render.Text = "Ошибка при удалении записи!\n\n" + render.Text
			return render
		}
		return c.storageFailure(err)
	}

	render := c.mainMenu(userID)
	render.Text = fmt.Sprintf("✅ Запись удалена!\n\nКатегория: %s\nСумма: %s ₽\nДата: %s\n\n",
		transaction.Category.Name, formatAmount(transaction.Amount), formatDate(transaction.Date)) + render.Text
	return render
}

// storageFailure logs the underlying error and produces the generic
// failure message; the triggering operation is treated as not applied.
func (c *Controller) storageFailure(err error) Render {
	c.log.Errorw("storage failure", "error", err)
	return Render{Text: "❌ Произошла ошибка. Попробуйте позже.", Options: mainMenuOptions()}
}
