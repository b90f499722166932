package dialogue

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"kopilka/internal/ledger"
	"kopilka/internal/testutil"
)

// newTestController pins the clock to 15.02.2026 so month menus and
// "сегодня" are deterministic.
func newTestController(db *gorm.DB) *Controller {
	c := NewController(ledger.NewStore(db))
	c.now = func() time.Time {
		return time.Date(2026, time.February, 15, 12, 0, 0, 0, time.UTC)
	}
	return c
}

func press(t *testing.T, c *Controller, userID int64, token string) Render {
	t.Helper()
	button, err := DecodeToken(token)
	testutil.AssertNoError(t, err)
	return c.HandleEvent(Event{UserID: userID, Kind: KindButton, Button: button})
}

func say(c *Controller, userID int64, text string) Render {
	return c.HandleEvent(Event{UserID: userID, Kind: KindText, Text: text})
}

func command(c *Controller, userID int64, name string) Render {
	return c.HandleEvent(Event{UserID: userID, Kind: KindCommand, Command: name})
}

func stateOf(c *Controller, userID int64) State {
	return c.session(userID).state
}

func hasOption(render Render, token string) bool {
	for _, option := range render.Options {
		if option.Token == token {
			return true
		}
	}
	return false
}

func assertContains(t *testing.T, text, substring string) {
	t.Helper()
	if !strings.Contains(text, substring) {
		t.Errorf("expected text to contain %q, got:\n%s", substring, text)
	}
}

func TestStartCommand(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	c := newTestController(db)
	userID := testutil.NextUserID()

	render := command(c, userID, CommandStart)

	assertContains(t, render.Text, "Главное меню")
	assertContains(t, render.Text, "За Февраль 2026: 0.00 ₽")
	assertContains(t, render.Text, "Итого за все время: 0.00 ₽")
	for _, token := range []string{TokenAdd, TokenStats, TokenDelete} {
		if !hasOption(render, token) {
			t.Errorf("main menu missing option %q", token)
		}
	}
	if stateOf(c, userID) != StateMainMenu {
		t.Errorf("expected main menu state, got %s", stateOf(c, userID))
	}
}

func TestAddIncomeFlow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	c := newTestController(db)
	store := ledger.NewStore(db)
	userID := testutil.NextUserID()

	render := press(t, c, userID, TokenAdd)
	if stateOf(c, userID) != StateCategoryPick {
		t.Fatalf("expected category pick, got %s", stateOf(c, userID))
	}
	if !hasOption(render, EncodeCategoryToken("ПТТ")) || !hasOption(render, TokenNewCategory) || !hasOption(render, TokenBack) {
		t.Fatalf("category pick options incomplete: %+v", render.Options)
	}

	render = press(t, c, userID, EncodeCategoryToken("ПТТ"))
	assertContains(t, render.Text, "Категория: ПТТ")
	assertContains(t, render.Text, "Введите сумму")
	if stateOf(c, userID) != StateAwaitingAmount {
		t.Fatalf("expected awaiting amount, got %s", stateOf(c, userID))
	}

	render = say(c, userID, "abc")
	assertContains(t, render.Text, "Неверный формат суммы")
	if stateOf(c, userID) != StateAwaitingAmount {
		t.Fatalf("invalid amount must keep state, got %s", stateOf(c, userID))
	}

	render = say(c, userID, "-5")
	assertContains(t, render.Text, "положительным числом")
	if stateOf(c, userID) != StateAwaitingAmount {
		t.Fatalf("non-positive amount must keep state, got %s", stateOf(c, userID))
	}

	render = say(c, userID, "1000,50")
	assertContains(t, render.Text, "Сумма: 1,000.50 ₽")
	assertContains(t, render.Text, "Введите дату")
	if stateOf(c, userID) != StateAwaitingDate {
		t.Fatalf("expected awaiting date, got %s", stateOf(c, userID))
	}

	render = say(c, userID, "not-a-date")
	assertContains(t, render.Text, "Неверный формат даты")
	if stateOf(c, userID) != StateAwaitingDate {
		t.Fatalf("invalid date must keep state, got %s", stateOf(c, userID))
	}

	render = say(c, userID, "01.02.2026")
	assertContains(t, render.Text, "✅ Доход добавлен!")
	assertContains(t, render.Text, "Дата: 01.02.2026")
	assertContains(t, render.Text, "Всего по категории: 1,000.50 ₽")
	if stateOf(c, userID) != StateMainMenu {
		t.Fatalf("completed flow must return to main menu, got %s", stateOf(c, userID))
	}

	total, err := store.CategoryTotal(userID, "ПТТ")
	testutil.AssertNoError(t, err)
	testutil.AssertDecimal(t, total, "1000.50")
}

func TestAddIncomeToday(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	c := newTestController(db)
	userID := testutil.NextUserID()

	press(t, c, userID, TokenAdd)
	press(t, c, userID, EncodeCategoryToken("СТАНКИ"))
	say(c, userID, "200")
	render := say(c, userID, "сегодня")

	assertContains(t, render.Text, "✅ Доход добавлен!")
	assertContains(t, render.Text, "Дата: 15.02.2026")
}

func TestNewCategoryFlow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	c := newTestController(db)
	userID := testutil.NextUserID()

	press(t, c, userID, TokenAdd)
	render := press(t, c, userID, TokenNewCategory)
	assertContains(t, render.Text, "Введите название новой категории")
	if stateOf(c, userID) != StateAwaitingCategoryName {
		t.Fatalf("expected awaiting category name, got %s", stateOf(c, userID))
	}

	render = say(c, userID, "   ")
	assertContains(t, render.Text, "не может быть пустым")
	if stateOf(c, userID) != StateAwaitingCategoryName {
		t.Fatalf("empty name must keep state, got %s", stateOf(c, userID))
	}

	render = say(c, userID, "консалтинг")
	assertContains(t, render.Text, "✅ Категория КОНСАЛТИНГ добавлена!")
	assertContains(t, render.Text, "Главное меню")
	if stateOf(c, userID) != StateMainMenu {
		t.Fatalf("expected main menu, got %s", stateOf(c, userID))
	}

	press(t, c, userID, TokenAdd)
	press(t, c, userID, TokenNewCategory)
	render = say(c, userID, "Консалтинг")
	assertContains(t, render.Text, "❌ Категория КОНСАЛТИНГ уже существует.")
	if stateOf(c, userID) != StateMainMenu {
		t.Fatalf("expected main menu, got %s", stateOf(c, userID))
	}
}

func TestStatisticsFlow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	c := newTestController(db)
	store := ledger.NewStore(db)
	userID := testutil.NextUserID()

	seed := []struct {
		category string
		amount   string
		day      time.Time
	}{
		{"ПТТ", "750", time.Date(2026, time.February, 10, 0, 0, 0, 0, time.UTC)},
		{"СТАНКИ", "250", time.Date(2026, time.February, 11, 0, 0, 0, 0, time.UTC)},
		{"ПТТ", "100", time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)},
	}
	for _, s := range seed {
		_, err := store.AddTransaction(userID, s.category, decimal.RequireFromString(s.amount), s.day)
		testutil.AssertNoError(t, err)
	}

	render := press(t, c, userID, TokenStats)
	assertContains(t, render.Text, "Выберите тип статистики")
	if stateOf(c, userID) != StateStatsMenu {
		t.Fatalf("expected stats menu, got %s", stateOf(c, userID))
	}

	render = press(t, c, userID, TokenStatsMonthly)
	if stateOf(c, userID) != StateStatsMonthPick {
		t.Fatalf("expected month pick, got %s", stateOf(c, userID))
	}
	if len(render.Options) != statsMonthCount+1 {
		t.Fatalf("expected %d options, got %d", statsMonthCount+1, len(render.Options))
	}
	if render.Options[0].Label != "Февраль 2026" || render.Options[1].Label != "Январь 2026" {
		t.Errorf("months must be most recent first, got %q then %q",
			render.Options[0].Label, render.Options[1].Label)
	}
	if render.Options[statsMonthCount].Token != TokenStats {
		t.Errorf("last option must lead back to the stats menu")
	}

	render = press(t, c, userID, EncodeMonthToken(2026, time.February))
	assertContains(t, render.Text, "📅 Статистика за Февраль 2026")
	assertContains(t, render.Text, "ПТТ: 750.00 ₽ (75.0%)")
	assertContains(t, render.Text, "СТАНКИ: 250.00 ₽ (25.0%)")
	assertContains(t, render.Text, "Итого: 1,000.00 ₽")
	if stateOf(c, userID) != StateStatsMonthView {
		t.Fatalf("expected month view, got %s", stateOf(c, userID))
	}

	render = press(t, c, userID, EncodeMonthToken(2025, time.December))
	assertContains(t, render.Text, "Нет данных за этот период.")

	render = press(t, c, userID, TokenStatsAll)
	assertContains(t, render.Text, "📈 Общая статистика")
	assertContains(t, render.Text, "ПТТ: 850.00 ₽ (77.3%)")
	assertContains(t, render.Text, "СТАНКИ: 250.00 ₽ (22.7%)")
	assertContains(t, render.Text, "Итого: 1,100.00 ₽")
	if stateOf(c, userID) != StateStatsLifetimeView {
		t.Fatalf("expected lifetime view, got %s", stateOf(c, userID))
	}
}

func TestDeleteFlow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	c := newTestController(db)
	store := ledger.NewStore(db)
	userID := testutil.NextUserID()

	_, err := store.AddTransaction(userID, "ПТТ",
		decimal.RequireFromString("100"), time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC))
	testutil.AssertNoError(t, err)
	second, err := store.AddTransaction(userID, "СТАНКИ",
		decimal.RequireFromString("200"), time.Date(2026, time.February, 2, 0, 0, 0, 0, time.UTC))
	testutil.AssertNoError(t, err)

	render := press(t, c, userID, TokenDelete)
	assertContains(t, render.Text, "Выберите запись для удаления")
	assertContains(t, render.Text, "1. СТАНКИ: 200.00 ₽")
	if stateOf(c, userID) != StateDeletePick {
		t.Fatalf("expected delete pick, got %s", stateOf(c, userID))
	}
	if !hasOption(render, EncodePickDeleteToken(second.ID)) {
		t.Fatalf("pick list missing newest transaction: %+v", render.Options)
	}

	render = press(t, c, userID, EncodePickDeleteToken(second.ID))
	assertContains(t, render.Text, "⚠️ Подтвердите удаление")
	assertContains(t, render.Text, "Категория: СТАНКИ")
	if stateOf(c, userID) != StateDeleteConfirm {
		t.Fatalf("expected delete confirm, got %s", stateOf(c, userID))
	}

	// Cancel returns to the pick list.
	render = press(t, c, userID, TokenDelete)
	assertContains(t, render.Text, "Выберите запись для удаления")
	if stateOf(c, userID) != StateDeletePick {
		t.Fatalf("cancel must return to pick list, got %s", stateOf(c, userID))
	}

	press(t, c, userID, EncodePickDeleteToken(second.ID))
	render = press(t, c, userID, EncodeConfirmDeleteToken(second.ID))
	assertContains(t, render.Text, "✅ Запись удалена!")
	assertContains(t, render.Text, "Главное меню")
	if stateOf(c, userID) != StateMainMenu {
		t.Fatalf("expected main menu, got %s", stateOf(c, userID))
	}

	lifetime, err := store.LifetimeTotal(userID)
	testutil.AssertNoError(t, err)
	testutil.AssertDecimal(t, lifetime, "100")
}

func TestDeleteEdgeCases(t *testing.T) {
	t.Run("empty_list", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		c := newTestController(db)
		userID := testutil.NextUserID()

		render := press(t, c, userID, TokenDelete)
		assertContains(t, render.Text, "Нет записей для удаления.")
		if !hasOption(render, TokenBack) {
			t.Error("expected back option")
		}
	})

	t.Run("vanished_transaction", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		c := newTestController(db)
		userID := testutil.NextUserID()

		render := press(t, c, userID, EncodePickDeleteToken(99999))
		assertContains(t, render.Text, "Запись не найдена!")
		if stateOf(c, userID) != StateMainMenu {
			t.Fatalf("expected main menu, got %s", stateOf(c, userID))
		}
	})

	t.Run("foreign_transaction_not_deletable", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		c := newTestController(db)
		store := ledger.NewStore(db)
		owner := testutil.NextUserID()
		intruder := testutil.NextUserID()

		transaction, err := store.AddTransaction(owner, "ПТТ",
			decimal.RequireFromString("50"), time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC))
		testutil.AssertNoError(t, err)

		render := press(t, c, intruder, EncodePickDeleteToken(transaction.ID))
		assertContains(t, render.Text, "Запись не найдена!")

		kept, err := store.Transaction(transaction.ID, owner)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimal(t, kept.Amount, "50")
	})
}

func TestCancelAndBack(t *testing.T) {
	t.Run("cancel_command_clears_session", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		c := newTestController(db)
		store := ledger.NewStore(db)
		userID := testutil.NextUserID()

		press(t, c, userID, TokenAdd)
		press(t, c, userID, EncodeCategoryToken("ПТТ"))
		render := command(c, userID, CommandCancel)
		assertContains(t, render.Text, "Операция отменена.")
		if stateOf(c, userID) != StateMainMenu {
			t.Fatalf("expected main menu, got %s", stateOf(c, userID))
		}

		// Text after cancel is not treated as an amount.
		say(c, userID, "1000")
		lifetime, err := store.LifetimeTotal(userID)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimal(t, lifetime, "0")
	})

	t.Run("back_button_clears_session", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		c := newTestController(db)
		userID := testutil.NextUserID()

		press(t, c, userID, TokenAdd)
		press(t, c, userID, EncodeCategoryToken("ПТТ"))
		say(c, userID, "500")

		render := press(t, c, userID, TokenBack)
		assertContains(t, render.Text, "Главное меню")
		sess := c.session(userID)
		if sess.category != "" || !sess.amount.IsZero() {
			t.Errorf("expected cleared session, got category=%q amount=%s", sess.category, sess.amount)
		}
	})

	t.Run("reentering_category_pick_clears_partial_input", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		c := newTestController(db)
		userID := testutil.NextUserID()

		press(t, c, userID, TokenAdd)
		press(t, c, userID, EncodeCategoryToken("ПТТ"))
		say(c, userID, "500")

		press(t, c, userID, TokenAdd)
		sess := c.session(userID)
		if sess.category != "" || !sess.amount.IsZero() {
			t.Errorf("expected cleared input, got category=%q amount=%s", sess.category, sess.amount)
		}
		if stateOf(c, userID) != StateCategoryPick {
			t.Fatalf("expected category pick, got %s", stateOf(c, userID))
		}
	})
}

func TestUsersAreIsolated(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	c := newTestController(db)
	first := testutil.NextUserID()
	second := testutil.NextUserID()

	press(t, c, first, TokenAdd)
	press(t, c, first, EncodeCategoryToken("ПТТ"))
	if stateOf(c, first) != StateAwaitingAmount {
		t.Fatalf("expected awaiting amount for first user, got %s", stateOf(c, first))
	}

	render := say(c, second, "привет")
	assertContains(t, render.Text, "Главное меню")

	if stateOf(c, first) != StateAwaitingAmount {
		t.Errorf("second user's event must not disturb first user's session")
	}
}
