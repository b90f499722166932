package dialogue

// Option is one selectable choice attached to a rendered message. Token is
// opaque to the transport: it comes back verbatim as a button-press event.
type Option struct {
	Label string
	Token string
}

// Render is the transport-agnostic instruction produced for every handled
// event: text to show and an ordered list of options to offer.
type Render struct {
	Text    string
	Options []Option
}

// mainMenuOptions are the three top-level actions.
func mainMenuOptions() []Option {
	return []Option{
		{Label: "➕ Добавить", Token: TokenAdd},
		{Label: "📊 Статистика", Token: TokenStats},
		{Label: "🗑️ Удалить запись", Token: TokenDelete},
	}
}

// categoryOptions lists the visible categories plus the new-category and
// back entries.
func categoryOptions(categories []string) []Option {
	options := make([]Option, 0, len(categories)+2)
	for _, name := range categories {
		options = append(options, Option{Label: name, Token: EncodeCategoryToken(name)})
	}
	options = append(options,
		Option{Label: "➕ Добавить категорию", Token: TokenNewCategory},
		Option{Label: "◀️ Назад", Token: TokenBack},
	)
	return options
}

// statsMenuOptions offers the two statistics views.
func statsMenuOptions() []Option {
	return []Option{
		{Label: "📅 По месяцам", Token: TokenStatsMonthly},
		{Label: "📈 Всего", Token: TokenStatsAll},
		{Label: "◀️ Назад", Token: TokenBack},
	}
}

// backOption is a single back-navigation entry.
func backOption() []Option {
	return []Option{{Label: "◀️ Назад", Token: TokenBack}}
}
