package telebotConverter

import (
	"fmt"
	"strings"

	"github.com/KotFed0t/bond_etf_tracker/internal/model"
	"github.com/KotFed0t/bond_etf_tracker/internal/model/tg/tgCallback"
	tele "gopkg.in/telebot.v4"
)

const historyPointsShown = 5

var queryTitles = map[string]string{
	model.QueryBankOfEngland: "🇬🇧 Банк Англии (Bank of England rate cut)",
	model.QueryFed:           "🇺🇸 ФРС (Fed interest rate cut)",
}

func ReminderText(signal model.ReminderSignal) string {
	if signal.Status == model.ReminderStale {
		return fmt.Sprintf("⚠️ С последнего просмотра новостей о снижении ставок прошло %d дн. Стоит проверить и решить, докупать ли.", signal.Days)
	}
	return fmt.Sprintf("✅ Новости о ставках просмотрены недавно (%d дн. назад)", signal.Days)
}

func DashboardResponse(dashboard model.Dashboard) (text string, markup *tele.ReplyMarkup) {
	markup = &tele.ReplyMarkup{}
	var sb strings.Builder

	sb.WriteString("📊 Трекер набора позиций в облигационных ETF\n\n")
	sb.WriteString(ReminderText(dashboard.Reminder))
	sb.WriteString("\n\n")

	prices := make(map[string]model.PriceQuote, len(dashboard.Quotes))
	for _, quote := range dashboard.Quotes {
		prices[quote.Symbol] = quote
	}

	sb.WriteString("📋 Прогресс:\n\n")
	for _, row := range dashboard.Rows {
		quote, ok := prices[row.Symbol]
		price := "N/A"
		if ok {
			price = quote.String()
		}

		sb.WriteString(fmt.Sprintf("%s (цена %s $)\n", row.Symbol, price))
		sb.WriteString(fmt.Sprintf("   ▸ Куплено: %s / %s £\n", row.Purchased.StringFixed(0), row.Target.StringFixed(0)))
		sb.WriteString(fmt.Sprintf("   ▸ Прогресс: %s%%\n\n", row.Progress.StringFixed(1)))
	}

	sb.WriteString(fmt.Sprintf("💰 Итого: %s / %s £ (%s%%)\n",
		dashboard.Totals.Purchased.StringFixed(0),
		dashboard.Totals.Target.StringFixed(0),
		dashboard.Totals.Progress.StringFixed(1),
	))

	purchaseBtns := make([]tele.Btn, 0, len(dashboard.Rows))
	for _, row := range dashboard.Rows {
		purchaseBtns = append(purchaseBtns, markup.Data("➕ "+row.Symbol, tgCallback.SetPurchased, row.Symbol))
	}

	ackBtn := markup.Data("📌 Я посмотрел новости", tgCallback.Acknowledge)
	markup.Inline(
		markup.Row(purchaseBtns...),
		markup.Row(ackBtn),
	)

	return sb.String(), markup
}

func SymbolButtons(symbols []string, unique string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	btns := make([]tele.Btn, 0, len(symbols))
	for _, symbol := range symbols {
		btns = append(btns, markup.Data(symbol, unique, symbol))
	}
	markup.Inline(markup.Row(btns...))
	return markup
}

func PurchaseSavedResponse(row model.ProgressRow, clamped bool) string {
	var sb strings.Builder
	if clamped {
		sb.WriteString(fmt.Sprintf("⚠️ Сумма должна быть в пределах 0..%s £, сохранено %s £\n",
			row.Target.StringFixed(0), row.Purchased.StringFixed(2)))
	}
	sb.WriteString(fmt.Sprintf("✔️ %s: куплено %s / %s £, прогресс %s%%",
		row.Symbol, row.Purchased.StringFixed(2), row.Target.StringFixed(0), row.Progress.StringFixed(1)))
	return sb.String()
}

func HistoryResponse(symbol string, res model.Result[model.PriceHistory]) string {
	if !res.Ok() || len(res.Value) == 0 {
		return fmt.Sprintf("⚠️ Не удалось получить историю цен %s", symbol)
	}

	history := res.Value
	first := history[0]
	last, _ := history.Last()
	lo, hi := history.MinMax()

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📈 %s за 6 месяцев (%s — %s)\n\n", symbol, first.Date.Format("2006-01-02"), last.Date.Format("2006-01-02")))
	sb.WriteString(fmt.Sprintf("Последняя цена: %s\n", last.Close.StringFixed(2)))
	sb.WriteString(fmt.Sprintf("Изменение: %s%%\n", history.Change().StringFixed(2)))
	sb.WriteString(fmt.Sprintf("Мин / макс: %s / %s\n\n", lo.StringFixed(2), hi.StringFixed(2)))

	start := len(history) - historyPointsShown
	if start < 0 {
		start = 0
	}
	for _, p := range history[start:] {
		sb.WriteString(fmt.Sprintf("%s  %s\n", p.Date.Format("2006-01-02"), p.Close.StringFixed(2)))
	}

	return sb.String()
}

func NewsResponse(sections []model.NewsSection) string {
	var sb strings.Builder
	sb.WriteString("📰 Новости о снижении ставок центробанками\n")

	for _, section := range sections {
		title, ok := queryTitles[section.Query]
		if !ok {
			title = section.Query
		}
		sb.WriteString("\n")
		sb.WriteString(title)
		sb.WriteString("\n")

		items := section.Items.ValueOr(nil)
		if len(items) == 0 {
			sb.WriteString("   нет новостей\n")
			continue
		}
		for _, item := range items {
			sb.WriteString(fmt.Sprintf("- %s\n  %s\n", item.Title, item.Link))
		}
	}

	return sb.String()
}

func RatesResponse(rates model.MarketRates) string {
	var sb strings.Builder
	sb.WriteString("💱 Курс и ставки за 30 дней\n\n")
	sb.WriteString(rateLine("GBP/USD", rates.FX, 4))
	sb.WriteString(rateLine("US 13w T-bill (^IRX), %", rates.ShortRate, 3))
	return sb.String()
}

func rateLine(name string, res model.Result[model.PriceHistory], places int32) string {
	last, ok := res.Value.Last()
	if !res.Ok() || !ok {
		return fmt.Sprintf("%s: нет данных\n", name)
	}
	return fmt.Sprintf("%s: %s (%s%% за период)\n", name, last.Close.StringFixed(places), res.Value.Change().StringFixed(2))
}
