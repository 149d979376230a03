package telegram

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/KotFed0t/bond_etf_tracker/data/session"
	"github.com/KotFed0t/bond_etf_tracker/internal/converter/telebotConverter"
	"github.com/KotFed0t/bond_etf_tracker/internal/model"
	"github.com/KotFed0t/bond_etf_tracker/internal/model/tg/tgCallback"
	"github.com/KotFed0t/bond_etf_tracker/internal/service"
	"github.com/KotFed0t/bond_etf_tracker/internal/service/dashboardService"
	"github.com/KotFed0t/bond_etf_tracker/utils"
	"github.com/shopspring/decimal"
	tele "gopkg.in/telebot.v4"
)

const (
	internalErrMsg = "что-то пошло не так..."
	startMsg       = "Привет! Я помогаю набирать позиции в облигационных ETF.\n\n" +
		"/dashboard - прогресс и цены\n" +
		"/buy - записать сумму покупки\n" +
		"/history - история цен за 6 месяцев\n" +
		"/news - новости о снижении ставок\n" +
		"/rates - GBP/USD и ставка T-bill\n" +
		"/ack - отметить, что новости просмотрены\n" +
		"/report - выгрузить прогресс в xlsx"
)

type DashboardService interface {
	Symbols() []string
	InitSession(sess model.Session) model.Session
	Reminder(sess model.Session) model.ReminderSignal
	Acknowledge(ctx context.Context, sess model.Session) model.Session
	Dashboard(ctx context.Context, sess model.Session) (model.Session, model.Dashboard)
	SetPurchased(ctx context.Context, sess model.Session, symbol string, amount decimal.Decimal) (model.Session, model.ProgressRow, bool, error)
	History(ctx context.Context, symbol string) (model.Result[model.PriceHistory], error)
	News(ctx context.Context) []model.NewsSection
	Rates(ctx context.Context) model.MarketRates
	Report(ctx context.Context, sess model.Session) (fileBytes []byte, filename string, downloadLink string, err error)
}

type Session interface {
	GetSession(ctx context.Context, key string) (model.Session, error)
	SetSession(ctx context.Context, key string, session model.Session) error
}

type Controller struct {
	dashboardService DashboardService
	session          Session
}

func NewController(dashboardService DashboardService, session Session) *Controller {
	return &Controller{
		dashboardService: dashboardService,
		session:          session,
	}
}

func (ctrl *Controller) Start(c tele.Context) error {
	if err := c.Send(startMsg); err != nil {
		return err
	}
	return ctrl.Dashboard(c)
}

func (ctrl *Controller) Dashboard(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)

	chatSession, err := ctrl.getSessionFromTeleCtxOrStorage(ctx, c)
	if err != nil {
		return c.Send(internalErrMsg)
	}

	chatSession, dashboard := ctrl.dashboardService.Dashboard(ctx, chatSession)
	if err = ctrl.saveSession(ctx, c, chatSession); err != nil {
		return c.Send(internalErrMsg)
	}

	text, markup := telebotConverter.DashboardResponse(dashboard)
	return c.Send(text, markup)
}

func (ctrl *Controller) Buy(c tele.Context) error {
	return c.Send("Выберите ETF:", telebotConverter.SymbolButtons(ctrl.dashboardService.Symbols(), tgCallback.SetPurchased))
}

func (ctrl *Controller) InitSetPurchased(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	_ = c.Respond()

	symbol := c.Callback().Data

	chatSession, err := ctrl.getSessionFromTeleCtxOrStorage(ctx, c)
	if err != nil {
		return c.Send(internalErrMsg)
	}

	// ждём от пользователя сумму покупки для выбранного ETF
	chatSession.Action = model.ExpectingPurchasedAmount
	chatSession.Symbol = symbol
	if err = ctrl.saveSession(ctx, c, chatSession); err != nil {
		return c.Send(internalErrMsg)
	}

	return c.Send(fmt.Sprintf("Введите, на сколько £ куплено %s всего:", symbol))
}

func (ctrl *Controller) ProcessPurchasedAmount(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	chatSession, err := ctrl.getSessionFromTeleCtxOrStorage(ctx, c)
	if err != nil {
		return c.Send(internalErrMsg)
	}

	amount, err := dashboardService.ParseAmount(c.Message().Text)
	if err != nil {
		return c.Send("Не удалось распознать сумму, введите число, например 1500 или 1500,50")
	}

	chatSession, row, clamped, err := ctrl.dashboardService.SetPurchased(ctx, chatSession, chatSession.Symbol, amount)
	chatSession.Action = model.DefaultAction
	chatSession.Symbol = ""
	if saveErr := ctrl.saveSession(ctx, c, chatSession); saveErr != nil {
		return c.Send(internalErrMsg)
	}

	if err != nil {
		if errors.Is(err, service.ErrUnknownInstrument) {
			return c.Send("Неизвестный ETF, начните заново с /buy")
		}
		slog.Error("got error from dashboardService.SetPurchased", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Send(internalErrMsg)
	}

	return c.Send(telebotConverter.PurchaseSavedResponse(row, clamped))
}

func (ctrl *Controller) History(c tele.Context) error {
	return c.Send("История цен какого ETF?", telebotConverter.SymbolButtons(ctrl.dashboardService.Symbols(), tgCallback.ShowHistory))
}

func (ctrl *Controller) ShowHistory(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	_ = c.Respond()

	symbol := c.Callback().Data

	history, err := ctrl.dashboardService.History(ctx, symbol)
	if err != nil {
		if errors.Is(err, service.ErrUnknownInstrument) {
			return c.Send("Неизвестный ETF")
		}
		return c.Send(internalErrMsg)
	}

	return c.Send(telebotConverter.HistoryResponse(symbol, history))
}

func (ctrl *Controller) News(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)

	chatSession, err := ctrl.getSessionFromTeleCtxOrStorage(ctx, c)
	if err != nil {
		return c.Send(internalErrMsg)
	}

	var sb strings.Builder
	sb.WriteString(telebotConverter.ReminderText(ctrl.dashboardService.Reminder(chatSession)))
	sb.WriteString("\n\n")
	sb.WriteString(telebotConverter.NewsResponse(ctrl.dashboardService.News(ctx)))

	markup := &tele.ReplyMarkup{}
	markup.Inline(markup.Row(markup.Data("📌 Я посмотрел новости", tgCallback.Acknowledge)))

	return c.Send(sb.String(), markup, tele.NoPreview)
}

func (ctrl *Controller) Rates(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	return c.Send(telebotConverter.RatesResponse(ctrl.dashboardService.Rates(ctx)))
}

// Acknowledge serves both the /ack command and the inline button.
func (ctrl *Controller) Acknowledge(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	if c.Callback() != nil {
		_ = c.Respond()
	}

	chatSession, err := ctrl.getSessionFromTeleCtxOrStorage(ctx, c)
	if err != nil {
		return c.Send(internalErrMsg)
	}

	chatSession = ctrl.dashboardService.Acknowledge(ctx, chatSession)
	if err = ctrl.saveSession(ctx, c, chatSession); err != nil {
		return c.Send(internalErrMsg)
	}

	return c.Send(telebotConverter.ReminderText(ctrl.dashboardService.Reminder(chatSession)))
}

func (ctrl *Controller) Report(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	chatSession, err := ctrl.getSessionFromTeleCtxOrStorage(ctx, c)
	if err != nil {
		return c.Send(internalErrMsg)
	}

	fileBytes, filename, downloadLink, err := ctrl.dashboardService.Report(ctx, chatSession)
	if err != nil {
		if errors.Is(err, service.ErrReportTooLarge) {
			return c.Send("Отчёт слишком большой для отправки")
		}
		slog.Error("got error from dashboardService.Report", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Send(internalErrMsg)
	}

	if downloadLink != "" {
		return c.Send(fmt.Sprintf("Отчёт доступен по ссылке (хранится ограниченное время):\n%s", downloadLink))
	}

	return c.Send(&tele.Document{File: tele.FromReader(bytes.NewReader(fileBytes)), FileName: filename})
}

func (ctrl *Controller) getSessionFromTeleCtxOrStorage(ctx context.Context, c tele.Context) (model.Session, error) {
	chatSession, ok := c.Get("session").(model.Session)
	if ok {
		return ctrl.dashboardService.InitSession(chatSession), nil
	}

	rqID := utils.GetRequestIDFromCtx(ctx)
	chatSession, err := ctrl.session.GetSession(ctx, strconv.FormatInt(c.Chat().ID, 10))
	if err != nil {
		if !errors.Is(err, session.ErrNotFound) {
			slog.Error("got error from session.GetSession", slog.String("rqID", rqID), slog.String("err", err.Error()))
			return model.Session{}, err
		}
		// новая или истёкшая сессия
		chatSession = model.Session{}
	}
	return ctrl.dashboardService.InitSession(chatSession), nil
}

func (ctrl *Controller) saveSession(ctx context.Context, c tele.Context, chatSession model.Session) error {
	err := ctrl.session.SetSession(ctx, strconv.FormatInt(c.Chat().ID, 10), chatSession)
	if err != nil {
		slog.Error("got error from session.SetSession", slog.String("rqID", utils.GetRequestIDFromCtx(ctx)), slog.String("err", err.Error()))
		return err
	}
	c.Set("session", chatSession)
	return nil
}
