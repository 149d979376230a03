package tgbot

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/KotFed0t/bond_etf_tracker/config"
	"github.com/KotFed0t/bond_etf_tracker/data/session"
	"github.com/KotFed0t/bond_etf_tracker/internal/model"
	"github.com/KotFed0t/bond_etf_tracker/internal/model/tg/tgCallback"
	"github.com/KotFed0t/bond_etf_tracker/internal/transport/telegram"
	customMW "github.com/KotFed0t/bond_etf_tracker/internal/transport/telegram/middleware"
	"github.com/KotFed0t/bond_etf_tracker/utils"
	tele "gopkg.in/telebot.v4"
	"gopkg.in/telebot.v4/middleware"
)

type Session interface {
	GetSession(ctx context.Context, key string) (model.Session, error)
	SetSession(ctx context.Context, key string, session model.Session) error
}

type TGBot struct {
	bot     *tele.Bot
	ctrl    *telegram.Controller
	session Session
}

func New(cfg *config.Config, ctrl *telegram.Controller, session Session) *TGBot {
	settings := tele.Settings{
		Token:  cfg.Telegram.Token,
		Poller: &tele.LongPoller{Timeout: cfg.Telegram.UpdTimeout},
	}

	b, err := tele.NewBot(settings)
	if err != nil {
		slog.Error("error while tele.NewBot", slog.String("err", err.Error()))
		panic(err)
	}

	return &TGBot{bot: b, ctrl: ctrl, session: session}
}

func (b *TGBot) Start() {
	b.bot.Use(middleware.Recover(), customMW.Logger())

	b.setupRoutes()

	if err := b.bot.SetCommands(commands()); err != nil {
		slog.Warn("failed to set bot commands", slog.String("err", err.Error()))
	}

	go b.bot.Start()
	slog.Info("tgbot started!")
}

func (b *TGBot) Stop() {
	slog.Info("start stopping tgbot")
	b.bot.Stop()
	slog.Info("tgbot stopped")
}

func commands() []tele.Command {
	return []tele.Command{
		{Text: "dashboard", Description: "прогресс и цены"},
		{Text: "buy", Description: "записать сумму покупки"},
		{Text: "history", Description: "история цен за 6 месяцев"},
		{Text: "news", Description: "новости о снижении ставок"},
		{Text: "rates", Description: "GBP/USD и ставка T-bill"},
		{Text: "ack", Description: "новости просмотрены"},
		{Text: "report", Description: "выгрузить прогресс в xlsx"},
	}
}

func (b *TGBot) setupRoutes() {
	b.bot.Handle(tele.OnText, func(c tele.Context) error {
		// получение сесии и выбор метода контроллера на основе шага пользователя
		ctx := utils.CreateCtxWithRqID(c)
		rqID := utils.GetRequestIDFromCtx(ctx)
		chatSession, err := b.session.GetSession(ctx, strconv.FormatInt(c.Chat().ID, 10))
		if err != nil && !errors.Is(err, session.ErrNotFound) {
			slog.Error("got error from session.GetSession", slog.String("rqID", rqID), slog.String("err", err.Error()))
			return c.Send("что-то пошло не так...")
		}

		if err == nil {
			c.Set("session", chatSession)
		}

		switch chatSession.Action {
		case model.ExpectingPurchasedAmount:
			return b.ctrl.ProcessPurchasedAmount(c)
		default:
			slog.Debug("unexpected text for chatSession action", slog.String("rqID", rqID), slog.Any("action", chatSession.Action))
			return c.Send("сначала введите одну из команд, например /dashboard")
		}
	})

	b.bot.Handle("/start", b.ctrl.Start)
	b.bot.Handle("/dashboard", b.ctrl.Dashboard)
	b.bot.Handle("/buy", b.ctrl.Buy)
	b.bot.Handle("/history", b.ctrl.History)
	b.bot.Handle("/news", b.ctrl.News)
	b.bot.Handle("/rates", b.ctrl.Rates)
	b.bot.Handle("/ack", b.ctrl.Acknowledge)
	b.bot.Handle("/report", b.ctrl.Report)

	b.bot.Handle("\f"+tgCallback.SetPurchased, b.ctrl.InitSetPurchased)
	b.bot.Handle("\f"+tgCallback.ShowHistory, b.ctrl.ShowHistory)
	b.bot.Handle("\f"+tgCallback.Acknowledge, b.ctrl.Acknowledge)
}
