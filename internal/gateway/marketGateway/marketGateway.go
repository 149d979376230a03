// Package marketGateway is the only place that talks to the market data
// provider. Nothing it returns is an error: failures become Unavailable or
// Failed results so a render never breaks on a flaky quote.
package marketGateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/KotFed0t/bond_etf_tracker/config"
	"github.com/KotFed0t/bond_etf_tracker/internal/cache"
	"github.com/KotFed0t/bond_etf_tracker/internal/externalApi"
	"github.com/KotFed0t/bond_etf_tracker/internal/model"
	"github.com/KotFed0t/bond_etf_tracker/utils"
	"github.com/shopspring/decimal"
)

const (
	FXTicker        = "GBPUSD=X"
	ShortRateTicker = "^IRX" // US 13 week treasury bill yield
)

var ErrUnknownSymbol = errors.New("unknown symbol")

// venueTickers maps tracked symbols to the listing the provider resolves.
// VGOV only trades in London; AGGH is taken from its primary code.
var venueTickers = map[string]string{
	"VGOV": "VGOV.L",
	"IEF":  "IEF",
	"TLT":  "TLT",
	"AGGH": "AGGH",
}

func Ticker(symbol string) (string, bool) {
	ticker, ok := venueTickers[symbol]
	return ticker, ok
}

type YahooApi interface {
	GetHistory(ctx context.Context, ticker string, period model.Period) (model.PriceHistory, error)
	GetLastClose(ctx context.Context, ticker string) (decimal.Decimal, error)
}

type MarketGateway struct {
	api   YahooApi
	cache *cache.Cache
	cfg   *config.Config
}

func New(cfg *config.Config, api YahooApi, c *cache.Cache) *MarketGateway {
	return &MarketGateway{api: api, cache: c, cfg: cfg}
}

func (g *MarketGateway) GetPrice(ctx context.Context, symbol string) model.PriceQuote {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "MarketGateway.GetPrice"

	quote := model.PriceQuote{Symbol: symbol}

	ticker, ok := Ticker(symbol)
	if !ok {
		slog.Error("unknown symbol", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol))
		quote.Price = model.Failed[decimal.Decimal](fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol))
		return quote
	}
	quote.Ticker = ticker

	price, err := cache.Call(ctx, g.cache, cache.Key("price", ticker), g.cfg.Cache.PriceTTL, func(ctx context.Context) (decimal.Decimal, error) {
		return g.api.GetLastClose(ctx, ticker)
	})
	if err != nil {
		slog.Warn("price is unavailable", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", ticker), slog.String("err", err.Error()))
		quote.Price = toResult[decimal.Decimal](err)
		return quote
	}

	quote.Price = model.Success(price.Round(2))
	return quote
}

func (g *MarketGateway) GetPrices(ctx context.Context, symbols []string) []model.PriceQuote {
	quotes := make([]model.PriceQuote, 0, len(symbols))
	for _, symbol := range symbols {
		quotes = append(quotes, g.GetPrice(ctx, symbol))
	}
	return quotes
}

// GetHistory returns daily closes of symbol over period, model.DefaultLookback when period is empty.
func (g *MarketGateway) GetHistory(ctx context.Context, symbol string, period model.Period) model.Result[model.PriceHistory] {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "MarketGateway.GetHistory"

	ticker, ok := Ticker(symbol)
	if !ok {
		slog.Error("unknown symbol", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol))
		return model.Failed[model.PriceHistory](fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol))
	}

	return g.history(ctx, ticker, period, g.cfg.Cache.HistoryTTL)
}

// GetRates returns the last month of GBP/USD and of the US short rate.
func (g *MarketGateway) GetRates(ctx context.Context) model.MarketRates {
	return model.MarketRates{
		FX:        g.history(ctx, FXTicker, model.PeriodMonth, g.cfg.Cache.RatesTTL),
		ShortRate: g.history(ctx, ShortRateTicker, model.PeriodMonth, g.cfg.Cache.RatesTTL),
	}
}

func (g *MarketGateway) history(ctx context.Context, ticker string, period model.Period, ttl time.Duration) model.Result[model.PriceHistory] {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "MarketGateway.history"

	if period == "" {
		period = model.DefaultLookback
	}

	history, err := cache.Call(ctx, g.cache, cache.Key("history", ticker, string(period)), ttl, func(ctx context.Context) (model.PriceHistory, error) {
		return g.api.GetHistory(ctx, ticker, period)
	})
	if err != nil {
		slog.Warn("history is unavailable", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", ticker), slog.String("err", err.Error()))
		return toResult[model.PriceHistory](err)
	}

	if len(history) == 0 {
		return model.Unavailable[model.PriceHistory]("empty history")
	}

	return model.Success(history)
}

func toResult[T any](err error) model.Result[T] {
	if errors.Is(err, externalApi.ErrNotFound) {
		return model.Unavailable[T](err.Error())
	}
	return model.Failed[T](err)
}
