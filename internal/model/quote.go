package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Period is a provider lookback window such as "1d", "1mo" or "6mo".
type Period string

const (
	PeriodDay      Period = "1d"
	PeriodMonth    Period = "1mo"
	PeriodHalfYear Period = "6mo"

	DefaultLookback = PeriodHalfYear
)

type PriceQuote struct {
	Symbol string
	Ticker string
	Price  Result[decimal.Decimal]
}

// String renders the price the way the dashboard shows it, "N/A" when missing.
func (q PriceQuote) String() string {
	if !q.Price.Ok() {
		return "N/A"
	}
	return q.Price.Value.StringFixed(2)
}

type PricePoint struct {
	Date  time.Time
	Close decimal.Decimal
}

// PriceHistory is ordered by date ascending.
type PriceHistory []PricePoint

func (h PriceHistory) Last() (PricePoint, bool) {
	if len(h) == 0 {
		return PricePoint{}, false
	}
	return h[len(h)-1], true
}

// Change returns the percent change between the first and the last close.
func (h PriceHistory) Change() decimal.Decimal {
	if len(h) < 2 || h[0].Close.IsZero() {
		return decimal.Zero
	}
	return h[len(h)-1].Close.Sub(h[0].Close).Mul(decimal.NewFromInt(100)).Div(h[0].Close)
}

func (h PriceHistory) MinMax() (lo, hi decimal.Decimal) {
	for i, p := range h {
		if i == 0 || p.Close.LessThan(lo) {
			lo = p.Close
		}
		if i == 0 || p.Close.GreaterThan(hi) {
			hi = p.Close
		}
	}
	return lo, hi
}

type MarketRates struct {
	FX        Result[PriceHistory] // GBP/USD
	ShortRate Result[PriceHistory] // US 13 week treasury yield
}
