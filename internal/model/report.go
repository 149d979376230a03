package model

import "time"

type ProgressReport struct {
	GeneratedAt time.Time
	Rows        []ProgressRow
	Totals      ProgressTotals
	Quotes      []PriceQuote
}
