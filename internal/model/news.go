package model

import "time"

const (
	QueryBankOfEngland = "Bank of England rate cut"
	QueryFed           = "Fed interest rate cut"

	MaxNewsItems = 5
)

// NewsQueries are the monitored central bank phrases in display order.
var NewsQueries = []string{QueryBankOfEngland, QueryFed}

type NewsItem struct {
	Title       string
	Link        string
	Source      string
	PublishedAt time.Time
}

type NewsSection struct {
	Query string
	Items Result[[]NewsItem]
}
