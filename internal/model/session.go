package model

import (
	"github.com/shopspring/decimal"
)

type action int

const (
	DefaultAction action = iota
	ExpectingPurchasedAmount
)

type Session struct {
	Action    action                     `json:"action"`
	Symbol    string                     `json:"symbol,omitempty"`
	Purchases map[string]decimal.Decimal `json:"purchases,omitempty"`
	Reminder  *ReminderState             `json:"reminder,omitempty"`
}

func (s Session) PurchaseRecords() []PurchaseRecord {
	records := make([]PurchaseRecord, 0, len(s.Purchases))
	for symbol, amount := range s.Purchases {
		records = append(records, PurchaseRecord{Symbol: symbol, Amount: amount})
	}
	return records
}

type Dashboard struct {
	Reminder ReminderSignal
	Quotes   []PriceQuote
	Rows     []ProgressRow
	Totals   ProgressTotals
}
