package model

import "github.com/shopspring/decimal"

type AllocationTarget struct {
	Symbol string
	Target decimal.Decimal
}

// DefaultTargets is the fixed build-out plan, in display order.
var DefaultTargets = []AllocationTarget{
	{Symbol: "VGOV", Target: decimal.NewFromInt(21000)},
	{Symbol: "IEF", Target: decimal.NewFromInt(18000)},
	{Symbol: "TLT", Target: decimal.NewFromInt(12000)},
	{Symbol: "AGGH", Target: decimal.NewFromInt(9000)},
}

type PurchaseRecord struct {
	Symbol string
	Amount decimal.Decimal
}

type ProgressRow struct {
	Symbol    string
	Purchased decimal.Decimal
	Target    decimal.Decimal
	Progress  decimal.Decimal // percent, 0..100
}

type ProgressTotals struct {
	Purchased decimal.Decimal
	Target    decimal.Decimal
	Progress  decimal.Decimal
}
