package tracker

import (
	"errors"
	"fmt"

	"github.com/KotFed0t/bond_etf_tracker/internal/model"
	"github.com/shopspring/decimal"
)

var (
	ErrUnknownInstrument = errors.New("unknown instrument")
	ErrInvalidTarget     = errors.New("invalid allocation target")
)

var hundred = decimal.NewFromInt(100)

// Tracker holds the fixed allocation plan. It keeps no purchase state: records
// come in with every call.
type Tracker struct {
	targets []model.AllocationTarget
	index   map[string]int
}

func New(targets []model.AllocationTarget) (*Tracker, error) {
	t := &Tracker{
		targets: make([]model.AllocationTarget, len(targets)),
		index:   make(map[string]int, len(targets)),
	}
	copy(t.targets, targets)

	for i, target := range t.targets {
		if target.Symbol == "" {
			return nil, fmt.Errorf("%w: empty symbol at position %d", ErrInvalidTarget, i)
		}
		if !target.Target.IsPositive() {
			return nil, fmt.Errorf("%w: %s target must be positive, got %s", ErrInvalidTarget, target.Symbol, target.Target)
		}
		if _, ok := t.index[target.Symbol]; ok {
			return nil, fmt.Errorf("%w: duplicate symbol %s", ErrInvalidTarget, target.Symbol)
		}
		t.index[target.Symbol] = i
	}

	return t, nil
}

func (t *Tracker) Targets() []model.AllocationTarget {
	res := make([]model.AllocationTarget, len(t.targets))
	copy(res, t.targets)
	return res
}

func (t *Tracker) Symbols() []string {
	res := make([]string, 0, len(t.targets))
	for _, target := range t.targets {
		res = append(res, target.Symbol)
	}
	return res
}

func (t *Tracker) Target(symbol string) (decimal.Decimal, error) {
	i, ok := t.index[symbol]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrUnknownInstrument, symbol)
	}
	return t.targets[i].Target, nil
}

// Progress returns purchased as a percentage of target, 0 for a non-positive target.
func Progress(target, purchased decimal.Decimal) decimal.Decimal {
	if !target.IsPositive() {
		return decimal.Zero
	}
	return purchased.Mul(hundred).Div(target)
}

// Clamp bounds amount to [0, target] of the instrument and reports whether it had to.
func (t *Tracker) Clamp(symbol string, amount decimal.Decimal) (decimal.Decimal, bool, error) {
	target, err := t.Target(symbol)
	if err != nil {
		return decimal.Zero, false, err
	}

	switch {
	case amount.IsNegative():
		return decimal.Zero, true, nil
	case amount.GreaterThan(target):
		return target, true, nil
	default:
		return amount, false, nil
	}
}

// Summarize returns one row per instrument in declaration order. Missing records
// count as nothing bought, records for unknown symbols are ignored and amounts
// out of [0, target] are clamped.
func (t *Tracker) Summarize(records []model.PurchaseRecord) []model.ProgressRow {
	purchased := make([]decimal.Decimal, len(t.targets))
	for _, record := range records {
		i, ok := t.index[record.Symbol]
		if !ok {
			continue
		}
		amount, _, _ := t.Clamp(record.Symbol, record.Amount)
		purchased[i] = amount
	}

	rows := make([]model.ProgressRow, 0, len(t.targets))
	for i, target := range t.targets {
		rows = append(rows, model.ProgressRow{
			Symbol:    target.Symbol,
			Purchased: purchased[i],
			Target:    target.Target,
			Progress:  Progress(target.Target, purchased[i]),
		})
	}

	return rows
}

func Totals(rows []model.ProgressRow) model.ProgressTotals {
	totals := model.ProgressTotals{}
	for _, row := range rows {
		totals.Purchased = totals.Purchased.Add(row.Purchased)
		totals.Target = totals.Target.Add(row.Target)
	}
	totals.Progress = Progress(totals.Target, totals.Purchased)
	return totals
}
