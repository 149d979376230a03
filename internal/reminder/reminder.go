// Package reminder tracks how long ago the user last looked at rate-cut news.
// State is owned by the caller's session; every function here is pure.
package reminder

import (
	"time"

	"github.com/KotFed0t/bond_etf_tracker/internal/model"
)

const (
	DefaultStaleAfterDays = 3
	initialLookbackDays   = 7
)

// Day truncates t to its calendar date at UTC midnight.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// New is the state of a session that never acknowledged anything: a week ago.
func New(today time.Time) model.ReminderState {
	return model.ReminderState{LastAcknowledged: Day(today).AddDate(0, 0, -initialLookbackDays)}
}

func Acknowledge(today time.Time) model.ReminderState {
	return model.ReminderState{LastAcknowledged: Day(today)}
}

func DaysSince(state model.ReminderState, today time.Time) int {
	return int(Day(today).Sub(Day(state.LastAcknowledged)).Hours() / 24)
}

func Evaluate(state model.ReminderState, today time.Time, staleAfterDays int) model.ReminderSignal {
	if staleAfterDays <= 0 {
		staleAfterDays = DefaultStaleAfterDays
	}

	days := DaysSince(state, today)
	status := model.ReminderFresh
	if days >= staleAfterDays {
		status = model.ReminderStale
	}

	return model.ReminderSignal{Days: days, Status: status}
}
