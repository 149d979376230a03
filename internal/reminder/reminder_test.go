package reminder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/KotFed0t/bond_etf_tracker/internal/model"
)

var today = time.Date(2025, time.March, 10, 15, 30, 0, 0, time.UTC)

func TestNew_StartsStale(t *testing.T) {
	state := New(today)

	assert.Equal(t, 7, DaysSince(state, today))
	signal := Evaluate(state, today, DefaultStaleAfterDays)
	assert.Equal(t, model.ReminderStale, signal.Status)
	assert.Equal(t, 7, signal.Days)
}

func TestEvaluate_FiveDaysThenAcknowledge(t *testing.T) {
	state := model.ReminderState{LastAcknowledged: today.AddDate(0, 0, -5)}

	assert.Equal(t, 5, DaysSince(state, today))
	assert.Equal(t, model.ReminderStale, Evaluate(state, today, 3).Status)

	state = Acknowledge(today)

	assert.Equal(t, 0, DaysSince(state, today))
	assert.Equal(t, model.ReminderFresh, Evaluate(state, today, 3).Status)
}

func TestEvaluate_Threshold(t *testing.T) {
	tests := []struct {
		daysAgo int
		want    model.ReminderStatus
	}{
		{0, model.ReminderFresh},
		{1, model.ReminderFresh},
		{2, model.ReminderFresh},
		{3, model.ReminderStale},
		{30, model.ReminderStale},
	}

	for _, tt := range tests {
		state := model.ReminderState{LastAcknowledged: today.AddDate(0, 0, -tt.daysAgo)}
		assert.Equal(t, tt.want, Evaluate(state, today, 0).Status, "daysAgo=%d", tt.daysAgo)
	}
}

func TestDaysSince_IgnoresTimeOfDay(t *testing.T) {
	state := model.ReminderState{LastAcknowledged: time.Date(2025, time.March, 9, 23, 59, 0, 0, time.UTC)}
	morning := time.Date(2025, time.March, 10, 0, 1, 0, 0, time.UTC)

	assert.Equal(t, 1, DaysSince(state, morning))
}
