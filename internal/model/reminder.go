package model

import "time"

type ReminderState struct {
	LastAcknowledged time.Time `json:"lastAcknowledged"`
}

type ReminderStatus int

const (
	ReminderFresh ReminderStatus = iota
	ReminderStale
)

func (s ReminderStatus) String() string {
	if s == ReminderStale {
		return "stale"
	}
	return "fresh"
}

type ReminderSignal struct {
	Days   int
	Status ReminderStatus
}
