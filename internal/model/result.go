package model

import "errors"

type ResultStatus int

const (
	StatusSuccess ResultStatus = iota
	StatusUnavailable
	StatusFailed
)

func (s ResultStatus) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusUnavailable:
		return "unavailable"
	default:
		return "failed"
	}
}

// Result is what gateways hand out instead of errors. Unavailable means the
// provider answered without data, Failed means the call itself broke.
type Result[T any] struct {
	Value  T
	Status ResultStatus
	Reason string
}

func Success[T any](v T) Result[T] {
	return Result[T]{Value: v, Status: StatusSuccess}
}

func Unavailable[T any](reason string) Result[T] {
	return Result[T]{Status: StatusUnavailable, Reason: reason}
}

func Failed[T any](err error) Result[T] {
	if err == nil {
		err = errors.New("unknown error")
	}
	return Result[T]{Status: StatusFailed, Reason: err.Error()}
}

func (r Result[T]) Ok() bool {
	return r.Status == StatusSuccess
}

func (r Result[T]) ValueOr(def T) T {
	if r.Ok() {
		return r.Value
	}
	return def
}
