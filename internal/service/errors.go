package service

import "errors"

var (
	ErrUnknownInstrument = errors.New("error unknown instrument")
	ErrInvalidAmount     = errors.New("error invalid amount")
	ErrReportTooLarge    = errors.New("error report is too large to send")
)
