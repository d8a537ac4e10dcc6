package service

import (
	"errors"
	"fmt"
)

// Domain errors. Every one is a caller or state error surfaced to the client
// with its message as detail; none is retried.
var (
	ErrInvalidDate          = errors.New("invalid date")
	ErrMalformedDate        = fmt.Errorf("%w: use YYYY-MM-DD", ErrInvalidDate)
	ErrFutureDate           = fmt.Errorf("%w: future dates are not allowed", ErrInvalidDate)
	ErrNotToday             = fmt.Errorf("%w: only allowed for today", ErrInvalidDate)
	ErrInvalidMode          = errors.New("invalid mode: use 'simple' or 'detailed'")
	ErrInvalidFormat        = errors.New("invalid format: use 'pdf' or 'csv'")
	ErrDayClosed            = errors.New("day is closed: no new orders or payments are allowed")
	ErrAlreadyStarted       = errors.New("this day is already started")
	ErrAlreadyClosed        = errors.New("this day is already closed")
	ErrNotStarted           = errors.New("day not started: start the day first")
	ErrExportNotAllowed     = errors.New("export is allowed only after day closing")
	ErrRenderingUnavailable = errors.New("report rendering is unavailable")
	ErrMailerUnavailable    = errors.New("email delivery is not configured")
	ErrNotFound             = errors.New("not found")
	ErrInvalidOrder         = errors.New("invalid order")
	ErrStatusTransition     = errors.New("order status change not allowed")
	ErrInvalidTaxType       = errors.New("invalid tax type")
	ErrInvalidCredentials   = errors.New("invalid credentials")
)

// ConflictError is a lifecycle refusal that carries the day's current report
// so the client can render it alongside the error.
type ConflictError struct {
	Err    error
	Report any
}

func (e *ConflictError) Error() string { return e.Err.Error() }
func (e *ConflictError) Unwrap() error { return e.Err }
