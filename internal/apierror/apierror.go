// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// Validation wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Validation error", Fields: fields}
}

// ConflictError is a 409 that also returns the resource's current state.
type ConflictError struct {
	Detail string `json:"detail"`
	Report any    `json:"report,omitempty"`
}

func NewConflict(msg string, report any) *ConflictError {
	return &ConflictError{Detail: msg, Report: report}
}

// InternalError is the 500 body. RequestID lets support match a report from
// the register to the server log line.
type InternalError struct {
	Detail    string `json:"detail"`
	RequestID string `json:"request_id,omitempty"`
}

func NewInternal(requestID string) *InternalError {
	return &InternalError{Detail: "Internal server error.", RequestID: requestID}
}
