// Package apierror provides the standardized error envelopes for all API
// responses. Internal details (stack traces, SQL errors) never reach clients.
package apierror

// APIError is the canonical envelope for 4xx/5xx responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError wraps per-field validation failures.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "validation failed", Fields: fields}
}

// CapacityError reports a capacity guard rejection. MaxAllowed is the exact
// remaining capacity so the client can self-correct the quantity — this is a
// UX contract, not just an error code.
type CapacityError struct {
	Detail     string `json:"detail"`
	MaxAllowed int    `json:"max_allowed"`
}

func NewCapacity(msg string, maxAllowed int) *CapacityError {
	return &CapacityError{Detail: msg, MaxAllowed: maxAllowed}
}
