package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned for malformed input, before any network call
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound is returned when a product, resource or prompt does not exist.
	// It is an expected outcome, not a fault.
	ErrNotFound = errors.New("not found")

	// ErrUpstreamUnavailable is returned for transport failures and non-2xx replies
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")

	// ErrUpstreamMalformed is returned when an upstream reply cannot be decoded
	// or lacks its expected top-level keys
	ErrUpstreamMalformed = errors.New("upstream response malformed")
)

// ErrorCategory classifies a capability failure for callers.
type ErrorCategory string

const (
	CategoryInvalidArgument     ErrorCategory = "INVALID_ARGUMENT"
	CategoryNotFound            ErrorCategory = "NOT_FOUND"
	CategoryUpstreamUnavailable ErrorCategory = "UPSTREAM_UNAVAILABLE"
	CategoryUpstreamMalformed   ErrorCategory = "UPSTREAM_MALFORMED"
	CategoryInternal            ErrorCategory = "INTERNAL"
)

// NewInvalidArgument formats an error wrapping ErrInvalidArgument.
func NewInvalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// UpstreamError is a non-2xx reply from one of the upstream services.
type UpstreamError struct {
	Service    string
	StatusCode int
	Detail     string
	Err        error
}

func (e *UpstreamError) Error() string {
	msg := fmt.Sprintf("%v: %s returned status %d", e.Err, e.Service, e.StatusCode)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// StatusCodeOf returns the upstream HTTP status carried by err, or 0.
func StatusCodeOf(err error) int {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.StatusCode
	}
	return 0
}

// CategoryOf maps an error chain to its category.
func CategoryOf(err error) ErrorCategory {
	var ce *CapabilityError
	if errors.As(err, &ce) {
		return ce.Category
	}
	switch {
	case errors.Is(err, ErrInvalidArgument):
		return CategoryInvalidArgument
	case errors.Is(err, ErrNotFound):
		return CategoryNotFound
	case errors.Is(err, ErrUpstreamMalformed):
		return CategoryUpstreamMalformed
	case errors.Is(err, ErrUpstreamUnavailable):
		return CategoryUpstreamUnavailable
	default:
		return CategoryInternal
	}
}

// CapabilityError is the structured failure returned across the capability
// boundary. It keeps the capability name and raw arguments for diagnosis.
type CapabilityError struct {
	Capability   string          `json:"capability"`
	Arguments    json.RawMessage `json:"arguments,omitempty"`
	Category     ErrorCategory   `json:"category"`
	Message      string          `json:"message"`
	Hint         string          `json:"hint,omitempty"`
	StatusCode   int             `json:"statusCode,omitempty"`
	InvocationID string          `json:"invocationId,omitempty"`
	Err          error           `json:"-"`
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Category, e.Capability, e.Message)
}

func (e *CapabilityError) Unwrap() error {
	return e.Err
}

// UserMessage is the text shown to the calling agent.
func (e *CapabilityError) UserMessage() string {
	if e.Hint == "" {
		return e.Message
	}
	return e.Message + "\n\n" + e.Hint
}

// IsNotFound reports whether err is a not-found outcome.
func IsNotFound(err error) bool {
	return CategoryOf(err) == CategoryNotFound
}

// IsUpstreamFailure reports whether err came from an upstream service,
// whether unavailable or malformed.
func IsUpstreamFailure(err error) bool {
	return errors.Is(err, ErrUpstreamUnavailable) || errors.Is(err, ErrUpstreamMalformed)
}
