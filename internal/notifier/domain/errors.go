package domain

import "errors"

var (
	// ErrInvalidPayload is returned when an event body cannot be parsed
	ErrInvalidPayload = errors.New("invalid event payload")
)

// RetryableError wraps transient delivery failures that should trigger a requeue
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string {
	return "retryable error: " + e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// NewRetryableError creates a new retryable error
func NewRetryableError(err error) error {
	return &RetryableError{Err: err}
}
