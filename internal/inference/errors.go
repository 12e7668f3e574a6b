package inference

import "errors"

// RateLimitError marks a provider rate-limit rejection. Rate limits are
// transient by definition; IsTransient reports true for them.
type RateLimitError struct {
	err error
}

func (e *RateLimitError) Error() string {
	return e.err.Error()
}

func (e *RateLimitError) Unwrap() error {
	return e.err
}

// NewRateLimitError wraps an error as a rate-limit rejection.
func NewRateLimitError(err error) error {
	return &RateLimitError{err: err}
}

// TransientError represents a temporary failure that may succeed on retry.
type TransientError struct {
	err error
}

func (e *TransientError) Error() string {
	return e.err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.err
}

// NewTransientError wraps an error as transient (retryable).
func NewTransientError(err error) error {
	return &TransientError{err: err}
}

// FatalError represents a permanent failure that should not be retried.
type FatalError struct {
	err error
}

func (e *FatalError) Error() string {
	return e.err.Error()
}

func (e *FatalError) Unwrap() error {
	return e.err
}

// NewFatalError wraps an error as fatal (non-retryable).
func NewFatalError(err error) error {
	return &FatalError{err: err}
}

// IsRateLimit returns true if the error is a rate-limit rejection.
func IsRateLimit(err error) bool {
	var rl *RateLimitError
	return errors.As(err, &rl)
}

// IsTransient returns true if the error should be retried.
func IsTransient(err error) bool {
	if IsRateLimit(err) {
		return true
	}
	var transient *TransientError
	return errors.As(err, &transient)
}

// IsFatal returns true if the error is permanent.
func IsFatal(err error) bool {
	var fatal *FatalError
	return errors.As(err, &fatal)
}
