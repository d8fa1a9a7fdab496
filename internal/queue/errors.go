package queue

import "errors"

var (
	// ErrJobNotFound is returned when a job cannot be found in the database
	ErrJobNotFound = errors.New("job not found")

	// ErrJobAlreadyClaimed is returned when attempting to claim a job that's already claimed
	ErrJobAlreadyClaimed = errors.New("job already claimed or not in PENDING status")

	// ErrNoPendingJobs is returned by ClaimNext when the queue has nothing to do
	ErrNoPendingJobs = errors.New("no pending jobs")

	// ErrInvalidPayload is returned when job payload JSON is malformed
	ErrInvalidPayload = errors.New("invalid job payload")
)

// RetryableError wraps transient errors that should park a job in RETRY
// rather than fail it terminally.
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

// IsRetryable reports whether err is marked transient
func IsRetryable(err error) bool {
	var retryable *RetryableError
	return errors.As(err, &retryable)
}
