package zclload

import "time"

// ErrorClassifier determines if errors are transient (retryable) or permanent.
type ErrorClassifier interface {
	IsTransient(err error) bool
}

// BackoffStrategy calculates delays between retry attempts.
type BackoffStrategy interface {
	NextDelay(attempt int) time.Duration
	MaxAttempts() int
}
