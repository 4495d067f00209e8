package retry

import (
	"context"
	"time"

	"github.com/vvka-141/zclload/pkg/zclload"
)

// Executor orchestrates retry attempts with backoff and error classification.
//
// Thread Safety:
// The Executor is safe for concurrent use when calling Execute(). It holds
// no per-call state. WithOnRetry() returns a NEW instance with the callback
// configured and leaves the receiver unchanged, so a shared Executor can be
// specialized per load without synchronization.
type Executor struct {
	classifier zclload.ErrorClassifier
	strategy   zclload.BackoffStrategy
	onRetry    func(attempt int, err error, delay time.Duration)
}

// NewExecutor creates a new retry executor with the given configuration.
// Panics if classifier or strategy is nil.
func NewExecutor(classifier zclload.ErrorClassifier, strategy zclload.BackoffStrategy) *Executor {
	if classifier == nil {
		panic("classifier cannot be nil")
	}
	if strategy == nil {
		panic("strategy cannot be nil")
	}
	return &Executor{classifier: classifier, strategy: strategy}
}

// WithOnRetry returns a new Executor that calls callback before each wait.
// attempt is zero-based; delay is the wait that follows the call.
//
// This method does NOT modify the receiver; it returns a new instance.
//
// Example:
//
//	executor := retry.NewExecutor(retry.NewStoreErrorClassifier(), strategy).
//	    WithOnRetry(func(attempt int, err error, delay time.Duration) {
//	        logger.Warn("Transient store failure, retry %d in %v: %v", attempt+1, delay, err)
//	    })
func (e *Executor) WithOnRetry(callback func(attempt int, err error, delay time.Duration)) *Executor {
	clone := *e
	clone.onRetry = callback
	return &clone
}

// Execute runs operation once, then retries transient failures until the
// strategy's attempt limit is reached. A negative limit retries until ctx
// ends.
//
// Returns nil on success, the first fatal error, the last transient error
// once attempts are exhausted, or the context error if ctx ends before or
// during a wait. operation receives ctx unchanged on every attempt.
func (e *Executor) Execute(ctx context.Context, operation func(ctx context.Context) error) error {
	err := operation(ctx)
	if err == nil || !e.classifier.IsTransient(err) {
		return err
	}

	limit := e.strategy.MaxAttempts()
	for attempt := 0; limit < 0 || attempt < limit; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		delay := e.strategy.NextDelay(attempt)
		if e.onRetry != nil {
			e.onRetry(attempt, err, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		err = operation(ctx)
		if err == nil || !e.classifier.IsTransient(err) {
			return err
		}
	}
	return err
}
