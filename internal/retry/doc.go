// Package retry provides automatic retry logic with exponential backoff
// for transient store failures: connection setup against managed Postgres
// and whole load operations that hit a serialization failure, a deadlock or
// a busy SQLite file.
//
// # Example Usage
//
//	classifier := retry.NewStoreErrorClassifier()
//	strategy := retry.NewExponentialBackoff(zclload.DefaultRetryMaxAttempts)
//	executor := retry.NewExecutor(classifier, strategy)
//
//	err := executor.Execute(ctx, func(ctx context.Context) error {
//	    return loadOnce(ctx)
//	})
//
// # Error Classification
//
// The ErrorClassifier interface determines which errors are transient
// (retryable) versus fatal. PostgreSQLErrorClassifier recognizes connection
// exceptions, resource exhaustion, serialization failures, deadlocks and
// network errors. SQLiteErrorClassifier recognizes SQLITE_BUSY and
// SQLITE_LOCKED. StoreErrorClassifier combines both, but only for errors
// wrapped in zclload.ErrStoreFailed: a parse or manifest error fails the
// same way on every attempt and is never retried.
//
// # Backoff Strategies
//
// The BackoffStrategy interface controls retry timing. ExponentialBackoff
// multiplies the delay per attempt, caps it at a maximum and spreads it by
// a symmetric jitter.
//
// # Idempotence
//
// A whole load is safe to repeat: every attempt runs in its own
// transaction, and file qualification is hash based, so an attempt after a
// rollback sees the same registry state as the first one.
//
// # Thread Safety
//
// Executor instances are safe for concurrent use. Use WithOnRetry() to
// create independent configurations per goroutine.
package retry
