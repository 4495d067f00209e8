package retry_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vvka-141/zclload/internal/retry"
	"github.com/vvka-141/zclload/pkg/zclload"
)

// ExampleExecutor_WithOnRetry demonstrates retrying a load that finds the
// SQLite file busy twice before it succeeds
func ExampleExecutor_WithOnRetry() {
	busy := fmt.Errorf("begin transaction: %w: %w", zclload.ErrStoreFailed, errors.New("database is locked (5) (SQLITE_BUSY)"))

	strategy := retry.NewExponentialBackoff(3, retry.WithInitialDelay(time.Millisecond), retry.WithJitter(0))
	executor := retry.NewExecutor(retry.NewStoreErrorClassifier(), strategy).
		WithOnRetry(func(attempt int, err error, delay time.Duration) {
			fmt.Printf("retry %d in %v\n", attempt+1, delay)
		})

	calls := 0
	err := executor.Execute(context.Background(), func(ctx context.Context) error {
		calls++
		if calls <= 2 {
			return busy
		}
		return nil
	})

	fmt.Println("calls:", calls, "err:", err)

	// Output:
	// retry 1 in 1ms
	// retry 2 in 2ms
	// calls: 3 err: <nil>
}

// ExampleExecutor_Execute demonstrates that a parse failure is not retried
func ExampleExecutor_Execute() {
	executor := retry.NewExecutor(retry.NewStoreErrorClassifier(), retry.NewExponentialBackoff(3))

	calls := 0
	err := executor.Execute(context.Background(), func(ctx context.Context) error {
		calls++
		return fmt.Errorf("general.xml: %w", zclload.ErrParseFailed)
	})

	fmt.Println("calls:", calls)
	fmt.Println("parse failure:", errors.Is(err, zclload.ErrParseFailed))

	// Output:
	// calls: 1
	// parse failure: true
}
