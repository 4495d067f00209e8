package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vvka-141/zclload/internal/files/filesystem"
	"github.com/vvka-141/zclload/internal/logging"
	"github.com/vvka-141/zclload/internal/retry"
	"github.com/vvka-141/zclload/internal/store"
	"github.com/vvka-141/zclload/pkg/zclload"
	"go.uber.org/zap/zaptest/observer"
)

// flakyStore fails the first failures calls to Begin with a busy error.
type flakyStore struct {
	zclload.Store

	mu       sync.Mutex
	failures int
	begins   int
}

func (f *flakyStore) Begin(ctx context.Context) (zclload.Tx, error) {
	f.mu.Lock()
	f.begins++
	fail := f.failures > 0
	if fail {
		f.failures--
	}
	f.mu.Unlock()

	if fail {
		return nil, fmt.Errorf("failed to begin: %w: %w", zclload.ErrStoreFailed, errors.New("database is locked (5) (SQLITE_BUSY)"))
	}
	return f.Store.Begin(ctx)
}

type fixture struct {
	ctx    context.Context
	fs     *filesystem.MemoryFileSystem
	store  zclload.Store
	logs   *observer.ObservedLogs
	svc    *LoadService
	events []Event
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	ctx := context.Background()
	s, err := store.OpenSQLite(ctx, store.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return newFixtureWithStore(t, s, opts...)
}

func newFixtureWithStore(t *testing.T, s zclload.Store, opts ...Option) *fixture {
	t.Helper()
	logger, logs := logging.NewObserved()
	f := &fixture{ctx: context.Background(), fs: filesystem.NewMemoryFileSystem("/meta"), store: s, logs: logs}

	opts = append([]Option{
		WithObserver(ObserverFunc(func(e Event) { f.events = append(f.events, e) })),
		WithRetryStrategy(retry.NewExponentialBackoff(2, retry.WithInitialDelay(time.Millisecond), retry.WithJitter(0))),
	}, opts...)
	f.svc = NewLoadService(s, f.fs, logger, opts...)
	return f
}

// query runs stmt in a throwaway transaction.
func (f *fixture) query(t *testing.T, stmt string, args ...any) []zclload.Row {
	t.Helper()
	tx, err := f.store.Begin(f.ctx)
	require.NoError(t, err)
	defer tx.Rollback(f.ctx)
	rows, err := tx.QueryAll(f.ctx, stmt, args...)
	require.NoError(t, err)
	return rows
}

func (f *fixture) count(t *testing.T, stmt string, args ...any) int64 {
	t.Helper()
	return f.query(t, stmt, args...)[0].Int64("n")
}

// typeOf returns the name of the data type an attribute resolved to.
func (f *fixture) typeOf(t *testing.T, attribute string) string {
	t.Helper()
	rows := f.query(t, `
		SELECT D.NAME AS NAME FROM ATTRIBUTE A
		JOIN DATA_TYPE D ON D.DATA_TYPE_ID = A.DATA_TYPE_REF
		WHERE A.NAME = ?`, attribute)
	if len(rows) == 0 {
		return ""
	}
	return rows[0].String("name")
}
