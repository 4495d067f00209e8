package store

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vvka-141/zclload/pkg/zclload"
)

// PgxStore is the postgres backend on a pgx connection pool.
type PgxStore struct {
	pool    *pgxpool.Pool
	closers []io.Closer
}

// NewPgxStore wraps an established pool. Close closes the pool, then each
// closer (for example a Cloud SQL dialer).
func NewPgxStore(pool *pgxpool.Pool, closers ...io.Closer) *PgxStore {
	return &PgxStore{pool: pool, closers: closers}
}

// Begin starts a transaction on a pooled connection.
func (s *PgxStore) Begin(ctx context.Context) (zclload.Tx, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, storeError("begin transaction", err)
	}
	return &pgxTx{tx: tx}, nil
}

// Dialect returns DriverPostgres.
func (s *PgxStore) Dialect() string { return zclload.DriverPostgres }

// Close closes the pool and releases the closers.
func (s *PgxStore) Close() error {
	s.pool.Close()
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// Pool exposes the underlying pool for diagnostics.
func (s *PgxStore) Pool() *pgxpool.Pool { return s.pool }

type pgxTx struct {
	mu sync.Mutex
	tx pgx.Tx
}

func (t *pgxTx) Exec(ctx context.Context, stmt string, args ...any) (int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	tag, err := t.tx.Exec(ctx, Rebind(stmt), args...)
	if err != nil {
		return 0, storeError(summarize(stmt), err)
	}
	return tag.RowsAffected(), nil
}

func (t *pgxTx) QueryAll(ctx context.Context, stmt string, args ...any) ([]zclload.Row, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	rows, err := t.tx.Query(ctx, Rebind(stmt), args...)
	if err != nil {
		return nil, storeError(summarize(stmt), err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	var out []zclload.Row
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, storeError(summarize(stmt), err)
		}
		row := make(zclload.Row, len(fields))
		for i, f := range fields {
			row[strings.ToLower(f.Name)] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError(summarize(stmt), err)
	}
	return out, nil
}

func (t *pgxTx) InsertReturningID(ctx context.Context, stmt string, args ...any) (int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var id int64
	if err := t.tx.QueryRow(ctx, Rebind(stmt), args...).Scan(&id); err != nil {
		return 0, storeError(summarize(stmt), err)
	}
	return id, nil
}

func (t *pgxTx) Commit(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.tx.Commit(ctx); err != nil {
		return storeError("commit", err)
	}
	return nil
}

func (t *pgxTx) Rollback(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return storeError("rollback", err)
	}
	return nil
}
