package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/vvka-141/zclload/pkg/zclload"
)

// SQLStore adapts a database/sql handle to zclload.Store. It backs the
// sqlite driver and tests that substitute a mocked *sql.DB.
type SQLStore struct {
	db      *sql.DB
	dialect string
}

// NewSQLStore wraps db. dialect is reported by Dialect and selects the DDL.
func NewSQLStore(db *sql.DB, dialect string) *SQLStore {
	return &SQLStore{db: db, dialect: dialect}
}

// Begin starts a transaction.
func (s *SQLStore) Begin(ctx context.Context) (zclload.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storeError("begin transaction", err)
	}
	return &sqlTx{tx: tx}, nil
}

// Dialect returns the configured SQL flavor.
func (s *SQLStore) Dialect() string { return s.dialect }

// Close closes the underlying handle.
func (s *SQLStore) Close() error { return s.db.Close() }

// DB exposes the underlying handle for diagnostics.
func (s *SQLStore) DB() *sql.DB { return s.db }

type sqlTx struct {
	mu sync.Mutex
	tx *sql.Tx
}

func (t *sqlTx) Exec(ctx context.Context, stmt string, args ...any) (int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	res, err := t.tx.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, storeError(summarize(stmt), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return n, nil
}

func (t *sqlTx) QueryAll(ctx context.Context, stmt string, args ...any) ([]zclload.Row, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	rows, err := t.tx.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, storeError(summarize(stmt), err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, storeError(summarize(stmt), err)
	}
	var out []zclload.Row
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, storeError(summarize(stmt), err)
		}
		row := make(zclload.Row, len(cols))
		for i, c := range cols {
			row[strings.ToLower(c)] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError(summarize(stmt), err)
	}
	return out, nil
}

func (t *sqlTx) InsertReturningID(ctx context.Context, stmt string, args ...any) (int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var id int64
	if err := t.tx.QueryRowContext(ctx, stmt, args...).Scan(&id); err != nil {
		return 0, storeError(summarize(stmt), err)
	}
	return id, nil
}

func (t *sqlTx) Commit(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.tx.Commit(); err != nil {
		return storeError("commit", err)
	}
	return nil
}

func (t *sqlTx) Rollback(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return storeError("rollback", err)
	}
	return nil
}

// storeError wraps a driver error with ErrStoreFailed while keeping the
// driver error reachable for retry classification.
func storeError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, zclload.ErrStoreFailed, err)
}

// summarize shortens a statement to its first line for error messages.
func summarize(stmt string) string {
	stmt = strings.TrimSpace(stmt)
	if i := strings.IndexByte(stmt, '\n'); i >= 0 {
		stmt = stmt[:i]
	}
	if len(stmt) > 80 {
		stmt = stmt[:77] + "..."
	}
	return stmt
}
