package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vvka-141/zclload/pkg/zclload"
	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory sqlite database.
const MemoryPath = ":memory:"

// SQLiteDSN builds the modernc DSN for a database file. Foreign keys are
// enforced so package deletes cascade to their rows.
func SQLiteDSN(path string) string {
	if path == MemoryPath {
		return "file::memory:?_pragma=foreign_keys(ON)"
	}
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", path)
}

// OpenSQLite opens (creating if needed) a sqlite database and applies the
// schema. Writes are serialized through a single connection.
func OpenSQLite(ctx context.Context, path string) (*SQLStore, error) {
	db, err := sql.Open("sqlite", SQLiteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite %s: %w", path, zclload.ErrConnectionFailed)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open sqlite %s: %w: %w", path, zclload.ErrConnectionFailed, err)
	}

	s := NewSQLStore(db, zclload.DriverSQLite)
	if err := Migrate(ctx, s); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}
