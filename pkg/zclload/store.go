package zclload

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Store is the narrow relational contract the loader is written against.
// Statements use '?' placeholders; backends rebind as needed.
type Store interface {
	// Begin starts a transaction. Every load operation runs inside one.
	Begin(ctx context.Context) (Tx, error)

	// Dialect names the SQL flavor (DriverSQLite or DriverPostgres).
	Dialect() string

	// Close releases the underlying connection or pool.
	Close() error
}

// Tx is an open transaction. Implementations serialize statements so that
// concurrent callers inside one load operation interleave only at statement
// boundaries.
type Tx interface {
	Exec(ctx context.Context, stmt string, args ...any) (int64, error)
	QueryAll(ctx context.Context, stmt string, args ...any) ([]Row, error)
	InsertReturningID(ctx context.Context, stmt string, args ...any) (int64, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Row is one result row keyed by lower-cased column name.
type Row map[string]any

// Int64 returns the named column as an int64, or 0 when NULL or absent.
func (r Row) Int64(col string) int64 {
	v, _ := r.NullInt64(col)
	return v
}

// NullInt64 returns the named column as an int64 and whether it was non-NULL.
func (r Row) NullInt64(col string) (int64, bool) {
	switch v := r[strings.ToLower(col)].(type) {
	case int64:
		return v, true
	case int32:
		return int64(v), true
	case int:
		return int64(v), true
	case int16:
		return int64(v), true
	case float64:
		return int64(v), true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case []byte:
		n, err := strconv.ParseInt(string(v), 10, 64)
		return n, err == nil
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

// String returns the named column as a string, or "" when NULL.
func (r Row) String(col string) string {
	switch v := r[strings.ToLower(col)].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

// Bool returns the named column interpreted as an integer flag.
func (r Row) Bool(col string) bool {
	return r.Int64(col) != 0
}
