package retry

import (
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vvka-141/zclload/pkg/zclload"
)

// PostgreSQL error classes and codes that describe transient conditions.
// See: https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	pgClassConnectionException  = "08"
	pgClassInsufficientRes      = "53"
	pgClassOperatorIntervention = "57"

	pgCodeSerializationFailure = "40001"
	pgCodeDeadlockDetected     = "40P01"
	pgCodeLockNotAvailable     = "55P03"
)

// SQLite result codes for a database held by another connection.
const (
	sqliteBusy   = 5
	sqliteLocked = 6
)

// PostgreSQLErrorClassifier recognizes transient pgx and network errors.
type PostgreSQLErrorClassifier struct{}

// NewPostgreSQLErrorClassifier creates a new PostgreSQL error classifier.
func NewPostgreSQLErrorClassifier() *PostgreSQLErrorClassifier {
	return &PostgreSQLErrorClassifier{}
}

// IsTransient determines if an error is temporary and retryable.
func (c *PostgreSQLErrorClassifier) IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return isTransientPgCode(pgErr.Code)
	}
	return isNetworkError(err) || containsAny(err, connectionPatterns)
}

func isTransientPgCode(code string) bool {
	switch {
	case strings.HasPrefix(code, pgClassConnectionException),
		strings.HasPrefix(code, pgClassInsufficientRes),
		strings.HasPrefix(code, pgClassOperatorIntervention):
		return true
	}
	switch code {
	case pgCodeSerializationFailure, pgCodeDeadlockDetected, pgCodeLockNotAvailable:
		return true
	}
	return false
}

func isNetworkError(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.Temporary() || dnsErr.Timeout()
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Temporary() || opErr.Timeout() {
			return true
		}
		for _, errno := range []syscall.Errno{syscall.ECONNREFUSED, syscall.ECONNRESET, syscall.ENETUNREACH, syscall.EHOSTUNREACH} {
			if errors.Is(opErr.Err, errno) {
				return true
			}
		}
	}
	return false
}

var connectionPatterns = []string{
	"connection refused",
	"connection reset",
	"connection timeout",
	"connection failure",
	"no such host",
	"network is unreachable",
	"i/o timeout",
	"broken pipe",
	"too many connections",
	"server closed the connection",
	"unexpected eof",
	"connection pool exhausted",
	"context deadline exceeded",
}

// SQLiteErrorClassifier treats a busy or locked database as transient.
// Any error exposing a Code() int method is checked against the SQLite
// primary result codes; other errors fall back to message matching.
type SQLiteErrorClassifier struct{}

// NewSQLiteErrorClassifier creates a new SQLite error classifier.
func NewSQLiteErrorClassifier() *SQLiteErrorClassifier {
	return &SQLiteErrorClassifier{}
}

// IsTransient determines if an error is temporary and retryable.
func (c *SQLiteErrorClassifier) IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var coded interface{ Code() int }
	if errors.As(err, &coded) {
		primary := coded.Code() & 0xff
		return primary == sqliteBusy || primary == sqliteLocked
	}
	return containsAny(err, sqlitePatterns)
}

var sqlitePatterns = []string{
	"database is locked",
	"database table is locked",
	"sqlite_busy",
}

// StoreErrorClassifier decides whether a whole load operation may be
// retried. Only store failures qualify: a parse or manifest error fails
// the same way on every attempt.
type StoreErrorClassifier struct {
	classifiers []zclload.ErrorClassifier
}

// NewStoreErrorClassifier combines the PostgreSQL and SQLite classifiers.
func NewStoreErrorClassifier() *StoreErrorClassifier {
	return &StoreErrorClassifier{classifiers: []zclload.ErrorClassifier{
		NewPostgreSQLErrorClassifier(),
		NewSQLiteErrorClassifier(),
	}}
}

// IsTransient determines if an error is temporary and retryable.
func (c *StoreErrorClassifier) IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if !errors.Is(err, zclload.ErrStoreFailed) && !errors.Is(err, zclload.ErrConnectionFailed) {
		return false
	}
	for _, cl := range c.classifiers {
		if cl.IsTransient(err) {
			return true
		}
	}
	return false
}

func containsAny(err error, patterns []string) bool {
	msg := strings.ToLower(err.Error())
	for _, p := range patterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}
