package store

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/vvka-141/zclload/pkg/zclload"
)

//go:embed schema.sql
var schemaTemplate string

const pkToken = "{{pk}}"

// Schema returns the DDL for driver with the primary key token expanded.
func Schema(driver string) (string, error) {
	var pk string
	switch driver {
	case zclload.DriverSQLite:
		pk = "INTEGER PRIMARY KEY AUTOINCREMENT"
	case zclload.DriverPostgres:
		pk = "BIGSERIAL PRIMARY KEY"
	default:
		return "", fmt.Errorf("no schema for driver %q: %w", driver, zclload.ErrInvalidConfig)
	}
	return strings.ReplaceAll(schemaTemplate, pkToken, pk), nil
}

// Statements splits the DDL for driver into individual statements with
// comment lines removed.
func Statements(driver string) ([]string, error) {
	ddl, err := Schema(driver)
	if err != nil {
		return nil, err
	}
	var lines []string
	for _, line := range strings.Split(ddl, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		lines = append(lines, line)
	}
	var stmts []string
	for _, stmt := range strings.Split(strings.Join(lines, "\n"), ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts, nil
}

// Migrate creates every table and index that does not exist yet, in one
// transaction.
func Migrate(ctx context.Context, s zclload.Store) error {
	stmts, err := Statements(s.Dialect())
	if err != nil {
		return err
	}
	tx, err := s.Begin(ctx)
	if err != nil {
		return err
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return tx.Commit(ctx)
}
