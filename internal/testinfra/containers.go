// Package testinfra starts throwaway infrastructure for integration tests.
package testinfra

import (
	"context"
	"fmt"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Settings of the disposable metadata database.
const (
	PostgresImage    = "postgres:17-alpine"
	PostgresUser     = "zclload"
	PostgresPassword = "zclload"
	PostgresDB       = "zcl"

	startupTimeout = time.Minute
)

// PostgresContainer is a running server and the URI that reaches it.
type PostgresContainer struct {
	*postgres.PostgresContainer
	ConnString string
}

// StartPostgres runs a disposable postgres server for store tests.
// The server logs "ready" twice: once for the init run, once for real.
func StartPostgres(ctx context.Context) (*PostgresContainer, error) {
	ready := wait.ForLog("database system is ready to accept connections").
		WithOccurrence(2).
		WithStartupTimeout(startupTimeout)

	ctr, err := postgres.Run(ctx, PostgresImage,
		postgres.WithUsername(PostgresUser),
		postgres.WithPassword(PostgresPassword),
		postgres.WithDatabase(PostgresDB),
		testcontainers.WithWaitStrategy(ready),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	uri, err := ctr.ConnectionString(ctx, "sslmode=disable", "application_name=zclload-test")
	if err != nil {
		_ = ctr.Terminate(ctx)
		return nil, fmt.Errorf("failed to read container connection string: %w", err)
	}
	return &PostgresContainer{PostgresContainer: ctr, ConnString: uri}, nil
}
