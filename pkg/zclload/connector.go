package zclload

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connector establishes postgres connection pools for the pgx store backend.
type Connector interface {
	Connect(ctx context.Context) (*pgxpool.Pool, error)
}
