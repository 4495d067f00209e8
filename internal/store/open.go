package store

import (
	"context"
	"fmt"
	"io"

	"github.com/vvka-141/zclload/internal/db"
	"github.com/vvka-141/zclload/pkg/zclload"
)

// Open validates cfg, connects to the configured store and applies the
// schema. env may be nil; it is only consulted for postgres.
func Open(ctx context.Context, cfg zclload.StoreConfig, env *db.EnvVars, logger zclload.Logger) (zclload.Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Driver {
	case zclload.DriverSQLite:
		logger.Verbose("opening sqlite store %s", cfg.DSN)
		return OpenSQLite(ctx, cfg.DSN)
	case zclload.DriverPostgres:
		return openPostgres(ctx, cfg, env, logger)
	}
	return nil, fmt.Errorf("unknown store driver %q: %w", cfg.Driver, zclload.ErrInvalidConfig)
}

func openPostgres(ctx context.Context, cfg zclload.StoreConfig, env *db.EnvVars, logger zclload.Logger) (zclload.Store, error) {
	conn, err := db.ResolveConnection(cfg, env)
	if err != nil {
		return nil, err
	}
	connector, err := db.NewConnector(conn, logger)
	if err != nil {
		return nil, err
	}

	logger.Verbose("connecting to postgres %s:%d/%s (%s auth)", conn.Host, conn.Port, conn.Database, conn.AuthMethod)
	pool, err := connector.Connect(ctx)
	if err != nil {
		return nil, err
	}

	var closers []io.Closer
	if c, ok := connector.(io.Closer); ok {
		closers = append(closers, c)
	}
	s := NewPgxStore(pool, closers...)
	if err := Migrate(ctx, s); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}
