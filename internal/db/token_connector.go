package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vvka-141/zclload/internal/logging"
	"github.com/vvka-141/zclload/internal/retry"
	"github.com/vvka-141/zclload/pkg/zclload"
)

// tokenExpiryWarning is the remaining lifetime below which a fresh token is
// reported; a long load may outlive it.
const tokenExpiryWarning = 5 * time.Minute

// TokenBasedConnector connects to managed Postgres (AWS IAM, Azure Entra ID)
// using a short-lived token as the password.
type TokenBasedConnector struct {
	config        *zclload.ConnectionConfig
	tokenProvider TokenProvider
	retryExecutor *retry.Executor
	providerName  string
	logger        zclload.Logger
}

// NewTokenBasedConnector creates a connector that authenticates with tokens
// from tokenProvider. providerName appears in errors and warnings.
func NewTokenBasedConnector(config *zclload.ConnectionConfig, tokenProvider TokenProvider, providerName string, logger zclload.Logger) *TokenBasedConnector {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &TokenBasedConnector{
		config:        config,
		tokenProvider: tokenProvider,
		retryExecutor: newRetryExecutor(),
		providerName:  providerName,
		logger:        logger,
	}
}

// Connect acquires a token and opens a pool with it.
func (c *TokenBasedConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool

	err := c.retryExecutor.Execute(ctx, func(ctx context.Context) error {
		token, expiresOn, err := c.tokenProvider.GetToken(ctx)
		if err != nil {
			return fmt.Errorf("%w: failed to acquire %s token: %w", zclload.ErrConnectionFailed, c.providerName, err)
		}
		if remaining := time.Until(expiresOn); remaining < tokenExpiryWarning {
			c.logger.Warn("%s token expires in %v", c.providerName, remaining.Round(time.Second))
		}
		c.logger.Verbose("connecting to %s:%d with %s", c.config.Host, c.config.Port, c.tokenProvider)

		withToken := *c.config
		withToken.Password = token

		p, err := openPool(ctx, BuildConnectionString(&withToken), c.config, c.logger)
		pool = p
		return err
	})
	if err != nil {
		return nil, err
	}
	return pool, nil
}
