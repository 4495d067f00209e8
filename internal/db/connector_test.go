package db

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/zclload/internal/logging"
	"github.com/vvka-141/zclload/pkg/zclload"
)

type mockTokenProvider struct {
	token     string
	expiresOn time.Time
	err       error
	calls     int
}

func (m *mockTokenProvider) GetToken(context.Context) (string, time.Time, error) {
	m.calls++
	if m.err != nil {
		return "", time.Time{}, m.err
	}
	return m.token, m.expiresOn, nil
}

func (m *mockTokenProvider) String() string { return "mockTokenProvider" }

func TestWrapConnectionError(t *testing.T) {
	tests := []struct {
		name         string
		errMsg       string
		host         string
		port         int
		database     string
		wantContains string
	}{
		{"connection refused", "dial tcp 127.0.0.1:5432: connection refused", "127.0.0.1", 5432, "zcl", "connection refused to 127.0.0.1:5432"},
		{"actively refused", "connectex: No connection could be made because the target machine actively refused it", "127.0.0.1", 5432, "zcl", "connection refused to 127.0.0.1:5432"},
		{"no such host", "dial tcp: lookup badhost.example.com: no such host", "badhost.example.com", 5432, "zcl", `cannot resolve host "badhost.example.com"`},
		{"password", `password authentication failed for user "postgres"`, "localhost", 5432, "zcl", `password authentication failed for database "zcl"`},
		{"missing database", `database "nope" does not exist`, "localhost", 5432, "nope", "createdb nope"},
		{"timeout", "dial tcp 10.0.0.1:5432: i/o timeout", "10.0.0.1", 5432, "zcl", "connection timed out to 10.0.0.1:5432"},
		{"tls", "tls: handshake failure", "localhost", 5432, "zcl", "SSL/TLS connection error"},
		{"case insensitive", "CONNECTION REFUSED by firewall", "fw.host", 5433, "zcl", "connection refused to fw.host:5433"},
		{"fallback", "something unexpected", "localhost", 5432, "zcl", "failed to connect to database"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := errors.New(tt.errMsg)
			wrapped := wrapConnectionError(original, tt.host, tt.port, tt.database)

			assert.Contains(t, wrapped.Error(), tt.wantContains)
			assert.ErrorIs(t, wrapped, original)
			assert.ErrorIs(t, wrapped, zclload.ErrConnectionFailed)
			assert.Equal(t, zclload.ExitConnectionError, zclload.ExitCodeForError(wrapped))
		})
	}
}

func TestNewConnector(t *testing.T) {
	base := zclload.ConnectionConfig{Host: "db.example.com", Port: 5432, Database: "zcl", Username: "loader"}

	t.Run("standard", func(t *testing.T) {
		cfg := base
		c, err := NewConnector(&cfg, nil)
		require.NoError(t, err)
		assert.IsType(t, &StandardConnector{}, c)
	})

	t.Run("aws", func(t *testing.T) {
		cfg := base
		cfg.AuthMethod = zclload.AuthMethodAWSIAM
		cfg.AWSRegion = "eu-west-1"
		c, err := NewConnector(&cfg, nil)
		require.NoError(t, err)
		tc, ok := c.(*TokenBasedConnector)
		require.True(t, ok)
		assert.Equal(t, "AWS IAM", tc.providerName)
	})

	t.Run("aws without region", func(t *testing.T) {
		cfg := base
		cfg.AuthMethod = zclload.AuthMethodAWSIAM
		_, err := NewConnector(&cfg, nil)
		assert.ErrorIs(t, err, zclload.ErrInvalidConfig)
	})

	t.Run("azure service principal", func(t *testing.T) {
		cfg := base
		cfg.AuthMethod = zclload.AuthMethodAzureEntraID
		cfg.AzureTenantID, cfg.AzureClientID, cfg.AzureClientSecret = "tenant", "client", "secret"
		c, err := NewConnector(&cfg, nil)
		require.NoError(t, err)
		tc, ok := c.(*TokenBasedConnector)
		require.True(t, ok)
		assert.IsType(t, &AzureTokenProvider{}, tc.tokenProvider)
	})

	t.Run("google requires instance", func(t *testing.T) {
		cfg := base
		cfg.AuthMethod = zclload.AuthMethodGoogleIAM
		_, err := NewConnector(&cfg, nil)
		assert.ErrorIs(t, err, zclload.ErrInvalidConfig)

		cfg.GoogleInstance = "proj:region:inst"
		c, err := NewConnector(&cfg, nil)
		require.NoError(t, err)
		assert.IsType(t, &GoogleCloudSQLConnector{}, c)
	})

	t.Run("unknown", func(t *testing.T) {
		cfg := base
		cfg.AuthMethod = zclload.AuthMethod(42)
		_, err := NewConnector(&cfg, nil)
		assert.ErrorIs(t, err, zclload.ErrUnsupportedAuthMethod)
	})
}

func TestNewAzureServicePrincipalProvider_RequiresAllParams(t *testing.T) {
	_, err := NewAzureServicePrincipalProvider("tenant", "client", "secret")
	assert.NoError(t, err)

	for _, args := range [][3]string{{"", "client", "secret"}, {"tenant", "", "secret"}, {"tenant", "client", ""}} {
		_, err := NewAzureServicePrincipalProvider(args[0], args[1], args[2])
		assert.ErrorIs(t, err, zclload.ErrInvalidConfig)
	}
}

func TestTokenBasedConnector_TokenFailureIsFatal(t *testing.T) {
	provider := &mockTokenProvider{err: errors.New("credentials expired")}
	cfg := &zclload.ConnectionConfig{Host: "localhost", Port: 5432, Database: "zcl", Username: "loader"}
	c := NewTokenBasedConnector(cfg, provider, "Mock", nil)

	_, err := c.Connect(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, zclload.ErrConnectionFailed)
	assert.True(t, strings.Contains(err.Error(), "failed to acquire Mock token"))
	assert.Equal(t, 1, provider.calls, "non-transient token errors are not retried")
}

func TestTokenBasedConnector_WarnsOnShortLivedToken(t *testing.T) {
	logger, logs := logging.NewObserved()
	provider := &mockTokenProvider{token: "t", expiresOn: time.Now().Add(time.Minute)}
	cfg := &zclload.ConnectionConfig{Host: "nonexistent.invalid", Port: 5432, Database: "zcl", Username: "loader"}
	c := NewTokenBasedConnector(cfg, provider, "Mock", logger)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	_, err := c.Connect(ctx)
	require.Error(t, err)
	assert.GreaterOrEqual(t, logs.FilterMessageSnippet("Mock token expires in").Len(), 1)
}

func TestStandardConnector_RespectsContextTimeout(t *testing.T) {
	cfg := &zclload.ConnectionConfig{Host: "nonexistent.invalid", Port: 5432, Database: "zcl", Username: "loader"}
	c := NewStandardConnector(cfg, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := c.Connect(ctx)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestNewAWSIAMTokenProvider_Validation(t *testing.T) {
	p, err := NewAWSIAMTokenProvider("db.example.rds.amazonaws.com:5432", "eu-west-1", "loader")
	require.NoError(t, err)
	assert.Equal(t, "AWSIAM(endpoint=db.example.rds.amazonaws.com:5432, region=eu-west-1, user=loader)", p.String())

	for _, args := range [][3]string{{"", "eu-west-1", "loader"}, {"db:5432", "", "loader"}, {"db:5432", "eu-west-1", ""}} {
		_, err := NewAWSIAMTokenProvider(args[0], args[1], args[2])
		assert.ErrorIs(t, err, zclload.ErrInvalidConfig)
	}
}
