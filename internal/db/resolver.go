package db

import (
	"fmt"
	"os"
	"strconv"

	"github.com/vvka-141/zclload/pkg/zclload"
)

// EnvVars holds the libpq and Azure SDK environment variables that fill
// connection settings the DSN and config file leave empty.
// See: https://www.postgresql.org/docs/current/libpq-envars.html
type EnvVars struct {
	PGHOST     string
	PGPORT     string
	PGUSER     string
	PGPASSWORD string
	PGDATABASE string
	PGSSLMODE  string

	AZURE_TENANT_ID     string
	AZURE_CLIENT_ID     string
	AZURE_CLIENT_SECRET string
}

// LoadFromEnvironment reads EnvVars from the process environment.
func LoadFromEnvironment() *EnvVars {
	return &EnvVars{
		PGHOST:              os.Getenv("PGHOST"),
		PGPORT:              os.Getenv("PGPORT"),
		PGUSER:              os.Getenv("PGUSER"),
		PGPASSWORD:          os.Getenv("PGPASSWORD"),
		PGDATABASE:          os.Getenv("PGDATABASE"),
		PGSSLMODE:           os.Getenv("PGSSLMODE"),
		AZURE_TENANT_ID:     os.Getenv("AZURE_TENANT_ID"),
		AZURE_CLIENT_ID:     os.Getenv("AZURE_CLIENT_ID"),
		AZURE_CLIENT_SECRET: os.Getenv("AZURE_CLIENT_SECRET"),
	}
}

// ResolveConnection produces the postgres connection settings for a store config.
//
// Precedence per field: DSN, then the config file's connection section,
// then environment variables, then defaults (localhost:5432, sslmode prefer).
// Cloud auth settings only come from the config file and AZURE_* variables.
func ResolveConnection(sc zclload.StoreConfig, env *EnvVars) (*zclload.ConnectionConfig, error) {
	if env == nil {
		env = &EnvVars{}
	}

	var cfg *zclload.ConnectionConfig
	if sc.DSN != "" {
		parsed, err := ParseConnectionString(sc.DSN)
		if err != nil {
			return nil, fmt.Errorf("invalid postgres DSN: %w", err)
		}
		cfg = parsed
	} else {
		cfg = &zclload.ConnectionConfig{Params: make(map[string]string)}
	}

	if file := sc.Connection; file != nil {
		if sc.DSN == "" {
			cfg.Host, cfg.Port, cfg.Database = file.Host, file.Port, file.Database
			cfg.Username, cfg.Password, cfg.SSLMode = file.Username, file.Password, file.SSLMode
		}
		cfg.AuthMethod = file.AuthMethod
		cfg.AWSRegion = file.AWSRegion
		cfg.GoogleInstance = file.GoogleInstance
		cfg.AzureTenantID = file.AzureTenantID
		cfg.AzureClientID = file.AzureClientID
		cfg.AzureClientSecret = file.AzureClientSecret
	}

	if err := applyEnv(cfg, env); err != nil {
		return nil, err
	}
	applyAzureEnv(cfg, env)
	return cfg, nil
}

func applyEnv(cfg *zclload.ConnectionConfig, env *EnvVars) error {
	fill := func(dst *string, values ...string) {
		for _, v := range values {
			if *dst != "" {
				return
			}
			*dst = v
		}
	}
	fill(&cfg.Host, env.PGHOST, "localhost")
	fill(&cfg.Username, env.PGUSER)
	fill(&cfg.Password, env.PGPASSWORD)
	fill(&cfg.Database, env.PGDATABASE, "postgres")
	fill(&cfg.SSLMode, env.PGSSLMODE, "prefer")

	if cfg.Port == 0 {
		cfg.Port = 5432
		if env.PGPORT != "" {
			port, err := strconv.Atoi(env.PGPORT)
			if err != nil {
				return fmt.Errorf("invalid $PGPORT value %q: %w", env.PGPORT, zclload.ErrInvalidConfig)
			}
			cfg.Port = port
		}
	}
	return nil
}

// applyAzureEnv switches a standard config to Entra ID when AZURE_* ids are
// present. The client secret is only ever read from the environment.
func applyAzureEnv(cfg *zclload.ConnectionConfig, env *EnvVars) {
	if cfg.AzureTenantID == "" {
		cfg.AzureTenantID = env.AZURE_TENANT_ID
	}
	if cfg.AzureClientID == "" {
		cfg.AzureClientID = env.AZURE_CLIENT_ID
	}
	if cfg.AzureClientSecret == "" {
		cfg.AzureClientSecret = env.AZURE_CLIENT_SECRET
	}
	if cfg.AuthMethod == zclload.AuthMethodStandard && (env.AZURE_TENANT_ID != "" || env.AZURE_CLIENT_ID != "") {
		cfg.AuthMethod = zclload.AuthMethodAzureEntraID
	}
}
