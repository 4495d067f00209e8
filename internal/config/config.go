package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vvka-141/zclload/pkg/zclload"
	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

// Environment variables that override the file.
const (
	EnvDSN         = "ZCLLOAD_DSN"
	EnvDriver      = "ZCLLOAD_DRIVER"
	EnvDatabaseURL = "DATABASE_URL"
)

type StoreSection struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type ConnectionConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	Username       string `yaml:"username"`
	Database       string `yaml:"database"`
	SSLMode        string `yaml:"sslmode"`
	AuthMethod     string `yaml:"auth_method,omitempty"`
	AzureTenantID  string `yaml:"azure_tenant_id,omitempty"`
	AzureClientID  string `yaml:"azure_client_id,omitempty"`
	AWSRegion      string `yaml:"aws_region,omitempty"`
	GoogleInstance string `yaml:"google_instance,omitempty"`
}

type StringsSection struct {
	ConstrainedCategory string `yaml:"constrained_category,omitempty"`
	ConstrainedLong     int    `yaml:"constrained_long,omitempty"`
	RelaxedLong         int    `yaml:"relaxed_long,omitempty"`
	Short               int    `yaml:"short,omitempty"`
}

type LoadSection struct {
	Workers          int            `yaml:"workers,omitempty"`
	Timeout          string         `yaml:"timeout,omitempty"`
	IgnoreFormatting bool           `yaml:"ignore_formatting,omitempty"`
	Strings          StringsSection `yaml:"strings,omitempty"`
}

type ProjectConfig struct {
	Store      StoreSection      `yaml:"store"`
	Connection *ConnectionConfig `yaml:"connection,omitempty"`
	Load       LoadSection       `yaml:"load"`
}

const ConfigFileName = "zclload.yaml"

// Load reads ConfigFileName from dir.
func Load(dir string) (*ProjectConfig, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads an explicit config file.
func LoadFile(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, errors.Join(err, zclload.ErrInvalidConfig))
	}
	return &cfg, nil
}

// ApplyEnv overlays environment overrides. ZCLLOAD_DSN wins over DATABASE_URL;
// a DATABASE_URL with a postgres scheme also selects the postgres driver.
func (c *ProjectConfig) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvDriver); v != "" {
		c.Store.Driver = v
	}
	if v := getenv(EnvDSN); v != "" {
		c.Store.DSN = v
		return
	}
	if v := getenv(EnvDatabaseURL); v != "" {
		c.Store.DSN = v
		if c.Store.Driver == "" && (strings.HasPrefix(v, "postgres://") || strings.HasPrefix(v, "postgresql://")) {
			c.Store.Driver = zclload.DriverPostgres
		}
	}
}

// StoreConfig converts the file sections into a validated store config.
// An empty driver selects sqlite with DefaultSQLitePath.
func (c *ProjectConfig) StoreConfig() (zclload.StoreConfig, error) {
	sc := zclload.StoreConfig{Driver: c.Store.Driver, DSN: c.Store.DSN}
	if sc.Driver == "" {
		sc.Driver = zclload.DefaultDriver
	}
	if sc.Driver == zclload.DriverSQLite && sc.DSN == "" {
		sc.DSN = zclload.DefaultSQLitePath
	}

	if c.Connection != nil {
		method := zclload.AuthMethodStandard
		if c.Connection.AuthMethod != "" {
			m, err := zclload.ParseAuthMethod(c.Connection.AuthMethod)
			if err != nil {
				return sc, err
			}
			method = m
		}
		sc.Connection = &zclload.ConnectionConfig{
			Host:           c.Connection.Host,
			Port:           c.Connection.Port,
			Database:       c.Connection.Database,
			Username:       c.Connection.Username,
			SSLMode:        c.Connection.SSLMode,
			AuthMethod:     method,
			AWSRegion:      c.Connection.AWSRegion,
			GoogleInstance: c.Connection.GoogleInstance,
			AzureTenantID:  c.Connection.AzureTenantID,
			AzureClientID:  c.Connection.AzureClientID,
		}
	}

	return sc, sc.Validate()
}

// LoadOptions converts the load section, filling unset values with defaults.
func (c *ProjectConfig) LoadOptions() (zclload.LoadOptions, error) {
	opts := zclload.LoadOptions{
		Workers:          c.Load.Workers,
		Strings:          zclload.DefaultStringPolicy(),
		IgnoreFormatting: c.Load.IgnoreFormatting,
	}
	if opts.Workers == 0 {
		opts.Workers = zclload.DefaultWorkers
	}
	if c.Load.Timeout != "" {
		d, err := time.ParseDuration(c.Load.Timeout)
		if err != nil {
			return opts, fmt.Errorf("invalid load timeout %q: %w", c.Load.Timeout, zclload.ErrInvalidConfig)
		}
		opts.Timeout = d
	}

	s := c.Load.Strings
	if s.ConstrainedCategory != "" {
		opts.Strings.ConstrainedCategory = s.ConstrainedCategory
	}
	if s.ConstrainedLong != 0 {
		opts.Strings.ConstrainedLong = s.ConstrainedLong
	}
	if s.RelaxedLong != 0 {
		opts.Strings.RelaxedLong = s.RelaxedLong
	}
	if s.Short != 0 {
		opts.Strings.Short = s.Short
	}

	return opts, opts.Validate()
}
