package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/vvka-141/zclload/internal/config"
	"github.com/vvka-141/zclload/internal/db"
	"github.com/vvka-141/zclload/internal/files/filesystem"
	"github.com/vvka-141/zclload/internal/services"
	"github.com/vvka-141/zclload/internal/store"
	"github.com/vvka-141/zclload/pkg/zclload"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// settings is the fully resolved configuration of one command run.
type settings struct {
	Store zclload.StoreConfig
	Load  zclload.LoadOptions
}

// loadProjectConfig loads .env and the project configuration.
// A missing default zclload.yaml is not an error; a missing --config file is.
func loadProjectConfig(path string) (*config.ProjectConfig, error) {
	_ = godotenv.Load()

	if path == "" {
		cfg, err := config.Load(".")
		if errors.Is(err, config.ErrConfigNotFound) {
			return &config.ProjectConfig{}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", config.ConfigFileName, err)
		}
		return cfg, nil
	}

	cfg, err := config.LoadFile(path)
	if errors.Is(err, config.ErrConfigNotFound) {
		return nil, fmt.Errorf("config file %s not found: %w", path, zclload.ErrInvalidConfig)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return cfg, nil
}

// resolveProjectConfig layers the config file, environment, --set
// overrides and the --driver/--dsn flags, in that order.
func resolveProjectConfig(flags globalFlagValues, getenv func(string) string) (*config.ProjectConfig, error) {
	cfg, err := loadProjectConfig(flags.config)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(getenv)

	overrides, err := config.ParseOverrides(flags.overrides)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyOverrides(overrides); err != nil {
		return nil, err
	}

	if flags.driver != "" {
		cfg.Store.Driver = flags.driver
	}
	if flags.dsn != "" {
		cfg.Store.DSN = flags.dsn
	}
	return cfg, nil
}

// resolveSettings resolves and validates the store and load settings.
func resolveSettings(flags globalFlagValues, getenv func(string) string) (*settings, error) {
	cfg, err := resolveProjectConfig(flags, getenv)
	if err != nil {
		return nil, err
	}
	sc, err := cfg.StoreConfig()
	if err != nil {
		return nil, err
	}
	opts, err := cfg.LoadOptions()
	if err != nil {
		return nil, err
	}
	return &settings{Store: sc, Load: opts}, nil
}

// openStore connects to the configured store. Postgres settings the
// config leaves empty come from the libpq environment.
func openStore(ctx context.Context, s *settings, logger zclload.Logger) (zclload.Store, error) {
	var env *db.EnvVars
	if s.Store.Driver == zclload.DriverPostgres {
		env = db.LoadFromEnvironment()
	}
	return store.Open(ctx, s.Store, env, logger)
}

func newLoadService(st zclload.Store, logger zclload.Logger, s *settings, opts ...services.Option) *services.LoadService {
	opts = append([]services.Option{services.WithLoadOptions(s.Load)}, opts...)
	return services.NewLoadService(st, filesystem.NewOSFileSystem(), logger, opts...)
}

// replayWarnings forwards warnings and errors recorded while a progress
// display owned the terminal.
func replayWarnings(logs *observer.ObservedLogs, logger zclload.Logger) {
	for _, e := range logs.All() {
		switch {
		case e.Level >= zapcore.ErrorLevel:
			logger.Error("%s", e.Message)
		case e.Level == zapcore.WarnLevel:
			logger.Warn("%s", e.Message)
		}
	}
}

// interruptContext returns a context cancelled on Ctrl+C or SIGTERM.
func interruptContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(os.Stderr, "\n[INTERRUPT] Received interrupt signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}
