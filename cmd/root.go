package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/gcsetutor/internal/config"
	"github.com/abhisek/gcsetutor/internal/logger"
	"github.com/abhisek/gcsetutor/internal/store"
)

var rootCmd = &cobra.Command{
	Use:          "gcsetutor",
	Short:        "GCSE revision tutor",
	Long:         "gcsetutor is a tutoring session engine for GCSE revision, served over HTTP or run locally in the terminal.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to YAML config file (overrides GCSE_CONFIG env var)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides GCSE_STORE_DSN)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(diagnosticCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads --config (or GCSE_CONFIG) and applies --db.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = getenv("GCSE_CONFIG")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.Store.Backend = store.BackendSQLite
		cfg.Store.DSN = p
	}
	return cfg, nil
}

// resolveDBPath returns the configured SQLite path, then GCSE_DB, then the
// default XDG path.
func resolveDBPath(cfg config.Config) (string, error) {
	if cfg.Store.DSN != "" {
		return cfg.Store.DSN, store.EnsureDir(cfg.Store.DSN)
	}
	return store.DefaultDBPath()
}

// openStore opens the configured record store backend.
func openStore(ctx context.Context, cfg config.Config) (*store.Store, error) {
	dsn := cfg.Store.DSN
	if cfg.Store.Backend == store.BackendSQLite || cfg.Store.Backend == "" {
		p, err := resolveDBPath(cfg)
		if err != nil {
			return nil, fmt.Errorf("resolve database path: %w", err)
		}
		dsn = p
	}
	s, err := store.OpenBackend(ctx, cfg.Store.Backend, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store.Backend, err)
	}
	return s, nil
}

func newLogger(cfg config.LogConfig) (*logger.Logger, error) {
	return logger.New(logger.Options{
		Mode:     cfg.Mode,
		Level:    cfg.Level,
		Redact:   cfg.Redact,
		HashSalt: cfg.HashSalt,
	})
}
