// Package cli holds the similar command tree.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/similar/internal/app"
	"github.com/kailas-cloud/similar/internal/config"
	logpkg "github.com/kailas-cloud/similar/internal/logger"
	"github.com/kailas-cloud/similar/internal/version"
)

var (
	envName    string
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "similar",
	Short: "Find related content by shared field values",
	Long: `similar ranks pages, files and users by how many field values they share
with a reference item, and caches the rankings until content changes.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envName, "env", config.GetEnv(),
		"environment: selects config/<env>.yaml and the log format")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"explicit config file (overrides --env lookup)")
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func loadConfig() (config.Config, error) {
	if configPath != "" {
		return config.LoadFile(configPath)
	}
	return config.Load(envName)
}

func newLogger(cfg config.Config, quiet bool) (*zap.Logger, error) {
	return logpkg.NewLogger(logpkg.Options{
		Env:   envName,
		Level: cfg.Logging.Level,
		Quiet: quiet,
		Fields: []zap.Field{
			zap.String("service", "similar"),
			zap.String("version", version.Version),
		},
	})
}

// openApp loads config and wires the components for a one-shot command.
// Logs go to stderr so stdout carries only the command result.
func openApp(ctx context.Context) (*app.App, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := newLogger(cfg, true)
	if err != nil {
		return nil, nil, err
	}
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, nil, fmt.Errorf("init: %w", err)
	}
	return a, func() {
		a.Close()
		_ = logger.Sync()
	}, nil
}

// loadMemoryContent imports content.dir when the catalog lives in memory, which starts empty on every run.
// Files that fail to import are reported as a warning.
func loadMemoryContent(cmd *cobra.Command, a *app.App) {
	if a.Config.Database.Driver != config.DriverMemory {
		return
	}
	if _, err := a.LoadContent(cmd.Context()); err != nil {
		cmd.PrintErrf("Warning: %v\n", err)
	}
}
