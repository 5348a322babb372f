package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/medconnect/graphd/internal/config"
)

var (
	configFile string
	verbose    bool

	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "graphd",
	Short: "graphd - graph synchronization and query layer for MedConnect",
	Long: `graphd keeps a Neo4j mirror of the MedConnect professional network
in sync with the relational source of truth, computes network analytics on
it, and answers proximity and recommendation queries.`,
	PersistentPreRunE: loadConfig,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

// Execute runs the root command with signal handling.
func Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return rootCmd.ExecuteContext(ctx)
}

// loadConfig runs before every command: load configuration and build the
// logger from it.
func loadConfig(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "help" || cmd.Name() == "version" {
		return nil
	}

	path := configFile
	if path == "" {
		path = os.Getenv("GRAPHD_CONFIG")
	}

	loader := config.NewConfigLoader(config.NewValidator())
	var err error
	if path == "" {
		cfg = config.DefaultConfig()
	} else if cfg, err = loader.LoadWithDefaults(path); err != nil {
		return err
	}

	logger = newLogger(cfg.Logging, os.Stderr)
	slog.SetDefault(logger)
	return nil
}

func newLogger(lc config.LoggingConfig, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	switch lc.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	if lc.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(analyticsCmd)
	rootCmd.AddCommand(resyncCmd)
	rootCmd.AddCommand(versionCmd)
}
