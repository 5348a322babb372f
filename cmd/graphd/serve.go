package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/medconnect/graphd/internal/analytics"
	"github.com/medconnect/graphd/internal/events"
	"github.com/medconnect/graphd/internal/graph"
	"github.com/medconnect/graphd/internal/sync"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the graph synchronization service",
	Long: `Connects to the graph and relational stores, ensures the graph
schema, and runs the event synchronizer plus the periodic analytics pipeline
until interrupted.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	var client graph.Client = a.graph
	if cfg.Tracing.Enabled {
		client = graph.NewTracedClient(client, otel.Tracer("graphd"))
	}

	if err := graph.NewSchemaManager(client, logger).EnsureSchema(ctx); err != nil {
		return err
	}

	bus := events.NewBus(
		events.WithDefaultBufferSize(cfg.Events.BufferSize),
		events.WithErrorHandler(func(err error, fields map[string]any) {
			logger.Warn("event dropped", "error", err, "fields", fields)
		}),
	)
	defer bus.Close()

	sync.New(client, logger).Start(ctx, bus)
	logger.Info("synchronizer started")

	if cfg.Analytics.Enabled {
		analytics.NewRunner(client, logger,
			analytics.WithInterval(cfg.Analytics.Interval),
			analytics.WithRunOnStart(cfg.Analytics.RunOnStart),
		).Start(ctx)
		logger.Info("analytics runner started", "interval", cfg.Analytics.Interval)
	}

	logger.Info("graphd running", "graph_uri", cfg.Graph.URI, "database", cfg.Database.Path)
	<-ctx.Done()
	logger.Info("shutting down")
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the graphd version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "graphd", version)
	},
}

// version is overridden at build time via -ldflags.
var version = "dev"
