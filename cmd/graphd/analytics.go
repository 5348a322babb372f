package main

import (
	"github.com/spf13/cobra"

	"github.com/medconnect/graphd/internal/analytics"
)

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Graph analytics operations",
}

var analyticsRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one analytics cycle and exit",
	Long: `Probes for the Graph Data Science plugin and runs one full cycle:
influence rank, bridge centrality, community detection, and similarity edges.
Without the plugin, a plain-Cypher approximation computes the rank
properties.`,
	RunE: runAnalyticsOnce,
}

func runAnalyticsOnce(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	runner := analytics.NewRunner(a.graph, logger,
		analytics.WithInterval(cfg.Analytics.Interval))
	return runner.RunOnce(ctx)
}

func init() {
	analyticsCmd.AddCommand(analyticsRunCmd)
}
