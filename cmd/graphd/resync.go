package main

import (
	"github.com/spf13/cobra"

	"github.com/medconnect/graphd/internal/relational"
	"github.com/medconnect/graphd/internal/sync"
)

var resyncCmd = &cobra.Command{
	Use:   "resync",
	Short: "Replay the relational source of truth into the graph",
	Long: `Walks people, specialty assignments, and accepted affiliations in
the relational store and replays them into the graph mirror. Safe to run over
an existing mirror: every replayed write is an idempotent merge. Use this to
recover from lost synchronization events.`,
	RunE: runResync,
}

func runResync(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	return sync.New(a.graph, logger).Resync(ctx, relational.NewSyncSource(a.db))
}
