package main

import (
	"context"

	"github.com/medconnect/graphd/internal/graph"
	"github.com/medconnect/graphd/internal/relational"
)

// app bundles the connected backends a command works with.
type app struct {
	graph graph.Client
	db    *relational.DB
}

// newApp connects the graph client and opens the relational store from the
// loaded configuration.
func newApp(ctx context.Context) (*app, error) {
	client, err := graph.NewNeo4jClient(cfg.Graph, logger)
	if err != nil {
		return nil, err
	}
	if err := client.Connect(ctx); err != nil {
		return nil, err
	}

	dbCfg := relational.DefaultConfig(cfg.Database.Path)
	dbCfg.MaxOpenConns = cfg.Database.MaxConnections
	db, err := relational.OpenWithConfig(dbCfg)
	if err != nil {
		client.Close(ctx)
		return nil, err
	}
	if err := relational.NewMigrator(db).Migrate(ctx); err != nil {
		db.Close()
		client.Close(ctx)
		return nil, err
	}

	return &app{graph: client, db: db}, nil
}

// close releases both backends.
func (a *app) close(ctx context.Context) {
	a.db.Close()
	a.graph.Close(ctx)
}
