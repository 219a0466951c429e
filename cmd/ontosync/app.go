package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360studio/ontosync/config"
	"github.com/c360studio/ontosync/events"
	"github.com/c360studio/ontosync/extract"
	"github.com/c360studio/ontosync/metric"
	"github.com/c360studio/ontosync/reconcile"
	"github.com/c360studio/ontosync/report"
	"github.com/c360studio/ontosync/store"
)

// App wires the document store, the optional NATS publisher, and the
// reconciliation runner together for one pipeline invocation.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	mongo    *store.MongoStore
	natsConn *nats.Conn
	runner   *reconcile.Runner
}

// NewApp creates an application instance from validated configuration.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{cfg: cfg, logger: logger}, nil
}

// Start connects the collaborators. The document store must be reachable;
// NATS is optional and its absence only disables event publishing.
func (a *App) Start(ctx context.Context) error {
	mongoStore, err := store.ConnectMongo(ctx, a.cfg.Mongo.URI(), a.cfg.Mongo.Database, a.logger)
	if err != nil {
		return fmt.Errorf("start document store: %w", err)
	}
	a.mongo = mongoStore

	var publisher *events.Publisher
	if a.cfg.NATS.URL != "" {
		conn, err := nats.Connect(a.cfg.NATS.URL, nats.Name(appName))
		if err != nil {
			a.logger.Warn("NATS unavailable, continuing without run events",
				"url", a.cfg.NATS.URL, "error", err)
		} else {
			a.natsConn = conn
			publisher = events.NewPublisher(conn, a.logger)
		}
	}

	a.runner = reconcile.NewRunner(
		mongoStore.Collection(a.cfg.Mongo.ClassCollection),
		mongoStore.Collection(a.cfg.Mongo.RelationCollection),
		reconcile.RunnerConfig{
			Ontology:  a.cfg.Ontology,
			Workers:   a.cfg.Workers,
			Publisher: publisher,
			Metrics:   metric.New(prometheus.DefaultRegisterer),
			Logger:    a.logger,
		},
	)
	return nil
}

// Run pulls the extracted snapshot from src, executes the pipeline, and
// writes change reports when enabled.
func (a *App) Run(ctx context.Context, src extract.Source) error {
	terms, err := src.Terms(ctx)
	if err != nil {
		return fmt.Errorf("load extracted terms: %w", err)
	}
	edges, err := src.Relations(ctx)
	if err != nil {
		return fmt.Errorf("load extracted relations: %w", err)
	}
	a.logger.Info("Loaded extracted snapshot", "terms", len(terms), "relations", len(edges))

	result, err := a.runner.Run(ctx, terms, edges)
	if err != nil {
		return fmt.Errorf("reconciliation run failed in state %s: %w", result.State, err)
	}

	if !a.cfg.Reports.Enabled {
		return nil
	}
	format, err := report.ParseFormat(a.cfg.Reports.Format)
	if err != nil {
		return err
	}
	paths, err := report.Write(result.Reports(), format, a.cfg.Reports.Directory)
	if err != nil {
		return fmt.Errorf("write change reports: %w", err)
	}
	a.logger.Info("Reports generated", "paths", paths)
	return nil
}

// Close releases the store and messaging connections.
func (a *App) Close(ctx context.Context) {
	if a.natsConn != nil {
		a.natsConn.Close()
	}
	if a.mongo != nil {
		if err := a.mongo.Close(ctx); err != nil {
			a.logger.Warn("Failed to close document store", "error", err)
		}
	}
}
