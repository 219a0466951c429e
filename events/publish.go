// Package events publishes reconciliation run summaries to NATS so
// downstream graph consumers can react to ontology changes.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// RunSubject is the subject reconciliation run events are published on.
const RunSubject = "ontology.ingest.run"

// RunEvent summarizes one completed reconciliation run.
type RunEvent struct {
	RunID             string    `json:"run_id"`
	Ontology          string    `json:"ontology"`
	ClassesInserted   int       `json:"classes_inserted"`
	ClassesUpdated    int       `json:"classes_updated"`
	TermsObsoleted    int       `json:"terms_obsoleted"`
	RelationsInserted int       `json:"relations_inserted"`
	CompletedAt       time.Time `json:"completed_at"`
}

// Publisher publishes run events. A nil Publisher or nil connection skips
// publishing, so callers without NATS degrade gracefully.
type Publisher struct {
	nc     *nats.Conn
	logger *slog.Logger
}

// NewPublisher creates a publisher over an existing NATS connection.
func NewPublisher(nc *nats.Conn, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{nc: nc, logger: logger}
}

// PublishRun publishes the run summary on RunSubject.
func (p *Publisher) PublishRun(ctx context.Context, event *RunEvent) error {
	if p == nil || p.nc == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal run event: %w", err)
	}
	if err := p.nc.Publish(RunSubject, data); err != nil {
		return fmt.Errorf("publish run event: %w", err)
	}

	p.logger.Debug("Published reconciliation run event",
		"run_id", event.RunID, "subject", RunSubject)
	return nil
}
