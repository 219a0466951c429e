package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/c360studio/ontosync/events"
	"github.com/c360studio/ontosync/metric"
	"github.com/c360studio/ontosync/ontology"
	"github.com/c360studio/ontosync/report"
	"github.com/c360studio/ontosync/store"
)

// State names the stages of one reconciliation run. Progression is strictly
// sequential; a failure at any state aborts the run. Re-invoking the whole
// pipeline is safe because every step is idempotent.
type State string

const (
	StateExtracted           State = "EXTRACTED"
	StateClassesReconciled   State = "CLASSES_RECONCILED"
	StateObsoleteApplied     State = "OBSOLETE_APPLIED"
	StateRelationsReconciled State = "RELATIONS_RECONCILED"
	StateReported            State = "REPORTED"
)

// RunnerConfig wires the optional collaborators of a Runner.
type RunnerConfig struct {
	// Ontology is the lowercase source ontology prefix, e.g. "envo".
	Ontology string

	// Workers bounds the class reconciliation fan-out.
	Workers int

	// Publisher, when set, receives a RunEvent after each completed run.
	Publisher *events.Publisher

	// Metrics, when set, is updated with per-run counts.
	Metrics *metric.Metrics

	Logger *slog.Logger
}

// Runner drives one reconciliation pipeline over a class collection and a
// relation collection. Only one run per ontology should execute at a time;
// concurrent runs against the same collections are not safe.
type Runner struct {
	classes     *ClassReconciler
	obsoleter   *Obsoleter
	relationRec *RelationReconciler
	cfg         RunnerConfig
	logger      *slog.Logger
}

// NewRunner creates a runner over the two collections.
func NewRunner(classes, relations store.Collection, cfg RunnerConfig) *Runner {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		classes:     NewClassReconciler(classes, cfg.Workers, logger),
		obsoleter:   NewObsoleter(classes, relations, logger),
		relationRec: NewRelationReconciler(relations, logger),
		cfg:         cfg,
		logger:      logger,
	}
}

// Result is the auditable outcome of one run: the three change reports plus
// run identity and final state.
type Result struct {
	RunID    string
	Ontology string
	State    State

	ClassUpdates    *report.Report
	ClassInserts    *report.Report
	RelationInserts *report.Report

	TermsObsoleted int
	CompletedAt    time.Time
}

// Reports returns the run's reports in writer order.
func (r *Result) Reports() []*report.Report {
	return []*report.Report{r.ClassUpdates, r.ClassInserts, r.RelationInserts}
}

// Run executes the pipeline: class reconciliation, obsolescence handling,
// relation replacement, then report assembly. Partial writes from an aborted
// run are safe to leave behind; the caller re-invokes the whole pipeline.
func (r *Runner) Run(ctx context.Context, terms []ontology.Class, edges []ontology.Relation) (*Result, error) {
	result := &Result{
		RunID:    uuid.New().String(),
		Ontology: r.cfg.Ontology,
		State:    StateExtracted,
	}

	r.logger.Info("Starting ontology reconciliation run",
		"run_id", result.RunID,
		"ontology", r.cfg.Ontology,
		"terms", len(terms),
		"relations", len(edges))

	classResult, err := r.classes.Reconcile(ctx, terms)
	if err != nil {
		return result, fmt.Errorf("state %s: %w", result.State, err)
	}
	result.State = StateClassesReconciled

	obsoleteIDs, obsoleteSet := obsoleteTerms(terms)
	if err := r.obsoleter.Apply(ctx, obsoleteIDs); err != nil {
		return result, fmt.Errorf("state %s: %w", result.State, err)
	}
	result.State = StateObsoleteApplied
	result.TermsObsoleted = len(obsoleteIDs)

	batchIDs := make([]string, 0, len(terms))
	for _, t := range terms {
		batchIDs = append(batchIDs, t.ID)
	}
	insertedEdges, err := r.relationRec.Replace(ctx, batchIDs, obsoleteSet, edges)
	if err != nil {
		return result, fmt.Errorf("state %s: %w", result.State, err)
	}
	result.State = StateRelationsReconciled

	result.ClassUpdates = report.New(report.KindUpdate, report.NameClassUpdates, ontology.ClassFields)
	for _, cls := range classResult.Updates {
		result.ClassUpdates.Add(cls.Row())
	}
	result.ClassInserts = report.New(report.KindInsert, report.NameClassInserts, ontology.ClassFields)
	for _, cls := range classResult.Inserts {
		result.ClassInserts.Add(cls.Row())
	}
	result.RelationInserts = report.New(report.KindInsert, report.NameRelationInserts, ontology.RelationFields)
	for _, edge := range insertedEdges {
		result.RelationInserts.Add(edge.Row())
	}
	result.CompletedAt = time.Now().UTC()
	result.State = StateReported

	r.record(classResult, len(insertedEdges), len(obsoleteIDs))
	r.publish(ctx, result, classResult, len(insertedEdges))

	r.logger.Info("Finished ontology reconciliation run",
		"run_id", result.RunID,
		"state", string(result.State),
		"inserted", len(classResult.Inserts),
		"updated", len(classResult.Updates),
		"obsoleted", len(obsoleteIDs),
		"relations_inserted", len(insertedEdges))
	return result, nil
}

// obsoleteTerms collects the ids flagged obsolete in the current batch.
func obsoleteTerms(terms []ontology.Class) ([]string, map[string]bool) {
	var ids []string
	set := make(map[string]bool)
	for _, t := range terms {
		if t.IsObsolete && !set[t.ID] {
			set[t.ID] = true
			ids = append(ids, t.ID)
		}
	}
	return ids, set
}

func (r *Runner) record(classResult *ClassResult, relationsInserted, obsoleted int) {
	m := r.cfg.Metrics
	if m == nil {
		return
	}
	m.ClassesInserted.Add(float64(len(classResult.Inserts)))
	m.ClassesUpdated.Add(float64(len(classResult.Updates)))
	m.ClassesUnchanged.Add(float64(classResult.Unchanged))
	m.RecordErrors.Add(float64(classResult.Errors))
	m.TermsObsoleted.Add(float64(obsoleted))
	m.RelationsInserted.Add(float64(relationsInserted))
	m.RunsCompleted.Inc()
}

func (r *Runner) publish(ctx context.Context, result *Result, classResult *ClassResult, relationsInserted int) {
	event := &events.RunEvent{
		RunID:             result.RunID,
		Ontology:          result.Ontology,
		ClassesInserted:   len(classResult.Inserts),
		ClassesUpdated:    len(classResult.Updates),
		TermsObsoleted:    result.TermsObsoleted,
		RelationsInserted: relationsInserted,
		CompletedAt:       result.CompletedAt,
	}
	if err := r.cfg.Publisher.PublishRun(ctx, event); err != nil {
		// Events are best-effort; a publish failure never fails the run.
		r.logger.Warn("Failed to publish run event", "run_id", result.RunID, "error", err)
	}
}
