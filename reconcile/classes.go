// Package reconcile implements the ontology reconciliation engine: diffing
// incoming term batches against persisted state, tombstoning obsolete terms,
// replacing relation closures, and producing auditable change reports.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/c360studio/ontosync/ontology"
	"github.com/c360studio/ontosync/store"
)

// DefaultWorkers bounds the per-record fan-out of a class reconciliation.
const DefaultWorkers = 8

// ClassReconciler diffs incoming term records against persisted documents,
// classifies each as insert, update, or unchanged, and writes the minimal
// set of changes through identifier-keyed upserts.
type ClassReconciler struct {
	classes store.Collection
	workers int
	logger  *slog.Logger
}

// NewClassReconciler creates a reconciler writing to the given class
// collection. workers <= 0 falls back to DefaultWorkers.
func NewClassReconciler(classes store.Collection, workers int, logger *slog.Logger) *ClassReconciler {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ClassReconciler{
		classes: classes,
		workers: workers,
		logger:  logger,
	}
}

// classOutcome is the per-record result of one reconciliation task. Workers
// write disjoint slice slots; outcomes are merged only after all workers
// finish, so there is no shared mutable accumulation during the fan-out.
type classOutcome struct {
	insert *ontology.Class
	update *ontology.Class
	err    error
}

// ClassResult carries the classification of one reconciled batch. Updates
// and Inserts preserve batch order; Unchanged and Errors count the records
// that produced no write and the records skipped after a store error.
type ClassResult struct {
	Updates   []ontology.Class
	Inserts   []ontology.Class
	Unchanged int
	Errors    int
}

// Reconcile classifies and persists every incoming record. A record whose
// write fails transiently is logged and skipped; the batch continues. A
// store-unreachable error aborts the whole run.
func (r *ClassReconciler) Reconcile(ctx context.Context, incoming []ontology.Class) (*ClassResult, error) {
	if err := r.classes.EnsureIndex(ctx, []string{ontology.FieldID}, false); err != nil {
		return nil, fmt.Errorf("ensure class id index: %w", err)
	}

	result := &ClassResult{}
	if len(incoming) == 0 {
		r.logger.Info("No ontology classes to reconcile")
		return result, nil
	}

	outcomes := make([]classOutcome, len(incoming))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < r.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if ctx.Err() != nil {
					outcomes[i] = classOutcome{err: ctx.Err()}
					continue
				}
				outcomes[i] = r.reconcileOne(ctx, incoming[i])
			}
		}()
	}

	for i := range incoming {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	// Merge per-task results in batch order.
	for i, outcome := range outcomes {
		switch {
		case outcome.err != nil:
			if store.Unreachable(outcome.err) {
				return result, fmt.Errorf("reconcile class %s: %w", incoming[i].ID, outcome.err)
			}
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			result.Errors++
			r.logger.Error("Skipping class after store error",
				"id", incoming[i].ID, "error", outcome.err)
		case outcome.insert != nil:
			result.Inserts = append(result.Inserts, *outcome.insert)
		case outcome.update != nil:
			result.Updates = append(result.Updates, *outcome.update)
		default:
			result.Unchanged++
		}
	}

	r.logger.Info("Finished reconciling ontology classes",
		"total", len(incoming),
		"inserted", len(result.Inserts),
		"updated", len(result.Updates),
		"unchanged", result.Unchanged,
		"errors", result.Errors)
	return result, nil
}

func (r *ClassReconciler) reconcileOne(ctx context.Context, cls ontology.Class) classOutcome {
	existing, err := r.classes.Find(ctx, store.ByID(cls.ID))
	if err != nil {
		return classOutcome{err: fmt.Errorf("find class %s: %w", cls.ID, err)}
	}

	if len(existing) == 0 {
		doc := cls.Document()
		if err := r.classes.Upsert(ctx, []store.Document{doc}, []string{ontology.FieldID}, ontology.ClassFields); err != nil {
			return classOutcome{err: fmt.Errorf("insert class %s: %w", cls.ID, err)}
		}
		r.logger.Debug("Inserted new ontology class", "id", cls.ID)
		return classOutcome{insert: &cls}
	}

	if len(existing) > 1 {
		// Data-integrity issue: the id index should keep this impossible.
		// First match wins; keep the warning loud so drift stays visible.
		r.logger.Warn("Multiple documents match one class id",
			"id", cls.ID, "count", len(existing))
	}

	changed := cls.ChangedFields(existing[0])
	if len(changed) == 0 {
		return classOutcome{}
	}

	doc := cls.Document()
	if err := r.classes.Upsert(ctx, []store.Document{doc}, []string{ontology.FieldID}, changed); err != nil {
		return classOutcome{err: fmt.Errorf("update class %s: %w", cls.ID, err)}
	}
	r.logger.Debug("Updated existing ontology class", "id", cls.ID, "fields", changed)
	return classOutcome{update: &cls}
}
