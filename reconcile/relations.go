package reconcile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/c360studio/ontosync/ontology"
	"github.com/c360studio/ontosync/store"
)

// RelationReconciler replaces the persisted relation closure for every term
// in the current batch. Relations are never incrementally patched: all edges
// for a reprocessed subject are cleared, then the current closure is
// re-inserted keyed by the full triple.
type RelationReconciler struct {
	relations store.Collection
	logger    *slog.Logger
}

// NewRelationReconciler creates a reconciler writing to the given relation
// collection.
func NewRelationReconciler(relations store.Collection, logger *slog.Logger) *RelationReconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RelationReconciler{
		relations: relations,
		logger:    logger,
	}
}

// Replace clears all edges whose subject is in batchIDs and re-inserts the
// incoming edges. Edges with an empty field are dropped with a warning;
// edges touching an id in obsolete are skipped (the obsolescence pass's bulk
// delete additionally guarantees none survive). It returns the edges that
// were actually upserted, in batch order.
func (r *RelationReconciler) Replace(ctx context.Context, batchIDs []string, obsolete map[string]bool, edges []ontology.Relation) ([]ontology.Relation, error) {
	if err := r.relations.EnsureIndex(ctx, ontology.RelationFields, false); err != nil {
		return nil, fmt.Errorf("ensure relation triple index: %w", err)
	}

	if len(batchIDs) > 0 {
		cleared, err := r.relations.Delete(ctx, store.Filter{ontology.FieldSubject: store.In(batchIDs)})
		if err != nil {
			return nil, fmt.Errorf("clear relations for batch terms: %w", err)
		}
		r.logger.Debug("Cleared stored relations for batch terms",
			"terms", len(batchIDs), "removed", cleared)
	}

	inserted := make([]ontology.Relation, 0, len(edges))
	for _, edge := range edges {
		if err := edge.Validate(); err != nil {
			r.logger.Warn("Dropping invalid relation edge", "error", err)
			continue
		}
		if obsolete[edge.Subject] || obsolete[edge.Object] {
			r.logger.Debug("Skipping relation referencing obsolete term",
				"subject", edge.Subject, "object", edge.Object)
			continue
		}

		// Upsert keyed by the triple de-duplicates repeats within the batch.
		err := r.relations.Upsert(ctx,
			[]store.Document{edge.Document()},
			ontology.RelationFields,
			ontology.RelationFields,
		)
		if err != nil {
			if store.Unreachable(err) {
				return inserted, fmt.Errorf("insert relation %s: %w", edge, err)
			}
			r.logger.Error("Skipping relation after store error", "relation", edge.String(), "error", err)
			continue
		}
		inserted = append(inserted, edge)
	}

	r.logger.Info("Finished reconciling ontology relations",
		"incoming", len(edges), "inserted", len(inserted))
	return inserted, nil
}
