package reconcile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/c360studio/ontosync/ontology"
	"github.com/c360studio/ontosync/store"
)

// Obsoleter tombstones terms retired by the ontology maintainers: it marks
// them obsolete, clears their cached relation list, and severs every
// persisted edge touching them.
type Obsoleter struct {
	classes   store.Collection
	relations store.Collection
	logger    *slog.Logger
}

// NewObsoleter creates an obsolescence handler over the two collections.
func NewObsoleter(classes, relations store.Collection, logger *slog.Logger) *Obsoleter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Obsoleter{
		classes:   classes,
		relations: relations,
		logger:    logger,
	}
}

// Apply tombstones every id in ids and then bulk-deletes all relation edges
// whose subject or object is in ids. The per-term updates run before the
// bulk delete: a term must be marked obsolete no later than its edges are
// purged, or a racing relation pass could re-insert an edge against a
// still-live term. Apply is idempotent.
func (o *Obsoleter) Apply(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	for _, id := range ids {
		if err := o.tombstone(ctx, id); err != nil {
			if store.Unreachable(err) {
				return err
			}
			o.logger.Error("Skipping obsolete term after store error", "id", id, "error", err)
		}
	}

	filter := store.Or(
		store.Filter{ontology.FieldSubject: store.In(ids)},
		store.Filter{ontology.FieldObject: store.In(ids)},
	)
	removed, err := o.relations.Delete(ctx, filter)
	if err != nil {
		return fmt.Errorf("delete relations of obsolete terms: %w", err)
	}

	o.logger.Info("Handled obsolete ontology terms",
		"terms", len(ids), "relations_removed", removed)
	return nil
}

func (o *Obsoleter) tombstone(ctx context.Context, id string) error {
	existing, err := o.classes.Find(ctx, store.ByID(id))
	if err != nil {
		return fmt.Errorf("find obsolete term %s: %w", id, err)
	}
	if len(existing) == 0 {
		// Never persisted; nothing to tombstone.
		o.logger.Debug("Obsolete term not found in store", "id", id)
		return nil
	}
	if len(existing) > 1 {
		o.logger.Warn("Multiple documents match one obsolete term id",
			"id", id, "count", len(existing))
	}

	doc := existing[0]
	doc[ontology.FieldIsObsolete] = true
	doc[ontology.FieldRelations] = []string{}

	// Write back exactly the two tombstone fields.
	err = o.classes.Upsert(ctx,
		[]store.Document{doc},
		[]string{ontology.FieldID},
		[]string{ontology.FieldIsObsolete, ontology.FieldRelations},
	)
	if err != nil {
		return fmt.Errorf("tombstone term %s: %w", id, err)
	}
	return nil
}
