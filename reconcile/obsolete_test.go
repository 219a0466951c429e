package reconcile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/ontosync/ontology"
	"github.com/c360studio/ontosync/store"
)

func seedClass(t *testing.T, coll *store.Memory, cls ontology.Class) {
	t.Helper()
	require.NoError(t, coll.Upsert(context.Background(),
		[]store.Document{cls.Document()},
		[]string{ontology.FieldID}, ontology.ClassFields))
}

func seedRelation(t *testing.T, coll *store.Memory, rel ontology.Relation) {
	t.Helper()
	require.NoError(t, coll.Upsert(context.Background(),
		[]store.Document{rel.Document()},
		ontology.RelationFields, ontology.RelationFields))
}

func TestObsoleterApply(t *testing.T) {
	ctx := context.Background()
	classes := store.NewMemory()
	relations := store.NewMemory()

	seedClass(t, classes, ontology.Class{ID: "ENVO:001", Name: "live", Relations: []string{"x"}})
	seedClass(t, classes, ontology.Class{ID: "ENVO:002", Name: "dying", Relations: []string{"y"}})

	// One edge touching the obsolete term as subject, one untouched edge.
	seedRelation(t, relations, ontology.Relation{Subject: "ENVO:002", Predicate: "is_a", Object: "ENVO:001"})
	seedRelation(t, relations, ontology.Relation{Subject: "ENVO:001", Predicate: "is_a", Object: "ENVO:003"})

	obs := NewObsoleter(classes, relations, discardLogger(t))
	require.NoError(t, obs.Apply(ctx, []string{"ENVO:002"}))

	t.Run("term is tombstoned with empty relation cache", func(t *testing.T) {
		stored, err := classes.Find(ctx, store.ByID("ENVO:002"))
		require.NoError(t, err)
		require.Len(t, stored, 1)
		decoded := ontology.ClassFromDocument(stored[0])
		assert.True(t, decoded.IsObsolete)
		assert.Empty(t, decoded.Relations)
		assert.Equal(t, "dying", decoded.Name, "tombstoning only touches is_obsolete and relations")
	})

	t.Run("edges touching the obsolete term are severed", func(t *testing.T) {
		remaining, err := relations.Find(ctx, store.Filter{})
		require.NoError(t, err)
		require.Len(t, remaining, 1)
		assert.Equal(t, "ENVO:001", remaining[0][ontology.FieldSubject])
		assert.Equal(t, "ENVO:003", remaining[0][ontology.FieldObject])
	})

	t.Run("live term is untouched", func(t *testing.T) {
		stored, err := classes.Find(ctx, store.ByID("ENVO:001"))
		require.NoError(t, err)
		assert.False(t, ontology.ClassFromDocument(stored[0]).IsObsolete)
	})
}

func TestObsoleterSeversObjectEdges(t *testing.T) {
	ctx := context.Background()
	classes := store.NewMemory()
	relations := store.NewMemory()

	seedClass(t, classes, ontology.Class{ID: "ENVO:009"})
	seedRelation(t, relations, ontology.Relation{Subject: "ENVO:001", Predicate: "part_of", Object: "ENVO:009"})

	obs := NewObsoleter(classes, relations, discardLogger(t))
	require.NoError(t, obs.Apply(ctx, []string{"ENVO:009"}))

	assert.Equal(t, 0, relations.Len(), "edges pointing at an obsolete object must not survive")
}

func TestObsoleterIdempotent(t *testing.T) {
	ctx := context.Background()
	classes := store.NewMemory()
	relations := store.NewMemory()

	seedClass(t, classes, ontology.Class{ID: "ENVO:002", Relations: []string{"y"}})
	seedRelation(t, relations, ontology.Relation{Subject: "ENVO:002", Predicate: "is_a", Object: "ENVO:001"})

	obs := NewObsoleter(classes, relations, discardLogger(t))
	require.NoError(t, obs.Apply(ctx, []string{"ENVO:002"}))

	before, err := classes.Find(ctx, store.ByID("ENVO:002"))
	require.NoError(t, err)

	require.NoError(t, obs.Apply(ctx, []string{"ENVO:002"}))

	after, err := classes.Find(ctx, store.ByID("ENVO:002"))
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, 0, relations.Len())
}

func TestObsoleterSkipsUnknownIDs(t *testing.T) {
	ctx := context.Background()
	classes := store.NewMemory()
	relations := store.NewMemory()

	obs := NewObsoleter(classes, relations, discardLogger(t))
	require.NoError(t, obs.Apply(ctx, []string{"ENVO:404"}))
	assert.Equal(t, 0, classes.Len())
}

func TestObsoleterEmptySetIsNoOp(t *testing.T) {
	ctx := context.Background()
	relations := store.NewMemory()
	seedRelation(t, relations, ontology.Relation{Subject: "a", Predicate: "p", Object: "b"})

	obs := NewObsoleter(store.NewMemory(), relations, discardLogger(t))
	require.NoError(t, obs.Apply(ctx, nil))
	assert.Equal(t, 1, relations.Len())
}
