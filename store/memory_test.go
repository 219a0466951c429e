package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterMatches(t *testing.T) {
	doc := Document{"id": "ENVO:001", "name": "biome", "is_obsolete": false}

	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"exact match", Filter{"id": "ENVO:001"}, true},
		{"exact mismatch", Filter{"id": "ENVO:002"}, false},
		{"two fields match", Filter{"id": "ENVO:001", "is_obsolete": false}, true},
		{"two fields one mismatch", Filter{"id": "ENVO:001", "is_obsolete": true}, false},
		{"missing field", Filter{"unknown": "x"}, false},
		{"in membership", Filter{"id": In{"ENVO:001", "ENVO:002"}}, true},
		{"in non-membership", Filter{"id": In{"ENVO:003"}}, false},
		{"or matches second", Or(Filter{"id": "ENVO:999"}, Filter{"name": "biome"}), true},
		{"or matches none", Or(Filter{"id": "ENVO:999"}, Filter{"name": "ocean"}), false},
		{"empty filter matches all", Filter{}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.filter.Matches(doc))
		})
	}
}

func TestMemoryUpsert(t *testing.T) {
	ctx := context.Background()

	t.Run("inserts full document when no match", func(t *testing.T) {
		m := NewMemory()
		doc := Document{"id": "ENVO:001", "name": "A", "description": "d"}

		require.NoError(t, m.Upsert(ctx, []Document{doc}, []string{"id"}, []string{"name"}))

		found, err := m.Find(ctx, ByID("ENVO:001"))
		require.NoError(t, err)
		require.Len(t, found, 1)
		// All fields written on insert, not just updateFields.
		assert.Equal(t, "d", found[0]["description"])
	})

	t.Run("overwrites only updateFields on match", func(t *testing.T) {
		m := NewMemory()
		require.NoError(t, m.Upsert(ctx,
			[]Document{{"id": "ENVO:001", "name": "A", "description": "keep"}},
			[]string{"id"}, []string{"id", "name", "description"}))

		require.NoError(t, m.Upsert(ctx,
			[]Document{{"id": "ENVO:001", "name": "B", "description": "discard"}},
			[]string{"id"}, []string{"name"}))

		found, err := m.Find(ctx, ByID("ENVO:001"))
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "B", found[0]["name"])
		assert.Equal(t, "keep", found[0]["description"])
	})

	t.Run("triple key deduplicates", func(t *testing.T) {
		m := NewMemory()
		edge := Document{"subject": "a", "predicate": "is_a", "object": "b"}
		key := []string{"subject", "predicate", "object"}

		require.NoError(t, m.Upsert(ctx, []Document{edge}, key, key))
		require.NoError(t, m.Upsert(ctx, []Document{edge}, key, key))

		assert.Equal(t, 1, m.Len())
	})

	t.Run("stored documents are isolated from caller", func(t *testing.T) {
		m := NewMemory()
		doc := Document{"id": "ENVO:001", "name": "A"}
		require.NoError(t, m.Upsert(ctx, []Document{doc}, []string{"id"}, []string{"id", "name"}))

		doc["name"] = "mutated"

		found, err := m.Find(ctx, ByID("ENVO:001"))
		require.NoError(t, err)
		assert.Equal(t, "A", found[0]["name"])
	})
}

func TestMemoryDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	edges := []Document{
		{"subject": "ENVO:001", "object": "ENVO:002"},
		{"subject": "ENVO:002", "object": "ENVO:003"},
		{"subject": "ENVO:003", "object": "ENVO:001"},
	}
	for _, e := range edges {
		require.NoError(t, m.Upsert(ctx, []Document{e}, []string{"subject", "object"}, []string{"subject", "object"}))
	}

	obsolete := In{"ENVO:002"}
	removed, err := m.Delete(ctx, Or(Filter{"subject": obsolete}, Filter{"object": obsolete}))
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)
	assert.Equal(t, 1, m.Len())

	remaining, err := m.Find(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "ENVO:003", remaining[0]["subject"])
}

func TestMemoryFailureInjection(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.FailFind = func(Filter) error { return ErrUnreachable }

	_, err := m.Find(ctx, Filter{})
	require.Error(t, err)
	assert.True(t, Unreachable(err))
}
