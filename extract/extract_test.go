package extract

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/ontosync/ontology"
)

func TestFileSource(t *testing.T) {
	snapshot := `{
		"ontology": "envo",
		"classes": [
			{"id": "ENVO:001", "name": "soil", "alternative_names": ["dirt"], "is_root": true},
			{"id": "ENVO:002", "name": "sandy soil", "is_obsolete": true}
		],
		"relations": [
			{"subject": "ENVO:002", "predicate": "is_a", "object": "ENVO:001"}
		]
	}`
	path := filepath.Join(t.TempDir(), "envo.json")
	require.NoError(t, os.WriteFile(path, []byte(snapshot), 0o644))

	src := NewFileSource(path)
	ctx := context.Background()

	terms, err := src.Terms(ctx)
	require.NoError(t, err)
	require.Len(t, terms, 2)
	assert.Equal(t, ontology.Class{
		ID:               "ENVO:001",
		Name:             "soil",
		AlternativeNames: []string{"dirt"},
		IsRoot:           true,
	}, terms[0])
	assert.True(t, terms[1].IsObsolete)

	edges, err := src.Relations(ctx)
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, ontology.Relation{Subject: "ENVO:002", Predicate: "is_a", Object: "ENVO:001"}, edges[0])
}

func TestFileSourceMissingFile(t *testing.T) {
	src := NewFileSource(filepath.Join(t.TempDir(), "absent.json"))
	_, err := src.Terms(context.Background())
	assert.Error(t, err)

	// The load error is sticky across calls.
	_, err = src.Relations(context.Background())
	assert.Error(t, err)
}

func TestFileSourceMalformedSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewFileSource(path).Terms(context.Background())
	assert.Error(t, err)
}

func TestFileSourceHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFileSource("unused.json").Terms(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStaticSource(t *testing.T) {
	src := &StaticSource{
		Classes: []ontology.Class{{ID: "ENVO:001"}},
		Edges:   []ontology.Relation{{Subject: "a", Predicate: "p", Object: "b"}},
	}

	terms, err := src.Terms(context.Background())
	require.NoError(t, err)
	assert.Len(t, terms, 1)

	edges, err := src.Relations(context.Background())
	require.NoError(t, err)
	assert.Len(t, edges, 1)
}
