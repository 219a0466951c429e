// Package extract defines the seam between the external ontology extraction
// service and the reconciliation engine. Extraction itself (download,
// parsing, CURIE contraction, closure computation) happens upstream; this
// package only consumes its already-clean output.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/c360studio/ontosync/ontology"
)

// Source yields one ontology's term records and its relation edges, already
// transitively closed over the designated predicates.
type Source interface {
	Terms(ctx context.Context) ([]ontology.Class, error)
	Relations(ctx context.Context) ([]ontology.Relation, error)
}

// Batch is the wire shape of a pre-extracted ontology snapshot.
type Batch struct {
	Ontology  string              `json:"ontology"`
	Classes   []ontology.Class    `json:"classes"`
	Relations []ontology.Relation `json:"relations"`
}

// FileSource reads a pre-extracted snapshot from a JSON file produced by the
// extraction service.
type FileSource struct {
	Path string

	once  sync.Once
	batch Batch
	err   error
}

// NewFileSource creates a source over the given snapshot file.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

func (s *FileSource) load() (Batch, error) {
	s.once.Do(func() {
		data, err := os.ReadFile(s.Path)
		if err != nil {
			s.err = fmt.Errorf("read extract snapshot: %w", err)
			return
		}
		if err := json.Unmarshal(data, &s.batch); err != nil {
			s.err = fmt.Errorf("parse extract snapshot %s: %w", s.Path, err)
		}
	})
	return s.batch, s.err
}

// Terms returns the snapshot's term records.
func (s *FileSource) Terms(ctx context.Context) ([]ontology.Class, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	batch, err := s.load()
	if err != nil {
		return nil, err
	}
	return batch.Classes, nil
}

// Relations returns the snapshot's relation edges.
func (s *FileSource) Relations(ctx context.Context) ([]ontology.Relation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	batch, err := s.load()
	if err != nil {
		return nil, err
	}
	return batch.Relations, nil
}

// StaticSource serves fixed in-memory batches; used by tests and embedding
// callers that already hold extracted data.
type StaticSource struct {
	Classes []ontology.Class
	Edges   []ontology.Relation
}

// Terms returns the fixed term records.
func (s *StaticSource) Terms(context.Context) ([]ontology.Class, error) {
	return s.Classes, nil
}

// Relations returns the fixed relation edges.
func (s *StaticSource) Relations(context.Context) ([]ontology.Relation, error) {
	return s.Edges, nil
}
