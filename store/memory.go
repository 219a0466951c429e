package store

import (
	"context"
	"maps"
	"sync"
)

// Memory is an in-memory Collection used by tests and local development.
// It implements the same filter and upsert semantics as the MongoDB backend.
type Memory struct {
	mu   sync.RWMutex
	docs []Document

	// FailFind and FailUpsert, when non-nil, are consulted before each
	// operation so tests can inject per-record store failures.
	FailFind   func(filter Filter) error
	FailUpsert func(doc Document) error
}

// NewMemory creates an empty in-memory collection.
func NewMemory() *Memory {
	return &Memory{}
}

// Find returns copies of all documents matching the filter.
func (m *Memory) Find(_ context.Context, filter Filter) ([]Document, error) {
	if m.FailFind != nil {
		if err := m.FailFind(filter); err != nil {
			return nil, err
		}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Document
	for _, doc := range m.docs {
		if filter.Matches(doc) {
			out = append(out, maps.Clone(doc))
		}
	}
	return out, nil
}

// Upsert writes each document keyed by filterFields. The first matching
// stored document has its updateFields overwritten; with no match the full
// document is inserted.
func (m *Memory) Upsert(_ context.Context, docs []Document, filterFields, updateFields []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, doc := range docs {
		if m.FailUpsert != nil {
			if err := m.FailUpsert(doc); err != nil {
				return err
			}
		}

		key := make(Filter, len(filterFields))
		for _, f := range filterFields {
			key[f] = doc[f]
		}

		matched := false
		for _, existing := range m.docs {
			if !key.Matches(existing) {
				continue
			}
			for _, f := range updateFields {
				existing[f] = doc[f]
			}
			matched = true
			break
		}
		if !matched {
			m.docs = append(m.docs, maps.Clone(doc))
		}
	}
	return nil
}

// Delete removes all documents matching the filter.
func (m *Memory) Delete(_ context.Context, filter Filter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.docs[:0]
	var removed int64
	for _, doc := range m.docs {
		if filter.Matches(doc) {
			removed++
			continue
		}
		kept = append(kept, doc)
	}
	m.docs = kept
	return removed, nil
}

// EnsureIndex is a no-op for the in-memory store.
func (m *Memory) EnsureIndex(context.Context, []string, bool) error {
	return nil
}

// Len returns the number of stored documents.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs)
}
