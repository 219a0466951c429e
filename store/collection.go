// Package store provides the document-store abstraction the reconciliation
// engine writes through: filterable collections with keyed upserts, bulk
// deletes, and idempotent index creation. The MongoDB implementation is the
// production backend; the in-memory implementation backs tests and local
// development.
package store

import (
	"context"
	"reflect"
)

// Document is a single persisted record, keyed by field name.
type Document map[string]any

// In matches a field against any of the listed values ($in).
type In []string

// OrKey is the reserved filter key holding alternative sub-filters ($or).
const OrKey = "$or"

// Filter matches documents by field value. Values are compared for exact
// equality, except In values (set membership) and the OrKey entry, whose
// value is a []Filter matched disjunctively.
type Filter map[string]any

// Or builds a filter matching documents that satisfy any of the given filters.
func Or(filters ...Filter) Filter {
	return Filter{OrKey: filters}
}

// ByID builds a filter matching documents by their "id" field.
func ByID(id string) Filter {
	return Filter{"id": id}
}

// Matches reports whether doc satisfies the filter. This is the reference
// semantics for all Collection implementations; the MongoDB backend
// translates the same structure into native query operators.
func (f Filter) Matches(doc Document) bool {
	for key, want := range f {
		if key == OrKey {
			alternatives, ok := want.([]Filter)
			if !ok {
				return false
			}
			matched := false
			for _, alt := range alternatives {
				if alt.Matches(doc) {
					matched = true
					break
				}
			}
			if !matched {
				return false
			}
			continue
		}

		got, present := doc[key]
		if in, ok := want.(In); ok {
			if !present {
				return false
			}
			member := false
			for _, v := range in {
				if reflect.DeepEqual(got, v) {
					member = true
					break
				}
			}
			if !member {
				return false
			}
			continue
		}

		if !present || !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

// Collection is the capability the reconciliation engine requires from a
// document store. All operations are synchronous and individually atomic;
// there are no multi-document transactions.
type Collection interface {
	// Find returns all documents matching the filter.
	Find(ctx context.Context, filter Filter) ([]Document, error)

	// Upsert writes each document keyed by filterFields. On match, only
	// updateFields are overwritten; on insert, all fields are written.
	Upsert(ctx context.Context, docs []Document, filterFields, updateFields []string) error

	// Delete removes all documents matching the filter and returns the count.
	Delete(ctx context.Context, filter Filter) (int64, error)

	// EnsureIndex creates an index over the given fields. Creation is
	// idempotent: an already-existing index is not an error.
	EnsureIndex(ctx context.Context, fields []string, unique bool) error
}
