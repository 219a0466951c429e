// Package ontology defines the term and relation records flowing through the
// reconciliation engine, together with the static field lists shared by the
// reconcilers, the document codec, and the report headers. Field comparison
// is always per-field over these declared lists; nothing is introspected.
package ontology

import (
	"slices"
	"strconv"
	"strings"

	"github.com/c360studio/ontosync/store"
)

// Type tags persisted alongside every document.
const (
	ClassTypeTag    = "ontosync:OntologyClass"
	RelationTypeTag = "ontosync:OntologyRelation"
)

// Field names of the Class schema.
const (
	FieldID                     = "id"
	FieldName                   = "name"
	FieldAlternativeNames       = "alternative_names"
	FieldAlternativeIdentifiers = "alternative_identifiers"
	FieldDescription            = "description"
	FieldIsRoot                 = "is_root"
	FieldIsObsolete             = "is_obsolete"
	FieldRelations              = "relations"
	FieldType                   = "type"
)

// ClassFields is the canonical field ordering for Class documents, diffs,
// and report rows.
var ClassFields = []string{
	FieldID,
	FieldName,
	FieldAlternativeNames,
	FieldAlternativeIdentifiers,
	FieldDescription,
	FieldIsRoot,
	FieldIsObsolete,
	FieldRelations,
}

// Class is one ontology term. Identity is the namespaced identifier
// (e.g. "ENVO:0000001"). Obsolete terms are tombstoned, never deleted.
type Class struct {
	ID                     string   `json:"id"`
	Name                   string   `json:"name"`
	AlternativeNames       []string `json:"alternative_names"`
	AlternativeIdentifiers []string `json:"alternative_identifiers"`
	Description            string   `json:"description"`
	IsRoot                 bool     `json:"is_root"`
	IsObsolete             bool     `json:"is_obsolete"`

	// Relations is the denormalized cache of outgoing relation references.
	// It always holds the full current-batch closure, never an accumulation.
	Relations []string `json:"relations"`
}

// Document converts the class to its stored form. The is_root and
// is_obsolete booleans are always written as concrete values; a persisted
// class can never carry a null for either.
func (c Class) Document() store.Document {
	return store.Document{
		FieldID:                     c.ID,
		FieldName:                   c.Name,
		FieldAlternativeNames:       c.AlternativeNames,
		FieldAlternativeIdentifiers: c.AlternativeIdentifiers,
		FieldDescription:            c.Description,
		FieldIsRoot:                 c.IsRoot,
		FieldIsObsolete:             c.IsObsolete,
		FieldRelations:              c.Relations,
		FieldType:                   ClassTypeTag,
	}
}

// ClassFromDocument decodes a stored document back into a Class. Missing or
// null fields collapse to zero values, so legacy documents with absent
// booleans read as false.
func ClassFromDocument(doc store.Document) Class {
	return Class{
		ID:                     asString(doc[FieldID]),
		Name:                   asString(doc[FieldName]),
		AlternativeNames:       asStringSlice(doc[FieldAlternativeNames]),
		AlternativeIdentifiers: asStringSlice(doc[FieldAlternativeIdentifiers]),
		Description:            asString(doc[FieldDescription]),
		IsRoot:                 asBool(doc[FieldIsRoot]),
		IsObsolete:             asBool(doc[FieldIsObsolete]),
		Relations:              asStringSlice(doc[FieldRelations]),
	}
}

// ChangedFields returns the names of fields whose value in c differs from
// the persisted document, in ClassFields order. An empty result means the
// incoming record is an exact no-op.
func (c Class) ChangedFields(existing store.Document) []string {
	prev := ClassFromDocument(existing)

	var changed []string
	for _, field := range ClassFields {
		if !fieldEqual(c, prev, field) {
			changed = append(changed, field)
		}
	}
	return changed
}

func fieldEqual(a, b Class, field string) bool {
	switch field {
	case FieldID:
		return a.ID == b.ID
	case FieldName:
		return a.Name == b.Name
	case FieldAlternativeNames:
		return slices.Equal(a.AlternativeNames, b.AlternativeNames)
	case FieldAlternativeIdentifiers:
		return slices.Equal(a.AlternativeIdentifiers, b.AlternativeIdentifiers)
	case FieldDescription:
		return a.Description == b.Description
	case FieldIsRoot:
		return a.IsRoot == b.IsRoot
	case FieldIsObsolete:
		return a.IsObsolete == b.IsObsolete
	case FieldRelations:
		return slices.Equal(a.Relations, b.Relations)
	default:
		return true
	}
}

// Row flattens the class into a report row following ClassFields order.
func (c Class) Row() []string {
	return []string{
		c.ID,
		c.Name,
		strings.Join(c.AlternativeNames, "|"),
		strings.Join(c.AlternativeIdentifiers, "|"),
		c.Description,
		strconv.FormatBool(c.IsRoot),
		strconv.FormatBool(c.IsObsolete),
		strings.Join(c.Relations, "|"),
	}
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

// asStringSlice tolerates both []string (in-memory store) and []any
// (BSON-decoded arrays). Nil and empty collapse to nil.
func asStringSlice(v any) []string {
	switch vals := v.(type) {
	case []string:
		if len(vals) == 0 {
			return nil
		}
		return slices.Clone(vals)
	case []any:
		if len(vals) == 0 {
			return nil
		}
		out := make([]string, 0, len(vals))
		for _, item := range vals {
			out = append(out, asString(item))
		}
		return out
	default:
		return nil
	}
}
