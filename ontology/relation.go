package ontology

import (
	"fmt"

	"github.com/c360studio/ontosync/store"
)

// Field names of the Relation schema.
const (
	FieldSubject   = "subject"
	FieldPredicate = "predicate"
	FieldObject    = "object"
)

// RelationFields is the canonical field ordering for relation documents and
// report rows. The triple is also the upsert identity: no duplicate
// (subject, predicate, object) persists within a collection.
var RelationFields = []string{FieldSubject, FieldPredicate, FieldObject}

// Relation is one directed, predicate-labeled edge between two terms,
// produced by the extractor as part of an already-computed closure.
type Relation struct {
	Subject   string `json:"subject"`
	Predicate string `json:"predicate"`
	Object    string `json:"object"`
}

// Validate reports whether the edge is well-formed. An edge with any empty
// field is invalid and must be dropped, never persisted.
func (r Relation) Validate() error {
	switch {
	case r.Subject == "":
		return fmt.Errorf("relation %s: empty subject", r)
	case r.Predicate == "":
		return fmt.Errorf("relation %s: empty predicate", r)
	case r.Object == "":
		return fmt.Errorf("relation %s: empty object", r)
	}
	return nil
}

// String renders the triple for logs and errors.
func (r Relation) String() string {
	return fmt.Sprintf("(%s %s %s)", r.Subject, r.Predicate, r.Object)
}

// Document converts the relation to its stored form.
func (r Relation) Document() store.Document {
	return store.Document{
		FieldSubject:   r.Subject,
		FieldPredicate: r.Predicate,
		FieldObject:    r.Object,
		FieldType:      RelationTypeTag,
	}
}

// RelationFromDocument decodes a stored document back into a Relation.
func RelationFromDocument(doc store.Document) Relation {
	return Relation{
		Subject:   asString(doc[FieldSubject]),
		Predicate: asString(doc[FieldPredicate]),
		Object:    asString(doc[FieldObject]),
	}
}

// Row flattens the relation into a report row following RelationFields order.
func (r Relation) Row() []string {
	return []string{r.Subject, r.Predicate, r.Object}
}
