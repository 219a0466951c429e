package ontology

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRelationValidate(t *testing.T) {
	tests := []struct {
		name    string
		rel     Relation
		wantErr bool
	}{
		{"valid", Relation{Subject: "ENVO:1", Predicate: "is_a", Object: "ENVO:2"}, false},
		{"empty subject", Relation{Predicate: "is_a", Object: "ENVO:2"}, true},
		{"empty predicate", Relation{Subject: "ENVO:1", Object: "ENVO:2"}, true},
		{"empty object", Relation{Subject: "ENVO:1", Predicate: "is_a"}, true},
		{"all empty", Relation{}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.rel.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRelationDocumentRoundTrip(t *testing.T) {
	rel := Relation{Subject: "ENVO:1", Predicate: "part_of", Object: "ENVO:2"}
	doc := rel.Document()

	assert.Equal(t, RelationTypeTag, doc[FieldType])
	assert.Equal(t, rel, RelationFromDocument(doc))
}

func TestRelationRow(t *testing.T) {
	rel := Relation{Subject: "ENVO:1", Predicate: "is_a", Object: "ENVO:2"}
	assert.Equal(t, []string{"ENVO:1", "is_a", "ENVO:2"}, rel.Row())
}
