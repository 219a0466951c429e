// Package report accumulates the per-run audit records produced by a
// reconciliation and writes them as tabular files.
package report

// Kind names what a report's records represent.
type Kind string

const (
	// KindUpdate marks records whose persisted form was changed.
	KindUpdate Kind = "update"
	// KindInsert marks records persisted for the first time.
	KindInsert Kind = "insert"
)

// Default report names, used as output file basenames.
const (
	NameClassUpdates    = "ontology_updates"
	NameClassInserts    = "ontology_inserts"
	NameRelationInserts = "ontology_relation_inserts"
)

// Report is one run's record set of a single kind. Fields is the shared
// field-name ordering every record row follows, and doubles as the tabular
// header. A report is created fresh per run and immutable once returned to
// the caller.
type Report struct {
	Kind    Kind
	Name    string
	Fields  []string
	Records [][]string
}

// New creates an empty report.
func New(kind Kind, name string, fields []string) *Report {
	return &Report{
		Kind:   kind,
		Name:   name,
		Fields: fields,
	}
}

// Add appends one record row.
func (r *Report) Add(row []string) {
	r.Records = append(r.Records, row)
}

// Len returns the number of accumulated records.
func (r *Report) Len() int {
	return len(r.Records)
}
