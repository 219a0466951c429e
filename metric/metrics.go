// Package metric exposes Prometheus counters for reconciliation runs.
package metric

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the per-process reconciliation counters.
type Metrics struct {
	ClassesInserted   prometheus.Counter
	ClassesUpdated    prometheus.Counter
	ClassesUnchanged  prometheus.Counter
	TermsObsoleted    prometheus.Counter
	RelationsInserted prometheus.Counter
	RecordErrors      prometheus.Counter
	RunsCompleted     prometheus.Counter
}

// New registers the reconciliation counters with reg. A nil registerer uses
// a private registry, which keeps tests isolated.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		ClassesInserted: factory.NewCounter(prometheus.CounterOpts{
			Name: "ontosync_classes_inserted_total",
			Help: "Ontology classes inserted for the first time.",
		}),
		ClassesUpdated: factory.NewCounter(prometheus.CounterOpts{
			Name: "ontosync_classes_updated_total",
			Help: "Ontology classes with at least one changed field.",
		}),
		ClassesUnchanged: factory.NewCounter(prometheus.CounterOpts{
			Name: "ontosync_classes_unchanged_total",
			Help: "Ontology classes reconciled with no change.",
		}),
		TermsObsoleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "ontosync_terms_obsoleted_total",
			Help: "Ontology terms tombstoned as obsolete.",
		}),
		RelationsInserted: factory.NewCounter(prometheus.CounterOpts{
			Name: "ontosync_relations_inserted_total",
			Help: "Ontology relation edges upserted.",
		}),
		RecordErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "ontosync_record_errors_total",
			Help: "Records skipped after a per-record store error.",
		}),
		RunsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "ontosync_runs_completed_total",
			Help: "Reconciliation runs that reached the REPORTED state.",
		}),
	}
}
