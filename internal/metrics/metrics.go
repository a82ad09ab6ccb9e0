// Package metrics exposes Prometheus instrumentation for the matching and
// assignment pipelines.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles the engine's counters and histograms.
type Metrics struct {
	MatchRuns            prometheus.Counter
	OffersWritten        prometheus.Counter
	StrategyFallbacks    prometheus.Counter
	Acceptances          prometheus.Counter
	AcceptConflicts      prometheus.Counter
	Assignments          prometheus.Counter
	AssignmentRetries    prometheus.Counter
	EmergencyAssignments prometheus.Counter
	AssignmentFailures   prometheus.Counter
	ScoringDuration      prometheus.Histogram
}

// New registers the engine metrics on reg. Passing nil uses the default
// registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		MatchRuns: factory.NewCounter(prometheus.CounterOpts{
			Name: "zerohunger_match_runs_total",
			Help: "Matching pipeline executions.",
		}),
		OffersWritten: factory.NewCounter(prometheus.CounterOpts{
			Name: "zerohunger_offers_written_total",
			Help: "Ranked offers persisted for donations.",
		}),
		StrategyFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Name: "zerohunger_scoring_fallbacks_total",
			Help: "Times the embedding path yielded nothing and rules re-ran.",
		}),
		Acceptances: factory.NewCounter(prometheus.CounterOpts{
			Name: "zerohunger_acceptances_total",
			Help: "Donations accepted by a recipient.",
		}),
		AcceptConflicts: factory.NewCounter(prometheus.CounterOpts{
			Name: "zerohunger_accept_conflicts_total",
			Help: "Accept attempts rejected by the single-winner guard.",
		}),
		Assignments: factory.NewCounter(prometheus.CounterOpts{
			Name: "zerohunger_assignments_total",
			Help: "Tasks bound to a volunteer.",
		}),
		AssignmentRetries: factory.NewCounter(prometheus.CounterOpts{
			Name: "zerohunger_assignment_retries_total",
			Help: "Assignment attempts deferred to a scheduled retry.",
		}),
		EmergencyAssignments: factory.NewCounter(prometheus.CounterOpts{
			Name: "zerohunger_emergency_assignments_total",
			Help: "Tasks bound through the emergency fallback scan.",
		}),
		AssignmentFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "zerohunger_assignment_failures_total",
			Help: "Tasks left unbound after exhausting all attempts.",
		}),
		ScoringDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "zerohunger_scoring_duration_seconds",
			Help:    "Wall time of one candidate-ranking run.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
