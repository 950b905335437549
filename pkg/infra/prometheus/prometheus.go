package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var registry = prometheus.NewRegistry()

var registerer = prometheus.WrapRegistererWith(nil, registry)

var (
	riskBuckets = []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0}

	DecisionTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "accessgate_decisions_total",
			Help: "Total number of access decisions by action and policy",
		},
		[]string{"action", "policy"},
	)

	RiskScore = promauto.With(registerer).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "accessgate_risk_score",
			Help:    "Distribution of computed risk scores",
			Buckets: riskBuckets,
		},
	)

	PlaybookRunsTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "accessgate_playbook_runs_total",
			Help: "Playbook executions by playbook name and outcome",
		},
		[]string{"playbook", "outcome"},
	)

	PlaybookDropped = promauto.With(registerer).NewCounter(
		prometheus.CounterOpts{
			Name: "accessgate_playbook_dropped_total",
			Help: "Playbook executions dropped because the response queue was full",
		},
	)

	ThreatFeedErrors = promauto.With(registerer).NewCounter(
		prometheus.CounterOpts{
			Name: "accessgate_threat_feed_errors_total",
			Help: "Threat feed fetch failures",
		},
	)

	AuditDropped = promauto.With(registerer).NewCounter(
		prometheus.CounterOpts{
			Name: "accessgate_audit_dropped_total",
			Help: "Audit events dropped because the sink buffer was full",
		},
	)
)

// Registry exposes the engine registry for the metrics endpoint.
func Registry() *prometheus.Registry {
	return registry
}
