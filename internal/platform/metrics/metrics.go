// Package metrics holds the Prometheus collectors of the service and its registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultRegistry is exposed on /metrics.
var DefaultRegistry = prometheus.NewRegistry()

func init() {
	DefaultRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		LedgerCallDuration, LedgerCallTotal,
		ReconciliationFlagsTotal, CompareAndSetRetries,
		DetachedOperations, RollUpUpdates,
	)
}

// LedgerCallDuration is the latency of ledger calls in seconds.
var LedgerCallDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "fundraising_ledger_call_duration_seconds",
		Help:    "Latency of ledger gateway calls.",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"operation"},
)

// LedgerCallTotal counts ledger calls by outcome.
var LedgerCallTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "fundraising_ledger_call_total",
		Help: "Ledger gateway calls by operation and outcome.",
	},
	[]string{"operation", "outcome"}, // ok | rejected | indeterminate | fatal
)

// ReconciliationFlagsTotal counts flags written for operators.
var ReconciliationFlagsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "fundraising_reconciliation_flags_total",
		Help: "Reconciliation flags written, by kind.",
	},
	[]string{"kind"},
)

// CompareAndSetRetries counts campaign compare-and-set attempts lost to a concurrent writer.
var CompareAndSetRetries = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "fundraising_campaign_cas_conflicts_total",
		Help: "Campaign compare-and-set conflicts, by operation.",
	},
	[]string{"operation"},
)

// DetachedOperations is the number of ledger calls still running after their caller left or
// still committing.
var DetachedOperations = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "fundraising_detached_operations",
		Help: "Ledger operations in flight, including those whose caller has gone away.",
	},
)

// RollUpUpdates counts campaigns moved forward by the reconciler.
var RollUpUpdates = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "fundraising_rollup_updates_total",
		Help: "Campaign aggregates corrected by the reconciler.",
	},
)

// Handler serves DefaultRegistry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(DefaultRegistry, promhttp.HandlerOpts{})
}
