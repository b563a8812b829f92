// Package metrics provides the centralized Prometheus registry for the
// portal.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	EntitiesCreatedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "veloportal",
		Name:      "entities_created_total",
		Help:      "Total number of entities created, by kind",
	}, []string{"kind"})
	EntitiesRemovedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "veloportal",
		Name:      "entities_removed_total",
		Help:      "Total number of entities removed, by kind",
	}, []string{"kind"})
	ResultsRegisteredTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "veloportal",
		Name:      "results_registered_total",
		Help:      "Total number of stage results registered",
	})
	ValidationFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "veloportal",
		Name:      "validation_failures_total",
		Help:      "Total number of rejected mutations, by operation",
	}, []string{"operation"})
	ClassificationQueriesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "veloportal",
		Name:      "classification_queries_total",
		Help:      "Total number of stage classification computations",
	})
	SnapshotSavesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "veloportal",
		Name:      "snapshot_saves_total",
		Help:      "Total number of state snapshots saved",
	})
	SnapshotLoadsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "veloportal",
		Name:      "snapshot_loads_total",
		Help:      "Total number of state snapshots loaded",
	})
	StartlistImportsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "veloportal",
		Name:      "startlist_imports_total",
		Help:      "Total number of startlist import runs",
	})
	LeaderboardBroadcastsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "veloportal",
		Name:      "leaderboard_broadcasts_total",
		Help:      "Total number of websocket leaderboard broadcasts",
	})
)

// Histogram metrics
var (
	ClassificationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "veloportal",
		Name:      "classification_duration_seconds",
		Help:      "Time spent computing stage classifications",
		Buckets:   prometheus.DefBuckets,
	})
)

// Registry returns the shared registry, registering all metrics on first
// use.
func Registry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			EntitiesCreatedTotal,
			EntitiesRemovedTotal,
			ResultsRegisteredTotal,
			ValidationFailuresTotal,
			ClassificationQueriesTotal,
			SnapshotSavesTotal,
			SnapshotLoadsTotal,
			StartlistImportsTotal,
			LeaderboardBroadcastsTotal,
			ClassificationDuration,
		)
	})
	return registry
}

// Handler returns the HTTP handler serving the registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry(), promhttp.HandlerOpts{})
}
