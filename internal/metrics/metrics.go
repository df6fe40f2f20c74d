// Package metrics exposes Prometheus metrics for inventory runs. A run is a
// short-lived process, so the metrics are written to a node_exporter textfile
// at exit rather than served over HTTP.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pankaj-dahiya-devops/awsinv/internal/models"
)

// Label names.
const (
	LabelKind    = "kind"
	LabelScope   = "scope"
	LabelPartial = "partial"
)

// Metrics holds the inventory metrics. A nil *Metrics is valid and records
// nothing, so callers never need to check whether metrics are enabled.
type Metrics struct {
	// CollectorDuration measures how long one collector took in one scope.
	// Labels: kind
	CollectorDuration *prometheus.HistogramVec

	// Errors counts ledger entries by kind and partial flag.
	// Labels: kind, partial
	Errors *prometheus.CounterVec

	// ResourcesCollected is the number of records of kind in scope from the
	// last run.
	// Labels: scope, kind
	ResourcesCollected *prometheus.GaugeVec

	// Regions is the number of regions enumerated by the last run.
	Regions prometheus.Gauge

	// LastRunTimestamp is the Unix timestamp of the last run's start.
	LastRunTimestamp prometheus.Gauge
}

// New creates the inventory metrics and registers them with reg.
//
//	reg := prometheus.NewRegistry()
//	m := metrics.New(reg)
//	defer prometheus.WriteToTextfile(path, reg)
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CollectorDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "awsinv_collector_duration_seconds",
			Help:    "Time taken by one collector in one region or the global scope",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{LabelKind}),

		Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "awsinv_collection_errors_total",
			Help: "Collection errors recorded, by resource kind and partial flag",
		}, []string{LabelKind, LabelPartial}),

		ResourcesCollected: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "awsinv_resources_collected",
			Help: "Records collected by the last run, by scope and resource kind",
		}, []string{LabelScope, LabelKind}),

		Regions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "awsinv_regions_total",
			Help: "Regions enumerated by the last run",
		}),

		LastRunTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "awsinv_last_run_timestamp_seconds",
			Help: "Unix timestamp of the start of the last run",
		}),
	}

	reg.MustRegister(
		m.CollectorDuration,
		m.Errors,
		m.ResourcesCollected,
		m.Regions,
		m.LastRunTimestamp,
	)
	return m
}

// ObserveCollector records one collector's duration.
func (m *Metrics) ObserveCollector(kind models.ResourceKind, d time.Duration) {
	if m == nil {
		return
	}
	m.CollectorDuration.WithLabelValues(string(kind)).Observe(d.Seconds())
}

// RecordErrors counts every entry of errs.
func (m *Metrics) RecordErrors(errs []models.CollectionError) {
	if m == nil {
		return
	}
	for _, e := range errs {
		partial := "false"
		if e.Partial {
			partial = "true"
		}
		m.Errors.WithLabelValues(string(e.Kind), partial).Inc()
	}
}

// SetResources sets the record count of kind in scope.
func (m *Metrics) SetResources(scope string, kind models.ResourceKind, n int) {
	if m == nil {
		return
	}
	m.ResourcesCollected.WithLabelValues(scope, string(kind)).Set(float64(n))
}

// RecordRun sets the region count and start time of a run.
func (m *Metrics) RecordRun(regions int, startedAt time.Time) {
	if m == nil {
		return
	}
	m.Regions.Set(float64(regions))
	m.LastRunTimestamp.Set(float64(startedAt.Unix()))
}
