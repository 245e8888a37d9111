package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initReachMetrics() {
	r.ReachesProcessedTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "hydroline_reaches_processed_total",
			Help: "Total number of reaches processed",
		},
		[]string{"status"},
	)

	r.ValidationFailuresTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "hydroline_validation_failures_total",
			Help: "Validation and extraction failures by reason",
		},
		[]string{"reason"},
	)

	r.ReachProcessingDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hydroline_reach_processing_duration_seconds",
			Help:    "End-to-end processing duration per reach",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 30.0},
		},
	)

	r.HydrolinePartsPerReach = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hydroline_parts_per_reach",
			Help:    "Number of geometry parts in each extracted hydroline",
			Buckets: []float64{1, 2, 3, 5, 10, 25},
		},
	)
}

func (r *Registry) initTraceMetrics() {
	r.TraceDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hydroline_trace_duration_seconds",
			Help:    "Network trace duration in seconds",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
		},
		[]string{"operation"},
	)

	r.TraceEdgesReturned = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hydroline_trace_edges_returned",
			Help:    "Number of edges returned per trace",
			Buckets: []float64{1, 10, 100, 1000, 10000},
		},
		[]string{"operation"},
	)
}

func (r *Registry) initBatchMetrics() {
	r.ChunksProcessedTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "hydroline_chunks_processed_total",
			Help: "Total number of reach id chunks completed",
		},
	)

	r.BatchValidPercent = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "hydroline_batch_valid_percent",
			Help: "Percentage of valid reaches in the most recent batch",
		},
	)

	r.BatchReachesTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "hydroline_batch_reaches_total",
			Help: "Number of reach ids considered in the most recent batch",
		},
	)

	r.ReconciledTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "hydroline_invalid_reconciled_total",
			Help: "Invalid records removed after the reach later validated",
		},
	)
}
