package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for reach processing.
type Registry struct {
	// Reach pipeline
	ReachesProcessedTotal   *prometheus.CounterVec
	ValidationFailuresTotal *prometheus.CounterVec
	ReachProcessingDuration prometheus.Histogram
	HydrolinePartsPerReach  prometheus.Histogram

	// Network engine
	TraceDuration      *prometheus.HistogramVec
	TraceEdgesReturned *prometheus.HistogramVec

	// Batch
	ChunksProcessedTotal prometheus.Counter
	BatchValidPercent    prometheus.Gauge
	BatchReachesTotal    prometheus.Gauge
	ReconciledTotal      prometheus.Counter

	registry prometheus.Registerer
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// NewRegistry creates a metrics registry registering with the given
// Prometheus registerer.
func NewRegistry(reg prometheus.Registerer) *Registry {
	r := &Registry{registry: reg}
	r.initReachMetrics()
	r.initTraceMetrics()
	r.initBatchMetrics()
	return r
}

// Default returns the process-wide registry backed by the default
// Prometheus registerer.
func Default() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry(prometheus.DefaultRegisterer)
	})
	return defaultRegistry
}
