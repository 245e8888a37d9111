package metrics

import (
	"time"
)

// RecordReach records one processed reach with its terminal status and
// duration. Status is "valid", "invalid", or "skipped".
func (r *Registry) RecordReach(status string, duration time.Duration) {
	r.ReachesProcessedTotal.WithLabelValues(status).Inc()
	r.ReachProcessingDuration.Observe(duration.Seconds())
}

// RecordFailure records a validation or extraction failure by reason code.
func (r *Registry) RecordFailure(reason string) {
	r.ValidationFailuresTotal.WithLabelValues(reason).Inc()
}

// RecordTrace records one network trace call.
func (r *Registry) RecordTrace(operation string, duration time.Duration, edges int) {
	r.TraceDuration.WithLabelValues(operation).Observe(duration.Seconds())
	r.TraceEdgesReturned.WithLabelValues(operation).Observe(float64(edges))
}

// RecordHydroline records the part count of an extracted hydroline.
func (r *Registry) RecordHydroline(parts int) {
	r.HydrolinePartsPerReach.Observe(float64(parts))
}

// RecordChunk records completion of one chunk.
func (r *Registry) RecordChunk() {
	r.ChunksProcessedTotal.Inc()
}

// RecordBatch records the batch-level summary gauges.
func (r *Registry) RecordBatch(considered int, percentValid float64) {
	r.BatchReachesTotal.Set(float64(considered))
	r.BatchValidPercent.Set(percentValid)
}

// RecordReconciled counts invalid records removed by reconciliation.
func (r *Registry) RecordReconciled(n int) {
	r.ReconciledTotal.Add(float64(n))
}
