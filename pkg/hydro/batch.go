package hydro

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/riversys/hydroline/pkg/logging"
	"github.com/riversys/hydroline/pkg/metrics"
	"github.com/riversys/hydroline/pkg/parallel"
	"github.com/riversys/hydroline/pkg/pubsub"
)

// Summary is the batch-level accounting reported at the end of a run.
type Summary struct {
	RunID      string
	Considered int
	Valid      int
	Invalid    int
	Skipped    int // manually digitized, preserved unchanged
	Reconciled int // invalid records removed because the reach now validates
}

// PercentValid returns the share of considered reaches that ended valid,
// counting preserved manual hydrolines as valid.
func (s Summary) PercentValid() float64 {
	if s.Considered == 0 {
		return 0
	}
	return float64(s.Valid+s.Skipped) / float64(s.Considered) * 100
}

// String renders the summary the way operators expect to read it.
func (s Summary) String() string {
	return fmt.Sprintf("%.0f%% (%d/%d) reaches processed successfully",
		s.PercentValid(), s.Valid+s.Skipped, s.Considered)
}

// BatchRunner enumerates candidate reach ids from the access dataset and
// drives the processor over each, in parallel chunks. Workers only compute;
// results are flushed to the sinks by the runner's own goroutine after each
// chunk completes, preserving the single-writer discipline.
type BatchRunner struct {
	cfg        Config
	source     AccessSource
	processor  *ReachProcessor
	hydrolines HydrolineSink
	invalids   InvalidSink
	bus        *pubsub.Bus
	log        logging.Logger
	metrics    *metrics.Registry
}

// NewBatchRunner creates a runner. The bus and metrics registry may be nil
// when progress events or metrics are not wanted.
func NewBatchRunner(
	cfg Config,
	source AccessSource,
	processor *ReachProcessor,
	hydrolines HydrolineSink,
	invalids InvalidSink,
	bus *pubsub.Bus,
	reg *metrics.Registry,
	log logging.Logger,
) (*BatchRunner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &BatchRunner{
		cfg:        cfg.WithDefaults(),
		source:     source,
		processor:  processor,
		hydrolines: hydrolines,
		invalids:   invalids,
		bus:        bus,
		log:        log,
		metrics:    reg,
	}, nil
}

// Run processes every candidate reach and returns the summary. Only a
// network/data-source failure aborts the run; per-reach failures are
// written to the invalid sink and the batch continues.
func (r *BatchRunner) Run(ctx context.Context) (Summary, error) {
	runID := uuid.NewString()
	log := r.log.With(logging.Component("batch"), logging.RunID(runID))
	summary := Summary{RunID: runID}

	ids, err := r.candidateIDs(ctx)
	if err != nil {
		return summary, err
	}
	summary.Considered = len(ids)
	log.Info("reaches queued for processing", logging.Count(len(ids)),
		logging.Int("chunk_size", r.cfg.ChunkSize),
		logging.Int("workers", r.cfg.Workers))

	pool, err := parallel.NewWorkerPool(r.cfg.Workers, log)
	if err != nil {
		return summary, err
	}
	defer pool.Close()

	for chunkIndex, chunk := range parallel.Chunks(ids, r.cfg.ChunkSize) {
		results := make([]*Reach, len(chunk))
		errs := make([]error, len(chunk))

		var wg sync.WaitGroup
		for i, reachID := range chunk {
			i, reachID := i, reachID
			wg.Add(1)
			pool.Submit(func() {
				defer wg.Done()
				started := time.Now()
				results[i], errs[i] = r.processor.Process(ctx, reachID)
				r.recordReach(results[i], errs[i], time.Since(started))
			})
		}
		// Chunk barrier: nothing is written until every reach in the
		// chunk has a result.
		wg.Wait()

		if err := r.flush(ctx, runID, results, errs); err != nil {
			return summary, err
		}
		r.tally(&summary, results)

		if r.metrics != nil {
			r.metrics.RecordChunk()
		}
		log.Debug("chunk complete", logging.Chunk(chunkIndex),
			logging.Count(len(chunk)))
	}

	reconciled, err := r.reconcile(ctx)
	if err != nil {
		return summary, err
	}
	summary.Reconciled = reconciled

	if r.metrics != nil {
		r.metrics.RecordBatch(summary.Considered, summary.PercentValid())
	}
	r.publish(pubsub.Event{Topic: pubsub.TopicBatchSummary, Detail: summary})
	log.Info("batch complete",
		logging.Int("valid", summary.Valid),
		logging.Int("invalid", summary.Invalid),
		logging.Int("skipped", summary.Skipped),
		logging.Int("reconciled", summary.Reconciled),
		logging.Float64("percent_valid", summary.PercentValid()))

	return summary, nil
}

// candidateIDs enumerates distinct reach ids, dropping null/zero sentinel
// values and, in new-only mode, ids already present in the hydroline sink.
func (r *BatchRunner) candidateIDs(ctx context.Context) ([]string, error) {
	ids, err := r.source.ReachIDs(ctx)
	if err != nil {
		return nil, NewError("Run").Cause(fmt.Errorf("%w: %v", ErrNetworkUnavailable, err)).Err()
	}

	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || id == "0" || seen[id] {
			continue
		}
		seen[id] = true

		if r.cfg.NewOnly {
			exists, err := r.hydrolines.Contains(ctx, id)
			if err != nil {
				return nil, NewError("Run").Reach(id).Cause(err).Err()
			}
			if exists {
				continue
			}
		}
		out = append(out, id)
	}
	return out, nil
}

// flush writes one chunk's results to the sinks. Runs on the batch
// goroutine only.
func (r *BatchRunner) flush(ctx context.Context, runID string, results []*Reach, errs []error) error {
	for i, reach := range results {
		if errs[i] != nil {
			// Fatal by construction: the processor converts everything
			// reach-scoped into an invalid result.
			return errs[i]
		}

		switch {
		case reach.ManuallyDigitized:
			// Existing record preserved unchanged.

		case reach.Valid():
			rec := HydrolineRecord{
				ReachID:  reach.ID,
				Geometry: reach.Hydroline,
				RunID:    runID,
			}
			if err := r.hydrolines.Write(ctx, rec); err != nil {
				return NewError("Flush").Reach(reach.ID).Cause(err).Err()
			}
			r.publish(pubsub.Event{Topic: pubsub.TopicReachValid, ReachID: reach.ID})

		default:
			rec := InvalidRecord{
				ReachID:  reach.ID,
				Reason:   string(reach.Reason),
				Detail:   reach.Detail,
				Geometry: reach.DiagnosticPoint(),
				RunID:    runID,
			}
			if err := r.invalids.Write(ctx, rec); err != nil {
				return NewError("Flush").Reach(reach.ID).Cause(err).Err()
			}
			r.publish(pubsub.Event{
				Topic:   pubsub.TopicReachInvalid,
				ReachID: reach.ID,
				Reason:  string(reach.Reason),
			})
		}
	}
	return nil
}

func (r *BatchRunner) tally(summary *Summary, results []*Reach) {
	for _, reach := range results {
		switch {
		case reach.ManuallyDigitized:
			summary.Skipped++
		case reach.Valid():
			summary.Valid++
		default:
			summary.Invalid++
		}
	}
}

// reconcile removes invalid records whose reach id now has a valid
// hydroline, so the invalid sink only lists reaches that still need
// attention.
func (r *BatchRunner) reconcile(ctx context.Context) (int, error) {
	ids, err := r.invalids.ReachIDs(ctx)
	if err != nil {
		return 0, NewError("Reconcile").Cause(err).Err()
	}

	removed := 0
	for _, id := range ids {
		valid, err := r.hydrolines.Contains(ctx, id)
		if err != nil {
			return removed, NewError("Reconcile").Reach(id).Cause(err).Err()
		}
		if !valid {
			continue
		}
		if err := r.invalids.Remove(ctx, id); err != nil {
			return removed, NewError("Reconcile").Reach(id).Cause(err).Err()
		}
		removed++
	}

	if removed > 0 && r.metrics != nil {
		r.metrics.RecordReconciled(removed)
	}
	return removed, nil
}

func (r *BatchRunner) recordReach(reach *Reach, err error, elapsed time.Duration) {
	if r.metrics == nil || err != nil {
		return
	}
	switch {
	case reach.ManuallyDigitized:
		r.metrics.RecordReach("skipped", elapsed)
	case reach.Valid():
		r.metrics.RecordReach("valid", elapsed)
		r.metrics.RecordHydroline(len(reach.Hydroline))
	default:
		r.metrics.RecordReach("invalid", elapsed)
		r.metrics.RecordFailure(string(reach.Reason))
	}
}

func (r *BatchRunner) publish(ev pubsub.Event) {
	if r.bus != nil {
		r.bus.Publish(ev)
	}
}
