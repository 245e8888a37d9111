package hydro

import (
	"context"
	"errors"
	"fmt"

	"github.com/riversys/hydroline/pkg/logging"
)

// ReachProcessor drives a single reach through the validation and
// extraction pipeline. Stages run strictly in sequence and short-circuit: a
// later validator is never invoked once an earlier one fails.
type ReachProcessor struct {
	resolver    *AccessPointResolver
	coincidence *CoincidenceValidator
	flowOrder   *FlowOrderValidator
	extractor   *HydrolineExtractor
	hydrolines  HydrolineSink
	log         logging.Logger
}

// NewReachProcessor wires the pipeline over a shared read-only network and
// access source. The hydroline sink is consulted read-only for the
// manually-digitized check.
func NewReachProcessor(net Network, source AccessSource, hydrolines HydrolineSink, cfg Config, log logging.Logger) *ReachProcessor {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &ReachProcessor{
		resolver:    NewAccessPointResolver(source),
		coincidence: NewCoincidenceValidator(net, cfg.SnapTolerance, log),
		flowOrder:   NewFlowOrderValidator(net, cfg.SnapTolerance, log),
		extractor:   NewHydrolineExtractor(net, log),
		hydrolines:  hydrolines,
		log:         log,
	}
}

// Process runs the pipeline for one reach id and returns its terminal
// state. The error return is reserved for fatal conditions (network or
// sink unavailable); every reach-scoped failure is classified on the
// returned Reach instead.
func (p *ReachProcessor) Process(ctx context.Context, reachID string) (reach *Reach, err error) {
	reach = &Reach{ID: reachID, State: StateUnvalidated}

	// A single misbehaving reach must not take down the batch.
	defer func() {
		if r := recover(); r != nil {
			p.log.Warn("reach processing panicked",
				logging.ReachID(reachID), logging.Any("panic", r))
			reach.State = StateInvalid
			reach.Reason = ReasonUnclassifiedException
			reach.Detail = fmt.Sprintf("%v", r)
			err = nil
		}
	}()

	manual, err := p.hydrolines.ManuallyDigitized(ctx, reachID)
	if err != nil {
		return reach, NewError("Process").Reach(reachID).Cause(err).Err()
	}
	if manual {
		// Hand-drawn hydrolines are authoritative; leave the existing
		// record untouched.
		reach.ManuallyDigitized = true
		p.log.Info("skipping manually digitized reach", logging.ReachID(reachID))
		return reach, nil
	}

	access, err := p.resolver.Resolve(ctx, reachID)
	if err != nil {
		if errors.Is(err, ErrDuplicateAccess) {
			return p.fail(reach, ValidationResult{
				Reason: ReasonDuplicateAccessPair,
				Detail: err.Error(),
			}), nil
		}
		return reach, err
	}

	reach.PutIn = access.PutIn
	reach.TakeOut = access.TakeOut
	reach.Intermediates = access.Intermediates

	if !access.HasPair() {
		return p.fail(reach, ValidationResult{
			Reason: ReasonMissingAccessPair,
			Detail: "reach does not have both a put-in and take-out",
		}), nil
	}
	reach.State = StateHasAccessPair

	result, err := p.coincidence.Validate(ctx, reach.PutIn, reach.TakeOut)
	if err != nil {
		return p.stageError(reach, err)
	}
	if !result.Valid {
		return p.fail(reach, result), nil
	}
	reach.State = StateCoincident

	upstream, result, err := p.flowOrder.Validate(ctx, reach.PutIn, reach.TakeOut)
	if err != nil {
		return p.stageError(reach, err)
	}
	if !result.Valid {
		return p.fail(reach, result), nil
	}
	reach.State = StateFlowOrdered

	hydroline, result, err := p.extractor.Extract(ctx, reach.PutIn, reach.TakeOut, upstream)
	if err != nil {
		return p.stageError(reach, err)
	}
	if !result.Valid {
		return p.fail(reach, result), nil
	}

	reach.Hydroline = hydroline
	reach.State = StateExtracted
	p.log.Info("reach is valid", logging.ReachID(reachID),
		logging.Int("parts", len(hydroline)))
	return reach, nil
}

func (p *ReachProcessor) fail(reach *Reach, result ValidationResult) *Reach {
	reach.State = StateInvalid
	reach.Reason = result.Reason
	reach.Detail = result.Detail
	p.log.Info("reach is invalid",
		logging.ReachID(reach.ID),
		logging.Reason(string(result.Reason)),
		logging.String("detail", result.Detail))
	return reach
}

// stageError routes a stage error: fatal errors propagate and abort the
// batch, anything else is recorded against the reach.
func (p *ReachProcessor) stageError(reach *Reach, err error) (*Reach, error) {
	if IsFatal(err) {
		return reach, err
	}
	return p.fail(reach, ValidationResult{
		Reason: ReasonUnclassifiedException,
		Detail: err.Error(),
	}), nil
}
