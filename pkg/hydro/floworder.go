package hydro

import (
	"context"

	"github.com/riversys/hydroline/pkg/logging"
)

// FlowOrderValidator confirms the put-in is upstream of the take-out by
// tracing the network against flow direction from the take-out and testing
// whether the put-in lies on the traced subgraph.
type FlowOrderValidator struct {
	net       Network
	tolerance float64
	log       logging.Logger
}

// NewFlowOrderValidator creates a validator. The tolerance is used only for
// the point-on-edge membership test; the accesses have already been snapped
// onto the network by the coincidence stage.
func NewFlowOrderValidator(net Network, tolerance float64, log logging.Logger) *FlowOrderValidator {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &FlowOrderValidator{net: net, tolerance: tolerance, log: log}
}

// Validate traces upstream from the take-out and tests the put-in against
// the traced edge set. The returned EdgeSet is valid whenever err is nil;
// it is a pure function of the network and the take-out location, so the
// caller retains it for braided-channel disambiguation during extraction
// instead of re-tracing.
func (v *FlowOrderValidator) Validate(ctx context.Context, putIn, takeOut *AccessPoint) (EdgeSet, ValidationResult, error) {
	timer := logging.StartTimer(v.log, "upstream trace",
		logging.ReachID(takeOut.ReachID), logging.Operation("TraceUpstream"))

	upstream, err := v.net.TraceUpstream(ctx, takeOut.Geometry)
	if err != nil {
		timer.EndError(err)
		return nil, ValidationResult{}, NewError("FlowOrder").Reach(takeOut.ReachID).Cause(err).Err()
	}
	timer.End()

	if !upstream.ContainsPoint(putIn.Geometry, v.tolerance) {
		return upstream, ValidationResult{
			Reason: ReasonNotUpstreamOfTakeout,
			Detail: "put-in is not upstream from take-out",
		}, nil
	}

	return upstream, ValidationResult{Valid: true}, nil
}
