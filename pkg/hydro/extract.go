package hydro

import (
	"context"
	"fmt"

	"github.com/riversys/hydroline/pkg/geom"
	"github.com/riversys/hydroline/pkg/logging"
)

// HydrolineExtractor computes the minimal centerline polyline representing
// a reach, trimmed exactly to the put-in and take-out locations.
type HydrolineExtractor struct {
	net Network
	log logging.Logger
}

// NewHydrolineExtractor creates an extractor over the network engine.
func NewHydrolineExtractor(net Network, log logging.Logger) *HydrolineExtractor {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &HydrolineExtractor{net: net, log: log}
}

// Extract produces the reach's hydroline:
//
//  1. path-trace the edges connecting put-in and take-out (the raw set may
//     include braided branches joining the same pair via another channel)
//  2. intersect with the upstream trace retained from flow-order
//     validation, discarding braids that are not on the true channel
//  3. dissolve the surviving edges into connected line parts
//  4. split at the put-in, then at the take-out
//  5. trim the dangling parts outside the two accesses
//
// Reach-scoped failures come back as a non-valid ValidationResult; the
// error return is reserved for fatal network unavailability.
func (x *HydrolineExtractor) Extract(ctx context.Context, putIn, takeOut *AccessPoint, upstream EdgeSet) ([]geom.Polyline, ValidationResult, error) {
	path, err := x.net.TracePath(ctx, putIn.Geometry, takeOut.Geometry, TraceFindPath)
	if err != nil {
		if IsFatal(err) {
			return nil, ValidationResult{}, NewError("Extract").Reach(putIn.ReachID).Cause(err).Err()
		}
		return nil, engineFailure(err), nil
	}
	if len(path) == 0 {
		return nil, ValidationResult{
			Reason: ReasonExtractionNoPath,
			Detail: "path trace returned no edges connecting put-in and take-out",
		}, nil
	}

	// Braided-channel disambiguation: only edges also reachable upstream
	// from the take-out are truly on the put-in -> take-out channel.
	channel := path.Intersect(upstream)
	if len(channel) == 0 {
		return nil, ValidationResult{
			Reason: ReasonExtractionNoPath,
			Detail: "no path edges remain after braided-channel filtering",
		}, nil
	}

	x.log.Debug("path trace complete",
		logging.ReachID(putIn.ReachID),
		logging.EdgeCount(len(path)),
		logging.Int("channel_edges", len(channel)))

	hydroline, result := x.assemble(channel, putIn.Geometry, takeOut.Geometry)
	return hydroline, result, nil
}

// assemble runs the dissolve/split/trim sequence. Engine faults are
// captured as ExtractionEngineError instead of propagating.
func (x *HydrolineExtractor) assemble(channel EdgeSet, putIn, takeOut geom.Point) (hydroline []geom.Polyline, result ValidationResult) {
	defer func() {
		if r := recover(); r != nil {
			hydroline = nil
			result = engineFailure(fmt.Errorf("geometry engine panic: %v", r))
		}
	}()

	parts, err := x.net.Dissolve(channel.Edges())
	if err != nil {
		return nil, engineFailure(err)
	}

	parts, err = x.net.SplitAt(parts, putIn)
	if err != nil {
		return nil, engineFailure(err)
	}
	parts, err = x.net.SplitAt(parts, takeOut)
	if err != nil {
		return nil, engineFailure(err)
	}

	parts, err = x.net.Trim(parts, putIn, takeOut)
	if err != nil {
		return nil, engineFailure(err)
	}

	if geom.TotalLength(parts) == 0 {
		return nil, ValidationResult{
			Reason: ReasonExtractionDegenerate,
			Detail: "trimmed hydroline has zero length",
		}
	}

	return parts, ValidationResult{Valid: true}
}

func engineFailure(err error) ValidationResult {
	return ValidationResult{
		Reason: ReasonExtractionEngineError,
		Detail: err.Error(),
	}
}
