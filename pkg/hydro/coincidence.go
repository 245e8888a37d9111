package hydro

import (
	"context"

	"github.com/riversys/hydroline/pkg/geom"
	"github.com/riversys/hydroline/pkg/logging"
)

// CoincidenceValidator confirms that a reach's put-in and take-out lie on
// the network within the snap tolerance. Access datasets and the network
// disagree slightly about where the river centerline is, so each point is
// moved onto the nearest edge when within tolerance before the test.
type CoincidenceValidator struct {
	net       Network
	tolerance float64
	log       logging.Logger
}

// NewCoincidenceValidator creates a validator with the caller-supplied snap
// tolerance, expressed in the network's coordinate units.
func NewCoincidenceValidator(net Network, tolerance float64, log logging.Logger) *CoincidenceValidator {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &CoincidenceValidator{net: net, tolerance: tolerance, log: log}
}

// Validate snaps the put-in and take-out onto the nearby network edges and
// verifies both intersect the snapped set. On success the access point
// geometries are updated in place to the snapped locations; later stages
// see the snapped coordinates. Engine failures are returned as errors and
// are fatal when they wrap ErrNetworkUnavailable.
func (v *CoincidenceValidator) Validate(ctx context.Context, putIn, takeOut *AccessPoint) (ValidationResult, error) {
	nearPutIn, err := v.net.EdgesNear(ctx, putIn.Geometry, v.tolerance)
	if err != nil {
		return ValidationResult{}, NewError("Coincidence").Reach(putIn.ReachID).Cause(err).Err()
	}
	nearTakeOut, err := v.net.EdgesNear(ctx, takeOut.Geometry, v.tolerance)
	if err != nil {
		return ValidationResult{}, NewError("Coincidence").Reach(takeOut.ReachID).Cause(err).Err()
	}

	candidates := NewEdgeSet(nearPutIn)
	for _, e := range nearTakeOut {
		candidates[e.ID] = e
	}
	if len(candidates) == 0 {
		return ValidationResult{
			Reason: ReasonNotCoincidentWithNetwork,
			Detail: "no network edges within snap tolerance of either access",
		}, nil
	}

	points := []geom.Point{putIn.Geometry, takeOut.Geometry}
	snapped, ok, err := v.net.Snap(points, candidates.Edges(), v.tolerance)
	if err != nil {
		return ValidationResult{}, NewError("Coincidence").Reach(putIn.ReachID).Cause(err).Err()
	}

	if !ok[0] || !ok[1] {
		detail := "put-in and take-out are not coincident with the network"
		if ok[0] {
			detail = "take-out is not coincident with the network"
		} else if ok[1] {
			detail = "put-in is not coincident with the network"
		}
		return ValidationResult{Reason: ReasonNotCoincidentWithNetwork, Detail: detail}, nil
	}

	// Visible to later stages: trace and extraction run against the
	// snapped locations, not the raw dataset coordinates.
	putIn.Geometry = snapped[0]
	takeOut.Geometry = snapped[1]

	v.log.Debug("accesses coincident with network",
		logging.ReachID(putIn.ReachID),
		logging.EdgeCount(len(candidates)))

	return ValidationResult{Valid: true}, nil
}
