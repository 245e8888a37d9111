package hydro

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/riversys/hydroline/pkg/geom"
)

// AccessRecord is a raw access-dataset row before role resolution.
type AccessRecord struct {
	ReachID    string `validate:"required"`
	Role       string `validate:"required"`
	Geometry   geom.Point
	Provenance string
}

// AccessSource is the access dataset consumed by the resolver and the batch
// runner. It is owned by the caller and treated as immutable for a run.
type AccessSource interface {
	// ReachIDs returns the distinct reach ids referenced by access records,
	// excluding null/zero sentinel values.
	ReachIDs(ctx context.Context) ([]string, error)

	// Records returns the access records for one reach id.
	Records(ctx context.Context, reachID string) ([]AccessRecord, error)
}

// AccessSet is the per-role resolution of a reach's access records. Absent
// entries are valid and mean "no such access".
type AccessSet struct {
	PutIn         *AccessPoint
	TakeOut       *AccessPoint
	Intermediates []AccessPoint
}

// HasPair reports whether both a put-in and a take-out were resolved.
func (s AccessSet) HasPair() bool {
	return s.PutIn != nil && s.TakeOut != nil
}

// AccessPointResolver extracts put-in/take-out/intermediate geometries for a
// reach id from the access dataset.
type AccessPointResolver struct {
	source   AccessSource
	validate *validator.Validate
}

// NewAccessPointResolver creates a resolver over the given source.
func NewAccessPointResolver(source AccessSource) *AccessPointResolver {
	return &AccessPointResolver{
		source:   source,
		validate: validator.New(),
	}
}

// Resolve returns up to one access point per role for the reach.
// Records with unrecognized role values are ignored. A second put-in or
// take-out is a data error and returns ErrDuplicateAccess. Records failing
// field validation are skipped.
func (r *AccessPointResolver) Resolve(ctx context.Context, reachID string) (AccessSet, error) {
	records, err := r.source.Records(ctx, reachID)
	if err != nil {
		return AccessSet{}, NewError("Resolve").Reach(reachID).Cause(err).Err()
	}

	var set AccessSet
	for _, rec := range records {
		if err := r.validate.Struct(rec); err != nil {
			continue
		}
		role, ok := ParseRole(rec.Role)
		if !ok {
			continue
		}

		point := AccessPoint{
			ReachID:    rec.ReachID,
			Role:       role,
			Geometry:   rec.Geometry,
			Provenance: rec.Provenance,
		}

		switch role {
		case RolePutIn:
			if set.PutIn != nil {
				return AccessSet{}, NewError("Resolve").Reach(reachID).
					Reason(ReasonDuplicateAccessPair).
					Cause(fmt.Errorf("%w: putin", ErrDuplicateAccess)).Err()
			}
			set.PutIn = &point
		case RoleTakeOut:
			if set.TakeOut != nil {
				return AccessSet{}, NewError("Resolve").Reach(reachID).
					Reason(ReasonDuplicateAccessPair).
					Cause(fmt.Errorf("%w: takeout", ErrDuplicateAccess)).Err()
			}
			set.TakeOut = &point
		case RoleIntermediate:
			set.Intermediates = append(set.Intermediates, point)
		}
	}

	return set, nil
}
