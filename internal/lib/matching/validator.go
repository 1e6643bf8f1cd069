package matching

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/openroads/corridor/internal/lib/geo"
)

// ReferenceRouter is the external collaborator that returns an independent
// driving path between two coordinates. Consumed only by the alignment
// validator; the engine itself performs no network I/O.
type ReferenceRouter interface {
	Route(ctx context.Context, from, to geo.Point) ([]geo.Point, error)
}

// AlignmentReport scores a matched path against an independent reference
// path. Advisory only: it never overrides a match, it flags candidates for
// manual review of a source's geometric fidelity.
type AlignmentReport struct {
	EventID          string  `json:"event_id"`
	MeanOffsetMeters float64 `json:"mean_offset_meters"`
	MaxOffsetMeters  float64 `json:"max_offset_meters"`
	SampleCount      int     `json:"sample_count"`
	WellAligned      bool    `json:"well_aligned"`
}

// DefaultAlignmentOffsetMeters is the mean offset below which a matched path
// counts as well-aligned with the reference path.
const DefaultAlignmentOffsetMeters = 50.0

// DefaultValidatorTimeout bounds the reference-routing call so validation
// never blocks a primary match result for long.
const DefaultValidatorTimeout = 5 * time.Second

// Validator cross-checks matched sub-paths against a reference-routing
// collaborator.
type Validator struct {
	OffsetThresholdMeters float64
	Timeout               time.Duration

	router ReferenceRouter
	log    zerolog.Logger
}

// NewValidator creates a Validator. Zero threshold and timeout select the
// defaults.
func NewValidator(router ReferenceRouter, offsetThresholdMeters float64, timeout time.Duration, log zerolog.Logger) *Validator {
	if offsetThresholdMeters <= 0 {
		offsetThresholdMeters = DefaultAlignmentOffsetMeters
	}
	if timeout <= 0 {
		timeout = DefaultValidatorTimeout
	}
	return &Validator{
		OffsetThresholdMeters: offsetThresholdMeters,
		Timeout:               timeout,
		router:                router,
		log:                   log,
	}
}

// Validate samples each point of the matched path against the reference path
// and reports the mean and maximum offsets.
func (v *Validator) Validate(ctx context.Context, mg MatchedGeometry) (AlignmentReport, error) {
	rep := AlignmentReport{EventID: mg.EventID}
	if len(mg.Points) < 2 {
		return rep, errors.New("matched geometry has fewer than 2 points")
	}

	ctx, cancel := context.WithTimeout(ctx, v.Timeout)
	defer cancel()

	ref, err := v.router.Route(ctx, mg.Points[0], mg.Points[len(mg.Points)-1])
	if err != nil {
		return rep, err
	}
	if len(ref) < 2 {
		return rep, errors.New("reference path has fewer than 2 points")
	}

	total := 0.0
	for _, p := range mg.Points {
		offset := geo.PointToPath(p, ref)
		total += offset
		if offset > rep.MaxOffsetMeters {
			rep.MaxOffsetMeters = offset
		}
		rep.SampleCount++
	}

	rep.MeanOffsetMeters = total / float64(rep.SampleCount)
	rep.WellAligned = rep.MeanOffsetMeters <= v.OffsetThresholdMeters

	if !rep.WellAligned {
		v.log.Info().
			Str("event", mg.EventID).
			Float64("mean_offset_meters", rep.MeanOffsetMeters).
			Float64("max_offset_meters", rep.MaxOffsetMeters).
			Msg("matched path poorly aligned with reference path")
	}
	return rep, nil
}
