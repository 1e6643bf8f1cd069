package chain

import "github.com/openroads/corridor/internal/lib/geo"

// largeJumpFactor is the multiple of the median inter-point spacing above
// which a consecutive-point distance counts as a residual large jump.
const largeJumpFactor = 10.0

// SequenceReport diagnoses how travel-consistent a resequenced geometry is.
// Residual jumps are reported, not rejected; callers decide whether they are
// acceptable.
type SequenceReport struct {
	PointCount        int     `json:"point_count"`
	RemainingJumps    int     `json:"remaining_jumps"`
	MaxJumpMeters     float64 `json:"max_jump_meters"`
	MedianSpacing     float64 `json:"median_spacing_meters"`
	TotalLengthMeters float64 `json:"total_length_meters"`
}

// Resequence repairs a flat coordinate sequence whose points are not in
// travel order. Greedy nearest-neighbor: start from the first point, then
// repeatedly hop to the nearest unvisited point. Not a minimum-length tour,
// but true highway geometry has no long return-to-start structure once
// roughly localized, so the heuristic holds up. O(n²) for n points.
func Resequence(pts []geo.Point) ([]geo.Point, SequenceReport) {
	if len(pts) < 3 {
		out := append([]geo.Point(nil), pts...)
		return out, reportFor(out)
	}

	remaining := append([]geo.Point(nil), pts...)
	out := make([]geo.Point, 0, len(pts))

	out = append(out, remaining[0])
	remaining = remaining[1:]

	for len(remaining) > 0 {
		cur := out[len(out)-1]
		idx, _ := geo.NearestVertex(cur, remaining)
		out = append(out, remaining[idx])
		remaining = append(remaining[:idx], remaining[idx+1:]...)
	}

	return out, reportFor(out)
}

// reportFor computes the post-condition diagnostics for a sequence.
func reportFor(pts []geo.Point) SequenceReport {
	rep := SequenceReport{PointCount: len(pts)}
	if len(pts) < 2 {
		return rep
	}

	rep.MedianSpacing = geo.MedianSpacing(pts)
	threshold := rep.MedianSpacing * largeJumpFactor

	for i := 0; i+1 < len(pts); i++ {
		d := geo.Haversine(pts[i], pts[i+1])
		rep.TotalLengthMeters += d
		if threshold > 0 && d > threshold {
			rep.RemainingJumps++
			if d > rep.MaxJumpMeters {
				rep.MaxJumpMeters = d
			}
		}
	}
	return rep
}

// Disordered reports whether a geometry looks out of travel order: adjacent
// points implying travel distances far beyond the typical inter-point
// spacing. Used to decide whether an ingested blob needs resequencing.
func Disordered(pts []geo.Point) bool {
	rep := reportFor(pts)
	return rep.RemainingJumps > 0
}
