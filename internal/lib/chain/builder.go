package chain

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/openroads/corridor/internal/lib/geo"
)

// DefaultMergeToleranceDeg is the endpoint junction tolerance used when two
// chains are considered continuations of each other. Expressed in degrees;
// roughly half a kilometer at mid latitudes.
const DefaultMergeToleranceDeg = 0.005

// Builder merges disconnected raw geometry fragments into maximal continuous
// chains. The output is a set of chains such that no two could be merged
// further under the tolerance.
type Builder struct {
	MergeToleranceDeg float64

	log zerolog.Logger
}

// NewBuilder returns a Builder with the given junction tolerance in degrees.
// A zero tolerance selects the default.
func NewBuilder(mergeToleranceDeg float64, log zerolog.Logger) *Builder {
	if mergeToleranceDeg <= 0 {
		mergeToleranceDeg = DefaultMergeToleranceDeg
	}
	return &Builder{MergeToleranceDeg: mergeToleranceDeg, log: log}
}

// junction describes the best way to join two chains: which pair of endpoints
// meet and which side has to be reversed to make the sequences line up.
type junction struct {
	i, j     int
	dist     float64
	reverseA bool
	reverseB bool
	swap     bool // concatenate j before i
}

// Build merges the given segments into maximal chains. Each pass joins the
// globally closest qualifying pair, which keeps the result deterministic for
// a given input set regardless of input order (up to global reversal).
// Worst case O(n³) for n fragments; n per route is in the low hundreds.
func (b *Builder) Build(segs []RawSegment) []Chain {
	chains := make([]Chain, 0, len(segs))
	for _, seg := range segs {
		pts := geo.DedupeConsecutive(seg.Points)
		if len(pts) < 2 || geo.PathLength(pts) == 0 {
			b.log.Warn().
				Str("source", seg.SourceID).
				Str("route_ref", seg.RouteRef).
				Int("points", len(seg.Points)).
				Msg("dropping degenerate segment")
			continue
		}
		chains = append(chains, Chain{
			Points:  pts,
			Sources: []string{seg.SourceID},
			Hint:    seg.MeasureHint(),
		})
	}

	for len(chains) > 1 {
		best, ok := b.closestPair(chains)
		if !ok {
			break
		}
		merged := join(chains[best.i], chains[best.j], best)

		// Remove the higher index first so the lower stays valid.
		chains = append(chains[:best.j], chains[best.j+1:]...)
		chains = append(chains[:best.i], chains[best.i+1:]...)
		chains = append(chains, merged)
	}

	return chains
}

// closestPair scans all unordered chain pairs and returns the junction with
// the smallest endpoint distance, if any is within tolerance.
func (b *Builder) closestPair(chains []Chain) (junction, bool) {
	best := junction{dist: math.Inf(1)}
	for i := 0; i < len(chains); i++ {
		for j := i + 1; j < len(chains); j++ {
			aStart := chains[i].Points[0]
			aEnd := chains[i].Points[len(chains[i].Points)-1]
			bStart := chains[j].Points[0]
			bEnd := chains[j].Points[len(chains[j].Points)-1]

			// Four possible orientations for joining A and B.
			candidates := []junction{
				{i: i, j: j, dist: geo.DegreeDistance(aEnd, bStart)},
				{i: i, j: j, dist: geo.DegreeDistance(aEnd, bEnd), reverseB: true},
				{i: i, j: j, dist: geo.DegreeDistance(aStart, bStart), reverseA: true},
				{i: i, j: j, dist: geo.DegreeDistance(aStart, bEnd), swap: true},
			}
			for _, c := range candidates {
				if c.dist < best.dist {
					best = c
				}
			}
		}
	}
	if best.dist > b.MergeToleranceDeg {
		return junction{}, false
	}
	return best, true
}

// join concatenates two chains using the junction's orientation, skipping the
// duplicated shared coordinate when the endpoints coincide exactly.
func join(a, b Chain, jn junction) Chain {
	if jn.reverseA {
		a = a.Reversed()
	}
	if jn.reverseB {
		b = b.Reversed()
	}
	if jn.swap {
		a, b = b, a
	}

	head := a.Points
	tail := b.Points
	if last := head[len(head)-1]; last == tail[0] {
		tail = tail[1:]
	}

	pts := make([]geo.Point, 0, len(head)+len(tail))
	pts = append(pts, head...)
	pts = append(pts, tail...)

	return Chain{
		Points:  pts,
		Sources: mergeSources(a.Sources, b.Sources),
		Hint:    combineHints(a.Hint, b.Hint),
	}
}

// combineHints keeps a known travel-order indicator when the merged halves
// agree; conflicting indicators cancel out.
func combineHints(a, b MeasureHint) MeasureHint {
	switch {
	case a == MeasureUnknown:
		return b
	case b == MeasureUnknown:
		return a
	case a == b:
		return a
	default:
		return MeasureUnknown
	}
}
