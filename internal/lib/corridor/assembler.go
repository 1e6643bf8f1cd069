package corridor

import (
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/openroads/corridor/internal/lib/chain"
	"github.com/openroads/corridor/internal/lib/geo"
)

// DefaultBridgeToleranceMeters is the looser junction tolerance used during
// assembly. Junctions wider than the chain-merge tolerance but narrower than
// this are stitched silently; anything wider is stitched with a recorded gap.
const DefaultBridgeToleranceMeters = 2_000.0

// reversalFactor times the corridor's median point spacing is the
// consecutive-jump size that trips the internal-reversal post-condition.
const reversalFactor = 20.0

// Assembler orders and concatenates the chains of one corridor+direction
// into a single canonical polyline, surfacing unresolved gaps.
type Assembler struct {
	BridgeToleranceMeters float64

	log zerolog.Logger
}

// NewAssembler returns an Assembler with the given bridging tolerance in
// meters. A zero tolerance selects the default.
func NewAssembler(bridgeToleranceMeters float64, log zerolog.Logger) *Assembler {
	if bridgeToleranceMeters <= 0 {
		bridgeToleranceMeters = DefaultBridgeToleranceMeters
	}
	return &Assembler{BridgeToleranceMeters: bridgeToleranceMeters, log: log}
}

// Assemble produces the canonical Corridor for a route+direction from its
// classified chains. Deterministic and idempotent for a given chain set; an
// empty set yields an empty corridor carrying a full-route gap.
func (a *Assembler) Assemble(routeRef string, dir chain.Direction, chains []chain.Chain) Corridor {
	c := Corridor{
		ID:        CorridorID(routeRef, dir),
		RouteRef:  routeRef,
		Direction: dir,
		RebuiltAt: time.Now().UTC(),
	}

	if len(chains) == 0 {
		c.Gaps = []Gap{{FullRoute: true, AfterIndex: -1}}
		a.log.Warn().Str("corridor", c.ID).Msg("no usable geometry; publishing empty corridor")
		return c
	}

	ordered := orderAlongAxis(chains, dir)

	sources := map[string]struct{}{}
	var pts []geo.Point
	var gaps []Gap

	for _, ch := range ordered {
		for _, s := range ch.Sources {
			sources[s] = struct{}{}
		}
		if len(pts) > 0 {
			last := pts[len(pts)-1]
			jump := geo.Haversine(last, ch.Points[0])
			if jump > a.BridgeToleranceMeters {
				gaps = append(gaps, Gap{
					Location:   last,
					Meters:     jump,
					AfterIndex: len(pts) - 1,
				})
			}
		}
		// Consecutive duplicates are dropped as we go so gap indices stay
		// valid against the final sequence.
		for _, p := range ch.Points {
			if len(pts) > 0 && pts[len(pts)-1] == p {
				continue
			}
			pts = append(pts, p)
		}
	}

	c.Points = pts
	c.Gaps = gaps
	c.LengthMeters = geo.PathLength(c.Points)
	for s := range sources {
		c.SourceSummary = append(c.SourceSummary, s)
	}
	sort.Strings(c.SourceSummary)

	a.checkReversals(c)
	return c
}

// orderAlongAxis sorts chains along the geographic projection axis
// appropriate to the corridor's orientation: mean longitude for east-west
// corridors, mean latitude for north-south. Westbound and southbound
// corridors sort descending so the polyline runs in travel direction.
func orderAlongAxis(chains []chain.Chain, dir chain.Direction) []chain.Chain {
	out := append([]chain.Chain(nil), chains...)

	key := func(ch chain.Chain) float64 {
		sum := 0.0
		for _, p := range ch.Points {
			if dir == chain.Eastbound || dir == chain.Westbound {
				sum += p.Lon
			} else {
				sum += p.Lat
			}
		}
		return sum / float64(len(ch.Points))
	}

	ascending := dir == chain.Eastbound || dir == chain.Northbound
	sort.SliceStable(out, func(i, j int) bool {
		if ascending {
			return key(out[i]) < key(out[j])
		}
		return key(out[i]) > key(out[j])
	})
	return out
}

// checkReversals verifies the corridor invariant: consecutive points must not
// imply travel jumps far beyond the local point density except at recorded
// gaps. Violations are logged, not raised; upstream geometry is messy.
func (a *Assembler) checkReversals(c Corridor) {
	if len(c.Points) < 3 {
		return
	}
	median := geo.MedianSpacing(c.Points)
	threshold := median * reversalFactor
	if threshold < a.BridgeToleranceMeters {
		threshold = a.BridgeToleranceMeters
	}

	gapAt := make(map[int]bool, len(c.Gaps))
	for _, g := range c.Gaps {
		gapAt[g.AfterIndex] = true
	}

	for i := 0; i+1 < len(c.Points); i++ {
		if gapAt[i] {
			continue
		}
		if jump := geo.Haversine(c.Points[i], c.Points[i+1]); jump > threshold {
			a.log.Warn().
				Str("corridor", c.ID).
				Int("index", i).
				Float64("jump_meters", jump).
				Float64("threshold_meters", threshold).
				Msg("corridor invariant violation: unrecorded jump between consecutive points")
		}
	}
}
