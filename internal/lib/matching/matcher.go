package matching

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/openroads/corridor/internal/lib/corridor"
	"github.com/openroads/corridor/internal/lib/geo"
)

// Matcher snaps two-point event geometries onto the true curved path of a
// corridor. Matching is read-only against a published corridor snapshot and
// safe for unlimited concurrent callers.
type Matcher struct {
	cfg Config
	log zerolog.Logger

	mu      sync.RWMutex
	indexes map[string]*corridorIndex
}

// corridorIndex pairs a vertex index with the snapshot it was built from, so
// a rebuilt corridor never serves a stale index.
type corridorIndex struct {
	rebuiltAt time.Time
	idx       *pointIndex
}

// NewMatcher creates a Matcher. Zero config fields select the production
// defaults.
func NewMatcher(cfg Config, log zerolog.Logger) *Matcher {
	return &Matcher{
		cfg:     cfg.withDefaults(),
		log:     log,
		indexes: make(map[string]*corridorIndex),
	}
}

// Invalidate drops the cached vertex index for a corridor. Called when the
// corridor is rebuilt.
func (m *Matcher) Invalidate(corridorID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.indexes, corridorID)
}

// indexFor returns the vertex index for a corridor snapshot, building and
// caching it on first use.
func (m *Matcher) indexFor(c *corridor.Corridor) *pointIndex {
	m.mu.RLock()
	ci, ok := m.indexes[c.ID]
	m.mu.RUnlock()
	if ok && ci.rebuiltAt.Equal(c.RebuiltAt) {
		return ci.idx
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if ci, ok := m.indexes[c.ID]; ok && ci.rebuiltAt.Equal(c.RebuiltAt) {
		return ci.idx
	}
	built := newPointIndex(c.Points)
	m.indexes[c.ID] = &corridorIndex{rebuiltAt: c.RebuiltAt, idx: built}
	return built
}

// Match extracts the corridor sub-path between the event's endpoints and
// validates it. Every failure mode recovers deterministically to the
// straight-line fallback; Match never returns an error.
func (m *Matcher) Match(ctx context.Context, c *corridor.Corridor, ev Event) MatchedGeometry {
	straight := geo.Haversine(ev.Start, ev.End)

	// Degenerate event: identical endpoints short-circuit to a trivial
	// two-point result.
	if ev.Start == ev.End {
		return m.fallback(ev, "degenerate_event")
	}
	if c == nil || len(c.Points) < 2 {
		m.log.Debug().Str("event", ev.ID).Msg("no usable corridor for event")
		return m.fallback(ev, "no_corridor")
	}

	idx := m.indexFor(c)

	// Unconstrained global nearest-vertex search for the start.
	startIdx, startDist := idx.nearest(ev.Start)
	if startIdx < 0 || startDist > m.cfg.MaxSnapMeters {
		m.log.Debug().
			Str("event", ev.ID).
			Str("corridor", c.ID).
			Float64("snap_meters", startDist).
			Msg("event start too far from corridor")
		return m.fallback(ev, "start_off_corridor")
	}

	// The end search is bounded to a window proportional to the event's
	// reported extent: an unconstrained second search can land on a distant,
	// near-parallel stretch of the same corridor and produce an absurd path.
	window := m.cfg.WindowMultiple * straight
	endIdx, endDist := scanWindow(c.Points, startIdx, +1, window, ev.End)
	if endIdx < 0 || endDist > m.cfg.MaxSnapMeters {
		endIdx, endDist = scanWindow(c.Points, startIdx, -1, window, ev.End)
	}
	if endIdx < 0 || endDist > m.cfg.MaxSnapMeters || endIdx == startIdx {
		m.log.Debug().
			Str("event", ev.ID).
			Str("corridor", c.ID).
			Msg("no qualifying end point within search window")
		return m.fallback(ev, "end_not_found")
	}

	path := subPath(c.Points, startIdx, endIdx)
	pathLen := geo.PathLength(path)
	ratio := pathLen / straight

	if ratio > m.cfg.RejectRatio {
		m.log.Info().
			Str("event", ev.ID).
			Str("corridor", c.ID).
			Float64("ratio", ratio).
			Float64("reject_ratio", m.cfg.RejectRatio).
			Msg("match rejected by ratio validation")
		return m.fallback(ev, "ratio_rejected")
	}

	return MatchedGeometry{
		EventID:                  ev.ID,
		Points:                   path,
		Source:                   SourceMatched,
		PathLengthMeters:         pathLen,
		StraightLineLengthMeters: straight,
		Ratio:                    ratio,
	}
}

// fallback produces the two-point straight-line result.
func (m *Matcher) fallback(ev Event, reason string) MatchedGeometry {
	m.log.Debug().Str("event", ev.ID).Str("reason", reason).Msg("straight-line fallback")
	return StraightLine(ev)
}

// scanWindow walks the corridor from start in the given direction, limited to
// the along-path window in meters, and returns the vertex closest to target
// within that window. Returns -1 if the walk cannot move at all.
func scanWindow(pts []geo.Point, start, dir int, windowMeters float64, target geo.Point) (int, float64) {
	best := -1
	bestDist := 0.0
	traveled := 0.0

	for i := start; i >= 0 && i < len(pts); i += dir {
		if i != start {
			traveled += geo.Haversine(pts[i-dir], pts[i])
			if traveled > windowMeters {
				break
			}
		}
		d := geo.Haversine(target, pts[i])
		if best < 0 || d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best, bestDist
}

// subPath copies the inclusive vertex range between the two indices, ordered
// from start to end.
func subPath(pts []geo.Point, start, end int) []geo.Point {
	if start <= end {
		out := make([]geo.Point, end-start+1)
		copy(out, pts[start:end+1])
		return out
	}
	out := make([]geo.Point, 0, start-end+1)
	for i := start; i >= end; i-- {
		out = append(out, pts[i])
	}
	return out
}
