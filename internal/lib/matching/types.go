package matching

import (
	"errors"

	"github.com/openroads/corridor/internal/lib/chain"
	"github.com/openroads/corridor/internal/lib/geo"
)

// MatchSource records how a matched geometry was produced.
type MatchSource string

const (
	SourceMatched  MatchSource = "matched"
	SourceFallback MatchSource = "straight_line_fallback"
)

// Internal match failures. Both are always recovered locally to the
// straight-line fallback; they exist so the recovery can be logged and
// counted by cause.
var (
	ErrNoCorridor    = errors.New("no corridor resolvable for event")
	ErrMatchRejected = errors.New("matched path failed ratio validation")
)

// Event is an externally supplied two-point event geometry. Read-only to the
// engine.
type Event struct {
	ID         string          `json:"event_id"`
	CorridorID string          `json:"corridor_id,omitempty"`
	RouteRef   string          `json:"route_ref,omitempty"`
	Direction  chain.Direction `json:"direction,omitempty"`
	Start      geo.Point       `json:"start"`
	End        geo.Point       `json:"end"`
}

// MatchedGeometry is the engine's output for one event: the corridor
// sub-path replacing the event's straight-line approximation, plus the
// provenance used by data-quality dashboards.
type MatchedGeometry struct {
	EventID                  string      `json:"event_id"`
	Points                   []geo.Point `json:"points"`
	Source                   MatchSource `json:"source"`
	PathLengthMeters         float64     `json:"path_length_meters"`
	StraightLineLengthMeters float64     `json:"straight_line_length_meters"`
	Ratio                    float64     `json:"ratio"`
}

// StraightLine builds the two-point fallback geometry for an event. Used
// directly when no corridor can be resolved at all.
func StraightLine(ev Event) MatchedGeometry {
	straight := geo.Haversine(ev.Start, ev.End)
	return MatchedGeometry{
		EventID:                  ev.ID,
		Points:                   []geo.Point{ev.Start, ev.End},
		Source:                   SourceFallback,
		PathLengthMeters:         straight,
		StraightLineLengthMeters: straight,
		Ratio:                    1,
	}
}

// Config carries the tuned matcher constants. The production values are
// observed, not derived; treat them as configuration and validate against a
// corpus of known-good matches before changing them.
type Config struct {
	// WindowMultiple bounds the end-point search to this multiple of the
	// event's straight-line extent.
	WindowMultiple float64
	// RejectRatio is the path-to-straight-line ratio above which a match is
	// discarded as implausible.
	RejectRatio float64
	// MaxSnapMeters is how far an event endpoint may sit from the corridor
	// before the match is abandoned.
	MaxSnapMeters float64
}

// DefaultConfig returns the production matcher constants.
func DefaultConfig() Config {
	return Config{
		WindowMultiple: 3.0,
		RejectRatio:    2.0,
		MaxSnapMeters:  500.0,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.WindowMultiple <= 0 {
		c.WindowMultiple = d.WindowMultiple
	}
	if c.RejectRatio <= 0 {
		c.RejectRatio = d.RejectRatio
	}
	if c.MaxSnapMeters <= 0 {
		c.MaxSnapMeters = d.MaxSnapMeters
	}
	return c
}
