package corridor

import (
	"fmt"
	"time"

	"github.com/openroads/corridor/internal/lib/chain"
	"github.com/openroads/corridor/internal/lib/geo"
)

// Gap is a recorded discontinuity between two concatenated chains, left
// unresolved rather than silently smoothed. Large gaps usually mark
// administrative boundaries; callers may treat them as data-quality defects.
type Gap struct {
	Location   geo.Point `json:"location"`
	Meters     float64   `json:"gap_meters"`
	AfterIndex int       `json:"after_index"`
	FullRoute  bool      `json:"full_route,omitempty"`
}

// Corridor is the canonical reconciled polyline for one numbered route in one
// direction. Rebuilt wholesale on each ingestion; treated as an immutable
// snapshot once published.
type Corridor struct {
	ID            string          `json:"id"`
	RouteRef      string          `json:"route_ref"`
	Direction     chain.Direction `json:"direction"`
	Points        []geo.Point     `json:"points"`
	LengthMeters  float64         `json:"length_meters"`
	Gaps          []Gap           `json:"gaps"`
	SourceSummary []string        `json:"source_summary"`
	RebuiltAt     time.Time       `json:"rebuilt_at"`
}

// CorridorID composes the canonical identifier for a route + direction,
// e.g. "I-80 WB".
func CorridorID(routeRef string, dir chain.Direction) string {
	return fmt.Sprintf("%s %s", routeRef, dir)
}
