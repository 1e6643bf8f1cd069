// Package osmways ingests crowd-sourced way geometry from OpenStreetMap
// extracts. Ways tagged with the requested route ref become RawSegments.
package osmways

import (
	"context"
	"encoding/xml"
	"fmt"
	"os"
	"strings"

	"github.com/paulmach/osm"
	"github.com/rs/zerolog"

	"github.com/openroads/corridor/internal/lib/chain"
	"github.com/openroads/corridor/internal/lib/geo"
)

// highwayClasses lists the way classes that can carry a numbered corridor.
// Local roads never do, so everything below trunk/primary is skipped.
var highwayClasses = map[string]bool{
	"motorway":      true,
	"motorway_link": true,
	"trunk":         true,
	"trunk_link":    true,
	"primary":       true,
}

// Extractor converts OSM extracts into raw segments for one route.
type Extractor struct {
	path     string
	sourceID string
	log      zerolog.Logger
}

// NewExtractor creates an extractor over an OSM XML extract on disk.
func NewExtractor(path, sourceID string, log zerolog.Logger) *Extractor {
	return &Extractor{path: path, sourceID: sourceID, log: log}
}

// Name identifies the adapter in source summaries.
func (e *Extractor) Name() string { return e.sourceID }

// Segments loads the extract and returns the raw segments for one route.
func (e *Extractor) Segments(ctx context.Context, routeRef string) ([]chain.RawSegment, error) {
	data, err := os.ReadFile(e.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read OSM extract: %w", err)
	}

	var o osm.OSM
	if err := xml.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("failed to parse OSM extract: %w", err)
	}

	segs := e.FromOSM(&o, routeRef)
	e.log.Debug().
		Str("route_ref", routeRef).
		Str("source", e.sourceID).
		Int("segments", len(segs)).
		Msg("extracted OSM ways")
	return segs, ctx.Err()
}

// FromOSM extracts the raw segments for one route from in-memory OSM data.
func (e *Extractor) FromOSM(o *osm.OSM, routeRef string) []chain.RawSegment {
	nodeLoc := make(map[osm.NodeID]geo.Point, len(o.Nodes))
	for _, n := range o.Nodes {
		nodeLoc[n.ID] = geo.Point{Lat: n.Lat, Lon: n.Lon}
	}

	var segs []chain.RawSegment
	for _, w := range o.Ways {
		if !highwayClasses[w.Tags.Find("highway")] {
			continue
		}
		if !refMatches(w.Tags.Find("ref"), routeRef) {
			continue
		}

		pts := make([]geo.Point, 0, len(w.Nodes))
		for _, wn := range w.Nodes {
			// Prefer embedded locations; fall back to the node table.
			p := geo.Point{Lat: wn.Lat, Lon: wn.Lon}
			if p.Lat == 0 && p.Lon == 0 {
				loc, ok := nodeLoc[wn.ID]
				if !ok {
					continue
				}
				p = loc
			}
			pts = append(pts, p)
		}
		if len(pts) < 2 {
			continue
		}

		segs = append(segs, chain.RawSegment{
			RouteRef: routeRef,
			Points:   pts,
			SourceID: e.sourceID,
		})
	}
	return segs
}

// refMatches checks a way's ref tag against the requested route. OSM refs are
// semicolon-separated where routes are concurrent ("I 80;US 30").
func refMatches(refTag, routeRef string) bool {
	for _, ref := range strings.Split(refTag, ";") {
		if chain.SameRoute(ref, routeRef) {
			return true
		}
	}
	return false
}
