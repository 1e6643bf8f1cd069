// Package kmlfeed ingests road geometry from state-maintained KML route
// exports. Placemark LineStrings become RawSegments; point placemarks and
// elevation components are discarded.
package kmlfeed

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/openroads/corridor/internal/lib/chain"
	"github.com/openroads/corridor/internal/lib/geo"
)

// Client downloads and parses one KML feed.
type Client struct {
	httpClient *http.Client
	url        string
	sourceID   string
	log        zerolog.Logger
}

// NewClient creates a feed client for the given URL. sourceID tags the
// provenance of every segment the feed produces.
func NewClient(url, sourceID string, log zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		url:        url,
		sourceID:   sourceID,
		log:        log,
	}
}

// Name identifies the adapter in source summaries.
func (c *Client) Name() string { return c.sourceID }

// Segments downloads the feed and returns the raw segments for one route.
func (c *Client) Segments(ctx context.Context, routeRef string) ([]chain.RawSegment, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download KML: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error %d downloading KML from %s", resp.StatusCode, c.url)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read KML response: %w", err)
	}

	segs, err := Parse(data, routeRef, c.sourceID)
	if err != nil {
		return nil, err
	}
	c.log.Debug().
		Str("route_ref", routeRef).
		Str("source", c.sourceID).
		Int("segments", len(segs)).
		Msg("parsed KML feed")
	return segs, nil
}

// KML feeds are read with a minimal document model; the go-kml library is
// write-only, so export uses it and ingestion stays on encoding/xml.
type kmlRoot struct {
	XMLName  xml.Name    `xml:"kml"`
	Document kmlDocument `xml:"Document"`
}

type kmlDocument struct {
	Folders    []kmlFolder    `xml:"Folder"`
	Placemarks []kmlPlacemark `xml:"Placemark"`
}

type kmlFolder struct {
	Name       string         `xml:"name"`
	Folders    []kmlFolder    `xml:"Folder"`
	Placemarks []kmlPlacemark `xml:"Placemark"`
}

type kmlPlacemark struct {
	Name          string          `xml:"name"`
	LineStrings   []kmlLineString `xml:"LineString"`
	MultiGeometry *kmlGeometrySet `xml:"MultiGeometry"`
}

type kmlGeometrySet struct {
	LineStrings []kmlLineString `xml:"LineString"`
}

type kmlLineString struct {
	Coordinates string `xml:"coordinates"`
}

// Parse extracts the raw segments for one route from a KML document.
func Parse(data []byte, routeRef, sourceID string) ([]chain.RawSegment, error) {
	var root kmlRoot
	if err := xml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse KML: %w", err)
	}

	var segs []chain.RawSegment
	walk := func(pm kmlPlacemark) {
		if !chain.SameRoute(pm.Name, routeRef) && !strings.Contains(
			chain.NormalizeRouteRef(pm.Name), chain.NormalizeRouteRef(routeRef)) {
			return
		}
		lines := pm.LineStrings
		if pm.MultiGeometry != nil {
			lines = append(lines, pm.MultiGeometry.LineStrings...)
		}
		for _, ls := range lines {
			pts := parseCoordinates(ls.Coordinates)
			if len(pts) < 2 {
				continue
			}
			segs = append(segs, chain.RawSegment{
				RouteRef: routeRef,
				Points:   pts,
				SourceID: sourceID,
			})
		}
	}

	var visit func(folders []kmlFolder, placemarks []kmlPlacemark)
	visit = func(folders []kmlFolder, placemarks []kmlPlacemark) {
		for _, pm := range placemarks {
			walk(pm)
		}
		for _, f := range folders {
			visit(f.Folders, f.Placemarks)
		}
	}
	visit(root.Document.Folders, root.Document.Placemarks)

	return segs, nil
}

// parseCoordinates reads the KML coordinate encoding: whitespace-separated
// tuples of "longitude,latitude[,altitude]". Altitude is discarded.
func parseCoordinates(raw string) []geo.Point {
	var pts []geo.Point
	for _, tuple := range strings.Fields(raw) {
		parts := strings.Split(tuple, ",")
		if len(parts) < 2 {
			continue
		}
		lon, err1 := strconv.ParseFloat(parts[0], 64)
		lat, err2 := strconv.ParseFloat(parts[1], 64)
		if err1 != nil || err2 != nil {
			continue
		}
		p := geo.Point{Lat: lat, Lon: lon}
		if !geo.Valid(p) {
			continue
		}
		pts = append(pts, p)
	}
	return pts
}
