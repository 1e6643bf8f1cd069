// Package linearref ingests linear-referenced route exports. Records carry an
// encoded polyline plus begin and end milepoint measures, which downstream
// direction classification uses as an authoritative orientation hint.
package linearref

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/twpayne/go-polyline"

	"github.com/openroads/corridor/internal/lib/chain"
	"github.com/openroads/corridor/internal/lib/geo"
)

// Record is one linear-referenced segment as exported upstream.
type Record struct {
	RouteID  string  `json:"route_id"`
	Geometry string  `json:"geometry"`
	BeginMP  float64 `json:"begin_mp"`
	EndMP    float64 `json:"end_mp"`
}

// Client fetches linear-referenced exports over HTTP.
type Client struct {
	httpClient *http.Client
	url        string
	sourceID   string
	log        zerolog.Logger
}

// NewClient creates a client for a linear-referenced export endpoint.
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

// Segments fetches the export and returns the raw segments for one route.
func (c *Client) Segments(ctx context.Context, routeRef string) ([]chain.RawSegment, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch linear-referenced export: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("linear-referenced export returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return c.Parse(data, routeRef)
}

// Parse decodes an export body and returns the segments matching routeRef.
// Records whose polyline fails to decode are skipped with a warning rather
// than failing the whole export.
func (c *Client) Parse(data []byte, routeRef string) ([]chain.RawSegment, error) {
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse linear-referenced export: %w", err)
	}

	var segs []chain.RawSegment
	for _, rec := range records {
		if !chain.SameRoute(rec.RouteID, routeRef) {
			continue
		}

		coords, _, err := polyline.DecodeCoords([]byte(rec.Geometry))
		if err != nil {
			c.log.Warn().
				Err(err).
				Str("route_id", rec.RouteID).
				Float64("begin_mp", rec.BeginMP).
				Msg("skipping record with undecodable polyline")
			continue
		}
		if len(coords) < 2 {
			continue
		}

		pts := make([]geo.Point, len(coords))
		for i, ll := range coords {
			pts[i] = geo.Point{Lat: ll[0], Lon: ll[1]}
		}

		segs = append(segs, chain.RawSegment{
			RouteRef:     routeRef,
			Points:       pts,
			BeginMeasure: rec.BeginMP,
			EndMeasure:   rec.EndMP,
			HasMeasures:  true,
			SourceID:     c.sourceID,
		})
	}

	c.log.Debug().
		Str("route_ref", routeRef).
		Str("source", c.sourceID).
		Int("records", len(records)).
		Int("segments", len(segs)).
		Msg("parsed linear-referenced export")
	return segs, nil
}
