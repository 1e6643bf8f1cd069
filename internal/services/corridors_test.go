package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openroads/corridor/internal/config"
	"github.com/openroads/corridor/internal/lib/chain"
	"github.com/openroads/corridor/internal/lib/geo"
	"github.com/openroads/corridor/internal/lib/matching"
	"github.com/openroads/corridor/internal/store"
)

type stubSource struct {
	name string
	segs []chain.RawSegment
	err  error
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Segments(ctx context.Context, routeRef string) ([]chain.RawSegment, error) {
	return s.segs, s.err
}

// eastward returns n points running east from startLon at 41N, spaced
// 0.01 degrees of longitude (roughly 840 m).
func eastward(startLon float64, n int) []geo.Point {
	pts := make([]geo.Point, n)
	for i := range pts {
		pts[i] = geo.Point{Lat: 41.0, Lon: startLon + 0.01*float64(i)}
	}
	return pts
}

func newTestService(t *testing.T, sources ...RawSegmentSource) *CorridorService {
	t.Helper()
	routes := []config.RouteConfig{{Ref: "I-80"}}
	return NewCorridorService(sources, routes, config.EngineConfig{}, store.NewStore(), nil, zerolog.Nop())
}

func rebuiltService(t *testing.T) *CorridorService {
	t.Helper()
	pts := eastward(-109.00, 9)
	src := &stubSource{
		name: "dot",
		segs: []chain.RawSegment{
			{RouteRef: "I-80", Points: append([]geo.Point(nil), pts[:5]...), SourceID: "dot"},
			{RouteRef: "I-80", Points: append([]geo.Point(nil), pts[4:]...), SourceID: "dot"},
		},
	}
	svc := newTestService(t, src)
	require.NoError(t, svc.RebuildRoute(context.Background(), config.RouteConfig{Ref: "I-80"}))
	return svc
}

func TestRebuildRoutePublishesBothDirections(t *testing.T) {
	svc := rebuiltService(t)

	eb, err := svc.GetCorridor("I-80 EB")
	require.NoError(t, err)
	// The two overlapping fragments merge into one nine-point chain.
	assert.Len(t, eb.Points, 9)
	assert.Equal(t, chain.Eastbound, eb.Direction)
	assert.Equal(t, []string{"dot"}, eb.SourceSummary)
	assert.Empty(t, eb.Gaps)

	// No westbound geometry arrived, so the westbound corridor is published
	// empty with a full-route gap.
	wb, err := svc.GetCorridor("I-80 WB")
	require.NoError(t, err)
	assert.Empty(t, wb.Points)
	require.Len(t, wb.Gaps, 1)
	assert.True(t, wb.Gaps[0].FullRoute)
}

func TestRebuildRouteSkipsFailingSource(t *testing.T) {
	good := &stubSource{
		name: "dot",
		segs: []chain.RawSegment{{RouteRef: "I-80", Points: eastward(-109.00, 5), SourceID: "dot"}},
	}
	bad := &stubSource{name: "osm", err: errors.New("feed unreachable")}

	svc := newTestService(t, good, bad)
	require.NoError(t, svc.RebuildRoute(context.Background(), config.RouteConfig{Ref: "I-80"}))

	eb, err := svc.GetCorridor("I-80 EB")
	require.NoError(t, err)
	assert.Len(t, eb.Points, 5)
}

func TestRebuildRouteAllSourcesFailed(t *testing.T) {
	bad := &stubSource{name: "dot", err: errors.New("feed unreachable")}
	svc := newTestService(t, bad)

	err := svc.RebuildRoute(context.Background(), config.RouteConfig{Ref: "I-80"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all 1 sources failed")
}

func TestRebuildAll(t *testing.T) {
	src := &stubSource{
		name: "dot",
		segs: []chain.RawSegment{{RouteRef: "I-80", Points: eastward(-109.00, 5), SourceID: "dot"}},
	}
	svc := newTestService(t, src)
	require.NoError(t, svc.RebuildAll(context.Background()))

	_, err := svc.GetCorridor("I-80 EB")
	assert.NoError(t, err)
}

func TestMatchEventByCorridorID(t *testing.T) {
	svc := rebuiltService(t)

	mg, err := svc.MatchEvent(context.Background(), matching.Event{
		ID:         "ev-1",
		CorridorID: "I-80 EB",
		Start:      geo.Point{Lat: 41.0, Lon: -108.99},
		End:        geo.Point{Lat: 41.0, Lon: -108.94},
	})
	require.NoError(t, err)
	assert.Equal(t, matching.SourceMatched, mg.Source)
	assert.Len(t, mg.Points, 6)
}

func TestMatchEventByRouteAndDirection(t *testing.T) {
	svc := rebuiltService(t)

	// Sloppy route spelling and a verbose direction label still resolve.
	mg, err := svc.MatchEvent(context.Background(), matching.Event{
		ID:        "ev-2",
		RouteRef:  "i 80",
		Direction: "eastbound",
		Start:     geo.Point{Lat: 41.0, Lon: -108.99},
		End:       geo.Point{Lat: 41.0, Lon: -108.94},
	})
	require.NoError(t, err)
	assert.Equal(t, matching.SourceMatched, mg.Source)
}

func TestMatchEventUnknownRouteFallsBack(t *testing.T) {
	svc := rebuiltService(t)

	start := geo.Point{Lat: 39.0, Lon: -105.0}
	end := geo.Point{Lat: 39.1, Lon: -105.0}
	mg, err := svc.MatchEvent(context.Background(), matching.Event{
		ID: "ev-3", RouteRef: "US-285", Direction: "NB", Start: start, End: end,
	})
	require.NoError(t, err)
	assert.Equal(t, matching.SourceFallback, mg.Source)
	assert.Equal(t, []geo.Point{start, end}, mg.Points)
	assert.Equal(t, 1.0, mg.Ratio)
}

func TestMatchEventValidation(t *testing.T) {
	svc := rebuiltService(t)

	_, err := svc.MatchEvent(context.Background(), matching.Event{
		CorridorID: "I-80 EB",
		Start:      geo.Point{Lat: 41.0, Lon: -108.99},
		End:        geo.Point{Lat: 41.0, Lon: -108.94},
	})
	assert.Error(t, err, "missing event id")

	_, err = svc.MatchEvent(context.Background(), matching.Event{
		ID:         "ev-4",
		CorridorID: "I-80 EB",
		Start:      geo.Point{Lat: 95.0, Lon: -108.99},
		End:        geo.Point{Lat: 41.0, Lon: -108.94},
	})
	assert.Error(t, err, "out-of-range latitude")
}

func TestMatchEventCached(t *testing.T) {
	svc := rebuiltService(t)
	ev := matching.Event{
		ID:         "ev-5",
		CorridorID: "I-80 EB",
		Start:      geo.Point{Lat: 41.0, Lon: -108.99},
		End:        geo.Point{Lat: 41.0, Lon: -108.94},
	}

	first, err := svc.MatchEvent(context.Background(), ev)
	require.NoError(t, err)
	second, err := svc.MatchEvent(context.Background(), ev)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, svc.matches.Len())
}

func TestGapReport(t *testing.T) {
	svc := rebuiltService(t)
	report := svc.GapReport()

	assert.Empty(t, report["I-80 EB"])
	require.Len(t, report["I-80 WB"], 1)
	assert.True(t, report["I-80 WB"][0].FullRoute)
}

func TestWriteKML(t *testing.T) {
	svc := rebuiltService(t)

	var sb strings.Builder
	require.NoError(t, svc.WriteKML(&sb))
	assert.Contains(t, sb.String(), "<name>I-80 EB</name>")
	assert.Contains(t, sb.String(), "<name>I-80 WB</name>")
}
