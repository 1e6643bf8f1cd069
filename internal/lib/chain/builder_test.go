package chain

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openroads/corridor/internal/lib/geo"
)

func testBuilder() *Builder {
	return NewBuilder(0, zerolog.Nop())
}

func segment(source string, pts ...geo.Point) RawSegment {
	return RawSegment{RouteRef: "I-80", Points: pts, SourceID: source}
}

func TestBuilder_MergesContiguousSegments(t *testing.T) {
	a := segment("fed",
		geo.Point{Lat: 41.0, Lon: -96.0},
		geo.Point{Lat: 41.05, Lon: -95.5},
	)
	b := segment("state",
		geo.Point{Lat: 41.05, Lon: -95.5},
		geo.Point{Lat: 41.1, Lon: -95.0},
	)

	chains := testBuilder().Build([]RawSegment{a, b})
	require.Len(t, chains, 1)

	// Shared coordinate appears once.
	assert.Len(t, chains[0].Points, 3)
	assert.ElementsMatch(t, []string{"fed", "state"}, chains[0].Sources)
}

func TestBuilder_MergeCommutative(t *testing.T) {
	a := segment("a",
		geo.Point{Lat: 41.0, Lon: -96.0},
		geo.Point{Lat: 41.05, Lon: -95.5},
	)
	b := segment("b",
		geo.Point{Lat: 41.05, Lon: -95.5},
		geo.Point{Lat: 41.1, Lon: -95.0},
	)

	ab := testBuilder().Build([]RawSegment{a, b})
	ba := testBuilder().Build([]RawSegment{b, a})
	require.Len(t, ab, 1)
	require.Len(t, ba, 1)

	// Same sequence up to global reversal.
	forward := ab[0].Points
	got := ba[0].Points
	if got[0] != forward[0] {
		got = geo.Reverse(got)
	}
	assert.Equal(t, forward, got)
}

func TestBuilder_ReversedSegmentOrientation(t *testing.T) {
	// Second fragment is delivered end-first; merge must reverse it.
	a := segment("a",
		geo.Point{Lat: 41.0, Lon: -96.0},
		geo.Point{Lat: 41.05, Lon: -95.5},
	)
	b := segment("b",
		geo.Point{Lat: 41.1, Lon: -95.0}, // far endpoint first
		geo.Point{Lat: 41.05, Lon: -95.5},
	)

	chains := testBuilder().Build([]RawSegment{a, b})
	require.Len(t, chains, 1)
	require.Len(t, chains[0].Points, 3)

	// Monotonic longitude after orientation fix.
	pts := chains[0].Points
	if pts[0].Lon > pts[2].Lon {
		pts = geo.Reverse(pts)
	}
	assert.Less(t, pts[0].Lon, pts[1].Lon)
	assert.Less(t, pts[1].Lon, pts[2].Lon)
}

func TestBuilder_DisconnectedSegmentsStaySeparate(t *testing.T) {
	a := segment("a",
		geo.Point{Lat: 41.0, Lon: -96.0},
		geo.Point{Lat: 41.05, Lon: -95.5},
	)
	remote := segment("remote",
		geo.Point{Lat: 41.5, Lon: -90.0},
		geo.Point{Lat: 41.55, Lon: -89.5},
	)

	chains := testBuilder().Build([]RawSegment{a, remote})
	assert.Len(t, chains, 2)
}

func TestBuilder_DropsDegenerateSegments(t *testing.T) {
	pt := geo.Point{Lat: 41.0, Lon: -96.0}
	degenerate := segment("zero", pt, pt, pt)
	single := segment("single", pt)

	chains := testBuilder().Build([]RawSegment{degenerate, single})
	assert.Empty(t, chains)
}

func TestBuilder_MultiFragmentChain(t *testing.T) {
	// Five fragments of one line, shuffled and some reversed.
	mk := func(source string, lon0, lon1 float64) RawSegment {
		return segment(source,
			geo.Point{Lat: 41.0, Lon: lon0},
			geo.Point{Lat: 41.0, Lon: lon1},
		)
	}
	frags := []RawSegment{
		mk("c", -95.0, -94.5),
		mk("a", -96.0, -95.5),
		mk("e", -93.5, -94.0), // reversed
		mk("b", -95.5, -95.0),
		mk("d", -94.0, -94.5), // reversed
	}

	chains := testBuilder().Build(frags)
	require.Len(t, chains, 1)
	assert.Len(t, chains[0].Points, 6)

	pts := chains[0].Points
	if pts[0].Lon > pts[len(pts)-1].Lon {
		pts = geo.Reverse(pts)
	}
	for i := 0; i+1 < len(pts); i++ {
		assert.Less(t, pts[i].Lon, pts[i+1].Lon, "points must be in travel order")
	}
}

func TestBuilder_MeasureHintSurvivesMerge(t *testing.T) {
	a := RawSegment{
		RouteRef: "I-80", SourceID: "lrs",
		Points: []geo.Point{
			{Lat: 41.0, Lon: -96.0},
			{Lat: 41.05, Lon: -95.5},
		},
		BeginMeasure: 10, EndMeasure: 40, HasMeasures: true,
	}
	b := RawSegment{
		RouteRef: "I-80", SourceID: "lrs",
		Points: []geo.Point{
			{Lat: 41.05, Lon: -95.5},
			{Lat: 41.1, Lon: -95.0},
		},
		BeginMeasure: 40, EndMeasure: 70, HasMeasures: true,
	}

	chains := testBuilder().Build([]RawSegment{a, b})
	require.Len(t, chains, 1)
	assert.Equal(t, MeasureIncreasing, chains[0].Hint)
}
