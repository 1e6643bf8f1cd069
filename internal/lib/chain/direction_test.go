package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openroads/corridor/internal/lib/geo"
)

func eastboundChain() Chain {
	return Chain{Points: []geo.Point{
		{Lat: 41.0, Lon: -96.0},
		{Lat: 41.05, Lon: -95.5},
	}}
}

func TestRouteOrientation(t *testing.T) {
	cases := []struct {
		ref    string
		want   Orientation
		parsed bool
	}{
		{"I-80", EastWest, true},
		{"I-95", NorthSouth, true},
		{"US 30", EastWest, true},
		{"SR-1", NorthSouth, true},
		{"I-80 Business", EastWest, true},
		{"Main Street", EastWest, false},
	}
	for _, c := range cases {
		got, ok := RouteOrientation(c.ref)
		assert.Equal(t, c.parsed, ok, c.ref)
		if ok {
			assert.Equal(t, c.want, got, c.ref)
		}
	}
}

func TestBearingQuadrant(t *testing.T) {
	assert.Equal(t, QuadrantNE, BearingQuadrant(0))
	assert.Equal(t, QuadrantNE, BearingQuadrant(89.9))
	assert.Equal(t, QuadrantSE, BearingQuadrant(90))
	assert.Equal(t, QuadrantSW, BearingQuadrant(200))
	assert.Equal(t, QuadrantNW, BearingQuadrant(359.9))
}

func TestClassify_ByBearing(t *testing.T) {
	c := eastboundChain()

	dir, out := Classify(c, EastWest)
	assert.Equal(t, Eastbound, dir)
	assert.Equal(t, c.Points, out.Points)

	// The same geometry on a north-south route reads as northbound: the
	// bearing is in the NE quadrant.
	dir, _ = Classify(c, NorthSouth)
	assert.Equal(t, Northbound, dir)
}

func TestClassify_Symmetry(t *testing.T) {
	// A chain and its exact reversal must take opposite labels.
	c := eastboundChain()
	rev := c.Reversed()

	for _, o := range []Orientation{EastWest, NorthSouth} {
		d1, _ := Classify(c, o)
		d2, _ := Classify(rev, o)
		assert.Equal(t, Opposite(d1), d2)
	}
}

func TestClassify_HintOverridesBearing(t *testing.T) {
	// Geometry heads east but the provenance says decreasing mileposts:
	// the hint wins and the returned copy is reversed into travel order.
	c := eastboundChain()
	c.Hint = MeasureDecreasing

	dir, out := Classify(c, EastWest)
	assert.Equal(t, Westbound, dir)
	require.Len(t, out.Points, 2)
	assert.Equal(t, c.Points[1], out.Points[0])
	// Input chain untouched.
	assert.Equal(t, geo.Point{Lat: 41.0, Lon: -96.0}, c.Points[0])
}

func TestClassify_HintAgreesWithBearing(t *testing.T) {
	c := eastboundChain()
	c.Hint = MeasureIncreasing

	dir, out := Classify(c, EastWest)
	assert.Equal(t, Eastbound, dir)
	assert.Equal(t, c.Points, out.Points)
}

func TestParseDirection(t *testing.T) {
	for in, want := range map[string]Direction{
		"NB":         Northbound,
		"northbound": Northbound,
		" e ":        Eastbound,
		"West":       Westbound,
		"SOUTH":      Southbound,
	} {
		got, ok := ParseDirection(in)
		require.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := ParseDirection("sideways")
	assert.False(t, ok)
}

func TestChainReversed_FlipsHint(t *testing.T) {
	c := eastboundChain()
	c.Hint = MeasureIncreasing
	assert.Equal(t, MeasureDecreasing, c.Reversed().Hint)
	assert.Equal(t, MeasureUnknown, Chain{Points: c.Points}.Reversed().Hint)
}
