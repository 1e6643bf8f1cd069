package chain

import (
	"sort"

	"github.com/openroads/corridor/internal/lib/geo"
)

// MeasureHint carries an explicit increasing/decreasing linear-referencing
// indicator from segment provenance. When present it takes precedence over
// bearing, since short chains can have a misleading local bearing.
type MeasureHint int

const (
	MeasureUnknown MeasureHint = iota
	MeasureIncreasing
	MeasureDecreasing
)

// RawSegment is one fragment of road geometry as delivered by an ingestion
// adapter. Immutable once produced.
type RawSegment struct {
	RouteRef     string      `json:"route_ref"`
	Points       []geo.Point `json:"points"`
	BeginMeasure float64     `json:"begin_measure,omitempty"`
	EndMeasure   float64     `json:"end_measure,omitempty"`
	HasMeasures  bool        `json:"has_measures,omitempty"`
	SourceID     string      `json:"source_id"`
}

// MeasureHint derives the travel-order indicator from the segment's
// linear-referencing milepoints, if any were supplied.
func (s RawSegment) MeasureHint() MeasureHint {
	if !s.HasMeasures || s.BeginMeasure == s.EndMeasure {
		return MeasureUnknown
	}
	if s.EndMeasure > s.BeginMeasure {
		return MeasureIncreasing
	}
	return MeasureDecreasing
}

// Chain is an ordered, contiguous run of coordinates produced by merging one
// or more RawSegments. Merging always produces a new Chain; a Chain is never
// mutated in place.
type Chain struct {
	Points  []geo.Point `json:"points"`
	Sources []string    `json:"sources"`
	Hint    MeasureHint `json:"-"`
}

// Bearing returns the overall first-to-last compass bearing of the chain.
func (c Chain) Bearing() float64 {
	if len(c.Points) < 2 {
		return 0
	}
	return geo.Bearing(c.Points[0], c.Points[len(c.Points)-1])
}

// Reversed returns a new chain with the coordinate sequence in opposite
// travel order. The measure hint flips with it.
func (c Chain) Reversed() Chain {
	hint := c.Hint
	switch hint {
	case MeasureIncreasing:
		hint = MeasureDecreasing
	case MeasureDecreasing:
		hint = MeasureIncreasing
	}
	return Chain{
		Points:  geo.Reverse(c.Points),
		Sources: append([]string(nil), c.Sources...),
		Hint:    hint,
	}
}

// mergeSources unions two provenance sets into a sorted slice.
func mergeSources(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	for _, s := range a {
		seen[s] = struct{}{}
	}
	for _, s := range b {
		seen[s] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
