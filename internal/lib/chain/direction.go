package chain

import (
	"strconv"
	"strings"
)

// Direction labels one of the two opposing travel directions of a corridor.
type Direction string

const (
	Northbound Direction = "NB"
	Southbound Direction = "SB"
	Eastbound  Direction = "EB"
	Westbound  Direction = "WB"
)

// Orientation is the general axis a numbered route runs along.
type Orientation int

const (
	EastWest Orientation = iota
	NorthSouth
)

// Quadrant is a compass quadrant derived from a bearing.
type Quadrant int

const (
	QuadrantNE Quadrant = iota // [0, 90)
	QuadrantSE                 // [90, 180)
	QuadrantSW                 // [180, 270)
	QuadrantNW                 // [270, 360)
)

// BearingQuadrant maps a compass bearing in degrees to its quadrant.
func BearingQuadrant(bearing float64) Quadrant {
	switch {
	case bearing < 90:
		return QuadrantNE
	case bearing < 180:
		return QuadrantSE
	case bearing < 270:
		return QuadrantSW
	default:
		return QuadrantNW
	}
}

// RouteOrientation applies the highway-numbering parity rule: even-numbered
// routes run east-west, odd-numbered routes run north-south. The rule is a
// heuristic carried over from the numbering convention; callers with better
// knowledge of a route pass an explicit Orientation instead.
func RouteOrientation(routeRef string) (Orientation, bool) {
	digits := ""
	for _, r := range routeRef {
		if r >= '0' && r <= '9' {
			digits += string(r)
		} else if digits != "" {
			break
		}
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return EastWest, false
	}
	if n%2 == 0 {
		return EastWest, true
	}
	return NorthSouth, true
}

// DirectionsFor returns the two opposing direction labels for an axis.
func DirectionsFor(o Orientation) [2]Direction {
	if o == NorthSouth {
		return [2]Direction{Northbound, Southbound}
	}
	return [2]Direction{Eastbound, Westbound}
}

// Opposite returns the opposing direction label.
func Opposite(d Direction) Direction {
	switch d {
	case Northbound:
		return Southbound
	case Southbound:
		return Northbound
	case Eastbound:
		return Westbound
	default:
		return Eastbound
	}
}

// ParseDirection normalizes a free-text direction label from an event feed.
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "NB", "N", "NORTH", "NORTHBOUND":
		return Northbound, true
	case "SB", "S", "SOUTH", "SOUTHBOUND":
		return Southbound, true
	case "EB", "E", "EAST", "EASTBOUND":
		return Eastbound, true
	case "WB", "W", "WEST", "WESTBOUND":
		return Westbound, true
	default:
		return "", false
	}
}

// directionFromQuadrant maps a chain's bearing quadrant to a direction label
// for the route's axis.
func directionFromQuadrant(q Quadrant, o Orientation) Direction {
	if o == EastWest {
		if q == QuadrantNE || q == QuadrantSE {
			return Eastbound
		}
		return Westbound
	}
	if q == QuadrantNE || q == QuadrantNW {
		return Northbound
	}
	return Southbound
}

// directionFromHint maps an explicit increasing/decreasing milepoint
// indicator to a direction label. Mileposts on the federal network increase
// eastward and northward; kept as a named rule so it can be tested and
// overridden per deployment.
func directionFromHint(h MeasureHint, o Orientation) Direction {
	if o == EastWest {
		if h == MeasureIncreasing {
			return Eastbound
		}
		return Westbound
	}
	if h == MeasureIncreasing {
		return Northbound
	}
	return Southbound
}

// Classify labels a chain with one of the two directions for the route's
// axis. An explicit measure hint takes precedence over bearing; when the two
// disagree the returned chain is a reversed copy so its sequence runs in
// travel order.
func Classify(c Chain, o Orientation) (Direction, Chain) {
	bearingDir := directionFromQuadrant(BearingQuadrant(c.Bearing()), o)

	if c.Hint == MeasureUnknown {
		return bearingDir, c
	}

	hintDir := directionFromHint(c.Hint, o)
	if hintDir != bearingDir {
		return hintDir, c.Reversed()
	}
	return hintDir, c
}
