package geo

import "math"

const earthRadiusMeters = 6_371_000.0

const degToRad = math.Pi / 180

// Haversine returns the great-circle distance in meters between two points.
func Haversine(a, b Point) float64 {
	if a.Lat == b.Lat && a.Lon == b.Lon {
		return 0
	}

	lat1 := a.Lat * degToRad
	lat2 := b.Lat * degToRad
	dLat := (b.Lat - a.Lat) * degToRad
	dLon := (b.Lon - a.Lon) * degToRad

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMeters * c
}

// DegreeDistance returns the planar distance between two points in degrees.
// Cheap surrogate for comparing candidate junctions against a tolerance that
// is itself expressed as a fraction of a degree; not a real-world distance.
func DegreeDistance(a, b Point) float64 {
	dLat := a.Lat - b.Lat
	dLon := a.Lon - b.Lon
	return math.Sqrt(dLat*dLat + dLon*dLon)
}

// PathLength returns the sum of consecutive haversine distances in meters
// along an ordered coordinate sequence.
func PathLength(pts []Point) float64 {
	total := 0.0
	for i := 0; i+1 < len(pts); i++ {
		total += Haversine(pts[i], pts[i+1])
	}
	return total
}

// Bearing returns the initial compass bearing in degrees [0, 360) from a to b.
func Bearing(a, b Point) float64 {
	lat1 := a.Lat * degToRad
	lat2 := b.Lat * degToRad
	dLon := (b.Lon - a.Lon) * degToRad

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)

	deg := math.Atan2(y, x) / degToRad
	return math.Mod(deg+360, 360)
}

// PointToSegment computes the distance in meters from p to the segment ab and
// the projection ratio along ab clamped to [0, 1]. Works in an
// equirectangular projection, which is adequate at road-segment scale.
func PointToSegment(p, a, b Point) (dist, ratio float64) {
	cosLat := math.Cos((a.Lat + b.Lat) / 2 * degToRad)

	ax, ay := a.Lon*cosLat, a.Lat
	bx, by := b.Lon*cosLat, b.Lat
	px, py := p.Lon*cosLat, p.Lat

	// Degenerate segment: compare in original coordinates so floating-point
	// noise from the cosLat multiplication cannot split identical points.
	if a.Lat == b.Lat && a.Lon == b.Lon {
		return Haversine(p, a), 0
	}

	dx, dy := bx-ax, by-ay
	lenSq := dx*dx + dy*dy

	t := ((px-ax)*dx + (py-ay)*dy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	proj := Point{
		Lat: a.Lat + t*(b.Lat-a.Lat),
		Lon: a.Lon + t*(b.Lon-a.Lon),
	}
	return Haversine(p, proj), t
}

// PointToPath returns the minimum distance in meters from p to any segment of
// the path. A single-point path degrades to a point distance.
func PointToPath(p Point, path []Point) float64 {
	if len(path) == 0 {
		return math.Inf(1)
	}
	if len(path) == 1 {
		return Haversine(p, path[0])
	}

	min := math.Inf(1)
	for i := 0; i+1 < len(path); i++ {
		d, _ := PointToSegment(p, path[i], path[i+1])
		if d < min {
			min = d
		}
	}
	return min
}

// NearestVertex returns the index of the path vertex closest to p and the
// haversine distance to it in meters. Returns -1 for an empty path.
func NearestVertex(p Point, path []Point) (int, float64) {
	best := -1
	bestDist := math.Inf(1)
	for i, v := range path {
		d := Haversine(p, v)
		if d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best, bestDist
}

// Reverse returns a new slice with the points in opposite order.
func Reverse(pts []Point) []Point {
	out := make([]Point, len(pts))
	for i, p := range pts {
		out[len(pts)-1-i] = p
	}
	return out
}

// DedupeConsecutive returns the sequence with consecutive duplicate
// coordinates removed.
func DedupeConsecutive(pts []Point) []Point {
	if len(pts) == 0 {
		return nil
	}
	out := make([]Point, 0, len(pts))
	out = append(out, pts[0])
	for _, p := range pts[1:] {
		last := out[len(out)-1]
		if p.Lat == last.Lat && p.Lon == last.Lon {
			continue
		}
		out = append(out, p)
	}
	return out
}

// MedianSpacing returns the median consecutive-point distance in meters.
// Used as the corridor's local point density when checking for internal
// reversals.
func MedianSpacing(pts []Point) float64 {
	if len(pts) < 2 {
		return 0
	}
	spacings := make([]float64, 0, len(pts)-1)
	for i := 0; i+1 < len(pts); i++ {
		spacings = append(spacings, Haversine(pts[i], pts[i+1]))
	}
	// Insertion sort; spacing slices are small.
	for i := 1; i < len(spacings); i++ {
		for j := i; j > 0 && spacings[j] < spacings[j-1]; j-- {
			spacings[j], spacings[j-1] = spacings[j-1], spacings[j]
		}
	}
	mid := len(spacings) / 2
	if len(spacings)%2 == 0 {
		return (spacings[mid-1] + spacings[mid]) / 2
	}
	return spacings[mid]
}
