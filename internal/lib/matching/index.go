package matching

import (
	"github.com/tidwall/rtree"

	"github.com/openroads/corridor/internal/lib/geo"
)

// pointIndex is an R-tree over corridor vertices, used for the unconstrained
// global nearest-point search that anchors a match. Corridors are immutable
// snapshots, so an index is built once per published corridor.
type pointIndex struct {
	tr  rtree.RTreeG[int]
	pts []geo.Point
}

func newPointIndex(pts []geo.Point) *pointIndex {
	idx := &pointIndex{pts: pts}
	for i, p := range pts {
		xy := [2]float64{p.Lon, p.Lat}
		idx.tr.Insert(xy, xy, i)
	}
	return idx
}

// nearest returns the index of the corridor vertex closest to p and the
// haversine distance to it in meters. Returns -1 for an empty index.
//
// The R-tree ranks neighbors by planar degree distance; ranking by degrees
// and measuring by haversine agrees at snap scale.
func (idx *pointIndex) nearest(p geo.Point) (int, float64) {
	best := -1
	xy := [2]float64{p.Lon, p.Lat}
	idx.tr.Nearby(
		rtree.BoxDist[float64, int](xy, xy, nil),
		func(_, _ [2]float64, i int, _ float64) bool {
			best = i
			return false // first neighbor is the nearest
		},
	)
	if best < 0 {
		return -1, 0
	}
	return best, geo.Haversine(p, idx.pts[best])
}
