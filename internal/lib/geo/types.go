package geo

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Point represents a geographic coordinate in degrees, WGS84.
type Point struct {
	Lat float64
	Lon float64
}

// MarshalJSON serializes a Point as an ordered [longitude, latitude] pair,
// the common geographic interchange convention.
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.Lon, p.Lat})
}

// UnmarshalJSON accepts a [longitude, latitude] pair. A trailing elevation or
// measure element is discarded.
func (p *Point) UnmarshalJSON(data []byte) error {
	var coords []float64
	if err := json.Unmarshal(data, &coords); err != nil {
		return err
	}
	if len(coords) < 2 {
		return errors.New("coordinate needs at least [longitude, latitude]")
	}
	p.Lon = coords[0]
	p.Lat = coords[1]
	if !Valid(*p) {
		return fmt.Errorf("coordinate out of range: [%v, %v]", p.Lon, p.Lat)
	}
	return nil
}

// Valid reports whether the point is within WGS84 bounds.
func Valid(p Point) bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}
