package corridor

import (
	"fmt"
	"io"

	kml "github.com/twpayne/go-kml/v2"
)

// WriteKML renders corridors as a KML document, one LineString placemark per
// corridor, for inspection in desktop mapping tools.
func WriteKML(w io.Writer, corridors []*Corridor) error {
	doc := kml.Document(kml.Name("Corridors"))
	for _, c := range corridors {
		coords := make([]kml.Coordinate, len(c.Points))
		for i, p := range c.Points {
			coords[i] = kml.Coordinate{Lon: p.Lon, Lat: p.Lat}
		}
		doc.Add(
			kml.Placemark(
				kml.Name(c.ID),
				kml.Description(fmt.Sprintf("%s %s, %.0f m, %d gaps",
					c.RouteRef, c.Direction, c.LengthMeters, len(c.Gaps))),
				kml.LineString(
					kml.Tessellate(true),
					kml.Coordinates(coords...),
				),
			),
		)
	}
	return kml.KML(doc).WriteIndent(w, "", "  ")
}
