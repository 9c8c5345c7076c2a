package geo

import (
	"github.com/lintang-b-s/synthmap/pkg/datastructure"

	"github.com/golang/geo/s2"
)

// BoundsFromCoordinates returns the smallest GPSBounds covering coords. A single point or a set of
// points on one meridian/parallel gives degenerate bounds, reported as an error.
func BoundsFromCoordinates(coords []datastructure.Coordinate) (GPSBounds, error) {
	rect := s2.EmptyRect()
	for _, c := range coords {
		rect = rect.AddPoint(s2.LatLngFromDegrees(c.Lat, c.Lon))
	}
	if rect.IsEmpty() {
		return GPSBounds{}, &DegenerateBoundsError{}
	}

	lo, hi := rect.Lo(), rect.Hi()
	b := NewGPSBounds(lo.Lng.Degrees(), lo.Lat.Degrees(), hi.Lng.Degrees(), hi.Lat.Degrees())
	if err := b.Validate(); err != nil {
		return b, err
	}
	return b, nil
}
