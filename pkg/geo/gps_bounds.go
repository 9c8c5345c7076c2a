package geo

import (
	"errors"
	"fmt"

	"github.com/lintang-b-s/synthmap/pkg/datastructure"

	"github.com/paulmach/orb"
)

var (
	ErrDegenerateBounds = errors.New("degenerate gps bounds")
)

// GPSBounds is the geographic box a local frame is derived from. The local frame has its origin at
// (MinLon, MaxLat): x grows eastwards and y grows southwards, both in meters.
type GPSBounds struct {
	MinLon float64 `json:"min_lon" toml:"min_lon"`
	MinLat float64 `json:"min_lat" toml:"min_lat"`
	MaxLon float64 `json:"max_lon" toml:"max_lon"`
	MaxLat float64 `json:"max_lat" toml:"max_lat"`
}

func NewGPSBounds(minLon, minLat, maxLon, maxLat float64) GPSBounds {
	return GPSBounds{MinLon: minLon, MinLat: minLat, MaxLon: maxLon, MaxLat: maxLat}
}

type DegenerateBoundsError struct {
	Bounds GPSBounds
}

func (e *DegenerateBoundsError) Error() string {
	return fmt.Sprintf("degenerate gps bounds lon [%v, %v] lat [%v, %v]",
		e.Bounds.MinLon, e.Bounds.MaxLon, e.Bounds.MinLat, e.Bounds.MaxLat)
}

func (e *DegenerateBoundsError) Is(target error) bool {
	return target == ErrDegenerateBounds
}

// Validate fails for zero area (or inverted, or NaN) bounds.
func (b GPSBounds) Validate() error {
	if !(b.MaxLon > b.MinLon) || !(b.MaxLat > b.MinLat) {
		return &DegenerateBoundsError{Bounds: b}
	}
	return nil
}

// WorldSize is the width and height of the local frame in meters, measured along the southern and
// western edges of the box.
func (b GPSBounds) WorldSize() (width, height float64, err error) {
	if err := b.Validate(); err != nil {
		return 0, 0, err
	}
	width = HaversineMeters(b.MinLat, b.MinLon, b.MinLat, b.MaxLon)
	height = HaversineMeters(b.MinLat, b.MinLon, b.MaxLat, b.MinLon)
	return width, height, nil
}

func (b GPSBounds) Contains(c datastructure.Coordinate) bool {
	return c.Lon >= b.MinLon && c.Lon <= b.MaxLon && c.Lat >= b.MinLat && c.Lat <= b.MaxLat
}

// BoundaryPolygon is the box itself expressed in the local frame.
func (b GPSBounds) BoundaryPolygon() (orb.Polygon, error) {
	w, h, err := b.WorldSize()
	if err != nil {
		return nil, err
	}
	return orb.Polygon{orb.Ring{{0, 0}, {w, 0}, {w, h}, {0, h}, {0, 0}}}, nil
}

// ToLocal projects a geographic point into the local frame of b.
func ToLocal(c datastructure.Coordinate, b GPSBounds) (datastructure.Pt2D, error) {
	w, h, err := b.WorldSize()
	if err != nil {
		return datastructure.Pt2D{}, err
	}
	x := (c.Lon - b.MinLon) / (b.MaxLon - b.MinLon) * w
	y := h - (c.Lat-b.MinLat)/(b.MaxLat-b.MinLat)*h
	return datastructure.NewPt2D(x, y), nil
}

// ToGPS is the inverse of ToLocal.
func ToGPS(p datastructure.Pt2D, b GPSBounds) (datastructure.Coordinate, error) {
	w, h, err := b.WorldSize()
	if err != nil {
		return datastructure.Coordinate{}, err
	}
	lon := b.MinLon + p.X/w*(b.MaxLon-b.MinLon)
	lat := b.MinLat + (h-p.Y)/h*(b.MaxLat-b.MinLat)
	return datastructure.NewCoordinate(lat, lon), nil
}

// Projector caches the world size of one GPSBounds for bulk conversions.
type Projector struct {
	bounds        GPSBounds
	width, height float64
}

func NewProjector(b GPSBounds) (*Projector, error) {
	w, h, err := b.WorldSize()
	if err != nil {
		return nil, err
	}
	return &Projector{bounds: b, width: w, height: h}, nil
}

func (pr *Projector) Bounds() GPSBounds {
	return pr.bounds
}

func (pr *Projector) ToLocal(c datastructure.Coordinate) datastructure.Pt2D {
	b := pr.bounds
	x := (c.Lon - b.MinLon) / (b.MaxLon - b.MinLon) * pr.width
	y := pr.height - (c.Lat-b.MinLat)/(b.MaxLat-b.MinLat)*pr.height
	return datastructure.NewPt2D(x, y)
}

func (pr *Projector) ToGPS(p datastructure.Pt2D) datastructure.Coordinate {
	b := pr.bounds
	lon := b.MinLon + p.X/pr.width*(b.MaxLon-b.MinLon)
	lat := b.MinLat + (pr.height-p.Y)/pr.height*(b.MaxLat-b.MinLat)
	return datastructure.NewCoordinate(lat, lon)
}
