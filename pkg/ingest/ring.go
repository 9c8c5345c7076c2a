package ingest

import (
	"github.com/lintang-b-s/synthmap/pkg/datastructure"
	"github.com/lintang-b-s/synthmap/pkg/geo"

	"github.com/paulmach/orb"
)

// Offset is the calibration translation applied to every built polygon, in local frame meters.
// It aligns the reprojected regions with the map and comes from configuration; nothing in the
// data determines it.
type Offset struct {
	DX float64
	DY float64
}

// DefaultOffset is the calibration used for the reference sub-region data set.
var DefaultOffset = Offset{DX: -60, DY: 140}

// RingBuilder reprojects GeoJSON polygons (lon/lat points) into the local frame of one map.
type RingBuilder struct {
	projector         *geo.Projector
	offset            Offset
	simplifyTolerance float64
}

type RingBuilderOption func(*RingBuilder)

// WithSimplify runs Douglas-Peucker with the given tolerance in meters on each reprojected ring
// before it is validated. A tolerance <= 0 disables it.
func WithSimplify(tolerance float64) RingBuilderOption {
	return func(rb *RingBuilder) {
		rb.simplifyTolerance = tolerance
	}
}

func NewRingBuilder(bounds geo.GPSBounds, offset Offset, opts ...RingBuilderOption) (*RingBuilder, error) {
	pr, err := geo.NewProjector(bounds)
	if err != nil {
		return nil, err
	}
	rb := &RingBuilder{projector: pr, offset: offset}
	for _, opt := range opts {
		opt(rb)
	}
	return rb, nil
}

func (rb *RingBuilder) Bounds() geo.GPSBounds {
	return rb.projector.Bounds()
}

// Build reprojects each ring of gps independently, closes and validates it, then translates the
// whole polygon by the builder's offset. It returns the index of the failing ring with the error.
func (rb *RingBuilder) Build(gps orb.Polygon) (orb.Polygon, int, error) {
	if len(gps) == 0 {
		return nil, 0, datastructure.ErrRingTooFewPoints
	}

	out := make(orb.Polygon, 0, len(gps))
	for idx, ring := range gps {
		pts := make([]orb.Point, 0, len(ring))
		for _, p := range ring {
			local := rb.projector.ToLocal(datastructure.NewCoordinate(p.Lat(), p.Lon()))
			pts = append(pts, local.Orb())
		}
		if rb.simplifyTolerance > 0 {
			pts = geo.RamerDouglasPeucker(pts, rb.simplifyTolerance)
		}

		r, err := datastructure.NewRing(pts)
		if err != nil {
			return nil, idx, err
		}
		out = append(out, r)
	}
	return datastructure.TranslatePolygon(out, rb.offset.DX, rb.offset.DY), 0, nil
}

// BoundaryPolygon is the map's boundary in its own local frame.
func (rb *RingBuilder) BoundaryPolygon() orb.Polygon {
	poly, _ := rb.Bounds().BoundaryPolygon()
	return poly
}
