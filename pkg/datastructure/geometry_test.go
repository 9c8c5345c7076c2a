package datastructure_test

import (
	"testing"

	"github.com/lintang-b-s/synthmap/pkg/datastructure"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingContains(t *testing.T) {
	square := orb.Ring{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}

	tests := []struct {
		name      string
		p         orb.Point
		inclusive bool
		strict    bool
	}{
		{"interior", orb.Point{5, 5}, true, true},
		{"on edge", orb.Point{10, 5}, true, false},
		{"on vertex", orb.Point{0, 0}, true, false},
		{"outside", orb.Point{11, 5}, false, false},
		{"outside diagonal", orb.Point{-1, -1}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.inclusive, datastructure.RingContains(square, tt.p))
			assert.Equal(t, tt.strict, datastructure.RingContainsStrict(square, tt.p))
		})
	}
}

func TestPolygonWithHole(t *testing.T) {
	poly := orb.Polygon{
		{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}},
		{{4, 4}, {6, 4}, {6, 6}, {4, 6}, {4, 4}},
	}

	assert.True(t, datastructure.PolygonContains(poly, orb.Point{2, 2}))
	assert.False(t, datastructure.PolygonContains(poly, orb.Point{5, 5}))
	// hole boundary belongs to the polygon for the inclusive test only
	assert.True(t, datastructure.PolygonContains(poly, orb.Point{4, 5}))
	assert.False(t, datastructure.PolygonContainsStrict(poly, orb.Point{4, 5}))
	assert.True(t, datastructure.PolygonContainsStrict(poly, orb.Point{2, 2}))
}

func TestNewRing(t *testing.T) {
	t.Run("closes an open ring", func(t *testing.T) {
		r, err := datastructure.NewRing([]orb.Point{{0, 0}, {1, 0}, {1, 1}})
		require.NoError(t, err)
		assert.Equal(t, orb.Ring{{0, 0}, {1, 0}, {1, 1}, {0, 0}}, r)
	})

	t.Run("keeps a closed ring", func(t *testing.T) {
		r, err := datastructure.NewRing([]orb.Point{{0, 0}, {1, 0}, {1, 1}, {0, 0}})
		require.NoError(t, err)
		assert.Len(t, r, 4)
	})

	t.Run("too few distinct points", func(t *testing.T) {
		_, err := datastructure.NewRing([]orb.Point{{0, 0}, {1, 0}, {1, 0}, {0, 0}})
		assert.ErrorIs(t, err, datastructure.ErrRingTooFewPoints)
	})

	t.Run("collinear", func(t *testing.T) {
		_, err := datastructure.NewRing([]orb.Point{{0, 0}, {1, 0}, {2, 0}, {0, 0}})
		assert.ErrorIs(t, err, datastructure.ErrRingZeroArea)
	})

	t.Run("bow tie", func(t *testing.T) {
		_, err := datastructure.NewRing([]orb.Point{{0, 0}, {2, 2}, {2, 0}, {0, 2}, {0, 0}})
		assert.ErrorIs(t, err, datastructure.ErrRingSelfIntersecting)
	})
}

func TestThickLine(t *testing.T) {
	from := datastructure.NewPt2D(0, 0)
	to := datastructure.NewPt2D(100, 0)

	// heading east in a y-down frame, the right side is +y
	right := datastructure.ThickLine(from, to, 2, 4)
	assert.True(t, datastructure.PolygonContains(right, orb.Point{50, 3}))
	assert.False(t, datastructure.PolygonContains(right, orb.Point{50, -1}))

	left := datastructure.ThickLine(from, to, -2, 4)
	assert.True(t, datastructure.PolygonContains(left, orb.Point{50, -3}))
	assert.False(t, datastructure.PolygonContains(left, orb.Point{50, 1}))

	assert.Empty(t, datastructure.ThickLine(from, from, 1, 2))
	assert.Empty(t, datastructure.ThickLine(from, to, 1, 0))
}

func TestRectangleAndTranslate(t *testing.T) {
	rect := datastructure.Rectangle(datastructure.NewPt2D(10, 10), 30, 30)
	assert.True(t, datastructure.PolygonContains(rect, orb.Point{24, 24}))
	assert.False(t, datastructure.PolygonContains(rect, orb.Point{26, 10}))
	assert.Len(t, datastructure.PolygonPoints(rect), 4)

	moved := datastructure.TranslatePolygon(rect, -60, 140)
	assert.True(t, datastructure.PolygonContains(moved, orb.Point{-50, 150}))
	// the source polygon is left alone
	assert.Equal(t, orb.Point{-5, -5}, rect[0][0])
}

func TestCircleAndCenter(t *testing.T) {
	c := datastructure.NewCircle(datastructure.NewPt2D(0, 0), 10)
	assert.True(t, c.Contains(datastructure.NewPt2D(3, 4)))
	assert.False(t, c.Contains(datastructure.NewPt2D(6, 8)))

	center := datastructure.CenterOf([]datastructure.Pt2D{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 4, Y: 2}, {X: 0, Y: 2}})
	assert.Equal(t, datastructure.NewPt2D(2, 1), center)
}

func TestPolylineRoundTrip(t *testing.T) {
	path := []datastructure.Coordinate{
		datastructure.NewCoordinate(46.2, 6.14),
		datastructure.NewCoordinate(46.20123, 6.14567),
	}
	encoded := datastructure.CreatePolyline(path)
	decoded, err := datastructure.DecodePolyline(encoded)
	require.NoError(t, err)
	require.Len(t, decoded, 2)
	assert.InDelta(t, path[1].Lat, decoded[1].Lat, 1e-5)
	assert.InDelta(t, path[1].Lon, decoded[1].Lon, 1e-5)
}
