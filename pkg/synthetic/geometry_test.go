package synthetic

import (
	"testing"

	"github.com/lintang-b-s/synthmap/pkg/datastructure"
	"github.com/lintang-b-s/synthmap/pkg/lanespec"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHitTestIntersection(t *testing.T) {
	m := NewModel()
	a := m.CreateIntersection(datastructure.NewPt2D(0, 0))
	b := m.CreateIntersection(datastructure.NewPt2D(15, 0))

	tests := []struct {
		name   string
		p      datastructure.Pt2D
		wantID IntersectionID
		wantOK bool
	}{
		{"center of a", datastructure.NewPt2D(0, 0), a, true},
		{"overlap prefers lower id", datastructure.NewPt2D(7, 0), a, true},
		{"only b", datastructure.NewPt2D(20, 0), b, true},
		{"nothing", datastructure.NewPt2D(0, 30), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := m.HitTestIntersection(tt.p)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantID, id)
			}
		})
	}
}

func TestHitTestBuilding(t *testing.T) {
	m := NewModel()
	a := m.CreateBuilding(datastructure.NewPt2D(100, 100))
	b := m.CreateBuilding(datastructure.NewPt2D(120, 100))

	id, ok := m.HitTestBuilding(datastructure.NewPt2D(110, 100))
	assert.True(t, ok)
	assert.Equal(t, a, id)

	id, ok = m.HitTestBuilding(datastructure.NewPt2D(130, 110))
	assert.True(t, ok)
	assert.Equal(t, b, id)

	_, ok = m.HitTestBuilding(datastructure.NewPt2D(100, 116))
	assert.False(t, ok)
}

func TestHitTestRoad(t *testing.T) {
	m, _, _, id := twoIntersections(t)

	tests := []struct {
		name    string
		p       datastructure.Pt2D
		wantDir Direction
		wantOK  bool
	}{
		{"right of travel is forwards", datastructure.NewPt2D(50, 3), Forwards, true},
		{"left of travel is backwards", datastructure.NewPt2D(50, -3), Backwards, true},
		{"center line goes to forwards first", datastructure.NewPt2D(50, 0), Forwards, true},
		{"outer edge of forward strip", datastructure.NewPt2D(50, 7.5), Forwards, true},
		{"beyond the lanes", datastructure.NewPt2D(50, 8), Forwards, false},
		{"past the end", datastructure.NewPt2D(101, 3), Forwards, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, dir, ok := m.HitTestRoad(tt.p)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, id, got)
				assert.Equal(t, tt.wantDir, dir)
			}
		})
	}

	require.NoError(t, m.EditLanes(id, "d/"))
	_, _, ok := m.HitTestRoad(datastructure.NewPt2D(50, -1))
	assert.False(t, ok)
	_, dir, ok := m.HitTestRoad(datastructure.NewPt2D(50, 1))
	assert.True(t, ok)
	assert.Equal(t, Forwards, dir)
}

func TestRoadPolygonFollowsCreationOrder(t *testing.T) {
	m := NewModel()
	a := m.CreateIntersection(datastructure.NewPt2D(0, 0))
	b := m.CreateIntersection(datastructure.NewPt2D(100, 0))
	// created b -> a, so forwards runs west and its right side is y < 0
	id, err := m.CreateRoad(b, a)
	require.NoError(t, err)

	_, dir, ok := m.HitTestRoad(datastructure.NewPt2D(50, -3))
	require.True(t, ok)
	assert.Equal(t, Forwards, dir)

	poly, err := m.RoadPolygon(id, Backwards)
	require.NoError(t, err)
	bound := datastructure.PolygonBound(poly)
	assert.InDelta(t, 0, bound.Min[1], 1e-9)
	assert.InDelta(t, 7.5, bound.Max[1], 1e-9)
}

func TestRoadLanePolygons(t *testing.T) {
	m, _, _, id := twoIntersections(t)
	require.NoError(t, m.EditLanes(id, "dp/s"))

	lanes, err := m.RoadLanePolygons(id)
	require.NoError(t, err)
	require.Len(t, lanes, 3)

	expected := []struct {
		dir   Direction
		index int
		lane  lanespec.LaneType
		minY  float64
		maxY  float64
	}{
		{Forwards, 0, lanespec.Driving, 0, 2.5},
		{Forwards, 1, lanespec.Parking, 2.5, 5},
		{Backwards, 0, lanespec.Sidewalk, -2.5, 0},
	}
	for k, e := range expected {
		assert.Equal(t, e.dir, lanes[k].Direction)
		assert.Equal(t, e.index, lanes[k].Index)
		assert.Equal(t, e.lane, lanes[k].Lane)
		bound := datastructure.PolygonBound(lanes[k].Polygon)
		assert.InDelta(t, e.minY, bound.Min[1], 1e-9)
		assert.InDelta(t, e.maxY, bound.Max[1], 1e-9)
		assert.InDelta(t, 0, bound.Min[0], 1e-9)
		assert.InDelta(t, 100, bound.Max[0], 1e-9)
	}
}

func TestShapes(t *testing.T) {
	m, a, b, id := twoIntersections(t)
	circle, err := m.IntersectionCircle(a)
	require.NoError(t, err)
	assert.Equal(t, IntersectionRadius, circle.Radius)

	line, err := m.RoadCenterLine(id)
	require.NoError(t, err)
	assert.Len(t, line, 2)
	assert.Equal(t, 100.0, line[1][0])

	bid := m.CreateBuilding(datastructure.NewPt2D(10, 10))
	poly, err := m.BuildingPolygon(bid)
	require.NoError(t, err)
	bound := datastructure.PolygonBound(poly)
	assert.Equal(t, BuildingLength, bound.Max[0]-bound.Min[0])
	assert.Equal(t, BuildingLength, bound.Max[1]-bound.Min[1])

	require.NoError(t, m.RemoveRoad(id))
	_, err = m.RoadPolygon(id, Forwards)
	assert.ErrorIs(t, err, ErrEntityNotFound)
	_, err = m.IntersectionCircle(b + 10)
	assert.ErrorIs(t, err, ErrEntityNotFound)
}
