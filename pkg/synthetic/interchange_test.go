package synthetic

import (
	"testing"

	"github.com/lintang-b-s/synthmap/pkg/datastructure"
	"github.com/lintang-b-s/synthmap/pkg/geo"
	"github.com/lintang-b-s/synthmap/pkg/rawmap"

	"github.com/paulmach/osm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testBounds = geo.NewGPSBounds(6.14, 46.20, 6.15, 46.21)

func TestExport(t *testing.T) {
	m := populatedModel(t)
	raw, err := m.Export(testBounds)
	require.NoError(t, err)

	assert.Equal(t, "riverside", raw.Name)
	require.Len(t, raw.Roads, 2)
	require.Len(t, raw.Intersections, 3)
	require.Len(t, raw.Buildings, 2)

	ab := raw.Roads[0]
	assert.Equal(t, int64(1), ab.WayID)
	assert.Equal(t, "dpsb/", ab.Tags.Find(TagSyntheticLanes))
	assert.True(t, ab.ParkingLaneFwd)
	assert.False(t, ab.ParkingLaneBack)
	assert.False(t, ab.Tags.HasTag(TagFwdLabel))

	cb := raw.Roads[1]
	assert.Equal(t, int64(2), cb.WayID)
	assert.Equal(t, "quay", cb.Tags.Find(TagBackLabel))
	assert.Equal(t, osm.Tags{
		{Key: TagBackLabel, Value: "quay"},
		{Key: TagSyntheticLanes, Value: "dps/dps"},
	}, cb.Tags)

	pr, err := geo.NewProjector(testBounds)
	require.NoError(t, err)
	// cb was created c -> b, and keeps that order
	c, _ := m.IntersectionCenter(2)
	b, _ := m.IntersectionCenter(1)
	assert.Equal(t, []datastructure.Coordinate{pr.ToGPS(c), pr.ToGPS(b)}, cb.Points)

	i0 := raw.Intersections[0]
	assert.Equal(t, int64(0), i0.ID)
	assert.Equal(t, "bridge", i0.Label)
	assert.Equal(t, rawmap.TrafficSignal, raw.Intersections[1].Type)

	mill := raw.Buildings[0]
	assert.Equal(t, int64(3), mill.WayID)
	assert.Len(t, mill.Points, 4)
	assert.Equal(t, "mill", mill.Tags.Find(TagLabel))
	assert.Empty(t, raw.Buildings[1].Tags)

	_, err = m.Export(geo.NewGPSBounds(6.14, 46.20, 6.14, 46.21))
	assert.ErrorIs(t, err, geo.ErrDegenerateBounds)
}

func TestExportFile(t *testing.T) {
	dir := t.TempDir()
	m := populatedModel(t)
	path, raw, err := m.ExportFile(dir, testBounds)
	require.NoError(t, err)

	read, err := rawmap.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, raw.Name, read.Name)
	assert.Equal(t, raw.Roads, read.Roads)
	assert.Equal(t, raw.Intersections, read.Intersections)
	require.Len(t, read.Buildings, len(raw.Buildings))
	for k := range raw.Buildings {
		assert.Equal(t, raw.Buildings[k].Points, read.Buildings[k].Points)
		assert.Equal(t, len(raw.Buildings[k].Tags), len(read.Buildings[k].Tags))
	}

	_, _, err = NewModel().ExportFile(dir, testBounds)
	assert.ErrorIs(t, err, ErrUnnamedModel)
}

func TestImportAfterExport(t *testing.T) {
	m := populatedModel(t)
	raw, err := m.Export(testBounds)
	require.NoError(t, err)

	imported, warnings, err := Import(raw)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	assert.Equal(t, "riverside", imported.Name())
	assert.Equal(t, 3, imported.NumIntersections())
	assert.Equal(t, 2, imported.NumRoads())
	assert.Equal(t, 2, imported.NumBuildings())

	// intersections are renumbered densely, so the old 0, 1, 2 stay 0, 1, 2
	assert.Equal(t, []RoadID{{0, 1}, {1, 2}}, imported.RoadIDs())
	label, err := imported.GetIntersectionLabel(0)
	require.NoError(t, err)
	assert.Equal(t, "bridge", label)
	i1, err := imported.Intersection(1)
	require.NoError(t, err)
	assert.Equal(t, rawmap.TrafficSignal, i1.Type)

	// lanes and labels do not survive the trip
	for _, id := range imported.RoadIDs() {
		lanes, err := imported.GetLanes(id)
		require.NoError(t, err)
		assert.Equal(t, "dps/dps", lanes)
		back, _ := imported.GetRoadLabel(id, Backwards)
		assert.Equal(t, "", back)
	}
	b0, err := imported.Building(0)
	require.NoError(t, err)
	assert.Equal(t, "", b0.Label)

	// distances survive up to the change of bounds
	a, _ := imported.IntersectionCenter(0)
	b, _ := imported.IntersectionCenter(1)
	assert.InDelta(t, 180.125-12.5, a.DistTo(b), 0.5)
}

func TestImportWarnings(t *testing.T) {
	raw := rawmap.NewMap("broken")
	p := func(lat, lon float64) datastructure.Coordinate { return datastructure.NewCoordinate(lat, lon) }
	raw.Intersections = append(raw.Intersections,
		rawmap.NewIntersection(0, p(46.200, 6.140), rawmap.StopSign, ""),
		rawmap.NewIntersection(1, p(46.210, 6.150), "roundabout", ""),
		rawmap.NewIntersection(2, p(46.210, 6.150), rawmap.Border, ""),
	)
	raw.Roads = append(raw.Roads,
		rawmap.NewRoad(1, []datastructure.Coordinate{p(46.200, 6.140), p(46.210, 6.150)}, nil),
		rawmap.NewRoad(2, []datastructure.Coordinate{p(46.200, 6.140)}, nil),
		rawmap.NewRoad(3, []datastructure.Coordinate{p(46.200, 6.140), p(46.205, 6.145)}, nil),
		rawmap.NewRoad(4, []datastructure.Coordinate{p(46.210, 6.150), p(46.200, 6.140)}, nil),
	)
	raw.Buildings = append(raw.Buildings, rawmap.NewBuilding(5, nil, nil))

	m, warnings, err := Import(raw)
	require.NoError(t, err)
	require.Len(t, warnings, 6)

	assert.ErrorIs(t, warnings[0], ErrUnknownRawType)
	assert.ErrorIs(t, warnings[1], ErrDuplicatePoint)
	assert.ErrorIs(t, warnings[2], ErrTooFewPoints)
	assert.ErrorIs(t, warnings[3], ErrUnmatchedEndpoint)
	assert.ErrorIs(t, warnings[4], ErrRoadExists)
	assert.ErrorIs(t, warnings[5], ErrTooFewPoints)

	var iw *ImportWarning
	require.ErrorAs(t, warnings[3], &iw)
	assert.Equal(t, "road", iw.Record)
	assert.Equal(t, 2, iw.Index)

	assert.Equal(t, 3, m.NumIntersections())
	assert.Equal(t, []RoadID{{0, 1}}, m.RoadIDs())
	assert.Equal(t, 0, m.NumBuildings())
	i1, _ := m.Intersection(1)
	assert.Equal(t, rawmap.StopSign, i1.Type)
}

func TestImportDegenerateBounds(t *testing.T) {
	raw := rawmap.NewMap("dot")
	raw.Intersections = append(raw.Intersections,
		rawmap.NewIntersection(0, datastructure.NewCoordinate(46.2, 6.14), rawmap.StopSign, ""))
	_, _, err := Import(raw)
	assert.ErrorIs(t, err, geo.ErrDegenerateBounds)
}
