package rawmap

import (
	"bytes"
	"encoding/xml"
	"path/filepath"
	"testing"

	"github.com/lintang-b-s/synthmap/pkg/datastructure"

	"github.com/paulmach/osm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleMap() *Map {
	a := datastructure.NewCoordinate(46.201, 6.141)
	b := datastructure.NewCoordinate(46.205, 6.148)
	m := NewMap("sample")
	m.Intersections = append(m.Intersections,
		NewIntersection(0, a, StopSign, "north"),
		NewIntersection(1, b, TrafficSignal, "south"),
	)
	road := NewRoad(1, []datastructure.Coordinate{a, b}, osm.Tags{
		{Key: "synthetic_lanes", Value: "dps/dps"},
		{Key: "fwd_label", Value: "main"},
	})
	road.ParkingLaneFwd = true
	road.ParkingLaneBack = true
	m.Roads = append(m.Roads, road)
	m.Buildings = append(m.Buildings, NewBuilding(2, []datastructure.Coordinate{
		datastructure.NewCoordinate(46.2021, 6.1431),
		datastructure.NewCoordinate(46.2021, 6.1435),
		datastructure.NewCoordinate(46.2024, 6.1435),
		datastructure.NewCoordinate(46.2024, 6.1431),
	}, osm.Tags{{Key: "label", Value: "school"}}))
	return m
}

func TestEncodeDecode(t *testing.T) {
	m := sampleMap()
	bb, err := Encode(m)
	require.NoError(t, err)

	got, err := Decode(bb)
	require.NoError(t, err)
	assert.Equal(t, m, got)
}

func TestWriteReadFile(t *testing.T) {
	dir := t.TempDir()
	m := sampleMap()

	path, err := WriteFile(dir, m)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "sample.bin"), path)

	got, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, m, got)

	_, err = ReadFile(filepath.Join(dir, "missing.bin"))
	assert.Error(t, err)
}

func TestWriteFileNeedsName(t *testing.T) {
	m := sampleMap()
	m.Name = ""
	_, err := WriteFile(t.TempDir(), m)
	assert.ErrorIs(t, err, ErrEmptyName)
}

func TestReadGarbage(t *testing.T) {
	_, err := Read(bytes.NewReader([]byte("definitely not zstd")))
	assert.Error(t, err)
}

func TestGPSBounds(t *testing.T) {
	m := sampleMap()
	b, err := m.GPSBounds()
	require.NoError(t, err)
	assert.InDelta(t, 46.201, b.MinLat, 1e-9)
	assert.InDelta(t, 46.205, b.MaxLat, 1e-9)
	assert.InDelta(t, 6.141, b.MinLon, 1e-9)
	assert.InDelta(t, 6.148, b.MaxLon, 1e-9)

	_, err = NewMap("empty").GPSBounds()
	assert.Error(t, err)
}

func TestIntersectionTypeValid(t *testing.T) {
	assert.True(t, StopSign.Valid())
	assert.True(t, TrafficSignal.Valid())
	assert.True(t, Border.Valid())
	assert.False(t, IntersectionType("roundabout").Valid())
}

func TestToOSM(t *testing.T) {
	o := sampleMap().ToOSM()

	// 2 intersections, 4 building corners; road endpoints reuse the intersection nodes
	assert.Len(t, o.Nodes, 6)
	assert.Len(t, o.Ways, 2)
	require.NotNil(t, o.Bounds)

	assert.Equal(t, osm.NodeID(1), o.Nodes[0].ID)
	assert.Equal(t, "stop", o.Nodes[0].Tags.Find("highway"))
	assert.Equal(t, "north", o.Nodes[0].Tags.Find("name"))
	assert.Equal(t, "traffic_signals", o.Nodes[1].Tags.Find("highway"))

	road := o.Ways[0]
	assert.Equal(t, osm.WayID(1), road.ID)
	require.Len(t, road.Nodes, 2)
	assert.Equal(t, osm.NodeID(1), road.Nodes[0].ID)
	assert.Equal(t, osm.NodeID(2), road.Nodes[1].ID)
	assert.Equal(t, "dps/dps", road.Tags.Find("synthetic_lanes"))
	assert.Equal(t, "residential", road.Tags.Find("highway"))
	assert.Equal(t, "parallel", road.Tags.Find("parking:lane:both"))

	building := o.Ways[1]
	assert.Equal(t, osm.WayID(2), building.ID)
	require.Len(t, building.Nodes, 5)
	assert.Equal(t, building.Nodes[0].ID, building.Nodes[4].ID)
	assert.Equal(t, "yes", building.Tags.Find("building"))
	assert.Equal(t, "school", building.Tags.Find("label"))
}

func TestWriteOSM(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sampleMap().WriteOSM(&buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte(xml.Header)))

	var o osm.OSM
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &o))
	assert.Len(t, o.Nodes, 6)
	assert.Len(t, o.Ways, 2)
}
