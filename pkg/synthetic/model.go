// Package synthetic is the editable graph of a hand drawn map: intersections, the roads between
// them and buildings, all positioned in the local frame (meters, y pointing south).
//
// A Model has no internal locking. Callers sharing one across goroutines serialize access.
package synthetic

import (
	"path/filepath"

	"github.com/lintang-b-s/synthmap/pkg/datastructure"
	"github.com/lintang-b-s/synthmap/pkg/lanespec"
	"github.com/lintang-b-s/synthmap/pkg/rawmap"
	"github.com/lintang-b-s/synthmap/pkg/util"
)

const (
	IntersectionRadius = 10.0
	BuildingLength     = 30.0
	LaneThickness      = 2.5
)

const (
	SnapshotExt = ".json"
)

type Intersection struct {
	Center datastructure.Pt2D
	Type   rawmap.IntersectionType
	Label  string
}

// Road references its endpoints by id. I1 and I2 keep the order the road was created with and
// define its forward direction.
type Road struct {
	I1        IntersectionID
	I2        IntersectionID
	Lanes     lanespec.RoadSpec
	FwdLabel  string
	BackLabel string
}

func (r Road) ID() RoadID {
	return NewRoadID(r.I1, r.I2)
}

func (r Road) Label(dir Direction) string {
	if dir == Forwards {
		return r.FwdLabel
	}
	return r.BackLabel
}

type Building struct {
	Center    datastructure.Pt2D
	Label     string
	Residents int
}

type Model struct {
	name          string
	intersections map[IntersectionID]*Intersection
	roads         map[RoadID]*Road
	buildings     map[BuildingID]*Building

	// ids are never handed out twice, even after deletions
	nextIntersectionID IntersectionID
	nextBuildingID     BuildingID
}

func NewModel() *Model {
	return &Model{
		intersections: make(map[IntersectionID]*Intersection),
		roads:         make(map[RoadID]*Road),
		buildings:     make(map[BuildingID]*Building),
	}
}

func (m *Model) Name() string {
	return m.name
}

func (m *Model) SetName(name string) {
	m.name = name
}

// SnapshotPath is <dir>/<name>.json.
func (m *Model) SnapshotPath(dir string) (string, error) {
	if m.name == "" {
		return "", ErrUnnamedModel
	}
	return filepath.Join(dir, m.name+SnapshotExt), nil
}

// RawPath is <dir>/<name>.bin.
func (m *Model) RawPath(dir string) (string, error) {
	if m.name == "" {
		return "", ErrUnnamedModel
	}
	return rawmap.Path(dir, m.name), nil
}

func (m *Model) NumIntersections() int {
	return len(m.intersections)
}

func (m *Model) NumRoads() int {
	return len(m.roads)
}

func (m *Model) NumBuildings() int {
	return len(m.buildings)
}

// IntersectionIDs, RoadIDs and BuildingIDs return ids in ascending order, the order every scan over
// the model uses.
func (m *Model) IntersectionIDs() []IntersectionID {
	return util.SortedKeys(m.intersections)
}

func (m *Model) RoadIDs() []RoadID {
	return util.SortedKeysFunc(m.roads, CompareRoadIDs)
}

func (m *Model) BuildingIDs() []BuildingID {
	return util.SortedKeys(m.buildings)
}

func (m *Model) Intersection(id IntersectionID) (Intersection, error) {
	i, ok := m.intersections[id]
	if !ok {
		return Intersection{}, intersectionNotFound(id)
	}
	return *i, nil
}

func (m *Model) Road(id RoadID) (Road, error) {
	r, ok := m.roads[NewRoadID(id.I1, id.I2)]
	if !ok {
		return Road{}, roadNotFound(id)
	}
	out := *r
	out.Lanes = r.Lanes.Clone()
	return out, nil
}

func (m *Model) Building(id BuildingID) (Building, error) {
	b, ok := m.buildings[id]
	if !ok {
		return Building{}, buildingNotFound(id)
	}
	return *b, nil
}

// RoadsAt returns the roads touching intersection i, in ascending order.
func (m *Model) RoadsAt(i IntersectionID) []RoadID {
	roads := make([]RoadID, 0)
	for _, id := range m.RoadIDs() {
		if id.Touches(i) {
			roads = append(roads, id)
		}
	}
	return roads
}

func (m *Model) intersection(id IntersectionID) (*Intersection, error) {
	i, ok := m.intersections[id]
	if !ok {
		return nil, intersectionNotFound(id)
	}
	return i, nil
}

func (m *Model) road(id RoadID) (*Road, error) {
	r, ok := m.roads[NewRoadID(id.I1, id.I2)]
	if !ok {
		return nil, roadNotFound(id)
	}
	return r, nil
}

func (m *Model) building(id BuildingID) (*Building, error) {
	b, ok := m.buildings[id]
	if !ok {
		return nil, buildingNotFound(id)
	}
	return b, nil
}
