// Package rawmap holds the flat, point-keyed interchange records handed to the downstream map
// builder. Roads and buildings reference nothing by id; their endpoints are plain GPS points.
package rawmap

import (
	"github.com/lintang-b-s/synthmap/pkg/datastructure"
	"github.com/lintang-b-s/synthmap/pkg/geo"

	"github.com/paulmach/osm"
)

type IntersectionType string

const (
	StopSign      IntersectionType = "stop_sign"
	TrafficSignal IntersectionType = "traffic_signal"
	Border        IntersectionType = "border"
)

func (t IntersectionType) Valid() bool {
	switch t {
	case StopSign, TrafficSignal, Border:
		return true
	}
	return false
}

type Road struct {
	WayID           int64
	Points          []datastructure.Coordinate
	Tags            osm.Tags
	ParkingLaneFwd  bool
	ParkingLaneBack bool
}

type Intersection struct {
	ID    int64
	Point datastructure.Coordinate
	Type  IntersectionType
	Label string
}

type Building struct {
	WayID  int64
	Points []datastructure.Coordinate
	Tags   osm.Tags
}

type Map struct {
	Name          string
	Roads         []Road
	Intersections []Intersection
	Buildings     []Building
}

func NewMap(name string) *Map {
	return &Map{
		Name:          name,
		Roads:         make([]Road, 0),
		Intersections: make([]Intersection, 0),
		Buildings:     make([]Building, 0),
	}
}

func NewRoad(wayID int64, points []datastructure.Coordinate, tags osm.Tags) Road {
	return Road{
		WayID:  wayID,
		Points: points,
		Tags:   tags,
	}
}

func NewIntersection(id int64, point datastructure.Coordinate, t IntersectionType, label string) Intersection {
	return Intersection{
		ID:    id,
		Point: point,
		Type:  t,
		Label: label,
	}
}

func NewBuilding(wayID int64, points []datastructure.Coordinate, tags osm.Tags) Building {
	return Building{
		WayID:  wayID,
		Points: points,
		Tags:   tags,
	}
}

// Points returns every coordinate referenced by the map: intersections, then road points, then
// building points.
func (m *Map) Points() []datastructure.Coordinate {
	n := len(m.Intersections)
	for _, r := range m.Roads {
		n += len(r.Points)
	}
	for _, b := range m.Buildings {
		n += len(b.Points)
	}

	pts := make([]datastructure.Coordinate, 0, n)
	for _, i := range m.Intersections {
		pts = append(pts, i.Point)
	}
	for _, r := range m.Roads {
		pts = append(pts, r.Points...)
	}
	for _, b := range m.Buildings {
		pts = append(pts, b.Points...)
	}
	return pts
}

// GPSBounds is the bounding box of every point in the map. A map with fewer than two distinct
// latitudes or longitudes has degenerate bounds and returns an error.
func (m *Map) GPSBounds() (geo.GPSBounds, error) {
	return geo.BoundsFromCoordinates(m.Points())
}
