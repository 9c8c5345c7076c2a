package synthetic

import (
	"github.com/lintang-b-s/synthmap/pkg/datastructure"
	"github.com/lintang-b-s/synthmap/pkg/lanespec"

	"github.com/paulmach/orb"
)

// LanePolygon is the strip covered by one lane of a road.
type LanePolygon struct {
	Direction Direction
	// Index counts outwards from the center line, starting at 0 in each direction.
	Index   int
	Lane    lanespec.LaneType
	Polygon orb.Polygon
}

func (i Intersection) Circle() datastructure.Circle {
	return datastructure.NewCircle(i.Center, IntersectionRadius)
}

func (b Building) Polygon() orb.Polygon {
	return datastructure.Rectangle(b.Center, BuildingLength, BuildingLength)
}

// roadStrip covers every lane of one direction: forward lanes sit right of the i1 -> i2 center line,
// backward lanes left of it.
func roadStrip(from, to datastructure.Pt2D, lanes lanespec.RoadSpec, dir Direction) orb.Polygon {
	width := LaneThickness * float64(len(lanes.Lanes(bool(dir))))
	if dir == Forwards {
		return datastructure.ThickLine(from, to, width/2, width)
	}
	return datastructure.ThickLine(from, to, -width/2, width)
}

func (m *Model) endpoints(r *Road) (datastructure.Pt2D, datastructure.Pt2D, error) {
	i1, err := m.intersection(r.I1)
	if err != nil {
		return datastructure.Pt2D{}, datastructure.Pt2D{}, err
	}
	i2, err := m.intersection(r.I2)
	if err != nil {
		return datastructure.Pt2D{}, datastructure.Pt2D{}, err
	}
	return i1.Center, i2.Center, nil
}

func (m *Model) IntersectionCircle(id IntersectionID) (datastructure.Circle, error) {
	i, err := m.intersection(id)
	if err != nil {
		return datastructure.Circle{}, err
	}
	return i.Circle(), nil
}

func (m *Model) BuildingPolygon(id BuildingID) (orb.Polygon, error) {
	b, err := m.building(id)
	if err != nil {
		return nil, err
	}
	return b.Polygon(), nil
}

// RoadPolygon is the hit region of one direction of a road. A direction without lanes has an
// empty polygon.
func (m *Model) RoadPolygon(id RoadID, dir Direction) (orb.Polygon, error) {
	r, err := m.road(id)
	if err != nil {
		return nil, err
	}
	from, to, err := m.endpoints(r)
	if err != nil {
		return nil, err
	}
	return roadStrip(from, to, r.Lanes, dir), nil
}

// RoadLanePolygons returns one strip per lane, forward lanes first, each direction ordered outwards
// from the center line.
func (m *Model) RoadLanePolygons(id RoadID) ([]LanePolygon, error) {
	r, err := m.road(id)
	if err != nil {
		return nil, err
	}
	from, to, err := m.endpoints(r)
	if err != nil {
		return nil, err
	}

	out := make([]LanePolygon, 0, len(r.Lanes.Fwd)+len(r.Lanes.Back))
	for idx, lt := range r.Lanes.Fwd {
		shift := (float64(idx) + 0.5) * LaneThickness
		out = append(out, LanePolygon{
			Direction: Forwards,
			Index:     idx,
			Lane:      lt,
			Polygon:   datastructure.ThickLine(from, to, shift, LaneThickness),
		})
	}
	for idx, lt := range r.Lanes.Back {
		shift := (float64(idx) + 0.5) * LaneThickness
		out = append(out, LanePolygon{
			Direction: Backwards,
			Index:     idx,
			Lane:      lt,
			Polygon:   datastructure.ThickLine(from, to, -shift, LaneThickness),
		})
	}
	return out, nil
}

func (m *Model) RoadCenterLine(id RoadID) (orb.LineString, error) {
	r, err := m.road(id)
	if err != nil {
		return nil, err
	}
	from, to, err := m.endpoints(r)
	if err != nil {
		return nil, err
	}
	return orb.LineString{from.Orb(), to.Orb()}, nil
}

// HitTestIntersection returns the lowest id intersection whose circle contains p.
func (m *Model) HitTestIntersection(p datastructure.Pt2D) (IntersectionID, bool) {
	for _, id := range m.IntersectionIDs() {
		if m.intersections[id].Circle().Contains(p) {
			return id, true
		}
	}
	return 0, false
}

// HitTestBuilding returns the lowest id building whose footprint contains p.
func (m *Model) HitTestBuilding(p datastructure.Pt2D) (BuildingID, bool) {
	for _, id := range m.BuildingIDs() {
		if datastructure.PolygonContains(m.buildings[id].Polygon(), p.Orb()) {
			return id, true
		}
	}
	return 0, false
}

// HitTestRoad scans roads in ascending id order, testing the forward strip before the backward one.
func (m *Model) HitTestRoad(p datastructure.Pt2D) (RoadID, Direction, bool) {
	pt := p.Orb()
	for _, id := range m.RoadIDs() {
		r := m.roads[id]
		from, to, err := m.endpoints(r)
		if err != nil {
			continue
		}
		for _, dir := range []Direction{Forwards, Backwards} {
			if datastructure.PolygonContains(roadStrip(from, to, r.Lanes, dir), pt) {
				return id, dir, true
			}
		}
	}
	return RoadID{}, Forwards, false
}
