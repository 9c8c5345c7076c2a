package synthetic

import (
	"fmt"

	"github.com/lintang-b-s/synthmap/pkg/lanespec"
)

// CreateRoad connects two existing intersections with the default lanes. The road's forward
// direction runs from i1 to i2.
func (m *Model) CreateRoad(i1, i2 IntersectionID) (RoadID, error) {
	id := NewRoadID(i1, i2)
	if i1 == i2 {
		return id, fmt.Errorf("road %s: %w", id, ErrSelfLoop)
	}
	if _, err := m.intersection(i1); err != nil {
		return id, err
	}
	if _, err := m.intersection(i2); err != nil {
		return id, err
	}
	if _, ok := m.roads[id]; ok {
		return id, fmt.Errorf("road %s: %w", id, ErrRoadExists)
	}

	m.roads[id] = &Road{
		I1:    i1,
		I2:    i2,
		Lanes: lanespec.DefaultRoadSpec(),
	}
	return id, nil
}

// EditLanes replaces the road's lanes with the parsed spec. A spec that doesn't parse leaves the
// road unchanged and the lanespec.ParseError is returned.
func (m *Model) EditLanes(id RoadID, spec string) error {
	r, err := m.road(id)
	if err != nil {
		return err
	}
	lanes, err := lanespec.Parse(spec)
	if err != nil {
		return err
	}
	r.Lanes = lanes
	return nil
}

func (m *Model) SwapLaneDirections(id RoadID) error {
	r, err := m.road(id)
	if err != nil {
		return err
	}
	r.Lanes = r.Lanes.Swapped()
	return nil
}

func (m *Model) GetLanes(id RoadID) (string, error) {
	r, err := m.road(id)
	if err != nil {
		return "", err
	}
	return r.Lanes.String(), nil
}

func (m *Model) SetRoadLabel(id RoadID, dir Direction, label string) error {
	r, err := m.road(id)
	if err != nil {
		return err
	}
	if dir == Forwards {
		r.FwdLabel = label
	} else {
		r.BackLabel = label
	}
	return nil
}

func (m *Model) GetRoadLabel(id RoadID, dir Direction) (string, error) {
	r, err := m.road(id)
	if err != nil {
		return "", err
	}
	return r.Label(dir), nil
}

func (m *Model) RemoveRoad(id RoadID) error {
	if _, err := m.road(id); err != nil {
		return err
	}
	delete(m.roads, NewRoadID(id.I1, id.I2))
	return nil
}
