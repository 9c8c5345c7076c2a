package synthetic

import (
	"github.com/lintang-b-s/synthmap/pkg/datastructure"
	"github.com/lintang-b-s/synthmap/pkg/rawmap"
)

// CreateIntersection adds a stop sign intersection at center and returns its id.
func (m *Model) CreateIntersection(center datastructure.Pt2D) IntersectionID {
	id := m.nextIntersectionID
	m.nextIntersectionID++
	m.intersections[id] = &Intersection{
		Center: center,
		Type:   rawmap.StopSign,
	}
	return id
}

func (m *Model) MoveIntersection(id IntersectionID, center datastructure.Pt2D) error {
	i, err := m.intersection(id)
	if err != nil {
		return err
	}
	i.Center = center
	return nil
}

func (m *Model) SetIntersectionLabel(id IntersectionID, label string) error {
	i, err := m.intersection(id)
	if err != nil {
		return err
	}
	i.Label = label
	return nil
}

func (m *Model) GetIntersectionLabel(id IntersectionID) (string, error) {
	i, err := m.intersection(id)
	if err != nil {
		return "", err
	}
	return i.Label, nil
}

func (m *Model) IntersectionCenter(id IntersectionID) (datastructure.Pt2D, error) {
	i, err := m.intersection(id)
	if err != nil {
		return datastructure.Pt2D{}, err
	}
	return i.Center, nil
}

// ToggleIntersectionType cycles stop sign -> traffic signal -> border -> stop sign. The border step
// only applies to dead ends: a traffic signal touched by anything other than exactly one road goes
// back to a stop sign.
func (m *Model) ToggleIntersectionType(id IntersectionID) (rawmap.IntersectionType, error) {
	i, err := m.intersection(id)
	if err != nil {
		return "", err
	}

	switch i.Type {
	case rawmap.StopSign:
		i.Type = rawmap.TrafficSignal
	case rawmap.TrafficSignal:
		if len(m.RoadsAt(id)) == 1 {
			i.Type = rawmap.Border
		} else {
			i.Type = rawmap.StopSign
		}
	default:
		i.Type = rawmap.StopSign
	}
	return i.Type, nil
}

// RemoveIntersection fails with a ReferentialIntegrityError, leaving the model untouched, while any
// road still references id.
func (m *Model) RemoveIntersection(id IntersectionID) error {
	if _, err := m.intersection(id); err != nil {
		return err
	}
	if roads := m.RoadsAt(id); len(roads) > 0 {
		return &ReferentialIntegrityError{Intersection: id, Roads: roads}
	}
	delete(m.intersections, id)
	return nil
}
