package synthetic

import "github.com/lintang-b-s/synthmap/pkg/datastructure"

func (m *Model) CreateBuilding(center datastructure.Pt2D) BuildingID {
	id := m.nextBuildingID
	m.nextBuildingID++
	m.buildings[id] = &Building{Center: center}
	return id
}

func (m *Model) MoveBuilding(id BuildingID, center datastructure.Pt2D) error {
	b, err := m.building(id)
	if err != nil {
		return err
	}
	b.Center = center
	return nil
}

func (m *Model) SetBuildingLabel(id BuildingID, label string) error {
	b, err := m.building(id)
	if err != nil {
		return err
	}
	b.Label = label
	return nil
}

func (m *Model) GetBuildingLabel(id BuildingID) (string, error) {
	b, err := m.building(id)
	if err != nil {
		return "", err
	}
	return b.Label, nil
}

func (m *Model) SetBuildingResidents(id BuildingID, residents int) error {
	if residents < 0 {
		return ErrNegativeResidents
	}
	b, err := m.building(id)
	if err != nil {
		return err
	}
	b.Residents = residents
	return nil
}

func (m *Model) RemoveBuilding(id BuildingID) error {
	if _, err := m.building(id); err != nil {
		return err
	}
	delete(m.buildings, id)
	return nil
}
