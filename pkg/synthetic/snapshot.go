package synthetic

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lintang-b-s/synthmap/pkg/datastructure"
	"github.com/lintang-b-s/synthmap/pkg/lanespec"
	"github.com/lintang-b-s/synthmap/pkg/rawmap"
)

type snapshotIntersection struct {
	ID     IntersectionID          `json:"id"`
	Center datastructure.Pt2D      `json:"center"`
	Type   rawmap.IntersectionType `json:"intersection_type"`
	Label  string                  `json:"label,omitempty"`
}

type snapshotRoad struct {
	I1        IntersectionID    `json:"i1"`
	I2        IntersectionID    `json:"i2"`
	Lanes     lanespec.RoadSpec `json:"lanes"`
	FwdLabel  string            `json:"fwd_label,omitempty"`
	BackLabel string            `json:"back_label,omitempty"`
}

type snapshotBuilding struct {
	ID        BuildingID         `json:"id"`
	Center    datastructure.Pt2D `json:"center"`
	Label     string             `json:"label,omitempty"`
	Residents int                `json:"residents,omitempty"`
}

type snapshot struct {
	Name               string                 `json:"name,omitempty"`
	NextIntersectionID IntersectionID         `json:"next_intersection_id"`
	NextBuildingID     BuildingID             `json:"next_building_id"`
	Intersections      []snapshotIntersection `json:"intersections"`
	Roads              []snapshotRoad         `json:"roads"`
	Buildings          []snapshotBuilding     `json:"buildings"`
}

// MarshalJSON writes every entity in ascending id order, together with the id counters, so that
// loading the output reproduces an equal model.
func (m *Model) MarshalJSON() ([]byte, error) {
	s := snapshot{
		Name:               m.name,
		NextIntersectionID: m.nextIntersectionID,
		NextBuildingID:     m.nextBuildingID,
		Intersections:      make([]snapshotIntersection, 0, len(m.intersections)),
		Roads:              make([]snapshotRoad, 0, len(m.roads)),
		Buildings:          make([]snapshotBuilding, 0, len(m.buildings)),
	}
	for _, id := range m.IntersectionIDs() {
		i := m.intersections[id]
		s.Intersections = append(s.Intersections, snapshotIntersection{
			ID:     id,
			Center: i.Center,
			Type:   i.Type,
			Label:  i.Label,
		})
	}
	for _, id := range m.RoadIDs() {
		r := m.roads[id]
		s.Roads = append(s.Roads, snapshotRoad{
			I1:        r.I1,
			I2:        r.I2,
			Lanes:     r.Lanes,
			FwdLabel:  r.FwdLabel,
			BackLabel: r.BackLabel,
		})
	}
	for _, id := range m.BuildingIDs() {
		b := m.buildings[id]
		s.Buildings = append(s.Buildings, snapshotBuilding{
			ID:        id,
			Center:    b.Center,
			Label:     b.Label,
			Residents: b.Residents,
		})
	}
	return json.Marshal(s)
}

// UnmarshalJSON rebuilds the model and rejects snapshots that break its invariants. On error m is
// left unchanged.
func (m *Model) UnmarshalJSON(data []byte) error {
	var s snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	out := NewModel()
	out.name = s.Name
	out.nextIntersectionID = s.NextIntersectionID
	out.nextBuildingID = s.NextBuildingID

	for _, si := range s.Intersections {
		if si.ID < 0 || si.ID >= s.NextIntersectionID {
			return fmt.Errorf("%w: intersection id %d outside [0, %d)", ErrInvalidSnapshot, si.ID, s.NextIntersectionID)
		}
		if _, ok := out.intersections[si.ID]; ok {
			return fmt.Errorf("%w: duplicate intersection %d", ErrInvalidSnapshot, si.ID)
		}
		if !si.Type.Valid() {
			return fmt.Errorf("%w: intersection %d has unknown type %q", ErrInvalidSnapshot, si.ID, si.Type)
		}
		out.intersections[si.ID] = &Intersection{
			Center: si.Center,
			Type:   si.Type,
			Label:  si.Label,
		}
	}

	for _, sr := range s.Roads {
		id := NewRoadID(sr.I1, sr.I2)
		if sr.I1 == sr.I2 {
			return fmt.Errorf("%w: road %s: %w", ErrInvalidSnapshot, id, ErrSelfLoop)
		}
		if _, ok := out.intersections[sr.I1]; !ok {
			return fmt.Errorf("%w: road %s references missing intersection %d", ErrInvalidSnapshot, id, sr.I1)
		}
		if _, ok := out.intersections[sr.I2]; !ok {
			return fmt.Errorf("%w: road %s references missing intersection %d", ErrInvalidSnapshot, id, sr.I2)
		}
		if _, ok := out.roads[id]; ok {
			return fmt.Errorf("%w: duplicate road %s", ErrInvalidSnapshot, id)
		}
		out.roads[id] = &Road{
			I1:        sr.I1,
			I2:        sr.I2,
			Lanes:     sr.Lanes,
			FwdLabel:  sr.FwdLabel,
			BackLabel: sr.BackLabel,
		}
	}

	for _, sb := range s.Buildings {
		if sb.ID < 0 || sb.ID >= s.NextBuildingID {
			return fmt.Errorf("%w: building id %d outside [0, %d)", ErrInvalidSnapshot, sb.ID, s.NextBuildingID)
		}
		if _, ok := out.buildings[sb.ID]; ok {
			return fmt.Errorf("%w: duplicate building %d", ErrInvalidSnapshot, sb.ID)
		}
		if sb.Residents < 0 {
			return fmt.Errorf("%w: building %d: %w", ErrInvalidSnapshot, sb.ID, ErrNegativeResidents)
		}
		out.buildings[sb.ID] = &Building{
			Center:    sb.Center,
			Label:     sb.Label,
			Residents: sb.Residents,
		}
	}

	*m = *out
	return nil
}

// Save writes the snapshot to <dir>/<name>.json and returns the path.
func (m *Model) Save(dir string) (string, error) {
	path, err := m.SnapshotPath(dir)
	if err != nil {
		return "", err
	}
	if err := m.SaveFile(path); err != nil {
		return "", err
	}
	return path, nil
}

// SaveFile writes the snapshot to path. Unlike Save it does not need a model name.
func (m *Model) SaveFile(path string) error {
	bb, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, bb, 0o644); err != nil {
		return fmt.Errorf("saving %s failed: %w", path, err)
	}
	return nil
}

func Load(path string) (*Model, error) {
	bb, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s failed: %w", path, err)
	}
	m := NewModel()
	if err := json.Unmarshal(bb, m); err != nil {
		if !errors.Is(err, ErrInvalidSnapshot) {
			err = fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
		}
		return nil, fmt.Errorf("loading %s failed: %w", path, err)
	}
	return m, nil
}
