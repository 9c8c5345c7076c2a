package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/lintang-b-s/synthmap/pkg/datastructure"
	"github.com/lintang-b-s/synthmap/pkg/geo"
	"github.com/lintang-b-s/synthmap/pkg/kv"
	"github.com/lintang-b-s/synthmap/pkg/logger"
	"github.com/lintang-b-s/synthmap/pkg/rawmap"
	"github.com/lintang-b-s/synthmap/pkg/snap"
	"github.com/lintang-b-s/synthmap/pkg/synthetic"
)

var (
	ErrNoMapStore = errors.New("raw map store not configured")
)

type MapStore interface {
	PutRawMap(ctx context.Context, raw *rawmap.Map) error
	NearestIntersections(name string, lat, lon float64) ([]kv.NearbyIntersection, error)
}

type Config struct {
	MapsDir    string
	RawMapsDir string
	Bounds     geo.GPSBounds
	// SpatialIndex answers hit tests from an R-tree rebuilt after edits instead of a full scan.
	SpatialIndex bool
}

// EditorService owns the one model being edited. Every operation takes the lock, so edits are
// applied one at a time in arrival order.
type EditorService struct {
	mu    sync.Mutex
	model *synthetic.Model
	kv    MapStore
	cfg   Config

	index *snap.Index
	dirty bool
}

func NewEditorService(model *synthetic.Model, store MapStore, cfg Config) *EditorService {
	if model == nil {
		model = synthetic.NewModel()
	}
	return &EditorService{
		model: model,
		kv:    store,
		cfg:   cfg,
		dirty: true,
	}
}

type ModelSummary struct {
	Name          string                     `json:"name"`
	Intersections []synthetic.IntersectionID `json:"intersections"`
	Roads         []synthetic.RoadID         `json:"roads"`
	Buildings     []synthetic.BuildingID     `json:"buildings"`
}

func (s *EditorService) Summary() ModelSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ModelSummary{
		Name:          s.model.Name(),
		Intersections: s.model.IntersectionIDs(),
		Roads:         s.model.RoadIDs(),
		Buildings:     s.model.BuildingIDs(),
	}
}

func (s *EditorService) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.model.SetName(name)
}

func (s *EditorService) Save(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	path, err := s.model.Save(s.cfg.MapsDir)
	if err != nil {
		return "", err
	}
	logger.FromContext(ctx).Info("saved snapshot", "path", path)
	return path, nil
}

// Load replaces the edited model with the snapshot <maps dir>/<name>.json.
func (s *EditorService) Load(ctx context.Context, name string) error {
	if name == "" {
		return synthetic.ErrUnnamedModel
	}
	path := filepath.Join(s.cfg.MapsDir, name+synthetic.SnapshotExt)
	m, err := synthetic.Load(path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.replace(m)
	logger.FromContext(ctx).Info("loaded snapshot", "path", path,
		"intersections", m.NumIntersections(), "roads", m.NumRoads(), "buildings", m.NumBuildings())
	return nil
}

// Export writes the raw map file and, when a store is configured, stores the raw map in it.
func (s *EditorService) Export(ctx context.Context) (string, *rawmap.Map, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	path, raw, err := s.model.ExportFile(s.cfg.RawMapsDir, s.cfg.Bounds)
	if err != nil {
		return "", nil, err
	}
	if s.kv != nil {
		if err := s.kv.PutRawMap(ctx, raw); err != nil {
			return "", nil, fmt.Errorf("storing raw map %q: %w", raw.Name, err)
		}
	}
	logger.FromContext(ctx).Info("exported raw map", "path", path,
		"roads", len(raw.Roads), "intersections", len(raw.Intersections), "buildings", len(raw.Buildings))
	return path, raw, nil
}

// Import replaces the edited model with one rebuilt from <raw maps dir>/<name>.bin.
func (s *EditorService) Import(ctx context.Context, name string) ([]error, error) {
	if name == "" {
		return nil, synthetic.ErrUnnamedModel
	}
	m, warnings, err := synthetic.ImportFile(rawmap.Path(s.cfg.RawMapsDir, name))
	if err != nil {
		return nil, err
	}
	m.SetName(name)
	logger.Warnings(logger.FromContext(ctx), "import", warnings)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.replace(m)
	return warnings, nil
}

func (s *EditorService) replace(m *synthetic.Model) {
	s.model = m
	s.index = nil
	s.dirty = true
}

// edit runs fn under the lock and marks the spatial index stale when fn succeeds.
func (s *EditorService) edit(fn func(m *synthetic.Model) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fn(s.model); err != nil {
		return err
	}
	s.dirty = true
	return nil
}

func (s *EditorService) CreateIntersection(center datastructure.Pt2D) synthetic.IntersectionID {
	var id synthetic.IntersectionID
	s.edit(func(m *synthetic.Model) error {
		id = m.CreateIntersection(center)
		return nil
	})
	return id
}

func (s *EditorService) MoveIntersection(id synthetic.IntersectionID, center datastructure.Pt2D) error {
	return s.edit(func(m *synthetic.Model) error {
		return m.MoveIntersection(id, center)
	})
}

func (s *EditorService) SetIntersectionLabel(id synthetic.IntersectionID, label string) error {
	return s.edit(func(m *synthetic.Model) error {
		return m.SetIntersectionLabel(id, label)
	})
}

func (s *EditorService) ToggleIntersectionType(id synthetic.IntersectionID) (rawmap.IntersectionType, error) {
	var t rawmap.IntersectionType
	err := s.edit(func(m *synthetic.Model) error {
		var err error
		t, err = m.ToggleIntersectionType(id)
		return err
	})
	return t, err
}

func (s *EditorService) RemoveIntersection(id synthetic.IntersectionID) error {
	return s.edit(func(m *synthetic.Model) error {
		return m.RemoveIntersection(id)
	})
}

func (s *EditorService) CreateRoad(i1, i2 synthetic.IntersectionID) (synthetic.RoadID, error) {
	var id synthetic.RoadID
	err := s.edit(func(m *synthetic.Model) error {
		var err error
		id, err = m.CreateRoad(i1, i2)
		return err
	})
	return id, err
}

type RoadInfo struct {
	ID        synthetic.RoadID           `json:"id"`
	From      synthetic.IntersectionID   `json:"from"`
	To        synthetic.IntersectionID   `json:"to"`
	Lanes     string                     `json:"lanes"`
	FwdLabel  string                     `json:"fwd_label,omitempty"`
	BackLabel string                     `json:"back_label,omitempty"`
	Points    []datastructure.Coordinate `json:"points"`
	// Polyline is the google encoded polyline of Points.
	Polyline string `json:"polyline"`
}

// Road describes road id, with its center line in GPS coordinates of the configured bounds.
func (s *EditorService) Road(id synthetic.RoadID) (RoadInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.model.Road(id)
	if err != nil {
		return RoadInfo{}, err
	}
	line, err := s.model.RoadCenterLine(id)
	if err != nil {
		return RoadInfo{}, err
	}
	pr, err := geo.NewProjector(s.cfg.Bounds)
	if err != nil {
		return RoadInfo{}, err
	}
	pts := make([]datastructure.Coordinate, 0, len(line))
	for _, p := range line {
		pts = append(pts, pr.ToGPS(datastructure.Pt2DFromOrb(p)))
	}
	return RoadInfo{
		ID:        id,
		From:      r.I1,
		To:        r.I2,
		Lanes:     r.Lanes.String(),
		FwdLabel:  r.FwdLabel,
		BackLabel: r.BackLabel,
		Points:    pts,
		Polyline:  datastructure.CreatePolyline(pts),
	}, nil
}

func (s *EditorService) EditLanes(id synthetic.RoadID, spec string) error {
	return s.edit(func(m *synthetic.Model) error {
		return m.EditLanes(id, spec)
	})
}

func (s *EditorService) SwapLaneDirections(id synthetic.RoadID) error {
	return s.edit(func(m *synthetic.Model) error {
		return m.SwapLaneDirections(id)
	})
}

func (s *EditorService) SetRoadLabel(id synthetic.RoadID, dir synthetic.Direction, label string) error {
	return s.edit(func(m *synthetic.Model) error {
		return m.SetRoadLabel(id, dir, label)
	})
}

func (s *EditorService) RemoveRoad(id synthetic.RoadID) error {
	return s.edit(func(m *synthetic.Model) error {
		return m.RemoveRoad(id)
	})
}

func (s *EditorService) CreateBuilding(center datastructure.Pt2D) synthetic.BuildingID {
	var id synthetic.BuildingID
	s.edit(func(m *synthetic.Model) error {
		id = m.CreateBuilding(center)
		return nil
	})
	return id
}

func (s *EditorService) MoveBuilding(id synthetic.BuildingID, center datastructure.Pt2D) error {
	return s.edit(func(m *synthetic.Model) error {
		return m.MoveBuilding(id, center)
	})
}

func (s *EditorService) SetBuildingLabel(id synthetic.BuildingID, label string) error {
	return s.edit(func(m *synthetic.Model) error {
		return m.SetBuildingLabel(id, label)
	})
}

func (s *EditorService) RemoveBuilding(id synthetic.BuildingID) error {
	return s.edit(func(m *synthetic.Model) error {
		return m.RemoveBuilding(id)
	})
}

type HitKind string

const (
	HitNone         HitKind = "none"
	HitIntersection HitKind = "intersection"
	HitBuilding     HitKind = "building"
	HitRoad         HitKind = "road"
)

type HitResult struct {
	Kind         HitKind                   `json:"kind"`
	Intersection *synthetic.IntersectionID `json:"intersection,omitempty"`
	Building     *synthetic.BuildingID     `json:"building,omitempty"`
	Road         *synthetic.RoadID         `json:"road,omitempty"`
	Direction    string                    `json:"direction,omitempty"`
}

func (s *EditorService) hitTester(ctx context.Context) snap.HitTester {
	if !s.cfg.SpatialIndex {
		return s.model
	}
	if s.index == nil || s.dirty {
		p := logger.NewProgress(logger.FromContext(ctx))
		ix, err := snap.Build(s.model)
		if err != nil {
			logger.FromContext(ctx).Warn("spatial index build failed, using full scan", "err", err)
			return s.model
		}
		s.index = ix
		s.dirty = false
		p.Done("rebuilt spatial index", "entries", ix.Size())
	}
	return s.index
}

// HitTest reports what is under p, trying intersections, then buildings, then roads.
func (s *EditorService) HitTest(ctx context.Context, p datastructure.Pt2D) HitResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	ht := s.hitTester(ctx)

	if id, ok := ht.HitTestIntersection(p); ok {
		return HitResult{Kind: HitIntersection, Intersection: &id}
	}
	if id, ok := ht.HitTestBuilding(p); ok {
		return HitResult{Kind: HitBuilding, Building: &id}
	}
	if id, dir, ok := ht.HitTestRoad(p); ok {
		return HitResult{Kind: HitRoad, Road: &id, Direction: dir.String()}
	}
	return HitResult{Kind: HitNone}
}

// NearestIntersections looks up the last exported version of the edited map in the raw map store.
func (s *EditorService) NearestIntersections(ctx context.Context, lat, lon float64) ([]kv.NearbyIntersection, error) {
	if s.kv == nil {
		return nil, ErrNoMapStore
	}
	s.mu.Lock()
	name := s.model.Name()
	s.mu.Unlock()
	if name == "" {
		return nil, synthetic.ErrUnnamedModel
	}
	return s.kv.NearestIntersections(name, lat, lon)
}
