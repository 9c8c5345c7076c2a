package synthetic

import (
	"errors"
	"fmt"

	"github.com/lintang-b-s/synthmap/pkg/datastructure"
	"github.com/lintang-b-s/synthmap/pkg/geo"
	"github.com/lintang-b-s/synthmap/pkg/lanespec"
	"github.com/lintang-b-s/synthmap/pkg/rawmap"
	"github.com/lintang-b-s/synthmap/pkg/util"

	"github.com/paulmach/osm"
)

const (
	TagSyntheticLanes = "synthetic_lanes"
	TagFwdLabel       = "fwd_label"
	TagBackLabel      = "back_label"
	TagLabel          = "label"
)

// local frame points closer than a millimeter are the same point when matching road endpoints
const pointKeyPrecision = 3

var (
	ErrTooFewPoints      = errors.New("too few points")
	ErrUnmatchedEndpoint = errors.New("road endpoint matches no intersection")
	ErrDuplicatePoint    = errors.New("another intersection already sits at this point")
	ErrUnknownRawType    = errors.New("unknown intersection type, using stop sign")
)

type pointKey [2]float64

func keyOf(p datastructure.Pt2D) pointKey {
	return pointKey{util.RoundFloat(p.X, pointKeyPrecision), util.RoundFloat(p.Y, pointKeyPrecision)}
}

// Export lowers the model into raw interchange records, placing the local frame inside bounds.
// Roads lose their ids and keep only their endpoint positions; lanes and labels survive as tags.
// Road way ids count up from 1 in road id order, building way ids continue after the roads.
func (m *Model) Export(bounds geo.GPSBounds) (*rawmap.Map, error) {
	pr, err := geo.NewProjector(bounds)
	if err != nil {
		return nil, err
	}

	raw := rawmap.NewMap(m.name)

	wayID := int64(1)
	for _, id := range m.RoadIDs() {
		r := m.roads[id]
		from, to, err := m.endpoints(r)
		if err != nil {
			return nil, err
		}

		tags := osm.Tags{{Key: TagSyntheticLanes, Value: r.Lanes.String()}}
		if r.FwdLabel != "" {
			tags = append(tags, osm.Tag{Key: TagFwdLabel, Value: r.FwdLabel})
		}
		if r.BackLabel != "" {
			tags = append(tags, osm.Tag{Key: TagBackLabel, Value: r.BackLabel})
		}
		tags.SortByKeyValue()

		road := rawmap.NewRoad(wayID, []datastructure.Coordinate{pr.ToGPS(from), pr.ToGPS(to)}, tags)
		road.ParkingLaneFwd = r.Lanes.Has(true, lanespec.Parking)
		road.ParkingLaneBack = r.Lanes.Has(false, lanespec.Parking)
		raw.Roads = append(raw.Roads, road)
		wayID++
	}

	for _, id := range m.IntersectionIDs() {
		i := m.intersections[id]
		raw.Intersections = append(raw.Intersections,
			rawmap.NewIntersection(int64(id), pr.ToGPS(i.Center), i.Type, i.Label))
	}

	for _, id := range m.BuildingIDs() {
		b := m.buildings[id]
		corners := datastructure.PolygonPoints(b.Polygon())
		pts := make([]datastructure.Coordinate, 0, len(corners))
		for _, c := range corners {
			pts = append(pts, pr.ToGPS(datastructure.Pt2DFromOrb(c)))
		}
		tags := osm.Tags{}
		if b.Label != "" {
			tags = append(tags, osm.Tag{Key: TagLabel, Value: b.Label})
		}
		raw.Buildings = append(raw.Buildings, rawmap.NewBuilding(wayID, pts, tags))
		wayID++
	}

	return raw, nil
}

// ExportFile exports the model and writes it to <dir>/<name>.bin.
func (m *Model) ExportFile(dir string, bounds geo.GPSBounds) (string, *rawmap.Map, error) {
	if m.name == "" {
		return "", nil, ErrUnnamedModel
	}
	raw, err := m.Export(bounds)
	if err != nil {
		return "", nil, err
	}
	path, err := rawmap.WriteFile(dir, raw)
	if err != nil {
		return "", nil, err
	}
	return path, raw, nil
}

// Import rebuilds a model from raw records, projecting with bounds taken from the raw points
// themselves. It is not the inverse of Export: every road gets the default lanes and no labels, and
// buildings get no labels. Road endpoints are matched to intersections by position.
//
// Records that can't be rebuilt are skipped and reported in the returned warnings. The error is
// only set when the raw map has no usable bounds.
func Import(raw *rawmap.Map) (*Model, []error, error) {
	bounds, err := raw.GPSBounds()
	if err != nil {
		return nil, nil, fmt.Errorf("import %q: %w", raw.Name, err)
	}
	pr, err := geo.NewProjector(bounds)
	if err != nil {
		return nil, nil, fmt.Errorf("import %q: %w", raw.Name, err)
	}

	m := NewModel()
	m.name = raw.Name
	warnings := make([]error, 0)
	byPoint := make(map[pointKey]IntersectionID, len(raw.Intersections))

	for idx, ri := range raw.Intersections {
		center := pr.ToLocal(ri.Point)
		id := m.CreateIntersection(center)
		i := m.intersections[id]
		i.Label = ri.Label
		if ri.Type.Valid() {
			i.Type = ri.Type
		} else {
			warnings = append(warnings, &ImportWarning{Record: "intersection", Index: idx,
				Err: fmt.Errorf("%w: %q", ErrUnknownRawType, ri.Type)})
		}

		key := keyOf(center)
		if _, ok := byPoint[key]; ok {
			warnings = append(warnings, &ImportWarning{Record: "intersection", Index: idx, Err: ErrDuplicatePoint})
			continue
		}
		byPoint[key] = id
	}

	for idx, rr := range raw.Roads {
		if len(rr.Points) < 2 {
			warnings = append(warnings, &ImportWarning{Record: "road", Index: idx, Err: ErrTooFewPoints})
			continue
		}
		i1, ok1 := byPoint[keyOf(pr.ToLocal(rr.Points[0]))]
		i2, ok2 := byPoint[keyOf(pr.ToLocal(rr.Points[len(rr.Points)-1]))]
		if !ok1 || !ok2 {
			warnings = append(warnings, &ImportWarning{Record: "road", Index: idx, Err: ErrUnmatchedEndpoint})
			continue
		}
		if _, err := m.CreateRoad(i1, i2); err != nil {
			warnings = append(warnings, &ImportWarning{Record: "road", Index: idx, Err: err})
		}
	}

	for idx, rb := range raw.Buildings {
		if len(rb.Points) == 0 {
			warnings = append(warnings, &ImportWarning{Record: "building", Index: idx, Err: ErrTooFewPoints})
			continue
		}
		pts := make([]datastructure.Pt2D, 0, len(rb.Points))
		for _, c := range rb.Points {
			pts = append(pts, pr.ToLocal(c))
		}
		m.CreateBuilding(datastructure.CenterOf(pts))
	}

	return m, warnings, nil
}

// ImportFile reads a raw map file and imports it.
func ImportFile(path string) (*Model, []error, error) {
	raw, err := rawmap.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return Import(raw)
}
