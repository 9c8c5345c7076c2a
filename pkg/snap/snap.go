// Package snap answers the model's hit tests from R-trees instead of a full scan. Results are the
// same as the model's own brute force queries.
package snap

import (
	"github.com/lintang-b-s/synthmap/pkg/datastructure"
	"github.com/lintang-b-s/synthmap/pkg/synthetic"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
)

const (
	minChildItems = 25
	maxChildItems = 50
	// half size of the query box around a point
	pointTolerance = 1e-6
)

// HitTester is implemented by *synthetic.Model (full scan) and *Index.
type HitTester interface {
	HitTestIntersection(p datastructure.Pt2D) (synthetic.IntersectionID, bool)
	HitTestBuilding(p datastructure.Pt2D) (synthetic.BuildingID, bool)
	HitTestRoad(p datastructure.Pt2D) (synthetic.RoadID, synthetic.Direction, bool)
}

type intersectionLeaf struct {
	id     synthetic.IntersectionID
	circle datastructure.Circle
	bound  rtreego.Rect
}

func (l *intersectionLeaf) Bounds() rtreego.Rect {
	return l.bound
}

type polygonLeaf struct {
	building synthetic.BuildingID
	road     synthetic.RoadID
	dir      synthetic.Direction
	poly     orb.Polygon
	bound    rtreego.Rect
}

func (l *polygonLeaf) Bounds() rtreego.Rect {
	return l.bound
}

type Index struct {
	intersections *rtreego.Rtree
	buildings     *rtreego.Rtree
	roads         *rtreego.Rtree
}

func rectOf(b orb.Bound) (rtreego.Rect, bool) {
	w, h := b.Max[0]-b.Min[0], b.Max[1]-b.Min[1]
	if !(w > 0) || !(h > 0) {
		return rtreego.Rect{}, false
	}
	r, err := rtreego.NewRect(rtreego.Point{b.Min[0], b.Min[1]}, []float64{w, h})
	if err != nil {
		return rtreego.Rect{}, false
	}
	return r, true
}

// Build indexes every shape of m. The index is a snapshot: rebuild it after editing m.
func Build(m *synthetic.Model) (*Index, error) {
	ix := &Index{
		intersections: rtreego.NewTree(2, minChildItems, maxChildItems),
		buildings:     rtreego.NewTree(2, minChildItems, maxChildItems),
		roads:         rtreego.NewTree(2, minChildItems, maxChildItems),
	}

	for _, id := range m.IntersectionIDs() {
		circle, err := m.IntersectionCircle(id)
		if err != nil {
			return nil, err
		}
		if rect, ok := rectOf(circle.Bound()); ok {
			ix.intersections.Insert(&intersectionLeaf{id: id, circle: circle, bound: rect})
		}
	}

	for _, id := range m.BuildingIDs() {
		poly, err := m.BuildingPolygon(id)
		if err != nil {
			return nil, err
		}
		if rect, ok := rectOf(datastructure.PolygonBound(poly)); ok {
			ix.buildings.Insert(&polygonLeaf{building: id, poly: poly, bound: rect})
		}
	}

	for _, id := range m.RoadIDs() {
		for _, dir := range []synthetic.Direction{synthetic.Forwards, synthetic.Backwards} {
			poly, err := m.RoadPolygon(id, dir)
			if err != nil {
				return nil, err
			}
			// a direction without lanes has no strip
			if rect, ok := rectOf(datastructure.PolygonBound(poly)); ok {
				ix.roads.Insert(&polygonLeaf{road: id, dir: dir, poly: poly, bound: rect})
			}
		}
	}
	return ix, nil
}

func (ix *Index) Size() int {
	return ix.intersections.Size() + ix.buildings.Size() + ix.roads.Size()
}

func query(p datastructure.Pt2D) rtreego.Rect {
	return rtreego.Point{p.X, p.Y}.ToRect(pointTolerance)
}

func (ix *Index) HitTestIntersection(p datastructure.Pt2D) (synthetic.IntersectionID, bool) {
	var (
		best  synthetic.IntersectionID
		found bool
	)
	for _, s := range ix.intersections.SearchIntersect(query(p)) {
		leaf := s.(*intersectionLeaf)
		if !leaf.circle.Contains(p) {
			continue
		}
		if !found || leaf.id < best {
			best, found = leaf.id, true
		}
	}
	return best, found
}

func (ix *Index) HitTestBuilding(p datastructure.Pt2D) (synthetic.BuildingID, bool) {
	var (
		best  synthetic.BuildingID
		found bool
	)
	for _, s := range ix.buildings.SearchIntersect(query(p)) {
		leaf := s.(*polygonLeaf)
		if !datastructure.PolygonContains(leaf.poly, p.Orb()) {
			continue
		}
		if !found || leaf.building < best {
			best, found = leaf.building, true
		}
	}
	return best, found
}

// HitTestRoad returns the lowest road id containing p, preferring its forward strip.
func (ix *Index) HitTestRoad(p datastructure.Pt2D) (synthetic.RoadID, synthetic.Direction, bool) {
	var (
		best    synthetic.RoadID
		bestDir synthetic.Direction
		found   bool
	)
	for _, s := range ix.roads.SearchIntersect(query(p)) {
		leaf := s.(*polygonLeaf)
		if !datastructure.PolygonContains(leaf.poly, p.Orb()) {
			continue
		}
		c := synthetic.CompareRoadIDs(leaf.road, best)
		if !found || c < 0 || (c == 0 && leaf.dir == synthetic.Forwards) {
			best, bestDir, found = leaf.road, leaf.dir, true
		}
	}
	return best, bestDir, found
}
