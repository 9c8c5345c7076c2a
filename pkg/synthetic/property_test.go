package synthetic

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/lintang-b-s/synthmap/pkg/datastructure"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

var laneSpecs = []string{"dps/dps", "d/", "/s", "dd/pp", "bus/bus", "x/"}

// applyOp decodes one random operation from v and runs it against m. It reports false if the
// operation broke an invariant it can observe directly.
func applyOp(m *Model, v int) bool {
	kind := v % 9
	a := (v / 9) % 7
	b := (v / 63) % 7

	pickIntersection := func(k int) (IntersectionID, bool) {
		ids := m.IntersectionIDs()
		if len(ids) == 0 {
			return 0, false
		}
		return ids[k%len(ids)], true
	}
	pickRoad := func(k int) (RoadID, bool) {
		ids := m.RoadIDs()
		if len(ids) == 0 {
			return RoadID{}, false
		}
		return ids[k%len(ids)], true
	}

	switch kind {
	case 0, 1:
		m.CreateIntersection(datastructure.NewPt2D(float64(a)*37.5, float64(b)*12.25))
	case 2:
		i1, ok1 := pickIntersection(a)
		i2, ok2 := pickIntersection(b)
		if ok1 && ok2 {
			m.CreateRoad(i1, i2)
		}
	case 3:
		if id, ok := pickIntersection(a); ok {
			referenced := len(m.RoadsAt(id)) > 0
			err := m.RemoveIntersection(id)
			_, stillThere := m.intersections[id]
			if referenced {
				return errors.Is(err, ErrReferentialIntegrity) && stillThere
			}
			return err == nil && !stillThere
		}
	case 4:
		if id, ok := pickRoad(a); ok {
			m.RemoveRoad(id)
		}
	case 5:
		if id, ok := pickIntersection(a); ok {
			m.ToggleIntersectionType(id)
			m.SetIntersectionLabel(id, laneSpecs[b%len(laneSpecs)])
		}
	case 6:
		if id, ok := pickRoad(a); ok {
			m.EditLanes(id, laneSpecs[b%len(laneSpecs)])
			if b%2 == 0 {
				m.SwapLaneDirections(id)
			}
			m.SetRoadLabel(id, Direction(b%2 == 0), "label")
		}
	case 7:
		id := m.CreateBuilding(datastructure.NewPt2D(float64(b)*3.5, float64(a)*7))
		m.SetBuildingResidents(id, a)
	case 8:
		ids := m.BuildingIDs()
		if len(ids) > 0 {
			m.RemoveBuilding(ids[a%len(ids)])
		}
	}
	return true
}

func integrityHolds(m *Model) bool {
	for id, r := range m.roads {
		if id != NewRoadID(r.I1, r.I2) {
			return false
		}
		if _, ok := m.intersections[r.I1]; !ok {
			return false
		}
		if _, ok := m.intersections[r.I2]; !ok {
			return false
		}
	}
	return true
}

func TestModelProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	ops := gen.SliceOfN(60, gen.IntRange(0, 9*7*7-1))

	properties.Property("every road endpoint exists after every operation", prop.ForAll(
		func(seq []int) bool {
			m := NewModel()
			for _, v := range seq {
				if !applyOp(m, v) || !integrityHolds(m) {
					return false
				}
			}
			return true
		},
		ops,
	))

	properties.Property("create_road(a, b) and create_road(b, a) are the same road", prop.ForAll(
		func(a, b int) bool {
			if a == b {
				return true
			}
			m := NewModel()
			for k := 0; k < 10; k++ {
				m.CreateIntersection(datastructure.NewPt2D(float64(k)*20, 0))
			}
			first, err := m.CreateRoad(IntersectionID(a), IntersectionID(b))
			if err != nil {
				return false
			}
			second, err := m.CreateRoad(IntersectionID(b), IntersectionID(a))
			if !errors.Is(err, ErrRoadExists) || first != second {
				return false
			}
			forward, _ := m.GetLanes(NewRoadID(IntersectionID(a), IntersectionID(b)))
			backward, _ := m.GetLanes(NewRoadID(IntersectionID(b), IntersectionID(a)))
			return m.NumRoads() == 1 && forward == backward
		},
		gen.IntRange(0, 9),
		gen.IntRange(0, 9),
	))

	properties.Property("load(save(m)) == m", prop.ForAll(
		func(seq []int) bool {
			m := NewModel()
			m.SetName("prop")
			for _, v := range seq {
				applyOp(m, v)
			}
			bb, err := json.Marshal(m)
			if err != nil {
				return false
			}
			loaded := NewModel()
			if err := json.Unmarshal(bb, loaded); err != nil {
				return false
			}
			return reflect.DeepEqual(m, loaded)
		},
		ops,
	))

	properties.TestingRun(t)
}
