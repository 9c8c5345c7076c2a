package synthetic

import (
	"cmp"
	"fmt"
)

type IntersectionID int

type BuildingID int

// RoadID is the unordered pair of a road's endpoints, stored with I1 < I2.
type RoadID struct {
	I1 IntersectionID `json:"i1"`
	I2 IntersectionID `json:"i2"`
}

// NewRoadID canonicalizes the pair, so NewRoadID(a, b) == NewRoadID(b, a).
func NewRoadID(a, b IntersectionID) RoadID {
	if b < a {
		a, b = b, a
	}
	return RoadID{I1: a, I2: b}
}

func (r RoadID) String() string {
	return fmt.Sprintf("(%d, %d)", r.I1, r.I2)
}

// Touches reports whether i is one of the road's endpoints.
func (r RoadID) Touches(i IntersectionID) bool {
	return r.I1 == i || r.I2 == i
}

func CompareRoadIDs(a, b RoadID) int {
	if c := cmp.Compare(a.I1, b.I1); c != 0 {
		return c
	}
	return cmp.Compare(a.I2, b.I2)
}

// Direction of travel along a road: Forwards goes from the road's first intersection to its second,
// in creation order.
type Direction bool

const (
	Forwards  Direction = true
	Backwards Direction = false
)

func (d Direction) String() string {
	if d == Forwards {
		return "forwards"
	}
	return "backwards"
}

func ParseDirection(s string) (Direction, error) {
	switch s {
	case "forwards", "fwd", "forward":
		return Forwards, nil
	case "backwards", "back", "backward":
		return Backwards, nil
	}
	return Forwards, fmt.Errorf("unknown direction %q", s)
}
