// Package lanespec encodes the lane composition of a road as text. One character per lane, the
// forward lanes first, then '/', then the backward lanes, each direction listed from the center line
// outwards. "dps/dps" is a driving, parking and sidewalk lane in both directions.
package lanespec

import (
	"errors"
	"fmt"
	"strings"
)

type LaneType int

const (
	Driving LaneType = iota
	Parking
	Sidewalk
	Biking
	Bus
)

var laneChars = map[LaneType]rune{
	Driving:  'd',
	Parking:  'p',
	Sidewalk: 's',
	Biking:   'b',
	Bus:      'u',
}

var charLanes = map[rune]LaneType{
	'd': Driving,
	'p': Parking,
	's': Sidewalk,
	'b': Biking,
	'u': Bus,
}

func (lt LaneType) String() string {
	switch lt {
	case Driving:
		return "driving"
	case Parking:
		return "parking"
	case Sidewalk:
		return "sidewalk"
	case Biking:
		return "biking"
	case Bus:
		return "bus"
	default:
		return fmt.Sprintf("LaneType(%d)", int(lt))
	}
}

// AllLaneTypes lists every lane type the codec knows, in a stable order.
func AllLaneTypes() []LaneType {
	return []LaneType{Driving, Parking, Sidewalk, Biking, Bus}
}

const directionSeparator = '/'

var (
	ErrInvalidSpec = errors.New("invalid lane spec")
)

type ParseError struct {
	Input  string
	Pos    int
	Reason string
}

func (e *ParseError) Error() string {
	if e.Pos < 0 {
		return fmt.Sprintf("invalid lane spec %q: %s", e.Input, e.Reason)
	}
	return fmt.Sprintf("invalid lane spec %q at %d: %s", e.Input, e.Pos, e.Reason)
}

func (e *ParseError) Is(target error) bool {
	return target == ErrInvalidSpec
}

// RoadSpec is the ordered lane composition of both directions of a road.
type RoadSpec struct {
	Fwd  []LaneType
	Back []LaneType
}

// DefaultRoadSpec is a driving, parking and sidewalk lane in each direction.
func DefaultRoadSpec() RoadSpec {
	return RoadSpec{
		Fwd:  []LaneType{Driving, Parking, Sidewalk},
		Back: []LaneType{Driving, Parking, Sidewalk},
	}
}

// Parse decodes s. Exactly one '/' is required and at least one lane overall.
func Parse(s string) (RoadSpec, error) {
	fwd := make([]LaneType, 0, len(s))
	back := make([]LaneType, 0, len(s))
	seenSlash := false

	for i, c := range s {
		if c == directionSeparator {
			if seenSlash {
				return RoadSpec{}, &ParseError{Input: s, Pos: i, Reason: "more than one '/'"}
			}
			seenSlash = true
			continue
		}
		lt, ok := charLanes[c]
		if !ok {
			return RoadSpec{}, &ParseError{Input: s, Pos: i, Reason: fmt.Sprintf("unknown lane %q", c)}
		}
		if seenSlash {
			back = append(back, lt)
		} else {
			fwd = append(fwd, lt)
		}
	}

	if !seenSlash {
		return RoadSpec{}, &ParseError{Input: s, Pos: -1, Reason: "missing '/' between directions"}
	}
	if len(fwd)+len(back) == 0 {
		return RoadSpec{}, &ParseError{Input: s, Pos: -1, Reason: "no lanes"}
	}
	return RoadSpec{Fwd: fwd, Back: back}, nil
}

func (r RoadSpec) String() string {
	var sb strings.Builder
	sb.Grow(len(r.Fwd) + len(r.Back) + 1)
	for _, lt := range r.Fwd {
		sb.WriteRune(laneChars[lt])
	}
	sb.WriteRune(directionSeparator)
	for _, lt := range r.Back {
		sb.WriteRune(laneChars[lt])
	}
	return sb.String()
}

// Swapped returns r with the forward and backward lanes exchanged.
func (r RoadSpec) Swapped() RoadSpec {
	return RoadSpec{Fwd: r.Back, Back: r.Fwd}
}

func (r RoadSpec) Lanes(forward bool) []LaneType {
	if forward {
		return r.Fwd
	}
	return r.Back
}

// Has reports whether the given direction has at least one lane of type lt.
func (r RoadSpec) Has(forward bool, lt LaneType) bool {
	for _, l := range r.Lanes(forward) {
		if l == lt {
			return true
		}
	}
	return false
}

// Clone deep copies the lane slices.
func (r RoadSpec) Clone() RoadSpec {
	return RoadSpec{
		Fwd:  append(make([]LaneType, 0, len(r.Fwd)), r.Fwd...),
		Back: append(make([]LaneType, 0, len(r.Back)), r.Back...),
	}
}

// MarshalText encodes the spec with the compact form, so snapshots stay readable.
func (r RoadSpec) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *RoadSpec) UnmarshalText(text []byte) error {
	spec, err := Parse(string(text))
	if err != nil {
		return err
	}
	*r = spec
	return nil
}
