package synthetic

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEntityNotFound       = errors.New("entity not found")
	ErrReferentialIntegrity = errors.New("intersection is still used by roads")
	ErrRoadExists           = errors.New("road already exists")
	ErrSelfLoop             = errors.New("road endpoints must be different intersections")
	ErrUnnamedModel         = errors.New("model hasn't been named yet")
	ErrNegativeResidents    = errors.New("residents must not be negative")
	ErrInvalidSnapshot      = errors.New("invalid snapshot")
)

type EntityKind string

const (
	KindIntersection EntityKind = "intersection"
	KindRoad         EntityKind = "road"
	KindBuilding     EntityKind = "building"
)

type EntityNotFoundError struct {
	Kind EntityKind
	ID   string
}

func (e *EntityNotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func (e *EntityNotFoundError) Is(target error) bool {
	return target == ErrEntityNotFound
}

func intersectionNotFound(id IntersectionID) error {
	return &EntityNotFoundError{Kind: KindIntersection, ID: fmt.Sprint(int(id))}
}

func roadNotFound(id RoadID) error {
	return &EntityNotFoundError{Kind: KindRoad, ID: id.String()}
}

func buildingNotFound(id BuildingID) error {
	return &EntityNotFoundError{Kind: KindBuilding, ID: fmt.Sprint(int(id))}
}

// ReferentialIntegrityError rejects removing an intersection that roads still reference.
type ReferentialIntegrityError struct {
	Intersection IntersectionID
	Roads        []RoadID
}

func (e *ReferentialIntegrityError) Error() string {
	roads := make([]string, 0, len(e.Roads))
	for _, r := range e.Roads {
		roads = append(roads, r.String())
	}
	return fmt.Sprintf("can't delete intersection %d used by roads %s", e.Intersection, strings.Join(roads, ", "))
}

func (e *ReferentialIntegrityError) Is(target error) bool {
	return target == ErrReferentialIntegrity
}

// ImportWarning is a raw record that Import skipped or repaired.
type ImportWarning struct {
	Record string
	Index  int
	Err    error
}

func (w *ImportWarning) Error() string {
	return fmt.Sprintf("raw %s %d: %v", w.Record, w.Index, w.Err)
}

func (w *ImportWarning) Unwrap() error {
	return w.Err
}
