package ingest

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedGeometry = errors.New("unsupported geometry")
	ErrFilteredOut         = errors.New("no vertex inside the map boundary")
	ErrUnknownDocumentType = errors.New("unknown geojson type")
)

// featureRef names a feature in warnings: its position in the document and, if it has one, its id.
type featureRef struct {
	Index int
	ID    any
}

func (f featureRef) String() string {
	if f.ID != nil {
		return fmt.Sprintf("feature %d (id %v)", f.Index, f.ID)
	}
	return fmt.Sprintf("feature %d", f.Index)
}

// DocumentReadError is returned when the source file can't be read. Ingestion stops.
type DocumentReadError struct {
	Path string
	Err  error
}

func (e *DocumentReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *DocumentReadError) Unwrap() error {
	return e.Err
}

// DocumentParseError is returned for a document that isn't valid GeoJSON. Ingestion stops.
type DocumentParseError struct {
	Path string
	Err  error
}

func (e *DocumentParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("parse geojson: %v", e.Err)
	}
	return fmt.Sprintf("parse geojson %s: %v", e.Path, e.Err)
}

func (e *DocumentParseError) Unwrap() error {
	return e.Err
}

// UnsupportedGeometryError is a warning: the feature's geometry isn't a Polygon and was skipped.
type UnsupportedGeometryError struct {
	featureRef
	GeometryType string
}

func (e *UnsupportedGeometryError) Error() string {
	return fmt.Sprintf("%s: %s is not a polygon, skipped", e.featureRef, e.GeometryType)
}

func (e *UnsupportedGeometryError) Is(target error) bool {
	return target == ErrUnsupportedGeometry
}

// RingConstructionError is a warning: one ring of the feature was degenerate and the feature was
// skipped.
type RingConstructionError struct {
	featureRef
	Ring int
	Err  error
}

func (e *RingConstructionError) Error() string {
	return fmt.Sprintf("%s ring %d: %v", e.featureRef, e.Ring, e.Err)
}

func (e *RingConstructionError) Unwrap() error {
	return e.Err
}

// FilteredOutWarning reports a region dropped by the boundary filter.
type FilteredOutWarning struct {
	featureRef
}

func (e *FilteredOutWarning) Error() string {
	return fmt.Sprintf("%s: no vertex inside the map boundary, discarded", e.featureRef)
}

func (e *FilteredOutWarning) Is(target error) bool {
	return target == ErrFilteredOut
}
