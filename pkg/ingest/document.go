package ingest

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/paulmach/orb/geojson"
)

// ReadDocument reads a GeoJSON file holding a FeatureCollection, a single Feature or a bare
// Geometry, and returns its features in document order.
func ReadDocument(path string) ([]*geojson.Feature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &DocumentReadError{Path: path, Err: err}
	}
	features, err := ParseDocument(data)
	if err != nil {
		if perr, ok := err.(*DocumentParseError); ok {
			perr.Path = path
		}
		return nil, err
	}
	return features, nil
}

func ParseDocument(data []byte) ([]*geojson.Feature, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, &DocumentParseError{Err: err}
	}

	switch head.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, &DocumentParseError{Err: err}
		}
		return fc.Features, nil
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, &DocumentParseError{Err: err}
		}
		return []*geojson.Feature{f}, nil
	case "Point", "MultiPoint", "LineString", "MultiLineString", "Polygon", "MultiPolygon", "GeometryCollection":
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, &DocumentParseError{Err: err}
		}
		return []*geojson.Feature{geojson.NewFeature(g.Geometry())}, nil
	}
	return nil, &DocumentParseError{Err: fmt.Errorf("%w %q", ErrUnknownDocumentType, head.Type)}
}
