package kv

import (
	"github.com/lintang-b-s/synthmap/pkg/rawmap"

	"github.com/kelindar/binary"
)

// KVIntersection is the value stored per H3 cell: every intersection of one map inside the cell.
type KVIntersection struct {
	ID    int64
	Lat   float64
	Lon   float64
	Type  string
	Label string
}

func newKVIntersection(i rawmap.Intersection) KVIntersection {
	return KVIntersection{
		ID:    i.ID,
		Lat:   i.Point.Lat,
		Lon:   i.Point.Lon,
		Type:  string(i.Type),
		Label: i.Label,
	}
}

func encodeIntersections(is []KVIntersection) ([]byte, error) {
	return binary.Marshal(is)
}

func loadIntersections(bb []byte) ([]KVIntersection, error) {
	var is []KVIntersection
	if len(bb) == 0 {
		return is, nil
	}
	err := binary.Unmarshal(bb, &is)
	return is, err
}

func encodeRawMap(m *rawmap.Map) ([]byte, error) {
	bb, err := rawmap.Encode(m)
	if err != nil {
		return nil, err
	}
	return compress(bb)
}

func loadRawMap(bbCompressed []byte) (*rawmap.Map, error) {
	bb, err := decompress(bbCompressed)
	if err != nil {
		return nil, err
	}
	return rawmap.Decode(bb)
}
