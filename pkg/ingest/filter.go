package ingest

import (
	"github.com/lintang-b-s/synthmap/pkg/datastructure"

	"github.com/paulmach/orb"
)

// FilterByBoundary keeps the regions with at least one vertex strictly inside boundary and
// discards the rest.
//
// Only vertices are tested. A region whose edges cross the boundary without any of its vertices
// inside, or one that swallows the whole boundary, is discarded too.
func FilterByBoundary(boundary orb.Polygon, regions []Region) (kept, discarded []Region) {
	kept = make([]Region, 0, len(regions))
	discarded = make([]Region, 0)
	for _, r := range regions {
		if anyVertexInside(boundary, r.Polygon) {
			kept = append(kept, r)
		} else {
			discarded = append(discarded, r)
		}
	}
	return kept, discarded
}

func anyVertexInside(boundary, poly orb.Polygon) bool {
	for _, p := range datastructure.PolygonPoints(poly) {
		if datastructure.PolygonContainsStrict(boundary, p) {
			return true
		}
	}
	return false
}
