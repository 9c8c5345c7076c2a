package datastructure

import (
	"math"

	"github.com/paulmach/orb"
)

const boundaryEpsilon = 1e-9

// Rectangle returns an axis aligned width x height polygon centered on center.
func Rectangle(center Pt2D, width, height float64) orb.Polygon {
	hw, hh := width/2, height/2
	return orb.Polygon{orb.Ring{
		{center.X - hw, center.Y - hh},
		{center.X + hw, center.Y - hh},
		{center.X + hw, center.Y + hh},
		{center.X - hw, center.Y + hh},
		{center.X - hw, center.Y - hh},
	}}
}

// ThickLine returns the width-thick strip along the segment from->to, after shifting the segment
// sideways by shift. Positive shift moves to the right of the travel direction, negative to the left.
// An empty polygon is returned for a zero length segment or a non positive width.
func ThickLine(from, to Pt2D, shift, width float64) orb.Polygon {
	length := from.DistTo(to)
	if length == 0 || width <= 0 {
		return orb.Polygon{}
	}
	dx, dy := (to.X-from.X)/length, (to.Y-from.Y)/length
	// right hand normal in a y-down frame
	nx, ny := -dy, dx

	a := from.Offset(nx*shift, ny*shift)
	b := to.Offset(nx*shift, ny*shift)
	hw := width / 2
	return orb.Polygon{orb.Ring{
		{a.X + nx*hw, a.Y + ny*hw},
		{b.X + nx*hw, b.Y + ny*hw},
		{b.X - nx*hw, b.Y - ny*hw},
		{a.X - nx*hw, a.Y - ny*hw},
		{a.X + nx*hw, a.Y + ny*hw},
	}}
}

// TranslatePolygon returns a copy of poly moved by (dx, dy).
func TranslatePolygon(poly orb.Polygon, dx, dy float64) orb.Polygon {
	out := make(orb.Polygon, 0, len(poly))
	for _, r := range poly {
		moved := make(orb.Ring, 0, len(r))
		for _, p := range r {
			moved = append(moved, orb.Point{p[0] + dx, p[1] + dy})
		}
		out = append(out, moved)
	}
	return out
}

// PolygonPoints returns every vertex of poly, skipping the closing point of each ring.
func PolygonPoints(poly orb.Polygon) []orb.Point {
	pts := make([]orb.Point, 0)
	for _, r := range poly {
		n := len(r)
		if n > 1 && r[0] == r[n-1] {
			n--
		}
		pts = append(pts, r[:n]...)
	}
	return pts
}

// PolygonBound is the bounding box of the outer ring.
func PolygonBound(poly orb.Polygon) orb.Bound {
	if len(poly) == 0 {
		return orb.Bound{}
	}
	return poly[0].Bound()
}

// PolygonContains reports whether p is inside poly or on its outer boundary, and not strictly
// inside one of its holes.
func PolygonContains(poly orb.Polygon, p orb.Point) bool {
	if len(poly) == 0 || !RingContains(poly[0], p) {
		return false
	}
	for _, hole := range poly[1:] {
		if RingContainsStrict(hole, p) {
			return false
		}
	}
	return true
}

// PolygonContainsStrict reports whether p lies in the interior of poly: strictly inside the outer
// ring and neither inside nor on the boundary of any hole.
func PolygonContainsStrict(poly orb.Polygon, p orb.Point) bool {
	if len(poly) == 0 || !RingContainsStrict(poly[0], p) {
		return false
	}
	for _, hole := range poly[1:] {
		if RingContains(hole, p) {
			return false
		}
	}
	return true
}

// RingContains is point in ring with the boundary counted as inside.
func RingContains(r orb.Ring, p orb.Point) bool {
	if onRingBoundary(r, p) {
		return true
	}
	return crossingInside(r, p)
}

// RingContainsStrict is point in ring with the boundary counted as outside.
func RingContainsStrict(r orb.Ring, p orb.Point) bool {
	if onRingBoundary(r, p) {
		return false
	}
	return crossingInside(r, p)
}

// crossingInside is the even-odd ray casting test. Works on open and closed rings.
func crossingInside(r orb.Ring, p orb.Point) bool {
	inside := false
	n := len(r)
	if n < 3 {
		return false
	}
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := r[i][0], r[i][1]
		xj, yj := r[j][0], r[j][1]
		if (yi > p[1]) != (yj > p[1]) && p[0] < (xj-xi)*(p[1]-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

func onRingBoundary(r orb.Ring, p orb.Point) bool {
	n := len(r)
	for i := 0; i < n; i++ {
		a := r[i]
		b := r[(i+1)%n]
		if onSegment(a, b, p) {
			return true
		}
	}
	return false
}

func onSegment(a, b, p orb.Point) bool {
	cross := (b[0]-a[0])*(p[1]-a[1]) - (b[1]-a[1])*(p[0]-a[0])
	scale := math.Max(1, math.Hypot(b[0]-a[0], b[1]-a[1]))
	if math.Abs(cross) > boundaryEpsilon*scale {
		return false
	}
	return p[0] >= math.Min(a[0], b[0])-boundaryEpsilon && p[0] <= math.Max(a[0], b[0])+boundaryEpsilon &&
		p[1] >= math.Min(a[1], b[1])-boundaryEpsilon && p[1] <= math.Max(a[1], b[1])+boundaryEpsilon
}
