package datastructure

import (
	"errors"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

var (
	ErrRingTooFewPoints     = errors.New("ring needs at least 3 distinct points")
	ErrRingSelfIntersecting = errors.New("ring intersects itself")
	ErrRingZeroArea         = errors.New("ring has zero area")
)

// NewRing validates pts as one polygon contour and returns it closed (first point repeated at the
// end). Consecutive duplicate points are dropped first.
func NewRing(pts []orb.Point) (orb.Ring, error) {
	open := make([]orb.Point, 0, len(pts))
	for _, p := range pts {
		if len(open) > 0 && open[len(open)-1] == p {
			continue
		}
		open = append(open, p)
	}
	if len(open) > 1 && open[0] == open[len(open)-1] {
		open = open[:len(open)-1]
	}
	if len(open) < 3 {
		return nil, ErrRingTooFewPoints
	}

	ring := make(orb.Ring, 0, len(open)+1)
	ring = append(ring, open...)
	ring = append(ring, open[0])

	if selfIntersecting(ring) {
		return nil, ErrRingSelfIntersecting
	}
	if math.Abs(planar.Area(ring)) == 0 {
		return nil, ErrRingZeroArea
	}
	return ring, nil
}

// selfIntersecting checks every pair of non adjacent edges of a closed ring. Quadratic, the rings
// we build are region outlines with at most a few thousand points.
func selfIntersecting(r orb.Ring) bool {
	edges := len(r) - 1
	for i := 0; i < edges; i++ {
		for j := i + 1; j < edges; j++ {
			if j == i+1 || (i == 0 && j == edges-1) {
				continue
			}
			if segmentsIntersect(r[i], r[i+1], r[j], r[j+1]) {
				return true
			}
		}
	}
	return false
}

func orientation(a, b, c orb.Point) float64 {
	return (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
}

func segmentsIntersect(p1, p2, q1, q2 orb.Point) bool {
	d1 := orientation(q1, q2, p1)
	d2 := orientation(q1, q2, p2)
	d3 := orientation(p1, p2, q1)
	d4 := orientation(p1, p2, q2)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) && ((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	return (d1 == 0 && onSegment(q1, q2, p1)) ||
		(d2 == 0 && onSegment(q1, q2, p2)) ||
		(d3 == 0 && onSegment(p1, p2, q1)) ||
		(d4 == 0 && onSegment(p1, p2, q2))
}
