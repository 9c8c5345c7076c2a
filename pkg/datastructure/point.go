package datastructure

import (
	"math"

	"github.com/paulmach/orb"
)

// Pt2D is a point in the local frame, in meters. Y grows downwards (southwards).
type Pt2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func NewPt2D(x, y float64) Pt2D {
	return Pt2D{X: x, Y: y}
}

func (p Pt2D) DistTo(o Pt2D) float64 {
	return math.Hypot(p.X-o.X, p.Y-o.Y)
}

func (p Pt2D) Offset(dx, dy float64) Pt2D {
	return Pt2D{X: p.X + dx, Y: p.Y + dy}
}

func (p Pt2D) Orb() orb.Point {
	return orb.Point{p.X, p.Y}
}

func Pt2DFromOrb(p orb.Point) Pt2D {
	return Pt2D{X: p[0], Y: p[1]}
}

// CenterOf returns the average of pts. The zero point is returned for an empty slice.
func CenterOf(pts []Pt2D) Pt2D {
	if len(pts) == 0 {
		return Pt2D{}
	}
	var x, y float64
	for _, p := range pts {
		x += p.X
		y += p.Y
	}
	n := float64(len(pts))
	return Pt2D{X: x / n, Y: y / n}
}

type Circle struct {
	Center Pt2D
	Radius float64
}

func NewCircle(center Pt2D, radius float64) Circle {
	return Circle{Center: center, Radius: radius}
}

func (c Circle) Contains(p Pt2D) bool {
	return c.Center.DistTo(p) < c.Radius
}

func (c Circle) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{c.Center.X - c.Radius, c.Center.Y - c.Radius},
		Max: orb.Point{c.Center.X + c.Radius, c.Center.Y + c.Radius},
	}
}
