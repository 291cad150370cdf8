package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec is a 2D point or displacement. Index 0 is x, index 1 is y.
// World coordinates grow to the right and downward.
type Vec = mgl64.Vec2

// Axis identifies one of the two coordinate axes
type Axis int

const (
	AxisX Axis = iota
	AxisY
)

// Other returns the perpendicular axis
func (a Axis) Other() Axis {
	return 1 - a
}

func (a Axis) String() string {
	if a == AxisX {
		return "x"
	}
	return "y"
}

// Rect is an axis-aligned box given by its top-left corner and its size
type Rect struct {
	X, Y, W, H float64
}

// AABB (Axis-Aligned Bounding Box) represents a rectangular boundary
type AABB struct {
	Min, Max Vec
}

// Pos returns the box origin along axis
func (r Rect) Pos(axis Axis) float64 {
	if axis == AxisX {
		return r.X
	}
	return r.Y
}

// Size returns the box extent along axis
func (r Rect) Size(axis Axis) float64 {
	if axis == AxisX {
		return r.W
	}
	return r.H
}

// Translate returns the box moved by d
func (r Rect) Translate(d Vec) Rect {
	return Rect{X: r.X + d[0], Y: r.Y + d[1], W: r.W, H: r.H}
}

// Union returns the smallest box containing both r and o
func (r Rect) Union(o Rect) Rect {
	minX := math.Min(r.X, o.X)
	minY := math.Min(r.Y, o.Y)
	maxX := math.Max(r.X+r.W, o.X+o.W)
	maxY := math.Max(r.Y+r.H, o.Y+o.H)
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// Overlaps reports whether the interiors of r and o intersect.
// Boxes that only share an edge or a corner do not overlap.
func (r Rect) Overlaps(o Rect) bool {
	return !(r.X >= o.X+o.W || r.X+r.W <= o.X) &&
		!(o.Y >= r.Y+r.H || o.Y+o.H <= r.Y)
}

// OverlapArea returns the area r and o share, 0 when they only touch
func (r Rect) OverlapArea(o Rect) float64 {
	w := math.Min(r.X+r.W, o.X+o.W) - math.Max(r.X, o.X)
	h := math.Min(r.Y+r.H, o.Y+o.H) - math.Max(r.Y, o.Y)
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// Area returns w*h
func (r Rect) Area() float64 {
	return r.W * r.H
}

// AABB converts the box to min/max form
func (r Rect) AABB() AABB {
	return AABB{
		Min: Vec{r.X, r.Y},
		Max: Vec{r.X + r.W, r.Y + r.H},
	}
}

// Rect converts the box to origin/size form
func (b AABB) Rect() Rect {
	return Rect{X: b.Min[0], Y: b.Min[1], W: b.Max[0] - b.Min[0], H: b.Max[1] - b.Min[1]}
}

// BoundingBox returns the union of boxes. ok is false for an empty slice.
func BoundingBox(boxes []Rect) (box Rect, ok bool) {
	if len(boxes) == 0 {
		return Rect{}, false
	}
	box = boxes[0]
	for _, b := range boxes[1:] {
		box = box.Union(b)
	}
	return box, true
}

// Sign returns -1, 0 or 1
func Sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
