package tileccd

import (
	"math/rand"

	"tileccd/internal/body"
	"tileccd/internal/core"
)

// Vector and rect utility functions

// Vec creates a new 2D vector
func Vec(x, y float64) core.Vec {
	return core.Vec{x, y}
}

// NewRect creates a rect from its top-left corner and size
func NewRect(x, y, w, h float64) core.Rect {
	return core.Rect{X: x, Y: y, W: w, H: h}
}

// RectFromCenterSize creates a rect from center point and size
func RectFromCenterSize(center core.Vec, w, h float64) core.Rect {
	return core.Rect{X: center[0] - w/2, Y: center[1] - h/2, W: w, H: h}
}

// RectCenter returns the center point of a rect
func RectCenter(r core.Rect) core.Vec {
	return core.Vec{r.X + r.W/2, r.Y + r.H/2}
}

// RectContains checks if a rect contains a point
func RectContains(r core.Rect, p core.Vec) bool {
	return p[0] >= r.X && p[0] <= r.X+r.W && p[1] >= r.Y && p[1] <= r.Y+r.H
}

// Body utility functions

// NewPlayer creates a w x h player body falling under gravity
func NewPlayer(pos core.Vec, w, h, gravity float64) *body.Mover {
	m := body.NewMover(core.KindPlayer, pos, body.Box(w, h))
	m.Acc = core.Vec{0, gravity}
	return m
}

// NewNPC creates a walker that paces at speed and falls under gravity
func NewNPC(pos core.Vec, size, speed, gravity float64) *body.Walker {
	w := body.NewWalker(pos, speed, body.Box(size, size))
	w.Acc = core.Vec{0, gravity}
	return w
}

// NewProjectile creates a small body flying at vel that bounces off walls
func NewProjectile(pos, vel core.Vec, size, bounce float64) *body.Mover {
	m := body.NewMover(core.KindProjectile, pos, body.Box(size, size))
	m.Vel = vel
	m.Bounce = bounce
	return m
}

// Random utility functions

// RandomPosition generates a random position within r
func RandomPosition(rng *rand.Rand, r core.Rect) core.Vec {
	return core.Vec{r.X + rng.Float64()*r.W, r.Y + rng.Float64()*r.H}
}
