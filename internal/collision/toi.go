package collision

import (
	"fmt"
	"math"

	"tileccd/internal/core"
)

// Edge is one side of a hitbox at the start of the step
type Edge struct {
	Point  core.Vec  // end of the edge with the smaller coordinate along Axis
	Axis   core.Axis // axis the edge runs along
	Length float64
}

// Bound is where two edges meet at the time of impact
type Bound struct {
	Point  core.Vec // Point[Axis.Other()] is the contact line
	Axis   core.Axis
	Length float64
}

// Impact is the result of testing two moving edges against each other
type Impact struct {
	// Time is the fraction of the step at which the edges meet.
	// +Inf when they never do.
	Time float64
	// Overlap is the shared length of the two edges at Time
	Overlap float64
	Bound   Bound
	// Hit is false when no contact exists; Bound is then meaningless
	Hit bool
}

var noImpact = Impact{Time: math.Inf(1)}

// Intersect computes when edge a moving by da meets edge b moving by db along the
// axis perpendicular to both edges.
//
// With ignoreBounds the time is not restricted to the step; a negative time is then
// folded to 1+|t| so contacts that began before the step sort after the in-step ones.
// Otherwise times outside [0, 1] produce no impact.
//
// Edges on different axes are a wiring error and panic.
func Intersect(a Edge, da core.Vec, b Edge, db core.Vec, ignoreBounds bool) Impact {
	if a.Axis != b.Axis {
		panic(fmt.Sprintf("collision: edge axes do not match (%v vs %v)", a.Axis, b.Axis))
	}

	ax := a.Axis
	op := ax.Other()

	t := (b.Point[op] - a.Point[op]) / (da[op] - db[op])
	if math.IsInf(t, 0) {
		// no relative motion and apart
		return noImpact
	}
	if math.IsNaN(t) {
		// 0/0: the edges coincide and keep pace, handle right away
		t = 0
	}

	lo := a.Point[ax] + da[ax]*t
	lo2 := b.Point[ax] + db[ax]*t
	line := a.Point[op] + da[op]*t

	if lo+a.Length < lo2 || lo2+b.Length < lo {
		return noImpact
	}
	if !ignoreBounds && (t < 0 || t > 1) {
		return noImpact
	}

	overlap := math.Min(lo+a.Length, lo2+b.Length) - math.Max(lo, lo2)

	if t < 0 {
		t = 1 + math.Abs(t)
	}

	var p core.Vec
	p[ax] = lo2
	p[op] = line

	return Impact{
		Time:    t,
		Overlap: overlap,
		Bound:   Bound{Point: p, Axis: ax, Length: b.Length},
		Hit:     true,
	}
}

// EdgeOf returns side s of box at the start of the step. box is the live hitbox
// and d the step displacement, so the start box is box-d.
func EdgeOf(box core.Rect, d core.Vec, s core.Side) Edge {
	x, y := box.X-d[0], box.Y-d[1]

	switch s {
	case core.SideBottom:
		return Edge{Point: core.Vec{x, y + box.H}, Axis: core.AxisX, Length: box.W}
	case core.SideTop:
		return Edge{Point: core.Vec{x, y}, Axis: core.AxisX, Length: box.W}
	case core.SideRight:
		return Edge{Point: core.Vec{x + box.W, y}, Axis: core.AxisY, Length: box.H}
	case core.SideLeft:
		return Edge{Point: core.Vec{x, y}, Axis: core.AxisY, Length: box.H}
	}
	panic(fmt.Sprintf("collision: %v has no edge", s))
}
