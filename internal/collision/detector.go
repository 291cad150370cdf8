package collision

import (
	"math"

	"tileccd/internal/core"
)

// BoxPair names one hitbox of A against one hitbox of B
type BoxPair struct {
	A    core.Body
	BoxA int
	B    core.Body
	BoxB int
}

// Boxes returns the live hitboxes of the pair. ok is false when either index no
// longer exists.
func (p BoxPair) Boxes() (a, b core.Rect, ok bool) {
	boxesA, boxesB := p.A.HitBoxes(), p.B.HitBoxes()
	if p.BoxA < 0 || p.BoxA >= len(boxesA) || p.BoxB < 0 || p.BoxB >= len(boxesB) {
		return core.Rect{}, core.Rect{}, false
	}
	return boxesA[p.BoxA], boxesB[p.BoxB], true
}

// Score finds the earliest side pair for a box pair, time bounds ignored.
// side is A's side; B meets it with side.Opposite(). Only sides enabled on both
// masks take part. ok is false when no side yields a finite time.
func Score(p BoxPair) (side core.Side, t float64, ok bool) {
	boxA, boxB, ok := p.Boxes()
	if !ok {
		return core.SideInside, math.Inf(1), false
	}
	da, db := core.Displacement(p.A), core.Displacement(p.B)
	maskA, maskB := p.A.SideMask(p.BoxA), p.B.SideMask(p.BoxB)

	side, t = core.SideInside, math.Inf(1)
	for _, s := range core.Sides {
		o := s.Opposite()
		if !maskA.Has(s) || !maskB.Has(o) {
			continue
		}

		imp := Intersect(EdgeOf(boxA, da, s), da, EdgeOf(boxB, db, o), db, true)
		if imp.Hit && imp.Time < t {
			side, t = s, imp.Time
		}
	}

	return side, t, !math.IsInf(t, 1)
}

// Derive recomputes the impact for a known side from live state
func Derive(p BoxPair, side core.Side, ignoreBounds bool) Impact {
	boxA, boxB, ok := p.Boxes()
	if !ok || side == core.SideInside {
		return noImpact
	}
	da, db := core.Displacement(p.A), core.Displacement(p.B)
	return Intersect(EdgeOf(boxA, da, side), da, EdgeOf(boxB, db, side.Opposite()), db, ignoreBounds)
}

// Approaching reports whether A moves into B across side. Zero relative motion
// along the normal counts as approaching; edges that touch while moving apart
// do not.
func Approaching(p BoxPair, side core.Side, imp Impact) bool {
	n := imp.Bound.Axis.Other()
	da, db := core.Displacement(p.A), core.Displacement(p.B)
	dir := core.Sign(da[n] - db[n])
	return dir == 0 || dir == side.Sign()
}
