package collision

import "tileccd/internal/core"

// Correct moves body b so that its hitbox side rests on the contact line of bound.
//
// box is b's live hitbox and side the side of b touching the other body. Nothing
// happens when b is immovable, when the normal axis was already corrected this
// step, or when b is not itself travelling in the direction side leads. On success
// the axis is marked covered.
func Correct(b core.Body, box core.Rect, bound Bound, side core.Side) bool {
	if !b.Movable() {
		return false
	}

	n := bound.Axis.Other()
	if b.Covered(n) {
		return false
	}

	sign := side.Sign()
	if core.Sign(core.Displacement(b)[n]) != sign {
		return false
	}

	pos := b.Position()
	offset := pos[n] - box.Pos(n)

	edge := bound.Point[n]
	if sign > 0 {
		edge -= box.Size(n)
	}

	pos[n] = offset + edge
	b.SetPosition(pos)
	b.Cover(n)
	return true
}
