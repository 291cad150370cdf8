package body

import (
	"sync/atomic"

	"tileccd/internal/core"
)

var lastID atomic.Uint64

// NextID hands out process-wide unique body IDs
func NextID() uint64 {
	return lastID.Add(1)
}

// HitBox is a box relative to the body position, with the sides that collide
type HitBox struct {
	Offset core.Rect
	Mask   core.SideMask
}

// Box is a full-mask hitbox of size w x h at the body origin
func Box(w, h float64) HitBox {
	return HitBox{Offset: core.Rect{W: w, H: h}, Mask: core.MaskAll}
}

// Updater is implemented by bodies that move or change state before a step
type Updater interface {
	Update(dt float64, region core.RegionQuery)
}

// Base implements core.Body. Concrete kinds embed it and override what they need.
type Base struct {
	id   uint64
	kind core.Kind

	pos  core.Vec
	prev core.Vec

	shapes []HitBox
	world  []core.Rect

	movable bool
	solid   bool
	covered [2]bool

	touched     core.SideMask
	lastTouched core.SideMask

	hook func(core.Contact)
}

// NewBase creates a solid, immovable body at pos. Previous starts equal to pos.
func NewBase(kind core.Kind, pos core.Vec, shapes ...HitBox) *Base {
	b := &Base{
		id:     NextID(),
		kind:   kind,
		pos:    pos,
		prev:   pos,
		shapes: shapes,
		world:  make([]core.Rect, len(shapes)),
		solid:  true,
	}
	b.place()
	return b
}

func (b *Base) ID() uint64      { return b.id }
func (b *Base) Kind() core.Kind { return b.kind }

func (b *Base) Position() core.Vec { return b.pos }
func (b *Base) Previous() core.Vec { return b.prev }

func (b *Base) SetPosition(p core.Vec) {
	b.pos = p
	b.place()
}

// Teleport moves the body without sweeping: both the live and previous
// positions are set, so the next step sees no displacement.
func (b *Base) Teleport(p core.Vec) {
	b.prev = p
	b.SetPosition(p)
}

func (b *Base) HitBoxes() []core.Rect { return b.world }

func (b *Base) SideMask(box int) core.SideMask {
	if box < 0 || box >= len(b.shapes) {
		return core.MaskNone
	}
	return b.shapes[box].Mask
}

func (b *Base) Movable() bool            { return b.movable }
func (b *Base) SetMovable(movable bool)  { b.movable = movable }
func (b *Base) SetSolid(solid bool)      { b.solid = solid }
func (b *Base) Covered(a core.Axis) bool { return b.covered[a] }
func (b *Base) Cover(a core.Axis)        { b.covered[a] = true }

func (b *Base) Solid(other core.Body, box int, side core.Side) bool {
	return b.solid
}

// OnContact records the touched side and forwards to the hook, if any
func (b *Base) OnContact(c core.Contact) {
	if c.Side != core.SideInside {
		b.touched |= core.MaskOf(c.Side)
	}
	if b.hook != nil {
		b.hook(c)
	}
}

// Hook sets a function called on every contact
func (b *Base) Hook(fn func(core.Contact)) {
	b.hook = fn
}

// Touching reports whether side s took part in a contact during the last
// committed step.
func (b *Base) Touching(s core.Side) bool {
	return b.lastTouched.Has(s)
}

func (b *Base) CommitPrevious() {
	b.prev = b.pos
	b.covered = [2]bool{}
	b.lastTouched = b.touched
	b.touched = core.MaskNone
}

func (b *Base) place() {
	for i, s := range b.shapes {
		b.world[i] = s.Offset.Translate(b.pos)
	}
}
