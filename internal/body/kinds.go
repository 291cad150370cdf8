package body

import "tileccd/internal/core"

// Block is a solid static tile
type Block struct {
	*Base
}

// NewBlock creates a size x size tile with its top-left corner at (x, y)
func NewBlock(x, y, size float64) *Block {
	return &Block{Base: NewBase(core.KindObstacle, core.Vec{x, y}, Box(size, size))}
}

// Platform is a one-way tile: only its top side collides, so bodies pass
// through from below and land on it from above.
type Platform struct {
	*Base
}

func NewPlatform(x, y, size float64) *Platform {
	shape := HitBox{Offset: core.Rect{W: size, H: size}, Mask: core.MaskTop}
	return &Platform{Base: NewBase(core.KindPlatform, core.Vec{x, y}, shape)}
}

// Liquid overlaps bodies instead of blocking them. Every contact pushes a
// Kinetic body up in proportion to how much of the liquid it covers and
// raises its drag for the next update.
type Liquid struct {
	*Base
	Weight float64 // upward acceleration at full cover
	Drag   float64

	dt float64
}

// NewLiquid creates a liquid cell. A surface cell only fills the lower three
// quarters of the tile.
func NewLiquid(x, y, size float64, surface bool) *Liquid {
	off := core.Rect{W: size, H: size}
	if surface {
		off.Y, off.H = size/4, size*3/4
	}
	l := &Liquid{
		Base:   NewBase(core.KindLiquid, core.Vec{x, y}, HitBox{Offset: off, Mask: core.MaskAll}),
		Weight: 0.25,
		Drag:   0.75,
	}
	l.SetSolid(false)
	return l
}

func (l *Liquid) Update(dt float64, region core.RegionQuery) {
	l.dt = dt
}

func (l *Liquid) OnContact(c core.Contact) {
	l.Base.OnContact(c)

	k, ok := c.Other.(Kinetic)
	if !ok {
		return
	}
	k.Immerse(l.Drag)

	cover := c.Rect.OverlapArea(c.OtherRect) / c.Rect.Area()
	v := k.Velocity()
	v[1] -= cover * l.Weight * l.dt
	k.SetVelocity(v)
}

// Trigger is a non-solid zone that reports bodies touching it
type Trigger struct {
	*Base
	// Filter limits which kinds fire the trigger; KindUnknown accepts all
	Filter core.Kind
	// OnEnter is called once per body and step
	OnEnter func(other core.Body)

	seen  map[uint64]bool
	fired bool
}

func NewTrigger(r core.Rect, filter core.Kind) *Trigger {
	t := &Trigger{
		Base:   NewBase(core.KindTrigger, core.Vec{r.X, r.Y}, Box(r.W, r.H)),
		Filter: filter,
		seen:   make(map[uint64]bool),
	}
	t.SetSolid(false)
	return t
}

func (t *Trigger) OnContact(c core.Contact) {
	t.Base.OnContact(c)

	if t.Filter != core.KindUnknown && c.Other.Kind() != t.Filter {
		return
	}
	if t.seen[c.Other.ID()] {
		return
	}
	t.seen[c.Other.ID()] = true
	t.fired = true
	if t.OnEnter != nil {
		t.OnEnter(c.Other)
	}
}

// Fired reports whether any matching body has touched the trigger
func (t *Trigger) Fired() bool {
	return t.fired
}

func (t *Trigger) CommitPrevious() {
	t.Base.CommitPrevious()
	clear(t.seen)
}
