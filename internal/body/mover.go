package body

import (
	"math"

	"tileccd/internal/core"
)

// Kinetic is a body with a velocity that other bodies may push on
type Kinetic interface {
	core.Body
	Velocity() core.Vec
	SetVelocity(v core.Vec)
	// Immerse raises the drag used by the next update
	Immerse(drag float64)
}

// Mover is a ballistic body: constant acceleration, quadratic drag and an
// optional terminal speed per axis.
type Mover struct {
	*Base
	Vel      core.Vec
	Acc      core.Vec
	Terminal core.Vec // 0 on an axis means unlimited
	Drag     float64
	// Bounce is the fraction of speed kept, reversed, after hitting a solid
	// side. 0 stops the body on that axis.
	Bounce float64

	drag float64
}

// NewMover creates a movable body at pos
func NewMover(kind core.Kind, pos core.Vec, shapes ...HitBox) *Mover {
	m := &Mover{Base: NewBase(kind, pos, shapes...)}
	m.SetMovable(true)
	return m
}

func (m *Mover) Velocity() core.Vec     { return m.Vel }
func (m *Mover) SetVelocity(v core.Vec) { m.Vel = v }

func (m *Mover) Immerse(drag float64) {
	m.drag = math.Max(m.drag, drag)
}

// Grounded reports whether the body rested on something last step
func (m *Mover) Grounded() bool {
	return m.Touching(core.SideBottom)
}

func (m *Mover) Update(dt float64, region core.RegionQuery) {
	drag := math.Max(m.drag, m.Drag)
	m.drag = 0

	for i := 0; i < 2; i++ {
		v := m.Vel[i] + m.Acc[i]*dt

		speed := math.Abs(v)
		speed = math.Max(0, speed-dt*drag*speed*speed)
		if m.Terminal[i] > 0 {
			speed = math.Min(speed, m.Terminal[i])
		}
		m.Vel[i] = math.Copysign(speed, v)
	}

	m.SetPosition(m.Position().Add(m.Vel.Mul(dt)))
}

func (m *Mover) OnContact(c core.Contact) {
	m.Base.OnContact(c)
	m.react(c)
}

func (m *Mover) react(c core.Contact) {
	if !c.Solid || c.Side == core.SideInside {
		return
	}
	n := c.Side.Normal()
	if core.Sign(m.Vel[n]) == c.Side.Sign() {
		m.Vel[n] = -m.Vel[n] * m.Bounce
	}
}

// Walker paces back and forth and turns around at walls and ledges
type Walker struct {
	*Mover
	Speed float64

	dir float64
}

func NewWalker(pos core.Vec, speed float64, shapes ...HitBox) *Walker {
	return &Walker{
		Mover: NewMover(core.KindNPC, pos, shapes...),
		Speed: speed,
		dir:   1,
	}
}

// Heading returns -1 when walking left and 1 when walking right
func (w *Walker) Heading() float64 {
	return w.dir
}

func (w *Walker) Update(dt float64, region core.RegionQuery) {
	if region != nil && w.Grounded() && !w.groundAhead(region) {
		w.dir = -w.dir
	}
	w.Vel[0] = w.dir * w.Speed
	w.Mover.Update(dt, region)
}

func (w *Walker) OnContact(c core.Contact) {
	w.Base.OnContact(c)
	if c.Solid && (c.Side == core.SideLeft || c.Side == core.SideRight) && float64(c.Side.Sign()) == w.dir {
		w.dir = -w.dir
	}
	w.react(c)
}

func (w *Walker) groundAhead(region core.RegionQuery) bool {
	box, ok := core.BoundingBox(w.HitBoxes())
	if !ok {
		return true
	}
	x := box.X
	if w.dir > 0 {
		x += box.W
	}
	return region.BlocksAround(x, box.Y+box.H/2)[1][2] != nil
}
