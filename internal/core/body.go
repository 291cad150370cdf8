package core

// Kind tags a body so game code can pick contact behavior from data
// instead of inspecting concrete types.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindPlayer
	KindNPC
	KindObstacle
	KindPlatform
	KindLiquid
	KindTrigger
	KindProjectile
)

var kindNames = [...]string{"unknown", "player", "npc", "obstacle", "platform", "liquid", "trigger", "projectile"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// ParseKind is the inverse of Kind.String. Unrecognised names map to KindUnknown.
func ParseKind(name string) Kind {
	for i, n := range kindNames {
		if n == name {
			return Kind(i)
		}
	}
	return KindUnknown
}

// Body is the contract every collidable object satisfies, static or dynamic.
//
// Position is the live position for this step. Previous is the position frozen at
// the end of the last step; the step's displacement is always Position-Previous.
// HitBoxes are in world units and derived from the live position.
type Body interface {
	ID() uint64
	Kind() Kind

	Position() Vec
	SetPosition(p Vec)
	Previous() Vec

	HitBoxes() []Rect
	SideMask(box int) SideMask

	// Movable bodies accept positional correction. Immovable ones still get callbacks.
	Movable() bool
	// Solid reports whether this body blocks other at the given box and side.
	// Either body answering false turns the contact into an overlap: no correction,
	// callbacks still fire.
	Solid(other Body, box int, side Side) bool
	OnContact(c Contact)

	// Covered reports whether axis already received a correction this step
	Covered(axis Axis) bool
	Cover(axis Axis)
	// CommitPrevious freezes the live position as next step's baseline and
	// clears the covered flags.
	CommitPrevious()
}

// Contact is delivered to both bodies of a resolved event
type Contact struct {
	Other     Body
	Side      Side // side of the receiving body
	Box       int  // receiving body's hitbox index
	OtherBox  int
	Rect      Rect // receiving body's hitbox at resolution time
	OtherRect Rect
	// Solid is true when both bodies agreed the contact blocks movement
	Solid bool
	// Corrected is true when the receiving body was moved by this contact
	Corrected bool
}

// Handler accepts candidate pairs from a broad phase or a world layer
type Handler interface {
	AddCollision(a, b Body)
}

// Neighborhood is a 3x3 block of static bodies indexed [dx+1][dy+1].
// Empty cells are nil.
type Neighborhood [3][3]Body

// RegionQuery exposes static geometry around a point to bodies
type RegionQuery interface {
	BlocksAround(x, y float64) Neighborhood
}

// Displacement returns the body's movement over the current step
func Displacement(b Body) Vec {
	return b.Position().Sub(b.Previous())
}

// SweptBox returns the union of the body's bounding box at the start and the end
// of the step. ok is false for bodies without hitboxes.
func SweptBox(b Body) (Rect, bool) {
	box, ok := BoundingBox(b.HitBoxes())
	if !ok {
		return Rect{}, false
	}
	start := box.Translate(Displacement(b).Mul(-1))
	return box.Union(start), true
}

// SweptRect returns the union of a single hitbox at the start and end of the step
func SweptRect(box Rect, d Vec) Rect {
	return box.Union(box.Translate(d.Mul(-1)))
}
