package core

import "fmt"

// Side names the edge of a hitbox that takes part in a contact.
// SideInside marks an overlap that has no leading edge.
type Side int

const (
	SideBottom Side = iota
	SideTop
	SideRight
	SideLeft
	SideInside
)

// Sides lists the four edge sides in table order
var Sides = [4]Side{SideBottom, SideTop, SideRight, SideLeft}

var sideNames = [...]string{"bottom", "top", "right", "left", "inside"}

// sideSwaps maps a side to the side of the other body it meets
var sideSwaps = [...]Side{SideTop, SideBottom, SideLeft, SideRight, SideInside}

// sideSigns is the direction a body moves along the normal when the side leads
var sideSigns = [...]int{1, -1, 1, -1, 0}

func (s Side) String() string {
	if s < SideBottom || s > SideInside {
		return fmt.Sprintf("Side(%d)", int(s))
	}
	return sideNames[s]
}

// ParseSide is the inverse of Side.String
func ParseSide(name string) (Side, error) {
	for i, n := range sideNames {
		if n == name {
			return Side(i), nil
		}
	}
	return SideInside, fmt.Errorf("unknown side %q", name)
}

// Opposite returns the side of the other body that meets s
func (s Side) Opposite() Side {
	s.mustBeValid()
	return sideSwaps[s]
}

// Axis returns the axis the edge runs along: x for bottom/top, y for right/left
func (s Side) Axis() Axis {
	s.mustBeEdge()
	if s == SideBottom || s == SideTop {
		return AxisX
	}
	return AxisY
}

// Normal returns the axis a contact on this side pushes along
func (s Side) Normal() Axis {
	return s.Axis().Other()
}

// Sign is the direction of travel along Normal for which s is the leading side.
// Bottom and right lead when moving toward +y and +x.
func (s Side) Sign() int {
	s.mustBeValid()
	return sideSigns[s]
}

func (s Side) mustBeValid() {
	if s < SideBottom || s > SideInside {
		panic(fmt.Sprintf("core: side %d out of range", int(s)))
	}
}

func (s Side) mustBeEdge() {
	if s < SideBottom || s > SideLeft {
		panic(fmt.Sprintf("core: %v is not an edge side", s))
	}
}

// SideMask selects which sides of a hitbox collide
type SideMask uint8

const (
	MaskBottom SideMask = 1 << SideBottom
	MaskTop    SideMask = 1 << SideTop
	MaskRight  SideMask = 1 << SideRight
	MaskLeft   SideMask = 1 << SideLeft

	MaskNone SideMask = 0
	MaskAll           = MaskBottom | MaskTop | MaskRight | MaskLeft
)

// MaskOf builds a mask from sides
func MaskOf(sides ...Side) SideMask {
	var m SideMask
	for _, s := range sides {
		s.mustBeEdge()
		m |= 1 << s
	}
	return m
}

// Has reports whether side s is enabled
func (m SideMask) Has(s Side) bool {
	return s >= SideBottom && s <= SideLeft && m&(1<<s) != 0
}

func (m SideMask) String() string {
	if m == MaskNone {
		return "none"
	}
	out := ""
	for _, s := range Sides {
		if m.Has(s) {
			if out != "" {
				out += "|"
			}
			out += s.String()
		}
	}
	return out
}
