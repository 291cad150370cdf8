package world

import (
	"fmt"

	"tileccd/internal/core"
	"tileccd/internal/spatial"
)

// Level is the static side of a scene: grid tiles plus free-placed props.
// Dynamic bodies are not stored here; the level only feeds them candidates.
type Level struct {
	*Grid
	props *spatial.QuadTree
}

// NewLevel creates an empty level of cols x rows tiles
func NewLevel(cols, rows int, tileSize float64, chunkSize int) (*Level, error) {
	g, err := NewGrid(cols, rows, tileSize, chunkSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create grid: %w", err)
	}
	return &Level{Grid: g, props: spatial.NewQuadTree(g.Bounds().AABB())}, nil
}

// AddProp indexes a static body that does not sit on the grid
func (l *Level) AddProp(b core.Body) error {
	if err := l.props.Insert(b); err != nil {
		return fmt.Errorf("failed to add prop: %w", err)
	}
	return nil
}

// RemoveProp drops a prop by ID
func (l *Level) RemoveProp(id uint64) error {
	if err := l.props.Remove(id); err != nil {
		return fmt.Errorf("failed to remove prop: %w", err)
	}
	return nil
}

// Props returns the props overlapping r, ordered by ID
func (l *Level) Props(r core.Rect) []core.Body {
	return l.props.Query(r)
}

// PropCount returns the number of props
func (l *Level) PropCount() int {
	return l.props.Len()
}

// NearestProp returns the prop closest to p within maxDistance, or nil
func (l *Level) NearestProp(p core.Vec, maxDistance float64) core.Body {
	return l.props.Nearest(p, maxDistance)
}

// Feed hands h every tile and prop whose box overlaps the swept box of each
// entity and returns how many pairs were handed over.
func (l *Level) Feed(h core.Handler, entities []core.Body) int {
	n := 0
	for _, e := range entities {
		swept, ok := core.SweptBox(e)
		if !ok {
			continue
		}
		for _, b := range l.Covering(swept) {
			h.AddCollision(e, b)
			n++
		}
		for _, b := range l.props.Query(swept) {
			if b.ID() == e.ID() {
				continue
			}
			h.AddCollision(e, b)
			n++
		}
	}
	return n
}

// Rebound moves b back inside the level when its bounding box pokes out.
// Only the live position changes, so the step keeps its displacement.
// It reports whether b was moved.
func (l *Level) Rebound(b core.Body) bool {
	box, ok := core.BoundingBox(b.HitBoxes())
	if !ok {
		return false
	}
	bounds := l.Bounds()

	x := clamp(box.X, bounds.X, bounds.X+bounds.W-box.W)
	y := clamp(box.Y, bounds.Y, bounds.Y+bounds.H-box.H)
	if x == box.X && y == box.Y {
		return false
	}

	b.SetPosition(b.Position().Add(core.Vec{x - box.X, y - box.Y}))
	return true
}
