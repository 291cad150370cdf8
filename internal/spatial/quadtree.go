package spatial

import (
	"fmt"
	"math"
	"sort"

	"tileccd/internal/core"
)

const (
	// MaxBodiesPerNode defines when to split a quadtree node
	MaxBodiesPerNode = 10
	// MaxDepth defines maximum depth of the quadtree
	MaxDepth = 8
)

// item is a body with the bounds it was filed under
type item struct {
	body   core.Body
	bounds core.AABB
}

// QuadTree indexes bodies by the bounding box of their hitboxes. It suits
// bodies that rarely move; Update must be called after one does.
type QuadTree struct {
	bounds core.AABB
	items  map[uint64]item
	root   *quadNode
}

// quadNode represents a node in the quadtree
type quadNode struct {
	bounds   core.AABB
	items    map[uint64]item
	children [4]*quadNode // NW, NE, SW, SE
	depth    int
}

func newNode(bounds core.AABB, depth int) *quadNode {
	return &quadNode{bounds: bounds, items: make(map[uint64]item), depth: depth}
}

// NewQuadTree creates a new quadtree with the given bounds
func NewQuadTree(bounds core.AABB) *QuadTree {
	return &QuadTree{
		bounds: bounds,
		items:  make(map[uint64]item),
		root:   newNode(bounds, 0),
	}
}

// Insert adds a body to the quadtree
func (qt *QuadTree) Insert(b core.Body) error {
	if b == nil {
		return fmt.Errorf("body cannot be nil")
	}

	box, ok := core.BoundingBox(b.HitBoxes())
	if !ok {
		return fmt.Errorf("body %d has no hitboxes", b.ID())
	}
	it := item{body: b, bounds: box.AABB()}

	if !contains(qt.bounds, it.bounds) {
		return fmt.Errorf("body bounds %+v outside quadtree bounds %+v", it.bounds, qt.bounds)
	}

	if old, exists := qt.items[b.ID()]; exists {
		qt.root.remove(old)
	}
	qt.items[b.ID()] = it
	qt.root.insert(it)
	return nil
}

// Remove removes a body from the quadtree
func (qt *QuadTree) Remove(id uint64) error {
	it, exists := qt.items[id]
	if !exists {
		return fmt.Errorf("body with id %d not found", id)
	}

	delete(qt.items, id)
	qt.root.remove(it)
	return nil
}

// Update refiles a body after it moved
func (qt *QuadTree) Update(b core.Body) error {
	if b == nil {
		return fmt.Errorf("body cannot be nil")
	}
	return qt.Insert(b)
}

// Len returns the number of indexed bodies
func (qt *QuadTree) Len() int {
	return len(qt.items)
}

// Query returns the bodies whose bounds overlap r, ordered by ID
func (qt *QuadTree) Query(r core.Rect) []core.Body {
	var results []item
	qt.root.query(r.AABB(), &results)
	return bodiesOf(results)
}

// QueryRadius returns the bodies within radius of center, ordered by ID
func (qt *QuadTree) QueryRadius(center core.Vec, radius float64) []core.Body {
	area := core.AABB{
		Min: core.Vec{center[0] - radius, center[1] - radius},
		Max: core.Vec{center[0] + radius, center[1] + radius},
	}

	var candidates, results []item
	qt.root.query(area, &candidates)
	for _, it := range candidates {
		if distanceToAABB(center, it.bounds) <= radius {
			results = append(results, it)
		}
	}
	return bodiesOf(results)
}

// Nearest returns the closest body to point within maxDistance, or nil.
// Equal distances go to the lower ID.
func (qt *QuadTree) Nearest(point core.Vec, maxDistance float64) core.Body {
	var nearest core.Body
	best := maxDistance

	for _, b := range qt.QueryRadius(point, maxDistance) {
		d := distanceToAABB(point, qt.items[b.ID()].bounds)
		if nearest == nil || d < best {
			best = d
			nearest = b
		}
	}
	return nearest
}

// Clear removes all bodies from the quadtree
func (qt *QuadTree) Clear() {
	qt.items = make(map[uint64]item)
	qt.root = newNode(qt.bounds, 0)
}

func (qn *quadNode) insert(it item) {
	if qn.children[0] != nil {
		if i := qn.childIndex(it.bounds); i != -1 {
			qn.children[i].insert(it)
			return
		}
	}

	qn.items[it.body.ID()] = it

	if len(qn.items) > MaxBodiesPerNode && qn.depth < MaxDepth {
		qn.split()
	}
}

func (qn *quadNode) remove(it item) {
	delete(qn.items, it.body.ID())

	if qn.children[0] != nil {
		for _, child := range qn.children {
			child.remove(it)
		}
	}
}

func (qn *quadNode) query(area core.AABB, results *[]item) {
	for _, it := range qn.items {
		if intersects(area, it.bounds) {
			*results = append(*results, it)
		}
	}

	if qn.children[0] != nil {
		for _, child := range qn.children {
			if intersects(area, child.bounds) {
				child.query(area, results)
			}
		}
	}
}

// split divides this node into four children
func (qn *quadNode) split() {
	lo, hi := qn.bounds.Min, qn.bounds.Max
	mid := lo.Add(hi).Mul(0.5)

	quads := [4]core.AABB{
		{Min: core.Vec{lo[0], mid[1]}, Max: core.Vec{mid[0], hi[1]}}, // NW
		{Min: mid, Max: hi},                                         // NE
		{Min: lo, Max: mid},                                         // SW
		{Min: core.Vec{mid[0], lo[1]}, Max: core.Vec{hi[0], mid[1]}}, // SE
	}
	for i := range quads {
		qn.children[i] = newNode(quads[i], qn.depth+1)
	}

	for id, it := range qn.items {
		if i := qn.childIndex(it.bounds); i != -1 {
			qn.children[i].insert(it)
			delete(qn.items, id)
		}
	}
}

// childIndex returns the child quadrant that fully holds bounds, or -1
func (qn *quadNode) childIndex(bounds core.AABB) int {
	if qn.children[0] == nil {
		return -1
	}
	for i, child := range qn.children {
		if contains(child.bounds, bounds) {
			return i
		}
	}
	return -1
}

func bodiesOf(items []item) []core.Body {
	sort.Slice(items, func(i, j int) bool {
		return items[i].body.ID() < items[j].body.ID()
	})
	out := make([]core.Body, len(items))
	for i, it := range items {
		out[i] = it.body
	}
	return out
}

func contains(container, bounds core.AABB) bool {
	return bounds.Min[0] >= container.Min[0] && bounds.Max[0] <= container.Max[0] &&
		bounds.Min[1] >= container.Min[1] && bounds.Max[1] <= container.Max[1]
}

func intersects(a, b core.AABB) bool {
	return a.Min[0] < b.Max[0] && a.Max[0] > b.Min[0] &&
		a.Min[1] < b.Max[1] && a.Max[1] > b.Min[1]
}

func distanceToAABB(point core.Vec, bounds core.AABB) float64 {
	dx := math.Max(0, math.Max(bounds.Min[0]-point[0], point[0]-bounds.Max[0]))
	dy := math.Max(0, math.Max(bounds.Min[1]-point[1], point[1]-bounds.Max[1]))
	return math.Sqrt(dx*dx + dy*dy)
}
