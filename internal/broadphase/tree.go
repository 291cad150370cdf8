package broadphase

import (
	"sort"

	"github.com/ByteArena/box2d"

	"tileccd/internal/core"
)

// TreeFinder keeps swept boxes in a box2d dynamic AABB tree. The tree stores
// fattened boxes, so every hit is checked again against the exact swept box.
type TreeFinder struct {
	roster
	tree box2d.B2DynamicTree
}

// NewTreeFinder creates an empty finder
func NewTreeFinder() *TreeFinder {
	return &TreeFinder{
		roster: newRoster(),
		tree:   box2d.MakeB2DynamicTree(),
	}
}

func (f *TreeFinder) Len() int {
	return len(f.items)
}

func (f *TreeFinder) Sync(active []core.Body) {
	f.sync(active, f.insert, f.destroy)
}

func (f *TreeFinder) Clear() {
	for _, t := range f.items {
		f.destroy(t)
	}
	f.clear()
}

func (f *TreeFinder) insert(t *tracked) {
	t.refresh()
	t.proxy = f.tree.CreateProxy(toB2(t.swept), t)
}

func (f *TreeFinder) destroy(t *tracked) {
	f.tree.DestroyProxy(t.proxy)
}

func (f *TreeFinder) DetectPairs(h core.Handler) int {
	items := make([]*tracked, len(f.items))
	copy(items, f.items)
	sort.Slice(items, func(i, j int) bool {
		return items[i].body.ID() < items[j].body.ID()
	})

	for _, t := range items {
		t.refresh()
		d := core.Displacement(t.body)
		f.tree.MoveProxy(t.proxy, toB2(t.swept), box2d.MakeB2Vec2(d[0], d[1]))
	}

	found := 0
	var hits []*tracked
	for _, t := range items {
		if !t.ok {
			continue
		}
		hits = hits[:0]
		f.tree.Query(func(node int) bool {
			other := f.tree.GetUserData(node).(*tracked)
			if other.body.ID() > t.body.ID() && overlaps(t, other) {
				hits = append(hits, other)
			}
			return true
		}, toB2(t.swept))

		sort.Slice(hits, func(i, j int) bool {
			return hits[i].body.ID() < hits[j].body.ID()
		})
		for _, other := range hits {
			h.AddCollision(t.body, other.body)
			found++
		}
	}
	return found
}

func toB2(r core.Rect) box2d.B2AABB {
	return box2d.B2AABB{
		LowerBound: box2d.MakeB2Vec2(r.X, r.Y),
		UpperBound: box2d.MakeB2Vec2(r.X+r.W, r.Y+r.H),
	}
}
