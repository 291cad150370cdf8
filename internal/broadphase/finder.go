package broadphase

import (
	"tileccd/internal/core"
)

// Finder produces candidate pairs whose swept boxes overlap
type Finder interface {
	// Sync makes the tracked set exactly active
	Sync(active []core.Body)
	// DetectPairs reports every pair of tracked bodies whose swept boxes
	// overlap and returns how many were reported
	DetectPairs(h core.Handler) int
	Len() int
	Clear()
}

// tracked is the per-body record shared by the finders
type tracked struct {
	body    core.Body
	swept   core.Rect
	ok      bool // false for bodies without hitboxes
	visited bool
	dead    bool

	// endpoint slots in the sorted arrays, per axis
	start, end [2]int
	// proxy id in the dynamic tree
	proxy int
}

func (t *tracked) refresh() {
	t.swept, t.ok = core.SweptBox(t.body)
}

// roster keeps the tracked set in a slice with an ID index. Removal swaps the
// last record into the freed slot.
type roster struct {
	items []*tracked
	index map[uint64]int
	visit bool
}

func newRoster() roster {
	return roster{index: make(map[uint64]int)}
}

func (r *roster) add(b core.Body) (*tracked, bool) {
	if i, ok := r.index[b.ID()]; ok {
		return r.items[i], false
	}
	t := &tracked{body: b, visited: r.visit}
	r.index[b.ID()] = len(r.items)
	r.items = append(r.items, t)
	return t, true
}

func (r *roster) remove(i int) *tracked {
	t := r.items[i]
	last := len(r.items) - 1
	r.items[i] = r.items[last]
	r.items[last] = nil
	r.items = r.items[:last]
	delete(r.index, t.body.ID())
	if i < len(r.items) {
		r.index[r.items[i].body.ID()] = i
	}
	t.dead = true
	return t
}

// sync flips the visit flag of every active body, flips the roster's own flag,
// then drops every record left behind. added and removed may be nil.
func (r *roster) sync(active []core.Body, added, removed func(*tracked)) {
	for _, b := range active {
		t, isNew := r.add(b)
		if isNew && added != nil {
			added(t)
		}
		// a body listed twice must only flip once
		if t.visited == r.visit {
			t.visited = !t.visited
		}
	}

	r.visit = !r.visit

	for i := 0; i < len(r.items); {
		if r.items[i].visited != r.visit {
			t := r.remove(i)
			if removed != nil {
				removed(t)
			}
			continue
		}
		i++
	}
}

func (r *roster) clear() {
	r.items = nil
	r.index = make(map[uint64]int)
}

// overlaps is the exact 2-axis filter applied after the coarse pass
func overlaps(a, b *tracked) bool {
	return a.ok && b.ok && a.swept.Overlaps(b.swept)
}
