package queue

import (
	"container/heap"
	"sort"

	"tileccd/internal/core"
)

// Event is a pending collision between one hitbox of A and one hitbox of B
type Event struct {
	A, B       core.Body
	BoxA, BoxB int
	Side       core.Side // A's side; B meets it with Side.Opposite()
	Time       float64

	index int    // slot in the heap, -1 once removed
	seq   uint64 // push order, breaks ties
}

// BoxRef identifies one hitbox of one body
type BoxRef struct {
	ID  uint64
	Box int
}

type pairKey struct {
	lo, hi BoxRef
}

func keyOf(e *Event) pairKey {
	a := BoxRef{ID: e.A.ID(), Box: e.BoxA}
	b := BoxRef{ID: e.B.ID(), Box: e.BoxB}
	if b.ID < a.ID || (b.ID == a.ID && b.Box < a.Box) {
		a, b = b, a
	}
	return pairKey{lo: a, hi: b}
}

// eventHeap implements a min-heap ordered by time of impact
type eventHeap []*Event

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	if h[i].Time != h[j].Time {
		return h[i].Time < h[j].Time
	}
	return h[i].seq < h[j].seq
}

func (h eventHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *eventHeap) Push(x interface{}) {
	e := x.(*Event)
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *eventHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil // avoid memory leak
	e.index = -1
	*h = old[:n-1]
	return e
}

// Queue is an indexed min-heap holding one event per box pair.
//
// Every hitbox maps to the set of live events that reference it, so the events
// touching a body can be found without scanning the heap. The events themselves
// carry their heap slot, which Swap keeps current.
type Queue struct {
	items  eventHeap
	byPair map[pairKey]*Event
	byBox  map[BoxRef]map[*Event]struct{}
	seq    uint64
}

// New creates an empty queue
func New() *Queue {
	return &Queue{
		byPair: make(map[pairKey]*Event),
		byBox:  make(map[BoxRef]map[*Event]struct{}),
	}
}

// Len returns the number of pending events
func (q *Queue) Len() int {
	return len(q.items)
}

// Push adds an event. If the box pair already has a pending event the existing
// entry is replaced instead, as Update would, and Push returns false.
func (q *Queue) Push(ev Event) bool {
	if q.Update(ev) {
		return false
	}

	e := ev
	e.seq = q.seq
	q.seq++

	q.byPair[keyOf(&e)] = &e
	q.link(&e)
	heap.Push(&q.items, &e)
	return true
}

// Peek returns the earliest event without removing it
func (q *Queue) Peek() (Event, bool) {
	if len(q.items) == 0 {
		return Event{}, false
	}
	return *q.items[0], true
}

// Pop removes and returns the earliest event
func (q *Queue) Pop() (Event, bool) {
	if len(q.items) == 0 {
		return Event{}, false
	}
	e := heap.Pop(&q.items).(*Event)
	delete(q.byPair, keyOf(e))
	q.unlink(e)
	return *e, true
}

// Update replaces the pending event of the same box pair and restores heap order.
// It returns false when the pair has no pending event.
func (q *Queue) Update(ev Event) bool {
	e, ok := q.byPair[keyOf(&ev)]
	if !ok {
		return false
	}

	e.A, e.B = ev.A, ev.B
	e.BoxA, e.BoxB = ev.BoxA, ev.BoxB
	e.Side = ev.Side
	e.Time = ev.Time
	heap.Fix(&q.items, e.index)
	return true
}

// Neighbor is a pending event seen from one of its bodies
type Neighbor struct {
	Other core.Body
	Event Event
}

// NeighborsOf returns every pending event touching any hitbox of b, in push
// order. The result is a snapshot; updating the queue while walking it is safe.
func (q *Queue) NeighborsOf(b core.Body) []Neighbor {
	id := b.ID()
	var found []*Event
	seen := make(map[*Event]struct{})

	for box := range b.HitBoxes() {
		for e := range q.byBox[BoxRef{ID: id, Box: box}] {
			if _, dup := seen[e]; dup {
				continue
			}
			seen[e] = struct{}{}
			found = append(found, e)
		}
	}

	sort.Slice(found, func(i, j int) bool { return found[i].seq < found[j].seq })

	out := make([]Neighbor, 0, len(found))
	for _, e := range found {
		other := e.B
		if e.B.ID() == id {
			other = e.A
		}
		out = append(out, Neighbor{Other: other, Event: *e})
	}
	return out
}

// Clear drops every pending event
func (q *Queue) Clear() {
	for i := range q.items {
		q.items[i].index = -1
		q.items[i] = nil
	}
	q.items = q.items[:0]
	q.byPair = make(map[pairKey]*Event)
	q.byBox = make(map[BoxRef]map[*Event]struct{})
}

func (q *Queue) link(e *Event) {
	for _, ref := range [2]BoxRef{{ID: e.A.ID(), Box: e.BoxA}, {ID: e.B.ID(), Box: e.BoxB}} {
		set, ok := q.byBox[ref]
		if !ok {
			set = make(map[*Event]struct{})
			q.byBox[ref] = set
		}
		set[e] = struct{}{}
	}
}

func (q *Queue) unlink(e *Event) {
	for _, ref := range [2]BoxRef{{ID: e.A.ID(), Box: e.BoxA}, {ID: e.B.ID(), Box: e.BoxB}} {
		set := q.byBox[ref]
		delete(set, e)
		if len(set) == 0 {
			delete(q.byBox, ref)
		}
	}
}
