package queue

import (
	"math"
	"testing"

	"tileccd/internal/body"
	"tileccd/internal/core"
)

func block(x float64) *body.Block {
	return body.NewBlock(x, 0, 1)
}

func TestPopOrder(t *testing.T) {
	q := New()
	a, b, c, d := block(0), block(1), block(2), block(3)

	q.Push(Event{A: a, B: b, Time: 0.5})
	q.Push(Event{A: a, B: c, Time: 0.1})
	q.Push(Event{A: b, B: d, Time: 0.9})
	q.Push(Event{A: c, B: d, Time: 0.3})

	want := []float64{0.1, 0.3, 0.5, 0.9}
	for i, w := range want {
		ev, ok := q.Pop()
		if !ok {
			t.Fatalf("Pop %d: queue empty", i)
		}
		if ev.Time != w {
			t.Fatalf("Pop %d: expected %v, got %v", i, w, ev.Time)
		}
	}

	if _, ok := q.Pop(); ok {
		t.Fatalf("Expected empty queue")
	}
	if _, ok := q.Peek(); ok {
		t.Fatalf("Expected Peek to fail on an empty queue")
	}
}

func TestTiesPopInPushOrder(t *testing.T) {
	q := New()
	a := block(0)
	others := []*body.Block{block(1), block(2), block(3)}
	for _, o := range others {
		q.Push(Event{A: a, B: o, Time: 0})
	}

	for i, o := range others {
		ev, _ := q.Pop()
		if ev.B.ID() != o.ID() {
			t.Fatalf("Pop %d: expected body %d, got %d", i, o.ID(), ev.B.ID())
		}
	}
}

func TestPushSamePairUpdates(t *testing.T) {
	q := New()
	a, b := block(0), block(1)

	if !q.Push(Event{A: a, B: b, Side: core.SideRight, Time: 0.5}) {
		t.Fatalf("Expected first push to insert")
	}
	// same pair, reversed roles
	if q.Push(Event{A: b, B: a, Side: core.SideLeft, Time: 0.2}) {
		t.Fatalf("Expected second push to update")
	}
	if q.Len() != 1 {
		t.Fatalf("Expected 1 event, got %d", q.Len())
	}

	ev, _ := q.Peek()
	if ev.Time != 0.2 || ev.Side != core.SideLeft || ev.A.ID() != b.ID() {
		t.Fatalf("Expected the updated event, got %+v", ev)
	}

	// different box of the same bodies is a different pair
	q.Push(Event{A: a, BoxA: 1, B: b, Time: 0.4})
	if q.Len() != 2 {
		t.Fatalf("Expected 2 events, got %d", q.Len())
	}
}

func TestUpdateReorders(t *testing.T) {
	q := New()
	a, b, c, d := block(0), block(1), block(2), block(3)
	q.Push(Event{A: a, B: b, Time: 0.1})
	q.Push(Event{A: c, B: d, Time: 0.2})
	q.Push(Event{A: a, B: c, Time: 0.3})

	if !q.Update(Event{A: a, B: b, Time: math.Inf(1)}) {
		t.Fatalf("Expected update of a queued pair to succeed")
	}
	q.Update(Event{A: a, B: c, Time: 0.05})

	first, _ := q.Pop()
	second, _ := q.Pop()
	third, _ := q.Pop()
	if first.Time != 0.05 || second.Time != 0.2 || !math.IsInf(third.Time, 1) {
		t.Fatalf("Unexpected order %v, %v, %v", first.Time, second.Time, third.Time)
	}

	if q.Update(Event{A: a, B: d, Time: 0}) {
		t.Fatalf("Expected update of an unknown pair to fail")
	}
}

func TestNeighborsOf(t *testing.T) {
	q := New()
	a, b, c, d := block(0), block(1), block(2), block(3)
	q.Push(Event{A: a, B: b, Time: 0.7})
	q.Push(Event{A: c, B: a, Time: 0.2})
	q.Push(Event{A: c, B: d, Time: 0.1})

	got := q.NeighborsOf(a)
	if len(got) != 2 {
		t.Fatalf("Expected 2 neighbors, got %d", len(got))
	}
	if got[0].Other.ID() != b.ID() || got[1].Other.ID() != c.ID() {
		t.Fatalf("Expected neighbors in push order (b, c), got (%d, %d)", got[0].Other.ID(), got[1].Other.ID())
	}

	q.Pop() // c-d
	q.Pop() // c-a
	got = q.NeighborsOf(a)
	if len(got) != 1 || got[0].Other.ID() != b.ID() {
		t.Fatalf("Expected only b left, got %d neighbors", len(got))
	}
	if len(q.NeighborsOf(d)) != 0 {
		t.Fatalf("Popped events must not be reachable")
	}
}

func TestNeighborsOfMultipleBoxes(t *testing.T) {
	q := New()
	p := body.NewMover(core.KindPlayer, core.Vec{}, body.Box(1, 1), body.Box(1, 2))
	a, b := block(3), block(4)

	q.Push(Event{A: p, BoxA: 0, B: a, Time: 0.5})
	q.Push(Event{A: p, BoxA: 1, B: a, Time: 0.4})
	q.Push(Event{A: b, B: p, BoxB: 1, Time: 0.3})

	if n := len(q.NeighborsOf(p)); n != 3 {
		t.Fatalf("Expected 3 neighbors across both boxes, got %d", n)
	}
	if n := len(q.NeighborsOf(a)); n != 2 {
		t.Fatalf("Expected 2 neighbors, got %d", n)
	}
}

func TestHeapIndexStaysConsistent(t *testing.T) {
	q := New()
	bodies := make([]*body.Block, 12)
	for i := range bodies {
		bodies[i] = block(float64(i))
	}
	for i := 0; i+1 < len(bodies); i++ {
		q.Push(Event{A: bodies[i], B: bodies[i+1], Time: float64((i * 7) % 11)})
	}
	for i := 0; i+1 < len(bodies); i += 2 {
		q.Update(Event{A: bodies[i], B: bodies[i+1], Time: float64(20 - i)})
	}

	for i, e := range q.items {
		if e.index != i {
			t.Fatalf("Slot %d holds an event that thinks it is at %d", i, e.index)
		}
	}

	last := math.Inf(-1)
	for q.Len() > 0 {
		ev, _ := q.Pop()
		if ev.Time < last {
			t.Fatalf("Out of order: %v after %v", ev.Time, last)
		}
		last = ev.Time
	}
	if len(q.byPair) != 0 || len(q.byBox) != 0 {
		t.Fatalf("Expected indexes to be empty, got %d pairs and %d boxes", len(q.byPair), len(q.byBox))
	}
}

func TestClear(t *testing.T) {
	q := New()
	a, b := block(0), block(1)
	q.Push(Event{A: a, B: b, Time: 0.5})
	q.Clear()

	if q.Len() != 0 || len(q.NeighborsOf(a)) != 0 {
		t.Fatalf("Expected an empty queue after Clear")
	}
	if !q.Push(Event{A: a, B: b, Time: 0.5}) {
		t.Fatalf("Expected a cleared pair to be pushed as new")
	}
}
