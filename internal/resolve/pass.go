package resolve

import (
	"tileccd/internal/collision"
	"tileccd/internal/core"
	"tileccd/internal/queue"
)

// Record describes one contact delivered to a pair of bodies
type Record struct {
	A, B       core.Body
	BoxA, BoxB int
	// Side is A's side. SideInside for overlaps without a leading edge.
	Side core.Side
	// Time is the fraction of the step at which the contact happened. Overlaps
	// left over when the queue drains report 1.
	Time       float64
	Solid      bool
	CorrectedA bool
	CorrectedB bool
}

// Observer sees every contact in the order it was delivered
type Observer interface {
	Observe(r Record)
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func(r Record)

func (f ObserverFunc) Observe(r Record) { f(r) }

// Stats counts the work done by one pass
type Stats struct {
	Candidates  int // body pairs handed to AddCollision
	Pushed      int // new queue entries; a repeated pair replaces its entry
	Popped      int
	Rescored    int
	Contacts    int // side contacts delivered
	Inside      int // inside contacts delivered
	Corrections int
	Discarded   int
	Stashed     int // box pairs with no finite time that overlapped
	Truncated   bool
}

// Options tune a pass
type Options struct {
	// MaxEvents stops draining after this many pops; 0 means no limit
	MaxEvents int
	Observer  Observer
}

type stashKey struct {
	a, b       uint64
	boxA, boxB int
}

// Pass resolves the contacts of one step. Candidates are added with
// AddCollision, then Resolve drains them in time-of-impact order. A pass is
// single use.
type Pass struct {
	opts  Options
	queue *queue.Queue
	stats Stats

	stash   []collision.BoxPair
	stashed map[stashKey]bool
	done    bool
}

// NewPass creates an empty pass
func NewPass(opts Options) *Pass {
	return &Pass{
		opts:    opts,
		queue:   queue.New(),
		stashed: make(map[stashKey]bool),
	}
}

// AddCollision scores every hitbox combination of a and b and queues the ones
// with a finite time. Combinations without one are kept aside when their swept
// boxes overlap, since a later correction may give them a time.
func (p *Pass) AddCollision(a, b core.Body) {
	if p.done || a == nil || b == nil || a.ID() == b.ID() {
		return
	}
	p.stats.Candidates++

	for i := range a.HitBoxes() {
		for j := range b.HitBoxes() {
			p.seed(collision.BoxPair{A: a, BoxA: i, B: b, BoxB: j})
		}
	}
}

func (p *Pass) seed(pair collision.BoxPair) {
	side, t, ok := collision.Score(pair)
	if ok {
		p.push(pair, side, t)
		return
	}

	boxA, boxB, _ := pair.Boxes()
	sweptA := core.SweptRect(boxA, core.Displacement(pair.A))
	sweptB := core.SweptRect(boxB, core.Displacement(pair.B))
	if !sweptA.Overlaps(sweptB) {
		return
	}

	key := keyOf(pair)
	if p.stashed[key] {
		return
	}
	p.stashed[key] = true
	p.stash = append(p.stash, pair)
	p.stats.Stashed++
}

func (p *Pass) push(pair collision.BoxPair, side core.Side, t float64) {
	inserted := p.queue.Push(queue.Event{
		A: pair.A, BoxA: pair.BoxA,
		B: pair.B, BoxB: pair.BoxB,
		Side: side,
		Time: t,
	})
	if inserted {
		p.stats.Pushed++
	}
}

// Resolve drains the queue and returns the pass statistics
func (p *Pass) Resolve() Stats {
	if p.done {
		return p.stats
	}

	for {
		for p.queue.Len() > 0 {
			if p.opts.MaxEvents > 0 && p.stats.Popped >= p.opts.MaxEvents {
				p.stats.Truncated = true
				p.queue.Clear()
				break
			}

			ev, _ := p.queue.Pop()
			p.stats.Popped++
			p.handle(ev)
			p.flush()
		}

		if p.stats.Truncated || !p.flush() {
			break
		}
	}

	p.finish()
	p.done = true
	return p.stats
}

// Stats returns the counters so far
func (p *Pass) Stats() Stats {
	return p.stats
}

func (p *Pass) handle(ev queue.Event) {
	pair := collision.BoxPair{A: ev.A, BoxA: ev.BoxA, B: ev.B, BoxB: ev.BoxB}
	boxA, boxB, ok := pair.Boxes()
	if !ok {
		p.stats.Discarded++
		return
	}

	imp := collision.Derive(pair, ev.Side, false)
	if !imp.Hit || imp.Overlap <= 0 {
		if boxA.Overlaps(boxB) {
			p.inside(pair, ev.Time)
		} else {
			p.stats.Discarded++
		}
		return
	}

	if !collision.Approaching(pair, ev.Side, imp) {
		p.stats.Discarded++
		return
	}

	opp := ev.Side.Opposite()
	solid := ev.A.Solid(ev.B, ev.BoxA, ev.Side) && ev.B.Solid(ev.A, ev.BoxB, opp)

	var movedA, movedB bool
	if solid {
		movedA = collision.Correct(ev.A, boxA, imp.Bound, ev.Side)
		movedB = collision.Correct(ev.B, boxB, imp.Bound, opp)
	}
	if movedA {
		p.stats.Corrections++
	}
	if movedB {
		p.stats.Corrections++
	}

	p.notify(Record{
		A: ev.A, BoxA: ev.BoxA,
		B: ev.B, BoxB: ev.BoxB,
		Side:       ev.Side,
		Time:       imp.Time,
		Solid:      solid,
		CorrectedA: movedA,
		CorrectedB: movedB,
	})
	p.stats.Contacts++

	p.rescore(ev.A)
	p.rescore(ev.B)
}

// rescore refreshes every pending event of b from live state. Events that no
// longer meet get an infinite time and stay queued.
func (p *Pass) rescore(b core.Body) {
	for _, n := range p.queue.NeighborsOf(b) {
		ev := n.Event
		pair := collision.BoxPair{A: ev.A, BoxA: ev.BoxA, B: ev.B, BoxB: ev.BoxB}
		ev.Time = collision.Derive(pair, ev.Side, true).Time
		p.queue.Update(ev)
		p.stats.Rescored++
	}
}

// flush moves stashed pairs that now have a finite time into the queue. It
// reports whether any moved.
func (p *Pass) flush() bool {
	moved := false
	for i := 0; i < len(p.stash); {
		pair := p.stash[i]
		side, t, ok := collision.Score(pair)
		if !ok {
			i++
			continue
		}

		p.push(pair, side, t)
		delete(p.stashed, keyOf(pair))
		last := len(p.stash) - 1
		p.stash[i] = p.stash[last]
		p.stash[last] = collision.BoxPair{}
		p.stash = p.stash[:last]
		moved = true
	}
	return moved
}

// finish reports the stashed pairs that still overlap as inside contacts
func (p *Pass) finish() {
	for _, pair := range p.stash {
		boxA, boxB, ok := pair.Boxes()
		if ok && boxA.Overlaps(boxB) {
			p.inside(pair, 1)
		}
	}
	p.stash = nil
	p.stashed = make(map[stashKey]bool)
	p.queue.Clear()
}

func (p *Pass) inside(pair collision.BoxPair, t float64) {
	p.notify(Record{
		A: pair.A, BoxA: pair.BoxA,
		B: pair.B, BoxB: pair.BoxB,
		Side: core.SideInside,
		Time: t,
	})
	p.stats.Inside++
}

func (p *Pass) notify(r Record) {
	boxesA, boxesB := r.A.HitBoxes(), r.B.HitBoxes()
	rectA, rectB := boxesA[r.BoxA], boxesB[r.BoxB]

	oppSide := r.Side.Opposite()

	r.A.OnContact(core.Contact{
		Other: r.B, Side: r.Side,
		Box: r.BoxA, OtherBox: r.BoxB,
		Rect: rectA, OtherRect: rectB,
		Solid: r.Solid, Corrected: r.CorrectedA,
	})
	r.B.OnContact(core.Contact{
		Other: r.A, Side: oppSide,
		Box: r.BoxB, OtherBox: r.BoxA,
		Rect: rectB, OtherRect: rectA,
		Solid: r.Solid, Corrected: r.CorrectedB,
	})

	if p.opts.Observer != nil {
		p.opts.Observer.Observe(r)
	}
}

func keyOf(pair collision.BoxPair) stashKey {
	k := stashKey{a: pair.A.ID(), boxA: pair.BoxA, b: pair.B.ID(), boxB: pair.BoxB}
	if k.b < k.a {
		k.a, k.b = k.b, k.a
		k.boxA, k.boxB = k.boxB, k.boxA
	}
	return k
}
