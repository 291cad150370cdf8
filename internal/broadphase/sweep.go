package broadphase

import (
	"tileccd/internal/core"
)

// endpoint is one end of a tracked body's swept interval on an axis
type endpoint struct {
	t     *tracked
	isEnd bool
}

func (e endpoint) value(axis core.Axis) float64 {
	v := e.t.swept.Pos(axis)
	if e.isEnd {
		v += e.t.swept.Size(axis)
	}
	return v
}

// before orders endpoints by value; at equal values starts come first and
// body IDs break the remaining ties
func before(a, b endpoint, axis core.Axis) bool {
	va, vb := a.value(axis), b.value(axis)
	if va != vb {
		return va < vb
	}
	if a.isEnd != b.isEnd {
		return !a.isEnd
	}
	return a.t.body.ID() < b.t.body.ID()
}

// SweepAndPrune finds candidate pairs by sorting swept-box endpoints on both
// axes and sweeping the axis whose intervals are shorter in total.
//
// The endpoint arrays persist between steps, so with little motion the
// insertion sort runs close to linear time.
type SweepAndPrune struct {
	roster
	axes   [2][]endpoint
	active []*tracked
}

// NewSweepAndPrune creates an empty finder
func NewSweepAndPrune() *SweepAndPrune {
	return &SweepAndPrune{roster: newRoster()}
}

func (s *SweepAndPrune) Len() int {
	return len(s.items)
}

// Add tracks b. It returns false when b is already tracked.
func (s *SweepAndPrune) Add(b core.Body) bool {
	t, isNew := s.add(b)
	if isNew {
		s.addEndpoints(t)
	}
	return isNew
}

// Remove stops tracking b. It returns false when b was not tracked.
func (s *SweepAndPrune) Remove(b core.Body) bool {
	i, ok := s.index[b.ID()]
	if !ok {
		return false
	}
	s.remove(i)
	return true
}

func (s *SweepAndPrune) Sync(active []core.Body) {
	s.sync(active, s.addEndpoints, nil)
}

func (s *SweepAndPrune) Clear() {
	s.clear()
	s.axes[0] = s.axes[0][:0]
	s.axes[1] = s.axes[1][:0]
}

func (s *SweepAndPrune) addEndpoints(t *tracked) {
	for a := range s.axes {
		s.axes[a] = append(s.axes[a], endpoint{t: t}, endpoint{t: t, isEnd: true})
	}
}

func (s *SweepAndPrune) DetectPairs(h core.Handler) int {
	for _, t := range s.items {
		t.refresh()
	}

	var spread [2]int
	for a := range s.axes {
		axis := core.Axis(a)
		s.axes[a] = cutDead(s.axes[a])
		insertionSort(s.axes[a], axis)

		for i, e := range s.axes[a] {
			if e.isEnd {
				e.t.end[a] = i
			} else {
				e.t.start[a] = i
			}
		}
		for _, t := range s.items {
			spread[a] += t.end[a] - t.start[a]
		}
	}

	axis := core.AxisX
	if spread[core.AxisY] < spread[core.AxisX] {
		axis = core.AxisY
	}

	return s.sweep(s.axes[axis], h)
}

// sweep walks the sorted endpoints keeping the set of open intervals. Every
// start is tested against the open set, so each pair is seen exactly once.
func (s *SweepAndPrune) sweep(arr []endpoint, h core.Handler) int {
	s.active = s.active[:0]
	found := 0

	for _, e := range arr {
		if !e.t.ok {
			continue
		}
		if e.isEnd {
			for i, t := range s.active {
				if t == e.t {
					copy(s.active[i:], s.active[i+1:])
					s.active = s.active[:len(s.active)-1]
					break
				}
			}
			continue
		}

		for _, other := range s.active {
			if overlaps(other, e.t) {
				h.AddCollision(other.body, e.t.body)
				found++
			}
		}
		s.active = append(s.active, e.t)
	}

	for i := range s.active {
		s.active[i] = nil
	}
	s.active = s.active[:0]
	return found
}

func cutDead(arr []endpoint) []endpoint {
	out := arr[:0]
	for _, e := range arr {
		if !e.t.dead {
			out = append(out, e)
		}
	}
	for i := len(out); i < len(arr); i++ {
		arr[i] = endpoint{}
	}
	return out
}

func insertionSort(arr []endpoint, axis core.Axis) {
	for i := 1; i < len(arr); i++ {
		key := arr[i]
		j := i - 1
		for j >= 0 && before(key, arr[j], axis) {
			arr[j+1] = arr[j]
			j--
		}
		arr[j+1] = key
	}
}
