package scene

import (
	"testing"

	"tileccd/internal/body"
	"tileccd/internal/core"
)

func TestManagerAddRemove(t *testing.T) {
	m := NewManager()
	a := body.NewMover(core.KindPlayer, core.Vec{}, body.Box(1, 1))
	b := body.NewWalker(core.Vec{5, 0}, 1, body.Box(1, 1))

	if err := m.Add(a); err != nil {
		t.Fatalf("Failed to add body: %v", err)
	}
	if err := m.Add(b); err != nil {
		t.Fatalf("Failed to add body: %v", err)
	}
	if err := m.Add(a); err == nil {
		t.Fatalf("Expected an error adding the same body twice")
	}
	if err := m.Add(nil); err == nil {
		t.Fatalf("Expected an error for a nil body")
	}

	if got, err := m.Get(b.ID()); err != nil || got != b {
		t.Fatalf("Expected to get the walker back, got %v (%v)", got, err)
	}
	if m.CountByKind(core.KindNPC) != 1 {
		t.Fatalf("Expected 1 npc, got %d", m.CountByKind(core.KindNPC))
	}

	if err := m.Remove(a.ID()); err != nil {
		t.Fatalf("Failed to remove body: %v", err)
	}
	if err := m.Remove(a.ID()); err == nil {
		t.Fatalf("Expected an error removing a missing body")
	}
	if _, err := m.Get(a.ID()); err == nil {
		t.Fatalf("Expected an error getting a removed body")
	}
	if m.Count() != 1 || m.CountByKind(core.KindPlayer) != 0 {
		t.Fatalf("Expected only the walker left, got %d bodies", m.Count())
	}
}

func TestManagerKeepsInsertionOrder(t *testing.T) {
	m := NewManager()
	var added []core.Body
	for i := 0; i < 6; i++ {
		b := body.NewMover(core.KindPlayer, core.Vec{float64(i), 0}, body.Box(1, 1))
		added = append(added, b)
	}
	// add out of ID order
	for _, i := range []int{3, 0, 5, 1, 4, 2} {
		if err := m.Add(added[i]); err != nil {
			t.Fatalf("Failed to add body: %v", err)
		}
	}
	m.Remove(added[5].ID())

	want := []int{3, 0, 1, 4, 2}
	got := m.Bodies()
	if len(got) != len(want) {
		t.Fatalf("Expected %d bodies, got %d", len(want), len(got))
	}
	for i, w := range want {
		if got[i] != added[w] {
			t.Fatalf("Expected body %d at position %d", added[w].ID(), i)
		}
	}

	byKind := m.ByKind(core.KindPlayer)
	for i := 1; i < len(byKind); i++ {
		if byKind[i-1].ID() >= byKind[i].ID() {
			t.Fatalf("Expected ByKind ordered by ID")
		}
	}

	m.Clear()
	if m.Count() != 0 || len(m.Bodies()) != 0 {
		t.Fatalf("Expected empty manager after Clear")
	}
}
