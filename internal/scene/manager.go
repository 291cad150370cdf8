package scene

import (
	"fmt"
	"sort"
	"sync"

	"tileccd/internal/core"
)

// Manager keeps the dynamic bodies of a scene. Bodies are returned in the
// order they were added so a step visits them the same way every run.
type Manager struct {
	mu     sync.RWMutex
	bodies map[uint64]core.Body
	order  []uint64

	// Kind indices for fast queries
	byKind map[core.Kind]map[uint64]core.Body
}

// NewManager creates an empty scene manager
func NewManager() *Manager {
	return &Manager{
		bodies: make(map[uint64]core.Body),
		byKind: make(map[core.Kind]map[uint64]core.Body),
	}
}

// Add registers a body
func (m *Manager) Add(b core.Body) error {
	if b == nil {
		return fmt.Errorf("body cannot be nil")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.bodies[b.ID()]; exists {
		return fmt.Errorf("body with ID %d already exists", b.ID())
	}

	m.bodies[b.ID()] = b
	m.order = append(m.order, b.ID())
	m.addToKindIndex(b)
	return nil
}

// Remove drops a body by ID
func (m *Manager) Remove(id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, exists := m.bodies[id]
	if !exists {
		return fmt.Errorf("body with ID %d not found", id)
	}

	delete(m.bodies, id)
	m.removeFromKindIndex(b)
	for i, o := range m.order {
		if o == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// Get retrieves a body by ID
func (m *Manager) Get(id uint64) (core.Body, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, exists := m.bodies[id]
	if !exists {
		return nil, fmt.Errorf("body with ID %d not found", id)
	}
	return b, nil
}

// Bodies returns every body in insertion order
func (m *Manager) Bodies() []core.Body {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]core.Body, len(m.order))
	for i, id := range m.order {
		out[i] = m.bodies[id]
	}
	return out
}

// ByKind returns the bodies of one kind, ordered by ID
func (m *Manager) ByKind(kind core.Kind) []core.Body {
	m.mu.RLock()
	defer m.mu.RUnlock()

	index := m.byKind[kind]
	out := make([]core.Body, 0, len(index))
	for _, b := range index {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Count returns the number of bodies
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.bodies)
}

// CountByKind returns the number of bodies of one kind
func (m *Manager) CountByKind(kind core.Kind) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.byKind[kind])
}

// Clear removes every body
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.bodies = make(map[uint64]core.Body)
	m.byKind = make(map[core.Kind]map[uint64]core.Body)
	m.order = nil
}

func (m *Manager) addToKindIndex(b core.Body) {
	index := m.byKind[b.Kind()]
	if index == nil {
		index = make(map[uint64]core.Body)
		m.byKind[b.Kind()] = index
	}
	index[b.ID()] = b
}

func (m *Manager) removeFromKindIndex(b core.Body) {
	index := m.byKind[b.Kind()]
	delete(index, b.ID())
	if len(index) == 0 {
		delete(m.byKind, b.Kind())
	}
}
