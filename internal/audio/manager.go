// Package audio owns the process-wide sound state. One Audio instance exists
// at a time and it belongs to the scene that initialized it.
package audio

import (
	"sync"

	"github.com/pixil98/go-island/internal/session"
)

type State int

const (
	Uninitialized State = iota
	Ready
	Destroyed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Ready:
		return "ready"
	case Destroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

type Manager struct {
	mu      sync.Mutex
	store   *session.Store
	focus   FocusSource
	current *Audio
	state   State
}

func NewManager(store *session.Store, focus FocusSource) *Manager {
	if store == nil {
		store = session.NewStore(nil)
	}
	return &Manager{
		store: store,
		focus: focus,
	}
}

// Init returns the instance for scene. A different scene replaces the
// current instance, which is fully torn down before the new one exists.
func (m *Manager) Init(scene Scene) *Audio {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil && m.current.scene == scene {
		return m.current
	}

	if m.current != nil {
		m.current.destroy()
		m.current = nil
	}

	m.current = newAudio(scene, m.store, m.focus)
	m.state = Ready

	return m.current
}

// Instance returns the live instance or ErrUninitialized.
func (m *Manager) Instance() (*Audio, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != Ready {
		return nil, ErrUninitialized
	}
	return m.current, nil
}

// InstanceSafe returns the live instance or nil. UI code uses it because it
// may run before any scene has booted.
func (m *Manager) InstanceSafe() *Audio {
	a, err := m.Instance()
	if err != nil {
		return nil
	}
	return a
}

// Destroy tears down the live instance. Calling it again is a no-op.
func (m *Manager) Destroy() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return
	}

	m.current.destroy()
	m.current = nil
	m.state = Destroyed
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.state
}
