package scene

import (
	"sync"

	"github.com/pixil98/go-island/internal/audio"
	"github.com/pixil98/go-island/internal/scope"
	"github.com/pixil98/go-island/internal/socket"
	"github.com/pixil98/go-island/internal/spawn"
)

// Scene is one running scene. It owns its sound output and the entities
// spawned into it.
type Scene struct {
	key      Key
	islandID string
	mixer    *audio.Mixer
	scope    *scope.Scope
	conn     *socket.Connection

	mu       sync.Mutex
	entities []spawn.Entity
	local    spawn.Entity
}

func newScene(key Key, islandID string, out *audio.Output) *Scene {
	return &Scene{
		key:      key,
		islandID: islandID,
		mixer:    audio.NewMixer(out),
		scope:    scope.New(),
	}
}

func (s *Scene) Key() Key {
	return s.key
}

// IslandID is the island the scene joined, or "" for scenes without one.
func (s *Scene) IslandID() string {
	return s.islandID
}

func (s *Scene) Sound() audio.SoundSystem {
	return s.mixer
}

func (s *Scene) AddEntity(e spawn.Entity) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entities = append(s.entities, e)
}

func (s *Scene) RemoveEntity(e spawn.Entity) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, cur := range s.entities {
		if cur == e {
			s.entities = append(s.entities[:i], s.entities[i+1:]...)
			break
		}
	}
	if s.local == e {
		s.local = nil
	}
}

// Entities returns a snapshot of the entities on stage.
func (s *Scene) Entities() []spawn.Entity {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]spawn.Entity, len(s.entities))
	copy(out, s.entities)
	return out
}

// Local is the local player's entity, or nil before it has spawned.
func (s *Scene) Local() spawn.Entity {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.local
}

func (s *Scene) setLocal(e spawn.Entity) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.local = e
}

func (s *Scene) update(dt float64) {
	for _, e := range s.Entities() {
		e.Update(dt)
	}
}

// destroy releases every subscription and removes whatever is left on stage.
func (s *Scene) destroy() {
	s.scope.Close()
	for _, e := range s.Entities() {
		e.Destroy()
	}
}
