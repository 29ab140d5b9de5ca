// Package player keeps the directory of players present in the active scene,
// keyed by network player id.
package player

import (
	"log/slog"
	"sync"
)

// Entity is the live simulation object standing in for a player.
type Entity interface {
	Destroy()
}

// Entry is one player in the registry. Entries handed out are copies; the
// Entity is shared.
type Entry struct {
	ID        string
	Nickname  string
	AvatarKey string
	IsLocal   bool
	Entity    Entity
}

// Fields are the values to merge into an entry. Nil fields keep whatever the
// entry already holds.
type Fields struct {
	Nickname  *string
	AvatarKey *string
	IsLocal   *bool
	Entity    Entity
}

// Registry maps network ids to players. All access goes through its methods.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	order   []string
}

func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*Entry),
	}
}

// Upsert inserts id or merges f into the existing entry, returning the result.
func (r *Registry) Upsert(id string, f Fields) Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		e = &Entry{ID: id}
		r.entries[id] = e
		r.order = append(r.order, id)
	}

	if f.Nickname != nil {
		e.Nickname = *f.Nickname
	}
	if f.AvatarKey != nil {
		e.AvatarKey = *f.AvatarKey
	}
	if f.IsLocal != nil {
		e.IsLocal = *f.IsLocal
	}
	if f.Entity != nil {
		if e.Entity != nil && e.Entity != f.Entity {
			slog.Warn("replacing player entity", "player", id)
		}
		e.Entity = f.Entity
	}

	return *e
}

// Remove deletes id and returns the removed entry. Removing an unknown id is a no-op.
func (r *Registry) Remove(id string) (Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		return Entry{}, false
	}

	delete(r.entries, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	return *e, true
}

// Get returns a copy of the entry for id.
func (r *Registry) Get(id string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[id]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// GetAll returns a snapshot of every entry in insertion order.
func (r *Registry) GetAll() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]Entry, 0, len(r.order))
	for _, id := range r.order {
		all = append(all, *r.entries[id])
	}
	return all
}

// Local returns the entry owned by this client, if one is registered.
func (r *Registry) Local() (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.order {
		if e := r.entries[id]; e.IsLocal {
			return *e, true
		}
	}
	return Entry{}, false
}

// Clear empties the registry and returns what it held, so the caller can
// destroy the entities.
func (r *Registry) Clear() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := make([]Entry, 0, len(r.order))
	for _, id := range r.order {
		all = append(all, *r.entries[id])
	}

	r.entries = make(map[string]*Entry)
	r.order = nil

	return all
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.entries)
}
