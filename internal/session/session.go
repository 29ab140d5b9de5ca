// Package session keeps client state that must outlive a scene: durable
// entries survive a restart, ephemeral entries live only as long as the process.
package session

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/pixil98/go-island/internal/storage"
)

type Durability int

const (
	Durable Durability = iota
	Ephemeral
)

func (d Durability) String() string {
	switch d {
	case Durable:
		return "durable"
	case Ephemeral:
		return "ephemeral"
	default:
		return fmt.Sprintf("durability(%d)", int(d))
	}
}

// Well known keys.
const (
	KeyAccessToken  storage.Identifier = "access_token"
	KeyProfile      storage.Identifier = "profile"
	KeyPlayBgm      storage.Identifier = "play_bgm"
	KeySoundVolume  storage.Identifier = "sound_volume"
	KeyLastScene    storage.Identifier = "last_scene"
	KeyCurrentScene storage.Identifier = "current_scene"
)

type Store struct {
	durable   storage.Storer
	ephemeral storage.Storer
}

// NewStore wraps a durable backend; ephemeral entries are kept in memory.
func NewStore(durable storage.Storer) *Store {
	if durable == nil {
		durable = storage.NewMemoryStore()
	}
	return &Store{
		durable:   durable,
		ephemeral: storage.NewMemoryStore(),
	}
}

func (s *Store) backend(d Durability) storage.Storer {
	if d == Ephemeral {
		return s.ephemeral
	}
	return s.durable
}

// Set marshals v to JSON and writes it under key.
func (s *Store) Set(d Durability, key storage.Identifier, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s %q: %w", d, key, err)
	}
	if err := s.backend(d).Save(key, b); err != nil {
		return fmt.Errorf("save %s %q: %w", d, key, err)
	}
	return nil
}

// Get unmarshals the value at key into out.
// Returns (found=false, nil) if not present.
func (s *Store) Get(d Durability, key storage.Identifier, out any) (bool, error) {
	b, found, err := s.backend(d).Load(key)
	if err != nil {
		return false, fmt.Errorf("load %s %q: %w", d, key, err)
	}
	if !found {
		return false, nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return true, fmt.Errorf("unmarshal %s %q: %w", d, key, err)
	}
	return true, nil
}

func (s *Store) Remove(d Durability, key storage.Identifier) error {
	if err := s.backend(d).Delete(key); err != nil {
		return fmt.Errorf("remove %s %q: %w", d, key, err)
	}
	return nil
}

// Lookup returns the value at key, or false when it is missing or unreadable.
// Read failures are logged rather than returned.
func Lookup[T any](s *Store, d Durability, key storage.Identifier) (T, bool) {
	var v T
	found, err := s.Get(d, key, &v)
	if err != nil {
		slog.Warn("reading session value", "key", key, "durability", d, "error", err)
		var zero T
		return zero, false
	}
	return v, found
}

// LookupOr returns the value at key or def when it is missing or unreadable.
func LookupOr[T any](s *Store, d Durability, key storage.Identifier, def T) T {
	v, ok := Lookup[T](s, d, key)
	if !ok {
		return def
	}
	return v
}
