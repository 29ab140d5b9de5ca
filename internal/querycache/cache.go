// Package querycache holds client-side copies of server query results, keyed
// by path-like strings such as "islandInfo/<id>".
package querycache

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// Key builds a cache key from its parts.
func Key(parts ...string) string {
	return strings.Join(parts, "/")
}

type entry struct {
	data  json.RawMessage
	stale bool
}

type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
}

func New() *Cache {
	return &Cache{entries: map[string]*entry{}}
}

// Set stores v under key and marks it fresh.
func (c *Cache) Set(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = &entry{data: data}
	return nil
}

// Get decodes the entry at key into out. found is false when nothing is cached.
func (c *Cache) Get(key string, out any) (bool, error) {
	c.mu.Lock()
	e, ok := c.entries[key]
	c.mu.Unlock()

	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(e.data, out); err != nil {
		return true, fmt.Errorf("decoding %s: %w", key, err)
	}
	return true, nil
}

// Update replaces the entry at key with fn applied to its current value.
// fn receives nil when the key is absent.
func Update[T any](c *Cache, key string, fn func(old *T) T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var cur *T
	if e, ok := c.entries[key]; ok {
		var v T
		if err := json.Unmarshal(e.data, &v); err != nil {
			slog.Warn("discarding unreadable cache entry", "key", key, "error", err)
		} else {
			cur = &v
		}
	}

	data, err := json.Marshal(fn(cur))
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	c.entries[key] = &entry{data: data}
	return nil
}

// Invalidate marks key stale so the next reader refetches it.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.stale = true
		return
	}
	c.entries[key] = &entry{data: json.RawMessage("null"), stale: true}
}

// Stale reports whether key has been invalidated since it was last set.
func (c *Cache) Stale(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	return ok && e.stale
}

func (c *Cache) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = map[string]*entry{}
}
