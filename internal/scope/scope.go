// Package scope ties subscriptions and timers to the lifetime of the
// component that created them.
package scope

import "sync"

// Releaser is anything that can be undone exactly once.
type Releaser interface {
	Release()
}

// ReleaseFunc adapts a plain function to Releaser.
type ReleaseFunc func()

func (f ReleaseFunc) Release() {
	if f != nil {
		f()
	}
}

// Scope collects releasers and releases them together, newest first.
type Scope struct {
	mu        sync.Mutex
	releasers []Releaser
	closed    bool
}

func New() *Scope {
	return &Scope{}
}

// Add registers r with the scope. If the scope is already closed r is released immediately.
func (s *Scope) Add(r Releaser) {
	if r == nil {
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		r.Release()
		return
	}
	s.releasers = append(s.releasers, r)
	s.mu.Unlock()
}

// AddFunc registers fn with the scope.
func (s *Scope) AddFunc(fn func()) {
	s.Add(ReleaseFunc(fn))
}

// Alive reports whether Close has not been called yet.
func (s *Scope) Alive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed
}

// Guard wraps fn so it only runs while the scope is alive.
func (s *Scope) Guard(fn func()) func() {
	return func() {
		if s.Alive() {
			fn()
		}
	}
}

// Close releases everything in reverse order of registration. Safe to call more than once.
func (s *Scope) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	releasers := s.releasers
	s.releasers = nil
	s.mu.Unlock()

	for i := len(releasers) - 1; i >= 0; i-- {
		releasers[i].Release()
	}
}
