// Package socket owns the client's server connections: one logical
// connection per namespace, shared by every component that asks for it.
package socket

import (
	"context"
	"log/slog"
	"sync"

	"github.com/pixil98/go-island/internal/driver"
)

type Registry struct {
	dialer   Dialer
	dispatch driver.Dispatcher

	mu    sync.Mutex
	conns map[string]*Connection
}

// NewRegistry creates a registry. Inbound events are handed to dispatch so
// handlers run on the driver loop; a nil dispatch delivers on the transport goroutine.
func NewRegistry(dialer Dialer, dispatch driver.Dispatcher) *Registry {
	return &Registry{
		dialer:   dialer,
		dispatch: dispatch,
		conns:    map[string]*Connection{},
	}
}

// Connect returns the connection for namespace, creating it on first use.
// A connection that is not open is dialed again; its handlers are kept.
// When the transport is unavailable the returned connection is a
// placeholder that reports Connected() == false and drops emits.
func (r *Registry) Connect(ctx context.Context, namespace string) *Connection {
	r.mu.Lock()
	c, ok := r.conns[namespace]
	if !ok {
		c = newConnection(namespace, r.dispatch)
		r.conns[namespace] = c
	}
	r.mu.Unlock()

	if !c.Connected() {
		err := c.dial(ctx, r.dialer)
		if err != nil {
			slog.WarnContext(ctx, "socket unavailable", "namespace", namespace, "error", err)
		}
	}

	return c
}

// Get returns the connection for namespace without dialing.
func (r *Registry) Get(namespace string) (*Connection, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.conns[namespace]
	return c, ok
}

// Close tears down the connection for namespace and forgets its handlers.
func (r *Registry) Close(namespace string) {
	r.mu.Lock()
	c, ok := r.conns[namespace]
	delete(r.conns, namespace)
	r.mu.Unlock()

	if ok {
		c.close()
	}
}

// CloseAll tears down every connection. Used on logout.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	conns := r.conns
	r.conns = map[string]*Connection{}
	r.mu.Unlock()

	for _, c := range conns {
		c.close()
	}
}
