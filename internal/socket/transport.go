package socket

import (
	"context"
	"encoding/json"
)

// Frame is one named event on the wire.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Link is one physical connection opened by a Dialer. A transport that
// reconnects on its own keeps the same Link alive across reconnects and only
// closes Done once it gives up.
type Link interface {
	Send(Frame) error
	Done() <-chan struct{}
	Close() error
}

// Dialer opens links. deliver is called for every inbound frame, in the order
// the transport received them, from whatever goroutine the transport reads on.
type Dialer interface {
	Dial(ctx context.Context, namespace string, deliver func(Frame)) (Link, error)
}
