// Package sockettest provides an in-memory transport for tests.
package sockettest

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/pixil98/go-island/internal/socket"
)

var ErrUnavailable = errors.New("transport unavailable")

// Dialer hands out in-memory links and records every frame sent on them.
type Dialer struct {
	mu          sync.Mutex
	unavailable bool
	dials       map[string]int
	links       map[string]*Link
}

func NewDialer() *Dialer {
	return &Dialer{
		dials: map[string]int{},
		links: map[string]*Link{},
	}
}

// SetUnavailable makes subsequent dials fail.
func (d *Dialer) SetUnavailable(v bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.unavailable = v
}

func (d *Dialer) Dial(_ context.Context, namespace string, deliver func(socket.Frame)) (socket.Link, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.unavailable {
		return nil, ErrUnavailable
	}

	l := &Link{deliver: deliver, done: make(chan struct{})}
	d.dials[namespace]++
	d.links[namespace] = l
	return l, nil
}

// Dials returns how many times namespace was dialed.
func (d *Dialer) Dials(namespace string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials[namespace]
}

// Link returns the most recent link for namespace, or nil.
func (d *Dialer) Link(namespace string) *Link {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.links[namespace]
}

// Link is an in-memory socket.Link.
type Link struct {
	mu      sync.Mutex
	deliver func(socket.Frame)
	sent    []socket.Frame
	done    chan struct{}
	closed  bool
}

func (l *Link) Send(f socket.Frame) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return socket.ErrNotConnected
	}
	l.sent = append(l.sent, f)
	return nil
}

func (l *Link) Done() <-chan struct{} {
	return l.done
}

func (l *Link) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.closed {
		l.closed = true
		close(l.done)
	}
	return nil
}

// Closed reports whether Close was called.
func (l *Link) Closed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

// Push simulates the server sending event with payload.
func (l *Link) Push(event string, payload any) {
	var data json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			panic(err)
		}
		data = b
	}
	l.deliver(socket.Frame{Event: event, Data: data})
}

// PushRaw simulates the server sending an already encoded payload.
func (l *Link) PushRaw(event string, data string) {
	l.deliver(socket.Frame{Event: event, Data: json.RawMessage(data)})
}

// Sent returns the frames sent so far with the given event name.
func (l *Link) Sent(event string) []socket.Frame {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []socket.Frame
	for _, f := range l.sent {
		if f.Event == event {
			out = append(out, f)
		}
	}
	return out
}
