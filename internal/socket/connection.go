package socket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pixil98/go-island/internal/driver"
)

// Handler receives the raw payload of an inbound event.
type Handler func(data json.RawMessage)

type handlerEntry struct {
	id      uint64
	handler Handler
}

// Connection is the logical connection for one namespace. Handlers belong to
// it, not to the physical link, so they survive reconnects. All methods are
// safe on a nil *Connection.
type Connection struct {
	namespace string
	dispatch  driver.Dispatcher

	mu       sync.Mutex
	link     Link
	handlers map[string][]handlerEntry
	nextID   uint64
}

func newConnection(namespace string, dispatch driver.Dispatcher) *Connection {
	return &Connection{
		namespace: namespace,
		dispatch:  dispatch,
		handlers:  map[string][]handlerEntry{},
	}
}

func (c *Connection) Namespace() string {
	if c == nil {
		return ""
	}
	return c.namespace
}

// Connected reports whether a live link is attached.
func (c *Connection) Connected() bool {
	if c == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.link != nil
}

// Emit encodes payload and sends it. Failures are logged and dropped.
func (c *Connection) Emit(event string, payload any) {
	if c == nil {
		slog.Warn("emit on missing connection", "event", event)
		return
	}

	err := c.send(event, payload)
	if err != nil {
		slog.Warn("emit failed", "namespace", c.namespace, "event", event, "error", err)
	}
}

func (c *Connection) send(event string, payload any) error {
	var data json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encoding payload: %w", err)
		}
		data = b
	}

	c.mu.Lock()
	link := c.link
	c.mu.Unlock()

	if link == nil {
		return ErrNotConnected
	}
	return link.Send(Frame{Event: event, Data: data})
}

// On registers h for event. The returned subscription removes just this handler.
func (c *Connection) On(event string, h Handler) *Subscription {
	if c == nil || h == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	id := c.nextID
	c.handlers[event] = append(c.handlers[event], handlerEntry{id: id, handler: h})

	return &Subscription{conn: c, event: event, id: id}
}

// Off removes every handler registered for event.
func (c *Connection) Off(event string) {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.handlers, event)
}

// HandlerCount returns how many handlers are registered for event.
func (c *Connection) HandlerCount(event string) int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.handlers[event])
}

func (c *Connection) remove(event string, id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries := c.handlers[event]
	for i, e := range entries {
		if e.id != id {
			continue
		}
		next := make([]handlerEntry, 0, len(entries)-1)
		next = append(next, entries[:i]...)
		next = append(next, entries[i+1:]...)
		if len(next) == 0 {
			delete(c.handlers, event)
		} else {
			c.handlers[event] = next
		}
		return
	}
}

func (c *Connection) dial(ctx context.Context, dialer Dialer) error {
	if dialer == nil {
		return ErrNoTransport
	}

	link, err := dialer.Dial(ctx, c.namespace, c.receive)
	if err != nil {
		return fmt.Errorf("dialing %q: %w", c.namespace, err)
	}

	c.mu.Lock()
	old := c.link
	c.link = link
	c.mu.Unlock()

	if old != nil {
		_ = old.Close()
	}

	go c.watch(link)
	return nil
}

// watch detaches link once the transport gives up on it.
func (c *Connection) watch(link Link) {
	<-link.Done()

	c.mu.Lock()
	if c.link == link {
		c.link = nil
	}
	c.mu.Unlock()

	slog.Info("socket link closed", "namespace", c.namespace)
}

// receive is called by the transport for every inbound frame.
func (c *Connection) receive(f Frame) {
	if c.dispatch == nil {
		c.deliver(f)
		return
	}
	c.dispatch.Post(func() { c.deliver(f) })
}

func (c *Connection) deliver(f Frame) {
	c.mu.Lock()
	entries := c.handlers[f.Event]
	c.mu.Unlock()

	for _, e := range entries {
		if !c.registered(f.Event, e.id) {
			continue
		}
		c.invoke(f, e.handler)
	}
}

func (c *Connection) registered(event string, id uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.handlers[event] {
		if e.id == id {
			return true
		}
	}
	return false
}

func (c *Connection) invoke(f Frame, h Handler) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("socket handler panicked", "namespace", c.namespace, "event", f.Event, "panic", fmt.Sprint(r))
		}
	}()
	h(f.Data)
}

func (c *Connection) close() {
	c.mu.Lock()
	link := c.link
	c.link = nil
	c.handlers = map[string][]handlerEntry{}
	c.mu.Unlock()

	if link != nil {
		if err := link.Close(); err != nil {
			slog.Warn("closing socket link", "namespace", c.namespace, "error", err)
		}
	}
}

// Subscription is the handle returned by On.
type Subscription struct {
	conn  *Connection
	event string
	id    uint64
	once  sync.Once
}

// Release removes the handler. Safe to call more than once and on nil.
func (s *Subscription) Release() {
	if s == nil || s.conn == nil {
		return
	}
	s.once.Do(func() {
		s.conn.remove(s.event, s.id)
	})
}

// OnEvent registers a handler that receives the payload decoded as T.
// Payloads that fail to decode are logged and skipped.
func OnEvent[T any](c *Connection, event string, h func(T)) *Subscription {
	return c.On(event, func(data json.RawMessage) {
		v, ok := Decode[T](data)
		if !ok {
			slog.Warn("dropping malformed payload", "namespace", c.Namespace(), "event", event)
			return
		}
		h(v)
	})
}

// Decode unmarshals data into T. An empty payload decodes to the zero value.
func Decode[T any](data json.RawMessage) (T, bool) {
	var v T
	if len(data) == 0 {
		return v, true
	}
	if err := json.Unmarshal(data, &v); err != nil {
		var zero T
		return zero, false
	}
	return v, true
}
