// Package wsdial is the websocket transport for the socket registry. Each
// namespace gets its own websocket at <base>/<namespace>; frames travel as
// JSON text messages. Dropped connections are redialed with exponential backoff.
package wsdial

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gorilla/websocket"
	"github.com/pixil98/go-island/internal/socket"
)

const (
	DefaultWriteWait        = 10 * time.Second
	DefaultHandshakeTimeout = 10 * time.Second
	DefaultInitialBackoff   = 500 * time.Millisecond
	DefaultMaxBackoff       = 30 * time.Second
)

// TokenSource returns the bearer token to present, or "" for a guest.
type TokenSource func() string

type Dialer struct {
	baseURL        string
	token          TokenSource
	ws             *websocket.Dialer
	writeWait      time.Duration
	initialBackoff time.Duration
	maxBackoff     time.Duration
	maxAttempts    int
}

func New(baseURL string, opts ...Opt) *Dialer {
	d := &Dialer{
		baseURL:        strings.TrimRight(baseURL, "/"),
		ws:             &websocket.Dialer{HandshakeTimeout: DefaultHandshakeTimeout},
		writeWait:      DefaultWriteWait,
		initialBackoff: DefaultInitialBackoff,
		maxBackoff:     DefaultMaxBackoff,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

func (d *Dialer) Dial(ctx context.Context, namespace string, deliver func(socket.Frame)) (socket.Link, error) {
	conn, err := d.dial(ctx, namespace)
	if err != nil {
		return nil, err
	}

	linkCtx, cancel := context.WithCancel(context.Background())
	l := &link{
		dialer:    d,
		namespace: namespace,
		deliver:   deliver,
		conn:      conn,
		ctx:       linkCtx,
		cancel:    cancel,
		closing:   make(chan struct{}),
		done:      make(chan struct{}),
	}
	go l.run()

	return l, nil
}

func (d *Dialer) dial(ctx context.Context, namespace string) (*websocket.Conn, error) {
	header := http.Header{}
	if d.token != nil {
		if tok := d.token(); tok != "" {
			header.Set("Authorization", "Bearer "+tok)
		}
	}

	url := fmt.Sprintf("%s/%s", d.baseURL, namespace)
	conn, _, err := d.ws.DialContext(ctx, url, header)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", url, err)
	}
	return conn, nil
}

func (d *Dialer) newBackoff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = d.initialBackoff
	b.MaxInterval = d.maxBackoff
	return b
}

type link struct {
	dialer    *Dialer
	namespace string
	deliver   func(socket.Frame)

	mu   sync.Mutex
	conn *websocket.Conn

	// ctx bounds redials; Close cancels it.
	ctx    context.Context
	cancel context.CancelFunc

	closeOnce sync.Once
	closing   chan struct{}
	done      chan struct{}
}

func (l *link) Send(f socket.Frame) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.conn == nil {
		return socket.ErrNotConnected
	}
	if err := l.conn.SetWriteDeadline(time.Now().Add(l.dialer.writeWait)); err != nil {
		return fmt.Errorf("setting write deadline: %w", err)
	}
	return l.conn.WriteJSON(f)
}

func (l *link) Done() <-chan struct{} {
	return l.done
}

func (l *link) Close() error {
	var err error
	l.closeOnce.Do(func() {
		close(l.closing)
		l.cancel()

		l.mu.Lock()
		conn := l.conn
		l.conn = nil
		l.mu.Unlock()

		if conn != nil {
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
			err = conn.Close()
		}
	})
	<-l.done
	return err
}

func (l *link) run() {
	defer close(l.done)
	defer l.cancel()

	for {
		l.mu.Lock()
		conn := l.conn
		l.mu.Unlock()
		if conn == nil {
			return
		}

		err := l.read(conn)
		if l.isClosing() {
			return
		}
		slog.Warn("websocket dropped", "namespace", l.namespace, "error", err)

		l.mu.Lock()
		if l.conn == conn {
			l.conn = nil
		}
		l.mu.Unlock()
		_ = conn.Close()

		if !l.reconnect() {
			return
		}
	}
}

func (l *link) read(conn *websocket.Conn) error {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var f socket.Frame
		if err := json.Unmarshal(data, &f); err != nil || f.Event == "" {
			slog.Warn("dropping malformed frame", "namespace", l.namespace, "error", err)
			continue
		}
		l.deliver(f)
	}
}

func (l *link) reconnect() bool {
	b := l.dialer.newBackoff()

	for attempt := 1; ; attempt++ {
		if l.dialer.maxAttempts > 0 && attempt > l.dialer.maxAttempts {
			slog.Error("giving up on websocket", "namespace", l.namespace, "attempts", attempt-1)
			return false
		}

		wait := b.NextBackOff()
		if wait == backoff.Stop {
			return false
		}

		select {
		case <-l.closing:
			return false
		case <-time.After(wait):
		}

		conn, err := l.dialer.dial(l.ctx, l.namespace)
		if err != nil {
			if l.isClosing() {
				return false
			}
			slog.Warn("websocket redial failed", "namespace", l.namespace, "attempt", attempt, "error", err)
			continue
		}

		l.mu.Lock()
		if l.isClosing() {
			l.mu.Unlock()
			_ = conn.Close()
			return false
		}
		l.conn = conn
		l.mu.Unlock()

		slog.Info("websocket reconnected", "namespace", l.namespace, "attempt", attempt)
		return true
	}
}

func (l *link) isClosing() bool {
	select {
	case <-l.closing:
		return true
	default:
		return false
	}
}
