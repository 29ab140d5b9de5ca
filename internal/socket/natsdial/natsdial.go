// Package natsdial carries socket frames over NATS. A client publishes on the
// namespace's up subject with its player id in a header and listens on its own
// down subject plus the namespace broadcast subject.
package natsdial

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/nats-io/nats.go"
	"github.com/pixil98/go-island/internal/protocol"
	"github.com/pixil98/go-island/internal/socket"
)

// DefaultInboxSize bounds frames buffered per link before nats.go reports a
// slow consumer.
const DefaultInboxSize = 256

type Dialer struct {
	conn     *nats.Conn
	playerID string

	closed chan struct{}
}

// Connect opens the shared NATS connection used by every namespace link.
// nats.go owns reconnection; links only report done once the connection is
// closed for good.
func Connect(url string, playerID string, opts ...nats.Option) (*Dialer, error) {
	d := &Dialer{
		playerID: playerID,
		closed:   make(chan struct{}),
	}

	var once sync.Once
	opts = append([]nats.Option{
		nats.Name(protocol.ClientName(playerID)),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn("nats disconnected", "player", playerID, "error", err)
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			slog.Info("nats reconnected", "player", playerID, "url", c.ConnectedUrl())
		}),
		nats.ClosedHandler(func(*nats.Conn) {
			once.Do(func() { close(d.closed) })
		}),
	}, opts...)

	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to nats at %s: %w", url, err)
	}
	d.conn = conn

	return d, nil
}

func (d *Dialer) PlayerID() string {
	return d.playerID
}

// Close closes the shared connection and with it every link.
func (d *Dialer) Close() {
	if d.conn != nil {
		d.conn.Close()
	}
}

func (d *Dialer) Dial(ctx context.Context, namespace string, deliver func(socket.Frame)) (socket.Link, error) {
	if d.conn == nil || d.conn.IsClosed() {
		return nil, socket.ErrNotConnected
	}

	l := &link{
		dialer:    d,
		namespace: namespace,
		deliver:   deliver,
		msgs:      make(chan *nats.Msg, DefaultInboxSize),
		closing:   make(chan struct{}),
		done:      make(chan struct{}),
	}

	// Both subjects feed one channel so frames are delivered from one goroutine.
	for _, subject := range []string{
		protocol.DownSubject(namespace, d.playerID),
		protocol.BroadcastSubject(namespace),
	} {
		sub, err := d.conn.ChanSubscribe(subject, l.msgs)
		if err != nil {
			l.unsubscribe()
			return nil, fmt.Errorf("subscribing to %s: %w", subject, err)
		}
		l.subs = append(l.subs, sub)
	}

	if err := d.conn.FlushWithContext(ctx); err != nil {
		l.unsubscribe()
		return nil, fmt.Errorf("flushing subscriptions: %w", err)
	}

	go l.watch()

	return l, nil
}

type link struct {
	dialer    *Dialer
	namespace string
	deliver   func(socket.Frame)
	msgs      chan *nats.Msg
	subs      []*nats.Subscription

	closeOnce sync.Once
	closing   chan struct{}
	done      chan struct{}
}

func (l *link) Send(f socket.Frame) error {
	if l.isClosing() || l.dialer.conn.IsClosed() {
		return socket.ErrNotConnected
	}

	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("encoding frame: %w", err)
	}

	msg := nats.NewMsg(protocol.UpSubject(l.namespace))
	msg.Header.Set(protocol.HeaderPlayerID, l.dialer.playerID)
	msg.Data = data
	return l.dialer.conn.PublishMsg(msg)
}

func (l *link) Done() <-chan struct{} {
	return l.done
}

func (l *link) Close() error {
	l.closeOnce.Do(func() {
		close(l.closing)
	})
	<-l.done
	return nil
}

func (l *link) watch() {
	defer close(l.done)
	defer l.unsubscribe()

	for {
		select {
		case <-l.closing:
			return
		case <-l.dialer.closed:
			return
		case msg := <-l.msgs:
			var f socket.Frame
			if err := json.Unmarshal(msg.Data, &f); err != nil || f.Event == "" {
				slog.Warn("dropping malformed frame", "subject", msg.Subject, "error", err)
				continue
			}
			l.deliver(f)
		}
	}
}

func (l *link) unsubscribe() {
	for _, sub := range l.subs {
		if err := sub.Unsubscribe(); err != nil && !l.dialer.conn.IsClosed() {
			slog.Warn("unsubscribing", "subject", sub.Subject, "error", err)
		}
	}
	l.subs = nil
}

func (l *link) isClosing() bool {
	select {
	case <-l.closing:
		return true
	default:
		return false
	}
}
