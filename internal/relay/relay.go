// Package relay is a development island server running on an embedded NATS
// server. It tracks which players are on which island and fans their frames out
// to the rest of the island.
package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/pixil98/go-island/internal/protocol"
	"github.com/pixil98/go-island/internal/socket"
	"golang.org/x/time/rate"
)

// DefaultChatInterval is the minimum gap the relay allows between two chat
// messages from one player.
const DefaultChatInterval = 500 * time.Millisecond

// DefaultSweepInterval is how often the relay drops players whose client
// connection has gone away without leaving.
const DefaultSweepInterval = 2 * time.Second

type Relay struct {
	ns   *server.Server
	conn *nats.Conn

	startupTimeout time.Duration
	host           string
	port           int
	chatInterval   time.Duration
	sweepInterval  time.Duration

	ready chan struct{}

	mu       sync.Mutex
	islands  map[string]map[string]*member
	location map[string]location
	limiters map[string]*rate.Limiter
}

const maxSweepConns = 1 << 16

type member struct {
	profile protocol.UserInfo
	x, y    float64
}

type location struct {
	namespace string
	islandID  string
}

func NewRelay(opts ...RelayOpt) (*Relay, error) {
	r := &Relay{
		startupTimeout: 10 * time.Second,
		host:           "127.0.0.1",
		chatInterval:   DefaultChatInterval,
		sweepInterval:  DefaultSweepInterval,
		ready:          make(chan struct{}),
		islands:        map[string]map[string]*member{},
		location:       map[string]location{},
		limiters:       map[string]*rate.Limiter{},
	}

	for _, opt := range opts {
		opt(r)
	}

	ns, err := server.NewServer(&server.Options{
		Host:   r.host,
		Port:   r.port,
		NoSigs: true, // Let the application handle signals
		NoLog:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("creating nats server: %w", err)
	}
	r.ns = ns

	return r, nil
}

func (r *Relay) Start(ctx context.Context) error {
	r.ns.Start()

	if !r.ns.ReadyForConnections(r.startupTimeout) {
		return fmt.Errorf("nats server not ready for connections")
	}

	conn, err := nats.Connect(r.ns.ClientURL(), nats.Name("island-relay"))
	if err != nil {
		return fmt.Errorf("creating nats client connection: %w", err)
	}
	r.conn = conn

	sub, err := conn.Subscribe(protocol.UpWildcard, r.handle)
	if err != nil {
		conn.Close()
		return fmt.Errorf("subscribing to %s: %w", protocol.UpWildcard, err)
	}
	if err := conn.Flush(); err != nil {
		conn.Close()
		return fmt.Errorf("flushing relay subscription: %w", err)
	}

	slog.InfoContext(ctx, "island relay listening", "addr", r.ns.Addr())
	close(r.ready)

	r.sweepUntilDone(ctx)
	_ = sub.Unsubscribe()
	r.conn.Close()
	r.ns.Shutdown()
	r.ns.WaitForShutdown()

	return nil
}

// Ready is closed once the relay accepts frames.
func (r *Relay) Ready() <-chan struct{} {
	return r.ready
}

// ClientURL is the address clients should connect to.
func (r *Relay) ClientURL() string {
	return r.ns.ClientURL()
}

// Members lists the player ids currently on an island.
func (r *Relay) Members(islandID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(r.islands[islandID]))
	for id := range r.islands[islandID] {
		ids = append(ids, id)
	}
	return ids
}

// UpdateIslandInfo tells every client on the namespace that an island's info changed.
func (r *Relay) UpdateIslandInfo(namespace, islandID string) error {
	return r.publish(protocol.BroadcastSubject(namespace), protocol.EventIslandInfoUpdated,
		protocol.IslandInfoUpdated{IslandID: islandID})
}

func (r *Relay) sweepUntilDone(ctx context.Context) {
	if r.sweepInterval <= 0 {
		<-ctx.Done()
		return
	}

	ticker := time.NewTicker(r.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.sweep()
		}
	}
}

// sweep removes players whose client connection is no longer open.
func (r *Relay) sweep() {
	connz, err := r.ns.Connz(&server.ConnzOptions{Limit: maxSweepConns})
	if err != nil {
		slog.Warn("listing relay connections", "error", err)
		return
	}

	online := make(map[string]bool, len(connz.Conns))
	for _, c := range connz.Conns {
		if id, ok := protocol.PlayerFromClientName(c.Name); ok {
			online[id] = true
		}
	}

	r.mu.Lock()
	var gone []string
	for id := range r.location {
		if !online[id] {
			gone = append(gone, id)
		}
	}
	r.mu.Unlock()

	for _, id := range gone {
		slog.Info("dropping disconnected player", "player", id)
		if err := r.leave(id); err != nil {
			slog.Warn("removing disconnected player", "player", id, "error", err)
		}
	}
}

func (r *Relay) handle(msg *nats.Msg) {
	namespace, ok := protocol.NamespaceFromUp(msg.Subject)
	if !ok {
		return
	}

	playerID := msg.Header.Get(protocol.HeaderPlayerID)
	if playerID == "" {
		slog.Warn("dropping frame without player id", "subject", msg.Subject)
		return
	}

	var f socket.Frame
	if err := json.Unmarshal(msg.Data, &f); err != nil {
		slog.Warn("dropping malformed frame", "player", playerID, "error", err)
		return
	}

	var err error
	switch f.Event {
	case protocol.EventJoinIsland:
		err = r.join(namespace, playerID, f.Data)
	case protocol.EventLeaveIsland:
		err = r.leave(playerID)
	case protocol.EventMove:
		err = r.move(playerID, f.Data)
	case protocol.EventSendMessage:
		err = r.chat(playerID, f.Data)
	case protocol.EventSendFriendRequest:
		err = r.friendRequest(namespace, playerID, f.Data)
	default:
		slog.Debug("ignoring event", "event", f.Event, "player", playerID)
	}

	if err != nil {
		slog.Warn("handling frame", "event", f.Event, "player", playerID, "error", err)
	}
}

func (r *Relay) join(namespace, playerID string, data json.RawMessage) error {
	var req protocol.JoinIsland
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("decoding join: %w", err)
	}
	if req.IslandID == "" {
		return fmt.Errorf("join without island id")
	}

	if err := r.leave(playerID); err != nil {
		return err
	}

	profile := req.Profile
	profile.ID = playerID

	r.mu.Lock()
	others := r.islands[req.IslandID]
	roster := make([]protocol.PlayerJoin, 0, len(others))
	peers := make([]string, 0, len(others))
	for id, m := range others {
		roster = append(roster, protocol.PlayerJoin{UserInfo: m.profile, X: m.x, Y: m.y})
		peers = append(peers, id)
	}
	if others == nil {
		others = map[string]*member{}
		r.islands[req.IslandID] = others
	}
	others[playerID] = &member{profile: profile, x: req.X, y: req.Y}
	r.location[playerID] = location{namespace: namespace, islandID: req.IslandID}
	r.mu.Unlock()

	err := r.publish(protocol.DownSubject(namespace, playerID), protocol.EventJoinedIsland,
		protocol.JoinedIsland{IslandID: req.IslandID, Players: roster})
	if err != nil {
		return err
	}

	return r.fanOut(namespace, peers, protocol.EventPlayerJoin,
		protocol.PlayerJoin{UserInfo: profile, X: req.X, Y: req.Y})
}

func (r *Relay) leave(playerID string) error {
	r.mu.Lock()
	loc, ok := r.location[playerID]
	if !ok {
		r.mu.Unlock()
		return nil
	}
	delete(r.location, playerID)
	delete(r.limiters, playerID)

	island := r.islands[loc.islandID]
	delete(island, playerID)
	if len(island) == 0 {
		delete(r.islands, loc.islandID)
	}
	peers := memberIDs(island)
	r.mu.Unlock()

	return r.fanOut(loc.namespace, peers, protocol.EventPlayerLeft, protocol.PlayerLeft{ID: playerID})
}

func (r *Relay) move(playerID string, data json.RawMessage) error {
	var req protocol.Move
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("decoding move: %w", err)
	}

	r.mu.Lock()
	loc, ok := r.location[playerID]
	if !ok {
		r.mu.Unlock()
		return nil
	}
	island := r.islands[loc.islandID]
	island[playerID].x, island[playerID].y = req.X, req.Y
	peers := memberIDs(island, playerID)
	r.mu.Unlock()

	return r.fanOut(loc.namespace, peers, protocol.EventPlayerMoved,
		protocol.PlayerMoved{ID: playerID, X: req.X, Y: req.Y})
}

func (r *Relay) chat(playerID string, data json.RawMessage) error {
	var req protocol.SendMessage
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("decoding message: %w", err)
	}

	r.mu.Lock()
	loc, ok := r.location[playerID]
	if !ok {
		r.mu.Unlock()
		return nil
	}
	limiter, ok := r.limiters[playerID]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(r.chatInterval), 1)
		r.limiters[playerID] = limiter
	}
	allowed := limiter.Allow()
	peers := memberIDs(r.islands[loc.islandID], playerID)
	r.mu.Unlock()

	if !allowed {
		slog.Info("chat throttled", "player", playerID)
		return nil
	}

	err := r.publish(protocol.DownSubject(loc.namespace, playerID), protocol.EventMessageSent,
		protocol.MessageSent{MessageID: uuid.NewString(), Message: req.Message})
	if err != nil {
		return err
	}

	return r.fanOut(loc.namespace, peers, protocol.EventReceiveMessage,
		protocol.ReceiveMessage{SenderID: playerID, Message: req.Message})
}

func (r *Relay) friendRequest(namespace, playerID string, data json.RawMessage) error {
	var req protocol.SendFriendRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("decoding friend request: %w", err)
	}
	if req.TargetID == "" || req.TargetID == playerID {
		return nil
	}

	return r.publish(protocol.DownSubject(namespace, req.TargetID), protocol.EventReceiveFriendRequest, nil)
}

func (r *Relay) fanOut(namespace string, playerIDs []string, event string, payload any) error {
	var firstErr error
	for _, id := range playerIDs {
		err := r.publish(protocol.DownSubject(namespace, id), event, payload)
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (r *Relay) publish(subject, event string, payload any) error {
	if r.conn == nil {
		return fmt.Errorf("relay not started")
	}

	f := socket.Frame{Event: event}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encoding %s: %w", event, err)
		}
		f.Data = data
	}

	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("encoding frame: %w", err)
	}
	return r.conn.Publish(subject, data)
}

func memberIDs(island map[string]*member, exclude ...string) []string {
	skip := make(map[string]bool, len(exclude))
	for _, id := range exclude {
		skip[id] = true
	}

	ids := make([]string, 0, len(island))
	for id := range island {
		if !skip[id] {
			ids = append(ids, id)
		}
	}
	return ids
}
