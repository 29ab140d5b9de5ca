package scene

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pixil98/go-island/internal/audio"
	"github.com/pixil98/go-island/internal/auth"
	"github.com/pixil98/go-island/internal/display"
	"github.com/pixil98/go-island/internal/driver"
	"github.com/pixil98/go-island/internal/eventbus"
	"github.com/pixil98/go-island/internal/notice"
	"github.com/pixil98/go-island/internal/player"
	"github.com/pixil98/go-island/internal/protocol"
	"github.com/pixil98/go-island/internal/session"
	"github.com/pixil98/go-island/internal/socket"
	"github.com/pixil98/go-island/internal/spawn"
)

const (
	LobyIslandID  = "loby"
	GuestNickname = "게스트"
	GuestAvatar   = "purple_pawn"
)

var DefaultSpawnPoint = spawn.Position{X: 400, Y: 300}

// Data is handed to a scene when it starts.
type Data struct {
	IslandID string
}

type request struct {
	key  Key
	data Data
}

// Director runs one scene at a time. Transitions asked for over the event
// bus are applied on the next Tick so a scene is never torn down from inside
// one of its own handlers.
type Director struct {
	bus      *eventbus.Bus
	sockets  *socket.Registry
	audio    *audio.Manager
	players  *player.Registry
	spawner  *spawn.Spawner
	store    *session.Store
	notifier notice.Notifier

	input      spawn.Input
	output     *audio.Output
	clientID   string
	frame      time.Duration
	spawnPoint spawn.Position
	now        func() time.Time

	mu      sync.Mutex
	current *Scene
	pending *request
}

func NewDirector(bus *eventbus.Bus, sockets *socket.Registry, am *audio.Manager, players *player.Registry,
	spawner *spawn.Spawner, store *session.Store, notifier notice.Notifier, opts ...DirectorOpt) *Director {
	d := &Director{
		bus:        bus,
		sockets:    sockets,
		audio:      am,
		players:    players,
		spawner:    spawner,
		store:      store,
		notifier:   notifier,
		output:     audio.NewOutput(),
		clientID:   "guest-" + uuid.NewString(),
		frame:      driver.DefaultTickLength,
		spawnPoint: DefaultSpawnPoint,
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Current is the running scene, or nil.
func (d *Director) Current() *Scene {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.current
}

// Output is where every scene's mixer writes.
func (d *Director) Output() *audio.Output {
	return d.output
}

// Boot runs the boot scene and moves on to the lobby, or back to the
// player's own island when that is where the last session ended.
func (d *Director) Boot(ctx context.Context) error {
	last, _ := session.Lookup[Key](d.store, session.Durable, session.KeyLastScene)

	if err := d.Start(ctx, Boot, Data{}); err != nil {
		return err
	}

	if last == MyIsland {
		if _, loggedIn := d.profile(); loggedIn {
			err := d.Start(ctx, MyIsland, Data{})
			if err == nil {
				return nil
			}
			slog.WarnContext(ctx, "resuming last scene", "scene", last, "error", err)
		}
	}
	return d.Start(ctx, Loby, Data{})
}

// Request queues a transition for the next Tick. A later request replaces an
// earlier one that has not run yet.
func (d *Director) Request(key Key, data Data) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending = &request{key: key, data: data}
}

// Tick applies a pending transition and advances every entity by one frame.
func (d *Director) Tick(ctx context.Context) error {
	d.mu.Lock()
	req := d.pending
	d.pending = nil
	d.mu.Unlock()

	if req != nil {
		if err := d.Start(ctx, req.key, req.data); err != nil {
			slog.ErrorContext(ctx, "changing scene", "scene", req.key, "error", err)
			notice.Report(d.notifier, err)
		}
	}

	if s := d.Current(); s != nil {
		s.update(d.frame.Seconds())
	}
	return nil
}

// Start tears down the running scene and creates key in its place.
func (d *Director) Start(ctx context.Context, key Key, data Data) error {
	profile, loggedIn := d.profile()

	islandID, err := d.islandFor(key, data, profile, loggedIn)
	if err != nil {
		return err
	}

	d.teardown()

	s := newScene(key, islandID, d.output)
	if err := d.store.Set(session.Ephemeral, session.KeyCurrentScene, key); err != nil {
		slog.WarnContext(ctx, "recording current scene", "scene", key, "error", err)
	}
	if key != Boot {
		if err := d.store.Set(session.Durable, session.KeyLastScene, key); err != nil {
			slog.WarnContext(ctx, "recording last scene", "scene", key, "error", err)
		}
	}

	// The track always exists so the bgm toggle can resume it.
	a := d.audio.Init(s)
	if bgm := key.Bgm(); bgm != "" {
		a.PlayBgm(bgm, audio.DefaultBgmVolume, true)
		if !session.LookupOr(d.store, session.Durable, session.KeyPlayBgm, true) {
			a.PauseBgm()
		}
	}

	if islandID != "" {
		d.join(ctx, s, profile)
	}

	d.mu.Lock()
	d.current = s
	d.mu.Unlock()

	slog.InfoContext(ctx, "scene started", "scene", key, "island", islandID)
	return nil
}

// Close tears down the running scene and the audio subsystem.
func (d *Director) Close() {
	d.mu.Lock()
	d.pending = nil
	d.mu.Unlock()

	d.teardown()
	d.audio.Destroy()
}

func (d *Director) islandFor(key Key, data Data, profile protocol.UserInfo, loggedIn bool) (string, error) {
	switch key {
	case Boot:
		return "", nil
	case Loby:
		return LobyIslandID, nil
	case Island:
		if data.IslandID == "" {
			return "", fmt.Errorf("starting %s: %w", key, ErrNoIsland)
		}
		return data.IslandID, nil
	case MyIsland:
		if !loggedIn {
			d.bus.EmitToUI(eventbus.TopicOpenLoginModal, nil)
			return "", fmt.Errorf("starting %s: %w", key, ErrLoginRequired)
		}
		return profile.ID, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownScene, key)
	}
}

func (d *Director) profile() (protocol.UserInfo, bool) {
	return LocalProfile(d.store, d.clientID, d.now())
}

// LocalProfile is the stored profile when the player is logged in, or a guest
// profile under clientID. The flag reports whether the player is logged in.
func LocalProfile(store *session.Store, clientID string, now time.Time) (protocol.UserInfo, bool) {
	token, ok := session.Lookup[string](store, session.Durable, session.KeyAccessToken)
	loggedIn := ok && auth.Valid(token, now)

	if loggedIn {
		if p, ok := session.Lookup[protocol.UserInfo](store, session.Durable, session.KeyProfile); ok && p.ID != "" {
			p.Nickname = display.Normalize(p.Nickname)
			return p, true
		}
	}

	return protocol.UserInfo{
		ID:        clientID,
		Nickname:  GuestNickname,
		AvatarKey: GuestAvatar,
	}, false
}

func (d *Director) join(ctx context.Context, s *Scene, profile protocol.UserInfo) {
	conn := d.sockets.Connect(ctx, protocol.NamespaceIsland)
	s.conn = conn

	s.scope.Add(socket.OnEvent(conn, protocol.EventPlayerJoin, func(m protocol.PlayerJoin) { d.onPlayerJoin(s, m) }))
	s.scope.Add(socket.OnEvent(conn, protocol.EventJoinedIsland, func(m protocol.JoinedIsland) { d.onJoinedIsland(s, m) }))
	s.scope.Add(socket.OnEvent(conn, protocol.EventPlayerLeft, d.onPlayerLeft))
	s.scope.Add(socket.OnEvent(conn, protocol.EventPlayerMoved, d.onPlayerMoved))

	s.scope.Add(d.bus.OnSimulationEvent(eventbus.TopicLeftIsland, func(any) { d.Request(Loby, Data{}) }))
	s.scope.Add(d.bus.OnSimulationEvent(eventbus.TopicChangeToLoby, func(any) { d.Request(Loby, Data{}) }))
	s.scope.Add(d.bus.OnSimulationEvent(eventbus.TopicChangeToMyIsland, func(any) { d.onChangeToMyIsland() }))
	s.scope.Add(d.bus.OnSimulationEvent(eventbus.TopicMySpeechBubble, func(p any) { d.onMySpeechBubble(s, p) }))
	s.scope.Add(d.bus.OnSimulationEvent(eventbus.TopicOtherSpeechBubble, d.onOtherSpeechBubble))

	local := d.spawner.Spawn(s, profile, d.spawnPoint, true, d.input, conn)
	s.setLocal(local)
	isLocal := true
	d.players.Upsert(profile.ID, player.Fields{
		Nickname:  &profile.Nickname,
		AvatarKey: &profile.AvatarKey,
		IsLocal:   &isLocal,
		Entity:    local,
	})

	conn.Emit(protocol.EventJoinIsland, protocol.JoinIsland{
		IslandID: s.islandID,
		Profile:  profile,
		X:        d.spawnPoint.X,
		Y:        d.spawnPoint.Y,
	})
}

func (d *Director) teardown() {
	d.mu.Lock()
	s := d.current
	d.current = nil
	d.mu.Unlock()

	if s == nil {
		return
	}

	s.scope.Close()
	if s.conn != nil {
		s.conn.Emit(protocol.EventLeaveIsland, protocol.LeaveIsland{IslandID: s.islandID})
	}
	for _, e := range d.players.Clear() {
		if e.Entity != nil {
			e.Entity.Destroy()
		}
	}
	s.destroy()

	slog.Info("scene torn down", "scene", s.key)
}

func (d *Director) isLocal(id string) bool {
	e, ok := d.players.Get(id)
	return ok && e.IsLocal
}

// addRemote spawns p, or refreshes it when it is already present. It
// reports whether p is new.
func (d *Director) addRemote(s *Scene, p protocol.PlayerJoin) bool {
	if p.ID == "" || d.isLocal(p.ID) {
		return false
	}

	nickname := display.Normalize(p.Nickname)
	fields := player.Fields{Nickname: &nickname, AvatarKey: &p.AvatarKey}
	pos := spawn.Position{X: p.X, Y: p.Y}

	if e, ok := d.players.Get(p.ID); ok {
		if ent, ok := e.Entity.(spawn.Entity); ok {
			ent.MoveTo(pos)
		}
		d.players.Upsert(p.ID, fields)
		return false
	}

	profile := p.UserInfo
	profile.Nickname = nickname
	fields.Entity = d.spawner.Spawn(s, profile, pos, false, nil, nil)
	d.players.Upsert(p.ID, fields)
	return true
}

func (d *Director) onPlayerJoin(s *Scene, m protocol.PlayerJoin) {
	if !d.addRemote(s, m) {
		return
	}
	m.Nickname = display.Normalize(m.Nickname)
	d.bus.EmitToUI(eventbus.TopicNewPlayer, m)
}

func (d *Director) onJoinedIsland(s *Scene, m protocol.JoinedIsland) {
	if m.IslandID != "" && m.IslandID != s.islandID {
		slog.Warn("roster for another island", "island", m.IslandID, "scene_island", s.islandID)
		return
	}
	for _, p := range m.Players {
		d.addRemote(s, p)
	}
}

// onPlayerLeft tells the chat before the entry goes so it can still name the player.
func (d *Director) onPlayerLeft(m protocol.PlayerLeft) {
	if m.ID == "" || d.isLocal(m.ID) {
		return
	}
	if _, ok := d.players.Get(m.ID); !ok {
		return
	}

	d.bus.EmitToUI(eventbus.TopicPlayerLeftChat, m)

	e, ok := d.players.Remove(m.ID)
	if ok && e.Entity != nil {
		e.Entity.Destroy()
	}
}

func (d *Director) onPlayerMoved(m protocol.PlayerMoved) {
	if d.isLocal(m.ID) {
		return
	}
	if ent, ok := d.entity(m.ID); ok {
		ent.MoveTo(spawn.Position{X: m.X, Y: m.Y})
	}
}

func (d *Director) onChangeToMyIsland() {
	if _, loggedIn := d.profile(); !loggedIn {
		d.bus.EmitToUI(eventbus.TopicOpenLoginModal, nil)
		return
	}
	d.Request(MyIsland, Data{})
}

func (d *Director) onMySpeechBubble(s *Scene, payload any) {
	m, ok := payload.(protocol.MessageSent)
	if !ok {
		slog.Warn("unexpected mySpeechBubble payload", "payload", payload)
		return
	}
	if local := s.Local(); local != nil {
		local.Say(m.Message)
	}
}

func (d *Director) onOtherSpeechBubble(payload any) {
	m, ok := payload.(protocol.ReceiveMessage)
	if !ok {
		slog.Warn("unexpected otherSpeechBubble payload", "payload", payload)
		return
	}
	if ent, ok := d.entity(m.SenderID); ok {
		ent.Say(m.Message)
	}
}

func (d *Director) entity(id string) (spawn.Entity, bool) {
	e, ok := d.players.Get(id)
	if !ok {
		return nil, false
	}
	ent, ok := e.Entity.(spawn.Entity)
	return ent, ok
}
