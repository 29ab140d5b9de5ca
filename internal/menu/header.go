// Package menu is the logic behind the menu header: background music toggle,
// friend request counter, island navigation and logout.
package menu

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pixil98/go-island/internal/audio"
	"github.com/pixil98/go-island/internal/auth"
	"github.com/pixil98/go-island/internal/display"
	"github.com/pixil98/go-island/internal/driver"
	"github.com/pixil98/go-island/internal/eventbus"
	"github.com/pixil98/go-island/internal/notice"
	"github.com/pixil98/go-island/internal/protocol"
	"github.com/pixil98/go-island/internal/querycache"
	"github.com/pixil98/go-island/internal/scene"
	"github.com/pixil98/go-island/internal/scope"
	"github.com/pixil98/go-island/internal/session"
	"github.com/pixil98/go-island/internal/socket"
	"github.com/pixil98/go-island/internal/storage"
)

const (
	FriendRequestKey   = "unreadFriendRequest"
	IslandInfoKey      = "islandInfo"
	DefaultBannerTime  = 5 * time.Second
	LogoutFailedNotice = "로그아웃에 실패했어요.. 나중에 다시 시도해주세요."
	LostSceneNotice    = "문제가 발생했어요 새로고침 시 해결될 거에요!.."
)

// FriendRequests is the cached unread friend request counter.
type FriendRequests struct {
	Count int `json:"count"`
}

// LogoutFunc asks the server to end the session.
type LogoutFunc func(ctx context.Context) error

// Scheduler runs fn on the client's logical thread after d.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) *driver.Timer
}

type Header struct {
	bus       *eventbus.Bus
	sockets   *socket.Registry
	audio     *audio.Manager
	store     *session.Store
	cache     *querycache.Cache
	notifier  notice.Notifier
	scheduler Scheduler

	logout     LogoutFunc
	reload     func()
	bannerTime time.Duration
	now        func() time.Time

	mu          sync.Mutex
	scope       *scope.Scope
	conn        *socket.Connection
	banner      bool
	bannerTimer *driver.Timer
	playBgm     bool
}

func NewHeader(bus *eventbus.Bus, sockets *socket.Registry, am *audio.Manager, store *session.Store,
	cache *querycache.Cache, notifier notice.Notifier, scheduler Scheduler, opts ...HeaderOpt) *Header {
	h := &Header{
		bus:        bus,
		sockets:    sockets,
		audio:      am,
		store:      store,
		cache:      cache,
		notifier:   notifier,
		scheduler:  scheduler,
		bannerTime: DefaultBannerTime,
		now:        time.Now,
		playBgm:    true,
		reload: func() {
			slog.Info("reload requested")
		},
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Mount subscribes to the island connection and applies the persisted BGM
// preference.
func (h *Header) Mount(ctx context.Context) *scope.Scope {
	h.Unmount()

	conn := h.sockets.Connect(ctx, protocol.NamespaceIsland)
	s := scope.New()

	conn.On(protocol.EventReceiveFriendRequest, func(json.RawMessage) { h.onFriendRequest(s) })
	socket.OnEvent(conn, protocol.EventIslandInfoUpdated, h.onIslandInfoUpdated)
	s.AddFunc(func() {
		conn.Off(protocol.EventReceiveFriendRequest)
		conn.Off(protocol.EventIslandInfoUpdated)
	})
	s.AddFunc(h.stopBanner)

	play := session.LookupOr(h.store, session.Durable, session.KeyPlayBgm, true)
	if !play {
		if a := h.audio.InstanceSafe(); a != nil {
			a.PauseBgm()
		}
	}

	h.mu.Lock()
	h.scope = s
	h.conn = conn
	h.playBgm = play
	h.mu.Unlock()

	return s
}

func (h *Header) Unmount() {
	h.mu.Lock()
	s := h.scope
	h.scope = nil
	h.conn = nil
	h.mu.Unlock()

	if s != nil {
		s.Close()
	}
}

func (h *Header) onFriendRequest(s *scope.Scope) {
	err := querycache.Update(h.cache, FriendRequestKey, func(old *FriendRequests) FriendRequests {
		if old == nil {
			return FriendRequests{Count: 1}
		}
		return FriendRequests{Count: old.Count + 1}
	})
	if err != nil {
		slog.Error("updating friend request count", "error", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.banner = true
	if h.bannerTimer != nil {
		h.bannerTimer.Stop()
	}
	h.bannerTimer = h.scheduler.AfterFunc(h.bannerTime, s.Guard(func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.banner = false
		h.bannerTimer = nil
	}))
}

func (h *Header) stopBanner() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.bannerTimer != nil {
		h.bannerTimer.Stop()
		h.bannerTimer = nil
	}
	h.banner = false
}

func (h *Header) onIslandInfoUpdated(m protocol.IslandInfoUpdated) {
	h.cache.Invalidate(querycache.Key(IslandInfoKey, m.IslandID))
}

// BannerVisible reports whether the "new friend request" banner is up.
func (h *Header) BannerVisible() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.banner
}

// FriendRequestCount is the cached unread friend request count.
func (h *Header) FriendRequestCount() int {
	var fr FriendRequests
	if _, err := h.cache.Get(FriendRequestKey, &fr); err != nil {
		slog.Warn("reading friend request count", "error", err)
		return 0
	}
	return fr.Count
}

func (h *Header) FriendRequestBadge() string {
	return display.Badge(h.FriendRequestCount())
}

func (h *Header) PlayBgm() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.playBgm
}

// ToggleBgm flips background music and persists the choice. It returns the
// new setting.
func (h *Header) ToggleBgm() bool {
	h.mu.Lock()
	play := !h.playBgm
	h.playBgm = play
	h.mu.Unlock()

	if a := h.audio.InstanceSafe(); a != nil {
		if play {
			a.ResumeBgm()
		} else {
			a.PauseBgm()
		}
	}

	if err := h.store.Set(session.Durable, session.KeyPlayBgm, play); err != nil {
		slog.Warn("persisting bgm preference", "error", err)
	}
	return play
}

func (h *Header) currentScene() scene.Key {
	k, _ := session.Lookup[scene.Key](h.store, session.Ephemeral, session.KeyCurrentScene)
	return k
}

// ExitVisible reports whether the leave island action is offered.
func (h *Header) ExitVisible() bool {
	k := h.currentScene()
	return k != "" && k != scene.Loby
}

// IslandInfoVisible reports whether the island info action is offered.
func (h *Header) IslandInfoVisible() bool {
	return h.currentScene() == scene.Island
}

// MyIslandVisible reports whether the "my island" action is offered.
func (h *Header) MyIslandVisible() bool {
	return h.LoggedIn() && h.currentScene() == scene.Loby
}

// LeaveIsland asks the simulation to leave whatever island it is on.
func (h *Header) LeaveIsland() {
	switch k := h.currentScene(); k {
	case scene.Island:
		h.bus.EmitToSimulation(eventbus.TopicLeftIsland, nil)
	case scene.MyIsland:
		h.bus.EmitToSimulation(eventbus.TopicChangeToLoby, nil)
	default:
		slog.Warn("leave requested outside an island", "scene", k)
		h.notifier.Reload(LostSceneNotice)
	}
}

func (h *Header) MoveToMyIsland() {
	h.bus.EmitToSimulation(eventbus.TopicChangeToMyIsland, nil)
}

// Login opens the login modal.
func (h *Header) Login() {
	h.bus.EmitToUI(eventbus.TopicOpenLoginModal, nil)
}

// LoggedIn reports whether a stored access token is present and unexpired.
func (h *Header) LoggedIn() bool {
	token, ok := session.Lookup[string](h.store, session.Durable, session.KeyAccessToken)
	return ok && auth.Valid(token, h.now())
}

// Logout ends the session. On success the stored credentials are dropped and
// the client reloads into the lobby; the reload leaves the island and closes
// the sockets. On failure the player is told to try again later.
func (h *Header) Logout(ctx context.Context) error {
	if h.logout != nil {
		if err := h.logout(ctx); err != nil {
			uerr := notice.NewUserError(LogoutFailedNotice, err)
			notice.Report(h.notifier, uerr)
			return fmt.Errorf("logging out: %w", uerr)
		}
	}

	for _, key := range []storage.Identifier{session.KeyAccessToken, session.KeyProfile} {
		if err := h.store.Remove(session.Durable, key); err != nil {
			slog.Warn("clearing session", "key", key, "error", err)
		}
	}
	if err := h.store.Set(session.Ephemeral, session.KeyCurrentScene, scene.Loby); err != nil {
		slog.Warn("resetting current scene", "error", err)
	}

	h.reload()

	return nil
}
