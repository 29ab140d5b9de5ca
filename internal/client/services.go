// Package client wires the island client together. Services are built in a
// fixed order and torn down in the reverse one.
package client

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pixil98/go-island/internal/audio"
	"github.com/pixil98/go-island/internal/chat"
	"github.com/pixil98/go-island/internal/driver"
	"github.com/pixil98/go-island/internal/eventbus"
	"github.com/pixil98/go-island/internal/menu"
	"github.com/pixil98/go-island/internal/notice"
	"github.com/pixil98/go-island/internal/player"
	"github.com/pixil98/go-island/internal/protocol"
	"github.com/pixil98/go-island/internal/querycache"
	"github.com/pixil98/go-island/internal/scene"
	"github.com/pixil98/go-island/internal/session"
	"github.com/pixil98/go-island/internal/socket"
	"github.com/pixil98/go-island/internal/spawn"
)

// Services holds every process-wide piece of the client.
type Services struct {
	Store    *session.Store
	Driver   *driver.Driver
	Bus      *eventbus.Bus
	Sockets  *socket.Registry
	Window   *audio.Window
	Audio    *audio.Manager
	Players  *player.Registry
	Spawner  *spawn.Spawner
	Director *scene.Director
	Cache    *querycache.Cache
	Chat     *chat.Panel
	Menu     *menu.Header
	Notifier notice.Notifier

	clientID   string
	tickLength time.Duration
	input      spawn.Input
	logout     menu.LogoutFunc
	reload     func()
	filter     chat.Filter
	output     *audio.Output

	mu     sync.Mutex
	runCtx context.Context
}

// New builds the services on top of store, dialing the server through dialer.
func New(store *session.Store, dialer socket.Dialer, opts ...Opt) *Services {
	s := &Services{
		Store:      store,
		Notifier:   notice.Log{},
		Window:     audio.NewWindow(),
		clientID:   "guest-" + uuid.NewString(),
		tickLength: driver.DefaultTickLength,
		output:     audio.NewOutput(),
		runCtx:     context.Background(),
	}
	s.reload = s.requestReload

	for _, opt := range opts {
		opt(s)
	}

	if s.Store == nil {
		s.Store = session.NewStore(nil)
	}
	s.Driver = driver.NewDriver(nil, driver.WithTickLength(s.tickLength))
	s.Bus = eventbus.New()
	s.Sockets = socket.NewRegistry(dialer, s.Driver)
	s.Audio = audio.NewManager(s.Store, s.Window)
	s.Players = player.NewRegistry()
	s.Spawner = spawn.NewSpawner()
	s.Director = scene.NewDirector(s.Bus, s.Sockets, s.Audio, s.Players, s.Spawner, s.Store, s.Notifier,
		scene.WithClientID(s.clientID),
		scene.WithInput(s.input),
		scene.WithOutput(s.output),
		scene.WithFrameTime(s.tickLength),
	)
	s.Driver.AddManager(s.Director)

	s.Cache = querycache.New()

	var chatOpts []chat.PanelOpt
	if s.filter != nil {
		chatOpts = append(chatOpts, chat.WithFilter(s.filter))
	}
	s.Chat = chat.NewPanel(s.Bus, s.Players, s.Store, s.Notifier, chatOpts...)

	var menuOpts []menu.HeaderOpt
	if s.logout != nil {
		menuOpts = append(menuOpts, menu.WithLogout(s.logout))
	}
	if s.reload != nil {
		menuOpts = append(menuOpts, menu.WithReload(s.reload))
	}
	s.Menu = menu.NewHeader(s.Bus, s.Sockets, s.Audio, s.Store, s.Cache, s.Notifier, s.Driver, menuOpts...)

	return s
}

// ClientID is the id the client uses while nobody is logged in.
func (s *Services) ClientID() string {
	return s.clientID
}

// Output is the sound log every scene writes to.
func (s *Services) Output() *audio.Output {
	return s.output
}

// Boot starts the first scene and mounts the UI logic.
func (s *Services) Boot(ctx context.Context) error {
	s.mu.Lock()
	s.runCtx = ctx
	s.mu.Unlock()

	if err := s.Director.Boot(ctx); err != nil {
		return err
	}
	s.Chat.Mount(s.Sockets.Connect(ctx, protocol.NamespaceIsland))
	s.Menu.Mount(ctx)
	return nil
}

// Start boots the client and runs the driver loop until ctx is done.
func (s *Services) Start(ctx context.Context) error {
	if err := s.Boot(ctx); err != nil {
		return err
	}
	defer s.Close()

	slog.InfoContext(ctx, "client running", "client_id", s.clientID)
	return s.Driver.Start(ctx)
}

// Reload rebuilds the simulation from the session store: the scene, the
// sockets, the cached queries, the chat log and every UI subscription start
// over. The scene is torn down before the sockets close so the server sees
// the player leave.
func (s *Services) Reload(ctx context.Context) error {
	s.Menu.Unmount()
	s.Chat.Unmount()
	s.Director.Close()
	s.Sockets.CloseAll()
	s.Cache.Clear()
	s.Chat.Reset()

	return s.Boot(ctx)
}

func (s *Services) requestReload() {
	s.Driver.Post(func() {
		s.mu.Lock()
		ctx := s.runCtx
		s.mu.Unlock()

		if err := s.Reload(ctx); err != nil {
			slog.ErrorContext(ctx, "reloading client", "error", err)
			s.Notifier.Reload(notice.DefaultReloadMessage)
		}
	})
}

// Close tears everything down, newest first.
func (s *Services) Close() {
	s.Menu.Unmount()
	s.Chat.Unmount()
	s.Director.Close()
	s.Players.Clear()
	s.Sockets.CloseAll()
	s.Driver.Drain()
}
