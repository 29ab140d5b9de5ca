package command

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/pixil98/go-island/internal/client"
	"github.com/pixil98/go-island/internal/logging"
	"github.com/pixil98/go-island/internal/relay"
	"github.com/pixil98/go-island/internal/scene"
	"github.com/pixil98/go-island/internal/session"
	"github.com/pixil98/go-service"
)

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}

	_, closeLog, err := logging.Setup(cfg.Logging.build())
	if err != nil {
		return nil, fmt.Errorf("setting up logging: %w", err)
	}

	durable, closeStore, err := cfg.Storage.buildStore()
	if err != nil {
		_ = closeLog()
		return nil, fmt.Errorf("building storage: %w", err)
	}
	store := session.NewStore(durable)

	if cfg.Server.AccessToken != "" {
		if err := store.Set(session.Durable, session.KeyAccessToken, cfg.Server.AccessToken); err != nil {
			slog.Warn("seeding access token", "error", err)
		}
	}

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "guest-" + uuid.NewString()
	}

	cw := &clientWorker{
		cfg:      cfg,
		store:    store,
		clientID: clientID,
	}
	workers := service.WorkerList{
		"client":   cw,
		"releaser": &releaser{closers: []func() error{closeStore, closeLog}},
	}

	if cfg.Relay.Enabled {
		r, err := cfg.Relay.buildRelay()
		if err != nil {
			_ = closeStore()
			_ = closeLog()
			return nil, fmt.Errorf("creating relay: %w", err)
		}
		workers["relay"] = r
		cw.relay = r
	}

	return workers, nil
}

// clientWorker runs the island client until the context ends.
type clientWorker struct {
	cfg      *Config
	store    *session.Store
	clientID string
	relay    *relay.Relay
}

func (w *clientWorker) Start(ctx context.Context) error {
	serverURL := w.cfg.Server.URL
	if w.relay != nil {
		select {
		case <-w.relay.Ready():
		case <-ctx.Done():
			return nil
		}
		serverURL = w.relay.ClientURL()
	}

	profile, _ := scene.LocalProfile(w.store, w.clientID, time.Now())
	token := func() string {
		return session.LookupOr(w.store, session.Durable, session.KeyAccessToken, "")
	}

	dialer, release, err := w.cfg.Server.buildDialer(serverURL, profile.ID, token)
	if err != nil {
		return fmt.Errorf("building dialer: %w", err)
	}
	defer release()

	opts := []client.Opt{client.WithClientID(w.clientID)}
	if d := w.cfg.tickInterval(); d > 0 {
		opts = append(opts, client.WithTickLength(d))
	}
	svc := client.New(w.store, dialer, opts...)

	if w.cfg.Console {
		console := client.NewConsole(svc, os.Stdin, os.Stdout)
		go func() {
			if err := console.Start(ctx); err != nil {
				slog.ErrorContext(ctx, "console stopped", "error", err)
			}
		}()
	}

	slog.InfoContext(ctx, "island client starting", "client", w.clientID, "server", serverURL, "transport", w.cfg.Server.Transport.String())
	return svc.Start(ctx)
}

// releaser closes process-wide resources once the app shuts down.
type releaser struct {
	closers []func() error
}

func (r *releaser) Start(ctx context.Context) error {
	<-ctx.Done()
	for _, c := range r.closers {
		if err := c(); err != nil {
			slog.Warn("releasing resource", "error", err)
		}
	}
	return nil
}
