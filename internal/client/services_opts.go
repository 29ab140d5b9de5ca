package client

import (
	"time"

	"github.com/pixil98/go-island/internal/chat"
	"github.com/pixil98/go-island/internal/menu"
	"github.com/pixil98/go-island/internal/notice"
	"github.com/pixil98/go-island/internal/spawn"
)

type Opt func(*Services)

func WithClientID(id string) Opt {
	return func(s *Services) {
		s.clientID = id
	}
}

func WithNotifier(n notice.Notifier) Opt {
	return func(s *Services) {
		s.Notifier = n
	}
}

// WithTickLength sets the frame time of the driver loop.
func WithTickLength(d time.Duration) Opt {
	return func(s *Services) {
		s.tickLength = d
	}
}

func WithInput(in spawn.Input) Opt {
	return func(s *Services) {
		s.input = in
	}
}

func WithLogout(fn menu.LogoutFunc) Opt {
	return func(s *Services) {
		s.logout = fn
	}
}

func WithReload(fn func()) Opt {
	return func(s *Services) {
		s.reload = fn
	}
}

// WithChatFilter sets the filter applied to outgoing chat.
func WithChatFilter(f chat.Filter) Opt {
	return func(s *Services) {
		s.filter = f
	}
}
