package menu

import "time"

type HeaderOpt func(*Header)

// WithLogout sets the server logout call.
func WithLogout(fn LogoutFunc) HeaderOpt {
	return func(h *Header) {
		h.logout = fn
	}
}

// WithReload sets what a reload does.
func WithReload(fn func()) HeaderOpt {
	return func(h *Header) {
		h.reload = fn
	}
}

// WithBannerTime sets how long the friend request banner stays up.
func WithBannerTime(d time.Duration) HeaderOpt {
	return func(h *Header) {
		h.bannerTime = d
	}
}

// WithClock replaces time.Now for token expiry checks.
func WithClock(now func() time.Time) HeaderOpt {
	return func(h *Header) {
		h.now = now
	}
}
