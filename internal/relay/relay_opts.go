package relay

import "time"

type RelayOpt func(*Relay)

// WithStartTimeout sets the startup timeout for the embedded server
func WithStartTimeout(d time.Duration) RelayOpt {
	return func(r *Relay) {
		r.startupTimeout = d
	}
}

// WithHost sets the host the embedded server binds to
func WithHost(host string) RelayOpt {
	return func(r *Relay) {
		r.host = host
	}
}

// WithPort sets the port the embedded server binds to; -1 picks a free port
func WithPort(port int) RelayOpt {
	return func(r *Relay) {
		r.port = port
	}
}

// WithChatInterval sets the per-player chat rate limit
func WithChatInterval(d time.Duration) RelayOpt {
	return func(r *Relay) {
		r.chatInterval = d
	}
}

// WithSweepInterval sets how often players whose connection is gone are
// removed; zero disables the sweep
func WithSweepInterval(d time.Duration) RelayOpt {
	return func(r *Relay) {
		r.sweepInterval = d
	}
}
