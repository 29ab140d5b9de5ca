package wsdial

import "time"

type Opt func(*Dialer)

// WithTokenSource sets where the bearer token comes from.
func WithTokenSource(ts TokenSource) Opt {
	return func(d *Dialer) {
		d.token = ts
	}
}

// WithBackoff sets the redial backoff bounds.
func WithBackoff(initial, max time.Duration) Opt {
	return func(d *Dialer) {
		d.initialBackoff = initial
		d.maxBackoff = max
	}
}

// WithMaxAttempts limits consecutive redial attempts; 0 retries forever.
func WithMaxAttempts(n int) Opt {
	return func(d *Dialer) {
		d.maxAttempts = n
	}
}

// WithHandshakeTimeout sets the websocket handshake timeout.
func WithHandshakeTimeout(t time.Duration) Opt {
	return func(d *Dialer) {
		d.ws.HandshakeTimeout = t
	}
}
