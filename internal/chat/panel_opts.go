package chat

import "time"

type PanelOpt func(*Panel)

// WithFilter sets the outgoing text filter.
func WithFilter(f Filter) PanelOpt {
	return func(p *Panel) {
		p.filter = f
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) PanelOpt {
	return func(p *Panel) {
		p.now = now
	}
}

// WithVisible sets whether the panel starts shown.
func WithVisible(visible bool) PanelOpt {
	return func(p *Panel) {
		p.visible = visible
	}
}
