// Package driver runs the client's single logical thread. Network handlers,
// timers and scene updates are all funnelled through one loop so that the
// state they touch is never mutated from two places at once.
package driver

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const (
	DefaultTickLength = time.Second / 30
)

// Manager is ticked once per frame on the driver loop.
type Manager interface {
	Tick(context.Context) error
}

// Dispatcher accepts work to run on the driver loop.
type Dispatcher interface {
	Post(fn func())
}

type Driver struct {
	tickLength time.Duration
	managers   []Manager

	mu    sync.Mutex
	queue []func()
	wake  chan struct{}
}

func NewDriver(managers []Manager, opts ...DriverOpt) *Driver {
	d := &Driver{
		tickLength: DefaultTickLength,
		managers:   managers,
		wake:       make(chan struct{}, 1),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// AddManager registers m to be ticked. Call before Start.
func (d *Driver) AddManager(m Manager) {
	d.managers = append(d.managers, m)
}

// Post queues fn to run on the loop. Safe to call from any goroutine.
func (d *Driver) Post(fn func()) {
	if fn == nil {
		return
	}

	d.mu.Lock()
	d.queue = append(d.queue, fn)
	d.mu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}
}

// AfterFunc runs fn on the loop once dur has elapsed, unless the timer is stopped first.
func (d *Driver) AfterFunc(dur time.Duration, fn func()) *Timer {
	t := &Timer{}
	t.mu.Lock()
	defer t.mu.Unlock()

	t.timer = time.AfterFunc(dur, func() {
		d.Post(func() {
			if t.isCancelled() {
				return
			}
			fn()
		})
	})
	return t
}

func (d *Driver) Start(ctx context.Context) error {
	ticker := time.NewTicker(d.tickLength)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.Drain()
			return nil
		case <-d.wake:
			d.Drain()
		case <-ticker.C:
			d.Drain()
			err := d.Tick(ctx)
			if err != nil {
				return err
			}
		}
	}
}

// Drain runs every queued function on the calling goroutine, including any
// queued while draining. It returns how many ran.
func (d *Driver) Drain() int {
	ran := 0
	for {
		d.mu.Lock()
		batch := d.queue
		d.queue = nil
		d.mu.Unlock()

		if len(batch) == 0 {
			return ran
		}

		for _, fn := range batch {
			d.run(fn)
			ran++
		}
	}
}

func (d *Driver) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("recovered panic on driver loop", "panic", fmt.Sprint(r))
		}
	}()
	fn()
}

func (d *Driver) Tick(ctx context.Context) error {
	for _, m := range d.managers {
		if err := m.Tick(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Timer is a cancellable AfterFunc.
type Timer struct {
	mu        sync.Mutex
	timer     *time.Timer
	cancelled bool
}

// Stop cancels the timer. A callback already queued on the loop is skipped.
func (t *Timer) Stop() {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	t.cancelled = true
	if t.timer != nil {
		t.timer.Stop()
	}
}

func (t *Timer) isCancelled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancelled
}
