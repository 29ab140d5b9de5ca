package audio

import "sync"

// Window tracks whether the client window has focus.
type Window struct {
	mu        sync.Mutex
	focused   bool
	nextID    uint64
	listeners map[uint64]func(bool)
}

func NewWindow() *Window {
	return &Window{
		focused:   true,
		listeners: map[uint64]func(bool){},
	}
}

func (w *Window) Focused() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.focused
}

func (w *Window) Focus() {
	w.set(true)
}

func (w *Window) Blur() {
	w.set(false)
}

func (w *Window) Subscribe(fn func(focused bool)) func() {
	w.mu.Lock()
	defer w.mu.Unlock()

	id := w.nextID
	w.nextID++
	w.listeners[id] = fn

	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		delete(w.listeners, id)
	}
}

// Listeners is the number of subscribed listeners.
func (w *Window) Listeners() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	return len(w.listeners)
}

func (w *Window) set(focused bool) {
	w.mu.Lock()
	if w.focused == focused {
		w.mu.Unlock()
		return
	}
	w.focused = focused
	fns := make([]func(bool), 0, len(w.listeners))
	for _, fn := range w.listeners {
		fns = append(fns, fn)
	}
	w.mu.Unlock()

	for _, fn := range fns {
		fn(focused)
	}
}
