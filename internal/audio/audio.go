package audio

import (
	"log/slog"
	"sync"

	"github.com/pixil98/go-island/internal/session"
)

const (
	DefaultBaseVolume = 0.15
	DefaultBgmVolume  = 0.2
)

// Audio is the sound state of one scene.
type Audio struct {
	mu sync.Mutex

	scene Scene
	sound SoundSystem
	store *session.Store

	bgm          Track
	focused      bool
	baseVolume   float64
	volumeWeight float64

	unsubscribeFocus func()
	destroyed        bool
}

func newAudio(scene Scene, store *session.Store, focus FocusSource) *Audio {
	a := &Audio{
		scene:        scene,
		sound:        scene.Sound(),
		store:        store,
		focused:      true,
		baseVolume:   DefaultBaseVolume,
		volumeWeight: clampWeight(session.LookupOr(store, session.Durable, session.KeySoundVolume, 1.0)),
	}

	if focus != nil {
		a.focused = focus.Focused()
		a.unsubscribeFocus = focus.Subscribe(a.setFocused)
	}

	return a
}

func (a *Audio) Scene() Scene {
	return a.scene
}

// PlayBgm replaces the background track. The output volume becomes
// baseVolume scaled by the persisted volume weight.
func (a *Audio) PlayBgm(key string, baseVolume float64, loop bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.destroyed {
		return
	}

	a.baseVolume = baseVolume
	a.volumeWeight = clampWeight(session.LookupOr(a.store, session.Durable, session.KeySoundVolume, 1.0))
	a.sound.SetVolume(a.baseVolume * a.volumeWeight)

	if a.bgm != nil {
		a.bgm.Stop()
		a.bgm.Destroy()
	}
	a.bgm = a.sound.Add(key, loop)
	a.bgm.Play()
}

func (a *Audio) PauseBgm() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.bgm != nil && a.bgm.IsPlaying() {
		a.bgm.Pause()
	}
}

func (a *Audio) ResumeBgm() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.bgm != nil && a.bgm.IsPaused() {
		a.bgm.Resume()
	}
}

// StopBgm pauses the track so it can be resumed later.
func (a *Audio) StopBgm() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.bgm != nil && a.bgm.IsPlaying() {
		a.bgm.Pause()
	}
}

// BgmPlaying reports whether the background track is audible.
func (a *Audio) BgmPlaying() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.bgm != nil && a.bgm.IsPlaying()
}

// PlaySfx plays a one-shot sound, but only while the window has focus.
func (a *Audio) PlaySfx(key string, volume float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.destroyed || !a.focused {
		return
	}
	a.sound.Play(key, volume)
}

func (a *Audio) StopAll() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.sound.StopAll()
}

// SetVolume applies a new volume weight and persists it.
func (a *Audio) SetVolume(weight float64) error {
	a.mu.Lock()
	a.volumeWeight = clampWeight(weight)
	a.sound.SetVolume(a.baseVolume * a.volumeWeight)
	w := a.volumeWeight
	a.mu.Unlock()

	return a.store.Set(session.Durable, session.KeySoundVolume, w)
}

// Volume is the effective output volume.
func (a *Audio) Volume() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.baseVolume * a.volumeWeight
}

func (a *Audio) setFocused(focused bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.focused = focused
}

func (a *Audio) destroy() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.destroyed {
		return
	}
	a.destroyed = true

	a.sound.StopAll()
	if a.bgm != nil {
		a.bgm.Stop()
		a.bgm.Destroy()
		a.bgm = nil
	}
	if a.unsubscribeFocus != nil {
		a.unsubscribeFocus()
		a.unsubscribeFocus = nil
	}

	slog.Debug("audio destroyed")
}

func clampWeight(w float64) float64 {
	switch {
	case w > 1:
		return 1
	case w < 0:
		return 0
	default:
		return w
	}
}
