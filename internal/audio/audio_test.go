package audio

import (
	"errors"
	"strings"
	"testing"

	"github.com/pixil98/go-island/internal/session"
	"github.com/pixil98/go-testutil"
)

type fakeScene struct {
	name  string
	mixer *Mixer
}

func (s *fakeScene) Sound() SoundSystem {
	return s.mixer
}

func newScene(name string, out *Output) *fakeScene {
	return &fakeScene{name: name, mixer: NewMixer(out)}
}

func TestManager_States(t *testing.T) {
	m := NewManager(nil, nil)

	testutil.AssertEqual(t, "initial state", m.State(), Uninitialized)
	_, err := m.Instance()
	testutil.AssertEqual(t, "instance before init", errors.Is(err, ErrUninitialized), true)
	testutil.AssertEqual(t, "safe before init", m.InstanceSafe() == nil, true)

	a := m.Init(newScene("boot", nil))
	testutil.AssertEqual(t, "ready", m.State(), Ready)
	got, err := m.Instance()
	testutil.AssertEqual(t, "instance err", err, nil)
	testutil.AssertEqual(t, "instance", got == a, true)

	m.Destroy()
	testutil.AssertEqual(t, "destroyed", m.State(), Destroyed)
	_, err = m.Instance()
	testutil.AssertEqual(t, "instance after destroy", errors.Is(err, ErrUninitialized), true)
	testutil.AssertEqual(t, "safe after destroy", m.InstanceSafe() == nil, true)

	m.Destroy()
	testutil.AssertEqual(t, "destroy twice", m.State(), Destroyed)
}

func TestManager_InitSameSceneIsIdempotent(t *testing.T) {
	out := NewOutput()
	scene := newScene("island", out)
	m := NewManager(nil, nil)

	first := m.Init(scene)
	first.PlayBgm("island_bgm", DefaultBgmVolume, true)

	second := m.Init(scene)
	testutil.AssertEqual(t, "same instance", first == second, true)
	testutil.AssertEqual(t, "still playing", second.BgmPlaying(), true)
	testutil.AssertEqual(t, "one track", out.PeakLoops(), 1)
}

func TestManager_SwitchSceneStopsOldTrackFirst(t *testing.T) {
	out := NewOutput()
	window := NewWindow()
	m := NewManager(nil, window)

	a := m.Init(newScene("loby", out))
	a.PlayBgm("loby_bgm", DefaultBgmVolume, true)
	testutil.AssertEqual(t, "listeners", window.Listeners(), 1)

	b := m.Init(newScene("island", out))
	testutil.AssertEqual(t, "new instance", a == b, false)
	testutil.AssertEqual(t, "old listener removed", window.Listeners(), 1)

	b.PlayBgm("island_bgm", DefaultBgmVolume, true)

	testutil.AssertEqual(t, "never two tracks", out.PeakLoops(), 1)
	testutil.AssertEqual(t, "log", strings.Join(out.Log(), "|"),
		"play loby_bgm|stop loby_bgm|destroy loby_bgm|play island_bgm")

	// The old instance is inert.
	a.PlayBgm("loby_bgm", DefaultBgmVolume, true)
	testutil.AssertEqual(t, "stale instance ignored", out.PeakLoops(), 1)
}

func TestAudio_PlayBgmVolume(t *testing.T) {
	tests := map[string]struct {
		stored    any
		base      float64
		expVolume float64
	}{
		"no stored weight":  {base: 0.2, expVolume: 0.2},
		"half weight":       {stored: 0.5, base: 0.2, expVolume: 0.1},
		"weight clamped":    {stored: 3.0, base: 0.2, expVolume: 0.2},
		"negative clamped":  {stored: -1.0, base: 0.2, expVolume: 0},
		"unreadable weight": {stored: "loud", base: 0.2, expVolume: 0.2},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			store := session.NewStore(nil)
			if tt.stored != nil {
				_ = store.Set(session.Durable, session.KeySoundVolume, tt.stored)
			}

			scene := newScene("island", nil)
			a := NewManager(store, nil).Init(scene)
			a.PlayBgm("bgm", tt.base, true)

			testutil.AssertEqual(t, "volume", a.Volume(), tt.expVolume)
			testutil.AssertEqual(t, "mixer volume", scene.mixer.Volume(), tt.expVolume)
		})
	}
}

func TestAudio_PauseResume(t *testing.T) {
	out := NewOutput()
	a := NewManager(nil, nil).Init(newScene("island", out))

	// No track yet: all no-ops.
	a.PauseBgm()
	a.ResumeBgm()
	a.StopBgm()

	a.PlayBgm("bgm", DefaultBgmVolume, true)
	a.ResumeBgm()
	a.PauseBgm()
	a.PauseBgm()
	testutil.AssertEqual(t, "paused", a.BgmPlaying(), false)
	a.ResumeBgm()
	testutil.AssertEqual(t, "resumed", a.BgmPlaying(), true)
	a.StopBgm()
	testutil.AssertEqual(t, "stopped", a.BgmPlaying(), false)
	a.ResumeBgm()

	testutil.AssertEqual(t, "log", strings.Join(out.Log(), "|"),
		"play bgm|pause bgm|resume bgm|pause bgm|resume bgm")
}

func TestAudio_PlaySfxNeedsFocus(t *testing.T) {
	out := NewOutput()
	window := NewWindow()
	a := NewManager(nil, window).Init(newScene("island", out))
	a.PlayBgm("bgm", DefaultBgmVolume, true)

	a.PlaySfx("pop", 1)
	window.Blur()
	a.PlaySfx("ding", 1)
	window.Focus()
	a.PlaySfx("click", 0.5)

	testutil.AssertEqual(t, "log", strings.Join(out.Log(), "|"),
		"play bgm|sfx pop 1.00|sfx click 0.50")
	testutil.AssertEqual(t, "bgm ignores focus", a.BgmPlaying(), true)
}

func TestAudio_StartsBlurred(t *testing.T) {
	out := NewOutput()
	window := NewWindow()
	window.Blur()

	a := NewManager(nil, window).Init(newScene("island", out))
	a.PlaySfx("pop", 1)

	testutil.AssertEqual(t, "log", len(out.Log()), 0)
}

func TestAudio_SetVolumePersists(t *testing.T) {
	store := session.NewStore(nil)
	scene := newScene("island", nil)
	a := NewManager(store, nil).Init(scene)
	a.PlayBgm("bgm", 0.2, true)

	err := a.SetVolume(0.5)
	testutil.AssertEqual(t, "err", err, nil)
	testutil.AssertEqual(t, "live volume", scene.mixer.Volume(), 0.1)
	testutil.AssertEqual(t, "persisted", session.LookupOr(store, session.Durable, session.KeySoundVolume, 0.0), 0.5)

	// A new scene picks the weight up.
	b := NewManager(store, nil).Init(newScene("loby", nil))
	b.PlayBgm("bgm", 0.2, true)
	testutil.AssertEqual(t, "restored", b.Volume(), 0.1)
}

func TestAudio_StopAll(t *testing.T) {
	out := NewOutput()
	a := NewManager(nil, nil).Init(newScene("island", out))
	a.PlayBgm("bgm", DefaultBgmVolume, true)

	a.StopAll()
	testutil.AssertEqual(t, "bgm stopped", a.BgmPlaying(), false)
	testutil.AssertEqual(t, "log", strings.Join(out.Log(), "|"), "play bgm|stop bgm")
}
