package audio

import (
	"fmt"
	"sync"
)

// Output is the device mixers write to. Several scenes' mixers can share one
// Output, which records what was audible and when.
type Output struct {
	mu        sync.Mutex
	log       []string
	loops     int
	peakLoops int
	volume    float64
}

func NewOutput() *Output {
	return &Output{volume: 1}
}

func (o *Output) record(format string, args ...any) {
	o.log = append(o.log, fmt.Sprintf(format, args...))
}

func (o *Output) loopStarted() {
	o.loops++
	if o.loops > o.peakLoops {
		o.peakLoops = o.loops
	}
}

func (o *Output) loopEnded() {
	o.loops--
}

// Log is the ordered list of output events.
func (o *Output) Log() []string {
	o.mu.Lock()
	defer o.mu.Unlock()

	return append([]string(nil), o.log...)
}

// Volume is the last volume a mixer set.
func (o *Output) Volume() float64 {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.volume
}

// PeakLoops is the most looping tracks ever audible at once.
func (o *Output) PeakLoops() int {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.peakLoops
}

// Mixer is an in-memory SoundSystem for headless scenes.
type Mixer struct {
	out    *Output
	mu     sync.Mutex
	tracks []*mixerTrack
	volume float64
}

func NewMixer(out *Output) *Mixer {
	if out == nil {
		out = NewOutput()
	}
	return &Mixer{out: out, volume: 1}
}

func (m *Mixer) Add(key string, loop bool) Track {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := &mixerTrack{mixer: m, key: key, loop: loop}
	m.tracks = append(m.tracks, t)
	return t
}

func (m *Mixer) Play(key string, volume float64) {
	m.out.mu.Lock()
	defer m.out.mu.Unlock()

	m.out.record("sfx %s %.2f", key, volume)
}

func (m *Mixer) StopAll() {
	m.mu.Lock()
	tracks := append([]*mixerTrack(nil), m.tracks...)
	m.mu.Unlock()

	for _, t := range tracks {
		t.Stop()
	}
}

func (m *Mixer) SetVolume(v float64) {
	m.mu.Lock()
	m.volume = v
	m.mu.Unlock()

	m.out.mu.Lock()
	m.out.volume = v
	m.out.mu.Unlock()
}

func (m *Mixer) Volume() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.volume
}

func (m *Mixer) remove(t *mixerTrack) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, mt := range m.tracks {
		if mt == t {
			m.tracks = append(m.tracks[:i], m.tracks[i+1:]...)
			return
		}
	}
}

type trackState int

const (
	trackIdle trackState = iota
	trackPlaying
	trackPaused
	trackStopped
	trackDestroyed
)

type mixerTrack struct {
	mixer *Mixer
	key   string
	loop  bool

	mu    sync.Mutex
	state trackState
}

func (t *mixerTrack) Key() string {
	return t.key
}

func (t *mixerTrack) transition(to trackState, event string) {
	t.mu.Lock()
	from := t.state
	if from == trackDestroyed || from == to {
		t.mu.Unlock()
		return
	}
	t.state = to
	t.mu.Unlock()

	out := t.mixer.out
	out.mu.Lock()
	defer out.mu.Unlock()

	if t.loop {
		if from != trackPlaying && to == trackPlaying {
			out.loopStarted()
		}
		if from == trackPlaying && to != trackPlaying {
			out.loopEnded()
		}
	}
	out.record("%s %s", event, t.key)
}

func (t *mixerTrack) Play() {
	t.transition(trackPlaying, "play")
}

func (t *mixerTrack) Pause() {
	if t.IsPlaying() {
		t.transition(trackPaused, "pause")
	}
}

func (t *mixerTrack) Resume() {
	if t.IsPaused() {
		t.transition(trackPlaying, "resume")
	}
}

func (t *mixerTrack) Stop() {
	t.mu.Lock()
	idle := t.state == trackIdle || t.state == trackStopped
	t.mu.Unlock()
	if idle {
		return
	}
	t.transition(trackStopped, "stop")
}

func (t *mixerTrack) Destroy() {
	t.Stop()
	t.transition(trackDestroyed, "destroy")
	t.mixer.remove(t)
}

func (t *mixerTrack) IsPlaying() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.state == trackPlaying
}

func (t *mixerTrack) IsPaused() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.state == trackPaused
}
