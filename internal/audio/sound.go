package audio

// SoundSystem is the sound output a scene owns.
type SoundSystem interface {
	// Add prepares a track without starting it.
	Add(key string, loop bool) Track
	// Play fires a one-shot sound.
	Play(key string, volume float64)
	StopAll()
	SetVolume(v float64)
	Volume() float64
}

type Track interface {
	Key() string
	Play()
	Pause()
	Resume()
	Stop()
	Destroy()
	IsPlaying() bool
	IsPaused() bool
}

// Scene is anything that owns a SoundSystem. Scenes are compared by identity.
type Scene interface {
	Sound() SoundSystem
}

// FocusSource reports window focus changes. Subscribe returns a function that
// removes the listener.
type FocusSource interface {
	Focused() bool
	Subscribe(fn func(focused bool)) (unsubscribe func())
}
