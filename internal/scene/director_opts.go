package scene

import (
	"time"

	"github.com/pixil98/go-island/internal/audio"
	"github.com/pixil98/go-island/internal/spawn"
)

type DirectorOpt func(*Director)

// WithInput binds the local player's movement to in.
func WithInput(in spawn.Input) DirectorOpt {
	return func(d *Director) {
		d.input = in
	}
}

// WithOutput shares out between every scene's mixer.
func WithOutput(out *audio.Output) DirectorOpt {
	return func(d *Director) {
		d.output = out
	}
}

// WithClientID names the player when nobody is logged in.
func WithClientID(id string) DirectorOpt {
	return func(d *Director) {
		d.clientID = id
	}
}

// WithFrameTime sets how far entities advance per Tick.
func WithFrameTime(dt time.Duration) DirectorOpt {
	return func(d *Director) {
		d.frame = dt
	}
}

func WithSpawnPoint(p spawn.Position) DirectorOpt {
	return func(d *Director) {
		d.spawnPoint = p
	}
}

func WithClock(now func() time.Time) DirectorOpt {
	return func(d *Director) {
		d.now = now
	}
}
