// Package spawn turns network player profiles into simulation entities.
package spawn

import (
	"log/slog"

	"github.com/pixil98/go-island/internal/protocol"
)

// Stage is the scene entities are placed into.
type Stage interface {
	AddEntity(Entity)
	RemoveEntity(Entity)
}

// Input reports the local player's movement intent as a direction vector.
type Input interface {
	Direction() (dx, dy float64)
}

// Emitter sends events to the server.
type Emitter interface {
	Emit(event string, payload any)
}

// Position is a point in scene coordinates.
type Position struct {
	X float64
	Y float64
}

// Entity is a spawned player in the scene.
type Entity interface {
	ID() string
	Avatar() KnownFamily
	Position() Position
	MoveTo(Position)
	Say(text string)
	Bubble() string
	Update(dt float64)
	Destroy()
}

type Spawner struct {
	catalog *Catalog
}

func NewSpawner(opts ...SpawnerOpt) *Spawner {
	s := &Spawner{
		catalog: DefaultCatalog(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Spawn builds the entity for profile and adds it to stage. Only the local
// player is bound to input and the connection; remote players move when the
// server says so.
func (s *Spawner) Spawn(stage Stage, profile protocol.UserInfo, pos Position, isLocal bool, input Input, conn Emitter) Entity {
	avatar := s.catalog.ParseAvatar(profile.AvatarKey)
	if u, ok := avatar.(Unknown); ok {
		slog.Warn("unknown avatar, using default", "player", profile.ID, "avatar", u.Raw)
	}
	kind := s.catalog.Resolve(avatar)

	p := &Pawn{
		id:     profile.ID,
		avatar: kind,
		pos:    pos,
		speed:  s.catalog.Families[kind.Family].Speed,
		local:  isLocal,
		stage:  stage,
	}
	if isLocal {
		p.input = input
		p.conn = conn
	}

	if stage != nil {
		stage.AddEntity(p)
	}

	return p
}

type SpawnerOpt func(*Spawner)

// WithCatalog replaces the embedded family catalog.
func WithCatalog(c *Catalog) SpawnerOpt {
	return func(s *Spawner) {
		s.catalog = c
	}
}
