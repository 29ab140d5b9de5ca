package spawn

import (
	"math"

	"github.com/pixil98/go-island/internal/protocol"
)

// BubbleDuration is how long a speech bubble stays up, in seconds.
const BubbleDuration = 3.0

type Pawn struct {
	id     string
	avatar KnownFamily
	pos    Position
	speed  float64

	local bool
	stage Stage
	input Input
	conn  Emitter

	bubble    string
	bubbleTTL float64
	destroyed bool
}

func (p *Pawn) ID() string {
	return p.id
}

func (p *Pawn) Avatar() KnownFamily {
	return p.avatar
}

func (p *Pawn) Position() Position {
	return p.pos
}

// IsLocal reports whether this pawn is driven by local input.
func (p *Pawn) IsLocal() bool {
	return p.local
}

func (p *Pawn) MoveTo(pos Position) {
	if p.destroyed {
		return
	}
	p.pos = pos
}

func (p *Pawn) Say(text string) {
	if p.destroyed {
		return
	}
	p.bubble = text
	p.bubbleTTL = BubbleDuration
}

func (p *Pawn) Bubble() string {
	return p.bubble
}

// Update advances the pawn by dt seconds. A local pawn walks along its input
// direction and reports the new position to the server.
func (p *Pawn) Update(dt float64) {
	if p.destroyed {
		return
	}

	if p.bubbleTTL > 0 {
		p.bubbleTTL -= dt
		if p.bubbleTTL <= 0 {
			p.bubble = ""
		}
	}

	if p.input == nil {
		return
	}

	dx, dy := p.input.Direction()
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}

	step := p.speed * dt / length
	p.pos.X += dx * step
	p.pos.Y += dy * step

	if p.conn != nil {
		p.conn.Emit(protocol.EventMove, protocol.Move{X: p.pos.X, Y: p.pos.Y})
	}
}

// Destroy removes the pawn from its stage. Calling it twice is a no-op.
func (p *Pawn) Destroy() {
	if p.destroyed {
		return
	}
	p.destroyed = true

	if p.stage != nil {
		p.stage.RemoveEntity(p)
	}
	p.input = nil
	p.conn = nil
}
