package chat

import (
	"time"

	"github.com/pixil98/go-island/internal/display"
)

// Message is one line in the chat log. Sender and avatar are captured when the
// message arrives so the line survives its sender leaving.
type Message struct {
	ID        string
	Sender    string
	Text      string
	AvatarKey string
	System    bool
	At        time.Time
}

// Mine reports whether the local player sent the message.
func (m Message) Mine() bool {
	return !m.System && m.Sender == SelfSender
}

// Preview is the message text shortened to width cells on one line.
func (m Message) Preview(width int) string {
	return display.Preview(m.Text, width)
}
