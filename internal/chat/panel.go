// Package chat is the chat panel's logic: the message log, the send throttle,
// join and leave announcements and the unread counter.
package chat

import (
	"log/slog"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/google/uuid"
	"github.com/pixil98/go-island/internal/display"
	"github.com/pixil98/go-island/internal/eventbus"
	"github.com/pixil98/go-island/internal/notice"
	"github.com/pixil98/go-island/internal/player"
	"github.com/pixil98/go-island/internal/protocol"
	"github.com/pixil98/go-island/internal/scope"
	"github.com/pixil98/go-island/internal/session"
	"github.com/pixil98/go-island/internal/socket"
)

const (
	ThrottleInterval   = 500 * time.Millisecond
	ThrottleNotice     = "잠시후 입력해주세요 🙂‍↔️"
	OfflineNotice      = "서버와 연결이 끊겼어요. 잠시후 다시 시도해주세요"
	SelfSender         = "나"
	UnknownSender      = "누군가"
	DefaultSelfAvatar  = "purple_pawn"
	DefaultOtherAvatar = "blue_pawn"
)

// Filter rewrites outgoing text, e.g. to mask words.
type Filter func(string) string

type Panel struct {
	bus      *eventbus.Bus
	players  *player.Registry
	store    *session.Store
	notifier notice.Notifier
	filter   Filter
	now      func() time.Time

	mu         sync.Mutex
	conn       *socket.Connection
	scope      *scope.Scope
	messages   []Message
	lastChat   time.Time
	visible    bool
	unread     int
	lastSeenID string
	focused    bool
}

func NewPanel(bus *eventbus.Bus, players *player.Registry, store *session.Store, notifier notice.Notifier, opts ...PanelOpt) *Panel {
	p := &Panel{
		bus:      bus,
		players:  players,
		store:    store,
		notifier: notifier,
		now:      time.Now,
		visible:  true,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Mount subscribes the panel to conn and the bus. Everything it registers is
// released by Unmount.
func (p *Panel) Mount(conn *socket.Connection) *scope.Scope {
	p.Unmount()

	s := scope.New()
	s.Add(p.bus.OnUIEvent(eventbus.TopicNewPlayer, p.onNewPlayer))
	s.Add(p.bus.OnUIEvent(eventbus.TopicPlayerLeftChat, p.onPlayerLeft))
	s.Add(p.bus.OnUIEvent(eventbus.TopicActiveChatInput, func(any) { p.setFocused(true) }))
	s.Add(p.bus.OnUIEvent(eventbus.TopicBlurChatInput, func(any) { p.setFocused(false) }))

	// Handlers on a placeholder connection start firing once it is dialed.
	if !conn.Connected() {
		slog.Warn("chat mounted before the connection is up", "namespace", conn.Namespace())
	}
	s.Add(socket.OnEvent(conn, protocol.EventMessageSent, p.onMessageSent))
	s.Add(socket.OnEvent(conn, protocol.EventReceiveMessage, p.onReceiveMessage))

	p.mu.Lock()
	p.conn = conn
	p.scope = s
	p.mu.Unlock()

	return s
}

func (p *Panel) Unmount() {
	p.mu.Lock()
	s := p.scope
	p.scope = nil
	p.conn = nil
	p.mu.Unlock()

	if s != nil {
		s.Close()
	}
}

// Reset forgets the log, the unread counter and the send throttle.
func (p *Panel) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.messages = nil
	p.unread = 0
	p.lastSeenID = ""
	p.lastChat = time.Time{}
	p.focused = false
}

// Send emits input as a chat message. It reports whether anything was sent.
func (p *Panel) Send(input string) bool {
	if strings.TrimSpace(input) == "" {
		p.setFocused(false)
		return false
	}

	now := p.now()

	p.mu.Lock()
	if !p.lastChat.IsZero() && now.Sub(p.lastChat) < ThrottleInterval {
		p.appendLocked(p.systemMessage(ThrottleNotice, now))
		p.mu.Unlock()
		return false
	}
	conn := p.conn
	p.mu.Unlock()

	if conn == nil {
		slog.Warn("chat send while unmounted")
		return false
	}
	if !conn.Connected() {
		slog.Warn("chat send while offline", "namespace", conn.Namespace())
		p.append(p.systemMessage(OfflineNotice, now))
		p.notifier.Error(OfflineNotice)
		return false
	}

	text := display.Normalize(input)
	if p.filter != nil {
		text = p.filter(text)
	}
	conn.Emit(protocol.EventSendMessage, protocol.SendMessage{Message: text})

	p.mu.Lock()
	p.lastChat = now
	p.mu.Unlock()

	return true
}

// Messages returns a copy of the log.
func (p *Panel) Messages() []Message {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]Message(nil), p.messages...)
}

// SetVisible shows or hides the panel. Showing it marks everything read.
func (p *Panel) SetVisible(visible bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.visible = visible
	if visible {
		p.markReadLocked()
	}
}

func (p *Panel) Visible() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.visible
}

// Unread is the number of messages from others that arrived while hidden.
func (p *Panel) Unread() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.unread
}

// UnreadBadge renders the unread counter for the panel toggle.
func (p *Panel) UnreadBadge() string {
	return display.Badge(p.Unread())
}

// InputFocused reports whether the chat input has focus.
func (p *Panel) InputFocused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.focused
}

func (p *Panel) onMessageSent(m protocol.MessageSent) {
	avatar := DefaultSelfAvatar
	if profile, ok := session.Lookup[protocol.UserInfo](p.store, session.Durable, session.KeyProfile); ok && profile.AvatarKey != "" {
		avatar = profile.AvatarKey
	}

	p.append(Message{
		ID:        m.MessageID,
		Sender:    SelfSender,
		Text:      m.Message,
		AvatarKey: avatar,
		At:        p.now(),
	})
	p.bus.EmitToSimulation(eventbus.TopicMySpeechBubble, m)
}

func (p *Panel) onReceiveMessage(m protocol.ReceiveMessage) {
	sender, avatar := UnknownSender, DefaultOtherAvatar
	if e, ok := p.players.Get(m.SenderID); ok {
		if e.Nickname != "" {
			sender = e.Nickname
		}
		if e.AvatarKey != "" {
			avatar = e.AvatarKey
		}
	}

	p.append(Message{
		ID:        uuid.NewString(),
		Sender:    sender,
		Text:      m.Message,
		AvatarKey: avatar,
		At:        p.now(),
	})
	p.bus.EmitToSimulation(eventbus.TopicOtherSpeechBubble, m)
}

func (p *Panel) onNewPlayer(payload any) {
	join, ok := payload.(protocol.PlayerJoin)
	if !ok {
		slog.Warn("unexpected newPlayer payload", "payload", payload)
		return
	}
	p.announce(joinTmpl, announcement{Nickname: join.Nickname})
}

func (p *Panel) onPlayerLeft(payload any) {
	left, ok := payload.(protocol.PlayerLeft)
	if !ok {
		slog.Warn("unexpected playerLeftChat payload", "payload", payload)
		return
	}

	var nickname string
	if e, ok := p.players.Get(left.ID); ok {
		nickname = e.Nickname
	}
	p.announce(leaveTmpl, announcement{Nickname: nickname})
}

func (p *Panel) announce(tmpl *template.Template, data announcement) {
	text, err := expand(tmpl, data)
	if err != nil {
		slog.Error("rendering announcement", "error", err)
		return
	}

	if p.notifier != nil {
		p.notifier.Info(text)
	}
	p.append(p.systemMessage(text, p.now()))
}

func (p *Panel) systemMessage(text string, at time.Time) Message {
	return Message{
		ID:     "system-" + uuid.NewString(),
		Text:   text,
		System: true,
		At:     at,
	}
}

func (p *Panel) append(m Message) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.appendLocked(m)
}

func (p *Panel) appendLocked(m Message) {
	p.messages = append(p.messages, m)

	if p.visible {
		p.markReadLocked()
		return
	}
	if !m.Mine() && m.ID != p.lastSeenID {
		p.unread++
		p.lastSeenID = m.ID
	}
}

func (p *Panel) markReadLocked() {
	p.unread = 0
	if n := len(p.messages); n > 0 {
		p.lastSeenID = p.messages[n-1].ID
	}
}

func (p *Panel) setFocused(focused bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.focused = focused
}
