// Package notice surfaces transient messages and reload prompts to the player.
package notice

import (
	"errors"
	"log/slog"
	"sync"
)

// DefaultReloadMessage is shown when the client state cannot be trusted.
const DefaultReloadMessage = "문제가 발생했어요. 새로고침 해주세요."

type Level int

const (
	LevelInfo Level = iota
	LevelError
	LevelReload
)

func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelError:
		return "error"
	case LevelReload:
		return "reload"
	default:
		return "unknown"
	}
}

type Notice struct {
	Level   Level
	Message string
}

// Notifier shows notices. Info and Error are transient and dismissible;
// Reload asks the player to restart the client.
type Notifier interface {
	Info(msg string)
	Error(msg string)
	Reload(msg string)
}

// Report shows err to the player. A UserError becomes a transient error
// notice; anything else is logged and turned into a reload prompt.
func Report(n Notifier, err error) {
	if err == nil {
		return
	}

	var userErr *UserError
	if errors.As(err, &userErr) {
		slog.Warn("user facing failure", "error", err)
		n.Error(userErr.Message)
		return
	}

	slog.Error("unrecoverable client state", "error", err)
	n.Reload(DefaultReloadMessage)
}

// Log writes notices to slog. It is what a headless client uses.
type Log struct{}

func (Log) Info(msg string) {
	slog.Info("notice", "level", LevelInfo, "message", msg)
}

func (Log) Error(msg string) {
	slog.Warn("notice", "level", LevelError, "message", msg)
}

func (Log) Reload(msg string) {
	slog.Error("notice", "level", LevelReload, "message", msg)
}

// Recorder keeps every notice in order.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *Recorder) Info(msg string)   { r.add(LevelInfo, msg) }
func (r *Recorder) Error(msg string)  { r.add(LevelError, msg) }
func (r *Recorder) Reload(msg string) { r.add(LevelReload, msg) }

func (r *Recorder) add(l Level, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.notices = append(r.notices, Notice{Level: l, Message: msg})
}

func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]Notice(nil), r.notices...)
}

// Last returns the most recent notice.
func (r *Recorder) Last() (Notice, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.notices) == 0 {
		return Notice{}, false
	}
	return r.notices[len(r.notices)-1], true
}
