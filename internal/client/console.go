package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pixil98/go-island/internal/chat"
	"github.com/pixil98/go-island/internal/notice"
	"github.com/pixil98/go-island/internal/scene"
)

const (
	DefaultFlushInterval = time.Second
	PreviewWidth         = 60
)

type command func(ctx context.Context, args []string) error

// Console drives a headless client from line-oriented input. Lines starting
// with "/" are commands; anything else is sent as chat.
type Console struct {
	svc           *Services
	in            io.Reader
	out           io.Writer
	flushInterval time.Duration
	commands      map[string]command

	mu   sync.Mutex
	seen int
}

func NewConsole(svc *Services, in io.Reader, out io.Writer) *Console {
	c := &Console{
		svc:           svc,
		in:            in,
		out:           out,
		flushInterval: DefaultFlushInterval,
	}
	c.commands = map[string]command{
		"bgm":    c.bgm,
		"blur":   c.blur,
		"focus":  c.focus,
		"help":   c.help,
		"home":   c.home,
		"leave":  c.leave,
		"log":    c.log,
		"login":  c.login,
		"logout": c.logout,
		"visit":  c.visit,
		"volume": c.volume,
		"who":    c.who,
	}
	return c
}

// Start reads lines until the input ends or ctx is done. Each line runs on
// the driver loop.
func (c *Console) Start(ctx context.Context) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
		close(lines)
	}()

	ticker := time.NewTicker(c.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-ticker.C:
			c.post(ctx, func() error { return c.flushChat() })

		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					return err
				default:
					return nil
				}
			}
			if err := c.post(ctx, func() error { return c.exec(ctx, line) }); err != nil {
				return err
			}
		}
	}
}

// post runs fn on the driver loop and waits for it.
func (c *Console) post(ctx context.Context, fn func() error) error {
	done := make(chan error, 1)
	c.svc.Driver.Post(func() { done <- fn() })

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return nil
	}
}

// exec runs one input line. Only output failures are returned; everything
// else is shown to the player.
func (c *Console) exec(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)

	if !strings.HasPrefix(line, "/") {
		if line != "" {
			c.svc.Chat.Send(line)
		}
		return c.flushChat()
	}

	parts := strings.Fields(strings.TrimPrefix(line, "/"))
	if len(parts) == 0 {
		return c.writeLine("type /help for commands")
	}

	cmd, ok := c.commands[strings.ToLower(parts[0])]
	if !ok {
		return c.writeLine(fmt.Sprintf("unknown command %q, type /help", parts[0]))
	}

	err := cmd(ctx, parts[1:])
	if err != nil {
		var userErr *notice.UserError
		if !errors.As(err, &userErr) {
			return err
		}
		if werr := c.writeLine(userErr.Message); werr != nil {
			return werr
		}
	}
	return c.flushChat()
}

func (c *Console) writeLine(s string) error {
	_, err := io.WriteString(c.out, s+"\n")
	return err
}

// flushChat prints chat lines that arrived since the last flush.
func (c *Console) flushChat() error {
	msgs := c.svc.Chat.Messages()

	c.mu.Lock()
	start := c.seen
	if start > len(msgs) {
		start = 0
	}
	c.seen = len(msgs)
	c.mu.Unlock()

	for _, m := range msgs[start:] {
		if err := c.writeLine(formatMessage(m)); err != nil {
			return err
		}
	}
	return nil
}

func formatMessage(m chat.Message) string {
	if m.System {
		return "* " + m.Text
	}
	return fmt.Sprintf("[%s] %s", m.Sender, m.Preview(PreviewWidth))
}

func (c *Console) bgm(_ context.Context, _ []string) error {
	state := "off"
	if c.svc.Menu.ToggleBgm() {
		state = "on"
	}
	return c.writeLine("background music " + state)
}

func (c *Console) focus(_ context.Context, _ []string) error {
	c.svc.Window.Focus()
	return nil
}

func (c *Console) blur(_ context.Context, _ []string) error {
	c.svc.Window.Blur()
	return nil
}

func (c *Console) help(_ context.Context, _ []string) error {
	names := make([]string, 0, len(c.commands))
	for name := range c.commands {
		names = append(names, "/"+name)
	}
	sort.Strings(names)
	return c.writeLine("commands: " + strings.Join(names, " "))
}

func (c *Console) home(_ context.Context, _ []string) error {
	c.svc.Menu.MoveToMyIsland()
	return nil
}

func (c *Console) leave(_ context.Context, _ []string) error {
	if !c.svc.Menu.ExitVisible() {
		return notice.NewUserError("you are not on an island", nil)
	}
	c.svc.Menu.LeaveIsland()
	return nil
}

func (c *Console) log(_ context.Context, _ []string) error {
	for _, m := range c.svc.Chat.Messages() {
		if err := c.writeLine(formatMessage(m)); err != nil {
			return err
		}
	}
	return nil
}

func (c *Console) login(_ context.Context, _ []string) error {
	if c.svc.Menu.LoggedIn() {
		return notice.NewUserError("already logged in", nil)
	}
	c.svc.Menu.Login()
	return nil
}

func (c *Console) logout(ctx context.Context, _ []string) error {
	if err := c.svc.Menu.Logout(ctx); err != nil {
		return err
	}
	return c.writeLine("logged out")
}

func (c *Console) visit(_ context.Context, args []string) error {
	if len(args) != 1 {
		return notice.NewUserError("usage: /visit <island id>", nil)
	}
	c.svc.Director.Request(scene.Island, scene.Data{IslandID: args[0]})
	return nil
}

func (c *Console) volume(_ context.Context, args []string) error {
	a := c.svc.Audio.InstanceSafe()
	if a == nil {
		return notice.NewUserError("sound is not ready yet", nil)
	}
	if len(args) == 0 {
		return c.writeLine(fmt.Sprintf("volume %.2f", a.Volume()))
	}

	w, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return notice.NewUserError("usage: /volume <0..1>", err)
	}
	if err := a.SetVolume(w); err != nil {
		slog.Warn("persisting volume", "error", err)
	}
	return c.writeLine(fmt.Sprintf("volume %.2f", a.Volume()))
}

func (c *Console) who(_ context.Context, _ []string) error {
	for _, e := range c.svc.Players.GetAll() {
		line := e.Nickname
		if line == "" {
			line = e.ID
		}
		if e.IsLocal {
			line += " (you)"
		}
		if err := c.writeLine(line); err != nil {
			return err
		}
	}
	return nil
}
