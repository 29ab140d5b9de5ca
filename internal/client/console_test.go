package client

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pixil98/go-island/internal/protocol"
	"github.com/pixil98/go-island/internal/scene"
	"github.com/pixil98/go-testutil"
)

func TestConsole_Exec(t *testing.T) {
	tests := map[string]struct {
		line   string
		expOut string
	}{
		"who":           {line: "/who", expOut: "게스트 (you)\n"},
		"unknown":       {line: "/dance", expOut: "unknown command \"dance\", type /help\n"},
		"bare slash":    {line: "/", expOut: "type /help for commands\n"},
		"bgm":           {line: "/bgm", expOut: "background music off\n"},
		"volume":        {line: "/volume 0.5", expOut: "volume 0.10\n"},
		"volume query":  {line: "/volume", expOut: "volume 0.20\n"},
		"volume bad":    {line: "/volume loud", expOut: "usage: /volume <0..1>\n"},
		"visit usage":   {line: "/visit", expOut: "usage: /visit <island id>\n"},
		"leave in loby": {line: "/leave", expOut: "you are not on an island\n"},
		"help":          {line: "/HELP", expOut: "commands: /bgm /blur /focus /help /home /leave /log /login /logout /visit /volume /who\n"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			f.boot(t)

			var out bytes.Buffer
			c := NewConsole(f.svc, strings.NewReader(""), &out)

			err := c.exec(context.Background(), tt.line)

			testutil.AssertEqual(t, "err", err, nil)
			testutil.AssertEqual(t, "out", out.String(), tt.expOut)
		})
	}
}

func TestConsole_ChatLines(t *testing.T) {
	f := newFixture(t)
	f.boot(t)

	var out bytes.Buffer
	c := NewConsole(f.svc, strings.NewReader(""), &out)
	ctx := context.Background()

	_ = c.exec(ctx, "  hello island  ")
	testutil.AssertEqual(t, "sent", len(f.link().Sent(protocol.EventSendMessage)), 1)

	f.link().Push(protocol.EventMessageSent, protocol.MessageSent{MessageID: "m1", Message: "hello island"})
	f.svc.Driver.Drain()
	_ = c.exec(ctx, "again")

	testutil.AssertEqual(t, "out", out.String(), "[나] hello island\n* 잠시후 입력해주세요 🙂‍↔️\n")

	out.Reset()
	_ = c.exec(ctx, "/log")
	testutil.AssertEqual(t, "log lines", strings.Count(out.String(), "\n"), 2)
}

func TestConsole_Navigation(t *testing.T) {
	f := newFixture(t)
	f.boot(t)

	var out bytes.Buffer
	c := NewConsole(f.svc, strings.NewReader(""), &out)
	ctx := context.Background()

	_ = c.exec(ctx, "/visit i7")
	_ = f.svc.Director.Tick(ctx)
	testutil.AssertEqual(t, "visiting", f.svc.Director.Current().Key(), scene.Island)
	testutil.AssertEqual(t, "island", f.svc.Director.Current().IslandID(), "i7")

	_ = c.exec(ctx, "/leave")
	_ = f.svc.Director.Tick(ctx)
	testutil.AssertEqual(t, "back", f.svc.Director.Current().Key(), scene.Loby)

	_ = c.exec(ctx, "/home")
	_ = f.svc.Director.Tick(ctx)
	testutil.AssertEqual(t, "guest stays", f.svc.Director.Current().Key(), scene.Loby)
}

func TestConsole_LogoutFailure(t *testing.T) {
	f := newFixture(t, WithLogout(func(context.Context) error { return errors.New("503") }))
	f.boot(t)

	var out bytes.Buffer
	c := NewConsole(f.svc, strings.NewReader(""), &out)

	err := c.exec(context.Background(), "/logout")

	testutil.AssertEqual(t, "err", err, nil)
	testutil.AssertEqual(t, "out", out.String(), "로그아웃에 실패했어요.. 나중에 다시 시도해주세요.\n")
}

func TestConsole_Start(t *testing.T) {
	f := newFixture(t, WithTickLength(5*time.Millisecond))
	f.boot(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = f.svc.Driver.Start(ctx) }()

	var out bytes.Buffer
	c := NewConsole(f.svc, strings.NewReader("/who\n/bgm\n"), &out)

	if err := c.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	testutil.AssertEqual(t, "out", out.String(), "게스트 (you)\nbackground music off\n")
}
