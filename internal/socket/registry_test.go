package socket_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/pixil98/go-island/internal/driver"
	"github.com/pixil98/go-island/internal/socket"
	"github.com/pixil98/go-island/internal/socket/sockettest"
	"github.com/pixil98/go-testutil"
)

func TestRegistry_ConnectReuses(t *testing.T) {
	dialer := sockettest.NewDialer()
	r := socket.NewRegistry(dialer, nil)

	first := r.Connect(context.Background(), "island")
	second := r.Connect(context.Background(), "island")

	testutil.AssertEqual(t, "same connection", first == second, true)
	testutil.AssertEqual(t, "dials", dialer.Dials("island"), 1)
	testutil.AssertEqual(t, "connected", first.Connected(), true)
	testutil.AssertEqual(t, "namespace", first.Namespace(), "island")
}

func TestRegistry_NamespacesAreSeparate(t *testing.T) {
	dialer := sockettest.NewDialer()
	r := socket.NewRegistry(dialer, nil)

	island := r.Connect(context.Background(), "island")
	other := r.Connect(context.Background(), "friends")

	testutil.AssertEqual(t, "different connections", island == other, false)
	testutil.AssertEqual(t, "island dials", dialer.Dials("island"), 1)
	testutil.AssertEqual(t, "friends dials", dialer.Dials("friends"), 1)
}

func TestRegistry_UnavailableTransport(t *testing.T) {
	tests := map[string]struct {
		dialer socket.Dialer
	}{
		"dial fails":   {dialer: unavailableDialer()},
		"no transport": {dialer: nil},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			r := socket.NewRegistry(tt.dialer, nil)

			c := r.Connect(context.Background(), "island")
			if c == nil {
				t.Fatal("expected a placeholder connection")
			}
			testutil.AssertEqual(t, "connected", c.Connected(), false)

			// Placeholders accept handlers and drop emits.
			sub := c.On("receiveMessage", func(json.RawMessage) {})
			c.Emit("sendMessage", map[string]string{"message": "hi"})
			sub.Release()
		})
	}
}

func unavailableDialer() socket.Dialer {
	d := sockettest.NewDialer()
	d.SetUnavailable(true)
	return d
}

func TestRegistry_HandlersSurviveRedial(t *testing.T) {
	dialer := sockettest.NewDialer()
	r := socket.NewRegistry(dialer, nil)

	c := r.Connect(context.Background(), "island")
	calls := 0
	c.On("receiveFriendRequest", func(json.RawMessage) { calls++ })

	// Transport drops the link; the watcher detaches it asynchronously.
	first := dialer.Link("island")
	_ = first.Close()
	waitDisconnected(t, c)

	again := r.Connect(context.Background(), "island")
	testutil.AssertEqual(t, "same logical connection", again == c, true)
	testutil.AssertEqual(t, "dials", dialer.Dials("island"), 2)

	dialer.Link("island").Push("receiveFriendRequest", nil)
	testutil.AssertEqual(t, "calls", calls, 1)
}

func waitDisconnected(t *testing.T, c *socket.Connection) {
	t.Helper()
	for i := 0; i < 1000 && c.Connected(); i++ {
		time.Sleep(time.Millisecond)
	}
	if c.Connected() {
		t.Fatal("connection never detached its closed link")
	}
}

func TestConnection_EmitEncodesPayload(t *testing.T) {
	dialer := sockettest.NewDialer()
	r := socket.NewRegistry(dialer, nil)

	c := r.Connect(context.Background(), "island")
	c.Emit("sendMessage", map[string]string{"message": "hello"})
	c.Emit("leaveIsland", nil)

	sent := dialer.Link("island").Sent("sendMessage")
	testutil.AssertEqual(t, "sent count", len(sent), 1)
	testutil.AssertEqual(t, "payload", string(sent[0].Data), `{"message":"hello"}`)
	testutil.AssertEqual(t, "empty payload", len(dialer.Link("island").Sent("leaveIsland")[0].Data), 0)
}

func TestConnection_OnOff(t *testing.T) {
	dialer := sockettest.NewDialer()
	r := socket.NewRegistry(dialer, nil)
	c := r.Connect(context.Background(), "island")

	var got []string
	c.On("islandInfoUpdated", func(json.RawMessage) { got = append(got, "a") })
	sub := c.On("islandInfoUpdated", func(json.RawMessage) { got = append(got, "b") })
	c.On("islandInfoUpdated", func(json.RawMessage) { got = append(got, "c") })

	link := dialer.Link("island")
	link.Push("islandInfoUpdated", nil)
	testutil.AssertEqual(t, "all handlers in order", len(got), 3)
	testutil.AssertEqual(t, "order", got[0]+got[1]+got[2], "abc")

	sub.Release()
	sub.Release()
	got = nil
	link.Push("islandInfoUpdated", nil)
	testutil.AssertEqual(t, "after release", len(got), 2)

	c.Off("islandInfoUpdated")
	got = nil
	link.Push("islandInfoUpdated", nil)
	testutil.AssertEqual(t, "after off", len(got), 0)
	testutil.AssertEqual(t, "handler count", c.HandlerCount("islandInfoUpdated"), 0)
}

func TestConnection_RemountDoesNotDuplicate(t *testing.T) {
	dialer := sockettest.NewDialer()
	r := socket.NewRegistry(dialer, nil)

	calls := 0
	mount := func() {
		c := r.Connect(context.Background(), "island")
		c.On("receiveFriendRequest", func(json.RawMessage) { calls++ })
	}
	unmount := func() {
		c, _ := r.Get("island")
		c.Off("receiveFriendRequest")
	}

	mount()
	unmount()
	mount()

	dialer.Link("island").Push("receiveFriendRequest", nil)
	testutil.AssertEqual(t, "calls", calls, 1)
}

func TestConnection_DispatchThroughDriver(t *testing.T) {
	dialer := sockettest.NewDialer()
	d := driver.NewDriver(nil)
	r := socket.NewRegistry(dialer, d)
	c := r.Connect(context.Background(), "island")

	var got []string
	socket.OnEvent(c, "receiveMessage", func(m struct {
		Message string `json:"message"`
	}) {
		got = append(got, m.Message)
	})

	link := dialer.Link("island")
	link.Push("receiveMessage", map[string]string{"message": "one"})
	link.PushRaw("receiveMessage", `{"message":`)
	link.Push("receiveMessage", map[string]string{"message": "two"})

	testutil.AssertEqual(t, "before drain", len(got), 0)
	d.Drain()
	testutil.AssertEqual(t, "after drain", len(got), 2)
	testutil.AssertEqual(t, "first", got[0], "one")
	testutil.AssertEqual(t, "second", got[1], "two")
}

func TestRegistry_Close(t *testing.T) {
	dialer := sockettest.NewDialer()
	r := socket.NewRegistry(dialer, nil)

	c := r.Connect(context.Background(), "island")
	c.On("messageSent", func(json.RawMessage) {})
	link := dialer.Link("island")

	r.CloseAll()

	testutil.AssertEqual(t, "link closed", link.Closed(), true)
	testutil.AssertEqual(t, "connected", c.Connected(), false)
	testutil.AssertEqual(t, "handlers cleared", c.HandlerCount("messageSent"), 0)
	_, ok := r.Get("island")
	testutil.AssertEqual(t, "forgotten", ok, false)

	fresh := r.Connect(context.Background(), "island")
	testutil.AssertEqual(t, "new logical connection", fresh == c, false)
}

func TestConnection_NilSafe(t *testing.T) {
	var c *socket.Connection

	testutil.AssertEqual(t, "connected", c.Connected(), false)
	testutil.AssertEqual(t, "namespace", c.Namespace(), "")
	c.Emit("sendMessage", nil)
	c.Off("sendMessage")
	c.On("x", func(json.RawMessage) {}).Release()
}
