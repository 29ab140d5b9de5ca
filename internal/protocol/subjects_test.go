package protocol

import (
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestNamespaceFromUp(t *testing.T) {
	tests := map[string]struct {
		subject string
		expNs   string
		expOk   bool
	}{
		"island":       {subject: UpSubject("island"), expNs: "island", expOk: true},
		"down subject": {subject: DownSubject("island", "p1"), expOk: false},
		"wrong prefix": {subject: "lobby.island.up", expOk: false},
		"empty ns":     {subject: "island..up", expOk: false},
		"nested ns":    {subject: "island.a.b.up", expOk: false},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			ns, ok := NamespaceFromUp(tt.subject)
			testutil.AssertEqual(t, "ok", ok, tt.expOk)
			testutil.AssertEqual(t, "namespace", ns, tt.expNs)
		})
	}
}

func TestSubjects(t *testing.T) {
	testutil.AssertEqual(t, "up", UpSubject("island"), "island.island.up")
	testutil.AssertEqual(t, "down", DownSubject("island", "p1"), "island.island.down.p1")
	testutil.AssertEqual(t, "broadcast", BroadcastSubject("island"), "island.island.down.all")
}

func TestPlayerFromClientName(t *testing.T) {
	tests := map[string]struct {
		name  string
		expID string
		expOk bool
	}{
		"client":       {name: ClientName("u1"), expID: "u1", expOk: true},
		"guest":        {name: ClientName("guest-1"), expID: "guest-1", expOk: true},
		"relay":        {name: "island-relay"},
		"empty player": {name: ClientName("")},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			id, ok := PlayerFromClientName(tt.name)
			testutil.AssertEqual(t, "ok", ok, tt.expOk)
			testutil.AssertEqual(t, "id", id, tt.expID)
		})
	}
}
