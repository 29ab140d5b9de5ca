package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/pixil98/go-testutil"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "session.db"))
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := Open("  ")
	testutil.AssertErrorContains(t, err, "storage path is required")
}

func TestStore_SaveLoad(t *testing.T) {
	s := openTestStore(t)

	err := s.Save("profile", []byte(`{"nickname":"coco"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, found, err := s.Load("profile")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "found", found, true)
	testutil.AssertEqual(t, "value", string(got), `{"nickname":"coco"}`)
}

func TestStore_SaveOverwrites(t *testing.T) {
	s := openTestStore(t)

	for _, v := range []string{`0.4`, `0.8`} {
		if err := s.Save("sound_volume", []byte(v)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	got, _, err := s.Load("sound_volume")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "value", string(got), `0.8`)
}

func TestStore_Delete(t *testing.T) {
	s := openTestStore(t)

	if err := s.Save("access_token", []byte(`"abc"`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Delete("access_token"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, found, err := s.Load("access_token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "found", found, false)
}

func TestStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	if err := s.Save("play_bgm", []byte(`false`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("closing store: %v", err)
	}

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopening store: %v", err)
	}
	defer func() { _ = s.Close() }()

	got, found, err := s.Load("play_bgm")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "found", found, true)
	testutil.AssertEqual(t, "value", string(got), `false`)
}

func TestStore_InvalidKey(t *testing.T) {
	s := openTestStore(t)

	err := s.Save("bad key", []byte(`1`))
	testutil.AssertErrorContains(t, err, "invalid key")
}

func TestStore_NilSafe(t *testing.T) {
	var s *Store

	testutil.AssertEqual(t, "close error", s.Close(), nil)
	_, _, err := s.Load("x")
	testutil.AssertErrorContains(t, err, "not configured")
}
