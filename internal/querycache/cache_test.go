package querycache

import (
	"testing"

	"github.com/pixil98/go-testutil"
)

type counter struct {
	Count int `json:"count"`
}

func increment(old *counter) counter {
	if old == nil {
		return counter{Count: 1}
	}
	return counter{Count: old.Count + 1}
}

func TestUpdate(t *testing.T) {
	tests := map[string]struct {
		seed     any
		expCount int
	}{
		"absent":     {expCount: 1},
		"existing":   {seed: counter{Count: 2}, expCount: 3},
		"unreadable": {seed: "garbage", expCount: 1},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			c := New()
			if tt.seed != nil {
				_ = c.Set("unreadFriendRequest", tt.seed)
			}

			err := Update(c, "unreadFriendRequest", increment)
			testutil.AssertEqual(t, "err", err, nil)

			var got counter
			found, err := c.Get("unreadFriendRequest", &got)
			testutil.AssertEqual(t, "found", found, true)
			testutil.AssertEqual(t, "get err", err, nil)
			testutil.AssertEqual(t, "count", got.Count, tt.expCount)
		})
	}
}

func TestInvalidate(t *testing.T) {
	c := New()
	key := Key("islandInfo", "i1")
	testutil.AssertEqual(t, "key", key, "islandInfo/i1")

	testutil.AssertEqual(t, "unknown not stale", c.Stale(key), false)

	_ = c.Set(key, map[string]string{"name": "coco"})
	testutil.AssertEqual(t, "fresh", c.Stale(key), false)

	c.Invalidate(key)
	testutil.AssertEqual(t, "stale", c.Stale(key), true)

	_ = c.Set(key, map[string]string{"name": "coco 2"})
	testutil.AssertEqual(t, "fresh again", c.Stale(key), false)

	c.Invalidate(Key("islandInfo", "i2"))
	testutil.AssertEqual(t, "absent key marked stale", c.Stale(Key("islandInfo", "i2")), true)

	c.Remove(key)
	found, _ := c.Get(key, &map[string]string{})
	testutil.AssertEqual(t, "removed", found, false)
}

func TestClear(t *testing.T) {
	c := New()
	_ = c.Set("unreadFriendRequest", counter{Count: 3})
	c.Invalidate(Key("islandInfo", "i1"))

	c.Clear()

	found, err := c.Get("unreadFriendRequest", &counter{})
	testutil.AssertEqual(t, "err", err, nil)
	testutil.AssertEqual(t, "count dropped", found, false)
	testutil.AssertEqual(t, "stale dropped", c.Stale(Key("islandInfo", "i1")), false)
}
