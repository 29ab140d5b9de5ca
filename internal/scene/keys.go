package scene

// Key names a scene. Keys are persisted, so they keep their historical spelling.
type Key string

const (
	Boot     Key = "BootScene"
	Loby     Key = "LobyScene"
	Island   Key = "IslandScene"
	MyIsland Key = "MyIslandScene"
)

func (k Key) String() string {
	return string(k)
}

// Bgm is the background track a scene plays, or "" for none.
func (k Key) Bgm() string {
	switch k {
	case Loby:
		return "loby_bgm"
	case Island, MyIsland:
		return "island_bgm"
	default:
		return ""
	}
}
