package spawn

// Avatar is a decoded avatar key: KnownFamily or Unknown.
type Avatar interface {
	avatar()
}

type KnownFamily struct {
	Family  string
	Variant string
}

func (KnownFamily) avatar() {}

// Key renders the avatar back to its wire form.
func (k KnownFamily) Key() string {
	return k.Variant + "_" + k.Family
}

// Unknown is an avatar key that names no known family.
type Unknown struct {
	Raw string
}

func (Unknown) avatar() {}
