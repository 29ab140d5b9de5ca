package spawn

import (
	_ "embed"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/pixil98/go-errors"
	"gopkg.in/yaml.v3"
)

//go:embed families.yaml
var familiesYAML []byte

var (
	loadDefaultCatalogOnce sync.Once
	defaultCatalog         *Catalog
)

// Catalog lists the entity families a player avatar can resolve to.
type Catalog struct {
	DefaultFamily string            `yaml:"default_family"`
	Families      map[string]Family `yaml:"families"`
}

type Family struct {
	DefaultVariant string   `yaml:"default_variant"`
	Variants       []string `yaml:"variants"`
	Speed          float64  `yaml:"speed"`
}

// LoadCatalog parses and validates a YAML family catalog.
func LoadCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing family catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validating family catalog: %w", err)
	}
	return &c, nil
}

// DefaultCatalog is the catalog shipped with the binary.
func DefaultCatalog() *Catalog {
	loadDefaultCatalogOnce.Do(func() {
		c, err := LoadCatalog(familiesYAML)
		if err != nil {
			panic(err)
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

func (c *Catalog) Validate() error {
	el := errors.NewErrorList()

	if c.DefaultFamily == "" {
		el.Add(fmt.Errorf("default_family must be set"))
	} else if _, ok := c.Families[c.DefaultFamily]; !ok {
		el.Add(fmt.Errorf("default_family %q is not defined", c.DefaultFamily))
	}

	for name, f := range c.Families {
		if strings.Contains(name, "_") {
			el.Add(fmt.Errorf("family %q: name must not contain '_'", name))
		}
		if len(f.Variants) == 0 {
			el.Add(fmt.Errorf("family %q: variants must be set", name))
		}
		if !slices.Contains(f.Variants, f.DefaultVariant) {
			el.Add(fmt.Errorf("family %q: default_variant %q is not a variant", name, f.DefaultVariant))
		}
		if f.Speed < 0 {
			el.Add(fmt.Errorf("family %q: speed must not be negative", name))
		}
	}

	return el.Err()
}

// ParseAvatar decodes an avatar key of the form "<variant>_<family>". Only the
// first two segments count, so "purple_pawn_v2" is a purple pawn. It never
// fails: a known family with an unknown variant falls back to the family's
// default variant, and anything else is reported as Unknown.
func (c *Catalog) ParseAvatar(key string) Avatar {
	parts := strings.Split(key, "_")
	if len(parts) < 2 {
		return Unknown{Raw: key}
	}
	variant, family := parts[0], parts[1]

	f, ok := c.Families[family]
	if !ok {
		return Unknown{Raw: key}
	}

	if !slices.Contains(f.Variants, variant) {
		variant = f.DefaultVariant
	}
	return KnownFamily{Family: family, Variant: variant}
}

// Resolve maps any avatar to the family and variant to spawn.
func (c *Catalog) Resolve(a Avatar) KnownFamily {
	if k, ok := a.(KnownFamily); ok {
		return k
	}
	return KnownFamily{
		Family:  c.DefaultFamily,
		Variant: c.Families[c.DefaultFamily].DefaultVariant,
	}
}

// ParseAvatar decodes key against the default catalog.
func ParseAvatar(key string) Avatar {
	return DefaultCatalog().ParseAvatar(key)
}
