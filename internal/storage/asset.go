package storage

import (
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/pixil98/go-errors"
)

var identifierPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]*$`)

type Identifier string

func (id Identifier) String() string {
	return string(id)
}

// ValidateIdentifier reports whether id can be used as a record key on disk.
func ValidateIdentifier(id Identifier) error {
	el := errors.NewErrorList()

	if id == "" {
		el.Add(fmt.Errorf("id must be set"))
	}

	if !identifierPattern.MatchString(id.String()) {
		el.Add(fmt.Errorf("id must be alphanumeric"))
	}

	return el.Err()
}

// Asset is the on-disk envelope for a single persisted value.
type Asset struct {
	Version    uint            `json:"version"`
	Identifier Identifier      `json:"id"`
	Value      json.RawMessage `json:"value"`
}

func (a *Asset) Id() Identifier {
	return a.Identifier
}

func (a *Asset) Validate() error {
	el := errors.NewErrorList()

	if a.Version == 0 {
		el.Add(fmt.Errorf("version must be set"))
	}

	el.Add(ValidateIdentifier(a.Identifier))

	if len(a.Value) == 0 {
		el.Add(fmt.Errorf("value must be set"))
	} else if !json.Valid(a.Value) {
		el.Add(fmt.Errorf("value must be valid json"))
	}

	return el.Err()
}
