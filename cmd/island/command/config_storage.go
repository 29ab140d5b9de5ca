package command

import (
	"fmt"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-island/internal/storage"
	"github.com/pixil98/go-island/internal/storage/sqlite"
)

type StorageType int

const (
	StorageTypeFile StorageType = iota
	StorageTypeSqlite
	StorageTypeMemory
)

func (st *StorageType) UnmarshalText(text []byte) error {
	switch string(text) {
	case "file":
		*st = StorageTypeFile
	case "sqlite":
		*st = StorageTypeSqlite
	case "memory":
		*st = StorageTypeMemory
	default:
		return fmt.Errorf("unknown storage type: %s", text)
	}
	return nil
}

// StorageConfig picks the backend for durable session entries.
type StorageConfig struct {
	Type StorageType `json:"type"`
	Path string      `json:"path" env:"ISLAND_STORAGE_PATH"`
}

func (c *StorageConfig) validate() error {
	el := errors.NewErrorList()

	if c.Type != StorageTypeMemory && c.Path == "" {
		el.Add(fmt.Errorf("storage: path is required"))
	}

	return el.Err()
}

// buildStore opens the backend. The returned function closes it.
func (c *StorageConfig) buildStore() (storage.Storer, func() error, error) {
	switch c.Type {
	case StorageTypeSqlite:
		s, err := sqlite.Open(c.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		return s, s.Close, nil

	case StorageTypeMemory:
		return storage.NewMemoryStore(), func() error { return nil }, nil

	default:
		s, err := storage.NewFileStore(c.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("opening file store: %w", err)
		}
		return s, func() error { return nil }, nil
	}
}
