package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Storer persists raw JSON values by key.
type Storer interface {
	Load(key Identifier) ([]byte, bool, error)
	Save(key Identifier, value []byte) error
	Delete(key Identifier) error
}

// FileStore keeps one JSON asset file per key under a directory.
type FileStore struct {
	path    string
	records map[Identifier]json.RawMessage

	mu sync.RWMutex
}

func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	s := &FileStore{
		path:    path,
		records: map[Identifier]json.RawMessage{},
	}

	err := s.load()
	if err != nil {
		return nil, err
	}

	return s, nil
}

func (s *FileStore) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = map[Identifier]json.RawMessage{}

	return filepath.Walk(s.path, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if info.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}

		asset, err := s.loadAsset(path)
		if err != nil {
			return err
		}

		err = asset.Validate()
		if err != nil {
			return fmt.Errorf("validating %s: %w", filepath.Base(path), err)
		}

		if _, ok := s.records[asset.Id()]; ok {
			return fmt.Errorf("duplicate key detected: %s", asset.Id())
		}

		s.records[asset.Id()] = asset.Value
		return nil
	})
}

func (s *FileStore) Load(key Identifier) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	val, ok := s.records[key]
	if !ok {
		return nil, false, nil
	}

	return append([]byte(nil), val...), true, nil
}

func (s *FileStore) Save(key Identifier, value []byte) error {
	if err := ValidateIdentifier(key); err != nil {
		return fmt.Errorf("invalid key %q: %w", key, err)
	}
	if !json.Valid(value) {
		return fmt.Errorf("value for %q is not valid json", key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	asset := &Asset{
		Version:    1,
		Identifier: key,
		Value:      append(json.RawMessage(nil), value...),
	}

	jsonData, err := json.Marshal(asset)
	if err != nil {
		return fmt.Errorf("marshalling json: %w", err)
	}

	err = atomicWrite(s.filePath(key), jsonData, 0644)
	if err != nil {
		return err
	}

	s.records[key] = asset.Value
	return nil
}

func (s *FileStore) Delete(key Identifier) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[key]; !ok {
		return nil
	}

	err := os.Remove(s.filePath(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing %q: %w", key, err)
	}

	delete(s.records, key)
	return nil
}

// atomicWrite writes data to a temp file then renames it to the target path.
// This prevents partial or empty files if the process is interrupted.
func atomicWrite(path string, data []byte, perm os.FileMode) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		if removeErr := os.Remove(tmp); removeErr != nil {
			slog.Warn("failed to remove temp file after rename failure", "path", tmp, "error", removeErr)
		}
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

func (s *FileStore) filePath(key Identifier) string {
	return filepath.Join(s.path, fmt.Sprintf("%s.json", key))
}

func (s *FileStore) loadAsset(path string) (*Asset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}

	// Ignoring close error - file is read-only, error is not actionable
	defer func() { _ = file.Close() }()

	jsonData, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	asset := &Asset{}
	err = json.Unmarshal(jsonData, asset)
	if err != nil {
		return nil, fmt.Errorf("unmarshalling asset: %w", err)
	}

	return asset, nil
}
