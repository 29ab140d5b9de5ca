package storage

import "sync"

// MemoryStore is a Storer that lives only as long as the process.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[Identifier][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: map[Identifier][]byte{}}
}

func (s *MemoryStore) Load(key Identifier) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	val, ok := s.records[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), val...), true, nil
}

func (s *MemoryStore) Save(key Identifier, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[key] = append([]byte(nil), value...)
	return nil
}

func (s *MemoryStore) Delete(key Identifier) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, key)
	return nil
}
