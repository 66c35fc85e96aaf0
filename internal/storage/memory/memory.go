package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gofinances/internal/storage"
)

// SeedFile is read by NewFromFiles and stored under the collection key.
const SeedFile = "transactions.json"

type Store struct {
	mu     sync.RWMutex
	values map[string]string
}

var _ storage.Store = (*Store)(nil)

func New() *Store {
	return &Store{values: make(map[string]string)}
}

// NewFromFiles seeds key with the contents of <base>/transactions.json when the
// file exists. A missing file leaves the store empty; a file that is not JSON is
// an error so that typos in seed data are noticed at startup.
func NewFromFiles(base, key string) (*Store, error) {
	s := New()
	b, err := os.ReadFile(filepath.Join(base, SeedFile))
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	if !json.Valid(b) {
		return nil, fmt.Errorf("seed file %s is not valid JSON", filepath.Join(base, SeedFile))
	}
	s.values[key] = string(b)
	return s, nil
}

// Get implements storage.Reader.
func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

// Set implements storage.Writer.
func (s *Store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}
