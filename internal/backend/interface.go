package backend

import (
	"context"
	"errors"

	"gofinances/internal/storage"
)

// ErrReadOnly is returned when a write is requested from a backend that
// cannot store the collection.
var ErrReadOnly = errors.New("backend is read-only")

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Result holds the opened store. Writer is nil for read-only backends.
type Result struct {
	Reader  storage.Reader
	Writer  storage.Writer
	Cleanup CleanupFunc
}

// Store returns the backend as a read-write store, or ErrReadOnly.
func (r *Result) Store() (storage.Store, error) {
	if s, ok := r.Reader.(storage.Store); ok && r.Writer != nil {
		return s, nil
	}
	return nil, ErrReadOnly
}

// Ping checks the underlying store when it supports it; other backends are
// always reachable.
func (r *Result) Ping(ctx context.Context) error {
	if p, ok := r.Reader.(storage.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Close runs Cleanup if set.
func (r *Result) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	SheetsBackend BackendType = "sheets"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, SheetsBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
