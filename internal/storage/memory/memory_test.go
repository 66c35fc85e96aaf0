package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"gofinances/internal/storage"
)

func TestMemoryStoreSetAndGet(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, found, err := s.Get(ctx, storage.DefaultKey); found || err != nil {
		t.Fatalf("expected missing key, found=%v err=%v", found, err)
	}
	if err := s.Set(ctx, storage.DefaultKey, "[]"); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, found, err := s.Get(ctx, storage.DefaultKey)
	if err != nil || !found || v != "[]" {
		t.Fatalf("unexpected get: v=%q found=%v err=%v", v, found, err)
	}
}

func TestNewFromFiles(t *testing.T) {
	dir := t.TempDir()

	// No file -> empty store
	s, err := NewFromFiles(dir, storage.DefaultKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, found, _ := s.Get(context.Background(), storage.DefaultKey); found {
		t.Fatalf("expected empty store when seed file missing")
	}

	seed := `[{"id":"1","type":"positive","amount":"100","date":"2021-01-10"}]`
	if err := os.WriteFile(filepath.Join(dir, SeedFile), []byte(seed), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	s, err = NewFromFiles(dir, storage.DefaultKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, found, _ := s.Get(context.Background(), storage.DefaultKey)
	if !found || v != seed {
		t.Fatalf("seed not loaded: found=%v v=%q", found, v)
	}

	if err := os.WriteFile(filepath.Join(dir, SeedFile), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	if _, err := NewFromFiles(dir, storage.DefaultKey); err == nil {
		t.Fatalf("expected error for invalid seed")
	}
}
