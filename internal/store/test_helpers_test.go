package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/efaps/efql/internal/testutil"
)

// createTestStore opens a fresh database file in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createModelStore opens a store with the fixture model's tables.
func createModelStore(t *testing.T) *Store {
	t.Helper()
	s := createTestStore(t)
	if err := s.ApplySchema(context.Background(), testutil.Registry(t).DDL()); err != nil {
		t.Fatalf("ApplySchema() failed: %v", err)
	}
	return s
}
