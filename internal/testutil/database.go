// Package testutil provides shared test fixtures: a migrated SQLite store, an
// in-memory remote store with injectable failures, and a fluent state builder.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/fintrack/internal/storage"
)

// SetupTestDB creates a migrated in-memory SQLite store that is closed when the
// test ends.
func SetupTestDB(t *testing.T) *storage.SQLiteStorage {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		_ = store.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return store
}
