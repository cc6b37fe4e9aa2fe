package database

import (
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

// setupTestDB opens a throwaway sqlite database under t.TempDir.
func setupTestDB(t *testing.T) (*DB, func()) {
	t.Helper()

	db, err := NewDB(Config{
		Type:       TypeSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "journal.db"),
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	cleanup := func() {
		if err := db.Close(); err != nil {
			t.Logf("Failed to close test database: %v", err)
		}
	}
	return db, cleanup
}
