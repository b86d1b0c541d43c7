// ABOUTME: Tests for database connection management
// ABOUTME: Provides the shared setupTestDB helper for the package tests
package db

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := OpenDatabase(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenDatabase failed: %v", err)
	}
	return database
}

func TestOpenDatabase(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "deals", "test.db")

	database, err := OpenDatabase(dbPath)
	if err != nil {
		t.Fatalf("OpenDatabase failed: %v", err)
	}
	defer database.Close()

	// Parent directory is created on demand
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}

	// Verify schema was initialized
	var count int
	err = database.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table'").Scan(&count)
	if err != nil {
		t.Fatalf("Failed to query tables: %v", err)
	}
	if count < 7 {
		t.Errorf("Expected at least 7 tables, got %d", count)
	}

	// Verify WAL mode
	var mode string
	err = database.QueryRow("PRAGMA journal_mode").Scan(&mode)
	if err != nil {
		t.Fatalf("Failed to query journal mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("Expected WAL mode, got %s", mode)
	}
}

func TestOpenDatabaseInvalidPath(t *testing.T) {
	_, err := OpenDatabase("/proc/invalid/nonexistent/test.db")
	if err == nil {
		t.Error("Expected error for invalid path, but OpenDatabase succeeded")
	}
}

func TestWrapTransient(t *testing.T) {
	if wrapTransient(nil) != nil {
		t.Error("nil should stay nil")
	}

	err := wrapTransient(context.DeadlineExceeded)
	if !errors.Is(err, ErrTransient) {
		t.Errorf("Expected deadline errors to be tagged transient, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("Original cause should still be matchable")
	}

	err = wrapTransient(context.Canceled)
	if !errors.Is(err, ErrTransient) {
		t.Errorf("Expected cancellation to be tagged transient, got %v", err)
	}

	plain := errors.New("constraint failed")
	if errors.Is(wrapTransient(plain), ErrTransient) {
		t.Error("Data errors must not be tagged transient")
	}
}
