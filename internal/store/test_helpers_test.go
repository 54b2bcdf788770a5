package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/roach88/maturing/internal/revlog"
)

// createTestStore creates a new file-backed store in a temp dir for testing.
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

// seedStore writes items and events, failing the test on error.
func seedStore(t *testing.T, s *Store, items []revlog.ItemSnapshot, events []revlog.ReviewEvent) {
	t.Helper()
	if err := s.WriteItems(context.Background(), items, events); err != nil {
		t.Fatalf("WriteItems() failed: %v", err)
	}
}

// reviewAt returns an event ID for a review daysAgo days and one minute
// before cutoff.
func reviewAt(cutoff, daysAgo int64) int64 {
	return (cutoff - daysAgo*86400 - 60) * 1000
}

// hostUserVersion is the schema version the host application stamps.
const hostUserVersion = 11

// createHostDB writes a database shaped like the host application's: wider
// tables, a rollback journal, its own user_version and no deck index.
func createHostDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "collection.anki2")

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("sql.Open() failed: %v", err)
	}
	defer db.Close()

	for _, stmt := range []string{
		`CREATE TABLE cards (id INTEGER PRIMARY KEY, nid INTEGER NOT NULL DEFAULT 0,
			did INTEGER NOT NULL, ivl INTEGER NOT NULL, due INTEGER NOT NULL DEFAULT 0)`,
		`CREATE TABLE revlog (id INTEGER PRIMARY KEY, cid INTEGER NOT NULL, usn INTEGER NOT NULL DEFAULT 0,
			ease INTEGER NOT NULL DEFAULT 3, ivl INTEGER NOT NULL, lastIvl INTEGER NOT NULL)`,
		`INSERT INTO cards (id, did, ivl) VALUES (1, 1, 30), (2, 1, 2)`,
		`INSERT INTO revlog (id, cid, ivl, lastIvl) VALUES (1000, 1, 10, 0), (2000, 1, 30, 5), (3000, 2, 2, 0)`,
		`PRAGMA user_version = 11`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("exec %q: %v", stmt, err)
		}
	}
	return path
}

// fileState reads the persistent settings a read must not change.
func fileState(t *testing.T, path string) (userVersion int, journalMode string) {
	t.Helper()
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("sql.Open() failed: %v", err)
	}
	defer db.Close()

	if err := db.QueryRow("PRAGMA user_version").Scan(&userVersion); err != nil {
		t.Fatalf("user_version: %v", err)
	}
	if err := db.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		t.Fatalf("journal_mode: %v", err)
	}
	return userVersion, journalMode
}
