package cli

import (
	"bytes"
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/roach88/maturing/internal/fixture"
	"github.com/roach88/maturing/internal/store"
	"github.com/roach88/maturing/internal/testutil"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// consistentDeck: mature 3 up / 1 down, known 1 up; cards agree.
const consistentDeck = `
items:
  - id: 1
    reviews:
      - {days_ago: 100, result: 5}
      - {days_ago: 70, result: 30}
      - {days_ago: 10, result: 400}
  - id: 2
    reviews:
      - {days_ago: 50, result: 25}
      - {days_ago: 5, result: 3}
  - id: 3
    reviews:
      - {days_ago: 3, result: 22}
`

// brokenDeck adds a snapshot drift on card 3 and a chain break on card 4.
const brokenDeck = consistentDeck + `    interval: 10
  - id: 4
    reviews:
      - {days_ago: 20, result: 30}
      - {days_ago: 8, prior: 2, result: 40}
`

func newTestRootOptions(format string) *RootOptions {
	return &RootOptions{
		Format: format,
		Now:    testutil.NewFixedClock(testNow).Now,
	}
}

// seedFixture writes a fixture into a fresh database and returns its path.
func seedFixture(t *testing.T, yaml string) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "collection.db")

	fx, err := fixture.Parse([]byte(yaml))
	require.NoError(t, err)

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	items, events := fx.Build(testNow)
	require.NoError(t, st.WriteItems(context.Background(), items, events))
	return dbPath
}

func emptyDB(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "empty.db")
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	st.Close()
	return dbPath
}

// execute runs cmd with args and returns stdout.
func execute(cmd *cobra.Command, args ...string) (string, error) {
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// hostUserVersion is the schema version the host application stamps.
const hostUserVersion = 11

// hostDB writes a fixture into a database shaped like the host
// application's: wider tables, a rollback journal and its own user_version.
func hostDB(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "collection.anki2")

	fx, err := fixture.Parse([]byte(yaml))
	require.NoError(t, err)
	items, events := fx.Build(testNow)

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`
		CREATE TABLE cards (id INTEGER PRIMARY KEY, nid INTEGER NOT NULL DEFAULT 0,
			did INTEGER NOT NULL, ivl INTEGER NOT NULL, due INTEGER NOT NULL DEFAULT 0);
		CREATE TABLE revlog (id INTEGER PRIMARY KEY, cid INTEGER NOT NULL, usn INTEGER NOT NULL DEFAULT 0,
			ease INTEGER NOT NULL DEFAULT 3, ivl INTEGER NOT NULL, lastIvl INTEGER NOT NULL);
		PRAGMA user_version = 11;
	`)
	require.NoError(t, err)

	for _, it := range items {
		_, err := db.Exec(`INSERT INTO cards (id, did, ivl) VALUES (?, ?, ?)`, it.ID, it.DeckID, it.CurrentInterval)
		require.NoError(t, err)
	}
	for _, e := range events {
		_, err := db.Exec(`INSERT INTO revlog (id, cid, ivl, lastIvl) VALUES (?, ?, ?, ?)`,
			e.ID, e.ItemID, e.ResultInterval, e.PriorInterval)
		require.NoError(t, err)
	}
	return path
}

// fileState reads the persistent settings that reads must leave alone.
func fileState(t *testing.T, path string) (userVersion int, journalMode string, deckIndex bool) {
	t.Helper()
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.QueryRow("PRAGMA user_version").Scan(&userVersion))
	require.NoError(t, db.QueryRow("PRAGMA journal_mode").Scan(&journalMode))

	var n int
	require.NoError(t, db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='index' AND name='ix_cards_did'").Scan(&n))
	return userVersion, journalMode, n == 1
}
