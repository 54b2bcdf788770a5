package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// currentSchemaVersion is stamped into user_version of databases this
// package creates. Databases owned by the host keep their own version.
const currentSchemaVersion = 1

// Store provides access to the review log and item snapshots.
type Store struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path for loading
// fixtures. A database without a review log gets the schema, WAL mode and
// a user_version stamp; an existing one only gains missing indexes.
//
// This function is idempotent - safe to call multiple times.
func Open(path string) (*Store, error) {
	db, err := connect(path)
	if err != nil {
		return nil, err
	}

	fresh, err := isFresh(db)
	if err != nil {
		db.Close()
		return nil, opError("inspect database", err)
	}

	if err := applyPragmas(db, fresh); err != nil {
		db.Close()
		return nil, opError("apply pragmas", err)
	}

	if err := applySchema(db, fresh); err != nil {
		db.Close()
		return nil, opError("apply schema", err)
	}

	return &Store{db: db}, nil
}

// OpenExisting opens an existing database read-write for repairs. It fails
// if the file does not exist and never changes schema, pragmas or
// user_version.
func OpenExisting(path string) (*Store, error) {
	if err := requireFile(path); err != nil {
		return nil, err
	}
	db, err := connect(fileURI(path, "mode=rw&_busy_timeout=5000"))
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// OpenReadOnly opens an existing database for reports. SQLite rejects any
// write through it, and a missing file is an error rather than an empty
// database.
func OpenReadOnly(path string) (*Store, error) {
	if err := requireFile(path); err != nil {
		return nil, err
	}
	db, err := connect(fileURI(path, "mode=ro&_busy_timeout=5000"))
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - prefer using Store methods when available.
func (s *Store) DB() *sql.DB {
	return s.db
}

// connect opens and pings dsn on a single connection.
func connect(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, opError("open database", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, opError("connect to database", err)
	}

	// SQLite only supports one writer at a time, and :memory: databases
	// are per-connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	return db, nil
}

func requireFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return opError("open database", err)
	}
	if info.IsDir() {
		return opError("open database", fmt.Errorf("%s is a directory", path))
	}
	return nil
}

// fileURI builds a SQLite URI filename for path with the given query.
func fileURI(path, query string) string {
	escaped := strings.NewReplacer("%", "%25", "?", "%3f", "#", "%23").Replace(path)
	return "file:" + escaped + "?" + query
}

// isFresh reports whether db has no review log table yet.
func isFresh(db *sql.DB) (bool, error) {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'revlog'`).Scan(&n)
	return n == 0, err
}

// applyPragmas sets connection pragmas, plus WAL mode for databases this
// package creates. journal_mode persists in the file.
func applyPragmas(db *sql.DB, fresh bool) error {
	pragmas := []string{
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	if fresh {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL")
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates missing tables and indexes, and stamps user_version
// only on databases this package created.
func applySchema(db *sql.DB, fresh bool) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if err := ensureIndexes(db); err != nil {
		return err
	}

	if !fresh {
		return nil
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

// ensureIndexes adds the deck index used by deck-scoped filters.
func ensureIndexes(db *sql.DB) error {
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS ix_cards_did ON cards (did)`); err != nil {
		return fmt.Errorf("create deck index: %w", err)
	}
	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}

// withTx runs fn inside a transaction, committing only if fn succeeds.
func (s *Store) withTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return opError(op+": begin tx", err)
	}
	defer tx.Rollback() // No-op if committed

	if err := fn(tx); err != nil {
		return opError(op, err)
	}

	if err := tx.Commit(); err != nil {
		return opError(op+": commit", err)
	}
	return nil
}
