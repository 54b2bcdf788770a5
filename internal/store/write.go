package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/maturing/internal/revlog"
)

// WriteItems inserts item snapshots and review events in one transaction.
// An item or event ID that already exists fails the whole write, so a
// fixture never overwrites rows already in the database. Used to load
// fixtures; the host application owns these tables in production.
func (s *Store) WriteItems(ctx context.Context, items []revlog.ItemSnapshot, events []revlog.ReviewEvent) error {
	return s.withTx(ctx, "write items", func(tx *sql.Tx) error {
		cardStmt, err := tx.PrepareContext(ctx, `
			INSERT INTO cards (id, did, ivl) VALUES (?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("prepare cards: %w", err)
		}
		defer cardStmt.Close()

		for _, it := range items {
			if _, err := cardStmt.ExecContext(ctx, it.ID, it.DeckID, it.CurrentInterval); err != nil {
				return fmt.Errorf("insert card %d: %w", it.ID, err)
			}
		}

		revStmt, err := tx.PrepareContext(ctx, `
			INSERT INTO revlog (id, cid, ivl, lastIvl) VALUES (?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("prepare revlog: %w", err)
		}
		defer revStmt.Close()

		for _, e := range events {
			if _, err := revStmt.ExecContext(ctx, e.ID, e.ItemID, e.ResultInterval, e.PriorInterval); err != nil {
				return fmt.Errorf("insert review %d: %w", e.ID, err)
			}
		}
		return nil
	})
}

// BulkUpdatePriorInterval sets revlog.lastIvl for each correction in a
// single transaction.
func (s *Store) BulkUpdatePriorInterval(ctx context.Context, corrections []revlog.Correction) error {
	return s.withTx(ctx, "update prior intervals", func(tx *sql.Tx) error {
		return execCorrections(ctx, tx, updateLastIvl, corrections)
	})
}

// BulkUpdateResultInterval sets revlog.ivl for each correction in a single
// transaction.
func (s *Store) BulkUpdateResultInterval(ctx context.Context, corrections []revlog.Correction) error {
	return s.withTx(ctx, "update result intervals", func(tx *sql.Tx) error {
		return execCorrections(ctx, tx, updateIvl, corrections)
	})
}

// ApplyCorrections applies prior-interval and result-interval corrections
// together in one transaction, so an interrupted repair leaves the log
// untouched rather than half-repaired.
func (s *Store) ApplyCorrections(ctx context.Context, prior, result []revlog.Correction) error {
	return s.withTx(ctx, "apply corrections", func(tx *sql.Tx) error {
		if err := execCorrections(ctx, tx, updateLastIvl, prior); err != nil {
			return err
		}
		return execCorrections(ctx, tx, updateIvl, result)
	})
}

const (
	updateLastIvl = `UPDATE revlog SET lastIvl = ? WHERE id = ?`
	updateIvl     = `UPDATE revlog SET ivl = ? WHERE id = ?`
)

func execCorrections(ctx context.Context, tx *sql.Tx, query string, corrections []revlog.Correction) error {
	if len(corrections) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare update: %w", err)
	}
	defer stmt.Close()

	for _, c := range corrections {
		if _, err := stmt.ExecContext(ctx, c.Value, c.EventID); err != nil {
			return fmt.Errorf("update event %d: %w", c.EventID, err)
		}
	}
	return nil
}
