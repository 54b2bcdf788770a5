package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/maturing/internal/revlog"
	"github.com/roach88/maturing/internal/threshold"
)

// chunkExpr buckets revlog.id into chunks relative to the cutoff. SQLite's
// CAST and integer division both truncate toward zero.
const chunkExpr = `(CAST((revlog.id/1000 - ?) / 86400.0 AS INTEGER)) / ?`

// ChunkCrossings groups the review log into chunks and counts, per chunk,
// the reviews that crossed each threshold in each direction.
// Rows are ordered by chunk ascending. Returns an empty slice if no events
// match the query.
func (s *Store) ChunkCrossings(ctx context.Context, q revlog.ChunkQuery) ([]revlog.ChunkCounts, error) {
	if err := q.Validate(); err != nil {
		return nil, opError("chunk crossings", err)
	}

	var conds []string
	args := []any{q.Cutoff, q.ChunkDays}
	if start := q.WindowStart(); start != 0 {
		conds = append(conds, "revlog.id > ?")
		args = append(args, start)
	}
	conds, args = appendScope(conds, args, q.Scope)

	query := fmt.Sprintf(`
		SELECT %s AS chunk,
			SUM(%s), SUM(%s),
			SUM(%s), SUM(%s)
		FROM revlog JOIN cards ON cards.id = revlog.cid
		%s
		GROUP BY chunk
		ORDER BY chunk ASC
	`,
		chunkExpr,
		threshold.Mature.UpSQL("revlog.lastIvl", "revlog.ivl"),
		threshold.Mature.DownSQL("revlog.lastIvl", "revlog.ivl"),
		threshold.Known.UpSQL("revlog.lastIvl", "revlog.ivl"),
		threshold.Known.DownSQL("revlog.lastIvl", "revlog.ivl"),
		where(conds),
	)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, opError("query chunk crossings", err)
	}
	defer rows.Close()

	counts := []revlog.ChunkCounts{}
	for rows.Next() {
		var c revlog.ChunkCounts
		if err := rows.Scan(&c.ChunkID, &c.MatureGood, &c.MatureFail, &c.KnownGood, &c.KnownFail); err != nil {
			return nil, opError("scan chunk crossings", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, opError("iterate chunk crossings", err)
	}

	return counts, nil
}

// DistinctItemIDsWithEvents returns the IDs of all items that have at least
// one review event, in ascending order.
func (s *Store) DistinctItemIDsWithEvents(ctx context.Context) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT cards.id
		FROM cards JOIN revlog ON cards.id = revlog.cid
		ORDER BY cards.id ASC
	`)
	if err != nil {
		return nil, opError("query item ids", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, opError("scan item id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, opError("iterate item ids", err)
	}

	return ids, nil
}

// EventsForItem returns the review events of one item ordered by event ID,
// each joined to the item's current snapshot interval.
func (s *Store) EventsForItem(ctx context.Context, itemID int64) ([]revlog.ItemEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT revlog.id, revlog.lastIvl, revlog.ivl, cards.ivl
		FROM revlog JOIN cards ON cards.id = revlog.cid
		WHERE revlog.cid = ?
		ORDER BY revlog.id ASC
	`, itemID)
	if err != nil {
		return nil, opError(fmt.Sprintf("query events for item %d", itemID), err)
	}
	defer rows.Close()

	events := []revlog.ItemEvent{}
	for rows.Next() {
		var e revlog.ItemEvent
		if err := rows.Scan(&e.EventID, &e.PriorInterval, &e.ResultInterval, &e.SnapshotInterval); err != nil {
			return nil, opError("scan item event", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, opError("iterate item events", err)
	}

	return events, nil
}

// CountItemsAtOrAbove counts the distinct reviewed items whose snapshot
// interval is at least t, restricted by scope.
func (s *Store) CountItemsAtOrAbove(ctx context.Context, t threshold.Threshold, scope revlog.Filter) (int64, error) {
	conds, args := appendScope(nil, nil, scope)
	conds = append(conds, "cards.ivl >= ?")
	args = append(args, int64(t))

	query := fmt.Sprintf(`
		SELECT COUNT(DISTINCT cards.id)
		FROM revlog JOIN cards ON cards.id = revlog.cid
		%s
	`, where(conds))

	var count int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, opError(fmt.Sprintf("count items with ivl >= %d", int64(t)), err)
	}
	return count, nil
}

// ReadEvent retrieves a single review event by ID.
// Returns an error wrapping sql.ErrNoRows if not found.
func (s *Store) ReadEvent(ctx context.Context, id int64) (revlog.ReviewEvent, error) {
	var e revlog.ReviewEvent
	err := s.db.QueryRowContext(ctx, `
		SELECT id, cid, lastIvl, ivl FROM revlog WHERE id = ?
	`, id).Scan(&e.ID, &e.ItemID, &e.PriorInterval, &e.ResultInterval)
	if err != nil {
		return revlog.ReviewEvent{}, opError(fmt.Sprintf("read event %d", id), err)
	}
	return e, nil
}

func appendScope(conds []string, args []any, scope revlog.Filter) ([]string, []any) {
	if scope.IsZero() {
		return conds, args
	}
	return append(conds, "("+scope.Clause+")"), append(args, scope.Args...)
}

func where(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(conds, " AND ")
}
