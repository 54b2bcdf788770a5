package revlog

import "fmt"

// ReviewEvent is one row of the review log.
type ReviewEvent struct {
	ID             int64 `yaml:"id" json:"id"`
	ItemID         int64 `yaml:"item" json:"item_id"`
	PriorInterval  int64 `yaml:"prior" json:"prior_interval"`
	ResultInterval int64 `yaml:"result" json:"result_interval"`
}

// ItemSnapshot is the current state of an item as maintained by the host's
// scheduler. CurrentInterval should equal the ResultInterval of the item's
// latest review.
type ItemSnapshot struct {
	ID              int64 `yaml:"id" json:"id"`
	DeckID          int64 `yaml:"deck" json:"deck_id"`
	CurrentInterval int64 `yaml:"interval" json:"current_interval"`
}

// ItemEvent is a review event joined to its item's snapshot interval.
type ItemEvent struct {
	EventID          int64
	PriorInterval    int64
	ResultInterval   int64
	SnapshotInterval int64
}

// Correction sets one field of the event EventID to Value.
type Correction struct {
	Value   int64 `json:"value"`
	EventID int64 `json:"event_id"`
}

// ChunkCounts is the number of threshold crossings that happened in one chunk.
// Fail counts are positive here; the aggregator negates them.
type ChunkCounts struct {
	ChunkID    int64
	MatureGood int64
	MatureFail int64
	KnownGood  int64
	KnownFail  int64
}

// Filter is an opaque scope predicate supplied by the host, as a SQL
// fragment over the revlog and cards tables with positional arguments.
// The zero Filter matches everything.
type Filter struct {
	Clause string
	Args   []any
}

// IsZero reports whether f restricts nothing.
func (f Filter) IsZero() bool {
	return f.Clause == ""
}

// ChunkQuery selects and buckets review events for the progress series.
type ChunkQuery struct {
	// Cutoff is the "now" of the report, in seconds since the epoch.
	Cutoff int64

	// ChunkDays is the width of one chunk in days.
	ChunkDays int64

	// Window limits the query to the last Window chunks. 0 means full history.
	Window int64

	// Scope restricts the events considered.
	Scope Filter
}

// Validate reports a query that cannot be bucketed.
func (q ChunkQuery) Validate() error {
	if q.ChunkDays < 1 {
		return fmt.Errorf("chunk size must be at least one day, got %d", q.ChunkDays)
	}
	if q.Window < 0 {
		return fmt.Errorf("window must not be negative, got %d", q.Window)
	}
	return nil
}

// ChunkID returns the chunk an event with the given ID falls into.
// Both divisions truncate toward zero, as the SQL grouping does, so
// chunk 0 spans the present from both sides of the cutoff.
// q must pass Validate.
func (q ChunkQuery) ChunkID(eventID int64) int64 {
	days := (eventID/1000 - q.Cutoff) / 86400
	return days / q.ChunkDays
}

// WindowStart returns the exclusive lower bound on event IDs for a windowed
// query, or 0 when the query covers the full history.
func (q ChunkQuery) WindowStart() int64 {
	if q.Window <= 0 {
		return 0
	}
	return (q.Cutoff - q.Window*q.ChunkDays*86400) * 1000
}
