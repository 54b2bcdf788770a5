// Package fixture loads review histories described in YAML and turns them
// into review events and item snapshots for a store.
//
// A fixture lists items with their reviews, oldest first:
//
//	items:
//	  - id: 1
//	    deck: 2
//	    reviews:
//	      - {days_ago: 60, result: 4}
//	      - {days_ago: 30, result: 25}
//	      - {days_ago: 2, prior: 9, result: 60}   # broken chain
//	    interval: 90                              # snapshot drift
//
// A review without prior chains to the previous review's result (0 for the
// first). An item without interval gets the last review's result as its
// snapshot, so a fixture is consistent unless it says otherwise.
package fixture

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/maturing/internal/revlog"
)

// Fixture is a set of items and their review histories.
type Fixture struct {
	Items []Item `yaml:"items"`
}

// Item is one item of a fixture.
type Item struct {
	ID   int64 `yaml:"id"`
	Deck int64 `yaml:"deck,omitempty"`

	// Interval overrides the snapshot interval.
	Interval *int64 `yaml:"interval,omitempty"`

	Reviews []Review `yaml:"reviews"`
}

// Review is one review of an item.
type Review struct {
	// DaysAgo places the review relative to the time the fixture is built.
	DaysAgo float64 `yaml:"days_ago"`

	// Prior overrides the chained prior interval.
	Prior *int64 `yaml:"prior,omitempty"`

	Result int64 `yaml:"result"`
}

// Load reads and parses a fixture YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture file: %w", err)
	}
	return Parse(data)
}

// Parse parses fixture YAML.
func Parse(data []byte) (*Fixture, error) {
	var f Fixture
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validate(&f); err != nil {
		return nil, fmt.Errorf("invalid fixture: %w", err)
	}
	return &f, nil
}

func validate(f *Fixture) error {
	if len(f.Items) == 0 {
		return fmt.Errorf("items list is required and must be non-empty")
	}

	seen := make(map[int64]bool)
	for i, it := range f.Items {
		if it.ID <= 0 {
			return fmt.Errorf("items[%d]: id must be positive", i)
		}
		if seen[it.ID] {
			return fmt.Errorf("items[%d]: duplicate id %d", i, it.ID)
		}
		seen[it.ID] = true

		for j, r := range it.Reviews {
			if r.DaysAgo < 0 {
				return fmt.Errorf("items[%d].reviews[%d]: days_ago must not be negative", i, j)
			}
			if j > 0 && r.DaysAgo > it.Reviews[j-1].DaysAgo {
				return fmt.Errorf("items[%d].reviews[%d]: reviews must be listed oldest first", i, j)
			}
		}
	}
	return nil
}

// Build converts the fixture into store rows with review times relative to
// now. Event IDs are millisecond timestamps; reviews that land on the same
// millisecond are nudged apart so IDs stay unique and ordered.
func (f *Fixture) Build(now time.Time) ([]revlog.ItemSnapshot, []revlog.ReviewEvent) {
	items := make([]revlog.ItemSnapshot, 0, len(f.Items))
	var events []revlog.ReviewEvent
	used := make(map[int64]bool)

	for _, it := range f.Items {
		deck := it.Deck
		if deck == 0 {
			deck = 1
		}

		var prior, last, prevID int64
		for _, r := range it.Reviews {
			id := now.Add(-time.Duration(r.DaysAgo * float64(24*time.Hour))).UnixMilli()
			if id <= prevID {
				id = prevID + 1
			}
			for used[id] {
				id++
			}
			used[id] = true
			prevID = id

			if r.Prior != nil {
				prior = *r.Prior
			}
			events = append(events, revlog.ReviewEvent{
				ID:             id,
				ItemID:         it.ID,
				PriorInterval:  prior,
				ResultInterval: r.Result,
			})
			prior = r.Result
			last = r.Result
		}

		snapshot := last
		if it.Interval != nil {
			snapshot = *it.Interval
		}
		items = append(items, revlog.ItemSnapshot{ID: it.ID, DeckID: deck, CurrentInterval: snapshot})
	}
	return items, events
}
