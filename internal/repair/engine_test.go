package repair

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/rand"
	"slices"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/maturing/internal/revlog"
)

// memStore is an in-memory review log for exercising the engine.
type memStore struct {
	events    map[int64][]revlog.ReviewEvent // by item, ordered by ID
	snapshots map[int64]int64
	applied   int
	failApply error
}

func newMemStore() *memStore {
	return &memStore{
		events:    make(map[int64][]revlog.ReviewEvent),
		snapshots: make(map[int64]int64),
	}
}

func (m *memStore) add(e revlog.ReviewEvent) {
	m.events[e.ItemID] = append(m.events[e.ItemID], e)
}

func (m *memStore) DistinctItemIDsWithEvents(context.Context) ([]int64, error) {
	var ids []int64
	for id, evs := range m.events {
		if _, ok := m.snapshots[id]; ok && len(evs) > 0 {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

func (m *memStore) EventsForItem(_ context.Context, itemID int64) ([]revlog.ItemEvent, error) {
	var out []revlog.ItemEvent
	for _, e := range m.events[itemID] {
		out = append(out, revlog.ItemEvent{
			EventID:          e.ID,
			PriorInterval:    e.PriorInterval,
			ResultInterval:   e.ResultInterval,
			SnapshotInterval: m.snapshots[itemID],
		})
	}
	return out, nil
}

func (m *memStore) ApplyCorrections(_ context.Context, prior, result []revlog.Correction) error {
	if m.failApply != nil {
		return m.failApply
	}
	m.applied++
	set := func(c revlog.Correction, field func(*revlog.ReviewEvent) *int64) {
		for _, evs := range m.events {
			for i := range evs {
				if evs[i].ID == c.EventID {
					*field(&evs[i]) = c.Value
				}
			}
		}
	}
	for _, c := range prior {
		set(c, func(e *revlog.ReviewEvent) *int64 { return &e.PriorInterval })
	}
	for _, c := range result {
		set(c, func(e *revlog.ReviewEvent) *int64 { return &e.ResultInterval })
	}
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEngine_Plan(t *testing.T) {
	st := newMemStore()
	st.snapshots[100] = 30
	st.add(revlog.ReviewEvent{ID: 1, ItemID: 100, PriorInterval: 0, ResultInterval: 10})
	st.add(revlog.ReviewEvent{ID: 2, ItemID: 100, PriorInterval: 5, ResultInterval: 25})
	st.snapshots[200] = 3
	st.add(revlog.ReviewEvent{ID: 3, ItemID: 200, PriorInterval: 0, ResultInterval: 3})

	plan, err := New(st, discardLogger()).Plan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, plan.Items)
	assert.Equal(t, []revlog.Correction{{Value: 10, EventID: 2}}, plan.Prior)
	assert.Equal(t, []revlog.Correction{{Value: 30, EventID: 2}}, plan.Result)
	assert.Equal(t, "PriorInterval updates: 1; ResultInterval updates: 1", plan.Summary())
	assert.False(t, plan.Empty())

	_, err = uuid.Parse(plan.RunID)
	assert.NoError(t, err)

	// Planning does not write.
	assert.Equal(t, 0, st.applied)
	assert.Equal(t, int64(5), st.events[100][1].PriorInterval)
}

func TestEngine_RunThenClean(t *testing.T) {
	st := newMemStore()
	st.snapshots[1] = 30
	st.add(revlog.ReviewEvent{ID: 1, ItemID: 1, PriorInterval: 0, ResultInterval: 10})
	st.add(revlog.ReviewEvent{ID: 2, ItemID: 1, PriorInterval: 5, ResultInterval: 25})

	eng := New(st, discardLogger())
	plan, err := eng.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "PriorInterval updates: 1; ResultInterval updates: 1", plan.Summary())
	assert.Equal(t, 1, st.applied)

	again, err := eng.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, again.Empty())
	assert.Equal(t, "PriorInterval updates: 0; ResultInterval updates: 0", again.Summary())
	assert.Equal(t, 1, st.applied, "empty plan must not write")
}

func TestEngine_IdempotentOnRandomChains(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for iter := 0; iter < 50; iter++ {
		st := newMemStore()
		nextID := int64(1)
		for item := int64(1); item <= 20; item++ {
			var ivl int64
			n := 1 + rng.Intn(8)
			for k := 0; k < n; k++ {
				prior := ivl
				if rng.Intn(4) == 0 {
					prior = rng.Int63n(400) // injected chain break
				}
				ivl = rng.Int63n(500) - 10
				st.add(revlog.ReviewEvent{ID: nextID, ItemID: item, PriorInterval: prior, ResultInterval: ivl})
				nextID++
			}
			st.snapshots[item] = ivl
			if rng.Intn(5) == 0 {
				st.snapshots[item] = rng.Int63n(500) // snapshot drift
			}
		}

		eng := New(st, discardLogger())
		_, err := eng.Run(context.Background())
		require.NoError(t, err)

		again, err := eng.Plan(context.Background())
		require.NoError(t, err)
		assert.True(t, again.Empty(), "iteration %d: %s", iter, again.Summary())
	}
}

type failingSource struct {
	memStore
	listErr   error
	eventsErr error
}

func (f *failingSource) DistinctItemIDsWithEvents(context.Context) ([]int64, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return []int64{9}, nil
}

func (f *failingSource) EventsForItem(context.Context, int64) ([]revlog.ItemEvent, error) {
	if f.eventsErr != nil {
		return nil, f.eventsErr
	}
	return nil, nil
}

func TestEngine_PlanErrors(t *testing.T) {
	boom := errors.New("database is locked")

	_, err := New(&failingSource{listErr: boom}, discardLogger()).Plan(context.Background())
	assert.ErrorIs(t, err, boom)

	_, err = New(&failingSource{eventsErr: boom}, discardLogger()).Plan(context.Background())
	assert.ErrorIs(t, err, boom)

	_, err = New(&failingSource{}, discardLogger()).Plan(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "item 9 listed without events")
}

func TestEngine_ApplyError(t *testing.T) {
	boom := errors.New("disk full")
	st := newMemStore()
	st.failApply = boom
	st.snapshots[1] = 3
	st.add(revlog.ReviewEvent{ID: 1, ItemID: 1, PriorInterval: 2, ResultInterval: 3})

	_, err := New(st, discardLogger()).Run(context.Background())
	assert.ErrorIs(t, err, boom)
}
