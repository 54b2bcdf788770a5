package repair

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/roach88/maturing/internal/revlog"
)

// EventSource reads the review chains of reviewed items.
type EventSource interface {
	DistinctItemIDsWithEvents(ctx context.Context) ([]int64, error)
	EventsForItem(ctx context.Context, itemID int64) ([]revlog.ItemEvent, error)
}

// CorrectionWriter applies prior and result corrections as one bulk write.
type CorrectionWriter interface {
	ApplyCorrections(ctx context.Context, prior, result []revlog.Correction) error
}

// Store is everything the engine needs from the event store.
type Store interface {
	EventSource
	CorrectionWriter
}

// Plan is the set of corrections found by one scan of the log.
type Plan struct {
	// RunID correlates the log lines of one plan and its application.
	RunID string `json:"run_id"`

	// Items is the number of reviewed items scanned.
	Items int `json:"items"`

	// Prior sets revlog prior intervals (lastIvl).
	Prior []revlog.Correction `json:"prior"`

	// Result sets revlog result intervals (ivl).
	Result []revlog.Correction `json:"result"`
}

// Empty reports whether the plan has nothing to apply.
func (p *Plan) Empty() bool {
	return len(p.Prior) == 0 && len(p.Result) == 0
}

// Summary is the one-line report shown to the user.
func (p *Plan) Summary() string {
	return fmt.Sprintf("PriorInterval updates: %d; ResultInterval updates: %d", len(p.Prior), len(p.Result))
}

// Engine plans and applies review log repairs against a store.
type Engine struct {
	store  Store
	logger *slog.Logger
}

// New creates an Engine over st.
func New(st Store, logger *slog.Logger) *Engine {
	return &Engine{store: st, logger: logger}
}

// Plan scans every reviewed item and collects the corrections it needs.
// Nothing is written.
func (e *Engine) Plan(ctx context.Context) (*Plan, error) {
	ids, err := e.store.DistinctItemIDsWithEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("plan repair: %w", err)
	}

	plan := &Plan{
		RunID:  uuid.NewString(),
		Items:  len(ids),
		Prior:  []revlog.Correction{},
		Result: []revlog.Correction{},
	}

	for _, id := range ids {
		events, err := e.store.EventsForItem(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("plan repair: %w", err)
		}
		if len(events) == 0 {
			// Only items joined to at least one event are listed.
			return nil, fmt.Errorf("plan repair: item %d listed without events", id)
		}

		prior, result := Collect(events)
		if len(prior) > 0 || len(result) > 0 {
			e.logger.Debug("item needs repair",
				"run_id", plan.RunID,
				"item", id,
				"events", len(events),
				"prior", len(prior),
				"result", len(result),
			)
		}
		plan.Prior = append(plan.Prior, prior...)
		plan.Result = append(plan.Result, result...)
	}

	e.logger.Info("repair planned",
		"run_id", plan.RunID,
		"items", plan.Items,
		"prior", len(plan.Prior),
		"result", len(plan.Result),
	)
	return plan, nil
}

// Apply writes the corrections of plan in a single bulk operation.
// An empty plan is a no-op.
func (e *Engine) Apply(ctx context.Context, plan *Plan) error {
	if plan.Empty() {
		e.logger.Debug("repair plan empty, nothing to apply", "run_id", plan.RunID)
		return nil
	}

	if err := e.store.ApplyCorrections(ctx, plan.Prior, plan.Result); err != nil {
		return fmt.Errorf("apply repair: %w", err)
	}

	e.logger.Info("repair applied",
		"run_id", plan.RunID,
		"prior", len(plan.Prior),
		"result", len(plan.Result),
	)
	return nil
}

// Run plans and applies a repair, returning the applied plan.
func (e *Engine) Run(ctx context.Context) (*Plan, error) {
	plan, err := e.Plan(ctx)
	if err != nil {
		return nil, err
	}
	if err := e.Apply(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}
