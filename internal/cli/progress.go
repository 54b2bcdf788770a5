package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/maturing/internal/config"
	"github.com/roach88/maturing/internal/consistency"
	"github.com/roach88/maturing/internal/progress"
	"github.com/roach88/maturing/internal/report"
	"github.com/roach88/maturing/internal/store"
)

// ProgressOptions holds flags for the progress command.
type ProgressOptions struct {
	DBOptions
	Deck      int64
	ChunkDays int64
	Window    int64
	NoCheck   bool
}

// EmptyResult is the JSON payload when no reviews match.
type EmptyResult struct {
	Empty bool `json:"empty"`
}

// NewProgressCommand creates the progress command.
func NewProgressCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProgressOptions{DBOptions: DBOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Show the maturing progress of the collection",
		Long: `Rebuild the maturing progress series from the review log.

For every chunk the report lists the cards that matured (crossed 21 days)
and failed (dropped below 21 days), and the running totals of mature and
known (365 days) cards. Afterwards the totals are compared with the card
table; a mismatch means the review log should be repaired.

Examples:
  maturing progress --db collection.anki2
  maturing progress --db collection.anki2 --chunk 7 --window 52
  maturing progress --db collection.anki2 --deck 3 --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProgress(opts, cmd)
		},
	}

	addDBFlag(cmd, &opts.DBOptions)
	cmd.Flags().Int64Var(&opts.Deck, "deck", 0, "restrict to one deck id")
	cmd.Flags().Int64Var(&opts.ChunkDays, "chunk", 0, "chunk width in days (default from config, 30)")
	cmd.Flags().Int64Var(&opts.Window, "window", 0, "number of chunks to show, 0 for full history")
	cmd.Flags().BoolVar(&opts.NoCheck, "no-check", false, "skip the consistency check")

	return cmd
}

// applyScopeFlags lays the command's report flags over the loaded settings.
func applyScopeFlags(cfg *config.Config, cmd *cobra.Command, deck, chunk, window int64) error {
	if cmd.Flags().Changed("deck") {
		cfg.Deck = deck
	}
	if cmd.Flags().Changed("chunk") {
		if chunk < 1 {
			return fmt.Errorf("--chunk must be at least 1, got %d", chunk)
		}
		cfg.ChunkDays = chunk
	}
	if cmd.Flags().Changed("window") {
		if window < 0 {
			return fmt.Errorf("--window must not be negative, got %d", window)
		}
		cfg.Window = window
	}
	return nil
}

func runProgress(opts *ProgressOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	f := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	cfg, err := loadSettings(&opts.DBOptions, f)
	if err != nil {
		return err
	}
	if err := applyScopeFlags(&cfg, cmd, opts.Deck, opts.ChunkDays, opts.Window); err != nil {
		return f.Fail(ExitCommandError, ErrCodeConfig, "invalid flags", err)
	}
	if opts.NoCheck {
		cfg.CheckConsistency = false
	}

	st, err := openStore(cfg, store.OpenReadOnly, f, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	r, err := buildReport(ctx, st, cfg, opts.now(), logger)
	if errors.Is(err, progress.ErrEmptyDataset) {
		if opts.Format == "json" {
			return f.Success(EmptyResult{Empty: true})
		}
		return f.Success("No review data.")
	}
	if err != nil {
		return progressFailure(f, err)
	}

	if opts.Format == "json" {
		return f.Success(r)
	}
	return report.WriteText(cmd.OutOrStdout(), *r, report.Options{Verbose: opts.Verbose})
}

// buildReport aggregates the series and, if enabled, checks it.
func buildReport(ctx context.Context, st *store.Store, cfg config.Config, now time.Time, logger *slog.Logger) (*report.Report, error) {
	q := cfg.Query(now)
	logger.Debug("building progress", "cutoff", q.Cutoff, "chunk_days", q.ChunkDays, "window", q.Window, "deck", cfg.Deck)

	p, err := progress.Load(ctx, st, q, logger)
	if err != nil {
		return nil, err
	}

	r := &report.Report{
		ChunkDays: q.ChunkDays,
		Window:    q.Window,
		Cutoff:    q.Cutoff,
		Progress:  p,
	}
	if !cfg.CheckConsistency {
		return r, nil
	}

	// Windowed totals start at zero, so the check needs the full history.
	full := p
	if q.Window > 0 {
		fq := q
		fq.Window = 0
		if full, err = progress.Load(ctx, st, fq, logger); err != nil {
			return nil, err
		}
	}

	check, err := consistency.Check(ctx, st, full, q.Scope, logger)
	if err != nil {
		return nil, err
	}
	r.Check = &check
	return r, nil
}

// progressFailure reports aggregation errors with their exit codes.
func progressFailure(f *OutputFormatter, err error) error {
	var malformed *progress.MalformedInputError
	if errors.As(err, &malformed) {
		return f.Fail(ExitCommandError, ErrCodeMalformed, "review log has reviews dated after the cutoff", err)
	}
	return storeFailure(f, "failed to build progress", err)
}
