package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/maturing/internal/consistency"
	"github.com/roach88/maturing/internal/progress"
	"github.com/roach88/maturing/internal/store"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	DBOptions
	Deck int64
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{DBOptions: DBOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Compare review log totals with the card table",
		Long: `Compare the number of mature and known cards reconstructed from the
review log with the number of such cards in the card table.

Exit codes:
  0 - Consistent (or no review data)
  1 - Inconsistent: run "maturing repair"
  2 - Command error (database not found, etc.)`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, cmd)
		},
	}

	addDBFlag(cmd, &opts.DBOptions)
	cmd.Flags().Int64Var(&opts.Deck, "deck", 0, "restrict to one deck id")

	return cmd
}

func runCheck(opts *CheckOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	f := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	cfg, err := loadSettings(&opts.DBOptions, f)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("deck") {
		cfg.Deck = opts.Deck
	}
	// The check compares net totals, which only equal the card counts over
	// the full history.
	cfg.Window = 0
	cfg.CheckConsistency = true

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

	check := r.Check
	if opts.Format == "json" {
		if err := f.Success(check); err != nil {
			return err
		}
	} else if err := f.Success(formatCheck(check)); err != nil {
		return err
	}

	if !check.Consistent {
		return NewExitError(ExitFailure, "review log inconsistent with cards")
	}
	return nil
}

func formatCheck(r *consistency.Report) string {
	var b strings.Builder
	for _, c := range []consistency.Comparison{r.Mature, r.Known} {
		fmt.Fprintf(&b, "%s: review log %d, cards %d\n", c.Threshold.Name(), c.Log, c.Snapshot)
	}
	if r.Consistent {
		b.WriteString("Review log is consistent.")
	} else {
		fmt.Fprintf(&b, "Review log inconsistencies found: please run %q.", r.RepairAction)
	}
	return b.String()
}
