package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/roach88/maturing/internal/repair"
	"github.com/roach88/maturing/internal/store"
)

// RepairOptions holds flags for the repair command.
type RepairOptions struct {
	DBOptions
	DryRun bool
}

// RepairResult is the JSON payload of the repair command.
type RepairResult struct {
	*repair.Plan
	Applied bool   `json:"applied"`
	Summary string `json:"summary"`
}

// NewRepairCommand creates the repair command.
func NewRepairCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RepairOptions{DBOptions: DBOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "repair",
		Short: "Repair review log entries that drifted from the card table",
		Long: `Check every reviewed card's review log for consistency and fix it.

Each review's previous interval must equal the interval set by the card's
review before it (0 for the first review), and the last review's interval
must equal the card's current interval. Broken entries are rewritten; the
card table is taken as correct. All fixes are written in one transaction.

Examples:
  maturing repair --db collection.anki2
  maturing repair --db collection.anki2 --dry-run -v`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepair(opts, cmd)
		},
	}

	addDBFlag(cmd, &opts.DBOptions)
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "report the fixes without writing them")

	return cmd
}

func runRepair(opts *RepairOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	f := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	cfg, err := loadSettings(&opts.DBOptions, f)
	if err != nil {
		return err
	}

	st, err := openStore(cfg, store.OpenExisting, f, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	eng := repair.New(st, logger)
	plan, err := eng.Plan(ctx)
	if err != nil {
		return storeFailure(f, "failed to scan review log", err)
	}

	for _, c := range plan.Prior {
		f.VerboseLog("review %d: previous interval -> %d", c.EventID, c.Value)
	}
	for _, c := range plan.Result {
		f.VerboseLog("review %d: interval -> %d", c.EventID, c.Value)
	}

	if !opts.DryRun {
		if err := eng.Apply(ctx, plan); err != nil {
			return storeFailure(f, "failed to write repairs", err)
		}
	}

	if opts.Format == "json" {
		return f.Success(RepairResult{Plan: plan, Applied: !opts.DryRun && !plan.Empty(), Summary: plan.Summary()})
	}
	if opts.DryRun {
		return f.Success(plan.Summary() + "\n(dry run: nothing written)")
	}
	return f.Success(plan.Summary())
}
