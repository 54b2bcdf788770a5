package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/maturing/internal/fixture"
	"github.com/roach88/maturing/internal/store"
)

// SeedOptions holds flags for the seed command.
type SeedOptions struct {
	DBOptions
}

// SeedResult is the JSON payload of the seed command.
type SeedResult struct {
	Items   int `json:"items"`
	Reviews int `json:"reviews"`
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SeedOptions{DBOptions: DBOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "seed <fixture.yaml>",
		Short: "Load a review history fixture into a database",
		Long: `Load cards and their reviews from a YAML fixture into a database,
creating it if needed. Review times are relative to now. Useful for trying
out the progress and repair commands.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(opts, args[0], cmd)
		},
	}

	addDBFlag(cmd, &opts.DBOptions)

	return cmd
}

func runSeed(opts *SeedOptions, path string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	fx, err := fixture.Load(path)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeFixture, "invalid fixture", err)
	}

	cfg, err := loadSettings(&opts.DBOptions, f)
	if err != nil {
		return err
	}

	st, err := openStore(cfg, store.Open, f, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	items, events := fx.Build(opts.now())
	if err := st.WriteItems(context.Background(), items, events); err != nil {
		return storeFailure(f, "failed to write fixture", err)
	}
	logger.Info("fixture loaded", "path", path, "items", len(items), "reviews", len(events))

	if opts.Format == "json" {
		return f.Success(SeedResult{Items: len(items), Reviews: len(events)})
	}
	return f.Success(fmt.Sprintf("Loaded %d cards with %d reviews into %s", len(items), len(events), cfg.Database))
}
