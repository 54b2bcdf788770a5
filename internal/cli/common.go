package cli

import (
	"errors"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/maturing/internal/config"
	"github.com/roach88/maturing/internal/store"
)

// DBOptions holds the flags shared by commands that read a collection.
type DBOptions struct {
	*RootOptions
	Database string
}

func addDBFlag(cmd *cobra.Command, opts *DBOptions) {
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the collection database (or set database in --config)")
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}

// newLogger returns a text logger on w, at debug level in verbose mode.
func newLogger(opts *RootOptions, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadSettings reads --config if given, else the defaults, and applies the
// --db flag on top.
func loadSettings(opts *DBOptions, f *OutputFormatter) (config.Config, error) {
	cfg := config.Default()
	if opts.Config != "" {
		loaded, err := config.Load(opts.Config)
		if err != nil {
			return config.Config{}, f.Fail(ExitCommandError, ErrCodeConfig, "invalid settings file", err)
		}
		cfg = loaded
	}

	if opts.Database != "" {
		cfg.Database = opts.Database
	}
	if cfg.Database == "" {
		return config.Config{}, f.Fail(ExitCommandError, ErrCodeConfig, "no database: pass --db or set database in --config", nil)
	}
	return cfg, nil
}

// opener is one of the store constructors: store.OpenReadOnly for
// reports, store.OpenExisting for repairs, store.Open for fixtures.
type opener func(path string) (*store.Store, error)

func openStore(cfg config.Config, open opener, f *OutputFormatter, logger *slog.Logger) (*store.Store, error) {
	logger.Debug("opening database", "path", cfg.Database)
	st, err := open(cfg.Database)
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeStore, "failed to open database", err)
	}
	return st, nil
}

// storeFailure reports err, classifying store errors separately.
func storeFailure(f *OutputFormatter, message string, err error) error {
	code := ErrCodeGeneric
	if errors.Is(err, store.ErrUnavailable) {
		code = ErrCodeStore
	}
	return f.Fail(ExitCommandError, code, message, err)
}
