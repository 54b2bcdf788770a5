// Package report renders a maturing progress series and its consistency
// check as text or as a JSON-ready value.
package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/roach88/maturing/internal/consistency"
	"github.com/roach88/maturing/internal/progress"
)

// Report is everything shown for one progress invocation.
type Report struct {
	ChunkDays int64 `json:"chunk_days"`
	Window    int64 `json:"window"`
	Cutoff    int64 `json:"cutoff"`

	Progress *progress.Progress `json:"progress"`

	// Check is nil when the consistency check is disabled.
	Check *consistency.Report `json:"check,omitempty"`
}

// Options control text rendering.
type Options struct {
	// Lang selects number formatting. Defaults to English.
	Lang language.Tag

	// Verbose adds a line when the consistency check passed.
	Verbose bool
}

// WriteText renders r as a table of chunks followed by the totals and the
// consistency verdict.
func WriteText(w io.Writer, r Report, opts Options) error {
	lang := opts.Lang
	if lang == language.Und {
		lang = language.English
	}
	p := message.NewPrinter(lang)

	var err error
	printf := func(format string, args ...any) {
		if err == nil {
			_, err = p.Fprintf(w, format, args...)
		}
	}

	printf("Maturing Progress\n")
	printf("Maturing of the deck over time (%d-day chunks, %s).\n\n", r.ChunkDays, span(r.Window))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	m, k := r.Progress.Mature, r.Progress.Known
	if _, werr := fmt.Fprintln(tw, "chunk\tmatured\tfailed\tmatured (cum.)\tknown (cum.)\t"); werr != nil {
		return werr
	}
	for i := range m.Accum {
		if _, werr := p.Fprintf(tw, "%d\t%d\t%d\t%d\t%d\t\n",
			m.Accum[i].ChunkID, m.Good[i].Value, m.Fail[i].Value, m.Accum[i].Value, k.Accum[i].Value); werr != nil {
			return werr
		}
	}
	if ferr := tw.Flush(); ferr != nil {
		return ferr
	}

	printf("\nMature: %d - %d = %d\n", m.TotalGood, m.TotalFail, m.Final())
	printf("Known: %d - %d = %d\n", k.TotalGood, k.TotalFail, k.Final())
	printf("Cards with an interval of over a year are considered known cards (a subset of matured cards).\n")

	switch {
	case r.Check == nil:
		printf("If the graph looks wrong the review log may be inconsistent: try %q.\n", consistency.RepairAction)
	case !r.Check.Consistent:
		printf("Review log inconsistencies found (mature %d vs %d cards, known %d vs %d cards): please run %q.\n",
			r.Check.Mature.Log, r.Check.Mature.Snapshot,
			r.Check.Known.Log, r.Check.Known.Snapshot,
			r.Check.RepairAction)
	case opts.Verbose:
		printf("Review log inconsistency check passed.\n")
	}
	return err
}

func span(window int64) string {
	if window <= 0 {
		return "full history"
	}
	return fmt.Sprintf("last %d chunks", window)
}
