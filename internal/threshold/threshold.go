package threshold

import "fmt"

// Threshold is an interval boundary in days.
type Threshold int64

const (
	// Mature is the interval at which an item counts as matured.
	Mature Threshold = 21

	// Known is the interval at which an item counts as known.
	Known Threshold = 365
)

// All lists the tracked thresholds in report order.
var All = []Threshold{Mature, Known}

// Name returns the report label for t.
func (t Threshold) Name() string {
	switch t {
	case Mature:
		return "mature"
	case Known:
		return "known"
	default:
		return fmt.Sprintf("ivl>=%d", int64(t))
	}
}

// Crossing is the direction in which a review crossed a threshold.
type Crossing int

const (
	None Crossing = iota
	Up
	Down
)

func (c Crossing) String() string {
	switch c {
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return "none"
	}
}

// Classify reports how a review from prior to result crossed t.
func Classify(prior, result int64, t Threshold) Crossing {
	limit := int64(t)
	switch {
	case result >= limit && prior < limit:
		return Up
	case result < limit && prior >= limit:
		return Down
	default:
		return None
	}
}

// UpSQL renders the Up predicate of Classify as a SQL expression over the
// given prior/result columns that evaluates to 1 or 0. It is summed by the
// store's grouped query, so both paths share one definition of a crossing.
func (t Threshold) UpSQL(priorCol, resultCol string) string {
	return fmt.Sprintf("CASE WHEN %s >= %d AND %s < %d THEN 1 ELSE 0 END",
		resultCol, int64(t), priorCol, int64(t))
}

// DownSQL is UpSQL for the Down direction.
func (t Threshold) DownSQL(priorCol, resultCol string) string {
	return fmt.Sprintf("CASE WHEN %s < %d AND %s >= %d THEN 1 ELSE 0 END",
		resultCol, int64(t), priorCol, int64(t))
}
