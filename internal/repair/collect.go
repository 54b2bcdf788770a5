package repair

import "github.com/roach88/maturing/internal/revlog"

// Collect walks the ordered events of a single item and returns the
// corrections needed to chain them and to match the item's snapshot.
// An empty slice yields no corrections.
func Collect(events []revlog.ItemEvent) (prior, result []revlog.Correction) {
	if len(events) == 0 {
		return nil, nil
	}

	var expected int64
	for _, e := range events {
		if e.PriorInterval != expected {
			prior = append(prior, revlog.Correction{Value: expected, EventID: e.EventID})
		}
		expected = e.ResultInterval
	}

	last := events[len(events)-1]
	if last.ResultInterval != last.SnapshotInterval {
		result = append(result, revlog.Correction{Value: last.SnapshotInterval, EventID: last.EventID})
	}
	return prior, result
}
