package progress

import (
	"errors"
	"fmt"
)

// ErrEmptyDataset is returned when no review events match the query.
// It is not a failure: callers render an empty report.
var ErrEmptyDataset = errors.New("progress: no review data")

// MalformedInputError reports grouped input whose latest chunk lies after
// the cutoff, which only happens for reviews dated in the future.
type MalformedInputError struct {
	LastChunkID int64
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("progress: latest chunk is %d, want 0 (review dated after cutoff)", e.LastChunkID)
}
