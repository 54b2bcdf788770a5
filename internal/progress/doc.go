// Package progress turns grouped threshold crossings into the maturing
// progress series: per-chunk matured and demoted counts plus a running net
// total for the mature and known thresholds.
//
// Chunks are identified by their offset from the report cutoff, so the
// series always ends at chunk 0 ("now"). A log with no recent activity is
// padded with an empty chunk 0. A chunk above 0 means a review is dated in
// the future and the whole aggregation is rejected with a
// *MalformedInputError.
package progress
