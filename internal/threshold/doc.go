// Package threshold classifies a single review against the two interval
// boundaries the progress report tracks.
//
// A review moves an item from PriorInterval to ResultInterval. Against a
// boundary T the review is:
//   - Up   when ResultInterval >= T and PriorInterval < T (the item matured)
//   - Down when ResultInterval < T and PriorInterval >= T (the item was demoted)
//   - None otherwise
//
// Mature (21 days) and Known (365 days) are classified independently. An
// item crossing Known has logically crossed Mature too, but the two series
// only ever report transitions across their own boundary.
package threshold
