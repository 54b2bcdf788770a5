// Package repair restores the chaining invariant of the review log.
//
// For each reviewed item the events are walked in ID order with an
// expected prior interval that starts at 0. An event whose PriorInterval
// differs from the expectation gets a prior correction; the expectation
// then moves to the event's ResultInterval whether or not it was corrected.
// Finally the last event's ResultInterval is compared with the item's
// snapshot interval, and the snapshot wins.
//
// Planning only reads. Apply writes every correction of a plan in one
// transaction. Running Plan again after Apply finds nothing to correct.
package repair
