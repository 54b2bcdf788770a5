// Package revlog holds the record types shared by the event store and the
// components that read it: review events, item snapshots, grouped chunk
// counts and the corrections produced by the repair pass.
//
// A review event's ID is the review time in milliseconds since the epoch,
// so ordering events by ID orders them in time. Events of one item form a
// chain: each event's PriorInterval must equal the ResultInterval of the
// item's previous event, and the first event's PriorInterval is 0.
package revlog
