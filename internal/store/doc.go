// Package store provides SQLite-backed access to the review log and the
// item snapshot table.
//
// The schema mirrors the host application's tables:
//   - revlog: append-only review events (id, cid, ivl, lastIvl)
//   - cards:  current item state (id, did, ivl)
//
// revlog.id is the review time in milliseconds since the epoch. Every query
// joins revlog to cards, so review events whose item has been deleted are
// never counted, grouped or repaired.
//
// # Scope filters
//
// Read queries accept a revlog.Filter: a SQL fragment over the revlog and
// cards tables supplied by the caller. The store appends it to its WHERE
// clause verbatim and binds its arguments; it never inspects the fragment.
//
// # Opening
//
//   - OpenReadOnly: reports. mode=ro, so SQLite refuses writes; the file
//     must exist.
//   - OpenExisting: repairs. Read-write, the file must exist, and schema,
//     journal mode and user_version are left as the host set them.
//   - Open: fixtures. Creates the schema if missing. New databases get WAL
//     mode and a user_version stamp; synchronous=NORMAL and
//     busy_timeout=5000 apply per connection.
//
// The only writes the report tooling performs on a host database are the
// repair corrections, which are applied as a single transaction.
package store
