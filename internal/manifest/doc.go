// Package manifest persists pipeline runs and their per-item outcomes in
// SQLite.
//
// Every build creates a run row and one item row per input record. Each
// stage then records its outcome against the item's positional index, so the
// manifest carries the explicit identifier, offset, label, and artifact paths
// for every row instead of leaving them implied by directory listings.
//
// The database is a history of runs, not a work queue. The schema version
// lives in PRAGMA user_version and is never migrated in place; users delete
// the database to adopt a new schema.
package manifest
