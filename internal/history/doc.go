// Package history journals pipeline runs in SQLite.
//
// Each run stores its report header and counters in the runs table and every
// structured event (updates, merges, skips, errors) in run_events, keyed by
// the run id. The journal is an audit trail only: the pipeline never reads it
// back, so deleting the database loses history but never changes behaviour.
//
// Schema changes bump schemaVersion in schema.go; an existing database with a
// different version is rejected and must be removed.
package history
