// Package repositories implements SQLite persistence for the wizard's domain entities.
//
// Key Implementations:
//   - [FormRepository] : the single-slot wizard form record with whole-record replacement
//   - [RunRepository] : completed final-video runs with atomic sequence generation
//
// Sequence numbers provide stable, human-readable ordering (e.g., run #42) independent
// of UUIDs and creation timestamps. The [NextSequence] function atomically increments
// per-table sequence counters in dedicated sequence tables.
//
// Run deletion is soft: deleted runs keep their row with deleted_at set and are
// excluded from queries by default.
package repositories
