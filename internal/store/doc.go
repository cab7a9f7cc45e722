// Package store provides SQLite-backed storage for rewrite results.
//
// The store serves two purposes:
//   - Rewrite cache: emitted output keyed by the content hash of
//     (block source, dialect). Two invocations with the same hash emit
//     identical output, so a hit skips the transform entirely.
//   - Run log: one record per CLI invocation (UUIDv7 id, source path,
//     status, block and warning counts) for later inspection with the
//     trace command.
//
// Cache entries are content-addressed and immutable: writes use
// ON CONFLICT DO NOTHING, so concurrent runs over the same sources
// never fight over rows.
package store
