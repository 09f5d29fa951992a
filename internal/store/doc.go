// Package store provides the SQLite edit journal of strata sessions.
//
// The journal is append-only:
//   - Objects: temporal object definitions, replayable into a fresh registry
//   - Commands: editing operations with canonical JSON args
//   - Outcomes: status, error code and post-command snapshot digest
//   - Notifications: composition events delivered while a command ran
//
// Ordering uses seq (the engine's logical clock), never timestamps. Session
// queries order by seq ASC, id ASC COLLATE BINARY so results are identical
// across replays. Writes are idempotent through ON CONFLICT DO NOTHING on
// content-addressed IDs.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Outcomes and notifications must reference a command
package store
