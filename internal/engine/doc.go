// Package engine applies editing commands to a strata timeline.
//
// An Engine owns one editing session: a timeline.Timeline, a logical clock
// and a session token. Commands are ir.Command values naming an operation,
// a composition and typed args; Apply runs them one at a time and returns an
// ir.Outcome with the digest of the timeline snapshot left behind.
//
// Single-writer:
// All edits happen under one lock, in the order they are applied. Commands
// submitted with Enqueue are drained in FIFO order by Run. Composition
// notifications are recorded against the command that caused them.
//
// Journal and replay:
// With a store attached, object definitions and commands are stamped with
// seq from the Clock and journaled with their outcome and notifications.
// Replay feeds the journal back through the same code path onto a fresh
// timeline and compares every outcome digest, so any divergence in the
// timeline's behavior shows up as a Mismatch.
package engine
