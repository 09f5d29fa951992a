// Package ir defines the journal records of an editing session: object
// definitions, commands, outcomes, notifications and timeline snapshots.
//
// This package imports nothing internal. Every other package that persists
// or compares edits goes through these types.
//
// Key constraints:
//   - No floats and no nulls in Values, so encodings are canonical
//   - All JSON tags use snake_case
//   - Records are ordered by logical clock (seq), never by wall-clock time
package ir
