package store

import (
	"context"
	"fmt"
	"slices"

	"github.com/roach88/strata/internal/ir"
)

// EntryType distinguishes object definitions from commands in a journal.
type EntryType int

const (
	EntryObject EntryType = iota
	EntryCommand
)

// String returns the entry type as a string.
func (t EntryType) String() string {
	switch t {
	case EntryObject:
		return "object"
	case EntryCommand:
		return "command"
	default:
		return "unknown"
	}
}

// JournalEntry is one step of a session: either an object definition or a
// command with its recorded outcome.
type JournalEntry struct {
	Type    EntryType
	Seq     int64
	ID      string
	Object  *ObjectRecord
	Command *ir.Command
	Outcome *ir.Outcome // nil if the command never completed
}

// ReadJournal returns a session as a merged, seq-ordered stream of object
// definitions and commands. Replaying the stream in order rebuilds the
// session's timeline.
func (s *Store) ReadJournal(ctx context.Context, session string) ([]JournalEntry, error) {
	objects, err := s.ReadObjects(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}
	cmds, err := s.ReadCommands(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}
	outs, err := s.ReadOutcomes(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}

	byCommand := make(map[string]*ir.Outcome, len(outs))
	for i := range outs {
		byCommand[outs[i].CommandID] = &outs[i]
	}

	entries := make([]JournalEntry, 0, len(objects)+len(cmds))
	for i := range objects {
		entries = append(entries, JournalEntry{
			Type:   EntryObject,
			Seq:    objects[i].Seq,
			ID:     objects[i].Def.ID,
			Object: &objects[i],
		})
	}
	for i := range cmds {
		entries = append(entries, JournalEntry{
			Type:    EntryCommand,
			Seq:     cmds[i].Seq,
			ID:      cmds[i].ID,
			Command: &cmds[i],
			Outcome: byCommand[cmds[i].ID],
		})
	}

	slices.SortStableFunc(entries, compareEntries)
	return entries, nil
}

// compareEntries orders by seq, then objects before commands, then by ID.
func compareEntries(a, b JournalEntry) int {
	if a.Seq != b.Seq {
		if a.Seq < b.Seq {
			return -1
		}
		return 1
	}
	if a.Type != b.Type {
		return int(a.Type) - int(b.Type)
	}
	switch {
	case a.ID < b.ID:
		return -1
	case a.ID > b.ID:
		return 1
	}
	return 0
}

// GetLastSeq returns the highest seq used by a session, or 0.
// Used to resume the logical clock when a session continues.
func (s *Store) GetLastSeq(ctx context.Context, session string) (int64, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seq), 0) FROM (
			SELECT seq FROM objects WHERE session = ?
			UNION ALL
			SELECT seq FROM commands WHERE session = ?
		)
	`, session, session).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("get last seq: %w", err)
	}
	return seq, nil
}

// ListSessions returns every session that journaled a command or an object,
// ordered alphabetically.
func (s *Store) ListSessions(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session FROM commands
		UNION
		SELECT session FROM objects
		ORDER BY session
	`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	sessions := []string{}
	for rows.Next() {
		var session string
		if err := rows.Scan(&session); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}
