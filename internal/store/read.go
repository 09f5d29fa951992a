package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/strata/internal/ir"
)

// ErrNotFound is returned when a single-record read finds nothing.
var ErrNotFound = errors.New("not found")

// All session reads order by seq ASC, id ASC COLLATE BINARY so results are
// identical across replays.

// ReadObjects returns the object definitions journaled by a session.
// Returns an empty slice (not nil) if there are none.
func (s *Store) ReadObjects(ctx context.Context, session string) ([]ObjectRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session, seq, kind, name, start, duration, media_start, brother, settings
		FROM objects
		WHERE session = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, session)
	if err != nil {
		return nil, fmt.Errorf("query objects: %w", err)
	}
	defer rows.Close()

	records := []ObjectRecord{}
	for rows.Next() {
		var rec ObjectRecord
		var settings string
		if err := rows.Scan(
			&rec.Def.ID,
			&rec.Session,
			&rec.Seq,
			&rec.Def.Kind,
			&rec.Def.Name,
			&rec.Def.Start,
			&rec.Def.Duration,
			&rec.Def.MediaStart,
			&rec.Def.Brother,
			&settings,
		); err != nil {
			return nil, fmt.Errorf("scan object: %w", err)
		}
		if rec.Def.Settings, err = unmarshalProfile(settings); err != nil {
			return nil, fmt.Errorf("object %s: %w", rec.Def.ID, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate objects: %w", err)
	}
	return records, nil
}

// ReadCommands returns the commands of a session in execution order.
func (s *Store) ReadCommands(ctx context.Context, session string) ([]ir.Command, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session, seq, op, composition, args
		FROM commands
		WHERE session = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, session)
	if err != nil {
		return nil, fmt.Errorf("query commands: %w", err)
	}
	defer rows.Close()

	cmds := []ir.Command{}
	for rows.Next() {
		cmd, err := scanCommand(rows)
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, cmd)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate commands: %w", err)
	}
	return cmds, nil
}

// ReadCommand retrieves a single command by ID.
// Returns ErrNotFound if no such command exists.
func (s *Store) ReadCommand(ctx context.Context, id string) (ir.Command, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, session, seq, op, composition, args
		FROM commands
		WHERE id = ?
	`, id)
	cmd, err := scanCommand(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.Command{}, fmt.Errorf("command %s: %w", id, ErrNotFound)
	}
	return cmd, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCommand(row scanner) (ir.Command, error) {
	var cmd ir.Command
	var args string
	if err := row.Scan(&cmd.ID, &cmd.Session, &cmd.Seq, &cmd.Op, &cmd.Composition, &args); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return cmd, err
		}
		return cmd, fmt.Errorf("scan command: %w", err)
	}
	obj, err := unmarshalArgs(args)
	if err != nil {
		return cmd, fmt.Errorf("command %s: %w", cmd.ID, err)
	}
	cmd.Args = obj
	return cmd, nil
}

// ReadOutcomes returns the outcomes of a session's commands in seq order.
func (s *Store) ReadOutcomes(ctx context.Context, session string) ([]ir.Outcome, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT o.command_id, o.seq, o.status, o.error_code, o.message, o.digest
		FROM outcomes o
		JOIN commands c ON o.command_id = c.id
		WHERE c.session = ?
		ORDER BY o.seq ASC, o.command_id COLLATE BINARY ASC
	`, session)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close()

	outs := []ir.Outcome{}
	for rows.Next() {
		var out ir.Outcome
		if err := rows.Scan(&out.CommandID, &out.Seq, &out.Status, &out.ErrorCode, &out.Message, &out.Digest); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		outs = append(outs, out)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outcomes: %w", err)
	}
	return outs, nil
}

// ReadNotifications returns every notification delivered in a session, in
// delivery order.
func (s *Store) ReadNotifications(ctx context.Context, session string) ([]ir.Notification, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT n.command_id, n.seq, n.composition, n.event, n.object, n.condensed
		FROM notifications n
		JOIN commands c ON n.command_id = c.id
		WHERE c.session = ?
		ORDER BY n.seq ASC, n.ordinal ASC
	`, session)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()

	notes := []ir.Notification{}
	for rows.Next() {
		var n ir.Notification
		var condensed string
		if err := rows.Scan(&n.CommandID, &n.Seq, &n.Composition, &n.Event, &n.Object, &condensed); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		if n.Condensed, err = unmarshalCondensed(condensed); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}
	return notes, nil
}
