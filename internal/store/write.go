package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/strata/internal/ir"
)

// ObjectRecord is an object definition as journaled by a session.
type ObjectRecord struct {
	Session string
	Seq     int64
	Def     ir.ObjectDef
}

// WriteObject journals an object definition.
// Uses ON CONFLICT(id) DO NOTHING for idempotency.
func (s *Store) WriteObject(ctx context.Context, rec ObjectRecord) error {
	settings, err := marshalProfile(rec.Def.Settings)
	if err != nil {
		return fmt.Errorf("write object: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO objects
		(id, session, seq, kind, name, start, duration, media_start, brother, settings)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		rec.Def.ID,
		rec.Session,
		rec.Seq,
		rec.Def.Kind,
		rec.Def.Name,
		rec.Def.Start,
		rec.Def.Duration,
		rec.Def.MediaStart,
		rec.Def.Brother,
		settings,
	)
	if err != nil {
		return fmt.Errorf("write object: %w", err)
	}
	return nil
}

// WriteCommand journals a command.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - content-addressed IDs
// make a rewrite of the same command a no-op.
func (s *Store) WriteCommand(ctx context.Context, cmd ir.Command) error {
	return writeCommand(ctx, s.db, cmd)
}

// WriteStep journals a command with its outcome and notifications in a
// single transaction. Either all records persist or none do.
func (s *Store) WriteStep(ctx context.Context, cmd ir.Command, out ir.Outcome, notes []ir.Notification) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write step: begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := writeCommand(ctx, tx, cmd); err != nil {
		return fmt.Errorf("write step: %w", err)
	}
	if err := writeOutcome(ctx, tx, out); err != nil {
		return fmt.Errorf("write step: %w", err)
	}
	for i, n := range notes {
		if err := writeNotification(ctx, tx, i, n); err != nil {
			return fmt.Errorf("write step: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write step: commit: %w", err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func writeCommand(ctx context.Context, db execer, cmd ir.Command) error {
	args, err := marshalArgs(cmd.Args)
	if err != nil {
		return fmt.Errorf("write command: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO commands
		(id, session, seq, op, composition, args, engine_version, journal_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		cmd.ID,
		cmd.Session,
		cmd.Seq,
		cmd.Op,
		cmd.Composition,
		args,
		ir.EngineVersion,
		ir.JournalVersion,
	)
	if err != nil {
		return fmt.Errorf("write command: %w", err)
	}
	return nil
}

func writeOutcome(ctx context.Context, db execer, out ir.Outcome) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO outcomes
		(command_id, seq, status, error_code, message, digest)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(command_id) DO NOTHING
	`,
		out.CommandID,
		out.Seq,
		out.Status,
		out.ErrorCode,
		out.Message,
		out.Digest,
	)
	if err != nil {
		return fmt.Errorf("write outcome: %w", err)
	}
	return nil
}

func writeNotification(ctx context.Context, db execer, ordinal int, n ir.Notification) error {
	condensed, err := marshalCondensed(n.Condensed)
	if err != nil {
		return fmt.Errorf("write notification: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO notifications
		(command_id, ordinal, seq, composition, event, object, condensed)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(command_id, ordinal) DO NOTHING
	`,
		n.CommandID,
		ordinal,
		n.Seq,
		n.Composition,
		n.Event,
		n.Object,
		condensed,
	)
	if err != nil {
		return fmt.Errorf("write notification: %w", err)
	}
	return nil
}
