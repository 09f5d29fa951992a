package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/strata/internal/ir"
	"github.com/roach88/strata/internal/store"
	"github.com/roach88/strata/internal/timeline"
)

// Mismatch is a journaled command whose replay diverged from its recorded
// outcome.
type Mismatch struct {
	Seq       int64
	CommandID string
	Op        string
	Field     string // "id", "status", "error_code" or "digest"
	Want      string
	Got       string
}

func (m Mismatch) String() string {
	return fmt.Sprintf("seq %d %s: %s differs (want %s, got %s)", m.Seq, m.Op, m.Field, m.Want, m.Got)
}

// ReplayResult summarizes a replay.
type ReplayResult struct {
	Session    string
	Objects    int
	Commands   int
	Mismatches []Mismatch
}

// OK reports whether the replay reproduced every recorded outcome.
func (r ReplayResult) OK() bool { return len(r.Mismatches) == 0 }

// Replay rebuilds session from the journal onto a fresh timeline and checks
// every command against its recorded outcome.
//
// Replay runs the same code path as the original session: the journal is a
// seq-ordered stream of definitions and commands, and commands keep their
// journaled seq and content-addressed ID. Nothing is written back to st.
// A command whose ID no longer matches its content has been altered in the
// journal and is reported as an "id" mismatch.
func Replay(ctx context.Context, st *store.Store, session string, bands timeline.Bands, logger *slog.Logger) (ReplayResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	result := ReplayResult{Session: session}

	entries, err := st.ReadJournal(ctx, session)
	if err != nil {
		return result, err
	}
	tl, err := timeline.NewTimeline(bands, logger)
	if err != nil {
		return result, err
	}
	e := New(tl, WithSession(session), WithLogger(logger))

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		switch entry.Type {
		case store.EntryObject:
			e.applyMu.Lock()
			e.clock.Advance(entry.Seq)
			_, err := e.define(ctx, entry.Object.Def, entry.Seq)
			e.applyMu.Unlock()
			if err != nil {
				return result, fmt.Errorf("replay object %s: %w", entry.ID, err)
			}
			result.Objects++

		case store.EntryCommand:
			cmd := *entry.Command
			result.Commands++
			if want, err := ir.CommandID(cmd.Session, cmd.Op, cmd.Composition, cmd.Args, cmd.Seq); err != nil {
				return result, err
			} else if want != cmd.ID {
				result.Mismatches = append(result.Mismatches, Mismatch{
					Seq: cmd.Seq, CommandID: cmd.ID, Op: cmd.Op, Field: "id", Want: want, Got: cmd.ID,
				})
			}
			got, err := e.Apply(ctx, cmd)
			if err != nil {
				return result, fmt.Errorf("replay command %s: %w", cmd.ID, err)
			}
			if entry.Outcome != nil {
				result.Mismatches = append(result.Mismatches, compareOutcome(cmd, *entry.Outcome, got)...)
			}
		}
	}

	logger.Info("replay finished",
		"session", session,
		"objects", result.Objects,
		"commands", result.Commands,
		"mismatches", len(result.Mismatches),
	)
	return result, nil
}

func compareOutcome(cmd ir.Command, want, got ir.Outcome) []Mismatch {
	var out []Mismatch
	check := func(field, w, g string) {
		if w != g {
			out = append(out, Mismatch{Seq: cmd.Seq, CommandID: cmd.ID, Op: cmd.Op, Field: field, Want: w, Got: g})
		}
	}
	check("status", want.Status, got.Status)
	check("error_code", want.ErrorCode, got.ErrorCode)
	check("digest", want.Digest, got.Digest)
	return out
}
