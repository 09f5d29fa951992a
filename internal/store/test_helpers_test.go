package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/strata/internal/ir"
)

// createTestStore creates a new store in a temp dir for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func createTestCommand(id, session string, seq int64) ir.Command {
	return ir.Command{
		ID:          id,
		Session:     session,
		Seq:         seq,
		Op:          "add_source",
		Composition: "video",
		Args:        ir.Object{"object": ir.String("a"), "position": ir.Int(1)},
	}
}

func createTestObject(id, session string, seq int64) ObjectRecord {
	return ObjectRecord{
		Session: session,
		Seq:     seq,
		Def: ir.ObjectDef{
			ID:       id,
			Kind:     "source",
			Name:     id,
			Duration: 10_000_000_000,
		},
	}
}
