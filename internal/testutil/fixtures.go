package testutil

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/roach88/strata/internal/timeline"
)

// QuietLogger returns a logger that discards everything.
func QuietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewTimeline creates a linked video/audio timeline with the default bands
// and the given number of source layers.
func NewTimeline(t testing.TB, layers int) *timeline.Timeline {
	t.Helper()
	bands := timeline.DefaultBands()
	bands.Layers = layers
	tl, err := timeline.NewTimeline(bands, QuietLogger())
	if err != nil {
		t.Fatalf("NewTimeline: %v", err)
	}
	return tl
}

// Source creates a source whose ID is its name.
func Source(id string, duration time.Duration, opts ...timeline.ObjectOption) *timeline.Object {
	opts = append([]timeline.ObjectOption{timeline.WithID(timeline.ID(id))}, opts...)
	return timeline.NewSource(id, duration, opts...)
}

// IDs returns the IDs of objs in order.
func IDs(objs []*timeline.Object) []string {
	ids := make([]string, len(objs))
	for i, o := range objs {
		ids[i] = string(o.ID())
	}
	return ids
}
