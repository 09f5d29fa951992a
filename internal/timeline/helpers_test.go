package timeline

import (
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sec(n int) time.Duration { return time.Duration(n) * time.Second }

// newTestComposition creates a quiet composition named name.
func newTestComposition(t *testing.T, name string, opts ...Option) *Composition {
	t.Helper()
	c, err := NewComposition(name, MediaVideo, append([]Option{WithLogger(quietLogger())}, opts...)...)
	require.NoError(t, err)
	return c
}

// newLinkedPair creates two linked compositions sharing a registry.
func newLinkedPair(t *testing.T) (*Composition, *Composition) {
	t.Helper()
	reg := NewRegistry()
	a := newTestComposition(t, "video", WithRegistry(reg))
	b, err := NewComposition("audio", MediaAudio, WithRegistry(reg), WithLogger(quietLogger()))
	require.NoError(t, err)
	require.NoError(t, Link(a, b))
	return a, b
}

// src creates a source whose ID is its name.
func src(name string, start, duration int) *Object {
	return NewSource(name, sec(duration), WithID(ID(name)), WithStart(sec(start)))
}

// spans renders objects as "name@start+duration" in seconds.
func spans(objs []*Object) []string {
	out := make([]string, len(objs))
	for i, o := range objs {
		out[i] = fmt.Sprintf("%s@%d+%d", o.name, int(o.start/time.Second), int(o.duration/time.Second))
	}
	return out
}

func names(objs []*Object) []string {
	out := make([]string, len(objs))
	for i, o := range objs {
		out[i] = o.name
	}
	return out
}

type recorder struct {
	events []Event
}

// record subscribes to every event c emits.
func record(c *Composition) *recorder {
	r := &recorder{}
	for _, name := range Events {
		c.On(name, func(ev Event) { r.events = append(r.events, ev) })
	}
	return r
}

func (r *recorder) count(name EventName) int {
	n := 0
	for _, ev := range r.events {
		if ev.Name == name {
			n++
		}
	}
	return n
}

func (r *recorder) names() []EventName {
	out := make([]EventName, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Name
	}
	return out
}

// requireNoOverlap fails if two consecutive objects of l overlap.
func requireNoOverlap(t *testing.T, l *Layer) {
	t.Helper()
	objs := l.Objects()
	for i := 1; i < len(objs); i++ {
		require.LessOrEqualf(t, objs[i-1].End(), objs[i].Start(),
			"%s overlaps %s", objs[i-1], objs[i])
	}
}
