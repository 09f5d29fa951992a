package timeline

import (
	"slices"
	"time"
)

type condensedEntry struct {
	obj      *Object
	start    time.Duration
	duration time.Duration
}

// Condensed returns the current condensed view: transitions and the sources
// of every layer merged into a single start-ordered sequence.
func (c *Composition) Condensed() []*Object {
	out := make([]*Object, len(c.condensed))
	for i, e := range c.condensed {
		out[i] = e.obj
	}
	return out
}

// UpdateCondensed rebuilds the condensed view and reports whether it changed.
// A change emits condensed-view-changed carrying the full new sequence.
//
// Editing operations call this themselves; calling it again without an
// intervening mutation never emits.
func (c *Composition) UpdateCondensed() bool {
	c.bus.hold()
	defer c.bus.release()

	next := c.buildCondensed()
	if !condensedDiffers(c.condensed, next) {
		return false
	}
	c.condensed = next
	c.bus.emit(Event{
		Name:        EventCondensedChanged,
		Composition: c.name,
		Condensed:   c.Condensed(),
	})
	return true
}

func (c *Composition) buildCondensed() []condensedEntry {
	merged := slices.Clone(c.transitions)
	for _, l := range c.layers {
		merged = condensedSum(merged, l.objects)
	}
	out := make([]condensedEntry, len(merged))
	for i, o := range merged {
		out[i] = condensedEntry{obj: o, start: o.start, duration: o.duration}
	}
	return out
}

// condensedSum merges b into a: each element of b, in order, is inserted
// before the first element of the running result whose start is greater or
// equal to its own, so on equal starts b's element lands first.
func condensedSum(a, b []*Object) []*Object {
	if len(a) == 0 {
		return slices.Clone(b)
	}
	res := slices.Clone(a)
	for _, o := range b {
		idx := len(res)
		for i, r := range res {
			if o.start <= r.start {
				idx = i
				break
			}
		}
		res = slices.Insert(res, idx, o)
	}
	return res
}

func condensedDiffers(old, next []condensedEntry) bool {
	return !slices.Equal(old, next)
}
