package timeline

import (
	"cmp"
	"slices"
	"time"
)

// Layer is a priority band plus the objects placed in it, kept sorted by
// start time.
type Layer struct {
	position    int
	minPriority Priority
	maxPriority Priority
	objects     []*Object
}

func newLayer(position int, lo, hi Priority) *Layer {
	return &Layer{position: position, minPriority: lo, maxPriority: hi}
}

// Position is the layer's vertical position, 1 being the top layer.
func (l *Layer) Position() int { return l.position }

// MinPriority is the base priority stamped on the layer's contents.
func (l *Layer) MinPriority() Priority { return l.minPriority }

// MaxPriority is the top of the band, used while an object is being moved.
func (l *Layer) MaxPriority() Priority { return l.maxPriority }

// Len returns the number of objects in the layer.
func (l *Layer) Len() int { return len(l.objects) }

// Objects returns a copy of the layer's sequence.
func (l *Layer) Objects() []*Object { return slices.Clone(l.objects) }

// At returns the object at index i.
func (l *Layer) At(i int) *Object { return l.objects[i] }

// Last returns the last object, or nil for an empty layer.
func (l *Layer) Last() *Object {
	if len(l.objects) == 0 {
		return nil
	}
	return l.objects[len(l.objects)-1]
}

// IndexOf returns the index of obj by identity, or -1.
func (l *Layer) IndexOf(obj *Object) int {
	return slices.Index(l.objects, obj)
}

// End returns the largest end time in the layer.
func (l *Layer) End() time.Duration {
	var end time.Duration
	for _, o := range l.objects {
		end = max(end, o.End())
	}
	return end
}

// insertionIndex is the index before the first object whose start is greater
// than or equal to start.
func (l *Layer) insertionIndex(start time.Duration) int {
	for i, o := range l.objects {
		if o.start >= start {
			return i
		}
	}
	return len(l.objects)
}

func (l *Layer) insertAt(i int, obj *Object) {
	l.objects = slices.Insert(l.objects, i, obj)
}

func (l *Layer) removeAt(i int) {
	l.objects = slices.Delete(l.objects, i, i+1)
}

// shift moves every object in [from, to) by delta. Starts are clamped at 0,
// which only matters for layers whose sources already overlap.
func (l *Layer) shift(from, to int, delta time.Duration) {
	for i := from; i < to; i++ {
		o := l.objects[i]
		o.setStart(max(0, o.start+delta))
	}
}

// resort restores start order after a shift. It is a no-op for layers whose
// sources do not overlap.
func (l *Layer) resort() {
	slices.SortStableFunc(l.objects, func(a, b *Object) int {
		return cmp.Compare(a.start, b.start)
	})
}

// sorted reports whether the sequence is ascending by start.
func (l *Layer) sorted() bool {
	return slices.IsSortedFunc(l.objects, func(a, b *Object) int {
		return cmp.Compare(a.start, b.start)
	})
}
