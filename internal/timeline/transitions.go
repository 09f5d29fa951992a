package timeline

import (
	"cmp"
	"slices"
	"time"
)

// AddTransition places t between the adjacent sources s1 and s2, centered on
// their junction: it starts half its duration before s2 (never before 0).
// Transitions must not overlap each other.
func (c *Composition) AddTransition(t, s1, s2 *Object, mirror bool) error {
	return c.editTransition(t, s1, s2, mirror, (*Composition).prepareTransitionAdd)
}

// MoveTransition re-anchors t between s1 and s2.
func (c *Composition) MoveTransition(t, s1, s2 *Object, mirror bool) error {
	return c.editTransition(t, s1, s2, mirror, (*Composition).prepareTransitionMove)
}

// RemoveTransition removes t. With reorder set, the sources it bridged are
// put back one after the other: s2 and everything after it in the layer move
// so that s2 starts where s1 ends.
func (c *Composition) RemoveTransition(t *Object, reorder, mirror bool) error {
	return c.edit(t, mirror, func(c *Composition, t *Object) (func(), error) {
		return c.prepareTransitionRemove(t, reorder)
	})
}

type transitionPrepare func(c *Composition, t, s1, s2 *Object) (func(), error)

func (c *Composition) editTransition(t, s1, s2 *Object, mirror bool, prepare transitionPrepare) error {
	return c.edit(t, mirror, func(target *Composition, tr *Object) (func(), error) {
		if target == c {
			return prepare(target, tr, s1, s2)
		}
		b1, err := c.registry.brotherOf(s1)
		if err != nil {
			return nil, withComposition(err, target.name)
		}
		b2, err := c.registry.brotherOf(s2)
		if err != nil {
			return nil, withComposition(err, target.name)
		}
		if b1 == nil || b2 == nil {
			return nil, newNotFound(target.name, idOf(tr), "brother sources of transition")
		}
		return prepare(target, tr, b1, b2)
	})
}

// junction validates s1 and s2 and returns where t starts between them.
func (c *Composition) junction(t, s1, s2 *Object) (time.Duration, error) {
	l1, i1 := c.locate(s1)
	if l1 == nil {
		return 0, newNotFound(c.name, idOf(s1), "source")
	}
	l2, i2 := c.locate(s2)
	if l2 == nil {
		return 0, newNotFound(c.name, idOf(s2), "source")
	}
	if l1 != l2 || i2 != i1+1 {
		return 0, newNotAdjacent(c.name, t.id, s1.id, s2.id)
	}
	return junctionStart(t, s2), nil
}

func junctionStart(t, s2 *Object) time.Duration {
	return max(0, s2.start-t.duration/2)
}

func (c *Composition) adjacent(s1, s2 *Object) bool {
	l1, i1 := c.locate(s1)
	l2, i2 := c.locate(s2)
	return l1 != nil && l1 == l2 && i2 == i1+1
}

func (c *Composition) prepareTransitionAdd(t, s1, s2 *Object) (func(), error) {
	if err := c.checkFree(t, KindTransition); err != nil {
		return nil, err
	}
	if err := checkInterval(t.id, 0, t.duration); err != nil {
		return nil, err
	}
	start, err := c.junction(t, s1, s2)
	if err != nil {
		return nil, err
	}
	if other := firstOverlap(c.transitions, nil, start, start+t.duration); other != nil {
		return nil, newOverlap(c.name, t.id, other.id, KindTransition.String())
	}
	return func() {
		t.start = start
		t.from, t.to = s1.id, s2.id
		c.transitions = insertByStart(c.transitions, t)
		t.setPriority(c.bands.transitionBase())
		t.owner = c.name
		c.attach(t)
		c.emit(EventTransitionAdded, t)
		c.refresh()
	}, nil
}

func (c *Composition) prepareTransitionMove(t, s1, s2 *Object) (func(), error) {
	idx := slices.Index(c.transitions, t)
	if idx < 0 {
		return nil, newNotFound(c.name, idOf(t), "transition")
	}
	start, err := c.junction(t, s1, s2)
	if err != nil {
		return nil, err
	}
	if other := firstOverlap(c.transitions, t, start, start+t.duration); other != nil {
		return nil, newOverlap(c.name, t.id, other.id, KindTransition.String())
	}
	return func() {
		c.logger.Debug("moving transition",
			"composition", c.name, "transition", t.id, "from", s1.id, "to", s2.id)
		c.transitions = slices.Delete(c.transitions, idx, idx+1)
		t.start = start
		t.from, t.to = s1.id, s2.id
		c.transitions = insertByStart(c.transitions, t)
		c.refresh()
	}, nil
}

func (c *Composition) prepareTransitionRemove(t *Object, reorder bool) (func(), error) {
	idx := slices.Index(c.transitions, t)
	if idx < 0 {
		return nil, newNotFound(c.name, idOf(t), "transition")
	}
	return func() {
		s1, _ := c.registry.Lookup(t.from)
		s2, _ := c.registry.Lookup(t.to)
		c.removeTransitionAt(idx)
		if reorder && c.closeJunction(s1, s2) {
			c.reanchorTransitions()
		}
		c.refresh()
	}, nil
}

// closeJunction shifts s2 and its followers so that s2 starts at s1's end.
// It does nothing unless both are still adjacent in the same layer, and
// reports whether anything moved.
func (c *Composition) closeJunction(s1, s2 *Object) bool {
	if !c.adjacent(s1, s2) {
		return false
	}
	l2, i2 := c.locate(s2)
	delta := s1.End() - s2.start
	if delta == 0 {
		return false
	}
	l2.shift(i2, l2.Len(), delta)
	if !l2.sorted() {
		l2.resort()
	}
	return true
}

func (c *Composition) removeTransitionAt(idx int) {
	t := c.transitions[idx]
	c.transitions = slices.Delete(c.transitions, idx, idx+1)
	c.detach(t)
	t.owner = ""
	t.from, t.to = "", ""
	c.emit(EventTransitionRemoved, t)
}

// dropTransitionsOf removes every transition bridging src.
func (c *Composition) dropTransitionsOf(src *Object) {
	for i := len(c.transitions) - 1; i >= 0; i-- {
		t := c.transitions[i]
		if t.from == src.id || t.to == src.id {
			c.logger.Debug("dropping transition",
				"composition", c.name, "transition", t.id, "source", src.id)
			c.removeTransitionAt(i)
		}
	}
}

// reanchorTransitions runs after sources have been shifted or reordered.
// Transitions whose sources no longer follow each other are removed; the rest
// are re-centered on their junction, and any that would then overlap an
// earlier transition are removed too.
func (c *Composition) reanchorTransitions() {
	for i := len(c.transitions) - 1; i >= 0; i-- {
		t := c.transitions[i]
		s1, _ := c.registry.Lookup(t.from)
		s2, _ := c.registry.Lookup(t.to)
		if s1 == nil || s2 == nil || !c.adjacent(s1, s2) {
			c.removeTransitionAt(i)
			continue
		}
		t.start = junctionStart(t, s2)
	}
	slices.SortStableFunc(c.transitions, func(a, b *Object) int {
		return cmp.Compare(a.start, b.start)
	})
	var end time.Duration
	for i := 0; i < len(c.transitions); i++ {
		t := c.transitions[i]
		if i > 0 && t.start < end {
			c.removeTransitionAt(i)
			i--
			continue
		}
		end = t.End()
	}
}
