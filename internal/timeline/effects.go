package timeline

import (
	"slices"
	"time"
)

// Every effect and transition operation follows the same shape: prepare the
// local edit (validation only), prepare the mirrored edit on the linked
// composition, then apply both.

// prepareMirror resolves obj's brother and prepares the same edit on the
// linked composition.
func (c *Composition) prepareMirror(obj *Object, mirror bool, prepare func(*Composition, *Object) (func(), error)) (func(), error) {
	other, brother, err := c.mirrorTarget(obj, mirror)
	if err != nil || other == nil {
		return noMirror, err
	}
	apply, err := prepare(other, brother)
	if err != nil {
		return nil, err
	}
	return func() {
		other.bus.hold()
		defer other.bus.release()
		apply()
	}, nil
}

func (c *Composition) edit(obj *Object, mirror bool, prepare func(*Composition, *Object) (func(), error)) error {
	c.bus.hold()
	defer c.bus.release()

	apply, err := prepare(c, obj)
	if err != nil {
		return err
	}
	mirrored, err := c.prepareMirror(obj, mirror, prepare)
	if err != nil {
		return err
	}
	apply()
	mirrored()
	return nil
}

// AddGlobalEffect inserts e into the global effect list at order (-1 or past
// the end appends). Priorities follow list order from 0 and e spans the whole
// composition.
func (c *Composition) AddGlobalEffect(e *Object, order int, mirror bool) error {
	return c.edit(e, mirror, func(c *Composition, e *Object) (func(), error) {
		return c.prepareGlobalAdd(e, order)
	})
}

// RemoveGlobalEffect removes e and restamps the remaining global effects.
func (c *Composition) RemoveGlobalEffect(e *Object, mirror bool) error {
	return c.edit(e, mirror, (*Composition).prepareGlobalRemove)
}

func (c *Composition) prepareGlobalAdd(e *Object, order int) (func(), error) {
	if err := c.checkFree(e, KindGlobalEffect); err != nil {
		return nil, err
	}
	if _, ok := c.bands.globalPriority(len(c.global)); !ok {
		return nil, newBandExhausted(c.name, e.id, KindGlobalEffect.String())
	}
	if order < 0 || order > len(c.global) {
		order = len(c.global)
	}
	return func() {
		c.global = slices.Insert(c.global, order, e)
		c.restampGlobal()
		e.owner = c.name
		c.attach(e)
		c.emit(EventGlobalEffectAdded, e)
		c.refresh()
	}, nil
}

func (c *Composition) prepareGlobalRemove(e *Object) (func(), error) {
	idx := slices.Index(c.global, e)
	if idx < 0 {
		return nil, newNotFound(c.name, idOf(e), "global effect")
	}
	return func() {
		c.global = slices.Delete(c.global, idx, idx+1)
		c.restampGlobal()
		c.detach(e)
		e.owner = ""
		c.emit(EventGlobalEffectRemoved, e)
		c.refresh()
	}, nil
}

func (c *Composition) restampGlobal() {
	for i, e := range c.global {
		p, _ := c.bands.globalPriority(i)
		e.setPriority(p)
	}
}

// syncGlobalSpans stretches every global effect over [0, Duration()).
func (c *Composition) syncGlobalSpans() {
	d := c.Duration()
	for _, e := range c.global {
		e.start, e.duration = 0, d
	}
}

// AddSimpleEffect places e in row order (0 = top). -1, or an order past the
// last row, opens a new bottom row. Simple effects may overlap.
func (c *Composition) AddSimpleEffect(e *Object, order int, mirror bool) error {
	return c.edit(e, mirror, func(c *Composition, e *Object) (func(), error) {
		return c.prepareSimpleAdd(e, order)
	})
}

// RemoveSimpleEffect removes e. A row left empty is dropped and the rows below
// it move up.
func (c *Composition) RemoveSimpleEffect(e *Object, mirror bool) error {
	return c.edit(e, mirror, (*Composition).prepareSimpleRemove)
}

func (c *Composition) prepareSimpleAdd(e *Object, order int) (func(), error) {
	if err := c.checkFree(e, KindSimpleEffect); err != nil {
		return nil, err
	}
	if err := checkInterval(e.id, e.start, e.duration); err != nil {
		return nil, err
	}
	row := order
	if row < 0 || row >= len(c.simple) {
		row = len(c.simple)
	}
	p, ok := c.bands.simplePriority(row)
	if !ok {
		return nil, newBandExhausted(c.name, e.id, KindSimpleEffect.String())
	}
	return func() {
		if row == len(c.simple) {
			c.simple = append(c.simple, nil)
		}
		c.simple[row] = insertByStart(c.simple[row], e)
		e.setPriority(p)
		e.owner = c.name
		c.attach(e)
		c.emit(EventSimpleEffectAdded, e)
		c.refresh()
	}, nil
}

func (c *Composition) prepareSimpleRemove(e *Object) (func(), error) {
	row, idx := -1, -1
	for r, effects := range c.simple {
		if i := slices.Index(effects, e); i >= 0 {
			row, idx = r, i
			break
		}
	}
	if row < 0 {
		return nil, newNotFound(c.name, idOf(e), "simple effect")
	}
	return func() {
		c.simple[row] = slices.Delete(c.simple[row], idx, idx+1)
		if len(c.simple[row]) == 0 {
			c.simple = slices.Delete(c.simple, row, row+1)
			for r := row; r < len(c.simple); r++ {
				p, _ := c.bands.simplePriority(r)
				for _, o := range c.simple[r] {
					o.setPriority(p)
				}
			}
		}
		c.detach(e)
		e.owner = ""
		c.emit(EventSimpleEffectRemoved, e)
		c.refresh()
	}, nil
}

// AddComplexEffect places e in the complex effect list. Its span must not
// intersect any other complex effect; touching spans are allowed.
func (c *Composition) AddComplexEffect(e *Object, mirror bool) error {
	return c.edit(e, mirror, (*Composition).prepareComplexAdd)
}

// RemoveComplexEffect removes e from the complex effect list.
func (c *Composition) RemoveComplexEffect(e *Object, mirror bool) error {
	return c.edit(e, mirror, (*Composition).prepareComplexRemove)
}

func (c *Composition) prepareComplexAdd(e *Object) (func(), error) {
	if err := c.checkFree(e, KindComplexEffect); err != nil {
		return nil, err
	}
	if err := checkInterval(e.id, e.start, e.duration); err != nil {
		return nil, err
	}
	if other := firstOverlap(c.complex, nil, e.start, e.End()); other != nil {
		return nil, newOverlap(c.name, e.id, other.id, KindComplexEffect.String())
	}
	return func() {
		c.complex = insertByStart(c.complex, e)
		e.setPriority(c.bands.complexBase())
		e.owner = c.name
		c.attach(e)
		c.emit(EventComplexEffectAdded, e)
		c.refresh()
	}, nil
}

func (c *Composition) prepareComplexRemove(e *Object) (func(), error) {
	idx := slices.Index(c.complex, e)
	if idx < 0 {
		return nil, newNotFound(c.name, idOf(e), "complex effect")
	}
	return func() {
		c.complex = slices.Delete(c.complex, idx, idx+1)
		c.detach(e)
		e.owner = ""
		c.emit(EventComplexEffectRemoved, e)
		c.refresh()
	}, nil
}

// insertByStart inserts obj before the first element starting at or after it.
func insertByStart(list []*Object, obj *Object) []*Object {
	idx := len(list)
	for i, o := range list {
		if o.start >= obj.start {
			idx = i
			break
		}
	}
	return slices.Insert(list, idx, obj)
}

// firstOverlap returns the first element of list, other than skip, whose span
// intersects [start, end).
func firstOverlap(list []*Object, skip *Object, start, end time.Duration) *Object {
	for _, o := range list {
		if o != skip && o.overlaps(start, end) {
			return o
		}
	}
	return nil
}
