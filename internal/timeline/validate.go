package timeline

import (
	"errors"
	"fmt"
)

// Validate checks the structural invariants of c and returns every violation
// found, joined. A composition only edited through its operations always
// validates.
func (c *Composition) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%s: "+format, append([]any{c.name}, args...)...))
	}
	tier := func(o *Object) {
		if got := c.bands.TierOf(o.priority); got != o.kind.String() {
			fail("%s has priority %d in the %s tier", o.id, o.priority, got)
		}
		if o.owner != c.name {
			fail("%s is held but owned by %q", o.id, o.owner)
		}
		if o.start < 0 {
			fail("%s starts before 0", o.id)
		}
	}

	for _, l := range c.layers {
		if !l.sorted() {
			fail("layer %d is not sorted by start", l.position)
		}
		for _, o := range l.objects {
			tier(o)
			if o.priority < l.minPriority || o.priority > l.maxPriority {
				fail("%s priority %d outside layer %d band [%d, %d]",
					o.id, o.priority, l.position, l.minPriority, l.maxPriority)
			}
		}
	}

	for i, e := range c.global {
		tier(e)
		if p, _ := c.bands.globalPriority(i); e.priority != p {
			fail("global effect %s at %d has priority %d", e.id, i, e.priority)
		}
	}

	for r, row := range c.simple {
		if len(row) == 0 {
			fail("simple effect row %d is empty", r)
		}
		p, _ := c.bands.simplePriority(r)
		for i, e := range row {
			tier(e)
			if e.priority != p {
				fail("simple effect %s in row %d has priority %d", e.id, r, e.priority)
			}
			if i > 0 && row[i-1].start > e.start {
				fail("simple effect row %d is not sorted by start", r)
			}
		}
	}

	for i, e := range c.complex {
		tier(e)
		if i > 0 && c.complex[i-1].End() > e.start {
			fail("complex effects %s and %s overlap or are out of order", c.complex[i-1].id, e.id)
		}
	}

	for i, t := range c.transitions {
		tier(t)
		if i > 0 && c.transitions[i-1].End() > t.start {
			fail("transitions %s and %s overlap or are out of order", c.transitions[i-1].id, t.id)
		}
		s1, _ := c.registry.Lookup(t.from)
		s2, _ := c.registry.Lookup(t.to)
		if !c.adjacent(s1, s2) {
			fail("transition %s does not bridge adjacent sources", t.id)
		}
	}

	if d := c.defaultSource; d != nil && d.priority != MaxPriority {
		fail("default source %s has priority %d", d.id, d.priority)
	}

	return errors.Join(errs...)
}
