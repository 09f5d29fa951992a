package timeline

import (
	"errors"
	"fmt"
	"time"
)

// Link pairs two compositions so that edits made with mirror set on one are
// repeated on the other through each object's brother. Both compositions
// must share a registry; any previous pairing is released.
func Link(a, b *Composition) error {
	if a == b {
		return fmt.Errorf("link %s: a composition cannot be linked to itself", a.name)
	}
	if a.registry != b.registry {
		return fmt.Errorf("link %s with %s: compositions use different registries", a.name, b.name)
	}
	a.Unlink()
	b.Unlink()
	a.linked, b.linked = b.name, a.name
	return nil
}

// Unlink releases the pairing on both sides.
func (c *Composition) Unlink() {
	if other := c.Linked(); other != nil && other.linked == c.name {
		other.linked = ""
	}
	c.linked = ""
}

// Linked returns the paired composition, or nil.
func (c *Composition) Linked() *Composition {
	if c.linked == "" {
		return nil
	}
	other, ok := c.registry.Composition(c.linked)
	if !ok {
		return nil
	}
	return other
}

// noMirror is returned by the prepare functions when nothing is mirrored.
func noMirror() {}

// mirrorTarget resolves the composition and brother an edit on obj mirrors
// to. It returns nils when mirroring does not apply: mirror is off, the
// composition is unlinked or obj has no brother.
func (c *Composition) mirrorTarget(obj *Object, mirror bool) (*Composition, *Object, error) {
	if !mirror {
		return nil, nil, nil
	}
	other := c.Linked()
	if other == nil {
		return nil, nil, nil
	}
	brother, err := c.registry.brotherOf(obj)
	if err != nil {
		return nil, nil, withComposition(err, other.name)
	}
	if brother == nil {
		return nil, nil, nil
	}
	return other, brother, nil
}

// The prepare functions below validate the mirrored half of an edit and
// return a closure applying it. The primary half is applied only once its
// mirror has been validated, so a refused mirror leaves both sides untouched.

func (c *Composition) prepareMirrorPlacement(obj *Object, position int, start time.Duration, push, mirror bool) (func(), error) {
	other, brother, err := c.mirrorTarget(obj, mirror)
	if err != nil || other == nil {
		return noMirror, err
	}
	if err := other.checkFree(brother, KindSource); err != nil {
		return nil, err
	}
	layer, err := other.layerAt(position)
	if err != nil {
		return nil, err
	}
	duration := obj.duration
	return func() {
		other.bus.hold()
		defer other.bus.release()

		brother.start, brother.duration = start, duration
		if push {
			if i := layer.insertionIndex(start); i < layer.Len() {
				layer.shift(i, layer.Len(), duration)
			}
		}
		other.placeSource(layer, brother)
	}, nil
}

func (c *Composition) prepareMirrorMove(obj *Object, layer *Layer, newIndex int, collapse, push, mirror bool) (func(), error) {
	other, brother, err := c.mirrorTarget(obj, mirror)
	if err != nil || other == nil {
		return noMirror, err
	}
	blayer, bold := other.locate(brother)
	if blayer == nil {
		return nil, newNotFound(other.name, brother.id, "brother source")
	}

	// Target the brother of whatever currently sits at newIndex, or the end
	// of the brother's layer.
	target := blayer.Len()
	if newIndex < layer.Len() {
		occupant, err := c.registry.brotherOf(layer.At(newIndex))
		if err != nil {
			return nil, withComposition(err, other.name)
		}
		if occupant != nil {
			if i := blayer.IndexOf(occupant); i >= 0 {
				target = i
			}
		}
	}
	return func() {
		other.bus.hold()
		defer other.bus.release()

		if target == bold || target == bold+1 {
			other.logger.Warn("brother already at requested position",
				"composition", other.name, "source", brother.id, "index", bold)
			return
		}
		other.moveSource(blayer, bold, target, collapse, push)
	}, nil
}

func (c *Composition) prepareMirrorRemoval(obj *Object, collapse, mirror bool) (func(), error) {
	other, brother, err := c.mirrorTarget(obj, mirror)
	if err != nil || other == nil {
		return noMirror, err
	}
	blayer, bidx := other.locate(brother)
	if blayer == nil {
		return nil, newNotFound(other.name, brother.id, "brother source")
	}
	return func() {
		other.bus.hold()
		defer other.bus.release()

		other.removeSource(blayer, bidx, collapse)
	}, nil
}

func withComposition(err error, comp string) error {
	var ee *EditError
	if errors.As(err, &ee) && ee.Composition == "" {
		cp := *ee
		cp.Composition = comp
		return &cp
	}
	return err
}
