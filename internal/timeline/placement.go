package timeline

import (
	"strconv"
	"time"
)

// AddSource places obj at its own start time in the layer at position
// (1 = top, -1 = bottom). Sources in a layer may overlap; the sequence is kept
// sorted by start and ties go before existing objects with the same start.
//
// With mirror set and a linked composition, obj's brother is placed in the
// same layer of the linked composition with the same interval.
func (c *Composition) AddSource(obj *Object, position int, mirror bool) error {
	c.bus.hold()
	defer c.bus.release()

	if err := c.checkFree(obj, KindSource); err != nil {
		return err
	}
	layer, err := c.layerAt(position)
	if err != nil {
		return err
	}
	if err := checkInterval(obj.id, obj.start, obj.duration); err != nil {
		return err
	}
	mirrored, err := c.prepareMirrorPlacement(obj, layer.position, obj.start, false, mirror)
	if err != nil {
		return err
	}

	c.placeSource(layer, obj)
	mirrored()
	return nil
}

// InsertSourceAfter ripples obj in right after anchor: obj starts where anchor
// ends and, with push set, every later object in anchor's layer moves right by
// obj's duration. A nil anchor, or one this composition does not hold, places
// obj at time 0 in the top layer.
func (c *Composition) InsertSourceAfter(obj, anchor *Object, push, mirror bool) error {
	layer, next, start := c.layers[0], 0, time.Duration(0)
	if l, i := c.locate(anchor); l != nil {
		layer, next, start = l, i+1, anchor.End()
	}
	return c.insertAfter(obj, layer, next, start, push, mirror)
}

// AppendSource places obj right after the last object of the layer at
// position, or at 0 when the layer is empty. Nothing is pushed.
func (c *Composition) AppendSource(obj *Object, position int, mirror bool) error {
	layer, err := c.layerAt(position)
	if err != nil {
		return err
	}
	var start time.Duration
	if last := layer.Last(); last != nil {
		start = last.End()
	}
	return c.insertAfter(obj, layer, layer.Len(), start, false, mirror)
}

// PrependSource places obj at time 0 in the top layer, pushing everything
// else right by its duration when push is set.
func (c *Composition) PrependSource(obj *Object, push, mirror bool) error {
	return c.insertAfter(obj, c.layers[0], 0, 0, push, mirror)
}

func (c *Composition) insertAfter(obj *Object, layer *Layer, next int, start time.Duration, push, mirror bool) error {
	c.bus.hold()
	defer c.bus.release()

	if err := c.checkFree(obj, KindSource); err != nil {
		return err
	}
	if err := checkInterval(obj.id, start, obj.duration); err != nil {
		return err
	}
	mirrored, err := c.prepareMirrorPlacement(obj, layer.position, start, push, mirror)
	if err != nil {
		return err
	}

	obj.setStart(start)
	if push {
		layer.shift(next, layer.Len(), obj.duration)
	}
	c.placeSource(layer, obj)
	mirrored()
	return nil
}

// placeSource performs the placement itself; every check has already passed.
func (c *Composition) placeSource(layer *Layer, obj *Object) {
	c.logger.Debug("placing source",
		"composition", c.name,
		"source", obj.id,
		"layer", layer.position,
		"start", obj.start,
		"duration", obj.duration,
	)
	layer.insertAt(layer.insertionIndex(obj.start), obj)
	obj.setPriority(layer.minPriority)
	obj.owner = c.name
	c.attach(obj)
	c.emit(EventSourceAdded, obj)
	c.reanchorTransitions()
	c.refresh()
}

// MoveSource moves obj to newIndex (End for "after the last object") within
// its layer. The object lands right after its new predecessor, or at 0.
//
// With collapse set, objects that followed obj move left by its duration.
// With push set, objects at and after the target move right just enough to
// make room. Transitions bridging obj are dropped. Moving to the current
// index or the one right after it does nothing.
func (c *Composition) MoveSource(obj *Object, newIndex int, collapse, push, mirror bool) error {
	c.bus.hold()
	defer c.bus.release()

	layer, oldIndex := c.locate(obj)
	if layer == nil {
		return newNotFound(c.name, idOf(obj), "source")
	}
	if newIndex == End {
		newIndex = layer.Len()
	}
	if newIndex < 0 || newIndex > layer.Len() {
		return &EditError{
			Code:        ErrCodeNotFound,
			Message:     "move target outside layer",
			Object:      obj.id,
			Composition: c.name,
			Details:     map[string]string{"index": strconv.Itoa(newIndex)},
		}
	}
	if newIndex == oldIndex || newIndex == oldIndex+1 {
		c.logger.Warn("source already at requested position",
			"composition", c.name, "source", obj.id, "index", oldIndex)
		return nil
	}
	mirrored, err := c.prepareMirrorMove(obj, layer, newIndex, collapse, push, mirror)
	if err != nil {
		return err
	}

	c.moveSource(layer, oldIndex, newIndex, collapse, push)
	mirrored()
	return nil
}

func (c *Composition) moveSource(layer *Layer, oldIndex, newIndex int, collapse, push bool) {
	obj := layer.At(oldIndex)
	c.logger.Debug("moving source",
		"composition", c.name, "source", obj.id, "from", oldIndex, "to", newIndex)
	c.dropTransitionsOf(obj)

	// Lift the object to the top of the band so it stays visible while its
	// neighbours are shifted around it.
	obj.setPriority(layer.maxPriority)

	n := layer.Len()
	if collapse && oldIndex != n-1 {
		layer.shift(oldIndex+1, n, -obj.duration)
	}

	var predEnd time.Duration
	if newIndex > 0 {
		predEnd = layer.At(newIndex - 1).End()
	}
	if push && newIndex != n {
		floor := predEnd + obj.duration
		for i := newIndex; i < n; i++ {
			if i == oldIndex {
				continue
			}
			o := layer.At(i)
			if o.start >= floor {
				break
			}
			o.setStart(floor)
			floor += o.duration
		}
	}
	obj.setStart(predEnd)

	layer.removeAt(oldIndex)
	if newIndex > oldIndex {
		newIndex--
	}
	layer.insertAt(newIndex, obj)
	if !layer.sorted() {
		layer.resort()
	}

	obj.setPriority(layer.minPriority)
	c.reanchorTransitions()
	c.refresh()
}

// RemoveSource removes obj from its layer. With collapse set, every later
// object in the layer moves left by obj's duration. Transitions bridging obj
// are removed with it.
func (c *Composition) RemoveSource(obj *Object, collapse, mirror bool) error {
	c.bus.hold()
	defer c.bus.release()

	layer, idx := c.locate(obj)
	if layer == nil {
		return newNotFound(c.name, idOf(obj), "source")
	}
	mirrored, err := c.prepareMirrorRemoval(obj, collapse, mirror)
	if err != nil {
		return err
	}

	c.removeSource(layer, idx, collapse)
	mirrored()
	return nil
}

func (c *Composition) removeSource(layer *Layer, idx int, collapse bool) {
	obj := layer.At(idx)
	c.logger.Debug("removing source",
		"composition", c.name, "source", obj.id, "collapse", collapse)
	c.dropTransitionsOf(obj)
	c.detach(obj)
	layer.removeAt(idx)
	obj.owner = ""
	if collapse {
		layer.shift(idx, layer.Len(), -obj.duration)
		if !layer.sorted() {
			layer.resort()
		}
	}
	c.emit(EventSourceRemoved, obj)
	c.reanchorTransitions()
	c.refresh()
}

func idOf(obj *Object) ID {
	if obj == nil {
		return ""
	}
	return obj.id
}
