package rendergraph

import (
	"errors"
	"fmt"
	"slices"
)

// Node is a render-graph element owned by a temporal object.
type Node interface {
	Name() string
	Priority() uint32
	SetPriority(p uint32)
}

// Container is the composition-level element that holds child nodes.
type Container interface {
	Add(n Node) error
	Remove(n Node) error
	Contains(n Node) bool
}

// PadEventKind distinguishes pad lifecycle events.
type PadEventKind int

const (
	// PadAdded is forwarded when the container exposes a new output pad.
	PadAdded PadEventKind = iota + 1
	// PadRemoved is forwarded when an output pad goes away.
	PadRemoved
)

func (k PadEventKind) String() string {
	switch k {
	case PadAdded:
		return "pad-added"
	case PadRemoved:
		return "pad-removed"
	default:
		return fmt.Sprintf("pad-event(%d)", int(k))
	}
}

// PadEvent is a stream negotiation event forwarded by a container.
type PadEvent struct {
	Kind PadEventKind
	Pad  string
}

var (
	// ErrAlreadyAdded is returned when a node is added twice to the same bin.
	ErrAlreadyAdded = errors.New("node already in container")
	// ErrNotInContainer is returned when removing a node the bin does not hold.
	ErrNotInContainer = errors.New("node not in container")
)

// Element is an in-memory Node.
type Element struct {
	name     string
	priority uint32
	history  []uint32
}

// NewElement creates an element with priority 0 and an empty write history.
func NewElement(name string) *Element {
	return &Element{name: name}
}

// Name returns the element name.
func (e *Element) Name() string { return e.name }

// Priority returns the last priority written.
func (e *Element) Priority() uint32 { return e.priority }

// SetPriority records and applies a priority write.
func (e *Element) SetPriority(p uint32) {
	e.priority = p
	e.history = append(e.history, p)
}

// History returns a copy of every priority written, oldest first.
func (e *Element) History() []uint32 {
	return slices.Clone(e.history)
}

// Bin is an in-memory Container. Children keep insertion order.
type Bin struct {
	name     string
	children []Node
	padFns   []func(PadEvent)
	pads     []string
}

// NewBin creates an empty bin.
func NewBin(name string) *Bin {
	return &Bin{name: name}
}

// Name returns the bin name.
func (b *Bin) Name() string { return b.name }

// Add appends n to the bin. The first child exposes the bin's output pad.
func (b *Bin) Add(n Node) error {
	if b.Contains(n) {
		return fmt.Errorf("add %s to %s: %w", n.Name(), b.name, ErrAlreadyAdded)
	}
	b.children = append(b.children, n)
	if len(b.children) == 1 {
		b.exposePad()
	}
	return nil
}

// Remove detaches n from the bin. Removing the last child withdraws the pad.
func (b *Bin) Remove(n Node) error {
	idx := slices.Index(b.children, n)
	if idx < 0 {
		return fmt.Errorf("remove %s from %s: %w", n.Name(), b.name, ErrNotInContainer)
	}
	b.children = slices.Delete(b.children, idx, idx+1)
	if len(b.children) == 0 {
		b.withdrawPad()
	}
	return nil
}

// Contains reports whether n is a child of the bin.
func (b *Bin) Contains(n Node) bool {
	return slices.Contains(b.children, n)
}

// Children returns a copy of the bin's children in insertion order.
func (b *Bin) Children() []Node {
	return slices.Clone(b.children)
}

// OnPad registers a listener for forwarded pad events.
func (b *Bin) OnPad(fn func(PadEvent)) {
	b.padFns = append(b.padFns, fn)
}

// Pads returns the names of currently exposed pads.
func (b *Bin) Pads() []string {
	return slices.Clone(b.pads)
}

func (b *Bin) exposePad() {
	pad := b.name + ".src"
	b.pads = append(b.pads, pad)
	b.forward(PadEvent{Kind: PadAdded, Pad: pad})
}

func (b *Bin) withdrawPad() {
	for _, pad := range b.pads {
		b.forward(PadEvent{Kind: PadRemoved, Pad: pad})
	}
	b.pads = nil
}

func (b *Bin) forward(ev PadEvent) {
	for _, fn := range b.padFns {
		fn(ev)
	}
}
