package timeline

import (
	"log/slog"
	"slices"
	"strconv"
	"time"

	"github.com/roach88/strata/internal/rendergraph"
)

// End is the move target meaning "after the last object of the layer".
const End = -1

// Composition combines layered sources, effects and transitions into a single
// timeline track and owns the priorities of everything it contains.
//
// Sandwich view, top (highest precedence) to bottom:
//
//	[ global effects, spanning the whole composition ]
//	[ simple effects, several rows, may overlap      ]
//	[ complex effects, non-overlapping               ]
//	[ transitions, non-overlapping                   ]
//	[ source layers                                  ]
//	[ default source, fills gaps                     ]
//
// A Composition is a single-writer structure. Callers serialize access; every
// public operation runs to completion before returning and delivers its
// notifications at the end (see On).
type Composition struct {
	name  string
	media MediaType
	bands Bands

	layers      []*Layer
	global      []*Object
	simple      [][]*Object
	complex     []*Object
	transitions []*Object

	defaultSource *Object
	condensed     []condensedEntry

	linked    string
	registry  *Registry
	container rendergraph.Container
	bus       *bus
	logger    *slog.Logger
}

// Option configures a Composition.
type Option func(*Composition)

// WithBands overrides DefaultBands.
func WithBands(b Bands) Option {
	return func(c *Composition) { c.bands = b }
}

// WithRegistry shares a registry between compositions. Linked compositions
// must use the same registry.
func WithRegistry(r *Registry) Option {
	return func(c *Composition) { c.registry = r }
}

// WithContainer sets the render-graph container receiving child nodes.
func WithContainer(ct rendergraph.Container) Option {
	return func(c *Composition) { c.container = ct }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Composition) { c.logger = l }
}

// NewComposition creates a composition with the layers described by its bands.
func NewComposition(name string, media MediaType, opts ...Option) (*Composition, error) {
	c := &Composition{
		name:  name,
		media: media,
		bands: DefaultBands(),
		bus:   newBus(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.bands.Validate(); err != nil {
		return nil, err
	}
	if c.registry == nil {
		c.registry = NewRegistry()
	}
	if c.container == nil {
		c.container = rendergraph.NewBin("composition-" + name)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if err := c.registry.addComposition(c); err != nil {
		return nil, err
	}
	for n := 1; n <= c.bands.Layers; n++ {
		lo, hi := c.bands.layerRange(n)
		c.layers = append(c.layers, newLayer(n, lo, hi))
	}
	return c, nil
}

// Name returns the composition name.
func (c *Composition) Name() string { return c.name }

// Media returns the media type the composition carries.
func (c *Composition) Media() MediaType { return c.media }

// Bands returns the priority layout.
func (c *Composition) Bands() Bands { return c.bands }

// Registry returns the registry resolving brothers and linked compositions.
func (c *Composition) Registry() *Registry { return c.registry }

// Container returns the render-graph container.
func (c *Composition) Container() rendergraph.Container { return c.container }

// On registers a listener for name and returns a function removing it.
// Listeners run synchronously in registration order once the operation that
// emitted the event has completed.
func (c *Composition) On(name EventName, fn Listener) func() {
	return c.bus.on(name, fn)
}

// Layers returns the source layers, top first.
func (c *Composition) Layers() []*Layer { return slices.Clone(c.layers) }

// Layer returns the layer at vertical position n (1 = top).
func (c *Composition) Layer(n int) (*Layer, bool) {
	if n < 1 || n > len(c.layers) {
		return nil, false
	}
	return c.layers[n-1], true
}

// Len returns the number of sources across all layers.
func (c *Composition) Len() int {
	n := 0
	for _, l := range c.layers {
		n += l.Len()
	}
	return n
}

// Duration returns the end of the last source.
func (c *Composition) Duration() time.Duration {
	var d time.Duration
	for _, l := range c.layers {
		d = max(d, l.End())
	}
	return d
}

// Contains reports whether obj is placed in this composition.
func (c *Composition) Contains(obj *Object) bool {
	return obj != nil && obj.owner == c.name
}

// GlobalEffects returns the global effects, highest priority first.
func (c *Composition) GlobalEffects() []*Object { return slices.Clone(c.global) }

// SimpleEffects returns the simple-effect rows, top row first.
func (c *Composition) SimpleEffects() [][]*Object {
	out := make([][]*Object, len(c.simple))
	for i, row := range c.simple {
		out[i] = slices.Clone(row)
	}
	return out
}

// ComplexEffects returns the complex effects sorted by start.
func (c *Composition) ComplexEffects() []*Object { return slices.Clone(c.complex) }

// Transitions returns the transitions sorted by start.
func (c *Composition) Transitions() []*Object { return slices.Clone(c.transitions) }

// DefaultSource returns the gap-filling source, or nil.
func (c *Composition) DefaultSource() *Object { return c.defaultSource }

// SetDefaultSource installs obj as the gap-filling source with the lowest
// possible precedence, evicting the previous one from the render graph.
func (c *Composition) SetDefaultSource(obj *Object) error {
	if obj.owner != "" && obj != c.defaultSource {
		return &EditError{Code: ErrCodeAlreadyPresent, Message: "object already placed", Object: obj.id, Composition: obj.owner}
	}
	if err := c.registry.Register(obj); err != nil {
		return &EditError{Code: ErrCodeAlreadyPresent, Message: err.Error(), Object: obj.id, Composition: c.name}
	}
	if old := c.defaultSource; old != nil {
		if old == obj {
			return nil
		}
		c.detach(old)
		old.owner = ""
	}
	obj.setPriority(MaxPriority)
	obj.owner = c.name
	c.attach(obj)
	c.defaultSource = obj
	c.logger.Debug("default source set", "composition", c.name, "source", obj.id)
	return nil
}

// layerAt resolves a vertical position: 1..n selects a layer, -1 the bottom
// layer. Position 0 would need a layer created after construction.
func (c *Composition) layerAt(position int) (*Layer, error) {
	switch {
	case position == 0:
		return nil, newUnsupported(c.name, "layers cannot be created after construction")
	case position == -1:
		return c.layers[len(c.layers)-1], nil
	}
	l, ok := c.Layer(position)
	if !ok {
		return nil, &EditError{
			Code:        ErrCodeNotFound,
			Message:     "layer not found",
			Composition: c.name,
			Details:     map[string]string{"position": strconv.Itoa(position)},
		}
	}
	return l, nil
}

// locate finds the layer and index holding obj.
func (c *Composition) locate(obj *Object) (*Layer, int) {
	if obj == nil || obj.owner != c.name || obj.kind != KindSource {
		return nil, -1
	}
	for _, l := range c.layers {
		if i := l.IndexOf(obj); i >= 0 {
			return l, i
		}
	}
	return nil, -1
}

// checkFree ensures obj can be placed: of the right kind, not owned, and not
// shadowing another registered object.
func (c *Composition) checkFree(obj *Object, kind Kind) error {
	if obj == nil {
		return &EditError{Code: ErrCodeNotFound, Message: "nil object", Composition: c.name}
	}
	if obj.kind != kind {
		return &EditError{
			Code:        ErrCodeUnsupported,
			Message:     "a " + obj.kind.String() + " cannot be placed as a " + kind.String(),
			Object:      obj.id,
			Composition: c.name,
		}
	}
	if obj.owner != "" {
		return &EditError{Code: ErrCodeAlreadyPresent, Message: "object already placed", Object: obj.id, Composition: obj.owner}
	}
	if existing, ok := c.registry.Lookup(obj.id); ok && existing != obj {
		return &EditError{Code: ErrCodeAlreadyPresent, Message: "id taken by another object", Object: obj.id, Composition: c.name}
	}
	return nil
}

func (c *Composition) attach(obj *Object) {
	_ = c.registry.Register(obj)
	if err := c.container.Add(obj.node); err != nil {
		c.logger.Error("render graph refused node", "composition", c.name, "object", obj.id, "error", err)
	}
}

func (c *Composition) detach(obj *Object) {
	if err := c.container.Remove(obj.node); err != nil {
		c.logger.Error("render graph refused removal", "composition", c.name, "object", obj.id, "error", err)
	}
}

func (c *Composition) emit(name EventName, obj *Object) {
	c.bus.emit(Event{Name: name, Composition: c.name, Object: obj})
}

// refresh runs after every structural change: global effects follow the
// composition duration and the condensed view is rebuilt.
func (c *Composition) refresh() {
	c.syncGlobalSpans()
	c.UpdateCondensed()
}
