package timeline

import (
	"errors"
	"fmt"
	"math"
)

// Priority is a render-graph stacking value. Lower values render on top.
type Priority uint32

// MaxPriority is the lowest rendering precedence, reserved for the default
// gap-filling source.
const MaxPriority Priority = math.MaxUint32

// Bands assigns each tier a contiguous priority range. From highest to lowest
// precedence: global effects, simple effects, complex effects, transitions,
// source layers. The bands must not overlap and are fixed for the lifetime of
// a composition.
type Bands struct {
	GlobalSize     uint32 `mapstructure:"global_size"`
	SimpleSize     uint32 `mapstructure:"simple_size"`
	ComplexSize    uint32 `mapstructure:"complex_size"`
	TransitionSize uint32 `mapstructure:"transition_size"`
	LayerBase      uint32 `mapstructure:"layer_base"`
	LayerWidth     uint32 `mapstructure:"layer_width"`
	Layers         int    `mapstructure:"layers"`
}

// DefaultBands returns the stock layout: a single source layer at [2048, 2060]
// under four effect bands packed from 0.
func DefaultBands() Bands {
	return Bands{
		GlobalSize:     128,
		SimpleSize:     896,
		ComplexSize:    512,
		TransitionSize: 512,
		LayerBase:      2048,
		LayerWidth:     13,
		Layers:         1,
	}
}

// Validate checks that every band is non-empty, that the effect bands fit
// below the first layer and that the last layer stays clear of MaxPriority.
func (b Bands) Validate() error {
	var errs []error
	if b.GlobalSize == 0 || b.SimpleSize == 0 || b.ComplexSize == 0 || b.TransitionSize == 0 {
		errs = append(errs, errors.New("effect and transition bands must be non-empty"))
	}
	if b.Layers < 1 {
		errs = append(errs, fmt.Errorf("at least one layer is required, got %d", b.Layers))
	}
	if b.LayerWidth < 2 {
		errs = append(errs, fmt.Errorf("layer width must leave room for the move excursion, got %d", b.LayerWidth))
	}
	effects := uint64(b.GlobalSize) + uint64(b.SimpleSize) + uint64(b.ComplexSize) + uint64(b.TransitionSize)
	if effects > uint64(b.LayerBase) {
		errs = append(errs, fmt.Errorf("effect bands end at %d, past layer base %d", effects, b.LayerBase))
	}
	if b.Layers >= 1 {
		last := uint64(b.LayerBase) + uint64(b.Layers)*uint64(b.LayerWidth)
		if last > uint64(MaxPriority) {
			errs = append(errs, fmt.Errorf("layer bands reach the default source priority"))
		}
	}
	return errors.Join(errs...)
}

func (b Bands) simpleBase() Priority     { return Priority(b.GlobalSize) }
func (b Bands) complexBase() Priority    { return b.simpleBase() + Priority(b.SimpleSize) }
func (b Bands) transitionBase() Priority { return b.complexBase() + Priority(b.ComplexSize) }

// layerRange returns the inclusive band of layer n (1-based).
func (b Bands) layerRange(n int) (lo, hi Priority) {
	lo = Priority(b.LayerBase) + Priority(n-1)*Priority(b.LayerWidth)
	return lo, lo + Priority(b.LayerWidth) - 1
}

// globalPriority is the priority of the global effect at index i.
func (b Bands) globalPriority(i int) (Priority, bool) {
	if i < 0 || uint32(i) >= b.GlobalSize {
		return 0, false
	}
	return Priority(i), true
}

// simplePriority is the priority of simple-effect row i.
func (b Bands) simplePriority(i int) (Priority, bool) {
	if i < 0 || uint32(i) >= b.SimpleSize {
		return 0, false
	}
	return b.simpleBase() + Priority(i), true
}

// TierOf returns the tier name owning p, for diagnostics and invariant checks.
func (b Bands) TierOf(p Priority) string {
	switch {
	case p == MaxPriority:
		return "default"
	case p < b.simpleBase():
		return KindGlobalEffect.String()
	case p < b.complexBase():
		return KindSimpleEffect.String()
	case p < b.transitionBase():
		return KindComplexEffect.String()
	case p < b.transitionBase()+Priority(b.TransitionSize):
		return KindTransition.String()
	case p >= Priority(b.LayerBase):
		return KindSource.String()
	default:
		return "unassigned"
	}
}
