package timeline

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/strata/internal/rendergraph"
)

// ID identifies a temporal object. IDs are stable for the object's lifetime
// and are what brother associations and the journal refer to.
type ID string

// Kind is the role of an object, which decides its priority tier.
type Kind int

const (
	KindSource Kind = iota + 1
	KindGlobalEffect
	KindSimpleEffect
	KindComplexEffect
	KindTransition
)

func (k Kind) String() string {
	switch k {
	case KindSource:
		return "source"
	case KindGlobalEffect:
		return "global-effect"
	case KindSimpleEffect:
		return "simple-effect"
	case KindComplexEffect:
		return "complex-effect"
	case KindTransition:
		return "transition"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	for k := KindSource; k <= KindTransition; k++ {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown object kind %q", s)
}

// MediaType is the media carried by a composition.
type MediaType int

const (
	MediaVideo MediaType = iota + 1
	MediaAudio
)

func (m MediaType) String() string {
	switch m {
	case MediaVideo:
		return "video"
	case MediaAudio:
		return "audio"
	default:
		return fmt.Sprintf("media(%d)", int(m))
	}
}

// ParseMediaType is the inverse of MediaType.String.
func ParseMediaType(s string) (MediaType, error) {
	switch s {
	case "video":
		return MediaVideo, nil
	case "audio":
		return MediaAudio, nil
	default:
		return 0, fmt.Errorf("unknown media type %q", s)
	}
}

// Object is a temporal object: an interval on the timeline carrying a
// priority that is pushed to the render-graph node it owns.
//
// Start, duration and priority are only mutated by the composition that owns
// the object. The brother is a non-owning reference resolved through a
// Registry.
type Object struct {
	id         ID
	name       string
	kind       Kind
	start      time.Duration
	duration   time.Duration
	mediaStart time.Duration
	priority   Priority
	node       rendergraph.Node
	brother    ID
	settings   *ExportSettings

	// bridged sources, transitions only
	from, to ID

	// composition currently holding the object, "" when free
	owner string
}

// ObjectOption configures an Object at construction.
type ObjectOption func(*Object)

// WithID overrides the generated UUIDv7 identifier.
func WithID(id ID) ObjectOption {
	return func(o *Object) { o.id = id }
}

// WithStart sets the initial start time.
func WithStart(start time.Duration) ObjectOption {
	return func(o *Object) { o.start = start }
}

// WithMediaStart sets the offset into the source media.
func WithMediaStart(offset time.Duration) ObjectOption {
	return func(o *Object) { o.mediaStart = offset }
}

// WithNode attaches an existing render-graph node.
func WithNode(n rendergraph.Node) ObjectOption {
	return func(o *Object) { o.node = n }
}

// WithSettings sets the native export profile of a source.
func WithSettings(s ExportSettings) ObjectOption {
	return func(o *Object) {
		cp := s
		o.settings = &cp
	}
}

// NewObject creates a free object of the given kind. Without WithNode an
// in-memory rendergraph.Element named after the object is created.
func NewObject(kind Kind, name string, duration time.Duration, opts ...ObjectOption) *Object {
	o := &Object{
		kind:     kind,
		name:     name,
		duration: duration,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.id == "" {
		o.id = ID(uuid.Must(uuid.NewV7()).String())
	}
	if o.node == nil {
		o.node = rendergraph.NewElement(name)
	}
	return o
}

// NewSource creates a free source object.
func NewSource(name string, duration time.Duration, opts ...ObjectOption) *Object {
	return NewObject(KindSource, name, duration, opts...)
}

func (o *Object) ID() ID { return o.id }
func (o *Object) Name() string { return o.name }
func (o *Object) Kind() Kind { return o.kind }
func (o *Object) Start() time.Duration { return o.start }
func (o *Object) Duration() time.Duration { return o.duration }
func (o *Object) End() time.Duration { return o.start + o.duration }
func (o *Object) MediaStart() time.Duration { return o.mediaStart }
func (o *Object) Priority() Priority { return o.priority }
func (o *Object) Node() rendergraph.Node { return o.node }
func (o *Object) Brother() ID { return o.brother }
func (o *Object) Owner() string { return o.owner }

// Bridges returns the two sources a transition sits between.
func (o *Object) Bridges() (from, to ID) { return o.from, o.to }

// Settings returns a copy of the native export profile, or nil.
func (o *Object) Settings() *ExportSettings {
	if o.settings == nil {
		return nil
	}
	cp := *o.settings
	return &cp
}

// SetStartDuration changes the interval of a free object. Objects placed in a
// composition are repositioned through the composition's editing operations.
func (o *Object) SetStartDuration(start, duration time.Duration) error {
	if o.owner != "" {
		return &EditError{
			Code:        ErrCodeUnsupported,
			Message:     "placed objects are repositioned by their composition",
			Object:      o.id,
			Composition: o.owner,
		}
	}
	if err := checkInterval(o.id, start, duration); err != nil {
		return err
	}
	o.start, o.duration = start, duration
	return nil
}

func (o *Object) String() string {
	return fmt.Sprintf("%s[%s %v+%v p=%d]", o.kind, o.name, o.start, o.duration, o.priority)
}

// overlaps reports whether the half-open spans [start,end) intersect.
func (o *Object) overlaps(start, end time.Duration) bool {
	return o.start < end && start < o.End()
}

func (o *Object) setStart(start time.Duration) {
	o.start = start
}

// setPriority stores p and pushes it to the render-graph node.
func (o *Object) setPriority(p Priority) {
	o.priority = p
	o.node.SetPriority(uint32(p))
}

func checkInterval(id ID, start, duration time.Duration) error {
	if start < 0 {
		return &EditError{
			Code:    ErrCodeInvalidInterval,
			Message: fmt.Sprintf("negative start %v", start),
			Object:  id,
		}
	}
	if duration <= 0 {
		return &EditError{
			Code:    ErrCodeInvalidInterval,
			Message: fmt.Sprintf("non-positive duration %v", duration),
			Object:  id,
		}
	}
	return nil
}
