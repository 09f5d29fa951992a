package timeline

import (
	"fmt"
	"sort"
)

// Registry indexes objects and compositions by identifier.
//
// Brother and linked-composition associations are stored as identifiers and
// resolved here, so neither side owns the other. Compositions that mirror
// edits onto each other must share a registry.
type Registry struct {
	objects      map[ID]*Object
	compositions map[string]*Composition
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		objects:      make(map[ID]*Object),
		compositions: make(map[string]*Composition),
	}
}

// Register makes obj resolvable by ID. Registering the same object twice is a
// no-op; registering a different object under a taken ID fails.
func (r *Registry) Register(obj *Object) error {
	if existing, ok := r.objects[obj.id]; ok {
		if existing == obj {
			return nil
		}
		return fmt.Errorf("register %s: id already taken by %q", obj.id, existing.name)
	}
	r.objects[obj.id] = obj
	return nil
}

// Lookup returns the object registered under id.
func (r *Registry) Lookup(id ID) (*Object, bool) {
	obj, ok := r.objects[id]
	return obj, ok
}

// Objects returns every registered object ordered by ID.
func (r *Registry) Objects() []*Object {
	out := make([]*Object, 0, len(r.objects))
	for _, obj := range r.objects {
		out = append(out, obj)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// LinkObjects registers a and b and makes them brothers of each other.
// Any previous brother of either side is released.
func (r *Registry) LinkObjects(a, b *Object) error {
	if a == b {
		return fmt.Errorf("link %s: an object cannot be its own brother", a.id)
	}
	if a.kind != b.kind {
		return fmt.Errorf("link %s with %s: kinds differ (%s, %s)", a.id, b.id, a.kind, b.kind)
	}
	if err := r.Register(a); err != nil {
		return err
	}
	if err := r.Register(b); err != nil {
		return err
	}
	r.release(a)
	r.release(b)
	a.brother, b.brother = b.id, a.id
	return nil
}

// UnlinkObject clears obj's brother association on both sides.
func (r *Registry) UnlinkObject(obj *Object) {
	r.release(obj)
}

func (r *Registry) release(obj *Object) {
	if obj.brother == "" {
		return
	}
	if other, ok := r.objects[obj.brother]; ok && other.brother == obj.id {
		other.brother = ""
	}
	obj.brother = ""
}

// brotherOf resolves obj's brother. A declared brother that is not registered
// is reported as NOT_FOUND.
func (r *Registry) brotherOf(obj *Object) (*Object, error) {
	if obj == nil || obj.brother == "" {
		return nil, nil
	}
	b, ok := r.objects[obj.brother]
	if !ok {
		return nil, newNotFound("", obj.brother, "brother of "+string(obj.id))
	}
	return b, nil
}

// Composition returns the composition registered under name.
func (r *Registry) Composition(name string) (*Composition, bool) {
	c, ok := r.compositions[name]
	return c, ok
}

func (r *Registry) addComposition(c *Composition) error {
	if _, ok := r.compositions[c.name]; ok {
		return fmt.Errorf("composition %q already registered", c.name)
	}
	r.compositions[c.name] = c
	return nil
}
