package engine

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/strata/internal/ir"
	"github.com/roach88/strata/internal/timeline"
)

// Operation names accepted by Apply.
const (
	OpAddSource           = "add_source"
	OpInsertSourceAfter   = "insert_source_after"
	OpAppendSource        = "append_source"
	OpPrependSource       = "prepend_source"
	OpMoveSource          = "move_source"
	OpRemoveSource        = "remove_source"
	OpSetDefaultSource    = "set_default_source"
	OpAddGlobalEffect     = "add_global_effect"
	OpRemoveGlobalEffect  = "remove_global_effect"
	OpAddSimpleEffect     = "add_simple_effect"
	OpRemoveSimpleEffect  = "remove_simple_effect"
	OpAddComplexEffect    = "add_complex_effect"
	OpRemoveComplexEffect = "remove_complex_effect"
	OpAddTransition       = "add_transition"
	OpMoveTransition      = "move_transition"
	OpRemoveTransition    = "remove_transition"
)

// handler declares the object arguments an op needs, resolved before run is
// called so the timeline never sees an unknown object.
type handler struct {
	objects  []string // required object IDs
	optional []string // optional object IDs
	ints     []string // required integers
	run      func(c *timeline.Composition, a *args) error
}

var handlers = map[string]handler{
	OpAddSource: {objects: []string{"object"}, run: func(c *timeline.Composition, a *args) error {
		return c.AddSource(a.obj("object"), a.int("position", 1), a.flag("mirror", true))
	}},
	OpInsertSourceAfter: {objects: []string{"object"}, optional: []string{"anchor"}, run: func(c *timeline.Composition, a *args) error {
		return c.InsertSourceAfter(a.obj("object"), a.obj("anchor"), a.flag("push", true), a.flag("mirror", true))
	}},
	OpAppendSource: {objects: []string{"object"}, run: func(c *timeline.Composition, a *args) error {
		return c.AppendSource(a.obj("object"), a.int("position", 1), a.flag("mirror", true))
	}},
	OpPrependSource: {objects: []string{"object"}, run: func(c *timeline.Composition, a *args) error {
		return c.PrependSource(a.obj("object"), a.flag("push", true), a.flag("mirror", true))
	}},
	OpMoveSource: {objects: []string{"object"}, ints: []string{"index"}, run: func(c *timeline.Composition, a *args) error {
		return c.MoveSource(a.obj("object"), a.int("index", 0),
			a.flag("collapse", true), a.flag("push", true), a.flag("mirror", true))
	}},
	OpRemoveSource: {objects: []string{"object"}, run: func(c *timeline.Composition, a *args) error {
		return c.RemoveSource(a.obj("object"), a.flag("collapse", true), a.flag("mirror", true))
	}},
	OpSetDefaultSource: {objects: []string{"object"}, run: func(c *timeline.Composition, a *args) error {
		return c.SetDefaultSource(a.obj("object"))
	}},
	OpAddGlobalEffect: {objects: []string{"object"}, run: func(c *timeline.Composition, a *args) error {
		return c.AddGlobalEffect(a.obj("object"), a.int("order", timeline.End), a.flag("mirror", true))
	}},
	OpRemoveGlobalEffect: {objects: []string{"object"}, run: func(c *timeline.Composition, a *args) error {
		return c.RemoveGlobalEffect(a.obj("object"), a.flag("mirror", true))
	}},
	OpAddSimpleEffect: {objects: []string{"object"}, run: func(c *timeline.Composition, a *args) error {
		return c.AddSimpleEffect(a.obj("object"), a.int("order", timeline.End), a.flag("mirror", true))
	}},
	OpRemoveSimpleEffect: {objects: []string{"object"}, run: func(c *timeline.Composition, a *args) error {
		return c.RemoveSimpleEffect(a.obj("object"), a.flag("mirror", true))
	}},
	OpAddComplexEffect: {objects: []string{"object"}, run: func(c *timeline.Composition, a *args) error {
		return c.AddComplexEffect(a.obj("object"), a.flag("mirror", true))
	}},
	OpRemoveComplexEffect: {objects: []string{"object"}, run: func(c *timeline.Composition, a *args) error {
		return c.RemoveComplexEffect(a.obj("object"), a.flag("mirror", true))
	}},
	OpAddTransition: {objects: []string{"object", "from", "to"}, run: func(c *timeline.Composition, a *args) error {
		return c.AddTransition(a.obj("object"), a.obj("from"), a.obj("to"), a.flag("mirror", true))
	}},
	OpMoveTransition: {objects: []string{"object", "from", "to"}, run: func(c *timeline.Composition, a *args) error {
		return c.MoveTransition(a.obj("object"), a.obj("from"), a.obj("to"), a.flag("mirror", true))
	}},
	OpRemoveTransition: {objects: []string{"object"}, run: func(c *timeline.Composition, a *args) error {
		return c.RemoveTransition(a.obj("object"), a.flag("reorder", false), a.flag("mirror", true))
	}},
}

// Ops returns every operation name, sorted.
func Ops() []string {
	ops := make([]string, 0, len(handlers))
	for op := range handlers {
		ops = append(ops, op)
	}
	slices.Sort(ops)
	return ops
}

// dispatch runs cmd against its composition. Every argument is type-checked
// and every named object resolved before the timeline is touched.
func (e *Engine) dispatch(cmd ir.Command) error {
	h, ok := handlers[cmd.Op]
	if !ok {
		return newUnknownOp(cmd.Op)
	}
	c, ok := e.timeline.Composition(cmd.Composition)
	if !ok {
		return newUnknownComposition(cmd.Op, cmd.Composition)
	}
	a, err := resolveArgs(cmd.Op, h, cmd.Args, e.timeline.Registry())
	if err != nil {
		return err
	}
	return h.run(c, a)
}

type args struct {
	raw     ir.Object
	objects map[string]*timeline.Object
}

var (
	objectKeys = []string{"object", "anchor", "from", "to"}
	intKeys    = []string{"position", "index", "order"}
	flagKeys   = []string{"mirror", "push", "collapse", "reorder"}
)

func resolveArgs(op string, h handler, raw ir.Object, reg *timeline.Registry) (*args, error) {
	var errs []error
	for _, key := range raw.SortedKeys() {
		if err := checkArg(op, key, raw[key]); err != nil {
			errs = append(errs, err)
		}
	}
	for _, key := range h.ints {
		if _, ok := raw[key]; !ok {
			errs = append(errs, newInvalidArgs(op, fmt.Sprintf("missing argument %q", key)))
		}
	}

	a := &args{raw: raw, objects: make(map[string]*timeline.Object)}
	resolve := func(key string, required bool) {
		v, present := raw[key]
		if !present {
			if required {
				errs = append(errs, newInvalidArgs(op, fmt.Sprintf("missing argument %q", key)))
			}
			return
		}
		id, ok := v.(ir.String)
		if !ok {
			return // reported by checkArg
		}
		obj, ok := reg.Lookup(timeline.ID(id))
		if !ok {
			errs = append(errs, newUnknownObject(op, string(id)))
			return
		}
		a.objects[key] = obj
	}
	for _, key := range h.objects {
		resolve(key, true)
	}
	for _, key := range h.optional {
		resolve(key, false)
	}

	if len(errs) > 0 {
		// The first error decides the outcome code.
		if len(errs) == 1 {
			return nil, errs[0]
		}
		return nil, fmt.Errorf("%w (and %d more)", errs[0], len(errs)-1)
	}
	return a, nil
}

func checkArg(op, key string, v ir.Value) error {
	var ok bool
	switch {
	case slices.Contains(objectKeys, key):
		_, ok = v.(ir.String)
	case slices.Contains(intKeys, key):
		_, ok = v.(ir.Int)
	case slices.Contains(flagKeys, key):
		_, ok = v.(ir.Bool)
	default:
		return newInvalidArgs(op, fmt.Sprintf("unknown argument %q", key))
	}
	if !ok {
		return newInvalidArgs(op, fmt.Sprintf("argument %q has the wrong type", key))
	}
	return nil
}

func (a *args) obj(key string) *timeline.Object { return a.objects[key] }

func (a *args) int(key string, def int) int {
	return int(a.raw.IntOr(key, int64(def)))
}

func (a *args) flag(key string, def bool) bool {
	return a.raw.BoolOr(key, def)
}

// errorCode maps an edit or dispatch error to its journal code.
func errorCode(err error) string {
	if code := timeline.CodeOf(err); code != "" {
		return string(code)
	}
	var ce *CommandError
	if errors.As(err, &ce) {
		return string(ce.Code)
	}
	return "INTERNAL"
}

// ParseOp normalizes an operation name written with dashes or in upper case.
func ParseOp(s string) (string, error) {
	op := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "-", "_"))
	if _, ok := handlers[op]; !ok {
		return "", newUnknownOp(s)
	}
	return op, nil
}
