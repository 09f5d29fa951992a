package harness

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/roach88/strata/internal/ir"
	"github.com/roach88/strata/internal/timeline"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string            // Assertion type for categorization
	Expected string            // Human-readable expected outcome
	Actual   string            // Human-readable actual outcome
	Trace    []ir.Notification // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for i, n := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] seq=%d %s %s", i+1, n.Seq, n.Composition, n.Event)
			if n.Object != "" {
				fmt.Fprintf(&buf, " %s", n.Object)
			}
			if n.Condensed != nil {
				fmt.Fprintf(&buf, " %v", n.Condensed)
			}
			buf.WriteByte('\n')
		}
	}
	return buf.String()
}

func compositionOf(tl *timeline.Timeline, name string) (*timeline.Composition, error) {
	if name == "" {
		name = timeline.VideoComposition
	}
	c, ok := tl.Composition(name)
	if !ok {
		return nil, fmt.Errorf("unknown composition %q", name)
	}
	return c, nil
}

func objectIDs(objs []*timeline.Object) []string {
	ids := make([]string, len(objs))
	for i, obj := range objs {
		ids[i] = string(obj.ID())
	}
	return ids
}

// assertCondensedOrder checks the condensed view of a composition: every
// source and transition merged in start order.
func assertCondensedOrder(result *Result, a Assertion) error {
	c, err := compositionOf(result.Timeline, a.Composition)
	if err != nil {
		return err
	}
	got := objectIDs(c.Condensed())
	if !slices.Equal(got, a.Objects) {
		return &AssertionError{
			Type:     AssertCondensedOrder,
			Expected: fmt.Sprintf("%s condensed %v", c.Name(), a.Objects),
			Actual:   fmt.Sprintf("%v", got),
			Trace:    result.Trace,
		}
	}
	return nil
}

// assertLayerOrder checks the sources held by one layer, in start order.
func assertLayerOrder(result *Result, a Assertion) error {
	c, err := compositionOf(result.Timeline, a.Composition)
	if err != nil {
		return err
	}
	layer, ok := c.Layer(a.Layer)
	if !ok {
		return &AssertionError{
			Type:     AssertLayerOrder,
			Expected: fmt.Sprintf("%s layer %d", c.Name(), a.Layer),
			Actual:   fmt.Sprintf("composition has %d layers", len(c.Layers())),
		}
	}
	got := objectIDs(layer.Objects())
	if !slices.Equal(got, a.Objects) {
		return &AssertionError{
			Type:     AssertLayerOrder,
			Expected: fmt.Sprintf("%s layer %d %v", c.Name(), a.Layer, a.Objects),
			Actual:   fmt.Sprintf("%v", got),
			Trace:    result.Trace,
		}
	}
	return nil
}

// assertObjectSpan checks the start and duration of a declared object.
func assertObjectSpan(result *Result, a Assertion) error {
	obj, ok := result.Timeline.Registry().Lookup(timeline.ID(a.Object))
	if !ok {
		return fmt.Errorf("object_span: unknown object %q", a.Object)
	}
	var want, got []string
	if a.Start != nil {
		want = append(want, "start "+a.Start.Duration().String())
		got = append(got, "start "+obj.Start().String())
	}
	if a.Duration != nil {
		want = append(want, "duration "+a.Duration.Duration().String())
		got = append(got, "duration "+obj.Duration().String())
	}
	if !slices.Equal(want, got) {
		return &AssertionError{
			Type:     AssertObjectSpan,
			Expected: fmt.Sprintf("%s %s", a.Object, strings.Join(want, ", ")),
			Actual:   strings.Join(got, ", "),
		}
	}
	return nil
}

// assertNotificationCount counts delivered notifications by event name, in
// one composition or in both.
func assertNotificationCount(result *Result, a Assertion) error {
	count := 0
	for _, n := range result.Trace {
		if n.Event != a.Event {
			continue
		}
		if a.Composition != "" && n.Composition != a.Composition {
			continue
		}
		count++
	}
	if count != *a.Count {
		where := "all compositions"
		if a.Composition != "" {
			where = a.Composition
		}
		return &AssertionError{
			Type:     AssertNotificationCount,
			Expected: fmt.Sprintf("%s delivered %d times in %s", a.Event, *a.Count, where),
			Actual:   fmt.Sprintf("%d times", count),
			Trace:    result.Trace,
		}
	}
	return nil
}

// assertExportSettings compares the combined auto export profile.
func assertExportSettings(result *Result, a Assertion) error {
	got := result.Timeline.AutoSettings()
	switch {
	case a.Settings == nil && got == nil:
		return nil
	case a.Settings == nil:
		return &AssertionError{Type: AssertExportSettings, Expected: "no auto settings", Actual: fmt.Sprintf("%+v", *got)}
	case got == nil:
		return &AssertionError{Type: AssertExportSettings, Expected: fmt.Sprintf("%+v", *a.Settings), Actual: "no auto settings"}
	case *got != *a.Settings:
		return &AssertionError{Type: AssertExportSettings, Expected: fmt.Sprintf("%+v", *a.Settings), Actual: fmt.Sprintf("%+v", *got)}
	}
	return nil
}

// assertNoOverlap checks that no two sources of a layer overlap in time.
func assertNoOverlap(result *Result, a Assertion) error {
	comps := result.Timeline.Compositions()
	if a.Composition != "" {
		c, err := compositionOf(result.Timeline, a.Composition)
		if err != nil {
			return err
		}
		comps = []*timeline.Composition{c}
	}
	for _, c := range comps {
		for _, layer := range c.Layers() {
			var prev *timeline.Object
			var prevEnd time.Duration
			for _, obj := range layer.Objects() {
				if prev != nil && obj.Start() < prevEnd {
					return &AssertionError{
						Type:     AssertNoOverlap,
						Expected: fmt.Sprintf("%s layer %d without overlap", c.Name(), layer.Position()),
						Actual:   fmt.Sprintf("%s ends at %s after %s starts at %s", prev.ID(), prevEnd, obj.ID(), obj.Start()),
						Trace:    result.Trace,
					}
				}
				prev, prevEnd = obj, obj.End()
			}
		}
	}
	return nil
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertCondensedOrder:
			err = assertCondensedOrder(result, assertion)
		case AssertLayerOrder:
			err = assertLayerOrder(result, assertion)
		case AssertObjectSpan:
			err = assertObjectSpan(result, assertion)
		case AssertNotificationCount:
			if assertion.Count == nil {
				err = fmt.Errorf("assertion[%d]: notification_count requires count", i)
			} else {
				err = assertNotificationCount(result, assertion)
			}
		case AssertExportSettings:
			err = assertExportSettings(result, assertion)
		case AssertNoOverlap:
			err = assertNoOverlap(result, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
