package harness

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/strata/internal/engine"
	"github.com/roach88/strata/internal/ir"
	"github.com/roach88/strata/internal/testutil"
	"github.com/roach88/strata/internal/timeline"
)

// Scenario is a scripted editing session: objects to declare, steps to apply
// and assertions over the resulting timeline and notification trace.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Session is an optional fixed session token. Defaults to
	// DefaultSession so golden traces are reproducible.
	Session string `yaml:"session,omitempty"`

	// Layers overrides the number of source layers per composition.
	Layers int `yaml:"layers,omitempty"`

	// Objects are declared in order before any step runs.
	Objects []ObjectSpec `yaml:"objects"`

	// Steps are applied in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final timeline and trace.
	Assertions []Assertion `yaml:"assertions"`
}

// DefaultSession is the session token used when a scenario names none.
const DefaultSession = testutil.DefaultSession

// ObjectSpec declares one temporal object.
type ObjectSpec struct {
	ID         string                   `yaml:"id"`
	Kind       string                   `yaml:"kind"`
	Name       string                   `yaml:"name,omitempty"`
	Start      Time                     `yaml:"start,omitempty"`
	Duration   Time                     `yaml:"duration"`
	MediaStart Time                     `yaml:"media_start,omitempty"`
	Brother    string                   `yaml:"brother,omitempty"`
	Settings   *timeline.ExportSettings `yaml:"settings,omitempty"`
}

// Def converts the declaration into a journal definition.
func (o ObjectSpec) Def() ir.ObjectDef {
	def := ir.ObjectDef{
		ID:         o.ID,
		Kind:       o.Kind,
		Name:       o.Name,
		Start:      int64(o.Start),
		Duration:   int64(o.Duration),
		MediaStart: int64(o.MediaStart),
		Brother:    o.Brother,
	}
	if o.Settings != nil {
		p := engine.ProfileFromSettings(*o.Settings)
		def.Settings = &p
	}
	return def
}

// Step applies one operation to a composition.
type Step struct {
	// Op is the operation name (e.g. "append_source").
	Op string `yaml:"op"`

	// Composition is "video" or "audio". Defaults to "video".
	Composition string `yaml:"composition,omitempty"`

	// Args are the operation arguments. Object arguments name object IDs.
	Args map[string]any `yaml:"args,omitempty"`

	// ExpectError is the error code the step must fail with. Empty means
	// the step must succeed.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// Time is a timeline position. In YAML it is either an integer number of
// milliseconds or a Go duration string such as "1.5s".
type Time time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *Time) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: time must be a scalar", value.Line)
	}
	if ms, err := strconv.ParseInt(value.Value, 10, 64); err == nil {
		*t = Time(time.Duration(ms) * time.Millisecond)
		return nil
	}
	d, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: invalid time %q", value.Line, value.Value)
	}
	*t = Time(d)
	return nil
}

// Duration returns t as a time.Duration.
func (t Time) Duration() time.Duration { return time.Duration(t) }

// Assertion validates the final timeline or the trace.
type Assertion struct {
	// Type specifies the assertion type:
	// - "condensed_order": condensed view of Composition lists Objects
	// - "layer_order": layer Layer of Composition lists Objects
	// - "object_span": Object has Start and Duration
	// - "notification_count": Event was delivered Count times
	// - "export_settings": auto export settings equal Settings
	// - "no_overlap": no two sources of a layer overlap
	Type string `yaml:"type"`

	// Composition defaults to "video". no_overlap without a composition
	// checks both.
	Composition string `yaml:"composition,omitempty"`

	// Objects is the expected object ID sequence.
	Objects []string `yaml:"objects,omitempty"`

	// Layer is the 1-based layer position (layer_order).
	Layer int `yaml:"layer,omitempty"`

	// Object, Start and Duration are used by object_span.
	Object   string `yaml:"object,omitempty"`
	Start    *Time  `yaml:"start,omitempty"`
	Duration *Time  `yaml:"duration,omitempty"`

	// Event and Count are used by notification_count. An empty
	// Composition counts both compositions.
	Event string `yaml:"event,omitempty"`
	Count *int   `yaml:"count,omitempty"`

	// Settings is the expected auto export profile. Nil expects none.
	Settings *timeline.ExportSettings `yaml:"settings,omitempty"`
}

// Assertion type constants.
const (
	AssertCondensedOrder    = "condensed_order"
	AssertLayerOrder        = "layer_order"
	AssertObjectSpan        = "object_span"
	AssertNotificationCount = "notification_count"
	AssertExportSettings    = "export_settings"
	AssertNoOverlap         = "no_overlap"
)

// AssertionTypes lists the supported assertion types.
var AssertionTypes = []string{
	AssertCondensedOrder,
	AssertLayerOrder,
	AssertObjectSpan,
	AssertNotificationCount,
	AssertExportSettings,
	AssertNoOverlap,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Layers < 0 {
		return fmt.Errorf("layers must be positive, got %d", s.Layers)
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	seen := make(map[string]bool, len(s.Objects))
	for i, obj := range s.Objects {
		if obj.ID == "" {
			return fmt.Errorf("objects[%d]: id is required", i)
		}
		if seen[obj.ID] {
			return fmt.Errorf("objects[%d]: duplicate id %q", i, obj.ID)
		}
		seen[obj.ID] = true
		if _, err := timeline.ParseKind(obj.Kind); err != nil {
			return fmt.Errorf("objects[%d]: %w", i, err)
		}
		if obj.Start < 0 || obj.Duration < 0 || obj.MediaStart < 0 {
			return fmt.Errorf("objects[%d]: times must be non-negative", i)
		}
	}

	for i, step := range s.Steps {
		if step.Op == "" {
			return fmt.Errorf("steps[%d]: op is required", i)
		}
		if _, err := engine.ParseOp(step.Op); err != nil {
			return fmt.Errorf("steps[%d]: %w", i, err)
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertCondensedOrder:
		if a.Objects == nil {
			return fmt.Errorf("assertions[%d]: objects is required for condensed_order", index)
		}
	case AssertLayerOrder:
		if a.Layer < 1 {
			return fmt.Errorf("assertions[%d]: layer must be >= 1 for layer_order", index)
		}
		if a.Objects == nil {
			return fmt.Errorf("assertions[%d]: objects is required for layer_order", index)
		}
	case AssertObjectSpan:
		if a.Object == "" {
			return fmt.Errorf("assertions[%d]: object is required for object_span", index)
		}
		if a.Start == nil && a.Duration == nil {
			return fmt.Errorf("assertions[%d]: start or duration is required for object_span", index)
		}
	case AssertNotificationCount:
		if a.Event == "" {
			return fmt.Errorf("assertions[%d]: event is required for notification_count", index)
		}
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for notification_count", index)
		}
	case AssertExportSettings, AssertNoOverlap:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
