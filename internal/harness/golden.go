package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/strata/internal/ir"
)

// GoldenDir is the fixture directory used by RunWithGolden.
const GoldenDir = "testdata/golden"

// TraceSnapshot captures the complete trace for a scenario execution.
// All fields use canonical JSON serialization for deterministic comparison.
type TraceSnapshot struct {
	ScenarioName string      `json:"scenario_name"`
	Session      string      `json:"session"`
	Steps        []StepTrace `json:"steps"`
	Digest       string      `json:"digest"` // snapshot digest after the last step
}

// NewTraceSnapshot builds the snapshot of a result.
func NewTraceSnapshot(name string, result *Result) TraceSnapshot {
	s := TraceSnapshot{ScenarioName: name, Session: result.Session, Steps: result.Steps}
	if n := len(result.Outcomes); n > 0 {
		s.Digest = result.Outcomes[n-1].Digest
	}
	return s
}

// Value converts the snapshot for canonical encoding. Notifications drop
// their command ID and seq, which the enclosing step already carries.
func (s TraceSnapshot) Value() ir.Value {
	steps := make(ir.Array, len(s.Steps))
	for i, step := range s.Steps {
		notes := make(ir.Array, len(step.Notifications))
		for j, n := range step.Notifications {
			note := ir.Object{
				"composition": ir.String(n.Composition),
				"event":       ir.String(n.Event),
			}
			if n.Object != "" {
				note["object"] = ir.String(n.Object)
			}
			if n.Condensed != nil {
				note["condensed"] = ir.Strings(n.Condensed...)
			}
			notes[j] = note
		}
		entry := ir.Object{
			"seq":           ir.Int(step.Seq),
			"op":            ir.String(step.Op),
			"composition":   ir.String(step.Composition),
			"status":        ir.String(step.Status),
			"notifications": notes,
		}
		if step.ErrorCode != "" {
			entry["error_code"] = ir.String(step.ErrorCode)
		}
		steps[i] = entry
	}
	return ir.Object{
		"scenario_name": ir.String(s.ScenarioName),
		"session":       ir.String(s.Session),
		"steps":         steps,
		"digest":        ir.String(s.Digest),
	}
}

// GoldenTrace returns the canonical JSON golden form of a result.
func GoldenTrace(name string, result *Result) ([]byte, error) {
	return ir.MarshalCanonical(NewTraceSnapshot(name, result).Value())
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if trace doesn't match golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()
	return RunWithGoldenDir(t, scenario, GoldenDir)
}

// RunWithGoldenDir is RunWithGolden with golden files kept in dir.
func RunWithGoldenDir(t *testing.T, scenario *Scenario, dir string) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	return assertGolden(t, scenario.Name, result, dir)
}

// AssertGolden compares the given result's trace against a golden file.
// This is useful when you've already run a scenario and want to compare
// the result against a golden file without re-running.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()
	return assertGolden(t, scenarioName, result, GoldenDir)
}

func assertGolden(t *testing.T, name string, result *Result, dir string) error {
	t.Helper()

	traceJSON, err := GoldenTrace(name, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir(dir),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, traceJSON)
	return nil
}
