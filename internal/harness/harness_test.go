package harness

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/strata/internal/engine"
	"github.com/roach88/strata/internal/store"
	"github.com/roach88/strata/internal/timeline"
)

func intPtr(n int) *int { return &n }

func timePtr(d time.Duration) *Time {
	t := Time(d)
	return &t
}

func source(id string, d time.Duration) ObjectSpec {
	return ObjectSpec{ID: id, Kind: "source", Duration: Time(d)}
}

func appendStep(id string) Step {
	return Step{Op: engine.OpAppendSource, Args: map[string]any{"object": id}}
}

func TestRun_MinimalScenario(t *testing.T) {
	scenario := &Scenario{
		Name:        "minimal",
		Description: "Minimal test scenario",
		Objects:     []ObjectSpec{source("a", 10*time.Second)},
		Steps:       []Step{appendStep("a")},
		Assertions: []Assertion{
			{Type: AssertCondensedOrder, Objects: []string{"a"}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.Errors)
	assert.Equal(t, DefaultSession, result.Session)

	require.Len(t, result.Steps, 1)
	step := result.Steps[0]
	assert.Equal(t, engine.OpAppendSource, step.Op)
	assert.Equal(t, timeline.VideoComposition, step.Composition)
	assert.Equal(t, "ok", step.Status)

	// source-added then condensed-view-changed, both on video.
	require.Len(t, result.Trace, 2)
	assert.Equal(t, string(timeline.EventSourceAdded), result.Trace[0].Event)
	assert.Equal(t, "a", result.Trace[0].Object)
	assert.Equal(t, string(timeline.EventCondensedChanged), result.Trace[1].Event)
	assert.Equal(t, []string{"a"}, result.Trace[1].Condensed)
}

func TestRun_ExpectError(t *testing.T) {
	scenario := &Scenario{
		Name:        "expect_error",
		Description: "A step that must fail",
		Objects:     []ObjectSpec{source("a", time.Second)},
		Steps: []Step{
			appendStep("a"),
			{Op: engine.OpRemoveSource, Args: map[string]any{"object": "ghost"}, ExpectError: "UNKNOWN_OBJECT"},
		},
		Assertions: []Assertion{{Type: AssertNoOverlap}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	require.Len(t, result.Outcomes, 2)
	assert.Equal(t, "UNKNOWN_OBJECT", result.Outcomes[1].ErrorCode)
	assert.Empty(t, result.Steps[1].Notifications)
}

func TestRun_ExpectationMismatches(t *testing.T) {
	tests := []struct {
		name    string
		step    Step
		wantErr string
	}{
		{
			name:    "unexpected failure",
			step:    Step{Op: engine.OpRemoveSource, Args: map[string]any{"object": "ghost"}},
			wantErr: "unexpected error UNKNOWN_OBJECT",
		},
		{
			name:    "expected failure succeeded",
			step:    Step{Op: engine.OpAppendSource, Args: map[string]any{"object": "a"}, ExpectError: "OVERLAP_VIOLATION"},
			wantErr: "expected error OVERLAP_VIOLATION, got success",
		},
		{
			name:    "wrong code",
			step:    Step{Op: "no_such_op", ExpectError: "UNKNOWN_OBJECT"},
			wantErr: "expected error UNKNOWN_OBJECT, got UNKNOWN_OP",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scenario := &Scenario{
				Name:        "mismatch",
				Description: "Expectation mismatch",
				Objects:     []ObjectSpec{source("a", time.Second)},
				Steps:       []Step{tt.step},
				Assertions:  []Assertion{{Type: AssertNoOverlap}},
			}
			result, err := Run(scenario)
			require.NoError(t, err)
			assert.False(t, result.Pass)
			require.Len(t, result.Errors, 1)
			assert.Contains(t, result.Errors[0], tt.wantErr)
		})
	}
}

func TestRun_Deterministic(t *testing.T) {
	scenario := &Scenario{
		Name:        "deterministic",
		Description: "Same scenario, same outcomes",
		Session:     "fixed-session",
		Objects:     []ObjectSpec{source("a", time.Second), source("b", 2*time.Second)},
		Steps:       []Step{appendStep("a"), appendStep("b")},
		Assertions:  []Assertion{{Type: AssertNoOverlap}},
	}

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	assert.Equal(t, first.Outcomes, second.Outcomes)
	assert.Equal(t, first.Trace, second.Trace)
	assert.Equal(t, "fixed-session", first.Session)
}

func TestRun_LayersOverride(t *testing.T) {
	scenario := &Scenario{
		Name:        "layers",
		Description: "Two layers",
		Layers:      2,
		Objects:     []ObjectSpec{source("top", time.Second), source("bottom", time.Second)},
		Steps: []Step{
			{Op: engine.OpAddSource, Args: map[string]any{"object": "top", "position": 1}},
			{Op: engine.OpAddSource, Args: map[string]any{"object": "bottom", "position": -1}},
		},
		Assertions: []Assertion{
			{Type: AssertLayerOrder, Layer: 1, Objects: []string{"top"}},
			{Type: AssertLayerOrder, Layer: 2, Objects: []string{"bottom"}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_FloatsForbidden(t *testing.T) {
	scenario := &Scenario{
		Name:        "floats",
		Description: "Float args are rejected",
		Objects:     []ObjectSpec{source("a", time.Second)},
		Steps:       []Step{{Op: engine.OpAddSource, Args: map[string]any{"object": "a", "position": 1.5}}},
		Assertions:  []Assertion{{Type: AssertNoOverlap}},
	}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "floats")
}

func TestRun_DuplicateObject(t *testing.T) {
	scenario := &Scenario{
		Name:        "duplicate",
		Description: "Objects are declared once",
		Objects:     []ObjectSpec{source("a", time.Second), source("a", time.Second)},
		Steps:       []Step{appendStep("a")},
		Assertions:  []Assertion{{Type: AssertNoOverlap}},
	}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to declare objects")
}

func TestRun_WithStoreJournalsSession(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer st.Close()

	scenario := &Scenario{
		Name:        "journaled",
		Description: "Run journaled into a store",
		Objects:     []ObjectSpec{source("a", time.Second), source("b", time.Second)},
		Steps:       []Step{appendStep("a"), appendStep("b")},
		Assertions:  []Assertion{{Type: AssertCondensedOrder, Objects: []string{"a", "b"}}},
	}

	result, err := Run(scenario, WithStore(st))
	require.NoError(t, err)
	require.True(t, result.Pass, "errors: %v", result.Errors)

	ctx := context.Background()
	cmds, err := st.ReadCommands(ctx, DefaultSession)
	require.NoError(t, err)
	assert.Len(t, cmds, 2)

	replay, err := engine.Replay(ctx, st, DefaultSession, timeline.DefaultBands(), nil)
	require.NoError(t, err)
	assert.True(t, replay.OK(), "mismatches: %v", replay.Mismatches)
}

func TestRun_SessionGeneratorOverride(t *testing.T) {
	scenario := &Scenario{
		Name:        "override",
		Description: "Session generator replaces the fixed token",
		Session:     "ignored",
		Objects:     []ObjectSpec{source("a", time.Second)},
		Steps:       []Step{appendStep("a")},
		Assertions:  []Assertion{{Type: AssertCondensedOrder, Objects: []string{"a"}}},
	}

	result, err := Run(scenario, WithSessionGenerator(engine.NewFixedGenerator("run-1")))
	require.NoError(t, err)
	assert.Equal(t, "run-1", result.Session)
}

func TestResult_AddError(t *testing.T) {
	result := NewResult()
	assert.True(t, result.Pass)

	result.AddError("boom")
	assert.False(t, result.Pass)
	assert.Equal(t, []string{"boom"}, result.Errors)
}
