package harness

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/strata/internal/engine"
	"github.com/roach88/strata/internal/ir"
	"github.com/roach88/strata/internal/store"
	"github.com/roach88/strata/internal/testutil"
	"github.com/roach88/strata/internal/timeline"
)

// Harness is the scenario execution environment: a fresh timeline and an
// engine running under a fixed session token.
type Harness struct {
	engine *engine.Engine
	logger *slog.Logger
}

type options struct {
	bands    timeline.Bands
	store    *store.Store
	logger   *slog.Logger
	sessions engine.SessionGenerator
}

// Option configures Run.
type Option func(*options)

// WithBands sets the priority layout. A scenario's layers field still
// overrides the layer count.
func WithBands(b timeline.Bands) Option {
	return func(o *options) { o.bands = b }
}

// WithStore journals the run into s.
func WithStore(s *store.Store) Option {
	return func(o *options) { o.store = s }
}

// WithSessionGenerator replaces the scenario's fixed session token, e.g.
// so repeated runs can share one journal.
func WithSessionGenerator(g engine.SessionGenerator) Option {
	return func(o *options) { o.sessions = g }
}

// WithLogger sets the logger. Logs are discarded by default.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Run executes a scenario and returns the result.
//
// Each scenario runs on a fresh timeline. Objects are declared first, then
// every step is applied through the engine. A step whose outcome differs
// from its expect_error adds an error to the result but does not stop the
// run. The returned error is reserved for setup and journal failures.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	o := options{
		bands:  timeline.DefaultBands(),
		logger: testutil.QuietLogger(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if scenario.Layers > 0 {
		o.bands.Layers = scenario.Layers
	}
	if o.sessions == nil {
		o.sessions = testutil.NewFixedSessionGenerator(scenario.Session)
	}

	tl, err := timeline.NewTimeline(o.bands, o.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create timeline: %w", err)
	}

	engineOpts := []engine.Option{
		engine.WithSessionGenerator(o.sessions),
		engine.WithLogger(o.logger),
	}
	if o.store != nil {
		engineOpts = append(engineOpts, engine.WithStore(o.store))
	}

	eng := engine.New(tl, engineOpts...)
	h := &Harness{
		engine: eng,
		logger: o.logger,
	}

	ctx := context.Background()
	result := NewResult()
	result.Session = eng.Session()
	result.Timeline = tl

	if err := h.declareObjects(ctx, scenario.Objects); err != nil {
		return nil, fmt.Errorf("failed to declare objects: %w", err)
	}
	if err := h.executeSteps(ctx, scenario.Steps, result); err != nil {
		return nil, fmt.Errorf("failed to execute steps: %w", err)
	}

	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(errMsg)
	}
	return result, nil
}

func (h *Harness) declareObjects(ctx context.Context, objects []ObjectSpec) error {
	for i, spec := range objects {
		if _, err := h.engine.Define(ctx, spec.Def()); err != nil {
			return fmt.Errorf("object %d (%s): %w", i, spec.ID, err)
		}
	}
	return nil
}

// executeSteps applies every step and checks its expected error code.
func (h *Harness) executeSteps(ctx context.Context, steps []Step, result *Result) error {
	for i, step := range steps {
		args := ir.Object{}
		for key, raw := range step.Args {
			v, err := ir.FromAny(raw)
			if err != nil {
				return fmt.Errorf("step %d: arg %q: %w", i, key, err)
			}
			args[key] = v
		}
		op, err := engine.ParseOp(step.Op)
		if err != nil {
			// Unknown ops still run so the engine reports UNKNOWN_OP.
			op = step.Op
		}
		composition := step.Composition
		if composition == "" {
			composition = timeline.VideoComposition
		}

		before := len(h.engine.Trace())
		out, err := h.engine.Apply(ctx, h.engine.NewCommand(op, composition, args))
		if err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
		result.AddStep(op, composition, out, h.engine.Trace()[before:])

		switch {
		case step.ExpectError == "" && !out.OK():
			result.AddError(fmt.Sprintf("step %d (%s): unexpected error %s: %s", i, op, out.ErrorCode, out.Message))
		case step.ExpectError != "" && out.OK():
			result.AddError(fmt.Sprintf("step %d (%s): expected error %s, got success", i, op, step.ExpectError))
		case step.ExpectError != "" && out.ErrorCode != step.ExpectError:
			result.AddError(fmt.Sprintf("step %d (%s): expected error %s, got %s", i, op, step.ExpectError, out.ErrorCode))
		}

		h.logger.Info("step completed",
			"step", i,
			"op", op,
			"composition", composition,
			"status", out.Status,
			"seq", out.Seq,
		)
	}
	return nil
}
