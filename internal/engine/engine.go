package engine

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/roach88/strata/internal/ir"
	"github.com/roach88/strata/internal/store"
	"github.com/roach88/strata/internal/timeline"
)

// Engine is the single-writer edit executor of one editing session.
//
// Commands are applied one at a time onto a timeline.Timeline, either
// synchronously through Apply or queued with Enqueue and drained by Run.
// Every applied command yields an ir.Outcome carrying the digest of the
// timeline snapshot it left, and the composition notifications it caused
// are recorded in order. With a store attached, object definitions and
// command steps are journaled so that Replay can rebuild the session.
//
// Thread-safety model:
//   - Enqueue: safe from any goroutine
//   - Run: must be called from exactly one goroutine
//   - Apply, Define: serialized internally
//   - Trace, Outcomes: safe from any goroutine
type Engine struct {
	timeline *timeline.Timeline
	store    *store.Store
	clock    *Clock
	queue    *commandQueue
	sessions SessionGenerator
	session  string
	logger   *slog.Logger

	// applyMu serializes edits. current and pending are only touched while
	// it is held.
	applyMu sync.Mutex
	current *ir.Command
	pending []ir.Notification
	waiting map[string]string // undefined brother ID -> object declaring it

	mu       sync.Mutex
	trace    []ir.Notification
	outcomes []ir.Outcome
}

// Option configures an Engine.
type Option func(*Engine)

// WithStore journals the session into s.
func WithStore(s *store.Store) Option {
	return func(e *Engine) { e.store = s }
}

// WithClock sets the logical clock, e.g. one resumed with NewClockAt.
func WithClock(c *Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithSession fixes the session token instead of generating one.
func WithSession(token string) Option {
	return func(e *Engine) { e.session = token }
}

// WithSessionGenerator sets the generator used when no session is fixed.
// Defaults to UUIDv7Generator.
func WithSessionGenerator(g SessionGenerator) Option {
	return func(e *Engine) { e.sessions = g }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New creates an engine editing tl and subscribes to every notification of
// its compositions.
func New(tl *timeline.Timeline, opts ...Option) *Engine {
	e := &Engine{
		timeline: tl,
		clock:    NewClock(),
		queue:    newCommandQueue(),
		sessions: UUIDv7Generator{},
		logger:   slog.Default(),
		waiting:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.session == "" {
		e.session = e.sessions.Generate()
	}
	for _, c := range tl.Compositions() {
		for _, name := range timeline.Events {
			c.On(name, e.observe)
		}
	}
	return e
}

// Session returns the session token stamped on every command.
func (e *Engine) Session() string { return e.session }

// Timeline returns the edited timeline.
func (e *Engine) Timeline() *timeline.Timeline { return e.timeline }

// Clock returns the engine's logical clock.
func (e *Engine) Clock() *Clock { return e.clock }

// NewCommand builds a command for this session. Seq and ID are assigned when
// the command is applied.
func (e *Engine) NewCommand(op, composition string, args ir.Object) ir.Command {
	if args == nil {
		args = ir.Object{}
	}
	return ir.Command{Session: e.session, Op: op, Composition: composition, Args: args}
}

// Define creates and registers the object described by def and journals the
// definition. An empty def.ID gets a generated UUIDv7; the returned object
// carries the final ID.
func (e *Engine) Define(ctx context.Context, def ir.ObjectDef) (*timeline.Object, error) {
	e.applyMu.Lock()
	defer e.applyMu.Unlock()
	return e.define(ctx, def, e.clock.Next())
}

func (e *Engine) define(ctx context.Context, def ir.ObjectDef, seq int64) (*timeline.Object, error) {
	obj, err := buildObject(def)
	if err != nil {
		return nil, err
	}
	reg := e.timeline.Registry()
	if _, taken := reg.Lookup(obj.ID()); taken {
		return nil, &CommandError{
			Code:    ErrCodeDuplicateObject,
			Message: fmt.Sprintf("object %q is already defined", obj.ID()),
			Details: map[string]string{"object": string(obj.ID())},
		}
	}
	if err := reg.Register(obj); err != nil {
		return nil, fmt.Errorf("define %s: %w", obj.ID(), err)
	}
	if err := e.linkBrother(obj, def.Brother); err != nil {
		return nil, err
	}

	def.ID = string(obj.ID())
	if e.store != nil {
		rec := store.ObjectRecord{Session: e.session, Seq: seq, Def: def}
		if err := e.store.WriteObject(ctx, rec); err != nil {
			return nil, fmt.Errorf("journal object %s: %w", def.ID, err)
		}
	}
	e.logger.Debug("object defined", "id", def.ID, "kind", def.Kind, "seq", seq)
	return obj, nil
}

// linkBrother links obj with its declared brother, or with an earlier object
// that declared obj as its brother. Either side may be defined first.
func (e *Engine) linkBrother(obj *timeline.Object, brother string) error {
	reg := e.timeline.Registry()
	id := string(obj.ID())
	if brother != "" {
		if b, ok := reg.Lookup(timeline.ID(brother)); ok {
			if err := reg.LinkObjects(obj, b); err != nil {
				return newInvalidArgs("", err.Error())
			}
			return nil
		}
		e.waiting[brother] = id
	}
	if declarer, ok := e.waiting[id]; ok {
		delete(e.waiting, id)
		if b, ok := reg.Lookup(timeline.ID(declarer)); ok {
			if err := reg.LinkObjects(obj, b); err != nil {
				return newInvalidArgs("", err.Error())
			}
		}
	}
	return nil
}

// Apply executes cmd and returns its outcome. Edit failures are reported in
// the outcome, not as an error; the error return is reserved for journal
// and encoding failures.
//
// A command without a seq is stamped from the clock; a replayed command keeps
// its journaled seq and ID.
func (e *Engine) Apply(ctx context.Context, cmd ir.Command) (ir.Outcome, error) {
	e.applyMu.Lock()
	defer e.applyMu.Unlock()

	if cmd.Session == "" {
		cmd.Session = e.session
	}
	if cmd.Args == nil {
		cmd.Args = ir.Object{}
	}
	if cmd.Seq == 0 {
		cmd.Seq = e.clock.Next()
	} else {
		e.clock.Advance(cmd.Seq)
	}
	if cmd.ID == "" {
		id, err := ir.CommandID(cmd.Session, cmd.Op, cmd.Composition, cmd.Args, cmd.Seq)
		if err != nil {
			return ir.Outcome{}, err
		}
		cmd.ID = id
	}

	e.current = &cmd
	e.pending = nil
	editErr := e.dispatch(cmd)
	e.current = nil
	notes := e.pending
	e.pending = nil

	out := ir.Outcome{CommandID: cmd.ID, Seq: cmd.Seq, Status: ir.StatusOK}
	if editErr != nil {
		out.Status = ir.StatusError
		out.ErrorCode = errorCode(editErr)
		out.Message = editErr.Error()
		e.logger.Info("command failed",
			"op", cmd.Op,
			"composition", cmd.Composition,
			"seq", cmd.Seq,
			"code", out.ErrorCode,
		)
	} else {
		e.logger.Debug("command applied",
			"op", cmd.Op,
			"composition", cmd.Composition,
			"seq", cmd.Seq,
			"notifications", len(notes),
		)
	}

	digest, err := ir.SnapshotDigest(e.Snapshot())
	if err != nil {
		return out, err
	}
	out.Digest = digest

	if e.store != nil {
		if err := e.store.WriteStep(ctx, cmd, out, notes); err != nil {
			return out, fmt.Errorf("journal command %s: %w", cmd.ID, err)
		}
	}

	e.mu.Lock()
	e.trace = append(e.trace, notes...)
	e.outcomes = append(e.outcomes, out)
	e.mu.Unlock()

	return out, nil
}

// observe records a composition notification against the running command.
// Notifications outside a command are not part of the session trace.
func (e *Engine) observe(ev timeline.Event) {
	if e.current == nil {
		return
	}
	n := ir.Notification{
		CommandID:   e.current.ID,
		Seq:         e.current.Seq,
		Composition: ev.Composition,
		Event:       string(ev.Name),
	}
	if ev.Object != nil {
		n.Object = string(ev.Object.ID())
	}
	if ev.Name == timeline.EventCondensedChanged {
		n.Condensed = make([]string, len(ev.Condensed))
		for i, obj := range ev.Condensed {
			n.Condensed[i] = string(obj.ID())
		}
	}
	e.pending = append(e.pending, n)
}

// Trace returns every notification recorded so far, in delivery order.
func (e *Engine) Trace() []ir.Notification {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.trace)
}

// Outcomes returns the outcomes of every applied command, in order.
func (e *Engine) Outcomes() []ir.Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.outcomes)
}

// Enqueue submits a command for the Run loop.
// Returns false if the engine has been stopped.
func (e *Engine) Enqueue(cmd ir.Command) bool {
	return e.queue.Enqueue(cmd)
}

// Run applies queued commands until ctx is cancelled or Stop is called.
//
// Must be called from exactly one goroutine. A command whose journal write
// fails is logged and the loop continues; retrying would reorder the journal.
func (e *Engine) Run(ctx context.Context) error {
	e.logger.Info("engine starting", "session", e.session)

	for {
		cmd, ok := e.queue.TryDequeue()
		if ok {
			if _, err := e.Apply(ctx, cmd); err != nil {
				e.logger.Error("command not journaled",
					"op", cmd.Op,
					"composition", cmd.Composition,
					"error", err,
				)
			}
			continue
		}

		select {
		case <-ctx.Done():
			e.logger.Info("engine stopping: context cancelled")
			e.queue.Close()
			return ctx.Err()

		case <-e.queue.Wait():
			// The signal channel closes with the queue, so this fires
			// immediately once stopped.
			if e.queue.Len() == 0 {
				select {
				case _, open := <-e.queue.Wait():
					if !open {
						e.logger.Info("engine stopping: queue closed")
						return nil
					}
				default:
				}
			}
		}
	}
}

// Stop closes the command queue. Run returns once the queue is drained.
func (e *Engine) Stop() {
	e.queue.Close()
}
