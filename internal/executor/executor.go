// Package executor runs parsed action descriptors against a note store.
//
// Each descriptor moves through an explicit state machine:
//
//	Idle -> Resolving (by id or by match) -> Executed | Disambiguating | Rejected
//
// A choose_note descriptor (the user's numeric reply to a disambiguation)
// is unwrapped into its original action and fed back through the same loop.
package executor

import (
	"context"
	"log/slog"

	"github.com/starford/notechat/internal/action"
	"github.com/starford/notechat/internal/matcher"
	"github.com/starford/notechat/internal/oracle"
	"github.com/starford/notechat/internal/storage"
)

// State is the executor state a descriptor ended in.
type State int

const (
	StateIdle State = iota
	StateResolving
	StateExecuted
	StateDisambiguating
	StateRejected
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateResolving:
		return "resolving"
	case StateExecuted:
		return "executed"
	case StateDisambiguating:
		return "disambiguating"
	case StateRejected:
		return "rejected"
	}
	return "unknown"
}

// Result is the outcome of one descriptor.
type Result struct {
	Message string
	State   State
	// Kind is set when the action was attempted, including store failures.
	Kind action.Kind
	// Failed marks an attempted action the store rejected.
	Failed bool
	// NoteID is the note a successful single-note mutation touched.
	NoteID string
	// Session is set while disambiguating.
	Session *Session
}

// Changed reports whether the store was modified.
func (r Result) Changed() bool {
	return r.State == StateExecuted && !r.Failed && r.Kind.Mutates()
}

// ActionResult is the value reported to clients: the executed kind, the
// choose_note payload while disambiguating, or nil.
func (r Result) ActionResult() any {
	if r.Session != nil {
		return r.Session
	}
	if r.Kind != "" {
		return string(r.Kind)
	}
	return nil
}

// Executor resolves and executes descriptors for one owner at a time.
// It holds no per-owner state.
type Executor struct {
	notes  storage.NoteStore
	oracle oracle.Oracle
	limit  int
	logger *slog.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the logger. Defaults to slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) { e.logger = l }
}

// WithMatchLimit caps matches considered for search and disambiguation.
func WithMatchLimit(n int) Option {
	return func(e *Executor) {
		if n > 0 {
			e.limit = n
		}
	}
}

// New creates an Executor. orc may be nil, in which case ask_note fails.
func New(notes storage.NoteStore, orc oracle.Oracle, opts ...Option) *Executor {
	e := &Executor{
		notes:  notes,
		oracle: orc,
		limit:  matcher.DefaultLimit,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs d for owner. Expected conditions (validation, no match,
// ambiguity, store failure) are reported in the Result; the error is
// non-nil only when the oracle fails during ask_note.
func (e *Executor) Execute(ctx context.Context, owner string, d action.Descriptor) (Result, error) {
	pending := d
	for {
		e.logger.Debug("executor: action",
			slog.String("owner", owner),
			slog.String("kind", string(pending.Kind)),
			slog.String("state", StateIdle.String()))

		if !pending.Kind.Known() {
			return rejected(unknownAction(pending.Kind)), nil
		}
		if err := action.Validate(pending); err != nil {
			return rejected(err.Error()), nil
		}

		if pending.Kind == action.KindChooseNote {
			next, res, ok := choose(pending)
			if !ok {
				return res, nil
			}
			pending = next
			continue
		}

		if pending.Kind == action.KindDeleteAllNotes && !action.Confirmed(pending.Confirm) {
			return rejected(confirmDeleteAll), nil
		}

		if !pending.Kind.Targeted() {
			res, err := e.dispatch(ctx, owner, pending, nil)
			e.logResult(owner, pending.Kind, res)
			return res, err
		}

		target, res, ok := e.resolve(ctx, owner, pending)
		if !ok {
			e.logResult(owner, pending.Kind, res)
			return res, nil
		}
		res, err := e.dispatch(ctx, owner, pending.WithTarget(target.ID), target)
		e.logResult(owner, pending.Kind, res)
		return res, err
	}
}

func (e *Executor) logResult(owner string, kind action.Kind, res Result) {
	e.logger.Debug("executor: done",
		slog.String("owner", owner),
		slog.String("kind", string(kind)),
		slog.String("state", res.State.String()))
}

func rejected(msg string) Result {
	return Result{Message: msg, State: StateRejected}
}

func executed(kind action.Kind, msg string) Result {
	return Result{Message: msg, State: StateExecuted, Kind: kind}
}
