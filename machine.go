package espalier

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/espalier/internal/logging"
)

// Machine is a hierarchical finite-state machine. It owns the state node
// registry and a StateStore holding the current state identifier.
//
// The machine is synchronous and single-threaded: Fire runs to completion on
// the caller's goroutine, including guard evaluation and all entry/exit
// callbacks, and performs no internal locking. Driving one machine (or a
// shared store) from multiple goroutines requires external synchronization.
type Machine[S, E comparable] struct {
	store      StateStore[S]
	nodes      map[S]*Node[S, E]
	observer   func(Change[S, E])
	allowLoops bool
	logger     *slog.Logger
}

// Option configures a Machine during construction.
type Option[S, E comparable] func(*Machine[S, E])

// WithStore replaces the default in-memory store with a host-supplied
// StateStore. The initial state passed to New is ignored; the store is the
// source of truth.
func WithStore[S, E comparable](store StateStore[S]) Option[S, E] {
	return func(m *Machine[S, E]) {
		m.store = store
	}
}

// WithAccessors hands persistence fully to the host as a bare accessor and
// mutator pair. Equivalent to WithStore(NewFuncStore(get, set)).
func WithAccessors[S, E comparable](get func() S, set func(S)) Option[S, E] {
	return func(m *Machine[S, E]) {
		m.store = NewFuncStore(get, set)
	}
}

// WithObserver registers a callback invoked once at construction (with
// Change.Initial set) and again after every committed state write.
func WithObserver[S, E comparable](fn func(Change[S, E])) Option[S, E] {
	return func(m *Machine[S, E]) {
		m.observer = fn
	}
}

// AllowLoops permits transitions whose target equals their source. By default
// such transitions are suppressed entirely: no callbacks, no store write.
// With loops allowed, a self-transition runs the state's exit callbacks, the
// store write, and its entry callbacks, even though the stored value does not
// change.
func AllowLoops[S, E comparable]() Option[S, E] {
	return func(m *Machine[S, E]) {
		m.allowLoops = true
	}
}

// WithLogger sets the structured logger. The machine logs resolution steps at
// Debug level only; by default logging is discarded.
func WithLogger[S, E comparable](logger *slog.Logger) Option[S, E] {
	return func(m *Machine[S, E]) {
		m.logger = logger
	}
}

// New creates a machine whose current state lives in an in-memory cell seeded
// with initial, unless WithStore or WithAccessors hands persistence to the
// host (in which case initial is unused). The observer, if configured, is
// notified once with the resolved initial value before New returns.
func New[S, E comparable](initial S, opts ...Option[S, E]) (*Machine[S, E], error) {
	m := &Machine[S, E]{
		nodes:  make(map[S]*Node[S, E]),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.store == nil {
		m.store = NewMemoryStore(initial)
	}
	if m.observer != nil {
		seed, err := m.store.Get(context.Background())
		if err != nil {
			return nil, fmt.Errorf("read initial state: %w", err)
		}
		m.observer(Change[S, E]{To: seed, Initial: true})
	}
	return m, nil
}

// Configure returns the node for the given state, creating it if this is the
// first time the state is referenced. The registry entry persists for the
// machine's lifetime.
func (m *Machine[S, E]) Configure(state S) *Node[S, E] {
	return m.node(state)
}

// State returns the raw current state identifier from the store.
func (m *Machine[S, E]) State(ctx context.Context) (S, error) {
	return m.store.Get(ctx)
}

// IsInState reports whether the current state equals the given state or is a
// descendant of it through the parent chain: the current state "is a" state
// in the hierarchy sense.
func (m *Machine[S, E]) IsInState(ctx context.Context, state S) (bool, error) {
	current, err := m.store.Get(ctx)
	if err != nil {
		return false, fmt.Errorf("read current state: %w", err)
	}
	return m.node(current).isIncludedIn(state), nil
}

// PermittedEvents returns every event registered on the current state's node
// or any of its ancestors, each exactly once. Guards are not evaluated; this
// reports configured reachability, not guard-conditioned reachability. Order
// is not significant.
func (m *Machine[S, E]) PermittedEvents(ctx context.Context) ([]E, error) {
	current, err := m.store.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("read current state: %w", err)
	}
	return m.node(current).permittedEvents(), nil
}

// Fire resolves and executes a transition for event with the given payload.
//
// Resolution walks the current state's ancestor chain and takes the first
// transition registered for event whose guard admits data; a rejecting guard
// is treated exactly like an unregistered event, so the walk continues to the
// parent. An event unmatched anywhere in the chain is a silent no-op.
//
// A committed transition runs, in order: the source node's exit callbacks,
// the store write (plus observer), the destination node's entry callbacks.
// Callback errors propagate unchanged; an exit callback failing leaves the
// stored state untouched, while an entry callback failing leaves it already
// advanced.
func (m *Machine[S, E]) Fire(ctx context.Context, event E, data any) error {
	current, err := m.store.Get(ctx)
	if err != nil {
		return fmt.Errorf("read current state: %w", err)
	}
	source := m.node(current)

	resolved := source.resolve(event, data)
	if resolved == nil {
		m.logger.Debug("event unhandled", "state", current, "event", event)
		return nil
	}

	target := resolved.target
	if target == current && !m.allowLoops {
		m.logger.Debug("loop suppressed", "state", current, "event", event)
		return nil
	}

	dest := m.node(target)
	t := Transition[S, E]{
		Source:      current,
		Destination: target,
		Event:       event,
		Data:        data,
		IsSubState:  source.isIncludedIn(target),
	}

	for _, a := range source.exit {
		if err := a.fn(ctx, t); err != nil {
			return err
		}
	}

	if err := m.store.Set(ctx, target); err != nil {
		return fmt.Errorf("write state %v: %w", target, err)
	}
	if m.observer != nil {
		m.observer(Change[S, E]{
			From:       current,
			To:         target,
			Event:      event,
			IsSubState: t.IsSubState,
			Data:       data,
		})
	}
	m.logger.Debug("transitioned", "from", current, "to", target, "event", event, "substate", t.IsSubState)

	for _, a := range dest.entry {
		if err := a.fn(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

// node returns the registry entry for state, creating it lazily.
func (m *Machine[S, E]) node(state S) *Node[S, E] {
	n, ok := m.nodes[state]
	if !ok {
		n = newNode(state, m.node)
		m.nodes[state] = n
	}
	return n
}
