package espalier

import "context"

// StateStore holds the machine's current state identifier. The engine only
// requires this get/set contract; where the value physically lives (memory, a
// database row, a session) is the host's concern.
//
// Implementations are not required to be safe for concurrent use: the engine
// itself is single-threaded and performs no locking around store access.
type StateStore[S comparable] interface {
	// Get returns the current state identifier.
	Get(ctx context.Context) (S, error)

	// Set stores a new current state identifier.
	Set(ctx context.Context, state S) error
}

// MemoryStore is the default StateStore: a single mutable cell seeded at
// construction.
type MemoryStore[S comparable] struct {
	state S
}

// NewMemoryStore creates a memory store holding the given state.
func NewMemoryStore[S comparable](initial S) *MemoryStore[S] {
	return &MemoryStore[S]{state: initial}
}

// Get returns the held state. It never fails.
func (s *MemoryStore[S]) Get(_ context.Context) (S, error) {
	return s.state, nil
}

// Set replaces the held state. It never fails.
func (s *MemoryStore[S]) Set(_ context.Context, state S) error {
	s.state = state
	return nil
}

// FuncStore adapts a host-supplied accessor/mutator pair to the StateStore
// contract, letting the current state live in any externally owned store.
type FuncStore[S comparable] struct {
	get func() S
	set func(S)
}

// NewFuncStore wraps a zero-argument accessor and a one-argument mutator.
func NewFuncStore[S comparable](get func() S, set func(S)) *FuncStore[S] {
	return &FuncStore[S]{get: get, set: set}
}

// Get invokes the accessor.
func (s *FuncStore[S]) Get(_ context.Context) (S, error) {
	return s.get(), nil
}

// Set invokes the mutator.
func (s *FuncStore[S]) Set(_ context.Context, state S) error {
	s.set(state)
	return nil
}
