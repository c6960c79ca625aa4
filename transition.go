package espalier

import "context"

// GuardFunc decides whether a transition may be taken for the data payload
// passed to Fire. Returning false makes the transition invisible to the
// resolution walk, exactly as if it had never been registered on the node.
type GuardFunc func(data any) bool

// Action is an entry or exit callback. It runs synchronously on the caller's
// goroutine; a non-nil error aborts the remainder of the transition and is
// propagated to the caller of Fire.
type Action[S, E comparable] func(ctx context.Context, t Transition[S, E]) error

// Transition describes a single committed state change. It is handed to every
// entry and exit callback involved in the change.
type Transition[S, E comparable] struct {
	// Source is the state the machine occupied when the event fired.
	Source S

	// Destination is the state the machine is moving to.
	Destination S

	// Event is the event that triggered the change.
	Event E

	// Data is the payload passed to Fire, if any.
	Data any

	// IsSubState reports whether the machine's state at the moment of firing
	// lay within the destination's own subtree. Callbacks use it to tell a
	// hierarchical pass-through from a full state change.
	IsSubState bool
}

// IsLoop reports whether source and destination are the same state.
func (t Transition[S, E]) IsLoop() bool {
	return t.Source == t.Destination
}

// Change is delivered to the machine's observer. The observer fires once at
// construction (Initial true, From/Event/Data zero) and then once per
// committed transition.
type Change[S, E comparable] struct {
	From       S
	To         S
	Event      E
	IsSubState bool
	Data       any

	// Initial marks the construction-time notification carrying the seed
	// state.
	Initial bool
}

// transition is the immutable descriptor registered on a node: one per event
// per node, enforced at configuration time.
type transition[S, E comparable] struct {
	event     E
	target    S
	guard     GuardFunc
	guardName string
}

// accepts reports whether the guard (if any) admits the payload.
func (t *transition[S, E]) accepts(data any) bool {
	if t.guard == nil {
		return true
	}
	return t.guard(data)
}

// action pairs a callback with its diagnostic name. The name is only used by
// the graph export; anonymous callbacks render with a placeholder.
type action[S, E comparable] struct {
	fn   Action[S, E]
	name string
}
