package espalier

import "fmt"

// Node is the registry entry for a single state. It owns the state's
// transitions (at most one per event), its entry and exit callback lists, and
// an optional parent link. Nodes are created lazily the first time a state is
// referenced and persist for the machine's lifetime.
//
// Nodes are obtained through Machine.Configure and configured fluently:
//
//	m.Configure("paused").
//		OnEntry(notify, "notify").
//		SubstateOf("running")
type Node[S, E comparable] struct {
	state       S
	parent      *Node[S, E]
	transitions map[E]*transition[S, E]
	entry       []action[S, E]
	exit        []action[S, E]

	// lookup resolves (and lazily creates) sibling nodes in the owning
	// machine's registry.
	lookup func(S) *Node[S, E]
}

func newNode[S, E comparable](state S, lookup func(S) *Node[S, E]) *Node[S, E] {
	return &Node[S, E]{
		state:       state,
		transitions: make(map[E]*transition[S, E]),
		lookup:      lookup,
	}
}

// State returns the state identifier this node represents.
func (n *Node[S, E]) State() S {
	return n.state
}

// Permit registers a transition from this state to target when event fires.
// Registering a second transition for the same event on the same node fails
// immediately with ErrDuplicateEvent, regardless of target or guard.
func (n *Node[S, E]) Permit(event E, target S) error {
	return n.permit(event, target, nil, "")
}

// PermitIf registers a guarded transition. The guard is evaluated against the
// data payload at fire time; rejection is indistinguishable from the event
// being unregistered on this node, so resolution escalates to the parent.
// The optional name labels the guard in the graph export.
func (n *Node[S, E]) PermitIf(event E, target S, guard GuardFunc, name ...string) error {
	return n.permit(event, target, guard, firstOrEmpty(name))
}

func (n *Node[S, E]) permit(event E, target S, guard GuardFunc, guardName string) error {
	if _, exists := n.transitions[event]; exists {
		return fmt.Errorf("permit %v on state %v: %w", event, n.state, ErrDuplicateEvent)
	}
	// Referencing the target materializes its node in the registry.
	n.lookup(target)
	n.transitions[event] = &transition[S, E]{
		event:     event,
		target:    target,
		guard:     guard,
		guardName: guardName,
	}
	return nil
}

// SubstateOf links this state under a parent, making it inherit the parent's
// event handling and count as "in" the parent for IsInState. A node has a
// single parent; calling SubstateOf again replaces the previous link. Links
// that would close a cycle are rejected with ErrCyclicHierarchy.
func (n *Node[S, E]) SubstateOf(parent S) error {
	p := n.lookup(parent)
	for walk := p; walk != nil; walk = walk.parent {
		if walk == n {
			return fmt.Errorf("substate %v of %v: %w", n.state, parent, ErrCyclicHierarchy)
		}
	}
	n.parent = p
	return nil
}

// OnEntry appends a callback to run after the machine has moved into this
// state. Multiple callbacks are supported and run in registration order. The
// optional name labels the callback in the graph export.
func (n *Node[S, E]) OnEntry(fn Action[S, E], name ...string) *Node[S, E] {
	n.entry = append(n.entry, action[S, E]{fn: fn, name: firstOrEmpty(name)})
	return n
}

// OnExit appends a callback to run before the machine leaves this state.
// Multiple callbacks are supported and run in registration order. The
// optional name labels the callback in the graph export.
func (n *Node[S, E]) OnExit(fn Action[S, E], name ...string) *Node[S, E] {
	n.exit = append(n.exit, action[S, E]{fn: fn, name: firstOrEmpty(name)})
	return n
}

// resolve walks the ancestor chain starting at this node and returns the
// first transition registered for event whose guard admits data. The nearest
// node wins, which is how substates override inherited event handling.
func (n *Node[S, E]) resolve(event E, data any) *transition[S, E] {
	for walk := n; walk != nil; walk = walk.parent {
		if t, ok := walk.transitions[event]; ok && t.accepts(data) {
			return t
		}
	}
	return nil
}

// isIncludedIn reports whether this state is the given state or one of its
// descendants through the parent chain.
func (n *Node[S, E]) isIncludedIn(state S) bool {
	for walk := n; walk != nil; walk = walk.parent {
		if walk.state == state {
			return true
		}
	}
	return false
}

// permittedEvents collects the events registered on this node and all its
// ancestors, de-duplicated. Guard outcomes are not consulted: this reports
// configured reachability.
func (n *Node[S, E]) permittedEvents() []E {
	seen := make(map[E]struct{})
	var events []E
	for walk := n; walk != nil; walk = walk.parent {
		for event := range walk.transitions {
			if _, ok := seen[event]; ok {
				continue
			}
			seen[event] = struct{}{}
			events = append(events, event)
		}
	}
	return events
}

func firstOrEmpty(s []string) string {
	if len(s) > 0 {
		return s[0]
	}
	return ""
}
