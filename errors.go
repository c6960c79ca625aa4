package espalier

import "errors"

// ErrDuplicateEvent is returned when a second transition is registered for an
// event that already has one on the same state node.
var ErrDuplicateEvent = errors.New("event already registered on state")

// ErrCyclicHierarchy is returned when a parent link would close a cycle in the
// state hierarchy.
var ErrCyclicHierarchy = errors.New("cyclic state hierarchy")
