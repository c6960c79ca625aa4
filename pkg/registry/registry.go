// Package registry resolves the guard and hook names referenced by
// declarative machine definitions to their Go implementations.
package registry

import (
	"sync"

	"github.com/aretw0/espalier"
)

// Guard is a named guard predicate for string-keyed machines.
type Guard = espalier.GuardFunc

// Hook is a named entry/exit callback for string-keyed machines.
type Hook = espalier.Action[string, string]

// Registry manages the guards and hooks available to definition files.
// Safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	guards map[string]Guard
	hooks  map[string]Hook
}

// New creates a new empty registry.
func New() *Registry {
	return &Registry{
		guards: make(map[string]Guard),
		hooks:  make(map[string]Hook),
	}
}

// RegisterGuard adds a guard under a name. If the name exists, it is
// overwritten.
func (r *Registry) RegisterGuard(name string, fn Guard) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.guards[name] = fn
}

// RegisterHook adds an entry/exit callback under a name. If the name exists,
// it is overwritten.
func (r *Registry) RegisterHook(name string, fn Hook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks[name] = fn
}

// Guard looks up a guard by name.
func (r *Registry) Guard(name string) (Guard, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.guards[name]
	return fn, ok
}

// Hook looks up a callback by name.
func (r *Registry) Hook(name string) (Hook, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.hooks[name]
	return fn, ok
}
