/*
Package espalier is an embeddable hierarchical finite-state-machine engine: named states, guarded event-triggered transitions, and lifecycle callbacks, with single-parent state hierarchies.

States form a forest through parent links. An event fired on a substate escalates up the ancestor chain until a node owns a transition for it whose guard accepts the payload; the nearest node wins, which is how substates override inherited event handling. Events no node handles are a silent no-op.

# Concept

The engine separates the transition algorithm from state storage. A Machine owns the registry of state nodes; the current state identifier lives behind the StateStore contract, so it can sit in process memory (the default), behind a host-supplied accessor/mutator pair, or in an external store such as Redis. This Hexagonal Architecture allows Espalier to be embedded in any interface: CLI, HTTP server, or host application code.

# Key Features

  - Hierarchical resolution: substates inherit and override ancestor event handling.
  - Pluggable persistence: the core only requires a get/set contract for the current state.
  - Deterministic callback ordering: exit callbacks, then the store write, then entry callbacks.
  - Diagnostic export: the registry renders as a Graphviz DOT digraph.

# Usage

	package main

	import (
		"context"
		"log"

		"github.com/aretw0/espalier"
	)

	func main() {
		m, err := espalier.New[string, string]("idle")
		if err != nil {
			log.Fatal(err)
		}

		m.Configure("idle").Permit("start", "running")
		m.Configure("running").Permit("pause", "paused")
		m.Configure("paused").SubstateOf("running")
		m.Configure("paused").Permit("resume", "running")

		ctx := context.Background()
		if err := m.Fire(ctx, "start", nil); err != nil {
			log.Fatal(err)
		}

		state, _ := m.State(ctx)
		log.Println("state:", state) // running
	}

The machine is synchronous and performs no locking; see Machine for the concurrency contract.
*/
package espalier
