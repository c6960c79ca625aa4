// Package definition loads declarative machine definitions from YAML and
// builds runnable machines out of them. Guards and entry/exit hooks are
// referenced by name and resolved through a registry.
package definition

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/pkg/registry"
)

// Definition is a parsed machine definition file.
type Definition struct {
	Initial    string
	AllowLoops bool
	States     []State
}

// State declares one state: its parent link, outgoing transitions, and the
// names of its entry/exit hooks.
type State struct {
	ID          string       `mapstructure:"id"`
	Parent      string       `mapstructure:"parent"`
	Transitions []Transition `mapstructure:"transitions"`
	OnEntry     []string     `mapstructure:"on_entry"`
	OnExit      []string     `mapstructure:"on_exit"`
}

// Transition declares one outgoing transition.
type Transition struct {
	Event string `mapstructure:"event"`
	To    string `mapstructure:"to"`
	Guard string `mapstructure:"guard"`
}

// rawDefinition is the YAML shape before state entries are decoded. States
// are kept as loose maps so mapstructure can normalize key casing and report
// type mismatches with field context.
type rawDefinition struct {
	Initial    string           `yaml:"initial"`
	AllowLoops bool             `yaml:"allow_loops"`
	States     []map[string]any `yaml:"states"`
}

// Parse reads a YAML definition document.
func Parse(data []byte) (*Definition, error) {
	var raw rawDefinition
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse definition: %w", err)
	}
	if raw.Initial == "" {
		return nil, fmt.Errorf("definition missing initial state")
	}

	def := &Definition{
		Initial:    raw.Initial,
		AllowLoops: raw.AllowLoops,
	}

	seen := make(map[string]bool)
	for i, entry := range raw.States {
		var state State
		if err := mapstructure.Decode(entry, &state); err != nil {
			return nil, fmt.Errorf("failed to decode state #%d: %w", i, err)
		}
		if state.ID == "" {
			return nil, fmt.Errorf("state #%d missing id", i)
		}
		if seen[state.ID] {
			return nil, fmt.Errorf("state %q declared twice", state.ID)
		}
		seen[state.ID] = true
		def.States = append(def.States, state)
	}

	return def, nil
}

// Load reads and parses a definition file.
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read definition: %w", err)
	}
	return Parse(data)
}

// BuildOption configures Build.
type BuildOption func(*builder)

type builder struct {
	lenient     bool
	machineOpts []espalier.Option[string, string]
}

// Lenient makes Build substitute placeholders for guard and hook names the
// registry cannot resolve: guards become always-true (keeping their name for
// the graph export), hooks become no-ops. Used by tooling that only needs the
// machine's shape, not its behavior.
func Lenient() BuildOption {
	return func(b *builder) {
		b.lenient = true
	}
}

// WithMachineOptions forwards options to the constructed machine.
func WithMachineOptions(opts ...espalier.Option[string, string]) BuildOption {
	return func(b *builder) {
		b.machineOpts = append(b.machineOpts, opts...)
	}
}

// Build constructs a machine from the definition, resolving guard and hook
// names through reg. A nil registry resolves nothing. Unresolved names are
// errors unless Lenient is given; duplicate events and cyclic parent links
// surface as the core's configuration errors.
func (d *Definition) Build(reg *registry.Registry, opts ...BuildOption) (*espalier.Machine[string, string], error) {
	b := &builder{}
	for _, opt := range opts {
		opt(b)
	}

	machineOpts := b.machineOpts
	if d.AllowLoops {
		machineOpts = append(machineOpts, espalier.AllowLoops[string, string]())
	}
	m, err := espalier.New(d.Initial, machineOpts...)
	if err != nil {
		return nil, err
	}

	for _, state := range d.States {
		node := m.Configure(state.ID)

		if state.Parent != "" {
			if err := node.SubstateOf(state.Parent); err != nil {
				return nil, err
			}
		}

		for _, t := range state.Transitions {
			if t.Event == "" || t.To == "" {
				return nil, fmt.Errorf("state %q: transition needs event and to", state.ID)
			}
			if t.Guard == "" {
				if err := node.Permit(t.Event, t.To); err != nil {
					return nil, err
				}
				continue
			}
			guard, err := b.resolveGuard(reg, state.ID, t.Guard)
			if err != nil {
				return nil, err
			}
			if err := node.PermitIf(t.Event, t.To, guard, t.Guard); err != nil {
				return nil, err
			}
		}

		for _, name := range state.OnEntry {
			hook, err := b.resolveHook(reg, state.ID, name)
			if err != nil {
				return nil, err
			}
			node.OnEntry(hook, name)
		}
		for _, name := range state.OnExit {
			hook, err := b.resolveHook(reg, state.ID, name)
			if err != nil {
				return nil, err
			}
			node.OnExit(hook, name)
		}
	}

	return m, nil
}

func (b *builder) resolveGuard(reg *registry.Registry, stateID, name string) (espalier.GuardFunc, error) {
	if reg != nil {
		if fn, ok := reg.Guard(name); ok {
			return fn, nil
		}
	}
	if b.lenient {
		return func(any) bool { return true }, nil
	}
	return nil, fmt.Errorf("state %q: unknown guard %q", stateID, name)
}

func (b *builder) resolveHook(reg *registry.Registry, stateID, name string) (registry.Hook, error) {
	if reg != nil {
		if fn, ok := reg.Hook(name); ok {
			return fn, nil
		}
	}
	if b.lenient {
		return func(context.Context, espalier.Transition[string, string]) error { return nil }, nil
	}
	return nil, fmt.Errorf("state %q: unknown hook %q", stateID, name)
}

// Validate performs structural checks without building a machine: duplicate
// events per state, undeclared transition targets and parents, parent cycles,
// and (when reg is non-nil) unresolved guard/hook names. All findings are
// joined into one error.
func (d *Definition) Validate(reg *registry.Registry) error {
	var errs []error

	declared := make(map[string]bool, len(d.States))
	for _, s := range d.States {
		declared[s.ID] = true
	}
	if !declared[d.Initial] {
		errs = append(errs, fmt.Errorf("initial state %q not declared", d.Initial))
	}

	parent := make(map[string]string)
	for _, s := range d.States {
		if s.Parent != "" {
			parent[s.ID] = s.Parent
			if !declared[s.Parent] {
				errs = append(errs, fmt.Errorf("state %q: parent %q not declared", s.ID, s.Parent))
			}
		}

		events := make(map[string]bool)
		for _, t := range s.Transitions {
			if events[t.Event] {
				errs = append(errs, fmt.Errorf("state %q: event %q declared twice: %w", s.ID, t.Event, espalier.ErrDuplicateEvent))
			}
			events[t.Event] = true
			if !declared[t.To] {
				errs = append(errs, fmt.Errorf("state %q: transition target %q not declared", s.ID, t.To))
			}
			if t.Guard != "" && reg != nil {
				if _, ok := reg.Guard(t.Guard); !ok {
					errs = append(errs, fmt.Errorf("state %q: unknown guard %q", s.ID, t.Guard))
				}
			}
		}

		if reg != nil {
			for _, name := range append(append([]string{}, s.OnEntry...), s.OnExit...) {
				if _, ok := reg.Hook(name); !ok {
					errs = append(errs, fmt.Errorf("state %q: unknown hook %q", s.ID, name))
				}
			}
		}
	}

	// Cycle check over parent links.
	for id := range parent {
		slow, seen := id, map[string]bool{id: true}
		for {
			next, ok := parent[slow]
			if !ok {
				break
			}
			if seen[next] {
				errs = append(errs, fmt.Errorf("state %q: %w", id, espalier.ErrCyclicHierarchy))
				break
			}
			seen[next] = true
			slow = next
		}
	}

	return errors.Join(errs...)
}
