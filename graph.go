package espalier

import (
	"fmt"
	"sort"
	"strings"
)

// anonymousLabel is the placeholder node name used in the graph export for
// callbacks registered without a diagnostic name.
const anonymousLabel = "anonymous"

// Graph renders the machine's registry as a Graphviz DOT digraph: one edge
// per configured transition (labeled with the event and, when guarded, the
// guard's diagnostic name in brackets) and one edge per entry/exit callback
// (state to callback name, labeled "On Entry"/"On Exit").
//
// The traversal is read-only: no guards are evaluated and nothing is mutated.
// Output ordering is deterministic.
func Graph[S, E comparable](m *Machine[S, E]) string {
	var sb strings.Builder
	sb.WriteString("digraph {\n")
	sb.WriteString("compound=true;\n")
	sb.WriteString("rankdir=\"LR\"\n")

	for _, state := range sortedKeys(m.nodes) {
		node := m.nodes[state]
		source := escapeLabel(fmt.Sprintf("%v", state))

		events := make([]string, 0, len(node.transitions))
		byEvent := make(map[string]*transition[S, E], len(node.transitions))
		for event, t := range node.transitions {
			key := fmt.Sprintf("%v", event)
			events = append(events, key)
			byEvent[key] = t
		}
		sort.Strings(events)

		for _, event := range events {
			t := byEvent[event]
			label := escapeLabel(event)
			if t.guard != nil {
				name := t.guardName
				if name == "" {
					name = anonymousLabel
				}
				label = fmt.Sprintf("%s [%s]", label, escapeLabel(name))
			}
			fmt.Fprintf(&sb, "\"%s\" -> \"%s\" [label=\"%s\"];\n",
				source, escapeLabel(fmt.Sprintf("%v", t.target)), label)
		}

		for _, a := range node.entry {
			fmt.Fprintf(&sb, "\"%s\" -> \"%s\" [label=\"On Entry\"];\n",
				source, escapeLabel(callbackName(a.name)))
		}
		for _, a := range node.exit {
			fmt.Fprintf(&sb, "\"%s\" -> \"%s\" [label=\"On Exit\"];\n",
				source, escapeLabel(callbackName(a.name)))
		}
	}

	sb.WriteString("}\n")
	return sb.String()
}

func callbackName(name string) string {
	if name == "" {
		return anonymousLabel
	}
	return name
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}

func sortedKeys[S comparable, V any](m map[S]V) []S {
	keys := make([]S, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return fmt.Sprintf("%v", keys[i]) < fmt.Sprintf("%v", keys[j])
	})
	return keys
}
