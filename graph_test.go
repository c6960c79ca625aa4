package espalier_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/espalier"
)

func TestGraph_Transitions(t *testing.T) {
	m := newLifecycle(t)
	dot := espalier.Graph(m)

	assert.True(t, strings.HasPrefix(dot, "digraph {\n"))
	assert.True(t, strings.HasSuffix(dot, "}\n"))
	assert.Contains(t, dot, `"idle" -> "running" [label="start"];`)
	assert.Contains(t, dot, `"running" -> "paused" [label="pause"];`)
	assert.Contains(t, dot, `"paused" -> "running" [label="resume"];`)
}

func TestGraph_GuardLabels(t *testing.T) {
	m, err := espalier.New[string, string]("a")
	require.NoError(t, err)
	require.NoError(t, m.Configure("a").PermitIf("ev", "b", func(any) bool { return true }, "isReady"))
	require.NoError(t, m.Configure("a").PermitIf("other", "b", func(any) bool { return true }))

	dot := espalier.Graph(m)
	assert.Contains(t, dot, `"a" -> "b" [label="ev [isReady]"];`)
	assert.Contains(t, dot, `"a" -> "b" [label="other [anonymous]"];`)
}

func TestGraph_CallbackEdges(t *testing.T) {
	m, err := espalier.New[string, string]("a")
	require.NoError(t, err)
	noop := func(context.Context, espalier.Transition[string, string]) error { return nil }
	m.Configure("a").
		OnEntry(noop, "greet").
		OnExit(noop, "cleanup").
		OnExit(noop)

	dot := espalier.Graph(m)
	assert.Contains(t, dot, `"a" -> "greet" [label="On Entry"];`)
	assert.Contains(t, dot, `"a" -> "cleanup" [label="On Exit"];`)
	assert.Contains(t, dot, `"a" -> "anonymous" [label="On Exit"];`)
}

func TestGraph_Deterministic(t *testing.T) {
	m := newLifecycle(t)
	first := espalier.Graph(m)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, espalier.Graph(m))
	}
}

func TestGraph_ReadOnly(t *testing.T) {
	guardCalls := 0
	m, err := espalier.New[string, string]("a")
	require.NoError(t, err)
	require.NoError(t, m.Configure("a").PermitIf("ev", "b", func(any) bool {
		guardCalls++
		return true
	}, "counting"))

	espalier.Graph(m)
	assert.Zero(t, guardCalls, "export must not evaluate guards")
}
