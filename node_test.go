package espalier_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/espalier"
)

func TestNode_DuplicateEvent(t *testing.T) {
	m, err := espalier.New[string, string]("a")
	require.NoError(t, err)

	node := m.Configure("a")
	require.NoError(t, node.Permit("ev", "b"))

	// A second registration fails regardless of target or guard.
	assert.ErrorIs(t, node.Permit("ev", "c"), espalier.ErrDuplicateEvent)
	assert.ErrorIs(t, node.PermitIf("ev", "b", func(any) bool { return true }), espalier.ErrDuplicateEvent)

	// Other nodes may register the same event independently.
	assert.NoError(t, m.Configure("b").Permit("ev", "a"))
}

func TestNode_SubstateCycles(t *testing.T) {
	m, err := espalier.New[string, string]("a")
	require.NoError(t, err)

	t.Run("Self parent", func(t *testing.T) {
		assert.ErrorIs(t, m.Configure("a").SubstateOf("a"), espalier.ErrCyclicHierarchy)
	})

	t.Run("Two-node cycle", func(t *testing.T) {
		require.NoError(t, m.Configure("child").SubstateOf("parent"))
		assert.ErrorIs(t, m.Configure("parent").SubstateOf("child"), espalier.ErrCyclicHierarchy)
	})

	t.Run("Deep cycle", func(t *testing.T) {
		require.NoError(t, m.Configure("x").SubstateOf("y"))
		require.NoError(t, m.Configure("y").SubstateOf("z"))
		assert.ErrorIs(t, m.Configure("z").SubstateOf("x"), espalier.ErrCyclicHierarchy)
	})
}

func TestNode_ParentLastWriteWins(t *testing.T) {
	ctx := context.Background()

	m, err := espalier.New[string, string]("child")
	require.NoError(t, err)
	require.NoError(t, m.Configure("child").SubstateOf("first"))
	require.NoError(t, m.Configure("child").SubstateOf("second"))

	in, err := m.IsInState(ctx, "second")
	require.NoError(t, err)
	assert.True(t, in)

	in, err = m.IsInState(ctx, "first")
	require.NoError(t, err)
	assert.False(t, in, "a node has a single parent; the last link wins")
}

func TestNode_EventOverridesAncestor(t *testing.T) {
	ctx := context.Background()

	m, err := espalier.New[string, string]("child")
	require.NoError(t, err)
	require.NoError(t, m.Configure("child").SubstateOf("parent"))
	require.NoError(t, m.Configure("parent").Permit("ev", "fromParent"))
	require.NoError(t, m.Configure("child").Permit("ev", "fromChild"))

	require.NoError(t, m.Fire(ctx, "ev", nil))
	state, err := m.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, "fromChild", state, "the nearest node's transition wins")
}
