package definition_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/pkg/definition"
	"github.com/aretw0/espalier/pkg/registry"
)

const lifecycleYAML = `
initial: idle
states:
  - id: idle
    transitions:
      - event: start
        to: running
  - id: running
    on_entry: [notify]
    transitions:
      - event: pause
        to: paused
        guard: canPause
  - id: paused
    parent: running
    transitions:
      - event: resume
        to: running
`

func TestParse(t *testing.T) {
	def, err := definition.Parse([]byte(lifecycleYAML))
	require.NoError(t, err)

	assert.Equal(t, "idle", def.Initial)
	assert.False(t, def.AllowLoops)
	require.Len(t, def.States, 3)

	running := def.States[1]
	assert.Equal(t, "running", running.ID)
	assert.Equal(t, []string{"notify"}, running.OnEntry)
	require.Len(t, running.Transitions, 1)
	assert.Equal(t, "canPause", running.Transitions[0].Guard)

	assert.Equal(t, "running", def.States[2].Parent)
}

func TestParse_Errors(t *testing.T) {
	t.Run("Missing initial", func(t *testing.T) {
		_, err := definition.Parse([]byte("states: [{id: a}]"))
		assert.ErrorContains(t, err, "missing initial state")
	})

	t.Run("Missing state id", func(t *testing.T) {
		_, err := definition.Parse([]byte("initial: a\nstates: [{parent: b}]"))
		assert.ErrorContains(t, err, "missing id")
	})

	t.Run("Duplicate state", func(t *testing.T) {
		_, err := definition.Parse([]byte("initial: a\nstates: [{id: a}, {id: a}]"))
		assert.ErrorContains(t, err, "declared twice")
	})

	t.Run("Malformed YAML", func(t *testing.T) {
		_, err := definition.Parse([]byte("initial: [broken"))
		assert.Error(t, err)
	})
}

func TestBuild(t *testing.T) {
	ctx := context.Background()

	def, err := definition.Parse([]byte(lifecycleYAML))
	require.NoError(t, err)

	entered := 0
	reg := registry.New()
	reg.RegisterGuard("canPause", func(any) bool { return true })
	reg.RegisterHook("notify", func(context.Context, espalier.Transition[string, string]) error {
		entered++
		return nil
	})

	m, err := def.Build(reg)
	require.NoError(t, err)

	require.NoError(t, m.Fire(ctx, "start", nil))
	require.NoError(t, m.Fire(ctx, "pause", nil))

	state, err := m.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, "paused", state)

	in, err := m.IsInState(ctx, "running")
	require.NoError(t, err)
	assert.True(t, in, "parent links must survive the build")
	assert.Equal(t, 1, entered, "named hooks must be wired")
}

func TestBuild_UnknownNames(t *testing.T) {
	def, err := definition.Parse([]byte(lifecycleYAML))
	require.NoError(t, err)

	t.Run("Strict fails", func(t *testing.T) {
		_, err := def.Build(registry.New())
		assert.ErrorContains(t, err, "unknown")
	})

	t.Run("Lenient substitutes placeholders", func(t *testing.T) {
		ctx := context.Background()
		m, err := def.Build(nil, definition.Lenient())
		require.NoError(t, err)

		// Placeholder guards always accept.
		require.NoError(t, m.Fire(ctx, "start", nil))
		require.NoError(t, m.Fire(ctx, "pause", nil))
		state, err := m.State(ctx)
		require.NoError(t, err)
		assert.Equal(t, "paused", state)

		// The guard name still labels the export.
		assert.Contains(t, espalier.Graph(m), "pause [canPause]")
	})
}

func TestBuild_AllowLoops(t *testing.T) {
	ctx := context.Background()

	def, err := definition.Parse([]byte(`
initial: a
allow_loops: true
states:
  - id: a
    on_exit: [leaving]
    transitions:
      - event: refresh
        to: a
`))
	require.NoError(t, err)

	exits := 0
	reg := registry.New()
	reg.RegisterHook("leaving", func(context.Context, espalier.Transition[string, string]) error {
		exits++
		return nil
	})

	m, err := def.Build(reg)
	require.NoError(t, err)

	require.NoError(t, m.Fire(ctx, "refresh", nil))
	assert.Equal(t, 1, exits)
}

func TestValidate(t *testing.T) {
	t.Run("Valid definition", func(t *testing.T) {
		def, err := definition.Parse([]byte(lifecycleYAML))
		require.NoError(t, err)
		assert.NoError(t, def.Validate(nil))
	})

	t.Run("Structural findings", func(t *testing.T) {
		def, err := definition.Parse([]byte(`
initial: missing
states:
  - id: a
    parent: ghost
    transitions:
      - event: ev
        to: nowhere
      - event: ev
        to: a
`))
		require.NoError(t, err)

		err = def.Validate(nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, espalier.ErrDuplicateEvent)
		assert.ErrorContains(t, err, `initial state "missing" not declared`)
		assert.ErrorContains(t, err, `parent "ghost" not declared`)
		assert.ErrorContains(t, err, `transition target "nowhere" not declared`)
	})

	t.Run("Cyclic parents", func(t *testing.T) {
		def, err := definition.Parse([]byte(`
initial: a
states:
  - id: a
    parent: b
  - id: b
    parent: a
`))
		require.NoError(t, err)
		assert.ErrorIs(t, def.Validate(nil), espalier.ErrCyclicHierarchy)
	})

	t.Run("Unresolved names against registry", func(t *testing.T) {
		def, err := definition.Parse([]byte(lifecycleYAML))
		require.NoError(t, err)

		err = def.Validate(registry.New())
		require.Error(t, err)
		assert.ErrorContains(t, err, `unknown guard "canPause"`)
		assert.ErrorContains(t, err, `unknown hook "notify"`)
	})
}
