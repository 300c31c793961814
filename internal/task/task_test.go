package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&Task{Name: "build", Aliases: []string{"b"}}))

	assert.Error(t, r.Register(&Task{Name: "build"}), "duplicate name")
	assert.Error(t, r.Register(&Task{Name: "b"}), "name colliding with alias")
	assert.Error(t, r.Register(&Task{Name: "bake", Aliases: []string{"b"}}), "duplicate alias")
	assert.Error(t, r.Register(&Task{Name: ""}), "empty name")
}

func TestRegistry_Resolve(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&Task{Name: "test", Aliases: []string{"t"}}))

	byName, ok := r.Resolve("test")
	require.True(t, ok)
	byAlias, ok := r.Resolve("t")
	require.True(t, ok)
	assert.Same(t, byName, byAlias)

	_, ok = r.Resolve("missing")
	assert.False(t, ok)
}

func TestRegistry_All_Sorted(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, r.Register(&Task{Name: name}))
	}

	var names []string
	for _, task := range r.All() {
		names = append(names, task.Name)
	}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, names)
}

func TestRegistry_Graph(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&Task{Name: "format"}))
	require.NoError(t, r.Register(&Task{Name: "fix", Deps: []string{"format"}}))

	g, err := r.Graph()
	require.NoError(t, err)
	assert.NotNil(t, g)
}

func TestRegistry_Graph_AliasedDep(t *testing.T) {
	// A dependency named by alias resolves to the canonical task: routing
	// "b" to "build" below closes a cycle that only exists canonically.
	r := NewRegistry()
	require.NoError(t, r.Register(&Task{Name: "build", Aliases: []string{"b"}, Deps: []string{"release"}}))
	require.NoError(t, r.Register(&Task{Name: "release", Deps: []string{"b"}}))

	_, err := r.Graph()
	assert.ErrorContains(t, err, "cycle")
}

func TestRegistry_Graph_UnknownDep(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&Task{Name: "broken", Deps: []string{"missing"}}))

	_, err := r.Graph()
	assert.ErrorContains(t, err, "unknown task")
}

func TestRegistry_Graph_Cycle(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&Task{Name: "a", Deps: []string{"b"}}))
	require.NoError(t, r.Register(&Task{Name: "b", Deps: []string{"a"}}))

	_, err := r.Graph()
	assert.ErrorContains(t, err, "cycle")
}
