package vars_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aescanero/dago-interpolate/internal/vars"
)

func TestBuild_LocalShadowsGlobal(t *testing.T) {
	ctx := vars.Build(
		map[string]any{"env": "prod", "region": "eu"},
		map[string]any{"Env": "staging"},
	)

	v, ok := ctx.Lookup("env")
	require.True(t, ok)
	assert.Equal(t, "staging", v)

	v, ok = ctx.Lookup("REGION")
	require.True(t, ok)
	assert.Equal(t, "eu", v)

	assert.Equal(t, 2, ctx.Len())
}

func TestContext_CaseInsensitiveLookup(t *testing.T) {
	ctx := vars.Build(nil, map[string]any{"UserName": "alice"})

	for _, name := range []string{"UserName", "username", "USERNAME"} {
		v, ok := ctx.Lookup(name)
		require.True(t, ok, name)
		assert.Equal(t, "alice", v)
	}

	_, ok := ctx.Lookup("missing")
	assert.False(t, ok)
}

func TestContext_DeclaredType(t *testing.T) {
	ctx := vars.Build(nil, map[string]any{
		"count": 42,
		"none":  nil,
	})

	typ, ok := ctx.DeclaredType("count")
	require.True(t, ok)
	assert.Equal(t, reflect.Int, typ.Kind())

	typ, ok = ctx.DeclaredType("none")
	require.True(t, ok)
	assert.Nil(t, typ)
}

func TestContext_ShapeID(t *testing.T) {
	a := vars.Build(nil, map[string]any{"x": 1, "y": "s"})
	b := vars.Build(nil, map[string]any{"Y": "other", "X": 99})
	c := vars.Build(nil, map[string]any{"x": 1.5, "y": "s"})

	// Same names bound to the same kinds share a shape regardless of values
	// or declaration case.
	assert.Equal(t, a.ShapeID(), b.ShapeID())

	// A kind change produces a different shape.
	assert.NotEqual(t, a.ShapeID(), c.ShapeID())

	// Empty contexts have an empty shape.
	assert.Equal(t, "", vars.New().ShapeID())
}

func TestContext_NamesKeepDeclarationOrder(t *testing.T) {
	ctx := vars.New()
	ctx.Merge(map[string]any{"b": 1})
	ctx.Merge(map[string]any{"a": 2})
	ctx.Merge(map[string]any{"B": 3}) // shadows, does not reorder

	assert.Equal(t, []string{"B", "a"}, ctx.Names())
}
