package symtab_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bbcbasic/pkg/symtab"
	"bbcbasic/pkg/value"
)

func TestDeclareAndLookup(t *testing.T) {
	t.Parallel()

	tab := symtab.New()
	_, ok := tab.Lookup("x")
	assert.False(t, ok)

	slot := tab.Declare("n%", value.Float(3.7))
	assert.Equal(t, value.Int(3), slot.Get())

	got, ok := tab.Lookup("n%")
	require.True(t, ok)
	assert.Same(t, slot, got)
}

func TestScopesShadowAndRestore(t *testing.T) {
	t.Parallel()

	tab := symtab.New()
	outer := tab.Declare("x", value.Float(1))

	tab.PushScope()
	require.NoError(t, tab.Local("x"))
	inner, _ := tab.Lookup("x")
	require.NoError(t, inner.Set(value.Float(5)))
	assert.Equal(t, value.Float(1), outer.Get())

	tab.PushScope()
	seen, _ := tab.Lookup("x")
	assert.Equal(t, value.Float(5), seen.Get(), "callees see their caller's locals")

	tab.Unwind(0)
	assert.Zero(t, tab.Depth())
	got, _ := tab.Lookup("x")
	assert.Equal(t, value.Float(1), got.Get())
}

func TestDeclareInsideScopeIsGlobal(t *testing.T) {
	t.Parallel()

	tab := symtab.New()
	tab.PushScope()
	tab.Declare("g", value.Float(2))
	tab.PopScope()

	got, ok := tab.Lookup("g")
	require.True(t, ok)
	assert.Equal(t, value.Float(2), got.Get())
}

func TestBindOutsideScope(t *testing.T) {
	t.Parallel()

	tab := symtab.New()
	assert.ErrorIs(t, tab.Bind("a", value.NewCell(value.KindFloat)), symtab.ErrNoScope)
	assert.ErrorIs(t, tab.Local("a"), symtab.ErrNoScope)
}

func TestDim(t *testing.T) {
	t.Parallel()

	tab := symtab.New()
	arr, err := tab.Dim("a%(", []int{4, 5})
	require.NoError(t, err)
	assert.Equal(t, value.KindInt, arr.Elem)
	assert.Equal(t, 20, arr.Len())

	_, err = tab.Dim("a%(", []int{2})
	assert.ErrorIs(t, err, symtab.ErrRedimension)

	_, err = tab.Dim("b(", []int{0})
	assert.ErrorIs(t, err, value.ErrRange)
}

func TestLocalArray(t *testing.T) {
	t.Parallel()

	tab := symtab.New()
	_, err := tab.Dim("a(", []int{2})
	require.NoError(t, err)

	tab.PushScope()
	require.NoError(t, tab.Local("a("))
	local, err := tab.Dim("a(", []int{6})
	require.NoError(t, err)
	assert.Equal(t, 6, local.Len())
	tab.PopScope()

	s, _ := tab.Lookup("a(")
	assert.Equal(t, 2, s.Get().Arr.Len())
}

func TestClearAndGlobals(t *testing.T) {
	t.Parallel()

	tab := symtab.New()
	tab.Declare("s$", value.String("hi"))
	assert.Equal(t, map[string]value.Value{"s$": value.String("hi")}, tab.Globals())

	tab.Clear()
	assert.Empty(t, tab.Globals())
}
