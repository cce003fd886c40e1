package stack_test

import (
	"testing"

	"bbcbasic/pkg/stack"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushPop(t *testing.T) {
	t.Parallel()

	s := stack.NewStack(1, 2)
	require.NoError(t, s.Push(3))
	assert.Equal(t, 3, s.Size())

	for _, want := range []int{3, 2, 1} {
		got, ok := s.Pop()
		require.True(t, ok)
		assert.Equal(t, want, got)
	}

	_, ok := s.Pop()
	assert.False(t, ok)
}

func TestBoundedOverflow(t *testing.T) {
	t.Parallel()

	s := stack.NewBounded[string](2)
	require.NoError(t, s.Push("a"))
	require.NoError(t, s.Push("b"))
	require.ErrorIs(t, s.Push("c"), stack.ErrOverflow)
	assert.Equal(t, 2, s.Size())
}

func TestResetToBaseline(t *testing.T) {
	t.Parallel()

	s := stack.NewStack[int]()
	require.NoError(t, s.Push(1))
	base := s.Size()
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Push(i))
	}

	s.Reset(base)
	assert.Equal(t, base, s.Size())
	assert.Equal(t, []int{1}, s.Array())

	s.Reset(10)
	assert.Equal(t, base, s.Size())
}
