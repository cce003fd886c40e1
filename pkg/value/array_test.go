package value_test

import (
	"testing"

	"bbcbasic/pkg/value"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filled(t *testing.T, k value.Kind, fill value.Value, dims ...int) *value.Array {
	t.Helper()

	a, err := value.NewArray(k, dims...)
	require.NoError(t, err)
	require.NoError(t, a.Assign(fill))
	return a
}

func TestArrayShapeMismatch(t *testing.T) {
	t.Parallel()

	a := filled(t, value.KindInt, value.Int(1), 3, 4)
	b := filled(t, value.KindInt, value.Int(2), 3, 5)

	_, err := value.Binary(value.OpAdd, value.FromArray(a), value.FromArray(b))
	require.ErrorIs(t, err, value.ErrDimMismatch)

	c := filled(t, value.KindInt, value.Int(2), 12)
	_, err = value.Binary(value.OpAdd, value.FromArray(a), value.FromArray(c))
	require.ErrorIs(t, err, value.ErrDimMismatch)

	// operands are untouched
	for _, e := range a.Elems {
		assert.Equal(t, value.Int(1), e)
	}
}

func TestArrayElementwise(t *testing.T) {
	t.Parallel()

	a := filled(t, value.KindInt, value.Int(3), 3, 4)
	b := filled(t, value.KindInt, value.Int(4), 3, 4)

	r, err := value.Binary(value.OpMul, value.FromArray(a), value.FromArray(b))
	require.NoError(t, err)
	require.Equal(t, value.KindArray, r.Kind)
	assert.Equal(t, []int{3, 4}, r.Arr.Dims)
	assert.Equal(t, value.KindInt, r.Arr.Elem)
	for _, e := range r.Arr.Elems {
		assert.Equal(t, value.Int(12), e)
	}
	assert.NotSame(t, a, r.Arr)
}

func TestArrayScalarBroadcast(t *testing.T) {
	t.Parallel()

	a := filled(t, value.KindFloat, value.Float(1.5), 3, 4)

	r, err := value.Binary(value.OpSub, value.Int(10), value.FromArray(a))
	require.NoError(t, err)
	assert.Equal(t, 12, r.Arr.Len())
	for _, e := range r.Arr.Elems {
		assert.Equal(t, value.Float(8.5), e)
	}
}

func TestArrayPromotionKeepsUniformKind(t *testing.T) {
	t.Parallel()

	a, err := value.NewArray(value.KindInt, 2)
	require.NoError(t, err)
	a.Elems[0] = value.Int(1)
	a.Elems[1] = value.Int(2147483647)

	r, err := value.Binary(value.OpAdd, value.FromArray(a), value.Int(1))
	require.NoError(t, err)
	assert.Equal(t, value.KindInt64, r.Arr.Elem)
	assert.Equal(t, []value.Value{value.Int64(2), value.Int64(2147483648)}, r.Arr.Elems)
}

func TestArrayErrorsLeaveNoResult(t *testing.T) {
	t.Parallel()

	a := filled(t, value.KindInt, value.Int(0), 4)
	r, err := value.Binary(value.OpDiv, value.Int(1), value.FromArray(a))
	require.ErrorIs(t, err, value.ErrDivisionByZero)
	assert.Nil(t, r.Arr)

	_, err = value.Binary(value.OpEq, value.FromArray(a), value.FromArray(a))
	require.ErrorIs(t, err, value.ErrTypeMismatch)
}

func TestArrayIndex(t *testing.T) {
	t.Parallel()

	a, err := value.NewArray(value.KindInt, 3, 4)
	require.NoError(t, err)

	off, err := a.Index([]int{2, 3})
	require.NoError(t, err)
	assert.Equal(t, 11, off)

	_, err = a.Index([]int{3, 0})
	require.ErrorIs(t, err, value.ErrSubscript)

	_, err = a.Index([]int{1})
	require.ErrorIs(t, err, value.ErrSubscript)
}

func TestArrayAssignIsAllOrNothing(t *testing.T) {
	t.Parallel()

	dst := filled(t, value.KindInt, value.Int(7), 3)
	src, err := value.NewArray(value.KindFloat, 3)
	require.NoError(t, err)
	src.Elems[0] = value.Float(1.9)
	src.Elems[1] = value.Float(5e10)

	require.ErrorIs(t, dst.Assign(value.FromArray(src)), value.ErrRange)
	for _, e := range dst.Elems {
		assert.Equal(t, value.Int(7), e)
	}

	src.Elems[1] = value.Float(-2.5)
	require.NoError(t, dst.Assign(value.FromArray(src)))
	assert.Equal(t, []value.Value{value.Int(1), value.Int(-2), value.Int(0)}, dst.Elems)
}

func TestArraySum(t *testing.T) {
	t.Parallel()

	a := filled(t, value.KindInt, value.Int(5), 2, 3)
	s, err := a.Sum()
	require.NoError(t, err)
	assert.Equal(t, value.Int(30), s)
}
