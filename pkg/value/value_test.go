package value_test

import (
	"testing"

	"bbcbasic/pkg/value"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerceTruncatesTowardZero(t *testing.T) {
	t.Parallel()

	v, err := value.Coerce(value.Float(3.9), value.KindInt)
	require.NoError(t, err)
	assert.Equal(t, value.Int(3), v)

	v, err = value.Coerce(value.Float(-3.9), value.KindInt)
	require.NoError(t, err)
	assert.Equal(t, value.Int(-3), v)

	v, err = value.Coerce(value.Float(-3.9), value.KindInt64)
	require.NoError(t, err)
	assert.Equal(t, value.Int64(-3), v)
}

func TestCoerceErrors(t *testing.T) {
	t.Parallel()

	_, err := value.Coerce(value.Float(3e9), value.KindInt)
	require.ErrorIs(t, err, value.ErrRange)

	_, err = value.Coerce(value.Int64(1<<40), value.KindInt)
	require.ErrorIs(t, err, value.ErrRange)

	_, err = value.Coerce(value.String("3"), value.KindInt)
	require.ErrorIs(t, err, value.ErrTypeMismatch)

	_, err = value.Coerce(value.Int(3), value.KindString)
	require.ErrorIs(t, err, value.ErrTypeMismatch)
}

func TestKindForName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, value.KindInt, value.KindForName("count%"))
	assert.Equal(t, value.KindInt64, value.KindForName("big%%"))
	assert.Equal(t, value.KindString, value.KindForName("name$"))
	assert.Equal(t, value.KindFloat, value.KindForName("x"))
	assert.Equal(t, value.KindString, value.KindForName("names$("))
	assert.True(t, value.IsArrayName("a%("))
}

func TestFormat(t *testing.T) {
	t.Parallel()

	tests := map[string]value.Value{
		"42":           value.Int(42),
		"-7":           value.Int64(-7),
		"3":            value.Float(3),
		"0.5":          value.Float(0.5),
		"0.3333333333": value.Float(1.0 / 3),
		"1E10":         value.Float(1e10),
		"1.5E-7":       value.Float(1.5e-7),
		"hello":        value.String("hello"),
	}

	for want, v := range tests {
		assert.Equal(t, want, v.String())
	}
}
