package eval_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bbcbasic/pkg/eval"
	"bbcbasic/pkg/value"
)

func TestPrecedence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		src  string
		want value.Value
	}{
		{"2+3*4", value.Int(14)},
		{"(2+3)*4", value.Int(20)},
		{"2^3^2", value.Int(512)},
		{"(2^3)^2", value.Int(64)},
		{"10-4-3", value.Int(3)},
		{"100 DIV 7 MOD 4", value.Int(2)},
		{"-2^2", value.Int(4)},
		{"1+2=3", value.Int(value.True)},
		{"1<2 AND 3<2", value.Int(value.False)},
		{"1<2 OR 3<2", value.Int(value.True)},
		{"6 AND 3 EOR 1", value.Int(3)},
		{"1<<4+1", value.Int(32)},
		{"-16>>2", value.Int(-4)},
		{"-16>>>28", value.Int(15)},
		{"NOT 0", value.Int(-1)},
		{"7/2", value.Float(3.5)},
		{"1.5*2", value.Float(3)},
		{"&FF+%101", value.Int(260)},
		{"&FFFFFFFF", value.Int(-1)},
		{`"ab"+"cd"`, value.String("abcd")},
		{`"abc"<"abd"`, value.Int(value.True)},
		{"TRUE=-1", value.Int(value.True)},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			t.Parallel()

			e := newEnv(t)
			assert.Equal(t, tt.want, e.mustEval(t, tt.src))
		})
	}
}

func TestPromotion(t *testing.T) {
	t.Parallel()

	e := newEnv(t)

	v := e.mustEval(t, "&7FFFFFFF+1")
	assert.Equal(t, value.Int64(2147483648), v)

	v = e.mustEval(t, "2147483648")
	assert.Equal(t, value.KindInt64, v.Kind)

	v = e.mustEval(t, "9223372036854775807+1")
	assert.Equal(t, value.KindFloat, v.Kind)

	v = e.mustEval(t, "99999999999999999999")
	assert.Equal(t, value.KindFloat, v.Kind)
}

func TestExpressionErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		src  string
		kind error
	}{
		{`1+"a"`, eval.ErrTypeMismatch},
		{`"a"*2`, eval.ErrTypeMismatch},
		{"1/0", eval.ErrDivisionByZero},
		{"1 DIV 0", eval.ErrDivisionByZero},
		{"5 MOD 0", eval.ErrDivisionByZero},
		{"(1+2", eval.ErrSyntax},
		{"1+", eval.ErrSyntax},
		{"*2", eval.ErrSyntax},
		{"x+1", eval.ErrNoSuchVariable},
		{"FNmissing(1)", eval.ErrNoSuchFunction},
		{`-"a"`, eval.ErrTypeMismatch},
		{`+"a"`, eval.ErrTypeMismatch},
		{`NOT "a"`, eval.ErrTypeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			t.Parallel()

			e := newEnv(t)
			_, err := e.eval(t, tt.src)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)

			var ee *eval.Error
			assert.True(t, errors.As(err, &ee), "error carries a position")
		})
	}
}

func TestStatementBaseline(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	mark := e.ctx.Mark()

	// the failure happens while 1 and 2 wait on the operand stack
	_, err := e.eval(t, `1+(2*(3+"x"))`)
	require.ErrorIs(t, err, eval.ErrTypeMismatch)
	assert.Greater(t, e.ctx.StackDepth(), mark)

	e.ctx.Reset(mark)
	assert.Equal(t, mark, e.ctx.StackDepth())

	assert.Equal(t, value.Int(7), e.mustEval(t, "1+2*3"))
	assert.Equal(t, mark, e.ctx.StackDepth())
}

func TestTooComplex(t *testing.T) {
	t.Parallel()

	e := newEnv(t, eval.WithMaxDepth(16))

	src := ""
	for range 20 {
		src += "("
	}
	src += "1"
	for range 20 {
		src += ")"
	}

	_, err := e.eval(t, src)
	assert.ErrorIs(t, err, eval.ErrTooComplex)
}

func TestOperandStackLimit(t *testing.T) {
	t.Parallel()

	e := newEnv(t, eval.WithStackLimit(2))

	_, err := e.eval(t, "1+(2+(3+(4+5)))")
	assert.ErrorIs(t, err, eval.ErrTooComplex)
}

func TestErrorNumbers(t *testing.T) {
	t.Parallel()

	e := newEnv(t)

	_, err := e.eval(t, `1+"a"`)
	assert.Equal(t, 6, eval.Number(err))
	assert.Equal(t, "Type mismatch", eval.Message(err))

	_, err = e.eval(t, "1/0")
	assert.Equal(t, 18, eval.Number(err))

	_, err = e.eval(t, "1+")
	assert.Equal(t, 16, eval.Number(err))

	_, err = e.eval(t, "nope")
	assert.Equal(t, 26, eval.Number(err))

	assert.Equal(t, -1, eval.Number(errors.New("other")))
}
