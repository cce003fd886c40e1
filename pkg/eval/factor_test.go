package eval_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bbcbasic/pkg/eval"
	"bbcbasic/pkg/value"
)

func TestVariables(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	e.set(t, "a%", value.Int(6))
	e.set(t, "b", value.Float(0.5))
	e.set(t, "n$", value.String("bob"))

	assert.Equal(t, value.Float(3), e.mustEval(t, "a%*b"))
	assert.Equal(t, value.String("bobby"), e.mustEval(t, `n$+"by"`))

	_, err := e.eval(t, "a")
	assert.ErrorIs(t, err, eval.ErrNoSuchVariable)
}

func TestArrayElements(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	arr := e.dim(t, "g%", value.KindInt, 3, 4)
	arr.Elems[1*4+2] = value.Int(42)

	assert.Equal(t, value.Int(42), e.mustEval(t, "g%(1,2)"))
	assert.Equal(t, value.Int(43), e.mustEval(t, "g%(0+1,1*2)+1"))

	_, err := e.eval(t, "g%(3,0)")
	assert.ErrorIs(t, err, eval.ErrSubscript)

	_, err = e.eval(t, "g%(1)")
	assert.ErrorIs(t, err, eval.ErrSubscript)

	_, err = e.eval(t, "h(1)")
	assert.ErrorIs(t, err, eval.ErrNoSuchVariable)

	_, err = e.eval(t, "g%(1,2")
	assert.ErrorIs(t, err, eval.ErrSyntax)
}

func TestWholeArrays(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	a := e.dim(t, "a", value.KindFloat, 3, 4)
	e.dim(t, "b", value.KindFloat, 3, 5)
	for i := range a.Elems {
		a.Elems[i] = value.Float(float64(i))
	}

	v := e.mustEval(t, "a()*2")
	require.True(t, v.IsArray())
	assert.Equal(t, []int{3, 4}, v.Arr.Dims)
	assert.Equal(t, value.Float(22), v.Arr.Elems[11])
	assert.Equal(t, value.Float(11), a.Elems[11], "operands are not modified")

	v = e.mustEval(t, "a()+a()")
	assert.Equal(t, value.Float(4), v.Arr.Elems[2])

	_, err := e.eval(t, "a()+b()")
	assert.ErrorIs(t, err, eval.ErrDimMismatch)

	_, err = e.eval(t, "a()=a()")
	assert.ErrorIs(t, err, eval.ErrTypeMismatch)
}

func TestBuiltins(t *testing.T) {
	t.Parallel()

	tests := []struct {
		src  string
		want value.Value
	}{
		{"ABS -3", value.Int(3)},
		{"ABS(-2.5)", value.Float(2.5)},
		{"INT 3.9", value.Int(3)},
		{"INT -3.9", value.Int(-4)},
		{"SGN -7", value.Int(-1)},
		{"SGN 0", value.Int(0)},
		{"SQR 16", value.Float(4)},
		{"EXP 0", value.Float(1)},
		{"LN 1", value.Float(0)},
		{"LOG 1", value.Float(0)},
		{"LEN \"hello\"", value.Int(5)},
		{`ASC "A"`, value.Int(65)},
		{`ASC ""`, value.Int(-1)},
		{"CHR$ 66", value.String("B")},
		{"STR$ 12", value.String("12")},
		{"STR$ 1.5", value.String("1.5")},
		{`VAL "12abc"`, value.Int(12)},
		{`VAL "-2.5"`, value.Float(-2.5)},
		{`VAL "abc"`, value.Int(0)},
		{`LEFT$("hello",2)`, value.String("he")},
		{`LEFT$("hello")`, value.String("hell")},
		{`RIGHT$("hello",3)`, value.String("llo")},
		{`RIGHT$("hello",10)`, value.String("hello")},
		{`MID$("hello",2,3)`, value.String("ell")},
		{`MID$("hello",4)`, value.String("lo")},
		{`MID$("hello",9)`, value.String("")},
		{`STRING$(3,"ab")`, value.String("ababab")},
		{`INSTR("hello","l")`, value.Int(3)},
		{`INSTR("hello","l",4)`, value.Int(4)},
		{`INSTR("hello","z")`, value.Int(0)},
		{"LEN STR$ 100", value.Int(3)},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			t.Parallel()

			e := newEnv(t)
			assert.Equal(t, tt.want, e.mustEval(t, tt.src))
		})
	}
}

func TestTrigonometry(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	v := e.mustEval(t, "SIN(PI/2)")
	assert.InDelta(t, 1.0, v.F64, 1e-12)

	v = e.mustEval(t, "ATN 1*4")
	assert.InDelta(t, math.Pi, v.F64, 1e-12)
}

func TestBuiltinErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		src  string
		kind error
	}{
		{"SQR -1", eval.ErrRange},
		{"LN 0", eval.ErrRange},
		{`ABS "x"`, eval.ErrTypeMismatch},
		{"LEN 5", eval.ErrTypeMismatch},
		{`MID$("x")`, eval.ErrArity},
		{`LEFT$("x",1,2)`, eval.ErrSyntax},
		{"SUM(a)", eval.ErrNoSuchVariable},
		{`OPENUP "ip4:localhost:1"`, eval.ErrBadHandle},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			t.Parallel()

			e := newEnv(t)
			_, err := e.eval(t, tt.src)
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}

func TestArrayBuiltins(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	a := e.dim(t, "a%", value.KindInt, 3, 5)
	for i := range a.Elems {
		a.Elems[i] = value.Int(1)
	}

	assert.Equal(t, value.Int(15), e.mustEval(t, "SUM(a%())"))
	assert.Equal(t, value.Int(2), e.mustEval(t, "DIM(a%())"))
	assert.Equal(t, value.Int(2), e.mustEval(t, "DIM(a%(),1)"))
	assert.Equal(t, value.Int(4), e.mustEval(t, "DIM(a%(),2)"))

	_, err := e.eval(t, "DIM(a%(),3)")
	assert.ErrorIs(t, err, eval.ErrSubscript)

	_, err = e.eval(t, "SUM(a%(1,1))")
	assert.ErrorIs(t, err, eval.ErrTypeMismatch)
}
