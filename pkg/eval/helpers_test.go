package eval_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"bbcbasic/pkg/eval"
	"bbcbasic/pkg/lexer"
	"bbcbasic/pkg/value"
)

// memory is a flat variable store.
type memory map[string]value.Slot

func (m memory) Lookup(name string) (value.Slot, bool) {
	s, ok := m[name]
	return s, ok
}

func (m memory) Declare(name string, v value.Value) value.Slot {
	cell := value.NewCell(value.KindForName(name))
	_ = cell.Set(v)
	m[name] = cell
	return cell
}

// routines runs single line functions, DEF FNname(...)=expr.
type routines struct {
	ctx   *eval.Context
	mem   memory
	defs  map[string]*eval.Definition
	calls int
}

func (r *routines) Definition(name string, kind eval.DefKind) (*eval.Definition, bool) {
	def, ok := r.defs[kind.String()+name]
	return def, ok
}

func (r *routines) Invoke(def *eval.Definition, frame *eval.Frame) (value.Value, error) {
	r.calls++

	saved := make(map[string]value.Slot)
	for _, b := range frame.Bindings {
		if s, ok := r.mem[b.Name]; ok {
			saved[b.Name] = s
		}
		r.mem[b.Name] = b.Slot
	}
	defer func() {
		for _, b := range frame.Bindings {
			delete(r.mem, b.Name)
		}
		for n, s := range saved {
			r.mem[n] = s
		}
	}()

	cur := r.ctx.Save()
	defer r.ctx.Restore(cur)

	r.ctx.Load(def.Body)
	if def.Kind == eval.DefPROC {
		return value.Value{}, nil
	}
	if _, err := r.ctx.Expect(lexer.EQ); err != nil {
		return value.Value{}, err
	}
	return r.ctx.Expression()
}

type env struct {
	ctx  *eval.Context
	mem  memory
	defs *routines
}

func newEnv(t *testing.T, opts ...eval.Option) *env {
	t.Helper()

	mem := memory{}
	r := &routines{mem: mem, defs: map[string]*eval.Definition{}}
	ctx := eval.NewContext(mem, append([]eval.Option{eval.WithCaller(r)}, opts...)...)
	r.ctx = ctx

	return &env{ctx: ctx, mem: mem, defs: r}
}

func (e *env) define(t *testing.T, src string) *eval.Definition {
	t.Helper()

	toks, err := lexer.Tokenize(10, src)
	require.NoError(t, err)
	def, err := eval.ParseDefinition(toks, 10)
	require.NoError(t, err)
	e.defs.defs[def.Kind.String()+def.Name] = def
	return def
}

func (e *env) dim(t *testing.T, name string, elem value.Kind, dims ...int) *value.Array {
	t.Helper()

	arr, err := value.NewArray(elem, dims...)
	require.NoError(t, err)
	e.mem[name+"("] = value.NewArrayCell(arr)
	return arr
}

func (e *env) set(t *testing.T, name string, v value.Value) {
	t.Helper()
	e.mem.Declare(name, v)
}

// eval evaluates src as one complete expression.
func (e *env) eval(t *testing.T, src string) (value.Value, error) {
	t.Helper()

	toks, err := lexer.Tokenize(0, src)
	require.NoError(t, err)

	e.ctx.Load(toks)
	v, err := e.ctx.Expression()
	if err == nil {
		require.True(t, e.ctx.AtEnd(), "trailing tokens after %q", src)
	}
	return v, err
}

func (e *env) mustEval(t *testing.T, src string) value.Value {
	t.Helper()

	v, err := e.eval(t, src)
	require.NoError(t, err, src)
	return v
}
