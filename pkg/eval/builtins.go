package eval

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"bbcbasic/pkg/lexer"
	"bbcbasic/pkg/value"
)

// Longest string a built-in may produce.
const maxString = 65535

// builtins maps function tokens to their factor handlers. Single argument
// functions take a factor ("SIN x" or "SIN(x)"); the others need brackets.
var builtins = map[lexer.TokenType]factorFunc{
	lexer.ABS:     absFunc,
	lexer.INT:     intFunc,
	lexer.SGN:     sgnFunc,
	lexer.SQR:     floatFunc(sqrt),
	lexer.SIN:     floatFunc(math.Sin),
	lexer.COS:     floatFunc(math.Cos),
	lexer.TAN:     floatFunc(math.Tan),
	lexer.ATN:     floatFunc(math.Atan),
	lexer.EXP:     floatFunc(math.Exp),
	lexer.LN:      floatFunc(logFunc(math.Log)),
	lexer.LOG:     floatFunc(logFunc(math.Log10)),
	lexer.PI:      constFactor(value.Float(math.Pi)),
	lexer.LEN:     lenFunc,
	lexer.ASC:     ascFunc,
	lexer.CHRS:    chrFunc,
	lexer.STRS:    strFunc,
	lexer.VAL:     valFunc,
	lexer.LEFTS:   leftFunc,
	lexer.RIGHTS:  rightFunc,
	lexer.MIDS:    midFunc,
	lexer.STRINGS: repeatFunc,
	lexer.INSTR:   instrFunc,
	lexer.SUM:     sumFunc,
	lexer.DIM:     dimFunc,
	lexer.OPENUP:  openupFunc,
	lexer.BGET:    bgetFunc,
	lexer.EOFH:    eofFunc,
}

// numericFactor evaluates a factor that must be a number.
func (c *Context) numericFactor() (value.Value, lexer.Token, error) {
	tok := c.Peek()
	v, err := c.Factor()
	if err != nil {
		return value.Value{}, tok, err
	}
	if !v.Kind.IsNumeric() {
		return value.Value{}, tok, errorAt(tok, fmt.Errorf("%w: expected a number, got %s", value.ErrTypeMismatch, v.Kind))
	}
	return v, tok, nil
}

func (c *Context) stringFactor() (string, error) {
	tok := c.Peek()
	v, err := c.Factor()
	if err != nil {
		return "", err
	}
	return stringOf(tok, v)
}

// arguments reads a bracketed argument list of between lo and hi
// expressions.
func (c *Context) arguments(fn lexer.Token, lo, hi int) ([]value.Value, []lexer.Token, error) {
	if _, err := c.Expect(lexer.LPAREN); err != nil {
		return nil, nil, err
	}

	var (
		vals []value.Value
		toks []lexer.Token
	)
	for {
		toks = append(toks, c.Peek())
		v, err := c.Expression()
		if err != nil {
			return nil, nil, err
		}
		vals = append(vals, v)

		if len(vals) < hi && c.Accept(lexer.COMMA) {
			continue
		}
		if _, err := c.Expect(lexer.RPAREN); err != nil {
			return nil, nil, err
		}
		break
	}

	if len(vals) < lo {
		return nil, nil, errorAt(fn, fmt.Errorf("%w: %s needs %d arguments", ErrArity, fn.Type, lo))
	}
	return vals, toks, nil
}

func intArg(tok lexer.Token, v value.Value) (int, error) {
	i, err := v.AsInt32()
	if err != nil {
		return 0, errorAt(tok, err)
	}
	return int(i), nil
}

func absFunc(c *Context, tok lexer.Token) (value.Value, error) {
	v, _, err := c.numericFactor()
	if err != nil {
		return value.Value{}, err
	}

	switch v.Kind {
	case value.KindFloat:
		return value.Float(math.Abs(v.F64)), nil
	default:
		if n, _ := v.AsInt64(); n < 0 {
			r, err := value.Negate(v)
			if err != nil {
				return value.Value{}, errorAt(tok, err)
			}
			return r, nil
		}
		return v, nil
	}
}

// intFunc rounds toward negative infinity.
func intFunc(c *Context, tok lexer.Token) (value.Value, error) {
	v, _, err := c.numericFactor()
	if err != nil {
		return value.Value{}, err
	}
	if v.Kind != value.KindFloat {
		return v, nil
	}

	f := math.Floor(v.F64)
	if f < math.MinInt64 || f >= math.MaxInt64 || math.IsNaN(f) {
		return value.Value{}, errorAt(tok, fmt.Errorf("%w: INT %s", value.ErrRange, value.FormatFloat(v.F64)))
	}
	return value.Integer(int64(f)), nil
}

func sgnFunc(c *Context, _ lexer.Token) (value.Value, error) {
	v, _, err := c.numericFactor()
	if err != nil {
		return value.Value{}, err
	}

	f, _ := v.AsFloat64()
	switch {
	case f > 0:
		return value.Int(1), nil
	case f < 0:
		return value.Int(-1), nil
	default:
		return value.Int(0), nil
	}
}

func sqrt(x float64) (float64, error) {
	if x < 0 {
		return 0, fmt.Errorf("%w: negative root", value.ErrRange)
	}
	return math.Sqrt(x), nil
}

func logFunc(fn func(float64) float64) func(float64) (float64, error) {
	return func(x float64) (float64, error) {
		if x <= 0 {
			return 0, fmt.Errorf("%w: logarithm of %s", value.ErrRange, value.FormatFloat(x))
		}
		return fn(x), nil
	}
}

// floatFunc adapts a float function of one argument. fn is either a
// plain math function or one that can fail.
func floatFunc[F func(float64) float64 | func(float64) (float64, error)](fn F) factorFunc {
	return func(c *Context, tok lexer.Token) (value.Value, error) {
		v, _, err := c.numericFactor()
		if err != nil {
			return value.Value{}, err
		}
		x, _ := v.AsFloat64()

		var r float64
		switch f := any(fn).(type) {
		case func(float64) float64:
			r = f(x)
		case func(float64) (float64, error):
			if r, err = f(x); err != nil {
				return value.Value{}, errorAt(tok, err)
			}
		}

		if math.IsInf(r, 0) || math.IsNaN(r) {
			return value.Value{}, errorAt(tok, fmt.Errorf("%w: %s result out of range", value.ErrRange, tok.Type))
		}
		return value.Float(r), nil
	}
}

func lenFunc(c *Context, _ lexer.Token) (value.Value, error) {
	s, err := c.stringFactor()
	if err != nil {
		return value.Value{}, err
	}
	return value.Int(int32(len(s))), nil
}

// ascFunc returns the first character code, -1 for an empty string.
func ascFunc(c *Context, _ lexer.Token) (value.Value, error) {
	s, err := c.stringFactor()
	if err != nil {
		return value.Value{}, err
	}
	if s == "" {
		return value.Int(-1), nil
	}
	return value.Int(int32(s[0])), nil
}

func chrFunc(c *Context, _ lexer.Token) (value.Value, error) {
	n, err := c.EvalIntFactor()
	if err != nil {
		return value.Value{}, err
	}
	return value.String(string([]byte{byte(n)})), nil
}

func strFunc(c *Context, _ lexer.Token) (value.Value, error) {
	v, _, err := c.numericFactor()
	if err != nil {
		return value.Value{}, err
	}
	return value.String(v.String()), nil
}

var leadingNumber = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)

// valFunc converts the leading number of a string, 0 when there is none.
func valFunc(c *Context, tok lexer.Token) (value.Value, error) {
	s, err := c.stringFactor()
	if err != nil {
		return value.Value{}, err
	}

	lit := leadingNumber.FindString(strings.TrimLeft(s, " "))
	if lit == "" {
		return value.Int(0), nil
	}

	neg := strings.HasPrefix(lit, "-")
	v, err := parseNumber(strings.TrimLeft(lit, "+-"))
	if err != nil {
		return value.Value{}, errorAt(tok, err)
	}
	if neg {
		return value.Negate(v)
	}
	return v, nil
}

func clamp(n, lo, hi int) int {
	return min(max(n, lo), hi)
}

// leftFunc implements LEFT$(s$, n) and LEFT$(s$), which drops the last
// character.
func leftFunc(c *Context, tok lexer.Token) (value.Value, error) {
	args, toks, err := c.arguments(tok, 1, 2)
	if err != nil {
		return value.Value{}, err
	}
	s, err := stringOf(toks[0], args[0])
	if err != nil {
		return value.Value{}, err
	}

	n := len(s) - 1
	if len(args) == 2 {
		if n, err = intArg(toks[1], args[1]); err != nil {
			return value.Value{}, err
		}
	}
	return value.String(s[:clamp(n, 0, len(s))]), nil
}

// rightFunc implements RIGHT$(s$, n) and RIGHT$(s$), the last character.
func rightFunc(c *Context, tok lexer.Token) (value.Value, error) {
	args, toks, err := c.arguments(tok, 1, 2)
	if err != nil {
		return value.Value{}, err
	}
	s, err := stringOf(toks[0], args[0])
	if err != nil {
		return value.Value{}, err
	}

	n := 1
	if len(args) == 2 {
		if n, err = intArg(toks[1], args[1]); err != nil {
			return value.Value{}, err
		}
	}
	n = clamp(n, 0, len(s))
	return value.String(s[len(s)-n:]), nil
}

// midFunc implements MID$(s$, start [, length]) with 1-based start.
func midFunc(c *Context, tok lexer.Token) (value.Value, error) {
	args, toks, err := c.arguments(tok, 2, 3)
	if err != nil {
		return value.Value{}, err
	}
	s, err := stringOf(toks[0], args[0])
	if err != nil {
		return value.Value{}, err
	}
	start, err := intArg(toks[1], args[1])
	if err != nil {
		return value.Value{}, err
	}

	n := len(s)
	if len(args) == 3 {
		if n, err = intArg(toks[2], args[2]); err != nil {
			return value.Value{}, err
		}
	}

	from := clamp(start-1, 0, len(s))
	to := clamp(from+max(n, 0), from, len(s))
	return value.String(s[from:to]), nil
}

func repeatFunc(c *Context, tok lexer.Token) (value.Value, error) {
	args, toks, err := c.arguments(tok, 2, 2)
	if err != nil {
		return value.Value{}, err
	}
	n, err := intArg(toks[0], args[0])
	if err != nil {
		return value.Value{}, err
	}
	s, err := stringOf(toks[1], args[1])
	if err != nil {
		return value.Value{}, err
	}

	if n <= 0 {
		return value.String(""), nil
	}
	if n*len(s) > maxString {
		return value.Value{}, errorAt(tok, fmt.Errorf("%w: string too long", value.ErrRange))
	}
	return value.String(strings.Repeat(s, n)), nil
}

// instrFunc implements INSTR(s$, find$ [, start]) returning the 1-based
// position of the match or 0.
func instrFunc(c *Context, tok lexer.Token) (value.Value, error) {
	args, toks, err := c.arguments(tok, 2, 3)
	if err != nil {
		return value.Value{}, err
	}
	s, err := stringOf(toks[0], args[0])
	if err != nil {
		return value.Value{}, err
	}
	find, err := stringOf(toks[1], args[1])
	if err != nil {
		return value.Value{}, err
	}

	start := 1
	if len(args) == 3 {
		if start, err = intArg(toks[2], args[2]); err != nil {
			return value.Value{}, err
		}
		start = max(start, 1)
	}
	if start > len(s)+1 {
		return value.Int(0), nil
	}

	i := strings.Index(s[start-1:], find)
	if i < 0 {
		return value.Int(0), nil
	}
	return value.Int(int32(start + i)), nil
}

// wholeArray reads an "a()" argument.
func (c *Context) wholeArray() (*value.Array, error) {
	tok := c.Peek()
	ref, err := c.Variable()
	if err != nil {
		return nil, err
	}
	if !ref.Whole {
		return nil, errorAt(tok, fmt.Errorf("%w: %s is not a whole array", value.ErrTypeMismatch, ref.Name))
	}
	return ref.Slot.Get().Arr, nil
}

func sumFunc(c *Context, tok lexer.Token) (value.Value, error) {
	if _, err := c.Expect(lexer.LPAREN); err != nil {
		return value.Value{}, err
	}
	arr, err := c.wholeArray()
	if err != nil {
		return value.Value{}, err
	}
	if _, err := c.Expect(lexer.RPAREN); err != nil {
		return value.Value{}, err
	}

	v, err := arr.Sum()
	if err != nil {
		return value.Value{}, errorAt(tok, err)
	}
	return v, nil
}

// dimFunc implements DIM(a()), the number of dimensions, and DIM(a(), n),
// the highest subscript of dimension n.
func dimFunc(c *Context, tok lexer.Token) (value.Value, error) {
	if _, err := c.Expect(lexer.LPAREN); err != nil {
		return value.Value{}, err
	}
	arr, err := c.wholeArray()
	if err != nil {
		return value.Value{}, err
	}

	if !c.Accept(lexer.COMMA) {
		if _, err := c.Expect(lexer.RPAREN); err != nil {
			return value.Value{}, err
		}
		return value.Int(int32(len(arr.Dims))), nil
	}

	n, err := c.EvalInteger()
	if err != nil {
		return value.Value{}, err
	}
	if _, err := c.Expect(lexer.RPAREN); err != nil {
		return value.Value{}, err
	}
	if n < 1 || int(n) > len(arr.Dims) {
		return value.Value{}, errorAt(tok, fmt.Errorf("%w: array has %d dimensions", value.ErrSubscript, len(arr.Dims)))
	}
	return value.Int(int32(arr.Dims[n-1] - 1)), nil
}

func (c *Context) stream(tok lexer.Token) (Stream, error) {
	if c.streams == nil {
		return nil, errorAt(tok, fmt.Errorf("%w: no network support", ErrBadHandle))
	}
	return c.streams, nil
}

// streamError wraps a transport failure as a channel error.
func streamError(tok lexer.Token, err error) error {
	return errorAt(tok, fmt.Errorf("%w: %w", ErrBadHandle, err))
}

// openupFunc opens a network stream, OPENUP "ip4:host:port".
func openupFunc(c *Context, tok lexer.Token) (value.Value, error) {
	addr, err := c.stringFactor()
	if err != nil {
		return value.Value{}, err
	}
	s, err := c.stream(tok)
	if err != nil {
		return value.Value{}, err
	}

	h, err := s.Open(addr)
	if err != nil {
		return value.Value{}, streamError(tok, err)
	}
	return value.Int(int32(h)), nil
}

// bgetFunc reads one byte; NoData and EndOfStream are returned as values.
func bgetFunc(c *Context, tok lexer.Token) (value.Value, error) {
	h, err := c.EvalIntFactor()
	if err != nil {
		return value.Value{}, err
	}
	s, err := c.stream(tok)
	if err != nil {
		return value.Value{}, err
	}

	b, err := s.NextByte(int(h))
	if err != nil {
		return value.Value{}, streamError(tok, err)
	}
	return value.Int(int32(b)), nil
}

func eofFunc(c *Context, tok lexer.Token) (value.Value, error) {
	h, err := c.EvalIntFactor()
	if err != nil {
		return value.Value{}, err
	}
	s, err := c.stream(tok)
	if err != nil {
		return value.Value{}, err
	}

	eof, err := s.EOF(int(h))
	if err != nil {
		return value.Value{}, streamError(tok, err)
	}
	return value.Bool(eof), nil
}
