package eval

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"bbcbasic/pkg/lexer"
	"bbcbasic/pkg/value"
)

// factorFunc evaluates one factor whose leading token has been consumed.
type factorFunc func(c *Context, tok lexer.Token) (value.Value, error)

// factorTable dispatches on the leading token of a factor. It is filled in
// init because its handlers reach back into Factor.
var factorTable [lexer.NumTokens]factorFunc

func init() {
	for i := range factorTable {
		factorTable[i] = badFactor
	}

	factorTable[lexer.NUM] = numberFactor
	factorTable[lexer.HEXNUM] = radixFactor(16)
	factorTable[lexer.BINNUM] = radixFactor(2)
	factorTable[lexer.STRING] = stringFactor
	factorTable[lexer.TRUE] = constFactor(value.Bool(true))
	factorTable[lexer.FALSE] = constFactor(value.Bool(false))
	factorTable[lexer.ID] = variableFactor
	factorTable[lexer.LPAREN] = bracketFactor
	factorTable[lexer.MINUS] = negateFactor
	factorTable[lexer.PLUS] = plusFactor
	factorTable[lexer.NOT] = notFactor
	factorTable[lexer.FN] = fnFactor

	for t, fn := range builtins {
		factorTable[t] = fn
	}
}

// Factor evaluates a single operand: a literal, a variable, a bracketed
// expression, a unary operator applied to a factor or a function call.
func (c *Context) Factor() (value.Value, error) {
	tok := c.Next()
	if err := c.enter(tok); err != nil {
		return value.Value{}, err
	}
	defer c.leave()

	return factorTable[tok.Type](c, tok)
}

func badFactor(_ *Context, tok lexer.Token) (value.Value, error) {
	if tok.Type == lexer.EOF {
		return value.Value{}, syntaxError(tok, "missing operand")
	}
	return value.Value{}, syntaxError(tok, "unexpected %s", tok.Type)
}

func numberFactor(_ *Context, tok lexer.Token) (value.Value, error) {
	v, err := parseNumber(tok.Literal)
	if err != nil {
		return value.Value{}, errorAt(tok, err)
	}
	return v, nil
}

// parseNumber converts a decimal literal. Integers take the narrowest
// integer kind that holds them and fall back to floating point.
func parseNumber(lit string) (value.Value, error) {
	if !strings.ContainsAny(lit, ".eE") {
		if n, err := strconv.ParseInt(lit, 10, 64); err == nil {
			return value.Integer(n), nil
		}
	}

	f, err := strconv.ParseFloat(lit, 64)
	if err != nil || math.IsInf(f, 0) {
		return value.Value{}, fmt.Errorf("%w: %s", value.ErrRange, lit)
	}
	return value.Float(f), nil
}

// radixFactor converts &hex and %binary literals. Up to 32 bits they are
// two's complement Int32 values, so &FFFFFFFF is -1.
func radixFactor(base int) factorFunc {
	return func(_ *Context, tok lexer.Token) (value.Value, error) {
		n, err := strconv.ParseUint(tok.Literal, base, 64)
		if err != nil {
			return value.Value{}, errorAt(tok, fmt.Errorf("%w: %s", value.ErrRange, tok.Lexeme))
		}
		if n <= math.MaxUint32 {
			return value.Int(int32(uint32(n))), nil
		}
		return value.Int64(int64(n)), nil
	}
}

func stringFactor(_ *Context, tok lexer.Token) (value.Value, error) {
	return value.String(tok.Literal), nil
}

func constFactor(v value.Value) factorFunc {
	return func(*Context, lexer.Token) (value.Value, error) {
		return v, nil
	}
}

func variableFactor(c *Context, tok lexer.Token) (value.Value, error) {
	ref, err := c.reference(tok)
	if err != nil {
		return value.Value{}, err
	}
	return ref.Slot.Get(), nil
}

func bracketFactor(c *Context, _ lexer.Token) (value.Value, error) {
	v, err := c.Expression()
	if err != nil {
		return value.Value{}, err
	}
	if _, err := c.Expect(lexer.RPAREN); err != nil {
		return value.Value{}, err
	}
	return v, nil
}

func negateFactor(c *Context, tok lexer.Token) (value.Value, error) {
	v, err := c.Factor()
	if err != nil {
		return value.Value{}, err
	}

	r, err := value.Negate(v)
	if err != nil {
		return value.Value{}, errorAt(tok, err)
	}
	return r, nil
}

func plusFactor(c *Context, tok lexer.Token) (value.Value, error) {
	v, err := c.Factor()
	if err != nil {
		return value.Value{}, err
	}

	if v.Kind == value.KindString {
		return value.Value{}, errorAt(tok, fmt.Errorf("%w: unary + applied to a string", value.ErrTypeMismatch))
	}
	return v, nil
}

func notFactor(c *Context, tok lexer.Token) (value.Value, error) {
	v, err := c.Factor()
	if err != nil {
		return value.Value{}, err
	}

	r, err := value.Not(v)
	if err != nil {
		return value.Value{}, errorAt(tok, err)
	}
	return r, nil
}

func fnFactor(c *Context, tok lexer.Token) (value.Value, error) {
	return c.call(tok, DefFN)
}

// stringOf checks that v is a string.
func stringOf(tok lexer.Token, v value.Value) (string, error) {
	if v.Kind != value.KindString {
		return "", errorAt(tok, fmt.Errorf("%w: expected a string, got %s", value.ErrTypeMismatch, v.Kind))
	}
	return v.Str, nil
}
