package eval

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"bbcbasic/pkg/lexer"
	"bbcbasic/pkg/value"
)

type DefKind int

const (
	DefFN DefKind = iota
	DefPROC
)

func (k DefKind) String() string {
	if k == DefPROC {
		return "PROC"
	}
	return "FN"
}

// Formal is one declared parameter of a FN or PROC.
type Formal struct {
	Name  string     // storage name, "a%(" for arrays
	ByRef bool       // declared with RETURN
	Kind  value.Kind // KindArray for array formals
}

// Elem returns the kind of the formal's value, or of its elements for
// array formals.
func (f Formal) Elem() value.Kind {
	return value.KindForName(f.Name)
}

// Definition is a user defined FN or PROC.
type Definition struct {
	Name    string
	Kind    DefKind
	Formals []Formal
	Line    int           // line holding the DEF
	Body    []lexer.Token // tokens following the header on the DEF line
}

// Binding ties a formal to the slot it reads and writes. Owned slots are
// fresh copies; the others are the caller's own storage.
type Binding struct {
	Name  string
	Slot  value.Slot
	Owned bool
}

// Frame holds the bound parameters of one call.
type Frame struct {
	Def      *Definition
	Bindings []Binding
}

// ParseDefinition reads a "DEF FNname(formals)" or "DEF PROCname(formals)"
// header. The remaining tokens of the line become the body.
func ParseDefinition(tokens []lexer.Token, line int) (*Definition, error) {
	c := &Context{}
	c.Load(tokens)

	if _, err := c.Expect(lexer.DEF); err != nil {
		return nil, err
	}

	def := &Definition{Line: line}
	switch tok := c.Next(); tok.Type {
	case lexer.FN:
		def.Kind = DefFN
	case lexer.PROC:
		def.Kind = DefPROC
	default:
		return nil, syntaxError(tok, "expected FN or PROC after DEF")
	}

	name, err := c.Expect(lexer.ID)
	if err != nil {
		return nil, err
	}
	def.Name = name.Literal

	if c.Accept(lexer.LPAREN) {
		for {
			f, err := parseFormal(c)
			if err != nil {
				return nil, err
			}
			for _, prev := range def.Formals {
				if prev.Name == f.Name {
					return nil, syntaxError(c.Peek(), "parameter %s declared twice", f.Name)
				}
			}
			def.Formals = append(def.Formals, f)

			if c.Accept(lexer.COMMA) {
				continue
			}
			if _, err := c.Expect(lexer.RPAREN); err != nil {
				return nil, err
			}
			break
		}
	}

	def.Body = tokens[c.pos:]
	return def, nil
}

func parseFormal(c *Context) (Formal, error) {
	f := Formal{ByRef: c.Accept(lexer.RETURN)}

	tok, err := c.Expect(lexer.ID)
	if err != nil {
		return Formal{}, err
	}
	f.Name = tok.Literal
	f.Kind = value.KindForName(f.Name)

	if c.Accept(lexer.LPAREN) {
		if _, err := c.Expect(lexer.RPAREN); err != nil {
			return Formal{}, err
		}
		f.Name += "("
		f.Kind = value.KindArray
	}
	return f, nil
}

// span is the token list of one actual argument and the token ending it.
type span struct {
	tokens []lexer.Token
	end    lexer.Token
}

// actuals splits a bracketed argument list at the cursor on top level
// commas. Without a bracket there are no arguments.
func (c *Context) actuals() ([]span, error) {
	if c.Peek().Type != lexer.LPAREN {
		return nil, nil
	}
	open := c.Next()

	var args []span
	start, depth := c.pos, 0
	for {
		tok := c.Peek()
		switch tok.Type {
		case lexer.EOF:
			return nil, syntaxError(open, "missing )")
		case lexer.LPAREN:
			depth++
		case lexer.RPAREN:
			if depth == 0 {
				args = append(args, span{tokens: c.tokens[start:c.pos], end: tok})
				c.Next()
				if len(args) == 1 && len(args[0].tokens) == 0 {
					return nil, nil
				}
				for _, a := range args {
					if len(a.tokens) == 0 {
						return nil, syntaxError(a.end, "missing argument")
					}
				}
				return args, nil
			}
			depth--
		case lexer.COMMA:
			if depth == 0 {
				args = append(args, span{tokens: c.tokens[start:c.pos], end: tok})
				start = c.pos + 1
			}
		}
		c.pos++
	}
}

// within evaluates fn over the tokens of one argument and requires it to
// consume all of them.
func (c *Context) within(s span, fn func() error) error {
	saved := c.Save()
	defer c.Restore(saved)

	end := lexer.NewToken(lexer.EOF, "", "", s.end.Pos)
	c.Load(append(s.tokens[:len(s.tokens):len(s.tokens)], end))

	if err := fn(); err != nil {
		return err
	}
	if tok := c.Peek(); tok.Type != lexer.EOF {
		return syntaxError(tok, "unexpected %s in argument", tok.Type)
	}
	return nil
}

// PushParameters evaluates the actual arguments at the cursor and binds
// them to the formals of def. The argument count is checked before any
// argument is evaluated. Nothing is installed in storage: the caller makes
// the returned frame visible for the duration of the body.
func (c *Context) PushParameters(call lexer.Token, def *Definition) (*Frame, error) {
	args, err := c.actuals()
	if err != nil {
		return nil, err
	}

	switch {
	case len(args) > len(def.Formals):
		return nil, errorAt(call, fmt.Errorf("%w: too many parameters for %s%s", ErrArity, def.Kind, def.Name))
	case len(args) < len(def.Formals):
		return nil, errorAt(call, fmt.Errorf("%w: not enough parameters for %s%s", ErrArity, def.Kind, def.Name))
	}

	frame := &Frame{Def: def, Bindings: make([]Binding, 0, len(args))}
	undeclared := make(map[int]string)
	for i, f := range def.Formals {
		var b Binding
		err := c.within(args[i], func() error {
			var (
				name string
				err  error
			)
			if f.ByRef {
				b, name, err = c.bindReference(f)
			} else {
				b, err = c.bindValue(f)
			}
			if name != "" {
				undeclared[i] = name
			}
			return err
		})
		if err != nil {
			return nil, err
		}
		frame.Bindings = append(frame.Bindings, b)
	}

	// unknown RETURN variables are created only once every argument bound
	for i, name := range undeclared {
		slot, ok := c.storage.Lookup(name)
		if !ok {
			slot = c.storage.Declare(name, value.Zero(value.KindForName(name)))
		}
		frame.Bindings[i].Slot = slot
	}

	return frame, nil
}

// bindValue evaluates an argument into a fresh slot of the formal's kind.
func (c *Context) bindValue(f Formal) (Binding, error) {
	tok := c.Peek()
	v, err := c.Expression()
	if err != nil {
		return Binding{}, err
	}

	if f.Kind == value.KindArray {
		if !v.IsArray() {
			return Binding{}, errorAt(tok, fmt.Errorf("%w: %s needs an array", value.ErrTypeMismatch, f.Name))
		}
		arr, err := value.NewArray(f.Elem(), v.Arr.Dims...)
		if err == nil {
			err = arr.Assign(v)
		}
		if err != nil {
			return Binding{}, errorAt(tok, err)
		}
		return Binding{Name: f.Name, Slot: value.NewArrayCell(arr), Owned: true}, nil
	}

	cell := value.NewCell(f.Kind)
	if err := cell.Set(v); err != nil {
		return Binding{}, errorAt(tok, err)
	}
	return Binding{Name: f.Name, Slot: cell, Owned: true}, nil
}

// bindReference resolves a RETURN argument to the caller's own slot. The
// argument must name a variable, an array element or a whole array of the
// formal's kind. A scalar that does not exist yet is returned by name with
// no slot.
func (c *Context) bindReference(f Formal) (Binding, string, error) {
	tok := c.Peek()
	if tok.Type != lexer.ID {
		return Binding{}, "", notReference(tok, f)
	}

	switch next := c.PeekAt(1); next.Type {
	case lexer.EOF:
		if _, ok := c.storage.Lookup(tok.Literal); !ok {
			c.Next()
			if k := value.KindForName(tok.Literal); k != f.Kind {
				return Binding{}, "", errorAt(tok, fmt.Errorf("%w: %s variable passed to %s parameter %s",
					value.ErrTypeMismatch, k, f.Kind, f.Name))
			}
			return Binding{Name: f.Name}, tok.Literal, nil
		}
	case lexer.LPAREN:
	default:
		return Binding{}, "", notReference(next, f)
	}

	ref, err := c.Variable()
	if err != nil {
		return Binding{}, "", err
	}
	if next := c.Peek(); next.Type != lexer.EOF {
		return Binding{}, "", notReference(next, f)
	}

	switch {
	case f.Kind == value.KindArray && !ref.Whole,
		f.Kind != value.KindArray && ref.Whole:
		return Binding{}, "", errorAt(tok, fmt.Errorf("%w: %s cannot be passed to %s", value.ErrTypeMismatch, ref.Name, f.Name))
	case f.Kind == value.KindArray:
		if ref.Slot.Get().Arr.Elem != f.Elem() {
			return Binding{}, "", errorAt(tok, fmt.Errorf("%w: %s) cannot be passed to %s)", value.ErrTypeMismatch, ref.Name, f.Name))
		}
	case ref.Kind != f.Kind:
		return Binding{}, "", errorAt(tok, fmt.Errorf("%w: %s variable passed to %s parameter %s",
			value.ErrTypeMismatch, ref.Kind, f.Kind, f.Name))
	}

	return Binding{Name: f.Name, Slot: ref.Slot}, "", nil
}

func notReference(tok lexer.Token, f Formal) error {
	return errorAt(tok, fmt.Errorf("%w: RETURN parameter %s needs a variable, found %s", value.ErrTypeMismatch, f.Name, tok.Type))
}

// call runs FNname or PROCname at the cursor; tok is the FN or PROC token.
func (c *Context) call(tok lexer.Token, kind DefKind) (value.Value, error) {
	name, err := c.Expect(lexer.ID)
	if err != nil {
		return value.Value{}, err
	}

	var def *Definition
	ok := false
	if c.caller != nil {
		def, ok = c.caller.Definition(name.Literal, kind)
	}
	if !ok {
		return value.Value{}, errorAt(name, fmt.Errorf("%w: %s%s", ErrNoSuchFunction, kind, name.Literal))
	}

	frame, err := c.PushParameters(name, def)
	if err != nil {
		return value.Value{}, err
	}

	done, err := c.enterCall(tok)
	if err != nil {
		return value.Value{}, err
	}
	defer done()

	log.Debug("call", "routine", kind.String()+def.Name, "params", bindingNames(frame))

	v, err := c.caller.Invoke(def, frame)
	if err != nil {
		return value.Value{}, errorAt(tok, err)
	}
	return v, nil
}

// CallProcedure runs the PROC named at the cursor; tok is the PROC token.
func (c *Context) CallProcedure(tok lexer.Token) error {
	_, err := c.call(tok, DefPROC)
	return err
}

func bindingNames(f *Frame) string {
	names := make([]string, len(f.Bindings))
	for i, b := range f.Bindings {
		names[i] = b.Name
	}
	return strings.Join(names, ",")
}
