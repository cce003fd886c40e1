package interpreter

import (
	"errors"
	"fmt"
	"strings"

	"bbcbasic/pkg/eval"
	"bbcbasic/pkg/lexer"
	"bbcbasic/pkg/symtab"
	"bbcbasic/pkg/value"
)

// PRINT field width used after ',' and for right-justified numbers
const fieldWidth = 10

// exit tells the statement loop how a statement left it.
type exit int

const (
	exitNone    exit = iota
	exitEnd          // ran off the end of the program
	exitEndProc      // ENDPROC
	exitReturn       // "=expression" in a FN
)

// runFrom executes tokens as line n of the program snapshot and carries on
// with the following lines. A negative n runs a single immediate line.
func (i *Interpreter) runFrom(n int, tokens []lexer.Token) (exit, value.Value, error) {
	i.ctx.Load(tokens)

	for {
		if n >= 0 {
			i.current = i.lines[n].Number
		}

		for {
			for i.ctx.Accept(lexer.COLON) {
			}
			if i.ctx.Peek().Type == lexer.EOF {
				break
			}

			x, v, err := i.step()
			if err != nil || x != exitNone {
				return x, v, err
			}
		}

		if n < 0 {
			return exitNone, value.Value{}, nil
		}
		n++
		if n >= len(i.lines) {
			return exitEnd, value.Value{}, nil
		}
		i.ctx.Load(i.lines[n].Tokens)
	}
}

// step executes the statement at the cursor. The operand stack is reset to
// its baseline afterwards whether or not the statement succeeded.
func (i *Interpreter) step() (exit, value.Value, error) {
	if i.maxSteps > 0 && i.steps >= i.maxSteps {
		return exitNone, value.Value{}, ErrMaxStepsExceeded
	}
	i.steps++

	mark := i.ctx.Mark()
	defer i.ctx.Reset(mark)

	tok := i.ctx.Peek()
	if tok.Type != lexer.ID {
		i.ctx.Next()
	}

	x, v, err := i.statement(tok)
	if err == nil && x == exitNone && tok.Type != lexer.IF && !i.ctx.AtEnd() {
		err = i.unexpected()
	}

	if err != nil && !errors.Is(err, errEnd) {
		err = eval.At(tok, err)
		i.dump()
	}
	return x, v, err
}

func (i *Interpreter) statement(tok lexer.Token) (exit, value.Value, error) {
	switch tok.Type {
	case lexer.REM, lexer.DEF, lexer.ELSE:
		// DEF lines only run when called; ELSE ends a taken THEN branch
		i.skipLine()
		return exitNone, value.Value{}, nil
	case lexer.LET, lexer.ID:
		return exitNone, value.Value{}, i.assign()
	case lexer.DIM:
		return exitNone, value.Value{}, i.dim()
	case lexer.PRINT:
		return exitNone, value.Value{}, i.print()
	case lexer.LOCAL:
		return exitNone, value.Value{}, i.local()
	case lexer.PROC:
		return exitNone, value.Value{}, i.ctx.CallProcedure(tok)
	case lexer.IF:
		return exitNone, value.Value{}, i.ifThen()
	case lexer.BPUT:
		return exitNone, value.Value{}, i.bput()
	case lexer.CLOSE:
		return exitNone, value.Value{}, i.close()
	case lexer.END:
		return exitNone, value.Value{}, errEnd
	case lexer.ENDPROC:
		if f := i.currentFrame(); f == nil || f.Def.Kind != eval.DefPROC {
			return exitNone, value.Value{}, ErrNotInProcedure
		}
		return exitEndProc, value.Value{}, nil
	case lexer.EQ:
		if f := i.currentFrame(); f == nil || f.Def.Kind != eval.DefFN {
			return exitNone, value.Value{}, ErrNotInFunction
		}
		v, err := i.result()
		return exitReturn, v, err
	default:
		return exitNone, value.Value{}, i.unexpectedAt(tok)
	}
}

func (i *Interpreter) unexpected() error {
	return i.unexpectedAt(i.ctx.Peek())
}

func (i *Interpreter) unexpectedAt(tok lexer.Token) error {
	if tok.Type == lexer.EOF {
		return eval.At(tok, fmt.Errorf("%w: unexpected end of statement", eval.ErrSyntax))
	}
	return eval.At(tok, fmt.Errorf("%w: unexpected %s", eval.ErrSyntax, tok.Type))
}

func (i *Interpreter) skipLine() {
	for i.ctx.Peek().Type != lexer.EOF {
		i.ctx.Next()
	}
}

// compound maps the operator of "+=" and "-=" assignments.
var compound = map[lexer.TokenType]value.Op{
	lexer.PLUS:  value.OpAdd,
	lexer.MINUS: value.OpSub,
}

// assign executes [LET] variable = expression, including a(i) = ...,
// a() = ... and the compound forms += and -=.
func (i *Interpreter) assign() error {
	name := i.ctx.Peek()
	if name.Type != lexer.ID {
		return eval.At(name, fmt.Errorf("%w: expected a variable", eval.ErrSyntax))
	}

	// a plain scalar is only created once its new value is known
	var slot value.Slot
	if i.ctx.PeekAt(1).Type == lexer.LPAREN {
		ref, err := i.ctx.Variable()
		if err != nil {
			return err
		}
		slot = ref.Slot
	} else {
		i.ctx.Next()
		slot, _ = i.vars.Lookup(name.Literal)
	}

	op, isCompound := compound[i.ctx.Peek().Type]
	if isCompound && i.ctx.PeekAt(1).Type == lexer.EQ {
		i.ctx.Next()
	} else {
		isCompound = false
	}

	eq, err := i.ctx.Expect(lexer.EQ)
	if err != nil {
		return err
	}
	v, err := i.ctx.Expression()
	if err != nil {
		return err
	}

	if isCompound {
		if slot == nil {
			return eval.At(name, fmt.Errorf("%w: %s", eval.ErrNoSuchVariable, name.Literal))
		}
		if v, err = value.Binary(op, slot.Get(), v); err != nil {
			return eval.At(eq, err)
		}
	}

	if slot == nil {
		slot = i.vars.Declare(name.Literal, value.Zero(value.KindForName(name.Literal)))
	}
	if err := slot.Set(v); err != nil {
		return eval.At(eq, err)
	}
	return nil
}

// dim executes DIM a(n[,m...])[, b$(k)...].
func (i *Interpreter) dim() error {
	for {
		name, err := i.ctx.Expect(lexer.ID)
		if err != nil {
			return err
		}
		if _, err := i.ctx.Expect(lexer.LPAREN); err != nil {
			return err
		}
		dims, err := i.ctx.Dimensions()
		if err != nil {
			return err
		}
		if _, err := i.vars.Dim(name.Literal+"(", dims); err != nil {
			return eval.At(name, err)
		}

		if !i.ctx.Accept(lexer.COMMA) {
			return nil
		}
	}
}

// local executes LOCAL a, b$, c().
func (i *Interpreter) local() error {
	if i.currentFrame() == nil {
		return fmt.Errorf("%w: LOCAL", symtab.ErrNoScope)
	}

	for {
		name, err := i.ctx.Expect(lexer.ID)
		if err != nil {
			return err
		}
		full := name.Literal
		if i.ctx.Accept(lexer.LPAREN) {
			if _, err := i.ctx.Expect(lexer.RPAREN); err != nil {
				return err
			}
			full += "("
		}
		if err := i.vars.Local(full); err != nil {
			return eval.At(name, err)
		}

		if !i.ctx.Accept(lexer.COMMA) {
			return nil
		}
	}
}

// print executes PRINT. Numbers are right-justified in a field of
// fieldWidth until a ';' switches that off; ',' moves to the next field,
// an apostrophe starts a new line and a trailing ';' suppresses the newline.
func (i *Interpreter) print() error {
	justify, newline := true, true

	for !i.ctx.AtEnd() {
		switch i.ctx.Peek().Type {
		case lexer.SEMICOLON:
			i.ctx.Next()
			justify, newline = false, false
			continue
		case lexer.COMMA:
			i.ctx.Next()
			if err := i.write(strings.Repeat(" ", fieldWidth-i.col%fieldWidth)); err != nil {
				return err
			}
			justify, newline = true, true
			continue
		case lexer.APOSTROPHE:
			i.ctx.Next()
			if err := i.write("\n"); err != nil {
				return err
			}
			newline = true
			continue
		}

		tok := i.ctx.Peek()
		v, err := i.ctx.Expression()
		if err != nil {
			return err
		}
		if v.IsArray() {
			return eval.At(tok, fmt.Errorf("%w: cannot PRINT an array", eval.ErrTypeMismatch))
		}

		s := v.String()
		if justify && v.Kind.IsNumeric() && len(s) < fieldWidth {
			s = strings.Repeat(" ", fieldWidth-len(s)) + s
		}
		if err := i.write(s); err != nil {
			return err
		}
		newline = true
	}

	if newline {
		return i.write("\n")
	}
	return nil
}

// write sends s to the output, tracking the column.
func (i *Interpreter) write(s string) error {
	if _, err := fmt.Fprint(i.out, s); err != nil {
		return err
	}

	if n := strings.LastIndexByte(s, '\n'); n >= 0 {
		i.col = len(s) - n - 1
	} else {
		i.col += len(s)
	}
	return nil
}

// ifThen executes IF condition [THEN] statements [ELSE statements]. A true
// condition lets the statement loop run the THEN part, which ends at ELSE;
// a false one skips to the statements after ELSE.
func (i *Interpreter) ifThen() error {
	tok := i.ctx.Peek()
	v, err := i.ctx.Expression()
	if err != nil {
		return err
	}
	truth, err := v.Truth()
	if err != nil {
		return eval.At(tok, err)
	}

	i.ctx.Accept(lexer.THEN)
	if truth {
		return nil
	}

	for {
		switch i.ctx.Next().Type {
		case lexer.EOF, lexer.ELSE:
			return nil
		}
	}
}

func (i *Interpreter) stream() (eval.Stream, error) {
	if i.streams == nil {
		return nil, fmt.Errorf("%w: no network support", eval.ErrBadHandle)
	}
	return i.streams, nil
}

// bput executes BPUT#h, expression[;]. Numbers send one byte, strings
// are sent followed by a newline unless a ';' follows.
func (i *Interpreter) bput() error {
	h, err := i.ctx.EvalIntFactor()
	if err != nil {
		return err
	}
	if _, err := i.ctx.Expect(lexer.COMMA); err != nil {
		return err
	}

	tok := i.ctx.Peek()
	v, err := i.ctx.Expression()
	if err != nil {
		return err
	}
	s, err := i.stream()
	if err != nil {
		return err
	}

	switch v.Kind {
	case value.KindString:
		data := v.Str
		if !i.ctx.Accept(lexer.SEMICOLON) {
			data += "\n"
		}
		err = s.PutBlock(int(h), []byte(data))
	default:
		n, cerr := v.AsInt32()
		if cerr != nil {
			return eval.At(tok, cerr)
		}
		err = s.PutByte(int(h), byte(n))
	}

	if err != nil {
		return eval.At(tok, fmt.Errorf("%w: %w", eval.ErrBadHandle, err))
	}
	return nil
}

// close executes CLOSE#h.
func (i *Interpreter) close() error {
	tok := i.ctx.Peek()
	h, err := i.ctx.EvalIntFactor()
	if err != nil {
		return err
	}
	s, err := i.stream()
	if err != nil {
		return err
	}

	if err := s.Close(int(h)); err != nil {
		return eval.At(tok, fmt.Errorf("%w: %w", eval.ErrBadHandle, err))
	}
	return nil
}
