package eval

import (
	"errors"
	"fmt"

	"bbcbasic/pkg/lexer"
	"bbcbasic/pkg/stack"
	"bbcbasic/pkg/value"
)

const (
	DefaultMaxDepth   = 256  // expression nesting within one FN or PROC body
	DefaultMaxCalls   = 1000 // active FN and PROC calls
	DefaultStackLimit = 4096
)

// Storage resolves variable names to slots. Whole arrays are named with a
// trailing "(" ("a%(").
type Storage interface {
	Lookup(name string) (value.Slot, bool)
	Declare(name string, v value.Value) value.Slot
}

// Caller runs the body of a user defined FN or PROC once its parameters
// are bound.
type Caller interface {
	Definition(name string, kind DefKind) (*Definition, bool)
	Invoke(def *Definition, frame *Frame) (value.Value, error)
}

// Stream results of NextByte that are not data bytes.
const (
	NoData      = -1
	EndOfStream = -2
)

// Stream is the byte stream transport behind OPENUP, BGET#, BPUT#, EOF#
// and CLOSE#.
type Stream interface {
	Open(addr string) (int, error)
	NextByte(h int) (int, error)
	PutByte(h int, b byte) error
	PutBlock(h int, data []byte) error
	EOF(h int) (bool, error)
	Close(h int) error
}

// Context evaluates expressions over one tokenized statement at a time. It
// owns the operand stack that holds pending left operands while the right
// hand side of an operator is evaluated.
type Context struct {
	tokens []lexer.Token
	pos    int

	operands *stack.Stack[value.Value]
	depth    int
	maxDepth int
	calls    int
	maxCalls int

	storage Storage
	caller  Caller
	streams Stream
}

type Option func(*Context)

// WithCaller sets the collaborator that runs FN and PROC bodies.
func WithCaller(c Caller) Option {
	return func(ctx *Context) {
		ctx.caller = c
	}
}

// WithStreams sets the byte stream transport.
func WithStreams(s Stream) Option {
	return func(ctx *Context) {
		ctx.streams = s
	}
}

// WithMaxDepth bounds the nesting of expressions inside one body.
func WithMaxDepth(n int) Option {
	return func(ctx *Context) {
		if n > 0 {
			ctx.maxDepth = n
		}
	}
}

// WithMaxCalls bounds how many FN and PROC calls may be active at once.
func WithMaxCalls(n int) Option {
	return func(ctx *Context) {
		if n > 0 {
			ctx.maxCalls = n
		}
	}
}

// WithStackLimit bounds the operand stack.
func WithStackLimit(n int) Option {
	return func(ctx *Context) {
		if n > 0 {
			ctx.operands = stack.NewBounded[value.Value](n)
		}
	}
}

// NewContext creates an evaluation context over the given storage.
func NewContext(storage Storage, opts ...Option) *Context {
	ctx := &Context{
		operands: stack.NewBounded[value.Value](DefaultStackLimit),
		maxDepth: DefaultMaxDepth,
		maxCalls: DefaultMaxCalls,
		storage:  storage,
	}

	for _, opt := range opts {
		opt(ctx)
	}

	return ctx
}

func (c *Context) Storage() Storage {
	return c.storage
}

func (c *Context) Streams() Stream {
	return c.streams
}

// Cursor is a saved token position.
type Cursor struct {
	tokens []lexer.Token
	pos    int
}

// Load points the context at a tokenized statement list.
func (c *Context) Load(tokens []lexer.Token) {
	c.tokens = tokens
	c.pos = 0
}

// Save returns the current token position.
func (c *Context) Save() Cursor {
	return Cursor{tokens: c.tokens, pos: c.pos}
}

// Restore returns to a position saved earlier.
func (c *Context) Restore(cur Cursor) {
	c.tokens = cur.tokens
	c.pos = cur.pos
}

// Peek returns the current token without consuming it.
func (c *Context) Peek() lexer.Token {
	return c.PeekAt(0)
}

// PeekAt looks n tokens ahead. Past the end it returns EOF.
func (c *Context) PeekAt(n int) lexer.Token {
	if i := c.pos + n; i < len(c.tokens) {
		return c.tokens[i]
	}

	var pos lexer.Position
	if len(c.tokens) > 0 {
		pos = c.tokens[len(c.tokens)-1].Pos
	}
	return lexer.NewToken(lexer.EOF, "", "", pos)
}

// Next consumes and returns the current token. EOF is never consumed.
func (c *Context) Next() lexer.Token {
	tok := c.Peek()
	if tok.Type != lexer.EOF {
		c.pos++
	}
	return tok
}

// Accept consumes the current token if it has type t.
func (c *Context) Accept(t lexer.TokenType) bool {
	if c.Peek().Type == t {
		c.Next()
		return true
	}
	return false
}

// Expect consumes a token of type t or reports a syntax error.
func (c *Context) Expect(t lexer.TokenType) (lexer.Token, error) {
	tok := c.Peek()
	if tok.Type != t {
		if t == lexer.RPAREN {
			return tok, syntaxError(tok, "missing )")
		}
		return tok, syntaxError(tok, "expected %s, found %s", t, tok.Type)
	}
	return c.Next(), nil
}

// AtEnd reports whether the cursor is at the end of a statement.
func (c *Context) AtEnd() bool {
	return c.Peek().Type.EndsStatement()
}

// Mark returns the operand stack baseline for a statement.
func (c *Context) Mark() int {
	return c.operands.Size()
}

// Reset unwinds the operand stack to a baseline taken with Mark. The
// dispatcher calls it after every statement, including failed ones.
func (c *Context) Reset(mark int) {
	c.operands.Reset(mark)
}

// StackDepth returns the number of pending operands.
func (c *Context) StackDepth() int {
	return c.operands.Size()
}

// Operands returns a copy of the pending operands, oldest first.
func (c *Context) Operands() []value.Value {
	return append([]value.Value(nil), c.operands.Array()...)
}

func (c *Context) push(tok lexer.Token, v value.Value) error {
	if err := c.operands.Push(v); err != nil {
		if errors.Is(err, stack.ErrOverflow) {
			return errorAt(tok, fmt.Errorf("%w: operand stack full", ErrTooComplex))
		}
		return errorAt(tok, err)
	}
	return nil
}

func (c *Context) pop() value.Value {
	v, _ := c.operands.Pop()
	return v
}

// enter bounds the nesting of expressions.
func (c *Context) enter(tok lexer.Token) error {
	if c.depth >= c.maxDepth {
		return errorAt(tok, fmt.Errorf("%w: nesting deeper than %d", ErrTooComplex, c.maxDepth))
	}
	c.depth++
	return nil
}

func (c *Context) leave() {
	c.depth--
}

// enterCall bounds the active calls. The body gets its own expression
// nesting allowance; the caller's is restored by the returned func.
func (c *Context) enterCall(tok lexer.Token) (func(), error) {
	if c.calls >= c.maxCalls {
		return nil, errorAt(tok, fmt.Errorf("%w: calls nested deeper than %d", ErrTooComplex, c.maxCalls))
	}

	c.calls++
	depth := c.depth
	c.depth = 0
	return func() {
		c.calls--
		c.depth = depth
	}, nil
}
