package interpreter

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/goforj/godump"

	"bbcbasic/pkg/eval"
	"bbcbasic/pkg/lexer"
	"bbcbasic/pkg/symtab"
	"bbcbasic/pkg/value"
)

var (
	ErrMaxStepsExceeded = errors.New("maximum steps exceeded")
	ErrLineNumber       = errors.New("bad line number")
	ErrNotInProcedure   = errors.New("not in a procedure")
	ErrNotInFunction    = errors.New("not in a function")
	ErrNoProgram        = errors.New("no program")

	// errEnd unwinds every active call when END is executed.
	errEnd = errors.New("END")
)

// Interpreter runs tokenized BASIC lines: a stored program or immediate
// statements.
type Interpreter struct {
	program *Program

	lines []*Line     // snapshot of the program for the current run
	index map[int]int // line number -> position in lines
	defs  map[string]*eval.Definition

	vars  *symtab.Table
	ctx   *eval.Context
	stack []*Frame // active FN and PROC calls

	current int // line number being executed, 0 for immediate statements

	out io.Writer
	col int // output column, for PRINT field alignment

	streams eval.Stream

	maxDepth   int
	maxCalls   int
	stackLimit int
	maxSteps   int // maximum statements (0 = unlimited)
	steps      int // statements executed
	trace      bool
	dumped     bool // state already dumped for the current error
}

type Option func(*Interpreter)

// WithWriter sets the output writer for print statements
func WithWriter(w io.Writer) Option {
	return func(i *Interpreter) { i.out = w }
}

// WithMaxSteps sets a maximum number of statements before returning ErrMaxStepsExceeded
func WithMaxSteps(n int) Option {
	return func(i *Interpreter) { i.maxSteps = n }
}

// WithTrace dumps the interpreter state when a statement fails
func WithTrace(on bool) Option {
	return func(i *Interpreter) { i.trace = on }
}

// WithStreams sets the transport used by OPENUP, BGET#, BPUT# and CLOSE#
func WithStreams(s eval.Stream) Option {
	return func(i *Interpreter) { i.streams = s }
}

// WithLimits bounds expression nesting and the operand stack
func WithLimits(maxDepth, stackLimit int) Option {
	return func(i *Interpreter) {
		i.maxDepth = maxDepth
		i.stackLimit = stackLimit
	}
}

// WithMaxCalls bounds how deeply FN and PROC calls may recurse
func WithMaxCalls(n int) Option {
	return func(i *Interpreter) { i.maxCalls = n }
}

// NewInterpreter creates a new Interpreter instance with an empty program
func NewInterpreter(opts ...Option) *Interpreter {
	it := &Interpreter{
		program: NewProgram(),
		index:   make(map[int]int),
		defs:    make(map[string]*eval.Definition),
		vars:    symtab.New(),
		stack:   make([]*Frame, 0, 8),
	}

	for _, o := range opts {
		o(it)
	}

	if it.out == nil {
		it.out = os.Stdout
	}

	ctxOpts := []eval.Option{
		eval.WithCaller(it),
		eval.WithMaxDepth(it.maxDepth),
		eval.WithMaxCalls(it.maxCalls),
		eval.WithStackLimit(it.stackLimit),
	}
	if it.streams != nil {
		ctxOpts = append(ctxOpts, eval.WithStreams(it.streams))
	}
	it.ctx = eval.NewContext(it.vars, ctxOpts...)

	return it
}

// Program returns the stored program
func (i *Interpreter) Program() *Program {
	return i.program
}

// Output returns the output writer used for print
func (i *Interpreter) Output() io.Writer {
	return i.out
}

// Variables returns the variable store
func (i *Interpreter) Variables() *symtab.Table {
	return i.vars
}

// Reset clears runtime state (variables, call stack, operand stack, counters)
func (i *Interpreter) Reset() {
	i.vars.Clear()
	i.trap()
	i.steps = 0
}

// New deletes the program and clears runtime state
func (i *Interpreter) New() {
	i.program.Clear()
	i.Reset()
	i.lines = nil
	clear(i.index)
	clear(i.defs)
}

// trap restores a usable state after an error: no calls in progress and
// an empty operand stack.
func (i *Interpreter) trap() {
	i.stack = i.stack[:0]
	i.vars.Unwind(0)
	i.ctx.Reset(0)
	i.current = 0
	i.dumped = false
}

// dump prints the state at the point a statement failed.
func (i *Interpreter) dump() {
	if i.trace && !i.dumped {
		i.dumped = true
		godump.Dump(i.Snapshot())
	}
}

// Run clears the variables and executes the stored program from its
// first line
func (i *Interpreter) Run() error {
	i.Reset()
	if err := i.indexProgram(); err != nil {
		return err
	}
	if len(i.lines) == 0 {
		return nil
	}

	_, _, err := i.runFrom(0, i.lines[0].Tokens)
	return i.finish(err)
}

// Execute runs one immediate line. Numbered lines are stored instead.
func (i *Interpreter) Execute(text string) error {
	if n, rest, ok := SplitLineNumber(text); ok {
		return i.program.Store(n, rest)
	}

	tokens, err := lexer.Tokenize(0, text)
	if err != nil {
		return fmt.Errorf("%w: %w", eval.ErrSyntax, err)
	}
	if err := i.indexProgram(); err != nil {
		return err
	}

	_, _, err = i.runFrom(-1, tokens)
	return i.finish(err)
}

// Evaluate evaluates one expression and returns its value
func (i *Interpreter) Evaluate(text string) (value.Value, error) {
	tokens, err := lexer.Tokenize(0, text)
	if err != nil {
		return value.Value{}, fmt.Errorf("%w: %w", eval.ErrSyntax, err)
	}
	if err := i.indexProgram(); err != nil {
		return value.Value{}, err
	}

	mark := i.ctx.Mark()
	defer i.ctx.Reset(mark)

	i.ctx.Load(tokens)
	v, err := i.ctx.Expression()
	if err == nil && i.ctx.Peek().Type != lexer.EOF {
		err = i.unexpected()
	}
	return v, i.finish(err)
}

// finish turns END into a normal stop and restores a usable state after
// an error.
func (i *Interpreter) finish(err error) error {
	if errors.Is(err, errEnd) {
		err = nil
	}
	if err != nil {
		log.Debug("statement failed", "line", i.current, "error", err)
	}

	i.trap()
	return err
}

// indexProgram snapshots the stored lines and collects the DEF headers.
func (i *Interpreter) indexProgram() error {
	i.lines = i.program.Lines()
	clear(i.index)
	clear(i.defs)

	for n, l := range i.lines {
		i.index[l.Number] = n
		if len(l.Tokens) == 0 || l.Tokens[0].Type != lexer.DEF {
			continue
		}

		def, err := eval.ParseDefinition(l.Tokens, l.Number)
		if err != nil {
			return err
		}
		i.defs[defKey(def.Name, def.Kind)] = def
	}

	return nil
}

func defKey(name string, kind eval.DefKind) string {
	return kind.String() + name
}

// Definition finds a DEF FN or DEF PROC by name
func (i *Interpreter) Definition(name string, kind eval.DefKind) (*eval.Definition, bool) {
	def, ok := i.defs[defKey(name, kind)]
	return def, ok
}

// Invoke runs the body of a FN or PROC with its parameters bound
func (i *Interpreter) Invoke(def *eval.Definition, frame *eval.Frame) (value.Value, error) {
	f := i.PushFrame(def)
	defer i.PopFrame()

	for _, b := range frame.Bindings {
		if err := i.vars.Bind(b.Name, b.Slot); err != nil {
			return value.Value{}, err
		}
	}

	saved := i.ctx.Save()
	defer i.ctx.Restore(saved)
	defer func(line int) { i.current = line }(i.current)

	i.current = def.Line
	log.Debug("enter", "routine", f.String(), "depth", len(i.stack))

	// DEF FNname(...)=expression
	if def.Kind == eval.DefFN && len(def.Body) > 0 && def.Body[0].Type == lexer.EQ {
		i.ctx.Load(def.Body[1:])
		return i.result()
	}

	return i.runBody(def)
}

// runBody executes a multi-line FN or PROC starting after its header.
// The body ends at ENDPROC or at a "=expression" statement.
func (i *Interpreter) runBody(def *eval.Definition) (value.Value, error) {
	n, ok := i.index[def.Line]
	if !ok {
		return value.Value{}, fmt.Errorf("%w: %s%s", eval.ErrNoSuchFunction, def.Kind, def.Name)
	}

	x, v, err := i.runFrom(n, def.Body)
	if err != nil {
		return value.Value{}, err
	}
	if x == exitEnd {
		// fell off the end of the program inside the routine
		if def.Kind == eval.DefPROC {
			return value.Value{}, fmt.Errorf("%w: no ENDPROC in PROC%s", ErrNotInProcedure, def.Name)
		}
		return value.Value{}, fmt.Errorf("%w: no = in FN%s", ErrNotInFunction, def.Name)
	}
	return v, nil
}

// result evaluates the expression of a FN return and checks that it ends
// the statement.
func (i *Interpreter) result() (value.Value, error) {
	v, err := i.ctx.Expression()
	if err != nil {
		return value.Value{}, err
	}
	if !i.ctx.AtEnd() {
		return value.Value{}, i.unexpected()
	}
	return v, nil
}

// PushFrame pushes a new call frame for the given routine
func (i *Interpreter) PushFrame(def *eval.Definition) *Frame {
	i.vars.PushScope()
	frame := &Frame{
		Def:    def,
		Caller: i.current,
		Scope:  i.vars.Depth() - 1,
	}

	i.stack = append(i.stack, frame)
	return frame
}

// PopFrame pops the current call frame and its variable scope
func (i *Interpreter) PopFrame() *Frame {
	f := i.currentFrame()
	if f == nil {
		return nil
	}

	i.stack = i.stack[:len(i.stack)-1]
	i.vars.Unwind(f.Scope)
	return f
}

// currentFrame returns the current call frame, or nil if none
func (i *Interpreter) currentFrame() *Frame {
	if len(i.stack) == 0 {
		return nil
	}

	return i.stack[len(i.stack)-1]
}

// State is a snapshot of the interpreter used for trace dumps.
type State struct {
	Line     int
	Calls    []string
	Operands []value.Value
	Globals  map[string]value.Value
}

// Snapshot captures the current line, call stack, pending operands and
// global variables
func (i *Interpreter) Snapshot() State {
	s := State{
		Line:     i.current,
		Operands: i.ctx.Operands(),
		Globals:  i.vars.Globals(),
	}
	for _, f := range i.stack {
		s.Calls = append(s.Calls, f.String())
	}
	return s
}

// Report formats a runtime error the way BASIC prints it:
// "Error N: message at line L".
func Report(err error) string {
	var (
		msg string
		e   *eval.Error
	)
	hasPos := errors.As(err, &e)

	switch n := eval.Number(err); {
	case n >= 0:
		msg = fmt.Sprintf("Error %d: %s", n, eval.Message(err))
	case hasPos:
		msg = "Error: " + e.Err.Error()
	default:
		msg = "Error: " + err.Error()
	}

	if hasPos && e.Pos.Line > 0 {
		msg += fmt.Sprintf(" at line %d", e.Pos.Line)
	}
	return msg
}
