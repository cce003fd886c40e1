package runner

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"bbcbasic/internal/config"
	"bbcbasic/pkg/color"
	"bbcbasic/pkg/interpreter"
	"bbcbasic/pkg/lexer"
	"bbcbasic/pkg/netio"
)

var ErrFailed = errors.New("program failed")

type Runner struct {
	Help       bool   // Show help message
	Verbose    bool   // List the tokenized program before running it
	NoColor    bool   // Disable colored output
	Trace      bool   // Dump interpreter state on errors
	Expr       string // Expression to evaluate instead of a program
	ConfigFile string // Path to the YAML configuration
	SourceFile string // Path to the program file

	Config config.Config

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Run evaluates Expr, runs SourceFile, or reads lines from Stdin: through
// the line editor when it is a terminal.
func (r *Runner) Run() error {
	r.defaults()

	transport := netio.New(netio.WithDialTimeout(r.Config.DialTimeout))
	defer transport.CloseAll()

	it := interpreter.NewInterpreter(
		interpreter.WithWriter(r.Stdout),
		interpreter.WithMaxSteps(r.Config.MaxSteps),
		interpreter.WithTrace(r.Trace || r.Config.Trace),
		interpreter.WithLimits(r.Config.MaxDepth, r.Config.StackLimit),
		interpreter.WithMaxCalls(r.Config.MaxCalls),
		interpreter.WithStreams(transport),
	)

	switch {
	case r.Expr != "":
		return r.evaluate(it)
	case r.SourceFile != "":
		return r.runFile(it)
	case isTerminal(r.Stdin):
		return r.repl(it)
	default:
		return r.script(it, r.Stdin)
	}
}

func (r *Runner) defaults() {
	if r.Config == (config.Config{}) {
		r.Config = config.Default()
	}
	if r.Stdin == nil {
		r.Stdin = os.Stdin
	}
	if r.Stdout == nil {
		r.Stdout = os.Stdout
	}
	if r.Stderr == nil {
		r.Stderr = os.Stderr
	}
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (r *Runner) evaluate(it *interpreter.Interpreter) error {
	v, err := it.Evaluate(r.Expr)
	if err != nil {
		return r.report(err)
	}
	_, err = fmt.Fprintln(r.Stdout, v.String())
	return err
}

// runFile loads and runs a program file.
func (r *Runner) runFile(it *interpreter.Interpreter) error {
	log.Info("Processing file", "file", r.SourceFile)

	f, err := os.Open(r.SourceFile)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := it.Program().Load(f); err != nil {
		return fmt.Errorf("%s: %w", r.SourceFile, err)
	}
	if it.Program().Len() == 0 {
		return fmt.Errorf("%s: %w", r.SourceFile, interpreter.ErrNoProgram)
	}

	if r.Verbose {
		r.listTokens(it.Program())
	}

	if err := it.Run(); err != nil {
		return r.report(err)
	}
	return nil
}

// categoryColor picks the colour of a token in the verbose listing.
var categoryColor = map[lexer.TokenCategory]func(string) string{
	lexer.KEYWORD:    color.YellowText,
	lexer.BUILTIN:    color.BlueText,
	lexer.LITERAL:    color.GreenText,
	lexer.OPERATOR:   color.CyanText,
	lexer.DELIMITER:  color.GrayText,
	lexer.IDENTIFIER: color.BoldText,
}

func colorToken(tok lexer.Token) string {
	paint, ok := categoryColor[tok.Type.GetCategory()]
	if !ok {
		paint = color.GrayText
	}

	name := tok.Type.String()
	if tok.Literal != "" && tok.Literal != name {
		return paint(name) + "(" + tok.Literal + ")"
	}
	return paint(name)
}

// listTokens prints every stored line as its token stream.
func (r *Runner) listTokens(p *interpreter.Program) {
	fmt.Fprintln(r.Stderr, color.GreenText("=== Tokenized Program ==="))
	for _, l := range p.Lines() {
		parts := make([]string, 0, len(l.Tokens))
		for _, tok := range l.Tokens {
			parts = append(parts, colorToken(tok))
		}
		fmt.Fprintf(r.Stderr, "%s: %s\n", color.CyanText(fmt.Sprintf("%5d", l.Number)), strings.Join(parts, " "))
	}
}

// report prints a runtime error the way BASIC does and marks the run as
// failed.
func (r *Runner) report(err error) error {
	fmt.Fprintln(r.Stderr, color.Error(interpreter.Report(err)))
	return fmt.Errorf("%w: %w", ErrFailed, err)
}

// script feeds lines from a non-interactive input through the same
// commands as the REPL and stops at the first error.
func (r *Runner) script(it *interpreter.Interpreter, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		quit, err := r.Command(it, scanner.Text())
		if err != nil {
			return r.report(err)
		}
		if quit {
			return nil
		}
	}
	return scanner.Err()
}

// Command executes one line typed at the prompt. Numbered lines are
// stored; RUN, LIST, NEW and QUIT act on the program; anything else is
// run as an immediate statement.
func (r *Runner) Command(it *interpreter.Interpreter, line string) (quit bool, err error) {
	text := strings.TrimSpace(line)
	word, rest, _ := strings.Cut(text, " ")

	switch strings.ToUpper(word) {
	case "":
		return false, nil
	case "QUIT", "BYE":
		return true, nil
	case "NEW":
		it.New()
		return false, nil
	case "RUN":
		return false, it.Run()
	case "LIST":
		first, last, err := listRange(rest)
		if err != nil {
			return false, err
		}
		return false, it.Program().List(r.Stdout, first, last)
	}

	return false, it.Execute(line)
}

// listRange parses the optional "first[,last]" argument of LIST.
func listRange(s string) (int, int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, nil
	}

	from, to, hasTo := strings.Cut(s, ",")
	first, err := strconv.Atoi(strings.TrimSpace(from))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: LIST %s", interpreter.ErrLineNumber, s)
	}
	if !hasTo {
		return first, first, nil
	}

	last, err := strconv.Atoi(strings.TrimSpace(to))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: LIST %s", interpreter.ErrLineNumber, s)
	}
	return first, last, nil
}
