package eval

import (
	"errors"
	"fmt"

	"bbcbasic/pkg/lexer"
	"bbcbasic/pkg/value"
)

// Error kinds raised by the evaluator. Value-level kinds are re-exported so
// callers only need this package to classify an error with errors.Is.
var (
	ErrSyntax         = errors.New("syntax error")
	ErrArity          = errors.New("wrong number of parameters")
	ErrNoSuchVariable = errors.New("no such variable")
	ErrNoSuchFunction = errors.New("no such FN/PROC")
	ErrTooComplex     = errors.New("expression too complex")
	ErrBadHandle      = errors.New("bad channel")

	ErrTypeMismatch   = value.ErrTypeMismatch
	ErrDivisionByZero = value.ErrDivisionByZero
	ErrDimMismatch    = value.ErrDimMismatch
	ErrRange          = value.ErrRange
	ErrSubscript      = value.ErrSubscript
)

// BASIC error numbers as reported by ERR.
var errorNumbers = []struct {
	kind   error
	number int
	text   string
}{
	{ErrTooComplex, 0, "Expression too complex"},
	{ErrTypeMismatch, 6, "Type mismatch"},
	{ErrSubscript, 15, "Subscript out of range"},
	{ErrSyntax, 16, "Syntax error"},
	{ErrDivisionByZero, 18, "Division by zero"},
	{ErrRange, 20, "Number too big"},
	{ErrNoSuchVariable, 26, "No such variable"},
	{ErrNoSuchFunction, 29, "No such FN/PROC"},
	{ErrArity, 31, "Arguments"},
	{ErrDimMismatch, 52, "Array dimensions do not match"},
	{ErrBadHandle, 222, "Channel"},
}

// Error is a runtime error tied to the token where it was detected.
type Error struct {
	Err error
	Pos lexer.Position
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at %s", e.Err, e.Pos.Where())
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Number returns the BASIC error number for err, or -1 when err is not a
// BASIC runtime error.
func Number(err error) int {
	for _, en := range errorNumbers {
		if errors.Is(err, en.kind) {
			return en.number
		}
	}
	return -1
}

// Message returns the standard BASIC text for err's kind.
func Message(err error) string {
	for _, en := range errorNumbers {
		if errors.Is(err, en.kind) {
			return en.text
		}
	}
	return err.Error()
}

// errorAt ties err to a token position unless it already carries one.
func errorAt(tok lexer.Token, err error) error {
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Err: err, Pos: tok.Pos}
}

// syntaxError reports a malformed token sequence at tok.
func syntaxError(tok lexer.Token, format string, args ...any) error {
	return &Error{Err: fmt.Errorf("%w: %s", ErrSyntax, fmt.Sprintf(format, args...)), Pos: tok.Pos}
}

// At ties err to the position of tok unless it already carries one.
func At(tok lexer.Token, err error) error {
	return errorAt(tok, err)
}
