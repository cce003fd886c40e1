package lexer

import (
	"fmt"
	"strings"
)

type Lexer struct {
	input    string // program line to be tokenized
	length   int    // length of the input string
	position int    // current position in the input string
	line     int    // BASIC line number for error reporting
	column   int    // current column number for error reporting
}

// Create a new lexer instance for a program line; line 0 is an immediate
// statement
func NewLineLexer(line int, s string) *Lexer {
	return &Lexer{
		input:    s,
		length:   len(s),
		position: 0,
		line:     line,
		column:   1,
	}
}

// Get the next token from the input
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	// End of input
	if l.position >= l.length {
		return NewToken(EOF, "", "", l.currentPosition())
	}

	// Regex match the first token it sees from the remaining input from current position to the end
	remaining := l.input[l.position:]
	tokenType, lexeme, matched := MatchToken(remaining)

	if !matched || tokenType == EOF {
		if tokenType == EOF && lexeme != "" {
			l.advance(len(lexeme))
			return l.NextToken()
		}

		char := string(l.input[l.position])
		tok := NewToken(ILLEGAL, char, "", l.currentPosition())
		l.advance(1)
		return tok
	}

	var literal string
	switch tokenType {
	case NUM:
		literal = lexeme
	case HEXNUM, BINNUM:
		literal = lexeme[1:]
	case STRING:
		// Remove the surrounding quotes and collapse doubled quotes
		literal = strings.ReplaceAll(lexeme[1:len(lexeme)-1], `""`, `"`)
	case REM:
		// the remark swallows the rest of the line
		lexeme = remaining
		literal = strings.TrimSpace(remaining[3:])
	default:
		literal = lexeme
	}

	tok := NewToken(tokenType, lexeme, literal, l.currentPosition())
	l.advance(len(lexeme))

	return tok
}

// Tokenize returns every token of the line, terminated by EOF
func (l *Lexer) Tokenize() ([]Token, error) {
	tokens := make([]Token, 0, 16)
	for {
		tok := l.NextToken()
		if tok.Type == ILLEGAL {
			return nil, fmt.Errorf("illegal character %q at %s", tok.Lexeme, tok.Pos.Where())
		}

		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens, nil
		}
	}
}

// Tokenize is a shorthand for NewLineLexer(line, s).Tokenize()
func Tokenize(line int, s string) ([]Token, error) {
	return NewLineLexer(line, s).Tokenize()
}

// Skip blanks between tokens
func (l *Lexer) skipWhitespace() {
	for l.position < l.length {
		ch := l.input[l.position]
		if ch != ' ' && ch != '\t' && ch != '\r' && ch != '\n' {
			break
		}

		l.column++
		l.position++
	}
}

// Advance the lexer position by n characters
func (l *Lexer) advance(n int) {
	for range n {
		if l.position >= l.length {
			break
		}

		l.column++
		l.position++
	}
}

// Get the current position of the lexer
func (l *Lexer) currentPosition() Position {
	return Position{
		Line:   l.line,
		Column: l.column,
		Offset: l.position,
	}
}
