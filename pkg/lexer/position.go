package lexer

import "fmt"

// Position locates a token inside a program line
type Position struct {
	Line   int // BASIC line number, 0 for immediate statements
	Column int // 1-based column within the line text
	Offset int // byte offset within the line text
}

// Returns a string representation of the Position
func (p Position) String() string {
	return fmt.Sprintf("%d, %d, %d", p.Line, p.Column, p.Offset)
}

// Where renders the position the way runtime errors report it
func (p Position) Where() string {
	if p.Line == 0 {
		return fmt.Sprintf("column %d", p.Column)
	}

	return fmt.Sprintf("line %d, column %d", p.Line, p.Column)
}
