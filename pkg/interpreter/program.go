package interpreter

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/google/btree"

	"bbcbasic/pkg/lexer"
)

// MaxLineNumber is the highest line number a program may use.
const MaxLineNumber = 65279

// Line is one numbered program line.
type Line struct {
	Number int
	Text   string
	Tokens []lexer.Token
}

// Program holds the stored lines ordered by line number.
type Program struct {
	lines *btree.BTreeG[*Line]
}

func NewProgram() *Program {
	return &Program{
		lines: btree.NewG(8, func(a, b *Line) bool { return a.Number < b.Number }),
	}
}

// Store tokenizes text and stores it as line number. Empty text deletes
// the line.
func (p *Program) Store(number int, text string) error {
	if number < 1 || number > MaxLineNumber {
		return fmt.Errorf("%w: line number %d", ErrLineNumber, number)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		p.Delete(number)
		return nil
	}

	tokens, err := lexer.Tokenize(number, text)
	if err != nil {
		return fmt.Errorf("line %d: %w", number, err)
	}

	p.lines.ReplaceOrInsert(&Line{Number: number, Text: text, Tokens: tokens})
	return nil
}

// Delete removes line number, reporting whether it existed.
func (p *Program) Delete(number int) bool {
	_, ok := p.lines.Delete(&Line{Number: number})
	return ok
}

// Get returns line number.
func (p *Program) Get(number int) (*Line, bool) {
	return p.lines.Get(&Line{Number: number})
}

func (p *Program) Len() int {
	return p.lines.Len()
}

// Lines returns every line in ascending order.
func (p *Program) Lines() []*Line {
	out := make([]*Line, 0, p.lines.Len())
	p.lines.Ascend(func(l *Line) bool {
		out = append(out, l)
		return true
	})
	return out
}

// Last returns the highest line number, 0 for an empty program.
func (p *Program) Last() int {
	if l, ok := p.lines.Max(); ok {
		return l.Number
	}
	return 0
}

// Clear deletes every line.
func (p *Program) Clear() {
	p.lines.Clear(false)
}

// List writes the lines from first to last inclusive; last 0 means the end.
func (p *Program) List(w io.Writer, first, last int) error {
	var err error
	p.lines.AscendGreaterOrEqual(&Line{Number: first}, func(l *Line) bool {
		if last > 0 && l.Number > last {
			return false
		}
		_, err = fmt.Fprintf(w, "%5d %s\n", l.Number, l.Text)
		return err == nil
	})
	return err
}

// SplitLineNumber separates a leading line number from the statement text.
func SplitLineNumber(s string) (int, string, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)

	end := strings.IndexFunc(s, func(r rune) bool { return r < '0' || r > '9' })
	if end == 0 {
		return 0, s, false
	}
	if end < 0 {
		end = len(s)
	}

	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, s, false
	}
	return n, s[end:], true
}

// Load reads program text. Unnumbered lines continue numbering in steps
// of 10 after the previous line.
func (p *Program) Load(r io.Reader) error {
	scanner := bufio.NewScanner(r)

	number := p.Last()
	for scanner.Scan() {
		text := scanner.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}

		if n, rest, ok := SplitLineNumber(text); ok {
			if n <= number {
				return fmt.Errorf("%w: line %d follows line %d", ErrLineNumber, n, number)
			}
			number, text = n, rest
		} else {
			number += 10
		}

		if err := p.Store(number, text); err != nil {
			return err
		}
	}

	return scanner.Err()
}
