package eval

import (
	"fmt"

	"bbcbasic/pkg/lexer"
	"bbcbasic/pkg/value"
)

// Ref is a resolved variable reference.
type Ref struct {
	Name  string     // storage name, "a%(" for arrays
	Slot  value.Slot // the variable, array element or whole array
	Kind  value.Kind // kind stored through Slot
	Whole bool       // a whole array written as a()
}

// Variable parses a variable reference at the cursor: a scalar, an array
// element a(i,j) or a whole array a(). The variable must already exist.
func (c *Context) Variable() (Ref, error) {
	tok := c.Next()
	if tok.Type != lexer.ID {
		return Ref{}, syntaxError(tok, "expected a variable, found %s", tok.Type)
	}
	return c.reference(tok)
}

// reference resolves the identifier tok, consuming any subscripts.
func (c *Context) reference(tok lexer.Token) (Ref, error) {
	name := tok.Literal

	if c.Peek().Type != lexer.LPAREN {
		if slot, ok := c.storage.Lookup(name); ok {
			return Ref{Name: name, Slot: slot, Kind: value.KindForName(name)}, nil
		}
		return Ref{}, errorAt(tok, fmt.Errorf("%w: %s", ErrNoSuchVariable, name))
	}

	c.Next()
	arrayName := name + "("
	slot, ok := c.storage.Lookup(arrayName)
	if !ok || slot.Get().Arr == nil {
		return Ref{}, errorAt(tok, fmt.Errorf("%w: array %s)", ErrNoSuchVariable, arrayName))
	}
	arr := slot.Get().Arr

	if c.Accept(lexer.RPAREN) {
		return Ref{Name: arrayName, Slot: slot, Kind: value.KindArray, Whole: true}, nil
	}

	subs, err := c.subscripts()
	if err != nil {
		return Ref{}, err
	}
	off, err := arr.Index(subs)
	if err != nil {
		return Ref{}, errorAt(tok, err)
	}
	return Ref{Name: arrayName, Slot: value.ElementAt(arr, off), Kind: arr.Elem}, nil
}

// subscripts reads "i,j,...)" after an opening bracket.
func (c *Context) subscripts() ([]int, error) {
	var subs []int
	for {
		i, err := c.EvalInteger()
		if err != nil {
			return nil, err
		}
		subs = append(subs, int(i))

		if c.Accept(lexer.COMMA) {
			continue
		}
		if _, err := c.Expect(lexer.RPAREN); err != nil {
			return nil, err
		}
		return subs, nil
	}
}

// Dimensions reads the extents list of a DIM clause after the opening
// bracket. DIM a(3,4) has extents 4 and 5.
func (c *Context) Dimensions() ([]int, error) {
	tok := c.Peek()
	subs, err := c.subscripts()
	if err != nil {
		return nil, err
	}

	dims := make([]int, len(subs))
	for i, s := range subs {
		if s < 0 {
			return nil, errorAt(tok, fmt.Errorf("%w: negative dimension %d", value.ErrRange, s))
		}
		dims[i] = s + 1
	}
	return dims, nil
}
