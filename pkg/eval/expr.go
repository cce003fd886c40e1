package eval

import (
	"fmt"

	"bbcbasic/pkg/value"
)

// Expression evaluates the full expression at the cursor, stopping at the
// first token that cannot continue it.
func (c *Context) Expression() (value.Value, error) {
	base := c.operands.Size()

	v, err := c.climb(minPrecedence)
	if err != nil {
		return value.Value{}, err
	}

	if c.operands.Size() != base {
		return value.Value{}, errorAt(c.Peek(), fmt.Errorf("%w: operand stack unbalanced", ErrTooComplex))
	}
	return v, nil
}

// climb evaluates a factor followed by every binary operator binding at
// least as tightly as minPrec. The left operand is parked on the operand
// stack while the right hand side is evaluated and is only combined once
// that succeeded; on error it stays there until the statement resets.
func (c *Context) climb(minPrec int) (value.Value, error) {
	if err := c.enter(c.Peek()); err != nil {
		return value.Value{}, err
	}
	defer c.leave()

	left, err := c.Factor()
	if err != nil {
		return value.Value{}, err
	}

	for {
		tok := c.Peek()
		info, ok := binaryOperator(tok.Type)
		if !ok || info.prec < minPrec {
			return left, nil
		}
		c.Next()

		next := info.prec + 1
		if info.assoc == rightAssoc {
			next = info.prec
		}

		if err := c.push(tok, left); err != nil {
			return value.Value{}, err
		}
		right, err := c.climb(next)
		if err != nil {
			return value.Value{}, err
		}
		left = c.pop()

		result, err := value.Binary(info.op, left, right)
		if err != nil {
			return value.Value{}, errorAt(tok, err)
		}
		left = result
	}
}
