package eval

// EvalInteger evaluates an expression and converts it to a 32-bit integer,
// truncating floats toward zero.
func (c *Context) EvalInteger() (int32, error) {
	tok := c.Peek()
	v, err := c.Expression()
	if err != nil {
		return 0, err
	}

	i, err := v.AsInt32()
	if err != nil {
		return 0, errorAt(tok, err)
	}
	return i, nil
}

// EvalInt64 evaluates an expression and converts it to a 64-bit integer.
func (c *Context) EvalInt64() (int64, error) {
	tok := c.Peek()
	v, err := c.Expression()
	if err != nil {
		return 0, err
	}

	i, err := v.AsInt64()
	if err != nil {
		return 0, errorAt(tok, err)
	}
	return i, nil
}

// EvalIntFactor evaluates a single factor as a 32-bit integer. Channel
// numbers after '#' use it so "BGET#h+1" adds to the byte, not the handle.
func (c *Context) EvalIntFactor() (int32, error) {
	tok := c.Peek()
	v, err := c.Factor()
	if err != nil {
		return 0, err
	}

	i, err := v.AsInt32()
	if err != nil {
		return 0, errorAt(tok, err)
	}
	return i, nil
}

// EvalString evaluates an expression that must yield a string.
func (c *Context) EvalString() (string, error) {
	tok := c.Peek()
	v, err := c.Expression()
	if err != nil {
		return "", err
	}
	return stringOf(tok, v)
}
