package value

import "fmt"

// Cell is a slot that owns its value: a variable or a by-value parameter.
// Scalar cells keep their declared kind, array cells hold one array.
type Cell struct {
	kind Kind
	v    Value
}

// NewCell creates a scalar cell of kind k holding that kind's zero value.
func NewCell(k Kind) *Cell {
	return &Cell{kind: k, v: Zero(k)}
}

// NewArrayCell creates a cell holding the array a.
func NewArrayCell(a *Array) *Cell {
	return &Cell{kind: KindArray, v: FromArray(a)}
}

// Kind returns the declared kind of the cell.
func (c *Cell) Kind() Kind {
	return c.kind
}

func (c *Cell) Get() Value {
	return c.v
}

// Set assigns v with the coercion rules of the cell's kind. Array cells
// take an array of the same shape or a scalar to fill every element.
func (c *Cell) Set(v Value) error {
	if c.kind == KindArray {
		if c.v.Arr == nil {
			return fmt.Errorf("%w: array not dimensioned", ErrDimMismatch)
		}
		return c.v.Arr.Assign(v)
	}

	if v.Kind == KindArray {
		return fmt.Errorf("%w: cannot store an array in a %s variable", ErrTypeMismatch, c.kind)
	}
	cv, err := Coerce(v, c.kind)
	if err != nil {
		return err
	}
	c.v = cv
	return nil
}

// Dimension replaces the array held by an array cell.
func (c *Cell) Dimension(a *Array) error {
	if c.kind != KindArray {
		return fmt.Errorf("%w: %s variable is not an array", ErrTypeMismatch, c.kind)
	}
	c.v = FromArray(a)
	return nil
}

// Element is a slot naming one element of an array.
type Element struct {
	arr *Array
	off int
}

// ElementAt returns the slot for the element at flat offset off.
func ElementAt(a *Array, off int) *Element {
	return &Element{arr: a, off: off}
}

// Kind returns the element kind of the underlying array.
func (e *Element) Kind() Kind {
	return e.arr.Elem
}

func (e *Element) Get() Value {
	return e.arr.Elems[e.off]
}

func (e *Element) Set(v Value) error {
	if v.Kind == KindArray {
		return fmt.Errorf("%w: cannot store an array in an array element", ErrTypeMismatch)
	}
	cv, err := coerceElem(v, e.arr.Elem)
	if err != nil {
		return err
	}
	e.arr.Elems[e.off] = cv
	return nil
}
