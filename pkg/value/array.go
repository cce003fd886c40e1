package value

import (
	"fmt"
	"strings"
)

// MaxElements bounds the size of a single array.
const MaxElements = 1 << 24

// Array is a BASIC array: a shape and a flat, row-major backing slice whose
// elements all share one kind. len(Elems) is always the product of Dims.
type Array struct {
	Dims  []int
	Elems []Value
	Elem  Kind
}

// NewArray allocates a zero-filled array with the given extents.
func NewArray(elem Kind, dims ...int) (*Array, error) {
	if len(dims) == 0 {
		return nil, fmt.Errorf("%w: array needs at least one dimension", ErrSubscript)
	}

	n := 1
	for _, d := range dims {
		if d < 1 || n > MaxElements/d {
			return nil, fmt.Errorf("%w: bad array dimension %d", ErrRange, d)
		}
		n *= d
	}

	a := &Array{
		Dims:  append([]int(nil), dims...),
		Elems: make([]Value, n),
		Elem:  elem,
	}
	zero := Zero(elem)
	for i := range a.Elems {
		a.Elems[i] = zero
	}

	return a, nil
}

// Len returns the number of elements.
func (a *Array) Len() int {
	return len(a.Elems)
}

// Index maps subscripts to the flat element offset.
func (a *Array) Index(subs []int) (int, error) {
	if len(subs) != len(a.Dims) {
		return 0, fmt.Errorf("%w: expected %d subscripts, got %d", ErrSubscript, len(a.Dims), len(subs))
	}

	off := 0
	for i, s := range subs {
		if s < 0 || s >= a.Dims[i] {
			return 0, fmt.Errorf("%w: %d not in 0..%d", ErrSubscript, s, a.Dims[i]-1)
		}
		off = off*a.Dims[i] + s
	}
	return off, nil
}

// Copy returns an independent copy of the array.
func (a *Array) Copy() *Array {
	return &Array{
		Dims:  append([]int(nil), a.Dims...),
		Elems: append([]Value(nil), a.Elems...),
		Elem:  a.Elem,
	}
}

// SameShape reports whether both arrays have identical rank and extents.
func (a *Array) SameShape(b *Array) bool {
	if len(a.Dims) != len(b.Dims) {
		return false
	}
	for i := range a.Dims {
		if a.Dims[i] != b.Dims[i] {
			return false
		}
	}
	return true
}

// CheckArrays validates that two arrays can be combined elementwise.
func CheckArrays(a, b *Array) error {
	if len(a.Dims) != len(b.Dims) {
		return fmt.Errorf("%w: %d dimensions against %d", ErrDimMismatch, len(a.Dims), len(b.Dims))
	}
	for i := range a.Dims {
		if a.Dims[i] != b.Dims[i] {
			return fmt.Errorf("%w: dimension %d has %d elements against %d", ErrDimMismatch, i+1, a.Dims[i], b.Dims[i])
		}
	}
	return nil
}

// Elementwise applies a scalar operator position by position. Two arrays must
// have the same shape; a scalar operand is broadcast. The result is a new
// array and nothing is returned unless every element succeeded.
func Elementwise(op Op, a, b Value) (Value, error) {
	var shape *Array
	switch {
	case a.Kind == KindArray && b.Kind == KindArray:
		if err := CheckArrays(a.Arr, b.Arr); err != nil {
			return Value{}, err
		}
		shape = a.Arr
	case a.Kind == KindArray:
		shape = a.Arr
	default:
		shape = b.Arr
	}

	elems := make([]Value, shape.Len())
	for i := range elems {
		x, y := a, b
		if a.Kind == KindArray {
			x = a.Arr.Elems[i]
		}
		if b.Kind == KindArray {
			y = b.Arr.Elems[i]
		}

		r, err := scalar(op, x, y)
		if err != nil {
			return Value{}, err
		}
		elems[i] = r
	}

	return FromArray(uniform(shape.Dims, elems)), nil
}

// Map applies fn to every element, producing a new array.
func (a *Array) Map(fn func(Value) (Value, error)) (Value, error) {
	elems := make([]Value, a.Len())
	for i, e := range a.Elems {
		r, err := fn(e)
		if err != nil {
			return Value{}, err
		}
		elems[i] = r
	}
	return FromArray(uniform(a.Dims, elems)), nil
}

// uniform builds an array whose elements are widened to the widest kind
// produced, keeping the single element kind invariant after promotions.
func uniform(dims []int, elems []Value) *Array {
	k := KindUnknown
	for _, e := range elems {
		if k == KindUnknown {
			k = e.Kind
		} else if w := Wider(k, e.Kind); w != KindUnknown {
			k = w
		}
	}
	for i := range elems {
		elems[i] = elems[i].Widen(k)
	}

	return &Array{Dims: append([]int(nil), dims...), Elems: elems, Elem: k}
}

// Assign stores src into the array: another array of the same shape is
// copied elementwise, a scalar fills every element. Elements are converted
// to the array's kind first so a failure leaves the array untouched.
func (a *Array) Assign(src Value) error {
	converted := make([]Value, a.Len())

	if src.Kind == KindArray {
		if err := CheckArrays(a, src.Arr); err != nil {
			return err
		}
		for i, e := range src.Arr.Elems {
			c, err := coerceElem(e, a.Elem)
			if err != nil {
				return err
			}
			converted[i] = c
		}
	} else {
		c, err := coerceElem(src, a.Elem)
		if err != nil {
			return err
		}
		for i := range converted {
			converted[i] = c
		}
	}

	copy(a.Elems, converted)
	return nil
}

func coerceElem(v Value, k Kind) (Value, error) {
	if k == KindString && v.Kind != KindString {
		return Value{}, fmt.Errorf("%w: cannot store %s in a string array", ErrTypeMismatch, v.Kind)
	}
	return Coerce(v, k)
}

// Sum adds up every element, concatenating for string arrays.
func (a *Array) Sum() (Value, error) {
	acc := Zero(a.Elem)
	for _, e := range a.Elems {
		r, err := scalar(OpAdd, acc, e)
		if err != nil {
			return Value{}, err
		}
		acc = r
	}
	return acc, nil
}

func (a *Array) String() string {
	parts := make([]string, len(a.Dims))
	for i, d := range a.Dims {
		parts[i] = fmt.Sprint(d - 1)
	}
	return fmt.Sprintf("array(%s) of %s", strings.Join(parts, ","), a.Elem)
}
