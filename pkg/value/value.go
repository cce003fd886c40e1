package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

type Kind int

// Kinds in promotion order: a binary operator widens the narrower operand
// towards the later kind. Strings and arrays never mix with numbers.
const (
	KindUnknown Kind = iota
	KindInt
	KindInt64
	KindFloat
	KindString
	KindArray
)

var kindNames = [...]string{"unknown", "integer", "64-bit integer", "floating point", "string", "array"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsNumeric reports whether the kind is one of the three numeric kinds.
func (k Kind) IsNumeric() bool {
	return k == KindInt || k == KindInt64 || k == KindFloat
}

// Value is a tagged union over the BASIC data types. Only the field that
// matches Kind is meaningful.
type Value struct {
	Kind Kind
	I32  int32
	I64  int64
	F64  float64
	Str  string
	Arr  *Array
}

// BASIC truth values.
const (
	True  int32 = -1
	False int32 = 0
)

// Int creates a 32-bit integer Value.
func Int(i int32) Value {
	return Value{Kind: KindInt, I32: i}
}

// Int64 creates a 64-bit integer Value.
func Int64(i int64) Value {
	return Value{Kind: KindInt64, I64: i}
}

// Float creates a floating point Value.
func Float(f float64) Value {
	return Value{Kind: KindFloat, F64: f}
}

// String creates a string Value.
func String(s string) Value {
	return Value{Kind: KindString, Str: s}
}

// FromArray wraps an array in a Value.
func FromArray(a *Array) Value {
	return Value{Kind: KindArray, Arr: a}
}

// Bool converts a Go boolean to BASIC TRUE (-1) or FALSE (0).
func Bool(b bool) Value {
	if b {
		return Int(True)
	}
	return Int(False)
}

// Integer returns the narrowest integer Value holding i.
func Integer(i int64) Value {
	if i >= math.MinInt32 && i <= math.MaxInt32 {
		return Int(int32(i))
	}
	return Int64(i)
}

// Zero returns the initial value of a variable of the given kind.
func Zero(k Kind) Value {
	switch k {
	case KindInt:
		return Int(0)
	case KindInt64:
		return Int64(0)
	case KindString:
		return String("")
	default:
		return Float(0)
	}
}

// IsArray reports whether the value holds an array.
func (v Value) IsArray() bool {
	return v.Kind == KindArray
}

// String renders the value the way PRINT and STR$ show it.
func (v Value) String() string {
	switch v.Kind {
	case KindInt:
		return strconv.FormatInt(int64(v.I32), 10)
	case KindInt64:
		return strconv.FormatInt(v.I64, 10)
	case KindFloat:
		return FormatFloat(v.F64)
	case KindString:
		return v.Str
	case KindArray:
		return v.Arr.String()
	default:
		return "<nil>"
	}
}

// FormatFloat prints a float with ten significant digits, dropping the
// fraction of integral values and using BASIC style exponents (1E10).
func FormatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', 10, 64)
	mant, exp, ok := strings.Cut(s, "e")
	if !ok {
		return s
	}

	n, _ := strconv.Atoi(exp)
	return mant + "E" + strconv.Itoa(n)
}

// AsFloat64 converts a numeric value to float64.
func (v Value) AsFloat64() (float64, error) {
	switch v.Kind {
	case KindFloat:
		return v.F64, nil
	case KindInt:
		return float64(v.I32), nil
	case KindInt64:
		return float64(v.I64), nil
	default:
		return 0, fmt.Errorf("%w: %s is not a number", ErrTypeMismatch, v.Kind)
	}
}

// AsInt64 converts a numeric value to int64, truncating floats toward zero.
func (v Value) AsInt64() (int64, error) {
	switch v.Kind {
	case KindInt:
		return int64(v.I32), nil
	case KindInt64:
		return v.I64, nil
	case KindFloat:
		t := math.Trunc(v.F64)
		// float64(MaxInt64) rounds up to 2^63, so the upper bound is exclusive
		if math.IsNaN(t) || t < math.MinInt64 || t >= math.MaxInt64 {
			return 0, fmt.Errorf("%w: %s does not fit 64 bits", ErrRange, FormatFloat(v.F64))
		}
		return int64(t), nil
	default:
		return 0, fmt.Errorf("%w: %s is not a number", ErrTypeMismatch, v.Kind)
	}
}

// AsInt32 converts a numeric value to int32, truncating floats toward zero.
func (v Value) AsInt32() (int32, error) {
	if v.Kind == KindInt {
		return v.I32, nil
	}

	i, err := v.AsInt64()
	if err != nil {
		return 0, err
	}
	if i < math.MinInt32 || i > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %d does not fit 32 bits", ErrRange, i)
	}
	return int32(i), nil
}

// Truth reports whether a numeric value is non-zero.
func (v Value) Truth() (bool, error) {
	switch v.Kind {
	case KindInt:
		return v.I32 != 0, nil
	case KindInt64:
		return v.I64 != 0, nil
	case KindFloat:
		return v.F64 != 0, nil
	default:
		return false, fmt.Errorf("%w: %s used as a condition", ErrTypeMismatch, v.Kind)
	}
}

// Widen promotes a numeric value to the wider numeric kind k.
func (v Value) Widen(k Kind) Value {
	if v.Kind == k {
		return v
	}

	switch k {
	case KindInt64:
		if v.Kind == KindInt {
			return Int64(int64(v.I32))
		}
	case KindFloat:
		f, _ := v.AsFloat64()
		return Float(f)
	}
	return v
}

// Wider returns the kind both operands are promoted to before an operator
// applies, or KindUnknown when the kinds cannot be combined.
func Wider(a, b Kind) Kind {
	if a == b {
		return a
	}
	if a.IsNumeric() && b.IsNumeric() {
		return max(a, b)
	}
	return KindUnknown
}

// Coerce converts v for storage in a variable or parameter of kind k.
// Floats stored in integers truncate toward zero; values outside the
// target width and string/number mixes are errors.
func Coerce(v Value, k Kind) (Value, error) {
	if v.Kind == k {
		return v, nil
	}

	switch k {
	case KindInt:
		i, err := v.AsInt32()
		return Int(i), err
	case KindInt64:
		i, err := v.AsInt64()
		return Int64(i), err
	case KindFloat:
		f, err := v.AsFloat64()
		return Float(f), err
	}

	return Value{}, fmt.Errorf("%w: cannot use %s as %s", ErrTypeMismatch, v.Kind, k)
}

// KindForName derives the variable kind from a BASIC name suffix:
// % integer, %% 64-bit integer, $ string, none floating point.
// Names ending in "(" denote whole arrays.
func KindForName(name string) Kind {
	name = strings.TrimSuffix(name, "(")
	switch {
	case strings.HasSuffix(name, "%%"):
		return KindInt64
	case strings.HasSuffix(name, "%"):
		return KindInt
	case strings.HasSuffix(name, "$"):
		return KindString
	default:
		return KindFloat
	}
}

// IsArrayName reports whether name refers to a whole array ("a%(").
func IsArrayName(name string) bool {
	return strings.HasSuffix(name, "(")
}

// Slot is an assignable storage location: a variable, an array element or
// a whole array. Set applies the coercion rules of the slot's kind.
type Slot interface {
	Get() Value
	Set(Value) error
}
