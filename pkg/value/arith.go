package value

import (
	"fmt"
	"math"
	"math/bits"
	"strings"
)

type Op int

// List of binary operators
const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv // always floating point
	OpIntDiv
	OpMod
	OpPow
	OpEq
	OpNe
	OpLt
	OpGt
	OpLe
	OpGe
	OpAnd
	OpOr
	OpEor
	OpShl
	OpShr
	OpLsr
)

var opNames = [...]string{"+", "-", "*", "/", "DIV", "MOD", "^", "=", "<>", "<", ">", "<=", ">=", "AND", "OR", "EOR", "<<", ">>", ">>>"}

func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return fmt.Sprintf("Op(%d)", int(op))
}

// IsComparison reports whether op yields TRUE/FALSE.
func (op Op) IsComparison() bool {
	return op >= OpEq && op <= OpGe
}

// Binary applies op to a and b. Array operands are combined elementwise
// after a shape check; a scalar operand is broadcast against an array.
func Binary(op Op, a, b Value) (Value, error) {
	if a.Kind == KindArray || b.Kind == KindArray {
		if op.IsComparison() {
			return Value{}, fmt.Errorf("%w: arrays cannot be compared", ErrTypeMismatch)
		}
		return Elementwise(op, a, b)
	}

	return scalar(op, a, b)
}

func scalar(op Op, a, b Value) (Value, error) {
	switch {
	case op.IsComparison():
		return compare(op, a, b)
	case op >= OpAnd:
		return bitwise(op, a, b)
	}

	if a.Kind == KindString && b.Kind == KindString && op == OpAdd {
		return String(a.Str + b.Str), nil
	}

	k := Wider(a.Kind, b.Kind)
	if !k.IsNumeric() {
		return Value{}, fmt.Errorf("%w: %s %s %s", ErrTypeMismatch, a.Kind, op, b.Kind)
	}

	switch op {
	case OpDiv:
		return divide(a, b)
	case OpIntDiv, OpMod:
		return intDivide(op, a, b)
	case OpPow:
		return power(a, b, k)
	}

	switch k {
	case KindInt:
		// int32 operands never overflow int64 for + - *
		x, y := int64(a.I32), int64(b.I32)
		switch op {
		case OpAdd:
			return Integer(x + y), nil
		case OpSub:
			return Integer(x - y), nil
		default:
			return Integer(x * y), nil
		}

	case KindInt64:
		x, y := a.Widen(KindInt64).I64, b.Widen(KindInt64).I64
		if r, ok := checked64(op, x, y); ok {
			return Int64(r), nil
		}
		// 64-bit overflow continues in floating point
		return floatOp(op, float64(x), float64(y))

	default:
		x, _ := a.AsFloat64()
		y, _ := b.AsFloat64()
		return floatOp(op, x, y)
	}
}

// checked64 performs + - * on int64, reporting false on overflow.
func checked64(op Op, x, y int64) (int64, bool) {
	switch op {
	case OpAdd:
		r := x + y
		return r, !((x >= 0) == (y >= 0) && (r >= 0) != (x >= 0))
	case OpSub:
		r := x - y
		return r, !((x >= 0) != (y >= 0) && (r >= 0) != (x >= 0))
	default:
		if x == 0 || y == 0 {
			return 0, true
		}
		hi, lo := bits.Mul64(abs64(x), abs64(y))
		neg := (x < 0) != (y < 0)
		if hi != 0 || (!neg && lo > math.MaxInt64) || (neg && lo > 1<<63) {
			return 0, false
		}
		if neg {
			return int64(-lo), true
		}
		return int64(lo), true
	}
}

func abs64(x int64) uint64 {
	if x < 0 {
		return uint64(-x)
	}
	return uint64(x)
}

func floatOp(op Op, x, y float64) (Value, error) {
	var r float64
	switch op {
	case OpAdd:
		r = x + y
	case OpSub:
		r = x - y
	case OpMul:
		r = x * y
	case OpPow:
		r = math.Pow(x, y)
	default:
		return Value{}, fmt.Errorf("unsupported float op: %s", op)
	}
	return finite(r)
}

// finite rejects results that overflowed the float range.
func finite(r float64) (Value, error) {
	if math.IsInf(r, 0) || math.IsNaN(r) {
		return Value{}, ErrRange
	}
	return Float(r), nil
}

func divide(a, b Value) (Value, error) {
	x, _ := a.AsFloat64()
	y, _ := b.AsFloat64()
	if y == 0 {
		return Value{}, ErrDivisionByZero
	}
	return finite(x / y)
}

// intDivide implements DIV and MOD: operands are truncated to integers and the
// quotient truncates toward zero; the remainder takes the dividend's sign.
func intDivide(op Op, a, b Value) (Value, error) {
	if a.Kind == KindInt64 || b.Kind == KindInt64 || !fits32(a) || !fits32(b) {
		x, err := a.AsInt64()
		if err != nil {
			return Value{}, err
		}
		y, err := b.AsInt64()
		if err != nil {
			return Value{}, err
		}
		if y == 0 {
			return Value{}, ErrDivisionByZero
		}
		if op == OpMod {
			if y == -1 {
				return Int64(0), nil
			}
			return Int64(x % y), nil
		}
		if x == math.MinInt64 && y == -1 {
			return Float(-float64(x)), nil
		}
		return Int64(x / y), nil
	}

	x, _ := a.AsInt32()
	y, _ := b.AsInt32()
	if y == 0 {
		return Value{}, ErrDivisionByZero
	}
	if op == OpMod {
		return Integer(int64(x) % int64(y)), nil
	}
	return Integer(int64(x) / int64(y)), nil
}

func fits32(v Value) bool {
	_, err := v.AsInt32()
	return err == nil
}

// power keeps integer results while they fit, widening on overflow;
// negative or fractional exponents go through floating point.
func power(a, b Value, k Kind) (Value, error) {
	if k == KindFloat {
		x, _ := a.AsFloat64()
		y, _ := b.AsFloat64()
		return floatOp(OpPow, x, y)
	}

	x, _ := a.AsInt64()
	n, _ := b.AsInt64()
	if n < 0 {
		if x == 0 {
			return Value{}, ErrDivisionByZero
		}
		return floatOp(OpPow, float64(x), float64(n))
	}

	r, ok := int64(1), true
	base := x
	for e := n; e > 0 && ok; e >>= 1 {
		if e&1 == 1 {
			r, ok = checked64(OpMul, r, base)
		}
		if e > 1 && ok {
			base, ok = checked64(OpMul, base, base)
		}
	}
	if !ok {
		return floatOp(OpPow, float64(x), float64(n))
	}
	if k == KindInt64 {
		return Int64(r), nil
	}
	return Integer(r), nil
}

func compare(op Op, a, b Value) (Value, error) {
	var c int
	switch {
	case a.Kind == KindString && b.Kind == KindString:
		c = strings.Compare(a.Str, b.Str)
	case Wider(a.Kind, b.Kind).IsNumeric():
		c = compareNumbers(a, b)
	default:
		return Value{}, fmt.Errorf("%w: cannot compare %s with %s", ErrTypeMismatch, a.Kind, b.Kind)
	}

	switch op {
	case OpEq:
		return Bool(c == 0), nil
	case OpNe:
		return Bool(c != 0), nil
	case OpLt:
		return Bool(c < 0), nil
	case OpGt:
		return Bool(c > 0), nil
	case OpLe:
		return Bool(c <= 0), nil
	default:
		return Bool(c >= 0), nil
	}
}

func compareNumbers(a, b Value) int {
	switch Wider(a.Kind, b.Kind) {
	case KindInt, KindInt64:
		x, y := a.Widen(KindInt64).I64, b.Widen(KindInt64).I64
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	default:
		x, _ := a.AsFloat64()
		y, _ := b.AsFloat64()
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	}
}

// bitwise implements AND OR EOR and the shifts on integer operands.
// Either operand being 64-bit makes the whole operation 64-bit.
func bitwise(op Op, a, b Value) (Value, error) {
	wide := a.Kind == KindInt64 || b.Kind == KindInt64
	if op >= OpShl {
		wide = a.Kind == KindInt64
	}

	if wide {
		x, err := a.AsInt64()
		if err != nil {
			return Value{}, err
		}
		y, err := b.AsInt64()
		if err != nil {
			return Value{}, err
		}
		return Int64(bitop64(op, x, y)), nil
	}

	x, err := a.AsInt32()
	if err != nil {
		return Value{}, err
	}
	y, err := b.AsInt32()
	if err != nil {
		return Value{}, err
	}
	return Int(bitop32(op, x, y)), nil
}

func bitop64(op Op, x, y int64) int64 {
	switch op {
	case OpAnd:
		return x & y
	case OpOr:
		return x | y
	case OpEor:
		return x ^ y
	}

	n := uint(max(y, 0))
	switch op {
	case OpShl:
		return x << n
	case OpShr:
		return x >> n
	default:
		return int64(uint64(x) >> n)
	}
}

func bitop32(op Op, x, y int32) int32 {
	switch op {
	case OpAnd:
		return x & y
	case OpOr:
		return x | y
	case OpEor:
		return x ^ y
	}

	n := uint(max(y, 0))
	switch op {
	case OpShl:
		return x << n
	case OpShr:
		return x >> n
	default:
		return int32(uint32(x) >> n)
	}
}

// Negate implements unary minus; negating the most negative integer widens.
func Negate(v Value) (Value, error) {
	switch v.Kind {
	case KindInt:
		return Integer(-int64(v.I32)), nil
	case KindInt64:
		if v.I64 == math.MinInt64 {
			return Float(-float64(v.I64)), nil
		}
		return Int64(-v.I64), nil
	case KindFloat:
		return Float(-v.F64), nil
	case KindArray:
		return v.Arr.Map(Negate)
	default:
		return Value{}, fmt.Errorf("%w: cannot negate a %s", ErrTypeMismatch, v.Kind)
	}
}

// Not implements the bitwise complement.
func Not(v Value) (Value, error) {
	switch v.Kind {
	case KindInt64:
		return Int64(^v.I64), nil
	case KindArray:
		return v.Arr.Map(Not)
	}

	i, err := v.AsInt32()
	if err != nil {
		return Value{}, err
	}
	return Int(^i), nil
}
