package value

import "errors"

// Error kinds raised while combining or converting values. Callers wrap them
// with context using fmt.Errorf("%w: ...").
var (
	ErrTypeMismatch   = errors.New("type mismatch")
	ErrDivisionByZero = errors.New("division by zero")
	ErrDimMismatch    = errors.New("array dimensions do not match")
	ErrRange          = errors.New("number too big")
	ErrSubscript      = errors.New("subscript out of range")
)
