package stack

import "errors"

// ErrOverflow is returned by Push when the stack is at its limit
var ErrOverflow = errors.New("stack overflow")

type Stack[T any] struct {
	a     []T
	l     int
	limit int // maximum depth, 0 = unbounded
}

// NewStack creates a new stack instance holding the given elements
func NewStack[T any](elm ...T) *Stack[T] {
	stack := Stack[T]{
		a: make([]T, 0, len(elm)),
		l: 0,
	}

	for _, e := range elm {
		stack.l++
		stack.a = append(stack.a, e)
	}

	return &stack
}

// NewBounded creates an empty stack that refuses to grow beyond limit elements
func NewBounded[T any](limit int) *Stack[T] {
	s := NewStack[T]()
	s.limit = limit
	return s
}

// Push adds an element to the top of the stack
func (s *Stack[T]) Push(elm T) error {
	if s.limit > 0 && s.l >= s.limit {
		return ErrOverflow
	}

	s.l++
	s.a = append(s.a, elm)

	return nil
}

// Pop removes and returns the top element of the stack
func (s *Stack[T]) Pop() (T, bool) {
	var zero T
	if s.l < 1 {
		return zero, false
	}

	s.l--
	elm := s.a[s.l]
	s.a[s.l] = zero
	s.a = s.a[:s.l]

	return elm, true
}

// Get the size of the stack
func (s *Stack[T]) Size() int {
	return s.l
}

// Reset unwinds the stack down to depth elements
func (s *Stack[T]) Reset(depth int) {
	if depth < 0 {
		depth = 0
	}

	var zero T
	for s.l > depth {
		s.l--
		s.a[s.l] = zero
	}
	s.a = s.a[:s.l]
}

// Array returns the underlying array of the stack, bottom first
func (s *Stack[T]) Array() []T {
	return s.a
}
