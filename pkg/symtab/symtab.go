package symtab

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"bbcbasic/pkg/value"
)

var (
	ErrRedimension = errors.New("array already dimensioned")
	ErrNoScope     = errors.New("not inside FN or PROC")
)

// Table is the variable store. Globals live for the whole run; every FN or
// PROC call pushes a scope holding its parameters and LOCAL variables.
// Lookups search the innermost scope first, so a callee sees the
// variables of its callers.
type Table struct {
	globals map[string]value.Slot
	scopes  []map[string]value.Slot
}

func New() *Table {
	return &Table{globals: make(map[string]value.Slot)}
}

// Lookup finds the innermost variable called name. Whole arrays are named
// with a trailing "(".
func (t *Table) Lookup(name string) (value.Slot, bool) {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if s, ok := t.scopes[i][name]; ok {
			return s, true
		}
	}

	s, ok := t.globals[name]
	return s, ok
}

// Declare creates a global variable holding v. Assigning to an unknown
// variable inside a FN or PROC still creates a global.
func (t *Table) Declare(name string, v value.Value) value.Slot {
	cell := value.NewCell(value.KindForName(name))
	if err := cell.Set(v); err != nil {
		log.Warn("declare", "name", name, "error", err)
	}
	t.globals[name] = cell
	return cell
}

// Dim creates the array name ("a%(") with the given extents. An array
// declared LOCAL but not yet dimensioned is filled in place.
func (t *Table) Dim(name string, dims []int) (*value.Array, error) {
	arr, err := value.NewArray(value.KindForName(name), dims...)
	if err != nil {
		return nil, err
	}

	if s, ok := t.Lookup(name); ok {
		cell, isCell := s.(*value.Cell)
		if !isCell || s.Get().Arr != nil {
			return nil, fmt.Errorf("%w: %s)", ErrRedimension, name)
		}
		if err := cell.Dimension(arr); err != nil {
			return nil, err
		}
		return arr, nil
	}

	t.globals[name] = value.NewArrayCell(arr)
	log.Debug("dim", "name", name, "dims", dims)
	return arr, nil
}

// PushScope opens the scope of a FN or PROC call.
func (t *Table) PushScope() {
	t.scopes = append(t.scopes, make(map[string]value.Slot))
}

// PopScope discards the innermost scope, uncovering any variables its
// parameters and LOCALs shadowed.
func (t *Table) PopScope() {
	if len(t.scopes) > 0 {
		t.scopes[len(t.scopes)-1] = nil
		t.scopes = t.scopes[:len(t.scopes)-1]
	}
}

// Depth returns the number of open call scopes.
func (t *Table) Depth() int {
	return len(t.scopes)
}

// Unwind pops scopes until depth remain.
func (t *Table) Unwind(depth int) {
	for len(t.scopes) > depth {
		t.PopScope()
	}
}

// Bind makes slot visible as name in the innermost scope.
func (t *Table) Bind(name string, slot value.Slot) error {
	if len(t.scopes) == 0 {
		return fmt.Errorf("%w: cannot bind %s", ErrNoScope, name)
	}
	t.scopes[len(t.scopes)-1][name] = slot
	return nil
}

// Local shadows name with a fresh zero variable for the rest of the
// current call. Local arrays start undimensioned.
func (t *Table) Local(name string) error {
	if value.IsArrayName(name) {
		return t.Bind(name, value.NewArrayCell(nil))
	}
	return t.Bind(name, value.NewCell(value.KindForName(name)))
}

// Clear removes every variable and scope.
func (t *Table) Clear() {
	clear(t.globals)
	t.scopes = t.scopes[:0]
}

// Globals returns a snapshot of the global variables by name.
func (t *Table) Globals() map[string]value.Value {
	out := make(map[string]value.Value, len(t.globals))
	for name, s := range t.globals {
		out[name] = s.Get()
	}
	return out
}
