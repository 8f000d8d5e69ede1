// Package funtab implements nic's function table: defined functions plus
// a parallel table of undefined (forward-referenced) functions, per
// spec.md component D.
package funtab

import (
	"fmt"

	"github.com/dolthub/swiss"
	"github.com/nic-lang/nicc/lang/symtab"
)

// ReturnType is a function's declared return type.
type ReturnType uint8

const (
	Void ReturnType = iota
	Int
	Byte
	String
)

func (r ReturnType) String() string {
	switch r {
	case Void:
		return "void"
	case Int:
		return "int"
	case Byte:
		return "byte"
	case String:
		return "string"
	}
	return fmt.Sprintf("returntype(%d)", r)
}

// Arg is one formal parameter: the variable index/kind it is bound to in
// the function's local symbol tables, plus its declared type.
type Arg struct {
	VarKind symtab.Kind
	VarIdx  int
	Type    ReturnType
}

// Function is a defined, fully-parsed function.
type Function struct {
	Name       string
	Line       int
	FirstStmt  int // index of the function's first statement
	ReturnType ReturnType
	Args       []Arg
	UsedCount  int

	// Locals snapshots the six local variable tables as they stood at
	// the end of this function's body, captured by the statement parser
	// just before symtab.Tables.ResetLocals wipes them for the next
	// function. lang/objectfile reads these to emit each function's
	// local counts and local array sizes.
	LocalInts         []symtab.Symbol
	LocalBytes        []symtab.Symbol
	LocalStrings      []symtab.Symbol
	LocalIntArrays    []symtab.Symbol
	LocalByteArrays   []symtab.Symbol
	LocalStringArrays []symtab.Symbol
}

// Undefined is a forward-referenced function: captured the first time an
// expression calls a name that is neither in the builtin catalog nor yet
// defined. It is resolved (or reported as a fatal error) at the end of
// compilation.
type Undefined struct {
	Name             string
	Line             int
	ArgCount         int
	NeedsReturnValue bool
	ResolvedIdx      int // index into the Functions table once resolved, -1 until then
}

// Table holds one compilation's function state: defined functions plus
// the parallel undefined list, both name-indexed by a Swiss table for
// O(1) average lookup (github.com/dolthub/swiss via the mna/swiss
// replace, as the teacher uses for its own Map type).
type Table struct {
	defined       []Function
	definedByName *swiss.Map[string, int]

	undefined []Undefined
}

// New returns an empty function table.
func New() *Table {
	return &Table{definedByName: swiss.NewMap[string, int](8)}
}

// Define registers a fully-parsed function, returning its index. Defining
// a name already present is a caller error (checked earlier by the
// statement parser against both the builtin catalog and this table).
func (t *Table) Define(fn Function) int {
	idx := len(t.defined)
	t.defined = append(t.defined, fn)
	t.definedByName.Put(fn.Name, idx)
	return idx
}

// FindDefined looks up a defined function by name.
func (t *Table) FindDefined(name string) (Function, int, bool) {
	idx, ok := t.definedByName.Get(name)
	if !ok {
		return Function{}, 0, false
	}
	return t.defined[idx], idx, true
}

// At returns the defined function at idx.
func (t *Table) At(idx int) Function { return t.defined[idx] }

// SetAt overwrites the defined function at idx, used to update UsedCount.
func (t *Table) SetAt(idx int, fn Function) { t.defined[idx] = fn }

// Defined returns every defined function, in declaration order.
func (t *Table) Defined() []Function { return t.defined }

// CaptureUndefined records a forward reference to name, called the first
// time an expression invokes a name that resolves to neither the builtin
// catalog nor an already-defined function. Repeat calls to the same
// unresolved name reuse the existing placeholder rather than appending a
// duplicate.
func (t *Table) CaptureUndefined(name string, line, argCount int, needsReturnValue bool) int {
	for i, u := range t.undefined {
		if u.Name == name {
			return i
		}
	}
	idx := len(t.undefined)
	t.undefined = append(t.undefined, Undefined{
		Name:             name,
		Line:             line,
		ArgCount:         argCount,
		NeedsReturnValue: needsReturnValue,
		ResolvedIdx:      -1,
	})
	return idx
}

// Undefined returns every still-unresolved undefined-function entry.
func (t *Table) Undefined() []Undefined { return t.undefined }

// UndefinedAt returns the undefined-function entry at idx.
func (t *Table) UndefinedAt(idx int) Undefined { return t.undefined[idx] }

// ResolveError describes one undefined function that could not be
// resolved against the final set of defined functions, or that was
// resolved but called with the wrong arity or misused as a value.
type ResolveError struct {
	Name string
	Line int
	Msg  string
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("line %d: %s: %s", e.Line, e.Name, e.Msg)
}

// Resolve retargets every undefined-function entry to its now-defined
// counterpart, checking argument count and void-return misuse, per
// spec.md §4.D. It must run after every function in the source has been
// parsed. Entries that remain unresolvable are returned as errors; on any
// such error the caller (parser.ParseSource) reports them and returns
// without running RetargetResolved at all.
func (t *Table) Resolve() []error {
	var errs []error
	for i, u := range t.undefined {
		fn, idx, ok := t.FindDefined(u.Name)
		if !ok {
			errs = append(errs, &ResolveError{Name: u.Name, Line: u.Line, Msg: "undefined function"})
			continue
		}
		if len(fn.Args) != u.ArgCount {
			errs = append(errs, &ResolveError{
				Name: u.Name, Line: u.Line,
				Msg: fmt.Sprintf("called with %d argument(s), declared with %d", u.ArgCount, len(fn.Args)),
			})
		}
		if u.NeedsReturnValue && fn.ReturnType == Void {
			errs = append(errs, &ResolveError{
				Name: u.Name, Line: u.Line,
				Msg: "used as a value but declared void",
			})
		}
		u.ResolvedIdx = idx
		t.undefined[i] = u
	}
	return errs
}

// ReleaseAll clears the table, part of the reentrancy teardown sweep.
func (t *Table) ReleaseAll() {
	t.defined = nil
	t.definedByName = swiss.NewMap[string, int](8)
	t.undefined = nil
}
