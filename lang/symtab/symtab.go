// Package symtab implements nic's symbol tables: twelve variable tables
// (global/local × int/byte/string × scalar/array), plus two constant
// tables (int, string; no arrays), per spec.md component C.
//
// Lookup is backed by a Swiss table (github.com/dolthub/swiss, replaced by
// github.com/mna/swiss per go.mod, as the teacher repo does for its own
// hash map type) instead of the original's linear scan, while still
// exposing ordered iteration (insertion order) for the object writer,
// which must emit variables in declaration order.
package symtab

import (
	"fmt"

	"github.com/dolthub/swiss"
)

// Kind identifies one of the twelve variable tables or two constant
// tables a name can be looked up in.
type Kind uint8

const (
	LocalInt Kind = iota
	LocalByte
	LocalString
	LocalIntArray
	LocalByteArray
	LocalStringArray
	GlobalInt
	GlobalByte
	GlobalString
	GlobalIntArray
	GlobalByteArray
	GlobalStringArray
	ConstInt
	ConstString
)

func (k Kind) String() string {
	switch k {
	case LocalInt:
		return "local int"
	case LocalByte:
		return "local byte"
	case LocalString:
		return "local string"
	case LocalIntArray:
		return "local int array"
	case LocalByteArray:
		return "local byte array"
	case LocalStringArray:
		return "local string array"
	case GlobalInt:
		return "global int"
	case GlobalByte:
		return "global byte"
	case GlobalString:
		return "global string"
	case GlobalIntArray:
		return "global int array"
	case GlobalByteArray:
		return "global byte array"
	case GlobalStringArray:
		return "global string array"
	case ConstInt:
		return "const int"
	case ConstString:
		return "const string"
	}
	return fmt.Sprintf("kind(%d)", k)
}

// IsGlobal reports whether k names one of the six global variable tables.
func (k Kind) IsGlobal() bool { return k >= GlobalInt && k <= GlobalStringArray }

// IsArray reports whether k names an array table (variable or const; const
// tables carry no arrays, so this is always false for ConstInt/ConstString).
func (k Kind) IsArray() bool {
	switch k {
	case LocalIntArray, LocalByteArray, LocalStringArray,
		GlobalIntArray, GlobalByteArray, GlobalStringArray:
		return true
	}
	return false
}

func (k Kind) sizeOf() int {
	switch k {
	case LocalByte, GlobalByte, LocalByteArray, GlobalByteArray:
		return 1
	case LocalString, GlobalString, LocalStringArray, GlobalStringArray, ConstString:
		return 0 // string storage is accounted in the string pool, not here
	default:
		return 4 // int-sized slot
	}
}

// Symbol is one entry in a variable or constant table.
type Symbol struct {
	Name       string
	Kind       Kind
	ArrayLen   int // element count, for array kinds; 0 for scalars
	Line       int // declaration line, for diagnostics
	UsedCount  int
	SetCount   int
	IsStatic   bool   // declared with the static keyword (local tables only)
	MangledFor string // owning function name, for static locals stored in a global table under "fn.var"

	// ConstValue holds a ConstInt symbol's literal value, or a ConstString
	// symbol's index into the shared string pool. Meaningless otherwise.
	ConstValue int
	// HasInit and InitValue carry a scalar variable's optional "= literal"
	// initializer (int value, or string-pool index for string scalars).
	HasInit   bool
	InitValue int
}

// table is one of the fourteen physical tables: a name index plus ordered
// storage, so iteration order matches declaration order for the object
// writer while lookup stays O(1) average.
type table struct {
	kind    Kind
	byName  *swiss.Map[string, int]
	symbols []Symbol
}

func newTable(kind Kind) *table {
	return &table{kind: kind, byName: swiss.NewMap[string, int](8)}
}

func (t *table) find(name string) (int, bool) {
	idx, ok := t.byName.Get(name)
	return idx, ok
}

func (t *table) insert(sym Symbol) int {
	idx := len(t.symbols)
	t.symbols = append(t.symbols, sym)
	t.byName.Put(sym.Name, idx)
	return idx
}

func (t *table) sizeInBytes() int {
	total := 0
	for _, s := range t.symbols {
		n := s.Kind.sizeOf()
		if s.ArrayLen > 0 {
			n *= s.ArrayLen
		}
		total += n
	}
	return total
}

// Tables bundles the fourteen physical tables (twelve variable, two
// constant) for one compilation. A Tables is created fresh per
// compilation by the driver and discarded afterwards, so no symbol state
// survives between invocations (spec.md §5 reentrancy requirement).
type Tables struct {
	tables map[Kind]*table
}

// New returns an empty Tables, one physical table per Kind.
func New() *Tables {
	ts := &Tables{tables: make(map[Kind]*table, 14)}
	for k := LocalInt; k <= ConstString; k++ {
		ts.tables[k] = newTable(k)
	}
	return ts
}

// FindInKind looks up name in exactly one table.
func (ts *Tables) FindInKind(kind Kind, name string) (Symbol, int, bool) {
	t := ts.tables[kind]
	idx, ok := t.find(name)
	if !ok {
		return Symbol{}, 0, false
	}
	return t.symbols[idx], idx, true
}

// Insert adds sym to its table, returning the new symbol's index within
// that table.
func (ts *Tables) Insert(sym Symbol) int {
	return ts.tables[sym.Kind].insert(sym)
}

// At returns the symbol at idx within kind's table.
func (ts *Tables) At(kind Kind, idx int) Symbol {
	return ts.tables[kind].symbols[idx]
}

// SetAt overwrites the symbol at idx within kind's table, used to update
// UsedCount/SetCount bookkeeping as the parser walks expressions.
func (ts *Tables) SetAt(kind Kind, idx int, sym Symbol) {
	ts.tables[kind].symbols[idx] = sym
}

// All returns kind's symbols in declaration order.
func (ts *Tables) All(kind Kind) []Symbol {
	return ts.tables[kind].symbols
}

// SizeInBytes returns the total storage size (excluding string payloads,
// tracked separately) of kind's table.
func (ts *Tables) SizeInBytes(kind Kind) int {
	return ts.tables[kind].sizeInBytes()
}

// ReleaseAll clears every table, part of the reentrancy teardown sweep.
func (ts *Tables) ReleaseAll() {
	for k, t := range ts.tables {
		ts.tables[k] = newTable(t.kind)
	}
}

// localKinds lists the six local (non-static) variable tables, the scratch
// space the statement parser reuses for each function in turn.
var localKinds = [...]Kind{
	LocalInt, LocalByte, LocalString,
	LocalIntArray, LocalByteArray, LocalStringArray,
}

// ResetLocals clears only the six local variable tables, called by the
// statement parser between functions: a function's locals are scratch
// space reused across functions, unlike globals, consts and the mangled
// static locals that live in the global tables for the program's
// lifetime.
func (ts *Tables) ResetLocals() {
	for _, k := range localKinds {
		ts.tables[k] = newTable(k)
	}
}

// Mangle forms the "fn.var" name a static local physically occupies in a
// global table, per spec.md §4.C.
func Mangle(fn, varName string) string {
	return fn + "." + varName
}
