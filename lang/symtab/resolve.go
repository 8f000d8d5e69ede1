package symtab

// Resolved is the result of a scope-ordered lookup: the table it was
// found in, its index there, and the symbol itself.
type Resolved struct {
	Kind Kind
	Idx  int
	Sym  Symbol
}

// scopeOrder lists, for a given element type, the local table searched
// first, then the corresponding global table (where a function's static
// locals physically live under the mangled "fn.var" name).
var scopeOrder = map[Kind][2]Kind{
	LocalInt:         {LocalInt, GlobalInt},
	LocalByte:        {LocalByte, GlobalByte},
	LocalString:      {LocalString, GlobalString},
	LocalIntArray:    {LocalIntArray, GlobalIntArray},
	LocalByteArray:   {LocalByteArray, GlobalByteArray},
	LocalStringArray: {LocalStringArray, GlobalStringArray},
}

// Lookup searches for name using the full scope order described in
// spec.md §4.C: the function's own locals, then its static locals (stored
// under the mangled name in the matching global table), then both
// constant tables, then globals. elemKind names which of the six local
// "shapes" (int/byte/string × scalar/array) the caller wants; Lookup
// checks the matching const/global shapes too.
func (ts *Tables) Lookup(fn, name string, elemKind Kind) (Resolved, bool) {
	pair, ok := scopeOrder[elemKind]
	if !ok {
		return Resolved{}, false
	}
	localKind, globalKind := pair[0], pair[1]

	if sym, idx, ok := ts.FindInKind(localKind, name); ok {
		return Resolved{Kind: localKind, Idx: idx, Sym: sym}, true
	}

	mangled := Mangle(fn, name)
	if sym, idx, ok := ts.FindInKind(globalKind, mangled); ok {
		return Resolved{Kind: globalKind, Idx: idx, Sym: sym}, true
	}

	if localKind == LocalInt || localKind == LocalIntArray {
		if sym, idx, ok := ts.FindInKind(ConstInt, name); ok {
			return Resolved{Kind: ConstInt, Idx: idx, Sym: sym}, true
		}
	}
	if localKind == LocalString || localKind == LocalStringArray {
		if sym, idx, ok := ts.FindInKind(ConstString, name); ok {
			return Resolved{Kind: ConstString, Idx: idx, Sym: sym}, true
		}
	}

	if sym, idx, ok := ts.FindInKind(globalKind, name); ok {
		return Resolved{Kind: globalKind, Idx: idx, Sym: sym}, true
	}

	return Resolved{}, false
}

// DeclareConflict classifies the outcome of declaring name in scope
// elemKind: no conflict, a shadowing warning, or an in-scope redefinition
// error, per spec.md §4.C.
type DeclareConflict int

const (
	NoConflict DeclareConflict = iota
	ShadowsOuterScope
	RedefinesInScope
)

// CheckDeclare reports whether declaring name as elemKind inside fn would
// shadow an outer-scope symbol (warning) or redefine one already in the
// same scope (error), without inserting anything.
func (ts *Tables) CheckDeclare(fn, name string, elemKind Kind) DeclareConflict {
	pair, ok := scopeOrder[elemKind]
	if !ok {
		// const/global declarations: check only within their own table.
		if _, _, ok := ts.FindInKind(elemKind, name); ok {
			return RedefinesInScope
		}
		return NoConflict
	}
	localKind := pair[0]

	if _, _, ok := ts.FindInKind(localKind, name); ok {
		return RedefinesInScope
	}
	if _, ok := ts.Lookup(fn, name, elemKind); ok {
		return ShadowsOuterScope
	}
	return NoConflict
}
