// Package expr defines the data model the expression parser (spec.md
// component E) builds: expression content elements (ECs), expression
// lists, and FIP ("function invocation parameters") slots. It holds no
// parsing logic of its own — lang/parser builds these values by walking
// tokens, and lang/postfix consumes them to produce postfix slots.
package expr

import "github.com/nic-lang/nicc/lang/token"

// Content tags what an EC holds: a literal, a scalar or array variable
// reference, or one of the three function-call kinds (builtin, user
// defined, forward-referenced undefined), per spec.md's Data Model.
type Content uint8

const (
	IntConst Content = iota
	StringConst
	Variable
	ArrayVariable
	BuiltinFunc
	UserFunc
	UndefinedFunc
)

// VarKind is re-declared here rather than imported from symtab to keep
// this package free of a dependency on the symbol table; lang/parser is
// responsible for keeping the two Kind spaces aligned (it imports both).
type VarKind uint8

// EC is one expression content element: an operand or a trailing
// operator, with bracket-depth annotations for parenthesized
// subexpressions and a FIP slot reference for calls and array indexing.
type EC struct {
	Content Content
	VarKind VarKind // meaningful when Content is Variable or ArrayVariable
	Value   int     // literal value, symbol index, or function index, depending on Content
	Obr     int     // count of '(' immediately preceding this element
	Cbr     int     // count of ')' immediately following this element
	Op      token.Token
	HasOp   bool // whether Op is a trailing binary operator for this element
	FIPSlot int  // index into the FIP pool, or -1 if this EC is not a call/array-index
}

// List is an ordered, growable sequence of ECs. Unlike the original's
// sentinel-terminated array, a Go slice carries its own length; List
// exists as a named type so the rest of the pipeline can describe "an
// expression" without spelling out []EC everywhere.
type List []EC

// FIP is a "function invocation parameters" slot: the call-site
// information for one function call or array-index occurrence — which
// function (or none, for a bare array index), how many arguments, and the
// parsed-but-not-yet-postfixed expression list for each argument.
type FIP struct {
	Content  Content // BuiltinFunc, UserFunc, or UndefinedFunc; zero value for a bare array index
	FuncIdx  int
	Argc     int
	ArgLists []List
	// ArgSlots holds the postfix-slot index produced for each argument
	// once lang/postfix has converted ArgLists[i]; -1 until converted.
	ArgSlots []int
}

// NewFIP returns a FIP with Argc argument slots pre-sized and every
// ArgSlots entry set to -1.
func NewFIP(content Content, funcIdx, argc int) FIP {
	f := FIP{Content: content, FuncIdx: funcIdx, Argc: argc}
	f.ArgLists = make([]List, argc)
	f.ArgSlots = make([]int, argc)
	for i := range f.ArgSlots {
		f.ArgSlots[i] = -1
	}
	return f
}
