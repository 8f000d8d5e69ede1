package parser

import (
	"github.com/nic-lang/nicc/lang/expr"
	"github.com/nic-lang/nicc/lang/funtab"
	"github.com/nic-lang/nicc/lang/symtab"
	"github.com/nic-lang/nicc/lang/token"
)

// typeKeyword maps a type name token to its return/declaration type, or
// false if name is not a type keyword.
func typeKeyword(name string) (funtab.ReturnType, bool) {
	switch name {
	case "int":
		return funtab.Int, true
	case "byte":
		return funtab.Byte, true
	case "string":
		return funtab.String, true
	}
	return funtab.Void, false
}

// scalarKind returns the symbol table kind for a scalar declaration of
// type rt, local or global.
func scalarKind(rt funtab.ReturnType, global bool) symtab.Kind {
	switch rt {
	case funtab.Byte:
		if global {
			return symtab.GlobalByte
		}
		return symtab.LocalByte
	case funtab.String:
		if global {
			return symtab.GlobalString
		}
		return symtab.LocalString
	default:
		if global {
			return symtab.GlobalInt
		}
		return symtab.LocalInt
	}
}

// arrayKind returns the symbol table kind for an array declaration of
// type rt, local or global.
func arrayKind(rt funtab.ReturnType, global bool) symtab.Kind {
	switch rt {
	case funtab.Byte:
		if global {
			return symtab.GlobalByteArray
		}
		return symtab.LocalByteArray
	case funtab.String:
		if global {
			return symtab.GlobalStringArray
		}
		return symtab.LocalStringArray
	default:
		if global {
			return symtab.GlobalIntArray
		}
		return symtab.LocalIntArray
	}
}

// localScalarKind is the canonical local scalar Kind for rt, used as the
// elemKind argument to Tables.Lookup/CheckDeclare regardless of whether
// the symbol being declared is actually local, static or global: the
// scope search always starts from the local shape for a given type.
func localScalarKind(rt funtab.ReturnType) symtab.Kind {
	return scalarKind(rt, false)
}

func localArrayKind(rt funtab.ReturnType) symtab.Kind {
	return arrayKind(rt, false)
}

// exprMode selects which of the expression parser's delimiter rules
// apply, per spec.md §4.E's four data-driven context flags (function
// signatures are parsed by their own routine in stmt.go, since Go's
// explicit parameter list doesn't fit the EC/postfix model).
type exprMode uint8

const (
	modeValue   exprMode = iota // plain value context: terminates at NEWLINE
	modeCompare                 // if/while condition: terminates at a compare operator
	modeForStop                 // for ... to <stop>: terminates at "step" or NEWLINE
	modeForStep                 // for ... step <step>: terminates at NEWLINE
)

// exprResult is what the expression parser hands back to its caller, per
// spec.md §4.E: EXPRESSION_NO_ERROR / a comparison code /
// FUNCTION_RETURNING_VOID / EXPRESSION_ERROR collapse into this struct's
// fields rather than a single enum, since Go can return them directly.
type exprResult struct {
	list      expr.List
	compareOp token.Token // set when mode==modeCompare and a compare token terminated the expression
	voidUsed  bool        // a void-returning function was used where a value was required
	ok        bool        // false means a syntax error was already reported
}
