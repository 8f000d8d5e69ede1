// Package postfix implements nic's infix->postfix conversion (shunting
// yard, spec.md component F) and the two-pass postfix optimizer
// (constant folding and hint classification, component G).
package postfix

import (
	"github.com/nic-lang/nicc/lang/expr"
	"github.com/nic-lang/nicc/lang/symtab"
	"github.com/nic-lang/nicc/lang/token"
)

// Element is one entry of a postfix slot: either a binary operator or an
// operand (int/string constant, scalar/array variable, or a function
// call of one of the three kinds). FIPSlot, when >= 0, is the index of
// the FIP ("function invocation parameters") slot carrying this
// operand's call arguments (for the three function contents) or its
// array index expression (for ArrayVariable); -1 otherwise.
type Element struct {
	IsOperator bool
	Op         token.Token

	Content expr.Content
	VarKind symtab.Kind
	Value   int
	FIPSlot int

	End bool
}

// Slot is a finite sequence of postfix elements; by convention the last
// element has End set, mirroring the original's END-terminated array
// without requiring a dedicated sentinel value.
type Slot []Element

// Terminated reports whether s ends with an End element; it never
// modifies s. Every conversion and folding function in this
// package already produces terminated slots; this helper exists for
// callers (tests, the object writer) validating round-tripped data.
func (s Slot) Terminated() bool {
	return len(s) > 0 && s[len(s)-1].End
}
