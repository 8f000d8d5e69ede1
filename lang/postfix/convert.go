package postfix

import (
	"github.com/nic-lang/nicc/lang/arena"
	"github.com/nic-lang/nicc/lang/expr"
	"github.com/nic-lang/nicc/lang/symtab"
	"github.com/nic-lang/nicc/lang/token"
)

// stackItem is an entry on the shunting-yard operator stack: either a
// virtual '(' marker (from an EC's Obr count) or a pending binary
// operator awaiting a lower- or equal-precedence operator (or a matching
// ')') to pop it to the output.
type stackItem struct {
	isParen bool
	op      token.Token
}

// Converter turns expression lists into postfix slots, recursing into a
// FIP pool's argument lists as it encounters call/array-index ECs, per
// spec.md component F.
type Converter struct {
	Slots *arena.Pool[Slot]
	FIPs  *arena.Pool[expr.FIP]
}

// NewConverter returns a Converter writing into the given slot and FIP
// pools, both owned by the caller (the per-compilation context).
func NewConverter(slots *arena.Pool[Slot], fips *arena.Pool[expr.FIP]) *Converter {
	return &Converter{Slots: slots, FIPs: fips}
}

// Convert runs the shunting-yard algorithm over list, recursively
// converting any FIP-referenced argument lists first, and appends the
// resulting slot to c.Slots, returning its index.
func (c *Converter) Convert(list expr.List) int {
	slot := c.convertToSlot(list)
	return c.Slots.Add(slot)
}

func (c *Converter) convertToSlot(list expr.List) Slot {
	var out Slot
	var stack []stackItem

	pop := func() {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !top.isParen {
			out = append(out, Element{IsOperator: true, Op: top.op})
		}
	}

	for _, ec := range list {
		for i := 0; i < ec.Obr; i++ {
			stack = append(stack, stackItem{isParen: true})
		}

		fipSlot := ec.FIPSlot
		if fipSlot >= 0 {
			fip := c.FIPs.At(fipSlot)
			for i, argList := range fip.ArgLists {
				fip.ArgSlots[i] = c.Convert(argList)
			}
			c.FIPs.Set(fipSlot, fip)
		}

		out = append(out, Element{
			Content: ec.Content,
			VarKind: symtab.Kind(ec.VarKind),
			Value:   ec.Value,
			FIPSlot: fipSlotFor(ec, fipSlot),
		})

		// Close brackets over this operand first: everything pushed since
		// the matching '(' belongs inside the parenthesized subexpression
		// and must be emitted before any operator that follows the ')'.
		for i := 0; i < ec.Cbr; i++ {
			for len(stack) > 0 {
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if top.isParen {
					break
				}
				out = append(out, Element{IsOperator: true, Op: top.op})
			}
		}

		if ec.HasOp {
			for len(stack) > 0 && !stack[len(stack)-1].isParen &&
				stack[len(stack)-1].op.Precedence() >= ec.Op.Precedence() {
				pop()
			}
			stack = append(stack, stackItem{op: ec.Op})
		}
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !top.isParen {
			out = append(out, Element{IsOperator: true, Op: top.op})
		}
	}

	out = append(out, Element{End: true})
	return out
}

// fipSlotFor returns the FIP slot this EC's operand carries: array index
// expressions and all three function-call kinds reference one, per
// spec.md's Data Model ("FIP slot ... referenced by fipslot in ECs and
// by operand entries in postfix"); every other content carries none.
func fipSlotFor(ec expr.EC, fipSlot int) int {
	switch ec.Content {
	case expr.ArrayVariable, expr.BuiltinFunc, expr.UserFunc, expr.UndefinedFunc:
		return fipSlot
	}
	return -1
}
