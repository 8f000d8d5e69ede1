package funtab

import (
	"github.com/nic-lang/nicc/lang/arena"
	"github.com/nic-lang/nicc/lang/expr"
	"github.com/nic-lang/nicc/lang/postfix"
)

// RetargetResolved rewrites every FIP and postfix element still carrying
// an UndefinedFunc content tag to point at its resolved defined-function
// index, per spec.md §4.D: "each UNDEFINED_FUNCTION operand is retargeted
// to the now-defined function". Callers must run Resolve first and bail
// out on any reported error before calling this — every Undefined entry
// reached here is assumed to already carry a valid ResolvedIdx.
func (t *Table) RetargetResolved(fips *arena.Pool[expr.FIP], slots *arena.Pool[postfix.Slot]) {
	for i := 0; i < fips.Len(); i++ {
		fip := fips.At(i)
		if fip.Content != expr.UndefinedFunc {
			continue
		}
		fip.Content = expr.UserFunc
		fip.FuncIdx = t.undefined[fip.FuncIdx].ResolvedIdx
		fips.Set(i, fip)
	}

	for i := 0; i < slots.Len(); i++ {
		slot := slots.At(i)
		changed := false
		for j, el := range slot {
			if el.Content != expr.UndefinedFunc {
				continue
			}
			fip := fips.At(el.FIPSlot)
			slot[j].Content = fip.Content
			slot[j].Value = fip.FuncIdx
			changed = true
		}
		if changed {
			slots.Set(i, slot)
		}
	}
}
