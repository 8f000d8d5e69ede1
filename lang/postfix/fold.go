package postfix

import (
	"strconv"

	"github.com/nic-lang/nicc/lang/expr"
	"github.com/nic-lang/nicc/lang/token"
)

// constVal is a compile-time value still sitting on the folding pass's
// value stack, not yet re-emitted to the output slot.
type constVal struct {
	isStr     bool
	intVal    int64
	strVal    string
	origIdx   int // index into the string pool this value's text originally occupied, or -1
	hasOrigIdx bool
}

// FoldConstants runs pass 1 of the postfix optimizer (spec.md §4.G):
// walk left to right with a value stack, folding any operator whose two
// operands are both constants, and leaving everything else untouched.
// String concatenation (':') folds int operands by formatting them as
// decimal and splicing; when folding produces a string, it reuses the
// first operand's string-pool slot if it had one and deactivates the
// second, rather than always allocating a fresh slot.
func FoldConstants(slot Slot, strs *StringPool) Slot {
	var out Slot
	var stack []constVal
	var nonConst []bool // parallel to stack: true if the corresponding output position is a non-const already emitted

	flush := func(v constVal) {
		if v.isStr {
			idx := v.origIdx
			if !v.hasOrigIdx {
				idx = strs.Intern(v.strVal)
			} else {
				strs.Reuse(idx, v.strVal)
			}
			out = append(out, Element{Content: expr.StringConst, Value: idx})
		} else {
			out = append(out, Element{Content: expr.IntConst, Value: int(v.intVal)})
		}
	}

	pushConst := func(v constVal) {
		stack = append(stack, v)
		nonConst = append(nonConst, false)
	}
	pushNonConst := func() {
		stack = append(stack, constVal{})
		nonConst = append(nonConst, true)
	}
	// flushPending emits every constant still waiting on the stack, so an
	// element emitted after it keeps its original position behind it.
	flushPending := func() {
		for i := range stack {
			if !nonConst[i] {
				flush(stack[i])
				nonConst[i] = true
			}
		}
	}

	for _, el := range slot {
		if el.End {
			continue
		}
		if !el.IsOperator {
			switch el.Content {
			case expr.IntConst:
				pushConst(constVal{intVal: int64(el.Value)})
			case expr.StringConst:
				pushConst(constVal{isStr: true, strVal: strs.At(el.Value), origIdx: el.Value, hasOrigIdx: true})
			default:
				flushPending()
				out = append(out, el)
				pushNonConst()
			}
			continue
		}

		// operator: pop two
		if len(stack) < 2 {
			flushPending()
			out = append(out, el)
			continue
		}
		bIdx, aIdx := len(stack)-1, len(stack)-2
		b, a := stack[bIdx], stack[aIdx]
		bConst, aConst := !nonConst[bIdx], !nonConst[aIdx]
		stack = stack[:aIdx]
		nonConst = nonConst[:aIdx]

		if aConst && bConst {
			if el.Op == token.COLON {
				// Concatenation: reuse a's string-pool slot for the result
				// when it has one, deactivate b's, per spec.md §4.G.
				result := asString(a) + asString(b)
				switch {
				case a.hasOrigIdx:
					strs.Reuse(a.origIdx, result)
					if b.hasOrigIdx {
						strs.Deactivate(b.origIdx)
					}
					pushConst(constVal{isStr: true, strVal: result, origIdx: a.origIdx, hasOrigIdx: true})
				case b.hasOrigIdx:
					strs.Reuse(b.origIdx, result)
					pushConst(constVal{isStr: true, strVal: result, origIdx: b.origIdx, hasOrigIdx: true})
				default:
					pushConst(constVal{isStr: true, strVal: result})
				}
				continue
			}
			if folded, ok := foldOp(a, b, el.Op); ok {
				pushConst(folded)
				continue
			}
		}

		// cannot fold: whichever side(s) were const were never emitted, so
		// emit them now, in original order, then the operator.
		flushPending()
		if aConst {
			flush(a)
		}
		if bConst {
			flush(b)
		}
		out = append(out, el)
		pushNonConst()
	}

	for i, v := range stack {
		if !nonConst[i] {
			flush(v)
		}
	}

	out = append(out, Element{End: true})
	return out
}

// foldOp folds every arithmetic/bitwise operator except ':' (string
// concatenation), which the caller handles directly so it can manage
// string-pool slot reuse/deactivation.
func foldOp(a, b constVal, op token.Token) (constVal, bool) {
	if a.isStr || b.isStr {
		return constVal{}, false
	}
	x, y := a.intVal, b.intVal
	switch op {
	case token.PLUS:
		return constVal{intVal: x + y}, true
	case token.MINUS:
		return constVal{intVal: x - y}, true
	case token.STAR:
		return constVal{intVal: x * y}, true
	case token.SLASH:
		if y == 0 {
			return constVal{}, false
		}
		return constVal{intVal: x / y}, true
	case token.PERCENT:
		if y == 0 {
			return constVal{}, false
		}
		return constVal{intVal: x % y}, true
	case token.AMPERSAND:
		return constVal{intVal: x & y}, true
	case token.PIPE:
		return constVal{intVal: x | y}, true
	case token.CIRCUMFLEX:
		return constVal{intVal: x ^ y}, true
	case token.TILDE:
		// Always the (0 ~ expr) wrap the expression parser builds for
		// unary bitwise complement; x is the synthetic 0, ignored.
		return constVal{intVal: ^y}, true
	case token.SHL:
		return constVal{intVal: x << uint(y)}, true
	case token.SHR:
		return constVal{intVal: x >> uint(y)}, true
	}
	return constVal{}, false
}

func asString(v constVal) string {
	if v.isStr {
		return v.strVal
	}
	return strconv.FormatInt(v.intVal, 10)
}
