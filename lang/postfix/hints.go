package postfix

import (
	"github.com/nic-lang/nicc/lang/expr"
	"github.com/nic-lang/nicc/lang/symtab"
)

// Hint is an OPTIMIZER_HINT_* value assigned to a folded postfix slot
// when its shape lets the interpreter dispatch it without walking the
// full postfix machine, per spec.md §4.G pass 2.
type Hint uint8

const (
	NoHint Hint = iota
	ConstNoOp
	LocIntNoOp
	GlobIntNoOp
	LocByteNoOp
	GlobByteNoOp
	IntFuncNoOp
	ExtFuncNoOp
	LocIntLocIntOp
	LocIntConstIntOp
	GlobIntGlobIntOp
	GlobIntConstIntOp
)

func (h Hint) String() string {
	switch h {
	case NoHint:
		return "none"
	case ConstNoOp:
		return "CONST_NO_OP"
	case LocIntNoOp:
		return "LOC_INT_NO_OP"
	case GlobIntNoOp:
		return "GLOB_INT_NO_OP"
	case LocByteNoOp:
		return "LOC_BYTE_NO_OP"
	case GlobByteNoOp:
		return "GLOB_BYTE_NO_OP"
	case IntFuncNoOp:
		return "INT_FUNC_NO_OP"
	case ExtFuncNoOp:
		return "EXT_FUNC_NO_OP"
	case LocIntLocIntOp:
		return "LOC_INT_LOC_INT_OP"
	case LocIntConstIntOp:
		return "LOC_INT_CONST_INT_OP"
	case GlobIntGlobIntOp:
		return "GLOB_INT_GLOB_INT_OP"
	case GlobIntConstIntOp:
		return "GLOB_INT_CONST_INT_OP"
	}
	return "none"
}

// ClassifyHint inspects a folded, END-terminated slot and assigns the
// most specific hint its shape matches, or NoHint if none applies.
func ClassifyHint(slot Slot) Hint {
	body := slot
	if len(body) > 0 && body[len(body)-1].End {
		body = body[:len(body)-1]
	}

	switch len(body) {
	case 1:
		return classifySingle(body[0])
	case 3:
		// operand, operand, operator (postfix order)
		if body[2].IsOperator {
			return classifyPair(body[0], body[1])
		}
	}
	return NoHint
}

func classifySingle(e Element) Hint {
	switch e.Content {
	case expr.IntConst, expr.StringConst:
		return ConstNoOp
	case expr.Variable:
		switch e.VarKind {
		case symtab.LocalInt:
			return LocIntNoOp
		case symtab.GlobalInt:
			return GlobIntNoOp
		case symtab.LocalByte:
			return LocByteNoOp
		case symtab.GlobalByte:
			return GlobByteNoOp
		case symtab.LocalString, symtab.GlobalString:
			return ConstNoOp // bare string variable, per spec.md §4.G
		}
	case expr.BuiltinFunc:
		return IntFuncNoOp
	case expr.UserFunc:
		return ExtFuncNoOp
	}
	return NoHint
}

func classifyPair(a, b Element) Hint {
	isLocInt := func(e Element) bool { return e.Content == expr.Variable && e.VarKind == symtab.LocalInt }
	isGlobInt := func(e Element) bool { return e.Content == expr.Variable && e.VarKind == symtab.GlobalInt }
	isConstInt := func(e Element) bool { return e.Content == expr.IntConst }

	switch {
	case isLocInt(a) && isLocInt(b):
		return LocIntLocIntOp
	case isLocInt(a) && isConstInt(b):
		return LocIntConstIntOp
	case isGlobInt(a) && isGlobInt(b):
		return GlobIntGlobIntOp
	case isGlobInt(a) && isConstInt(b):
		return GlobIntConstIntOp
	}
	return NoHint
}
