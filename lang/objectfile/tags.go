package objectfile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nic-lang/nicc/lang/expr"
	"github.com/nic-lang/nicc/lang/postfix"
	"github.com/nic-lang/nicc/lang/symtab"
	"github.com/nic-lang/nicc/lang/token"
)

// scalarTag returns the one-character kind tag spec.md §6 assigns a
// scalar variable operand: lowercase for local, uppercase for global.
func scalarTag(k symtab.Kind) (string, bool) {
	switch k {
	case symtab.LocalInt:
		return "v", true
	case symtab.GlobalInt:
		return "V", true
	case symtab.LocalByte:
		return "b", true
	case symtab.GlobalByte:
		return "B", true
	case symtab.LocalString:
		return "s", true
	case symtab.GlobalString:
		return "S", true
	}
	return "", false
}

// arrayTag returns the two-character kind tag for an array variable
// operand, without its trailing "[fip]".
func arrayTag(k symtab.Kind) (string, bool) {
	switch k {
	case symtab.LocalIntArray:
		return "av", true
	case symtab.GlobalIntArray:
		return "aV", true
	case symtab.LocalByteArray:
		return "ab", true
	case symtab.GlobalByteArray:
		return "aB", true
	case symtab.LocalStringArray:
		return "as", true
	case symtab.GlobalStringArray:
		return "aS", true
	}
	return "", false
}

var scalarKindByTag = map[string]symtab.Kind{
	"v": symtab.LocalInt, "V": symtab.GlobalInt,
	"b": symtab.LocalByte, "B": symtab.GlobalByte,
	"s": symtab.LocalString, "S": symtab.GlobalString,
}

var arrayKindByTag = map[string]symtab.Kind{
	"av": symtab.LocalIntArray, "aV": symtab.GlobalIntArray,
	"ab": symtab.LocalByteArray, "aB": symtab.GlobalByteArray,
	"as": symtab.LocalStringArray, "aS": symtab.GlobalStringArray,
}

// encodeElement renders one postfix element using spec.md §6's one-
// character kind tags: "o" operator, "c"/"C" int/string const, "v/V"
// "b/B" "s/S" local/global scalars, "av/aV" etc. with a trailing
// "[fip]" for arrays, "f" a builtin (interpreter-internal) call, "F" a
// resolved user function (external bytecode elsewhere in this image).
// The number in an array operand's brackets is the element's FIPSlot, not
// a postfix slot: the index expression's postfix slot is that FIP's single
// ArgSlots entry.
func encodeElement(e postfix.Element) (string, error) {
	if e.IsOperator {
		return "o" + e.Op.String(), nil
	}
	switch e.Content {
	case expr.IntConst:
		return fmt.Sprintf("c%d", e.Value), nil
	case expr.StringConst:
		return fmt.Sprintf("C%d", e.Value), nil
	case expr.Variable:
		tag, ok := scalarTag(e.VarKind)
		if !ok {
			return "", fmt.Errorf("variable operand has unsupported kind %s", e.VarKind)
		}
		return fmt.Sprintf("%s%d", tag, e.Value), nil
	case expr.ArrayVariable:
		tag, ok := arrayTag(e.VarKind)
		if !ok {
			return "", fmt.Errorf("array operand has unsupported kind %s", e.VarKind)
		}
		return fmt.Sprintf("%s%d[%d]", tag, e.Value, e.FIPSlot), nil
	case expr.BuiltinFunc:
		return fmt.Sprintf("f%d", e.FIPSlot), nil
	case expr.UserFunc:
		return fmt.Sprintf("F%d", e.FIPSlot), nil
	case expr.UndefinedFunc:
		return "", fmt.Errorf("unresolved undefined-function operand reached the object writer")
	}
	return "", fmt.Errorf("operand has unsupported content %d", e.Content)
}

// decodeElement reverses encodeElement, parsing the FIPSlot of the
// "av3[5]" array form from the part inside the brackets itself.
func decodeElement(tag string) (postfix.Element, error) {
	if rest, ok := strings.CutPrefix(tag, "o"); ok {
		op, ok := operatorByTag[rest]
		if !ok {
			return postfix.Element{}, fmt.Errorf("unknown operator tag %q", tag)
		}
		return postfix.Element{IsOperator: true, Op: op}, nil
	}
	if rest, ok := strings.CutPrefix(tag, "c"); ok {
		v, err := strconv.Atoi(rest)
		if err != nil {
			return postfix.Element{}, fmt.Errorf("malformed int-const tag %q: %w", tag, err)
		}
		return postfix.Element{Content: expr.IntConst, Value: v}, nil
	}
	if rest, ok := strings.CutPrefix(tag, "C"); ok {
		v, err := strconv.Atoi(rest)
		if err != nil {
			return postfix.Element{}, fmt.Errorf("malformed string-const tag %q: %w", tag, err)
		}
		return postfix.Element{Content: expr.StringConst, Value: v}, nil
	}
	if rest, ok := strings.CutPrefix(tag, "f"); ok {
		fip, err := strconv.Atoi(rest)
		if err != nil {
			return postfix.Element{}, fmt.Errorf("malformed builtin-call tag %q: %w", tag, err)
		}
		return postfix.Element{Content: expr.BuiltinFunc, FIPSlot: fip}, nil
	}
	if rest, ok := strings.CutPrefix(tag, "F"); ok {
		fip, err := strconv.Atoi(rest)
		if err != nil {
			return postfix.Element{}, fmt.Errorf("malformed function-call tag %q: %w", tag, err)
		}
		return postfix.Element{Content: expr.UserFunc, FIPSlot: fip}, nil
	}

	// array operand: "av3[5]"
	if open := strings.IndexByte(tag, '['); open >= 0 && strings.HasSuffix(tag, "]") {
		head, idxStr := tag[:open], tag[open+1:len(tag)-1]
		for atag, kind := range arrayKindByTag {
			if !strings.HasPrefix(head, atag) {
				continue
			}
			value, err := strconv.Atoi(head[len(atag):])
			if err != nil {
				return postfix.Element{}, fmt.Errorf("malformed array operand tag %q: %w", tag, err)
			}
			fip, err := strconv.Atoi(idxStr)
			if err != nil {
				return postfix.Element{}, fmt.Errorf("malformed array operand tag %q: %w", tag, err)
			}
			return postfix.Element{Content: expr.ArrayVariable, VarKind: kind, Value: value, FIPSlot: fip}, nil
		}
		return postfix.Element{}, fmt.Errorf("unknown array operand tag %q", tag)
	}

	// scalar operand: "v3"
	for stag, kind := range scalarKindByTag {
		if !strings.HasPrefix(tag, stag) {
			continue
		}
		value, err := strconv.Atoi(tag[len(stag):])
		if err != nil {
			return postfix.Element{}, fmt.Errorf("malformed scalar operand tag %q: %w", tag, err)
		}
		return postfix.Element{Content: expr.Variable, VarKind: kind, Value: value}, nil
	}
	return postfix.Element{}, fmt.Errorf("unrecognized postfix element tag %q", tag)
}

// operatorByTag maps a written operator symbol back to its token, the
// reverse of token.Token.String() for the operators the postfix
// converter ever emits.
var operatorByTag = map[string]token.Token{
	"+": token.PLUS, "-": token.MINUS, "*": token.STAR, "/": token.SLASH,
	"%": token.PERCENT, "&": token.AMPERSAND, "|": token.PIPE,
	"^": token.CIRCUMFLEX, "~": token.TILDE, "<<": token.SHL, ">>": token.SHR,
	":": token.COLON,
}

// compareOpByTag maps a written comparison operator symbol back to its
// token, for decoding an IF statement's compare_op field.
var compareOpByTag = map[string]token.Token{
	"=": token.EQ, "!=": token.NEQ, "<": token.LT, "<=": token.LE,
	">": token.GT, ">=": token.GE,
}

// compareTagByOp is the reverse of compareOpByTag, for encoding an IF
// statement's CompareOp field.
func compareTagByOp(t token.Token) string {
	for tag, op := range compareOpByTag {
		if op == t {
			return tag
		}
	}
	return t.String()
}

// varRefTag renders a "kind:idx" reference for any variable-holding
// statement field (an INCREMENT target, an assignment's LHS, a FOR/WHILE/
// LOOP loop variable): the same scalar/array tag vocabulary encodeElement
// uses for postfix operands, reused here so the object file has exactly
// one variable-kind alphabet throughout.
func varRefTag(k symtab.Kind, idx int) string {
	if tag, ok := scalarTag(k); ok {
		return fmt.Sprintf("%s:%d", tag, idx)
	}
	if tag, ok := arrayTag(k); ok {
		return fmt.Sprintf("%s:%d", tag, idx)
	}
	return fmt.Sprintf("?:%d", idx)
}

// parseVarRefTag reverses varRefTag.
func parseVarRefTag(s string) (symtab.Kind, int, error) {
	tag, numStr, ok := cutLast(s, ':')
	if !ok {
		return 0, 0, fmt.Errorf("malformed variable reference %q", s)
	}
	idx, err := strconv.Atoi(numStr)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed variable reference %q: %w", s, err)
	}
	if k, ok := scalarKindByTag[tag]; ok {
		return k, idx, nil
	}
	if k, ok := arrayKindByTag[tag]; ok {
		return k, idx, nil
	}
	return 0, 0, fmt.Errorf("unknown variable kind tag %q", tag)
}

// cutLast splits s on the last occurrence of sep, since a scalar tag is a
// single character but "idx" itself never contains ':'.
func cutLast(s string, sep byte) (before, after string, ok bool) {
	i := strings.LastIndexByte(s, sep)
	if i < 0 {
		return "", "", false
	}
	return s[:i], s[i+1:], true
}
