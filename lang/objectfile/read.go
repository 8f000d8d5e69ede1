package objectfile

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nic-lang/nicc/lang/expr"
	"github.com/nic-lang/nicc/lang/funtab"
	"github.com/nic-lang/nicc/lang/ir"
	"github.com/nic-lang/nicc/lang/postfix"
	"github.com/nic-lang/nicc/lang/symtab"
)

// Read parses an object file written by Write back into an Image, the
// counterpart Write's doc comment promises for the §8 "round trip"
// testable property: read, re-serialize, compare bytes.
func Read(r io.Reader) (*Image, error) {
	rd := &reader{s: bufio.NewScanner(r)}
	rd.s.Buffer(make([]byte, 0, 64*1024), 1<<20)

	img := &Image{}
	var err error

	if img.Statements, err = rd.statements(); err != nil {
		return nil, err
	}
	if img.Postfix, err = rd.postfix(); err != nil {
		return nil, err
	}
	if img.FIPs, err = rd.fips(); err != nil {
		return nil, err
	}
	if img.Strings, err = rd.strings(); err != nil {
		return nil, err
	}
	if img.GlobalInts, err = rd.scalars("globals-int"); err != nil {
		return nil, err
	}
	if img.GlobalBytes, err = rd.scalars("globals-byte"); err != nil {
		return nil, err
	}
	if img.GlobalStrings, err = rd.scalars("globals-string"); err != nil {
		return nil, err
	}
	if img.GlobalIntArrays, err = rd.arrays("globals-int-arrays"); err != nil {
		return nil, err
	}
	if img.GlobalByteArrays, err = rd.arrays("globals-byte-arrays"); err != nil {
		return nil, err
	}
	if img.GlobalStringArrays, err = rd.arrays("globals-string-arrays"); err != nil {
		return nil, err
	}
	if img.Functions, err = rd.functions(); err != nil {
		return nil, err
	}
	if img.MainFunc, err = rd.mainFunc(); err != nil {
		return nil, err
	}
	if err := rd.s.Err(); err != nil {
		return nil, err
	}
	return img, nil
}

type reader struct {
	s   *bufio.Scanner
	cur string // last line read, trimmed
}

func (r *reader) next() bool {
	for r.s.Scan() {
		line := strings.TrimSpace(r.s.Text())
		if line == "" {
			continue
		}
		r.cur = line
		return true
	}
	return false
}

func (r *reader) header(name string) (int, error) {
	if !r.next() {
		return 0, fmt.Errorf("expected %q section header, reached end of file", name)
	}
	prefix := name + ":"
	if !strings.HasPrefix(r.cur, prefix) {
		return 0, fmt.Errorf("expected %q section header, found %q", name, r.cur)
	}
	n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(r.cur, prefix)))
	if err != nil {
		return 0, fmt.Errorf("%s: invalid count: %w", name, err)
	}
	return n, nil
}

func (r *reader) line() ([]string, error) {
	if !r.next() {
		return nil, fmt.Errorf("unexpected end of file")
	}
	return strings.Fields(r.cur), nil
}

func (r *reader) statements() ([]ir.Statement, error) {
	n, err := r.header("statements")
	if err != nil {
		return nil, err
	}
	out := make([]ir.Statement, n)
	for i := 0; i < n; i++ {
		fields, err := r.line()
		if err != nil {
			return nil, err
		}
		stmt, err := decodeStatement(fields)
		if err != nil {
			return nil, fmt.Errorf("statement %d: %w", i, err)
		}
		out[i] = stmt
	}
	return out, nil
}

// decodeStatement parses "<idx> <KIND> line=<n> next=<n> k=v ...".
func decodeStatement(fields []string) (ir.Statement, error) {
	if len(fields) < 4 {
		return ir.Statement{}, fmt.Errorf("malformed statement line %q", strings.Join(fields, " "))
	}
	kind, ok := statementKindByName[fields[1]]
	if !ok {
		return ir.Statement{}, fmt.Errorf("unknown statement kind %q", fields[1])
	}
	kv := parseKV(fields[2:])

	s := ir.Statement{Kind: kind}
	s.Line = kv.int("line")
	s.Next = kv.int("next")

	switch kind {
	case ir.Increment:
		s.TargetKind, s.TargetIdx = kv.varRef("target")
		s.Step = kv.int("step")
	case ir.InternFunction:
		s.HasAssign = kv.bool("assign")
		if s.HasAssign {
			s.AssignKind, s.AssignIdx = kv.varRef("lhs")
		}
		s.ArrayIndexSlot = kv.int("aidx")
		s.ExprSlot = kv.int("expr")
	case ir.If:
		s.CondSlot1 = kv.int("cond1")
		op, ok := compareOpByTag[kv.get("cmp")]
		if !ok {
			return ir.Statement{}, fmt.Errorf("unknown compare tag %q", kv.get("cmp"))
		}
		s.CompareOp = int(op)
		s.CondSlot2 = kv.int("cond2")
		s.FalseIdx = kv.int("false")
	case ir.EndIf, ir.EndWhile, ir.EndFor, ir.EndRepeat, ir.EndLoop:
		s.OpenerIdx = kv.int("opener")
	case ir.While, ir.Loop, ir.Repeat, ir.For:
		s.EndIdx = kv.int("end")
		s.LoopVar, s.LoopVarIdx = kv.varRef("loopvar")
		s.StartSlot = kv.int("start")
		s.StopSlot = kv.int("stop")
		s.StepSlot = kv.int("step")
		s.CountSlot = kv.int("count")
	case ir.Break, ir.Continue:
	case ir.Return:
		s.HasExpr = kv.bool("hasexpr")
		if s.HasExpr {
			s.ExprSlot2 = kv.int("expr")
		}
	}
	return s, kv.err
}

func (r *reader) postfix() ([]SlotImage, error) {
	n, err := r.header("postfix")
	if err != nil {
		return nil, err
	}
	out := make([]SlotImage, n)
	for i := 0; i < n; i++ {
		fields, err := r.line()
		if err != nil {
			return nil, err
		}
		if len(fields) < 3 {
			return nil, fmt.Errorf("postfix slot %d: malformed line", i)
		}
		kv := parseKV(fields[1:3])
		si := SlotImage{Depth: kv.int("depth")}
		if h, ok := hintByName[kv.get("hint")]; ok {
			si.Hint = h
		}
		for _, tok := range fields[3:] {
			if tok == "END" {
				si.Slot = append(si.Slot, postfix.Element{End: true})
				continue
			}
			el, err := decodeElement(tok)
			if err != nil {
				return nil, fmt.Errorf("postfix slot %d: %w", i, err)
			}
			si.Slot = append(si.Slot, el)
		}
		out[i] = si
		if kv.err != nil {
			return nil, kv.err
		}
	}
	return out, nil
}

func (r *reader) fips() ([]expr.FIP, error) {
	n, err := r.header("fip")
	if err != nil {
		return nil, err
	}
	out := make([]expr.FIP, n)
	for i := 0; i < n; i++ {
		fields, err := r.line()
		if err != nil {
			return nil, err
		}
		if len(fields) < 2 {
			return nil, fmt.Errorf("fip slot %d: malformed line", i)
		}
		content, err := fipContentFromTag(fields[1])
		if err != nil {
			return nil, fmt.Errorf("fip slot %d: %w", i, err)
		}
		kv := parseKV(fields[2:])
		f := expr.FIP{Content: content, FuncIdx: kv.int("func"), Argc: kv.int("argc")}
		argsStr := kv.get("args")
		if argsStr != "" {
			for _, a := range strings.Split(argsStr, ",") {
				v, err := strconv.Atoi(a)
				if err != nil {
					return nil, fmt.Errorf("fip slot %d: malformed arg slot %q: %w", i, a, err)
				}
				f.ArgSlots = append(f.ArgSlots, v)
			}
		}
		out[i] = f
		if kv.err != nil {
			return nil, kv.err
		}
	}
	return out, nil
}

func (r *reader) strings() ([]string, error) {
	n, err := r.header("strings")
	if err != nil {
		return nil, err
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		if !r.next() {
			return nil, fmt.Errorf("strings: unexpected end of file")
		}
		idxEnd := strings.IndexByte(r.cur, ' ')
		if idxEnd < 0 {
			return nil, fmt.Errorf("strings: malformed line %q", r.cur)
		}
		q := strings.TrimSpace(r.cur[idxEnd+1:])
		s, err := strconv.Unquote(q)
		if err != nil {
			return nil, fmt.Errorf("strings: malformed quoted value %q: %w", q, err)
		}
		out[i] = s
	}
	return out, nil
}

func (r *reader) scalars(section string) ([]symtab.Symbol, error) {
	n, err := r.header(section)
	if err != nil {
		return nil, err
	}
	out := make([]symtab.Symbol, n)
	for i := 0; i < n; i++ {
		fields, err := r.line()
		if err != nil {
			return nil, err
		}
		if len(fields) < 2 {
			return nil, fmt.Errorf("%s %d: malformed line", section, i)
		}
		name, err := strconv.Unquote(fields[1])
		if err != nil {
			return nil, fmt.Errorf("%s %d: malformed name %q: %w", section, i, fields[1], err)
		}
		kv := parseKV(fields[2:])
		out[i] = symtab.Symbol{
			Name:      name,
			HasInit:   kv.bool("hasinit"),
			InitValue: kv.int("init"),
			UsedCount: kv.int("used"),
			SetCount:  kv.int("set"),
		}
		if kv.err != nil {
			return nil, kv.err
		}
	}
	return out, nil
}

func (r *reader) arrays(section string) ([]symtab.Symbol, error) {
	n, err := r.header(section)
	if err != nil {
		return nil, err
	}
	out := make([]symtab.Symbol, n)
	for i := 0; i < n; i++ {
		fields, err := r.line()
		if err != nil {
			return nil, err
		}
		if len(fields) < 2 {
			return nil, fmt.Errorf("%s %d: malformed line", section, i)
		}
		name, err := strconv.Unquote(fields[1])
		if err != nil {
			return nil, fmt.Errorf("%s %d: malformed name %q: %w", section, i, fields[1], err)
		}
		kv := parseKV(fields[2:])
		out[i] = symtab.Symbol{
			Name:      name,
			ArrayLen:  kv.int("len"),
			UsedCount: kv.int("used"),
			SetCount:  kv.int("set"),
		}
		if kv.err != nil {
			return nil, kv.err
		}
	}
	return out, nil
}

func (r *reader) functions() ([]FunctionImage, error) {
	n, err := r.header("functions")
	if err != nil {
		return nil, err
	}
	out := make([]FunctionImage, n)
	for i := 0; i < n; i++ {
		fields, err := r.line()
		if err != nil {
			return nil, err
		}
		if len(fields) < 3 || fields[0] != "function:" {
			return nil, fmt.Errorf("function %d: expected a function header, found %q", i, strings.Join(fields, " "))
		}
		name, err := strconv.Unquote(fields[2])
		if err != nil {
			return nil, fmt.Errorf("function %d: malformed name %q: %w", i, fields[2], err)
		}
		kv := parseKV(fields[3:])
		fn := FunctionImage{
			Name:       name,
			ReturnType: returnTypeByName[kv.get("returns")],
			FirstStmt:  kv.int("first"),
		}
		argc := kv.int("argc")
		if kv.err != nil {
			return nil, kv.err
		}

		for j := 0; j < argc; j++ {
			argFields, err := r.line()
			if err != nil {
				return nil, err
			}
			if len(argFields) < 3 || argFields[0] != "arg:" {
				return nil, fmt.Errorf("function %d: expected arg %d", i, j)
			}
			vk, vi, err := parseVarRefTag(argFields[2])
			if err != nil {
				return nil, fmt.Errorf("function %d: %w", i, err)
			}
			akv := parseKV(argFields[3:])
			fn.Args = append(fn.Args, funtab.Arg{VarKind: vk, VarIdx: vi, Type: returnTypeByName[akv.get("type")]})
			if akv.err != nil {
				return nil, akv.err
			}
		}

		if fn.LocalInts, err = r.scalars("locals-int"); err != nil {
			return nil, err
		}
		if fn.LocalBytes, err = r.scalars("locals-byte"); err != nil {
			return nil, err
		}
		if fn.LocalStrings, err = r.scalars("locals-string"); err != nil {
			return nil, err
		}
		if fn.LocalIntArrays, err = r.arrays("locals-int-arrays"); err != nil {
			return nil, err
		}
		if fn.LocalByteArrays, err = r.arrays("locals-byte-arrays"); err != nil {
			return nil, err
		}
		if fn.LocalStringArrays, err = r.arrays("locals-string-arrays"); err != nil {
			return nil, err
		}
		out[i] = fn
	}
	return out, nil
}

func (r *reader) mainFunc() (int, error) {
	if !r.next() {
		return 0, fmt.Errorf("expected main function index, reached end of file")
	}
	const prefix = "main:"
	if !strings.HasPrefix(r.cur, prefix) {
		return 0, fmt.Errorf("expected main function index, found %q", r.cur)
	}
	return strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(r.cur, prefix)))
}

// kv is a small space-separated key=value field parser, the same
// "lax scanner, first error wins" idiom the teacher's own asm reader uses
// to keep every decode routine in this file a few lines long.
type kv struct {
	vals map[string]string
	err  error
}

func parseKV(fields []string) kv {
	m := make(map[string]string, len(fields))
	for _, f := range fields {
		name, val, ok := strings.Cut(f, "=")
		if !ok {
			continue
		}
		m[name] = val
	}
	return kv{vals: m}
}

func (k kv) get(name string) string { return k.vals[name] }

func (k *kv) int(name string) int {
	v, ok := k.vals[name]
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil && k.err == nil {
		k.err = fmt.Errorf("field %q: invalid integer %q: %w", name, v, err)
	}
	return n
}

func (k *kv) bool(name string) bool {
	v, ok := k.vals[name]
	if !ok {
		return false
	}
	b, err := strconv.ParseBool(v)
	if err != nil && k.err == nil {
		k.err = fmt.Errorf("field %q: invalid bool %q: %w", name, v, err)
	}
	return b
}

func (k *kv) varRef(name string) (symtab.Kind, int) {
	v, ok := k.vals[name]
	if !ok {
		return 0, 0
	}
	kind, idx, err := parseVarRefTag(v)
	if err != nil && k.err == nil {
		k.err = fmt.Errorf("field %q: %w", name, err)
	}
	return kind, idx
}

var statementKindByName = map[string]ir.Kind{
	"INCREMENT":       ir.Increment,
	"INTERN_FUNCTION": ir.InternFunction,
	"IF":              ir.If,
	"ENDIF":           ir.EndIf,
	"WHILE":           ir.While,
	"ENDWHILE":        ir.EndWhile,
	"LOOP":            ir.Loop,
	"ENDLOOP":         ir.EndLoop,
	"FOR":             ir.For,
	"ENDFOR":          ir.EndFor,
	"REPEAT":          ir.Repeat,
	"ENDREPEAT":       ir.EndRepeat,
	"BREAK":           ir.Break,
	"CONTINUE":        ir.Continue,
	"RETURN":          ir.Return,
}

var hintByName = map[string]postfix.Hint{
	"none":                 postfix.NoHint,
	"CONST_NO_OP":          postfix.ConstNoOp,
	"LOC_INT_NO_OP":        postfix.LocIntNoOp,
	"GLOB_INT_NO_OP":       postfix.GlobIntNoOp,
	"LOC_BYTE_NO_OP":       postfix.LocByteNoOp,
	"GLOB_BYTE_NO_OP":      postfix.GlobByteNoOp,
	"INT_FUNC_NO_OP":       postfix.IntFuncNoOp,
	"EXT_FUNC_NO_OP":       postfix.ExtFuncNoOp,
	"LOC_INT_LOC_INT_OP":   postfix.LocIntLocIntOp,
	"LOC_INT_CONST_INT_OP": postfix.LocIntConstIntOp,
	"GLOB_INT_GLOB_INT_OP": postfix.GlobIntGlobIntOp,
	"GLOB_INT_CONST_INT_OP": postfix.GlobIntConstIntOp,
}

var returnTypeByName = map[string]funtab.ReturnType{
	"void": funtab.Void, "int": funtab.Int, "byte": funtab.Byte, "string": funtab.String,
}

func fipContentFromTag(tag string) (expr.Content, error) {
	switch tag {
	case "builtin":
		return expr.BuiltinFunc, nil
	case "user":
		return expr.UserFunc, nil
	case "index":
		return expr.IntConst, nil // shares FIP's zero-value Content, see fipContentTag
	}
	return 0, fmt.Errorf("unknown fip content tag %q", tag)
}
