package objectfile

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nic-lang/nicc/lang/expr"
	"github.com/nic-lang/nicc/lang/ir"
	"github.com/nic-lang/nicc/lang/symtab"
	"github.com/nic-lang/nicc/lang/token"
)

// Write emits img in the fixed section order spec.md §4.I mandates:
// statements, postfix slots, FIP slots, strings, global variables (int,
// byte, string), global array sizes (int, byte, string), functions, then
// the index of the main function on the final line. Every section starts
// with a count line, matching spec.md §6's "each section begins with a
// count line".
func Write(w io.Writer, img *Image) error {
	bw := bufio.NewWriter(w)

	if err := writeStatements(bw, img.Statements); err != nil {
		return err
	}
	if err := writePostfix(bw, img.Postfix); err != nil {
		return err
	}
	if err := writeFIPs(bw, img.FIPs); err != nil {
		return err
	}
	writeStrings(bw, img.Strings)

	writeScalars(bw, "globals-int", img.GlobalInts)
	writeScalars(bw, "globals-byte", img.GlobalBytes)
	writeScalars(bw, "globals-string", img.GlobalStrings)
	writeArrays(bw, "globals-int-arrays", img.GlobalIntArrays)
	writeArrays(bw, "globals-byte-arrays", img.GlobalByteArrays)
	writeArrays(bw, "globals-string-arrays", img.GlobalStringArrays)

	if err := writeFunctions(bw, img.Functions); err != nil {
		return err
	}

	fmt.Fprintf(bw, "main: %d\n", img.MainFunc)
	return bw.Flush()
}

func writeStatements(w *bufio.Writer, stmts []ir.Statement) error {
	fmt.Fprintf(w, "statements: %d\n", len(stmts))
	for i, s := range stmts {
		line, err := encodeStatement(s)
		if err != nil {
			return fmt.Errorf("statement %d: %w", i, err)
		}
		fmt.Fprintf(w, "\t%d %s line=%d %s\n", i, s.Kind, s.Line, line)
	}
	return nil
}

// encodeStatement renders a statement's kind-specific fields as space-
// separated key=value tokens, always leading with next=<next>.
func encodeStatement(s ir.Statement) (string, error) {
	fields := []string{fmt.Sprintf("next=%d", s.Next)}
	switch s.Kind {
	case ir.Increment:
		fields = append(fields,
			"target="+varRefTag(s.TargetKind, s.TargetIdx),
			fmt.Sprintf("step=%d", s.Step))
	case ir.InternFunction:
		fields = append(fields, fmt.Sprintf("assign=%t", s.HasAssign))
		if s.HasAssign {
			fields = append(fields, "lhs="+varRefTag(s.AssignKind, s.AssignIdx))
		}
		fields = append(fields,
			fmt.Sprintf("aidx=%d", s.ArrayIndexSlot),
			fmt.Sprintf("expr=%d", s.ExprSlot))
	case ir.If:
		fields = append(fields,
			fmt.Sprintf("cond1=%d", s.CondSlot1),
			"cmp="+compareTagByOp(token.Token(s.CompareOp)),
			fmt.Sprintf("cond2=%d", s.CondSlot2),
			fmt.Sprintf("false=%d", s.FalseIdx))
	case ir.EndIf, ir.EndWhile, ir.EndFor, ir.EndRepeat, ir.EndLoop:
		fields = append(fields, fmt.Sprintf("opener=%d", s.OpenerIdx))
	case ir.While, ir.Loop, ir.Repeat, ir.For:
		fields = append(fields,
			fmt.Sprintf("end=%d", s.EndIdx),
			"loopvar="+varRefTag(s.LoopVar, s.LoopVarIdx),
			fmt.Sprintf("start=%d", s.StartSlot),
			fmt.Sprintf("stop=%d", s.StopSlot),
			fmt.Sprintf("step=%d", s.StepSlot),
			fmt.Sprintf("count=%d", s.CountSlot))
	case ir.Break, ir.Continue:
		// no extra fields: Next already carries the resolved target.
	case ir.Return:
		fields = append(fields, fmt.Sprintf("hasexpr=%t", s.HasExpr))
		if s.HasExpr {
			fields = append(fields, fmt.Sprintf("expr=%d", s.ExprSlot2))
		}
	default:
		return "", fmt.Errorf("unknown statement kind %d", s.Kind)
	}
	return strings.Join(fields, " "), nil
}

func writePostfix(w *bufio.Writer, slots []SlotImage) error {
	fmt.Fprintf(w, "postfix: %d\n", len(slots))
	for i, si := range slots {
		toks := make([]string, 0, len(si.Slot))
		for _, el := range si.Slot {
			if el.End {
				toks = append(toks, "END")
				continue
			}
			s, err := encodeElement(el)
			if err != nil {
				return fmt.Errorf("postfix slot %d: %w", i, err)
			}
			toks = append(toks, s)
		}
		fmt.Fprintf(w, "\t%d depth=%d hint=%s %s\n", i, si.Depth, si.Hint, strings.Join(toks, " "))
	}
	return nil
}

func writeFIPs(w *bufio.Writer, fips []expr.FIP) error {
	fmt.Fprintf(w, "fip: %d\n", len(fips))
	for i, f := range fips {
		tag, err := fipContentTag(f.Content)
		if err != nil {
			return fmt.Errorf("fip slot %d: %w", i, err)
		}
		argSlots := make([]string, len(f.ArgSlots))
		for j, as := range f.ArgSlots {
			argSlots[j] = strconv.Itoa(as)
		}
		fmt.Fprintf(w, "\t%d %s func=%d argc=%d args=%s\n", i, tag, f.FuncIdx, f.Argc, strings.Join(argSlots, ","))
	}
	return nil
}

func writeStrings(w *bufio.Writer, strs []string) {
	fmt.Fprintf(w, "strings: %d\n", len(strs))
	for i, s := range strs {
		fmt.Fprintf(w, "\t%d %q\n", i, s)
	}
}

func writeScalars(w *bufio.Writer, section string, syms []symtab.Symbol) {
	fmt.Fprintf(w, "%s: %d\n", section, len(syms))
	for i, s := range syms {
		fmt.Fprintf(w, "\t%d %s hasinit=%t init=%d used=%d set=%d\n",
			i, quoteName(s.Name), s.HasInit, s.InitValue, s.UsedCount, s.SetCount)
	}
}

func writeArrays(w *bufio.Writer, section string, syms []symtab.Symbol) {
	fmt.Fprintf(w, "%s: %d\n", section, len(syms))
	for i, s := range syms {
		fmt.Fprintf(w, "\t%d %s len=%d used=%d set=%d\n", i, quoteName(s.Name), s.ArrayLen, s.UsedCount, s.SetCount)
	}
}

func writeFunctions(w *bufio.Writer, fns []FunctionImage) error {
	fmt.Fprintf(w, "functions: %d\n", len(fns))
	for i, fn := range fns {
		fmt.Fprintf(w, "\tfunction: %d %s returns=%s first=%d argc=%d\n",
			i, quoteName(fn.Name), fn.ReturnType, fn.FirstStmt, len(fn.Args))
		for j, a := range fn.Args {
			fmt.Fprintf(w, "\t\targ: %d %s type=%s\n", j, varRefTag(a.VarKind, a.VarIdx), a.Type)
		}
		writeScalars(w, "\t\tlocals-int", fn.LocalInts)
		writeScalars(w, "\t\tlocals-byte", fn.LocalBytes)
		writeScalars(w, "\t\tlocals-string", fn.LocalStrings)
		writeArrays(w, "\t\tlocals-int-arrays", fn.LocalIntArrays)
		writeArrays(w, "\t\tlocals-byte-arrays", fn.LocalByteArrays)
		writeArrays(w, "\t\tlocals-string-arrays", fn.LocalStringArrays)
	}
	return nil
}

func quoteName(s string) string { return strconv.Quote(s) }

// fipContentTag labels a FIP's call kind. A zero Content (the bare
// array-index FIP shape, which carries no function) is written as
// "index"; see expr.FIP's doc comment.
func fipContentTag(c expr.Content) (string, error) {
	switch c {
	case expr.BuiltinFunc:
		return "builtin", nil
	case expr.UserFunc:
		return "user", nil
	case expr.IntConst: // expr.Content's zero value, shared with the array-index FIP shape
		return "index", nil
	}
	return "", fmt.Errorf("unsupported fip content %d", c)
}
