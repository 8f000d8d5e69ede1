// Package objectfile implements nic's object-file writer and reader
// (spec.md component I): a line-oriented, section-ordered textual image
// of a fully resolved Program, laid out in the fixed order spec.md §4.I
// mandates (statements, postfix slots, FIP slots, string constants,
// global variables, global array sizes, functions, then the main
// function index), with the one-character postfix element tags spec.md
// §6 specifies.
//
// The format and its Write/Read split is grounded on the teacher's own
// compiler/asm.go: a section-ordered, comment-annotated textual image of
// its bytecode Program, assembled and disassembled by hand-written
// scanner-driven routines rather than encoding/gob or a binary format,
// because the image doubles as a human-inspectable test fixture (the
// teacher's own stated reason for asm.go's existence).
package objectfile

import (
	"github.com/nic-lang/nicc/lang/expr"
	"github.com/nic-lang/nicc/lang/funtab"
	"github.com/nic-lang/nicc/lang/ir"
	"github.com/nic-lang/nicc/lang/parser"
	"github.com/nic-lang/nicc/lang/postfix"
	"github.com/nic-lang/nicc/lang/symtab"
)

// Image is the flattened, write-ready form of a compiled program: every
// table lang/parser produced, plus the per-slot hints
// postfix.ClassifyHint assigned, in exactly the shape the fixed section order
// needs. Read reconstructs an Image from a previously written file;
// FromProgram builds one fresh from a parser.Program.
type Image struct {
	Statements []ir.Statement
	Postfix    []SlotImage
	FIPs       []expr.FIP
	Strings    []string

	GlobalInts    []symtab.Symbol
	GlobalBytes   []symtab.Symbol
	GlobalStrings []symtab.Symbol

	GlobalIntArrays    []symtab.Symbol
	GlobalByteArrays   []symtab.Symbol
	GlobalStringArrays []symtab.Symbol

	Functions []FunctionImage
	MainFunc  int
}

// SlotImage pairs a finalized postfix slot with the optimizer hint
// lang/postfix.ClassifyHint assigned it, the "prefixed by depth and
// hint" shape spec.md §4.I requires for the postfix-slots section; Depth
// is the peak operand-stack height a simulated walk of the slot reaches,
// the figure a stack-bounded interpreter needs to size its value stack.
type SlotImage struct {
	Slot  postfix.Slot
	Hint  postfix.Hint
	Depth int
}

// FunctionImage is one defined function's header and its local variable
// tables, the per-function record of the "functions" section.
type FunctionImage struct {
	Name       string
	ReturnType funtab.ReturnType
	FirstStmt  int
	Args       []funtab.Arg

	LocalInts         []symtab.Symbol
	LocalBytes        []symtab.Symbol
	LocalStrings      []symtab.Symbol
	LocalIntArrays    []symtab.Symbol
	LocalByteArrays   []symtab.Symbol
	LocalStringArrays []symtab.Symbol
}

// FromProgram flattens prog into a write-ready Image. slots must already
// have been constant-folded (parser.ParseSource runs postfix.OptimizeAll
// before returning the Program); FromProgram classifies each slot's hint itself, since
// ClassifyHint is a pure function of the folded slot and needs no extra
// state threaded in.
func FromProgram(prog *parser.Program) *Image {
	img := &Image{
		Statements:         prog.Statements.All(),
		FIPs:               prog.FIPs.All(),
		Strings:            allStrings(prog.Strings),
		GlobalInts:         prog.Symbols.All(symtab.GlobalInt),
		GlobalBytes:        prog.Symbols.All(symtab.GlobalByte),
		GlobalStrings:      prog.Symbols.All(symtab.GlobalString),
		GlobalIntArrays:    prog.Symbols.All(symtab.GlobalIntArray),
		GlobalByteArrays:   prog.Symbols.All(symtab.GlobalByteArray),
		GlobalStringArrays: prog.Symbols.All(symtab.GlobalStringArray),
		MainFunc:           prog.MainFunc,
	}

	for _, slot := range prog.Postfix.All() {
		img.Postfix = append(img.Postfix, SlotImage{
			Slot:  slot,
			Hint:  postfix.ClassifyHint(slot),
			Depth: peakDepth(slot),
		})
	}

	for _, fn := range prog.Funcs.Defined() {
		img.Functions = append(img.Functions, FunctionImage{
			Name:              fn.Name,
			ReturnType:        fn.ReturnType,
			FirstStmt:         fn.FirstStmt,
			Args:              fn.Args,
			LocalInts:         fn.LocalInts,
			LocalBytes:        fn.LocalBytes,
			LocalStrings:      fn.LocalStrings,
			LocalIntArrays:    fn.LocalIntArrays,
			LocalByteArrays:   fn.LocalByteArrays,
			LocalStringArrays: fn.LocalStringArrays,
		})
	}
	return img
}

func allStrings(p *postfix.StringPool) []string {
	out := make([]string, p.Len())
	for i := range out {
		out[i] = p.At(i)
	}
	return out
}

// peakDepth simulates the shunting-yard walk spec.md §8's universal
// invariant describes (every finalized slot leaves exactly one value on
// the stack) and returns the highest depth reached: each non-operator
// element pushes one value, each operator pops two and pushes one.
func peakDepth(slot postfix.Slot) int {
	depth, peak := 0, 0
	for _, el := range slot {
		if el.End {
			continue
		}
		if el.IsOperator {
			depth--
		} else {
			depth++
		}
		if depth > peak {
			peak = depth
		}
	}
	return peak
}
