package parser_test

import (
	"context"
	"testing"

	"github.com/nic-lang/nicc/lang/ir"
	"github.com/nic-lang/nicc/lang/parser"
	"github.com/nic-lang/nicc/lang/symtab"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) *parser.Program {
	t.Helper()
	prog, err := parser.ParseSource(context.Background(), "test.nic", []byte(src))
	require.NoError(t, err)
	require.NotNil(t, prog)
	return prog
}

func TestParseMinimalMain(t *testing.T) {
	prog := parse(t, "function main()\nendfunction\n")
	_, idx, ok := prog.Funcs.FindDefined("main")
	require.True(t, ok)
	assert.Equal(t, prog.MainFunc, idx)
	// an implicit "return" is synthesized for a void function with no
	// explicit return on its last line
	last := prog.Statements.At(prog.Statements.Len() - 1)
	assert.Equal(t, ir.Return, last.Kind)
}

func TestParseRequiresMain(t *testing.T) {
	_, err := parser.ParseSource(context.Background(), "test.nic", []byte("function other()\nendfunction\n"))
	assert.Error(t, err)
}

func TestParseGlobalDeclAndAssignment(t *testing.T) {
	src := "int counter = 0\n" +
		"function main()\n" +
		"counter = counter + 1\n" +
		"endfunction\n"
	prog := parse(t, src)

	sym, _, ok := prog.Symbols.FindInKind(symtab.GlobalInt, "counter")
	require.True(t, ok)
	assert.True(t, sym.HasInit)
	assert.Equal(t, 0, sym.InitValue)

	// counter = counter + 1 is the INCREMENT rewrite, not a generic assign
	stmts := prog.Statements.All()
	require.Len(t, stmts, 2)
	assert.Equal(t, ir.Increment, stmts[0].Kind)
	assert.Equal(t, symtab.GlobalInt, stmts[0].TargetKind)
	assert.Equal(t, 1, stmts[0].Step)
	assert.Equal(t, ir.Return, stmts[1].Kind)
}

func TestParseIfElseifElse(t *testing.T) {
	src := "function main()\n" +
		"int x = 0\n" +
		"if x = 1\n" +
		"x = 2\n" +
		"elseif x = 3\n" +
		"x = 4\n" +
		"else\n" +
		"x = 5\n" +
		"endif\n" +
		"endfunction\n"
	prog := parse(t, src)
	stmts := prog.Statements.All()

	// IF, assign(x=2), ENDIF(goto), IF(elseif), assign(x=4),
	// ENDIF(goto), assign(x=5), ENDIF, RETURN
	require.Len(t, stmts, 9)
	assert.Equal(t, ir.If, stmts[0].Kind)
	assert.NotEqual(t, -1, stmts[0].FalseIdx)
	assert.Equal(t, ir.If, stmts[3].Kind)
	assert.Equal(t, ir.EndIf, stmts[7].Kind)
	assert.Equal(t, ir.Return, stmts[8].Kind)

	// both goto-end statements (indices 2 and 5) must land on the real ENDIF
	assert.Equal(t, 7, stmts[2].Next)
	assert.Equal(t, 7, stmts[5].Next)
}

func TestParseWhileLoop(t *testing.T) {
	src := "function main()\n" +
		"int x = 0\n" +
		"while x < 10\n" +
		"x = x + 1\n" +
		"endwhile\n" +
		"endfunction\n"
	prog := parse(t, src)
	stmts := prog.Statements.All()

	require.Len(t, stmts, 4)
	assert.Equal(t, ir.While, stmts[0].Kind)
	assert.Equal(t, ir.Increment, stmts[1].Kind)
	assert.Equal(t, ir.EndWhile, stmts[2].Kind)
	// the closer loops back to the opener to recheck the condition
	assert.Equal(t, 0, stmts[2].Next)
	// the false-branch exit is the statement right after the closer
	assert.Equal(t, 2, stmts[0].EndIdx)
	assert.Equal(t, ir.Return, stmts[stmts[0].EndIdx+1].Kind)
}

func TestParseForLoopWithStep(t *testing.T) {
	src := "function main()\n" +
		"int i = 0\n" +
		"for i = 0 to 10 step 2\n" +
		"endfor\n" +
		"endfunction\n"
	prog := parse(t, src)
	stmts := prog.Statements.All()

	require.Len(t, stmts, 3)
	require.Equal(t, ir.For, stmts[0].Kind)
	assert.NotEqual(t, -1, stmts[0].StepSlot)
	assert.Equal(t, ir.EndFor, stmts[1].Kind)
	assert.Equal(t, 0, stmts[1].Next)
}

func TestParseBreakContinueInLoop(t *testing.T) {
	src := "function main()\n" +
		"loop\n" +
		"break\n" +
		"continue\n" +
		"endloop\n" +
		"endfunction\n"
	prog := parse(t, src)
	stmts := prog.Statements.All()

	require.Len(t, stmts, 5)
	assert.Equal(t, ir.Loop, stmts[0].Kind)
	assert.Equal(t, ir.Break, stmts[1].Kind)
	assert.Equal(t, ir.Continue, stmts[2].Kind)
	assert.Equal(t, ir.EndLoop, stmts[3].Kind)

	// break jumps past the closer
	assert.Equal(t, 4, stmts[1].Next)
	// continue on a LOOP has no closer-side work, so it jumps straight
	// back to the body start (the opener's own Next)
	assert.Equal(t, stmts[0].Next, stmts[2].Next)
}

func TestParseBreakOutsideLoopIsError(t *testing.T) {
	_, err := parser.ParseSource(context.Background(), "test.nic", []byte(
		"function main()\nbreak\nendfunction\n"))
	assert.Error(t, err)
}

func TestParseFunctionMustReturnValue(t *testing.T) {
	_, err := parser.ParseSource(context.Background(), "test.nic", []byte(
		"function give() returns int\nendfunction\n"+
			"function main()\nendfunction\n"))
	assert.Error(t, err)
}

func TestParseUndefinedFunctionResolvesForward(t *testing.T) {
	src := "function main()\n" +
		"helper(1)\n" +
		"endfunction\n" +
		"function helper(int n)\n" +
		"endfunction\n"
	prog := parse(t, src)
	_, _, ok := prog.Funcs.FindDefined("helper")
	assert.True(t, ok)
}

func TestParseUnresolvedUndefinedFunctionIsError(t *testing.T) {
	_, err := parser.ParseSource(context.Background(), "test.nic", []byte(
		"function main()\nghost(1)\nendfunction\n"))
	assert.Error(t, err)
}

func TestParseArrayDeclarationAndIndexAssignment(t *testing.T) {
	src := "function main()\n" +
		"int buf[4]\n" +
		"buf[0] = 7\n" +
		"endfunction\n"
	prog := parse(t, src)
	stmts := prog.Statements.All()
	require.Len(t, stmts, 2)
	assert.Equal(t, ir.InternFunction, stmts[0].Kind)
	assert.True(t, stmts[0].HasAssign)
	assert.NotEqual(t, -1, stmts[0].ArrayIndexSlot)
}

func TestParseConstArraySize(t *testing.T) {
	src := "function main()\n" +
		"const int size = 4\n" +
		"int buf[size]\n" +
		"endfunction\n"
	prog := parse(t, src)
	sym, _, ok := prog.Symbols.FindInKind(symtab.LocalIntArray, "buf")
	require.True(t, ok)
	assert.Equal(t, 4, sym.ArrayLen)
}

func TestParseUnaryMinusNormalization(t *testing.T) {
	src := "function main()\n" +
		"int x = 0\n" +
		"x = -x + 1\n" +
		"endfunction\n"
	prog := parse(t, src)
	stmts := prog.Statements.All()
	require.Len(t, stmts, 2)
	// -x + 1 is not the v = v ± K shape (the self-reference is negated,
	// not added/subtracted), so it stays a generic assignment
	assert.Equal(t, ir.InternFunction, stmts[0].Kind)
}

func TestParseRepeatLoop(t *testing.T) {
	src := "function main()\n" +
		"repeat 5\n" +
		"endrepeat\n" +
		"endfunction\n"
	prog := parse(t, src)
	stmts := prog.Statements.All()
	require.Len(t, stmts, 3)
	assert.Equal(t, ir.Repeat, stmts[0].Kind)
	assert.NotEqual(t, -1, stmts[0].CountSlot)
	assert.Equal(t, ir.EndRepeat, stmts[1].Kind)
}

func TestParseStaticLocalPersistsAcrossCalls(t *testing.T) {
	src := "function counter() returns int\n" +
		"static int n = 0\n" +
		"n = n + 1\n" +
		"return n\n" +
		"endfunction\n" +
		"function main()\n" +
		"int v\n" +
		"v = counter()\n" +
		"endfunction\n"
	prog := parse(t, src)
	_, _, ok := prog.Symbols.FindInKind(symtab.GlobalInt, symtab.Mangle("counter", "n"))
	assert.True(t, ok)
}

func TestParseRedeclarationInSameScopeIsError(t *testing.T) {
	_, err := parser.ParseSource(context.Background(), "test.nic", []byte(
		"function main()\nint x = 0\nint x = 1\nendfunction\n"))
	assert.Error(t, err)
}

func TestParseBareCallStatement(t *testing.T) {
	src := "function main()\n" +
		"println(\"hi\")\n" +
		"endfunction\n"
	prog := parse(t, src)
	stmts := prog.Statements.All()
	require.Len(t, stmts, 2)
	assert.Equal(t, ir.InternFunction, stmts[0].Kind)
	assert.False(t, stmts[0].HasAssign)
}
