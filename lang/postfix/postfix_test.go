package postfix_test

import (
	"testing"

	"github.com/nic-lang/nicc/lang/arena"
	"github.com/nic-lang/nicc/lang/expr"
	"github.com/nic-lang/nicc/lang/postfix"
	"github.com/nic-lang/nicc/lang/symtab"
	"github.com/nic-lang/nicc/lang/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConverter() (*postfix.Converter, *arena.Pool[postfix.Slot], *arena.Pool[expr.FIP]) {
	a := arena.New()
	slots := arena.NewPool[postfix.Slot](a, "postfix")
	fips := arena.NewPool[expr.FIP](a, "fip")
	return postfix.NewConverter(slots, fips), slots, fips
}

func opEC(content expr.Content, value int, op token.Token, hasOp bool) expr.EC {
	return expr.EC{Content: content, Value: value, Op: op, HasOp: hasOp, FIPSlot: -1}
}

func TestConvertSimpleAddition(t *testing.T) {
	// 1 + 2
	list := expr.List{
		opEC(expr.IntConst, 1, token.PLUS, true),
		opEC(expr.IntConst, 2, token.ILLEGAL, false),
	}
	c, slots, _ := newConverter()
	idx := c.Convert(list)
	slot := slots.At(idx)

	require.Len(t, slot, 4) // 1, 2, +, END
	assert.False(t, slot[0].IsOperator)
	assert.Equal(t, 1, slot[0].Value)
	assert.False(t, slot[1].IsOperator)
	assert.Equal(t, 2, slot[1].Value)
	assert.True(t, slot[2].IsOperator)
	assert.Equal(t, token.PLUS, slot[2].Op)
	assert.True(t, slot[3].End)
}

func TestConvertPrecedence(t *testing.T) {
	// 1 + 2 * 3 -> postfix: 1 2 3 * +
	list := expr.List{
		opEC(expr.IntConst, 1, token.PLUS, true),
		opEC(expr.IntConst, 2, token.STAR, true),
		opEC(expr.IntConst, 3, token.ILLEGAL, false),
	}
	c, slots, _ := newConverter()
	idx := c.Convert(list)
	slot := slots.At(idx)

	require.Len(t, slot, 6)
	assert.Equal(t, 1, slot[0].Value)
	assert.Equal(t, 2, slot[1].Value)
	assert.Equal(t, 3, slot[2].Value)
	assert.Equal(t, token.STAR, slot[3].Op)
	assert.Equal(t, token.PLUS, slot[4].Op)
	assert.True(t, slot[5].End)
}

func TestConvertBracketsOverridePrecedence(t *testing.T) {
	// (1 + 2) * 3 -> postfix: 1 2 + 3 *
	a := opEC(expr.IntConst, 1, token.PLUS, true)
	a.Obr = 1
	b := opEC(expr.IntConst, 2, token.STAR, true)
	b.Cbr = 1
	c3 := opEC(expr.IntConst, 3, token.ILLEGAL, false)

	list := expr.List{a, b, c3}
	c, slots, _ := newConverter()
	idx := c.Convert(list)
	slot := slots.At(idx)

	require.Len(t, slot, 6)
	assert.Equal(t, token.PLUS, slot[2].Op)
	assert.Equal(t, token.STAR, slot[4].Op)
}

func TestFoldConstantsArithmetic(t *testing.T) {
	c, slots, _ := newConverter()
	list := expr.List{
		opEC(expr.IntConst, 4, token.PLUS, true),
		opEC(expr.IntConst, 5, token.ILLEGAL, false),
	}
	idx := c.Convert(list)
	folded := postfix.FoldConstants(slots.At(idx), postfix.NewStringPool())

	require.Len(t, folded, 2) // single folded const + END
	assert.Equal(t, expr.IntConst, folded[0].Content)
	assert.Equal(t, 9, folded[0].Value)
	assert.True(t, folded[1].End)
}

func TestFoldConstantsDividesByZeroLeavesUnfolded(t *testing.T) {
	c, slots, _ := newConverter()
	list := expr.List{
		opEC(expr.IntConst, 4, token.SLASH, true),
		opEC(expr.IntConst, 0, token.ILLEGAL, false),
	}
	idx := c.Convert(list)
	folded := postfix.FoldConstants(slots.At(idx), postfix.NewStringPool())

	require.Len(t, folded, 4)
	assert.True(t, folded[2].IsOperator)
}

func TestFoldConcatenation(t *testing.T) {
	strs := postfix.NewStringPool()
	aIdx := strs.Intern("count=")
	list := expr.List{
		opEC(expr.StringConst, aIdx, token.COLON, true),
		opEC(expr.IntConst, 7, token.ILLEGAL, false),
	}
	c, slots, _ := newConverter()
	idx := c.Convert(list)
	folded := postfix.FoldConstants(slots.At(idx), strs)

	require.Len(t, folded, 2)
	assert.Equal(t, expr.StringConst, folded[0].Content)
	assert.Equal(t, "count=7", strs.At(folded[0].Value))
}

func TestFoldLeavesNonConstOperandsAlone(t *testing.T) {
	c, slots, _ := newConverter()
	varEC := expr.EC{Content: expr.Variable, VarKind: expr.VarKind(symtab.LocalInt), Value: 0, FIPSlot: -1, Op: token.PLUS, HasOp: true}
	list := expr.List{varEC, opEC(expr.IntConst, 1, token.ILLEGAL, false)}
	idx := c.Convert(list)
	folded := postfix.FoldConstants(slots.At(idx), postfix.NewStringPool())

	require.Len(t, folded, 4)
	assert.Equal(t, expr.Variable, folded[0].Content)
	assert.Equal(t, expr.IntConst, folded[1].Content)
	assert.True(t, folded[2].IsOperator)
}

func TestClassifyHintSingleConst(t *testing.T) {
	slot := postfix.Slot{{Content: expr.IntConst, Value: 1}, {End: true}}
	assert.Equal(t, postfix.ConstNoOp, postfix.ClassifyHint(slot))
}

func TestClassifyHintLocalIntPair(t *testing.T) {
	slot := postfix.Slot{
		{Content: expr.Variable, VarKind: symtab.LocalInt, Value: 0},
		{Content: expr.Variable, VarKind: symtab.LocalInt, Value: 1},
		{IsOperator: true, Op: token.PLUS},
		{End: true},
	}
	assert.Equal(t, postfix.LocIntLocIntOp, postfix.ClassifyHint(slot))
}

func TestClassifyHintGlobalIntConst(t *testing.T) {
	slot := postfix.Slot{
		{Content: expr.Variable, VarKind: symtab.GlobalInt, Value: 0},
		{Content: expr.IntConst, Value: 3},
		{IsOperator: true, Op: token.PLUS},
		{End: true},
	}
	assert.Equal(t, postfix.GlobIntConstIntOp, postfix.ClassifyHint(slot))
}

func TestClassifyHintNoneForComplexShape(t *testing.T) {
	slot := postfix.Slot{
		{Content: expr.IntConst, Value: 1},
		{Content: expr.IntConst, Value: 2},
		{IsOperator: true, Op: token.PLUS},
		{Content: expr.IntConst, Value: 3},
		{IsOperator: true, Op: token.STAR},
		{End: true},
	}
	assert.Equal(t, postfix.NoHint, postfix.ClassifyHint(slot))
}
