package symtab_test

import (
	"testing"

	"github.com/nic-lang/nicc/lang/symtab"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertAndFind(t *testing.T) {
	ts := symtab.New()
	idx := ts.Insert(symtab.Symbol{Name: "count", Kind: symtab.LocalInt, Line: 3})

	sym, foundIdx, ok := ts.FindInKind(symtab.LocalInt, "count")
	require.True(t, ok)
	assert.Equal(t, idx, foundIdx)
	assert.Equal(t, 3, sym.Line)
}

func TestFindMissingReturnsFalse(t *testing.T) {
	ts := symtab.New()
	_, _, ok := ts.FindInKind(symtab.GlobalInt, "nope")
	assert.False(t, ok)
}

func TestSizeInBytesScalarAndArray(t *testing.T) {
	ts := symtab.New()
	ts.Insert(symtab.Symbol{Name: "x", Kind: symtab.GlobalInt})
	ts.Insert(symtab.Symbol{Name: "buf", Kind: symtab.GlobalByteArray, ArrayLen: 16})

	assert.Equal(t, 4, ts.SizeInBytes(symtab.GlobalInt))
	assert.Equal(t, 16, ts.SizeInBytes(symtab.GlobalByteArray))
}

func TestLookupFindsLocalBeforeGlobal(t *testing.T) {
	ts := symtab.New()
	ts.Insert(symtab.Symbol{Name: "x", Kind: symtab.GlobalInt})
	ts.Insert(symtab.Symbol{Name: "x", Kind: symtab.LocalInt})

	r, ok := ts.Lookup("main", "x", symtab.LocalInt)
	require.True(t, ok)
	assert.Equal(t, symtab.LocalInt, r.Kind)
}

func TestLookupFindsStaticLocalByMangledName(t *testing.T) {
	ts := symtab.New()
	ts.Insert(symtab.Symbol{Name: symtab.Mangle("counter", "n"), Kind: symtab.GlobalInt, IsStatic: true})

	r, ok := ts.Lookup("counter", "n", symtab.LocalInt)
	require.True(t, ok)
	assert.Equal(t, symtab.GlobalInt, r.Kind)
	assert.True(t, r.Sym.IsStatic)
}

func TestLookupFindsConstBeforeGlobal(t *testing.T) {
	ts := symtab.New()
	ts.Insert(symtab.Symbol{Name: "LIMIT", Kind: symtab.ConstInt})
	ts.Insert(symtab.Symbol{Name: "LIMIT", Kind: symtab.GlobalInt})

	r, ok := ts.Lookup("main", "LIMIT", symtab.LocalInt)
	require.True(t, ok)
	assert.Equal(t, symtab.ConstInt, r.Kind)
}

func TestCheckDeclareRedefinitionInSameScope(t *testing.T) {
	ts := symtab.New()
	ts.Insert(symtab.Symbol{Name: "x", Kind: symtab.LocalInt})

	assert.Equal(t, symtab.RedefinesInScope, ts.CheckDeclare("main", "x", symtab.LocalInt))
}

func TestCheckDeclareShadowsOuterScope(t *testing.T) {
	ts := symtab.New()
	ts.Insert(symtab.Symbol{Name: "x", Kind: symtab.GlobalInt})

	assert.Equal(t, symtab.ShadowsOuterScope, ts.CheckDeclare("main", "x", symtab.LocalInt))
}

func TestCheckDeclareNoConflict(t *testing.T) {
	ts := symtab.New()
	assert.Equal(t, symtab.NoConflict, ts.CheckDeclare("main", "fresh", symtab.LocalInt))
}

func TestReleaseAllClearsTables(t *testing.T) {
	ts := symtab.New()
	ts.Insert(symtab.Symbol{Name: "x", Kind: symtab.GlobalInt})
	ts.ReleaseAll()

	_, _, ok := ts.FindInKind(symtab.GlobalInt, "x")
	assert.False(t, ok)
}
