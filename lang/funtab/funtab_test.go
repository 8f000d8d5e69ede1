package funtab_test

import (
	"testing"

	"github.com/nic-lang/nicc/lang/funtab"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefineAndFind(t *testing.T) {
	tb := funtab.New()
	idx := tb.Define(funtab.Function{Name: "foo", ReturnType: funtab.Int})

	fn, foundIdx, ok := tb.FindDefined("foo")
	require.True(t, ok)
	assert.Equal(t, idx, foundIdx)
	assert.Equal(t, funtab.Int, fn.ReturnType)
}

func TestCaptureUndefinedDedups(t *testing.T) {
	tb := funtab.New()
	i1 := tb.CaptureUndefined("bar", 4, 2, false)
	i2 := tb.CaptureUndefined("bar", 9, 2, true)
	assert.Equal(t, i1, i2)
	assert.Len(t, tb.Undefined(), 1)
}

func TestResolveSucceeds(t *testing.T) {
	tb := funtab.New()
	tb.CaptureUndefined("foo", 5, 1, false)
	tb.Define(funtab.Function{Name: "foo", ReturnType: funtab.Int, Args: []funtab.Arg{{Type: funtab.Int}}})

	errs := tb.Resolve()
	assert.Empty(t, errs)
	assert.Equal(t, 0, tb.UndefinedAt(0).ResolvedIdx)
}

func TestResolveReportsUnresolvable(t *testing.T) {
	tb := funtab.New()
	tb.CaptureUndefined("ghost", 7, 0, false)

	errs := tb.Resolve()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "undefined function")
}

func TestResolveReportsArityMismatch(t *testing.T) {
	tb := funtab.New()
	tb.CaptureUndefined("foo", 5, 2, false)
	tb.Define(funtab.Function{Name: "foo", ReturnType: funtab.Void})

	errs := tb.Resolve()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "argument")
}

func TestResolveReportsVoidUsedAsValue(t *testing.T) {
	tb := funtab.New()
	tb.CaptureUndefined("foo", 5, 0, true)
	tb.Define(funtab.Function{Name: "foo", ReturnType: funtab.Void})

	errs := tb.Resolve()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "declared void")
}

func TestReleaseAllClears(t *testing.T) {
	tb := funtab.New()
	tb.Define(funtab.Function{Name: "foo"})
	tb.CaptureUndefined("bar", 1, 0, false)

	tb.ReleaseAll()
	_, _, ok := tb.FindDefined("foo")
	assert.False(t, ok)
	assert.Empty(t, tb.Undefined())
}
