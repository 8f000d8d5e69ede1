package objectfile_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nic-lang/nicc/lang/objectfile"
	"github.com/nic-lang/nicc/lang/parser"
)

func compile(t *testing.T, src string) *objectfile.Image {
	t.Helper()
	prog, err := parser.ParseSource(context.Background(), "test.nic", []byte(src))
	require.NoError(t, err)
	return objectfile.FromProgram(prog)
}

func TestWriteReadRoundTrip(t *testing.T) {
	src := "int total = 2 + 3 * 4\n" +
		"string greeting = \"hello\"\n" +
		"function int add(int a, int b)\n" +
		"  return a + b\n" +
		"endfunction\n" +
		"function void main()\n" +
		"  total = add(total, 1)\n" +
		"  foo()\n" +
		"endfunction\n" +
		"function void foo()\n" +
		"endfunction\n"
	img := compile(t, src)

	var buf bytes.Buffer
	require.NoError(t, objectfile.Write(&buf, img))

	got, err := objectfile.Read(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	var buf2 bytes.Buffer
	require.NoError(t, objectfile.Write(&buf2, got))

	assert.Equal(t, buf.String(), buf2.String(), "round-tripped image must re-serialize byte-identical (spec.md §8)")
}

func TestWriteConstantFoldedInitializer(t *testing.T) {
	img := compile(t, "int x = 2 + 3 * 4\nfunction void main()\nendfunction\n")
	require.Len(t, img.GlobalInts, 1)
	assert.Equal(t, 14, img.GlobalInts[0].InitValue)
}

func TestWriteNoUndefinedFunctionOperand(t *testing.T) {
	src := "function void main()\n" +
		"  foo(3)\n" +
		"endfunction\n" +
		"function void foo(int x)\n" +
		"endfunction\n"
	img := compile(t, src)

	var buf bytes.Buffer
	require.NoError(t, objectfile.Write(&buf, img))
	assert.NotContains(t, buf.String(), "UNDEFINED")
}

func TestReadRejectsTruncatedFile(t *testing.T) {
	_, err := objectfile.Read(bytes.NewReader([]byte("statements: 3\n")))
	assert.Error(t, err)
}
