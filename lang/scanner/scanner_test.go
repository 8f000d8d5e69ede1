package scanner_test

import (
	"flag"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nic-lang/nicc/internal/filetest"
	"github.com/nic-lang/nicc/lang/scanner"
	"github.com/nic-lang/nicc/lang/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testUpdateScannerTests = flag.Bool("test.update-scanner-tests", false, "If set, replace expected scanner test results with actual results.")

func TestScan(t *testing.T) {
	srcDir, resultDir := filepath.Join("testdata", "in"), filepath.Join("testdata", "out")

	for _, fi := range filetest.SourceFiles(t, srcDir, ".nic") {
		t.Run(fi.Name(), func(t *testing.T) {
			toks, err := scanner.ScanFile(nil, filepath.Join(srcDir, fi.Name()))

			var out, errOut strings.Builder
			for _, tv := range toks {
				fmt.Fprintf(&out, "%d:%s %q\n", tv.Value.Line, tv.Token, tv.Value.Raw)
			}
			if err != nil {
				fmt.Fprintln(&errOut, err)
			}

			filetest.DiffOutput(t, fi, out.String(), resultDir, testUpdateScannerTests)
			filetest.DiffErrors(t, fi, errOut.String(), resultDir, testUpdateScannerTests)
		})
	}
}

func TestScanSourceBasic(t *testing.T) {
	toks, err := scanner.ScanSource("t.nic", []byte("x = 1 + 2\n"))
	require.NoError(t, err)

	require.Len(t, toks, 7)
	assert.Equal(t, token.IDENT, toks[0].Token)
	assert.Equal(t, "x", toks[0].Value.Str)
	assert.Equal(t, token.EQ, toks[1].Token)
	assert.Equal(t, token.INT, toks[2].Token)
	assert.EqualValues(t, 1, toks[2].Value.Int)
	assert.Equal(t, token.PLUS, toks[3].Token)
	assert.Equal(t, token.INT, toks[4].Token)
	assert.EqualValues(t, 2, toks[4].Value.Int)
	assert.Equal(t, token.EOF, toks[6].Token)
}

func TestScanDomainLiterals(t *testing.T) {
	toks, err := scanner.ScanSource("t.nic", []byte("p = GPIOC\n"))
	require.NoError(t, err)
	require.Len(t, toks, 5)
	assert.Equal(t, token.INT, toks[2].Token)
	assert.EqualValues(t, 2, toks[2].Value.Int)
	assert.Equal(t, token.NEWLINE, toks[3].Token)
}

func TestScanHexAndBinary(t *testing.T) {
	toks, err := scanner.ScanSource("t.nic", []byte("0x1F 0b101\n"))
	require.NoError(t, err)
	assert.EqualValues(t, 31, toks[0].Value.Int)
	assert.EqualValues(t, 5, toks[1].Value.Int)
}

func TestScanString(t *testing.T) {
	toks, err := scanner.ScanSource("t.nic", []byte(`s = "hello\n"` + "\n"))
	require.NoError(t, err)
	require.Len(t, toks, 5)
	assert.Equal(t, token.STRING, toks[2].Token)
	assert.Equal(t, "hello\n", toks[2].Value.Str)
}

func TestScanUnterminatedString(t *testing.T) {
	_, err := scanner.ScanSource("t.nic", []byte(`s = "hello`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not terminated")
}

func TestScanLineComment(t *testing.T) {
	toks, err := scanner.ScanSource("t.nic", []byte("x = 1 // trailing comment\ny = 2\n"))
	require.NoError(t, err)
	// comments never produce tokens: x = 1 <EOL implicit>, y = 2, EOF
	var idents int
	for _, tv := range toks {
		if tv.Token == token.IDENT {
			idents++
		}
	}
	assert.Equal(t, 2, idents)
}

func TestScanEOFLiteral(t *testing.T) {
	toks, err := scanner.ScanSource("t.nic", []byte("x = EOF\n"))
	require.NoError(t, err)
	require.Len(t, toks, 5)
	assert.Equal(t, token.INT, toks[2].Token)
	assert.EqualValues(t, -1, toks[2].Value.Int)
}
