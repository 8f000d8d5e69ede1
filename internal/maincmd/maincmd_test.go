package maincmd_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mna/mainer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nic-lang/nicc/internal/maincmd"
)

const src = "function void main()\nendfunction\n"

func TestCompileFileWritesObject(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "prog.nic")
	require.NoError(t, os.WriteFile(srcPath, []byte(src), 0o600))
	outPath := srcPath + "ic"

	var stdout, stderr bytes.Buffer
	stdio := mainer.Stdio{Stdout: &stdout, Stderr: &stderr}

	err := maincmd.CompileFile(context.Background(), stdio, srcPath, outPath, false, false, "")
	require.NoError(t, err)

	got, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(got), "main: 0")
}

func TestTokenizeFilesReportsTokens(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "prog.nic")
	require.NoError(t, os.WriteFile(srcPath, []byte(src), 0o600))

	var stdout, stderr bytes.Buffer
	stdio := mainer.Stdio{Stdout: &stdout, Stderr: &stderr}

	err := maincmd.TokenizeFiles(context.Background(), stdio, srcPath)
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "identifier")
}

func TestDisasmRoundTripsCompiledFile(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "prog.nic")
	require.NoError(t, os.WriteFile(srcPath, []byte(src), 0o600))
	outPath := srcPath + "ic"

	var compileOut bytes.Buffer
	stdio := mainer.Stdio{Stdout: &compileOut, Stderr: &compileOut}
	require.NoError(t, maincmd.CompileFile(context.Background(), stdio, srcPath, outPath, false, false, ""))

	var disasmOut bytes.Buffer
	disasmStdio := mainer.Stdio{Stdout: &disasmOut, Stderr: &disasmOut}
	require.NoError(t, maincmd.DisasmFiles(context.Background(), disasmStdio, outPath))
	assert.Contains(t, disasmOut.String(), "functions: 1")
}
