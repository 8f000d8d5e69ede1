package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/nic-lang/nicc/lang/objectfile"
)

func (c *Cmd) Disasm(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return DisasmFiles(ctx, stdio, args...)
}

// DisasmFiles reads each object file and re-serializes it to stdout,
// the Go-idiomatic counterpart to the teacher's compiler.Dasm: a
// read-then-write round trip that exercises the same Read/Write pair the
// §8 "Round-trip" testable property requires byte-identical.
func DisasmFiles(ctx context.Context, stdio mainer.Stdio, files ...string) error {
	var firstErr error
	for _, f := range files {
		if err := disasmOne(stdio, f); err != nil {
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func disasmOne(stdio mainer.Stdio, path string) error {
	in, err := os.Open(path)
	if err != nil {
		return printError(stdio, err)
	}
	defer in.Close()

	img, err := objectfile.Read(in)
	if err != nil {
		return printError(stdio, fmt.Errorf("%s: %w", path, err))
	}

	fmt.Fprintf(stdio.Stdout, "# %s\n", path)
	if err := objectfile.Write(stdio.Stdout, img); err != nil {
		return printError(stdio, fmt.Errorf("%s: %w", path, err))
	}
	return nil
}
