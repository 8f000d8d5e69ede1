package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/nic-lang/nicc/lang/scanner"
)

func (c *Cmd) Tokenize(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return TokenizeFiles(ctx, stdio, args...)
}

// TokenizeFiles runs only the scanner phase over each file and prints its
// token stream, one token per line, grounded on the teacher's own
// TokenizeFiles.
func TokenizeFiles(ctx context.Context, stdio mainer.Stdio, files ...string) error {
	var firstErr error
	for _, f := range files {
		toks, err := scanner.ScanFile(ctx, f)
		for _, tv := range toks {
			fmt.Fprintf(stdio.Stdout, "%s:%d: %s", f, tv.Value.Line, tv.Token)
			if tv.Value.Raw != "" {
				fmt.Fprintf(stdio.Stdout, " %q", tv.Value.Raw)
			}
			fmt.Fprintln(stdio.Stdout)
		}
		if err != nil {
			scanner.PrintError(stdio.Stderr, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
