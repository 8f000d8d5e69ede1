package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/nic-lang/nicc/lang/objectfile"
	"github.com/nic-lang/nicc/lang/parser"
	"github.com/nic-lang/nicc/lang/scanner"
)

func (c *Cmd) Parse(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return ParseFiles(ctx, stdio, c.VeryVerbose, args...)
}

// ParseFiles runs the parser (statement + expression + resolution passes)
// over each file and prints the resulting intermediate form in the same
// section-ordered textual shape objectfile.Write uses, since nic's IR is
// a flat statement/postfix image rather than a tree AST: there is no
// separate resolver phase to print, as symbol and function resolution
// happen inline in the same pass (spec.md §4.D-§4.H). With veryVerbose,
// the warnings collected during parsing are printed first.
func ParseFiles(ctx context.Context, stdio mainer.Stdio, veryVerbose bool, files ...string) error {
	var firstErr error
	for _, f := range files {
		prog, err := parser.ParseFile(ctx, f)
		if err != nil {
			scanner.PrintError(stdio.Stderr, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		if veryVerbose {
			for _, w := range prog.Warnings {
				fmt.Fprintln(stdio.Stderr, w)
			}
		}

		fmt.Fprintf(stdio.Stdout, "# %s\n", f)
		img := objectfile.FromProgram(prog)
		if err := objectfile.Write(stdio.Stdout, img); err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			if firstErr == nil {
				firstErr = err
			}
		}
		prog.Alloc.FreeAllHoles()
	}
	return firstErr
}
