package maincmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mna/mainer"

	"github.com/nic-lang/nicc/lang/objectfile"
	"github.com/nic-lang/nicc/lang/parser"
	"github.com/nic-lang/nicc/lang/scanner"
)

func (c *Cmd) Compile(ctx context.Context, stdio mainer.Stdio, args []string) error {
	if len(args) != 1 {
		return printError(stdio, fmt.Errorf("compile: exactly one source file is required, got %d", len(args)))
	}
	out := c.Output
	if out == "" {
		out = args[0] + "ic" // spec.md §6: "<source>ic"
	}
	return CompileFile(ctx, stdio, args[0], out, c.Verbose, c.VeryVerbose, c.UploadPort)
}

// CompileFile runs the full pipeline (scan, parse, resolve, optimize,
// write) for a single source file. verbose/veryVerbose control diagnostic
// output to stdio.Stderr, per spec.md §6's -v/-vv flags.
func CompileFile(ctx context.Context, stdio mainer.Stdio, src, out string, verbose, veryVerbose bool, uploadPort string) error {
	if veryVerbose {
		fmt.Fprintf(stdio.Stderr, "nicc: compiling %s\n", src)
	}

	prog, err := parser.ParseFile(ctx, src)
	if err != nil {
		scanner.PrintError(stdio.Stderr, err)
		return err
	}
	defer prog.Alloc.FreeAllHoles()

	if verbose || veryVerbose {
		for _, w := range prog.Warnings {
			fmt.Fprintln(stdio.Stderr, w)
		}
	}
	if veryVerbose {
		fmt.Fprintf(stdio.Stderr, "nicc: %d statements, %d postfix slots, %d fip slots, %d strings\n",
			prog.Statements.Len(), prog.Postfix.Len(), prog.FIPs.Len(), prog.Strings.Len())
	}

	img := objectfile.FromProgram(prog)

	f, err := os.Create(out)
	if err != nil {
		return printError(stdio, err)
	}
	defer f.Close()

	if err := objectfile.Write(f, img); err != nil {
		return printError(stdio, fmt.Errorf("writing %s: %w", out, err))
	}
	if verbose || veryVerbose {
		fmt.Fprintf(stdio.Stderr, "nicc: wrote %s\n", out)
	}

	if uploadPort != "" {
		return printError(stdio, uploadObjectFile(out, uploadPort))
	}
	return nil
}

// uploadObjectFile is the host-build-only serial upload path described in
// spec.md §6 as "not part of the core — external collaborator". No
// serial-port library is part of this module's dependency set, so this
// reports the limitation rather than fabricating a transport.
func uploadObjectFile(objFile, port string) error {
	return fmt.Errorf("upload to %s: serial upload is a host-build collaborator, not implemented in this build (object file %s was written)", strings.TrimSpace(port), objFile)
}
