// Package maincmd implements nicc's command dispatch: a Cmd struct
// parsed by github.com/mna/mainer, routed by reflection to one method
// per subcommand, exactly as the teacher's own internal/maincmd does.
package maincmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/mna/mainer"
)

const binName = "nicc"

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...] <command> <file>
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] <command> <file>
       %[1]s -h|--help
       %[1]s --version

Compiler for the nic programming language, targeting resource-constrained
embedded MCUs.

The <command> can be one of:
       compile                   Compile <file> to an object file
                                 (default command if none is given).
       tokenize                  Run only the scanner and print the
                                 resulting token stream.
       parse                     Run the parser and print the resolved
                                 statement/postfix intermediate form.
       disasm                    Disassemble a previously produced
                                 object file back to its textual form.

Valid flag options are:
       -h --help                 Show this help and exit.
       --version                 Print version and exit.
       -v --verbose              Verbose diagnostics to stderr (with compile).
       -vv --very-verbose        Very verbose diagnostics (memory stats,
                                 optimizer decisions, postfix dumps).
       -o --output <file>        Object file path (default: <source>ic).
       -u --upload <port>        Upload the produced object file to a
                                 target device over a serial port at
                                 115200 8N1 (host builds only).
`, binName)
)

// Cmd is nicc's top-level command: mainer parses flags into its exported
// fields, Validate resolves the subcommand, Main dispatches and maps the
// result to a process exit code.
type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"version"`

	Verbose     bool   `flag:"v,verbose"`
	VeryVerbose bool   `flag:"vv,very-verbose"`
	Output      string `flag:"o,output"`
	UploadPort  string `flag:"u,upload"`

	args  []string
	flags map[string]bool
	cmdFn func(context.Context, mainer.Stdio, []string) error
}

func (c *Cmd) SetArgs(args []string) {
	c.args = args
}

func (c *Cmd) SetFlags(flags map[string]bool) {
	c.flags = flags
}

// Validate resolves the subcommand name, defaulting to "compile" when the
// first positional argument looks like a source file rather than a known
// command, so `nicc prog.nic` keeps working per spec.md §6's "one
// mandatory positional argument" CLI shape.
func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}
	if len(c.args) == 0 {
		return errors.New("no source file or command specified")
	}

	commands := buildCmds(c)
	cmdName := c.args[0]
	rest := c.args[1:]
	if _, ok := commands[cmdName]; !ok {
		cmdName = "compile"
		rest = c.args
	}

	c.cmdFn = commands[cmdName]
	if c.cmdFn == nil {
		return fmt.Errorf("unknown command: %s", c.args[0])
	}
	if len(rest) == 0 {
		return fmt.Errorf("%s: a source file must be provided", cmdName)
	}
	c.args = append([]string{cmdName}, rest...)

	if c.UploadPort != "" && cmdName != "compile" {
		return fmt.Errorf("%s: -u/--upload is only valid with 'compile'", cmdName)
	}
	if c.Output != "" && cmdName != "compile" {
		return fmt.Errorf("%s: -o/--output is only valid with 'compile'", cmdName)
	}
	return nil
}

func printError(stdio mainer.Stdio, err error) error {
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
	}
	return err
}

func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{
		EnvVars:   false,
		EnvPrefix: binName + "_",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success
	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)
	if err := c.cmdFn(ctx, stdio, c.args[1:]); err != nil {
		// each command takes care of printing its own errors
		return mainer.Failure
	}
	return mainer.Success
}

// buildCmds discovers every Cmd method matching the dispatch signature
// (ctx, mainer.Stdio, []string) error, indexed by lowercased method name,
// exactly as the teacher's own buildCmds does.
func buildCmds(v interface{}) map[string]func(context.Context, mainer.Stdio, []string) error {
	cmds := make(map[string]func(context.Context, mainer.Stdio, []string) error)

	vv := reflect.ValueOf(v)
	vt := vv.Type()
	for i := 0; i < vt.NumMethod(); i++ {
		m := vt.Method(i)
		mt := m.Type

		if mt.NumIn() != 4 || mt.NumOut() != 1 {
			continue
		}
		if rt := mt.Out(0); rt.Kind() != reflect.Interface || rt.Name() != "error" {
			continue
		}
		if p0 := mt.In(0); p0.Kind() != reflect.Ptr || p0.Elem().Name() != "Cmd" {
			continue
		}
		if p1 := mt.In(1); p1.Kind() != reflect.Interface || p1.Name() != "Context" {
			continue
		}
		if p2 := mt.In(2); p2.Kind() != reflect.Struct || p2.Name() != "Stdio" {
			continue
		}
		if p3 := mt.In(3); p3.Kind() != reflect.Slice || p3.Elem().Name() != "string" {
			continue
		}
		cmds[strings.ToLower(m.Name)] = vv.Method(i).Interface().(func(context.Context, mainer.Stdio, []string) error)
	}
	return cmds
}
