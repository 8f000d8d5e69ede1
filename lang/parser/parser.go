// Package parser implements nic's statement parser and control-flow
// stack (spec.md component H) together with the expression parser
// (component E) it drives at assignment, condition and loop-bound
// positions. It is the single entry point that turns a source file into
// a fully resolved statement array, symbol tables, function table and
// postfix/string pools ready for lang/objectfile to emit.
package parser

import (
	"context"
	"fmt"
	"go/token"
	"os"

	"github.com/nic-lang/nicc/lang/arena"
	"github.com/nic-lang/nicc/lang/compiler"
	"github.com/nic-lang/nicc/lang/expr"
	"github.com/nic-lang/nicc/lang/funtab"
	"github.com/nic-lang/nicc/lang/ir"
	"github.com/nic-lang/nicc/lang/postfix"
	"github.com/nic-lang/nicc/lang/scanner"
	"github.com/nic-lang/nicc/lang/symtab"
	nictoken "github.com/nic-lang/nicc/lang/token"
)

// Program is the complete result of parsing one source file: every table
// and pool lang/objectfile needs to write the final image, plus the
// resolved index of the main function.
type Program struct {
	Symbols    *symtab.Tables
	Funcs      *funtab.Table
	Statements *ir.Statements
	Postfix    *arena.Pool[postfix.Slot]
	FIPs       *arena.Pool[expr.FIP]
	Strings    *postfix.StringPool
	Alloc      *arena.Allocator
	MainFunc   int
	Warnings   []string
}

// ParseFile reads and parses a single source file.
func ParseFile(ctx context.Context, filename string) (*Program, error) {
	src, err := os.ReadFile(filename)
	if err != nil {
		var el scanner.ErrorList
		el.Add(token.Position{Filename: filename}, err.Error())
		return nil, el.Err()
	}
	return ParseSource(ctx, filename, src)
}

// ParseSource parses src, attributing filename to any reported errors.
// The returned error, if non-nil, is a scanner.ErrorList holding every
// syntax, scope and function-resolution error found (spec.md §7's
// "collect every error, never stop at the first"), a plain error when
// main is missing or not void, or a *compiler.AbortError. On every error
// the arena teardown sweep has already run.
func ParseSource(ctx context.Context, filename string, src []byte) (prog *Program, err error) {
	p := &parser{filename: filename, alloc: arena.New()}
	// Deferred before Recover so it runs after Recover has stored an
	// AbortError in err.
	defer func() {
		if err != nil {
			p.alloc.FreeAllHoles()
		}
	}()
	// Resource exhaustion and internal invariant violations unwind here via
	// panic/recover rather than threading an error return through every
	// intermediate parsing frame, the Go-idiomatic substitute for the
	// original's setjmp/longjmp (spec.md §7, §9 DESIGN NOTES).
	defer compiler.Recover(&err)

	p.scanner.Init(filename, src, p.errors.Add)

	p.syms = symtab.New()
	p.funcs = funtab.New()
	p.stmts = ir.New()
	p.slots = arena.NewPool[postfix.Slot](p.alloc, "postfix")
	p.fips = arena.NewPool[expr.FIP](p.alloc, "fip")
	p.strs = postfix.NewStringPool()
	p.conv = postfix.NewConverter(p.slots, p.fips)

	p.advance()
	p.parseProgram()

	p.errors.Sort()
	if err := p.errors.Err(); err != nil {
		p.alloc.FreeAllHoles()
		return nil, err
	}

	for _, rerr := range p.funcs.Resolve() {
		p.errors.Add(token.Position{Filename: filename}, rerr.Error())
	}
	p.errors.Sort()
	if err := p.errors.Err(); err != nil {
		p.alloc.FreeAllHoles()
		return nil, err
	}
	// Every Undefined entry now carries a valid ResolvedIdx; retarget the
	// FIP and postfix operands that still reference the placeholder so no
	// UNDEFINED_FUNCTION content reaches the object writer (spec.md §8).
	p.funcs.RetargetResolved(p.fips, p.slots)

	mainFn, mainFuncIdx, ok := p.funcs.FindDefined("main")
	if !ok {
		p.alloc.FreeAllHoles()
		return nil, fmt.Errorf("%s: no main function defined", filename)
	}
	if mainFn.ReturnType != funtab.Void {
		p.alloc.FreeAllHoles()
		return nil, fmt.Errorf("%s: main function must return void", filename)
	}

	// Component G runs once the whole program is in postfix form: every
	// slot (top-level expressions and every FIP argument, which share the
	// same pool) folds in place, by index, so no reference held elsewhere
	// (a FIP's ArgSlots, a statement's postfix field) is invalidated.
	postfix.OptimizeAll(p.slots, p.strs)

	return &Program{
		Symbols:    p.syms,
		Funcs:      p.funcs,
		Statements: p.stmts,
		Postfix:    p.slots,
		FIPs:       p.fips,
		Strings:    p.strs,
		Alloc:      p.alloc,
		MainFunc:   mainFuncIdx,
		Warnings:   p.warnings,
	}, nil
}

// parser holds all per-compilation state; a fresh parser is created for
// every ParseSource call, so nothing survives between invocations
// (spec.md §5 reentrancy requirement).
type parser struct {
	filename string
	scanner  scanner.Scanner
	errors   scanner.ErrorList
	warnings []string

	tok nictoken.Token
	val nictoken.Value

	syms  *symtab.Tables
	funcs *funtab.Table
	stmts *ir.Statements

	alloc *arena.Allocator
	slots *arena.Pool[postfix.Slot]
	fips  *arena.Pool[expr.FIP]
	strs  *postfix.StringPool
	conv  *postfix.Converter

	curFunc    string
	curFuncRet funtab.ReturnType
	sawReturn  bool

	ctrl controlStack
}

func (p *parser) advance() {
	// A '-' right after an operand is the binary operator; anywhere else a
	// '-' directly followed by a digit folds into the number as its sign.
	switch p.tok {
	case nictoken.INT, nictoken.STRING, nictoken.IDENT, nictoken.RPAREN, nictoken.RBRACK:
		p.scanner.SetMinusIsSign(false)
	default:
		p.scanner.SetMinusIsSign(true)
	}
	p.tok = p.scanner.Scan(&p.val)
}

func (p *parser) errorf(line int, format string, args ...any) {
	p.errors.Add(token.Position{Filename: p.filename, Line: line}, fmt.Sprintf(format, args...))
}

func (p *parser) warnf(line int, format string, args ...any) {
	p.warnings = append(p.warnings, fmt.Sprintf("%s:%d: warning: %s", p.filename, line, fmt.Sprintf(format, args...)))
}

// expect consumes tok if it is current, reporting an error otherwise.
func (p *parser) expect(tok nictoken.Token) bool {
	if p.tok != tok {
		p.errorf(p.val.Line, "expected %s, found %s %q", tok.GoString(), p.tok, p.val.Raw)
		return false
	}
	p.advance()
	return true
}

// expectNewline consumes a statement terminator: NEWLINE or EOF (the
// last line of a file need not end with one).
func (p *parser) expectNewline() {
	if p.tok == nictoken.NEWLINE {
		p.advance()
		return
	}
	if p.tok == nictoken.EOF {
		return
	}
	p.errorf(p.val.Line, "expected end of line, found %s %q", p.tok, p.val.Raw)
	p.skipToNewline()
}

// skipToNewline discards tokens up to and including the next NEWLINE (or
// EOF), the statement parser's error-recovery point.
func (p *parser) skipToNewline() {
	for p.tok != nictoken.NEWLINE && p.tok != nictoken.EOF {
		p.advance()
	}
	if p.tok == nictoken.NEWLINE {
		p.advance()
	}
}

// identIs reports whether the current token is the identifier kw.
func (p *parser) identIs(kw string) bool {
	return p.tok == nictoken.IDENT && p.val.Str == kw
}

// parseProgram drives the top level: global declarations and function
// definitions, per spec.md §4.H's "first identifier token routes to...".
func (p *parser) parseProgram() {
	for p.tok != nictoken.EOF {
		switch {
		case p.tok == nictoken.NEWLINE:
			p.advance()
		case p.identIs("function"):
			p.parseFunction()
		case p.identIs("const") || p.identIs("static"):
			p.errorf(p.val.Line, "%q is only valid inside a function body", p.val.Str)
			p.skipToNewline()
		case p.tok == nictoken.IDENT:
			if _, ok := typeKeyword(p.val.Str); ok {
				p.parseVarDecl(true)
				break
			}
			p.errorf(p.val.Line, "unexpected top-level statement %q, expected a declaration or function", p.val.Str)
			p.skipToNewline()
		default:
			p.errorf(p.val.Line, "unexpected token %s %q at top level", p.tok, p.val.Raw)
			p.skipToNewline()
		}
	}
}

// parseFunction parses one "function [type|void] name(args) [returns type]
// ... endfunction" block, resetting the local symbol tables first since
// locals are per-function scratch space (spec.md §4.C).
func (p *parser) parseFunction() {
	line := p.val.Line
	p.advance() // consume 'function'

	retType := funtab.Void
	if p.identIs("void") {
		p.advance()
	} else if rt, ok := typeKeyword(p.val.Str); ok && p.tok == nictoken.IDENT {
		retType = rt
		p.advance()
	}

	if p.tok != nictoken.IDENT {
		p.errorf(p.val.Line, "expected a function name")
		p.skipToNewline()
		return
	}
	name := p.val.Str
	p.advance()

	p.syms.ResetLocals()
	p.curFunc = name
	p.sawReturn = false
	p.ctrl = controlStack{}

	args := p.parseFunctionParams()

	if p.identIs("returns") {
		p.advance()
		rt, ok := typeKeyword(p.val.Str)
		if !ok {
			p.errorf(p.val.Line, "expected a return type after 'returns'")
		} else {
			retType = rt
			p.advance()
		}
	}
	p.curFuncRet = retType
	p.expectNewline()

	if _, _, exists := p.funcs.FindDefined(name); exists {
		p.errorf(line, "function %q already defined", name)
	}

	firstStmt := p.stmts.NextIdx()
	p.parseBlockUntil("endfunction")
	if !p.ctrl.empty() {
		p.errorf(line, "function %q has an unclosed if/while/loop/for/repeat block", name)
	}

	if retType == funtab.Void {
		p.emit(ir.Statement{Line: p.val.Line, Kind: ir.Return})
	} else if !p.sawReturn {
		p.errorf(line, "function %q must return a value on every path", name)
	}

	p.funcs.Define(funtab.Function{
		Name:              name,
		Line:              line,
		FirstStmt:         firstStmt,
		ReturnType:        retType,
		Args:              args,
		LocalInts:         p.syms.All(symtab.LocalInt),
		LocalBytes:        p.syms.All(symtab.LocalByte),
		LocalStrings:      p.syms.All(symtab.LocalString),
		LocalIntArrays:    p.syms.All(symtab.LocalIntArray),
		LocalByteArrays:   p.syms.All(symtab.LocalByteArray),
		LocalStringArrays: p.syms.All(symtab.LocalStringArray),
	})
}

// parseFunctionParams parses "(type name, type name, ...)", declaring
// each parameter as a local scalar. Go's explicit parameter list doesn't
// map onto the EC/postfix model the rest of the expression grammar uses,
// so this is its own routine rather than a fifth expression-parser mode.
func (p *parser) parseFunctionParams() []funtab.Arg {
	if !p.expect(nictoken.LPAREN) {
		return nil
	}
	var args []funtab.Arg
	for p.tok != nictoken.RPAREN && p.tok != nictoken.EOF {
		rt, ok := typeKeyword(p.val.Str)
		if p.tok != nictoken.IDENT || !ok {
			p.errorf(p.val.Line, "expected a parameter type")
			break
		}
		p.advance()
		if p.tok != nictoken.IDENT {
			p.errorf(p.val.Line, "expected a parameter name")
			break
		}
		argName, line := p.val.Str, p.val.Line
		p.advance()

		kind := scalarKind(rt, false)
		idx := p.syms.Insert(symtab.Symbol{Name: argName, Kind: kind, Line: line})
		args = append(args, funtab.Arg{VarKind: kind, VarIdx: idx, Type: rt})

		if p.tok == nictoken.COMMA {
			p.advance()
			continue
		}
		break
	}
	p.expect(nictoken.RPAREN)
	return args
}

// parseVarDecl parses one "[static] [const] type name [= lit]" or
// "[static] type name[size]" declaration, global or local depending on
// where it is called from, per spec.md §4.H's Declarations paragraph.
func (p *parser) parseVarDecl(global bool) {
	isStatic := false
	if p.identIs("static") {
		isStatic = true
		p.advance()
	}
	isConst := false
	if p.identIs("const") {
		isConst = true
		p.advance()
	}
	if isStatic && isConst {
		p.errorf(p.val.Line, "a declaration cannot be both static and const")
	}
	if isStatic && global {
		p.errorf(p.val.Line, "static is only valid on a local declaration")
	}

	rt, ok := typeKeyword(p.val.Str)
	if p.tok != nictoken.IDENT || !ok {
		p.errorf(p.val.Line, "expected a type (int, byte or string)")
		p.skipToNewline()
		return
	}
	p.advance()

	if p.tok != nictoken.IDENT {
		p.errorf(p.val.Line, "expected a variable name")
		p.skipToNewline()
		return
	}
	name, line := p.val.Str, p.val.Line
	p.advance()

	isArray := false
	arrayLen := 0
	if p.tok == nictoken.LBRACK {
		isArray = true
		p.advance()
		arrayLen = p.parseArraySize()
		p.expect(nictoken.RBRACK)
	}

	lookupKind := localScalarKind(rt)
	if isArray {
		lookupKind = localArrayKind(rt)
	}
	if !isConst {
		switch p.syms.CheckDeclare(p.curFunc, name, lookupKind) {
		case symtab.RedefinesInScope:
			p.errorf(line, "%q already declared in this scope", name)
		case symtab.ShadowsOuterScope:
			p.warnf(line, "declaration of %q shadows an outer-scope symbol", name)
		}
	}

	sym := symtab.Symbol{Name: name, ArrayLen: arrayLen, Line: line, IsStatic: isStatic, MangledFor: p.curFunc}

	switch {
	case isConst && rt == funtab.String:
		sym.Kind = symtab.ConstString
		p.expect(nictoken.EQ)
		sym.ConstValue = p.parseStringLiteralValue()
	case isConst:
		sym.Kind = symtab.ConstInt
		p.expect(nictoken.EQ)
		sym.ConstValue = p.parseIntLiteralValue()
	case isStatic:
		sym.Name = symtab.Mangle(p.curFunc, name)
		if isArray {
			sym.Kind = arrayKind(rt, true)
		} else {
			sym.Kind = scalarKind(rt, true)
		}
		p.parseOptionalInit(&sym, rt, isArray)
	default:
		if isArray {
			sym.Kind = arrayKind(rt, global)
		} else {
			sym.Kind = scalarKind(rt, global)
		}
		p.parseOptionalInit(&sym, rt, isArray)
	}

	p.syms.Insert(sym)
	p.expectNewline()
}

func (p *parser) parseOptionalInit(sym *symtab.Symbol, rt funtab.ReturnType, isArray bool) {
	if isArray || p.tok != nictoken.EQ {
		return
	}
	p.advance()
	sym.HasInit = true
	if rt == funtab.String {
		sym.InitValue = p.parseStringLiteralValue()
		return
	}
	// An int/byte initializer is a constant expression, folded here into a
	// single value; it is converted in a scratch pool so it leaves no slot
	// in the program's postfix pool.
	line := p.val.Line
	res := p.parseExpr(modeValue)
	if !res.ok {
		return
	}
	scratch := postfix.NewConverter(arena.NewPool[postfix.Slot](arena.New(), "init"), p.fips)
	folded := postfix.FoldConstants(scratch.Slots.At(scratch.Convert(res.list)), p.strs)
	if len(folded) != 2 || folded[0].IsOperator || folded[0].Content != expr.IntConst {
		p.errorf(line, "initializer must be a constant integer expression")
		return
	}
	sym.InitValue = folded[0].Value
}

// parseArraySize parses an array bound: an integer literal or the name
// of a previously declared const int.
func (p *parser) parseArraySize() int {
	if p.tok == nictoken.INT {
		n := int(p.val.Int)
		p.advance()
		return n
	}
	if p.tok == nictoken.IDENT {
		name := p.val.Str
		if sym, _, ok := p.syms.FindInKind(symtab.ConstInt, name); ok {
			p.advance()
			return sym.ConstValue
		}
	}
	p.errorf(p.val.Line, "expected a constant array size")
	return 0
}

func (p *parser) parseIntLiteralValue() int {
	neg := false
	if p.tok == nictoken.MINUS {
		neg = true
		p.advance()
	}
	if p.tok != nictoken.INT {
		p.errorf(p.val.Line, "expected an integer literal")
		return 0
	}
	v := int(p.val.Int)
	p.advance()
	if neg {
		v = -v
	}
	return v
}

func (p *parser) parseStringLiteralValue() int {
	if p.tok != nictoken.STRING {
		p.errorf(p.val.Line, "expected a string literal")
		return p.strs.Intern("")
	}
	idx := p.strs.Intern(p.val.Str)
	p.advance()
	return idx
}

// emit appends stmt to the statement array, defaulting Next to the
// following index (plain fallthrough); callers that need a different
// control-flow edge (loop back-edges, break/continue targets, IF's
// false branch) patch it afterwards via p.stmts.Set.
func (p *parser) emit(stmt ir.Statement) int {
	idx := p.stmts.NextIdx()
	stmt.Next = idx + 1
	return p.stmts.Add(stmt)
}
