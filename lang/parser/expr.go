package parser

import (
	"github.com/nic-lang/nicc/lang/builtin"
	"github.com/nic-lang/nicc/lang/expr"
	"github.com/nic-lang/nicc/lang/funtab"
	"github.com/nic-lang/nicc/lang/symtab"
	nictoken "github.com/nic-lang/nicc/lang/token"
)

// parseExpr builds one expression list in the given context mode,
// implementing spec.md §4.E: unary '-'/'~' normalization into a
// synthetic "(0 op expr)" EC, bracket counting via obr/cbr, array
// indexing and function calls recursing into fresh FIP argument lists,
// and mode-specific termination (a compare operator, "step", or
// end-of-line).
func (p *parser) parseExpr(mode exprMode) exprResult {
	var list expr.List
	pendingObr := 0
	unaryCloses := 0
	openParens := 0 // '(' opened in this list; a ')' beyond them belongs to the caller
	expectOperand := true

	for {
		if expectOperand {
			switch {
			case p.tok == nictoken.LPAREN:
				pendingObr++
				openParens++
				p.advance()
				continue
			case p.tok == nictoken.MINUS || p.tok == nictoken.TILDE:
				op := p.tok
				p.advance()
				list = append(list, expr.EC{
					Content: expr.IntConst, Value: 0,
					Obr: pendingObr + 1, HasOp: true, Op: op, FIPSlot: -1,
				})
				pendingObr = 0
				unaryCloses++
				continue
			default:
				ec, voidUsed, ok := p.parseOperand(pendingObr)
				if !ok {
					return exprResult{}
				}
				ec.Cbr += unaryCloses
				unaryCloses = 0
				pendingObr = 0
				list = append(list, ec)
				expectOperand = false
				if voidUsed {
					return exprResult{list: list, voidUsed: true, ok: true}
				}
			}
			continue
		}

		for p.tok == nictoken.RPAREN && openParens > 0 {
			if len(list) == 0 {
				p.errorf(p.val.Line, "unmatched ')'")
				p.advance()
				continue
			}
			list[len(list)-1].Cbr++
			openParens--
			p.advance()
		}

		switch {
		case mode == modeCompare && p.tok.IsCompare():
			return exprResult{list: list, compareOp: p.tok, ok: true}
		case mode == modeForStop && p.identIs("step"):
			return exprResult{list: list, ok: true}
		case p.tok == nictoken.TILDE:
			p.errorf(p.val.Line, "'~' is only valid as a unary prefix operator")
			p.advance()
		case p.tok.IsArithOp():
			op := p.tok
			list[len(list)-1].HasOp = true
			list[len(list)-1].Op = op
			p.advance()
			expectOperand = true
		default:
			return exprResult{list: list, ok: true}
		}
	}
}

// parseOperand parses one literal, variable, array index or function
// call, returning its EC, whether it is a void-returning call (invalid
// wherever a value is required), and whether parsing succeeded.
func (p *parser) parseOperand(pendingObr int) (expr.EC, bool, bool) {
	line := p.val.Line
	switch p.tok {
	case nictoken.INT:
		ec := expr.EC{Content: expr.IntConst, Value: int(p.val.Int), Obr: pendingObr, FIPSlot: -1}
		p.advance()
		return ec, false, true
	case nictoken.STRING:
		idx := p.strs.Intern(p.val.Str)
		ec := expr.EC{Content: expr.StringConst, Value: idx, Obr: pendingObr, FIPSlot: -1}
		p.advance()
		return ec, false, true
	case nictoken.IDENT:
		return p.parseIdentOperand(pendingObr, line)
	default:
		p.errorf(line, "expected an expression operand, found %s %q", p.tok, p.val.Raw)
		return expr.EC{}, false, false
	}
}

func (p *parser) parseIdentOperand(pendingObr, line int) (expr.EC, bool, bool) {
	name := p.val.Str
	p.advance()

	if p.tok == nictoken.LPAREN {
		return p.parseCall(name, line, pendingObr, true)
	}
	if p.tok == nictoken.LBRACK {
		return p.parseArrayIndex(name, line, pendingObr)
	}

	for _, rt := range [...]funtab.ReturnType{funtab.Int, funtab.Byte, funtab.String} {
		if res, ok := p.syms.Lookup(p.curFunc, name, localScalarKind(rt)); ok {
			p.markUsed(res)
			// A const resolves to its literal value at parse time: it has
			// no storage and no object-file tag of its own, only "c"/"C".
			if res.Kind == symtab.ConstInt {
				return expr.EC{Content: expr.IntConst, Value: res.Sym.ConstValue, Obr: pendingObr, FIPSlot: -1}, false, true
			}
			if res.Kind == symtab.ConstString {
				return expr.EC{Content: expr.StringConst, Value: res.Sym.ConstValue, Obr: pendingObr, FIPSlot: -1}, false, true
			}
			ec := expr.EC{Content: expr.Variable, VarKind: expr.VarKind(res.Kind), Value: res.Idx, Obr: pendingObr, FIPSlot: -1}
			return ec, false, true
		}
	}
	p.errorf(line, "undeclared variable %q", name)
	return expr.EC{}, false, false
}

func (p *parser) parseArrayIndex(name string, line, pendingObr int) (expr.EC, bool, bool) {
	p.advance() // consume '['
	idxRes := p.parseExpr(modeValue)
	if !idxRes.ok {
		return expr.EC{}, false, false
	}
	p.expect(nictoken.RBRACK)

	for _, rt := range [...]funtab.ReturnType{funtab.Int, funtab.Byte, funtab.String} {
		if res, ok := p.syms.Lookup(p.curFunc, name, localArrayKind(rt)); ok {
			p.markUsed(res)
			fip := expr.NewFIP(expr.Content(0), 0, 1) // zero Content: a bare array index, not a call
			fip.ArgLists[0] = idxRes.list
			fipIdx := p.fips.Add(fip)
			ec := expr.EC{Content: expr.ArrayVariable, VarKind: expr.VarKind(res.Kind), Value: res.Idx, Obr: pendingObr, FIPSlot: fipIdx}
			return ec, false, true
		}
	}
	p.errorf(line, "undeclared array %q", name)
	return expr.EC{}, false, false
}

// parseCall parses "(arg, arg, ...)" after name has already been
// consumed, resolving name against the builtin catalog, then defined
// functions, then capturing it as an undefined forward reference as a
// last resort, per spec.md component D.
func (p *parser) parseCall(name string, line, pendingObr int, needsReturnValue bool) (expr.EC, bool, bool) {
	p.advance() // consume '('
	var argLists []expr.List
	for p.tok != nictoken.RPAREN && p.tok != nictoken.EOF {
		argRes := p.parseExpr(modeValue)
		if !argRes.ok {
			return expr.EC{}, false, false
		}
		if argRes.voidUsed {
			p.errorf(line, "argument to %q uses a void-returning function as a value", name)
		}
		argLists = append(argLists, argRes.list)
		if p.tok == nictoken.COMMA {
			p.advance()
			continue
		}
		break
	}
	p.expect(nictoken.RPAREN)
	argc := len(argLists)

	if bi, biIdx, ok := builtin.LookupIndex(name); ok {
		if !bi.CheckArity(argc) {
			p.errorf(line, "%q called with %d argument(s)", name, argc)
		}
		fip := expr.NewFIP(expr.BuiltinFunc, biIdx, argc)
		copy(fip.ArgLists, argLists)
		fipIdx := p.fips.Add(fip)
		ec := expr.EC{Content: expr.BuiltinFunc, Value: biIdx, Obr: pendingObr, FIPSlot: fipIdx}
		return ec, bi.ReturnType == builtin.Void, true
	}

	if fn, idx, ok := p.funcs.FindDefined(name); ok {
		if len(fn.Args) != argc {
			p.errorf(line, "%q called with %d argument(s), declared with %d", name, argc, len(fn.Args))
		}
		fip := expr.NewFIP(expr.UserFunc, idx, argc)
		copy(fip.ArgLists, argLists)
		fipIdx := p.fips.Add(fip)
		fn.UsedCount++
		p.funcs.SetAt(idx, fn)
		ec := expr.EC{Content: expr.UserFunc, Value: idx, Obr: pendingObr, FIPSlot: fipIdx}
		return ec, fn.ReturnType == funtab.Void, true
	}

	undefIdx := p.funcs.CaptureUndefined(name, line, argc, needsReturnValue)
	fip := expr.NewFIP(expr.UndefinedFunc, undefIdx, argc)
	copy(fip.ArgLists, argLists)
	fipIdx := p.fips.Add(fip)
	ec := expr.EC{Content: expr.UndefinedFunc, Value: undefIdx, Obr: pendingObr, FIPSlot: fipIdx}
	return ec, false, true
}

func (p *parser) markUsed(res symtab.Resolved) {
	sym := res.Sym
	sym.UsedCount++
	p.syms.SetAt(res.Kind, res.Idx, sym)
}

func (p *parser) markSet(res symtab.Resolved) {
	sym := res.Sym
	sym.SetCount++
	p.syms.SetAt(res.Kind, res.Idx, sym)
}
