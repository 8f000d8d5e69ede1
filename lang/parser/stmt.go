package parser

import (
	"github.com/nic-lang/nicc/lang/expr"
	"github.com/nic-lang/nicc/lang/funtab"
	"github.com/nic-lang/nicc/lang/ir"
	"github.com/nic-lang/nicc/lang/symtab"
	nictoken "github.com/nic-lang/nicc/lang/token"
)

// parseBlockUntil consumes statements until it sees endKW at the start of
// a line (function bodies and loop/if bodies all share this driver), per
// spec.md §4.H's line-oriented dispatch.
func (p *parser) parseBlockUntil(endKW string) {
	for {
		if p.tok == nictoken.NEWLINE {
			p.advance()
			continue
		}
		if p.tok == nictoken.EOF {
			p.errorf(p.val.Line, "unexpected end of file, expected %q", endKW)
			return
		}
		if p.identIs(endKW) {
			p.advance()
			p.expectNewline()
			return
		}
		p.parseStatement()
	}
}

// parseStatement routes on the first identifier of the line, per
// spec.md §4.H.
func (p *parser) parseStatement() {
	if p.tok != nictoken.IDENT {
		p.errorf(p.val.Line, "expected a statement, found %s %q", p.tok, p.val.Raw)
		p.skipToNewline()
		return
	}
	switch p.val.Str {
	case "int", "byte", "string", "static", "const":
		p.parseVarDecl(false)
	case "if":
		p.parseIf()
	case "elseif":
		p.parseElseif()
	case "else":
		p.parseElse()
	case "endif":
		p.parseEndif()
	case "while":
		p.parseWhile()
	case "endwhile":
		p.parseEndCloser(frameWhile, ir.EndWhile, "while")
	case "loop":
		p.parseLoop()
	case "endloop":
		p.parseEndCloser(frameLoop, ir.EndLoop, "loop")
	case "for":
		p.parseFor()
	case "endfor":
		p.parseEndCloser(frameFor, ir.EndFor, "for")
	case "repeat":
		p.parseRepeat()
	case "endrepeat":
		p.parseEndCloser(frameRepeat, ir.EndRepeat, "repeat")
	case "break":
		p.parseBreak()
	case "continue":
		p.parseContinue()
	case "return":
		p.parseReturn()
	default:
		p.parseAssignOrCall()
	}
}

func (p *parser) parseIf() {
	line := p.val.Line
	p.advance()
	cond, ok := p.parseCondition(line)
	if !ok {
		return
	}
	idx := p.emit(ir.Statement{Line: line, Kind: ir.If, CondSlot1: cond.slot1, CompareOp: cond.op, CondSlot2: cond.slot2, FalseIdx: -1})
	p.ctrl.push(frameIf, idx)
}

func (p *parser) parseElseif() {
	line := p.val.Line
	p.advance()

	top, ok := p.ctrl.top()
	if !ok || top.kind != frameIf {
		p.errorf(line, "'elseif' without a matching 'if'")
		p.skipToNewline()
		return
	}
	if top.inElse {
		p.errorf(line, "'elseif' after 'else'")
	}
	p.patchFalseIdxIfUnset(top.stmtIdx, p.stmts.NextIdx())
	gotoIdx := p.emit(ir.Statement{Line: line, Kind: ir.EndIf, OpenerIdx: top.stmtIdx})
	top.gotos = append(top.gotos, gotoIdx)

	cond, ok := p.parseCondition(line)
	if !ok {
		return
	}
	idx := p.emit(ir.Statement{Line: line, Kind: ir.If, CondSlot1: cond.slot1, CompareOp: cond.op, CondSlot2: cond.slot2, FalseIdx: -1})
	top.stmtIdx = idx
	p.ctrl.setTop(top)
}

func (p *parser) parseElse() {
	line := p.val.Line
	p.advance()
	p.expectNewline()

	top, ok := p.ctrl.top()
	if !ok || top.kind != frameIf {
		p.errorf(line, "'else' without a matching 'if'")
		return
	}
	if top.inElse {
		p.errorf(line, "a block cannot have more than one 'else'")
	}
	p.patchFalseIdxIfUnset(top.stmtIdx, p.stmts.NextIdx())
	gotoIdx := p.emit(ir.Statement{Line: line, Kind: ir.EndIf, OpenerIdx: top.stmtIdx})
	top.gotos = append(top.gotos, gotoIdx)
	top.inElse = true
	p.ctrl.setTop(top)
}

func (p *parser) parseEndif() {
	line := p.val.Line
	p.advance()
	p.expectNewline()

	top, ok := p.ctrl.pop()
	if !ok || top.kind != frameIf {
		p.errorf(line, "'endif' without a matching 'if'")
		return
	}
	endIdx := p.stmts.NextIdx()
	if !top.inElse {
		p.patchFalseIdxIfUnset(top.stmtIdx, endIdx)
	}
	for _, g := range top.gotos {
		s := p.stmts.At(g)
		s.Next = endIdx
		p.stmts.Set(g, s)
	}
	p.emit(ir.Statement{Line: line, Kind: ir.EndIf, OpenerIdx: top.stmtIdx})
}

func (p *parser) patchFalseIdxIfUnset(ifIdx, target int) {
	s := p.stmts.At(ifIdx)
	if s.FalseIdx == -1 {
		s.FalseIdx = target
		p.stmts.Set(ifIdx, s)
	}
}

// condition is the postfixed form of an "a CMP b" condition, built by
// parseCondition for if/while.
type condition struct {
	slot1, slot2 int
	op           int
}

func (p *parser) parseCondition(line int) (condition, bool) {
	left := p.parseExpr(modeCompare)
	if !left.ok {
		p.skipToNewline()
		return condition{}, false
	}
	if !left.compareOp.IsCompare() {
		p.errorf(line, "condition requires a comparison operator (=, !=, <, <=, >, >=)")
	} else {
		p.advance() // consume the compare operator
	}
	right := p.parseExpr(modeValue)
	if !right.ok {
		p.skipToNewline()
		return condition{}, false
	}
	p.expectNewline()
	return condition{
		slot1: p.conv.Convert(left.list),
		slot2: p.conv.Convert(right.list),
		op:    int(left.compareOp),
	}, true
}

func (p *parser) parseWhile() {
	line := p.val.Line
	p.advance()
	cond, ok := p.parseCondition(line)
	if !ok {
		return
	}
	idx := p.emit(ir.Statement{Line: line, Kind: ir.While, CondSlot1: cond.slot1, CompareOp: cond.op, CondSlot2: cond.slot2, EndIdx: -1})
	p.ctrl.push(frameWhile, idx)
}

func (p *parser) parseLoop() {
	line := p.val.Line
	p.advance()
	p.expectNewline()
	idx := p.emit(ir.Statement{Line: line, Kind: ir.Loop, EndIdx: -1})
	p.ctrl.push(frameLoop, idx)
}

func (p *parser) parseRepeat() {
	line := p.val.Line
	p.advance()
	countRes := p.parseExpr(modeValue)
	if !countRes.ok {
		p.skipToNewline()
		return
	}
	p.expectNewline()
	idx := p.emit(ir.Statement{Line: line, Kind: ir.Repeat, CountSlot: p.conv.Convert(countRes.list), EndIdx: -1})
	p.ctrl.push(frameRepeat, idx)
}

func (p *parser) parseFor() {
	line := p.val.Line
	p.advance()

	if p.tok != nictoken.IDENT {
		p.errorf(p.val.Line, "expected a loop variable name")
		p.skipToNewline()
		return
	}
	varName := p.val.Str
	p.advance()

	res, ok := p.syms.Lookup(p.curFunc, varName, symtab.LocalInt)
	if !ok {
		p.errorf(line, "for-loop variable %q must be a declared int", varName)
		p.skipToNewline()
		return
	}
	p.markSet(res)

	if !p.expect(nictoken.EQ) {
		p.skipToNewline()
		return
	}
	startRes := p.parseExpr(modeValue)
	if !startRes.ok {
		p.skipToNewline()
		return
	}
	if !p.identIs("to") {
		p.errorf(p.val.Line, "expected 'to' in for-loop bounds")
		p.skipToNewline()
		return
	}
	p.advance()
	stopRes := p.parseExpr(modeForStop)
	if !stopRes.ok {
		p.skipToNewline()
		return
	}

	stepSlot := -1
	if p.identIs("step") {
		p.advance()
		stepRes := p.parseExpr(modeValue)
		if !stepRes.ok {
			p.skipToNewline()
			return
		}
		stepSlot = p.conv.Convert(stepRes.list)
	}
	p.expectNewline()

	idx := p.emit(ir.Statement{
		Line: line, Kind: ir.For,
		LoopVar: res.Kind, LoopVarIdx: res.Idx,
		StartSlot: p.conv.Convert(startRes.list),
		StopSlot:  p.conv.Convert(stopRes.list),
		StepSlot:  stepSlot,
		EndIdx:    -1,
	})
	p.ctrl.push(frameFor, idx)
}

// parseEndCloser handles endwhile/endloop/endfor/endrepeat uniformly:
// pop the matching opener, emit the closer looping back to it, record
// the bidirectional opener<->closer linkage, and drain any break/continue
// statements waiting on this opener, per spec.md §4.H.
func (p *parser) parseEndCloser(kind frameKind, stmtKind ir.Kind, openerName string) {
	line := p.val.Line
	p.advance()
	p.expectNewline()

	top, ok := p.ctrl.pop()
	if !ok || top.kind != kind {
		p.errorf(line, "'end%s' without a matching '%s'", openerName, openerName)
		return
	}

	closerIdx := p.stmts.NextIdx()
	p.emit(ir.Statement{Line: line, Kind: stmtKind, OpenerIdx: top.stmtIdx})
	closer := p.stmts.At(closerIdx)
	closer.Next = top.stmtIdx // loop back: recheck the opener's condition, or restart an infinite loop
	p.stmts.Set(closerIdx, closer)

	opener := p.stmts.At(top.stmtIdx)
	opener.EndIdx = closerIdx
	p.stmts.Set(top.stmtIdx, opener)

	breaks, continues := p.ctrl.drain(top.stmtIdx)
	for _, b := range breaks {
		s := p.stmts.At(b)
		s.Next = closerIdx + 1
		p.stmts.Set(b, s)
	}
	for _, c := range continues {
		s := p.stmts.At(c)
		s.Next = closerIdx // the closer updates the loop counter before looping back
		p.stmts.Set(c, s)
	}
}

func (p *parser) parseBreak() {
	line := p.val.Line
	p.advance()
	p.expectNewline()
	loop, ok := p.ctrl.enclosingLoop()
	if !ok {
		p.errorf(line, "'break' outside a loop")
		return
	}
	idx := p.emit(ir.Statement{Line: line, Kind: ir.Break})
	p.ctrl.recordBreak(idx, loop.stmtIdx)
}

func (p *parser) parseContinue() {
	line := p.val.Line
	p.advance()
	p.expectNewline()
	loop, ok := p.ctrl.enclosingLoop()
	if !ok {
		p.errorf(line, "'continue' outside a loop")
		return
	}
	idx := p.emit(ir.Statement{Line: line, Kind: ir.Continue})
	switch loop.kind {
	case frameWhile:
		s := p.stmts.At(idx)
		s.Next = loop.stmtIdx // re-check the while condition
		p.stmts.Set(idx, s)
	case frameLoop:
		s := p.stmts.At(idx)
		s.Next = p.stmts.At(loop.stmtIdx).Next // straight to the body, nothing to recheck
		p.stmts.Set(idx, s)
	default: // for, repeat: the closer advances the loop counter first
		p.ctrl.recordContinue(idx, loop.stmtIdx)
	}
}

func (p *parser) parseReturn() {
	line := p.val.Line
	p.advance()

	hasExpr := p.tok != nictoken.NEWLINE && p.tok != nictoken.EOF
	if p.curFuncRet == funtab.Void && hasExpr {
		p.errorf(line, "void function %q cannot return a value", p.curFunc)
	}
	if p.curFuncRet != funtab.Void && !hasExpr {
		p.errorf(line, "function %q must return a value", p.curFunc)
	}

	exprSlot := -1
	if hasExpr {
		res := p.parseExpr(modeValue)
		if res.ok {
			exprSlot = p.conv.Convert(res.list)
		}
	}
	p.expectNewline()
	p.sawReturn = true
	p.emit(ir.Statement{Line: line, Kind: ir.Return, HasExpr: hasExpr, ExprSlot2: exprSlot})
}

// parseAssignOrCall handles every statement starting with a plain
// identifier that isn't a keyword: either a bare call (evaluated for its
// side effect) or an assignment, including the v = v ± K -> INCREMENT
// rewrite, per spec.md §4.H's Generic assignment paragraph.
func (p *parser) parseAssignOrCall() {
	line := p.val.Line
	name := p.val.Str
	p.advance()

	if p.tok == nictoken.LPAREN {
		p.parseCallStatement(name, line)
		return
	}

	res, ok := p.resolveAssignTarget(name, line)
	if !ok {
		p.skipToNewline()
		return
	}
	p.markSet(res)

	arrayIdxSlot := -1
	if p.tok == nictoken.LBRACK {
		if !res.Kind.IsArray() {
			p.errorf(line, "%q is not an array", name)
		}
		p.advance()
		idxRes := p.parseExpr(modeValue)
		p.expect(nictoken.RBRACK)
		if idxRes.ok {
			arrayIdxSlot = p.conv.Convert(idxRes.list)
		}
	}

	if !p.expect(nictoken.EQ) {
		p.skipToNewline()
		return
	}
	rhs := p.parseExpr(modeValue)
	if !rhs.ok {
		p.skipToNewline()
		return
	}
	if rhs.voidUsed {
		p.errorf(line, "cannot assign the result of a void-returning function")
	}
	p.expectNewline()

	if arrayIdxSlot == -1 {
		if step, isIncr := incrementStep(res, rhs.list); isIncr {
			sym := res.Sym
			sym.UsedCount-- // the self-read on the RHS no longer counts as a use
			p.syms.SetAt(res.Kind, res.Idx, sym)
			p.emit(ir.Statement{Line: line, Kind: ir.Increment, TargetKind: res.Kind, TargetIdx: res.Idx, Step: step})
			return
		}
	}

	p.emit(ir.Statement{
		Line: line, Kind: ir.InternFunction, HasAssign: true,
		AssignKind: res.Kind, AssignIdx: res.Idx,
		ArrayIndexSlot: arrayIdxSlot, ExprSlot: p.conv.Convert(rhs.list),
	})
}

func (p *parser) parseCallStatement(name string, line int) {
	ec, _, ok := p.parseCall(name, line, 0, false)
	if !ok {
		p.skipToNewline()
		return
	}
	p.expectNewline()
	slot := p.conv.Convert(expr.List{ec})
	p.emit(ir.Statement{Line: line, Kind: ir.InternFunction, HasAssign: false, ExprSlot: slot})
}

func (p *parser) resolveAssignTarget(name string, line int) (symtab.Resolved, bool) {
	for _, rt := range [...]funtab.ReturnType{funtab.Int, funtab.Byte, funtab.String} {
		if res, ok := p.syms.Lookup(p.curFunc, name, localScalarKind(rt)); ok {
			if res.Kind == symtab.ConstInt || res.Kind == symtab.ConstString {
				p.errorf(line, "%q is a const and cannot be assigned", name)
				return symtab.Resolved{}, false
			}
			return res, true
		}
		if res, ok := p.syms.Lookup(p.curFunc, name, localArrayKind(rt)); ok {
			if res.Kind == symtab.ConstInt || res.Kind == symtab.ConstString {
				p.errorf(line, "%q is a const and cannot be assigned", name)
				return symtab.Resolved{}, false
			}
			return res, true
		}
	}
	p.errorf(line, "undeclared variable %q", name)
	return symtab.Resolved{}, false
}

// incrementStep recognizes the "v = v ± K" / "v = K + v" shape (spec.md
// §4.H) for a scalar int/byte target, returning the signed step.
func incrementStep(target symtab.Resolved, rhs expr.List) (int, bool) {
	switch target.Kind {
	case symtab.LocalInt, symtab.GlobalInt, symtab.LocalByte, symtab.GlobalByte:
	default:
		return 0, false
	}
	if len(rhs) != 2 {
		return 0, false
	}
	a, b := rhs[0], rhs[1]
	if !a.HasOp || b.HasOp || a.Obr != 0 || a.Cbr != 0 || b.Obr != 0 || b.Cbr != 0 {
		return 0, false
	}

	isSelf := func(ec expr.EC) bool {
		return ec.Content == expr.Variable && symtab.Kind(ec.VarKind) == target.Kind && ec.Value == target.Idx
	}
	isConst := func(ec expr.EC) bool { return ec.Content == expr.IntConst }

	switch {
	case isSelf(a) && isConst(b) && a.Op == nictoken.PLUS:
		return b.Value, true
	case isSelf(a) && isConst(b) && a.Op == nictoken.MINUS:
		return -b.Value, true
	case isConst(a) && isSelf(b) && a.Op == nictoken.PLUS:
		return a.Value, true
	}
	return 0, false
}
