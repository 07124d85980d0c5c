package lower

import (
	"sora/internal/ast"
	"sora/internal/diag"
	"sora/internal/mir"
	"sora/internal/source"
)

func (l *Lowerer) lowerBlock(b *ast.BlockStmt) {
	for _, s := range b.Stmts {
		l.lowerStmt(s)
	}
}

func (l *Lowerer) lowerStmt(s ast.Stmt) {
	switch s := s.(type) {
	case *ast.BlockStmt:
		l.lowerBlock(s)
	case *ast.LetStmt:
		l.lowerLet(s)
	case *ast.AssignStmt:
		l.lowerAssign(s)
	case *ast.ExprStmt:
		l.lowerExpr(s.X)
	case *ast.ReturnStmt:
		l.lowerReturn(s)
	case *ast.BreakStmt:
		l.cur.SetTerm(&mir.Goto{Target: l.innerLoop().breakTo, Pos: s.Pos})
		l.continueInUnreachable("after.break")
	case *ast.ContinueStmt:
		l.cur.SetTerm(&mir.Goto{Target: l.innerLoop().continueTo, Pos: s.Pos})
		l.continueInUnreachable("after.continue")
	case *ast.ThrowStmt:
		l.lowerThrow(s)
	case *ast.IfStmt:
		l.lowerIf(s)
	case *ast.WhileStmt:
		l.lowerWhile(s)
	case *ast.DoWhileStmt:
		l.lowerDoWhile(s)
	case *ast.TryStmt:
		l.lowerTry(s)
	default:
		diag.ICE("unhandled statement kind %T", s)
	}
}

func (l *Lowerer) lowerLet(s *ast.LetStmt) {
	diag.Assertf(s.Init != nil, "let %s reached lowering without initializer", s.Decl.Name)
	init := l.coerce(l.lowerExpr(s.Init), s.Decl.Typ, s.Pos)
	if !s.Decl.Mutable {
		l.vars[s.Decl] = binding{id: init}
		return
	}
	slot := l.emit(&mir.Instr{
		Op:     mir.OpLocal,
		Result: l.newValue(s.Decl.Name, s.Decl.Typ, s.Decl.Pos),
		Type:   s.Decl.Typ,
		Sym:    s.Decl.Name,
		Pos:    s.Decl.Pos,
	})
	l.emit(&mir.Instr{Op: mir.OpStore, Args: []mir.ValueID{slot, init}, Pos: s.Pos})
	l.vars[s.Decl] = binding{id: slot, isSlot: true}
}

func (l *Lowerer) lowerAssign(s *ast.AssignStmt) {
	val := l.coerce(l.lowerExpr(s.Value), s.Target.Type(), s.Pos)
	slot := l.lowerLValue(s.Target)
	l.emit(&mir.Instr{Op: mir.OpStore, Args: []mir.ValueID{slot, val}, Pos: s.Pos})
}

// lowerLValue resolves an assignable path to its storage slot: the
// variable's slot, refined by one fieldaddr per projection.
func (l *Lowerer) lowerLValue(e ast.Expr) mir.ValueID {
	switch e := e.(type) {
	case *ast.VarRef:
		b, ok := l.vars[e.Decl]
		diag.Assertf(ok, "reference to unbound variable %s", e.Decl.Name)
		diag.Assertf(b.isSlot, "assignment to immutable %s reached lowering", e.Decl.Name)
		return b.id
	case *ast.FieldAccess:
		base := l.lowerLValue(e.Base)
		return l.emit(&mir.Instr{
			Op:     mir.OpFieldAddr,
			Result: l.newValue("", e.Typ, e.Pos),
			Args:   []mir.ValueID{base},
			Type:   e.Typ,
			Field:  e.Index,
			Pos:    e.Pos,
		})
	}
	diag.ICE("%s is not an assignable path", e)
	return mir.InvalidValue
}

func (l *Lowerer) lowerReturn(s *ast.ReturnStmt) {
	var val mir.ValueID
	if s.Value != nil {
		val = l.coerce(l.lowerExpr(s.Value), l.fn.Result, s.Pos)
	}
	l.cur.SetTerm(&mir.Return{Value: val, Pos: s.Pos})
	l.continueInUnreachable("after.return")
}

// lowerThrow raises to the innermost handler; with no enclosing try
// the raise leaves the function. Lowering then continues in a fresh
// possibly-unreachable block so code written after the throw stays
// attached to the graph.
func (l *Lowerer) lowerThrow(s *ast.ThrowStmt) {
	val := l.lowerExpr(s.Value)
	l.cur.SetTerm(&mir.Raise{Value: val, Handler: l.handler(), Pos: s.Pos})
	l.continueInUnreachable("after.throw")
}

func (l *Lowerer) lowerIf(s *ast.IfStmt) {
	thenB := l.fn.NewBlock("if.then")
	endB := l.fn.NewBlock("if.end")
	elseTarget := endB.ID
	var elseB *mir.Block
	if s.Else != nil {
		elseB = l.fn.NewBlock("if.else")
		elseTarget = elseB.ID
	}

	cond := l.lowerExpr(s.Cond)
	// Condition lowering may have moved the cursor; branch from where
	// it left us.
	l.cur.SetTerm(&mir.Branch{Cond: cond, Then: thenB.ID, Else: elseTarget, Pos: s.Pos})

	l.cur = thenB
	l.lowerBlock(s.Then)
	l.cur.SetTerm(&mir.Goto{Target: endB.ID, Pos: s.Then.EndPos})

	if s.Else != nil {
		l.cur = elseB
		l.lowerStmt(s.Else)
		l.cur.SetTerm(&mir.Goto{Target: endB.ID, Pos: s.EndPos})
	}
	l.cur = endB
}

func (l *Lowerer) lowerWhile(s *ast.WhileStmt) {
	condB := l.fn.NewBlock("while.cond")
	bodyB := l.fn.NewBlock("while.body")
	endB := l.fn.NewBlock("while.end")
	bodyB.Span = source.Span{Start: s.Body.Pos, End: s.Body.EndPos}

	l.cur.SetTerm(&mir.Goto{Target: condB.ID, Pos: s.Pos})

	l.cur = condB
	cond := l.lowerExpr(s.Cond)
	l.cur.SetTerm(&mir.Branch{Cond: cond, Then: bodyB.ID, Else: endB.ID, Pos: s.Pos})

	l.cur = bodyB
	l.pushLoop(loopScope{breakTo: endB.ID, continueTo: condB.ID})
	l.lowerBlock(s.Body)
	l.popLoop()
	l.cur.SetTerm(&mir.Goto{Target: condB.ID, Pos: s.Body.EndPos})

	l.cur = endB
}

// lowerDoWhile allocates the condition and end blocks up front, runs
// the body in a fresh block entered by an initial jump, and tests the
// condition after the body. The branch back to the body carries the
// skip-check tag: the shape is a desugaring artifact and its edges
// must not trip dead-code diagnostics.
func (l *Lowerer) lowerDoWhile(s *ast.DoWhileStmt) {
	condB := l.fn.NewBlock("do.cond")
	endB := l.fn.NewBlock("do.end")
	bodyB := l.fn.NewBlock("do.body")
	bodyB.Span = source.Span{Start: s.Body.Pos, End: s.Body.EndPos}

	l.cur.SetTerm(&mir.Goto{Target: bodyB.ID, Pos: s.Pos})

	l.cur = bodyB
	l.pushLoop(loopScope{breakTo: endB.ID, continueTo: condB.ID})
	l.lowerBlock(s.Body)
	l.popLoop()
	l.cur.SetTerm(&mir.Goto{Target: condB.ID, Pos: s.Body.EndPos})

	l.cur = condB
	cond := l.lowerExpr(s.Cond)
	// Condition lowering may allocate blocks and move the cursor; the
	// branch goes into the block the cursor points at now.
	l.cur.SetTerm(&mir.Branch{Cond: cond, Then: bodyB.ID, Else: endB.ID, SkipCheck: true, Pos: s.Pos})

	l.cur = endB
}

// lowerTry runs the body with a handler block on the handler stack.
// Raises anywhere in the body, including instruction-level ones,
// transfer to the handler, which binds the caught value and runs the
// catch clause. Handlers nest LIFO.
func (l *Lowerer) lowerTry(s *ast.TryStmt) {
	handlerB := l.fn.NewBlock("catch")
	handlerB.Span = source.Span{Start: s.Catch.Pos, End: s.Catch.EndPos}
	endB := l.fn.NewBlock("try.end")

	l.pushHandler(handlerB.ID)
	l.lowerBlock(s.Body)
	l.popHandler()
	l.cur.SetTerm(&mir.Goto{Target: endB.ID, Pos: s.Body.EndPos})

	l.cur = handlerB
	caught := l.emit(&mir.Instr{
		Op:     mir.OpCatch,
		Result: l.newValue(s.CatchVar.Name, s.CatchVar.Typ, s.CatchVar.Pos),
		Type:   s.CatchVar.Typ,
		Pos:    s.CatchVar.Pos,
	})
	l.bindCatchVar(s.CatchVar, caught)
	l.lowerBlock(s.Catch)
	l.cur.SetTerm(&mir.Goto{Target: endB.ID, Pos: s.Catch.EndPos})

	l.cur = endB
}

func (l *Lowerer) bindCatchVar(d *ast.VarDecl, caught mir.ValueID) {
	if !d.Mutable {
		l.vars[d] = binding{id: caught}
		return
	}
	slot := l.emit(&mir.Instr{
		Op:     mir.OpLocal,
		Result: l.newValue(d.Name, d.Typ, d.Pos),
		Type:   d.Typ,
		Sym:    d.Name,
		Pos:    d.Pos,
	})
	l.emit(&mir.Instr{Op: mir.OpStore, Args: []mir.ValueID{slot, caught}, Pos: d.Pos})
	l.vars[d] = binding{id: slot, isSlot: true}
}
