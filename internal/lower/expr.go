package lower

import (
	"sora/internal/ast"
	"sora/internal/diag"
	"sora/internal/mir"
	"sora/internal/types"
)

// lowerExpr translates one expression and returns the value holding
// its result. Unit-typed calls return InvalidValue; the checker only
// lets those appear in statement position.
func (l *Lowerer) lowerExpr(e ast.Expr) mir.ValueID {
	switch e := e.(type) {
	case *ast.IntLit:
		return l.emit(&mir.Instr{
			Op:     mir.OpConst,
			Result: l.newValue("", e.Typ, e.Pos),
			Type:   e.Typ,
			AuxInt: e.Value,
			Pos:    e.Pos,
		})
	case *ast.BoolLit:
		v := uint64(0)
		if e.Value {
			v = 1
		}
		return l.emit(&mir.Instr{
			Op:     mir.OpConst,
			Result: l.newValue("", types.Bool, e.Pos),
			Type:   types.Bool,
			AuxInt: v,
			Pos:    e.Pos,
		})
	case *ast.StringLit:
		return l.emit(&mir.Instr{
			Op:     mir.OpConstStr,
			Result: l.newValue("", types.String, e.Pos),
			Type:   types.String,
			AuxStr: e.Value,
			Pos:    e.Pos,
		})
	case *ast.UnitLit:
		return l.emit(&mir.Instr{
			Op:     mir.OpConst,
			Result: l.newValue("", types.Unit, e.Pos),
			Type:   types.Unit,
			Pos:    e.Pos,
		})
	case *ast.NoneLit:
		return l.emit(&mir.Instr{
			Op:     mir.OpNone,
			Result: l.newValue("", e.Typ, e.Pos),
			Type:   e.Typ,
			Pos:    e.Pos,
		})
	case *ast.SomeExpr:
		opt, ok := e.Typ.(*types.OptionType)
		diag.Assertf(ok, "some expression with non-option type %s", e.Typ)
		val := l.coerce(l.lowerExpr(e.Operand), opt.Elem, e.Pos)
		return l.emit(&mir.Instr{
			Op:     mir.OpSome,
			Result: l.newValue("", e.Typ, e.Pos),
			Args:   []mir.ValueID{val},
			Type:   e.Typ,
			Pos:    e.Pos,
		})
	case *ast.VarRef:
		return l.lowerVarRef(e)
	case *ast.UnaryExpr:
		return l.lowerUnary(e)
	case *ast.BinaryExpr:
		return l.lowerBinary(e)
	case *ast.TupleLit:
		return l.lowerTuple(e)
	case *ast.FieldAccess:
		base := l.lowerExpr(e.Base)
		return l.emit(&mir.Instr{
			Op:     mir.OpField,
			Result: l.newValue("", e.Typ, e.Pos),
			Args:   []mir.ValueID{base},
			Type:   e.Typ,
			Field:  e.Index,
			Pos:    e.Pos,
		})
	case *ast.CastExpr:
		val := l.lowerExpr(e.Operand)
		return l.emit(&mir.Instr{
			Op:     mir.OpCast,
			Result: l.newValue("", e.Typ, e.Pos),
			Args:   []mir.ValueID{val},
			Type:   e.Typ,
			Pos:    e.Pos,
		})
	case *ast.CallExpr:
		return l.lowerCall(e)
	case *ast.UnwrapExpr:
		return l.lowerUnwrap(e)
	case *ast.SpawnExpr:
		return l.lowerSpawn(e)
	case *ast.InOutArg:
		diag.ICE("inout marker outside a call argument list")
	default:
		diag.ICE("unhandled expression kind %T", e)
	}
	return mir.InvalidValue
}

func (l *Lowerer) lowerVarRef(e *ast.VarRef) mir.ValueID {
	b, ok := l.vars[e.Decl]
	diag.Assertf(ok, "reference to unbound variable %s", e.Decl.Name)
	if !b.isSlot {
		return b.id
	}
	return l.emit(&mir.Instr{
		Op:     mir.OpLoad,
		Result: l.newValue(e.Decl.Name, e.Decl.Typ, e.Pos),
		Args:   []mir.ValueID{b.id},
		Type:   e.Decl.Typ,
		Pos:    e.Pos,
	})
}

// lowerUnary picks the IR operation from the operator and the operand
// type: source "!" is boolean not on bool and bitwise complement on
// integers. Negation under the trap strategy can raise (minimum value
// of a signed type) and selects the exception-aware variant.
func (l *Lowerer) lowerUnary(e *ast.UnaryExpr) mir.ValueID {
	val := l.lowerExpr(e.Operand)

	var op mir.UnOp
	switch e.Op {
	case ast.Neg:
		op = mir.UnNeg
	case ast.Not:
		if types.IsBool(e.Operand.Type()) {
			op = mir.UnNot
		} else {
			op = mir.UnBitNot
		}
	case ast.BitNot:
		op = mir.UnBitNot
	default:
		diag.ICE("unhandled unary operator %s", e.Op)
	}

	strategy := lowerStrategy(e.Strategy)
	mayRaise := op == mir.UnNeg && strategy == mir.OverflowTrap && types.IsInteger(e.Typ)

	in := &mir.Instr{
		Op:       mir.OpUnary,
		Result:   l.newValue("", e.Typ, e.Pos),
		Args:     []mir.ValueID{val},
		Type:     e.Typ,
		UnOp:     op,
		Strategy: strategy,
		Pos:      e.Pos,
	}
	if mayRaise {
		in.MayRaise = true
		in.Handler = l.handler()
	}
	return l.emit(in)
}

// lowerBinary maps the operator, carries the overflow strategy, and
// decides statically whether the operation can raise: trapping
// arithmetic on overflow-capable ops, and division or remainder by
// zero under every strategy.
func (l *Lowerer) lowerBinary(e *ast.BinaryExpr) mir.ValueID {
	left := l.lowerExpr(e.Left)
	right := l.lowerExpr(e.Right)

	op := lowerBinOp(e.Op)
	strategy := lowerStrategy(e.Strategy)

	mayRaise := false
	switch op {
	case mir.BinDiv, mir.BinRem:
		mayRaise = true
	case mir.BinAdd, mir.BinSub, mir.BinMul, mir.BinShl:
		mayRaise = strategy == mir.OverflowTrap
	}

	in := &mir.Instr{
		Op:       mir.OpBinary,
		Result:   l.newValue("", e.Typ, e.Pos),
		Args:     []mir.ValueID{left, right},
		Type:     e.Typ,
		BinOp:    op,
		Strategy: strategy,
		Pos:      e.Pos,
	}
	if mayRaise {
		in.MayRaise = true
		in.Handler = l.handler()
	}
	return l.emit(in)
}

func lowerBinOp(op ast.BinaryOp) mir.BinOp {
	switch op {
	case ast.Add:
		return mir.BinAdd
	case ast.Sub:
		return mir.BinSub
	case ast.Mul:
		return mir.BinMul
	case ast.Div:
		return mir.BinDiv
	case ast.Rem:
		return mir.BinRem
	case ast.And:
		return mir.BinAnd
	case ast.Or:
		return mir.BinOr
	case ast.Xor:
		return mir.BinXor
	case ast.Shl:
		return mir.BinShl
	case ast.Shr:
		return mir.BinShr
	case ast.Eq:
		return mir.BinEq
	case ast.Ne:
		return mir.BinNe
	case ast.Lt:
		return mir.BinLt
	case ast.Le:
		return mir.BinLe
	case ast.Gt:
		return mir.BinGt
	case ast.Ge:
		return mir.BinGe
	}
	diag.ICE("unhandled binary operator %s", op)
	return 0
}

func lowerStrategy(s ast.OverflowStrategy) mir.Overflow {
	switch s {
	case ast.Wrap:
		return mir.OverflowWrap
	case ast.Trap:
		return mir.OverflowTrap
	case ast.Saturate:
		return mir.OverflowSat
	}
	diag.ICE("unhandled overflow strategy %d", s)
	return 0
}

// lowerTuple translates the children in order, each coerced to its
// declared element type, then builds the aggregate from the results.
func (l *Lowerer) lowerTuple(e *ast.TupleLit) mir.ValueID {
	tt, ok := e.Typ.(*types.TupleType)
	diag.Assertf(ok, "tuple literal with non-tuple type %s", e.Typ)
	diag.Assertf(len(tt.Elems) == len(e.Elems), "tuple literal arity %d against type %s", len(e.Elems), tt)

	args := make([]mir.ValueID, len(e.Elems))
	for i, el := range e.Elems {
		args[i] = l.coerce(l.lowerExpr(el), tt.Elems[i], el.NodePos())
	}
	return l.emit(&mir.Instr{
		Op:     mir.OpTuple,
		Result: l.newValue("", e.Typ, e.Pos),
		Args:   args,
		Type:   e.Typ,
		Pos:    e.Pos,
	})
}

func (l *Lowerer) lowerCall(e *ast.CallExpr) mir.ValueID {
	args := make([]mir.ValueID, len(e.Args))
	for i, a := range e.Args {
		if io, ok := a.(*ast.InOutArg); ok {
			args[i] = l.lowerInOutArg(io)
		} else {
			args[i] = l.lowerExpr(a)
		}
	}

	in := &mir.Instr{
		Op:   mir.OpCall,
		Args: args,
		Sym:  e.Callee,
		Pos:  e.Pos,
	}
	if _, unit := e.Typ.(*types.UnitType); !unit {
		in.Result = l.newValue("", e.Typ, e.Pos)
		in.Type = e.Typ
	}
	if e.MayRaise {
		in.MayRaise = true
		in.Handler = l.handler()
	}
	return l.emit(in)
}

// lowerInOutArg lowers a by-reference argument. When the path names
// mutable storage the callee writes straight through the slot; when
// the base is an immutable value the field is extracted into a fresh
// temporary slot so the callee still has an address to write, and the
// write-back is dropped.
func (l *Lowerer) lowerInOutArg(e *ast.InOutArg) mir.ValueID {
	var slot mir.ValueID
	if l.isSlotPath(e.Path) {
		slot = l.lowerLValue(e.Path)
	} else {
		val := l.lowerExpr(e.Path)
		slot = l.emit(&mir.Instr{
			Op:     mir.OpLocal,
			Result: l.newValue("inout.tmp", e.Path.Type(), e.Pos),
			Type:   e.Path.Type(),
			Sym:    "inout.tmp",
			Pos:    e.Pos,
		})
		l.emit(&mir.Instr{Op: mir.OpStore, Args: []mir.ValueID{slot, val}, Pos: e.Pos})
	}
	return l.emit(&mir.Instr{
		Op:     mir.OpInOut,
		Result: l.newValue("", e.Path.Type(), e.Pos),
		Args:   []mir.ValueID{slot},
		Type:   e.Path.Type(),
		Pos:    e.Pos,
	})
}

// isSlotPath reports whether the lvalue path bottoms out in mutable
// storage.
func (l *Lowerer) isSlotPath(e ast.Expr) bool {
	switch e := e.(type) {
	case *ast.VarRef:
		b, ok := l.vars[e.Decl]
		return ok && b.isSlot
	case *ast.FieldAccess:
		return l.isSlotPath(e.Base)
	}
	return false
}

// lowerUnwrap emits the unwrap-or-throw intrinsic: the option's
// payload on success, a raise to the innermost handler on none.
func (l *Lowerer) lowerUnwrap(e *ast.UnwrapExpr) mir.ValueID {
	val := l.lowerExpr(e.Operand)
	return l.emit(&mir.Instr{
		Op:       mir.OpUnwrap,
		Result:   l.newValue("", e.Typ, e.Pos),
		Args:     []mir.ValueID{val},
		Type:     e.Typ,
		MayRaise: true,
		Handler:  l.handler(),
		Pos:      e.Pos,
	})
}

// lowerSpawn evaluates the task initializer first, then appends the
// spawn referencing the entry point looked up by the fixed "start"
// convention on the future's element type. The spawn is fire and
// forget: its result is the future handle and no synchronization is
// inserted.
func (l *Lowerer) lowerSpawn(e *ast.SpawnExpr) mir.ValueID {
	ft, ok := e.Typ.(*types.FutureType)
	diag.Assertf(ok, "spawn expression with non-future type %s", e.Typ)

	init := l.coerce(l.lowerExpr(e.Init), ft.Elem, e.Pos)

	entry := ft.Elem.String() + ".start"
	entryType := &types.FuncType{Params: []types.Type{ft.Elem}, Result: types.Unit}
	fref := l.emit(&mir.Instr{
		Op:     mir.OpFuncRef,
		Result: l.newValue("", entryType, e.Pos),
		Type:   entryType,
		Sym:    entry,
		Pos:    e.Pos,
	})
	return l.emit(&mir.Instr{
		Op:     mir.OpSpawn,
		Result: l.newValue("", e.Typ, e.Pos),
		Args:   []mir.ValueID{fref, init},
		Type:   e.Typ,
		Pos:    e.Pos,
	})
}
