package ast

import (
	"sora/internal/source"
	"sora/internal/types"
)

func (*IntLit) isExpr()      {}
func (*BoolLit) isExpr()     {}
func (*StringLit) isExpr()   {}
func (*UnitLit) isExpr()     {}
func (*NoneLit) isExpr()     {}
func (*SomeExpr) isExpr()    {}
func (*VarRef) isExpr()      {}
func (*UnaryExpr) isExpr()   {}
func (*BinaryExpr) isExpr()  {}
func (*TupleLit) isExpr()    {}
func (*FieldAccess) isExpr() {}
func (*CastExpr) isExpr()    {}
func (*CallExpr) isExpr()    {}
func (*InOutArg) isExpr()    {}
func (*UnwrapExpr) isExpr()  {}
func (*SpawnExpr) isExpr()   {}

// IntLit is an integer literal, already range-checked against its
// type. Value holds the raw bits for both signed and unsigned types.
type IntLit struct {
	Pos    source.Pos
	EndPos source.Pos
	Value  uint64
	Typ    types.Type
}

// BoolLit is a boolean literal.
// Example: "true"
type BoolLit struct {
	Pos    source.Pos
	EndPos source.Pos
	Value  bool
}

// StringLit is a string literal with escapes already processed.
type StringLit struct {
	Pos    source.Pos
	EndPos source.Pos
	Value  string
}

// UnitLit is the unit value.
// Example: "()"
type UnitLit struct {
	Pos    source.Pos
	EndPos source.Pos
}

// NoneLit is the empty option of a known element type.
// Example: "none"
type NoneLit struct {
	Pos    source.Pos
	EndPos source.Pos
	Typ    types.Type // the opt<T> type, not T
}

// SomeExpr wraps a value into an option.
// Example: "some(balance)"
type SomeExpr struct {
	Pos     source.Pos
	EndPos  source.Pos
	Operand Expr
	Typ     types.Type
}

// VarRef is a resolved reference to a local or parameter.
type VarRef struct {
	Pos    source.Pos
	EndPos source.Pos
	Decl   *VarDecl
}

// UnaryExpr applies a unary operator. Strategy is meaningful only for
// Neg on integer operands.
type UnaryExpr struct {
	Pos      source.Pos
	EndPos   source.Pos
	Op       UnaryOp
	Strategy OverflowStrategy
	Operand  Expr
	Typ      types.Type
}

// BinaryExpr applies an eager binary operator.
// Example: "a + b" with Strategy Trap when spelled "a +! b"
type BinaryExpr struct {
	Pos      source.Pos
	EndPos   source.Pos
	Op       BinaryOp
	Strategy OverflowStrategy
	Left     Expr
	Right    Expr
	Typ      types.Type
}

// TupleLit constructs a tuple from its element expressions.
// Example: "(lo, hi, true)"
type TupleLit struct {
	Pos    source.Pos
	EndPos source.Pos
	Elems  []Expr
	Typ    types.Type // always *types.TupleType
}

// FieldAccess projects a tuple or struct field. The checker resolved
// the field name to its index.
type FieldAccess struct {
	Pos    source.Pos
	EndPos source.Pos
	Base   Expr
	Name   string
	Index  int
	Typ    types.Type
}

// CastExpr converts between integer widths or signedness.
type CastExpr struct {
	Pos     source.Pos
	EndPos  source.Pos
	Operand Expr
	Typ     types.Type
}

// CallExpr calls a named function. MayRaise mirrors the callee's
// throws flag.
type CallExpr struct {
	Pos      source.Pos
	EndPos   source.Pos
	Callee   string
	Args     []Expr
	MayRaise bool
	Typ      types.Type
}

// InOutArg marks a call argument passed by reference. Path must be an
// lvalue: a VarRef or a chain of FieldAccess rooted at one.
type InOutArg struct {
	Pos    source.Pos
	EndPos source.Pos
	Path   Expr
}

// UnwrapExpr is the unwrap-or-throw intrinsic: yields the option's
// payload or raises to the innermost handler.
// Example: "account!"
type UnwrapExpr struct {
	Pos     source.Pos
	EndPos  source.Pos
	Operand Expr
	Typ     types.Type
}

// SpawnExpr starts a task from an initializer value and yields a
// future handle. The task entry point is resolved from the
// initializer's type by the fixed "start" convention.
// Example: "spawn Downloader{url: u}"
type SpawnExpr struct {
	Pos    source.Pos
	EndPos source.Pos
	Init   Expr
	Typ    types.Type // always *types.FutureType
}

func (e *IntLit) Type() types.Type      { return e.Typ }
func (e *BoolLit) Type() types.Type     { return types.Bool }
func (e *StringLit) Type() types.Type   { return types.String }
func (e *UnitLit) Type() types.Type     { return types.Unit }
func (e *NoneLit) Type() types.Type     { return e.Typ }
func (e *SomeExpr) Type() types.Type    { return e.Typ }
func (e *VarRef) Type() types.Type      { return e.Decl.Typ }
func (e *UnaryExpr) Type() types.Type   { return e.Typ }
func (e *BinaryExpr) Type() types.Type  { return e.Typ }
func (e *TupleLit) Type() types.Type    { return e.Typ }
func (e *FieldAccess) Type() types.Type { return e.Typ }
func (e *CastExpr) Type() types.Type    { return e.Typ }
func (e *CallExpr) Type() types.Type    { return e.Typ }
func (e *InOutArg) Type() types.Type    { return e.Path.Type() }
func (e *UnwrapExpr) Type() types.Type  { return e.Typ }
func (e *SpawnExpr) Type() types.Type   { return e.Typ }
