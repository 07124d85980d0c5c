package ast

import "sora/internal/source"

func (*BlockStmt) isStmt()    {}
func (*LetStmt) isStmt()      {}
func (*AssignStmt) isStmt()   {}
func (*ExprStmt) isStmt()     {}
func (*ReturnStmt) isStmt()   {}
func (*BreakStmt) isStmt()    {}
func (*ContinueStmt) isStmt() {}
func (*ThrowStmt) isStmt()    {}
func (*IfStmt) isStmt()       {}
func (*WhileStmt) isStmt()    {}
func (*DoWhileStmt) isStmt()  {}
func (*TryStmt) isStmt()      {}

// BlockStmt is a braced statement sequence.
type BlockStmt struct {
	Pos    source.Pos
	EndPos source.Pos
	Stmts  []Stmt
}

// LetStmt declares a variable with a required initializer.
// Example: "let mut total: u64 = 0"
type LetStmt struct {
	Pos    source.Pos
	EndPos source.Pos
	Decl   *VarDecl
	Init   Expr
}

// AssignStmt stores into an lvalue: a VarRef or a FieldAccess chain
// rooted at one.
type AssignStmt struct {
	Pos    source.Pos
	EndPos source.Pos
	Target Expr
	Value  Expr
}

// ExprStmt evaluates an expression for effect.
type ExprStmt struct {
	Pos    source.Pos
	EndPos source.Pos
	X      Expr
}

// ReturnStmt returns from the enclosing function. Value is nil for
// unit-returning functions.
type ReturnStmt struct {
	Pos    source.Pos
	EndPos source.Pos
	Value  Expr
}

// BreakStmt exits the innermost loop.
type BreakStmt struct {
	Pos    source.Pos
	EndPos source.Pos
}

// ContinueStmt jumps to the innermost loop's condition check.
type ContinueStmt struct {
	Pos    source.Pos
	EndPos source.Pos
}

// ThrowStmt raises an error value to the innermost handler, or out of
// the function when none is active.
type ThrowStmt struct {
	Pos    source.Pos
	EndPos source.Pos
	Value  Expr
}

// IfStmt branches on a boolean condition. Else may be nil, another
// IfStmt (else-if chain) or a BlockStmt.
type IfStmt struct {
	Pos    source.Pos
	EndPos source.Pos
	Cond   Expr
	Then   *BlockStmt
	Else   Stmt
}

// WhileStmt is a head-tested loop.
type WhileStmt struct {
	Pos    source.Pos
	EndPos source.Pos
	Cond   Expr
	Body   *BlockStmt
}

// DoWhileStmt is a tail-tested loop: the body runs at least once and
// the condition decides whether to run it again.
type DoWhileStmt struct {
	Pos    source.Pos
	EndPos source.Pos
	Body   *BlockStmt
	Cond   Expr
}

// TryStmt runs Body with a handler. A raise inside Body (from throw,
// trapping arithmetic, unwrap, or a throwing call) transfers to Catch
// with the raised value bound to CatchVar.
type TryStmt struct {
	Pos      source.Pos
	EndPos   source.Pos
	Body     *BlockStmt
	CatchVar *VarDecl
	Catch    *BlockStmt
}
