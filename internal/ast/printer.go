package ast

import (
	"fmt"
	"strings"
)

// String methods render a compact, source-like form used in debug
// output and ICE messages. The rendering is not meant to re-parse.

func (e *IntLit) String() string    { return fmt.Sprintf("%d", e.Value) }
func (e *BoolLit) String() string   { return fmt.Sprintf("%t", e.Value) }
func (e *StringLit) String() string { return fmt.Sprintf("%q", e.Value) }
func (e *UnitLit) String() string   { return "()" }
func (e *NoneLit) String() string   { return "none" }
func (e *SomeExpr) String() string  { return fmt.Sprintf("some(%s)", e.Operand) }
func (e *VarRef) String() string    { return e.Decl.Name }

func (e *UnaryExpr) String() string {
	return fmt.Sprintf("%s%s", e.Op, e.Operand)
}

func (e *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", e.Left, e.Op, e.Right)
}

func (e *TupleLit) String() string {
	parts := make([]string, len(e.Elems))
	for i, el := range e.Elems {
		parts[i] = el.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (e *FieldAccess) String() string {
	if e.Name != "" {
		return fmt.Sprintf("%s.%s", e.Base, e.Name)
	}
	return fmt.Sprintf("%s.%d", e.Base, e.Index)
}

func (e *CastExpr) String() string { return fmt.Sprintf("(%s as %s)", e.Operand, e.Typ) }

func (e *CallExpr) String() string {
	parts := make([]string, len(e.Args))
	for i, a := range e.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", e.Callee, strings.Join(parts, ", "))
}

func (e *InOutArg) String() string   { return "&" + e.Path.String() }
func (e *UnwrapExpr) String() string { return e.Operand.String() + "!" }
func (e *SpawnExpr) String() string  { return "spawn " + e.Init.String() }

func (s *BlockStmt) String() string {
	return fmt.Sprintf("{ %d stmts }", len(s.Stmts))
}

func (s *LetStmt) String() string {
	return fmt.Sprintf("let %s: %s = %s", s.Decl.Name, s.Decl.Typ, s.Init)
}

func (s *AssignStmt) String() string { return fmt.Sprintf("%s = %s", s.Target, s.Value) }
func (s *ExprStmt) String() string   { return s.X.String() }

func (s *ReturnStmt) String() string {
	if s.Value == nil {
		return "return"
	}
	return "return " + s.Value.String()
}

func (s *BreakStmt) String() string    { return "break" }
func (s *ContinueStmt) String() string { return "continue" }
func (s *ThrowStmt) String() string    { return "throw " + s.Value.String() }

func (s *IfStmt) String() string {
	if s.Else != nil {
		return fmt.Sprintf("if %s %s else %s", s.Cond, s.Then, s.Else)
	}
	return fmt.Sprintf("if %s %s", s.Cond, s.Then)
}

func (s *WhileStmt) String() string   { return fmt.Sprintf("while %s %s", s.Cond, s.Body) }
func (s *DoWhileStmt) String() string { return fmt.Sprintf("do %s while %s", s.Body, s.Cond) }

func (s *TryStmt) String() string {
	return fmt.Sprintf("try %s catch %s %s", s.Body, s.CatchVar.Name, s.Catch)
}

func (f *FuncDecl) String() string {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.String()
	}
	return fmt.Sprintf("fn %s(%s) -> %s", f.Name, strings.Join(params, ", "), f.Result)
}

func (p *Param) String() string {
	if p.InOut {
		return fmt.Sprintf("inout %s: %s", p.Decl.Name, p.Decl.Typ)
	}
	return fmt.Sprintf("%s: %s", p.Decl.Name, p.Decl.Typ)
}

func (d *VarDecl) String() string { return d.Name }
