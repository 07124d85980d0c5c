package ast

import "sora/internal/source"

func (f *FuncDecl) NodePos() source.Pos    { return f.Pos }
func (f *FuncDecl) NodeEndPos() source.Pos { return f.EndPos }

func (p *Param) NodePos() source.Pos    { return p.Decl.Pos }
func (p *Param) NodeEndPos() source.Pos { return p.Decl.EndPos }

func (d *VarDecl) NodePos() source.Pos    { return d.Pos }
func (d *VarDecl) NodeEndPos() source.Pos { return d.EndPos }

func (e *IntLit) NodePos() source.Pos    { return e.Pos }
func (e *IntLit) NodeEndPos() source.Pos { return e.EndPos }

func (e *BoolLit) NodePos() source.Pos    { return e.Pos }
func (e *BoolLit) NodeEndPos() source.Pos { return e.EndPos }

func (e *StringLit) NodePos() source.Pos    { return e.Pos }
func (e *StringLit) NodeEndPos() source.Pos { return e.EndPos }

func (e *UnitLit) NodePos() source.Pos    { return e.Pos }
func (e *UnitLit) NodeEndPos() source.Pos { return e.EndPos }

func (e *NoneLit) NodePos() source.Pos    { return e.Pos }
func (e *NoneLit) NodeEndPos() source.Pos { return e.EndPos }

func (e *SomeExpr) NodePos() source.Pos    { return e.Pos }
func (e *SomeExpr) NodeEndPos() source.Pos { return e.EndPos }

func (e *VarRef) NodePos() source.Pos    { return e.Pos }
func (e *VarRef) NodeEndPos() source.Pos { return e.EndPos }

func (e *UnaryExpr) NodePos() source.Pos    { return e.Pos }
func (e *UnaryExpr) NodeEndPos() source.Pos { return e.EndPos }

func (e *BinaryExpr) NodePos() source.Pos    { return e.Pos }
func (e *BinaryExpr) NodeEndPos() source.Pos { return e.EndPos }

func (e *TupleLit) NodePos() source.Pos    { return e.Pos }
func (e *TupleLit) NodeEndPos() source.Pos { return e.EndPos }

func (e *FieldAccess) NodePos() source.Pos    { return e.Pos }
func (e *FieldAccess) NodeEndPos() source.Pos { return e.EndPos }

func (e *CastExpr) NodePos() source.Pos    { return e.Pos }
func (e *CastExpr) NodeEndPos() source.Pos { return e.EndPos }

func (e *CallExpr) NodePos() source.Pos    { return e.Pos }
func (e *CallExpr) NodeEndPos() source.Pos { return e.EndPos }

func (e *InOutArg) NodePos() source.Pos    { return e.Pos }
func (e *InOutArg) NodeEndPos() source.Pos { return e.EndPos }

func (e *UnwrapExpr) NodePos() source.Pos    { return e.Pos }
func (e *UnwrapExpr) NodeEndPos() source.Pos { return e.EndPos }

func (e *SpawnExpr) NodePos() source.Pos    { return e.Pos }
func (e *SpawnExpr) NodeEndPos() source.Pos { return e.EndPos }

func (s *BlockStmt) NodePos() source.Pos    { return s.Pos }
func (s *BlockStmt) NodeEndPos() source.Pos { return s.EndPos }

func (s *LetStmt) NodePos() source.Pos    { return s.Pos }
func (s *LetStmt) NodeEndPos() source.Pos { return s.EndPos }

func (s *AssignStmt) NodePos() source.Pos    { return s.Pos }
func (s *AssignStmt) NodeEndPos() source.Pos { return s.EndPos }

func (s *ExprStmt) NodePos() source.Pos    { return s.Pos }
func (s *ExprStmt) NodeEndPos() source.Pos { return s.EndPos }

func (s *ReturnStmt) NodePos() source.Pos    { return s.Pos }
func (s *ReturnStmt) NodeEndPos() source.Pos { return s.EndPos }

func (s *BreakStmt) NodePos() source.Pos    { return s.Pos }
func (s *BreakStmt) NodeEndPos() source.Pos { return s.EndPos }

func (s *ContinueStmt) NodePos() source.Pos    { return s.Pos }
func (s *ContinueStmt) NodeEndPos() source.Pos { return s.EndPos }

func (s *ThrowStmt) NodePos() source.Pos    { return s.Pos }
func (s *ThrowStmt) NodeEndPos() source.Pos { return s.EndPos }

func (s *IfStmt) NodePos() source.Pos    { return s.Pos }
func (s *IfStmt) NodeEndPos() source.Pos { return s.EndPos }

func (s *WhileStmt) NodePos() source.Pos    { return s.Pos }
func (s *WhileStmt) NodeEndPos() source.Pos { return s.EndPos }

func (s *DoWhileStmt) NodePos() source.Pos    { return s.Pos }
func (s *DoWhileStmt) NodeEndPos() source.Pos { return s.EndPos }

func (s *TryStmt) NodePos() source.Pos    { return s.Pos }
func (s *TryStmt) NodeEndPos() source.Pos { return s.EndPos }
