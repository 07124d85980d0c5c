package ast

import (
	"sora/internal/source"
	"sora/internal/types"
)

// Package is the unit the middle-end processes: a set of functions
// plus the struct types they mention, all monomorphic.
type Package struct {
	Name    string
	Structs []*types.StructType
	Funcs   []*FuncDecl
}

// FuncDecl is a function with a lowered body. External functions
// (Body == nil) only contribute their signature.
type FuncDecl struct {
	Pos    source.Pos
	EndPos source.Pos
	Name   string
	Params []*Param
	Result types.Type
	Throws bool
	Body   *BlockStmt
}

// Sig returns the function's type.
func (f *FuncDecl) Sig() *types.FuncType {
	params := make([]types.Type, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.Decl.Typ
	}
	return &types.FuncType{Params: params, Result: f.Result, Throws: f.Throws}
}

// Param declares a function parameter. InOut parameters alias a
// caller location and are written back on return.
type Param struct {
	Decl  *VarDecl
	InOut bool
}

// VarDecl is the single declaration site of a local or parameter.
// Variable references share the *VarDecl pointer, so identity
// comparison resolves bindings.
type VarDecl struct {
	Pos     source.Pos
	EndPos  source.Pos
	Name    string
	Typ     types.Type
	Mutable bool
}
