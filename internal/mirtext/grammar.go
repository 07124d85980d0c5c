// Package mirtext parses the textual form of MIR back into the arena
// representation. The grammar mirrors the canonical form the mir
// printer emits, so printing a parsed package reproduces the input.
package mirtext

import (
	"github.com/alecthomas/participle/v2/lexer"
)

type File struct {
	Pos     lexer.Position
	Package string       `"package" @Ident`
	Structs []*StructDef `@@*`
	Funcs   []*FuncDef   `@@*`
}

type StructDef struct {
	Pos    lexer.Position
	Name   string      `"struct" @Ident "{"`
	Fields []*FieldDef `@@* "}"`
}

type FieldDef struct {
	Pos  lexer.Position
	Name string   `@Ident ":"`
	Type *TypeRef `@@ ","`
}

type TypeRef struct {
	Pos    lexer.Position
	Fn     *FnTypeRef     `  @@`
	Opt    *OptTypeRef    `| @@`
	Future *FutureTypeRef `| @@`
	Tuple  *TupleTypeRef  `| @@`
	Name   string         `| @Ident`
}

type FnTypeRef struct {
	Params []*TypeRef `"fn" "(" [ @@ { "," @@ } ] ")"`
	Result *TypeRef   `"->" @@`
	Throws bool       `[ @"throws" ]`
}

type OptTypeRef struct {
	Elem *TypeRef `"opt" "<" @@ ">"`
}

type FutureTypeRef struct {
	Elem *TypeRef `"future" "<" @@ ">"`
}

type TupleTypeRef struct {
	Elems []*TypeRef `"(" @@ { "," @@ } ")"`
}

type FuncDef struct {
	Pos    lexer.Position
	Name   string      `"fn" @Ident "("`
	Params []*ParamDef `[ @@ { "," @@ } ] ")"`
	Result *TypeRef    `"->" @@`
	Throws bool        `[ @"throws" ]`
	Blocks []*BlockDef `"{" @@* "}"`
}

type ParamDef struct {
	Pos   lexer.Position
	InOut bool     `[ @"inout" ]`
	Value string   `@Value ":"`
	Type  *TypeRef `@@`
}

// Labels may carry dotted suffixes ("while.cond", "catch.2"), so a
// label is an identifier followed by dotted identifier or number
// parts, concatenated back into one string.
type BlockDef struct {
	Pos          lexer.Position
	Label        string      `@Ident { @"." @(Ident | Int) } ":"`
	MaybeUnreach bool        `[ @"maybe_unreach" ]`
	Instrs       []*InstrDef `@@*`
	Term         *TermDef    `[ @@ ]`
}

type InstrDef struct {
	Pos     lexer.Position
	Result  string   `[ @Value "=" ]`
	Op      *OpDef   `@@`
	Handler string   `[ "^" @Ident { @"." @(Ident | Int) } ]`
	Type    *TypeRef `[ ":" @@ ]`
}

type OpDef struct {
	Const     *ConstInstr     `  @@`
	ConstStr  *ConstStrInstr  `| @@`
	None      *NoneInstr      `| @@`
	FuncRef   *FuncRefInstr   `| @@`
	Local     *LocalInstr     `| @@`
	Load      *LoadInstr      `| @@`
	Store     *StoreInstr     `| @@`
	FieldAddr *FieldAddrInstr `| @@`
	Field     *FieldInstr     `| @@`
	Tuple     *TupleInstr     `| @@`
	Unary     *UnaryInstr     `| @@`
	Binary    *BinaryInstr    `| @@`
	Cast      *CastInstr      `| @@`
	Some      *SomeInstr      `| @@`
	Call      *CallInstr      `| @@`
	Unwrap    *UnwrapInstr    `| @@`
	InOut     *InOutInstr     `| @@`
	Spawn     *SpawnInstr     `| @@`
	Catch     *CatchInstr     `| @@`
}

type ConstInstr struct {
	Value *ConstValue `"const" @@`
}

type ConstValue struct {
	Int  *string `  @Int`
	Bool *string `| @("true" | "false")`
	Unit bool    `| @"(" ")"`
}

type ConstStrInstr struct {
	Value string `"conststr" @String`
}

type NoneInstr struct {
	Kw bool `@"none"`
}

type FuncRefInstr struct {
	Sym string `"funcref" "@" @Ident { @"." @(Ident | Int) }`
}

type LocalInstr struct {
	Sym string `"local" @Ident { @"." @(Ident | Int) }`
}

type LoadInstr struct {
	Slot string `"load" @Value`
}

type StoreInstr struct {
	Slot  string `"store" @Value ","`
	Value string `@Value`
}

type FieldAddrInstr struct {
	Base  string `"fieldaddr" @Value ","`
	Index string `@Int`
}

type FieldInstr struct {
	Base  string `"field" @Value ","`
	Index string `@Int`
}

type TupleInstr struct {
	Args []string `"tuple" [ @Value { "," @Value } ]`
}

type UnaryInstr struct {
	Op       string `"unary" @Ident`
	Strategy string `[ "." @Ident ]`
	Arg      string `@Value`
}

type BinaryInstr struct {
	Op       string `"binary" @Ident`
	Strategy string `[ "." @Ident ]`
	Left     string `@Value ","`
	Right    string `@Value`
}

type CastInstr struct {
	Arg string `"cast" @Value`
}

type SomeInstr struct {
	Arg string `"some" @Value`
}

type CallInstr struct {
	Sym  string   `"call" "@" @Ident`
	Args []string `"(" [ @Value { "," @Value } ] ")"`
}

type UnwrapInstr struct {
	Arg string `"unwrap" @Value`
}

type InOutInstr struct {
	Slot string `"inout" @Value`
}

type SpawnInstr struct {
	Fn   string `"spawn" @Value`
	Init string `"(" @Value ")"`
}

type CatchInstr struct {
	Kw bool `@"catch"`
}

type TermDef struct {
	Pos     lexer.Position
	Goto    *GotoTerm    `  @@`
	Br      *BrTerm      `| @@`
	Raise   *RaiseTerm   `| @@`
	Ret     *RetTerm     `| @@`
	Unreach *UnreachTerm `| @@`
}

type GotoTerm struct {
	Target    string `"goto" @Ident { @"." @(Ident | Int) }`
	SkipCheck bool   `[ @"skipcheck" ]`
}

type BrTerm struct {
	Cond      string `"br" @Value ","`
	Then      string `@Ident { @"." @(Ident | Int) } ","`
	Else      string `@Ident { @"." @(Ident | Int) }`
	SkipCheck bool   `[ @"skipcheck" ]`
}

// The handler "caller" is reserved: it stands for propagation out of
// the function rather than a block label.
type RaiseTerm struct {
	Value   string `"raise" @Value`
	Handler string `"^" @Ident { @"." @(Ident | Int) }`
}

type RetTerm struct {
	Value string `"ret" [ @Value ]`
}

type UnreachTerm struct {
	Kw bool `@"unreachable"`
}
