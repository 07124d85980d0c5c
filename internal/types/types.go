// Package types defines the Sora type model as seen by the middle-end.
// All types arriving here are fully resolved and monomorphic; generic
// instantiation happens in an earlier stage.
package types

import (
	"fmt"
	"strings"
)

// Type is the interface implemented by all Sora types.
type Type interface {
	String() string
	isType()
}

// IntType represents fixed-width integers (8 to 64 bits).
type IntType struct {
	Bits   int
	Signed bool
}

// BoolType represents the boolean type
type BoolType struct{}

// StringType represents immutable string values
type StringType struct{}

// UnitType is the type of expressions that produce no value.
type UnitType struct{}

// NeverType is the type of expressions that do not return normally,
// such as throw. It unifies with any type.
type NeverType struct{}

// TupleType is a fixed-arity product of element types.
type TupleType struct {
	Elems []Type
}

// OptionType wraps an element type that may be absent.
type OptionType struct {
	Elem Type
}

// FutureType is the handle produced by spawn; its element is the
// task's state type, which carries the task entry point.
type FutureType struct {
	Elem Type
}

// Field is a named member of a struct type.
type Field struct {
	Name string
	Type Type
}

// StructType is a nominal record with a fixed field list.
type StructType struct {
	Name   string
	Fields []Field
}

// FuncType describes a function signature, including whether the
// function may raise.
type FuncType struct {
	Params []Type
	Result Type
	Throws bool
}

func (*IntType) isType()    {}
func (*BoolType) isType()   {}
func (*StringType) isType() {}
func (*UnitType) isType()   {}
func (*NeverType) isType()  {}
func (*TupleType) isType()  {}
func (*OptionType) isType() {}
func (*FutureType) isType() {}
func (*StructType) isType() {}
func (*FuncType) isType()   {}

func (t *IntType) String() string {
	if t.Signed {
		return fmt.Sprintf("i%d", t.Bits)
	}
	return fmt.Sprintf("u%d", t.Bits)
}

func (*BoolType) String() string   { return "bool" }
func (*StringType) String() string { return "str" }
func (*UnitType) String() string   { return "unit" }
func (*NeverType) String() string  { return "never" }

func (t *TupleType) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (t *OptionType) String() string { return fmt.Sprintf("opt<%s>", t.Elem) }

func (t *FutureType) String() string { return fmt.Sprintf("future<%s>", t.Elem) }

func (t *StructType) String() string { return t.Name }

func (t *FuncType) String() string {
	parts := make([]string, len(t.Params))
	for i, p := range t.Params {
		parts[i] = p.String()
	}
	s := fmt.Sprintf("fn(%s) -> %s", strings.Join(parts, ", "), t.Result)
	if t.Throws {
		s += " throws"
	}
	return s
}

// Built-in type singletons. Identity comparison works for these, but
// structural code should still use Same.
var (
	I8  = &IntType{Bits: 8, Signed: true}
	I16 = &IntType{Bits: 16, Signed: true}
	I32 = &IntType{Bits: 32, Signed: true}
	I64 = &IntType{Bits: 64, Signed: true}
	U8  = &IntType{Bits: 8, Signed: false}
	U16 = &IntType{Bits: 16, Signed: false}
	U32 = &IntType{Bits: 32, Signed: false}
	U64 = &IntType{Bits: 64, Signed: false}

	Bool   = &BoolType{}
	String = &StringType{}
	Unit   = &UnitType{}
	Never  = &NeverType{}
)

// NewTuple builds a tuple type over elems.
func NewTuple(elems ...Type) *TupleType { return &TupleType{Elems: elems} }

// NewOption wraps elem in an option.
func NewOption(elem Type) *OptionType { return &OptionType{Elem: elem} }

// NewFuture builds the future handle type for a task state type.
func NewFuture(elem Type) *FutureType { return &FutureType{Elem: elem} }

// Same reports structural type equality.
func Same(a, b Type) bool {
	if a == b {
		return true
	}
	switch at := a.(type) {
	case *IntType:
		bt, ok := b.(*IntType)
		return ok && at.Bits == bt.Bits && at.Signed == bt.Signed
	case *BoolType:
		_, ok := b.(*BoolType)
		return ok
	case *StringType:
		_, ok := b.(*StringType)
		return ok
	case *UnitType:
		_, ok := b.(*UnitType)
		return ok
	case *NeverType:
		_, ok := b.(*NeverType)
		return ok
	case *TupleType:
		bt, ok := b.(*TupleType)
		if !ok || len(at.Elems) != len(bt.Elems) {
			return false
		}
		for i := range at.Elems {
			if !Same(at.Elems[i], bt.Elems[i]) {
				return false
			}
		}
		return true
	case *OptionType:
		bt, ok := b.(*OptionType)
		return ok && Same(at.Elem, bt.Elem)
	case *FutureType:
		bt, ok := b.(*FutureType)
		return ok && Same(at.Elem, bt.Elem)
	case *StructType:
		// Structs are nominal.
		bt, ok := b.(*StructType)
		return ok && at.Name == bt.Name
	case *FuncType:
		bt, ok := b.(*FuncType)
		if !ok || at.Throws != bt.Throws || len(at.Params) != len(bt.Params) {
			return false
		}
		for i := range at.Params {
			if !Same(at.Params[i], bt.Params[i]) {
				return false
			}
		}
		return Same(at.Result, bt.Result)
	}
	return false
}

// IsInteger checks if a type is a fixed-width integer type
func IsInteger(t Type) bool {
	_, ok := t.(*IntType)
	return ok
}

// IsBool checks if a type is the boolean type
func IsBool(t Type) bool {
	_, ok := t.(*BoolType)
	return ok
}

// FieldCount returns the number of accessible fields of a tuple or
// struct type, and 0 for every other type.
func FieldCount(t Type) int {
	switch t := t.(type) {
	case *TupleType:
		return len(t.Elems)
	case *StructType:
		return len(t.Fields)
	}
	return 0
}

// FieldType returns the type of field i of a tuple or struct type.
func FieldType(t Type, i int) Type {
	switch t := t.(type) {
	case *TupleType:
		return t.Elems[i]
	case *StructType:
		return t.Fields[i].Type
	}
	return nil
}
