package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeStrings(t *testing.T) {
	task := &StructType{Name: "Task", Fields: []Field{{Name: "id", Type: U64}}}

	cases := []struct {
		typ  Type
		want string
	}{
		{I8, "i8"},
		{I16, "i16"},
		{I32, "i32"},
		{I64, "i64"},
		{U8, "u8"},
		{U16, "u16"},
		{U32, "u32"},
		{U64, "u64"},
		{Bool, "bool"},
		{String, "str"},
		{Unit, "unit"},
		{Never, "never"},
		{NewTuple(U8, Bool), "(u8, bool)"},
		{NewOption(U64), "opt<u64>"},
		{NewFuture(task), "future<Task>"},
		{task, "Task"},
		{&FuncType{Params: []Type{U64, Bool}, Result: Unit}, "fn(u64, bool) -> unit"},
		{&FuncType{Result: U64, Throws: true}, "fn() -> u64 throws"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.typ.String())
	}
}

func TestSameIsStructural(t *testing.T) {
	assert.True(t, Same(U64, U64), "singletons compare equal to themselves")
	assert.True(t, Same(U64, &IntType{Bits: 64}), "fresh int types compare by width and sign")
	assert.False(t, Same(U64, I64), "signedness distinguishes int types")
	assert.False(t, Same(U64, U32), "width distinguishes int types")
	assert.False(t, Same(U64, Bool))

	assert.True(t, Same(NewTuple(U8, Bool), NewTuple(U8, Bool)))
	assert.False(t, Same(NewTuple(U8, Bool), NewTuple(Bool, U8)), "element order matters")
	assert.False(t, Same(NewTuple(U8), NewTuple(U8, U8)), "arity matters")

	assert.True(t, Same(NewOption(NewTuple(U8, Bool)), NewOption(NewTuple(U8, Bool))))
	assert.False(t, Same(NewOption(U8), NewFuture(U8)))
}

func TestSameStructsAreNominal(t *testing.T) {
	a := &StructType{Name: "Task", Fields: []Field{{Name: "id", Type: U64}}}
	b := &StructType{Name: "Task", Fields: []Field{{Name: "url", Type: String}}}
	c := &StructType{Name: "Job", Fields: a.Fields}

	assert.True(t, Same(a, b), "structs compare by name")
	assert.False(t, Same(a, c))
}

func TestSameFuncTypes(t *testing.T) {
	f := &FuncType{Params: []Type{U64}, Result: Unit, Throws: true}
	assert.True(t, Same(f, &FuncType{Params: []Type{U64}, Result: Unit, Throws: true}))
	assert.False(t, Same(f, &FuncType{Params: []Type{U64}, Result: Unit}), "throws is part of the signature")
	assert.False(t, Same(f, &FuncType{Params: []Type{I64}, Result: Unit, Throws: true}))
	assert.False(t, Same(f, &FuncType{Params: []Type{U64}, Result: U64, Throws: true}))
}

func TestFieldHelpers(t *testing.T) {
	task := &StructType{Name: "Task", Fields: []Field{
		{Name: "id", Type: U64},
		{Name: "done", Type: Bool},
	}}
	pair := NewTuple(String, U8)

	assert.Equal(t, 2, FieldCount(task))
	assert.Equal(t, 2, FieldCount(pair))
	assert.Equal(t, 0, FieldCount(U64), "scalars have no fields")

	assert.True(t, Same(FieldType(task, 1), Bool))
	assert.True(t, Same(FieldType(pair, 0), String))
	assert.Nil(t, FieldType(U64, 0))
}

func TestPredicates(t *testing.T) {
	assert.True(t, IsInteger(U8))
	assert.True(t, IsInteger(I64))
	assert.False(t, IsInteger(Bool))
	assert.True(t, IsBool(Bool))
	assert.False(t, IsBool(U8))
}
