// Package mir defines the mid-level IR: a typed, SSA-like control-flow
// graph produced by lowering and consumed by analyses, transformation
// passes and the backend. Each function is an arena owning its blocks,
// instructions and value table; cross-references (operands, jump
// targets, handlers) are plain indices into that arena, so the graph
// may contain cycles without ownership cycles.
package mir

import (
	"fmt"

	"sora/internal/diag"
	"sora/internal/source"
	"sora/internal/types"
)

// Package is a set of lowered functions plus the struct types they
// reference. It is the unit passes run on.
type Package struct {
	Name    string
	Structs []*types.StructType
	Funcs   []*Function
}

// Func returns the function named name, or nil.
func (p *Package) Func(name string) *Function {
	for _, f := range p.Funcs {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Struct returns the struct type named name, or nil.
func (p *Package) Struct(name string) *types.StructType {
	for _, s := range p.Structs {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// Param is one function parameter. InOut parameters alias a caller
// location: inside the function they behave as storage slots, and the
// final value is written back on return.
type Param struct {
	Value ValueID
	InOut bool
}

// Function owns its blocks and values. Blocks and values are handed
// out by the New* allocators; their IDs stay valid for the function's
// lifetime.
type Function struct {
	Name   string
	Params []Param
	Result types.Type
	Throws bool
	Entry  BlockID
	Pos    source.Pos

	blocks     []*Block
	vals       []ValueInfo
	blockNames map[string]bool
}

// NewFunction creates an empty function. The first block created
// becomes the entry block unless Entry is reassigned.
func NewFunction(name string, result types.Type, throws bool) *Function {
	return &Function{Name: name, Result: result, Throws: throws, blockNames: make(map[string]bool)}
}

// AddParam appends a parameter value of the given type and returns its
// ID.
func (f *Function) AddParam(name string, t types.Type, inOut bool, pos source.Pos) ValueID {
	id := f.NewValue(name, t, pos)
	f.Params = append(f.Params, Param{Value: id, InOut: inOut})
	return id
}

// NewValue allocates a fresh SSA value.
func (f *Function) NewValue(name string, t types.Type, pos source.Pos) ValueID {
	f.vals = append(f.vals, ValueInfo{Name: name, Type: t, Pos: pos})
	return ValueID(len(f.vals))
}

// NewBlock allocates an empty block. Names double as textual labels,
// so they are made unique within the function.
func (f *Function) NewBlock(name string) *Block {
	id := BlockID(len(f.blocks) + 1)
	if name == "" {
		name = fmt.Sprintf("b%d", id)
	} else if f.blockNames[name] {
		name = fmt.Sprintf("%s.%d", name, id)
	}
	f.blockNames[name] = true
	b := &Block{ID: id, Name: name}
	f.blocks = append(f.blocks, b)
	if f.Entry == InvalidBlock {
		f.Entry = b.ID
	}
	return b
}

// Block resolves a block ID. Invalid IDs are a bug in the caller.
func (f *Function) Block(id BlockID) *Block {
	if id == InvalidBlock || int(id) > len(f.blocks) {
		diag.ICE("function %s: no block %d", f.Name, id)
	}
	return f.blocks[id-1]
}

// Blocks returns the function's blocks in creation order.
func (f *Function) Blocks() []*Block {
	return f.blocks
}

// Value resolves a value ID. Invalid IDs are a bug in the caller.
func (f *Function) Value(id ValueID) *ValueInfo {
	if id == InvalidValue || int(id) > len(f.vals) {
		diag.ICE("function %s: no value %d", f.Name, id)
	}
	return &f.vals[id-1]
}

// NumValues returns the number of allocated values. Value IDs range
// over [1, NumValues()].
func (f *Function) NumValues() int {
	return len(f.vals)
}

// EntryBlock returns the entry block.
func (f *Function) EntryBlock() *Block {
	return f.Block(f.Entry)
}

// IsParam reports whether id names a function parameter.
func (f *Function) IsParam(id ValueID) bool {
	for _, p := range f.Params {
		if p.Value == id {
			return true
		}
	}
	return false
}

// IsInOutParam reports whether id names an inout parameter.
func (f *Function) IsInOutParam(id ValueID) bool {
	for _, p := range f.Params {
		if p.Value == id {
			return p.InOut
		}
	}
	return false
}

// Reachable returns the set of blocks reachable from the entry by
// following terminator successors, including raise handler edges.
func (f *Function) Reachable() map[BlockID]bool {
	seen := make(map[BlockID]bool, len(f.blocks))
	work := []BlockID{f.Entry}
	for len(work) > 0 {
		id := work[len(work)-1]
		work = work[:len(work)-1]
		if id == InvalidBlock || seen[id] {
			continue
		}
		seen[id] = true
		b := f.Block(id)
		if b.Term != nil {
			work = append(work, b.Term.Succs()...)
		}
		// Handler blocks of raising instructions are entered when the
		// instruction raises, so they are reachable too.
		for _, in := range b.Instrs {
			if in.MayRaise && in.Handler != InvalidBlock {
				work = append(work, in.Handler)
			}
		}
	}
	return seen
}

// RemoveBlocks deletes the given blocks and renumbers the survivors.
// The entry block cannot be removed, and no surviving terminator or
// handler edge may still target a removed block.
func (f *Function) RemoveBlocks(remove map[BlockID]bool) {
	if len(remove) == 0 {
		return
	}
	if remove[f.Entry] {
		diag.ICE("function %s: removing entry block", f.Name)
	}
	remap := make(map[BlockID]BlockID, len(f.blocks))
	kept := f.blocks[:0]
	for _, b := range f.blocks {
		if remove[b.ID] {
			continue
		}
		id := BlockID(len(kept) + 1)
		remap[b.ID] = id
		b.ID = id
		kept = append(kept, b)
	}
	f.blocks = kept

	mapTo := func(id BlockID) BlockID {
		if id == InvalidBlock {
			return id
		}
		n, ok := remap[id]
		if !ok {
			diag.ICE("function %s: surviving edge into removed block %d", f.Name, id)
		}
		return n
	}
	f.Entry = mapTo(f.Entry)
	for _, b := range f.blocks {
		for _, in := range b.Instrs {
			in.Handler = mapTo(in.Handler)
		}
		switch t := b.Term.(type) {
		case *Goto:
			t.Target = mapTo(t.Target)
		case *Branch:
			t.Then = mapTo(t.Then)
			t.Else = mapTo(t.Else)
		case *Raise:
			t.Handler = mapTo(t.Handler)
		}
	}
}

// ReplaceUses rewrites every operand reference to old with new, in
// instruction argument lists and terminator operands alike.
func (f *Function) ReplaceUses(old, new ValueID) int {
	if old == InvalidValue || new == InvalidValue {
		diag.ICE("function %s: replacing invalid value", f.Name)
	}
	n := 0
	for _, b := range f.blocks {
		for _, in := range b.Instrs {
			for i, a := range in.Args {
				if a == old {
					in.Args[i] = new
					n++
				}
			}
		}
		switch t := b.Term.(type) {
		case *Branch:
			if t.Cond == old {
				t.Cond = new
				n++
			}
		case *Raise:
			if t.Value == old {
				t.Value = new
				n++
			}
		case *Return:
			if t.Value == old {
				t.Value = new
				n++
			}
		}
	}
	return n
}
