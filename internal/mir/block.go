package mir

import (
	"sora/internal/diag"
	"sora/internal/source"
)

// Block is a basic block: an ordered instruction list ended by exactly
// one terminator. Blocks may be created empty and filled in program
// order; the single-terminator rule is enforced at construction time.
type Block struct {
	ID     BlockID
	Name   string
	Instrs []*Instr
	Term   Terminator

	// Span is the scope range the block was lowered from, for debug
	// output. May be zero for synthesized blocks.
	Span source.Span

	// MaybeUnreach marks blocks the lowerer knows can be unreachable,
	// such as the continuation after a throw. Dead-code diagnostics
	// skip them.
	MaybeUnreach bool
}

// Append adds an instruction to the block. Appending after the
// terminator is set is a bug in the caller.
func (b *Block) Append(in *Instr) {
	if b.Term != nil {
		diag.ICE("append to terminated block %s", b.Name)
	}
	b.Instrs = append(b.Instrs, in)
}

// SetTerm sets the block's terminator. The terminator can be set once;
// rewriting control flow goes through ReplaceTerm so the intent is
// explicit.
func (b *Block) SetTerm(t Terminator) {
	if b.Term != nil {
		diag.ICE("block %s already terminated", b.Name)
	}
	b.Term = t
}

// ReplaceTerm swaps the block's terminator for a new one.
func (b *Block) ReplaceTerm(t Terminator) {
	if b.Term == nil {
		diag.ICE("block %s has no terminator to replace", b.Name)
	}
	b.Term = t
}

// Terminated reports whether the block already has its terminator.
func (b *Block) Terminated() bool {
	return b.Term != nil
}

// Terminator is the single control-transfer instruction ending a
// block. All target blocks must belong to the same function as the
// block being terminated.
type Terminator interface {
	// Succs returns the blocks control can transfer to.
	Succs() []BlockID
	String() string
	isTerm()
}

// Goto transfers control unconditionally. SkipCheck suppresses
// dead-code diagnostics on the edge; lowering uses it for desugared
// shapes whose reachability is an artifact, not user code.
type Goto struct {
	Target    BlockID
	SkipCheck bool
	Pos       source.Pos
}

// Branch transfers control on a boolean condition.
type Branch struct {
	Cond      ValueID
	Then      BlockID
	Else      BlockID
	SkipCheck bool
	Pos       source.Pos
}

// Raise transfers the raised value to Handler, or unwinds to the
// caller when Handler is InvalidBlock.
type Raise struct {
	Value   ValueID
	Handler BlockID
	Pos     source.Pos
}

// Return leaves the function. Value is InvalidValue for unit returns.
type Return struct {
	Value ValueID
	Pos   source.Pos
}

// Unreachable marks control flow the frontend proved impossible.
type Unreachable struct {
	Pos source.Pos
}

func (*Goto) isTerm()        {}
func (*Branch) isTerm()      {}
func (*Raise) isTerm()       {}
func (*Return) isTerm()      {}
func (*Unreachable) isTerm() {}

func (t *Goto) Succs() []BlockID   { return []BlockID{t.Target} }
func (t *Branch) Succs() []BlockID { return []BlockID{t.Then, t.Else} }

func (t *Raise) Succs() []BlockID {
	if t.Handler != InvalidBlock {
		return []BlockID{t.Handler}
	}
	return nil
}

func (t *Return) Succs() []BlockID      { return nil }
func (t *Unreachable) Succs() []BlockID { return nil }
