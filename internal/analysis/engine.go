// Package analysis provides the abstract-interpretation framework for
// MIR: a generic worklist fixpoint engine parameterized over a lattice
// domain, plus the concrete domains used by the transformation passes.
package analysis

import (
	"sora/internal/mir"
)

// Domain is the lattice a dataflow analysis runs over. S is the
// per-block abstract state.
//
// Top must mean "no information": it is the safe entry state for
// blocks the engine cannot see all entries of, such as handler blocks
// entered from raising instructions. Join must only weaken: the joined
// state may never claim more than either input, or a pass consuming
// the result would rewrite on an unsound proof.
type Domain[S any] interface {
	// Top returns the no-information state.
	Top() S
	// Entry returns the state on function entry.
	Entry(fn *mir.Function) S
	// Clone returns an independent copy of a state.
	Clone(s S) S
	// Join merges src into dst and reports whether dst changed.
	Join(dst, src S) (S, bool)
	// TransferInstr maps the state across one instruction.
	TransferInstr(s S, in *mir.Instr) S
	// TransferTerm maps the state across a block's terminator.
	TransferTerm(s S, t mir.Terminator) S
}

// Result holds the converged per-block input states of one run.
type Result[S any] struct {
	Fn  *mir.Function
	dom Domain[S]

	in      map[mir.BlockID]S
	reached map[mir.BlockID]bool
}

// Run iterates fn to a fixpoint under dom. The worklist starts at the
// entry block; handler blocks of raising instructions are seeded with
// Top since control can enter them from the middle of another block.
// States propagate along terminator successor edges (including raise
// edges to handlers) and join at merge points until nothing changes.
func Run[S any](fn *mir.Function, dom Domain[S]) *Result[S] {
	res := &Result[S]{
		Fn:      fn,
		dom:     dom,
		in:      make(map[mir.BlockID]S, len(fn.Blocks())),
		reached: make(map[mir.BlockID]bool, len(fn.Blocks())),
	}

	var worklist []mir.BlockID
	queued := make(map[mir.BlockID]bool, len(fn.Blocks()))
	enqueue := func(id mir.BlockID) {
		if !queued[id] {
			queued[id] = true
			worklist = append(worklist, id)
		}
	}

	seed := func(id mir.BlockID, s S) {
		if res.reached[id] {
			joined, changed := dom.Join(res.in[id], s)
			res.in[id] = joined
			if changed {
				enqueue(id)
			}
			return
		}
		res.in[id] = s
		res.reached[id] = true
		enqueue(id)
	}

	seed(fn.Entry, dom.Entry(fn))
	for _, b := range fn.Blocks() {
		for _, in := range b.Instrs {
			if in.MayRaise && in.Handler != mir.InvalidBlock {
				seed(in.Handler, dom.Top())
			}
		}
	}

	for len(worklist) > 0 {
		id := worklist[0]
		worklist = worklist[1:]
		queued[id] = false

		b := fn.Block(id)
		state := dom.Clone(res.in[id])
		for _, in := range b.Instrs {
			state = dom.TransferInstr(state, in)
		}
		if b.Term == nil {
			continue
		}
		state = dom.TransferTerm(state, b.Term)
		for _, succ := range b.Term.Succs() {
			seed(succ, dom.Clone(state))
		}
	}

	return res
}

// In returns the converged input state of a block. The second result
// is false for blocks the fixpoint never reached; callers must treat
// those as Top.
func (r *Result[S]) In(id mir.BlockID) (S, bool) {
	if !r.reached[id] {
		return r.dom.Top(), false
	}
	return r.in[id], true
}

// ReplayHooks are the callbacks a consumer installs for the converged
// replay: an ordered list of closures invoked in sequence at each
// visit point. BeforeInstr sees the state before the instruction's
// transfer, which is where passes query proofs and rewrite.
type ReplayHooks[S any] struct {
	BeforeInstr func(s S, in *mir.Instr)
	AfterInstr  func(s S, in *mir.Instr)
	OnTerm      func(s S, b *mir.Block, t mir.Terminator)
}

// Replay visits every instruction exactly once more with the converged
// states, invoking the hooks. Blocks the fixpoint never reached replay
// from Top so consumers stay conservative there.
func (r *Result[S]) Replay(h ReplayHooks[S]) {
	for _, b := range r.Fn.Blocks() {
		in, _ := r.In(b.ID)
		state := r.dom.Clone(in)
		for _, instr := range b.Instrs {
			if h.BeforeInstr != nil {
				h.BeforeInstr(state, instr)
			}
			state = r.dom.TransferInstr(state, instr)
			if h.AfterInstr != nil {
				h.AfterInstr(state, instr)
			}
		}
		if b.Term != nil {
			state = r.dom.TransferTerm(state, b.Term)
			if h.OnTerm != nil {
				h.OnTerm(state, b, b.Term)
			}
		}
	}
}
