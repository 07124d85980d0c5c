// Package lower translates the validated AST into mid-level IR. One
// method per node kind; the Lowerer carries the translation state the
// visitors share. The AST is trusted: malformed shapes indicate a bug
// in the frontend and abort via diag.ICE rather than being recovered.
package lower

import (
	"sora/internal/ast"
	"sora/internal/diag"
	"sora/internal/mir"
	"sora/internal/source"
	"sora/internal/types"
)

// binding records where a variable lives: a storage slot for mutable
// and inout variables, or the defining SSA value for immutable ones.
type binding struct {
	id     mir.ValueID
	isSlot bool
}

// loopScope holds the jump targets of one enclosing loop.
type loopScope struct {
	breakTo    mir.BlockID
	continueTo mir.BlockID
}

// Lowerer is the per-function translation context. It is explicit
// state threaded through the visit methods, so independent functions
// can lower in parallel.
//
// cur is the block new instructions append to. Any recursive
// sub-translation may allocate blocks and move cur; code that appends
// a terminator must use the cursor as it stands after the last
// sub-translation, never a block captured earlier.
type Lowerer struct {
	fn  *mir.Function
	cur *mir.Block

	vars     map[*ast.VarDecl]binding
	loops    []loopScope
	handlers []mir.BlockID
}

// LowerPackage lowers every function with a body.
func LowerPackage(p *ast.Package) *mir.Package {
	out := &mir.Package{Name: p.Name, Structs: p.Structs}
	for _, fd := range p.Funcs {
		if fd.Body == nil {
			continue
		}
		out.Funcs = append(out.Funcs, LowerFunc(fd))
	}
	return out
}

// LowerFunc lowers a single function declaration.
func LowerFunc(fd *ast.FuncDecl) *mir.Function {
	diag.Assertf(fd.Body != nil, "lowering %s: no body", fd.Name)

	fn := mir.NewFunction(fd.Name, fd.Result, fd.Throws)
	fn.Pos = fd.Pos
	l := &Lowerer{fn: fn, vars: make(map[*ast.VarDecl]binding)}

	for _, p := range fd.Params {
		id := fn.AddParam(p.Decl.Name, p.Decl.Typ, p.InOut, p.Decl.Pos)
		l.vars[p.Decl] = binding{id: id, isSlot: p.InOut}
	}

	l.cur = fn.NewBlock("entry")
	l.lowerBlock(fd.Body)

	// Fall-through at the end of the body: unit functions return,
	// anything else was proven diverging by the checker.
	if !l.cur.Terminated() {
		if _, ok := fd.Result.(*types.UnitType); ok {
			l.cur.SetTerm(&mir.Return{Pos: fd.Body.EndPos})
		} else {
			l.cur.SetTerm(&mir.Unreachable{Pos: fd.Body.EndPos})
		}
	}
	// Continuation blocks that never received code still need their
	// terminator for the IR to stay well formed.
	for _, b := range fn.Blocks() {
		if !b.Terminated() {
			diag.Assertf(b.MaybeUnreach, "lowering %s: block %s left unterminated", fd.Name, b.Name)
			b.SetTerm(&mir.Unreachable{})
		}
	}

	if err := mir.Verify(fn); err != nil {
		diag.ICE("lowering %s produced bad IR: %v", fd.Name, err)
	}
	return fn
}

// emit appends an instruction to the current block and returns its
// result value.
func (l *Lowerer) emit(in *mir.Instr) mir.ValueID {
	l.cur.Append(in)
	return in.Result
}

// newValue allocates the result value for an instruction under
// construction.
func (l *Lowerer) newValue(name string, t types.Type, pos source.Pos) mir.ValueID {
	return l.fn.NewValue(name, t, pos)
}

// handler returns the innermost active handler block, or InvalidBlock
// when a raise propagates to the caller.
func (l *Lowerer) handler() mir.BlockID {
	if len(l.handlers) == 0 {
		return mir.InvalidBlock
	}
	return l.handlers[len(l.handlers)-1]
}

func (l *Lowerer) pushHandler(b mir.BlockID) {
	l.handlers = append(l.handlers, b)
}

func (l *Lowerer) popHandler() {
	l.handlers = l.handlers[:len(l.handlers)-1]
}

func (l *Lowerer) pushLoop(s loopScope) {
	l.loops = append(l.loops, s)
}

func (l *Lowerer) popLoop() {
	l.loops = l.loops[:len(l.loops)-1]
}

func (l *Lowerer) innerLoop() loopScope {
	diag.Assertf(len(l.loops) > 0, "break/continue outside a loop reached lowering")
	return l.loops[len(l.loops)-1]
}

// continueInUnreachable opens a fresh block for code that follows a
// statement which already transferred control (throw, return, break,
// continue). The block is tagged so dead-code diagnostics can tell
// this desugaring artifact from genuinely suspicious IR, pairing it
// with the terminator that cut it off.
func (l *Lowerer) continueInUnreachable(name string) {
	b := l.fn.NewBlock(name)
	b.MaybeUnreach = true
	l.cur = b
}

// coerce inserts a cast when the value's static type differs from the
// expected element type.
func (l *Lowerer) coerce(v mir.ValueID, want types.Type, pos source.Pos) mir.ValueID {
	have := l.fn.Value(v).Type
	if have == nil || types.Same(have, want) {
		return v
	}
	return l.emit(&mir.Instr{
		Op:     mir.OpCast,
		Result: l.newValue("", want, pos),
		Args:   []mir.ValueID{v},
		Type:   want,
		Pos:    pos,
	})
}
