package passes

import (
	"sora/internal/diag"
	"sora/internal/mir"
	"sora/internal/source"
)

// Diagnose inspects the MIR and reports suspicious shapes without
// changing anything. Lowered control flow carries tags for the
// patterns that are expected: branches from desugared loops are
// SkipCheck, and continuation blocks after a definite exit are
// MaybeUnreach. Those stay silent; everything else is worth a
// warning.
type Diagnose struct {
	r *diag.Reporter
}

func NewDiagnose(r *diag.Reporter) *Diagnose {
	return &Diagnose{r: r}
}

func (*Diagnose) Name() string { return "diagnose" }

func (d *Diagnose) RunOnPackage(pkg *mir.Package, debug bool) bool {
	for _, fn := range pkg.Funcs {
		d.constantConditions(fn)
		d.unreachableBlocks(fn)
	}
	return false
}

func (d *Diagnose) constantConditions(fn *mir.Function) {
	defs := make(map[mir.ValueID]*mir.Instr)
	for _, b := range fn.Blocks() {
		for _, in := range b.Instrs {
			if in.HasResult() {
				defs[in.Result] = in
			}
		}
	}
	for _, b := range fn.Blocks() {
		t, ok := b.Term.(*mir.Branch)
		if !ok || t.SkipCheck {
			continue
		}
		def := defs[t.Cond]
		if def == nil || def.Op != mir.OpConst {
			continue
		}
		d.r.Warningf(t.Pos, "branch condition is always %t", def.AuxInt != 0)
	}
}

// unreachableBlocks warns about blocks no edge reaches. The walk
// treats MaybeUnreach blocks as extra roots: they and everything
// lowered under them were already diagnosed at the source level, so
// only genuinely unaccounted blocks remain. Of those, only region
// heads are reported to keep one warning per dead region.
func (d *Diagnose) unreachableBlocks(fn *mir.Function) {
	covered := make(map[mir.BlockID]bool, len(fn.Blocks()))
	work := []mir.BlockID{fn.Entry}
	for _, b := range fn.Blocks() {
		if b.MaybeUnreach {
			work = append(work, b.ID)
		}
	}
	for len(work) > 0 {
		id := work[len(work)-1]
		work = work[:len(work)-1]
		if id == mir.InvalidBlock || covered[id] {
			continue
		}
		covered[id] = true
		work = append(work, succsOf(fn.Block(id))...)
	}
	if len(covered) == len(fn.Blocks()) {
		return
	}

	deadPred := make(map[mir.BlockID]bool)
	for _, b := range fn.Blocks() {
		if covered[b.ID] {
			continue
		}
		for _, s := range succsOf(b) {
			if !covered[s] {
				deadPred[s] = true
			}
		}
	}
	for _, b := range fn.Blocks() {
		if covered[b.ID] || deadPred[b.ID] {
			continue
		}
		d.r.Warningf(blockPos(b), "block %s in %s is unreachable", b.Name, fn.Name)
	}
}

func succsOf(b *mir.Block) []mir.BlockID {
	var succs []mir.BlockID
	if b.Term != nil {
		succs = append(succs, b.Term.Succs()...)
	}
	for _, in := range b.Instrs {
		if in.MayRaise && in.Handler != mir.InvalidBlock {
			succs = append(succs, in.Handler)
		}
	}
	return succs
}

func blockPos(b *mir.Block) source.Pos {
	for _, in := range b.Instrs {
		if in.Pos.IsValid() {
			return in.Pos
		}
	}
	switch t := b.Term.(type) {
	case *mir.Goto:
		return t.Pos
	case *mir.Branch:
		return t.Pos
	case *mir.Raise:
		return t.Pos
	case *mir.Return:
		return t.Pos
	case *mir.Unreachable:
		return t.Pos
	}
	return b.Span.Start
}
