package passes

import (
	"sora/internal/analysis"
	"sora/internal/mir"
)

// UnwrapElim removes get-or-throw checks whose operand an earlier
// check already proved present. Uses of the redundant check's result
// are rewritten to the earlier payload and the check loses its raise
// edge, leaving a pure unused instruction for DeadCode to collect.
type UnwrapElim struct{}

func (UnwrapElim) Name() string { return "unwrap-elim" }

func (UnwrapElim) RunOnPackage(pkg *mir.Package, debug bool) bool {
	changed := false
	for _, fn := range pkg.Funcs {
		if elimRedundantUnwraps(fn, debug) {
			changed = true
		}
	}
	return changed
}

func elimRedundantUnwraps(fn *mir.Function, debug bool) bool {
	res := analysis.AnalyzeUnwraps(fn)
	changed := false
	for _, b := range fn.Blocks() {
		for _, in := range b.Instrs {
			if in.Op != mir.OpUnwrap {
				continue
			}
			p, ok := res.CheckGetOrThrowResult(in.Result)
			if !ok || p.Prior == in.Result {
				continue
			}
			fn.ReplaceUses(in.Result, p.Prior)
			in.MayRaise = false
			in.Handler = mir.InvalidBlock
			changed = true
			if debug {
				log.Infof("%s: %%%d at %s is redundant, proven at %s",
					fn.Name, in.Result, p.Pos, p.PriorPos)
			}
		}
	}
	return changed
}
