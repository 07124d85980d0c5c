package passes

import (
	"sora/internal/mir"
)

// DeadCode removes blocks no edge reaches and pure instructions whose
// results nothing uses. Removing an instruction can orphan its
// operands, so instruction elimination repeats until stable.
type DeadCode struct{}

func (DeadCode) Name() string { return "dead-code" }

func (DeadCode) RunOnPackage(pkg *mir.Package, debug bool) bool {
	changed := false
	for _, fn := range pkg.Funcs {
		if elimUnreachableBlocks(fn, debug) {
			changed = true
		}
		if elimDeadInstrs(fn, debug) {
			changed = true
		}
	}
	return changed
}

func elimUnreachableBlocks(fn *mir.Function, debug bool) bool {
	reach := fn.Reachable()
	if len(reach) == len(fn.Blocks()) {
		return false
	}
	remove := make(map[mir.BlockID]bool)
	for _, b := range fn.Blocks() {
		if !reach[b.ID] {
			remove[b.ID] = true
			if debug {
				log.Infof("%s: removing unreachable block %s", fn.Name, b.Name)
			}
		}
	}
	fn.RemoveBlocks(remove)
	return true
}

func elimDeadInstrs(fn *mir.Function, debug bool) bool {
	changed := false
	for {
		uses := countUses(fn)
		removed := false
		for _, b := range fn.Blocks() {
			kept := b.Instrs[:0]
			for _, in := range b.Instrs {
				if in.Pure() && in.HasResult() && uses[in.Result] == 0 {
					removed = true
					if debug {
						log.Infof("%s: removing dead %s %%%d at %s", fn.Name, in.Op, in.Result, in.Pos)
					}
					continue
				}
				kept = append(kept, in)
			}
			b.Instrs = kept
		}
		if !removed {
			return changed
		}
		changed = true
	}
}

func countUses(fn *mir.Function) map[mir.ValueID]int {
	uses := make(map[mir.ValueID]int, fn.NumValues())
	for _, b := range fn.Blocks() {
		for _, in := range b.Instrs {
			for _, a := range in.Args {
				uses[a]++
			}
		}
		switch t := b.Term.(type) {
		case *mir.Branch:
			uses[t.Cond]++
		case *mir.Raise:
			uses[t.Value]++
		case *mir.Return:
			if t.Value != mir.InvalidValue {
				uses[t.Value]++
			}
		}
	}
	return uses
}
