// Package passes hosts the MIR transformation and diagnostic passes
// and the pipeline that sequences them.
package passes

import (
	"fmt"

	"github.com/tliron/commonlog"

	"sora/internal/diag"
	"sora/internal/mir"
)

var log = commonlog.GetLogger("sora.passes")

// Pass inspects or transforms one package. RunOnPackage reports
// whether it changed the MIR; debug enables per-rewrite logging.
type Pass interface {
	Name() string
	RunOnPackage(pkg *mir.Package, debug bool) bool
}

// Pipeline runs passes in order.
type Pipeline struct {
	Passes []Pass
	// Verify re-checks MIR well-formedness before the first pass and
	// after every pass that reports a change.
	Verify bool
	// Debug names the passes that should log each rewrite. The key
	// "all" enables every pass.
	Debug map[string]bool
}

// Default returns the standard pipeline: diagnostics first, on the
// MIR the user wrote, then the rewrites.
func Default(r *diag.Reporter) *Pipeline {
	return &Pipeline{
		Passes: []Pass{
			NewDiagnose(r),
			UnwrapElim{},
			DeadCode{},
		},
	}
}

// ByName resolves a pass name to a fresh pass instance.
func ByName(name string, r *diag.Reporter) (Pass, error) {
	switch name {
	case "diagnose":
		return NewDiagnose(r), nil
	case "unwrap-elim":
		return UnwrapElim{}, nil
	case "dead-code":
		return DeadCode{}, nil
	}
	return nil, fmt.Errorf("unknown pass %q", name)
}

// Run executes the pipeline over pkg and reports whether any pass
// changed it.
func (p *Pipeline) Run(pkg *mir.Package) (bool, error) {
	if p.Verify {
		if err := mir.VerifyPackage(pkg); err != nil {
			return false, fmt.Errorf("before passes: %w", err)
		}
	}
	changed := false
	for _, pass := range p.Passes {
		debug := p.Debug[pass.Name()] || p.Debug["all"]
		log.Debugf("running %s", pass.Name())
		if !pass.RunOnPackage(pkg, debug) {
			continue
		}
		changed = true
		if p.Verify {
			if err := mir.VerifyPackage(pkg); err != nil {
				return changed, fmt.Errorf("after %s: %w", pass.Name(), err)
			}
		}
	}
	return changed, nil
}
