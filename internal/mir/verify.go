package mir

import (
	"fmt"
	"strings"

	"sora/internal/types"
)

// Verify checks the structural integrity of a function: every block
// carries exactly one terminator, all jump and handler targets belong
// to the function, operands resolve to defined values, and each value
// is defined at most once. It returns an error describing all
// violations found, or nil if valid. Lowering runs it on every
// function it produces; the pass pipeline can run it around each pass.
func Verify(f *Function) error {
	var errs []string

	add := func(format string, args ...interface{}) {
		errs = append(errs, fmt.Sprintf(format, args...))
	}

	if len(f.blocks) == 0 {
		add("func %s: no blocks", f.Name)
		return combineErrors(errs)
	}

	if f.Entry == InvalidBlock || int(f.Entry) > len(f.blocks) {
		add("func %s: entry block %d out of range", f.Name, f.Entry)
		return combineErrors(errs)
	}

	validBlock := func(id BlockID) bool {
		return id != InvalidBlock && int(id) <= len(f.blocks)
	}
	validValue := func(id ValueID) bool {
		return id != InvalidValue && int(id) <= len(f.vals)
	}

	// Definition map: which instruction defines each value, and where.
	// Parameters count as definitions.
	defs := make(map[ValueID]*Instr, len(f.vals))
	defBlock := make(map[ValueID]*Block, len(f.vals))
	isParam := make(map[ValueID]bool, len(f.Params))
	isSlot := make(map[ValueID]bool)
	for _, p := range f.Params {
		if !validValue(p.Value) {
			add("func %s: parameter value %d out of range", f.Name, p.Value)
			continue
		}
		isParam[p.Value] = true
		if p.InOut {
			isSlot[p.Value] = true
		}
	}

	for _, b := range f.blocks {
		for _, in := range b.Instrs {
			if in.Result == InvalidValue {
				continue
			}
			if !validValue(in.Result) {
				add("func %s, %s: result %d out of range", f.Name, b.Name, in.Result)
				continue
			}
			if isParam[in.Result] {
				add("func %s, %s: %s redefines parameter %d", f.Name, b.Name, in.Op, in.Result)
			}
			if prev := defs[in.Result]; prev != nil {
				add("func %s, %s: value %d defined more than once", f.Name, b.Name, in.Result)
			}
			defs[in.Result] = in
			defBlock[in.Result] = b
			if in.Op == OpLocal || in.Op == OpFieldAddr {
				isSlot[in.Result] = true
			}
		}
	}

	defined := func(id ValueID) bool {
		return validValue(id) && (isParam[id] || defs[id] != nil)
	}

	for _, b := range f.blocks {
		if int(b.ID) > len(f.blocks) || f.blocks[b.ID-1] != b {
			add("func %s, %s: block ID %d does not match its arena slot", f.Name, b.Name, b.ID)
		}

		// 1. Exactly one terminator: present, and instructions never
		// follow it by construction.
		if b.Term == nil {
			add("func %s, %s: block has no terminator", f.Name, b.Name)
		}

		// 2. Instruction operands and payloads.
		seen := make(map[ValueID]bool)
		for _, in := range b.Instrs {
			if want, ok := argCounts[in.Op]; ok && len(in.Args) != want {
				add("func %s, %s: %s has %d args, want %d", f.Name, b.Name, in.Op, len(in.Args), want)
			}
			for i, a := range in.Args {
				if !defined(a) {
					add("func %s, %s: %s arg[%d] references undefined value %d", f.Name, b.Name, in.Op, i, a)
				} else if defBlock[a] == b && !seen[a] {
					add("func %s, %s: %s uses value %d before its definition", f.Name, b.Name, in.Op, a)
				}
			}
			if in.Handler != InvalidBlock {
				if !in.MayRaise {
					add("func %s, %s: %s has a handler but is not marked raising", f.Name, b.Name, in.Op)
				}
				if !validBlock(in.Handler) {
					add("func %s, %s: %s handler block %d not in function", f.Name, b.Name, in.Op, in.Handler)
				}
			}
			if in.HasResult() {
				seen[in.Result] = true
				if in.Type == nil {
					add("func %s, %s: %s result %d has no type", f.Name, b.Name, in.Op, in.Result)
				}
			}
			verifySlots(f, b, in, isSlot, add)
		}

		// 3. Terminator targets stay inside the function; terminator
		// operands resolve.
		switch t := b.Term.(type) {
		case *Goto:
			if !validBlock(t.Target) {
				add("func %s, %s: goto target %d not in function", f.Name, b.Name, t.Target)
			}
		case *Branch:
			if !validBlock(t.Then) {
				add("func %s, %s: branch then target %d not in function", f.Name, b.Name, t.Then)
			}
			if !validBlock(t.Else) {
				add("func %s, %s: branch else target %d not in function", f.Name, b.Name, t.Else)
			}
			if !defined(t.Cond) {
				add("func %s, %s: branch condition %d undefined", f.Name, b.Name, t.Cond)
			} else if ct := f.Value(t.Cond).Type; ct != nil && !types.IsBool(ct) {
				add("func %s, %s: branch condition %d has type %s, want bool", f.Name, b.Name, t.Cond, ct)
			}
		case *Raise:
			if t.Handler != InvalidBlock && !validBlock(t.Handler) {
				add("func %s, %s: raise handler %d not in function", f.Name, b.Name, t.Handler)
			}
			if !defined(t.Value) {
				add("func %s, %s: raise value %d undefined", f.Name, b.Name, t.Value)
			}
		case *Return:
			if t.Value != InvalidValue && !defined(t.Value) {
				add("func %s, %s: return value %d undefined", f.Name, b.Name, t.Value)
			}
		}
	}

	return combineErrors(errs)
}

// argCounts fixes the operand count for ops with a rigid shape.
// OpTuple and OpCall take any number of operands.
var argCounts = map[Op]int{
	OpConst:     0,
	OpConstStr:  0,
	OpNone:      0,
	OpFuncRef:   0,
	OpLocal:     0,
	OpLoad:      1,
	OpStore:     2,
	OpFieldAddr: 1,
	OpField:     1,
	OpUnary:     1,
	OpBinary:    2,
	OpCast:      1,
	OpSome:      1,
	OpUnwrap:    1,
	OpInOut:     1,
	OpSpawn:     2,
	OpCatch:     0,
}

// verifySlots enforces the slot discipline: memory ops take slots,
// value ops take values.
func verifySlots(f *Function, b *Block, in *Instr, isSlot map[ValueID]bool, add func(string, ...interface{})) {
	slotArg := func(i int) {
		if i < len(in.Args) && in.Args[i] != InvalidValue && !isSlot[in.Args[i]] {
			add("func %s, %s: %s arg[%d] (%d) is not a storage slot", f.Name, b.Name, in.Op, i, in.Args[i])
		}
	}
	valueArg := func(i int) {
		if i < len(in.Args) && in.Args[i] != InvalidValue && isSlot[in.Args[i]] {
			add("func %s, %s: %s arg[%d] (%d) is a storage slot, want a value", f.Name, b.Name, in.Op, i, in.Args[i])
		}
	}
	switch in.Op {
	case OpLoad, OpFieldAddr, OpInOut:
		slotArg(0)
	case OpStore:
		slotArg(0)
		valueArg(1)
	case OpField, OpUnary, OpBinary, OpCast, OpSome, OpUnwrap:
		valueArg(0)
		if in.Op == OpBinary {
			valueArg(1)
		}
	case OpTuple:
		for i := range in.Args {
			valueArg(i)
		}
	}
}

// VerifyPackage verifies every function in the package.
func VerifyPackage(p *Package) error {
	var errs []string
	for _, f := range p.Funcs {
		if err := Verify(f); err != nil {
			errs = append(errs, err.Error())
		}
	}
	return combineErrors(errs)
}

// combineErrors creates an error from a list of error strings, or returns nil.
func combineErrors(errs []string) error {
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("MIR verification failed:\n  %s", strings.Join(errs, "\n  "))
}
