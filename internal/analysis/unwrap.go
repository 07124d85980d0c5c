package analysis

import (
	"strconv"

	"sora/internal/diag"
	"sora/internal/mir"
	"sora/internal/source"
)

// This file implements the presence analysis behind redundant
// get-or-throw elimination. A successful OpUnwrap proves its operand
// holds a value; the proof holds for the operand as an SSA value
// forever, and for the storage location it was loaded from until an
// overlapping store or an inout call clobbers that location.

// proofInfo records one successful check: the payload value it
// produced and where it happened.
type proofInfo struct {
	result mir.ValueID
	pos    source.Pos
}

// unwrapState is the per-point abstract state. Absent map entries
// mean Unknown / not proven, so the empty state is Top.
type unwrapState struct {
	// values tracks aggregate shapes and value equalities, so a
	// check on a tuple field recognizes the value it was built from.
	values map[mir.ValueID]AbsValue
	// proved maps an SSA value to the check that proved it present.
	proved map[mir.ValueID]proofInfo
	// refProofs maps a location to the check that proved its
	// current content present. Killed by overlapping writes.
	refProofs map[*Ref]proofInfo
	// loads records that a value is the current content of a
	// location. Killed by overlapping writes.
	loads map[mir.ValueID]*Ref
}

func newUnwrapState() *unwrapState {
	return &unwrapState{
		values:    make(map[mir.ValueID]AbsValue),
		proved:    make(map[mir.ValueID]proofInfo),
		refProofs: make(map[*Ref]proofInfo),
		loads:     make(map[mir.ValueID]*Ref),
	}
}

// unwrapDomain carries the flow-insensitive side tables: value
// definitions and the location refs of slots. Refs are keyed by slot
// path, so the same local or field chain always yields the same *Ref
// and map lookups compare locations by identity.
type unwrapDomain struct {
	fn        *mir.Function
	defs      map[mir.ValueID]*mir.Instr
	refs      map[mir.ValueID]*Ref
	fieldRefs map[fieldKey]*Ref
}

type fieldKey struct {
	base  *Ref
	field int
}

func newUnwrapDomain(fn *mir.Function) *unwrapDomain {
	d := &unwrapDomain{
		fn:        fn,
		defs:      make(map[mir.ValueID]*mir.Instr),
		refs:      make(map[mir.ValueID]*Ref),
		fieldRefs: make(map[fieldKey]*Ref),
	}
	for _, p := range fn.Params {
		if p.InOut {
			d.refs[p.Value] = NewRootRef(d.valueName(p.Value))
		}
	}
	for _, b := range fn.Blocks() {
		for _, in := range b.Instrs {
			if in.HasResult() {
				d.defs[in.Result] = in
			}
		}
	}
	return d
}

func (d *unwrapDomain) valueName(v mir.ValueID) string {
	if name := d.fn.Value(v).Name; name != "" {
		return name
	}
	return "%" + strconv.FormatUint(uint64(v), 10)
}

// refOf returns the location a slot value denotes. Slot chains bottom
// out at an OpLocal or an inout parameter, both single allocations,
// so every ref built here carries a singleton root set.
func (d *unwrapDomain) refOf(v mir.ValueID) *Ref {
	if r, ok := d.refs[v]; ok {
		return r
	}
	def := d.defs[v]
	if def == nil {
		diag.ICE("refOf: value %d has no defining instruction", v)
	}
	var r *Ref
	switch def.Op {
	case mir.OpLocal:
		name := def.Sym
		if name == "" {
			name = d.valueName(v)
		}
		r = NewRootRef(name)
	case mir.OpFieldAddr:
		base := d.refOf(def.Args[0])
		key := fieldKey{base: base, field: def.Field}
		if fr, ok := d.fieldRefs[key]; ok {
			r = fr
		} else {
			r = NewRef(base.Name()+"."+strconv.Itoa(def.Field), base)
			d.fieldRefs[key] = r
		}
	case mir.OpInOut:
		r = d.refOf(def.Args[0])
	default:
		diag.ICE("refOf: value %d defined by %s is not a slot", v, def.Op)
	}
	d.refs[v] = r
	return r
}

func (d *unwrapDomain) Top() *unwrapState {
	return newUnwrapState()
}

func (d *unwrapDomain) Entry(fn *mir.Function) *unwrapState {
	return newUnwrapState()
}

func cloneAbs(a AbsValue) AbsValue {
	if kt, ok := a.(KnownTuple); ok {
		return KnownTuple{T: kt.T.Clone()}
	}
	return a
}

func (d *unwrapDomain) Clone(s *unwrapState) *unwrapState {
	c := &unwrapState{
		values:    make(map[mir.ValueID]AbsValue, len(s.values)),
		proved:    make(map[mir.ValueID]proofInfo, len(s.proved)),
		refProofs: make(map[*Ref]proofInfo, len(s.refProofs)),
		loads:     make(map[mir.ValueID]*Ref, len(s.loads)),
	}
	for v, a := range s.values {
		c.values[v] = cloneAbs(a)
	}
	for v, p := range s.proved {
		c.proved[v] = p
	}
	for r, p := range s.refProofs {
		c.refProofs[r] = p
	}
	for v, r := range s.loads {
		c.loads[v] = r
	}
	return c
}

// Join intersects the two states: a fact survives a merge point only
// if every incoming edge carries it, with the same proof. Dropping
// entries only ever weakens, so the fixpoint terminates.
func (d *unwrapDomain) Join(dst, src *unwrapState) (*unwrapState, bool) {
	changed := false
	for v, a := range dst.values {
		b, ok := src.values[v]
		if !ok {
			delete(dst.values, v)
			changed = true
			continue
		}
		j := JoinAbs(a, b)
		if _, top := j.(Unknown); top {
			delete(dst.values, v)
			changed = true
			continue
		}
		if !EqualAbs(j, a) {
			dst.values[v] = j
			changed = true
		}
	}
	for v, p := range dst.proved {
		if q, ok := src.proved[v]; !ok || p != q {
			delete(dst.proved, v)
			changed = true
		}
	}
	for r, p := range dst.refProofs {
		if q, ok := src.refProofs[r]; !ok || p != q {
			delete(dst.refProofs, r)
			changed = true
		}
	}
	for v, r := range dst.loads {
		if q, ok := src.loads[v]; !ok || q != r {
			delete(dst.loads, v)
			changed = true
		}
	}
	return dst, changed
}

// resolveID follows recorded value equalities to the canonical SSA
// value. Proofs are recorded and queried at the canonical value only.
func resolveID(s *unwrapState, v mir.ValueID) mir.ValueID {
	for {
		kv, ok := s.values[v].(KnownValue)
		if !ok {
			return v
		}
		v = kv.V
	}
}

func resolveAbs(s *unwrapState, v mir.ValueID) AbsValue {
	for {
		a, ok := s.values[v]
		if !ok {
			return Unknown{}
		}
		kv, isKV := a.(KnownValue)
		if !isKV {
			return a
		}
		v = kv.V
	}
}

// killOverlapping drops every location fact the killer may write.
// Proof keys and load refs carry singleton root sets, so testing
// subset in both directions is exactly the may-overlap test.
func (s *unwrapState) killOverlapping(killer *Ref) {
	for r := range s.refProofs {
		if killer.CanRepresent(r) || r.CanRepresent(killer) {
			delete(s.refProofs, r)
		}
	}
	for v, r := range s.loads {
		if killer.CanRepresent(r) || r.CanRepresent(killer) {
			delete(s.loads, v)
		}
	}
}

func (d *unwrapDomain) TransferInstr(s *unwrapState, in *mir.Instr) *unwrapState {
	switch in.Op {
	case mir.OpTuple:
		s.values[in.Result] = KnownTuple{T: TupleOf(in.Args)}

	case mir.OpField:
		if kt, ok := resolveAbs(s, in.Args[0]).(KnownTuple); ok {
			f := kt.T.Field(in.Field)
			if _, top := f.(Unknown); !top {
				s.values[in.Result] = cloneAbs(f)
			}
		}

	case mir.OpLoad:
		r := d.refOf(in.Args[0])
		s.loads[in.Result] = r
		if p, ok := s.refProofs[r]; ok {
			s.proved[in.Result] = p
		}

	case mir.OpStore:
		r := d.refOf(in.Args[0])
		s.killOverlapping(r)
		if p, ok := s.proved[resolveID(s, in.Args[1])]; ok {
			s.refProofs[r] = p
		}

	case mir.OpUnwrap:
		// Falling through the check proves the operand present.
		// An existing proof is kept: its payload is the older
		// value, which dominates this one.
		x := resolveID(s, in.Args[0])
		p, ok := s.proved[x]
		if !ok {
			p = proofInfo{result: in.Result, pos: in.Pos}
			s.proved[x] = p
		}
		if r, ok := s.loads[x]; ok {
			if _, has := s.refProofs[r]; !has {
				s.refProofs[r] = p
			}
		}

	case mir.OpCall, mir.OpSpawn:
		// The callee may write through every slot passed inout.
		// The clobber set is one derived ref over all of them.
		var clobber *Ref
		for _, a := range in.Args {
			def := d.defs[a]
			if def == nil || def.Op != mir.OpInOut {
				continue
			}
			r := d.refOf(def.Args[0])
			if clobber == nil {
				clobber = NewRef("inout", r)
			} else {
				clobber.AddRoots(r)
			}
		}
		if clobber != nil {
			s.killOverlapping(clobber)
		}
	}
	return s
}

func (d *unwrapDomain) TransferTerm(s *unwrapState, t mir.Terminator) *unwrapState {
	return s
}

// Proof ties a redundant check to the earlier one that subsumes it.
type Proof struct {
	// Prior is the payload of the earlier check; every use of the
	// redundant check's result can be replaced with it.
	Prior    mir.ValueID
	PriorPos source.Pos
	// Pos is where the redundant check sits.
	Pos source.Pos
}

// UnwrapResult answers redundancy queries for one function's
// get-or-throw instructions.
type UnwrapResult struct {
	redundant map[mir.ValueID]Proof
}

// AnalyzeUnwraps runs the presence analysis over fn to a fixpoint and
// replays the converged states to collect, per OpUnwrap, whether an
// earlier check already proves its operand present.
func AnalyzeUnwraps(fn *mir.Function) *UnwrapResult {
	dom := newUnwrapDomain(fn)
	res := Run[*unwrapState](fn, dom)
	out := &UnwrapResult{redundant: make(map[mir.ValueID]Proof)}
	res.Replay(ReplayHooks[*unwrapState]{
		BeforeInstr: func(s *unwrapState, in *mir.Instr) {
			if in.Op != mir.OpUnwrap {
				return
			}
			x := resolveID(s, in.Args[0])
			p, ok := s.proved[x]
			if !ok || p.result == in.Result {
				return
			}
			out.redundant[in.Result] = Proof{Prior: p.result, PriorPos: p.pos, Pos: in.Pos}
		},
	})
	return out
}

// CheckGetOrThrowResult reports whether the check that produced v is
// redundant, and if so which earlier check proves it. The reported
// prior payload dominates v's check: the proof only survives joins
// where every incoming edge carries it.
func (r *UnwrapResult) CheckGetOrThrowResult(v mir.ValueID) (Proof, bool) {
	p, ok := r.redundant[v]
	return p, ok
}
