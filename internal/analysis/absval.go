package analysis

import (
	"sora/internal/diag"
	"sora/internal/mir"
)

// AbsValue is the lattice of knowledge about one runtime value at a
// program point.
type AbsValue interface {
	isAbs()
}

// Unknown is the lattice top: no information.
type Unknown struct{}

// KnownValue states the runtime value equals the SSA value V.
type KnownValue struct {
	V mir.ValueID
}

// KnownTuple carries per-field knowledge of an aggregate.
type KnownTuple struct {
	T *TupleDomain
}

func (Unknown) isAbs()    {}
func (KnownValue) isAbs() {}
func (KnownTuple) isAbs() {}

// JoinAbs combines two abstract values, weakening to Unknown whenever
// they disagree. Joining tuples of different arity is a malformed
// lattice merge and aborts.
func JoinAbs(a, b AbsValue) AbsValue {
	switch a := a.(type) {
	case Unknown:
		return Unknown{}
	case KnownValue:
		if b, ok := b.(KnownValue); ok && a.V == b.V {
			return a
		}
		return Unknown{}
	case KnownTuple:
		bt, ok := b.(KnownTuple)
		if !ok {
			return Unknown{}
		}
		t := a.T.Clone()
		t.Join(bt.T)
		return KnownTuple{T: t}
	}
	return Unknown{}
}

// EqualAbs reports whether two abstract values carry the same
// knowledge.
func EqualAbs(a, b AbsValue) bool {
	switch a := a.(type) {
	case Unknown:
		_, ok := b.(Unknown)
		return ok
	case KnownValue:
		bv, ok := b.(KnownValue)
		return ok && a.V == bv.V
	case KnownTuple:
		bt, ok := b.(KnownTuple)
		if !ok || a.T.FieldNum() != bt.T.FieldNum() {
			return false
		}
		for i := 0; i < a.T.FieldNum(); i++ {
			if !EqualAbs(a.T.Field(i), bt.T.Field(i)) {
				return false
			}
		}
		return true
	}
	return false
}

// TupleDomain is the abstract state of a tuple, struct or other
// fixed-arity aggregate at a program point: one current known value
// per field slot. The field count is fixed at construction and never
// changes; copies are explicit via Clone.
type TupleDomain struct {
	fields []AbsValue
}

// NewTupleDomain creates a domain of n fields, all Unknown.
func NewTupleDomain(n int) *TupleDomain {
	t := &TupleDomain{fields: make([]AbsValue, n)}
	for i := range t.fields {
		t.fields[i] = Unknown{}
	}
	return t
}

// TupleOf abstracts a freshly constructed aggregate: field i is known
// to be the i-th operand.
func TupleOf(args []mir.ValueID) *TupleDomain {
	t := &TupleDomain{fields: make([]AbsValue, len(args))}
	for i, a := range args {
		t.fields[i] = KnownValue{V: a}
	}
	return t
}

// FieldNum returns the fixed field count.
func (t *TupleDomain) FieldNum() int {
	return len(t.fields)
}

func (t *TupleDomain) check(i int) {
	if i < 0 || i >= len(t.fields) {
		diag.ICE("tuple domain field %d out of range [0, %d)", i, len(t.fields))
	}
}

// Field returns the abstract value of field i.
func (t *TupleDomain) Field(i int) AbsValue {
	t.check(i)
	return t.fields[i]
}

// SetField records a new abstract value for field i.
func (t *TupleDomain) SetField(i int, v AbsValue) {
	t.check(i)
	t.fields[i] = v
}

// Clone returns an independent copy.
func (t *TupleDomain) Clone() *TupleDomain {
	c := &TupleDomain{fields: make([]AbsValue, len(t.fields))}
	for i, f := range t.fields {
		if kt, ok := f.(KnownTuple); ok {
			f = KnownTuple{T: kt.T.Clone()}
		}
		c.fields[i] = f
	}
	return c
}

// Assign overwrites this domain with other's fields. Assigning across
// differing field counts merges incompatible shapes and aborts.
func (t *TupleDomain) Assign(other *TupleDomain) {
	if len(t.fields) != len(other.fields) {
		diag.ICE("tuple domain assignment across field counts %d and %d", len(t.fields), len(other.fields))
	}
	copy(t.fields, other.Clone().fields)
}

// Join weakens this domain fieldwise against other and reports whether
// anything changed. Field counts must match.
func (t *TupleDomain) Join(other *TupleDomain) bool {
	if len(t.fields) != len(other.fields) {
		diag.ICE("tuple domain join across field counts %d and %d", len(t.fields), len(other.fields))
	}
	changed := false
	for i := range t.fields {
		j := JoinAbs(t.fields[i], other.fields[i])
		if !EqualAbs(j, t.fields[i]) {
			t.fields[i] = j
			changed = true
		}
	}
	return changed
}
