package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sora/internal/mir"
)

func TestTupleDomainStartsUnknown(t *testing.T) {
	d := NewTupleDomain(3)
	require.Equal(t, 3, d.FieldNum())
	for i := 0; i < 3; i++ {
		assert.True(t, EqualAbs(Unknown{}, d.Field(i)))
	}
}

func TestTupleOfKnowsItsOperands(t *testing.T) {
	d := TupleOf([]mir.ValueID{4, 9})
	require.Equal(t, 2, d.FieldNum())
	assert.True(t, EqualAbs(KnownValue{V: 4}, d.Field(0)))
	assert.True(t, EqualAbs(KnownValue{V: 9}, d.Field(1)))
}

func TestTupleDomainCloneIsDeep(t *testing.T) {
	inner := TupleOf([]mir.ValueID{1, 2})
	d := NewTupleDomain(2)
	d.SetField(0, KnownTuple{T: inner})
	d.SetField(1, KnownValue{V: 3})

	c := d.Clone()
	c.Field(0).(KnownTuple).T.SetField(0, Unknown{})
	c.SetField(1, Unknown{})

	assert.True(t, EqualAbs(KnownValue{V: 1}, d.Field(0).(KnownTuple).T.Field(0)),
		"nested domains must not be shared between clones")
	assert.True(t, EqualAbs(KnownValue{V: 3}, d.Field(1)))
}

func TestTupleDomainJoinWeakens(t *testing.T) {
	a := TupleOf([]mir.ValueID{1, 2})
	b := TupleOf([]mir.ValueID{1, 5})

	assert.True(t, a.Join(b), "the disagreeing field changed")
	assert.True(t, EqualAbs(KnownValue{V: 1}, a.Field(0)), "agreement survives the join")
	assert.True(t, EqualAbs(Unknown{}, a.Field(1)))

	assert.False(t, a.Join(b), "a second join with the same input is stable")
}

func TestTupleDomainAssignCopies(t *testing.T) {
	dst := NewTupleDomain(2)
	src := TupleOf([]mir.ValueID{7, 8})

	dst.Assign(src)
	assert.True(t, EqualAbs(KnownValue{V: 7}, dst.Field(0)))

	src.SetField(0, Unknown{})
	assert.True(t, EqualAbs(KnownValue{V: 7}, dst.Field(0)),
		"assignment detaches from the source")
}

func TestTupleDomainArityMismatchAborts(t *testing.T) {
	two := NewTupleDomain(2)
	three := NewTupleDomain(3)
	assert.Panics(t, func() { two.Join(three) })
	assert.Panics(t, func() { two.Assign(three) })
}

func TestTupleDomainFieldRangeAborts(t *testing.T) {
	d := NewTupleDomain(2)
	assert.Panics(t, func() { d.Field(2) })
	assert.Panics(t, func() { d.SetField(-1, Unknown{}) })
}

func TestJoinAbs(t *testing.T) {
	tests := []struct {
		name string
		a, b AbsValue
		want AbsValue
	}{
		{"unknown absorbs", Unknown{}, KnownValue{V: 1}, Unknown{}},
		{"same value", KnownValue{V: 1}, KnownValue{V: 1}, KnownValue{V: 1}},
		{"different values", KnownValue{V: 1}, KnownValue{V: 2}, Unknown{}},
		{"value against tuple", KnownValue{V: 1}, KnownTuple{T: NewTupleDomain(1)}, Unknown{}},
		{"tuple against value", KnownTuple{T: NewTupleDomain(1)}, KnownValue{V: 1}, Unknown{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, EqualAbs(tt.want, JoinAbs(tt.a, tt.b)))
		})
	}
}

func TestJoinAbsTuplesFieldwise(t *testing.T) {
	a := KnownTuple{T: TupleOf([]mir.ValueID{1, 2})}
	b := KnownTuple{T: TupleOf([]mir.ValueID{1, 3})}

	j, ok := JoinAbs(a, b).(KnownTuple)
	require.True(t, ok)
	assert.True(t, EqualAbs(KnownValue{V: 1}, j.T.Field(0)))
	assert.True(t, EqualAbs(Unknown{}, j.T.Field(1)))

	j.T.SetField(0, Unknown{})
	assert.True(t, EqualAbs(KnownValue{V: 1}, a.T.Field(0)),
		"the join result is detached from its inputs")
}

func TestEqualAbs(t *testing.T) {
	assert.True(t, EqualAbs(Unknown{}, Unknown{}))
	assert.True(t, EqualAbs(KnownValue{V: 3}, KnownValue{V: 3}))
	assert.False(t, EqualAbs(KnownValue{V: 3}, KnownValue{V: 4}))
	assert.False(t, EqualAbs(Unknown{}, KnownValue{V: 3}))
	assert.False(t, EqualAbs(KnownValue{V: 3}, Unknown{}))

	assert.True(t, EqualAbs(
		KnownTuple{T: TupleOf([]mir.ValueID{1, 2})},
		KnownTuple{T: TupleOf([]mir.ValueID{1, 2})},
	))
	assert.False(t, EqualAbs(
		KnownTuple{T: TupleOf([]mir.ValueID{1, 2})},
		KnownTuple{T: TupleOf([]mir.ValueID{1, 3})},
	))
	assert.False(t, EqualAbs(
		KnownTuple{T: TupleOf([]mir.ValueID{1})},
		KnownTuple{T: TupleOf([]mir.ValueID{1, 2})},
	), "arity is part of the shape")
}
