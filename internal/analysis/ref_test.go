package analysis

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRootRepresentsOnlyItself(t *testing.T) {
	r := NewRootRef("x")
	s := NewRootRef("y")
	d := NewRef("x.f", r)

	assert.True(t, r.IsRoot())
	assert.True(t, r.CanRepresent(r))
	assert.False(t, r.CanRepresent(s))
	assert.False(t, r.CanRepresent(d), "one allocation cannot cover a projection class")
}

func TestDerivedRepresentsItsRoots(t *testing.T) {
	r := NewRootRef("x")
	s := NewRootRef("y")
	d := NewRef("x.f", r)

	assert.False(t, d.IsRoot())
	assert.True(t, d.CanRepresent(r))
	assert.False(t, d.CanRepresent(s))
}

func TestDerivedSubsetRule(t *testing.T) {
	r1 := NewRootRef("a")
	r2 := NewRootRef("b")
	wide := NewRef("w", r1, r2)
	narrow := NewRef("n", r1)

	assert.True(t, wide.CanRepresent(narrow))
	assert.False(t, narrow.CanRepresent(wide))

	// Same root set, either direction: the mutual case overlap checks
	// rely on.
	peer := NewRef("p", r1)
	assert.True(t, narrow.CanRepresent(peer))
	assert.True(t, peer.CanRepresent(narrow))
}

func TestNewRefFlattensDerivedBases(t *testing.T) {
	r1 := NewRootRef("a")
	r2 := NewRootRef("b")
	base := NewRef("base", r1, r2)
	d := NewRef("d", base)

	assert.True(t, d.CanRepresent(r1))
	assert.True(t, d.CanRepresent(r2))
	assert.True(t, d.CanRepresent(base))
}

func TestAddRootsInvalidatesMemoizedAnswers(t *testing.T) {
	r1 := NewRootRef("a")
	r2 := NewRootRef("b")
	d := NewRef("d", r1)
	q := NewRef("q", r2)

	assert.False(t, d.CanRepresent(q), "answer gets memoized here")
	assert.False(t, d.CanRepresent(r2))

	d.AddRoots(r2)
	assert.True(t, d.CanRepresent(q), "widening must flip the cached answer")
	assert.True(t, d.CanRepresent(r2))
}

func TestAddRootsOnRootAborts(t *testing.T) {
	r := NewRootRef("a")
	assert.Panics(t, func() { r.AddRoots(NewRootRef("b")) })
}

func TestRefString(t *testing.T) {
	a := NewRootRef("a")
	b := NewRootRef("b")
	assert.Equal(t, "a", a.String())
	assert.Equal(t, "fld{a,b}", NewRef("fld", b, a).String(), "roots print sorted")
}

func TestStaticRefForms(t *testing.T) {
	g := NewStaticRef("globals")
	assert.True(t, g.IsRoot())

	gf := NewStaticRef("globals.f", g)
	assert.False(t, gf.IsRoot())
	assert.True(t, gf.CanRepresent(g))
	assert.False(t, g.CanRepresent(gf))
}

func TestSharedRefConcurrentQueries(t *testing.T) {
	r1 := NewRootRef("a")
	r2 := NewRootRef("b")
	shared := NewStaticRef("shared", r1, r2)

	peers := []*Ref{
		NewRef("inside", r1),
		NewRef("also", r1, r2),
		NewRef("outside", NewRootRef("c")),
	}

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				assert.True(t, shared.CanRepresent(peers[0]))
				assert.True(t, shared.CanRepresent(peers[1]))
				assert.False(t, shared.CanRepresent(peers[2]))
				assert.True(t, shared.CanRepresent(r1))
			}
		}()
	}
	wg.Wait()
}
