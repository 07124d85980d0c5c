package analysis

import (
	"sort"
	"strings"
	"sync"

	"sora/internal/diag"
)

// Ref is an abstract storage location. A root ref stands for exactly
// one concrete allocation (a local slot or an inout parameter). A
// derived ref stands for some location reachable from a set of roots,
// such as a field projection whose base may be any of several
// allocations.
//
// CanRepresent queries are memoized per peer ref because the same
// pairs recur on every instruction of a fixpoint run. The cache
// flavor is picked at construction: refs private to one analysis use
// an unsynchronized map, refs shared across analyses (the
// process-wide statics) use a mutex-guarded one.
type Ref struct {
	name  string
	root  bool
	roots map[*Ref]struct{}
	cache repCache
}

// repCache memoizes CanRepresent results keyed by the peer ref.
type repCache interface {
	get(peer *Ref) (bool, bool)
	put(peer *Ref, v bool)
	clear()
}

// plainCache is for refs confined to a single analysis. No locking.
type plainCache struct {
	m map[*Ref]bool
}

func (c *plainCache) get(peer *Ref) (bool, bool) {
	v, ok := c.m[peer]
	return v, ok
}

func (c *plainCache) put(peer *Ref, v bool) {
	if c.m == nil {
		c.m = make(map[*Ref]bool)
	}
	c.m[peer] = v
}

func (c *plainCache) clear() {
	c.m = nil
}

// lockedCache is for refs shared between concurrently running
// analyses.
type lockedCache struct {
	mu sync.RWMutex
	m  map[*Ref]bool
}

func (c *lockedCache) get(peer *Ref) (bool, bool) {
	c.mu.RLock()
	v, ok := c.m[peer]
	c.mu.RUnlock()
	return v, ok
}

func (c *lockedCache) put(peer *Ref, v bool) {
	c.mu.Lock()
	if c.m == nil {
		c.m = make(map[*Ref]bool)
	}
	c.m[peer] = v
	c.mu.Unlock()
}

func (c *lockedCache) clear() {
	c.mu.Lock()
	c.m = nil
	c.mu.Unlock()
}

// NewRootRef creates a ref standing for one concrete allocation.
func NewRootRef(name string) *Ref {
	r := &Ref{name: name, root: true, cache: &plainCache{}}
	r.roots = map[*Ref]struct{}{r: {}}
	return r
}

// NewRef creates a derived ref reaching the given roots.
func NewRef(name string, roots ...*Ref) *Ref {
	r := &Ref{name: name, cache: &plainCache{}}
	r.roots = make(map[*Ref]struct{}, len(roots))
	r.addRoots(roots)
	return r
}

// NewStaticRef creates a ref meant to be shared across concurrently
// running analyses: a root when no bases are given, otherwise derived
// over them. Shared refs may serve CanRepresent queries from many
// goroutines at once; constructing and widening them stays on one
// thread.
func NewStaticRef(name string, roots ...*Ref) *Ref {
	r := &Ref{name: name, cache: &lockedCache{}}
	if len(roots) == 0 {
		r.root = true
		r.roots = map[*Ref]struct{}{r: {}}
		return r
	}
	r.roots = make(map[*Ref]struct{}, len(roots))
	r.addRoots(roots)
	return r
}

func (r *Ref) addRoots(roots []*Ref) {
	for _, root := range roots {
		if root.root {
			r.roots[root] = struct{}{}
			continue
		}
		for rr := range root.roots {
			r.roots[rr] = struct{}{}
		}
	}
}

// IsRoot reports whether r stands for exactly one concrete
// allocation.
func (r *Ref) IsRoot() bool {
	return r.root
}

// Name returns the display name.
func (r *Ref) Name() string {
	return r.name
}

// AddRoots widens a derived ref to additionally reach the given
// roots. Previously memoized answers may no longer hold, so the
// cache is dropped. Widening a root would turn one allocation into
// many; that is a construction bug.
func (r *Ref) AddRoots(roots ...*Ref) {
	if r.root {
		diag.ICE("AddRoots on root ref %s", r.name)
	}
	r.addRoots(roots)
	r.cache.clear()
}

// CanRepresent reports whether every location other may stand for is
// also one r may stand for. A root stands for exactly one allocation,
// so it can represent nothing but itself. A derived ref represents a
// root iff that root is in its root set, and another derived ref iff
// the other's root set is a subset of its own.
func (r *Ref) CanRepresent(other *Ref) bool {
	if r == other {
		return true
	}
	if r.root {
		return false
	}
	if v, ok := r.cache.get(other); ok {
		return v
	}
	v := true
	if other.root {
		_, v = r.roots[other]
	} else {
		for root := range other.roots {
			if _, ok := r.roots[root]; !ok {
				v = false
				break
			}
		}
	}
	r.cache.put(other, v)
	return v
}

// String renders the ref with its sorted root names, for debug
// output.
func (r *Ref) String() string {
	if r.root {
		return r.name
	}
	names := make([]string, 0, len(r.roots))
	for root := range r.roots {
		names = append(names, root.name)
	}
	sort.Strings(names)
	return r.name + "{" + strings.Join(names, ",") + "}"
}
