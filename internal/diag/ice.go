package diag

import "fmt"

// ICE reports an internal compiler error: a broken invariant that can
// only come from a middle-end bug, never from user source. It panics;
// callers do not recover.
func ICE(format string, args ...interface{}) {
	panic(fmt.Sprintf("internal compiler error: "+format, args...))
}

// Assertf checks an invariant and raises an ICE when it does not hold.
func Assertf(cond bool, format string, args ...interface{}) {
	if !cond {
		ICE(format, args...)
	}
}
