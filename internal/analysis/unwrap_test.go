package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sora/internal/mir"
)

func TestUnwrapRedundantOnSameValue(t *testing.T) {
	fn := parseFn(t, `fn byval(%1: opt<u64>) -> u64 throws {
entry:
  %2 = unwrap %1 ^caller : u64
  %3 = unwrap %1 ^caller : u64
  %4 = binary add.wrap %2, %3 : u64
  ret %4
}
`)
	res := AnalyzeUnwraps(fn)

	_, ok := res.CheckGetOrThrowResult(mir.ValueID(2))
	assert.False(t, ok, "the first check does the proving")

	p, ok := res.CheckGetOrThrowResult(mir.ValueID(3))
	require.True(t, ok, "the second check re-proves a known fact")
	assert.Equal(t, mir.ValueID(2), p.Prior)
	assert.Less(t, p.PriorPos.Line, p.Pos.Line, "the proof site precedes the redundant check")
}

func TestUnwrapRedundantThroughReload(t *testing.T) {
	fn := parseFn(t, `fn slot(inout %1: opt<u64>) -> u64 throws {
entry:
  %2 = load %1 : opt<u64>
  %3 = unwrap %2 ^caller : u64
  %4 = load %1 : opt<u64>
  %5 = unwrap %4 ^caller : u64
  %6 = binary add.wrap %3, %5 : u64
  ret %6
}
`)
	res := AnalyzeUnwraps(fn)

	_, ok := res.CheckGetOrThrowResult(mir.ValueID(3))
	assert.False(t, ok)

	p, ok := res.CheckGetOrThrowResult(mir.ValueID(5))
	require.True(t, ok, "nothing wrote the slot between the loads, the proof carries over")
	assert.Equal(t, mir.ValueID(3), p.Prior)
}

func TestStoreKillsLocationProofButNotValueProof(t *testing.T) {
	fn := parseFn(t, `fn stomp(inout %1: opt<u64>) -> u64 throws {
entry:
  %2 = load %1 : opt<u64>
  %3 = unwrap %2 ^caller : u64
  %4 = none : opt<u64>
  store %1, %4
  %5 = load %1 : opt<u64>
  %6 = unwrap %5 ^caller : u64
  %7 = unwrap %2 ^caller : u64
  %8 = binary add.wrap %6, %7 : u64
  ret %8
}
`)
	res := AnalyzeUnwraps(fn)

	_, ok := res.CheckGetOrThrowResult(mir.ValueID(6))
	assert.False(t, ok, "the store may have emptied the slot")

	p, ok := res.CheckGetOrThrowResult(mir.ValueID(7))
	require.True(t, ok, "the SSA value checked earlier cannot change")
	assert.Equal(t, mir.ValueID(3), p.Prior)
}

func TestStoreOfProvenValueKeepsLocationProof(t *testing.T) {
	fn := parseFn(t, `fn reput(inout %1: opt<u64>) -> u64 throws {
entry:
  %2 = load %1 : opt<u64>
  %3 = unwrap %2 ^caller : u64
  store %1, %2
  %4 = load %1 : opt<u64>
  %5 = unwrap %4 ^caller : u64
  %6 = binary add.wrap %3, %5 : u64
  ret %6
}
`)
	res := AnalyzeUnwraps(fn)

	p, ok := res.CheckGetOrThrowResult(mir.ValueID(5))
	require.True(t, ok, "storing back the value that was just proven present keeps the proof")
	assert.Equal(t, mir.ValueID(3), p.Prior)
}

func TestInOutCallClobbersLocationProofs(t *testing.T) {
	fn := parseFn(t, `fn clobber(inout %1: opt<u64>) -> u64 throws {
entry:
  %2 = load %1 : opt<u64>
  %3 = unwrap %2 ^caller : u64
  %4 = inout %1 : opt<u64>
  call @mut(%4)
  %5 = load %1 : opt<u64>
  %6 = unwrap %5 ^caller : u64
  %7 = binary add.wrap %3, %6 : u64
  ret %7
}
`)
	res := AnalyzeUnwraps(fn)

	_, ok := res.CheckGetOrThrowResult(mir.ValueID(3))
	assert.False(t, ok)
	_, ok = res.CheckGetOrThrowResult(mir.ValueID(6))
	assert.False(t, ok, "the callee may have written none through the inout slot")
}

func TestProofMustHoldOnEveryPath(t *testing.T) {
	fn := parseFn(t, `fn merge(%1: opt<u64>, %2: bool) -> u64 throws {
entry:
  br %2, hot, cold
hot:
  %3 = unwrap %1 ^caller : u64
  goto out
cold:
  goto out
out:
  %4 = unwrap %1 ^caller : u64
  ret %4
}
`)
	res := AnalyzeUnwraps(fn)

	_, ok := res.CheckGetOrThrowResult(mir.ValueID(3))
	assert.False(t, ok)
	_, ok = res.CheckGetOrThrowResult(mir.ValueID(4))
	assert.False(t, ok, "the cold path never proved the operand present")
}

func TestDominatingProofCoversBothArms(t *testing.T) {
	fn := parseFn(t, `fn dominate(%1: opt<u64>, %2: bool) -> u64 throws {
entry:
  %3 = unwrap %1 ^caller : u64
  br %2, hot, cold
hot:
  %4 = unwrap %1 ^caller : u64
  goto out
cold:
  goto out
out:
  %5 = unwrap %1 ^caller : u64
  ret %5
}
`)
	res := AnalyzeUnwraps(fn)

	p, ok := res.CheckGetOrThrowResult(mir.ValueID(4))
	require.True(t, ok)
	assert.Equal(t, mir.ValueID(3), p.Prior)

	p, ok = res.CheckGetOrThrowResult(mir.ValueID(5))
	require.True(t, ok, "both edges into the join carry the same proof")
	assert.Equal(t, mir.ValueID(3), p.Prior)
}

func TestProofSurvivesLoopBackEdge(t *testing.T) {
	fn := parseFn(t, `fn loop(%1: opt<u64>, %2: bool) -> u64 throws {
entry:
  %3 = unwrap %1 ^caller : u64
  goto head
head:
  %4 = unwrap %1 ^caller : u64
  br %2, head, exit skipcheck
exit:
  ret %4
}
`)
	res := AnalyzeUnwraps(fn)

	p, ok := res.CheckGetOrThrowResult(mir.ValueID(4))
	require.True(t, ok, "the back edge carries the same proof as the entry edge")
	assert.Equal(t, mir.ValueID(3), p.Prior)
}

func TestLoopStoreKillsReloadProof(t *testing.T) {
	fn := parseFn(t, `fn loopkill(inout %1: opt<u64>, %2: bool) -> u64 throws {
entry:
  %3 = load %1 : opt<u64>
  %4 = unwrap %3 ^caller : u64
  goto head
head:
  %5 = load %1 : opt<u64>
  %6 = unwrap %5 ^caller : u64
  %7 = none : opt<u64>
  store %1, %7
  br %2, head, exit skipcheck
exit:
  ret %6
}
`)
	res := AnalyzeUnwraps(fn)

	_, ok := res.CheckGetOrThrowResult(mir.ValueID(4))
	assert.False(t, ok)
	_, ok = res.CheckGetOrThrowResult(mir.ValueID(6))
	assert.False(t, ok, "the store in the loop body reaches the head along the back edge")
}

func TestProofFlowsThroughTupleShape(t *testing.T) {
	fn := parseFn(t, `fn pack(%1: opt<u64>, %2: bool) -> u64 throws {
entry:
  %3 = unwrap %1 ^caller : u64
  %4 = tuple %1, %2 : (opt<u64>, bool)
  %5 = field %4, 0 : opt<u64>
  %6 = unwrap %5 ^caller : u64
  %7 = binary add.wrap %3, %6 : u64
  ret %7
}
`)
	res := AnalyzeUnwraps(fn)

	p, ok := res.CheckGetOrThrowResult(mir.ValueID(6))
	require.True(t, ok, "the projected field is the value that was already checked")
	assert.Equal(t, mir.ValueID(3), p.Prior)
}

func TestUnwrapInsideHandlerStartsUnproven(t *testing.T) {
	fn := parseFn(t, `fn rescue(%1: opt<u64>) -> u64 throws {
entry:
  %2 = unwrap %1 ^catch : u64
  ret %2
catch:
  %3 = catch : str
  %4 = unwrap %1 ^caller : u64
  ret %4
}
`)
	res := AnalyzeUnwraps(fn)

	_, ok := res.CheckGetOrThrowResult(mir.ValueID(4))
	assert.False(t, ok, "the handler is entered precisely because the check failed")
}
