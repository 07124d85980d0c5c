package passes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sora/internal/diag"
	"sora/internal/mir"
	"sora/internal/types"
)

func TestByName(t *testing.T) {
	r := diag.NewReporter()
	for _, name := range []string{"diagnose", "unwrap-elim", "dead-code"} {
		p, err := ByName(name, r)
		require.NoError(t, err)
		assert.Equal(t, name, p.Name())
	}

	_, err := ByName("inline", r)
	assert.ErrorContains(t, err, `unknown pass "inline"`)
}

func TestDefaultPipelineEndToEnd(t *testing.T) {
	pkg := parsePkg(t, `fn byval(%1: opt<u64>) -> u64 throws {
entry:
  %2 = unwrap %1 ^caller : u64
  %3 = unwrap %1 ^caller : u64
  %4 = binary add.wrap %2, %3 : u64
  ret %4
}
`)
	r := diag.NewReporter()
	pl := Default(r)
	pl.Verify = true

	changed, err := pl.Run(pkg)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Empty(t, r.Diagnostics())

	entry := pkg.Funcs[0].EntryBlock()
	require.Len(t, entry.Instrs, 2, "the redundant check was rewritten and then collected")
	assert.Equal(t, mir.OpUnwrap, entry.Instrs[0].Op)
	assert.Equal(t, []mir.ValueID{2, 2}, entry.Instrs[1].Args)
}

func TestPipelineVerifyRejectsBadInput(t *testing.T) {
	fn := mir.NewFunction("broken", types.U64, false)
	b := fn.NewBlock("entry")
	b.SetTerm(&mir.Return{Value: mir.ValueID(7)})
	pkg := &mir.Package{Name: "p", Funcs: []*mir.Function{fn}}

	pl := &Pipeline{Passes: []Pass{DeadCode{}}, Verify: true}
	_, err := pl.Run(pkg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "before passes")
}

func TestPipelineDebugSelection(t *testing.T) {
	pkg := parsePkg(t, `fn byval(%1: opt<u64>) -> u64 throws {
entry:
  %2 = unwrap %1 ^caller : u64
  %3 = unwrap %1 ^caller : u64
  %4 = binary add.wrap %2, %3 : u64
  ret %4
}
`)
	pl := &Pipeline{
		Passes: []Pass{UnwrapElim{}, DeadCode{}},
		Verify: true,
		Debug:  map[string]bool{"all": true},
	}
	changed, err := pl.Run(pkg)
	require.NoError(t, err)
	assert.True(t, changed)
}
