package mirtext

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sora/internal/ast"
	"sora/internal/lower"
	"sora/internal/mir"
	"sora/internal/types"
)

// roundTripSrc is written in the exact canonical form the printer
// emits. It touches every opcode and terminator.
const roundTripSrc = `package demo

struct Task {
  url: str,
  tries: u8,
}

fn pump(inout %1: opt<u64>, %2: u64) -> u64 throws {
entry:
  %3 = local buf : u64
  %4 = load %1 : opt<u64>
  %5 = unwrap %4 ^catch : u64
  store %3, %5
  %6 = const 2 : u64
  %7 = binary mul.trap %5, %6 ^catch : u64
  %8 = unary neg.sat %7 : u64
  %9 = binary eq %8, %2 : bool
  br %9, done, fast.2
catch:
  %10 = catch : str
  raise %10 ^caller
done:
  %11 = some %7 : opt<u64>
  %12 = tuple %7, %9 : (u64, bool)
  %13 = field %12, 0 : u64
  ret %13
fast.2: maybe_unreach
  goto done skipcheck
}

fn boot(inout %1: Task) -> future<Task> {
entry:
  %2 = fieldaddr %1, 0 : str
  %3 = conststr "say \"hi\"" : str
  store %2, %3
  %4 = load %1 : Task
  %5 = funcref @Task.start : fn(Task) -> unit
  %6 = spawn %5(%4) : future<Task>
  %7 = inout %1 : Task
  call @log(%7)
  %8 = field %4, 1 : u8
  %9 = cast %8 : u64
  %10 = none : opt<u64>
  %11 = const () : unit
  %12 = const true : bool
  %13 = const -3 : i64
  ret %6
}

fn log(%1: Task) -> unit {
entry:
  ret
dead: maybe_unreach
  unreachable
}
`

func TestPrintParseRoundTrip(t *testing.T) {
	pkg, err := ParsePackage("roundtrip.mir", roundTripSrc)
	require.NoError(t, err)

	require.Len(t, pkg.Funcs, 3)
	pump := pkg.Funcs[0]
	assert.True(t, pump.Throws)
	require.Len(t, pump.Params, 2)
	assert.True(t, pump.Params[0].InOut, "first parameter is declared inout")
	assert.False(t, pump.Params[1].InOut)

	require.Len(t, pkg.Structs, 1)
	assert.Equal(t, "Task", pkg.Structs[0].Name)
	require.Len(t, pkg.Structs[0].Fields, 2)
	assert.True(t, types.Same(types.String, pkg.Structs[0].Fields[0].Type))

	assert.Equal(t, roundTripSrc, mir.Print(pkg), "printing a parsed package reproduces the input")
}

func TestParseSkipsCommentsAndBlankLines(t *testing.T) {
	pkg, err := ParsePackage("comments.mir", `package demo

// idle parks the worker.
fn idle() -> unit {
entry: // nothing to do
  ret
}
`)
	require.NoError(t, err)
	require.Len(t, pkg.Funcs, 1)
	assert.Equal(t, "idle", pkg.Funcs[0].Name)
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.mir")
	require.NoError(t, os.WriteFile(path, []byte(roundTripSrc), 0o644))

	pkg, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, "demo", pkg.Name)
	assert.Equal(t, roundTripSrc, mir.Print(pkg))
}

func TestParseFileMissing(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "missing.mir"))
	assert.ErrorContains(t, err, "failed to read file")
}

// Lowered functions must stay inside the textual grammar, including
// the desugared block labels and the caller handler shorthand.
func TestLoweredOutputRoundTrips(t *testing.T) {
	n := &ast.VarDecl{Name: "n", Typ: types.U64}
	fn := &ast.FuncDecl{
		Name:   "clamp",
		Params: []*ast.Param{{Decl: n}},
		Result: types.U64,
		Body: &ast.BlockStmt{Stmts: []ast.Stmt{
			&ast.IfStmt{
				Cond: &ast.BinaryExpr{
					Op:    ast.Lt,
					Left:  &ast.VarRef{Decl: n},
					Right: &ast.IntLit{Value: 10, Typ: types.U64},
					Typ:   types.Bool,
				},
				Then: &ast.BlockStmt{Stmts: []ast.Stmt{
					&ast.ReturnStmt{Value: &ast.BinaryExpr{
						Op:       ast.Mul,
						Strategy: ast.Trap,
						Left:     &ast.VarRef{Decl: n},
						Right:    &ast.IntLit{Value: 2, Typ: types.U64},
						Typ:      types.U64,
					}},
				}},
			},
			&ast.ReturnStmt{Value: &ast.VarRef{Decl: n}},
		}},
	}
	lowered := lower.LowerPackage(&ast.Package{Name: "demo", Funcs: []*ast.FuncDecl{fn}})

	text := mir.Print(lowered)
	reparsed, err := ParsePackage("lowered.mir", text)
	require.NoError(t, err, "lowered output parses back:\n%s", text)
	assert.Equal(t, text, mir.Print(reparsed))
}

func TestParseSyntaxError(t *testing.T) {
	_, err := ParsePackage("bad.mir", "package demo\n\nfn ( -> {\n")
	require.Error(t, err)
}
