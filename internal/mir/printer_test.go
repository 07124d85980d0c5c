package mir

import (
	"strings"
	"testing"

	"sora/internal/source"
	"sora/internal/types"
)

func TestPrintPackage(t *testing.T) {
	task := &types.StructType{Name: "Task", Fields: []types.Field{
		{Name: "url", Type: types.String},
		{Name: "tries", Type: types.U8},
	}}
	f := NewFunction("noop", types.Unit, false)
	f.NewBlock("entry").SetTerm(&Return{})
	pkg := &Package{Name: "demo", Structs: []*types.StructType{task}, Funcs: []*Function{f}}

	want := `package demo

struct Task {
  url: str,
  tries: u8,
}

fn noop() -> unit {
entry:
  ret
}
`
	if got := Print(pkg); got != want {
		t.Errorf("package prints as:\n%s\nwant:\n%s", got, want)
	}
}

func TestPrintFuncHeader(t *testing.T) {
	optU64 := types.NewOption(types.U64)
	f := NewFunction("get", types.U64, true)
	box := f.AddParam("box", optU64, true, source.NoPos)
	f.AddParam("key", types.U64, false, source.NoPos)

	b := f.NewBlock("entry")
	loaded := &Instr{Op: OpLoad, Result: f.NewValue("", optU64, source.NoPos), Args: []ValueID{box}, Type: optU64}
	payload := &Instr{Op: OpUnwrap, Result: f.NewValue("", types.U64, source.NoPos), Args: []ValueID{loaded.Result}, Type: types.U64, MayRaise: true}
	b.Append(loaded)
	b.Append(payload)
	b.SetTerm(&Return{Value: payload.Result})

	want := `fn get(inout %1: opt<u64>, %2: u64) -> u64 throws {
entry:
  %3 = load %1 : opt<u64>
  %4 = unwrap %3 ^caller : u64
  ret %4
}
`
	if got := PrintFunc(f); got != want {
		t.Errorf("function prints as:\n%s\nwant:\n%s", got, want)
	}
}

func TestFprint(t *testing.T) {
	f := NewFunction("noop", types.Unit, false)
	f.NewBlock("entry").SetTerm(&Return{})

	var sb strings.Builder
	if err := Fprint(&sb, f); err != nil {
		t.Fatalf("Fprint: %v", err)
	}
	if got, want := sb.String(), PrintFunc(f); got != want {
		t.Errorf("Fprint wrote:\n%s\nwant:\n%s", got, want)
	}
}

func TestPrintConstantForms(t *testing.T) {
	f := NewFunction("consts", types.Unit, false)
	b := f.NewBlock("entry")
	add := func(in *Instr) { b.Append(in) }

	add(&Instr{Op: OpConst, Result: f.NewValue("", types.U64, source.NoPos), Type: types.U64, AuxInt: 7})
	add(&Instr{Op: OpConst, Result: f.NewValue("", types.I64, source.NoPos), Type: types.I64, AuxInt: ^uint64(2)})
	add(&Instr{Op: OpConst, Result: f.NewValue("", types.Bool, source.NoPos), Type: types.Bool, AuxInt: 1})
	add(&Instr{Op: OpConst, Result: f.NewValue("", types.Bool, source.NoPos), Type: types.Bool})
	add(&Instr{Op: OpConst, Result: f.NewValue("", types.Unit, source.NoPos), Type: types.Unit})
	add(&Instr{Op: OpConstStr, Result: f.NewValue("", types.String, source.NoPos), Type: types.String, AuxStr: `say "hi"`})
	add(&Instr{Op: OpNone, Result: f.NewValue("", types.NewOption(types.String), source.NoPos), Type: types.NewOption(types.String)})
	b.SetTerm(&Return{})

	want := `fn consts() -> unit {
entry:
  %1 = const 7 : u64
  %2 = const -3 : i64
  %3 = const true : bool
  %4 = const false : bool
  %5 = const () : unit
  %6 = conststr "say \"hi\"" : str
  %7 = none : opt<str>
  ret
}
`
	if got := PrintFunc(f); got != want {
		t.Errorf("constants print as:\n%s\nwant:\n%s", got, want)
	}
}

// Overflow strategies print only on operations that can overflow;
// comparisons and plain bit operations stay bare.
func TestPrintStrategySuffixes(t *testing.T) {
	f := NewFunction("arith", types.U64, true)
	a := f.AddParam("a", types.U64, false, source.NoPos)
	c := f.AddParam("b", types.U64, false, source.NoPos)
	b := f.NewBlock("entry")

	sum := &Instr{Op: OpBinary, BinOp: BinAdd, Strategy: OverflowTrap, Result: f.NewValue("", types.U64, source.NoPos), Args: []ValueID{a, c}, Type: types.U64, MayRaise: true}
	eq := &Instr{Op: OpBinary, BinOp: BinEq, Result: f.NewValue("", types.Bool, source.NoPos), Args: []ValueID{a, c}, Type: types.Bool}
	neg := &Instr{Op: OpUnary, UnOp: UnNeg, Strategy: OverflowSat, Result: f.NewValue("", types.U64, source.NoPos), Args: []ValueID{a}, Type: types.U64}
	div := &Instr{Op: OpBinary, BinOp: BinDiv, Strategy: OverflowWrap, Result: f.NewValue("", types.U64, source.NoPos), Args: []ValueID{a, c}, Type: types.U64, MayRaise: true}
	shr := &Instr{Op: OpBinary, BinOp: BinShr, Result: f.NewValue("", types.U64, source.NoPos), Args: []ValueID{a, c}, Type: types.U64}
	for _, in := range []*Instr{sum, eq, neg, div, shr} {
		b.Append(in)
	}
	b.SetTerm(&Return{Value: sum.Result})

	want := `fn arith(%1: u64, %2: u64) -> u64 throws {
entry:
  %3 = binary add.trap %1, %2 ^caller : u64
  %4 = binary eq %1, %2 : bool
  %5 = unary neg.sat %1 : u64
  %6 = binary div.wrap %1, %2 ^caller : u64
  %7 = binary shr %1, %2 : u64
  ret %3
}
`
	if got := PrintFunc(f); got != want {
		t.Errorf("strategies print as:\n%s\nwant:\n%s", got, want)
	}
}

func TestPrintControlFlowForms(t *testing.T) {
	task := &types.StructType{Name: "Task", Fields: []types.Field{{Name: "id", Type: types.U64}}}
	pair := types.NewTuple(types.U64, types.Bool)
	startType := &types.FuncType{Params: []types.Type{task}, Result: types.Unit}

	f := NewFunction("tasks", types.Unit, false)
	entry := f.NewBlock("entry")
	more := f.NewBlock("more")
	catch := f.NewBlock("catch")
	out := f.NewBlock("out")
	spare := f.NewBlock("spare")
	spare.MaybeUnreach = true

	buf := &Instr{Op: OpLocal, Result: f.NewValue("buf", pair, source.NoPos), Type: pair, Sym: "buf"}
	one := &Instr{Op: OpConst, Result: f.NewValue("", types.U64, source.NoPos), Type: types.U64, AuxInt: 1}
	flagAddr := &Instr{Op: OpFieldAddr, Result: f.NewValue("", types.Bool, source.NoPos), Args: []ValueID{buf.Result}, Type: types.Bool, Field: 1}
	flag := &Instr{Op: OpLoad, Result: f.NewValue("", types.Bool, source.NoPos), Args: []ValueID{flagAddr.Result}, Type: types.Bool}
	packed := &Instr{Op: OpTuple, Result: f.NewValue("", pair, source.NoPos), Args: []ValueID{one.Result, flag.Result}, Type: pair}
	save := &Instr{Op: OpStore, Args: []ValueID{buf.Result, packed.Result}}
	first := &Instr{Op: OpField, Result: f.NewValue("", types.U64, source.NoPos), Args: []ValueID{packed.Result}, Type: types.U64, Field: 0}
	narrow := &Instr{Op: OpCast, Result: f.NewValue("", types.U32, source.NoPos), Args: []ValueID{first.Result}, Type: types.U32}
	wrapped := &Instr{Op: OpSome, Result: f.NewValue("", types.NewOption(types.U32), source.NoPos), Args: []ValueID{narrow.Result}, Type: types.NewOption(types.U32)}
	byRef := &Instr{Op: OpInOut, Result: f.NewValue("", pair, source.NoPos), Args: []ValueID{buf.Result}, Type: pair}
	stepped := &Instr{Op: OpCall, Result: f.NewValue("", types.Bool, source.NoPos), Args: []ValueID{byRef.Result, wrapped.Result}, Type: types.Bool, Sym: "step", MayRaise: true, Handler: catch.ID}
	start := &Instr{Op: OpFuncRef, Result: f.NewValue("", startType, source.NoPos), Type: startType, Sym: "Task.start"}
	handle := &Instr{Op: OpSpawn, Result: f.NewValue("", types.NewFuture(task), source.NoPos), Args: []ValueID{start.Result, first.Result}, Type: types.NewFuture(task)}
	for _, in := range []*Instr{buf, one, flagAddr, flag, packed, save, first, narrow, wrapped, byRef, stepped, start, handle} {
		entry.Append(in)
	}
	entry.SetTerm(&Goto{Target: more.ID, SkipCheck: true})

	boom := &Instr{Op: OpConstStr, Result: f.NewValue("", types.String, source.NoPos), Type: types.String, AuxStr: "boom"}
	more.Append(boom)
	more.SetTerm(&Raise{Value: boom.Result, Handler: catch.ID})

	caught := &Instr{Op: OpCatch, Result: f.NewValue("err", types.String, source.NoPos), Type: types.String}
	catch.Append(caught)
	catch.SetTerm(&Branch{Cond: stepped.Result, Then: out.ID, Else: spare.ID})

	out.SetTerm(&Return{})
	spare.SetTerm(&Unreachable{})

	want := `fn tasks() -> unit {
entry:
  %1 = local buf : (u64, bool)
  %2 = const 1 : u64
  %3 = fieldaddr %1, 1 : bool
  %4 = load %3 : bool
  %5 = tuple %2, %4 : (u64, bool)
  store %1, %5
  %6 = field %5, 0 : u64
  %7 = cast %6 : u32
  %8 = some %7 : opt<u32>
  %9 = inout %1 : (u64, bool)
  %10 = call @step(%9, %8) ^catch : bool
  %11 = funcref @Task.start : fn(Task) -> unit
  %12 = spawn %11(%6) : future<Task>
  goto more skipcheck
more:
  %13 = conststr "boom" : str
  raise %13 ^catch
catch:
  %14 = catch : str
  br %10, out, spare
out:
  ret
spare: maybe_unreach
  unreachable
}
`
	if got := PrintFunc(f); got != want {
		t.Errorf("control flow prints as:\n%s\nwant:\n%s", got, want)
	}
}
