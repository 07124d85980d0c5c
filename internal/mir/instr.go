package mir

import (
	"sora/internal/source"
	"sora/internal/types"
)

// Op is the instruction kind tag.
type Op int

const (
	OpInvalid Op = iota

	// Constants and references
	OpConst    // integer/bool/unit constant in AuxInt
	OpConstStr // string constant in AuxStr
	OpNone     // empty option of Type
	OpFuncRef  // reference to the function named Sym

	// Memory
	OpLocal     // introduce a storage slot named Sym for a mutable variable
	OpLoad      // Args[0]: slot -> current value
	OpStore     // Args[0]: slot, Args[1]: value stored
	OpFieldAddr // Args[0]: slot of aggregate type -> sub-slot Field

	// Values
	OpField  // Args[0]: aggregate value -> element Field
	OpTuple  // Args: element values -> aggregate
	OpUnary  // Args[0], UnOp, Strategy
	OpBinary // Args[0], Args[1], BinOp, Strategy
	OpCast   // Args[0] converted to Type
	OpSome   // Args[0] wrapped into an option

	// Calls and tasks
	OpCall   // call Sym with Args
	OpUnwrap // Args[0]: option -> payload, raises when empty
	OpInOut  // Args[0]: slot passed by reference to the next call
	OpSpawn  // Args[0]: entry funcref, Args[1]: task init -> future

	// Exception plumbing
	OpCatch // materialize the value raised into this handler block
)

var opNames = [...]string{
	OpInvalid:   "invalid",
	OpConst:     "const",
	OpConstStr:  "conststr",
	OpNone:      "none",
	OpFuncRef:   "funcref",
	OpLocal:     "local",
	OpLoad:      "load",
	OpStore:     "store",
	OpFieldAddr: "fieldaddr",
	OpField:     "field",
	OpTuple:     "tuple",
	OpUnary:     "unary",
	OpBinary:    "binary",
	OpCast:      "cast",
	OpSome:      "some",
	OpCall:      "call",
	OpUnwrap:    "unwrap",
	OpInOut:     "inout",
	OpSpawn:     "spawn",
	OpCatch:     "catch",
}

func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return "op?"
}

// UnOp enumerates IR-level unary operations.
type UnOp int

const (
	UnNeg    UnOp = iota // arithmetic negation
	UnNot                // boolean not
	UnBitNot             // bitwise complement
)

var unOpNames = [...]string{UnNeg: "neg", UnNot: "not", UnBitNot: "bitnot"}

func (op UnOp) String() string {
	if int(op) < len(unOpNames) {
		return unOpNames[op]
	}
	return "unop?"
}

// BinOp enumerates IR-level binary operations.
type BinOp int

const (
	BinAdd BinOp = iota
	BinSub
	BinMul
	BinDiv
	BinRem
	BinAnd
	BinOr
	BinXor
	BinShl
	BinShr
	BinEq
	BinNe
	BinLt
	BinLe
	BinGt
	BinGe
)

var binOpNames = [...]string{
	BinAdd: "add", BinSub: "sub", BinMul: "mul", BinDiv: "div", BinRem: "rem",
	BinAnd: "and", BinOr: "or", BinXor: "xor", BinShl: "shl", BinShr: "shr",
	BinEq: "eq", BinNe: "ne", BinLt: "lt", BinLe: "le", BinGt: "gt", BinGe: "ge",
}

func (op BinOp) String() string {
	if int(op) < len(binOpNames) {
		return binOpNames[op]
	}
	return "binop?"
}

// Overflow is the per-operation overflow policy resolved by the
// checker and carried through lowering.
type Overflow int

const (
	OverflowWrap Overflow = iota
	OverflowTrap
	OverflowSat
)

var overflowNames = [...]string{OverflowWrap: "wrap", OverflowTrap: "trap", OverflowSat: "sat"}

func (o Overflow) String() string {
	if int(o) < len(overflowNames) {
		return overflowNames[o]
	}
	return "overflow?"
}

// Instr is a single non-terminator instruction. One struct covers all
// kinds; Op selects which payload fields are meaningful. Result is
// InvalidValue for side-effect-only ops. MayRaise selects the
// exception-aware variant of the kind: when set, a runtime failure
// transfers to Handler, or to the caller when Handler is InvalidBlock.
type Instr struct {
	Op       Op
	Result   ValueID
	Args     []ValueID
	Type     types.Type // type of Result, nil when no result
	Pos      source.Pos
	MayRaise bool
	Handler  BlockID

	AuxInt   uint64
	AuxStr   string
	Sym      string
	UnOp     UnOp
	BinOp    BinOp
	Strategy Overflow
	Field    int
}

// HasResult reports whether the instruction defines a value.
func (in *Instr) HasResult() bool {
	return in.Result != InvalidValue
}

// Pure reports whether the instruction can be removed when its result
// is unused: no memory effect, no call, no possible raise.
func (in *Instr) Pure() bool {
	if in.MayRaise {
		return false
	}
	switch in.Op {
	case OpStore, OpCall, OpSpawn, OpInOut, OpLocal, OpCatch:
		return false
	}
	return true
}
