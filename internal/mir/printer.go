package mir

import (
	"fmt"
	"io"
	"strings"

	"sora/internal/types"
)

// Printer renders MIR in its canonical textual form. The output parses
// back through the mirtext package; keep the two in sync.
type Printer struct {
	output strings.Builder
}

// NewPrinter creates a new MIR printer
func NewPrinter() *Printer {
	return &Printer{}
}

// Print returns the textual form of a package.
func Print(p *Package) string {
	pr := NewPrinter()
	pr.printPackage(p)
	return pr.output.String()
}

// PrintFunc returns the textual form of a single function.
func PrintFunc(f *Function) string {
	pr := NewPrinter()
	pr.printFunc(f)
	return pr.output.String()
}

// Fprint writes the textual form of a single function to w.
func Fprint(w io.Writer, f *Function) error {
	_, err := io.WriteString(w, PrintFunc(f))
	return err
}

func (pr *Printer) write(format string, args ...interface{}) {
	pr.output.WriteString(fmt.Sprintf(format, args...))
}

func (pr *Printer) printPackage(p *Package) {
	pr.write("package %s\n", p.Name)
	for _, s := range p.Structs {
		pr.write("\n")
		pr.printStruct(s)
	}
	for _, f := range p.Funcs {
		pr.write("\n")
		pr.printFunc(f)
	}
}

func (pr *Printer) printStruct(s *types.StructType) {
	pr.write("struct %s {\n", s.Name)
	for _, fld := range s.Fields {
		pr.write("  %s: %s,\n", fld.Name, fld.Type)
	}
	pr.write("}\n")
}

func (pr *Printer) printFunc(f *Function) {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		prefix := ""
		if p.InOut {
			prefix = "inout "
		}
		params[i] = fmt.Sprintf("%s%%%d: %s", prefix, p.Value, f.Value(p.Value).Type)
	}
	pr.write("fn %s(%s) -> %s", f.Name, strings.Join(params, ", "), f.Result)
	if f.Throws {
		pr.write(" throws")
	}
	pr.write(" {\n")

	// The entry block prints first; the rest keep creation order.
	pr.printBlock(f, f.EntryBlock())
	for _, b := range f.blocks {
		if b.ID == f.Entry {
			continue
		}
		pr.printBlock(f, b)
	}
	pr.write("}\n")
}

func (pr *Printer) printBlock(f *Function, b *Block) {
	pr.write("%s:", blockLabel(f, b.ID))
	if b.MaybeUnreach {
		pr.write(" maybe_unreach")
	}
	pr.write("\n")
	for _, in := range b.Instrs {
		pr.write("  %s\n", FormatInstr(f, in))
	}
	if b.Term != nil {
		pr.write("  %s\n", FormatTerm(f, b.Term))
	}
}

// blockLabel returns the unique textual label of a block.
func blockLabel(f *Function, id BlockID) string {
	b := f.Block(id)
	if b.Name == "" {
		return fmt.Sprintf("b%d", b.ID)
	}
	return b.Name
}

// FormatInstr renders one instruction in canonical form.
func FormatInstr(f *Function, in *Instr) string {
	var sb strings.Builder
	if in.HasResult() {
		fmt.Fprintf(&sb, "%%%d = ", in.Result)
	}
	switch in.Op {
	case OpConst:
		fmt.Fprintf(&sb, "const %s", formatConst(in))
	case OpConstStr:
		fmt.Fprintf(&sb, "conststr %q", in.AuxStr)
	case OpNone:
		sb.WriteString("none")
	case OpFuncRef:
		fmt.Fprintf(&sb, "funcref @%s", in.Sym)
	case OpLocal:
		fmt.Fprintf(&sb, "local %s", in.Sym)
	case OpLoad:
		fmt.Fprintf(&sb, "load %%%d", in.Args[0])
	case OpStore:
		fmt.Fprintf(&sb, "store %%%d, %%%d", in.Args[0], in.Args[1])
	case OpFieldAddr:
		fmt.Fprintf(&sb, "fieldaddr %%%d, %d", in.Args[0], in.Field)
	case OpField:
		fmt.Fprintf(&sb, "field %%%d, %d", in.Args[0], in.Field)
	case OpTuple:
		fmt.Fprintf(&sb, "tuple %s", formatArgs(in.Args))
	case OpUnary:
		fmt.Fprintf(&sb, "unary %s%s %%%d", in.UnOp, formatStrategy(in), in.Args[0])
	case OpBinary:
		fmt.Fprintf(&sb, "binary %s%s %%%d, %%%d", in.BinOp, formatStrategy(in), in.Args[0], in.Args[1])
	case OpCast:
		fmt.Fprintf(&sb, "cast %%%d", in.Args[0])
	case OpSome:
		fmt.Fprintf(&sb, "some %%%d", in.Args[0])
	case OpCall:
		fmt.Fprintf(&sb, "call @%s(%s)", in.Sym, formatArgs(in.Args))
	case OpUnwrap:
		fmt.Fprintf(&sb, "unwrap %%%d", in.Args[0])
	case OpInOut:
		fmt.Fprintf(&sb, "inout %%%d", in.Args[0])
	case OpSpawn:
		fmt.Fprintf(&sb, "spawn %%%d(%%%d)", in.Args[0], in.Args[1])
	case OpCatch:
		sb.WriteString("catch")
	default:
		fmt.Fprintf(&sb, "%s %s", in.Op, formatArgs(in.Args))
	}
	if in.MayRaise {
		if in.Handler != InvalidBlock {
			fmt.Fprintf(&sb, " ^%s", blockLabel(f, in.Handler))
		} else {
			sb.WriteString(" ^caller")
		}
	}
	if in.Type != nil {
		fmt.Fprintf(&sb, " : %s", in.Type)
	}
	return sb.String()
}

func formatConst(in *Instr) string {
	switch in.Type.(type) {
	case *types.BoolType:
		if in.AuxInt != 0 {
			return "true"
		}
		return "false"
	case *types.UnitType:
		return "()"
	}
	if it, ok := in.Type.(*types.IntType); ok && it.Signed {
		return fmt.Sprintf("%d", int64(in.AuxInt))
	}
	return fmt.Sprintf("%d", in.AuxInt)
}

func formatStrategy(in *Instr) string {
	overflows := in.Op == OpUnary && in.UnOp == UnNeg
	if in.Op == OpBinary {
		switch in.BinOp {
		case BinAdd, BinSub, BinMul, BinDiv, BinShl:
			overflows = true
		}
	}
	if !overflows {
		return ""
	}
	return "." + in.Strategy.String()
}

func formatArgs(args []ValueID) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = fmt.Sprintf("%%%d", a)
	}
	return strings.Join(parts, ", ")
}

// String methods render terminators with raw block IDs, for debug and
// ICE messages where no function context is at hand. FormatTerm is the
// canonical, label-based form.

func (t *Goto) String() string {
	s := fmt.Sprintf("goto b%d", t.Target)
	if t.SkipCheck {
		s += " skipcheck"
	}
	return s
}

func (t *Branch) String() string {
	s := fmt.Sprintf("br %%%d, b%d, b%d", t.Cond, t.Then, t.Else)
	if t.SkipCheck {
		s += " skipcheck"
	}
	return s
}

func (t *Raise) String() string {
	if t.Handler != InvalidBlock {
		return fmt.Sprintf("raise %%%d ^b%d", t.Value, t.Handler)
	}
	return fmt.Sprintf("raise %%%d ^caller", t.Value)
}

func (t *Return) String() string {
	if t.Value != InvalidValue {
		return fmt.Sprintf("ret %%%d", t.Value)
	}
	return "ret"
}

func (t *Unreachable) String() string { return "unreachable" }

// FormatTerm renders a terminator in canonical form.
func FormatTerm(f *Function, t Terminator) string {
	switch t := t.(type) {
	case *Goto:
		s := fmt.Sprintf("goto %s", blockLabel(f, t.Target))
		if t.SkipCheck {
			s += " skipcheck"
		}
		return s
	case *Branch:
		s := fmt.Sprintf("br %%%d, %s, %s", t.Cond, blockLabel(f, t.Then), blockLabel(f, t.Else))
		if t.SkipCheck {
			s += " skipcheck"
		}
		return s
	case *Raise:
		if t.Handler != InvalidBlock {
			return fmt.Sprintf("raise %%%d ^%s", t.Value, blockLabel(f, t.Handler))
		}
		return fmt.Sprintf("raise %%%d ^caller", t.Value)
	case *Return:
		if t.Value != InvalidValue {
			return fmt.Sprintf("ret %%%d", t.Value)
		}
		return "ret"
	case *Unreachable:
		return "unreachable"
	}
	return "term?"
}
