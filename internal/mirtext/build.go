package mirtext

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"

	"sora/internal/mir"
	"sora/internal/source"
	"sora/internal/types"
)

type builder struct {
	structs map[string]*types.StructType
}

func build(f *File) (*mir.Package, error) {
	b := &builder{structs: make(map[string]*types.StructType)}
	pkg := &mir.Package{Name: f.Package}

	// Register struct names first so fields and signatures can refer
	// to structs in any order.
	for _, s := range f.Structs {
		if b.structs[s.Name] != nil {
			return nil, fmt.Errorf("%s: struct %s defined twice", posOf(s.Pos), s.Name)
		}
		st := &types.StructType{Name: s.Name}
		b.structs[s.Name] = st
		pkg.Structs = append(pkg.Structs, st)
	}
	for _, s := range f.Structs {
		st := b.structs[s.Name]
		for _, fd := range s.Fields {
			ft, err := b.resolveType(fd.Type)
			if err != nil {
				return nil, err
			}
			st.Fields = append(st.Fields, types.Field{Name: fd.Name, Type: ft})
		}
	}

	for _, fd := range f.Funcs {
		fn, err := b.buildFunc(fd)
		if err != nil {
			return nil, err
		}
		pkg.Funcs = append(pkg.Funcs, fn)
	}
	return pkg, nil
}

func (b *builder) resolveType(t *TypeRef) (types.Type, error) {
	switch {
	case t == nil:
		return nil, fmt.Errorf("missing type")
	case t.Fn != nil:
		params := make([]types.Type, len(t.Fn.Params))
		for i, p := range t.Fn.Params {
			pt, err := b.resolveType(p)
			if err != nil {
				return nil, err
			}
			params[i] = pt
		}
		result, err := b.resolveType(t.Fn.Result)
		if err != nil {
			return nil, err
		}
		return &types.FuncType{Params: params, Result: result, Throws: t.Fn.Throws}, nil
	case t.Opt != nil:
		elem, err := b.resolveType(t.Opt.Elem)
		if err != nil {
			return nil, err
		}
		return types.NewOption(elem), nil
	case t.Future != nil:
		elem, err := b.resolveType(t.Future.Elem)
		if err != nil {
			return nil, err
		}
		return types.NewFuture(elem), nil
	case t.Tuple != nil:
		elems := make([]types.Type, len(t.Tuple.Elems))
		for i, e := range t.Tuple.Elems {
			et, err := b.resolveType(e)
			if err != nil {
				return nil, err
			}
			elems[i] = et
		}
		return types.NewTuple(elems...), nil
	}

	switch t.Name {
	case "i8":
		return types.I8, nil
	case "i16":
		return types.I16, nil
	case "i32":
		return types.I32, nil
	case "i64":
		return types.I64, nil
	case "u8":
		return types.U8, nil
	case "u16":
		return types.U16, nil
	case "u32":
		return types.U32, nil
	case "u64":
		return types.U64, nil
	case "bool":
		return types.Bool, nil
	case "str":
		return types.String, nil
	case "unit":
		return types.Unit, nil
	case "never":
		return types.Never, nil
	}
	if st := b.structs[t.Name]; st != nil {
		return st, nil
	}
	return nil, fmt.Errorf("%s: unknown type %s", posOf(t.Pos), t.Name)
}

// fnBuilder assembles one function. Textual value numbers must map
// onto the arena one to one, so parameters are checked against their
// allocation order and the arena is padded up to the highest number
// seen before verification.
type fnBuilder struct {
	b      *builder
	fn     *mir.Function
	labels map[string]*mir.Block
	maxID  mir.ValueID
	defs   []resultDef
}

type resultDef struct {
	id  mir.ValueID
	typ types.Type
	pos source.Pos
}

func (b *builder) buildFunc(fd *FuncDef) (*mir.Function, error) {
	result, err := b.resolveType(fd.Result)
	if err != nil {
		return nil, err
	}
	fb := &fnBuilder{
		b:      b,
		fn:     mir.NewFunction(fd.Name, result, fd.Throws),
		labels: make(map[string]*mir.Block, len(fd.Blocks)),
	}

	for _, p := range fd.Params {
		pt, err := b.resolveType(p.Type)
		if err != nil {
			return nil, err
		}
		id := fb.fn.AddParam("", pt, p.InOut, posOf(p.Pos))
		want, err := fb.value(p.Value)
		if err != nil {
			return nil, err
		}
		if id != want {
			return nil, fmt.Errorf("%s: parameter %s must be numbered %%%d", posOf(p.Pos), p.Value, id)
		}
	}

	if len(fd.Blocks) == 0 {
		return nil, fmt.Errorf("%s: fn %s has no blocks", posOf(fd.Pos), fd.Name)
	}
	for _, bd := range fd.Blocks {
		blk := fb.fn.NewBlock(bd.Label)
		if blk.Name != bd.Label {
			return nil, fmt.Errorf("%s: duplicate label %s", posOf(bd.Pos), bd.Label)
		}
		blk.MaybeUnreach = bd.MaybeUnreach
		fb.labels[bd.Label] = blk
	}

	for i, bd := range fd.Blocks {
		blk := fb.fn.Block(mir.BlockID(i + 1))
		for _, id := range bd.Instrs {
			in, err := fb.buildInstr(id)
			if err != nil {
				return nil, err
			}
			blk.Append(in)
		}
		if bd.Term == nil {
			return nil, fmt.Errorf("%s: block %s has no terminator", posOf(bd.Pos), bd.Label)
		}
		t, err := fb.buildTerm(bd.Term)
		if err != nil {
			return nil, err
		}
		blk.SetTerm(t)
	}

	// Pad the arena so every referenced number resolves, then type the
	// defined ones.
	for fb.fn.NumValues() < int(fb.maxID) {
		fb.fn.NewValue("", nil, source.NoPos)
	}
	for _, d := range fb.defs {
		info := fb.fn.Value(d.id)
		info.Type = d.typ
		info.Pos = d.pos
	}

	if err := mir.Verify(fb.fn); err != nil {
		return nil, fmt.Errorf("%s: fn %s: %w", posOf(fd.Pos), fd.Name, err)
	}
	return fb.fn, nil
}

// value parses a %N reference and tracks the highest number seen.
func (fb *fnBuilder) value(s string) (mir.ValueID, error) {
	n, err := strconv.ParseUint(strings.TrimPrefix(s, "%"), 10, 32)
	if err != nil || n == 0 {
		return mir.InvalidValue, fmt.Errorf("bad value reference %s", s)
	}
	id := mir.ValueID(n)
	if id > fb.maxID {
		fb.maxID = id
	}
	return id, nil
}

func (fb *fnBuilder) values(ss []string) ([]mir.ValueID, error) {
	ids := make([]mir.ValueID, len(ss))
	for i, s := range ss {
		id, err := fb.value(s)
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return ids, nil
}

func (fb *fnBuilder) label(name string) (mir.BlockID, error) {
	blk := fb.labels[name]
	if blk == nil {
		return mir.InvalidBlock, fmt.Errorf("unknown label %s", name)
	}
	return blk.ID, nil
}

func (fb *fnBuilder) buildInstr(id *InstrDef) (*mir.Instr, error) {
	in := &mir.Instr{Pos: posOf(id.Pos)}
	var err error
	if id.Result != "" {
		if in.Result, err = fb.value(id.Result); err != nil {
			return nil, err
		}
	}
	if id.Type != nil {
		if in.Type, err = fb.b.resolveType(id.Type); err != nil {
			return nil, err
		}
	}
	if id.Handler != "" {
		in.MayRaise = true
		if id.Handler != "caller" {
			if in.Handler, err = fb.label(id.Handler); err != nil {
				return nil, fmt.Errorf("%s: %w", posOf(id.Pos), err)
			}
		}
	}

	op := id.Op
	switch {
	case op.Const != nil:
		in.Op = mir.OpConst
		cv := op.Const.Value
		switch {
		case cv.Int != nil:
			if in.AuxInt, err = parseAuxInt(*cv.Int); err != nil {
				return nil, fmt.Errorf("%s: %w", posOf(id.Pos), err)
			}
		case cv.Bool != nil:
			if *cv.Bool == "true" {
				in.AuxInt = 1
			}
		}
	case op.ConstStr != nil:
		in.Op = mir.OpConstStr
		in.AuxStr = op.ConstStr.Value
	case op.None != nil:
		in.Op = mir.OpNone
	case op.FuncRef != nil:
		in.Op = mir.OpFuncRef
		in.Sym = op.FuncRef.Sym
	case op.Local != nil:
		in.Op = mir.OpLocal
		in.Sym = op.Local.Sym
	case op.Load != nil:
		in.Op = mir.OpLoad
		in.Args, err = fb.values([]string{op.Load.Slot})
	case op.Store != nil:
		in.Op = mir.OpStore
		in.Args, err = fb.values([]string{op.Store.Slot, op.Store.Value})
	case op.FieldAddr != nil:
		in.Op = mir.OpFieldAddr
		in.Args, err = fb.values([]string{op.FieldAddr.Base})
		if err == nil {
			in.Field, err = parseFieldIndex(op.FieldAddr.Index)
		}
	case op.Field != nil:
		in.Op = mir.OpField
		in.Args, err = fb.values([]string{op.Field.Base})
		if err == nil {
			in.Field, err = parseFieldIndex(op.Field.Index)
		}
	case op.Tuple != nil:
		in.Op = mir.OpTuple
		in.Args, err = fb.values(op.Tuple.Args)
	case op.Unary != nil:
		in.Op = mir.OpUnary
		if in.UnOp, err = unOpFromName(op.Unary.Op); err == nil {
			if in.Strategy, err = overflowFromName(op.Unary.Strategy); err == nil {
				in.Args, err = fb.values([]string{op.Unary.Arg})
			}
		}
	case op.Binary != nil:
		in.Op = mir.OpBinary
		if in.BinOp, err = binOpFromName(op.Binary.Op); err == nil {
			if in.Strategy, err = overflowFromName(op.Binary.Strategy); err == nil {
				in.Args, err = fb.values([]string{op.Binary.Left, op.Binary.Right})
			}
		}
	case op.Cast != nil:
		in.Op = mir.OpCast
		in.Args, err = fb.values([]string{op.Cast.Arg})
	case op.Some != nil:
		in.Op = mir.OpSome
		in.Args, err = fb.values([]string{op.Some.Arg})
	case op.Call != nil:
		in.Op = mir.OpCall
		in.Sym = op.Call.Sym
		in.Args, err = fb.values(op.Call.Args)
	case op.Unwrap != nil:
		in.Op = mir.OpUnwrap
		in.Args, err = fb.values([]string{op.Unwrap.Arg})
	case op.InOut != nil:
		in.Op = mir.OpInOut
		in.Args, err = fb.values([]string{op.InOut.Slot})
	case op.Spawn != nil:
		in.Op = mir.OpSpawn
		in.Args, err = fb.values([]string{op.Spawn.Fn, op.Spawn.Init})
	case op.Catch != nil:
		in.Op = mir.OpCatch
	default:
		err = fmt.Errorf("empty instruction")
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", posOf(id.Pos), err)
	}

	if in.HasResult() {
		fb.defs = append(fb.defs, resultDef{id: in.Result, typ: in.Type, pos: in.Pos})
	}
	return in, nil
}

func (fb *fnBuilder) buildTerm(td *TermDef) (mir.Terminator, error) {
	pos := posOf(td.Pos)
	switch {
	case td.Goto != nil:
		target, err := fb.label(td.Goto.Target)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", pos, err)
		}
		return &mir.Goto{Target: target, SkipCheck: td.Goto.SkipCheck, Pos: pos}, nil
	case td.Br != nil:
		cond, err := fb.value(td.Br.Cond)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", pos, err)
		}
		then, err := fb.label(td.Br.Then)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", pos, err)
		}
		els, err := fb.label(td.Br.Else)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", pos, err)
		}
		return &mir.Branch{Cond: cond, Then: then, Else: els, SkipCheck: td.Br.SkipCheck, Pos: pos}, nil
	case td.Raise != nil:
		v, err := fb.value(td.Raise.Value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", pos, err)
		}
		handler := mir.InvalidBlock
		if td.Raise.Handler != "caller" {
			if handler, err = fb.label(td.Raise.Handler); err != nil {
				return nil, fmt.Errorf("%s: %w", pos, err)
			}
		}
		return &mir.Raise{Value: v, Handler: handler, Pos: pos}, nil
	case td.Ret != nil:
		v := mir.InvalidValue
		if td.Ret.Value != "" {
			var err error
			if v, err = fb.value(td.Ret.Value); err != nil {
				return nil, fmt.Errorf("%s: %w", pos, err)
			}
		}
		return &mir.Return{Value: v, Pos: pos}, nil
	case td.Unreach != nil:
		return &mir.Unreachable{Pos: pos}, nil
	}
	return nil, fmt.Errorf("%s: empty terminator", pos)
}

func parseAuxInt(s string) (uint64, error) {
	if strings.HasPrefix(s, "-") {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("bad integer constant %q", s)
		}
		return uint64(v), nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad integer constant %q", s)
	}
	return v, nil
}

func parseFieldIndex(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("bad field index %q", s)
	}
	return n, nil
}

func unOpFromName(s string) (mir.UnOp, error) {
	switch s {
	case "neg":
		return mir.UnNeg, nil
	case "not":
		return mir.UnNot, nil
	case "bitnot":
		return mir.UnBitNot, nil
	}
	return 0, fmt.Errorf("unknown unary op %q", s)
}

var binOps = map[string]mir.BinOp{
	"add": mir.BinAdd, "sub": mir.BinSub, "mul": mir.BinMul, "div": mir.BinDiv, "rem": mir.BinRem,
	"and": mir.BinAnd, "or": mir.BinOr, "xor": mir.BinXor, "shl": mir.BinShl, "shr": mir.BinShr,
	"eq": mir.BinEq, "ne": mir.BinNe, "lt": mir.BinLt, "le": mir.BinLe, "gt": mir.BinGt, "ge": mir.BinGe,
}

func binOpFromName(s string) (mir.BinOp, error) {
	op, ok := binOps[s]
	if !ok {
		return 0, fmt.Errorf("unknown binary op %q", s)
	}
	return op, nil
}

func overflowFromName(s string) (mir.Overflow, error) {
	switch s {
	case "", "wrap":
		return mir.OverflowWrap, nil
	case "trap":
		return mir.OverflowTrap, nil
	case "sat":
		return mir.OverflowSat, nil
	}
	return 0, fmt.Errorf("unknown overflow strategy %q", s)
}

func posOf(p lexer.Position) source.Pos {
	return source.Pos{Filename: p.Filename, Offset: p.Offset, Line: p.Line, Column: p.Column}
}
