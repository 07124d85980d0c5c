// Package ast defines the validated, typed syntax tree handed to the
// middle-end. The frontend has already parsed, resolved and type
// checked it: every expression carries its result type, every variable
// reference points at its declaration, and every arithmetic operator
// carries the overflow strategy the checker selected for it. The
// middle-end treats violations of those guarantees as internal errors,
// not user errors.
package ast

import (
	"sora/internal/source"
	"sora/internal/types"
)

type Node interface {
	NodePos() source.Pos
	NodeEndPos() source.Pos
	String() string
}

// Expr is implemented by all expression nodes. Type returns the
// checker-resolved result type.
type Expr interface {
	Node
	Type() types.Type
	isExpr()
}

// Stmt is implemented by all statement nodes.
type Stmt interface {
	Node
	isStmt()
}

// OverflowStrategy selects how an arithmetic operation treats
// overflow. The checker picks one per operation from the operator
// spelling and enclosing context.
type OverflowStrategy int

const (
	// Wrap discards carry bits, two's complement style.
	Wrap OverflowStrategy = iota
	// Trap raises a runtime error on overflow.
	Trap
	// Saturate clamps to the type's representable range.
	Saturate
)

func (s OverflowStrategy) String() string {
	switch s {
	case Wrap:
		return "wrap"
	case Trap:
		return "trap"
	case Saturate:
		return "sat"
	}
	return "strategy?"
}

// UnaryOp enumerates unary operators.
type UnaryOp int

const (
	Neg    UnaryOp = iota // arithmetic negation
	Not                   // boolean not
	BitNot                // bitwise complement
)

func (op UnaryOp) String() string {
	switch op {
	case Neg:
		return "-"
	case Not:
		return "!"
	case BitNot:
		return "~"
	}
	return "op?"
}

// BinaryOp enumerates binary operators. Logical && and || are
// desugared to nested ifs by the frontend, so only eager operators
// reach the middle-end.
type BinaryOp int

const (
	Add BinaryOp = iota
	Sub
	Mul
	Div
	Rem
	And
	Or
	Xor
	Shl
	Shr

	Eq
	Ne
	Lt
	Le
	Gt
	Ge
)

func (op BinaryOp) String() string {
	switch op {
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	case Div:
		return "/"
	case Rem:
		return "%"
	case And:
		return "&"
	case Or:
		return "|"
	case Xor:
		return "^"
	case Shl:
		return "<<"
	case Shr:
		return ">>"
	case Eq:
		return "=="
	case Ne:
		return "!="
	case Lt:
		return "<"
	case Le:
		return "<="
	case Gt:
		return ">"
	case Ge:
		return ">="
	}
	return "op?"
}

// IsComparison reports whether op yields a boolean.
func (op BinaryOp) IsComparison() bool {
	return op >= Eq
}

// CanOverflow reports whether op is subject to an overflow strategy.
func (op BinaryOp) CanOverflow() bool {
	switch op {
	case Add, Sub, Mul, Div, Shl:
		return true
	}
	return false
}
