package mir

import (
	"sora/internal/source"
	"sora/internal/types"
)

// ValueID names an SSA value inside one function. IDs index the
// function's value table; 0 is never a valid value.
type ValueID uint32

// BlockID names a basic block inside one function. IDs index the
// function's block list; 0 is never a valid block.
type BlockID uint32

const (
	// InvalidValue marks "no value" operands and results.
	InvalidValue ValueID = 0
	// InvalidBlock marks "no target", e.g. a raise with no handler.
	InvalidBlock BlockID = 0
)

// ValueInfo describes one SSA value. Values are created for function
// parameters and instruction results; operand lists reference them by
// ID, so a value's lifetime is that of its owning function.
type ValueInfo struct {
	Name string // debug name, may be empty
	Type types.Type
	Pos  source.Pos
}
