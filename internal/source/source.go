// Package source carries source locations through the compiler.
// Positions originate in the frontend and are threaded onto AST nodes
// and IR instructions for diagnostics and debug output.
package source

import "fmt"

// Pos tracks location information for error reporting and tooling
type Pos struct {
	Filename string
	Offset   int
	Line     int
	Column   int
}

// NoPos is the zero Pos, used for synthesized nodes and instructions.
var NoPos = Pos{}

func (p Pos) IsValid() bool {
	return p.Line > 0
}

func (p Pos) String() string {
	if !p.IsValid() {
		return "<unknown>"
	}
	if p.Filename == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
}

// Before reports whether p appears before q in the same file.
func (p Pos) Before(q Pos) bool {
	return p.Offset < q.Offset
}

// Span is a half-open source range [Start, End).
type Span struct {
	Start Pos
	End   Pos
}

func (s Span) IsValid() bool {
	return s.Start.IsValid()
}

func (s Span) String() string {
	return s.Start.String()
}
