package mirtext

import (
	"github.com/alecthomas/participle/v2/lexer"
)

var mirLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		// Comments
		{"Comment", `//[^\n]*`, nil},

		// String literals (conststr payloads, Go-quoted)
		{"String", `"(\\.|[^"\\])*"`, nil},

		// Value references
		{"Value", `%[0-9]+`, nil},

		// The arrow must come before Int so "->" never sheds its minus
		{"Arrow", `->`, nil},

		// Integer literals
		{"Int", `-?[0-9]+`, nil},

		// Keywords, opcodes, labels and type names
		{"Ident", `[a-zA-Z_][a-zA-Z0-9_]*`, nil},

		// Punctuation
		{"Punct", `[{}(),:=<>.^@]`, nil},

		// Whitespace
		{"Whitespace", `[ \t\r\n]+`, nil},
	},
})
