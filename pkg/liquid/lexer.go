// Package liquid splits site documents into Liquid tags, outputs and surrounding HTML, and
// reads the arguments of a single tag or output.
package liquid

import (
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	documentRules = lexer.Rules{
		"Root": {
			{Name: "TagOpen", Pattern: `{%-?`, Action: lexer.Push("Tag")},
			{Name: "OutputOpen", Pattern: `{{-?`, Action: lexer.Push("Output")},
			{Name: "Html", Pattern: `[^{]+|{`, Action: nil},
		},
		"Tag": {
			{Name: "TagClose", Pattern: `-?%}`, Action: lexer.Pop()},
			{Name: "String", Pattern: `'(?:\\.|[^'\\])*'|"(?:\\.|[^"\\])*"`, Action: nil},
			{Name: "TagBody", Pattern: `[^'"%-]+|[%'"-]`, Action: nil},
		},
		"Output": {
			{Name: "OutputClose", Pattern: `-?}}`, Action: lexer.Pop()},
			{Name: "String", Pattern: `'(?:\\.|[^'\\])*'|"(?:\\.|[^"\\])*"`, Action: nil},
			{Name: "OutputBody", Pattern: `[^'"}-]+|[}'"-]`, Action: nil},
		},
	}

	// DocumentLexer separates HTML from {% tag %} and {{ output }} blocks. Quoted strings
	// inside a block may contain the closing delimiter.
	DocumentLexer = lexer.MustStateful(documentRules)

	// ExpressionLexer tokenizes the inside of a tag or output. Strings tolerate a missing
	// closing quote so that half-typed values still lex.
	ExpressionLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "String", Pattern: `'(?:\\.|[^'\\])*'?|"(?:\\.|[^"\\])*"?`},
		{Name: "Number", Pattern: `-?\d+(?:\.\d+)?\b`},
		{Name: "Word", Pattern: `[\w-]+\??`},
		{Name: "Range", Pattern: `\.\.`},
		{Name: "Punct", Pattern: `[:,.|\[\]()=<>!]`},
		{Name: "whitespace", Pattern: `\s+`},
		{Name: "Other", Pattern: `.`},
	})
)

var (
	documentSymbols   = DocumentLexer.Symbols()
	expressionSymbols = ExpressionLexer.Symbols()
)
