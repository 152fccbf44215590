package grammar

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	tagLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "whitespace", Pattern: `\s+`},
		{Name: "TagOpen", Pattern: `\{%-?`},
		{Name: "TagClose", Pattern: `-?%\}`},
		{Name: "String", Pattern: `'(?:\\.|[^'\\])*'|"(?:\\.|[^"\\])*"|` + "`(?:\\\\.|[^`\\\\])*`"},
		{Name: "Number", Pattern: `-?\d+(?:\.\d+)?`},
		{Name: "Key", Pattern: `(?:id|name|key)\b`},
		{Name: "Ident", Pattern: `[A-Za-z_][\w-]*`},
		{Name: "Punct", Pattern: `[:,=]`},
	})

	spaceParser = participle.MustBuild[spaceTag](
		participle.Lexer(tagLexer),
		participle.Elide("whitespace"),
	)

	commaParser = participle.MustBuild[commaTag](
		participle.Lexer(tagLexer),
		participle.Elide("whitespace"),
	)
)

// spaceTag is a tag whose attributes are separated by whitespace.
type spaceTag struct {
	Head  *head        `parser:"TagOpen @@"`
	Attrs []*attribute `parser:"@@* TagClose"`
}

// commaTag is a tag whose attributes are separated by commas.
type commaTag struct {
	Head  *head        `parser:"TagOpen @@"`
	Attrs []*attribute `parser:"(@@ (\",\" @@)*)? TagClose"`
}

type head struct {
	Include *value `parser:"  \"include\" @@"`
	Entity  string `parser:"| @(\"entityform\" | \"webform\" | \"entitylist\")"`
}

type attribute struct {
	Key   string `parser:"@Key (\":\" | \"=\")"`
	Value *value `parser:"@@"`
}

type value struct {
	Pos    lexer.Position
	String *string `parser:"  @String"`
	Number *string `parser:"| @Number"`
}

func (v *value) raw() string {
	switch {
	case v.String != nil:
		return *v.String
	case v.Number != nil:
		return *v.Number
	}
	return ""
}
