package liquid

import (
	"strings"
	"unicode"

	"github.com/alecthomas/participle/v2/lexer"
	"gitlab.com/tozd/go/errors"
)

var (
	ErrUnterminated = errors.New("unterminated liquid block")
	ErrEmpty        = errors.New("no liquid token")
)

// Tokenize splits text into top-level HTML, tag and output tokens. Adjacent HTML runs are
// merged into one token.
func Tokenize(text string) ([]Token, error) {
	lex, err := DocumentLexer.Lex("", strings.NewReader(text))
	if err != nil {
		return nil, errors.Errorf("lexing document: %w", err)
	}

	raw, err := lexer.ConsumeAll(lex)
	if err != nil {
		return nil, errors.Errorf("lexing document: %w", err)
	}

	var (
		tokens []Token
		open   *lexer.Token
		body   strings.Builder
	)

	for i := range raw {
		tok := raw[i]
		switch tok.Type {
		case lexer.EOF:
			if open != nil {
				return nil, errors.Errorf("block opened at offset %d: %w", open.Pos.Offset, ErrUnterminated)
			}
		case documentSymbols["Html"]:
			if n := len(tokens); n > 0 && tokens[n-1].Kind == KindHTML {
				tokens[n-1].Raw += tok.Value
				continue
			}
			tokens = append(tokens, Token{Kind: KindHTML, Raw: tok.Value, Offset: tok.Pos.Offset})
		case documentSymbols["TagOpen"], documentSymbols["OutputOpen"]:
			open = &raw[i]
			body.Reset()
		case documentSymbols["TagClose"], documentSymbols["OutputClose"]:
			if open == nil {
				continue
			}
			start := open.Pos.Offset
			end := tok.Pos.Offset + len(tok.Value)
			bodyOffset := open.Pos.Offset + len(open.Value)
			if tok.Type == documentSymbols["TagClose"] {
				tokens = append(tokens, newTag(text[start:end], start, bodyOffset, body.String()))
			} else {
				tokens = append(tokens, newOutput(text[start:end], start, bodyOffset, body.String()))
			}
			open = nil
		default:
			body.WriteString(tok.Value)
		}
	}

	return tokens, nil
}

// ReadTop returns the first top-level token of text.
func ReadTop(text string) (Token, error) {
	tokens, err := Tokenize(text)
	if err != nil {
		return Token{}, err
	}
	if len(tokens) == 0 {
		return Token{}, ErrEmpty
	}
	return tokens[0], nil
}

func newTag(raw string, offset, bodyOffset int, body string) Token {
	lead := len(body) - len(strings.TrimLeftFunc(body, unicode.IsSpace))
	rest := body[lead:]

	n := 0
	for n < len(rest) && isNameByte(rest[n]) {
		n++
	}

	args := rest[n:]
	argsLead := len(args) - len(strings.TrimLeftFunc(args, unicode.IsSpace))

	return Token{
		Kind:       KindTag,
		Name:       rest[:n],
		Args:       strings.TrimRightFunc(args[argsLead:], unicode.IsSpace),
		Raw:        raw,
		Offset:     offset,
		BodyOffset: bodyOffset + lead + n + argsLead,
	}
}

func newOutput(raw string, offset, bodyOffset int, body string) Token {
	lead := len(body) - len(strings.TrimLeftFunc(body, unicode.IsSpace))
	return Token{
		Kind:       KindOutput,
		Content:    strings.TrimSpace(body),
		Raw:        raw,
		Offset:     offset,
		BodyOffset: bodyOffset + lead,
	}
}

func isNameByte(b byte) bool {
	return b == '_' || b == '-' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
