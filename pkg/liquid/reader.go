package liquid

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
	"gitlab.com/tozd/go/errors"
)

// Value is a literal or variable read from an expression.
type Value struct {
	// Raw is the value as written, quotes included.
	Raw string
	// Offset is the byte offset of Raw within the reader's input.
	Offset int
	Quoted bool
}

// Text returns the value with surrounding quotes removed.
func (v Value) Text() string {
	return Unquote(v.Raw)
}

func (v Value) HasCaret() bool {
	return HasCaret(v.Raw)
}

// Hash is a key:value argument.
type Hash struct {
	Key       string
	KeyOffset int
	Value     Value
}

// Reader walks the tokens of a single tag or output body, in the manner of the Liquid
// argument readers: positional values, identifiers, key:value hashes and property access.
type Reader struct {
	tokens []lexer.Token
	pos    int
}

func NewReader(input string) (*Reader, error) {
	lex, err := ExpressionLexer.Lex("", strings.NewReader(input))
	if err != nil {
		return nil, errors.Errorf("lexing expression: %w", err)
	}

	all, err := lexer.ConsumeAll(lex)
	if err != nil {
		return nil, errors.Errorf("lexing expression: %w", err)
	}

	tokens := make([]lexer.Token, 0, len(all))
	for _, tok := range all {
		if tok.Type == expressionSymbols["whitespace"] || tok.Type == lexer.EOF {
			continue
		}
		tokens = append(tokens, tok)
	}

	return &Reader{tokens: tokens}, nil
}

// Done reports whether all tokens were consumed.
func (r *Reader) Done() bool {
	return r.pos >= len(r.tokens)
}

func (r *Reader) peek(n int) (lexer.Token, bool) {
	if r.pos+n >= len(r.tokens) {
		return lexer.Token{}, false
	}
	return r.tokens[r.pos+n], true
}

func (r *Reader) isPunct(n int, value string) bool {
	tok, ok := r.peek(n)
	return ok && tok.Type == expressionSymbols["Punct"] && tok.Value == value
}

func (r *Reader) isType(n int, name string) bool {
	tok, ok := r.peek(n)
	return ok && tok.Type == expressionSymbols[name]
}

// ReadIdentifier consumes a bare word.
func (r *Reader) ReadIdentifier() (string, bool) {
	if !r.isType(0, "Word") {
		return "", false
	}
	tok, _ := r.peek(0)
	r.pos++
	return tok.Value, true
}

// ReadValue consumes a string, a number, or a variable with its property accesses.
func (r *Reader) ReadValue() (Value, bool) {
	tok, ok := r.peek(0)
	if !ok {
		return Value{}, false
	}

	switch tok.Type {
	case expressionSymbols["String"]:
		r.pos++
		return Value{Raw: tok.Value, Offset: tok.Pos.Offset, Quoted: true}, true
	case expressionSymbols["Number"]:
		r.pos++
		return Value{Raw: tok.Value, Offset: tok.Pos.Offset}, true
	case expressionSymbols["Word"]:
		r.pos++
		var sb strings.Builder
		sb.WriteString(tok.Value)
		for {
			switch {
			case r.isPunct(0, ".") && r.isType(1, "Word"):
				next, _ := r.peek(1)
				sb.WriteString("." + next.Value)
				r.pos += 2
			case r.isPunct(0, "["):
				r.pos++
				inner, ok := r.ReadValue()
				if !ok {
					return Value{Raw: sb.String(), Offset: tok.Pos.Offset}, true
				}
				sb.WriteString("[" + inner.Raw)
				if r.isPunct(0, "]") {
					r.pos++
					sb.WriteString("]")
				}
			default:
				return Value{Raw: sb.String(), Offset: tok.Pos.Offset}, true
			}
		}
	}

	return Value{}, false
}

// ReadHash consumes one key:value pair, skipping leading commas. The reader is left
// untouched when the next tokens are not a hash.
func (r *Reader) ReadHash() (Hash, bool) {
	start := r.pos
	for r.isPunct(0, ",") {
		r.pos++
	}

	key, ok := r.peek(0)
	if !ok || key.Type != expressionSymbols["Word"] || !(r.isPunct(1, ":") || r.isPunct(1, "=")) {
		r.pos = start
		return Hash{}, false
	}
	r.pos += 2

	hash := Hash{Key: key.Value, KeyOffset: key.Pos.Offset}
	if value, ok := r.ReadValue(); ok {
		hash.Value = value
	} else {
		hash.Value = Value{Offset: key.Pos.Offset + len(key.Value) + 1}
	}
	return hash, true
}

// ReadHashes consumes hashes until the next tokens are not a hash.
func (r *Reader) ReadHashes() []Hash {
	var hashes []Hash
	for {
		hash, ok := r.ReadHash()
		if !ok {
			return hashes
		}
		hashes = append(hashes, hash)
	}
}

// PropertyAccesses returns the property read from every root occurrence of object, either
// `object['prop']` or `object.prop`. Occurrences that are themselves properties
// (`page.object`) are skipped. The reader position is not changed.
func (r *Reader) PropertyAccesses(object string) []Value {
	var values []Value
	for i, tok := range r.tokens {
		if tok.Type != expressionSymbols["Word"] || tok.Value != object {
			continue
		}
		if i > 0 && r.tokens[i-1].Type == expressionSymbols["Punct"] && r.tokens[i-1].Value == "." {
			continue
		}

		sub := &Reader{tokens: r.tokens, pos: i + 1}
		switch {
		case sub.isPunct(0, "["):
			sub.pos++
			if value, ok := sub.ReadValue(); ok {
				values = append(values, value)
			}
		case sub.isPunct(0, ".") && sub.isType(1, "Word"):
			next, _ := sub.peek(1)
			values = append(values, Value{Raw: next.Value, Offset: next.Pos.Offset})
		}
	}
	return values
}

// Unquote strips one matching pair of quotes, or a lone opening quote left by a value that
// is still being typed.
func Unquote(s string) string {
	if s == "" {
		return s
	}
	q := s[0]
	if q != '\'' && q != '"' && q != '`' {
		return s
	}
	s = s[1:]
	if n := len(s); n > 0 && s[n-1] == q {
		s = s[:n-1]
	}
	return s
}
