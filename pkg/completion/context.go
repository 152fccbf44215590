package completion

import (
	"strings"

	"github.com/walteh/liquidtags/pkg/liquid"
)

type delimiters struct {
	kind        liquid.Kind
	open, close string
}

// tags are tried before outputs.
var pairs = []delimiters{
	{kind: liquid.KindTag, open: "{%", close: "%}"},
	{kind: liquid.KindOutput, open: "{{", close: "}}"},
}

// CompletionContext is the Liquid expression enclosing a cursor.
type CompletionContext struct {
	// Expression runs from the start delimiter through the end delimiter.
	Expression string
	// Start is the offset of Expression within the line.
	Start int
	// CaretOffset is the cursor position relative to Start.
	CaretOffset int
	Kind        liquid.Kind
}

// Locate finds the expression around character, a 0-based byte offset into line. The
// nearest start delimiter left of the cursor and the first end delimiter right of it bound
// the expression; an end delimiter between the start and the cursor means the cursor is
// outside any expression of that kind.
func Locate(line string, character int) (cc *CompletionContext, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			cc, ok = nil, false
		}
	}()

	if character < 0 || character > len(line) {
		return nil, false
	}

	for _, d := range pairs {
		if cc, ok := locate(line, character, d); ok {
			return cc, true
		}
	}
	return nil, false
}

func locate(line string, character int, d delimiters) (*CompletionContext, bool) {
	left := line[:character]
	start := strings.LastIndex(left, d.open)
	if start < 0 {
		return nil, false
	}
	if strings.Contains(left[start+len(d.open):], d.close) {
		return nil, false
	}

	end := strings.Index(line[character:], d.close)
	if end < 0 {
		return nil, false
	}

	return &CompletionContext{
		Expression:  line[start : character+end+len(d.close)],
		Start:       start,
		CaretOffset: character - start,
		Kind:        d.kind,
	}, true
}

// WithCaret returns the expression with the caret marker spliced in at the cursor.
func (c *CompletionContext) WithCaret() string {
	return liquid.SpliceCaret(c.Expression, c.CaretOffset)
}
