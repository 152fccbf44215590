package liquid

import (
	"strings"

	"github.com/google/uuid"
)

// Caret is spliced into an expression at the cursor before tokenizing so rules can tell
// which value is being typed. It lexes as part of a word or a string.
var Caret = "caret" + strings.ReplaceAll(uuid.NewString(), "-", "")

// SpliceCaret inserts Caret at offset, clamped to the bounds of expr.
func SpliceCaret(expr string, offset int) string {
	offset = max(0, min(offset, len(expr)))
	return expr[:offset] + Caret + expr[offset:]
}

func HasCaret(s string) bool {
	return strings.Contains(s, Caret)
}

func StripCaret(s string) string {
	return strings.ReplaceAll(s, Caret, "")
}

// BeforeCaret returns the part of s in front of Caret, or s when it has none.
func BeforeCaret(s string) string {
	if i := strings.Index(s, Caret); i >= 0 {
		return s[:i]
	}
	return s
}
