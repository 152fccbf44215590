package liquid

import (
	"github.com/walteh/liquidtags/pkg/position"
)

// Kind classifies a top-level token.
type Kind int

const (
	KindHTML Kind = iota
	KindTag
	KindOutput
)

func (k Kind) String() string {
	switch k {
	case KindHTML:
		return "html"
	case KindTag:
		return "tag"
	case KindOutput:
		return "output"
	}
	return "unknown"
}

// Token is one top-level piece of a document. Name and Args are set for tags, Content for
// outputs. Offsets are byte offsets into the tokenized text.
type Token struct {
	Kind    Kind
	Name    string
	Args    string
	Content string
	Raw     string
	Offset  int

	// BodyOffset is the offset of Args (tags) or Content (outputs).
	BodyOffset int
}

// Body returns the text rules read from: the arguments of a tag or the content of an output.
func (t Token) Body() string {
	if t.Kind == KindTag {
		return t.Args
	}
	return t.Content
}

func (t Token) Position() position.RawPosition {
	return position.NewBasicPosition(t.Raw, t.Offset)
}
