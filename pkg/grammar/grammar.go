// Package grammar parses entity tags with a formal grammar and reports where each record
// attribute's value starts, for offset-driven completion.
package grammar

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// ErrNoAttributes is returned when a tag parses to no id/name/key attribute.
var ErrNoAttributes = errors.New("no record attributes")

const TagInclude = "include"

// Attribute is one id/name/key attribute of a parsed tag.
type Attribute struct {
	Key string
	// Raw is the value as written, quotes included.
	Raw string
	// Offset is the 0-based byte offset of Raw in the parsed expression.
	Offset int
	Quoted bool
}

// Text returns the value with quotes and escapes removed.
func (a Attribute) Text() string {
	if !a.Quoted {
		return a.Raw
	}
	return unescape(a.Raw[1 : len(a.Raw)-1])
}

// ValueStart is the 1-based offset of the first character of the value.
func (a Attribute) ValueStart() int {
	if a.Quoted {
		return a.Offset + 2
	}
	return a.Offset + 1
}

// Covers reports whether a 0-based cursor offset lies inside the value. For strings the
// cursor must be between the quotes.
func (a Attribute) Covers(cursor int) bool {
	if a.Quoted {
		return cursor > a.Offset && cursor < a.Offset+len(a.Raw)
	}
	return cursor >= a.Offset && cursor <= a.Offset+len(a.Raw)
}

// Tag is a parsed entity tag.
type Tag struct {
	// Name is "include" or the entity tag name.
	Name string
	// Target is the unquoted include target.
	Target     string
	Attributes []Attribute
}

// Parse reads an entity tag or an include. Space separated attributes are tried first,
// then comma separated ones.
func Parse(ctx context.Context, expr string) (*Tag, error) {
	var (
		h     *head
		attrs []*attribute
	)

	if spaced, err := spaceParser.ParseString("", expr); err == nil {
		h, attrs = spaced.Head, spaced.Attrs
	} else if commaed, cerr := commaParser.ParseString("", expr); cerr == nil {
		h, attrs = commaed.Head, commaed.Attrs
	} else {
		zerolog.Ctx(ctx).Debug().Err(err).AnErr("comma_err", cerr).Str("expr", expr).Msg("tag did not parse")
		return nil, errors.Errorf("parsing %q: %w", expr, ErrNoAttributes)
	}

	tag := &Tag{Name: h.Entity}
	if h.Include != nil {
		tag.Name = TagInclude
		tag.Target = newAttribute("", h.Include).Text()
	}

	for _, a := range attrs {
		tag.Attributes = append(tag.Attributes, newAttribute(a.Key, a.Value))
	}

	if len(tag.Attributes) == 0 {
		return nil, errors.Errorf("parsing %q: %w", expr, ErrNoAttributes)
	}
	return tag, nil
}

// Offsets maps the 1-based offset of each attribute value's first character to the
// attribute key.
func Offsets(ctx context.Context, expr string) (map[int]string, error) {
	tag, err := Parse(ctx, expr)
	if err != nil {
		return nil, err
	}

	offsets := make(map[int]string, len(tag.Attributes))
	for _, a := range tag.Attributes {
		offsets[a.ValueStart()] = a.Key
	}
	return offsets, nil
}

// AttributeAt returns the attribute whose value covers cursor.
func (t *Tag) AttributeAt(cursor int) (Attribute, bool) {
	for _, a := range t.Attributes {
		if a.Covers(cursor) {
			return a, true
		}
	}
	return Attribute{}, false
}

func newAttribute(key string, v *value) Attribute {
	return Attribute{
		Key:    key,
		Raw:    v.raw(),
		Offset: v.Pos.Offset,
		Quoted: v.String != nil,
	}
}

func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var sb strings.Builder
	escaped := false
	for _, r := range s {
		if r == '\\' && !escaped {
			escaped = true
			continue
		}
		escaped = false
		sb.WriteRune(r)
	}
	return sb.String()
}
