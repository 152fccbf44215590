// Package completion locates the Liquid expression under a cursor and builds completion
// candidates for the value being typed in it.
package completion

import (
	"strings"

	"github.com/walteh/liquidtags/pkg/completion/providers"
	"github.com/walteh/liquidtags/pkg/liquid"
	"github.com/walteh/liquidtags/pkg/manifest"
)

// Builder turns a typed value and the manifest records it may name into candidates.
type Builder struct {
	records *providers.ManifestProvider
	roots   *providers.RootProvider
}

func NewBuilder(rootObjects []string) *Builder {
	return &Builder{
		records: providers.NewManifestProvider(),
		roots:   providers.NewRootProvider(rootObjects),
	}
}

// Build offers the entries matching the text typed so far: raw up to the caret marker,
// including its opening quote. Text after the caret is ignored.
func (b *Builder) Build(key, raw string, entries []manifest.Entry) []providers.CompletionCandidate {
	typed := liquid.BeforeCaret(raw)
	return b.records.GetCompletions(key, liquid.Unquote(typed), isQuoted(typed), entries)
}

// Roots offers the global objects.
func (b *Builder) Roots() []providers.CompletionCandidate {
	return b.roots.GetCompletions()
}

func isQuoted(s string) bool {
	return s != "" && strings.ContainsRune("'\"`", rune(s[0]))
}
