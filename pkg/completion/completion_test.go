package completion_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/walteh/liquidtags/pkg/completion"
	"github.com/walteh/liquidtags/pkg/completion/providers"
	"github.com/walteh/liquidtags/pkg/liquid"
	"github.com/walteh/liquidtags/pkg/manifest"
)

func TestBuilder_Build(t *testing.T) {
	entries := []manifest.Entry{
		{DisplayName: "Alpha", RecordId: "a-1"},
		{DisplayName: "Beta", RecordId: "b-2"},
	}

	tests := []struct {
		name string
		key  string
		raw  string
		want []providers.CompletionCandidate
	}{
		{
			name: "quoted name",
			key:  "name",
			raw:  "'al" + liquid.Caret + "'",
			want: []providers.CompletionCandidate{
				{Label: "Alpha", InsertText: "Alpha", Kind: providers.KindValue, Detail: "a-1"},
			},
		},
		{
			name: "unterminated double quote",
			key:  "id",
			raw:  `"be` + liquid.Caret,
			want: []providers.CompletionCandidate{
				{Label: "Beta", InsertText: "b-2", Kind: providers.KindValue, Detail: "b-2"},
			},
		},
		{
			name: "bare word is quoted on insert",
			key:  "key",
			raw:  "b" + liquid.Caret,
			want: []providers.CompletionCandidate{
				{Label: "Beta", InsertText: "'Beta'", Kind: providers.KindValue, Detail: "b-2"},
			},
		},
		{
			name: "text after the caret is ignored",
			key:  "name",
			raw:  "'al" + liquid.Caret + "zz'",
			want: []providers.CompletionCandidate{
				{Label: "Alpha", InsertText: "Alpha", Kind: providers.KindValue, Detail: "a-1"},
			},
		},
		{
			name: "value without a caret is used whole",
			key:  "name",
			raw:  "'be'",
			want: []providers.CompletionCandidate{
				{Label: "Beta", InsertText: "Beta", Kind: providers.KindValue, Detail: "b-2"},
			},
		},
		{
			name: "no match",
			key:  "name",
			raw:  "'zz" + liquid.Caret + "'",
			want: []providers.CompletionCandidate{},
		},
	}

	b := completion.NewBuilder(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, b.Build(tt.key, tt.raw, entries))
		})
	}
}

func TestBuilder_Roots(t *testing.T) {
	b := completion.NewBuilder([]string{"page", "website"})

	got := b.Roots()

	assert.Equal(t, []providers.CompletionCandidate{
		{Label: "page", InsertText: "page", Kind: providers.KindVariable, Detail: "Liquid object"},
		{Label: "website", InsertText: "website", Kind: providers.KindVariable, Detail: "Liquid object"},
	}, got)
}
