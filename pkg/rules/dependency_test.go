package rules_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/liquidtags/pkg/liquid"
	"github.com/walteh/liquidtags/pkg/rules"
)

type entity struct {
	Construct, Key, Value string
}

func extract(t *testing.T, text string) []entity {
	t.Helper()

	tokens, err := liquid.Tokenize(text)
	require.NoError(t, err)

	reg := rules.NewRegistry(rules.DependencyRules()...)
	var got []entity
	for _, tok := range tokens {
		if tok.Kind == liquid.KindHTML {
			continue
		}
		for _, e := range reg.Dispatch(context.Background(), tok, &rules.Request{}) {
			got = append(got, entity{Construct: e.Construct, Key: e.AttributeKey, Value: e.AttributeValue})
		}
	}
	return got
}

func TestDependencyRules_EntityTags(t *testing.T) {
	for _, tag := range []string{"entityform", "webform", "entitylist"} {
		for _, key := range []string{"id", "name", "key"} {
			for _, quote := range []string{"'", `"`} {
				input := "{% " + tag + " " + key + ":" + quote + "v" + quote + " %}"
				t.Run(input, func(t *testing.T) {
					assert.Equal(t, []entity{{Construct: tag, Key: key, Value: "v"}}, extract(t, input))
				})
			}
		}
	}
}

func TestDependencyRules(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []entity
	}{
		{
			name:  "bare include references the template by name",
			input: "{% include 'Search' %}",
			want:  []entity{{Construct: "Template", Key: "name", Value: "Search"}},
		},
		{
			name:  "include with hashes references records of the target",
			input: "{% include 'entity_list' key:'Active Cases' %}",
			want:  []entity{{Construct: "entity_list", Key: "key", Value: "Active Cases"}},
		},
		{
			name:  "entity form by name",
			input: "{% entityform name:'Contact Us' %}",
			want:  []entity{{Construct: "entityform", Key: "name", Value: "Contact Us"}},
		},
		{
			name:  "comma separated attributes, unrelated keys dropped",
			input: "{% entitylist name:'Cases', language_code:1033, id:'abc' %}",
			want: []entity{
				{Construct: "entitylist", Key: "name", Value: "Cases"},
				{Construct: "entitylist", Key: "id", Value: "abc"},
			},
		},
		{
			name:  "editable snippet",
			input: "{% editable snippets 'Header' type: 'html' %}",
			want:  []entity{{Construct: "editable", Key: "snippets", Value: "Header"}},
		},
		{
			name:  "snippet output",
			input: "{{ snippets['Footer'] }}",
			want:  []entity{{Construct: "snippets", Key: "snippets", Value: "Footer"}},
		},
		{
			name:  "settings by property",
			input: "{{ settings.Search_Enabled | default: false }}",
			want:  []entity{{Construct: "settings", Key: "settings", Value: "Search_Enabled"}},
		},
		{
			name:  "sitemarker and weblinks",
			input: "<a href=\"{{ sitemarkers['Home'].url }}\">{{ weblinks[\"Primary Navigation\"].name }}</a>",
			want: []entity{
				{Construct: "sitemarkers", Key: "sitemarkers", Value: "Home"},
				{Construct: "weblinks", Key: "weblinks", Value: "Primary Navigation"},
			},
		},
		{
			name:  "unrelated liquid",
			input: "{% if user %}{{ user.fullname }}{% endif %}",
			want:  nil,
		},
		{
			name:  "empty value is skipped",
			input: "{% webform name: %}",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extract(t, tt.input))
		})
	}
}

func TestDependencyRules_Position(t *testing.T) {
	doc := "<div>\n{% entityform name:'Contact Us' %}\n</div>"

	tokens, err := liquid.Tokenize(doc)
	require.NoError(t, err)

	reg := rules.NewRegistry(rules.DependencyRules()...)
	got := reg.Dispatch(context.Background(), tokens[1], nil)
	require.Len(t, got, 1)

	pos := got[0].Position
	assert.Equal(t, "'Contact Us'", doc[pos.Offset:pos.Offset+pos.Length()])
	line, col := pos.GetLineAndColumn(doc)
	assert.Equal(t, 2, line)
	assert.Equal(t, 20, col)
}

func TestExtractedEntity_RecordAttribute(t *testing.T) {
	tests := []struct {
		entity rules.ExtractedEntity
		want   string
	}{
		{entity: rules.ExtractedEntity{Construct: "Template", AttributeKey: "name"}, want: "adx_webtemplateid"},
		{entity: rules.ExtractedEntity{Construct: "entityform", AttributeKey: "id"}, want: "adx_entityformid"},
		{entity: rules.ExtractedEntity{Construct: "entity_list", AttributeKey: "key"}, want: "adx_entitylistid"},
		{entity: rules.ExtractedEntity{Construct: "entity_list", AttributeKey: "language"}, want: ""},
		{entity: rules.ExtractedEntity{Construct: "editable", AttributeKey: "snippets"}, want: "adx_contentsnippetid"},
		{entity: rules.ExtractedEntity{Construct: "editable", AttributeKey: "page"}, want: ""},
		{entity: rules.ExtractedEntity{Construct: "settings", AttributeKey: "settings"}, want: "adx_sitesettingid"},
		{entity: rules.ExtractedEntity{Construct: "custom_template", AttributeKey: "name"}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.entity.Construct+"/"+tt.entity.AttributeKey, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.entity.RecordAttribute())
		})
	}
}
