package rules

import (
	"sort"
	"strings"

	"github.com/walteh/liquidtags/pkg/liquid"
)

const (
	ConstructTemplate = "Template"
	ConstructEditable = "editable"

	TagInclude    = "include"
	TagEditable   = "editable"
	TagEntityForm = "entityform"
	TagWebForm    = "webform"
	TagEntityList = "entitylist"

	ObjectSnippets    = "snippets"
	ObjectSettings    = "settings"
	ObjectWeblinks    = "weblinks"
	ObjectSitemarkers = "sitemarkers"
)

// EntityTags are the tags whose id/name/key hashes name a record.
var EntityTags = []string{TagEntityForm, TagWebForm, TagEntityList}

// Objects are the outputs whose property access names a record.
var Objects = []string{ObjectSnippets, ObjectSettings, ObjectWeblinks, ObjectSitemarkers}

// RootObjects are offered when a bare identifier is being typed in an output.
var RootObjects = []string{"page", "snippets", "settings", "sitemap", "sitemarkers", "website", "weblink"}

// recordAttributes maps a construct to the manifest attribute of the records it references.
var recordAttributes = map[string]string{
	ConstructTemplate: "adx_webtemplateid",
	TagEntityForm:     "adx_entityformid",
	TagEntityList:     "adx_entitylistid",
	TagWebForm:        "adx_webformid",
	ObjectSnippets:    "adx_contentsnippetid",
	ObjectSettings:    "adx_sitesettingid",
	ObjectWeblinks:    "adx_weblinksetid",
	ObjectSitemarkers: "adx_sitemarkerid",

	// include targets that render an entity tag
	"entity_form": "adx_entityformid",
	"entity_list": "adx_entitylistid",
	"web_form":    "adx_webformid",
}

// RecordAttribute returns the manifest attribute for construct, or "" when the construct
// does not reference manifest records.
func RecordAttribute(construct string) string {
	return recordAttributes[construct]
}

// RecordAttributes returns every manifest attribute a construct can reference, sorted.
func RecordAttributes() []string {
	seen := map[string]bool{}
	var out []string
	for _, attr := range recordAttributes {
		if !seen[attr] {
			seen[attr] = true
			out = append(out, attr)
		}
	}
	sort.Strings(out)
	return out
}

var recordKeys = map[string]bool{"id": true, "name": true, "key": true}

// IsRecordKey reports whether an attribute key names a record.
func IsRecordKey(key string) bool {
	return recordKeys[key]
}

// Reference is a construct reference read from one token. Value offsets are relative to
// the token body.
type Reference struct {
	Construct string
	Key       string
	Value     liquid.Value
	Attribute string
}

func tagNamed(name string) func(liquid.Token) bool {
	return func(tok liquid.Token) bool {
		return tok.Kind == liquid.KindTag && tok.Name == name
	}
}

func outputContaining(object string) func(liquid.Token) bool {
	return func(tok liquid.Token) bool {
		return tok.Kind == liquid.KindOutput && strings.Contains(tok.Content, object)
	}
}

func isBareRoot(tok liquid.Token) bool {
	return tok.Kind == liquid.KindOutput && !strings.ContainsAny(tok.Content, ".[") && liquid.HasCaret(tok.Content)
}

func reader(tok liquid.Token) (*liquid.Reader, bool) {
	r, err := liquid.NewReader(tok.Body())
	if err != nil {
		return nil, false
	}
	return r, true
}

// extractInclude reads `include target [hashes]`. A bare include references the web
// template by name; hashes reference records owned by the target.
func extractInclude(tok liquid.Token) []Reference {
	r, ok := reader(tok)
	if !ok {
		return nil
	}
	target, ok := r.ReadValue()
	if !ok {
		return nil
	}

	hashes := r.ReadHashes()
	if len(hashes) == 0 {
		return []Reference{{
			Construct: ConstructTemplate,
			Key:       "name",
			Value:     target,
			Attribute: RecordAttribute(ConstructTemplate),
		}}
	}

	owner := liquid.StripCaret(target.Text())
	refs := make([]Reference, 0, len(hashes))
	for _, h := range hashes {
		refs = append(refs, Reference{
			Construct: owner,
			Key:       h.Key,
			Value:     h.Value,
			Attribute: includeAttribute(owner, h.Key),
		})
	}
	return refs
}

func includeAttribute(owner, key string) string {
	if !IsRecordKey(key) {
		return ""
	}
	return RecordAttribute(owner)
}

// extractEditable reads `editable target value`.
func extractEditable(tok liquid.Token) []Reference {
	r, ok := reader(tok)
	if !ok {
		return nil
	}
	target, ok := r.ReadIdentifier()
	if !ok {
		return nil
	}
	value, ok := r.ReadValue()
	if !ok {
		return nil
	}

	attr := ""
	if target == ObjectSnippets {
		attr = RecordAttribute(ObjectSnippets)
	}
	return []Reference{{
		Construct: ConstructEditable,
		Key:       target,
		Value:     value,
		Attribute: attr,
	}}
}

// extractEntityTag reads the id/name/key hashes of an entity tag.
func extractEntityTag(tok liquid.Token) []Reference {
	r, ok := reader(tok)
	if !ok {
		return nil
	}

	var refs []Reference
	for _, h := range r.ReadHashes() {
		if !IsRecordKey(h.Key) {
			continue
		}
		refs = append(refs, Reference{
			Construct: tok.Name,
			Key:       h.Key,
			Value:     h.Value,
			Attribute: RecordAttribute(tok.Name),
		})
	}
	return refs
}

// extractObject reads every root property access of object in an output.
func extractObject(object string) func(liquid.Token) []Reference {
	return func(tok liquid.Token) []Reference {
		r, ok := reader(tok)
		if !ok {
			return nil
		}

		var refs []Reference
		for _, v := range r.PropertyAccesses(object) {
			refs = append(refs, Reference{
				Construct: object,
				Key:       object,
				Value:     v,
				Attribute: RecordAttribute(object),
			})
		}
		return refs
	}
}

type construct struct {
	name     string
	priority int
	isValid  func(liquid.Token) bool
	extract  func(liquid.Token) []Reference
}

// constructs lists the extractors in registration order.
func constructs() []construct {
	out := []construct{
		{name: TagInclude, priority: 1, isValid: tagNamed(TagInclude), extract: extractInclude},
		{name: TagEditable, priority: 1, isValid: tagNamed(TagEditable), extract: extractEditable},
	}
	for _, tag := range EntityTags {
		out = append(out, construct{name: tag, priority: 1, isValid: tagNamed(tag), extract: extractEntityTag})
	}
	for _, object := range Objects {
		out = append(out, construct{name: object, priority: 2, isValid: outputContaining(object), extract: extractObject(object)})
	}
	return out
}
