package rules

import (
	"context"

	"github.com/walteh/liquidtags/pkg/liquid"
	"github.com/walteh/liquidtags/pkg/position"
)

// ExtractedEntity is a construct reference found in a document.
type ExtractedEntity struct {
	Construct      string               `json:"construct"`
	AttributeKey   string               `json:"attributeKey"`
	AttributeValue string               `json:"attributeValue"`
	Position       position.RawPosition `json:"position"`
}

// DependencyRules returns the rules used for whole-document dependency extraction. Every
// non-empty value is reported.
func DependencyRules() []Rule[ExtractedEntity] {
	var out []Rule[ExtractedEntity]
	for _, c := range constructs() {
		extract := c.extract
		out = append(out, Rule[ExtractedEntity]{
			Name:     c.name,
			Priority: c.priority,
			IsValid:  c.isValid,
			Apply: func(_ context.Context, tok liquid.Token, _ *Request) []ExtractedEntity {
				return toEntities(tok, extract(tok))
			},
		})
	}
	return out
}

func toEntities(tok liquid.Token, refs []Reference) []ExtractedEntity {
	var entities []ExtractedEntity
	for _, ref := range refs {
		value := ref.Value.Text()
		if value == "" {
			continue
		}
		entities = append(entities, ExtractedEntity{
			Construct:      ref.Construct,
			AttributeKey:   ref.Key,
			AttributeValue: value,
			Position:       position.NewBasicPosition(ref.Value.Raw, tok.BodyOffset+ref.Value.Offset),
		})
	}
	return entities
}

// RecordAttribute returns the manifest attribute of the record the entity names, or "" when
// it names none.
func (e ExtractedEntity) RecordAttribute() string {
	switch {
	case e.Construct == ConstructEditable:
		if e.AttributeKey == ObjectSnippets {
			return RecordAttribute(ObjectSnippets)
		}
		return ""
	case e.Construct == e.AttributeKey:
		return RecordAttribute(e.Construct)
	case IsRecordKey(e.AttributeKey):
		return RecordAttribute(e.Construct)
	}
	return ""
}
