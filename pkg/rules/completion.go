package rules

import (
	"context"
	"time"

	"github.com/walteh/liquidtags/pkg/completion"
	"github.com/walteh/liquidtags/pkg/completion/providers"
	"github.com/walteh/liquidtags/pkg/liquid"
	"github.com/walteh/liquidtags/pkg/telemetry"
)

// CompletionRules returns the rules used for completion. A construct only contributes
// when the caret sits inside the value it reads.
func CompletionRules() []Rule[providers.CompletionCandidate] {
	builder := completion.NewBuilder(RootObjects)

	var out []Rule[providers.CompletionCandidate]
	for _, c := range constructs() {
		extract := c.extract
		name := c.name
		out = append(out, Rule[providers.CompletionCandidate]{
			Name:     name,
			Priority: c.priority,
			IsValid:  c.isValid,
			Apply: func(ctx context.Context, tok liquid.Token, req *Request) []providers.CompletionCandidate {
				var candidates []providers.CompletionCandidate
				for _, ref := range extract(tok) {
					if !ref.Value.HasCaret() || ref.Attribute == "" {
						continue
					}
					candidates = append(candidates, CompleteReference(ctx, name, ref, req, builder)...)
				}
				return candidates
			},
		})
	}

	out = append(out, Rule[providers.CompletionCandidate]{
		Name:     "root",
		Priority: 3,
		IsValid:  isBareRoot,
		Apply: func(context.Context, liquid.Token, *Request) []providers.CompletionCandidate {
			return builder.Roots()
		},
	})

	return out
}

// CompleteReference offers the manifest records matching the value typed for ref and
// reports the batch to the request's sink.
func CompleteReference(ctx context.Context, rule string, ref Reference, req *Request, builder *completion.Builder) []providers.CompletionCandidate {
	start := time.Now()

	candidates := builder.Build(ref.Key, ref.Value.Raw, req.entries(ctx, ref.Attribute))

	telemetry.Emit(ctx, req.sink(), telemetry.Event{
		Rule:     "completion." + rule,
		Key:      ref.Key,
		Success:  len(candidates) > 0,
		Results:  len(candidates),
		Start:    start,
		Duration: time.Since(start),
	})
	return candidates
}
