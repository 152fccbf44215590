// Package analyzer wires the tokenizer, the rule registries, the manifest resolver and the
// telemetry sink into one engine serving completion and dependency extraction.
package analyzer

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/walteh/liquidtags/pkg/completion"
	"github.com/walteh/liquidtags/pkg/completion/providers"
	"github.com/walteh/liquidtags/pkg/grammar"
	"github.com/walteh/liquidtags/pkg/liquid"
	"github.com/walteh/liquidtags/pkg/manifest"
	"github.com/walteh/liquidtags/pkg/rules"
	"github.com/walteh/liquidtags/pkg/telemetry"
)

// CompletionRequest describes one cursor position in an edited file.
type CompletionRequest struct {
	LineText string `json:"lineText"`
	// Row is the 0-based line of the cursor in the file.
	Row int `json:"row"`
	// Column is the 0-based byte offset of the cursor in LineText. Editor columns in
	// UTF-16 code units convert with position.ByteColumn.
	Column         int      `json:"column"`
	FilePath       string   `json:"filePath"`
	WorkspaceRoots []string `json:"workspaceRoots"`
}

// Engine answers completion and dependency requests. It is safe for concurrent use once
// built.
type Engine struct {
	fs              afero.Fs
	manifests       rules.EntrySource
	resolverOptions []manifest.ResolverOption
	sink            telemetry.Sink
	builder         *completion.Builder

	dependencies *rules.Registry[rules.ExtractedEntity]
	completions  *rules.Registry[providers.CompletionCandidate]
}

type Option func(*Engine)

// WithFS sets the filesystem manifests are read from. Defaults to the OS filesystem.
func WithFS(fs afero.Fs) Option {
	return func(e *Engine) {
		e.fs = fs
	}
}

// WithManifests replaces the manifest resolver.
func WithManifests(src rules.EntrySource) Option {
	return func(e *Engine) {
		e.manifests = src
	}
}

// WithResolverOptions configures the default manifest resolver.
func WithResolverOptions(opts ...manifest.ResolverOption) Option {
	return func(e *Engine) {
		e.resolverOptions = append(e.resolverOptions, opts...)
	}
}

func WithSink(sink telemetry.Sink) Option {
	return func(e *Engine) {
		e.sink = sink
	}
}

// WithDependencyRules replaces the dependency rule set.
func WithDependencyRules(set ...rules.Rule[rules.ExtractedEntity]) Option {
	return func(e *Engine) {
		e.dependencies.Install(set...)
	}
}

// WithCompletionRules replaces the completion rule set.
func WithCompletionRules(set ...rules.Rule[providers.CompletionCandidate]) Option {
	return func(e *Engine) {
		e.completions.Install(set...)
	}
}

func New(opts ...Option) *Engine {
	e := &Engine{
		fs:           afero.NewOsFs(),
		sink:         telemetry.NopSink{},
		builder:      completion.NewBuilder(rules.RootObjects),
		dependencies: rules.NewRegistry(rules.DependencyRules()...),
		completions:  rules.NewRegistry(rules.CompletionRules()...),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.manifests == nil {
		e.manifests = manifest.NewResolver(e.fs, e.resolverOptions...)
	}
	return e
}

func (e *Engine) request(req CompletionRequest) *rules.Request {
	return &rules.Request{
		WorkspaceRoots: req.WorkspaceRoots,
		FilePath:       req.FilePath,
		Manifests:      e.manifests,
		Sink:           e.sink,
	}
}

// Complete returns the candidates for the value under the cursor, using the token rules.
// Anything that cannot be resolved yields an empty list.
func (e *Engine) Complete(ctx context.Context, req CompletionRequest) []providers.CompletionCandidate {
	logger := zerolog.Ctx(ctx).With().Str("file", req.FilePath).Int("row", req.Row).Int("column", req.Column).Logger()

	cc, ok := completion.Locate(req.LineText, req.Column)
	if !ok {
		logger.Debug().Msg("cursor is not inside a liquid expression")
		return []providers.CompletionCandidate{}
	}

	tok, err := liquid.ReadTop(cc.WithCaret())
	if err != nil {
		logger.Debug().Err(err).Str("expression", cc.Expression).Msg("reading expression")
		return []providers.CompletionCandidate{}
	}
	if tok.Kind == liquid.KindHTML {
		return []providers.CompletionCandidate{}
	}

	out := e.completions.Dispatch(ctx, tok, e.request(req))
	if out == nil {
		return []providers.CompletionCandidate{}
	}
	return out
}

// CompleteAtOffset returns the candidates for the value under the cursor, locating the
// attribute with the tag grammar instead of the token rules.
func (e *Engine) CompleteAtOffset(ctx context.Context, req CompletionRequest) []providers.CompletionCandidate {
	logger := zerolog.Ctx(ctx).With().Str("file", req.FilePath).Int("row", req.Row).Int("column", req.Column).Logger()

	cc, ok := completion.Locate(req.LineText, req.Column)
	if !ok || cc.Kind != liquid.KindTag {
		return []providers.CompletionCandidate{}
	}

	tag, err := grammar.Parse(ctx, cc.Expression)
	if err != nil {
		logger.Debug().Err(err).Msg("no completable attributes")
		return []providers.CompletionCandidate{}
	}

	attr, ok := tag.AttributeAt(cc.CaretOffset)
	if !ok {
		return []providers.CompletionCandidate{}
	}

	owner := tag.Name
	if owner == grammar.TagInclude {
		owner = tag.Target
	}
	attribute := rules.RecordAttribute(owner)
	if attribute == "" {
		logger.Debug().Str("construct", owner).Msg("construct has no manifest records")
		return []providers.CompletionCandidate{}
	}

	start := time.Now()
	typed := attr.Raw[:cc.CaretOffset-attr.Offset]
	out := e.builder.Build(attr.Key, typed, e.manifests.Entries(ctx, req.WorkspaceRoots, req.FilePath, attribute))

	telemetry.Emit(ctx, e.sink, telemetry.Event{
		Rule:     "grammar." + tag.Name,
		Key:      attr.Key,
		Success:  len(out) > 0,
		Results:  len(out),
		Start:    start,
		Duration: time.Since(start),
	})
	return out
}

// ExtractDependencies returns every construct reference in a document. A document that
// does not tokenize yields an empty list.
func (e *Engine) ExtractDependencies(ctx context.Context, text string) []rules.ExtractedEntity {
	tokens, err := liquid.Tokenize(text)
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Msg("tokenizing document")
		return []rules.ExtractedEntity{}
	}

	req := &rules.Request{Sink: e.sink}
	entities := []rules.ExtractedEntity{}
	for _, tok := range tokens {
		if tok.Kind == liquid.KindHTML {
			continue
		}
		entities = append(entities, e.dependencies.Dispatch(ctx, tok, req)...)
	}
	return entities
}
