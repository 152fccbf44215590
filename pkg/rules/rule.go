// Package rules classifies Liquid tokens by the site construct they reference. Each
// construct has one extractor shared by two rule sets: dependency extraction over whole
// documents and cursor-aware completion.
package rules

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/walteh/liquidtags/pkg/liquid"
	"github.com/walteh/liquidtags/pkg/manifest"
	"github.com/walteh/liquidtags/pkg/telemetry"
)

// EntrySource looks up manifest records for the file being analyzed.
type EntrySource interface {
	Entries(ctx context.Context, roots []string, file, attribute string) []manifest.Entry
}

// Request is what a rule knows about the analysis it runs in. Rules never modify it.
type Request struct {
	WorkspaceRoots []string
	FilePath       string
	Manifests      EntrySource
	Sink           telemetry.Sink
}

func (r *Request) entries(ctx context.Context, attribute string) []manifest.Entry {
	if r == nil || r.Manifests == nil || attribute == "" {
		return nil
	}
	return r.Manifests.Entries(ctx, r.WorkspaceRoots, r.FilePath, attribute)
}

func (r *Request) sink() telemetry.Sink {
	if r == nil {
		return nil
	}
	return r.Sink
}

// Rule recognizes one construct and turns a matching token into results.
type Rule[R any] struct {
	Name     string
	Priority int
	IsValid  func(tok liquid.Token) bool
	Apply    func(ctx context.Context, tok liquid.Token, req *Request) []R
}

// Registry holds an ordered rule set.
type Registry[R any] struct {
	rules []Rule[R]
}

func NewRegistry[R any](rules ...Rule[R]) *Registry[R] {
	r := &Registry[R]{}
	r.Install(rules...)
	return r
}

// Install replaces the installed rules. Installing the same set twice leaves one copy.
func (r *Registry[R]) Install(rules ...Rule[R]) {
	r.rules = append(r.rules[:0:0], rules...)
}

func (r *Registry[R]) Rules() []Rule[R] {
	return append([]Rule[R](nil), r.rules...)
}

// Dispatch applies every rule valid for tok, lowest priority first, and flattens the
// results. Registration order breaks priority ties.
func (r *Registry[R]) Dispatch(ctx context.Context, tok liquid.Token, req *Request) []R {
	var matched []Rule[R]
	for _, rule := range r.rules {
		if rule.IsValid != nil && rule.IsValid(tok) {
			matched = append(matched, rule)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Priority < matched[j].Priority
	})

	var results []R
	for _, rule := range matched {
		start := time.Now()
		out := apply(ctx, rule, tok, req)
		telemetry.Emit(ctx, req.sink(), telemetry.Event{
			Rule:     rule.Name,
			Success:  len(out) > 0,
			Results:  len(out),
			Start:    start,
			Duration: time.Since(start),
		})
		results = append(results, out...)
	}
	return results
}

func apply[R any](ctx context.Context, rule Rule[R], tok liquid.Token, req *Request) (out []R) {
	defer func() {
		if rec := recover(); rec != nil {
			zerolog.Ctx(ctx).Warn().Interface("panic", rec).Str("rule", rule.Name).Str("token", tok.Raw).Msg("rule failed")
			out = nil
		}
	}()
	return rule.Apply(ctx, tok, req)
}
