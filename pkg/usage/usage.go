// Package usage scans a site folder for the records each document references and compares
// them with the manifest to find unused and unresolved components.
package usage

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.uber.org/multierr"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/liquidtags/pkg/analyzer"
	"github.com/walteh/liquidtags/pkg/finder"
	"github.com/walteh/liquidtags/pkg/manifest"
	"github.com/walteh/liquidtags/pkg/rules"
)

// Reference is an extracted entity together with the document it was found in.
type Reference struct {
	rules.ExtractedEntity
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

// Unused is a manifest record no scanned document references.
type Unused struct {
	Manifest  string         `json:"manifest"`
	Attribute string         `json:"attribute"`
	Entry     manifest.Entry `json:"entry"`
}

type Report struct {
	RunID      string      `json:"runId"`
	Root       string      `json:"root"`
	Files      int         `json:"files"`
	References []Reference `json:"references"`
	// Unresolved references name a record the manifest does not have.
	Unresolved []Reference `json:"unresolved"`
	Unused     []Unused    `json:"unused"`
}

// Manifests resolves the manifest applying to a document.
type Manifests interface {
	Resolve(ctx context.Context, roots []string, file string) (*manifest.Manifest, error)
}

type Scanner struct {
	engine    *analyzer.Engine
	manifests Manifests
	finder    finder.DocumentFinder
}

func NewScanner(engine *analyzer.Engine, manifests Manifests, documents finder.DocumentFinder) *Scanner {
	return &Scanner{
		engine:    engine,
		manifests: manifests,
		finder:    documents,
	}
}

// Scan extracts the references of every document under root. Documents whose manifest
// cannot be resolved are reported but not checked. Per-document failures are combined
// into the returned error next to a report of everything else.
func (s *Scanner) Scan(ctx context.Context, root string, opts finder.Options) (*Report, error) {
	report := &Report{
		RunID:      uuid.NewString(),
		Root:       root,
		References: []Reference{},
		Unresolved: []Reference{},
		Unused:     []Unused{},
	}
	logger := zerolog.Ctx(ctx).With().Str("run_id", report.RunID).Str("root", root).Logger()

	files, err := s.finder.FindDocuments(ctx, root, opts)
	if err != nil {
		return nil, errors.Errorf("finding documents: %w", err)
	}

	var (
		checked = map[string]*manifest.Manifest{}
		used    = map[string]bool{}
		failed  = map[string]bool{}
		errs    error
	)

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, errors.Errorf("scanning %s: %w", root, err)
		}
		report.Files++

		m, err := s.manifests.Resolve(ctx, []string{root}, file.Path)
		if err != nil {
			if !errors.Is(err, manifest.ErrConfigFolderNotFound) && !failed[err.Error()] {
				failed[err.Error()] = true
				errs = multierr.Append(errs, errors.Errorf("resolving manifest for %s: %w", file.Path, err))
			}
			logger.Debug().Err(err).Str("file", file.Path).Msg("references left unchecked")
		} else {
			checked[m.Path] = m
		}

		content := string(file.Content)
		for _, entity := range s.engine.ExtractDependencies(ctx, content) {
			line, col := entity.Position.GetLineAndColumn(content)
			ref := Reference{ExtractedEntity: entity, File: file.Path, Line: line, Column: col}
			report.References = append(report.References, ref)

			attr := entity.RecordAttribute()
			if m == nil || attr == "" {
				continue
			}

			entry, ok := lookup(m.Entries(attr), entity)
			if !ok {
				report.Unresolved = append(report.Unresolved, ref)
				continue
			}
			used[recordID(m.Path, attr, entry)] = true
		}
	}

	for _, m := range checked {
		report.Unused = append(report.Unused, unused(m, used)...)
	}
	sort.SliceStable(report.Unused, func(i, j int) bool {
		a, b := report.Unused[i], report.Unused[j]
		if a.Manifest != b.Manifest {
			return a.Manifest < b.Manifest
		}
		if a.Attribute != b.Attribute {
			return a.Attribute < b.Attribute
		}
		return a.Entry.DisplayName < b.Entry.DisplayName
	})

	logger.Debug().Int("files", report.Files).Int("references", len(report.References)).Int("unused", len(report.Unused)).Msg("scan complete")
	return report, errs
}

// lookup finds the record an entity names: by record id for the id key, by display name
// otherwise. Display names compare without regard to case.
func lookup(entries []manifest.Entry, entity rules.ExtractedEntity) (manifest.Entry, bool) {
	for _, e := range entries {
		if entity.AttributeKey == "id" {
			if strings.EqualFold(e.RecordId, entity.AttributeValue) {
				return e, true
			}
			continue
		}
		if strings.EqualFold(e.DisplayName, entity.AttributeValue) {
			return e, true
		}
	}
	return manifest.Entry{}, false
}

func recordID(manifestPath, attr string, e manifest.Entry) string {
	return manifestPath + "\x00" + manifest.NormalizeKey(attr) + "\x00" + e.RecordId + "\x00" + e.DisplayName
}

// unused lists the records of every referenceable attribute in m that were never used.
func unused(m *manifest.Manifest, used map[string]bool) []Unused {
	var out []Unused
	for _, attr := range rules.RecordAttributes() {
		for _, e := range m.Entries(attr) {
			if used[recordID(m.Path, attr, e)] {
				continue
			}
			out = append(out, Unused{Manifest: m.Path, Attribute: manifest.NormalizeKey(attr), Entry: e})
		}
	}
	return out
}
