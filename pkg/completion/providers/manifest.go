package providers

import (
	"sort"
	"strings"

	"github.com/walteh/liquidtags/pkg/manifest"
)

// ManifestProvider turns manifest records into insertable values for the attribute being
// typed.
type ManifestProvider struct{}

func NewManifestProvider() *ManifestProvider {
	return &ManifestProvider{}
}

// GetCompletions returns the entries whose display name contains typed, ignoring case.
// Entries whose name starts with typed rank first, then entries sort by name. For the "id" key the record id is
// inserted, otherwise the display name; unquoted typing gets single quotes around it.
func (p *ManifestProvider) GetCompletions(key, typed string, quoted bool, entries []manifest.Entry) []CompletionCandidate {
	needle := strings.ToLower(typed)

	type ranked struct {
		candidate CompletionCandidate
		name      string
		prefix    bool
	}
	var matches []ranked

	for _, entry := range entries {
		name := strings.ToLower(entry.DisplayName)
		if !strings.Contains(name, needle) {
			continue
		}

		value := entry.DisplayName
		if key == "id" {
			value = entry.RecordId
		}
		if !quoted {
			value = "'" + value + "'"
		}

		matches = append(matches, ranked{
			candidate: CompletionCandidate{
				Label:      entry.DisplayName,
				InsertText: value,
				Kind:       KindValue,
				Detail:     entry.RecordId,
			},
			name:   name,
			prefix: strings.HasPrefix(name, needle),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].prefix != matches[j].prefix {
			return matches[i].prefix
		}
		return matches[i].name < matches[j].name
	})

	completions := make([]CompletionCandidate, 0, len(matches))
	for _, m := range matches {
		completions = append(completions, m.candidate)
	}
	return completions
}
