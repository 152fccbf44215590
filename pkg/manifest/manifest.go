// Package manifest loads the generated per-workspace manifest that maps entity keys such
// as adx_webtemplate to their records.
package manifest

import (
	"bytes"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// DefaultFilePattern matches the manifest file inside the config folder.
const DefaultFilePattern = "*-manifest*"

var ErrManifestNotFound = errors.New("manifest file not found")

// Entry is one record of the manifest.
type Entry struct {
	DisplayName string `yaml:"DisplayName" json:"DisplayName"`
	RecordId    string `yaml:"RecordId" json:"RecordId"`
}

// Manifest indexes entries by normalized entity key.
type Manifest struct {
	Path    string
	entries map[string][]Entry
}

// NormalizeKey strips quotes and a trailing "id" from keys longer than two characters, so
// that an attribute like adx_webtemplateid maps to the adx_webtemplate manifest key.
func NormalizeKey(key string) string {
	key = strings.Trim(strings.TrimSpace(key), `'"`)
	if len(key) > 2 && strings.HasSuffix(key, "id") {
		key = key[:len(key)-2]
	}
	return key
}

// Parse decodes a manifest document.
func Parse(data []byte) (*Manifest, error) {
	raw := map[string][]Entry{}
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&raw); err != nil {
		return nil, errors.Errorf("decoding manifest: %w", err)
	}

	m := &Manifest{entries: make(map[string][]Entry, len(raw))}
	for key, entries := range raw {
		norm := NormalizeKey(key)
		m.entries[norm] = append(m.entries[norm], entries...)
	}
	return m, nil
}

// Entries returns the records for an attribute or entity key, normalized first.
func (m *Manifest) Entries(attribute string) []Entry {
	if m == nil {
		return nil
	}
	return m.entries[NormalizeKey(attribute)]
}

// Keys returns the normalized entity keys in sorted order.
func (m *Manifest) Keys() []string {
	if m == nil {
		return nil
	}
	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FindFile returns the first file in folder, by name, matching pattern.
func FindFile(fs afero.Fs, folder, pattern string) (string, error) {
	if pattern == "" {
		pattern = DefaultFilePattern
	}

	infos, err := afero.ReadDir(fs, folder)
	if err != nil {
		return "", errors.Errorf("reading %s: %w", folder, err)
	}

	for _, info := range infos {
		if info.IsDir() {
			continue
		}
		ok, err := doublestar.Match(pattern, info.Name())
		if err != nil {
			return "", errors.Errorf("matching %q: %w", pattern, err)
		}
		if ok {
			return filepath.Join(folder, info.Name()), nil
		}
	}

	return "", errors.Errorf("no %s in %s: %w", pattern, folder, ErrManifestNotFound)
}

// Load finds and parses the manifest inside folder.
func Load(fs afero.Fs, folder, pattern string) (*Manifest, error) {
	path, err := FindFile(fs, folder, pattern)
	if err != nil {
		return nil, err
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Errorf("reading manifest: %w", err)
	}

	m, err := Parse(data)
	if err != nil {
		return nil, errors.Errorf("parsing %s: %w", path, err)
	}
	m.Path = path
	return m, nil
}
