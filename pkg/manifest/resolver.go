package manifest

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
)

// Resolver finds and loads the manifest that applies to an edited file. Loaded manifests
// are cached per config folder until the manifest file changes.
type Resolver struct {
	fs      afero.Fs
	finder  *Finder
	pattern string

	mu    sync.Mutex
	cache map[string]cachedManifest
}

type cachedManifest struct {
	modTime  time.Time
	manifest *Manifest
}

type ResolverOption func(*Resolver)

// WithFolderName overrides the config folder name.
func WithFolderName(name string) ResolverOption {
	return func(r *Resolver) {
		r.finder = NewFinder(r.fs, name)
	}
}

// WithFilePattern overrides the manifest file pattern.
func WithFilePattern(pattern string) ResolverOption {
	return func(r *Resolver) {
		if pattern != "" {
			r.pattern = pattern
		}
	}
}

func NewResolver(fs afero.Fs, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		fs:      fs,
		finder:  NewFinder(fs, DefaultFolderName),
		pattern: DefaultFilePattern,
		cache:   make(map[string]cachedManifest),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the manifest for file.
func (r *Resolver) Resolve(ctx context.Context, roots []string, file string) (*Manifest, error) {
	folder, err := r.finder.FindConfigFolder(ctx, roots, file)
	if err != nil {
		return nil, err
	}
	return r.load(folder)
}

// ResolveFolder returns the manifest inside a known config folder.
func (r *Resolver) ResolveFolder(folder string) (*Manifest, error) {
	return r.load(folder)
}

func (r *Resolver) load(folder string) (*Manifest, error) {
	path, err := FindFile(r.fs, folder, r.pattern)
	if err != nil {
		return nil, err
	}

	info, err := r.fs.Stat(path)
	if err != nil {
		return nil, errors.Errorf("stat manifest: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.cache[folder]; ok && c.manifest.Path == path && c.modTime.Equal(info.ModTime()) {
		return c.manifest, nil
	}

	m, err := Load(r.fs, folder, r.pattern)
	if err != nil {
		return nil, err
	}
	r.cache[folder] = cachedManifest{modTime: info.ModTime(), manifest: m}
	return m, nil
}

// Entries returns the records for attribute from the manifest that applies to file. Any
// failure yields an empty list.
func (r *Resolver) Entries(ctx context.Context, roots []string, file, attribute string) []Entry {
	m, err := r.Resolve(ctx, roots, file)
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Str("file", file).Str("attribute", attribute).Msg("manifest unavailable")
		return []Entry{}
	}
	entries := m.Entries(attribute)
	if entries == nil {
		return []Entry{}
	}
	return entries
}
