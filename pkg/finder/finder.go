package finder

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
)

var (
	// DefaultInclude matches the site documents that carry Liquid.
	DefaultInclude = []string{"**/*.html", "**/*.liquid", "**/*.yml", "**/*.yaml"}
	DefaultExclude = []string{"**/.portalconfig/**", "**/.git/**", "**/node_modules/**"}
)

// DocumentFinder is responsible for finding site documents in a directory
type DocumentFinder interface {
	// FindDocuments finds all documents under dir matching the include globs and none of
	// the exclude globs
	FindDocuments(ctx context.Context, dir string, opts Options) ([]FileInfo, error)
}

// Options holds doublestar globs matched against slash separated paths relative to the
// scanned directory. Empty lists fall back to the defaults.
type Options struct {
	Include []string
	Exclude []string
}

// FileInfo represents information about a found document
type FileInfo struct {
	Path     string
	Content  []byte
	FileType string
}

// DefaultFinder is the default implementation of DocumentFinder
type DefaultFinder struct {
	fs afero.Fs
}

// NewDefaultFinder creates a new DefaultFinder
func NewDefaultFinder(fs afero.Fs) *DefaultFinder {
	return &DefaultFinder{fs: fs}
}

// FindDocuments implements DocumentFinder
func (f *DefaultFinder) FindDocuments(ctx context.Context, dir string, opts Options) ([]FileInfo, error) {
	include := opts.Include
	if len(include) == 0 {
		include = DefaultInclude
	}
	exclude := opts.Exclude
	if len(exclude) == 0 {
		exclude = DefaultExclude
	}

	for _, pattern := range append(append([]string{}, include...), exclude...) {
		if !doublestar.ValidatePattern(pattern) {
			return nil, errors.Errorf("invalid glob %q", pattern)
		}
	}

	var files []FileInfo
	err := afero.Walk(f.fs, dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return errors.Errorf("relative path of %s: %w", path, err)
		}
		rel = filepath.ToSlash(rel)
		if !matchAny(include, rel) || matchAny(exclude, rel) {
			return nil
		}

		content, err := afero.ReadFile(f.fs, path)
		if err != nil {
			return errors.Errorf("reading %s: %w", path, err)
		}

		files = append(files, FileInfo{
			Path:     path,
			Content:  content,
			FileType: strings.TrimPrefix(filepath.Ext(path), "."),
		})
		return nil
	})
	if err != nil {
		return nil, errors.Errorf("walking %s: %w", dir, err)
	}

	return files, nil
}

func matchAny(patterns []string, path string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, path); ok {
			return true
		}
	}
	return false
}
