package manifest

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
)

// DefaultFolderName is the directory, next to the site content, that holds the manifest.
const DefaultFolderName = ".portalconfig"

var ErrConfigFolderNotFound = errors.New("config folder not found")

// Finder locates the config folder for a file inside a (possibly multi-root) workspace.
type Finder struct {
	fs         afero.Fs
	folderName string
}

func NewFinder(fs afero.Fs, folderName string) *Finder {
	if folderName == "" {
		folderName = DefaultFolderName
	}
	return &Finder{
		fs:         fs,
		folderName: folderName,
	}
}

// SelectRoot returns the root that is the longest path prefix of file.
func SelectRoot(roots []string, file string) (string, bool) {
	file = filepath.Clean(file)

	best := ""
	found := false
	for _, root := range roots {
		if root == "" {
			continue
		}
		root = filepath.Clean(root)
		if !isUnder(file, root) {
			continue
		}
		if !found || len(root) > len(best) {
			best = root
			found = true
		}
	}
	return best, found
}

func isUnder(file, root string) bool {
	if file == root {
		return true
	}
	if !strings.HasSuffix(root, string(filepath.Separator)) {
		root += string(filepath.Separator)
	}
	return strings.HasPrefix(file, root)
}

// FindConfigFolder walks upward from the directory of file to the selected root, root
// included, and returns the first sibling directory named after the config folder.
func (f *Finder) FindConfigFolder(ctx context.Context, roots []string, file string) (string, error) {
	root, ok := SelectRoot(roots, file)
	if !ok {
		return "", errors.Errorf("%s is not under any workspace root: %w", file, ErrConfigFolderNotFound)
	}

	dir := filepath.Dir(filepath.Clean(file))
	for {
		candidate := filepath.Join(dir, f.folderName)
		exists, err := afero.DirExists(f.fs, candidate)
		if err != nil {
			zerolog.Ctx(ctx).Debug().Err(err).Str("candidate", candidate).Msg("checking config folder")
		}
		if exists {
			return candidate, nil
		}

		if dir == root {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", errors.Errorf("searching from %s up to %s: %w", file, root, ErrConfigFolderNotFound)
}
