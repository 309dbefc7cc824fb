package unit

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DirectoryUnit reads files from an unpacked directory tree, e.g. an
// installed filesystem prefix or an extracted package.
type DirectoryUnit struct {
	base
	root     string
	contents []string
}

// NewDirectoryUnit creates a unit for the given root directory.
func NewDirectoryUnit(rootDir string) *DirectoryUnit {
	return &DirectoryUnit{
		base: base{
			id:         filepath.Base(filepath.Clean(rootDir)),
			bundleKind: BundleKindPackage,
		},
		root: filepath.Clean(rootDir),
	}
}

// Root returns the root directory this unit reads from.
func (u *DirectoryUnit) Root() string { return u.root }

// SetID overrides the unit identifier derived from the directory name.
func (u *DirectoryUnit) SetID(id string) { u.id = id }

// Open indexes the directory tree. Symlinks are listed but not followed
// into, so link cycles cannot stall the walk.
func (u *DirectoryUnit) Open(ctx context.Context) error {
	info, err := os.Stat(u.root)
	if err != nil {
		return fmt.Errorf("opening unit %q: %w", u.id, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("opening unit %q: %s is not a directory", u.id, u.root)
	}

	u.contents = u.contents[:0]
	err = filepath.WalkDir(u.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(u.root, path)
		if err != nil {
			return err
		}
		u.contents = append(u.contents, "/"+filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return fmt.Errorf("indexing unit %q: %w", u.id, err)
	}
	return nil
}

// Close is a no-op for directory units.
func (u *DirectoryUnit) Close() error { return nil }

// Contents returns all indexed file paths.
func (u *DirectoryUnit) Contents() []string { return u.contents }

// FileExists reports whether the file exists below the unit root.
func (u *DirectoryUnit) FileExists(name string) bool {
	info, err := os.Stat(u.localPath(name))
	return err == nil && !info.IsDir()
}

// DirExists reports whether the directory exists below the unit root.
func (u *DirectoryUnit) DirExists(name string) bool {
	info, err := os.Stat(u.localPath(name))
	return err == nil && info.IsDir()
}

// ReadData reads a file from the unit.
func (u *DirectoryUnit) ReadData(name string) ([]byte, error) {
	data, err := os.ReadFile(u.localPath(name))
	if err != nil {
		return nil, fmt.Errorf("reading %q from unit %q: %w", name, u.id, err)
	}
	return data, nil
}

// localPath maps a unit path to a filesystem path, refusing to escape the
// unit root.
func (u *DirectoryUnit) localPath(name string) string {
	clean := filepath.Clean("/" + strings.TrimPrefix(name, "/"))
	return filepath.Join(u.root, filepath.FromSlash(clean))
}
