package unit

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"
)

// TarUnit reads files from a tarball, optionally gzip-compressed.
// The archive index and file data are held in memory after Open.
type TarUnit struct {
	base
	archivePath string
	files       map[string][]byte
	dirs        map[string]bool
	contents    []string
}

// NewTarUnit creates a unit for the given tar or tar.gz archive.
func NewTarUnit(archivePath string) *TarUnit {
	id := path.Base(strings.TrimSuffix(strings.TrimSuffix(archivePath, ".gz"), ".tar"))
	return &TarUnit{
		base: base{
			id:         id,
			bundleKind: BundleKindTarball,
		},
		archivePath: archivePath,
	}
}

// Open reads the whole archive into memory and builds the content index.
func (u *TarUnit) Open(ctx context.Context) error {
	f, err := os.Open(u.archivePath)
	if err != nil {
		return fmt.Errorf("opening unit %q: %w", u.id, err)
	}
	defer f.Close()

	var src io.Reader = f
	if strings.HasSuffix(u.archivePath, ".gz") || strings.HasSuffix(u.archivePath, ".tgz") {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("opening unit %q: %w", u.id, err)
		}
		defer zr.Close()
		src = zr
	}

	u.files = make(map[string][]byte)
	u.dirs = map[string]bool{"/": true}
	u.contents = nil
	links := make(map[string]string)

	tr := tar.NewReader(src)
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("reading unit %q: %w", u.id, err)
		}

		name := normalizeTarPath(hdr.Name)
		switch hdr.Typeflag {
		case tar.TypeDir:
			u.addDir(name)
		case tar.TypeReg:
			data, err := io.ReadAll(tr)
			if err != nil {
				return fmt.Errorf("reading %q from unit %q: %w", name, u.id, err)
			}
			u.files[name] = data
			u.contents = append(u.contents, name)
			u.addDir(path.Dir(name))
		case tar.TypeSymlink, tar.TypeLink:
			target := hdr.Linkname
			if !strings.HasPrefix(target, "/") {
				target = path.Join(path.Dir(name), target)
			}
			links[name] = normalizeTarPath(target)
		}
	}

	// resolve links against regular members, one level is enough for the
	// symlink farms found in real packages
	for name, target := range links {
		if data, ok := u.files[target]; ok {
			u.files[name] = data
			u.contents = append(u.contents, name)
			u.addDir(path.Dir(name))
		}
	}

	sort.Strings(u.contents)
	return nil
}

// Close drops the in-memory archive data.
func (u *TarUnit) Close() error {
	u.files = nil
	u.dirs = nil
	u.contents = nil
	return nil
}

// Contents returns all file paths in the archive.
func (u *TarUnit) Contents() []string { return u.contents }

// FileExists reports whether the archive contains the file.
func (u *TarUnit) FileExists(name string) bool {
	_, ok := u.files[normalizeTarPath(name)]
	return ok
}

// DirExists reports whether the archive contains the directory.
func (u *TarUnit) DirExists(name string) bool {
	return u.dirs[normalizeTarPath(name)]
}

// ReadData returns the contents of a file in the archive.
func (u *TarUnit) ReadData(name string) ([]byte, error) {
	data, ok := u.files[normalizeTarPath(name)]
	if !ok {
		return nil, fmt.Errorf("reading %q from unit %q: %w", name, u.id, os.ErrNotExist)
	}
	return data, nil
}

func (u *TarUnit) addDir(dir string) {
	for dir != "/" && dir != "." && !u.dirs[dir] {
		u.dirs[dir] = true
		dir = path.Dir(dir)
	}
}

// normalizeTarPath converts tar member names like "./usr/bin/foo" to the
// unit path form "/usr/bin/foo".
func normalizeTarPath(name string) string {
	name = strings.TrimPrefix(name, ".")
	if !strings.HasPrefix(name, "/") {
		name = "/" + name
	}
	return path.Clean(name)
}
