// Package unit abstracts the data sources the compose pipeline reads
// software metadata from.
//
// A unit is one installable entity, e.g. an unpacked package tree or a
// tarball. Paths inside a unit are absolute with "/" as the unit root, no
// matter how the unit stores its data.
package unit

import "context"

// BundleKind describes the packaging format a unit represents.
type BundleKind int

// Bundle kinds.
const (
	BundleKindUnknown BundleKind = iota
	BundleKindPackage
	BundleKindTarball
)

// String returns the lowercase name of the bundle kind.
func (k BundleKind) String() string {
	switch k {
	case BundleKindPackage:
		return "package"
	case BundleKindTarball:
		return "tarball"
	default:
		return "unknown"
	}
}

// Unit is a readable source of files for metadata composition.
//
// Open must be called before any read method; Close releases resources.
// All paths are absolute within the unit, e.g. "/usr/share/metainfo/x.xml".
type Unit interface {
	// ID returns a human-readable identifier, e.g. a package name or the
	// root directory path.
	ID() string

	// BundleKind returns the packaging format of this unit.
	BundleKind() BundleKind

	// RelevantPaths lists path prefixes worth scanning. An empty list
	// means the whole unit is relevant.
	RelevantPaths() []string

	// Open prepares the unit for reading and loads its content index.
	Open(ctx context.Context) error

	// Close releases resources held by the unit.
	Close() error

	// Contents returns all file paths in the unit. Only valid after Open.
	Contents() []string

	// FileExists reports whether the file exists and is readable.
	FileExists(name string) bool

	// DirExists reports whether the directory exists.
	DirExists(name string) bool

	// ReadData returns the contents of a file in the unit.
	ReadData(name string) ([]byte, error)
}

// base carries the bookkeeping shared by unit implementations.
type base struct {
	id            string
	bundleKind    BundleKind
	relevantPaths []string
}

func (b *base) ID() string              { return b.id }
func (b *base) BundleKind() BundleKind  { return b.bundleKind }
func (b *base) RelevantPaths() []string { return b.relevantPaths }

// AddRelevantPath registers a path prefix as relevant, ignoring duplicates.
func (b *base) AddRelevantPath(path string) {
	for _, p := range b.relevantPaths {
		if p == path {
			return
		}
	}
	b.relevantPaths = append(b.relevantPaths, path)
}
