package result

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/appstream-tools/compose/pkg/appstream"
)

// BuildGlobalID builds a global component ID from a component-id and a
// checksum generated from the component's combined metadata.
//
// The global ID uniquely identifies one metadata revision of a component
// and doubles as its media directory path. An empty checksum yields the
// special "last" revision.
func BuildGlobalID(componentID, checksum string) (string, error) {
	if componentID == "" {
		return "", fmt.Errorf("can not build global id for empty component-id")
	}
	if checksum == "" {
		checksum = "last"
	}
	if len(componentID) <= 2 {
		return "", fmt.Errorf("component-id %q is too short for a global id", componentID)
	}

	// reverse-domain-name ids split on their domain, everything else uses
	// the generic two-level prefix splitter
	parts := strings.SplitN(componentID, ".", 3)
	if len(parts) == 3 && appstream.IsTLD(parts[0]) {
		return path.Join(
			strings.ToLower(parts[0]),
			strings.ToLower(parts[1]),
			parts[2],
			checksum), nil
	}

	cidLow := strings.ToLower(componentID)
	return path.Join(cidLow[:1], cidLow[:2], cidLow, checksum), nil
}

// FilenameFromURL derives a local filename for storing a downloaded file.
// Query and fragment parts are dropped. URLs without any usable basename
// get a random token instead.
func FilenameFromURL(rawURL string) string {
	if rawURL == "" {
		return ""
	}

	// only the path component carries the filename, a bare host must not
	// be mistaken for one
	fpath := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		fpath = u.Path
	} else {
		if i := strings.IndexByte(fpath, '?'); i >= 0 {
			fpath = fpath[:i]
		}
		if i := strings.IndexByte(fpath, '#'); i >= 0 {
			fpath = fpath[:i]
		}
	}
	if unescaped, err := url.PathUnescape(fpath); err == nil {
		fpath = unescaped
	}

	base := path.Base(fpath)
	if base == "." || base == "/" || base == "" {
		return uuid.NewString()[:8]
	}
	return base
}
