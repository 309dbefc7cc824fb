package compose

import (
	"runtime"
	"strings"

	"github.com/appstream-tools/compose/pkg/errors"
	"github.com/appstream-tools/compose/pkg/icons"
)

// Default values shared by the CLI and library consumers.
const (
	// DefaultPrefix is the installation prefix searched for metadata.
	DefaultPrefix = "/usr"

	// DefaultMinL10nPercentage is the completeness a locale must reach
	// before it is listed in the language table.
	DefaultMinL10nPercentage = 25

	// DefaultMaxScreenshotBytes caps downloaded screenshot media.
	DefaultMaxScreenshotBytes = 14 << 20
)

// Format constants for catalog output formats.
const (
	FormatXML  = "xml"
	FormatYAML = "yaml"
)

// ValidFormats is the set of supported catalog output formats.
var ValidFormats = map[string]bool{
	FormatXML:  true,
	FormatYAML: true,
}

// Settings contains all configuration for one compose run.
type Settings struct {
	// Prefix is the installation prefix inside the units, "/usr" by
	// default.
	Prefix string

	// Origin names the metadata source, e.g. a repository suite. It
	// becomes the catalog origin attribute and the output file name.
	Origin string

	// Output locations. DataDir receives the catalog, MediaDir the
	// exported icons and screenshots, HintsDir the hints report. Empty
	// directories disable the respective output.
	DataDir  string
	MediaDir string
	HintsDir string

	// MediaBaseURL is the public URL the media pool will be served
	// from. When set, cached-remote icons get remote references and the
	// catalog carries a media_baseurl attribute.
	MediaBaseURL string

	// Format selects the catalog serialization, "xml" or "yaml".
	Format string

	// IconPolicy decides which icon sizes are exported and how.
	// Nil selects the default policy.
	IconPolicy *icons.Policy

	// MinL10nPercentage gates locales listed in the language table.
	MinL10nPercentage int

	// AllowedComponentIDs restricts processing to the listed ids.
	// Empty means all components are processed.
	AllowedComponentIDs []string

	// MaxScreenshotBytes caps downloaded screenshot media, 0 selects
	// the default.
	MaxScreenshotBytes int64

	// MaxThreads bounds the unit fan-out, 0 selects GOMAXPROCS.
	MaxThreads int

	// Feature toggles.
	NoNet               bool // never touch the network
	StoreScreenshots    bool // export screenshot media to MediaDir
	AllowScreencasts    bool // download and probe videos
	ProcessFonts        bool // render font specimens
	ProcessTranslations bool // compute translation status
}

// DefaultSettings returns settings with all defaults applied.
func DefaultSettings() Settings {
	return Settings{
		Prefix:              DefaultPrefix,
		Format:              FormatXML,
		MinL10nPercentage:   DefaultMinL10nPercentage,
		MaxScreenshotBytes:  DefaultMaxScreenshotBytes,
		StoreScreenshots:    true,
		AllowScreencasts:    true,
		ProcessFonts:        true,
		ProcessTranslations: true,
	}
}

// ValidateAndSetDefaults checks the settings and fills in defaults for
// unset values.
func (s *Settings) ValidateAndSetDefaults() error {
	if s.Prefix == "" {
		s.Prefix = DefaultPrefix
	}
	s.Prefix = strings.TrimSuffix(s.Prefix, "/")

	if s.Origin == "" {
		return errors.New(errors.ErrCodeInvalidInput, "no origin set for this compose run")
	}

	if s.Format == "" {
		s.Format = FormatXML
	}
	if !ValidFormats[s.Format] {
		return errors.New(errors.ErrCodeInvalidFormat, "unknown catalog format %q (valid: xml, yaml)", s.Format)
	}

	if s.MediaBaseURL != "" {
		if err := errors.ValidateURL(s.MediaBaseURL); err != nil {
			return err
		}
		s.MediaBaseURL = strings.TrimSuffix(s.MediaBaseURL, "/")
	}

	for _, cid := range s.AllowedComponentIDs {
		if err := errors.ValidateComponentID(cid); err != nil {
			return err
		}
	}

	if s.IconPolicy == nil {
		s.IconPolicy = icons.NewPolicy()
	}
	if s.MinL10nPercentage <= 0 {
		s.MinL10nPercentage = DefaultMinL10nPercentage
	}
	if s.MinL10nPercentage > 100 {
		s.MinL10nPercentage = 100
	}
	if s.MaxScreenshotBytes == 0 {
		s.MaxScreenshotBytes = DefaultMaxScreenshotBytes
	}
	if s.MaxThreads <= 0 {
		s.MaxThreads = runtime.GOMAXPROCS(0)
	}
	return nil
}

// componentAllowed reports whether the id passes the allow-list.
func (s *Settings) componentAllowed(cid string) bool {
	if len(s.AllowedComponentIDs) == 0 {
		return true
	}
	for _, allowed := range s.AllowedComponentIDs {
		if allowed == cid {
			return true
		}
	}
	return false
}
