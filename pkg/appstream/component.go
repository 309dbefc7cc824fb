// Package appstream implements the AppStream component data model, the
// MetaInfo XML and desktop-entry parsers, and the catalog output writers
// (collection XML and DEP-11 YAML).
//
// The model is intentionally value-based: a Component is a plain struct that
// parsers fill in and the compose pipeline enriches. Localized values are
// stored as locale → text maps with "C" as the untranslated locale.
package appstream

import (
	"sort"
	"strings"
)

// Kind is the type of a software component.
type Kind int

// Component kinds.
const (
	KindUnknown Kind = iota
	KindGeneric
	KindDesktopApp
	KindConsoleApp
	KindWebApp
	KindAddon
	KindFont
	KindCodec
	KindInputMethod
	KindOperatingSystem
	KindRuntime
	KindService
	KindIconTheme
	KindLocalization
	KindDriver
	KindFirmware
)

var kindNames = map[Kind]string{
	KindGeneric:         "generic",
	KindDesktopApp:      "desktop-application",
	KindConsoleApp:      "console-application",
	KindWebApp:          "web-application",
	KindAddon:           "addon",
	KindFont:            "font",
	KindCodec:           "codec",
	KindInputMethod:     "inputmethod",
	KindOperatingSystem: "operating-system",
	KindRuntime:         "runtime",
	KindService:         "service",
	KindIconTheme:       "icon-theme",
	KindLocalization:    "localization",
	KindDriver:          "driver",
	KindFirmware:        "firmware",
}

// String returns the XML name of the component kind.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// ParseKind converts a component type string to a Kind.
// The legacy "desktop" type maps to desktop-application.
func ParseKind(s string) Kind {
	switch s {
	case "", "generic":
		return KindGeneric
	case "desktop", "desktop-app", "desktop-application":
		return KindDesktopApp
	case "console-application":
		return KindConsoleApp
	case "web-application":
		return KindWebApp
	case "addon":
		return KindAddon
	case "font":
		return KindFont
	case "codec":
		return KindCodec
	case "inputmethod", "input-method":
		return KindInputMethod
	case "operating-system":
		return KindOperatingSystem
	case "runtime":
		return KindRuntime
	case "service":
		return KindService
	case "icon-theme":
		return KindIconTheme
	case "localization":
		return KindLocalization
	case "driver":
		return KindDriver
	case "firmware":
		return KindFirmware
	default:
		return KindUnknown
	}
}

// IconKind describes where an icon comes from.
type IconKind int

// Icon kinds.
const (
	IconKindUnknown IconKind = iota
	IconKindStock
	IconKindCached
	IconKindLocal
	IconKindRemote
)

// String returns the XML name of the icon kind.
func (k IconKind) String() string {
	switch k {
	case IconKindStock:
		return "stock"
	case IconKindCached:
		return "cached"
	case IconKindLocal:
		return "local"
	case IconKindRemote:
		return "remote"
	default:
		return "unknown"
	}
}

// ParseIconKind converts an icon type string to an IconKind.
func ParseIconKind(s string) IconKind {
	switch s {
	case "stock":
		return IconKindStock
	case "cached":
		return IconKindCached
	case "local":
		return IconKindLocal
	case "remote", "url":
		return IconKindRemote
	default:
		return IconKindUnknown
	}
}

// Icon is a single icon reference of a component.
type Icon struct {
	Kind   IconKind
	Name   string // stock name, cached basename or local path
	URL    string // for remote icons
	Width  int
	Height int
	Scale  int
}

// ImageKind distinguishes source screenshots from generated thumbnails.
type ImageKind int

// Image kinds.
const (
	ImageKindUnknown ImageKind = iota
	ImageKindSource
	ImageKindThumbnail
)

// String returns the XML name of the image kind.
func (k ImageKind) String() string {
	switch k {
	case ImageKindSource:
		return "source"
	case ImageKindThumbnail:
		return "thumbnail"
	default:
		return "unknown"
	}
}

// Image is a screenshot image at one resolution.
type Image struct {
	Kind   ImageKind
	URL    string
	Width  int
	Height int
	Locale string
}

// VideoCodec identifies a permitted screencast video codec.
type VideoCodec int

// Video codecs.
const (
	VideoCodecUnknown VideoCodec = iota
	VideoCodecVP9
	VideoCodecAV1
)

// String returns the XML name of the video codec.
func (c VideoCodec) String() string {
	switch c {
	case VideoCodecVP9:
		return "vp9"
	case VideoCodecAV1:
		return "av1"
	default:
		return "unknown"
	}
}

// VideoContainer identifies a permitted screencast container format.
type VideoContainer int

// Video containers.
const (
	VideoContainerUnknown VideoContainer = iota
	VideoContainerWebM
	VideoContainerMKV
)

// String returns the XML name of the video container.
func (c VideoContainer) String() string {
	switch c {
	case VideoContainerWebM:
		return "webm"
	case VideoContainerMKV:
		return "mkv"
	default:
		return "unknown"
	}
}

// Video is a screencast video of a screenshot.
type Video struct {
	URL       string
	Locale    string
	Codec     VideoCodec
	Container VideoContainer
	Width     int
	Height    int
}

// Screenshot holds the media (images or videos) demonstrating a component.
type Screenshot struct {
	Default  bool
	Captions map[string]string // locale → caption
	Images   []Image
	Videos   []Video
}

// IsVideo reports whether this screenshot is a screencast.
func (s *Screenshot) IsVideo() bool { return len(s.Videos) > 0 && len(s.Images) == 0 }

// TranslationKind is the translation system a domain belongs to.
type TranslationKind int

// Translation kinds.
const (
	TranslationKindUnknown TranslationKind = iota
	TranslationKindGettext
	TranslationKindQt
)

// ParseTranslationKind converts a translation type string to its kind.
func ParseTranslationKind(s string) TranslationKind {
	switch s {
	case "gettext":
		return TranslationKindGettext
	case "qt":
		return TranslationKindQt
	default:
		return TranslationKindUnknown
	}
}

// String returns the XML name of the translation kind.
func (k TranslationKind) String() string {
	switch k {
	case TranslationKindGettext:
		return "gettext"
	case TranslationKindQt:
		return "qt"
	default:
		return "unknown"
	}
}

// Translation declares a translation domain of a component.
type Translation struct {
	Kind         TranslationKind
	ID           string
	SourceLocale string // defaults to "en" when unset
}

// Language records translation completeness for one locale.
type Language struct {
	Locale     string
	Percentage int
}

// ReleasesKind describes where release information lives.
type ReleasesKind int

// Releases kinds.
const (
	ReleasesKindEmbedded ReleasesKind = iota
	ReleasesKindExternal
)

// Release is one release entry of a component.
type Release struct {
	Version     string
	Type        string // stable, development
	Date        string
	Timestamp   int64
	Description string
}

// Launchable kinds used in launchable tags.
const (
	LaunchableDesktopID = "desktop-id"
	LaunchableService   = "service"
	LaunchableURL       = "url"
)

// Provides lists the public interfaces a component ships.
type Provides struct {
	MediaTypes []string
	Binaries   []string
	Fonts      []string
	Libraries  []string
	DBus       []string
	Modaliases []string
}

// IsEmpty reports whether nothing is provided.
func (p *Provides) IsEmpty() bool {
	return len(p.MediaTypes) == 0 && len(p.Binaries) == 0 && len(p.Fonts) == 0 &&
		len(p.Libraries) == 0 && len(p.DBus) == 0 && len(p.Modaliases) == 0
}

// Component is a single AppStream software component.
type Component struct {
	ID   string
	Kind Kind

	// Localized values, locale → text. "C" is the untranslated locale.
	Names        map[string]string
	Summaries    map[string]string
	Descriptions map[string]string // value is description body XML
	Keywords     map[string][]string

	DeveloperName   string
	MetadataLicense string
	ProjectLicense  string

	Categories  []string
	Extends     []string
	Icons       []Icon
	Launchables map[string][]string // launchable kind → ids
	URLs        map[string]string   // url type → url
	Provides    Provides

	Screenshots  []Screenshot
	Translations []Translation
	Languages    []Language

	ReleasesKind ReleasesKind
	ReleasesURL  string
	Releases     []Release

	Priority int
	Custom   map[string]string

	// SourceFile is the path inside the unit this component was read from.
	// It is bookkeeping only and never serialized.
	SourceFile string
}

// NewComponent creates an empty component with initialized maps.
func NewComponent() *Component {
	return &Component{
		Names:        make(map[string]string),
		Summaries:    make(map[string]string),
		Descriptions: make(map[string]string),
		Keywords:     make(map[string][]string),
		Launchables:  make(map[string][]string),
		URLs:         make(map[string]string),
		Custom:       make(map[string]string),
	}
}

// Name returns the untranslated component name.
func (c *Component) Name() string { return c.Names["C"] }

// Summary returns the untranslated summary.
func (c *Component) Summary() string { return c.Summaries["C"] }

// Description returns the untranslated description body.
func (c *Component) Description() string { return c.Descriptions["C"] }

// SetName sets the name for a locale; empty locale means "C".
func (c *Component) SetName(locale, value string) {
	c.Names[orC(locale)] = value
}

// SetSummary sets the summary for a locale; empty locale means "C".
func (c *Component) SetSummary(locale, value string) {
	c.Summaries[orC(locale)] = value
}

// SetDescription sets the description body for a locale.
func (c *Component) SetDescription(locale, value string) {
	c.Descriptions[orC(locale)] = value
}

// AddLaunchable registers a launchable entry of the given kind.
func (c *Component) AddLaunchable(kind, value string) {
	c.Launchables[kind] = append(c.Launchables[kind], value)
}

// DesktopIDs returns the desktop-id launchables of the component.
func (c *Component) DesktopIDs() []string {
	return c.Launchables[LaunchableDesktopID]
}

// AddLanguage records translation completeness for a locale, deduplicating
// by locale (the higher percentage wins).
func (c *Component) AddLanguage(locale string, percentage int) {
	for i := range c.Languages {
		if c.Languages[i].Locale == locale {
			if percentage > c.Languages[i].Percentage {
				c.Languages[i].Percentage = percentage
			}
			return
		}
	}
	c.Languages = append(c.Languages, Language{Locale: locale, Percentage: percentage})
}

// SortLanguages orders the language list by locale for stable output.
func (c *Component) SortLanguages() {
	sort.Slice(c.Languages, func(i, j int) bool {
		return c.Languages[i].Locale < c.Languages[j].Locale
	})
}

// StockIcon returns the first stock icon, if any.
func (c *Component) StockIcon() (Icon, bool) {
	for _, ic := range c.Icons {
		if ic.Kind == IconKindStock {
			return ic, true
		}
	}
	return Icon{}, false
}

// HasIconOfKind reports whether an icon of the given kind exists.
func (c *Component) HasIconOfKind(kind IconKind) bool {
	for _, ic := range c.Icons {
		if ic.Kind == kind {
			return true
		}
	}
	return false
}

// IsGUIApp reports whether this component is expected to carry an icon and
// a desktop entry.
func (c *Component) IsGUIApp() bool {
	return c.Kind == KindDesktopApp
}

// MaxReleaseInfoCount is the maximum amount of releases kept in output data.
const MaxReleaseInfoCount = 4

// TruncateReleases prunes old releases so only the newest few remain.
// Operating systems keep their full release history.
func (c *Component) TruncateReleases() {
	if c.Kind == KindOperatingSystem {
		return
	}
	if len(c.Releases) > MaxReleaseInfoCount {
		c.Releases = c.Releases[:MaxReleaseInfoCount]
	}
}

func orC(locale string) string {
	if locale == "" {
		return "C"
	}
	return locale
}

// localeBase strips an encoding/modifier suffix from a locale name,
// e.g. "de_DE.UTF-8" → "de_DE".
func localeBase(locale string) string {
	if i := strings.IndexAny(locale, ".@"); i >= 0 {
		return locale[:i]
	}
	return locale
}
