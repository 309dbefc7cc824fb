// Package fonts analyzes TrueType/OpenType font files and renders the
// specimen images (icons and sample "screenshots") for font components.
package fonts

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/image/font/sfnt"
)

// fallbackSampleText is shown when no language-specific sample exists.
const fallbackSampleText = "Lorem ipsum dolor sit amet, consetetur sadipscing elitr."

// symbolsSampleText and symbolsIconText are used for symbol-only fonts
// that cannot display regular letters.
const (
	symbolsSampleText = "☃❤✓☀★☂♞☯☢∞❄♫↺"
	symbolsIconText   = "☃❤"
)

// englishPangrams are the sample sentences for Latin fonts. The selection
// per font is pseudo-random but stable, so rebuilding a package keeps its
// specimen images unchanged.
var englishPangrams = []string{
	"The quick brown fox jumps over the lazy dog.",
	"Sphinx of black quartz, judge my vow.",
	"Pack my box with five dozen liquor jugs.",
	"Jackdaws love my big sphinx of quartz.",
	"The five boxing wizards jump quickly.",
	"How vexingly quick daft zebras jump!",
	"Quick wafting zephyrs vex bold Jim.",
	"Waltz, bad nymph, for quick jigs vex.",
}

// iconTexts maps a language to the short glyph sample drawn on icons.
var iconTexts = map[string]string{
	"en": "Aa", "ar": "أب", "as": "অআই", "bn": "অআই", "be": "Аа",
	"bg": "Аа", "cs": "Aa", "da": "Aa", "de": "Aa", "es": "Aa",
	"fr": "Aa", "gu": "અબક", "hi": "अआइ", "he": "אב", "it": "Aa",
	"kn": "ಅಆಇ", "ml": "ആഇ", "ne": "अआइ", "nl": "Aa", "or": "ଅଆଇ",
	"pa": "ਅਆਇ", "pl": "ĄĘ", "pt": "Aa", "ru": "Аа", "sv": "Åäö",
	"ta": "அஆஇ", "te": "అఆఇ", "ua": "Аа", "und-zsye": "😀", "zh-tw": "漢",
}

// Font is a single parsed font face.
type Font struct {
	data     []byte
	basename string
	sf       *sfnt.Font

	family      string
	style       string
	fullname    string
	description string
	homepage    string

	id string

	languages     map[string]struct{}
	preferredLang string

	sampleText     string
	sampleIconText string
}

// NewFont parses a TTF or OTF font from memory. The file basename is kept
// as a fallback identifier for fonts with broken name tables.
func NewFont(data []byte, basename string) (*Font, error) {
	sf, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("unable to load font face: %w", err)
	}

	f := &Font{
		data:     data,
		basename: basename,
		sf:       sf,
		// claimed language coverage is rarely present, English is the
		// safe assumption
		languages: map[string]struct{}{"en": {}},
	}
	f.readNameTable()
	return f, nil
}

// Data returns the raw font file bytes.
func (f *Font) Data() []byte { return f.data }

// readNameTable extracts the interesting entries of the sfnt name table.
func (f *Font) readNameTable() {
	var buf sfnt.Buffer
	get := func(id sfnt.NameID) string {
		s, err := f.sf.Name(&buf, id)
		if err != nil {
			return ""
		}
		return strings.TrimSpace(s)
	}

	f.family = get(sfnt.NameIDFamily)
	f.style = get(sfnt.NameIDSubfamily)
	f.fullname = get(sfnt.NameIDFull)
	f.description = get(sfnt.NameIDDescription)
	f.homepage = get(sfnt.NameIDDesignerURL)
	if f.homepage == "" {
		f.homepage = get(sfnt.NameIDVendorURL)
	}

	if sample := get(sfnt.NameIDSampleText); sample != "" {
		f.sampleIconText = truncateRunes(sample, 3)
	}
}

// Family returns the font family name.
func (f *Font) Family() string { return f.family }

// Style returns the font style (subfamily) name.
func (f *Font) Style() string { return f.style }

// Fullname returns the full font name, falling back to "family style".
func (f *Font) Fullname() string {
	if f.fullname != "" {
		return f.fullname
	}
	return strings.TrimSpace(f.family + " " + f.style)
}

// Description returns the description from the font metadata, if any.
func (f *Font) Description() string { return f.description }

// Homepage returns the designer or vendor URL from the font metadata.
func (f *Font) Homepage() string { return f.homepage }

// ID returns a stable identifier built from family and style,
// e.g. "notosans-regular". Fonts without usable names are identified by
// their file basename.
func (f *Font) ID() string {
	if f.family == "" || f.style == "" {
		return f.basename
	}
	if f.id == "" {
		strip := func(s string) string {
			s = strings.ToLower(s)
			s = strings.ReplaceAll(s, " ", "")
			return strings.TrimSpace(s)
		}
		f.id = strip(f.family) + "-" + strip(f.style)
	}
	return f.id
}

// Languages returns the sorted list of languages this font claims to
// support.
func (f *Font) Languages() []string {
	out := make([]string, 0, len(f.languages))
	for lang := range f.languages {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}

// AddLanguage adds a language to the supported set.
func (f *Font) AddLanguage(lang string) {
	if lang != "" {
		f.languages[lang] = struct{}{}
	}
}

// PreferredLanguage returns the language specimen texts should use.
func (f *Font) PreferredLanguage() string { return f.preferredLang }

// SetPreferredLanguage sets the language specimen texts should use.
func (f *Font) SetPreferredLanguage(lang string) { f.preferredLang = lang }

// CanRender reports whether the font has a glyph for the rune.
func (f *Font) CanRender(r rune) bool {
	var buf sfnt.Buffer
	idx, err := f.sf.GlyphIndex(&buf, r)
	return err == nil && idx != 0
}

// FindPangram returns a sample sentence for a language. For English a
// stable pseudo-random pangram is chosen per font family, so all styles
// of one family share the same sentence. Other languages have no sample
// sentence and return "".
func (f *Font) FindPangram(lang, randID string) string {
	if lang != "en" {
		return ""
	}
	if randID == "" {
		randID = f.family
		if randID == "" {
			randID = f.basename
		}
		if randID == "" {
			randID = f.ID()
		}
	}
	h := fnv.New32a()
	h.Write([]byte(randID))
	return englishPangrams[h.Sum32()%uint32(len(englishPangrams))]
}

// SampleText returns the long specimen sentence, determining it on first
// use.
func (f *Font) SampleText() string {
	if f.sampleText == "" {
		f.determineSampleTexts()
	}
	return f.sampleText
}

// SetSampleText overrides the specimen sentence.
func (f *Font) SetSampleText(text string) { f.sampleText = text }

// SampleIconText returns the short glyph sample drawn on icons.
func (f *Font) SampleIconText() string {
	if f.sampleIconText == "" {
		f.determineSampleTexts()
	}
	return f.sampleIconText
}

// SetSampleIconText overrides the icon glyph sample. Values longer than
// three characters are rejected.
func (f *Font) SetSampleIconText(text string) {
	if utf8.RuneCountInString(text) > 3 {
		return
	}
	f.sampleIconText = text
}

func (f *Font) setFallbackSamplesIfNeeded() {
	if f.sampleText == "" {
		f.sampleText = fallbackSampleText
	}
	if f.sampleIconText == "" {
		if utf8.RuneCountInString(f.sampleText) > 3 {
			f.sampleIconText = truncateRunes(f.sampleText, 3)
		} else {
			f.sampleIconText = "Aa"
		}
	}
}

// determineSampleTexts picks specimen texts for the font's languages and
// verifies the font can actually display them, falling back to glyphs
// sampled from the font itself for symbol and exotic script fonts.
func (f *Font) determineSampleTexts() {
	if f.sampleText != "" {
		f.setFallbackSamplesIfNeeded()
		return
	}

	// prefer English even if it is not alphabetically first
	if _, ok := f.languages["en"]; ok {
		f.preferredLang = "en"
	}

	langs := f.Languages()
	if f.preferredLang != "" {
		langs = append([]string{f.preferredLang}, langs...)
	}

	for _, lang := range langs {
		text := f.FindPangram(lang, "")
		if text == "" {
			continue
		}
		f.sampleText = text
		f.sampleIconText = iconTexts[lang]
		break
	}
	f.setFallbackSamplesIfNeeded()

	// done if the picked glyphs actually exist in this font
	first, _ := utf8.DecodeRuneInString(f.sampleIconText)
	if f.CanRender(first) {
		return
	}

	if f.CanRender('☃') {
		// likely a symbols-only font
		f.sampleText = symbolsSampleText
		f.sampleIconText = symbolsIconText
		return
	}

	// sample whatever displayable glyphs the font has
	var sb strings.Builder
	count := 0
	for r := rune(0x21); r <= 0x2FFFF && count < 24; r++ {
		if !unicode.IsGraphic(r) || unicode.IsPunct(r) {
			continue
		}
		if !f.CanRender(r) {
			continue
		}
		sb.WriteRune(r)
		count++
	}
	f.sampleText = strings.TrimSpace(sb.String())
	f.sampleIconText = ""
	f.setFallbackSamplesIfNeeded()
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return strings.TrimSpace(string(runes[:n]))
}
