// Package l10n extracts translation completeness from the locale files
// shipped in a unit.
//
// Components declaring translation domains get per-locale percentage data
// derived from Gettext .mo and Qt .qm catalogs found under the unit's
// prefix. Only the catalog headers and message tables are inspected, the
// translations themselves are never decoded.
package l10n

import (
	"encoding/binary"
	"fmt"
	"sort"
	"strings"

	"github.com/appstream-tools/compose/pkg/appstream"
	"github.com/appstream-tools/compose/pkg/result"
	"github.com/appstream-tools/compose/pkg/unit"
)

// localeEntry records the string count for one discovered locale file.
type localeEntry struct {
	locale   string
	nstrings uint32
}

type localeCtx struct {
	maxNStrings uint32
	entries     []localeEntry
}

func (c *localeCtx) add(locale string, nstrings uint32) {
	if nstrings > c.maxNStrings {
		c.maxNStrings = nstrings
	}
	c.entries = append(c.entries, localeEntry{locale: locale, nstrings: nstrings})
}

const (
	gettextMagic        = 0x950412de
	gettextMagicSwapped = 0xde120495
	gettextHeaderSize   = 28
)

// ParseGettextData reads the header of a Gettext .mo catalog and returns
// its string count. Both byte orders are accepted.
func ParseGettextData(data []byte) (uint32, error) {
	if len(data) < gettextHeaderSize {
		return 0, fmt.Errorf("gettext file is invalid")
	}

	var order binary.ByteOrder
	switch binary.LittleEndian.Uint32(data[0:4]) {
	case gettextMagic:
		order = binary.LittleEndian
	case gettextMagicSwapped:
		order = binary.BigEndian
	default:
		return 0, fmt.Errorf("gettext file is invalid")
	}
	return order.Uint32(data[8:12]), nil
}

var qmMagic = []byte{
	0x3c, 0xb8, 0x64, 0x18, 0xca, 0xef, 0x9c, 0x95,
	0xcd, 0x21, 0x1c, 0xbf, 0x60, 0xa1, 0xbd, 0xdd,
}

// Qt .qm section and tag identifiers, as far as counting needs them.
const (
	qmSectionMessages = 0x69

	qmTagEnd         = 0x1
	qmTagTranslation = 0x3
	qmTagObsolete1   = 0x5
	qmTagSourceText  = 0x6
	qmTagContext     = 0x7
	qmTagComment     = 0x8
)

// ParseQtData reads a Qt .qm catalog and counts its translated messages.
func ParseQtData(data []byte) (uint32, error) {
	if len(data) < len(qmMagic) || !strings.HasPrefix(string(data), string(qmMagic)) {
		return 0, fmt.Errorf("QM translation file is invalid")
	}

	var nstrings uint32
	m := uint32(len(qmMagic))
	dlen := uint32(len(data))

	for m < dlen {
		if dlen-m < 5 {
			break
		}
		section := data[m]
		m++
		sectionLen := binary.BigEndian.Uint32(data[m:])
		m += 4
		if sectionLen > dlen-m {
			return 0, fmt.Errorf("QM file is invalid, section too large")
		}
		if section == qmSectionMessages {
			nstrings += countQtMessages(data[m : m+sectionLen])
		}
		m += sectionLen
	}
	return nstrings, nil
}

func countQtMessages(data []byte) uint32 {
	var nstrings uint32
	m := uint32(0)
	dlen := uint32(len(data))

	for m < dlen {
		tag := data[m]
		m++
		switch tag {
		case qmTagEnd:
		case qmTagObsolete1:
			m += 4
		case qmTagTranslation, qmTagSourceText, qmTagContext, qmTagComment:
			if dlen-m < 4 {
				return nstrings
			}
			tagLen := binary.BigEndian.Uint32(data[m:])
			m += 4
			if tagLen < 0xffffffff {
				m += tagLen
			}
			if tag == qmTagTranslation {
				nstrings++
			}
		default:
			return nstrings
		}
	}
	return nstrings
}

// searchGettext finds <prefix>/share/locale*/LC_MESSAGES/<domain>.mo files
// for all gettext translation domains of a component.
func searchGettext(ctx *localeCtx, u unit.Unit, prefix string, translations []appstream.Translation) error {
	for _, tr := range translations {
		if tr.Kind != appstream.TranslationKindGettext && tr.Kind != appstream.TranslationKindUnknown {
			continue
		}
		fn := tr.ID + ".mo"
		for _, fname := range u.Contents() {
			locale, ok := matchLocaleDir(fname, prefix, fn)
			if !ok {
				continue
			}
			data, err := u.ReadData(fname)
			if err != nil {
				return err
			}
			nstrings, err := ParseGettextData(data)
			if err != nil {
				return fmt.Errorf("%w: %s", err, fname)
			}
			ctx.add(locale, nstrings)
		}
	}
	return nil
}

// searchQt finds Qt .qm catalogs. Plain domain ids are searched in the
// locale directories, ids with a slash address <prefix>/share/<hint>
// directly, covering both the <hint>_<locale>.qm and <hint>/<locale>.qm
// layouts.
func searchQt(ctx *localeCtx, u unit.Unit, prefix string, translations []appstream.Translation) error {
	for _, tr := range translations {
		if tr.Kind != appstream.TranslationKindQt && tr.Kind != appstream.TranslationKindUnknown {
			continue
		}
		if tr.ID == "" {
			continue
		}

		if !strings.Contains(tr.ID, "/") {
			fn := tr.ID + ".qm"
			for _, fname := range u.Contents() {
				if !strings.HasSuffix(fname, ".qm") {
					continue
				}
				locale, ok := matchLocaleDir(fname, prefix, fn)
				if !ok {
					continue
				}
				if err := parseQtFile(ctx, u, locale, fname); err != nil {
					return err
				}
			}
			continue
		}

		qmRoot := prefix + "/share/" + tr.ID
		for _, fname := range u.Contents() {
			if !strings.HasPrefix(fname, qmRoot) || !strings.HasSuffix(fname, ".qm") {
				continue
			}
			if len(fname) <= len(qmRoot)+1 {
				continue
			}
			locale := fname[len(qmRoot)+1:]
			if i := strings.IndexByte(locale, '.'); i >= 0 {
				locale = locale[:i]
			}
			if i := strings.LastIndexByte(locale, '/'); i >= 0 {
				locale = locale[i+1:]
			}
			if err := parseQtFile(ctx, u, locale, fname); err != nil {
				return err
			}
		}
	}
	return nil
}

func parseQtFile(ctx *localeCtx, u unit.Unit, locale, fname string) error {
	data, err := u.ReadData(fname)
	if err != nil {
		return err
	}
	nstrings, err := ParseQtData(data)
	if err != nil {
		return fmt.Errorf("%w: %s", err, fname)
	}
	ctx.add(locale, nstrings)
	return nil
}

// matchLocaleDir matches <prefix>/share/locale*/<locale>/LC_MESSAGES/<fn>
// and returns the locale path segment.
func matchLocaleDir(fname, prefix, fn string) (string, bool) {
	rel, ok := strings.CutPrefix(fname, prefix+"/")
	if !ok {
		return "", false
	}
	parts := strings.SplitN(rel, "/", 4)
	if len(parts) != 4 {
		return "", false
	}
	if parts[0] != "share" || !strings.HasPrefix(parts[1], "locale") {
		return "", false
	}
	if parts[3] != "LC_MESSAGES/"+fn {
		return "", false
	}
	return parts[2], true
}

// ProcessTranslationStatus computes language completeness for every valid
// component in the result that declares translation domains.
//
// Locales below minPercentage are dropped to keep catalog size reasonable.
// The source locale is always recorded at 100%. Translation declarations
// are consumed, the finished components carry language data only.
func ProcessTranslationStatus(res *result.Result, u unit.Unit, prefix string, minPercentage int) {
	for _, cpt := range res.Components() {
		if len(cpt.Translations) == 0 {
			continue
		}

		ctx := &localeCtx{}
		if err := searchQt(ctx, u, prefix, cpt.Translations); err != nil {
			res.AddHint(cpt, "translation-status-error", "msg", err.Error())
			continue
		}
		if err := searchGettext(ctx, u, prefix, cpt.Translations); err != nil {
			res.AddHint(cpt, "translation-status-error", "msg", err.Error())
			continue
		}

		sort.Slice(ctx.entries, func(i, j int) bool {
			return ctx.entries[i].locale < ctx.entries[j].locale
		})

		if ctx.maxNStrings > 0 {
			for _, e := range ctx.entries {
				pct := int(min(uint64(e.nstrings)*100/uint64(ctx.maxNStrings), 100))
				if pct < minPercentage {
					continue
				}
				cpt.AddLanguage(e.locale, pct)
			}
		}

		if len(ctx.entries) == 0 {
			res.AddHint(cpt, "translations-not-found")
		}

		// the source locale always exists in full
		for _, tr := range cpt.Translations {
			cpt.AddLanguage(tr.SourceLocale, 100)
		}
		cpt.SortLanguages()

		cpt.Translations = nil
	}
}
