package appstream

import (
	"bufio"
	"fmt"
	"strings"
	"unicode/utf8"
)

// DesktopIssue is a problem found while reading a desktop-entry file.
// The compose layer converts these into hints against the component.
type DesktopIssue struct {
	Tag  string
	Hint string // extra detail, e.g. the offending key or value
}

// categories that carry no meaning in catalog metadata
var filteredCategories = map[string]bool{
	"GTK":         true,
	"Qt":          true,
	"GNOME":       true,
	"KDE":         true,
	"GUI":         true,
	"Application": true,
}

// registered freedesktop menu main and additional categories, the subset
// relevant for validation
var knownCategories = map[string]bool{
	"AudioVideo": true, "Audio": true, "Video": true, "Development": true,
	"Education": true, "Game": true, "Graphics": true, "Network": true,
	"Office": true, "Science": true, "Settings": true, "System": true,
	"Utility": true, "Building": true, "Debugger": true, "IDE": true,
	"Documentation": true, "Electronics": true, "Engineering": true,
	"FileTools": true, "FileManager": true, "TerminalEmulator": true,
	"Filesystem": true, "Monitor": true, "Security": true, "Accessibility": true,
	"Calculator": true, "Clock": true, "TextEditor": true, "TextTools": true,
	"Viewer": true, "WebBrowser": true, "WebDevelopment": true, "P2P": true,
	"Email": true, "Chat": true, "InstantMessaging": true, "Telephony": true,
	"Player": true, "Recorder": true, "Music": true, "Midi": true, "Mixer": true,
	"Photography": true, "Publishing": true, "RasterGraphics": true,
	"VectorGraphics": true, "2DGraphics": true, "3DGraphics": true,
	"Scanning": true, "OCR": true, "Printing": true, "Math": true,
	"NumericalAnalysis": true, "Astronomy": true, "Biology": true,
	"Chemistry": true, "Physics": true, "Geography": true, "Geology": true,
	"Geoscience": true, "MedicalSoftware": true, "Sports": true,
	"ActionGame": true, "AdventureGame": true, "ArcadeGame": true,
	"BoardGame": true, "BlocksGame": true, "CardGame": true, "KidsGame": true,
	"LogicGame": true, "RolePlaying": true, "Shooter": true, "Simulation": true,
	"SportsGame": true, "StrategyGame": true, "Amusement": true,
	"Archiving": true, "Compression": true, "Database": true,
	"Dictionary": true, "DiscBurning": true, "Emulator": true, "Feed": true,
	"FlowChart": true, "GUIDesigner": true, "HamRadio": true,
	"HardwareSettings": true, "ImageProcessing": true, "Languages": true,
	"Literature": true, "Maps": true, "News": true, "PackageManager": true,
	"ParallelComputing": true, "Presentation": true, "Profiling": true,
	"ProjectManagement": true, "RemoteAccess": true, "RevisionControl": true,
	"Robots": true, "Spreadsheet": true, "TV": true, "Translation": true,
	"WordProcessor": true, "ConsoleOnly": true, "DesktopSettings": true,
	"Electricity": true, "Construction": true, "ArtificialIntelligence": true,
	"ComputerScience": true, "DataVisualization": true, "Economy": true,
	"Art": true, "Humanities": true, "History": true, "Spirituality": true,
}

// IsKnownCategory reports whether the name is a registered menu category.
func IsKnownCategory(name string) bool { return knownCategories[name] }

// DesktopEntry is the parsed content of one .desktop file.
type DesktopEntry struct {
	// Ignore is set when the entry must not produce a visible component
	// on its own (NoDisplay, Hidden, OnlyShowIn or a settings category).
	// Data is still merged into an existing metainfo component.
	Ignore bool

	// Skip is set for entries that are no applications at all or opted
	// out via X-AppStream-Ignore. Nothing is synthesized for them.
	Skip bool

	Issues []DesktopIssue
}

// ParseDesktopEntryData parses desktop-entry data and merges it into cpt.
//
// The component id must be set to the desktop file's basename beforehand.
// Fields already present on the component (from a metainfo file) win over
// desktop-entry values; localized Name and Comment values fill in locales
// the metainfo lacks.
func ParseDesktopEntryData(cpt *Component, data []byte) (*DesktopEntry, error) {
	if cpt.ID == "" {
		return nil, fmt.Errorf("unable to determine component-id for desktop-entry data")
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("desktop-entry data for %q is empty", cpt.ID)
	}

	de := &DesktopEntry{}
	kv, err := parseKeyFile(data)
	if err != nil {
		return nil, err
	}
	if kv == nil {
		return nil, fmt.Errorf("data in %q does not contain a valid Desktop Entry", cpt.ID)
	}

	if !strings.EqualFold(kv.get("Type"), "application") {
		de.Skip = true
		return de, nil
	}
	if strings.EqualFold(kv.get("X-AppStream-Ignore"), "true") {
		de.Skip = true
		return de, nil
	}
	if strings.EqualFold(kv.get("NoDisplay"), "true") {
		de.Ignore = true
	}
	if strings.EqualFold(kv.get("Hidden"), "true") {
		de.Ignore = true
		de.addIssue("desktop-entry-hidden-set", "")
	}
	if v, ok := kv.lookup("OnlyShowIn"); ok {
		if strings.TrimSpace(strings.TrimSuffix(v, ";")) == "" {
			de.addIssue("desktop-entry-empty-onlyshowin", "")
		}
		// desktop-exclusive entries are usually control center modules
		de.Ignore = true
	}

	cpt.Kind = KindDesktopApp

	// strip the .desktop suffix for reverse-domain-name ids
	if parts := strings.SplitN(cpt.ID, ".", 3); len(parts) == 3 &&
		IsTLD(parts[0]) && strings.HasSuffix(cpt.ID, ".desktop") {
		cpt.ID = strings.TrimSuffix(cpt.ID, ".desktop")
	}

	hadCategories := len(cpt.Categories) > 0
	hadMediaTypes := len(cpt.Provides.MediaTypes) > 0

	for _, entry := range kv.entries {
		key, locale := splitLocaleKey(entry.key)
		if key == "Type" || locale == "" {
			continue
		}
		val := sanitizeDesktopValue(de, entry.key, entry.value)
		if val == "" {
			continue
		}

		switch {
		case key == "Name":
			// metainfo wins per locale, desktop entries fill the gaps
			if _, ok := cpt.Names[orC(locale)]; ok {
				continue
			}
			checkQuoted(de, entry.key, val)
			cpt.SetName(locale, val)
		case key == "Comment":
			if _, ok := cpt.Summaries[orC(locale)]; ok {
				continue
			}
			checkQuoted(de, entry.key, val)
			cpt.SetSummary(locale, val)
		case key == "Categories":
			if hadCategories {
				continue
			}
			addFilteredCategories(cpt, de, splitList(val))
		case key == "Keywords":
			if kws := splitList(val); len(kws) > 0 {
				cpt.Keywords[orC(locale)] = kws
			}
		case key == "MimeType":
			if hadMediaTypes {
				continue
			}
			cpt.Provides.MediaTypes = append(cpt.Provides.MediaTypes, splitList(val)...)
		case key == "Icon":
			cpt.Icons = append(cpt.Icons, desktopIcon(val))
		}
	}

	// the desktop file itself is launchable, unless metainfo already said so
	if len(cpt.DesktopIDs()) == 0 {
		base := cpt.SourceFile
		if i := strings.LastIndex(base, "/"); i >= 0 {
			base = base[i+1:]
		}
		if base == "" {
			base = cpt.ID
			if !strings.HasSuffix(base, ".desktop") {
				base += ".desktop"
			}
		}
		cpt.AddLaunchable(LaunchableDesktopID, base)
	}

	return de, nil
}

func (de *DesktopEntry) addIssue(tag, hint string) {
	de.Issues = append(de.Issues, DesktopIssue{Tag: tag, Hint: hint})
}

// desktopIcon builds an icon from a desktop-entry Icon value. Absolute paths
// become local icons, anything else is treated as a stock icon name.
func desktopIcon(val string) Icon {
	if strings.HasPrefix(val, "/") {
		return Icon{Kind: IconKindLocal, Name: val, Scale: 1}
	}
	// some entries suffix stock names with an image extension
	for _, ext := range []string{".png", ".xpm", ".svg", ".svgz"} {
		if strings.HasSuffix(val, ext) {
			val = strings.TrimSuffix(val, ext)
			break
		}
	}
	return Icon{Kind: IconKindStock, Name: val, Scale: 1}
}

func addFilteredCategories(cpt *Component, de *DesktopEntry, cats []string) {
	for _, cat := range cats {
		if cat == "" || filteredCategories[cat] {
			continue
		}
		if strings.HasPrefix(cat, "X-") || strings.HasPrefix(cat, "x-") {
			continue
		}
		if !IsKnownCategory(cat) {
			de.addIssue("desktop-entry-category-invalid", cat)
			continue
		}
		cpt.Categories = append(cpt.Categories, cat)
	}
}

// checkQuoted flags values wrapped in quotes, a common .desktop authoring bug.
func checkQuoted(de *DesktopEntry, key, val string) {
	if (strings.HasPrefix(val, `"`) && strings.HasSuffix(val, `"`)) ||
		(strings.HasPrefix(val, "'") && strings.HasSuffix(val, "'")) {
		de.addIssue("desktop-entry-value-quoted", fmt.Sprintf("%s: %s", key, val))
	}
}

// sanitizeDesktopValue replaces control characters and invalid UTF-8 with a
// replacement character so the breakage is visible downstream.
func sanitizeDesktopValue(de *DesktopEntry, key, val string) string {
	var sb strings.Builder
	invalid := false
	for _, r := range val {
		if r == utf8.RuneError || (r < 0x20 && r != '\t') {
			sb.WriteRune('�')
			invalid = true
			continue
		}
		sb.WriteRune(r)
	}
	if invalid {
		de.addIssue("desktop-entry-value-invalid-chars", key)
	}
	return strings.TrimSpace(sb.String())
}

// splitLocaleKey splits "Name[de_DE]" into ("Name", "de_DE"); a key without
// a locale suffix belongs to the "C" locale. A malformed bracket yields an
// empty locale, which callers skip.
func splitLocaleKey(key string) (string, string) {
	i := strings.IndexByte(key, '[')
	if i < 0 {
		return key, "C"
	}
	if !strings.HasSuffix(key, "]") {
		return key, ""
	}
	locale := key[i+1 : len(key)-1]
	if locale == "" {
		return key, ""
	}
	return key[:i], localeBase(locale)
}

// splitList splits a semicolon list, dropping empty items.
func splitList(val string) []string {
	var out []string
	for _, item := range strings.Split(val, ";") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

type keyFileEntry struct {
	key   string
	value string
}

// keyFile is the [Desktop Entry] group of a key file, keys in file order.
type keyFile struct {
	entries []keyFileEntry
	index   map[string]int
}

func (kf *keyFile) get(key string) string {
	v, _ := kf.lookup(key)
	return v
}

func (kf *keyFile) lookup(key string) (string, bool) {
	if i, ok := kf.index[key]; ok {
		return kf.entries[i].value, true
	}
	return "", false
}

// parseKeyFile reads the "[Desktop Entry]" group of a freedesktop key file.
// It returns nil (without error) when the group is absent.
func parseKeyFile(data []byte) (*keyFile, error) {
	var kf *keyFile
	inGroup := false

	sc := bufio.NewScanner(strings.NewReader(string(data)))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") {
			inGroup = strings.TrimSpace(line) == "[Desktop Entry]"
			if inGroup && kf == nil {
				kf = &keyFile{index: make(map[string]int)}
			}
			continue
		}
		if !inGroup {
			continue
		}
		eq := strings.IndexByte(line, '=')
		if eq < 0 {
			return nil, fmt.Errorf("invalid key file line: %q", line)
		}
		key := strings.TrimSpace(line[:eq])
		val := strings.TrimSpace(line[eq+1:])
		if key == "" {
			return nil, fmt.Errorf("invalid key file line: %q", line)
		}
		if _, dup := kf.index[key]; dup {
			continue
		}
		kf.index[key] = len(kf.entries)
		kf.entries = append(kf.entries, keyFileEntry{key: key, value: unescapeKeyFileValue(val)})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return kf, nil
}

func unescapeKeyFileValue(val string) string {
	if !strings.ContainsRune(val, '\\') {
		return val
	}
	var sb strings.Builder
	for i := 0; i < len(val); i++ {
		c := val[i]
		if c != '\\' || i+1 >= len(val) {
			sb.WriteByte(c)
			continue
		}
		i++
		switch val[i] {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case 's':
			sb.WriteByte(' ')
		case ';':
			sb.WriteByte(';')
		case '\\':
			sb.WriteByte('\\')
		default:
			sb.WriteByte('\\')
			sb.WriteByte(val[i])
		}
	}
	return sb.String()
}
