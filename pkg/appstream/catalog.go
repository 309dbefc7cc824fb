package appstream

import (
	"compress/gzip"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strconv"
)

// FormatVersion is the AppStream catalog format version we emit.
const FormatVersion = "0.16"

// outLocalized renders a localized element with an xml:lang attribute.
type outLocalized struct {
	Lang  string `xml:"xml:lang,attr,omitempty"`
	Value string `xml:",chardata"`
}

type outDescription struct {
	Lang  string `xml:"xml:lang,attr,omitempty"`
	Inner string `xml:",innerxml"`
}

type outIcon struct {
	Type   string `xml:"type,attr"`
	Width  int    `xml:"width,attr,omitempty"`
	Height int    `xml:"height,attr,omitempty"`
	Scale  int    `xml:"scale,attr,omitempty"`
	Value  string `xml:",chardata"`
}

type outLaunchable struct {
	Type  string `xml:"type,attr"`
	Value string `xml:",chardata"`
}

type outURL struct {
	Type  string `xml:"type,attr"`
	Value string `xml:",chardata"`
}

type outImage struct {
	Type   string `xml:"type,attr"`
	Width  int    `xml:"width,attr,omitempty"`
	Height int    `xml:"height,attr,omitempty"`
	Lang   string `xml:"xml:lang,attr,omitempty"`
	Value  string `xml:",chardata"`
}

type outVideo struct {
	Codec     string `xml:"codec,attr,omitempty"`
	Container string `xml:"container,attr,omitempty"`
	Width     int    `xml:"width,attr,omitempty"`
	Height    int    `xml:"height,attr,omitempty"`
	Lang      string `xml:"xml:lang,attr,omitempty"`
	Value     string `xml:",chardata"`
}

type outScreenshot struct {
	Type     string         `xml:"type,attr,omitempty"`
	Captions []outLocalized `xml:"caption,omitempty"`
	Images   []outImage     `xml:"image,omitempty"`
	Videos   []outVideo     `xml:"video,omitempty"`
}

type outKeywords struct {
	Lang  string   `xml:"xml:lang,attr,omitempty"`
	Items []string `xml:"keyword"`
}

type outLanguage struct {
	Percentage int    `xml:"percentage,attr"`
	Value      string `xml:",chardata"`
}

type outProvides struct {
	MediaTypes []string `xml:"mediatype,omitempty"`
	Binaries   []string `xml:"binary,omitempty"`
	Fonts      []string `xml:"font,omitempty"`
	Libraries  []string `xml:"library,omitempty"`
	DBus       []string `xml:"dbus,omitempty"`
	Modaliases []string `xml:"modalias,omitempty"`
}

type outRelease struct {
	Version     string          `xml:"version,attr"`
	Type        string          `xml:"type,attr,omitempty"`
	Date        string          `xml:"date,attr,omitempty"`
	Timestamp   int64           `xml:"timestamp,attr,omitempty"`
	Description *outDescription `xml:"description,omitempty"`
}

type outCustomValue struct {
	Key   string `xml:"key,attr"`
	Value string `xml:",chardata"`
}

type outComponent struct {
	XMLName       xml.Name         `xml:"component"`
	Type          string           `xml:"type,attr"`
	Priority      string           `xml:"priority,attr,omitempty"`
	ID            string           `xml:"id"`
	Names         []outLocalized   `xml:"name"`
	Summaries     []outLocalized   `xml:"summary,omitempty"`
	DeveloperName string           `xml:"developer_name,omitempty"`
	Descriptions  []outDescription `xml:"description,omitempty"`
	ProjectLic    string           `xml:"project_license,omitempty"`
	Icons         []outIcon        `xml:"icon,omitempty"`
	Categories    []string         `xml:"categories>category,omitempty"`
	Keywords      []outKeywords    `xml:"keywords,omitempty"`
	URLs          []outURL         `xml:"url,omitempty"`
	Launchables   []outLaunchable  `xml:"launchable,omitempty"`
	Extends       []string         `xml:"extends,omitempty"`
	Provides      *outProvides     `xml:"provides,omitempty"`
	Screenshots   []outScreenshot  `xml:"screenshots>screenshot,omitempty"`
	Languages     []outLanguage    `xml:"languages>lang,omitempty"`
	Releases      []outRelease     `xml:"releases>release,omitempty"`
	Custom        []outCustomValue `xml:"custom>value,omitempty"`
}

type outComponents struct {
	XMLName   xml.Name `xml:"components"`
	Version   string   `xml:"version,attr"`
	Origin    string   `xml:"origin,attr"`
	MediaBase string   `xml:"media_baseurl,attr,omitempty"`
	Cpts      []outComponent
}

// WriteCatalogXML writes the components as gzip-compressed collection XML.
// Components are emitted sorted by id so output is reproducible.
func WriteCatalogXML(w io.Writer, origin, mediaBaseURL string, cpts []*Component) error {
	zw := gzip.NewWriter(w)
	if err := writeCatalogXMLPlain(zw, origin, mediaBaseURL, cpts); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

func writeCatalogXMLPlain(w io.Writer, origin, mediaBaseURL string, cpts []*Component) error {
	doc := outComponents{
		Version:   FormatVersion,
		Origin:    origin,
		MediaBase: mediaBaseURL,
	}
	for _, cpt := range sortedByID(cpts) {
		doc.Cpts = append(doc.Cpts, convertOut(cpt))
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("serializing catalog for origin %q: %w", origin, err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func convertOut(cpt *Component) outComponent {
	oc := outComponent{
		Type:          cpt.Kind.String(),
		ID:            cpt.ID,
		DeveloperName: cpt.DeveloperName,
		ProjectLic:    cpt.ProjectLicense,
		Categories:    cpt.Categories,
		Extends:       cpt.Extends,
	}
	if cpt.Priority != 0 {
		oc.Priority = strconv.Itoa(cpt.Priority)
	}

	oc.Names = localizedOut(cpt.Names)
	oc.Summaries = localizedOut(cpt.Summaries)
	for _, locale := range sortedLocales(cpt.Descriptions) {
		oc.Descriptions = append(oc.Descriptions, outDescription{
			Lang:  langAttr(locale),
			Inner: cpt.Descriptions[locale],
		})
	}
	for _, locale := range sortedLocales(cpt.Keywords) {
		oc.Keywords = append(oc.Keywords, outKeywords{
			Lang:  langAttr(locale),
			Items: cpt.Keywords[locale],
		})
	}

	for _, ic := range cpt.Icons {
		oi := outIcon{
			Type:   ic.Kind.String(),
			Width:  ic.Width,
			Height: ic.Height,
			Value:  ic.Name,
		}
		if ic.Kind == IconKindRemote {
			oi.Value = ic.URL
		}
		if ic.Scale > 1 {
			oi.Scale = ic.Scale
		}
		oc.Icons = append(oc.Icons, oi)
	}

	for _, typ := range sortedLocales(cpt.URLs) {
		oc.URLs = append(oc.URLs, outURL{Type: typ, Value: cpt.URLs[typ]})
	}
	for _, kind := range sortedLocales(cpt.Launchables) {
		for _, val := range cpt.Launchables[kind] {
			oc.Launchables = append(oc.Launchables, outLaunchable{Type: kind, Value: val})
		}
	}

	if !cpt.Provides.IsEmpty() {
		oc.Provides = &outProvides{
			MediaTypes: cpt.Provides.MediaTypes,
			Binaries:   cpt.Provides.Binaries,
			Fonts:      cpt.Provides.Fonts,
			Libraries:  cpt.Provides.Libraries,
			DBus:       cpt.Provides.DBus,
			Modaliases: cpt.Provides.Modaliases,
		}
	}

	for _, scr := range cpt.Screenshots {
		os := outScreenshot{}
		if scr.Default {
			os.Type = "default"
		}
		for _, locale := range sortedLocales(scr.Captions) {
			os.Captions = append(os.Captions, outLocalized{
				Lang:  langAttr(locale),
				Value: scr.Captions[locale],
			})
		}
		for _, img := range scr.Images {
			os.Images = append(os.Images, outImage{
				Type:   img.Kind.String(),
				Width:  img.Width,
				Height: img.Height,
				Lang:   langAttr(img.Locale),
				Value:  img.URL,
			})
		}
		for _, vid := range scr.Videos {
			ov := outVideo{
				Width:  vid.Width,
				Height: vid.Height,
				Lang:   langAttr(vid.Locale),
				Value:  vid.URL,
			}
			if vid.Codec != VideoCodecUnknown {
				ov.Codec = vid.Codec.String()
			}
			if vid.Container != VideoContainerUnknown {
				ov.Container = vid.Container.String()
			}
			os.Videos = append(os.Videos, ov)
		}
		oc.Screenshots = append(oc.Screenshots, os)
	}

	for _, lang := range cpt.Languages {
		oc.Languages = append(oc.Languages, outLanguage{
			Percentage: lang.Percentage,
			Value:      lang.Locale,
		})
	}

	for _, rel := range cpt.Releases {
		or := outRelease{
			Version:   rel.Version,
			Type:      rel.Type,
			Date:      rel.Date,
			Timestamp: rel.Timestamp,
		}
		if rel.Description != "" {
			or.Description = &outDescription{Inner: rel.Description}
		}
		oc.Releases = append(oc.Releases, or)
	}

	for _, key := range sortedLocales(cpt.Custom) {
		oc.Custom = append(oc.Custom, outCustomValue{Key: key, Value: cpt.Custom[key]})
	}

	return oc
}

func localizedOut(values map[string]string) []outLocalized {
	var out []outLocalized
	for _, locale := range sortedLocales(values) {
		out = append(out, outLocalized{Lang: langAttr(locale), Value: values[locale]})
	}
	return out
}

// langAttr maps the untranslated "C" locale to an absent xml:lang attribute.
func langAttr(locale string) string {
	if locale == "C" || locale == "" {
		return ""
	}
	return locale
}

// sortedLocales returns map keys sorted with "C" first, so the untranslated
// value always precedes its translations.
func sortedLocales[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i] == "C" {
			return keys[j] != "C"
		}
		if keys[j] == "C" {
			return false
		}
		return keys[i] < keys[j]
	})
	return keys
}

func sortedByID(cpts []*Component) []*Component {
	out := make([]*Component, len(cpts))
	copy(out, cpts)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
