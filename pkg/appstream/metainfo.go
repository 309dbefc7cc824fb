package appstream

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

// xmlLocalized is a text element carrying an optional xml:lang attribute.
type xmlLocalized struct {
	Lang  string `xml:"lang,attr"`
	Value string `xml:",chardata"`
}

// xmlDescription captures the description body as raw markup per locale.
type xmlDescription struct {
	Lang  string `xml:"lang,attr"`
	Inner string `xml:",innerxml"`
}

type xmlIcon struct {
	Type   string `xml:"type,attr"`
	Width  string `xml:"width,attr"`
	Height string `xml:"height,attr"`
	Scale  string `xml:"scale,attr"`
	Value  string `xml:",chardata"`
}

type xmlLaunchable struct {
	Type  string `xml:"type,attr"`
	Value string `xml:",chardata"`
}

type xmlURL struct {
	Type  string `xml:"type,attr"`
	Value string `xml:",chardata"`
}

type xmlImage struct {
	Type   string `xml:"type,attr"`
	Width  string `xml:"width,attr"`
	Height string `xml:"height,attr"`
	Lang   string `xml:"lang,attr"`
	Value  string `xml:",chardata"`
}

type xmlVideo struct {
	Codec     string `xml:"codec,attr"`
	Container string `xml:"container,attr"`
	Lang      string `xml:"lang,attr"`
	Value     string `xml:",chardata"`
}

type xmlScreenshot struct {
	Type     string         `xml:"type,attr"`
	Captions []xmlLocalized `xml:"caption"`
	Images   []xmlImage     `xml:"image"`
	Videos   []xmlVideo     `xml:"video"`
}

type xmlProvides struct {
	MediaTypes []string `xml:"mediatype"`
	Binaries   []string `xml:"binary"`
	Fonts      []string `xml:"font"`
	Libraries  []string `xml:"library"`
	DBus       []string `xml:"dbus"`
	Modaliases []string `xml:"modalias"`
}

type xmlTranslation struct {
	Type         string `xml:"type,attr"`
	SourceLocale string `xml:"source_locale,attr"`
	Value        string `xml:",chardata"`
}

type xmlRelease struct {
	Version     string `xml:"version,attr"`
	Type        string `xml:"type,attr"`
	Date        string `xml:"date,attr"`
	Timestamp   string `xml:"timestamp,attr"`
	Description struct {
		Inner string `xml:",innerxml"`
	} `xml:"description"`
}

type xmlReleases struct {
	Type     string       `xml:"type,attr"`
	URL      string       `xml:"url"`
	Releases []xmlRelease `xml:"release"`
}

type xmlCustomValue struct {
	Key   string `xml:"key,attr"`
	Value string `xml:",chardata"`
}

type xmlComponent struct {
	XMLName       xml.Name         `xml:"component"`
	Type          string           `xml:"type,attr"`
	Priority      string           `xml:"priority,attr"`
	ID            string           `xml:"id"`
	Names         []xmlLocalized   `xml:"name"`
	Summaries     []xmlLocalized   `xml:"summary"`
	Descriptions  []xmlDescription `xml:"description"`
	DeveloperName []xmlLocalized   `xml:"developer_name"`
	MetadataLic   string           `xml:"metadata_license"`
	ProjectLic    string           `xml:"project_license"`
	Categories    []string         `xml:"categories>category"`
	Keywords      []struct {
		Lang  string   `xml:"lang,attr"`
		Items []string `xml:"keyword"`
	} `xml:"keywords"`
	Icons        []xmlIcon        `xml:"icon"`
	Launchables  []xmlLaunchable  `xml:"launchable"`
	URLs         []xmlURL         `xml:"url"`
	Screenshots  []xmlScreenshot  `xml:"screenshots>screenshot"`
	Provides     xmlProvides      `xml:"provides"`
	Translations []xmlTranslation `xml:"translation"`
	Extends      []string         `xml:"extends"`
	Releases     *xmlReleases     `xml:"releases"`
	Custom       []xmlCustomValue `xml:"custom>value"`
}

// ParseMetaInfo parses a MetaInfo XML document into a Component.
//
// Only well-formedness and the component root element are enforced here;
// semantic checks (missing id, licenses, kinds) are the caller's job so they
// can be reported as hints rather than hard failures.
func ParseMetaInfo(data []byte) (*Component, error) {
	var xc xmlComponent
	if err := xml.Unmarshal(data, &xc); err != nil {
		// legacy documents used an <application> root
		if strings.Contains(err.Error(), "have <application>") {
			return nil, fmt.Errorf("legacy metadata: %w", err)
		}
		return nil, err
	}

	cpt := NewComponent()
	cpt.ID = strings.TrimSpace(xc.ID)
	cpt.Kind = ParseKind(xc.Type)
	cpt.MetadataLicense = strings.TrimSpace(xc.MetadataLic)
	cpt.ProjectLicense = strings.TrimSpace(xc.ProjectLic)
	if xc.Priority != "" {
		cpt.Priority, _ = strconv.Atoi(xc.Priority)
	}

	for _, n := range xc.Names {
		cpt.SetName(n.Lang, strings.TrimSpace(n.Value))
	}
	for _, s := range xc.Summaries {
		cpt.SetSummary(s.Lang, strings.TrimSpace(s.Value))
	}
	for _, d := range xc.Descriptions {
		cpt.SetDescription(d.Lang, strings.TrimSpace(d.Inner))
	}
	if len(xc.DeveloperName) > 0 {
		cpt.DeveloperName = strings.TrimSpace(xc.DeveloperName[0].Value)
	}

	for _, cat := range xc.Categories {
		if cat = strings.TrimSpace(cat); cat != "" {
			cpt.Categories = append(cpt.Categories, cat)
		}
	}
	for _, kw := range xc.Keywords {
		locale := orC(kw.Lang)
		for _, item := range kw.Items {
			if item = strings.TrimSpace(item); item != "" {
				cpt.Keywords[locale] = append(cpt.Keywords[locale], item)
			}
		}
	}

	for _, ic := range xc.Icons {
		icon := Icon{
			Kind:  ParseIconKind(ic.Type),
			Scale: 1,
		}
		val := strings.TrimSpace(ic.Value)
		if icon.Kind == IconKindRemote {
			icon.URL = val
		} else {
			icon.Name = val
		}
		icon.Width, _ = strconv.Atoi(ic.Width)
		icon.Height, _ = strconv.Atoi(ic.Height)
		if ic.Scale != "" {
			if sc, err := strconv.Atoi(ic.Scale); err == nil && sc > 0 {
				icon.Scale = sc
			}
		}
		cpt.Icons = append(cpt.Icons, icon)
	}

	for _, l := range xc.Launchables {
		kind := l.Type
		if kind == "" {
			kind = LaunchableDesktopID
		}
		cpt.AddLaunchable(kind, strings.TrimSpace(l.Value))
	}

	for _, u := range xc.URLs {
		if u.Type != "" {
			cpt.URLs[u.Type] = strings.TrimSpace(u.Value)
		}
	}

	for _, xs := range xc.Screenshots {
		scr := Screenshot{
			Default:  xs.Type == "default",
			Captions: make(map[string]string),
		}
		for _, cap := range xs.Captions {
			scr.Captions[orC(cap.Lang)] = strings.TrimSpace(cap.Value)
		}
		for _, xi := range xs.Images {
			img := Image{
				Kind:   ImageKindSource,
				URL:    strings.TrimSpace(xi.Value),
				Locale: orC(xi.Lang),
			}
			if xi.Type == "thumbnail" {
				img.Kind = ImageKindThumbnail
			}
			img.Width, _ = strconv.Atoi(xi.Width)
			img.Height, _ = strconv.Atoi(xi.Height)
			scr.Images = append(scr.Images, img)
		}
		for _, xv := range xs.Videos {
			scr.Videos = append(scr.Videos, Video{
				URL:    strings.TrimSpace(xv.Value),
				Locale: orC(xv.Lang),
			})
		}
		cpt.Screenshots = append(cpt.Screenshots, scr)
	}

	cpt.Provides = Provides{
		MediaTypes: trimAll(xc.Provides.MediaTypes),
		Binaries:   trimAll(xc.Provides.Binaries),
		Fonts:      trimAll(xc.Provides.Fonts),
		Libraries:  trimAll(xc.Provides.Libraries),
		DBus:       trimAll(xc.Provides.DBus),
		Modaliases: trimAll(xc.Provides.Modaliases),
	}

	for _, tr := range xc.Translations {
		t := Translation{
			Kind:         ParseTranslationKind(tr.Type),
			ID:           strings.TrimSpace(tr.Value),
			SourceLocale: tr.SourceLocale,
		}
		if t.SourceLocale == "" {
			t.SourceLocale = "en"
		}
		cpt.Translations = append(cpt.Translations, t)
	}

	cpt.Extends = trimAll(xc.Extends)

	if xc.Releases != nil {
		if xc.Releases.Type == "external" {
			cpt.ReleasesKind = ReleasesKindExternal
			cpt.ReleasesURL = strings.TrimSpace(xc.Releases.URL)
		}
		for _, xr := range xc.Releases.Releases {
			cpt.Releases = append(cpt.Releases, convertRelease(xr))
		}
	}

	for _, cv := range xc.Custom {
		if cv.Key != "" {
			cpt.Custom[cv.Key] = strings.TrimSpace(cv.Value)
		}
	}

	return cpt, nil
}

// ParseReleasesData parses an external release description document and
// stores its releases on the component.
func ParseReleasesData(cpt *Component, data []byte) error {
	var doc struct {
		XMLName  xml.Name     `xml:"releases"`
		Releases []xmlRelease `xml:"release"`
	}
	if err := xml.Unmarshal(data, &doc); err != nil {
		return err
	}
	cpt.Releases = cpt.Releases[:0]
	for _, xr := range doc.Releases {
		cpt.Releases = append(cpt.Releases, convertRelease(xr))
	}
	return nil
}

func convertRelease(xr xmlRelease) Release {
	r := Release{
		Version:     xr.Version,
		Type:        xr.Type,
		Date:        xr.Date,
		Description: strings.TrimSpace(xr.Description.Inner),
	}
	if r.Type == "" {
		r.Type = "stable"
	}
	if xr.Timestamp != "" {
		r.Timestamp, _ = strconv.ParseInt(xr.Timestamp, 10, 64)
	}
	return r
}

func trimAll(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
