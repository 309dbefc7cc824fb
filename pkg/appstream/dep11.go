package appstream

import (
	"compress/gzip"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// DEP11Version is the DEP-11 format version we emit.
const DEP11Version = "0.16"

type dep11Header struct {
	File         string `yaml:"File"`
	Version      string `yaml:"Version"`
	Origin       string `yaml:"Origin"`
	MediaBaseURL string `yaml:"MediaBaseUrl,omitempty"`
}

type dep11Icon struct {
	Name   string `yaml:"name,omitempty"`
	URL    string `yaml:"url,omitempty"`
	Width  int    `yaml:"width,omitempty"`
	Height int    `yaml:"height,omitempty"`
	Scale  int    `yaml:"scale,omitempty"`
}

type dep11Image struct {
	URL    string `yaml:"url"`
	Width  int    `yaml:"width,omitempty"`
	Height int    `yaml:"height,omitempty"`
	Lang   string `yaml:"lang,omitempty"`
}

type dep11Video struct {
	URL       string `yaml:"url"`
	Codec     string `yaml:"codec,omitempty"`
	Container string `yaml:"container,omitempty"`
	Lang      string `yaml:"lang,omitempty"`
}

type dep11Screenshot struct {
	Default    bool              `yaml:"default,omitempty"`
	Caption    map[string]string `yaml:"caption,omitempty"`
	SourceImg  *dep11Image       `yaml:"source-image,omitempty"`
	Thumbnails []dep11Image      `yaml:"thumbnails,omitempty"`
	Videos     []dep11Video      `yaml:"videos,omitempty"`
}

type dep11Release struct {
	Version     string `yaml:"version"`
	Type        string `yaml:"type,omitempty"`
	Date        string `yaml:"date,omitempty"`
	UnixTime    int64  `yaml:"unix-timestamp,omitempty"`
	Description string `yaml:"description,omitempty"`
}

type dep11Component struct {
	Type          string                 `yaml:"Type"`
	ID            string                 `yaml:"ID"`
	Priority      int                    `yaml:"Priority,omitempty"`
	Name          map[string]string      `yaml:"Name"`
	Summary       map[string]string      `yaml:"Summary,omitempty"`
	Description   map[string]string      `yaml:"Description,omitempty"`
	DeveloperName string                 `yaml:"DeveloperName,omitempty"`
	ProjectLic    string                 `yaml:"ProjectLicense,omitempty"`
	Categories    []string               `yaml:"Categories,omitempty"`
	Keywords      map[string][]string    `yaml:"Keywords,omitempty"`
	URL           map[string]string      `yaml:"Url,omitempty"`
	Icon          map[string][]dep11Icon `yaml:"Icon,omitempty"`
	Launchable    map[string][]string    `yaml:"Launchable,omitempty"`
	Extends       []string               `yaml:"Extends,omitempty"`
	Provides      map[string][]string    `yaml:"Provides,omitempty"`
	Screenshots   []dep11Screenshot      `yaml:"Screenshots,omitempty"`
	Languages     []map[string]any       `yaml:"Languages,omitempty"`
	Releases      []dep11Release         `yaml:"Releases,omitempty"`
	Custom        map[string]string      `yaml:"Custom,omitempty"`
}

// WriteCatalogYAML writes the components as a gzip-compressed DEP-11 YAML
// document stream, header document first.
func WriteCatalogYAML(w io.Writer, origin, mediaBaseURL string, cpts []*Component) error {
	zw := gzip.NewWriter(w)
	if err := writeCatalogYAMLPlain(zw, origin, mediaBaseURL, cpts); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

func writeCatalogYAMLPlain(w io.Writer, origin, mediaBaseURL string, cpts []*Component) error {
	if _, err := io.WriteString(w, "---\n"); err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	if err := enc.Encode(dep11Header{
		File:         "DEP-11",
		Version:      DEP11Version,
		Origin:       origin,
		MediaBaseURL: mediaBaseURL,
	}); err != nil {
		return fmt.Errorf("serializing DEP-11 header for origin %q: %w", origin, err)
	}

	for _, cpt := range sortedByID(cpts) {
		if err := enc.Encode(convertDEP11(cpt)); err != nil {
			return fmt.Errorf("serializing DEP-11 component %q: %w", cpt.ID, err)
		}
	}
	return enc.Close()
}

func convertDEP11(cpt *Component) dep11Component {
	dc := dep11Component{
		Type:          cpt.Kind.String(),
		ID:            cpt.ID,
		Priority:      cpt.Priority,
		Name:          cpt.Names,
		Summary:       cpt.Summaries,
		Description:   cpt.Descriptions,
		DeveloperName: cpt.DeveloperName,
		ProjectLic:    cpt.ProjectLicense,
		Categories:    cpt.Categories,
		Extends:       cpt.Extends,
		Custom:        nilIfEmpty(cpt.Custom),
	}
	if len(cpt.Keywords) > 0 {
		dc.Keywords = cpt.Keywords
	}
	if len(cpt.URLs) > 0 {
		dc.URL = cpt.URLs
	}
	if len(cpt.Launchables) > 0 {
		dc.Launchable = cpt.Launchables
	}

	for _, ic := range cpt.Icons {
		if dc.Icon == nil {
			dc.Icon = make(map[string][]dep11Icon)
		}
		di := dep11Icon{
			Name:   ic.Name,
			Width:  ic.Width,
			Height: ic.Height,
		}
		if ic.Kind == IconKindRemote {
			di.Name = ""
			di.URL = ic.URL
		}
		if ic.Scale > 1 {
			di.Scale = ic.Scale
		}
		kind := ic.Kind.String()
		dc.Icon[kind] = append(dc.Icon[kind], di)
	}

	prov := make(map[string][]string)
	addProv := func(key string, items []string) {
		if len(items) > 0 {
			prov[key] = items
		}
	}
	addProv("mediatypes", cpt.Provides.MediaTypes)
	addProv("binaries", cpt.Provides.Binaries)
	addProv("fonts", cpt.Provides.Fonts)
	addProv("libraries", cpt.Provides.Libraries)
	addProv("dbus", cpt.Provides.DBus)
	addProv("modaliases", cpt.Provides.Modaliases)
	if len(prov) > 0 {
		dc.Provides = prov
	}

	for _, scr := range cpt.Screenshots {
		ds := dep11Screenshot{
			Default: scr.Default,
			Caption: nilIfEmpty(scr.Captions),
		}
		for _, img := range scr.Images {
			di := dep11Image{
				URL:    img.URL,
				Width:  img.Width,
				Height: img.Height,
				Lang:   langAttr(img.Locale),
			}
			if img.Kind == ImageKindThumbnail {
				ds.Thumbnails = append(ds.Thumbnails, di)
			} else if ds.SourceImg == nil {
				src := di
				ds.SourceImg = &src
			}
		}
		for _, vid := range scr.Videos {
			dv := dep11Video{
				URL:  vid.URL,
				Lang: langAttr(vid.Locale),
			}
			if vid.Codec != VideoCodecUnknown {
				dv.Codec = vid.Codec.String()
			}
			if vid.Container != VideoContainerUnknown {
				dv.Container = vid.Container.String()
			}
			ds.Videos = append(ds.Videos, dv)
		}
		dc.Screenshots = append(dc.Screenshots, ds)
	}

	for _, lang := range cpt.Languages {
		dc.Languages = append(dc.Languages, map[string]any{
			"locale":     lang.Locale,
			"percentage": lang.Percentage,
		})
	}

	for _, rel := range cpt.Releases {
		dc.Releases = append(dc.Releases, dep11Release{
			Version:     rel.Version,
			Type:        rel.Type,
			Date:        rel.Date,
			UnixTime:    rel.Timestamp,
			Description: rel.Description,
		})
	}

	return dc
}

func nilIfEmpty(m map[string]string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	return m
}
