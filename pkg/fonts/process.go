package fonts

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/appstream-tools/compose/pkg/appstream"
	"github.com/appstream-tools/compose/pkg/icons"
	"github.com/appstream-tools/compose/pkg/result"
	"github.com/appstream-tools/compose/pkg/unit"
)

// Custom field keys a metainfo file can set to override specimen texts,
// useful for symbolic fonts.
const (
	customSampleTextKey = "FontSampleText"
	customIconTextKey   = "FontIconText"
)

// ProcessOptions controls font specimen generation.
type ProcessOptions struct {
	Prefix           string
	MediaDir         string
	Policy           *icons.Policy
	StoreScreenshots bool
}

// ProcessFonts analyzes all fonts shipped by a unit and attaches icons,
// specimen screenshots and language data to the font components of the
// result.
func ProcessFonts(ctx context.Context, res *result.Result, u unit.Unit, opts ProcessOptions) {
	var fontCpts []*appstream.Component
	for _, cpt := range res.Components() {
		if cpt.Kind == appstream.KindFont {
			fontCpts = append(fontCpts, cpt)
		}
	}
	if len(fontCpts) == 0 {
		return
	}
	if opts.Policy == nil {
		opts.Policy = icons.NewPolicy()
	}

	// map of all fonts in this unit, keyed by lowercased full name
	fontsDir := opts.Prefix + "/share/fonts"
	allFonts := make(map[string]*Font)
	for _, fname := range u.Contents() {
		if !strings.HasPrefix(fname, fontsDir) {
			continue
		}
		if !strings.HasSuffix(fname, ".ttf") && !strings.HasSuffix(fname, ".otf") {
			continue
		}

		data, err := u.ReadData(fname)
		if err != nil {
			res.AddHintByCID("", "file-read-error", "fname", fname, "msg", err.Error())
			continue
		}
		font, err := NewFont(data, path.Base(fname))
		if err != nil {
			res.AddHintByCID("", "font-load-error",
				"fname", fname,
				"unit_name", u.ID(),
				"error", err.Error())
			continue
		}
		allFonts[strings.ToLower(font.Fullname())] = font
	}

	for _, cpt := range fontCpts {
		processFontComponent(ctx, res, u, cpt, allFonts, opts)
	}
}

// selectFonts picks the fonts a component refers to. Without provides
// hints all fonts of the unit are used, with the regular face preferred
// for rendering.
func selectFonts(cpt *appstream.Component, allFonts map[string]*Font) []*Font {
	var hints []string
	for _, name := range cpt.Provides.Fonts {
		hints = append(hints, strings.ToLower(name))
	}

	if len(hints) == 0 {
		all := make([]*Font, 0, len(allFonts))
		for _, f := range allFonts {
			all = append(all, f)
		}
		sort.Slice(all, func(i, j int) bool { return all[i].ID() < all[j].ID() })

		var selected []*Font
		regularFound := false
		for _, f := range all {
			style := strings.ToLower(f.Style())
			if !regularFound && strings.Contains(style, "regular") {
				selected = append([]*Font{f}, selected...)
				if style == "regular" {
					regularFound = true
				}
			} else {
				selected = append(selected, f)
			}
		}
		return selected
	}

	var selected []*Font
	for _, hint := range hints {
		if f, ok := allFonts[hint]; ok {
			selected = append(selected, f)
		}
	}
	return selected
}

func processFontComponent(ctx context.Context, res *result.Result, u unit.Unit, cpt *appstream.Component, allFonts map[string]*Font, opts ProcessOptions) {
	gcid, err := res.GcidForComponent(cpt)
	if err != nil {
		res.AddHint(cpt, "internal-error",
			"msg", "No global ID could be found for component when processing fonts.")
		return
	}

	selected := selectFonts(cpt, allFonts)
	if len(selected) == 0 {
		var names []string
		for _, f := range allFonts {
			names = append(names, f.Fullname())
		}
		sort.Strings(names)
		res.AddHint(cpt, "font-metainfo-but-no-font",
			"font_names", strings.Join(names, " | "))
		return
	}

	// language data in font files is often wrong, explicit metainfo
	// languages take precedence
	if len(cpt.Languages) > 0 {
		first := cpt.Languages[0].Locale
		for _, f := range selected {
			f.SetPreferredLanguage(first)
		}
		for _, l := range cpt.Languages[1:] {
			for _, f := range selected {
				f.AddLanguage(l.Locale)
			}
		}
	}

	if text := cpt.Custom[customSampleTextKey]; text != "" {
		for _, f := range selected {
			f.SetSampleText(text)
		}
	}

	hasIcon := false
	for _, f := range selected {
		// the font advertises these languages, assume full support
		for _, lang := range f.Languages() {
			cpt.AddLanguage(lang, 100)
		}

		if !hasIcon {
			hasIcon = renderFontIcon(ctx, res, u, cpt, f, gcid, opts)
		}

		// font metadata as a last resort for missing component data
		if cpt.Description() == "" && f.Description() != "" {
			cpt.SetDescription("C", f.Description())
		}
		if cpt.URLs["homepage"] == "" && f.Homepage() != "" {
			cpt.URLs["homepage"] = f.Homepage()
		}
	}
	cpt.SortLanguages()

	if opts.StoreScreenshots && opts.MediaDir != "" {
		renderFontScreenshots(ctx, res, cpt, selected, gcid, opts)
	}
}

// renderFontIcon renders the glyph-sample icon in every size the policy
// requests and registers cached/remote icon references.
func renderFontIcon(ctx context.Context, res *result.Result, u unit.Unit, cpt *appstream.Component, f *Font, gcid string, opts ProcessOptions) bool {
	if text := cpt.Custom[customIconTextKey]; text != "" {
		f.SetSampleIconText(text)
	}

	iconAdded := false
	for _, e := range opts.Policy.Entries() {
		if e.State == icons.StateIgnored {
			continue
		}

		sizeDir := fmt.Sprintf("%dx%d", e.Size, e.Size)
		if e.Scale > 1 {
			sizeDir = fmt.Sprintf("%dx%d@%d", e.Size, e.Size, e.Scale)
		}
		iconName := u.ID() + "_" + f.ID() + ".png"

		img, err := f.RenderIcon(e.Size * e.Scale)
		if err != nil {
			if !res.AddHint(cpt, "font-render-error", "name", f.Fullname(), "error", err.Error()) {
				return iconAdded
			}
			continue
		}
		// no media dir means validation only, nothing is exported
		if opts.MediaDir != "" {
			destPath := filepath.Join(opts.MediaDir, filepath.FromSlash(gcid), "icons", sizeDir, iconName)
			if err := img.SavePNG(ctx, destPath); err != nil {
				if !res.AddHint(cpt, "icon-write-error", "fname", destPath, "msg", err.Error()) {
					return iconAdded
				}
				continue
			}
		}

		if e.State != icons.StateRemoteOnly {
			cpt.Icons = append(cpt.Icons, appstream.Icon{
				Kind:   appstream.IconKindCached,
				Name:   iconName,
				Width:  e.Size,
				Height: e.Size,
				Scale:  e.Scale,
			})
			iconAdded = true
		}
		if e.State != icons.StateCached {
			cpt.Icons = append(cpt.Icons, appstream.Icon{
				Kind:   appstream.IconKindRemote,
				URL:    gcid + "/icons/" + sizeDir + "/" + iconName,
				Width:  e.Size,
				Height: e.Size,
				Scale:  e.Scale,
			})
			iconAdded = true
		}
	}
	return iconAdded
}

// renderFontScreenshots renders the sample-sentence specimen images for
// every selected font style and attaches them as screenshots.
func renderFontScreenshots(ctx context.Context, res *result.Result, cpt *appstream.Component, selected []*Font, gcid string, opts ProcessOptions) {
	urlRoot := gcid + "/screenshots"
	first := true

	for _, f := range selected {
		if f.ID() == "" {
			continue
		}

		scr := appstream.Screenshot{
			Default:  first,
			Captions: map[string]string{"C": strings.TrimSpace(f.Family() + " " + f.Style())},
		}
		first = false

		for _, size := range SpecimenSizes {
			imgName := fmt.Sprintf("image-%s_%dx%d.png", f.ID(), size.Width, size.Height)

			img, err := f.RenderTextLine(size.Width, size.Height, f.SampleText())
			if err != nil {
				if !res.AddHint(cpt, "font-render-error", "name", f.Fullname(), "error", err.Error()) {
					return
				}
				continue
			}
			destPath := filepath.Join(opts.MediaDir, filepath.FromSlash(gcid), "screenshots", imgName)
			if err := img.SavePNG(ctx, destPath); err != nil {
				if !res.AddHint(cpt, "font-render-error", "name", f.Fullname(), "error", err.Error()) {
					return
				}
				continue
			}

			scr.Images = append(scr.Images, appstream.Image{
				Kind:   appstream.ImageKindThumbnail,
				URL:    urlRoot + "/" + imgName,
				Width:  size.Width,
				Height: size.Height,
			})
		}

		if len(scr.Images) > 0 {
			cpt.Screenshots = append(cpt.Screenshots, scr)
		}
	}
}
