package icons

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/appstream-tools/compose/pkg/appstream"
	"github.com/appstream-tools/compose/pkg/image"
	"github.com/appstream-tools/compose/pkg/result"
	"github.com/appstream-tools/compose/pkg/unit"
)

// ExportOptions controls where processed icons are looked up and stored.
type ExportOptions struct {
	Prefix       string
	MediaDir     string
	MediaBaseURL string
	Policy       *Policy
}

// rasterExts are the icon file formats we can decode, in preference order.
var rasterExts = []string{".png", ".jpg", ".jpeg"}

// iconThemes in lookup order. Hicolor is the freedesktop fallback theme
// every application is expected to install into.
var iconThemes = []string{"hicolor", "breeze", "Adwaita"}

// themeSizes lists the fixed-size directories of a typical icon theme,
// largest first.
var themeSizes = []int{512, 256, 192, 128, 96, 64, 48, 32, 24, 16}

type iconCandidate struct {
	dir string
	px  int // effective pixel size of icons in this directory
}

// candidateDirs returns theme directories ordered by suitability for the
// wanted pixel size: an exact match first, then the smallest larger size,
// then smaller sizes that can still be upscaled without looking too bad.
func candidateDirs(prefix string, px int) []iconCandidate {
	var all []iconCandidate
	for _, theme := range iconThemes {
		base := prefix + "/share/icons/" + theme
		for _, s := range themeSizes {
			all = append(all, iconCandidate{
				dir: fmt.Sprintf("%s/%dx%d/apps", base, s, s),
				px:  s,
			})
			all = append(all, iconCandidate{
				dir: fmt.Sprintf("%s/%dx%d@2/apps", base, s, s),
				px:  s * 2,
			})
		}
	}

	score := func(c iconCandidate) int {
		switch {
		case c.px == px:
			return 0
		case c.px > px:
			// prefer the smallest size we can downscale from
			return c.px - px
		case c.px*2 >= px:
			// upscaling at most 2x is tolerable
			return 10000 + (px - c.px)
		default:
			return -1
		}
	}

	var out []iconCandidate
	for _, c := range all {
		if score(c) >= 0 {
			out = append(out, c)
		}
	}
	// stable selection sort keeps the theme order for equal scores
	for i := 0; i < len(out); i++ {
		best := i
		for j := i + 1; j < len(out); j++ {
			if score(out[j]) < score(out[best]) {
				best = j
			}
		}
		out[i], out[best] = out[best], out[i]
	}
	return out
}

// findIconFile locates the best raster source file for an icon name at the
// wanted pixel size. Absolute names are treated as direct paths, otherwise
// the icon themes are searched, with the legacy pixmaps directory as the
// last resort.
func findIconFile(u unit.Unit, prefix, name string, px int) (string, bool) {
	if strings.HasPrefix(name, "/") {
		if u.FileExists(name) {
			return name, true
		}
		return "", false
	}

	for _, c := range candidateDirs(prefix, px) {
		for _, ext := range rasterExts {
			fname := c.dir + "/" + name + ext
			if u.FileExists(fname) {
				return fname, true
			}
		}
	}

	for _, ext := range rasterExts {
		fname := prefix + "/share/pixmaps/" + name + ext
		if u.FileExists(fname) {
			return fname, true
		}
	}
	return "", false
}

// iconName returns the icon to look up for a component: the stock name if
// one is set, else the path of a local icon.
func iconName(cpt *appstream.Component) string {
	if ic, ok := cpt.StockIcon(); ok {
		return ic.Name
	}
	for _, ic := range cpt.Icons {
		if ic.Kind == appstream.IconKindLocal {
			return ic.Name
		}
	}
	return ""
}

// sizeDirName formats the media subdirectory for one icon size,
// e.g. "64x64" or "128x128@2".
func sizeDirName(size, scale int) string {
	if scale > 1 {
		return fmt.Sprintf("%dx%d@%d", size, size, scale)
	}
	return fmt.Sprintf("%dx%d", size, size)
}

// ProcessIcons resolves a component's icon, scales it to every size the
// policy asks for and stores the results in the media pool. Cached and
// remote icon references replace the stock/local declarations. A GUI
// component whose icon cannot be provided at 64x64 is invalidated with an
// icon-not-found hint.
func ProcessIcons(ctx context.Context, res *result.Result, cpt *appstream.Component, u unit.Unit, opts ExportOptions) {
	policy := opts.Policy
	if policy == nil {
		policy = NewPolicy()
	}

	name := iconName(cpt)
	if name == "" {
		return
	}

	gcid, err := res.GcidForComponent(cpt)
	if err != nil {
		res.AddHint(cpt, "internal-error", "msg", err.Error())
		return
	}

	haveBaseSize := false
	for _, e := range policy.Entries() {
		if e.State == StateIgnored {
			continue
		}
		px := e.Size * e.Scale

		fname, ok := findIconFile(u, opts.Prefix, name, px)
		if !ok {
			continue
		}
		data, err := u.ReadData(fname)
		if err != nil {
			if !res.AddHint(cpt, "file-read-error", "fname", fname, "msg", err.Error()) {
				return
			}
			continue
		}
		img, err := image.Load(data)
		if err != nil {
			if !res.AddHint(cpt, "icon-write-error", "fname", fname, "msg", err.Error()) {
				return
			}
			continue
		}
		if img.Width()*2 < px {
			// too blurry when upscaled this far
			continue
		}
		img = img.ScaleTo(px, px)

		sizeDir := sizeDirName(e.Size, e.Scale)
		iconFile := cpt.ID + ".png"
		// no media dir means validation only, nothing is exported
		if opts.MediaDir != "" {
			destPath := filepath.Join(opts.MediaDir, filepath.FromSlash(gcid), "icons", sizeDir, iconFile)
			if err := img.SavePNG(ctx, destPath); err != nil {
				res.AddHint(cpt, "icon-write-error", "fname", destPath, "msg", err.Error())
				return
			}
		}

		if e.State == StateCached || e.State == StateCachedRemote {
			cpt.Icons = append(cpt.Icons, appstream.Icon{
				Kind:   appstream.IconKindCached,
				Name:   iconFile,
				Width:  e.Size,
				Height: e.Size,
				Scale:  e.Scale,
			})
		}
		if (e.State == StateCachedRemote || e.State == StateRemoteOnly) && opts.MediaBaseURL != "" {
			cpt.Icons = append(cpt.Icons, appstream.Icon{
				Kind:   appstream.IconKindRemote,
				URL:    gcid + "/icons/" + sizeDir + "/" + iconFile,
				Width:  e.Size,
				Height: e.Size,
				Scale:  e.Scale,
			})
		}
		if e.Size == 64 && e.Scale == 1 {
			haveBaseSize = true
		}
	}

	if !haveBaseSize {
		res.AddHint(cpt, "icon-not-found", "icon_fname", name)
		return
	}

	// local paths are meaningless outside the build environment
	kept := cpt.Icons[:0]
	for _, ic := range cpt.Icons {
		if ic.Kind != appstream.IconKindLocal {
			kept = append(kept, ic)
		}
	}
	cpt.Icons = kept
}
