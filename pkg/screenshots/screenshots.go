// Package screenshots downloads, validates and scales the screenshot
// media of a component and rewrites its image and video references to
// point at the exported media pool.
package screenshots

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/appstream-tools/compose/pkg/appstream"
	"github.com/appstream-tools/compose/pkg/httputil"
	"github.com/appstream-tools/compose/pkg/image"
	"github.com/appstream-tools/compose/pkg/observability"
	"github.com/appstream-tools/compose/pkg/result"
	"github.com/appstream-tools/compose/pkg/video"
)

// thumbnailSizes are the target dimensions for generated screenshot
// thumbnails, largest first. Thumbnails are only ever scaled down, a
// source image smaller than a target size produces no thumbnail for it.
var thumbnailSizes = []struct{ Width, Height int }{
	{1248, 702},
	{752, 423},
	{624, 351},
	{224, 126},
}

// ProcessOptions configures screenshot media handling.
type ProcessOptions struct {
	Downloader *httputil.Downloader

	// MediaDir is the root of the exported media pool. Media is stored
	// only when both StoreScreenshots is set and MediaDir is non-empty,
	// otherwise screenshots keep their upstream URLs.
	MediaDir         string
	StoreScreenshots bool

	// ProcessVideos enables downloading and probing of screencast
	// videos. When disabled, video screenshots pass through untouched.
	ProcessVideos bool
}

// ProcessScreenshots fetches all screenshot media of a component,
// generates thumbnails, probes videos and replaces the screenshot list
// with the entries that yielded valid media. Screenshots whose media
// could not be fetched or validated are dropped with a hint.
func ProcessScreenshots(ctx context.Context, res *result.Result, cpt *appstream.Component, opts ProcessOptions) {
	if len(cpt.Screenshots) == 0 || opts.Downloader == nil {
		return
	}

	gcid, err := res.GcidForComponent(cpt)
	if err != nil {
		res.AddHint(cpt, "internal-error", "msg", err.Error())
		return
	}

	store := opts.StoreScreenshots && opts.MediaDir != ""
	var exportDir string
	if store {
		exportDir = filepath.Join(opts.MediaDir, filepath.FromSlash(gcid), "screenshots")
	} else {
		// media still needs a scratch location for validation
		exportDir, err = os.MkdirTemp("", "ascompose-media-")
		if err != nil {
			res.AddHint(cpt, "internal-error", "msg", err.Error())
			return
		}
		defer os.RemoveAll(exportDir)
	}

	// locations are relative to the catalog's media_baseurl, same as
	// cached-remote icon references
	baseURL := gcid + "/screenshots"

	observability.Compose().OnMediaExportStart(ctx, gcid, "screenshots")
	start := time.Now()

	var valid []appstream.Screenshot
	for i, scr := range cpt.Screenshots {
		var processed *appstream.Screenshot
		if scr.IsVideo() {
			processed = processVideoScreenshot(ctx, res, cpt, scr, i+1, exportDir, baseURL, store, opts)
		} else {
			processed = processImageScreenshot(ctx, res, cpt, scr, i+1, exportDir, baseURL, store, opts)
		}
		if processed != nil {
			valid = append(valid, *processed)
		}
	}
	cpt.Screenshots = valid

	observability.Compose().OnMediaExportComplete(ctx, gcid, "screenshots", time.Since(start), nil)
}

// processImageScreenshot downloads the source image of a screenshot for
// every locale it provides one in, stores it and derives thumbnails.
// Returns nil if the screenshot ends up with no usable media.
func processImageScreenshot(ctx context.Context, res *result.Result, cpt *appstream.Component, scr appstream.Screenshot, scrNo int, exportDir, baseURL string, store bool, opts ProcessOptions) *appstream.Screenshot {
	if len(scr.Images) == 0 {
		res.AddHint(cpt, "metainfo-screenshot-but-no-media")
		return nil
	}

	// one source image per locale; metainfo without explicit source
	// entries contributes its first image as the unlocalized one
	var sources []appstream.Image
	seen := make(map[string]bool)
	for _, img := range scr.Images {
		if img.Kind == appstream.ImageKindThumbnail {
			continue
		}
		locale := img.Locale
		if locale == "" {
			locale = "C"
		}
		if seen[locale] {
			continue
		}
		seen[locale] = true
		img.Locale = locale
		sources = append(sources, img)
	}
	if len(sources) == 0 {
		src := scr.Images[0]
		src.Locale = "C"
		sources = append(sources, src)
	}

	out := appstream.Screenshot{Default: scr.Default, Captions: scr.Captions}
	for _, src := range sources {
		if !processSourceImage(ctx, res, cpt, &out, src, scrNo, exportDir, baseURL, store, opts) {
			return nil
		}
	}
	if len(out.Images) == 0 {
		return nil
	}
	return &out
}

// processSourceImage fetches one source image, exports it and appends
// the source and thumbnail entries to the screenshot. Returns false if
// the screenshot must be dropped.
func processSourceImage(ctx context.Context, res *result.Result, cpt *appstream.Component, out *appstream.Screenshot, src appstream.Image, scrNo int, exportDir, baseURL string, store bool, opts ProcessOptions) bool {
	localeSuffix := ""
	if src.Locale != "" && src.Locale != "C" {
		localeSuffix = "_" + src.Locale
	}

	data, err := opts.Downloader.DownloadBytes(ctx, src.URL)
	if err != nil {
		if errors.Is(err, httputil.ErrTooLarge) {
			res.AddHint(cpt, "screenshot-image-too-big",
				"fname", result.FilenameFromURL(src.URL),
				"max_size", formatSize(opts.Downloader.MaxBytes()),
				"size", "> "+formatSize(opts.Downloader.MaxBytes()))
		} else {
			res.AddHint(cpt, "screenshot-download-error", "url", src.URL, "error", err.Error())
		}
		return false
	}

	img, err := image.Load(data)
	if err != nil {
		res.AddHint(cpt, "screenshot-save-error", "url", src.URL, "error", err.Error())
		return false
	}

	if !store {
		// validation only, the catalog keeps the upstream URL
		out.Images = append(out.Images, appstream.Image{
			Kind:   appstream.ImageKindSource,
			URL:    src.URL,
			Width:  img.Width(),
			Height: img.Height(),
			Locale: src.Locale,
		})
		return true
	}

	srcName := fmt.Sprintf("image-%d%s_orig.png", scrNo, localeSuffix)
	if err := img.SavePNG(ctx, filepath.Join(exportDir, srcName)); err != nil {
		res.AddHint(cpt, "screenshot-save-error", "url", src.URL, "error", err.Error())
		return false
	}
	out.Images = append(out.Images, appstream.Image{
		Kind:   appstream.ImageKindSource,
		URL:    baseURL + "/" + srcName,
		Width:  img.Width(),
		Height: img.Height(),
		Locale: src.Locale,
	})

	haveThumbnails := false
	for _, ts := range thumbnailSizes {
		if ts.Width > img.Width() || ts.Height > img.Height() {
			continue
		}

		var thumb *image.Image
		if img.Width() > img.Height() {
			thumb = img.ScaleToWidth(ts.Width)
		} else {
			thumb = img.ScaleToHeight(ts.Height)
		}

		thumbName := fmt.Sprintf("image-%d_%dx%d%s.png", scrNo, thumb.Width(), thumb.Height(), localeSuffix)
		if err := thumb.SavePNG(ctx, filepath.Join(exportDir, thumbName)); err != nil {
			if !res.AddHint(cpt, "screenshot-save-error", "url", src.URL, "error", err.Error()) {
				return false
			}
			continue
		}
		out.Images = append(out.Images, appstream.Image{
			Kind:   appstream.ImageKindThumbnail,
			URL:    baseURL + "/" + thumbName,
			Width:  thumb.Width(),
			Height: thumb.Height(),
			Locale: src.Locale,
		})
		haveThumbnails = true
	}
	if !haveThumbnails {
		res.AddHint(cpt, "screenshot-no-thumbnails", "url", src.URL)
	}
	return true
}

// processVideoScreenshot downloads and probes the screencast videos of
// a screenshot. Unacceptable videos are removed again; returns nil if
// no video survives.
func processVideoScreenshot(ctx context.Context, res *result.Result, cpt *appstream.Component, scr appstream.Screenshot, scrNo int, exportDir, baseURL string, store bool, opts ProcessOptions) *appstream.Screenshot {
	if !opts.ProcessVideos {
		return &scr
	}

	out := appstream.Screenshot{Default: scr.Default, Captions: scr.Captions}
	for i, vid := range scr.Videos {
		if vid.URL == "" {
			continue
		}

		name := fmt.Sprintf("vid%d-%d_%s", scrNo, i+1, result.FilenameFromURL(vid.URL))
		if vid.Locale != "" && vid.Locale != "C" {
			// keep the extension last, the container check relies on it
			ext := path.Ext(name)
			name = strings.TrimSuffix(name, ext) + "_" + vid.Locale + ext
		}
		dest := filepath.Join(exportDir, name)

		if err := opts.Downloader.DownloadToFile(ctx, vid.URL, dest); err != nil {
			if errors.Is(err, httputil.ErrTooLarge) {
				res.AddHint(cpt, "screenshot-video-too-big",
					"fname", name,
					"max_size", formatSize(opts.Downloader.MaxBytes()),
					"size", "> "+formatSize(opts.Downloader.MaxBytes()))
				os.Remove(dest)
				continue
			}
			res.AddHint(cpt, "screenshot-download-error", "url", vid.URL, "error", err.Error())
			return nil
		}

		if video.Available() {
			info, err := video.ProbeFile(ctx, dest)
			if err != nil {
				res.AddHint(cpt, "screenshot-video-check-failed", "fname", name, "msg", err.Error())
				os.Remove(dest)
				continue
			}
			if info.HasAudio() {
				res.AddHint(cpt, "screenshot-video-has-audio", "fname", name)
			}
			if !info.AudioAcceptable() {
				res.AddHint(cpt, "screenshot-video-audio-codec-unsupported",
					"fname", name, "codec", info.AudioCodecName)
			}
			if !info.Acceptable() {
				res.AddHint(cpt, "screenshot-video-format-unsupported",
					"fname", name, "codec", info.CodecName, "container", info.FormatName)
				os.Remove(dest)
				continue
			}
			vid.Codec = info.Codec
			vid.Container = info.Container
			vid.Width = info.Width
			vid.Height = info.Height
		}

		if store {
			vid.URL = baseURL + "/" + name
		}
		out.Videos = append(out.Videos, vid)
	}

	if len(out.Videos) == 0 {
		return nil
	}
	return &out
}

// formatSize renders a byte count with decimal units for hint messages.
func formatSize(n int64) string {
	const unit = 1000
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "kMGT"[exp])
}
