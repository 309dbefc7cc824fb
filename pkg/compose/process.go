package compose

import (
	"context"
	"path"
	"strings"
	"time"

	"github.com/appstream-tools/compose/pkg/appstream"
	"github.com/appstream-tools/compose/pkg/fonts"
	"github.com/appstream-tools/compose/pkg/icons"
	"github.com/appstream-tools/compose/pkg/l10n"
	"github.com/appstream-tools/compose/pkg/observability"
	"github.com/appstream-tools/compose/pkg/result"
	"github.com/appstream-tools/compose/pkg/screenshots"
	"github.com/appstream-tools/compose/pkg/unit"
)

// processUnit runs the full composition pipeline for one unit. All
// problems surface as hints on the returned result, never as errors.
func (c *Compose) processUnit(ctx context.Context, u unit.Unit) *result.Result {
	res := result.New(u.ID())
	observability.Compose().OnUnitStart(ctx, u.ID())
	start := time.Now()

	if err := u.Open(ctx); err != nil {
		res.AddHintByCID("", "unit-read-error", "name", u.ID(), "msg", err.Error())
		observability.Compose().OnUnitComplete(ctx, u.ID(), 0, res.HintsCount(), time.Since(start), err)
		return res
	}
	defer u.Close()

	c.loadMetainfo(res, u)
	c.linkDesktopEntries(res, u)

	for _, cpt := range res.Components() {
		cpt.TruncateReleases()
	}

	for _, cpt := range res.Components() {
		// font components get their icons rendered from glyphs instead
		if cpt.Kind == appstream.KindFont {
			continue
		}
		icons.ProcessIcons(ctx, res, cpt, u, icons.ExportOptions{
			Prefix:       c.settings.Prefix,
			MediaDir:     c.settings.MediaDir,
			MediaBaseURL: c.settings.MediaBaseURL,
			Policy:       c.settings.IconPolicy,
		})
	}

	if !c.settings.NoNet {
		for _, cpt := range res.Components() {
			screenshots.ProcessScreenshots(ctx, res, cpt, screenshots.ProcessOptions{
				Downloader:       c.downloader,
				MediaDir:         c.settings.MediaDir,
				StoreScreenshots: c.settings.StoreScreenshots,
				ProcessVideos:    c.settings.AllowScreencasts,
			})
		}
	}

	if c.settings.ProcessFonts {
		fonts.ProcessFonts(ctx, res, u, fonts.ProcessOptions{
			Prefix:           c.settings.Prefix,
			MediaDir:         c.settings.MediaDir,
			Policy:           c.settings.IconPolicy,
			StoreScreenshots: c.settings.StoreScreenshots,
		})
	}

	if c.settings.ProcessTranslations {
		l10n.ProcessTranslationStatus(res, u, c.settings.Prefix, c.settings.MinL10nPercentage)
	}

	// final quality gate, after all processing had its chance to fill
	// in missing data
	for _, cpt := range res.Components() {
		for _, issue := range appstream.CheckQuality(cpt) {
			if !res.AddHint(cpt, issue.Tag, issue.Vars...) {
				break
			}
		}
	}
	for _, cpt := range res.Components() {
		for _, issue := range appstream.CheckIconRequirements(cpt) {
			if !res.AddHint(cpt, issue.Tag, issue.Vars...) {
				break
			}
		}
	}

	c.logger.Info("processed unit",
		"unit", u.ID(),
		"components", res.ComponentsCount(),
		"hints", res.HintsCount(),
		"duration", time.Since(start))
	observability.Compose().OnUnitComplete(ctx, u.ID(),
		res.ComponentsCount(), res.HintsCount(), time.Since(start), nil)
	return res
}

// cidFromMetainfoName guesses a component-id from a metainfo filename,
// used to attach hints when parsing fails before an id is known.
func cidFromMetainfoName(fname string) string {
	base := path.Base(fname)
	for _, suffix := range []string{".metainfo.xml", ".appdata.xml", ".xml"} {
		if strings.HasSuffix(base, suffix) {
			return strings.TrimSuffix(base, suffix)
		}
	}
	return base
}

// loadMetainfo parses all MetaInfo files of the unit into components.
func (c *Compose) loadMetainfo(res *result.Result, u unit.Unit) {
	miDirs := []string{
		c.settings.Prefix + "/share/metainfo",
		c.settings.Prefix + "/share/appdata", // legacy location
	}

	for _, fname := range u.Contents() {
		dir := path.Dir(fname)
		if (dir != miDirs[0] && dir != miDirs[1]) || !strings.HasSuffix(fname, ".xml") {
			continue
		}

		data, err := u.ReadData(fname)
		if err != nil {
			res.AddHintByCID(cidFromMetainfoName(fname), "file-read-error",
				"fname", fname, "msg", err.Error())
			continue
		}

		cpt, err := appstream.ParseMetaInfo(data)
		if err != nil {
			res.AddHintByCID(cidFromMetainfoName(fname), "metainfo-parsing-error",
				"fname", fname, "error", err.Error())
			continue
		}
		if cpt.ID == "" {
			res.AddHintByCID(cidFromMetainfoName(fname), "metainfo-no-id", "fname", fname)
			continue
		}
		if !c.settings.componentAllowed(cpt.ID) {
			continue
		}

		cpt.SourceFile = fname
		if !res.AddComponent(cpt, data) {
			c.logger.Warn("duplicate component-id in unit",
				"id", cpt.ID, "unit", u.ID(), "file", fname)
			continue
		}

		if cpt.Kind == appstream.KindUnknown {
			res.AddHint(cpt, "metainfo-unknown-type")
			continue
		}
		if !appstream.IsMetadataLicense(cpt.MetadataLicense) {
			res.AddHint(cpt, "metainfo-license-invalid")
		}
	}
}

// linkDesktopEntries merges desktop-entry data into the launching
// components and synthesizes components for desktop files without
// metainfo. Launchables pointing at absent desktop files are hinted.
func (c *Compose) linkDesktopEntries(res *result.Result, u unit.Unit) {
	appsDir := c.settings.Prefix + "/share/applications"
	found := make(map[string]bool)

	for _, fname := range u.Contents() {
		if path.Dir(fname) != appsDir || !strings.HasSuffix(fname, ".desktop") {
			continue
		}
		desktopID := path.Base(fname)
		found[desktopID] = true

		data, err := u.ReadData(fname)
		if err != nil {
			res.AddHintByCID(desktopID, "desktop-file-error", "msg", err.Error())
			continue
		}

		if owner := launchingComponent(res, desktopID); owner != nil {
			de, err := appstream.ParseDesktopEntryData(owner, data)
			if err != nil {
				res.AddHint(owner, "desktop-file-error", "msg", err.Error())
				continue
			}
			addDesktopIssues(res, owner, fname, de)
			continue
		}

		if !c.settings.componentAllowed(desktopID) {
			continue
		}

		// no metainfo file claims this desktop file, synthesize a
		// component from the desktop-entry data alone
		cpt := appstream.NewComponent()
		cpt.ID = desktopID
		cpt.Kind = appstream.KindDesktopApp
		cpt.SourceFile = fname
		de, err := appstream.ParseDesktopEntryData(cpt, data)
		if err != nil {
			res.AddHintByCID(desktopID, "desktop-file-error", "msg", err.Error())
			continue
		}
		if de.Skip || de.Ignore {
			continue
		}
		if !res.AddComponent(cpt, data) {
			continue
		}
		addDesktopIssues(res, cpt, fname, de)
		res.AddHint(cpt, "no-metainfo")
	}

	for _, cpt := range res.Components() {
		for _, did := range cpt.DesktopIDs() {
			if !found[did] {
				if !res.AddHint(cpt, "missing-launchable-desktop-file", "desktop_id", did) {
					break
				}
			}
		}
	}
}

// launchingComponent finds the component that launches the given
// desktop-id, either via an explicit launchable tag or the legacy
// id-matches-filename convention.
func launchingComponent(res *result.Result, desktopID string) *appstream.Component {
	for _, cpt := range res.Components() {
		for _, did := range cpt.DesktopIDs() {
			if did == desktopID {
				return cpt
			}
		}
	}
	stem := strings.TrimSuffix(desktopID, ".desktop")
	for _, cpt := range res.Components() {
		if len(cpt.DesktopIDs()) > 0 {
			continue
		}
		if cpt.ID == desktopID || cpt.ID == stem {
			return cpt
		}
	}
	return nil
}

func addDesktopIssues(res *result.Result, cpt *appstream.Component, fname string, de *appstream.DesktopEntry) {
	for _, issue := range de.Issues {
		vars := []string{"location", fname}
		if issue.Hint != "" {
			vars = append(vars, "hint", issue.Hint)
		}
		if !res.AddHint(cpt, issue.Tag, vars...) {
			return
		}
	}
}
