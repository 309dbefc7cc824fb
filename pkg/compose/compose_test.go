package compose

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/appstream-tools/compose/pkg/result"
	"github.com/appstream-tools/compose/pkg/unit"
)

const appMetainfo = `<?xml version="1.0" encoding="UTF-8"?>
<component type="desktop-application">
  <id>org.example.App</id>
  <metadata_license>MIT</metadata_license>
  <project_license>GPL-3.0-or-later</project_license>
  <name>Example App</name>
  <summary>A small example application</summary>
  <description><p>A longer description of the example application.</p></description>
  <categories>
    <category>Utility</category>
  </categories>
  <icon type="stock">exampleapp</icon>
  <launchable type="desktop-id">org.example.App.desktop</launchable>
</component>
`

const appDesktopEntry = `[Desktop Entry]
Type=Application
Name=Example App
Name[de]=Beispielanwendung
Comment=A small example application
Icon=exampleapp
Categories=Utility;
Exec=exampleapp
`

func writeTree(t *testing.T, root string, files map[string][]byte) {
	t.Helper()
	for name, data := range files {
		dest := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(dest, data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func iconPNG(t *testing.T, size int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 0x20, A: 0xff})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// appUnit builds a unit tree with a metainfo file, desktop entry and icon.
func appUnit(t *testing.T) *unit.DirectoryUnit {
	t.Helper()
	root := t.TempDir()
	writeTree(t, root, map[string][]byte{
		"usr/share/metainfo/org.example.App.metainfo.xml":       []byte(appMetainfo),
		"usr/share/applications/org.example.App.desktop":        []byte(appDesktopEntry),
		"usr/share/icons/hicolor/128x128/apps/exampleapp.png":   iconPNG(t, 128),
		"usr/share/icons/hicolor/128x128@2/apps/exampleapp.png": iconPNG(t, 256),
	})
	u := unit.NewDirectoryUnit(root)
	u.SetID("example-app")
	return u
}

func testSettings(t *testing.T) Settings {
	t.Helper()
	s := DefaultSettings()
	s.Origin = "test-origin"
	s.DataDir = t.TempDir()
	s.MediaDir = t.TempDir()
	s.HintsDir = t.TempDir()
	s.NoNet = true
	return s
}

func findHint(results []*result.Result, cid, tag string) bool {
	for _, res := range results {
		for _, h := range res.Hints(cid) {
			if h.Tag() == tag {
				return true
			}
		}
	}
	return false
}

func TestSettingsValidation(t *testing.T) {
	s := Settings{}
	if err := s.ValidateAndSetDefaults(); err == nil {
		t.Error("missing origin should fail validation")
	}

	s = Settings{Origin: "sid", Format: "toml"}
	if err := s.ValidateAndSetDefaults(); err == nil {
		t.Error("unknown format should fail validation")
	}

	s = Settings{Origin: "sid", AllowedComponentIDs: []string{"bad id"}}
	if err := s.ValidateAndSetDefaults(); err == nil {
		t.Error("invalid allow-list id should fail validation")
	}

	s = Settings{Origin: "sid"}
	if err := s.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("valid settings rejected: %v", err)
	}
	if s.Prefix != "/usr" || s.Format != FormatXML || s.MinL10nPercentage != 25 {
		t.Errorf("defaults not applied: %+v", s)
	}
}

func TestRunComposesUnit(t *testing.T) {
	s := testSettings(t)
	c, err := NewCompose(s)
	if err != nil {
		t.Fatal(err)
	}
	c.AddUnit(appUnit(t))

	results, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("results = %d", len(results))
	}

	res := results[0]
	cpt := res.Component("org.example.App")
	if cpt == nil {
		t.Fatalf("component missing, hints: %v", res.ComponentIDsWithHints())
	}
	if cpt.Name() != "Example App" {
		t.Errorf("name = %q", cpt.Name())
	}
	// desktop-entry translations merged in
	if cpt.Names["de"] != "Beispielanwendung" {
		t.Errorf("localized name = %q", cpt.Names["de"])
	}
	// icon processing exported a cached icon
	hasCached := false
	for _, ic := range cpt.Icons {
		if ic.Name == "org.example.App.png" {
			hasCached = true
		}
	}
	if !hasCached {
		t.Errorf("no cached icon recorded: %+v", cpt.Icons)
	}

	// catalog output
	data, err := os.ReadFile(filepath.Join(s.DataDir, "test-origin.xml.gz"))
	if err != nil {
		t.Fatalf("catalog not written: %v", err)
	}
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	xmlData, err := io.ReadAll(zr)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(xmlData), "<id>org.example.App</id>") {
		t.Error("catalog does not contain the component")
	}
	if !strings.Contains(string(xmlData), `origin="test-origin"`) {
		t.Error("catalog does not carry the origin")
	}
}

func TestRunYAMLOutput(t *testing.T) {
	s := testSettings(t)
	s.Format = FormatYAML
	c, err := NewCompose(s)
	if err != nil {
		t.Fatal(err)
	}
	c.AddUnit(appUnit(t))

	if _, err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(s.DataDir, "test-origin.yml.gz"))
	if err != nil {
		t.Fatalf("catalog not written: %v", err)
	}
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	ymlData, err := io.ReadAll(zr)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(ymlData), "org.example.App") {
		t.Error("catalog does not contain the component")
	}
}

func TestRunDuplicateComponents(t *testing.T) {
	s := testSettings(t)
	c, err := NewCompose(s)
	if err != nil {
		t.Fatal(err)
	}
	c.AddUnit(appUnit(t))
	c.AddUnit(appUnit(t))

	results, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	valid := 0
	for _, res := range results {
		if res.Component("org.example.App") != nil {
			valid++
		}
	}
	if valid != 1 {
		t.Errorf("valid copies = %d, want exactly one", valid)
	}
	if !findHint(results, "org.example.App", "duplicate-component") {
		t.Error("missing duplicate-component hint on the losing unit")
	}
}

func TestRunSynthesizesFromDesktopFile(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string][]byte{
		"usr/share/applications/org.example.Plain.desktop": []byte(appDesktopEntry),
	})
	u := unit.NewDirectoryUnit(root)
	u.SetID("plain-app")

	s := testSettings(t)
	c, err := NewCompose(s)
	if err != nil {
		t.Fatal(err)
	}
	c.AddUnit(u)

	results, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// the reverse-domain id loses its .desktop suffix during parsing
	if !findHint(results, "org.example.Plain", "no-metainfo") {
		t.Error("missing no-metainfo hint")
	}
	// the desktop file names a stock icon the unit does not ship, so
	// icon processing invalidates the synthesized component again
	if !findHint(results, "org.example.Plain", "icon-not-found") {
		t.Error("missing icon-not-found hint")
	}
	if results[0].Component("org.example.Plain") != nil {
		t.Error("synthesized component without icon should not stay valid")
	}
}

func TestRunMissingLaunchable(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string][]byte{
		"usr/share/metainfo/org.example.App.metainfo.xml":     []byte(appMetainfo),
		"usr/share/icons/hicolor/128x128/apps/exampleapp.png": iconPNG(t, 128),
	})
	u := unit.NewDirectoryUnit(root)
	u.SetID("no-desktop")

	s := testSettings(t)
	c, err := NewCompose(s)
	if err != nil {
		t.Fatal(err)
	}
	c.AddUnit(u)

	results, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !findHint(results, "org.example.App", "missing-launchable-desktop-file") {
		t.Error("missing missing-launchable-desktop-file hint")
	}
}

func TestRunInvalidMetainfo(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string][]byte{
		"usr/share/metainfo/org.example.Broken.metainfo.xml": []byte("<component><unclosed>"),
	})
	u := unit.NewDirectoryUnit(root)
	u.SetID("broken")

	s := testSettings(t)
	c, err := NewCompose(s)
	if err != nil {
		t.Fatal(err)
	}
	c.AddUnit(u)

	results, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if results[0].ComponentsCount() != 0 {
		t.Errorf("components = %d, want 0", results[0].ComponentsCount())
	}
	if !findHint(results, "org.example.Broken", "metainfo-parsing-error") {
		t.Error("missing metainfo-parsing-error hint")
	}
}

func TestRunAllowList(t *testing.T) {
	s := testSettings(t)
	s.AllowedComponentIDs = []string{"org.example.Other"}
	c, err := NewCompose(s)
	if err != nil {
		t.Fatal(err)
	}
	c.AddUnit(appUnit(t))

	results, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if results[0].Component("org.example.App") != nil {
		t.Error("component outside the allow-list was processed")
	}
}

func TestRunHintsReport(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string][]byte{
		"usr/share/metainfo/org.example.Broken.metainfo.xml": []byte("not xml at all"),
	})
	u := unit.NewDirectoryUnit(root)
	u.SetID("broken")

	s := testSettings(t)
	c, err := NewCompose(s)
	if err != nil {
		t.Fatal(err)
	}
	c.AddUnit(u)

	if _, err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(s.HintsDir, "test-origin.hints.json"))
	if err != nil {
		t.Fatalf("hints report not written: %v", err)
	}
	var report []UnitHintReport
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if len(report) != 1 || report[0].Unit != "broken" {
		t.Fatalf("report = %+v", report)
	}
}

func TestRunNoUnits(t *testing.T) {
	c, err := NewCompose(testSettings(t))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Run(context.Background()); err == nil {
		t.Error("run without units should fail")
	}
}
