package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/appstream-tools/compose/pkg/compose"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ascompose.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigMissingDefault(t *testing.T) {
	prevDir, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(prevDir) })

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("missing default config should not fail: %v", err)
	}
	if cfg == nil {
		t.Fatal("loadConfig returned nil config")
	}
}

func TestLoadConfigMissingExplicit(t *testing.T) {
	if _, err := loadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("missing explicit config should fail")
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	path := writeConfig(t, "origin = [broken")
	if _, err := loadConfig(path); err == nil {
		t.Error("invalid TOML should fail")
	}
}

func TestConfigApply(t *testing.T) {
	path := writeConfig(t, `
origin = "sid"
prefix = "/opt/app"
format = "yaml"
media_baseurl = "https://media.example.org/pool"
min_l10n_percentage = 40
components = ["org.example.App"]
max_screenshot_size_mib = 2
no_net = true
no_fonts = true
`)
	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatal(err)
	}

	s := compose.DefaultSettings()
	if err := cfg.apply(&s); err != nil {
		t.Fatal(err)
	}

	if s.Origin != "sid" || s.Prefix != "/opt/app" || s.Format != "yaml" {
		t.Errorf("string settings not applied: %+v", s)
	}
	if s.MediaBaseURL != "https://media.example.org/pool" {
		t.Errorf("media_baseurl = %q", s.MediaBaseURL)
	}
	if s.MinL10nPercentage != 40 {
		t.Errorf("min_l10n_percentage = %d", s.MinL10nPercentage)
	}
	if len(s.AllowedComponentIDs) != 1 || s.AllowedComponentIDs[0] != "org.example.App" {
		t.Errorf("components = %v", s.AllowedComponentIDs)
	}
	if s.MaxScreenshotBytes != 2<<20 {
		t.Errorf("max screenshot bytes = %d", s.MaxScreenshotBytes)
	}
	if !s.NoNet {
		t.Error("no_net not applied")
	}
	if s.ProcessFonts {
		t.Error("no_fonts not applied")
	}
	// keys absent from the file keep their defaults
	if !s.StoreScreenshots || !s.ProcessTranslations {
		t.Error("absent keys should keep defaults")
	}
}

func TestConfigApplyInvalidIconPolicy(t *testing.T) {
	cfg := &fileConfig{IconPolicy: "not-a-policy"}
	s := compose.DefaultSettings()
	if err := cfg.apply(&s); err == nil {
		t.Error("invalid icon_policy should fail")
	}
}
