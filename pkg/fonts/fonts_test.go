package fonts

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/flopp/go-findfont"

	"github.com/appstream-tools/compose/pkg/appstream"
	"github.com/appstream-tools/compose/pkg/result"
	"github.com/appstream-tools/compose/pkg/unit"
)

type memUnit struct {
	files map[string][]byte
}

func (u *memUnit) ID() string                        { return "mem" }
func (u *memUnit) BundleKind() unit.BundleKind       { return unit.BundleKindUnknown }
func (u *memUnit) RelevantPaths() []string           { return nil }
func (u *memUnit) Open(ctx context.Context) error    { return nil }
func (u *memUnit) Close() error                      { return nil }
func (u *memUnit) FileExists(name string) bool       { _, ok := u.files[name]; return ok }
func (u *memUnit) DirExists(name string) bool        { return false }
func (u *memUnit) ReadData(n string) ([]byte, error) { return u.files[n], nil }

func (u *memUnit) Contents() []string {
	var out []string
	for name := range u.files {
		out = append(out, name)
	}
	return out
}

// systemFontData locates a TrueType font on the test machine. Rendering
// tests are skipped when none is available.
func systemFontData(t *testing.T) []byte {
	t.Helper()
	for _, name := range []string{"DejaVuSans.ttf", "LiberationSans-Regular.ttf", "FreeSans.ttf"} {
		path, err := findfont.Find(name)
		if err != nil {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		return data
	}
	t.Skip("no system TrueType font found")
	return nil
}

func TestFindPangramStable(t *testing.T) {
	f1 := &Font{family: "Noto Sans"}
	f2 := &Font{family: "Noto Sans"}
	p := f1.FindPangram("en", "")
	if p == "" {
		t.Fatal("no pangram selected")
	}
	if p != f2.FindPangram("en", "") {
		t.Error("same family should select the same pangram")
	}
	if f1.FindPangram("de", "") != "" {
		t.Error("only English has pangrams")
	}
}

func TestSetSampleIconTextLimit(t *testing.T) {
	f := &Font{}
	f.SetSampleIconText("ABCD")
	if f.sampleIconText != "" {
		t.Error("icon text longer than 3 chars must be rejected")
	}
	f.SetSampleIconText("Aa")
	if f.sampleIconText != "Aa" {
		t.Errorf("icon text = %q", f.sampleIconText)
	}
}

func TestTruncateRunes(t *testing.T) {
	if got := truncateRunes("Hello", 3); got != "Hel" {
		t.Errorf("truncateRunes = %q", got)
	}
	if got := truncateRunes("Aa", 3); got != "Aa" {
		t.Errorf("truncateRunes = %q", got)
	}
	if got := truncateRunes("äöü unneeded", 3); got != "äöü" {
		t.Errorf("truncateRunes = %q", got)
	}
}

func TestSelectFontsRegularPreferred(t *testing.T) {
	fonts := map[string]*Font{
		"demo bold":    {family: "Demo", style: "Bold"},
		"demo italic":  {family: "Demo", style: "Italic"},
		"demo regular": {family: "Demo", style: "Regular"},
	}
	cpt := appstream.NewComponent()

	selected := selectFonts(cpt, fonts)
	if len(selected) != 3 {
		t.Fatalf("selected %d fonts", len(selected))
	}
	if selected[0].Style() != "Regular" {
		t.Errorf("first font = %q, the regular face renders the samples", selected[0].Style())
	}
}

func TestSelectFontsByHint(t *testing.T) {
	fonts := map[string]*Font{
		"demo bold":    {family: "Demo", style: "Bold"},
		"demo regular": {family: "Demo", style: "Regular"},
	}
	cpt := appstream.NewComponent()
	cpt.Provides.Fonts = []string{"Demo Bold", "Unknown Face"}

	selected := selectFonts(cpt, fonts)
	if len(selected) != 1 || selected[0].Style() != "Bold" {
		t.Errorf("selected = %+v", selected)
	}
}

func TestFontFromSystemFile(t *testing.T) {
	f, err := NewFont(systemFontData(t), "test.ttf")
	if err != nil {
		t.Fatalf("NewFont: %v", err)
	}

	if f.Family() == "" {
		t.Error("no family name")
	}
	if !strings.Contains(f.ID(), "-") {
		t.Errorf("id = %q", f.ID())
	}
	if !f.CanRender('A') {
		t.Error("latin font should render 'A'")
	}
	if f.SampleText() == "" {
		t.Error("no sample text determined")
	}
	if n := len([]rune(f.SampleIconText())); n == 0 || n > 3 {
		t.Errorf("icon text = %q", f.SampleIconText())
	}

	img, err := f.RenderIcon(64)
	if err != nil {
		t.Fatalf("RenderIcon: %v", err)
	}
	if img.Width() != 64 || img.Height() != 64 {
		t.Errorf("icon is %dx%d", img.Width(), img.Height())
	}
}

func TestProcessFonts(t *testing.T) {
	data := systemFontData(t)
	probe, err := NewFont(data, "probe.ttf")
	if err != nil {
		t.Fatalf("NewFont: %v", err)
	}

	u := &memUnit{files: map[string][]byte{
		"/usr/share/fonts/truetype/test.ttf": data,
	}}
	res := result.New("mem")
	cpt := appstream.NewComponent()
	cpt.ID = "org.example.DemoFont"
	cpt.Kind = appstream.KindFont
	cpt.Provides.Fonts = []string{probe.Fullname()}
	res.AddComponent(cpt, []byte("x"))
	mediaDir := t.TempDir()

	ProcessFonts(context.Background(), res, u, ProcessOptions{
		Prefix:           "/usr",
		MediaDir:         mediaDir,
		StoreScreenshots: true,
	})

	if res.Component("org.example.DemoFont") == nil {
		t.Fatalf("component invalidated, hints: %+v", res.Hints("org.example.DemoFont"))
	}
	if !cpt.HasIconOfKind(appstream.IconKindCached) {
		t.Error("no cached icon rendered")
	}
	if len(cpt.Screenshots) == 0 {
		t.Fatal("no specimen screenshots attached")
	}
	if !cpt.Screenshots[0].Default {
		t.Error("first specimen screenshot should be the default")
	}
	found := false
	for _, l := range cpt.Languages {
		if l.Locale == "en" && l.Percentage == 100 {
			found = true
		}
	}
	if !found {
		t.Errorf("languages = %+v", cpt.Languages)
	}

	gcid, err := res.GcidForComponent(cpt)
	if err != nil {
		t.Fatal(err)
	}
	iconPath := filepath.Join(mediaDir, filepath.FromSlash(gcid),
		"icons", "64x64", "mem_"+probe.ID()+".png")
	if _, err := os.Stat(iconPath); err != nil {
		t.Errorf("exported icon: %v", err)
	}
}

// An empty media dir disables the icon export but keeps the validation.
func TestProcessFontsNoMediaDir(t *testing.T) {
	prevDir, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(prevDir) })

	u := &memUnit{files: map[string][]byte{
		"/usr/share/fonts/truetype/test.ttf": systemFontData(t),
	}}
	res := result.New("mem")
	cpt := appstream.NewComponent()
	cpt.ID = "org.example.DemoFont"
	cpt.Kind = appstream.KindFont
	res.AddComponent(cpt, []byte("x"))

	ProcessFonts(context.Background(), res, u, ProcessOptions{Prefix: "/usr"})

	if res.Component("org.example.DemoFont") == nil {
		t.Fatalf("component invalidated, hints: %+v", res.Hints("org.example.DemoFont"))
	}
	// nothing may leak into the working directory
	if _, err := os.Stat("org"); !os.IsNotExist(err) {
		t.Error("icon tree was written without a media dir")
	}
}

func TestProcessFontsNoFontFiles(t *testing.T) {
	res := result.New("mem")
	cpt := appstream.NewComponent()
	cpt.ID = "org.example.GhostFont"
	cpt.Kind = appstream.KindFont
	res.AddComponent(cpt, []byte("x"))

	ProcessFonts(context.Background(), res, &memUnit{}, ProcessOptions{Prefix: "/usr"})

	hs := res.Hints("org.example.GhostFont")
	if len(hs) != 1 || hs[0].Tag() != "font-metainfo-but-no-font" {
		t.Fatalf("hints = %+v", hs)
	}
	if res.Component("org.example.GhostFont") != nil {
		t.Error("font component without font files is invalid")
	}
}
