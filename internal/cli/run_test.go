package cli

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/appstream-tools/compose/pkg/compose"
	"github.com/appstream-tools/compose/pkg/unit"
)

func TestUnitsFromArgs(t *testing.T) {
	dir := t.TempDir()
	tarball := filepath.Join(dir, "pkg.tar.gz")
	if err := os.WriteFile(tarball, []byte("stub"), 0o644); err != nil {
		t.Fatal(err)
	}

	units, err := unitsFromArgs([]string{dir, tarball})
	if err != nil {
		t.Fatalf("unitsFromArgs: %v", err)
	}
	if len(units) != 2 {
		t.Fatalf("units = %d, want 2", len(units))
	}
	if _, ok := units[0].(*unit.DirectoryUnit); !ok {
		t.Errorf("units[0] = %T, want *unit.DirectoryUnit", units[0])
	}
	if _, ok := units[1].(*unit.TarUnit); !ok {
		t.Errorf("units[1] = %T, want *unit.TarUnit", units[1])
	}
	if units[0].ID() != filepath.Base(dir) {
		t.Errorf("directory unit id = %q", units[0].ID())
	}
	if units[1].ID() != "pkg" {
		t.Errorf("tar unit id = %q", units[1].ID())
	}
}

func TestUnitsFromArgsErrors(t *testing.T) {
	if _, err := unitsFromArgs([]string{"/does/not/exist"}); err == nil {
		t.Error("missing path should fail")
	}

	plain := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(plain, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := unitsFromArgs([]string{plain}); err == nil {
		t.Error("non-archive file should fail")
	}
}

func TestIsTarball(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"unit.tar", true},
		{"unit.tar.gz", true},
		{"unit.tgz", true},
		{"unit.zip", false},
		{"unit", false},
	}
	for _, tt := range tests {
		if got := isTarball(tt.path); got != tt.want {
			t.Errorf("isTarball(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestSplitList(t *testing.T) {
	got := splitList("org.example.A, org.example.B,,org.example.C ")
	want := []string{"org.example.A", "org.example.B", "org.example.C"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("splitList = %v, want %v", got, want)
	}
	if splitList("") != nil {
		t.Error("empty input should return nil")
	}
}

// Flags set on the command line must win over config file values.
func TestApplyFlagsPrecedence(t *testing.T) {
	c := New(os.Stderr, LogInfo)
	cmd := c.runCommand()
	if err := cmd.Flags().Set("origin", "from-flag"); err != nil {
		t.Fatal(err)
	}
	if err := cmd.Flags().Set("no-net", "true"); err != nil {
		t.Fatal(err)
	}

	s := compose.DefaultSettings()
	s.Origin = "from-config"

	var opts runOpts
	opts.origin, _ = cmd.Flags().GetString("origin")
	opts.noNet, _ = cmd.Flags().GetBool("no-net")
	if err := applyFlags(cmd, &opts, &s); err != nil {
		t.Fatal(err)
	}

	if s.Origin != "from-flag" {
		t.Errorf("origin = %q, want flag value", s.Origin)
	}
	if !s.NoNet {
		t.Error("no-net flag not applied")
	}
	// untouched flags keep the config value
	if s.Format != compose.FormatXML {
		t.Errorf("format = %q, should keep default", s.Format)
	}
}

func TestRootCommandStructure(t *testing.T) {
	c := New(os.Stderr, LogInfo)
	root := c.RootCommand()

	want := map[string]bool{"run": false, "hints": false, "cache": false, "completion": false}
	for _, sub := range root.Commands() {
		if _, ok := want[sub.Name()]; ok {
			want[sub.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("missing subcommand %q", name)
		}
	}
}
