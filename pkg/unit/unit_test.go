package unit

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func writeTestTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"usr/share/metainfo/org.example.Foo.metainfo.xml": "<component/>",
		"usr/share/applications/org.example.Foo.desktop":  "[Desktop Entry]",
		"usr/bin/foo": "#!/bin/sh",
	}
	for name, content := range files {
		full := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestDirectoryUnit(t *testing.T) {
	root := writeTestTree(t)
	u := NewDirectoryUnit(root)
	u.AddRelevantPath("/usr/share/metainfo")
	u.AddRelevantPath("/usr/share/metainfo")

	if err := u.Open(context.Background()); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer u.Close()

	if u.BundleKind() != BundleKindPackage {
		t.Errorf("BundleKind = %v", u.BundleKind())
	}
	if got := u.RelevantPaths(); len(got) != 1 {
		t.Errorf("RelevantPaths = %v, duplicates should be ignored", got)
	}

	contents := append([]string(nil), u.Contents()...)
	sort.Strings(contents)
	want := []string{
		"/usr/bin/foo",
		"/usr/share/applications/org.example.Foo.desktop",
		"/usr/share/metainfo/org.example.Foo.metainfo.xml",
	}
	if len(contents) != len(want) {
		t.Fatalf("Contents = %v", contents)
	}
	for i := range want {
		if contents[i] != want[i] {
			t.Errorf("Contents[%d] = %q, want %q", i, contents[i], want[i])
		}
	}

	if !u.FileExists("/usr/bin/foo") {
		t.Error("FileExists(/usr/bin/foo) should be true")
	}
	if u.FileExists("/usr/bin") {
		t.Error("FileExists on a directory should be false")
	}
	if !u.DirExists("/usr/share/metainfo") {
		t.Error("DirExists(/usr/share/metainfo) should be true")
	}
	if u.DirExists("/nonexistent") {
		t.Error("DirExists(/nonexistent) should be false")
	}

	data, err := u.ReadData("/usr/share/metainfo/org.example.Foo.metainfo.xml")
	if err != nil {
		t.Fatalf("ReadData: %v", err)
	}
	if string(data) != "<component/>" {
		t.Errorf("ReadData = %q", data)
	}

	if _, err := u.ReadData("/no/such/file"); err == nil {
		t.Error("ReadData should fail for missing files")
	}
}

func TestDirectoryUnitPathEscape(t *testing.T) {
	root := writeTestTree(t)
	u := NewDirectoryUnit(root)
	if err := u.Open(context.Background()); err != nil {
		t.Fatal(err)
	}

	if u.FileExists("../../../etc/passwd") {
		t.Error("paths must not escape the unit root")
	}
}

func TestDirectoryUnitOpenMissing(t *testing.T) {
	u := NewDirectoryUnit("/definitely/not/here")
	if err := u.Open(context.Background()); err == nil {
		t.Fatal("Open should fail for a missing directory")
	}
}

func writeTestTarball(t *testing.T, gz bool) string {
	t.Helper()
	name := "unit-test.tar"
	if gz {
		name += ".gz"
	}
	fname := filepath.Join(t.TempDir(), name)
	f, err := os.Create(fname)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var tw *tar.Writer
	if gz {
		zw := gzip.NewWriter(f)
		defer zw.Close()
		tw = tar.NewWriter(zw)
	} else {
		tw = tar.NewWriter(f)
	}
	defer tw.Close()

	add := func(name, content string) {
		if err := tw.WriteHeader(&tar.Header{
			Name: name,
			Mode: 0o644,
			Size: int64(len(content)),
		}); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	add("./usr/share/metainfo/org.example.Bar.metainfo.xml", "<component/>")
	add("./usr/bin/bar", "binary")

	if err := tw.WriteHeader(&tar.Header{
		Name:     "./usr/bin/bar-link",
		Typeflag: tar.TypeSymlink,
		Linkname: "bar",
	}); err != nil {
		t.Fatal(err)
	}
	return fname
}

func TestTarUnit(t *testing.T) {
	for _, gz := range []bool{false, true} {
		fname := writeTestTarball(t, gz)
		u := NewTarUnit(fname)

		if err := u.Open(context.Background()); err != nil {
			t.Fatalf("Open(gz=%v): %v", gz, err)
		}
		if u.BundleKind() != BundleKindTarball {
			t.Errorf("BundleKind = %v", u.BundleKind())
		}
		if u.ID() != "unit-test" {
			t.Errorf("ID = %q", u.ID())
		}

		if !u.FileExists("/usr/share/metainfo/org.example.Bar.metainfo.xml") {
			t.Error("metainfo file should exist")
		}
		if !u.DirExists("/usr/share/metainfo") {
			t.Error("parent directories should be derived from members")
		}

		// symlinks resolve to their target's data
		data, err := u.ReadData("/usr/bin/bar-link")
		if err != nil {
			t.Fatalf("ReadData through symlink: %v", err)
		}
		if string(data) != "binary" {
			t.Errorf("symlink data = %q", data)
		}

		if len(u.Contents()) != 3 {
			t.Errorf("Contents = %v", u.Contents())
		}

		u.Close()
		if u.FileExists("/usr/bin/bar") {
			t.Error("closed unit should not report files")
		}
	}
}
