package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/appstream-tools/compose/pkg/compose"
)

func sampleReport() compose.UnitHintReport {
	return compose.UnitHintReport{
		Unit: "example-unit",
		Components: map[string][]compose.HintReportEntry{
			"org.example.App": {
				{Tag: "no-metainfo", Severity: "warning", Explanation: "No MetaInfo file found."},
				{Tag: "icon-not-found", Severity: "error"},
			},
			"": {
				{Tag: "unit-read-error", Severity: "error", Explanation: "Could not open unit."},
			},
		},
	}
}

func TestUnitHintLines(t *testing.T) {
	lines := unitHintLines(sampleReport(), "")

	// two hints with explanations, one without
	if len(lines) != 5 {
		t.Fatalf("lines = %d, want 5: %v", len(lines), lines)
	}
	joined := strings.Join(lines, "\n")
	for _, want := range []string{"no-metainfo", "icon-not-found", "unit-read-error", "(unit)"} {
		if !strings.Contains(joined, want) {
			t.Errorf("output missing %q", want)
		}
	}
	// components sorted, unit-level hints (empty id) first
	if !strings.Contains(lines[0], "unit-read-error") {
		t.Errorf("first line = %q, want unit-level hint", lines[0])
	}
}

func TestUnitHintLinesSeverityFilter(t *testing.T) {
	lines := unitHintLines(sampleReport(), "warning")

	joined := strings.Join(lines, "\n")
	if !strings.Contains(joined, "no-metainfo") {
		t.Error("warning hint missing")
	}
	if strings.Contains(joined, "icon-not-found") {
		t.Error("error hint should be filtered out")
	}
}

func TestRenderHintsReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.hints.json")
	data := `[{"unit":"u1","components":{"org.example.App":[{"tag":"no-metainfo","severity":"warning","explanation":"x"}]}}]`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := renderHintsReport(path, ""); err != nil {
		t.Errorf("renderHintsReport: %v", err)
	}
	if err := renderHintsReport(path, "error"); err != nil {
		t.Errorf("renderHintsReport with filter: %v", err)
	}
}

func TestRenderHintsReportErrors(t *testing.T) {
	if err := renderHintsReport(filepath.Join(t.TempDir(), "missing.json"), ""); err == nil {
		t.Error("missing report should fail")
	}

	bad := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(bad, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := renderHintsReport(bad, ""); err == nil {
		t.Error("invalid JSON should fail")
	}
}
