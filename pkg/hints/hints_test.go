package hints

import (
	"sort"
	"strings"
	"testing"
)

func TestNewForTag(t *testing.T) {
	h, err := NewForTag("x-dev-testsuite-error")
	if err != nil {
		t.Fatalf("NewForTag error: %v", err)
	}
	if h.Tag() != "x-dev-testsuite-error" {
		t.Errorf("Tag = %q", h.Tag())
	}
	if h.Severity() != SeverityError {
		t.Errorf("Severity = %v, want error", h.Severity())
	}
	if !h.IsError() {
		t.Error("IsError should be true")
	}
	if !h.IsValid() {
		t.Error("hint from registry should be valid")
	}
}

func TestNewForTagUnknown(t *testing.T) {
	if _, err := NewForTag("this-tag-does-not-exist"); err == nil {
		t.Fatal("expected error for unknown tag")
	}
}

func TestFormatExplanation(t *testing.T) {
	h, err := NewForTag("x-dev-testsuite-info")
	if err != nil {
		t.Fatal(err)
	}
	h.AddExplanationVar("var1", "ValueOne")

	got := h.FormatExplanation()
	want := "Dummy info hint for the testsuite. Var1: ValueOne."
	if got != want {
		t.Errorf("FormatExplanation = %q, want %q", got, want)
	}
}

func TestFormatExplanationKeepsUnknownPlaceholders(t *testing.T) {
	h := New()
	h.SetTag("x-custom")
	h.SetSeverity(SeverityInfo)
	h.SetExplanationTemplate("known: {{a}}, unknown: {{zzz}} end")
	h.AddExplanationVar("a", "1")

	got := h.FormatExplanation()
	want := "known: 1, unknown: {{zzz}} end"
	if got != want {
		t.Errorf("FormatExplanation = %q, want %q", got, want)
	}
}

func TestFormatExplanationMultipleVars(t *testing.T) {
	h := New()
	h.SetExplanationTemplate("{{a}}-{{b}}-{{a}}")
	h.AddExplanationVar("a", "x")
	h.AddExplanationVar("b", "y")

	if got := h.FormatExplanation(); got != "x-y-x" {
		t.Errorf("FormatExplanation = %q, want x-y-x", got)
	}
}

func TestAddExplanationVarReplaces(t *testing.T) {
	h := New()
	h.AddExplanationVar("k", "v1")
	h.AddExplanationVar("k", "v2")

	vars := h.ExplanationVars()
	if len(vars) != 2 {
		t.Fatalf("expected one pair, got %v", vars)
	}
	if vars[1] != "v2" {
		t.Errorf("value = %q, want v2", vars[1])
	}
}

func TestVarsOrderPreserved(t *testing.T) {
	h := New()
	h.AddExplanationVar("first", "1")
	h.AddExplanationVar("second", "2")
	h.AddExplanationVar("third", "3")

	vars := h.ExplanationVars()
	want := []string{"first", "1", "second", "2", "third", "3"}
	if len(vars) != len(want) {
		t.Fatalf("vars = %v", vars)
	}
	for i := range want {
		if vars[i] != want[i] {
			t.Errorf("vars[%d] = %q, want %q", i, vars[i], want[i])
		}
	}
}

func TestIsValid(t *testing.T) {
	h := New()
	if h.IsValid() {
		t.Error("empty hint should be invalid")
	}
	h.SetTag("something")
	if h.IsValid() {
		t.Error("hint without severity should be invalid")
	}
	h.SetSeverity(SeverityInfo)
	if !h.IsValid() {
		t.Error("hint with tag and severity should be valid")
	}
}

func TestSeverityRoundtrip(t *testing.T) {
	for _, s := range []Severity{SeverityPedantic, SeverityInfo, SeverityWarning, SeverityError} {
		if got := ParseSeverity(s.String()); got != s {
			t.Errorf("ParseSeverity(%q) = %v, want %v", s.String(), got, s)
		}
	}
	if ParseSeverity("bogus") != SeverityUnknown {
		t.Error("unknown name should parse to SeverityUnknown")
	}
}

func TestRegisterTag(t *testing.T) {
	ok := RegisterTag(TagDef{
		Tag:         "x-test-custom-tag",
		Severity:    SeverityWarning,
		Explanation: "Custom: {{detail}}",
	})
	if !ok {
		t.Fatal("RegisterTag should succeed for a complete definition")
	}

	h, err := NewForTag("x-test-custom-tag")
	if err != nil {
		t.Fatalf("NewForTag after register: %v", err)
	}
	if h.Severity() != SeverityWarning {
		t.Errorf("Severity = %v, want warning", h.Severity())
	}

	if RegisterTag(TagDef{Tag: "incomplete"}) {
		t.Error("RegisterTag should reject incomplete definitions")
	}
}

func TestBuiltinTagsComplete(t *testing.T) {
	names := Tags()
	sort.Strings(names)

	for _, must := range []string{
		"internal-error",
		"duplicate-component",
		"metainfo-license-invalid",
		"screenshot-no-thumbnails",
		"gui-app-without-icon",
		"no-metainfo",
	} {
		i := sort.SearchStrings(names, must)
		if i >= len(names) || names[i] != must {
			t.Errorf("builtin tag %q missing from registry", must)
		}
	}

	// every builtin definition must be complete
	for _, name := range names {
		td := TagDetails(name)
		if td.Severity == SeverityUnknown {
			t.Errorf("tag %q has no severity", name)
		}
		if strings.TrimSpace(td.Explanation) == "" {
			t.Errorf("tag %q has no explanation", name)
		}
	}
}
