// Package hints implements the diagnostic hint system used during metadata
// composition.
//
// A hint is a tagged, severity-rated diagnostic attached to a component (or
// component-id) while a unit is being processed. Hints carry an explanation
// template with {{placeholder}} variables that is resolved per occurrence.
// The set of known tags lives in a global registry (see tags.go) which maps
// each tag to its severity and explanation template.
//
// Error-severity hints are fatal for the affected component only: the result
// bookkeeping drops the component from the valid set but keeps the hint, so
// a report can still explain why the component is missing from the output.
package hints

import (
	"fmt"
	"strings"
)

// Severity rates how serious a hint is.
type Severity int

// Severity levels, from unset to fatal.
const (
	SeverityUnknown Severity = iota
	SeverityPedantic
	SeverityInfo
	SeverityWarning
	SeverityError
)

// String returns the lowercase name of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityPedantic:
		return "pedantic"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// ParseSeverity converts a severity name to a Severity value.
// Unrecognized names map to SeverityUnknown.
func ParseSeverity(s string) Severity {
	switch s {
	case "pedantic":
		return SeverityPedantic
	case "info":
		return SeverityInfo
	case "warning":
		return SeverityWarning
	case "error":
		return SeverityError
	default:
		return SeverityUnknown
	}
}

// Hint is a single diagnostic occurrence.
//
// The vars slice stores flattened key/value pairs in insertion order: keys at
// even indices, values at odd indices. Order is preserved so reports render
// variables deterministically.
type Hint struct {
	tag             string
	severity        Severity
	explanationTmpl string
	vars            []string
}

// New creates an empty hint. Most callers should use NewForTag instead so
// severity and explanation are filled from the registry.
func New() *Hint {
	return &Hint{}
}

// NewForTag creates a hint for a registered tag.
// It returns an error if the tag is unknown or has no severity assigned.
func NewForTag(tag string) (*Hint, error) {
	td := TagDetails(tag)
	if td == nil || td.Severity == SeverityUnknown {
		return nil, fmt.Errorf("hint tag %q is not registered, unable to create hint", tag)
	}
	return &Hint{
		tag:             td.Tag,
		severity:        td.Severity,
		explanationTmpl: td.Explanation,
	}, nil
}

// Tag returns the unique tag for the type of this hint.
func (h *Hint) Tag() string { return h.tag }

// SetTag sets the unique tag for the type of this hint.
func (h *Hint) SetTag(tag string) { h.tag = tag }

// Severity returns the issue severity of this hint.
func (h *Hint) Severity() Severity { return h.severity }

// SetSeverity sets the issue severity of this hint.
func (h *Hint) SetSeverity(s Severity) { h.severity = s }

// ExplanationTemplate returns the unresolved explanation template.
func (h *Hint) ExplanationTemplate() string { return h.explanationTmpl }

// SetExplanationTemplate sets the explanation template.
func (h *Hint) SetExplanationTemplate(tmpl string) { h.explanationTmpl = tmpl }

// IsError reports whether this hint is fatal for its component.
func (h *Hint) IsError() bool { return h.severity == SeverityError }

// IsValid reports whether the hint has at least a tag and a severity.
func (h *Hint) IsValid() bool { return h.severity != SeverityUnknown && h.tag != "" }

// AddExplanationVar adds a replacement variable for the explanation text.
// Setting a name twice replaces the previous value.
func (h *Hint) AddExplanationVar(name, value string) {
	for i := 0; i < len(h.vars); i += 2 {
		if h.vars[i] == name {
			h.vars[i+1] = value
			return
		}
	}
	h.vars = append(h.vars, name, value)
}

// ExplanationVars returns the flattened key/value pairs for this hint.
// Values are at odd indices, following their keys at even indices.
func (h *Hint) ExplanationVars() []string { return h.vars }

// FormatExplanation resolves the explanation template, replacing all known
// {{placeholder}} variables. Placeholders without a matching variable are
// kept verbatim.
func (h *Hint) FormatExplanation() string {
	if h.explanationTmpl == "" {
		return ""
	}

	parts := strings.Split(h.explanationTmpl, "{{")
	var sb strings.Builder
	sb.WriteString(parts[0])
	for _, part := range parts[1:] {
		replaced := false
		for i := 0; i < len(h.vars); i += 2 {
			prefix := h.vars[i] + "}}"
			if strings.HasPrefix(part, prefix) {
				sb.WriteString(h.vars[i+1])
				sb.WriteString(part[len(prefix):])
				replaced = true
				break
			}
		}
		if !replaced {
			// keep the placeholder in place
			sb.WriteString("{{")
			sb.WriteString(part)
		}
	}
	return sb.String()
}
