package compose

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/appstream-tools/compose/pkg/result"
)

// HintReportEntry is one hint occurrence in the JSON hints report.
type HintReportEntry struct {
	Tag         string            `json:"tag"`
	Severity    string            `json:"severity"`
	Explanation string            `json:"explanation"`
	Vars        map[string]string `json:"vars,omitempty"`
}

// UnitHintReport groups the hints of one unit by component-id. The
// empty id key collects unit-level hints.
type UnitHintReport struct {
	Unit       string                       `json:"unit"`
	Components map[string][]HintReportEntry `json:"components"`
}

// BuildHintsReport collects all hints from the results into a
// serializable report, skipping units without any hints.
func BuildHintsReport(results []*result.Result) []UnitHintReport {
	var report []UnitHintReport
	for _, res := range results {
		cids := res.ComponentIDsWithHints()
		if len(cids) == 0 {
			continue
		}

		ur := UnitHintReport{
			Unit:       res.UnitID(),
			Components: make(map[string][]HintReportEntry),
		}
		for _, cid := range cids {
			for _, h := range res.Hints(cid) {
				entry := HintReportEntry{
					Tag:         h.Tag(),
					Severity:    h.Severity().String(),
					Explanation: h.FormatExplanation(),
				}
				vars := h.ExplanationVars()
				if len(vars) > 0 {
					entry.Vars = make(map[string]string, len(vars)/2)
					for i := 0; i+1 < len(vars); i += 2 {
						entry.Vars[vars[i]] = vars[i+1]
					}
				}
				ur.Components[cid] = append(ur.Components[cid], entry)
			}
		}
		report = append(report, ur)
	}
	return report
}

// writeHintsReport stores the hints report of a run as JSON.
func (c *Compose) writeHintsReport(results []*result.Result) error {
	if c.settings.HintsDir == "" {
		return nil
	}

	report := BuildHintsReport(results)
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("serializing hints report: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(c.settings.HintsDir, 0o755); err != nil {
		return err
	}
	dest := filepath.Join(c.settings.HintsDir, c.settings.Origin+".hints.json")
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return fmt.Errorf("writing hints report %s: %w", dest, err)
	}

	hintCount := 0
	for _, res := range results {
		hintCount += res.HintsCount()
	}
	c.logger.Info("hints report written", "file", dest, "hints", hintCount)
	return nil
}
