package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/appstream-tools/compose/pkg/compose"
)

// hintsCommand creates the hints command for inspecting hint reports.
func (c *CLI) hintsCommand() *cobra.Command {
	var severityFilter string

	cmd := &cobra.Command{
		Use:   "hints [report.hints.json]",
		Short: "Pretty-print a hints report",
		Long: `Pretty-print the JSON hints report written by a compose run,
grouped by unit and component.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return renderHintsReport(args[0], severityFilter)
		},
	}

	cmd.Flags().StringVar(&severityFilter, "severity", "", "only show hints of this severity: error, warning, info, pedantic")

	return cmd
}

func renderHintsReport(path, severityFilter string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading hints report: %w", err)
	}

	var report []compose.UnitHintReport
	if err := json.Unmarshal(data, &report); err != nil {
		return fmt.Errorf("parsing hints report %s: %w", path, err)
	}
	if len(report) == 0 {
		printInfo("No hints recorded")
		return nil
	}

	total := 0
	for _, ur := range report {
		shown := unitHintLines(ur, severityFilter)
		if len(shown) == 0 {
			continue
		}
		fmt.Println(paint(sgrCyan, ur.Unit))
		for _, line := range shown {
			fmt.Println(line)
			total++
		}
		fmt.Println()
	}

	if total == 0 {
		printInfo("No hints match severity %q", severityFilter)
		return nil
	}
	printDetail("%d hint(s)", total)
	return nil
}

// unitHintLines formats the hints of one unit, components in stable order.
func unitHintLines(ur compose.UnitHintReport, severityFilter string) []string {
	cids := make([]string, 0, len(ur.Components))
	for cid := range ur.Components {
		cids = append(cids, cid)
	}
	sort.Strings(cids)

	var lines []string
	for _, cid := range cids {
		label := cid
		if label == "" {
			label = "(unit)"
		}
		for _, entry := range ur.Components[cid] {
			if severityFilter != "" && entry.Severity != severityFilter {
				continue
			}
			lines = append(lines, fmt.Sprintf("  %s %s: %s",
				paint(severityColor(entry.Severity), entry.Severity),
				label, entry.Tag))
			if entry.Explanation != "" {
				lines = append(lines, "    "+paint(sgrDim, entry.Explanation))
			}
		}
	}
	return lines
}
