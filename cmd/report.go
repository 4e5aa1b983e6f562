package cmd

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/clubdata/clubsync/reconcile"
)

// printReport renders a reconciliation report the way `migrate` tools list
// applied and pending work: one line per unit, then a summary.
func printReport(report *reconcile.Report) {
	for _, out := range report.Outcomes {
		unit := out.Table
		if out.Column != "" {
			unit = fmt.Sprintf("%s.%s", out.Table, out.Column)
		}

		switch out.Status {
		case reconcile.StatusApplied:
			fmt.Printf("   ✅ %s: %s applied\n", unit, out.Action)
		case reconcile.StatusPlanned:
			fmt.Printf("   🕒 %s: %s planned\n", unit, out.Action)
			for _, stmt := range out.Statements {
				fmt.Printf("      %s\n", stmt)
			}
		case reconcile.StatusSkipped:
			fmt.Printf("   ⏭️  %s: %s skipped (%s)\n", unit, out.Action, out.Reason)
		case reconcile.StatusFailed:
			fmt.Printf("   ❌ %s: %s failed [%s]: %v\n", unit, out.Action, out.Kind, out.Err)
		}
	}

	failed := len(report.Failed())
	if failed > 0 {
		color.Red("❌ %d unit(s) failed, %d applied, %d skipped (%d DDL statements)",
			failed, len(report.Applied()), len(report.Skipped()), report.StatementCount())
		return
	}
	color.Green("✅ %d applied, %d skipped (%d DDL statements)",
		len(report.Applied()), len(report.Skipped()), report.StatementCount())
}
