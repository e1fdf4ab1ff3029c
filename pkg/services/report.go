package services

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/ekaya-inc/recon-engine/pkg/models"
)

// RenderText renders a completed run as a plain-text report: one row per
// column pair, then a one-line summary. Intended for CLI output and logs.
func RenderText(run *models.ValidationRun) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Schema reconciliation: %s -> %s\n", run.SourceName, run.TargetName)
	fmt.Fprintf(&sb, "Run %s, started %s\n\n", run.ID, run.StartedAt.Format("2006-01-02 15:04:05 MST"))

	w := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SOURCE COLUMN\tTARGET COLUMN\tSOURCE TYPE\tTARGET TYPE\tSTATUS")
	for _, row := range run.Rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			row.SourceColumn, row.TargetColumn, row.SourceType, row.TargetType, row.Status)
	}
	_ = w.Flush()

	fmt.Fprintf(&sb, "\n%d columns compared, %d success, %d fail: %s\n",
		run.Summary.TotalColumns, run.Summary.SuccessCount, run.Summary.FailCount,
		strings.ToUpper(run.Summary.Status))

	return sb.String()
}
