package output

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/pankaj-dahiya-devops/awsinv/internal/models"
)

// missingCell marks a kind whose collector failed in a region.
const missingCell = "-"

// maxCauseWidth bounds the CAUSE column of the error table.
const maxCauseWidth = 80

// ShortenMessage truncates msg to at most max runes, appending "..." when truncated.
// max is treated as at least 4 to guarantee space for the ellipsis.
func ShortenMessage(msg string, max int) string {
	if max < 4 {
		max = 4
	}
	runes := []rune(msg)
	if len(runes) <= max {
		return msg
	}
	return string(runes[:max-3]) + "..."
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetBorder(false)
	table.SetHeaderLine(false)
	table.SetColumnSeparator(" ")
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	return table
}

// RenderSummary writes a per-region count table, the global counts and,
// when the run recorded failures, an error table.
func RenderSummary(w io.Writer, report *models.Report) {
	fmt.Fprintf(w, "Account %s (profile %s), generated %s UTC\n\n",
		report.AccountID, report.Profile, report.GeneratedAt.UTC().Format(QueryTimeLayout))

	regions := newTable(w, []string{"Region", "VPCs", "Instances", "DB Instances", "Functions", "Stacks"})
	for _, r := range report.Regions {
		row := []string{r.Region}
		for _, kind := range models.RegionalKinds {
			row = append(row, countCell(r, kind))
		}
		regions.Append(row)
	}
	regions.Render()

	fmt.Fprintf(w, "\nS3 buckets: %d\n", len(report.Global.Buckets))
	if report.Global.Identity != nil {
		fmt.Fprintf(w, "IAM users: %d, roles: %d\n", len(report.Global.Identity.Users), len(report.Global.Identity.Roles))
	}

	if len(report.Errors) == 0 {
		fmt.Fprintln(w, "\nNo collection errors.")
		return
	}

	fmt.Fprintf(w, "\nCollection errors: %d (%d partial)\n\n", report.Summary.TotalErrors, report.Summary.PartialErrors)
	errs := newTable(w, []string{"Scope", "Kind", "Item", "Partial", "Cause"})
	for _, e := range report.Errors {
		errs.Append([]string{
			e.Scope,
			string(e.Kind),
			e.Item,
			strconv.FormatBool(e.Partial),
			ShortenMessage(e.Cause, maxCauseWidth),
		})
	}
	errs.Render()
}

func countCell(r models.RegionResult, kind models.ResourceKind) string {
	if !r.Has(kind) {
		return missingCell
	}
	return strconv.Itoa(r.Count(kind))
}
