package main

import (
	"io"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
)

// PrintReport renders report as a summary table, in the style of
// cmd/tempo-cli's tablewriter-based command output.
func PrintReport(w io.Writer, runID string, report *Report) {
	t := tablewriter.NewWriter(w)
	t.SetHeader([]string{"run", "workers", "duration", "total ops", "ops/sec", "final size"})
	t.Append([]string{
		runID,
		humanize.Comma(int64(report.WorkerRuns)),
		report.Elapsed.Round(1e6).String(),
		humanize.Comma(int64(report.TotalOps)),
		humanize.Commaf(report.OpsPerSec),
		humanize.Comma(int64(report.FinalSize)),
	})
	t.Render()
}
