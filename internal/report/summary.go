package report

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/leapstack-labs/leapimpact/pkg/core"
)

// SummaryFormat selects how WriteSummary renders.
type SummaryFormat string

// Summary formats.
const (
	SummaryTable    SummaryFormat = "table"
	SummaryMarkdown SummaryFormat = "markdown"
)

var headlineStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))

// WriteSummary prints a table of changed nodes and their downstream counts.
// The table format is meant for a terminal and carries a styled headline.
func WriteSummary(w io.Writer, r *core.ImpactReport, format SummaryFormat) {
	t := table.NewWriter()
	t.SetOutputMirror(w)

	t.AppendHeader(table.Row{"dbt node", "File", "DataHub URN", "Downstreams"})
	for _, s := range r.Sections {
		t.AppendRow(table.Row{s.Node.UniqueID, s.Node.OriginalFilePath, s.URN, len(s.Downstreams)})
	}
	for _, n := range r.Unresolved {
		t.AppendRow(table.Row{n.UniqueID, n.OriginalFilePath, "(not found)", "-"})
	}
	t.AppendFooter(table.Row{"", "", "Distinct impacted", len(r.ImpactedURNs())})

	if format == SummaryMarkdown {
		t.RenderMarkdown()
		return
	}

	headline := fmt.Sprintf("%d dbt models changed, %d downstream entities potentially impacted",
		len(r.ChangedNodes), len(r.ImpactedURNs()))
	_, _ = fmt.Fprintln(w, headlineStyle.Render(headline))
	t.SetStyle(table.StyleLight)
	t.Render()
}
