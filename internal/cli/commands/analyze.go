package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/leapstack-labs/leapimpact/internal/datahub"
	"github.com/leapstack-labs/leapimpact/internal/dbt"
	"github.com/leapstack-labs/leapimpact/internal/impact"
	"github.com/leapstack-labs/leapimpact/internal/report"
	"github.com/leapstack-labs/leapimpact/pkg/core"
)

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "Write the impact analysis report",
		Long: `List the dbt models changed relative to a baseline state, find them in
DataHub and write a markdown report of their downstream lineage.

If any step fails the report file contains the error instead. The command
still exits 0 unless --strict is set.`,
		Example: `  # Compare against the production manifest
  DBT_ARTIFACT_STATE_PATH=prod-target leapimpact analyze

  # Custom output locations
  leapimpact analyze --state prod-target -o impact.md --html impact.html

  # Fail the CI job when the analysis fails
  leapimpact analyze --strict`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return RunAnalysis(cmd)
		},
	}
}

// RunAnalysis runs the impact analysis with the configuration stored in the
// command context and writes the report.
func RunAnalysis(cmd *cobra.Command) error {
	cc := NewCommandContext(cmd)
	return runAnalysis(cmd.Context(), cc, cmd.OutOrStdout())
}

func runAnalysis(ctx context.Context, cc *CommandContext, stdout io.Writer) error {
	cfg := cc.Cfg
	logger := cc.Logger

	rep, err := analyze(ctx, cc)

	var doc string
	if err == nil {
		doc, err = report.Markdown(rep, report.Options{
			FrontendURL:    cfg.DataHub.FrontendURL,
			MaxDisplayed:   cfg.Report.MaxDisplayed,
			ShowUnresolved: cfg.Report.ShowUnresolved,
		})
	}
	if err != nil {
		logger.Error("impact analysis failed", failureAttrs(err)...)
		doc = report.Failure(err)
	}

	if werr := writeReport(cfg.OutputPath, cfg.HTMLPath, doc); werr != nil {
		return werr
	}
	logger.Info("wrote impact analysis", "path", cfg.OutputPath, "failed", err != nil)

	if err != nil {
		if cfg.Strict {
			return err
		}
		return nil
	}

	if !cfg.Quiet {
		report.WriteSummary(stdout, rep, summaryFormat(cfg.SummaryFormat, stdout))
	}
	return nil
}

// analyze builds the pipeline from config and runs it.
func analyze(ctx context.Context, cc *CommandContext) (*core.ImpactReport, error) {
	if cc.LoadErr != nil {
		return nil, fmt.Errorf("failed to load config: %w", cc.LoadErr)
	}
	cfg := cc.Cfg
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client, err := datahub.NewClient(datahub.Options{
		Server:  cfg.DataHub.GMSHost,
		Token:   cfg.DataHub.GMSToken,
		Timeout: cfg.DataHub.Timeout,
		Logger:  cc.Logger,
	})
	if err != nil {
		return nil, err
	}

	detector := dbt.NewChangeDetector(dbt.NewExecRunner(cfg.DBT.Timeout), dbt.Options{
		Executable:  cfg.DBT.Executable,
		ProjectDir:  cfg.DBT.ProjectDir,
		ProfilesDir: cfg.DBT.ProfilesDir,
		Logger:      cc.Logger,
	})

	analyzer := impact.NewAnalyzer(detector, client, impact.Config{
		StateRef:           cfg.DBT.StatePath,
		MaxSearchResults:   cfg.DataHub.MaxSearchResults,
		MaxDownstreams:     cfg.DataHub.MaxDownstreams,
		LineageConcurrency: cfg.DataHub.LineageConcurrency,
		Logger:             cc.Logger,
	})
	return analyzer.Run(ctx)
}

// writeReport overwrites the markdown report and, when htmlPath is set, its
// HTML rendering.
func writeReport(path, htmlPath, doc string) error {
	if err := writeFile(path, []byte(doc)); err != nil {
		return err
	}
	if htmlPath == "" {
		return nil
	}
	html, err := report.HTML(doc)
	if err != nil {
		return err
	}
	return writeFile(htmlPath, html)
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", path, err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil { //nolint:gosec // report is meant to be shared
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// summaryFormat resolves "auto" to a table on a terminal and markdown
// everywhere else, e.g. CI logs.
func summaryFormat(setting string, w io.Writer) report.SummaryFormat {
	switch setting {
	case string(report.SummaryTable):
		return report.SummaryTable
	case string(report.SummaryMarkdown):
		return report.SummaryMarkdown
	}
	if f, ok := w.(interface{ Fd() uintptr }); ok && term.IsTerminal(int(f.Fd())) { //nolint:gosec // fd fits in int
		return report.SummaryTable
	}
	return report.SummaryMarkdown
}

// failureAttrs pulls the details of typed errors into log attributes.
func failureAttrs(err error) []any {
	attrs := []any{"error", err}

	var cfgErr *core.ConfigError
	var toolErr *core.ToolInvocationError
	var parseErr *core.ParseError
	var apiErr *datahub.APIError
	switch {
	case errors.As(err, &cfgErr):
		attrs = append(attrs, "key", cfgErr.Key)
	case errors.As(err, &toolErr):
		attrs = append(attrs, "command", toolErr.Command, "exit_code", toolErr.ExitCode, "output", toolErr.Output)
	case errors.As(err, &parseErr):
		attrs = append(attrs, "line", parseErr.Line)
	case errors.As(err, &apiErr):
		attrs = append(attrs, "status", apiErr.StatusCode, "url", apiErr.URL, "body", apiErr.Body)
	}
	return attrs
}
