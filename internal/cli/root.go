// Package cli provides the command-line interface for leapimpact.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapimpact/internal/cli/commands"
	"github.com/leapstack-labs/leapimpact/internal/cli/config"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command. Running it without a
// subcommand runs the analysis.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "leapimpact",
		Short: "leapimpact - dbt change impact analysis",
		Long: `leapimpact lists the dbt models changed relative to a baseline state,
looks them up in DataHub and reports which downstream datasets, dashboards,
charts and pipelines may be affected.

The report is written as markdown, ready to be posted as a pull request
comment.`,
		Version: Version,
		Args:    cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			// A load failure is reported by the command itself so the
			// analysis can still write its error document.
			cfg, configFile, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				cfg = config.Default()
			}

			logger := newLogger(cmd.ErrOrStderr(), cfg, uuid.NewString())
			if configFile != "" {
				logger.Debug("using config file", "path", configFile)
			}

			ctx := config.WithConfig(cmd.Context(), cfg, err)
			ctx = context.WithValue(ctx, config.LoggerKey(), logger)
			cmd.SetContext(ctx)
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return commands.RunAnalysis(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	// Global persistent flags
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: ./leapimpact.yaml)")
	pf.StringP("output", "o", "", "Markdown report path (default: impact_analysis.md)")
	pf.String("html", "", "Also write the report as HTML to this path")
	pf.String("state", "", "dbt state directory to compare against (DBT_ARTIFACT_STATE_PATH)")
	pf.String("project-dir", "", "dbt project directory")
	pf.String("profiles-dir", "", "dbt profiles directory")
	pf.Int("max-displayed", 0, "Downstream entities listed per model before collapsing")
	pf.Bool("show-unresolved", false, "List changed models that were not found in DataHub")
	pf.Int("concurrency", 0, "Lineage queries in flight at once (default 1)")
	pf.String("summary", "", "Summary format (auto|table|markdown)")
	pf.String("log-format", "", "Log format (text|json)")
	pf.BoolP("verbose", "v", false, "Verbose output")
	pf.BoolP("quiet", "q", false, "Do not print the summary table")
	pf.Bool("strict", false, "Exit non-zero when the analysis fails")

	_ = rootCmd.RegisterFlagCompletionFunc("log-format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"text", "json"}, cobra.ShellCompDirectiveNoFileComp
	})

	_ = rootCmd.RegisterFlagCompletionFunc("summary", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"auto", "table", "markdown"}, cobra.ShellCompDirectiveNoFileComp
	})

	// Add subcommands
	rootCmd.AddCommand(commands.NewAnalyzeCommand())
	rootCmd.AddCommand(commands.NewProfileCommand())
	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// newLogger creates the run logger. Every record carries the run id.
func newLogger(w io.Writer, cfg *config.Config, runID string) *slog.Logger {
	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h).With("run_id", runID)
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for leapimpact.

To load completions:

Bash:
  $ source <(leapimpact completion bash)

Zsh:
  $ leapimpact completion zsh > "${fpath[1]}/_leapimpact"

Fish:
  $ leapimpact completion fish | source

PowerShell:
  PS> leapimpact completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
	return cmd
}
