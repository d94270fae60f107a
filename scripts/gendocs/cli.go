package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/leapstack-labs/leapimpact/internal/cli"
	"github.com/leapstack-labs/leapimpact/internal/cli/config"
)

// generateCLIDocs writes index.md plus one page per visible command.
func generateCLIDocs(outDir string) error {
	log.Printf("Generating CLI docs to %s", outDir)
	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	rootCmd := cli.NewRootCmd()
	pages := map[string][]byte{"index.md": cliIndex(rootCmd)}
	for _, cmd := range documentedCommands(rootCmd) {
		pages[cmd.Name()+".md"] = commandPage(cmd)
	}

	for name, data := range pages {
		if err := os.WriteFile(filepath.Join(outDir, name), data, 0600); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
		log.Printf("  Generated %s", name)
	}
	return nil
}

func documentedCommands(rootCmd *cobra.Command) []*cobra.Command {
	var cmds []*cobra.Command
	for _, cmd := range rootCmd.Commands() {
		if cmd.Hidden || cmd.Name() == "help" || cmd.Name() == "__complete" {
			continue
		}
		cmds = append(cmds, cmd)
	}
	return cmds
}

func cliIndex(rootCmd *cobra.Command) []byte {
	w := NewMarkdownWriter()
	w.Frontmatter("CLI Reference", "Command-line interface reference for leapimpact")
	w.GeneratedMarker()

	w.Header(1, "CLI Reference")
	w.Paragraph(rootCmd.Long)

	w.Header(2, "Installation")
	w.CodeBlock("bash", "go install github.com/leapstack-labs/leapimpact/cmd/leapimpact@latest")

	w.Header(2, "Basic Usage")
	w.CodeBlock("bash", "leapimpact [command] [options]")
	w.Paragraph("Without a command, leapimpact runs `analyze`.")

	w.Header(2, "Commands")
	var rows [][]string
	for _, cmd := range documentedCommands(rootCmd) {
		link := fmt.Sprintf("[%s](/cli/%s)", InlineCode(cmd.Name()), cmd.Name())
		rows = append(rows, []string{link, cleanDescription(cmd.Short)})
	}
	w.Table([]string{"Command", "Description"}, rows)

	w.Header(2, "Global Options")
	w.Paragraph("These flags are available for all commands:")
	w.Table(flagTable(rootCmd.PersistentFlags()))

	w.Header(2, "Environment Variables")
	w.Paragraph("leapimpact reads these variables, which CI systems usually export already:")
	envNames := make([]string, 0, len(config.WellKnownEnv))
	for name := range config.WellKnownEnv {
		envNames = append(envNames, name)
	}
	sort.Strings(envNames)
	var envRows [][]string
	for _, name := range envNames {
		envRows = append(envRows, []string{InlineCode(name), InlineCode(config.WellKnownEnv[name])})
	}
	w.Table([]string{"Variable", "Config key"}, envRows)
	w.Paragraph(fmt.Sprintf("Any other key can be set with the %s prefix, using a double underscore "+
		"between nesting levels, e.g. %s. Command-line flags take precedence over environment variables.",
		InlineCode(config.EnvPrefix), InlineCode(config.EnvPrefix+"REPORT__MAX_DISPLAYED")))

	w.Header(2, "Exit Codes")
	w.Table([]string{"Code", "Meaning"}, [][]string{
		{InlineCode("0"), "Report written. A failed analysis still exits 0 and writes the error into the report."},
		{InlineCode("1"), "The report could not be written, or the analysis failed with " + InlineCode("--strict") + "."},
	})

	return w.Bytes()
}

func commandPage(cmd *cobra.Command) []byte {
	w := NewMarkdownWriter()
	w.Frontmatter(cmd.Name(), cmd.Short)
	w.GeneratedMarker()

	w.Header(1, cmd.Name())
	if cmd.Long != "" {
		w.Paragraph(cmd.Long)
	} else {
		w.Paragraph(cmd.Short)
	}

	w.Header(2, "Usage")
	w.CodeBlock("bash", cmd.UseLine())

	if cmd.HasLocalFlags() {
		w.Header(2, "Options")
		w.Table(flagTable(cmd.LocalFlags()))
	}
	if cmd.HasInheritedFlags() {
		w.Header(2, "Global Options")
		w.Table(flagTable(cmd.InheritedFlags()))
	}
	if cmd.Example != "" {
		w.Header(2, "Examples")
		w.CodeBlock("bash", dedent(cmd.Example))
	}

	return w.Bytes()
}

// flagTable lists the visible flags of fs. String defaults are shown as code.
func flagTable(fs *pflag.FlagSet) ([]string, [][]string) {
	var rows [][]string
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		short := ""
		if f.Shorthand != "" {
			short = "-" + f.Shorthand
		}
		def := f.DefValue
		if def != "" && f.Value.Type() == "string" {
			def = InlineCode(def)
		}
		rows = append(rows, []string{InlineCode("--" + f.Name), short, def, cleanDescription(f.Usage)})
	})
	return []string{"Option", "Short", "Default", "Description"}, rows
}

// dedent strips the two-space indent the commands use for their examples.
func dedent(example string) string {
	lines := strings.Split(strings.Trim(example, "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimPrefix(line, "  ")
	}
	return strings.Join(lines, "\n")
}
