package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapimpact/internal/cli/config"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg    *config.Config
	Logger *slog.Logger
	// LoadErr is set when the configuration could not be loaded. Cfg then
	// holds defaults so the command can still write its output.
	LoadErr error
}

// NewCommandContext collects the config and logger the root command stored
// in the command's context.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg, loadErr := config.FromContext(cmd.Context())
	return &CommandContext{
		Cfg:     cfg,
		Logger:  config.GetLogger(cmd.Context()),
		LoadErr: loadErr,
	}
}
