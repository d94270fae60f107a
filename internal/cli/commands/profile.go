package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapimpact/internal/dbt"
)

// NewProfileCommand creates the profile command.
func NewProfileCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Print the dbt profile used by the project",
		Long: `Print the profile named in dbt_project.yml of the configured dbt project
directory. CI scripts use it to pick the matching profiles.yml entry.`,
		Example: `  leapimpact profile
  leapimpact profile --project-dir transform`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := NewCommandContext(cmd)
			if cc.LoadErr != nil {
				return cc.LoadErr
			}
			profile, err := dbt.ProjectProfile(cc.Cfg.DBT.ProjectDir)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), profile)
			return nil
		},
	}
}
