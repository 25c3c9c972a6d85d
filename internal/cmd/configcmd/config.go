// Package configcmd provides config management commands.
package configcmd

import (
	"github.com/spf13/cobra"
)

// NewCmdConfig creates the config command.
func NewCmdConfig() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage nbslides configuration",
		Long:  `Commands for viewing, validating, and clearing nbslides configuration.`,
	}

	cmd.AddCommand(NewCmdShow())
	cmd.AddCommand(NewCmdValidate())
	cmd.AddCommand(NewCmdClear())

	return cmd
}

// envVars lists the environment variables that override the config file.
var envVars = []string{"NBSLIDES_START_MARKER", "NBSLIDES_END_MARKER", "NBSLIDES_LOG_LEVEL", "NBSLIDES_WORKERS"}

func configPath(cmd *cobra.Command) string {
	path, _ := cmd.Flags().GetString("config")
	return path
}
