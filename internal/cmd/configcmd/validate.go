package configcmd

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/nbslides/internal/config"
	"github.com/open-cli-collective/nbslides/internal/logging"
)

// NewCmdValidate creates the config validate command.
func NewCmdValidate() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration for errors",
		Long:  `Load the configuration file and environment overrides and report any invalid value.`,
		Example: `  # Validate config
  nbslides config validate`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			noColor, _ := cmd.Flags().GetBool("no-color")
			return runValidate(configPath(cmd), noColor, cmd.OutOrStdout())
		},
	}

	return cmd
}

func runValidate(path string, noColor bool, out io.Writer) error {
	if noColor {
		color.NoColor = true
	}
	if path == "" {
		path = config.DefaultConfigPath()
	}

	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	fmt.Fprintf(out, "Validating %s... ", path)

	cfg, err := config.LoadWithEnv(path)
	if err == nil {
		err = cfg.Validate()
	}
	if err == nil {
		_, err = logging.NewProvider(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	}
	if err != nil {
		_, _ = red.Fprintln(out, "failed!")
		return fmt.Errorf("invalid configuration: %w", err)
	}

	_, _ = green.Fprintln(out, "ok")
	return nil
}
