// Package root provides the root command for the nbslides CLI.
package root

import (
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/nbslides/internal/cmd/build"
	"github.com/open-cli-collective/nbslides/internal/cmd/check"
	"github.com/open-cli-collective/nbslides/internal/cmd/completion"
	"github.com/open-cli-collective/nbslides/internal/cmd/configcmd"
	initcmd "github.com/open-cli-collective/nbslides/internal/cmd/init"
	"github.com/open-cli-collective/nbslides/internal/version"
)

// NewCmdRoot creates the root command for nbslides.
func NewCmdRoot() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nbslides",
		Short: "Turn Jupyter notebooks into remark slide decks",
		Long: `nbslides builds a remark slide deck from Jupyter notebooks.

Slides are described by command-comments inside the notebook cells:

  <!--! new; start-add; -->
  # This heading starts a new slide

Code cells use '# <!--! ... -->'. Markdown and HTML documents can be
mixed in and are copied into the deck as they are.

Get started by running: nbslides build -o slides.md talk.ipynb`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Version,
	}

	// Global flags
	cmd.PersistentFlags().StringP("config", "c", "", "config file (default: ~/.config/nbslides/config.yml)")
	cmd.PersistentFlags().String("format", "", "output format: table, json, plain (default from config, else table)")
	cmd.PersistentFlags().Bool("no-color", false, "disable colored output")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "log progress at info level")
	cmd.PersistentFlags().BoolP("debug", "d", false, "log everything at debug level")

	cmd.SetVersionTemplate(version.String() + "\n")

	// Subcommands
	cmd.AddCommand(build.NewCmdBuild())
	cmd.AddCommand(check.NewCmdCheck())
	cmd.AddCommand(initcmd.NewCmdInit())
	cmd.AddCommand(configcmd.NewCmdConfig())
	cmd.AddCommand(completion.NewCmdCompletion())

	return cmd
}
