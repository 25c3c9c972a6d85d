// Package cmdutil holds the setup shared by nbslides subcommands: global
// flags, configuration and logging.
package cmdutil

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/nbslides/internal/collect"
	"github.com/open-cli-collective/nbslides/internal/config"
	"github.com/open-cli-collective/nbslides/internal/logging"
	"github.com/open-cli-collective/nbslides/internal/view"
	"github.com/open-cli-collective/nbslides/pkg/deck"
)

// Globals are the persistent flags defined on the root command.
type Globals struct {
	ConfigPath string
	Format     string
	NoColor    bool
	Verbose    bool
	Debug      bool
}

// ReadGlobals reads the persistent flags. Flags that are not defined keep
// their zero value.
func ReadGlobals(cmd *cobra.Command) Globals {
	var g Globals
	g.ConfigPath, _ = cmd.Flags().GetString("config")
	g.Format, _ = cmd.Flags().GetString("format")
	g.NoColor, _ = cmd.Flags().GetBool("no-color")
	g.Verbose, _ = cmd.Flags().GetBool("verbose")
	g.Debug, _ = cmd.Flags().GetBool("debug")
	return g
}

// Env is everything a subcommand needs to convert documents.
type Env struct {
	Config   *config.Config
	Logger   logging.Logger
	Renderer *view.Renderer
}

// Setup loads and validates the configuration, then builds the logger and
// renderer.
func Setup(g Globals) (*Env, error) {
	path := g.ConfigPath
	if path == "" {
		path = config.DefaultConfigPath()
	}

	cfg, err := config.LoadWithEnv(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w (run 'nbslides config show' to inspect)", err)
	}

	format := g.Format
	if format == "" {
		format = cfg.OutputFormat
	}
	if err := view.ValidateFormat(format); err != nil {
		return nil, err
	}

	provider, err := logging.NewProvider(logging.Config{
		Level:     logging.ResolveLevel(cfg.LogLevel, g.Verbose, g.Debug),
		Format:    cfg.LogFormat,
		AddSource: g.Debug,
	})
	if err != nil {
		return nil, err
	}

	return &Env{
		Config:   cfg,
		Logger:   provider.GetLogger("nbslides"),
		Renderer: view.NewRenderer(view.Format(format), g.NoColor),
	}, nil
}

// CollectOptions maps the configuration onto conversion options for a deck
// written to output.
func (e *Env) CollectOptions(output string) collect.Options {
	cfg := e.Config
	return collect.Options{
		Output:        output,
		Markers:       deck.Markers{Start: cfg.Markers.Start, End: cfg.Markers.End},
		CodeMarkers:   deck.Markers{Start: cfg.CodeMarkers.Start, End: cfg.CodeMarkers.End},
		PageSeparator: cfg.PageSeparator,
		Workers:       cfg.Workers,
		Logger:        e.Logger,
	}
}

// IsTerminal reports whether stdin is attached to a terminal.
func IsTerminal() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// InputCompletion completes document arguments by extension.
func InputCompletion(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return []string{"ipynb", "md", "markdown", "html", "htm"}, cobra.ShellCompDirectiveFilterFileExt
}
