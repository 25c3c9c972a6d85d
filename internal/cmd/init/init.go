// Package init provides the init command for nbslides.
package init

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/nbslides/internal/config"
	"github.com/open-cli-collective/nbslides/internal/logging"
)

type initOptions struct {
	startMarker string
	endMarker   string
	defaults    bool
	configPath  string
	out         io.Writer
}

// NewCmdInit creates the init command.
func NewCmdInit() *cobra.Command {
	opts := &initOptions{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize nbslides configuration",
		Long: `Initialize nbslides with your preferred command-comment markers,
logging and parallelism. The configuration will be saved to
~/.config/nbslides/config.yml.`,
		Example: `  # Interactive setup
  nbslides init

  # Pre-populate the markers
  nbslides init --start-marker '<!--?' --end-marker '?-->'

  # Write the defaults without prompting
  nbslides init --defaults`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.configPath, _ = cmd.Flags().GetString("config")
			opts.out = cmd.OutOrStdout()
			return runInit(opts, huhPrompter{})
		},
	}

	cmd.Flags().StringVar(&opts.startMarker, "start-marker", "", "Marker opening a command-comment")
	cmd.Flags().StringVar(&opts.endMarker, "end-marker", "", "Marker closing a command-comment")
	cmd.Flags().BoolVar(&opts.defaults, "defaults", false, "Write the default configuration without prompting")

	return cmd
}

// prompter collects answers from the user.
type prompter interface {
	ConfirmOverwrite(path string) (bool, error)
	Fill(cfg *config.Config) error
}

func runInit(opts *initOptions, p prompter) error {
	configPath := opts.configPath
	if configPath == "" {
		configPath = config.DefaultConfigPath()
	}
	out := opts.out
	if out == nil {
		out = os.Stdout
	}

	if _, err := os.Stat(configPath); err == nil && !opts.defaults {
		overwrite, err := p.ConfirmOverwrite(configPath)
		if err != nil {
			return err
		}
		if !overwrite {
			fmt.Fprintln(out, "Initialization cancelled.")
			return nil
		}
	}

	cfg := config.Default()
	if opts.startMarker != "" {
		cfg.Markers.Start = opts.startMarker
	}
	if opts.endMarker != "" {
		cfg.Markers.End = opts.endMarker
	}

	if !opts.defaults {
		if err := p.Fill(cfg); err != nil {
			return err
		}
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := cfg.Save(configPath); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nConfiguration saved to %s\n", configPath)
	fmt.Fprintln(out, "\nYou're all set! Try running:")
	fmt.Fprintln(out, "  nbslides build -o slides.md notebooks/")
	fmt.Fprintln(out, "  nbslides check notebooks/")

	return nil
}

type huhPrompter struct{}

func (huhPrompter) ConfirmOverwrite(path string) (bool, error) {
	var overwrite bool
	err := huh.NewConfirm().
		Title("Configuration already exists").
		Description(fmt.Sprintf("Overwrite %s?", path)).
		Value(&overwrite).
		Run()
	return overwrite, err
}

func (huhPrompter) Fill(cfg *config.Config) error {
	workers := strconv.Itoa(cfg.Workers)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Start marker").
				Description("Opens a command-comment in markdown cells").
				Value(&cfg.Markers.Start).
				Validate(required("start marker")),

			huh.NewInput().
				Title("End marker").
				Description("Closes a command-comment").
				Value(&cfg.Markers.End).
				Validate(required("end marker")),

			huh.NewInput().
				Title("Code start marker").
				Description("Opens a command-comment in code cells").
				Value(&cfg.CodeMarkers.Start).
				Validate(required("code start marker")),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Log level").
				Options(huh.NewOptions(logging.Levels...)...).
				Value(&cfg.LogLevel),

			huh.NewSelect[string]().
				Title("Log format").
				Options(huh.NewOptions(logging.Formats...)...).
				Value(&cfg.LogFormat),

			huh.NewInput().
				Title("Workers").
				Description("Documents converted in parallel").
				Value(&workers).
				Validate(validateWorkers),
		),
	)

	if err := form.Run(); err != nil {
		return err
	}

	n, err := strconv.Atoi(workers)
	if err != nil {
		return err
	}
	cfg.Workers = n
	return nil
}

func required(name string) func(string) error {
	return func(s string) error {
		if s == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}

func validateWorkers(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return fmt.Errorf("workers must be a positive number")
	}
	return nil
}
