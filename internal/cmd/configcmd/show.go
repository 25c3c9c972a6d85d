package configcmd

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/nbslides/internal/config"
	"github.com/open-cli-collective/nbslides/internal/view"
)

// NewCmdShow creates the config show command.
func NewCmdShow() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Long:  `Display the effective nbslides configuration and where each value comes from.`,
		Example: `  # Show current config
  nbslides config show

  # As JSON
  nbslides config show --format json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			noColor, _ := cmd.Flags().GetBool("no-color")
			format, _ := cmd.Flags().GetString("format")
			return runShow(configPath(cmd), format, noColor, cmd.OutOrStdout())
		},
	}

	return cmd
}

// field is one displayed configuration value.
type field struct {
	Key    string `json:"key"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

func runShow(path, format string, noColor bool, out io.Writer) error {
	if noColor {
		color.NoColor = true
	}
	if path == "" {
		path = config.DefaultConfigPath()
	}

	// Load file config (may not exist)
	fileCfg, fileErr := config.Load(path)
	if fileErr != nil {
		fileCfg = &config.Config{}
	}

	cfg, err := config.LoadWithEnv(path)
	if err != nil {
		return err
	}

	fields := []field{
		{"markers.start", cfg.Markers.Start, source(fileCfg.Markers.Start, "NBSLIDES_START_MARKER")},
		{"markers.end", cfg.Markers.End, source(fileCfg.Markers.End, "NBSLIDES_END_MARKER")},
		{"code_markers.start", cfg.CodeMarkers.Start, source(fileCfg.CodeMarkers.Start)},
		{"code_markers.end", cfg.CodeMarkers.End, source(fileCfg.CodeMarkers.End)},
		{"page_separator", strconv.Quote(cfg.PageSeparator), source(fileCfg.PageSeparator)},
		{"document_separator", strconv.Quote(cfg.DocumentSeparator), source(fileCfg.DocumentSeparator)},
		{"log_level", cfg.LogLevel, source(fileCfg.LogLevel, "NBSLIDES_LOG_LEVEL")},
		{"log_format", cfg.LogFormat, source(fileCfg.LogFormat)},
		{"workers", strconv.Itoa(cfg.Workers), source(nonZero(fileCfg.Workers), "NBSLIDES_WORKERS")},
		{"output_format", cfg.OutputFormat, source(fileCfg.OutputFormat)},
	}

	if view.Format(format) == view.FormatJSON {
		r := view.NewRenderer(view.FormatJSON, noColor)
		r.SetWriter(out)
		return r.RenderJSON(map[string]any{
			"path":   path,
			"exists": fileErr == nil,
			"fields": fields,
		})
	}

	bold := color.New(color.Bold)
	dim := color.New(color.Faint)

	for _, f := range fields {
		_, _ = bold.Fprintf(out, "%-20s", f.Key+":")
		if f.Value == "" {
			_, _ = dim.Fprintln(out, "-")
			continue
		}
		fmt.Fprint(out, f.Value)
		_, _ = dim.Fprintf(out, "  (source: %s)\n", f.Source)
	}

	fmt.Fprintln(out)
	_, _ = dim.Fprintf(out, "Config file: %s\n", path)
	if fileErr != nil {
		_, _ = dim.Fprintln(out, "(file not found)")
	}

	return nil
}

// source names where a value came from: an environment variable that is
// set, the config file, or the built-in default.
func source(fileValue string, envVars ...string) string {
	for _, envVar := range envVars {
		if os.Getenv(envVar) != "" {
			return envVar
		}
	}
	if fileValue != "" {
		return "config"
	}
	return "default"
}

func nonZero(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}
