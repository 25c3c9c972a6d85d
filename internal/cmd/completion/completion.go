// Package completion provides shell completion generation commands.
package completion

import (
	"fmt"

	"github.com/spf13/cobra"
)

var shells = []string{"bash", "zsh", "fish", "powershell"}

// NewCmdCompletion creates the completion command.
func NewCmdCompletion() *cobra.Command {
	return &cobra.Command{
		Use:   "completion <bash|zsh|fish|powershell>",
		Short: "Generate shell completion scripts",
		Long: `Generate a shell completion script for nbslides.

The script completes commands, flags and input documents (.ipynb, .md,
.html). Load it in the current session or install it in your shell's
completion directory.`,
		Example: `  # bash, current session
  source <(nbslides completion bash)

  # zsh, every session
  nbslides completion zsh > "${fpath[1]}/_nbslides"

  # fish
  nbslides completion fish > ~/.config/fish/completions/nbslides.fish

  # PowerShell
  nbslides completion powershell | Out-String | Invoke-Expression`,
		ValidArgs:             shells,
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return generate(cmd.Root(), args[0], cmd)
		},
	}
}

func generate(root *cobra.Command, shell string, cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	switch shell {
	case "bash":
		return root.GenBashCompletionV2(out, true)
	case "zsh":
		return root.GenZshCompletion(out)
	case "fish":
		return root.GenFishCompletion(out, true)
	case "powershell":
		return root.GenPowerShellCompletionWithDesc(out)
	default:
		return fmt.Errorf("unsupported shell %q", shell)
	}
}
