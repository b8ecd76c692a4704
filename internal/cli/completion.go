package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// shells maps each supported shell to the generator for its script. Every
// generator includes flag descriptions.
var shells = map[string]func(cmd *cobra.Command, c *CLI) error{
	"bash":       func(cmd *cobra.Command, c *CLI) error { return cmd.Root().GenBashCompletionV2(c.out, true) },
	"zsh":        func(cmd *cobra.Command, c *CLI) error { return cmd.Root().GenZshCompletion(c.out) },
	"fish":       func(cmd *cobra.Command, c *CLI) error { return cmd.Root().GenFishCompletion(c.out, true) },
	"powershell": func(cmd *cobra.Command, c *CLI) error { return cmd.Root().GenPowerShellCompletionWithDesc(c.out) },
}

// completionCommand prints a completion script. Recipe names complete
// through the synth command's own completion function.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion bash|zsh|fish|powershell",
		Short: "Print a shell completion script",
		Long: `Print a completion script for the given shell to stdout.

Load it into the current shell, or write it where your shell picks up
completions at startup:

  source <(prefixtower completion bash)
  prefixtower completion zsh > "${fpath[1]}/_prefixtower"
  prefixtower completion fish > ~/.config/fish/completions/prefixtower.fish
  prefixtower completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			gen, ok := shells[args[0]]
			if !ok {
				return fmt.Errorf("unsupported shell %q", args[0])
			}
			return gen(cmd, c)
		},
	}
}
