package cli

import (
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mctbnc/pkg/estimate"
	"github.com/matzehuels/mctbnc/pkg/learn"
	"github.com/matzehuels/mctbnc/pkg/render"
	"github.com/matzehuels/mctbnc/pkg/score"
	"github.com/matzehuels/mctbnc/pkg/search"
)

// hyperparameterValues lists the accepted values of the enumerated keys.
// Numeric keys complete to the bare "key=" prefix.
var hyperparameterValues = map[string][]string{
	learn.KeyScore:         {score.NameLogLikelihood, score.NameBayesianDirichlet, score.NameConditionalLogLikelihood},
	learn.KeyPenalization:  {score.NoPenalization.String(), score.BIC.String(), score.AIC.String()},
	learn.KeyAlgorithm:     {search.NameHillClimbing, search.NamePerNode, search.NameTabu, search.NameRandomRestart},
	learn.KeyEstimator:     {estimate.NameMaxLikelihood, estimate.NameBayesian},
	learn.KeyMaxK:          nil,
	learn.KeyRestarts:      nil,
	learn.KeyTabuSize:      nil,
	learn.KeyMaxIterations: nil,
	learn.KeyWorkers:       nil,
	learn.KeyNX:            nil,
	learn.KeyMXY:           nil,
	learn.KeyTX:            nil,
	learn.KeySeed:          nil,
}

// completeHyperparameter completes --set values as key=value pairs.
func completeHyperparameter(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	key, _, hasValue := strings.Cut(toComplete, "=")
	var out []string
	if !hasValue {
		for _, k := range slices.Sorted(maps.Keys(hyperparameterValues)) {
			if strings.HasPrefix(k, key) {
				out = append(out, k+"=")
			}
		}
		return out, cobra.ShellCompDirectiveNoSpace
	}
	for _, v := range hyperparameterValues[key] {
		pair := key + "=" + v
		if strings.HasPrefix(pair, toComplete) {
			out = append(out, pair)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// fixedCompletion completes a flag from a fixed list.
func fixedCompletion(values ...string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return cobra.FixedCompletions(values, cobra.ShellCompDirectiveNoFileComp)
}

// renderFormats are the values accepted by render --format.
var renderFormats = []string{render.FormatSVG, render.FormatPDF, render.FormatPNG, render.FormatDOT}

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for mctbnc.

To load completions:

Bash:
  $ source <(mctbnc completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ mctbnc completion bash > /etc/bash_completion.d/mctbnc
  # macOS:
  $ mctbnc completion bash > $(brew --prefix)/etc/bash_completion.d/mctbnc

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ mctbnc completion zsh > "${fpath[1]}/_mctbnc"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ mctbnc completion fish | source

  # To load completions for each session, execute once:
  $ mctbnc completion fish > ~/.config/fish/completions/mctbnc.fish

PowerShell:
  PS> mctbnc completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> mctbnc completion powershell > mctbnc.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}

	return cmd
}
