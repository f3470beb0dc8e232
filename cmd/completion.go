package cmd

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/intervals/internal/shell"
)

var completionInstall bool

var completionCmd = &cobra.Command{
	Use:       "completion [bash|zsh|fish]",
	Short:     "Print or install the shell completion script",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: shell.Supported,
	RunE: func(cmd *cobra.Command, args []string) error {
		name := shell.Detect()
		if len(args) == 1 {
			name = args[0]
		}
		if !shell.IsSupported(name) {
			return withExitCode(exitInvalidUsage, fmt.Errorf("unsupported shell: %s", name))
		}

		var script bytes.Buffer
		var err error
		switch name {
		case "bash":
			err = rootCmd.GenBashCompletionV2(&script, true)
		case "zsh":
			err = rootCmd.GenZshCompletion(&script)
		case "fish":
			err = rootCmd.GenFishCompletion(&script, true)
		}
		if err != nil {
			return err
		}

		if !completionInstall {
			_, err = cmd.OutOrStdout().Write(script.Bytes())
			return err
		}
		_, err = shell.Install(name, script.Bytes(), cmd.OutOrStdout())
		return err
	},
}

func init() {
	completionCmd.Flags().BoolVar(&completionInstall, "install", false, "write the script under the config directory")
	rootCmd.AddCommand(completionCmd)
}
