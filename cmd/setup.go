package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/intervals/internal/config"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Configure intervals (re-run anytime to edit settings)",
	Args:  cobra.NoArgs,
	// Bypass the normal PersistentPreRunE so setup can repair a broken config.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.GlobalPath()
		if err != nil {
			return err
		}

		existing := config.Defaults()
		if loaded, err := config.LoadGlobal(); err == nil {
			existing = config.Merge(loaded, nil)
		}

		updated, err := config.RunSetup(cmd.InOrStdin(), cmd.OutOrStdout(), existing)
		if err != nil {
			return withExitCode(exitInvalidConfig, fmt.Errorf("setup cancelled: %w", err))
		}
		if err := config.Save(path, updated); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  ✓ Config saved to %s\n", path)
		fmt.Fprintln(cmd.OutOrStdout(), "  Run 'intervals create' to make your first session.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(setupCmd)
}
