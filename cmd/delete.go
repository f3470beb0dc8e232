package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/intervals/internal/session"
)

var deleteYes bool

var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a session",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(store session.Store) error {
			s, err := findSession(store, args[0])
			if err != nil {
				return err
			}
			// Only ask when someone is there to answer.
			if !deleteYes && isTerminal(cmd.InOrStdin()) {
				if !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), fmt.Sprintf("Delete %q?", s.Name)) {
					cmd.Println("Cancelled")
					return nil
				}
			}
			if err := store.Delete(s.ID); err != nil {
				return err
			}
			logger.Info("session deleted", "id", s.ID)
			cmd.Printf("Deleted %s (%s)\n", s.Name, s.ID)
			return nil
		})
	},
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "do not ask for confirmation")
	rootCmd.AddCommand(deleteCmd)
}
