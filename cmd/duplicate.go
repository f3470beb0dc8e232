package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/intervals/internal/session"
)

var duplicateCmd = &cobra.Command{
	Use:     "duplicate <id>",
	Aliases: []string{"dup"},
	Short:   "Copy a session under a new id",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(store session.Store) error {
			s, err := findSession(store, args[0])
			if err != nil {
				return err
			}
			dup := session.Duplicate(s, time.Now())
			if err := store.Save(dup); err != nil {
				return err
			}
			logger.Info("session duplicated", "from", s.ID, "id", dup.ID)
			cmd.Printf("Created %s (%s)\n", dup.Name, dup.ID)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(duplicateCmd)
}
