package cmd

import (
	"errors"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/intervals/internal/session"
)

var importCmd = &cobra.Command{
	Use:   "import <file|->",
	Short: "Import sessions from a JSON, YAML or Markdown export",
	Long: `Imports every session in the file. The browser app's localStorage
array is accepted as JSON. A session whose id is already taken is stored
under a new id.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessions, err := readSessions(cmd, args[0])
		if err != nil {
			return err
		}

		return withStore(func(store session.Store) error {
			for _, s := range sessions {
				if err := s.Validate(); err != nil {
					return withExitCode(exitInvalidUsage, err)
				}
				_, err := store.Get(s.ID)
				switch {
				case err == nil:
					logger.Info("id already taken, assigning a new one", "id", s.ID)
					s.ID = uuid.New().String()
				case !errors.Is(err, session.ErrNotFound):
					return err
				}
				session.AssignIDs(s)
				if err := store.Save(s); err != nil {
					return err
				}
				cmd.Printf("Imported %s (%s)\n", s.Name, s.ID)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
