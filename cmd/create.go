package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/intervals/internal/export"
	"github.com/fakeyudi/intervals/internal/session"
)

const defaultSessionName = "New Session"

var createFrom string

var createCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a session from the starter template or a file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := ""
		if len(args) == 1 {
			name = strings.TrimSpace(args[0])
		}

		var s *session.Session
		if createFrom != "" {
			loaded, err := readSessions(cmd, createFrom)
			if err != nil {
				return err
			}
			s = session.Duplicate(loaded[0], time.Now())
			s.Name = loaded[0].Name
			if name != "" {
				s.Name = name
			}
		} else {
			if name == "" {
				name = defaultSessionName
			}
			s = session.Default(name, time.Now())
		}
		if err := s.Validate(); err != nil {
			return withExitCode(exitInvalidUsage, err)
		}

		return withStore(func(store session.Store) error {
			if err := store.Save(s); err != nil {
				return err
			}
			logger.Info("session created", "id", s.ID, "name", s.Name)
			cmd.Printf("Created %s (%s)\n", s.Name, s.ID)
			return nil
		})
	},
}

// readSessions parses every session in path, or stdin when path is "-".
func readSessions(cmd *cobra.Command, path string) ([]*session.Session, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
		path = ""
	} else {
		data, err = os.ReadFile(path)
		if os.IsNotExist(err) {
			return nil, withExitCode(exitNotFound, fmt.Errorf("file not found: %s", path))
		}
	}
	if err != nil {
		return nil, err
	}

	parser, err := export.ParserFor(path, data)
	if err != nil {
		return nil, withExitCode(exitInvalidUsage, err)
	}
	sessions, err := parser.Parse(data)
	if err != nil {
		return nil, withExitCode(exitInvalidUsage, err)
	}
	if len(sessions) == 0 {
		return nil, withExitCode(exitInvalidUsage, fmt.Errorf("%s contains no sessions", displayPath(path)))
	}
	return sessions, nil
}

func displayPath(path string) string {
	if path == "" {
		return "stdin"
	}
	return path
}

func init() {
	createCmd.Flags().StringVar(&createFrom, "from", "", "copy the session from an export file (- for stdin)")
	rootCmd.AddCommand(createCmd)
}
