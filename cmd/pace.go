package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/intervals/internal/session"
)

var paceCmd = &cobra.Command{
	Use:   "pace <id> [on|off]",
	Short: "Show or hide the per-kilometre pace while a session runs",
	Long:  "Turns the pace display on or off. Without on or off the setting is toggled.",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var want *bool
		if len(args) == 2 {
			switch strings.ToLower(args[1]) {
			case "on", "true", "yes":
				v := true
				want = &v
			case "off", "false", "no":
				v := false
				want = &v
			default:
				return withExitCode(exitInvalidUsage, fmt.Errorf("expected on or off, got %q", args[1]))
			}
		}

		return withStore(func(store session.Store) error {
			s, err := findSession(store, args[0])
			if err != nil {
				return err
			}
			if want == nil {
				s.ShowPace = !s.ShowPace
			} else {
				s.ShowPace = *want
			}
			if err := store.Save(s); err != nil {
				return err
			}
			state := "off"
			if s.ShowPace {
				state = "on"
			}
			cmd.Printf("Pace %s for %s\n", state, s.Name)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(paceCmd)
}
