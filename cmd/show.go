package cmd

import (
	"github.com/spf13/cobra"

	"github.com/fakeyudi/intervals/internal/export"
	"github.com/fakeyudi/intervals/internal/session"
)

var showFormat string

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a session's items and the steps it plays",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := export.ParseFormat(showFormat)
		if err != nil {
			return withExitCode(exitInvalidUsage, err)
		}
		renderer, err := export.RendererFor(format)
		if err != nil {
			return withExitCode(exitInvalidUsage, err)
		}

		return withStore(func(store session.Store) error {
			s, err := findSession(store, args[0])
			if err != nil {
				return err
			}
			out, err := renderer.Render(s)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		})
	},
}

func init() {
	showCmd.Flags().StringVarP(&showFormat, "format", "f", "text", "output format: text, markdown, json or yaml")
	rootCmd.AddCommand(showCmd)
}
