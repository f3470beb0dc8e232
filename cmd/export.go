package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/intervals/internal/export"
	"github.com/fakeyudi/intervals/internal/session"
)

var (
	exportFormat string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Write a session to a shareable file",
	Long: `Writes the session as JSON, YAML, Markdown or text. Without --format the
format follows the extension of --output, defaulting to JSON.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format := export.FormatForPath(exportOutput, export.FormatJSON)
		if exportFormat != "" {
			f, err := export.ParseFormat(exportFormat)
			if err != nil {
				return withExitCode(exitInvalidUsage, err)
			}
			format = f
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
			if exportOutput == "" || exportOutput == "-" {
				_, err = cmd.OutOrStdout().Write(out)
				return err
			}
			if err := os.WriteFile(exportOutput, out, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", exportOutput, err)
			}
			cmd.Printf("Exported %s to %s\n", s.Name, exportOutput)
			return nil
		})
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "json, yaml, markdown or text")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "file to write (default stdout)")
	rootCmd.AddCommand(exportCmd)
}
