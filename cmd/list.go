package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/intervals/internal/session"
	"github.com/fakeyudi/intervals/internal/timecode"
)

var (
	listSort  string
	listAsc   bool
	listWatch bool
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List saved sessions",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sortName := cfg.List.Sort
		if cmd.Flags().Changed("sort") {
			sortName = listSort
		}
		key, err := session.ParseSortKey(sortName)
		if err != nil {
			return withExitCode(exitInvalidUsage, err)
		}
		asc := cfg.List.Order == "asc"
		if cmd.Flags().Changed("asc") {
			asc = listAsc
		}

		return withStore(func(store session.Store) error {
			if err := printSessions(cmd.OutOrStdout(), store, key, asc); err != nil {
				return err
			}
			if !listWatch {
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return watchSessions(ctx, store, func() {
				fmt.Fprintln(cmd.OutOrStdout())
				if err := printSessions(cmd.OutOrStdout(), store, key, asc); err != nil {
					logger.Warn("listing sessions failed", "error", err)
				}
			})
		})
	},
}

// watchSessions calls refresh after each burst of changes to the store.
func watchSessions(ctx context.Context, store session.Store, refresh func()) error {
	const settle = 200 * time.Millisecond
	changed := make(chan struct{}, 1)
	errCh := make(chan error, 1)
	go func() {
		errCh <- session.Watch(ctx, store.Location(), func(ev fsnotify.Event) {
			logger.Debug("store changed", "path", ev.Name, "op", ev.Op.String())
			select {
			case changed <- struct{}{}:
			default:
			}
		})
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("watching %s: %w", store.Location(), err)
			}
			return nil
		case <-changed:
			// A single save produces several events; wait for them to settle.
			select {
			case <-time.After(settle):
			case <-ctx.Done():
				return nil
			}
			select {
			case <-changed:
			default:
			}
			refresh()
		}
	}
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)

func printSessions(w io.Writer, store session.Store, key session.SortKey, asc bool) error {
	sessions, err := store.List()
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Fprintln(w, "no sessions yet, create one with `intervals create`")
		return nil
	}
	session.Sort(sessions, key, asc)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers("ID", "NAME", "ITEMS", "TOTAL", "LAST USED")
	for _, s := range sessions {
		t.Row(shortID(s.ID), s.Name, strconv.Itoa(len(s.Items)),
			timecode.FormatTotal(s.TotalTime), lastUsedText(s.LastUsedAt))
	}
	fmt.Fprintln(w, t.String())
	return nil
}

func lastUsedText(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "never"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func init() {
	listCmd.Flags().StringVar(&listSort, "sort", "last-used", "sort by last-used, created, duration or name")
	listCmd.Flags().BoolVar(&listAsc, "asc", false, "sort ascending")
	listCmd.Flags().BoolVarP(&listWatch, "watch", "w", false, "keep listing as sessions change")
	rootCmd.AddCommand(listCmd)
}
