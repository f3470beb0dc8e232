package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/intervals/internal/audio"
	"github.com/fakeyudi/intervals/internal/engine"
	"github.com/fakeyudi/intervals/internal/logging"
	"github.com/fakeyudi/intervals/internal/playback"
	"github.com/fakeyudi/intervals/internal/remote"
	"github.com/fakeyudi/intervals/internal/session"
	"github.com/fakeyudi/intervals/internal/tui"
)

var (
	runNoCountdown bool
	runHeadless    bool
	runListen      string
	runTick        time.Duration
)

var errInterrupted = errors.New("run interrupted")

var runCmd = &cobra.Command{
	Use:   "run <id>",
	Short: "Play a session with the interval timer",
	Long: `Plays the session step by step with audio cues. On a terminal the run
screen is shown; otherwise, or with --headless, one JSON line is printed per
update. With --listen the run can be controlled over HTTP.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(store session.Store) error {
			s, err := playback.Load(prefixGetter{store}, args[0])
			if err != nil {
				return err
			}
			headless := runHeadless || !isTerminal(cmd.OutOrStdout())

			runLog := logger
			if !headless {
				// The run screen owns the terminal, so log to a file instead.
				dir, err := dataDir()
				if err != nil {
					return err
				}
				fileLog, closer, err := logging.OpenFile(dir, logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
				if err != nil {
					return err
				}
				defer closer.Close()
				runLog = fileLog
			}

			player, err := audio.NewPlayer(audio.Mode(cfg.Audio.Mode), cmd.ErrOrStderr(), cfg.Audio.Command, cfg.Audio.Files)
			if err != nil {
				return withExitCode(exitInvalidConfig, err)
			}
			cues := audio.NewDispatcher(player, cfg.AudioTimeout(), runLog)

			ctl := playback.New(s, playback.Options{
				Countdown:     cfg.CountdownEnabled() && !runNoCountdown,
				CountdownFrom: cfg.CountdownFrom,
				PreCueWindow:  cfg.PreCueWindow(),
				TickInterval:  runTick,
			}, playback.Deps{
				Cues:  cues,
				Usage: store,
				Log:   runLog.With("session_id", s.ID),
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			serveErr := make(chan error, 1)
			serveCtx, stopServe := context.WithCancel(ctx)
			if addr := listenAddr(); addr != "" {
				go func() {
					serveErr <- remote.Serve(serveCtx, addr, remote.New(ctl, runLog), runLog, func(a net.Addr) {
						fmt.Fprintf(cmd.ErrOrStderr(), "Remote control on http://%s/api/v1/state\n", a)
					})
				}()
			} else {
				serveErr <- nil
			}

			var runErr error
			if headless {
				runErr = runHeadlessLoop(ctx, ctl, cmd.OutOrStdout())
			} else {
				runErr = tui.Run(ctl, tea.WithContext(ctx))
				if errors.Is(runErr, tea.ErrProgramKilled) {
					runErr = errInterrupted
				}
			}

			if st := ctl.Status(); st != engine.StatusFinished && st != engine.StatusIdle {
				ctl.End()
			}
			ctl.Close()
			stopServe()
			if err := <-serveErr; err != nil && runErr == nil {
				runErr = withExitCode(exitRuntimeFailure, err)
			}
			cues.Wait()

			if errors.Is(runErr, errInterrupted) {
				return withExitCode(exitInterrupted, runErr)
			}
			if errors.Is(runErr, playback.ErrEmptyPlan) {
				return withExitCode(exitInvalidUsage, runErr)
			}
			return runErr
		})
	},
}

// runHeadlessLoop starts the run and prints each update as a JSON line until
// the session finishes or ctx is cancelled.
func runHeadlessLoop(ctx context.Context, ctl *playback.Controller, w io.Writer) error {
	updates := ctl.Subscribe(256)
	if err := ctl.Start(); err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	for {
		select {
		case <-ctx.Done():
			return errInterrupted
		case u, ok := <-updates:
			if !ok {
				return nil
			}
			if err := enc.Encode(u); err != nil {
				return err
			}
			if u.Display.Status == engine.StatusFinished {
				return nil
			}
		}
	}
}

func listenAddr() string {
	if runListen != "" {
		return runListen
	}
	return cfg.Remote.Listen
}

// prefixGetter lets playback.Load resolve abbreviated ids.
type prefixGetter struct {
	store session.Store
}

func (g prefixGetter) Get(id string) (*session.Session, error) {
	return findSession(g.store, id)
}

func init() {
	runCmd.Flags().BoolVar(&runNoCountdown, "no-countdown", false, "start the first step immediately")
	runCmd.Flags().BoolVar(&runHeadless, "headless", false, "print JSON updates instead of the run screen")
	runCmd.Flags().StringVar(&runListen, "listen", "", "serve the remote control API on this address (e.g. 127.0.0.1:8080)")
	runCmd.Flags().DurationVar(&runTick, "tick", time.Second, "clock interval")
	runCmd.Flags().MarkHidden("tick")
	rootCmd.AddCommand(runCmd)
}

