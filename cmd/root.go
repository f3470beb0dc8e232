package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/intervals/internal/config"
	"github.com/fakeyudi/intervals/internal/logging"
	"github.com/fakeyudi/intervals/internal/session"
)

// cfg holds the merged configuration, populated in PersistentPreRunE.
var cfg config.Config

// logger is built from cfg in PersistentPreRunE.
var logger = logging.Discard()

var rootCmd = &cobra.Command{
	Use:           "intervals",
	Short:         "Build interval workouts and run them with a terminal timer",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return withExitCode(exitInvalidConfig, fmt.Errorf("loading config: %w", err))
		}
		cfg = loaded

		l, err := logging.New(cmd.ErrOrStderr(), logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
		if err != nil {
			return withExitCode(exitInvalidConfig, err)
		}
		logger = l
		logger.Debug("config loaded", "store", cfg.Store, "data_dir", cfg.DataDir)
		return nil
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return withExitCode(exitInvalidUsage, err)
	})
}

// Execute runs the root command and exits with the code mapped from its error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(mapExitCode(err))
	}
}

// openStore opens the configured session store.
func openStore() (session.Store, error) {
	store, err := session.Open(cfg.Store, cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", cfg.Store, err)
	}
	logger.Debug("store opened", "backend", cfg.Store, "location", store.Location())
	return store, nil
}

// withStore opens the store for the duration of fn.
func withStore(fn func(session.Store) error) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

// dataDir resolves the directory for sessions and the run log.
func dataDir() (string, error) {
	if cfg.DataDir != "" {
		return cfg.DataDir, nil
	}
	return session.DataDir()
}
