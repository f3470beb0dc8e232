package cmd

import (
	"errors"
	"strings"

	"github.com/fakeyudi/intervals/internal/config"
	"github.com/fakeyudi/intervals/internal/session"
)

// Process exit codes.
const (
	exitSuccess        = 0
	exitRuntimeFailure = 1
	exitInvalidUsage   = 2
	exitInvalidConfig  = 3
	exitNotFound       = 4
	exitInterrupted    = 130
)

// ExitError carries the process exit code for err.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func withExitCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &ExitError{Code: code, Err: err}
}

func mapExitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var coded *ExitError
	if errors.As(err, &coded) {
		return coded.Code
	}
	if errors.Is(err, session.ErrNotFound) {
		return exitNotFound
	}
	var parseErr *config.ParseError
	var validationErr *config.ValidationError
	if errors.As(err, &parseErr) || errors.As(err, &validationErr) {
		return exitInvalidConfig
	}
	message := err.Error()
	if strings.Contains(message, "unknown command") || strings.Contains(message, "unknown flag") ||
		strings.Contains(message, "accepts ") || strings.Contains(message, "requires at least") {
		return exitInvalidUsage
	}
	return exitRuntimeFailure
}
