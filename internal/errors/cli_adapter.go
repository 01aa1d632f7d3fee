package errors

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// CLIAdapter handles error presentation and exit codes for the command line.
type CLIAdapter struct {
	verbose bool
	logger  zerolog.Logger
	out     io.Writer
}

// NewCLIAdapter creates a CLI adapter writing messages to stderr.
func NewCLIAdapter(verbose bool, logger zerolog.Logger) *CLIAdapter {
	return &CLIAdapter{
		verbose: verbose,
		logger:  logger,
		out:     os.Stderr,
	}
}

// ExitCodeFor determines the exit code for an error.
func (a *CLIAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}

	var e *Error
	if !errors.As(err, &e) {
		return 1
	}

	switch e.Category {
	case CategoryValidation:
		return 2 // Invalid usage
	case CategoryConfig:
		return 7
	case CategoryFileSystem, CategoryTemplate, CategoryRender, CategoryBuild:
		return 11
	case CategoryInternal:
		return 10
	default:
		return 1
	}
}

// FormatError formats an error for display.
func (a *CLIAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}

	var e *Error
	if !errors.As(err, &e) {
		return fmt.Sprintf("Error: %v", err)
	}
	if a.verbose {
		return e.Error()
	}

	switch e.Category {
	case CategoryConfig, CategoryValidation:
		if e.Cause != nil {
			return fmt.Sprintf("%s: %v", e.Message, e.Cause)
		}
		return e.Message
	default:
		return fmt.Sprintf("%s: %s", e.Category, e.Message)
	}
}

// Handle logs err and returns the exit code the process should use.
func (a *CLIAdapter) Handle(err error) int {
	if err == nil {
		return 0
	}

	a.log(err)
	fmt.Fprintf(a.out, "❌ %s\n", a.FormatError(err))
	return a.ExitCodeFor(err)
}

func (a *CLIAdapter) log(err error) {
	var e *Error
	if !errors.As(err, &e) {
		a.logger.Error().Err(err).Msg("Unclassified error")
		return
	}

	ev := a.logger.WithLevel(levelFor(e.Severity)).
		Str("category", string(e.Category))
	for k, v := range e.Context {
		ev = ev.Interface(k, v)
	}
	if e.Cause != nil {
		ev = ev.AnErr("cause", e.Cause)
	}
	ev.Msg(e.Message)
}

func levelFor(severity Severity) zerolog.Level {
	switch severity {
	case SeverityWarning:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}
