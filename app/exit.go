// Package app runs a command tree as a process: one dispatch per Run, with
// diagnostics written to stderr and outcomes mapped to exit statuses.
package app

import (
	"errors"
	"fmt"

	"github.com/regenrek/clikit/command"
)

// Exit statuses returned by Runner.Run.
const (
	ExitOK             = 0
	ExitUsage          = 2
	ExitUnknownCommand = 3
	ExitInternal       = 70
	ExitConfig         = 78
)

// ExitCode maps a dispatch error to a process exit status. A handler-requested
// *command.ExitError wins over every other category; any other handler error
// is internal, whatever it wraps.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var exit *command.ExitError
	if errors.As(err, &exit) {
		return exit.Code
	}
	if fromAction(err) {
		return ExitInternal
	}
	var unknown *command.UnknownCommandError
	if errors.As(err, &unknown) {
		return ExitUnknownCommand
	}
	if command.IsUsageError(err) {
		return ExitUsage
	}
	return ExitInternal
}

func fromAction(err error) bool {
	var action *command.ActionError
	return errors.As(err, &action)
}

// PanicError is reported when an action panics.
type PanicError struct {
	Path  []string
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}
