package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/regenrek/clikit/command"
	"github.com/regenrek/clikit/internal/logging"
	"github.com/regenrek/clikit/output"
)

type failure struct {
	args  []string
	inv   *command.Invocation
	err   error
	code  int
	start time.Time
}

// path is the command path the failure belongs to: the partial path for an
// unknown command, the leaf for everything else.
func (r *Runner) path(f failure) []string {
	var (
		unknown *command.UnknownCommandError
		action  *command.ActionError
		panicE  *PanicError
	)
	switch {
	case errors.As(f.err, &panicE):
		return panicE.Path
	case errors.As(f.err, &action):
		return action.Path
	case errors.As(f.err, &unknown):
		return unknown.Path
	case f.inv != nil:
		return f.inv.Path()
	case f.args != nil:
		return r.tree.Locate(f.args).Path()
	default:
		return nil
	}
}

func (r *Runner) report(f failure) {
	path := r.path(f)
	internal := f.code == ExitInternal && isInternal(f.err)
	if internal {
		r.logInternal(path, f)
	}
	if r.format == ErrorJSON {
		r.reportJSON(path, f, internal)
		return
	}
	r.reportText(path, f, internal)
}

func isInternal(err error) bool {
	var (
		exit    *command.ExitError
		unknown *command.UnknownCommandError
	)
	if errors.As(err, &exit) {
		return false
	}
	return fromAction(err) || (!errors.As(err, &unknown) && !command.IsUsageError(err))
}

func (r *Runner) logInternal(path []string, f failure) {
	attrs := []any{"command", strings.Join(path, " "), "err", f.err}
	if f.inv != nil {
		attrs = append(attrs, "params", logging.RedactValues(f.inv.Params()))
	}
	var panicE *PanicError
	if errors.As(f.err, &panicE) {
		attrs = append(attrs, "stack", string(panicE.Stack))
	}
	r.deps.Logger.Error("command failed", attrs...)
}

// cause strips the command path that *command.ActionError adds, since the
// report prefix already names it.
func cause(err error) string {
	var action *command.ActionError
	if errors.As(err, &action) && action.Err != nil {
		return action.Err.Error()
	}
	return err.Error()
}

func (r *Runner) reportText(path []string, f failure, internal bool) {
	w := r.deps.Stderr
	styles := output.NewStyles(w, r.color)
	name := strings.Join(append([]string{r.deps.AppName}, path...), " ")
	prefix := styles.Error.Render(name + ":")

	var exit *command.ExitError
	if errors.As(f.err, &exit) {
		if exit.Message != "" {
			fmt.Fprintf(w, "%s %s\n", prefix, exit.Message)
		}
		return
	}
	if internal {
		fmt.Fprintf(w, "%s internal error: %s\n", prefix, cause(f.err))
		return
	}
	for _, err := range command.Flatten(f.err) {
		fmt.Fprintf(w, "%s %s\n", prefix, err.Error())
	}
	var unknown *command.UnknownCommandError
	if errors.As(f.err, &unknown) {
		if len(unknown.Suggestions) > 0 {
			quoted := make([]string, 0, len(unknown.Suggestions))
			for _, s := range unknown.Suggestions {
				quoted = append(quoted, styles.Suggestion.Render(s))
			}
			fmt.Fprintf(w, "Did you mean %s?\n", strings.Join(quoted, " or "))
		}
		if len(unknown.Candidates) > 0 {
			fmt.Fprintf(w, "Available commands: %s\n", strings.Join(unknown.Candidates, ", "))
		}
	}
	if f.args != nil {
		fmt.Fprintf(w, "Run '%s --help' for usage.\n", name)
	}
}

func (r *Runner) reportJSON(path []string, f failure, internal bool) {
	meta := output.WithDuration(output.NewMeta(strings.Join(path, " "), r.deps.Version), f.start)
	body := output.ErrorBody{
		Message:  cause(f.err),
		ExitCode: f.code,
		Details:  map[string]any{"path": path},
	}
	var (
		exit    *command.ExitError
		unknown *command.UnknownCommandError
	)
	switch {
	case errors.As(f.err, &exit):
		body.Code = output.CodeExit
	case internal:
		body.Code = output.CodeInternal
	case errors.As(f.err, &unknown):
		body.Code = output.CodeUnknownCommand
		body.Details["token"] = unknown.Token
		body.Details["candidates"] = unknown.Candidates
		if len(unknown.Suggestions) > 0 {
			body.Details["suggestions"] = unknown.Suggestions
		}
	default:
		body.Code = output.CodeUsage
		var messages []string
		for _, err := range command.Flatten(f.err) {
			messages = append(messages, err.Error())
		}
		body.Message = strings.Join(messages, "; ")
		body.Details["errors"] = messages
		var missing *command.MissingArgumentError
		if errors.As(f.err, &missing) {
			body.Details["missing"] = missing.Names
		}
	}
	if err := output.WriteError(r.deps.Stderr, meta, body); err != nil {
		r.deps.Logger.Error("write error envelope failed", "err", err)
	}
}
