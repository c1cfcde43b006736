package command

import (
	"errors"
	"fmt"
	"strings"
)

// DuplicateCommandError reports a sibling registered twice under one name or
// alias.
type DuplicateCommandError struct {
	Parent []string
	Name   string
}

func (e *DuplicateCommandError) Error() string {
	return fmt.Sprintf("command %q already registered under %s", e.Name, displayPath(e.Parent))
}

// DuplicateArgumentError reports an argument name or short alias declared
// twice on one command path.
type DuplicateArgumentError struct {
	Command []string
	Name    string
}

func (e *DuplicateArgumentError) Error() string {
	return fmt.Sprintf("argument %q already declared on %s", e.Name, displayPath(e.Command))
}

// InvalidDescriptorError reports a descriptor that breaks a tree invariant.
type InvalidDescriptorError struct {
	Command []string
	Arg     string
	Reason  string
}

func (e *InvalidDescriptorError) Error() string {
	if e.Arg != "" {
		return fmt.Sprintf("invalid argument %q on %s: %s", e.Arg, displayPath(e.Command), e.Reason)
	}
	return fmt.Sprintf("invalid command %s: %s", displayPath(e.Command), e.Reason)
}

// UnknownCommandError reports a token that matched no child of a group, or a
// group invoked without a subcommand (Token is empty).
type UnknownCommandError struct {
	// Path is the part of the command path resolved before the failure.
	Path []string
	// Token is the unmatched input, empty when no subcommand was given.
	Token string
	// Position is the index of Token in the dispatched token list.
	Position int
	// Candidates lists the visible children of the group.
	Candidates []string
	// Ambiguous lists the children a prefix matched, if more than one.
	Ambiguous []string
	// Suggestions lists children that look like Token.
	Suggestions []string
}

func (e *UnknownCommandError) Error() string {
	switch {
	case e.Token == "":
		return fmt.Sprintf("no subcommand given for %s", displayPath(e.Path))
	case len(e.Ambiguous) > 0:
		return fmt.Sprintf("ambiguous command %q (could be: %s)", e.Token, strings.Join(e.Ambiguous, ", "))
	default:
		return fmt.Sprintf("unknown command %q", e.Token)
	}
}

// UnknownArgumentError reports an unregistered option or an excess positional.
type UnknownArgumentError struct {
	Token    string
	Position int
}

func (e *UnknownArgumentError) Error() string {
	if strings.HasPrefix(e.Token, "-") {
		return fmt.Sprintf("unknown option %q", e.Token)
	}
	return fmt.Sprintf("unexpected argument %q", e.Token)
}

// ArgumentTypeError reports a value that could not be coerced.
type ArgumentTypeError struct {
	Name    string
	Value   string
	Type    ValueType
	Choices []string
	Err     error
}

func (e *ArgumentTypeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("argument %q: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("argument %q: invalid %s value %q", e.Name, e.Type, e.Value)
}

func (e *ArgumentTypeError) Unwrap() error { return e.Err }

// MissingArgumentError names every required argument that was not supplied.
type MissingArgumentError struct {
	Names []string
}

func (e *MissingArgumentError) Error() string {
	quoted := make([]string, 0, len(e.Names))
	for _, name := range e.Names {
		quoted = append(quoted, fmt.Sprintf("%q", name))
	}
	if len(quoted) == 1 {
		return "missing required argument " + quoted[0]
	}
	return "missing required arguments " + strings.Join(quoted, ", ")
}

// MissingValueError reports an option given as the last token without its
// value.
type MissingValueError struct {
	Name  string
	Token string
}

func (e *MissingValueError) Error() string {
	return fmt.Sprintf("option %s requires a value", e.Token)
}

// ConstraintError reports a violated relation between arguments.
type ConstraintError struct {
	Constraint Constraint
	Message    string
}

func (e *ConstraintError) Error() string { return e.Message }

// ExitError lets an action request a specific exit status.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Message
}

// Exit returns an error that makes the runner exit with code. An empty
// message prints nothing.
func Exit(code int, message string) error {
	return &ExitError{Code: code, Message: message}
}

// ActionError wraps an error returned by an action handler.
type ActionError struct {
	Path []string
	Err  error
}

func (e *ActionError) Error() string {
	if len(e.Path) == 0 {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", strings.Join(e.Path, " "), e.Err)
}

func (e *ActionError) Unwrap() error { return e.Err }

// IsUsageError reports whether err (or any error joined into it) is caused by
// user input to an argument list.
func IsUsageError(err error) bool {
	var (
		unknown  *UnknownArgumentError
		typ      *ArgumentTypeError
		missing  *MissingArgumentError
		value    *MissingValueError
		relation *ConstraintError
	)
	return errors.As(err, &unknown) ||
		errors.As(err, &typ) ||
		errors.As(err, &missing) ||
		errors.As(err, &value) ||
		errors.As(err, &relation)
}

// Flatten splits joined errors into their parts, depth first.
func Flatten(err error) []error {
	if err == nil {
		return nil
	}
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return []error{err}
	}
	var out []error
	for _, inner := range joined.Unwrap() {
		out = append(out, Flatten(inner)...)
	}
	return out
}

func joinErrors(errs []error) error {
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	default:
		return errors.Join(errs...)
	}
}

func displayPath(path []string) string {
	if len(path) == 0 {
		return "the root command"
	}
	return fmt.Sprintf("%q", strings.Join(path, " "))
}
