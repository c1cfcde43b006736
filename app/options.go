package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/regenrek/clikit/output"
)

// Dependencies are the process resources a Runner writes to and reads from.
type Dependencies struct {
	Version string
	AppName string

	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader

	Logger *slog.Logger
}

// DefaultDependencies returns dependencies wired to the process streams and
// the default slog logger.
func DefaultDependencies(version string) Dependencies {
	return Dependencies{
		Version: version,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Stdin:   os.Stdin,
		Logger:  slog.Default(),
	}
}

// ErrorFormat selects how failures are written to stderr.
type ErrorFormat string

const (
	ErrorText ErrorFormat = "text"
	ErrorJSON ErrorFormat = "json"
)

func ParseErrorFormat(value string) (ErrorFormat, error) {
	switch f := ErrorFormat(strings.ToLower(strings.TrimSpace(value))); f {
	case "":
		return ErrorText, nil
	case ErrorText, ErrorJSON:
		return f, nil
	default:
		return "", fmt.Errorf("invalid error format %q (allowed: text, json)", value)
	}
}

type Option func(*Runner)

func WithErrorFormat(format ErrorFormat) Option {
	return func(r *Runner) { r.format = format }
}

func WithColor(mode output.ColorMode) Option {
	return func(r *Runner) { r.color = mode }
}

// WithoutBuiltins disables the --help and --version interception.
func WithoutBuiltins() Option {
	return func(r *Runner) { r.builtins = false }
}

// WithDefaultCommand runs path when the argument list is empty.
func WithDefaultCommand(path ...string) Option {
	return func(r *Runner) { r.defaultCommand = slices.Clone(path) }
}
