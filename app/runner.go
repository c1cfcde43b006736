package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"slices"
	"strings"
	"time"

	"github.com/kballard/go-shellquote"

	"github.com/regenrek/clikit/command"
	"github.com/regenrek/clikit/help"
	"github.com/regenrek/clikit/internal/logging"
	"github.com/regenrek/clikit/output"
)

// Runner owns a command tree and turns one argument list into one exit
// status. A Runner holds no per-run state and may be reused.
type Runner struct {
	tree           *command.Tree
	deps           Dependencies
	format         ErrorFormat
	color          output.ColorMode
	builtins       bool
	defaultCommand []string
	helpShort      bool
}

// New creates a Runner for tree. Nil streams are replaced by empty ones and
// a nil logger discards.
func New(tree *command.Tree, deps Dependencies, opts ...Option) (*Runner, error) {
	if tree == nil {
		return nil, errors.New("app: command tree is nil")
	}
	if deps.AppName == "" {
		deps.AppName = tree.Name()
	}
	if deps.Stdout == nil {
		deps.Stdout = io.Discard
	}
	if deps.Stderr == nil {
		deps.Stderr = io.Discard
	}
	if deps.Stdin == nil {
		deps.Stdin = strings.NewReader("")
	}
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.DiscardHandler)
	}
	r := &Runner{
		tree:     tree,
		deps:     deps,
		format:   ErrorText,
		color:    output.ColorAuto,
		builtins: true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	if _, err := ParseErrorFormat(string(r.format)); err != nil {
		return nil, err
	}
	if _, err := output.ParseColorMode(string(r.color)); err != nil {
		return nil, err
	}
	if len(r.defaultCommand) > 0 {
		if cmd, ok := tree.Lookup(r.defaultCommand...); !ok || !cmd.IsLeaf() {
			return nil, fmt.Errorf("app: default command %q is not a leaf", strings.Join(r.defaultCommand, " "))
		}
	}
	r.helpShort = !declaresShort(tree, 'h')
	return r, nil
}

func (r *Runner) Tree() *command.Tree { return r.tree }

// Run dispatches args (without the program name) and returns the exit status.
func (r *Runner) Run(ctx context.Context, args []string) int {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()
	args = slices.Clone(args)
	if len(args) == 0 && len(r.defaultCommand) > 0 {
		args = slices.Clone(r.defaultCommand)
	}
	if r.builtins {
		if code, handled := r.builtin(args); handled {
			return code
		}
	}

	logger := r.deps.Logger
	logger.Debug("dispatch", "args", logging.SanitizeTokens(args))
	inv, err := r.tree.Resolve(args)
	if err == nil {
		logger = logger.With("command", inv.Command())
		err = r.invoke(ctx, inv, logger)
	}
	code := ExitCode(err)
	if err != nil {
		r.report(failure{args: args, inv: inv, err: err, code: code, start: start})
	}
	logger.Debug("dispatch finished", "exit_code", code, "duration", time.Since(start))
	return code
}

// RunLine splits line with shell quoting rules and runs the result.
func (r *Runner) RunLine(ctx context.Context, line string) int {
	args, err := shellquote.Split(line)
	if err != nil {
		r.report(failure{err: fmt.Errorf("parse command line: %w", err), code: ExitUsage, start: time.Now()})
		return ExitUsage
	}
	return r.Run(ctx, args)
}

func (r *Runner) invoke(ctx context.Context, inv *command.Invocation, logger *slog.Logger) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = &PanicError{Path: inv.Path(), Value: v, Stack: debug.Stack()}
		}
	}()
	return r.tree.Invoke(ctx, inv, command.Env{
		Stdout: r.deps.Stdout,
		Stderr: r.deps.Stderr,
		Stdin:  r.deps.Stdin,
		Logger: logger,
	})
}

// builtin handles --version as the first token and --help (or -h) anywhere
// before "--".
func (r *Runner) builtin(args []string) (int, bool) {
	if len(args) > 0 && args[0] == "--version" && r.deps.Version != "" {
		fmt.Fprintf(r.deps.Stdout, "%s %s\n", r.deps.AppName, r.deps.Version)
		return ExitOK, true
	}
	if !r.wantsHelp(args) {
		return 0, false
	}
	cmd := r.tree.Locate(args)
	err := help.Render(r.deps.Stdout, cmd, help.Options{
		AppName: r.deps.AppName,
		Version: r.deps.Version,
		Styles:  output.NewStyles(r.deps.Stdout, r.color),
	})
	if err != nil {
		r.deps.Logger.Error("render help failed", "err", err)
		return ExitInternal, true
	}
	return ExitOK, true
}

func (r *Runner) wantsHelp(args []string) bool {
	for _, arg := range args {
		switch {
		case arg == "--":
			return false
		case arg == "--help", arg == "-h" && r.helpShort:
			return true
		}
	}
	return false
}

func declaresShort(tree *command.Tree, short rune) bool {
	found := false
	_ = tree.Walk(func(cmd *command.Command) error {
		for _, a := range cmd.Args() {
			if a.Short == short {
				found = true
			}
		}
		return nil
	})
	return found
}
