// Package demo is the clidemo application: a command tree declared in
// commands.yaml, bound to the handlers in this package and run through
// app.Runner.
package demo

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/regenrek/clikit/app"
	"github.com/regenrek/clikit/bridge/urfavecli"
	"github.com/regenrek/clikit/internal/config"
	"github.com/regenrek/clikit/internal/identity"
	"github.com/regenrek/clikit/internal/logging"
	"github.com/regenrek/clikit/output"
	"github.com/regenrek/clikit/spec"
)

//go:embed commands.yaml
var commandsYAML []byte

// Env is the process surface a run reads from and writes to.
type Env struct {
	Name       string
	Version    string
	ConfigPath string
	Stdout     io.Writer
	Stderr     io.Writer
	Stdin      io.Reader
}

// Run starts clidemo with the process streams and returns the exit code.
// argv includes the program name.
func Run(argv []string, version string) int {
	env := Env{
		Name:    identity.ResolveBinaryName(argv),
		Version: version,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Stdin:   os.Stdin,
	}
	var args []string
	if len(argv) > 1 {
		args = argv[1:]
	}
	return RunWith(context.Background(), args, env)
}

// RunWith runs clidemo against env. An empty ConfigPath falls back to
// config.DefaultPath.
func RunWith(ctx context.Context, args []string, env Env) int {
	if env.Name == "" {
		env.Name = identity.CLIName
	}
	if env.Stdout == nil {
		env.Stdout = io.Discard
	}
	if env.Stderr == nil {
		env.Stderr = io.Discard
	}
	fail := func(code int, format string, a ...any) int {
		fmt.Fprintf(env.Stderr, "%s: %s\n", env.Name, fmt.Sprintf(format, a...))
		return code
	}

	path := env.ConfigPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return fail(app.ExitConfig, "%v", err)
		}
		path = p
	}
	store, err := config.Open(path)
	if err != nil {
		return fail(app.ExitConfig, "load config: %v", err)
	}
	settings, err := store.Settings()
	if err != nil {
		return fail(app.ExitConfig, "load config: %v", err)
	}
	color := settings.ColorMode()
	if mode, ok := colorFlag(args); ok {
		color = mode
	}

	logger, closeLogger, err := logging.Init(settings.Logging, logging.InitOptions{
		App:       identity.AppSlug,
		Version:   env.Version,
		Verbosity: logging.VerbosityFromArgs(args),
		Stderr:    env.Stderr,
		Color:     color,
	})
	if err != nil {
		logger = slog.New(output.NewConsoleHandler(env.Stderr, output.Plain(env.Stderr), slog.LevelError))
		logger.Error("init logging failed; using stderr", "err", err)
	} else {
		defer func() { _ = closeLogger() }()
	}

	doc, err := spec.Parse(commandsYAML)
	if err != nil {
		return fail(app.ExitConfig, "commands: %v", err)
	}
	h := &handlers{version: env.Version, store: store, settings: settings}
	tree, err := spec.Build(doc, h.registry())
	if err != nil {
		return fail(app.ExitConfig, "commands: %v", err)
	}
	h.tree = tree

	if urfavecli.IsCompletionRequest(args) {
		if err := urfavecli.Complete(ctx, tree, args, env.Stdout); err != nil {
			logger.Debug("completion failed", "err", err)
		}
		return app.ExitOK
	}

	opts := []app.Option{app.WithColor(color)}
	if format := strings.TrimSpace(settings.ErrorFormat); format != "" {
		f, err := app.ParseErrorFormat(format)
		if err != nil {
			return fail(app.ExitConfig, "load config: %v", err)
		}
		opts = append(opts, app.WithErrorFormat(f))
	}
	if id := doc.App.DefaultCommand; id != "" {
		opts = append(opts, app.WithDefaultCommand(doc.PathOf(id)...))
	}
	runner, err := app.New(tree, app.Dependencies{
		Version: env.Version,
		AppName: env.Name,
		Stdout:  env.Stdout,
		Stderr:  env.Stderr,
		Stdin:   env.Stdin,
		Logger:  logger,
	}, opts...)
	if err != nil {
		return fail(app.ExitInternal, "%v", err)
	}
	return runner.Run(ctx, args)
}

// noColor reports whether --no-color appears before a "--" terminator.
// colorFlag reads --color and --no-color ahead of parsing, since logging is
// set up before the tree exists. The last occurrence wins.
func colorFlag(args []string) (output.ColorMode, bool) {
	var (
		mode output.ColorMode
		ok   bool
	)
	for _, arg := range args {
		switch {
		case arg == "--":
			return mode, ok
		case arg == "--no-color":
			mode, ok = output.ColorNever, true
		case arg == "--color":
			mode, ok = output.ColorAlways, true
		case strings.HasPrefix(arg, "--color="):
			on, err := strconv.ParseBool(strings.TrimPrefix(arg, "--color="))
			if err != nil {
				continue
			}
			mode, ok = output.ColorNever, true
			if on {
				mode = output.ColorAlways
			}
		}
	}
	return mode, ok
}
