// Package urfavecli exports a command.Tree as a urfave/cli command so that
// applications get the shell completion machinery of that library. Parsing
// and validation stay with the tree: exported leaves hand their tokens back
// to command.Tree.Dispatch.
package urfavecli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/regenrek/clikit/command"
)

// Options configures Export.
type Options struct {
	// Env is passed to actions of dispatched commands. Stdout also receives
	// completion output.
	Env command.Env
}

type exporter struct {
	tree   *command.Tree
	opts   Options
	counts map[string]*int
}

// Export builds a cli.Command mirroring tree. Hidden commands and arguments
// stay hidden. The returned command never calls os.Exit.
func Export(tree *command.Tree, opts Options) (*cli.Command, error) {
	if tree == nil {
		return nil, errors.New("tree is nil")
	}
	e := &exporter{tree: tree, opts: opts, counts: make(map[string]*int)}
	root := tree.Root()
	app := &cli.Command{
		Name:                  root.Name(),
		Usage:                 root.Summary(),
		Description:           root.Description(),
		EnableShellCompletion: true,
		HideHelp:              true,
		HideHelpCommand:       true,
		HideVersion:           true,
		Writer:                writerOr(opts.Env.Stdout),
		ErrWriter:             writerOr(opts.Env.Stderr),
		ExitErrHandler:        func(context.Context, *cli.Command, error) {},
		Flags:                 e.flags(root),
	}
	// Command names cannot contain spaces, so the script command never
	// shadows a tree command such as "completion".
	app.ShellCompletionCommandName = scriptCommandName
	app.ConfigureShellCompletionCommand = func(c *cli.Command) {
		c.Writer = app.Writer
		c.ErrWriter = app.ErrWriter
	}
	if opts.Env.Stdin != nil {
		app.Reader = opts.Env.Stdin
	}
	for _, child := range root.Subcommands() {
		app.Commands = append(app.Commands, e.command(child))
	}
	app.Action = e.action(root)
	return app, nil
}

func (e *exporter) command(cmd *command.Command) *cli.Command {
	out := &cli.Command{
		Name:            cmd.Name(),
		Aliases:         cmd.Aliases(),
		Usage:           cmd.Summary(),
		Description:     cmd.Description(),
		Hidden:          cmd.Hidden(),
		HideHelp:        true,
		HideHelpCommand: true,
		Flags:           e.flags(cmd),
		Action:          e.action(cmd),
	}
	if cmd.IsLeaf() {
		out.SkipFlagParsing = true
		out.ArgsUsage = argsUsage(cmd.Args())
	}
	for _, child := range cmd.Subcommands() {
		out.Commands = append(out.Commands, e.command(child))
	}
	return out
}

// flags declares the options of cmd. Values are kept as text; the tree
// coerces them when the tokens are dispatched.
func (e *exporter) flags(cmd *command.Command) []cli.Flag {
	var out []cli.Flag
	for _, a := range cmd.Args() {
		var aliases []string
		if a.Short != 0 {
			aliases = []string{string(a.Short)}
		}
		switch a.Kind {
		case command.KindPositional:
			continue
		case command.KindFlag:
			out = append(out, &cli.BoolFlag{Name: a.Name, Aliases: aliases, Usage: a.Usage, Hidden: a.Hidden})
			if a.Negatable {
				out = append(out, &cli.BoolFlag{Name: "no-" + a.Name, Usage: a.Usage, Hidden: a.Hidden})
			}
		case command.KindCounter:
			n, ok := e.counts[a.Name]
			if !ok {
				n = new(int)
				e.counts[a.Name] = n
			}
			out = append(out, &cli.BoolFlag{
				Name:    a.Name,
				Aliases: aliases,
				Usage:   a.Usage,
				Hidden:  a.Hidden,
				Config:  cli.BoolConfig{Count: n},
			})
		default:
			if a.Variadic {
				out = append(out, &cli.StringSliceFlag{Name: a.Name, Aliases: aliases, Usage: a.Usage, Hidden: a.Hidden})
				continue
			}
			out = append(out, &cli.StringFlag{Name: a.Name, Aliases: aliases, Usage: a.Usage, Hidden: a.Hidden})
		}
	}
	return out
}

func (e *exporter) action(cmd *command.Command) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		tokens := e.tokens(cmd, c)
		for _, n := range e.counts {
			*n = 0
		}
		return e.tree.Dispatch(ctx, tokens, e.opts.Env)
	}
}

// tokens rebuilds the token list urfave/cli consumed: the options parsed
// at each group level, the command path, then the raw arguments.
func (e *exporter) tokens(cmd *command.Command, c *cli.Command) []string {
	path := cmd.Path()
	var out []string
	for i := 0; i <= len(path); i++ {
		node, ok := e.tree.Lookup(path[:i]...)
		if !ok {
			break
		}
		if node != cmd || !cmd.IsLeaf() || i == 0 {
			out = append(out, e.optionTokens(node, c)...)
		}
		if i < len(path) {
			out = append(out, path[i])
		}
	}
	if c.Args() != nil {
		out = append(out, c.Args().Slice()...)
	}
	return out
}

func (e *exporter) optionTokens(node *command.Command, c *cli.Command) []string {
	var out []string
	for _, a := range node.Args() {
		long := "--" + a.Name
		switch a.Kind {
		case command.KindPositional:
		case command.KindFlag:
			if c.IsSet(a.Name) {
				out = append(out, long+"="+strconv.FormatBool(c.Bool(a.Name)))
			}
			if a.Negatable && c.IsSet("no-"+a.Name) && c.Bool("no-"+a.Name) {
				out = append(out, "--no-"+a.Name)
			}
		case command.KindCounter:
			if n := e.counts[a.Name]; n != nil {
				for range *n {
					out = append(out, long)
				}
			}
		default:
			if !c.IsSet(a.Name) {
				continue
			}
			if a.Variadic {
				for _, v := range c.StringSlice(a.Name) {
					out = append(out, long+"="+v)
				}
				continue
			}
			out = append(out, long+"="+c.String(a.Name))
		}
	}
	return out
}

// Shells lists the shells Completion can render scripts for.
var Shells = []string{"bash", "zsh", "fish", "pwsh"}

const scriptCommandName = "shell completion"

// Completion writes the completion script for shell to w.
func Completion(ctx context.Context, tree *command.Tree, shell string, w io.Writer) error {
	shell = strings.ToLower(strings.TrimSpace(shell))
	if !slices.Contains(Shells, shell) {
		return fmt.Errorf("unsupported shell %q (want %s)", shell, strings.Join(Shells, ", "))
	}
	app, err := Export(tree, Options{Env: command.Env{Stdout: w}})
	if err != nil {
		return err
	}
	return app.Run(ctx, []string{tree.Name(), scriptCommandName, shell})
}

// CompletionFlag is appended to the command line by the generated scripts
// when they ask for candidates.
const CompletionFlag = "--generate-shell-completion"

// IsCompletionRequest reports whether args end with CompletionFlag.
func IsCompletionRequest(args []string) bool {
	return len(args) > 0 && args[len(args)-1] == CompletionFlag
}

// Complete writes completion candidates for args, which must end with
// CompletionFlag.
func Complete(ctx context.Context, tree *command.Tree, args []string, w io.Writer) error {
	app, err := Export(tree, Options{Env: command.Env{Stdout: w, Stderr: io.Discard}})
	if err != nil {
		return err
	}
	return app.Run(ctx, append([]string{tree.Name()}, args...))
}

func argsUsage(args []command.Arg) string {
	var parts []string
	for _, a := range args {
		if a.Kind != command.KindPositional {
			continue
		}
		name := strings.ToUpper(a.Name)
		if a.Variadic {
			name += "..."
		}
		if !a.Required {
			name = "[" + name + "]"
		}
		parts = append(parts, name)
	}
	return strings.Join(parts, " ")
}

func writerOr(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	return w
}
