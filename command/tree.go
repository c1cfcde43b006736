package command

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

// Config controls how command names and values are matched.
type Config struct {
	// IgnoreCase matches command names, aliases, long option names and enum
	// values without regard to case.
	IgnoreCase bool
	// AllowPrefix accepts a unique prefix of a subcommand name.
	AllowPrefix bool
}

// Tree is an immutable command hierarchy produced by a Builder. It is safe
// for concurrent use.
type Tree struct {
	root *Command
	cfg  Config
}

func (t *Tree) Root() *Command { return t.root }
func (t *Tree) Config() Config { return t.cfg }
func (t *Tree) Name() string   { return t.root.name }

// Lookup follows path from the root using the tree's matching rules.
func (t *Tree) Lookup(path ...string) (*Command, bool) {
	cmd := t.root
	for _, name := range path {
		child, _ := cmd.match(name, t.cfg)
		if child == nil {
			return nil, false
		}
		cmd = child
	}
	return cmd, true
}

// Walk visits every command depth first in declaration order, root included.
func (t *Tree) Walk(fn func(cmd *Command) error) error {
	return walk(t.root, fn)
}

func walk(cmd *Command, fn func(cmd *Command) error) error {
	if err := fn(cmd); err != nil {
		return err
	}
	for _, child := range cmd.children {
		if err := walk(child, fn); err != nil {
			return err
		}
	}
	return nil
}

// Locate returns the deepest command named by tokens, skipping options. It
// never fails and is meant for help lookups.
func (t *Tree) Locate(tokens []string) *Command {
	cmd := t.root
	for _, tok := range tokens {
		if tok == "--" || cmd.IsLeaf() {
			break
		}
		if strings.HasPrefix(tok, "-") {
			continue
		}
		child, _ := cmd.match(tok, t.cfg)
		if child == nil {
			break
		}
		cmd = child
	}
	return cmd
}

// Resolve walks tokens down to a leaf and parses the rest against it.
func (t *Tree) Resolve(tokens []string) (*Invocation, error) {
	return t.resolve(tokens)
}

// Dispatch resolves tokens and runs the leaf action synchronously. Errors
// returned by the action are wrapped in *ActionError.
func (t *Tree) Dispatch(ctx context.Context, tokens []string, env Env) error {
	inv, err := t.Resolve(tokens)
	if err != nil {
		return err
	}
	return t.Invoke(ctx, inv, env)
}

// Invoke runs the action of the leaf named by inv.Path. Errors returned by
// the action are wrapped in *ActionError.
func (t *Tree) Invoke(ctx context.Context, inv *Invocation, env Env) error {
	cmd := inv.cmd
	if cmd == nil {
		found, ok := t.Lookup(inv.path...)
		if !ok || !found.IsLeaf() {
			return unknownCommand(t.root, strings.Join(inv.path, " "), 0, nil)
		}
		cmd = found
	}
	if ctx == nil {
		ctx = context.Background()
	}
	actionCtx := &Context{
		Context:    ctx,
		Invocation: inv,
		Command:    cmd,
		Out:        writerOr(env.Stdout),
		ErrOut:     writerOr(env.Stderr),
		In:         env.Stdin,
		Logger:     env.Logger,
	}
	if actionCtx.In == nil {
		actionCtx.In = strings.NewReader("")
	}
	if actionCtx.Logger == nil {
		actionCtx.Logger = slog.New(slog.DiscardHandler)
	}
	if err := cmd.action(actionCtx); err != nil {
		return &ActionError{Path: inv.Path(), Err: err}
	}
	return nil
}

func (t *Tree) resolve(tokens []string) (*Invocation, error) {
	b := newBinder(t.cfg)
	cmd := t.root
	var (
		path        []string
		visible     []Arg
		all         []Arg
		constraints []Constraint
	)
	i := 0
	for !cmd.IsLeaf() {
		visible = append(visible, cmd.options()...)
		all = append(all, cmd.args...)
		constraints = append(constraints, cmd.constraints...)
		i = b.parseGroup(newScope(visible, t.cfg.IgnoreCase), tokens, i)
		if i >= len(tokens) {
			return nil, joinErrors(append(b.errs, unknownCommand(cmd, "", i, nil)))
		}
		child, ambiguous := cmd.match(tokens[i], t.cfg)
		if child == nil {
			return nil, joinErrors(append(b.errs, unknownCommand(cmd, tokens[i], i, ambiguous)))
		}
		path = append(path, child.name)
		cmd = child
		i++
	}
	visible = append(visible, cmd.options()...)
	all = append(all, cmd.args...)
	constraints = append(constraints, cmd.constraints...)
	b.parseLeaf(newScope(visible, t.cfg.IgnoreCase), cmd.positionals(), tokens, i)
	if err := b.finish(all, constraints); err != nil {
		return nil, err
	}
	return &Invocation{path: path, params: b.values, cmd: cmd}, nil
}

func writerOr(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	return w
}
