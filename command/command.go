package command

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"strings"
)

// Action runs a leaf command with its validated parameters.
type Action func(ctx *Context) error

// Context is what an action receives for one invocation.
type Context struct {
	context.Context
	Invocation *Invocation
	Command    *Command
	Out        io.Writer
	ErrOut     io.Writer
	In         io.Reader
	Logger     *slog.Logger
}

// Env carries the streams and logger handed to actions.
type Env struct {
	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader
	Logger *slog.Logger
}

// Command is one node of a built Tree. A command either has an action (leaf)
// or subcommands (group), never both. Nodes are read-only once built.
type Command struct {
	name        string
	aliases     []string
	summary     string
	description string
	hidden      bool
	args        []Arg
	constraints []Constraint
	action      Action
	children    []*Command
	parent      *Command
}

func (c *Command) Name() string        { return c.name }
func (c *Command) Aliases() []string   { return slices.Clone(c.aliases) }
func (c *Command) Summary() string     { return c.summary }
func (c *Command) Description() string { return c.description }
func (c *Command) Hidden() bool        { return c.hidden }
func (c *Command) Parent() *Command    { return c.parent }

// IsLeaf reports whether the command runs an action.
func (c *Command) IsLeaf() bool { return len(c.children) == 0 }

// Action returns the leaf handler, nil for groups.
func (c *Command) Action() Action { return c.action }

// Args returns the arguments declared on this command only.
func (c *Command) Args() []Arg { return slices.Clone(c.args) }

// Constraints returns the constraints declared on this command.
func (c *Command) Constraints() []Constraint { return slices.Clone(c.constraints) }

// Subcommands returns the children in declaration order.
func (c *Command) Subcommands() []*Command { return slices.Clone(c.children) }

// VisibleSubcommands returns the children that are not hidden.
func (c *Command) VisibleSubcommands() []*Command {
	out := make([]*Command, 0, len(c.children))
	for _, child := range c.children {
		if !child.hidden {
			out = append(out, child)
		}
	}
	return out
}

// Path returns the command names from below the root down to c.
func (c *Command) Path() []string {
	var path []string
	for node := c; node != nil && node.parent != nil; node = node.parent {
		path = append(path, node.name)
	}
	slices.Reverse(path)
	return path
}

// Root walks up to the tree root.
func (c *Command) Root() *Command {
	node := c
	for node.parent != nil {
		node = node.parent
	}
	return node
}

// InheritedArgs returns the non-positional arguments declared by ancestors,
// root first. They are accepted by c as well.
func (c *Command) InheritedArgs() []Arg {
	var chain []*Command
	for node := c.parent; node != nil; node = node.parent {
		chain = append(chain, node)
	}
	slices.Reverse(chain)
	var out []Arg
	for _, node := range chain {
		out = append(out, node.options()...)
	}
	return out
}

func (c *Command) options() []Arg {
	out := make([]Arg, 0, len(c.args))
	for _, a := range c.args {
		if a.Kind != KindPositional {
			out = append(out, a)
		}
	}
	return out
}

func (c *Command) positionals() []Arg {
	var out []Arg
	for _, a := range c.args {
		if a.Kind == KindPositional {
			out = append(out, a)
		}
	}
	return out
}

func (c *Command) names() []string {
	return append([]string{c.name}, c.aliases...)
}

// match finds the child named by token. With AllowPrefix a unique prefix is
// accepted; several prefix hits are returned as ambiguous.
func (c *Command) match(token string, cfg Config) (*Command, []string) {
	equal := func(a, b string) bool {
		if cfg.IgnoreCase {
			return strings.EqualFold(a, b)
		}
		return a == b
	}
	for _, child := range c.children {
		for _, name := range child.names() {
			if equal(name, token) {
				return child, nil
			}
		}
	}
	if !cfg.AllowPrefix || token == "" {
		return nil, nil
	}
	prefix := token
	if cfg.IgnoreCase {
		prefix = strings.ToLower(prefix)
	}
	var hits []*Command
	for _, child := range c.children {
		for _, name := range child.names() {
			candidate := name
			if cfg.IgnoreCase {
				candidate = strings.ToLower(candidate)
			}
			if strings.HasPrefix(candidate, prefix) {
				hits = append(hits, child)
				break
			}
		}
	}
	switch len(hits) {
	case 0:
		return nil, nil
	case 1:
		return hits[0], nil
	default:
		names := make([]string, 0, len(hits))
		for _, hit := range hits {
			names = append(names, hit.name)
		}
		return nil, names
	}
}

func (c *Command) hasName(name string, cfg Config) bool {
	for _, existing := range c.names() {
		if existing == name || (cfg.IgnoreCase && strings.EqualFold(existing, name)) {
			return true
		}
	}
	return false
}
