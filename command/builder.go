package command

import (
	"errors"
	"fmt"
	"strings"
)

// Builder assembles a command tree. Registration problems are collected and
// reported together by Build; once built, further registration is rejected.
type Builder struct {
	cfg   Config
	root  *Command
	errs  []error
	built bool
}

// NewBuilder starts a tree whose root is named name (usually the program
// name).
func NewBuilder(name string, cfg Config) *Builder {
	return &Builder{cfg: cfg, root: &Command{name: strings.TrimSpace(name)}}
}

// Root returns the builder for the root command.
func (b *Builder) Root() *CommandBuilder {
	return &CommandBuilder{b: b, cmd: b.root}
}

// Command adds a top-level command. It is shorthand for Root().Command.
func (b *Builder) Command(name, summary string) *CommandBuilder {
	return b.Root().Command(name, summary)
}

func (b *Builder) record(err error) {
	b.errs = append(b.errs, err)
}

// Build validates the whole tree and returns it. All registration errors are
// joined into the returned error; no tree is returned in that case.
func (b *Builder) Build() (*Tree, error) {
	if b.built {
		return nil, errors.New("command tree already built")
	}
	b.built = true
	if b.root.name == "" {
		b.record(&InvalidDescriptorError{Reason: "root command needs a name"})
	}
	_ = walk(b.root, func(cmd *Command) error {
		b.validate(cmd)
		return nil
	})
	if err := joinErrors(b.errs); err != nil {
		return nil, err
	}
	return &Tree{root: b.root, cfg: b.cfg}, nil
}

func (b *Builder) validate(cmd *Command) {
	path := cmd.Path()
	invalid := func(reason string) {
		b.record(&InvalidDescriptorError{Command: path, Reason: reason})
	}
	switch {
	case !cmd.IsLeaf() && cmd.action != nil:
		invalid("a command with subcommands cannot have an action")
	case cmd.IsLeaf() && cmd.action == nil && cmd.parent == nil:
		invalid("no commands registered")
	case cmd.IsLeaf() && cmd.action == nil:
		invalid("leaf command has no action")
	}
	if !cmd.IsLeaf() && len(cmd.positionals()) > 0 {
		invalid("a command with subcommands cannot take positional arguments")
	}
	inherited := cmd.InheritedArgs()
	for _, a := range cmd.args {
		for _, up := range inherited {
			if sameName(b.cfg, up.Name, a.Name) {
				b.record(&DuplicateArgumentError{Command: path, Name: a.Name})
			}
			if a.Short != 0 && up.Short == a.Short {
				b.record(&DuplicateArgumentError{Command: path, Name: "-" + string(a.Short)})
			}
		}
	}
	known := make(map[string]bool)
	for _, a := range inherited {
		known[a.Name] = true
	}
	for _, a := range cmd.args {
		known[a.Name] = true
	}
	for _, c := range cmd.constraints {
		if err := c.validate(); err != nil {
			invalid(err.Error())
			continue
		}
		for _, field := range c.Fields {
			if !known[field] {
				invalid(fmt.Sprintf("constraint refers to unknown argument %q", field))
			}
		}
	}
}

// CommandBuilder registers one command. Methods return the receiver so calls
// can be chained.
type CommandBuilder struct {
	b   *Builder
	cmd *Command
}

// Command adds a child and returns its builder. A duplicate name is recorded
// as *DuplicateCommandError and the returned builder is detached from the
// tree.
func (c *CommandBuilder) Command(name, summary string) *CommandBuilder {
	name = strings.TrimSpace(name)
	child := &Command{name: name, summary: summary, parent: c.cmd}
	detached := &CommandBuilder{b: c.b, cmd: &Command{name: name, summary: summary, parent: c.cmd}}
	if c.frozen() {
		return detached
	}
	switch {
	case name == "" || strings.HasPrefix(name, "-") || strings.ContainsAny(name, " \t"):
		c.b.record(&InvalidDescriptorError{Command: c.cmd.Path(), Reason: fmt.Sprintf("invalid command name %q", name)})
		return detached
	case c.hasChild(name):
		c.b.record(&DuplicateCommandError{Parent: c.cmd.Path(), Name: name})
		return detached
	}
	c.cmd.children = append(c.cmd.children, child)
	return &CommandBuilder{b: c.b, cmd: child}
}

// Alias registers alternative names for the command.
func (c *CommandBuilder) Alias(names ...string) *CommandBuilder {
	if c.frozen() {
		return c
	}
	parent := c.cmd.parent
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || c.cmd.hasName(name, c.b.cfg) {
			continue
		}
		if parent == nil {
			c.b.record(&InvalidDescriptorError{Reason: "the root command cannot have aliases"})
			return c
		}
		if c.hasSibling(name) {
			c.b.record(&DuplicateCommandError{Parent: parent.Path(), Name: name})
			continue
		}
		c.cmd.aliases = append(c.cmd.aliases, name)
	}
	return c
}

// Summarize sets the one-line summary. Subcommands usually get theirs from
// Command.
func (c *CommandBuilder) Summarize(text string) *CommandBuilder {
	if !c.frozen() {
		c.cmd.summary = text
	}
	return c
}

// Describe sets the long description shown in help.
func (c *CommandBuilder) Describe(text string) *CommandBuilder {
	if !c.frozen() {
		c.cmd.description = text
	}
	return c
}

// Hide leaves the command out of help and suggestions. It can still be run.
func (c *CommandBuilder) Hide() *CommandBuilder {
	if !c.frozen() {
		c.cmd.hidden = true
	}
	return c
}

// Action makes the command a leaf run by fn.
func (c *CommandBuilder) Action(fn Action) *CommandBuilder {
	if c.frozen() {
		return c
	}
	if fn == nil {
		c.b.record(&InvalidDescriptorError{Command: c.cmd.Path(), Reason: "action is nil"})
		return c
	}
	c.cmd.action = fn
	return c
}

// Arg declares arguments in order. A name or short alias already used on the
// command is recorded as *DuplicateArgumentError.
func (c *CommandBuilder) Arg(args ...Arg) *CommandBuilder {
	if c.frozen() {
		return c
	}
	path := c.cmd.Path()
	for _, raw := range args {
		a, err := raw.normalize()
		if err != nil {
			c.b.record(&InvalidDescriptorError{Command: path, Arg: a.Name, Reason: err.Error()})
			continue
		}
		if dup := c.duplicateOf(a); dup != "" {
			c.b.record(&DuplicateArgumentError{Command: path, Name: dup})
			continue
		}
		if a.Kind == KindPositional && c.hasVariadicPositional() {
			c.b.record(&InvalidDescriptorError{Command: path, Arg: a.Name, Reason: "positional argument cannot follow a variadic positional"})
			continue
		}
		c.cmd.args = append(c.cmd.args, a)
	}
	return c
}

// Constrain adds relations checked after parsing.
func (c *CommandBuilder) Constrain(constraints ...Constraint) *CommandBuilder {
	if !c.frozen() {
		c.cmd.constraints = append(c.cmd.constraints, constraints...)
	}
	return c
}

// Path returns the command path of the command under construction.
func (c *CommandBuilder) Path() []string { return c.cmd.Path() }

func (c *CommandBuilder) frozen() bool {
	if c.b.built {
		c.b.record(errors.New("command tree already built"))
		return true
	}
	return false
}

func (c *CommandBuilder) hasChild(name string) bool {
	for _, child := range c.cmd.children {
		if child.hasName(name, c.b.cfg) {
			return true
		}
	}
	return false
}

func (c *CommandBuilder) hasSibling(name string) bool {
	for _, sibling := range c.cmd.parent.children {
		if sibling != c.cmd && sibling.hasName(name, c.b.cfg) {
			return true
		}
	}
	return false
}

func (c *CommandBuilder) duplicateOf(a Arg) string {
	for _, existing := range c.cmd.args {
		if sameName(c.b.cfg, existing.Name, a.Name) {
			return a.Name
		}
		if a.Short != 0 && existing.Short == a.Short {
			return "-" + string(a.Short)
		}
	}
	return ""
}

func sameName(cfg Config, a, b string) bool {
	return a == b || (cfg.IgnoreCase && strings.EqualFold(a, b))
}

func (c *CommandBuilder) hasVariadicPositional() bool {
	for _, existing := range c.cmd.args {
		if existing.Kind == KindPositional && existing.Variadic {
			return true
		}
	}
	return false
}
