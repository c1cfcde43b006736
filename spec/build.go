package spec

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/regenrek/clikit/command"
)

// Build compiles doc into a command tree, binding each leaf to the handler
// registered under its ID. Flags with an env name take their default from
// that variable when it is set.
func Build(doc *Document, reg *Registry) (*command.Tree, error) {
	if doc == nil {
		return nil, errors.New("spec is nil")
	}
	cfg := command.Config{IgnoreCase: doc.App.IgnoreCase, AllowPrefix: doc.App.AllowPrefix}
	b := command.NewBuilder(doc.App.Name, cfg)
	c := compiler{reg: reg, lookupEnv: os.LookupEnv}

	root := b.Root()
	root.Summarize(doc.App.Summary).Describe(doc.App.Description)
	root.Arg(c.flags(nil, doc.GlobalFlags)...)
	for _, cmd := range doc.Commands {
		c.command(root, "", cmd)
	}

	tree, err := b.Build()
	if all := errors.Join(append(c.errs, err)...); all != nil {
		return nil, all
	}
	return tree, nil
}

type compiler struct {
	reg       *Registry
	lookupEnv func(string) (string, bool)
	errs      []error
}

func (c *compiler) command(parent *command.CommandBuilder, parentID string, def Command) {
	id := commandID(parentID, def)
	cb := parent.Command(def.Name, def.Summary).Alias(def.Aliases...)
	if def.Description != "" {
		cb.Describe(def.Description)
	}
	if def.Hidden {
		cb.Hide()
	}
	path := cb.Path()
	cb.Arg(c.flags(path, def.Flags)...)
	cb.Arg(c.args(path, def.Args)...)
	for _, raw := range def.Constraints {
		kind, err := command.ParseConstraintKind(raw.Type)
		if err != nil {
			c.errs = append(c.errs, &command.InvalidDescriptorError{Command: path, Reason: err.Error()})
			continue
		}
		cb.Constrain(command.Constraint{Kind: kind, Fields: raw.Fields})
	}
	if len(def.Subcommands) == 0 {
		handler, ok := c.reg.HandlerFor(id)
		if !ok {
			c.errs = append(c.errs, &MissingHandlerError{ID: id})
			return
		}
		cb.Action(handler)
		return
	}
	for _, sub := range def.Subcommands {
		c.command(cb, id, sub)
	}
}

func (c *compiler) flags(path []string, flags []Flag) []command.Arg {
	out := make([]command.Arg, 0, len(flags))
	for _, f := range flags {
		a, err := c.flag(f)
		if err != nil {
			c.errs = append(c.errs, &command.InvalidDescriptorError{Command: path, Arg: f.Name, Reason: err.Error()})
			continue
		}
		out = append(out, a)
	}
	return out
}

func (c *compiler) flag(f Flag) (command.Arg, error) {
	kind, err := command.ParseKind(f.Kind)
	if err != nil {
		return command.Arg{}, err
	}
	typ, err := command.ParseValueType(f.Type)
	if err != nil {
		return command.Arg{}, err
	}
	if strings.TrimSpace(f.Kind) == "" && typ == command.TypeBool {
		kind = command.KindFlag
	}
	a := command.Arg{
		Name:      f.Name,
		Kind:      kind,
		Type:      typ,
		Choices:   f.Enum,
		Default:   f.Default,
		Required:  f.Required,
		Variadic:  f.Repeatable,
		Negatable: f.Negatable,
		Usage:     f.Description,
		Hidden:    f.Hidden,
	}
	if f.Short != "" {
		r, size := utf8.DecodeRuneInString(f.Short)
		if size != len(f.Short) {
			return command.Arg{}, fmt.Errorf("short alias %q must be a single character", f.Short)
		}
		a.Short = r
	}
	if f.Env != "" {
		if v, ok := c.lookupEnv(f.Env); ok && v != "" {
			a.Default = v
			if a.Variadic {
				a.Default = strings.Split(v, ",")
			}
			a.Required = false
		}
		a.Usage = strings.TrimSpace(a.Usage + " [$" + f.Env + "]")
	}
	return a, nil
}

func (c *compiler) args(path []string, args []Arg) []command.Arg {
	out := make([]command.Arg, 0, len(args))
	for _, raw := range args {
		typ, err := command.ParseValueType(raw.Type)
		if err != nil {
			c.errs = append(c.errs, &command.InvalidDescriptorError{Command: path, Arg: raw.Name, Reason: err.Error()})
			continue
		}
		out = append(out, command.Arg{
			Name:     raw.Name,
			Kind:     command.KindPositional,
			Type:     typ,
			Choices:  raw.Enum,
			Default:  raw.Default,
			Required: raw.Required,
			Variadic: raw.Variadic,
			Usage:    raw.Description,
		})
	}
	return out
}
