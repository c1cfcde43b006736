// Package help renders usage screens for commands of a command.Tree.
package help

import (
	"fmt"
	"io"
	"strings"

	"github.com/regenrek/clikit/command"
	"github.com/regenrek/clikit/output"
)

type Options struct {
	// AppName replaces the root command name in usage lines.
	AppName string
	// Version is shown next to the root command.
	Version string
	// Styles colours headers, commands and flags. Nil means plain text.
	Styles *output.Styles
}

type row struct {
	label string
	text  string
}

// Usage returns the one-line synopsis of cmd, e.g.
// "tool remote add [OPTIONS] <NAME> <URL>".
func Usage(cmd *command.Command, appName string) string {
	parts := []string{invocationName(cmd, appName)}
	if hasOptions(cmd) {
		parts = append(parts, "[OPTIONS]")
	}
	if !cmd.IsLeaf() {
		parts = append(parts, "COMMAND")
	}
	for _, a := range cmd.Args() {
		if a.Kind != command.KindPositional || a.Hidden {
			continue
		}
		parts = append(parts, positionalSynopsis(a))
	}
	return strings.Join(parts, " ")
}

// Render writes the help screen for cmd.
func Render(w io.Writer, cmd *command.Command, opts Options) error {
	styles := opts.Styles
	if styles == nil {
		styles = output.Plain(w)
	}
	var b strings.Builder

	header := invocationName(cmd, opts.AppName)
	if cmd.Parent() == nil && opts.Version != "" {
		header += " " + opts.Version
	}
	b.WriteString(styles.Title.Render(header))
	if cmd.Summary() != "" {
		b.WriteString(" - " + cmd.Summary())
	}
	b.WriteString("\n\n")
	if cmd.Description() != "" {
		b.WriteString(strings.TrimRight(cmd.Description(), "\n"))
		b.WriteString("\n\n")
	}

	section(&b, styles, "USAGE", []row{{label: Usage(cmd, opts.AppName)}})
	if aliases := cmd.Aliases(); len(aliases) > 0 {
		section(&b, styles, "ALIASES", []row{{label: strings.Join(aliases, ", ")}})
	}

	var commands []row
	for _, child := range cmd.VisibleSubcommands() {
		text := child.Summary()
		if aliases := child.Aliases(); len(aliases) > 0 {
			text = strings.TrimSpace(text + " (aliases: " + strings.Join(aliases, ", ") + ")")
		}
		commands = append(commands, row{label: styles.Command.Render(child.Name()), text: text})
	}
	section(&b, styles, "COMMANDS", commands)

	var positionals, options []row
	for _, a := range cmd.Args() {
		if a.Hidden {
			continue
		}
		if a.Kind == command.KindPositional {
			positionals = append(positionals, row{label: strings.ToUpper(a.Name), text: describe(a)})
			continue
		}
		options = append(options, row{label: styles.Flag.Render(optionLabel(a)), text: describe(a)})
	}
	options = append(options, row{label: styles.Flag.Render("-h, --help"), text: "Show help"})
	if cmd.Parent() == nil && opts.Version != "" {
		options = append(options, row{label: styles.Flag.Render("    --version"), text: "Show version"})
	}
	section(&b, styles, "ARGUMENTS", positionals)
	section(&b, styles, "OPTIONS", options)

	var global []row
	for _, a := range cmd.InheritedArgs() {
		if !a.Hidden {
			global = append(global, row{label: styles.Flag.Render(optionLabel(a)), text: describe(a)})
		}
	}
	section(&b, styles, "GLOBAL OPTIONS", global)

	if !cmd.IsLeaf() {
		fmt.Fprintf(&b, "Run '%s COMMAND --help' for more information on a command.\n", invocationName(cmd, opts.AppName))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func section(b *strings.Builder, styles *output.Styles, title string, rows []row) {
	if len(rows) == 0 {
		return
	}
	b.WriteString(styles.Title.Render(title + ":"))
	b.WriteString("\n")
	width := 0
	for _, r := range rows {
		width = max(width, output.Width(r.label))
	}
	for _, r := range rows {
		b.WriteString("    ")
		b.WriteString(r.label)
		if r.text != "" {
			b.WriteString(strings.Repeat(" ", width-output.Width(r.label)+3))
			b.WriteString(r.text)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func invocationName(cmd *command.Command, appName string) string {
	name := cmd.Root().Name()
	if appName != "" {
		name = appName
	}
	return strings.Join(append([]string{name}, cmd.Path()...), " ")
}

func hasOptions(cmd *command.Command) bool {
	for _, a := range append(cmd.InheritedArgs(), cmd.Args()...) {
		if a.Kind != command.KindPositional && !a.Hidden {
			return true
		}
	}
	return false
}

func positionalSynopsis(a command.Arg) string {
	name := strings.ToUpper(a.Name)
	switch {
	case a.Variadic && a.Required:
		return "<" + name + ">..."
	case a.Variadic:
		return "[" + name + "...]"
	case a.Required:
		return "<" + name + ">"
	default:
		return "[" + name + "]"
	}
}

func optionLabel(a command.Arg) string {
	short := "    "
	if a.Short != 0 {
		short = "-" + string(a.Short) + ", "
	}
	long := "--" + a.Name
	if a.Negatable {
		long = "--[no-]" + a.Name
	}
	if a.TakesValue() {
		long += " " + valueHint(a)
	}
	return short + long
}

func valueHint(a command.Arg) string {
	if a.Type == command.TypeEnum {
		return "<" + strings.Join(a.Choices, "|") + ">"
	}
	return "<" + a.Type.String() + ">"
}

func describe(a command.Arg) string {
	var notes []string
	switch {
	case a.Required:
		notes = append(notes, "required")
	case a.Default != nil:
		if d := formatDefault(a); d != "" {
			notes = append(notes, "default: "+d)
		}
	}
	if a.Kind == command.KindCounter || (a.Variadic && a.Kind == command.KindOption) {
		notes = append(notes, "repeatable")
	}
	text := a.Usage
	if len(notes) > 0 {
		text = strings.TrimSpace(text + " (" + strings.Join(notes, ", ") + ")")
	}
	return text
}

func formatDefault(a command.Arg) string {
	if !a.Variadic {
		s, err := command.Format(a.Type, a.Default)
		if err != nil {
			return ""
		}
		return s
	}
	var parts []string
	switch values := a.Default.(type) {
	case []string:
		parts = values
	default:
		return fmt.Sprint(values)
	}
	return strings.Join(parts, ", ")
}
