package command

import (
	"errors"
	"slices"
	"strings"
)

// Arg declares one accepted flag, option, counter or positional argument.
//
// Zero Kind means KindOption. Zero Type is inferred: bool for flags, int for
// counters, enum when Choices is set, string otherwise.
type Arg struct {
	Name      string
	Kind      Kind
	Type      ValueType
	Choices   []string
	Default   any
	Required  bool
	Short     rune
	Variadic  bool
	Negatable bool
	Usage     string
	Hidden    bool
}

// Option declares --name <value>.
func Option(name string, typ ValueType) Arg {
	return Arg{Name: name, Kind: KindOption, Type: typ}
}

// Flag declares a boolean --name.
func Flag(name string) Arg {
	return Arg{Name: name, Kind: KindFlag, Type: TypeBool}
}

// Counter declares a repeatable --name whose value is its occurrence count.
func Counter(name string) Arg {
	return Arg{Name: name, Kind: KindCounter, Type: TypeInt}
}

// Positional declares a bare argument bound by position.
func Positional(name string, typ ValueType) Arg {
	return Arg{Name: name, Kind: KindPositional, Type: typ}
}

// Enum declares --name <choice>.
func Enum(name string, choices ...string) Arg {
	return Arg{Name: name, Kind: KindOption, Type: TypeEnum, Choices: choices}
}

func (a Arg) WithShort(r rune) Arg {
	a.Short = r
	return a
}

func (a Arg) WithDefault(value any) Arg {
	a.Default = value
	return a
}

func (a Arg) WithUsage(usage string) Arg {
	a.Usage = usage
	return a
}

func (a Arg) WithChoices(choices ...string) Arg {
	a.Type = TypeEnum
	a.Choices = choices
	return a
}

// MarkRequired makes the argument mandatory.
func (a Arg) MarkRequired() Arg {
	a.Required = true
	return a
}

// AsVariadic lets a positional absorb all remaining tokens, or an option
// collect every occurrence.
func (a Arg) AsVariadic() Arg {
	a.Variadic = true
	return a
}

// AllowNegation accepts --no-name for a flag.
func (a Arg) AllowNegation() Arg {
	a.Negatable = true
	return a
}

func (a Arg) Hide() Arg {
	a.Hidden = true
	return a
}

// TakesValue reports whether the argument consumes a value token when given
// as an option.
func (a Arg) TakesValue() bool {
	return a.Kind == KindOption
}

// DefaultValue returns the value bound when the argument is omitted. Flags and
// counters default to false and 0; other arguments only when declared.
func (a Arg) DefaultValue() (any, bool) {
	if a.Default != nil {
		return cloneValue(a.Default), true
	}
	switch a.Kind {
	case KindFlag:
		return false, true
	case KindCounter:
		return 0, true
	}
	return nil, false
}

// normalize checks the descriptor invariants and fills inferred fields.
func (a Arg) normalize() (Arg, error) {
	a.Name = strings.TrimSpace(a.Name)
	if a.Name == "" {
		return a, errors.New("argument name is required")
	}
	if strings.HasPrefix(a.Name, "-") || strings.ContainsAny(a.Name, " =\t") {
		return a, errors.New("argument name must not start with '-' or contain spaces or '='")
	}
	if a.Kind == 0 {
		a.Kind = KindOption
	}
	switch a.Kind {
	case KindFlag:
		if a.Type == 0 {
			a.Type = TypeBool
		}
		if a.Type != TypeBool {
			return a, errors.New("flag must be boolean")
		}
	case KindCounter:
		if a.Type == 0 {
			a.Type = TypeInt
		}
		if a.Type != TypeInt {
			return a, errors.New("counter must be an integer")
		}
	case KindOption, KindPositional:
		if a.Type == 0 {
			a.Type = TypeString
			if len(a.Choices) > 0 {
				a.Type = TypeEnum
			}
		}
	default:
		return a, errors.New("unknown argument kind")
	}
	if a.Type < TypeString || a.Type > TypeDuration {
		return a, errors.New("unknown value type")
	}
	if (a.Kind == KindFlag || a.Kind == KindCounter) && (a.Variadic || a.Required) {
		return a, errors.New("flags and counters cannot be required or variadic")
	}
	if a.Negatable && a.Kind != KindFlag {
		return a, errors.New("only flags can be negated")
	}
	if a.Kind == KindPositional && a.Short != 0 {
		return a, errors.New("positional arguments have no short alias")
	}
	if a.Short == '-' || a.Short == '=' || a.Short == ' ' {
		return a, errors.New("invalid short alias")
	}
	if a.Type == TypeEnum && len(a.Choices) == 0 {
		return a, errors.New("enum requires at least one choice")
	}
	if a.Type != TypeEnum && len(a.Choices) > 0 {
		return a, errors.New("choices are only valid for enums")
	}
	if a.Required && a.Default != nil {
		return a, errors.New("required argument cannot have a default")
	}
	a.Choices = slices.Clone(a.Choices)
	if a.Default != nil {
		v, err := normalizeDefault(a)
		if err != nil {
			return a, err
		}
		a.Default = v
	}
	return a, nil
}

// display renders the argument the way a user types it.
func (a Arg) display() string {
	if a.Kind == KindPositional {
		return strings.ToUpper(a.Name)
	}
	return "--" + a.Name
}
