package command

import (
	"fmt"
	"strings"
)

// ConstraintKind names a relation between arguments of one command path.
type ConstraintKind string

const (
	ConstraintExactlyOne ConstraintKind = "exactly_one"
	ConstraintAtLeastOne ConstraintKind = "at_least_one"
	ConstraintRequires   ConstraintKind = "requires"
	ConstraintExcludes   ConstraintKind = "excludes"
)

// Constraint relates argument presence. For ConstraintRequires the first
// field requires all the others.
type Constraint struct {
	Kind   ConstraintKind
	Fields []string
}

func ExactlyOne(fields ...string) Constraint {
	return Constraint{Kind: ConstraintExactlyOne, Fields: fields}
}

func AtLeastOne(fields ...string) Constraint {
	return Constraint{Kind: ConstraintAtLeastOne, Fields: fields}
}

func Requires(field string, needs ...string) Constraint {
	return Constraint{Kind: ConstraintRequires, Fields: append([]string{field}, needs...)}
}

func Excludes(fields ...string) Constraint {
	return Constraint{Kind: ConstraintExcludes, Fields: fields}
}

// ParseConstraintKind validates a constraint kind name.
func ParseConstraintKind(value string) (ConstraintKind, error) {
	kind := ConstraintKind(strings.ToLower(strings.TrimSpace(value)))
	switch kind {
	case ConstraintExactlyOne, ConstraintAtLeastOne, ConstraintRequires, ConstraintExcludes:
		return kind, nil
	default:
		return "", fmt.Errorf("unknown constraint %q", value)
	}
}

func (c Constraint) validate() error {
	if _, err := ParseConstraintKind(string(c.Kind)); err != nil {
		return err
	}
	minFields := 2
	if c.Kind == ConstraintAtLeastOne {
		minFields = 1
	}
	if len(c.Fields) < minFields {
		return fmt.Errorf("constraint %s needs at least %d fields", c.Kind, minFields)
	}
	return nil
}

// check evaluates the constraint against the set of supplied arguments.
func (c Constraint) check(present map[string]bool) error {
	count := 0
	for _, field := range c.Fields {
		if present[field] {
			count++
		}
	}
	fields := strings.Join(c.Fields, ", ")
	switch c.Kind {
	case ConstraintExactlyOne:
		if count != 1 {
			return &ConstraintError{Constraint: c, Message: "exactly one of " + fields + " is required"}
		}
	case ConstraintAtLeastOne:
		if count == 0 {
			return &ConstraintError{Constraint: c, Message: "at least one of " + fields + " is required"}
		}
	case ConstraintRequires:
		if !present[c.Fields[0]] {
			return nil
		}
		for _, need := range c.Fields[1:] {
			if !present[need] {
				return &ConstraintError{Constraint: c, Message: c.Fields[0] + " requires " + strings.Join(c.Fields[1:], ", ")}
			}
		}
	case ConstraintExcludes:
		if count > 1 {
			return &ConstraintError{Constraint: c, Message: "only one of " + fields + " may be set"}
		}
	}
	return nil
}
