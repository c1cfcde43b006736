package command

import (
	"fmt"
	"strings"
)

// Kind is the closed set of argument shapes the parser understands.
type Kind uint8

const (
	// KindOption takes a value: --name value, --name=value, -n value.
	KindOption Kind = iota + 1
	// KindFlag is a boolean switch that consumes no value.
	KindFlag
	// KindPositional is bound from bare tokens in declaration order.
	KindPositional
	// KindCounter counts its occurrences (-vvv).
	KindCounter
)

func (k Kind) String() string {
	switch k {
	case KindOption:
		return "option"
	case KindFlag:
		return "flag"
	case KindPositional:
		return "positional"
	case KindCounter:
		return "counter"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ParseKind maps a kind name to a Kind.
func ParseKind(value string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "option":
		return KindOption, nil
	case "flag":
		return KindFlag, nil
	case "positional", "arg":
		return KindPositional, nil
	case "counter", "count":
		return KindCounter, nil
	default:
		return 0, fmt.Errorf("unknown argument kind %q", value)
	}
}

// ValueType is the closed set of value types an argument coerces to.
type ValueType uint8

const (
	TypeString ValueType = iota + 1
	TypeInt
	TypeBool
	TypeEnum
	TypeFloat
	TypeDuration
)

func (t ValueType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInt:
		return "int"
	case TypeBool:
		return "bool"
	case TypeEnum:
		return "enum"
	case TypeFloat:
		return "float"
	case TypeDuration:
		return "duration"
	default:
		return fmt.Sprintf("type(%d)", uint8(t))
	}
}

// ParseValueType maps a type name to a ValueType. An empty name yields zero
// so callers can infer the type from the argument kind.
func ParseValueType(value string) (ValueType, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "":
		return 0, nil
	case "string", "path":
		return TypeString, nil
	case "int", "integer":
		return TypeInt, nil
	case "bool", "boolean":
		return TypeBool, nil
	case "enum":
		return TypeEnum, nil
	case "float", "number":
		return TypeFloat, nil
	case "duration":
		return TypeDuration, nil
	default:
		return 0, fmt.Errorf("unknown value type %q", value)
	}
}
