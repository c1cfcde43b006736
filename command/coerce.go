package command

import (
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Coerce converts a raw token into the canonical Go value for typ:
// string, int, bool, string (enum), float64 or time.Duration.
// Choices are only consulted for TypeEnum.
func Coerce(typ ValueType, choices []string, raw string) (any, error) {
	return coerceValue(typ, choices, raw, false)
}

// Format renders a canonical value back into the string form Coerce accepts.
func Format(typ ValueType, value any) (string, error) {
	switch typ {
	case TypeString, TypeEnum:
		if v, ok := value.(string); ok {
			return v, nil
		}
	case TypeInt:
		if v, ok := value.(int); ok {
			return strconv.Itoa(v), nil
		}
	case TypeBool:
		if v, ok := value.(bool); ok {
			return strconv.FormatBool(v), nil
		}
	case TypeFloat:
		if v, ok := value.(float64); ok {
			return strconv.FormatFloat(v, 'g', -1, 64), nil
		}
	case TypeDuration:
		if v, ok := value.(time.Duration); ok {
			return v.String(), nil
		}
	}
	return "", fmt.Errorf("cannot format %T as %s", value, typ)
}

func coerceValue(typ ValueType, choices []string, raw string, fold bool) (any, error) {
	switch typ {
	case TypeString:
		return raw, nil
	case TypeInt:
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, strconv.IntSize)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", raw)
		}
		return int(n), nil
	case TypeBool:
		return parseBool(raw)
	case TypeEnum:
		for _, choice := range choices {
			if choice == raw || (fold && strings.EqualFold(choice, raw)) {
				return choice, nil
			}
		}
		return nil, fmt.Errorf("invalid value %q (allowed: %s)", raw, strings.Join(choices, ", "))
	case TypeFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", raw)
		}
		return f, nil
	case TypeDuration:
		d, err := time.ParseDuration(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("invalid duration %q", raw)
		}
		return d, nil
	default:
		return nil, fmt.Errorf("unsupported value type %s", typ)
	}
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "t", "true", "y", "yes", "on":
		return true, nil
	case "0", "f", "false", "n", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean %q", raw)
	}
}

// normalizeScalar converts a declared default (which may come from YAML or
// TOML decoding) into the canonical value for typ.
func normalizeScalar(typ ValueType, choices []string, value any) (any, error) {
	if s, ok := value.(string); ok {
		return coerceValue(typ, choices, s, false)
	}
	switch typ {
	case TypeBool:
		if v, ok := value.(bool); ok {
			return v, nil
		}
	case TypeInt:
		switch v := value.(type) {
		case int:
			return v, nil
		case int8:
			return int(v), nil
		case int16:
			return int(v), nil
		case int32:
			return int(v), nil
		case int64:
			return int(v), nil
		case uint:
			return int(v), nil
		case uint32:
			return int(v), nil
		case float64:
			if v == math.Trunc(v) {
				return int(v), nil
			}
		}
	case TypeFloat:
		switch v := value.(type) {
		case float64:
			return v, nil
		case float32:
			return float64(v), nil
		case int:
			return float64(v), nil
		case int64:
			return float64(v), nil
		}
	case TypeDuration:
		if v, ok := value.(time.Duration); ok {
			return v, nil
		}
	}
	return nil, fmt.Errorf("default %v (%T) is not a valid %s", value, value, typ)
}

func normalizeDefault(a Arg) (any, error) {
	if !a.Variadic {
		return normalizeScalar(a.Type, a.Choices, a.Default)
	}
	rv := reflect.ValueOf(a.Default)
	if rv.Kind() != reflect.Slice {
		return nil, fmt.Errorf("default for variadic %q must be a list", a.Name)
	}
	out := emptySlice(a.Type)
	for i := 0; i < rv.Len(); i++ {
		v, err := normalizeScalar(a.Type, a.Choices, rv.Index(i).Interface())
		if err != nil {
			return nil, err
		}
		out = appendValue(out, v)
	}
	return out, nil
}

func emptySlice(typ ValueType) any {
	switch typ {
	case TypeInt:
		return []int{}
	case TypeBool:
		return []bool{}
	case TypeFloat:
		return []float64{}
	case TypeDuration:
		return []time.Duration{}
	default:
		return []string{}
	}
}

func appendValue(current any, value any) any {
	switch v := value.(type) {
	case string:
		s, _ := current.([]string)
		return append(s, v)
	case int:
		s, _ := current.([]int)
		return append(s, v)
	case bool:
		s, _ := current.([]bool)
		return append(s, v)
	case float64:
		s, _ := current.([]float64)
		return append(s, v)
	case time.Duration:
		s, _ := current.([]time.Duration)
		return append(s, v)
	default:
		return current
	}
}

func cloneValue(value any) any {
	switch v := value.(type) {
	case []string:
		return slices.Clone(v)
	case []int:
		return slices.Clone(v)
	case []bool:
		return slices.Clone(v)
	case []float64:
		return slices.Clone(v)
	case []time.Duration:
		return slices.Clone(v)
	default:
		return value
	}
}
