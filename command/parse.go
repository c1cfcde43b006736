package command

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// ParseArgs binds tokens against the arguments declared on cmd alone,
// ignoring inherited group options. It is a pure function of its inputs.
func ParseArgs(cmd *Command, tokens []string, cfg Config) (Params, error) {
	b := newBinder(cfg)
	b.parseLeaf(newScope(cmd.args, cfg.IgnoreCase), cmd.positionals(), tokens, 0)
	if err := b.finish(cmd.args, cmd.constraints); err != nil {
		return nil, err
	}
	return b.values, nil
}

// scope resolves option tokens to the arguments visible at one point of the
// command path.
type scope struct {
	long        map[string]Arg
	short       map[rune]Arg
	fold        bool
	digitShorts bool
}

func newScope(args []Arg, fold bool) *scope {
	sc := &scope{long: make(map[string]Arg), short: make(map[rune]Arg), fold: fold}
	for _, a := range args {
		if a.Kind == KindPositional {
			continue
		}
		sc.long[sc.key(a.Name)] = a
		if a.Short != 0 {
			sc.short[a.Short] = a
			if a.Short >= '0' && a.Short <= '9' {
				sc.digitShorts = true
			}
		}
	}
	return sc
}

func (sc *scope) key(name string) string {
	if sc.fold {
		return strings.ToLower(name)
	}
	return name
}

// lookupLong resolves --name, including --no-name for negatable flags.
func (sc *scope) lookupLong(name string) (arg Arg, negated bool, ok bool) {
	if a, found := sc.long[sc.key(name)]; found {
		return a, false, true
	}
	if rest, cut := strings.CutPrefix(name, "no-"); cut {
		if a, found := sc.long[sc.key(rest)]; found && a.Negatable {
			return a, true, true
		}
	}
	return Arg{}, false, false
}

// isOption reports whether tok should be read as an option. Negative numbers
// are positionals unless a digit is registered as a short alias.
func (sc *scope) isOption(tok string) bool {
	if len(tok) < 2 || tok[0] != '-' {
		return false
	}
	if !sc.digitShorts {
		if _, err := strconv.ParseFloat(tok, 64); err == nil {
			return false
		}
	}
	return true
}

// binder accumulates values and errors while a token list is walked.
type binder struct {
	cfg    Config
	values Params
	set    map[string]bool
	errs   []error
}

func newBinder(cfg Config) *binder {
	return &binder{cfg: cfg, values: make(Params), set: make(map[string]bool)}
}

func (b *binder) fail(err error) {
	b.errs = append(b.errs, err)
}

// parseGroup consumes group-level options starting at tokens[start] and
// returns the index of the first token that is not an option.
func (b *binder) parseGroup(sc *scope, tokens []string, start int) int {
	i := start
	for i < len(tokens) {
		tok := tokens[i]
		if tok == "--" {
			return i + 1
		}
		if !sc.isOption(tok) {
			return i
		}
		i = b.option(sc, tokens, i)
	}
	return i
}

// parseLeaf binds every token from tokens[start] on.
func (b *binder) parseLeaf(sc *scope, positionals []Arg, tokens []string, start int) {
	next := 0
	literal := false
	for i := start; i < len(tokens); {
		tok := tokens[i]
		if !literal && tok == "--" {
			literal = true
			i++
			continue
		}
		if !literal && sc.isOption(tok) {
			i = b.option(sc, tokens, i)
			continue
		}
		if next >= len(positionals) {
			b.fail(&UnknownArgumentError{Token: tok, Position: i})
			i++
			continue
		}
		arg := positionals[next]
		b.assign(arg, tok)
		if !arg.Variadic {
			next++
		}
		i++
	}
}

// option handles tokens[i], which starts with '-', and returns the index of
// the next unread token.
func (b *binder) option(sc *scope, tokens []string, i int) int {
	tok := tokens[i]
	if body, isLong := strings.CutPrefix(tok, "--"); isLong {
		name, value, hasValue := strings.Cut(body, "=")
		arg, negated, ok := sc.lookupLong(name)
		if !ok {
			b.fail(&UnknownArgumentError{Token: "--" + name, Position: i})
			return i + 1
		}
		switch arg.Kind {
		case KindFlag:
			switch {
			case hasValue && negated:
				b.fail(&ArgumentTypeError{Name: arg.Name, Value: value, Type: TypeBool})
				b.set[arg.Name] = true
			case hasValue:
				b.assign(arg, value)
			default:
				b.store(arg, !negated)
			}
		case KindCounter:
			if hasValue {
				b.assign(arg, value)
			} else {
				b.increment(arg)
			}
		default:
			if !hasValue {
				if i+1 >= len(tokens) {
					b.fail(&MissingValueError{Name: arg.Name, Token: tok})
					b.set[arg.Name] = true
					return i + 1
				}
				i++
				value = tokens[i]
			}
			b.assign(arg, value)
		}
		return i + 1
	}

	shorts := tok[1:]
	for j, r := range shorts {
		arg, ok := sc.short[r]
		if !ok {
			b.fail(&UnknownArgumentError{Token: "-" + string(r), Position: i})
			return i + 1
		}
		switch arg.Kind {
		case KindFlag:
			b.store(arg, true)
		case KindCounter:
			b.increment(arg)
		default:
			rest := shorts[j+utf8.RuneLen(r):]
			if rest != "" {
				b.assign(arg, strings.TrimPrefix(rest, "="))
				return i + 1
			}
			if i+1 >= len(tokens) {
				b.fail(&MissingValueError{Name: arg.Name, Token: "-" + string(r)})
				b.set[arg.Name] = true
				return i + 1
			}
			b.assign(arg, tokens[i+1])
			return i + 2
		}
	}
	return i + 1
}

func (b *binder) assign(arg Arg, raw string) {
	value, err := coerceValue(arg.Type, arg.Choices, raw, b.cfg.IgnoreCase)
	if err != nil {
		b.fail(&ArgumentTypeError{Name: arg.Name, Value: raw, Type: arg.Type, Choices: arg.Choices, Err: err})
		b.set[arg.Name] = true
		return
	}
	b.store(arg, value)
}

func (b *binder) store(arg Arg, value any) {
	if arg.Variadic {
		current := b.values[arg.Name]
		if current == nil {
			current = emptySlice(arg.Type)
		}
		b.values[arg.Name] = appendValue(current, value)
	} else {
		b.values[arg.Name] = value
	}
	b.set[arg.Name] = true
}

func (b *binder) increment(arg Arg) {
	n, _ := b.values[arg.Name].(int)
	b.values[arg.Name] = n + 1
	b.set[arg.Name] = true
}

// finish applies defaults, reports every missing required argument in one
// error and checks constraints.
func (b *binder) finish(args []Arg, constraints []Constraint) error {
	var missing []string
	for _, a := range args {
		if b.set[a.Name] {
			continue
		}
		if a.Required {
			missing = append(missing, a.Name)
			continue
		}
		if v, ok := a.DefaultValue(); ok {
			b.values[a.Name] = v
		}
	}
	if len(missing) > 0 {
		b.fail(&MissingArgumentError{Names: missing})
	}
	for _, c := range constraints {
		if err := c.check(b.set); err != nil {
			b.fail(err)
		}
	}
	return joinErrors(b.errs)
}
