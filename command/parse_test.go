package command

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func leaf(t *testing.T, cfg Config, args ...Arg) *Command {
	t.Helper()
	b := NewBuilder("tool", cfg)
	b.Command("run", "").Arg(args...).Action(func(*Context) error { return nil })
	tree, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	cmd, ok := tree.Lookup("run")
	if !ok {
		t.Fatalf("run not found")
	}
	return cmd
}

func TestParseArgsSyntaxes(t *testing.T) {
	cmd := leaf(t, Config{},
		Option("name", TypeString).WithShort('n'),
		Option("count", TypeInt).WithShort('c').WithDefault(1),
		Flag("force").WithShort('f'),
		Flag("cache").AllowNegation().WithDefault(true),
		Counter("verbose").WithShort('v'),
		Enum("mode", "fast", "slow"),
		Option("timeout", TypeDuration),
		Option("ratio", TypeFloat),
		Positional("src", TypeString),
		Positional("rest", TypeString).AsVariadic(),
	)
	cases := []struct {
		name   string
		tokens []string
		want   Params
	}{
		{
			name:   "defaults only",
			tokens: nil,
			want:   Params{"count": 1, "force": false, "cache": true, "verbose": 0},
		},
		{
			name:   "long with space and equals",
			tokens: []string{"--name", "alice", "--count=3"},
			want:   Params{"name": "alice", "count": 3, "force": false, "cache": true, "verbose": 0},
		},
		{
			name:   "short bundle with attached value",
			tokens: []string{"-fvvc5"},
			want:   Params{"count": 5, "force": true, "cache": true, "verbose": 2},
		},
		{
			name:   "short with separate value",
			tokens: []string{"-n", "bob"},
			want:   Params{"name": "bob", "count": 1, "force": false, "cache": true, "verbose": 0},
		},
		{
			name:   "negated flag",
			tokens: []string{"--no-cache"},
			want:   Params{"count": 1, "force": false, "cache": false, "verbose": 0},
		},
		{
			name:   "typed values",
			tokens: []string{"--mode", "slow", "--timeout", "1m30s", "--ratio=0.5"},
			want: Params{
				"mode": "slow", "timeout": 90 * time.Second, "ratio": 0.5,
				"count": 1, "force": false, "cache": true, "verbose": 0,
			},
		},
		{
			name:   "positionals and variadic",
			tokens: []string{"a", "b", "c"},
			want: Params{
				"src": "a", "rest": []string{"b", "c"},
				"count": 1, "force": false, "cache": true, "verbose": 0,
			},
		},
		{
			name:   "double dash ends options",
			tokens: []string{"--", "--force", "-x"},
			want: Params{
				"src": "--force", "rest": []string{"-x"},
				"count": 1, "force": false, "cache": true, "verbose": 0,
			},
		},
		{
			name:   "negative number is positional",
			tokens: []string{"-5"},
			want:   Params{"src": "-5", "count": 1, "force": false, "cache": true, "verbose": 0},
		},
		{
			name:   "last value wins",
			tokens: []string{"--count", "2", "--count", "4"},
			want:   Params{"count": 4, "force": false, "cache": true, "verbose": 0},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseArgs(cmd, tc.tokens, Config{})
			if err != nil {
				t.Fatalf("ParseArgs(%v) error: %v", tc.tokens, err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("params mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseArgsIsDeterministic(t *testing.T) {
	cmd := leaf(t, Config{}, Option("port", TypeInt), Flag("tls"), Positional("host", TypeString))
	tokens := []string{"--port", "80", "--tls", "example.org"}
	first, err := ParseArgs(cmd, tokens, Config{})
	if err != nil {
		t.Fatalf("ParseArgs() error: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := ParseArgs(cmd, tokens, Config{})
		if err != nil {
			t.Fatalf("ParseArgs() error: %v", err)
		}
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("run %d differs (-first +again):\n%s", i, diff)
		}
	}
	if tokens[0] != "--port" || len(tokens) != 4 {
		t.Fatalf("tokens were modified: %v", tokens)
	}
}

func TestParseArgsAggregatesMissing(t *testing.T) {
	cmd := leaf(t, Config{},
		Option("a", TypeString).MarkRequired(),
		Option("b", TypeInt).MarkRequired(),
		Option("c", TypeString),
	)
	_, err := ParseArgs(cmd, nil, Config{})
	var missing *MissingArgumentError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingArgumentError, got %v", err)
	}
	if diff := cmp.Diff([]string{"a", "b"}, missing.Names); diff != "" {
		t.Fatalf("names (-want +got):\n%s", diff)
	}
	if got := len(Flatten(err)); got != 1 {
		t.Fatalf("expected a single error, got %d: %v", got, err)
	}
}

func TestParseArgsReportsAllErrorKinds(t *testing.T) {
	cmd := leaf(t, Config{},
		Option("port", TypeInt).MarkRequired(),
		Option("host", TypeString).MarkRequired(),
		Option("count", TypeInt),
	)
	_, err := ParseArgs(cmd, []string{"--bogus", "--count", "many"}, Config{})
	if err == nil {
		t.Fatalf("expected error")
	}
	var (
		unknown *UnknownArgumentError
		typ     *ArgumentTypeError
		missing *MissingArgumentError
	)
	if !errors.As(err, &unknown) || unknown.Token != "--bogus" {
		t.Fatalf("expected unknown --bogus, got %v", err)
	}
	if !errors.As(err, &typ) || typ.Name != "count" || typ.Value != "many" {
		t.Fatalf("expected type error for count, got %v", err)
	}
	if !errors.As(err, &missing) || len(missing.Names) != 2 {
		t.Fatalf("expected port and host missing, got %v", err)
	}
	if !IsUsageError(err) {
		t.Fatalf("expected usage error")
	}
}

func TestParseArgsTypeErrorDoesNotReportMissing(t *testing.T) {
	cmd := leaf(t, Config{}, Option("port", TypeInt).MarkRequired())
	_, err := ParseArgs(cmd, []string{"--port", "http"}, Config{})
	var missing *MissingArgumentError
	if errors.As(err, &missing) {
		t.Fatalf("port was supplied, got %v", err)
	}
	var typ *ArgumentTypeError
	if !errors.As(err, &typ) {
		t.Fatalf("expected ArgumentTypeError, got %v", err)
	}
}

func TestParseArgsMissingValue(t *testing.T) {
	cmd := leaf(t, Config{}, Option("name", TypeString).WithShort('n'))
	for _, tokens := range [][]string{{"--name"}, {"-n"}} {
		_, err := ParseArgs(cmd, tokens, Config{})
		var value *MissingValueError
		if !errors.As(err, &value) || value.Name != "name" {
			t.Fatalf("%v: expected MissingValueError, got %v", tokens, err)
		}
	}
}

func TestParseArgsExcessPositional(t *testing.T) {
	cmd := leaf(t, Config{}, Positional("one", TypeString))
	_, err := ParseArgs(cmd, []string{"a", "b"}, Config{})
	var unknown *UnknownArgumentError
	if !errors.As(err, &unknown) || unknown.Token != "b" || unknown.Position != 1 {
		t.Fatalf("expected unknown b at 1, got %v", err)
	}
}

func TestParseArgsIgnoreCase(t *testing.T) {
	cfg := Config{IgnoreCase: true}
	cmd := leaf(t, cfg, Enum("level", "Low", "High"), Flag("dry-run"))
	got, err := ParseArgs(cmd, []string{"--LEVEL", "high", "--Dry-Run"}, cfg)
	if err != nil {
		t.Fatalf("ParseArgs() error: %v", err)
	}
	if got.String("level") != "High" || !got.Bool("dry-run") {
		t.Fatalf("unexpected params: %v", got)
	}
	if _, err := ParseArgs(cmd, []string{"--level", "high"}, Config{}); err == nil {
		t.Fatalf("expected case-sensitive enum mismatch")
	}
}

func TestParseArgsFlagWithValue(t *testing.T) {
	cmd := leaf(t, Config{}, Flag("tls").AllowNegation())
	got, err := ParseArgs(cmd, []string{"--tls=false"}, Config{})
	if err != nil {
		t.Fatalf("ParseArgs() error: %v", err)
	}
	if got.Bool("tls") {
		t.Fatalf("expected tls=false")
	}
	if _, err := ParseArgs(cmd, []string{"--no-tls=true"}, Config{}); err == nil {
		t.Fatalf("expected error for negated flag with value")
	}
}

func TestParseArgsVariadicOption(t *testing.T) {
	cmd := leaf(t, Config{}, Option("tag", TypeString).WithShort('t').AsVariadic())
	got, err := ParseArgs(cmd, []string{"-t", "a", "--tag=b", "-tc"}, Config{})
	if err != nil {
		t.Fatalf("ParseArgs() error: %v", err)
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, got.Strings("tag")); diff != "" {
		t.Fatalf("tags (-want +got):\n%s", diff)
	}
}

func TestParseArgsConstraints(t *testing.T) {
	cmd := leaf(t, Config{}, Flag("json"), Flag("yaml"), Option("out", TypeString))
	b := NewBuilder("tool", Config{})
	b.Command("export", "").
		Arg(cmd.Args()...).
		Constrain(Excludes("json", "yaml"), Requires("out", "json")).
		Action(func(*Context) error { return nil })
	tree, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	export, _ := tree.Lookup("export")
	if _, err := ParseArgs(export, []string{"--json", "--out", "x"}, Config{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = ParseArgs(export, []string{"--json", "--yaml"}, Config{})
	var relation *ConstraintError
	if !errors.As(err, &relation) || relation.Constraint.Kind != ConstraintExcludes {
		t.Fatalf("expected excludes violation, got %v", err)
	}
	_, err = ParseArgs(export, []string{"--out", "x"}, Config{})
	if !errors.As(err, &relation) || relation.Constraint.Kind != ConstraintRequires {
		t.Fatalf("expected requires violation, got %v", err)
	}
}
