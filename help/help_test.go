package help

import (
	"bytes"
	"strings"
	"testing"

	"github.com/muesli/termenv"

	"github.com/regenrek/clikit/command"
	"github.com/regenrek/clikit/output"
)

func noop(*command.Context) error { return nil }

func demoTree(t *testing.T) *command.Tree {
	t.Helper()
	b := command.NewBuilder("tool", command.Config{})
	b.Root().Describe("Manage things.").Arg(command.Counter("verbose").WithShort('v').WithUsage("More output"))
	remote := b.Command("remote", "Manage remotes")
	remote.Command("add", "Add a remote").
		Arg(
			command.Positional("name", command.TypeString).MarkRequired().WithUsage("Remote name"),
			command.Positional("urls", command.TypeString).AsVariadic(),
			command.Enum("proto", "ssh", "https").WithDefault("ssh"),
			command.Flag("fetch").AllowNegation().WithDefault(true),
			command.Option("secret", command.TypeString).Hide(),
		).
		Action(noop)
	remote.Command("remove", "Remove a remote").Alias("rm").
		Arg(command.Positional("name", command.TypeString).MarkRequired()).
		Action(noop)
	b.Command("serve", "Start the server").
		Arg(command.Option("port", command.TypeInt).WithShort('p').MarkRequired().WithUsage("Listen port")).
		Action(noop)
	b.Command("debug", "").Hide().Action(noop)
	tree, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	return tree
}

func TestUsage(t *testing.T) {
	tree := demoTree(t)
	cases := []struct {
		path []string
		app  string
		want string
	}{
		{nil, "", "tool [OPTIONS] COMMAND"},
		{[]string{"remote"}, "", "tool remote [OPTIONS] COMMAND"},
		{[]string{"remote", "add"}, "mytool", "mytool remote add [OPTIONS] <NAME> [URLS...]"},
		{[]string{"serve"}, "", "tool serve [OPTIONS]"},
	}
	for _, tc := range cases {
		cmd, ok := tree.Lookup(tc.path...)
		if !ok {
			t.Fatalf("lookup %v failed", tc.path)
		}
		if got := Usage(cmd, tc.app); got != tc.want {
			t.Fatalf("Usage(%v) = %q, want %q", tc.path, got, tc.want)
		}
	}
}

func TestRenderRoot(t *testing.T) {
	tree := demoTree(t)
	var buf bytes.Buffer
	if err := Render(&buf, tree.Root(), Options{Version: "1.2.3"}); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"tool 1.2.3\n\nManage things.\n",
		"USAGE:\n    tool [OPTIONS] COMMAND\n",
		"    remote   Manage remotes\n",
		"    serve    Start the server\n",
		"    -v, --verbose   More output (repeatable)\n",
		"        --version   Show version\n",
		"Run 'tool COMMAND --help'",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("help missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "debug") {
		t.Fatalf("hidden command shown:\n%s", out)
	}
}

func TestRenderLeaf(t *testing.T) {
	tree := demoTree(t)
	cmd, _ := tree.Lookup("remote", "add")
	var buf bytes.Buffer
	if err := Render(&buf, cmd, Options{}); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"tool remote add - Add a remote\n",
		"ARGUMENTS:\n    NAME   Remote name (required)\n    URLS\n",
		"--proto <ssh|https>",
		"(default: ssh)",
		"--[no-]fetch",
		"(default: true)",
		"-h, --help",
		"GLOBAL OPTIONS:\n    -v, --verbose   More output (repeatable)\n",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("help missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "secret") {
		t.Fatalf("hidden option shown:\n%s", out)
	}
	if strings.Contains(out, "COMMANDS:") {
		t.Fatalf("leaf lists commands:\n%s", out)
	}
}

func TestRenderAliasesAndRequired(t *testing.T) {
	tree := demoTree(t)
	remote, _ := tree.Lookup("remote")
	var buf bytes.Buffer
	if err := Render(&buf, remote, Options{}); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !strings.Contains(buf.String(), "Remove a remote (aliases: rm)") {
		t.Fatalf("alias not listed:\n%s", buf.String())
	}
	serve, _ := tree.Lookup("serve")
	buf.Reset()
	if err := Render(&buf, serve, Options{}); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !strings.Contains(buf.String(), "-p, --port <int>   Listen port (required)") {
		t.Fatalf("port line missing:\n%s", buf.String())
	}
}

func TestRenderColouredAlignsOnVisibleWidth(t *testing.T) {
	tree := demoTree(t)
	var plain, coloured bytes.Buffer
	if err := Render(&plain, tree.Root(), Options{}); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	styles := output.NewStylesWithProfile(&coloured, termenv.ANSI)
	if err := Render(&coloured, tree.Root(), Options{Styles: styles}); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if coloured.String() == plain.String() {
		t.Fatalf("expected escape sequences in coloured help")
	}
	if got := output.Strip(coloured.String()); got != plain.String() {
		t.Fatalf("stripped coloured help differs:\n%s\n---\n%s", got, plain.String())
	}
}
