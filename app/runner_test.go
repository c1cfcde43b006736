package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/regenrek/clikit/command"
	"github.com/regenrek/clikit/output"
)

type harness struct {
	runner *Runner
	stdout bytes.Buffer
	stderr bytes.Buffer
	logs   bytes.Buffer
	seen   []command.Params
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	h := &harness{}
	record := func(ctx *command.Context) error {
		h.seen = append(h.seen, ctx.Invocation.Params())
		return nil
	}
	b := command.NewBuilder("tool", command.Config{})
	b.Command("serve", "Start the server").
		Arg(command.Option("port", command.TypeInt).MarkRequired()).
		Action(record)
	b.Command("version", "Print the version").Action(func(ctx *command.Context) error {
		_, err := ctx.Out.Write([]byte("1.0.0\n"))
		return err
	})
	b.Command("fail", "").Arg(command.Option("token", command.TypeString)).Action(func(*command.Context) error {
		return errors.New("boom")
	})
	b.Command("sync", "").Action(func(ctx *command.Context) error {
		_, err := command.ParseArgs(ctx.Command, []string{"--bogus"}, command.Config{})
		return fmt.Errorf("load manifest: %w", err)
	})
	b.Command("crash", "").Action(func(*command.Context) error {
		panic("kaboom")
	})
	b.Command("quit", "").Arg(command.Option("code", command.TypeInt).WithDefault(4)).Action(func(ctx *command.Context) error {
		return command.Exit(ctx.Invocation.Int("code"), "stopped early")
	})
	b.Command("echo", "").Arg(command.Positional("words", command.TypeString).AsVariadic()).Action(record)
	tree, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(&h.logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	deps := Dependencies{Version: "1.0.0", Stdout: &h.stdout, Stderr: &h.stderr, Logger: logger}
	opts = append([]Option{WithColor(output.ColorNever)}, opts...)
	h.runner, err = New(tree, deps, opts...)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return h
}

func (h *harness) run(args ...string) int {
	return h.runner.Run(context.Background(), args)
}

func TestRunScenario(t *testing.T) {
	h := newHarness(t)
	if code := h.run("serve", "--port=8080"); code != ExitOK {
		t.Fatalf("serve --port=8080: code=%d stderr=%s", code, h.stderr.String())
	}
	if diff := cmp.Diff([]command.Params{{"port": 8080}}, h.seen); diff != "" {
		t.Fatalf("params (-want +got):\n%s", diff)
	}

	h.stderr.Reset()
	if code := h.run("serve"); code != ExitUsage {
		t.Fatalf("serve: code=%d", code)
	}
	if got := h.stderr.String(); !strings.Contains(got, `tool serve: missing required argument "port"`) {
		t.Fatalf("stderr = %q", got)
	}

	h.stderr.Reset()
	if code := h.run("srve"); code != ExitUnknownCommand {
		t.Fatalf("srve: code=%d", code)
	}
	got := h.stderr.String()
	for _, want := range []string{`tool: unknown command "srve"`, "Did you mean serve?", "Available commands: serve, version"} {
		if !strings.Contains(got, want) {
			t.Fatalf("stderr missing %q:\n%s", want, got)
		}
	}

	h.stderr.Reset()
	if code := h.run("version", "extra"); code != ExitUsage {
		t.Fatalf("version extra: code=%d", code)
	}
	if !strings.Contains(h.stderr.String(), `unexpected argument "extra"`) {
		t.Fatalf("stderr = %q", h.stderr.String())
	}
	if len(h.seen) != 1 {
		t.Fatalf("actions ran on failed dispatch: %v", h.seen)
	}
}

func TestRunExitCodesAreDistinct(t *testing.T) {
	codes := map[int]bool{ExitOK: true, ExitUsage: true, ExitUnknownCommand: true, ExitInternal: true, ExitConfig: true}
	if len(codes) != 5 {
		t.Fatalf("exit codes overlap")
	}
}

func TestRunNoSubcommand(t *testing.T) {
	h := newHarness(t)
	if code := h.run(); code != ExitUnknownCommand {
		t.Fatalf("code=%d", code)
	}
	if !strings.Contains(h.stderr.String(), "no subcommand given") {
		t.Fatalf("stderr = %q", h.stderr.String())
	}
}

func TestRunHandlerErrorIsInternal(t *testing.T) {
	h := newHarness(t)
	if code := h.run("fail", "--token", "s3cret"); code != ExitInternal {
		t.Fatalf("code=%d", code)
	}
	if got := h.stderr.String(); got != "tool fail: internal error: boom\n" {
		t.Fatalf("stderr = %q", got)
	}
	logs := h.logs.String()
	if !strings.Contains(logs, "level=ERROR") || !strings.Contains(logs, "command failed") || !strings.Contains(logs, "params=") {
		t.Fatalf("internal fault not logged with context:\n%s", logs)
	}
	if strings.Contains(logs, "s3cret") || !strings.Contains(logs, "<redacted>") {
		t.Fatalf("secret leaked into logs:\n%s", logs)
	}
}

func TestRunHandlerErrorWrappingUsageErrorIsInternal(t *testing.T) {
	h := newHarness(t)
	if code := h.run("sync"); code != ExitInternal {
		t.Fatalf("code=%d stderr=%q", code, h.stderr.String())
	}
	want := "tool sync: internal error: load manifest: unknown option \"--bogus\"\n"
	if got := h.stderr.String(); got != want {
		t.Fatalf("stderr = %q, want %q", got, want)
	}

	j := newHarness(t, WithErrorFormat(ErrorJSON))
	if code := j.run("sync"); code != ExitInternal {
		t.Fatalf("json code=%d", code)
	}
	var env output.ErrorEnvelope
	if err := json.Unmarshal(j.stderr.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v (%s)", err, j.stderr.String())
	}
	if env.Error.Code != output.CodeInternal || env.Error.ExitCode != ExitInternal {
		t.Fatalf("unexpected envelope: %+v", env)
	}
}

func TestRunRecoversPanics(t *testing.T) {
	h := newHarness(t)
	if code := h.run("crash"); code != ExitInternal {
		t.Fatalf("code=%d", code)
	}
	if !strings.Contains(h.stderr.String(), "internal error: panic: kaboom") {
		t.Fatalf("stderr = %q", h.stderr.String())
	}
	if !strings.Contains(h.logs.String(), "stack=") {
		t.Fatalf("stack not logged:\n%s", h.logs.String())
	}
}

func TestRunHandlerExitCode(t *testing.T) {
	h := newHarness(t)
	if code := h.run("quit"); code != 4 {
		t.Fatalf("code=%d", code)
	}
	if got := h.stderr.String(); got != "tool quit: stopped early\n" {
		t.Fatalf("stderr = %q", got)
	}
	if code := h.run("quit", "--code", "0"); code != ExitOK {
		t.Fatalf("code=%d", code)
	}
	if strings.Contains(h.logs.String(), "level=ERROR") {
		t.Fatalf("requested exit logged as fault:\n%s", h.logs.String())
	}
}

func TestRunBuiltins(t *testing.T) {
	h := newHarness(t)
	if code := h.run("--version"); code != ExitOK || h.stdout.String() != "tool 1.0.0\n" {
		t.Fatalf("--version: code=%d stdout=%q", code, h.stdout.String())
	}
	h.stdout.Reset()
	if code := h.run("serve", "-h"); code != ExitOK {
		t.Fatalf("serve -h: code=%d", code)
	}
	if !strings.Contains(h.stdout.String(), "USAGE:\n    tool serve [OPTIONS]") {
		t.Fatalf("help = %q", h.stdout.String())
	}
	h.stdout.Reset()
	if code := h.run("echo", "--", "--help"); code != ExitOK || len(h.seen) != 1 {
		t.Fatalf("--help after -- should reach the action: code=%d seen=%v", code, h.seen)
	}
	if diff := cmp.Diff([]string{"--help"}, h.seen[0].Strings("words")); diff != "" {
		t.Fatalf("words (-want +got):\n%s", diff)
	}

	plain := newHarness(t, WithoutBuiltins())
	if code := plain.run("--version"); code != ExitUnknownCommand {
		t.Fatalf("--version without builtins: code=%d", code)
	}
	if !strings.Contains(plain.stderr.String(), `unknown option "--version"`) {
		t.Fatalf("stderr = %q", plain.stderr.String())
	}
}

func TestRunJSONErrors(t *testing.T) {
	h := newHarness(t, WithErrorFormat(ErrorJSON))
	if code := h.run("serve"); code != ExitUsage {
		t.Fatalf("code=%d", code)
	}
	var env output.ErrorEnvelope
	if err := json.Unmarshal(h.stderr.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v (%s)", err, h.stderr.String())
	}
	if env.Ok || env.Error.Code != output.CodeUsage || env.Error.ExitCode != ExitUsage || env.Meta.Command != "serve" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	missing, _ := env.Error.Details["missing"].([]any)
	if len(missing) != 1 || missing[0] != "port" {
		t.Fatalf("missing = %v", env.Error.Details["missing"])
	}

	h.stderr.Reset()
	if code := h.run("srve"); code != ExitUnknownCommand {
		t.Fatalf("code=%d", code)
	}
	env = output.ErrorEnvelope{}
	if err := json.Unmarshal(h.stderr.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Error.Code != output.CodeUnknownCommand || env.Error.Details["token"] != "srve" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
}

func TestRunLine(t *testing.T) {
	h := newHarness(t)
	if code := h.runner.RunLine(context.Background(), `echo "hello world" 'a b'`); code != ExitOK {
		t.Fatalf("code=%d stderr=%s", code, h.stderr.String())
	}
	if diff := cmp.Diff([]string{"hello world", "a b"}, h.seen[0].Strings("words")); diff != "" {
		t.Fatalf("words (-want +got):\n%s", diff)
	}
	if code := h.runner.RunLine(context.Background(), `echo "unterminated`); code != ExitUsage {
		t.Fatalf("code=%d", code)
	}
	if !strings.Contains(h.stderr.String(), "tool: parse command line:") {
		t.Fatalf("stderr = %q", h.stderr.String())
	}
}

func TestRunDefaultCommand(t *testing.T) {
	h := newHarness(t, WithDefaultCommand("version"))
	if code := h.run(); code != ExitOK || h.stdout.String() != "1.0.0\n" {
		t.Fatalf("code=%d stdout=%q", code, h.stdout.String())
	}
	b := command.NewBuilder("tool", command.Config{})
	b.Command("a", "").Action(func(*command.Context) error { return nil })
	tree, _ := b.Build()
	if _, err := New(tree, Dependencies{}, WithDefaultCommand("missing")); err == nil {
		t.Fatalf("expected error for unknown default command")
	}
}

func TestRunColouredDiagnostics(t *testing.T) {
	h := newHarness(t, WithColor(output.ColorAlways))
	h.run("serve")
	got := h.stderr.String()
	if !strings.Contains(got, "\x1b[") {
		t.Fatalf("expected colour: %q", got)
	}
	if !strings.Contains(output.Strip(got), `tool serve: missing required argument "port"`) {
		t.Fatalf("stderr = %q", got)
	}
}

func TestNewRejectsBadOptions(t *testing.T) {
	if _, err := New(nil, Dependencies{}); err == nil {
		t.Fatalf("expected error for nil tree")
	}
	b := command.NewBuilder("tool", command.Config{})
	b.Command("a", "").Action(func(*command.Context) error { return nil })
	tree, _ := b.Build()
	if _, err := New(tree, Dependencies{}, WithErrorFormat("xml")); err == nil {
		t.Fatalf("expected error for bad format")
	}
	if _, err := New(tree, Dependencies{}, WithColor("rainbow")); err == nil {
		t.Fatalf("expected error for bad color")
	}
}

func TestHelpShortYieldsToDeclaredAlias(t *testing.T) {
	var stdout bytes.Buffer
	var host string
	b := command.NewBuilder("tool", command.Config{})
	b.Command("connect", "").
		Arg(command.Option("host", command.TypeString).WithShort('h')).
		Action(func(ctx *command.Context) error {
			host = ctx.Invocation.String("host")
			return nil
		})
	tree, _ := b.Build()
	r, err := New(tree, Dependencies{Stdout: &stdout})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if code := r.Run(context.Background(), []string{"connect", "-h", "db"}); code != ExitOK || host != "db" {
		t.Fatalf("code=%d host=%q", code, host)
	}
	if code := r.Run(context.Background(), []string{"connect", "--help"}); code != ExitOK || stdout.Len() == 0 {
		t.Fatalf("--help should still work: code=%d", code)
	}
}
