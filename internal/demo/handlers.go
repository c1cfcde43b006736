package demo

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/regenrek/clikit/bridge/urfavecli"
	"github.com/regenrek/clikit/command"
	"github.com/regenrek/clikit/internal/config"
	"github.com/regenrek/clikit/output"
	"github.com/regenrek/clikit/spec"
)

// exitFailure is the status for handler failures the user can fix.
const exitFailure = 1

var greetings = map[string]string{
	"en": "Hello, %s!",
	"de": "Hallo, %s!",
	"cs": "Ahoj, %s!",
}

type handlers struct {
	version  string
	store    *config.Store
	settings config.Settings
	tree     *command.Tree
}

func (h *handlers) registry() *spec.Registry {
	reg := spec.NewRegistry()
	reg.Register("serve", h.serve)
	reg.Register("version", h.versionCmd)
	reg.Register("greet", h.greet)
	reg.Register("config.get", h.configGet)
	reg.Register("config.set", h.configSet)
	reg.Register("files.list", h.filesList)
	reg.Register("completion", h.completion)
	return reg
}

func (h *handlers) serve(ctx *command.Context) error {
	inv := ctx.Invocation
	host, port := inv.String("host"), inv.Int("port")
	if port < 1 || port > 65535 {
		return command.Exit(2, fmt.Sprintf("serve: port %d out of range", port))
	}
	scheme := "http"
	if inv.Bool("tls") {
		scheme = "https"
	}
	ctx.Logger.Info("serve", "host", host, "port", port, "tls", inv.Bool("tls"))
	_, err := fmt.Fprintf(ctx.Out, "serving on %s://%s:%d\n", scheme, host, port)
	return err
}

func (h *handlers) versionCmd(ctx *command.Context) error {
	if !ctx.Invocation.Bool("json") {
		_, err := fmt.Fprintf(ctx.Out, "%s %s\n", ctx.Command.Root().Name(), h.version)
		return err
	}
	start := time.Now()
	data := map[string]string{
		"version": h.version,
		"go":      runtime.Version(),
		"os":      runtime.GOOS,
		"arch":    runtime.GOARCH,
	}
	return output.WriteSuccess(ctx.Out, output.WithDuration(output.NewMeta("version", h.version), start), data)
}

func (h *handlers) greet(ctx *command.Context) error {
	inv := ctx.Invocation
	times := inv.Int("times")
	if times < 1 {
		return command.Exit(2, "greet: --times must be at least 1")
	}
	lang := inv.String("lang")
	if lang == "" {
		lang = h.settings.Greet.Lang
	}
	format, ok := greetings[lang]
	if !ok {
		format = greetings["en"]
	}
	line := fmt.Sprintf(format, inv.String("name"))
	if inv.Bool("shout") {
		line = strings.ToUpper(line)
	}
	for range times {
		if _, err := fmt.Fprintln(ctx.Out, line); err != nil {
			return err
		}
	}
	return nil
}

func (h *handlers) configGet(ctx *command.Context) error {
	key := ctx.Invocation.String("key")
	value, ok := h.store.Get(key)
	if !ok {
		return command.Exit(exitFailure, fmt.Sprintf("config: %s is not set", key))
	}
	if section, isMap := value.(map[string]any); isMap {
		data, err := yaml.Marshal(section)
		if err != nil {
			return err
		}
		_, err = ctx.Out.Write(data)
		return err
	}
	_, err := fmt.Fprintln(ctx.Out, value)
	return err
}

func (h *handlers) configSet(ctx *command.Context) error {
	key, value := ctx.Invocation.String("key"), ctx.Invocation.String("value")
	if err := h.store.Set(key, value); err != nil {
		return command.Exit(exitFailure, "config: "+err.Error())
	}
	if err := h.store.Save(); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	ctx.Logger.Debug("config saved", "path", h.store.Path(), "key", key)
	_, err := fmt.Fprintf(ctx.Out, "%s = %s\n", key, value)
	return err
}

func (h *handlers) filesList(ctx *command.Context) error {
	inv := ctx.Invocation
	paths := inv.Strings("paths")
	if len(paths) == 0 {
		paths = []string{"."}
	}
	var failed []string
	for i, path := range paths {
		entries, err := listEntries(path, inv.Bool("all"))
		if err != nil {
			failed = append(failed, err.Error())
			continue
		}
		if len(paths) > 1 {
			if i > 0 {
				fmt.Fprintln(ctx.Out)
			}
			fmt.Fprintf(ctx.Out, "%s:\n", path)
		}
		for _, entry := range entries {
			if !inv.Bool("long") {
				fmt.Fprintln(ctx.Out, entry.name)
				continue
			}
			fmt.Fprintf(ctx.Out, "%s %10d %s\n", entry.mode, entry.size, entry.name)
		}
	}
	if len(failed) > 0 {
		return command.Exit(exitFailure, "files list: "+strings.Join(failed, "; "))
	}
	return nil
}

type entry struct {
	name string
	mode fs.FileMode
	size int64
}

func listEntries(path string, all bool) ([]entry, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []entry{{name: filepath.Base(path), mode: info.Mode(), size: info.Size()}}, nil
	}
	dirEntries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	out := make([]entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		if !all && strings.HasPrefix(de.Name(), ".") {
			continue
		}
		info, err := de.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, err
		}
		name := de.Name()
		if de.IsDir() {
			name += "/"
		}
		out = append(out, entry{name: name, mode: info.Mode(), size: info.Size()})
	}
	return out, nil
}

func (h *handlers) completion(ctx *command.Context) error {
	return urfavecli.Completion(ctx, h.tree, ctx.Invocation.String("shell"), ctx.Out)
}
