// Package spec loads declarative command documents (YAML or TOML) and
// compiles them into a command.Tree bound to registered handlers.
package spec

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/pelletier/go-toml/v2"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var schemaJSON []byte

// Document is a complete command document.
type Document struct {
	Version     int       `yaml:"version" toml:"version"`
	App         AppSpec   `yaml:"app" toml:"app"`
	GlobalFlags []Flag    `yaml:"global_flags" toml:"global_flags"`
	Commands    []Command `yaml:"commands" toml:"commands"`
}

// AppSpec configures the root command and matching rules.
type AppSpec struct {
	Name           string `yaml:"name" toml:"name"`
	Summary        string `yaml:"summary" toml:"summary"`
	Description    string `yaml:"description" toml:"description"`
	Version        string `yaml:"version" toml:"version"`
	DefaultCommand string `yaml:"default_command" toml:"default_command"`
	IgnoreCase     bool   `yaml:"ignore_case" toml:"ignore_case"`
	AllowPrefix    bool   `yaml:"allow_prefix" toml:"allow_prefix"`
}

// Flag describes an option, boolean flag or counter.
type Flag struct {
	Name        string   `yaml:"name" toml:"name"`
	Short       string   `yaml:"short" toml:"short"`
	Kind        string   `yaml:"kind" toml:"kind"`
	Type        string   `yaml:"type" toml:"type"`
	Required    bool     `yaml:"required" toml:"required"`
	Default     any      `yaml:"default" toml:"default"`
	Enum        []string `yaml:"enum" toml:"enum"`
	Repeatable  bool     `yaml:"repeatable" toml:"repeatable"`
	Negatable   bool     `yaml:"negatable" toml:"negatable"`
	Description string   `yaml:"description" toml:"description"`
	Env         string   `yaml:"env" toml:"env"`
	Hidden      bool     `yaml:"hidden" toml:"hidden"`
}

// Arg describes a positional argument.
type Arg struct {
	Name        string   `yaml:"name" toml:"name"`
	Type        string   `yaml:"type" toml:"type"`
	Required    bool     `yaml:"required" toml:"required"`
	Variadic    bool     `yaml:"variadic" toml:"variadic"`
	Default     any      `yaml:"default" toml:"default"`
	Enum        []string `yaml:"enum" toml:"enum"`
	Description string   `yaml:"description" toml:"description"`
}

// Constraint relates the presence of flags and args of one command path.
type Constraint struct {
	Type   string   `yaml:"type" toml:"type"`
	Fields []string `yaml:"fields" toml:"fields"`
}

// Command describes a command and its subcommands. ID defaults to the dotted
// command path.
type Command struct {
	Name        string       `yaml:"name" toml:"name"`
	ID          string       `yaml:"id" toml:"id"`
	Summary     string       `yaml:"summary" toml:"summary"`
	Description string       `yaml:"description" toml:"description"`
	Aliases     []string     `yaml:"aliases" toml:"aliases"`
	Hidden      bool         `yaml:"hidden" toml:"hidden"`
	Flags       []Flag       `yaml:"flags" toml:"flags"`
	Args        []Arg        `yaml:"args" toml:"args"`
	Constraints []Constraint `yaml:"constraints" toml:"constraints"`
	Subcommands []Command    `yaml:"subcommands" toml:"subcommands"`
}

// Parse loads a document from YAML and validates it.
func Parse(data []byte) (*Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("spec is empty")
	}
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse spec yaml: %w", err)
	}
	if err := validateRaw(raw); err != nil {
		return nil, err
	}
	doc := &Document{}
	if err := yaml.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("parse spec yaml: %w", err)
	}
	return doc.finish()
}

// ParseTOML loads a document from TOML and validates it.
func ParseTOML(data []byte) (*Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("spec is empty")
	}
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse spec toml: %w", err)
	}
	if err := validateRaw(raw); err != nil {
		return nil, err
	}
	doc := &Document{}
	if err := toml.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("parse spec toml: %w", err)
	}
	return doc.finish()
}

// Load reads a document from path, choosing the format by extension.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read spec: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return ParseTOML(data)
	case ".yaml", ".yml":
		return Parse(data)
	default:
		return nil, fmt.Errorf("spec %s: unsupported extension (want .yaml, .yml or .toml)", path)
	}
}

// Validate checks YAML bytes against the embedded JSON schema.
func Validate(data []byte) error {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse spec yaml: %w", err)
	}
	return validateRaw(raw)
}

func (d *Document) finish() (*Document, error) {
	if v := strings.TrimSpace(d.App.Version); v != "" {
		if _, err := semver.NewVersion(v); err != nil {
			return nil, fmt.Errorf("app.version %q: %w", v, err)
		}
	}
	if err := d.checkIDs(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Document) checkIDs() error {
	seen := make(map[string]bool)
	var errs []error
	d.Walk(func(id string, _ Command) {
		if seen[id] {
			errs = append(errs, fmt.Errorf("duplicate command id %q", id))
		}
		seen[id] = true
	})
	return errors.Join(errs...)
}

func validateRaw(raw any) error {
	var schemaDoc any
	if err := json.Unmarshal(schemaJSON, &schemaDoc); err != nil {
		return fmt.Errorf("parse schema json: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", schemaDoc); err != nil {
		return fmt.Errorf("load schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	normalized, err := normalize(raw)
	if err != nil {
		return fmt.Errorf("serialize spec: %w", err)
	}
	payload, err := json.Marshal(normalized)
	if err != nil {
		return fmt.Errorf("serialize spec: %w", err)
	}
	var payloadDoc any
	if err := json.Unmarshal(payload, &payloadDoc); err != nil {
		return fmt.Errorf("parse spec json: %w", err)
	}
	if err := schema.Validate(payloadDoc); err != nil {
		return fmt.Errorf("spec schema validation: %w", err)
	}
	return nil
}

// normalize turns decoded YAML/TOML into values encoding/json accepts.
func normalize(value any) (any, error) {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, val := range typed {
			n, err := normalize(val)
			if err != nil {
				return nil, err
			}
			out[key] = n
		}
		return out, nil
	case map[any]any:
		out := make(map[string]any, len(typed))
		for key, val := range typed {
			strKey, ok := key.(string)
			if !ok {
				return nil, fmt.Errorf("invalid map key: %T", key)
			}
			n, err := normalize(val)
			if err != nil {
				return nil, err
			}
			out[strKey] = n
		}
		return out, nil
	case []any:
		out := make([]any, len(typed))
		for i, val := range typed {
			n, err := normalize(val)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	default:
		return value, nil
	}
}

// Walk visits every command depth first with its resolved ID.
func (d *Document) Walk(fn func(id string, cmd Command)) {
	if d == nil {
		return
	}
	for _, cmd := range d.Commands {
		walkCommand("", cmd, fn)
	}
}

func walkCommand(parentID string, cmd Command, fn func(id string, cmd Command)) {
	id := commandID(parentID, cmd)
	fn(id, cmd)
	for _, sub := range cmd.Subcommands {
		walkCommand(id, sub, fn)
	}
}

func commandID(parentID string, cmd Command) string {
	if id := strings.TrimSpace(cmd.ID); id != "" {
		return id
	}
	if parentID == "" {
		return cmd.Name
	}
	return parentID + "." + cmd.Name
}

// AllCommands returns a flat list of commands including subcommands.
func (d *Document) AllCommands() []Command {
	var out []Command
	d.Walk(func(_ string, cmd Command) {
		out = append(out, cmd)
	})
	return out
}

// FindByID returns the command with the matching ID.
func (d *Document) FindByID(id string) *Command {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}
	var found *Command
	d.Walk(func(cid string, cmd Command) {
		if found == nil && cid == id {
			found = &cmd
		}
	})
	return found
}

// PathOf returns the command names leading to the command with the given
// ID, or nil when no command has it.
func (d *Document) PathOf(id string) []string {
	id = strings.TrimSpace(id)
	if d == nil || id == "" {
		return nil
	}
	var find func(parentID string, prefix []string, cmds []Command) []string
	find = func(parentID string, prefix []string, cmds []Command) []string {
		for _, cmd := range cmds {
			cid := commandID(parentID, cmd)
			path := append(slices.Clone(prefix), cmd.Name)
			if cid == id {
				return path
			}
			if found := find(cid, path, cmd.Subcommands); found != nil {
				return found
			}
		}
		return nil
	}
	return find("", nil, d.Commands)
}
