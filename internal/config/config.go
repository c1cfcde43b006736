// Package config loads and edits the demo's YAML settings file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/regenrek/clikit/internal/identity"
	"github.com/regenrek/clikit/internal/logging"
	"github.com/regenrek/clikit/output"
)

// Settings is the typed view of the settings file.
type Settings struct {
	Logging     logging.Config `yaml:"logging"`
	Color       string         `yaml:"color"`
	ErrorFormat string         `yaml:"error_format"`
	Greet       GreetSettings  `yaml:"greet"`
}

// GreetSettings holds defaults for the greet command.
type GreetSettings struct {
	Lang string `yaml:"lang"`
}

// ColorMode returns the configured colour mode, auto when unset.
func (s Settings) ColorMode() output.ColorMode {
	mode, err := output.ParseColorMode(s.Color)
	if err != nil {
		return output.ColorAuto
	}
	return mode
}

func (s Settings) validate() error {
	if _, err := output.ParseColorMode(s.Color); err != nil {
		return fmt.Errorf("color: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(s.ErrorFormat)) {
	case "", "text", "json":
	default:
		return fmt.Errorf("error_format: invalid %q (allowed: text, json)", s.ErrorFormat)
	}
	_, err := s.Logging.Normalize()
	return err
}

// DefaultPath returns $CLIDEMO_CONFIG, or config.yml under the user config
// directory.
func DefaultPath() (string, error) {
	if override := strings.TrimSpace(os.Getenv(identity.ConfigEnv)); override != "" {
		return ExpandUser(override), nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, identity.AppSlug, identity.GlobalConfigFile), nil
}

// Store holds the settings document as read from disk. Keys unknown to
// Settings are preserved on Save.
type Store struct {
	path string
	doc  map[string]any
}

// Open reads path. A missing file yields an empty store.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("config path is empty")
	}
	s := &Store{path: path, doc: map[string]any{}}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &s.doc); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if s.doc == nil {
		s.doc = map[string]any{}
	}
	if _, err := decode(s.doc); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return s, nil
}

func (s *Store) Path() string { return s.path }

// Settings decodes the document into Settings.
func (s *Store) Settings() (Settings, error) {
	return decode(s.doc)
}

func decode(doc map[string]any) (Settings, error) {
	var out Settings
	data, err := yaml.Marshal(doc)
	if err != nil {
		return out, err
	}
	if err := yaml.Unmarshal(data, &out); err != nil {
		return out, err
	}
	if out.Logging.File != nil {
		expanded := ExpandUser(*out.Logging.File)
		out.Logging.File = &expanded
	}
	return out, out.validate()
}

// Get returns the value at a dotted key such as "logging.level".
func (s *Store) Get(key string) (any, bool) {
	parts, err := splitKey(key)
	if err != nil {
		return nil, false
	}
	var node any = s.doc
	for _, part := range parts {
		m, ok := node.(map[string]any)
		if !ok {
			return nil, false
		}
		if node, ok = m[part]; !ok {
			return nil, false
		}
	}
	return node, true
}

// Set stores raw at a dotted key. raw is read as a YAML scalar, so "true"
// and "3" keep their types. The change is rejected when the resulting
// settings do not validate.
func (s *Store) Set(key, raw string) error {
	parts, err := splitKey(key)
	if err != nil {
		return err
	}
	var value any
	if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
		value = raw
	}
	if _, isMap := value.(map[string]any); isMap || isList(value) {
		return fmt.Errorf("value for %s must be a scalar", key)
	}
	doc := cloneMap(s.doc)
	node := doc
	for i, part := range parts[:len(parts)-1] {
		next, ok := node[part]
		if !ok {
			child := map[string]any{}
			node[part] = child
			node = child
			continue
		}
		child, ok := next.(map[string]any)
		if !ok {
			return fmt.Errorf("%s is not a section", strings.Join(parts[:i+1], "."))
		}
		node = child
	}
	node[parts[len(parts)-1]] = value
	if _, err := decode(doc); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	s.doc = doc
	return nil
}

// Keys returns every leaf key in dotted form, sorted.
func (s *Store) Keys() []string {
	var out []string
	var walk func(prefix string, m map[string]any)
	walk = func(prefix string, m map[string]any) {
		for k, v := range m {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			if child, ok := v.(map[string]any); ok {
				walk(key, child)
				continue
			}
			out = append(out, key)
		}
	}
	walk("", s.doc)
	slices.Sort(out)
	return out
}

// Save writes the document back to Path.
func (s *Store) Save() error {
	data, err := yaml.Marshal(s.doc)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return writeFile(s.path, data, 0o600)
}

func splitKey(key string) ([]string, error) {
	parts := strings.Split(strings.TrimSpace(key), ".")
	for _, part := range parts {
		if part == "" {
			return nil, fmt.Errorf("invalid key %q", key)
		}
	}
	return parts, nil
}

func isList(value any) bool {
	_, ok := value.([]any)
	return ok
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if child, ok := v.(map[string]any); ok {
			out[k] = cloneMap(child)
			continue
		}
		out[k] = v
	}
	return out
}
