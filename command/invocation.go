package command

import (
	"maps"
	"slices"
	"strings"
	"time"
)

// Params maps argument names to their typed values.
type Params map[string]any

// Clone returns a deep copy of p.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = cloneValue(v)
	}
	return out
}

// Names returns the bound argument names, sorted.
func (p Params) Names() []string {
	return slices.Sorted(maps.Keys(p))
}

func (p Params) Get(name string) (any, bool) {
	v, ok := p[name]
	return cloneValue(v), ok
}

func (p Params) Has(name string) bool {
	_, ok := p[name]
	return ok
}

func (p Params) String(name string) string {
	v, _ := p[name].(string)
	return v
}

func (p Params) Int(name string) int {
	v, _ := p[name].(int)
	return v
}

func (p Params) Bool(name string) bool {
	v, _ := p[name].(bool)
	return v
}

func (p Params) Float(name string) float64 {
	v, _ := p[name].(float64)
	return v
}

func (p Params) Duration(name string) time.Duration {
	v, _ := p[name].(time.Duration)
	return v
}

func (p Params) Strings(name string) []string {
	v, _ := p[name].([]string)
	return slices.Clone(v)
}

func (p Params) Ints(name string) []int {
	v, _ := p[name].([]int)
	return slices.Clone(v)
}

// Invocation is the validated result of resolving and parsing one token
// list. It cannot be changed once produced.
type Invocation struct {
	path   []string
	params Params
	cmd    *Command
}

// NewInvocation builds an invocation from already validated values. The
// inputs are copied.
func NewInvocation(path []string, params Params) *Invocation {
	return &Invocation{path: slices.Clone(path), params: params.Clone()}
}

// Path returns the command names from below the root to the leaf.
func (i *Invocation) Path() []string { return slices.Clone(i.path) }

// Command returns the path joined with spaces.
func (i *Invocation) Command() string { return strings.Join(i.path, " ") }

// Params returns a copy of the parameter mapping.
func (i *Invocation) Params() Params { return i.params.Clone() }

func (i *Invocation) Get(name string) (any, bool)        { return i.params.Get(name) }
func (i *Invocation) Has(name string) bool               { return i.params.Has(name) }
func (i *Invocation) String(name string) string          { return i.params.String(name) }
func (i *Invocation) Int(name string) int                { return i.params.Int(name) }
func (i *Invocation) Bool(name string) bool              { return i.params.Bool(name) }
func (i *Invocation) Float(name string) float64          { return i.params.Float(name) }
func (i *Invocation) Duration(name string) time.Duration { return i.params.Duration(name) }
func (i *Invocation) Strings(name string) []string       { return i.params.Strings(name) }
func (i *Invocation) Ints(name string) []int             { return i.params.Ints(name) }
