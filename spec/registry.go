package spec

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/regenrek/clikit/command"
)

// MissingHandlerError reports a leaf command without a registered handler.
type MissingHandlerError struct {
	ID string
}

func (e *MissingHandlerError) Error() string {
	return fmt.Sprintf("missing handler for command %q", e.ID)
}

// Registry maps command IDs to actions.
type Registry struct {
	handlers map[string]command.Action
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]command.Action)}
}

// Register adds a handler for a command ID. Empty IDs and nil handlers are
// ignored; registering an ID again replaces the handler.
func (r *Registry) Register(id string, handler command.Action) {
	if r == nil || id == "" || handler == nil {
		return
	}
	r.handlers[id] = handler
}

func (r *Registry) HandlerFor(id string) (command.Action, bool) {
	if r == nil {
		return nil, false
	}
	h, ok := r.handlers[id]
	return h, ok
}

// IDs returns the registered IDs, sorted.
func (r *Registry) IDs() []string {
	if r == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(r.handlers))
}

// EnsureHandlers reports every leaf command of doc that has no handler.
func (r *Registry) EnsureHandlers(doc *Document) error {
	var errs []error
	doc.Walk(func(id string, cmd Command) {
		if len(cmd.Subcommands) > 0 {
			return
		}
		if _, ok := r.HandlerFor(id); !ok {
			errs = append(errs, &MissingHandlerError{ID: id})
		}
	})
	return errors.Join(errs...)
}
