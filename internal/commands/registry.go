// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/jeranaias/swarmsh/internal/logging"
)

// =============================================================================
// DESCRIPTOR
// =============================================================================

// Handler is the contract every command handler satisfies. It receives
// the arguments after the command name and the dispatch context, and may
// return an error, which the registry wraps as a CommandExecutionError.
type Handler func(ctx *Context, args []string) error

// Descriptor is the registry's record for one command. Descriptors are
// treated as immutable once registered: re-registration replaces the
// stored value under every key, never mutates it in place.
type Descriptor struct {
	// Name is the primary command name and the descriptor's identity.
	Name string

	// Aliases are alternative names resolving to the same descriptor.
	Aliases []string

	// Description is shown in help and completion.
	Description string

	// Usage shows argument syntax (e.g., "task create <type> <desc>").
	Usage string

	// Examples are display-only invocation samples.
	Examples []string

	// Hidden descriptors are excluded from default enumeration but
	// remain invocable by exact name.
	Hidden bool

	// Handler executes the command.
	Handler Handler
}

// Context provides dispatch-time state to handlers. Handlers needing
// richer services close over them at registration time.
type Context struct {
	// Out is where handlers write their normal output.
	Out io.Writer

	// Logger is the dispatch logger; handlers may derive children.
	Logger *logging.Logger

	// Flags carries free-form invocation options supplied by the caller.
	Flags map[string]any
}

// NewContext creates a dispatch context with sane defaults.
func NewContext(out io.Writer, logger *logging.Logger) *Context {
	if out == nil {
		out = os.Stdout
	}
	return &Context{Out: out, Logger: logger, Flags: make(map[string]any)}
}

// =============================================================================
// REGISTRY
// =============================================================================

// Registry maps command names and aliases to descriptors. Storage is
// alias-flattened: one entry per name AND per alias, all referencing one
// shared descriptor. Lookups are exact; fuzzy suggestion is the shell's
// concern, not the registry's.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]*Descriptor
	logger   *logging.Logger
}

// NewRegistry creates an empty registry. The logger is used for
// re-registration warnings and may not be nil.
func NewRegistry(logger *logging.Logger) *Registry {
	return &Registry{
		commands: make(map[string]*Descriptor),
		logger:   logger.Child(map[string]string{"component": "registry"}),
	}
}

// Register inserts the descriptor under its name and every alias. A key
// that already exists is overwritten after a logged warning; last
// registration wins. The descriptor is copied so later mutation by the
// caller cannot reach registry state.
func (r *Registry) Register(desc Descriptor) {
	stored := desc
	stored.Aliases = append([]string(nil), desc.Aliases...)
	stored.Examples = append([]string(nil), desc.Examples...)

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, key := range append([]string{stored.Name}, stored.Aliases...) {
		if prev, exists := r.commands[key]; exists {
			r.logger.Warn("command re-registered", map[string]any{
				"key":      key,
				"previous": prev.Name,
				"new":      stored.Name,
			})
		}
		r.commands[key] = &stored
	}
}

// Resolve returns the descriptor for the exact name or alias, or nil.
func (r *Registry) Resolve(name string) *Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.commands[name]
}

// List returns the registered descriptors, deduplicated across aliases
// and sorted lexicographically by primary name. Hidden descriptors are
// excluded unless includeHidden is set.
func (r *Registry) List(includeHidden bool) []*Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[*Descriptor]bool, len(r.commands))
	descs := make([]*Descriptor, 0, len(r.commands))
	for _, desc := range r.commands {
		if seen[desc] {
			continue
		}
		seen[desc] = true
		if desc.Hidden && !includeHidden {
			continue
		}
		descs = append(descs, desc)
	}

	sort.Slice(descs, func(i, j int) bool { return descs[i].Name < descs[j].Name })
	return descs
}

// Vocabulary returns every registered key (names and aliases), sorted.
// The completer consumes this as the first-segment completion universe.
func (r *Registry) Vocabulary() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.commands))
	for key, desc := range r.commands {
		if desc.Hidden {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Invoke resolves name and executes its handler with the given context
// and arguments. An absent name yields an UnknownCommandError; a handler
// error or panic yields a CommandExecutionError preserving the cause.
// Neither failure affects registry state.
func (r *Registry) Invoke(ctx *Context, name string, args []string) error {
	desc := r.Resolve(name)
	if desc == nil {
		return &UnknownCommandError{Name: name}
	}

	var execErr error
	func() {
		defer func() {
			if rec := recover(); rec != nil {
				execErr = fmt.Errorf("handler panicked: %v", rec)
			}
		}()
		execErr = desc.Handler(ctx, args)
	}()

	if execErr != nil {
		return &CommandExecutionError{Name: desc.Name, Err: execErr}
	}
	return nil
}
