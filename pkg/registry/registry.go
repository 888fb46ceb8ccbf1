package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/aretw0/formstate"
	loamAdapter "github.com/aretw0/formstate/pkg/adapters/loam"
	"github.com/aretw0/formstate/pkg/domain"
)

// ErrNotFound is returned when no definition is registered under a name.
var ErrNotFound = errors.New("definition not found")

// Registry manages named form definitions that hosts instantiate on demand.
type Registry struct {
	mu   sync.RWMutex
	defs map[string]domain.FormDefinition
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		defs: make(map[string]domain.FormDefinition),
	}
}

// Register adds a definition to the registry.
// If a definition with the same name exists, it is overwritten.
func (r *Registry) Register(name string, def domain.FormDefinition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if def.Name == "" {
		def.Name = name
	}
	r.defs[name] = def
}

// Get looks up a definition by name.
func (r *Registry) Get(name string) (domain.FormDefinition, error) {
	r.mu.RLock()
	def, ok := r.defs[name]
	r.mu.RUnlock()

	if !ok {
		return domain.FormDefinition{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return def, nil
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New builds a form from the named definition.
func (r *Registry) New(name string, opts ...formstate.Option) (*formstate.Form, error) {
	def, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	return formstate.FromDefinition(def, opts...)
}

// Source yields a complete set of named definitions.
type Source interface {
	Definitions(ctx context.Context) (map[string]domain.FormDefinition, error)
}

// WatchableSource also reports when its definitions change.
type WatchableSource interface {
	Source
	Watch(ctx context.Context) (<-chan string, error)
}

// Load replaces the registry contents with the definitions of src.
// On error the previous definitions stay in place.
func (r *Registry) Load(ctx context.Context, src Source) error {
	defs, err := src.Definitions(ctx)
	if err != nil {
		return err
	}

	next := make(map[string]domain.FormDefinition, len(defs))
	for name, def := range defs {
		if def.Name == "" {
			def.Name = name
		}
		next[name] = def
	}

	r.mu.Lock()
	r.defs = next
	r.mu.Unlock()
	return nil
}

// Watch reloads the registry from src after every change until ctx is done.
// A reload that fails keeps the last good definitions and is logged.
func (r *Registry) Watch(ctx context.Context, src WatchableSource, logger *slog.Logger) error {
	changes, err := src.Watch(ctx)
	if err != nil {
		return err
	}

	for id := range changes {
		if err := r.Load(ctx, src); err != nil {
			logger.Warn("definitions reload failed", "changed", id, "err", err)
			continue
		}
		logger.Info("definitions reloaded", "changed", id, "count", len(r.Names()))
	}
	return ctx.Err()
}

// LoadDir registers every definition file found under dir, read through a
// read-only Loam repository and keyed by its path without extension.
// All invalid files are reported together.
func LoadDir(ctx context.Context, dir string) (*Registry, *loamAdapter.Loader, error) {
	loader, err := loamAdapter.Open(dir)
	if err != nil {
		return nil, nil, err
	}

	r := NewRegistry()
	if err := r.Load(ctx, loader); err != nil {
		return nil, nil, err
	}
	return r, loader, nil
}
