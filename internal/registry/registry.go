package registry

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
)

// Env is what a dependency may touch when it is built: the module output
// stream (what the script "prints") and the diagnostics logger.
type Env struct {
	Stdout io.Writer
	Logger *slog.Logger
}

// Builder constructs a Go-native dependency for one run. The context is the
// run context; functions that perform I/O should honour its cancellation.
type Builder func(ctx context.Context, env *Env) (Dependency, error)

// RegisteredDependency holds a dependency's builder and its help text.
type RegisteredDependency struct {
	Description string
	Build       Builder
}

// Module is the interface that all core modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds the Go-native dependencies for a single application instance.
type Registry struct {
	deps map[string]*RegisteredDependency
}

// New creates and initializes a new Registry instance, registering the
// given modules.
func New(modules ...Module) *Registry {
	r := &Registry{deps: make(map[string]*RegisteredDependency)}
	for _, m := range modules {
		m.Register(r)
	}
	return r
}

// RegisterDependency registers a builder under an import name. Registering
// the same name twice is a programming error and panics.
func (r *Registry) RegisterDependency(name string, dep *RegisteredDependency) {
	if _, exists := r.deps[name]; exists {
		panic(fmt.Sprintf("dependency with name '%s' already registered", name))
	}
	if dep == nil || dep.Build == nil {
		panic(fmt.Sprintf("dependency '%s' registered without a builder", name))
	}
	slog.Debug("Registering dependency.", "name", name)
	r.deps[name] = dep
}

// Lookup returns the registered dependency for name.
func (r *Registry) Lookup(name string) (*RegisteredDependency, bool) {
	dep, ok := r.deps[name]
	return dep, ok
}

// Names returns the registered import names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.deps))
	for name := range r.deps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
