// Package importer resolves the names module scripts import.
//
// Normal resolution checks the module cache, then the registry of
// Go-native dependencies, then the search path of script roots. Hooks
// installed with Install sit in front of that: the most recently installed
// hook sees every import first and decides whether to answer it or pass it
// down the chain.
package importer

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/specialistvlad/resprobe/internal/ctxlog"
	"github.com/specialistvlad/resprobe/internal/registry"
	"github.com/specialistvlad/resprobe/internal/script"
)

var (
	// ErrModuleNotFound is returned when neither the registry nor any
	// search root provides a module.
	ErrModuleNotFound = errors.New("module not found")
	// ErrImportCycle is returned when a dependency imports itself before it
	// has a namespace to serve. Module scripts that import themselves get
	// their partially executed namespace instead.
	ErrImportCycle = errors.New("import cycle")
)

// Resolver resolves one import name.
type Resolver func(ctx context.Context, name string) (registry.Dependency, error)

// Hook intercepts imports. It may answer the import itself or delegate to
// next, which continues down the hook chain and ends in normal resolution.
type Hook interface {
	Resolve(ctx context.Context, name string, next Resolver) (registry.Dependency, error)
}

// HookFunc adapts a function to the Hook interface.
type HookFunc func(ctx context.Context, name string, next Resolver) (registry.Dependency, error)

// Resolve implements Hook.
func (f HookFunc) Resolve(ctx context.Context, name string, next Resolver) (registry.Dependency, error) {
	return f(ctx, name, next)
}

type hookEntry struct {
	hook Hook
}

type pathEntry struct {
	dir string
}

// Importer owns the process-wide import state. It is not safe for
// concurrent use.
type Importer struct {
	registry *registry.Registry
	env      *registry.Env

	paths   []*pathEntry
	hooks   []*hookEntry
	cache   map[string]registry.Dependency
	// loading maps the names being resolved to their namespace, once a
	// module script has started executing.
	loading map[string]registry.Dependency
}

// New creates an importer over a registry of Go-native dependencies and
// an initial search path. env is handed to every dependency it builds and
// every module it runs.
func New(reg *registry.Registry, env *registry.Env, searchPath ...string) *Importer {
	if env == nil {
		env = &registry.Env{}
	}
	imp := &Importer{
		registry: reg,
		env:      env,
		cache:    make(map[string]registry.Dependency),
		loading:  make(map[string]registry.Dependency),
	}
	for _, dir := range searchPath {
		imp.paths = append(imp.paths, &pathEntry{dir: dir})
	}
	return imp
}

// Import resolves name through the installed hooks, most recent first,
// and then through normal resolution.
func (i *Importer) Import(ctx context.Context, name string) (registry.Dependency, error) {
	return i.chain(len(i.hooks)-1)(ctx, name)
}

// Exec executes name afresh, skipping the cache lookup for it. Imports made
// by the module still go through Import.
func (i *Importer) Exec(ctx context.Context, name string) (registry.Dependency, error) {
	return i.load(ctx, name)
}

// chain returns the resolver that starts at hook index idx. Below the last
// hook lies normal resolution.
func (i *Importer) chain(idx int) Resolver {
	if idx < 0 {
		return i.resolve
	}
	entry := i.hooks[idx]
	next := i.chain(idx - 1)
	return func(ctx context.Context, name string) (registry.Dependency, error) {
		return entry.hook.Resolve(ctx, name, next)
	}
}

func (i *Importer) resolve(ctx context.Context, name string) (registry.Dependency, error) {
	if dep, ok := i.cache[name]; ok {
		ctxlog.FromContext(ctx).Debug("Import served from cache.", "module", name)
		return dep, nil
	}
	return i.load(ctx, name)
}

// load builds or executes name. The result is cached only when no hook was
// installed for the whole resolution and it succeeded, so nothing a hook
// substituted can survive the hook.
func (i *Importer) load(ctx context.Context, name string) (registry.Dependency, error) {
	logger := ctxlog.FromContext(ctx).With("module", name)
	cacheable := len(i.hooks) == 0

	if partial, ok := i.loading[name]; ok {
		if partial == nil {
			return nil, fmt.Errorf("%w: %s", ErrImportCycle, name)
		}
		logger.Debug("Import served by a module still executing.")
		return partial, nil
	}
	i.loading[name] = nil
	defer delete(i.loading, name)

	var (
		dep registry.Dependency
		err error
	)
	if reg, ok := i.registry.Lookup(name); ok {
		logger.Debug("Building native dependency.")
		dep, err = reg.Build(ctx, i.env)
		if err != nil {
			err = fmt.Errorf("failed to build dependency %q: %w", name, err)
		}
	} else {
		dep, err = i.runScript(ctx, name)
	}
	if err != nil {
		return nil, err
	}

	if cacheable && len(i.hooks) == 0 {
		i.cache[name] = dep
	}
	return dep, nil
}

func (i *Importer) runScript(ctx context.Context, name string) (registry.Dependency, error) {
	mod, err := script.Load(ctx, name, i.SearchPath())
	if err != nil {
		if errors.Is(err, script.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrModuleNotFound, name)
		}
		return nil, err
	}
	return script.Run(ctx, mod, i, i.env)
}

// Executing records the namespace of a module script that has started
// executing, so imports cycling back to it resolve to that namespace.
func (i *Importer) Executing(name string, dep registry.Dependency) {
	if _, ok := i.loading[name]; ok {
		i.loading[name] = dep
	}
}

// Install puts hook in front of every import until release is called.
// Release removes exactly this installation and may be called any number
// of times.
func (i *Importer) Install(hook Hook) (release func()) {
	entry := &hookEntry{hook: hook}
	i.hooks = append(i.hooks, entry)

	var once sync.Once
	return func() {
		once.Do(func() {
			i.hooks = slices.DeleteFunc(i.hooks, func(e *hookEntry) bool { return e == entry })
		})
	}
}

// Hooked reports whether any hook is installed.
func (i *Importer) Hooked() bool {
	return len(i.hooks) > 0
}

// PushPath puts dir at the front of the search path until pop is called.
// Pop may be called any number of times.
func (i *Importer) PushPath(dir string) (pop func()) {
	entry := &pathEntry{dir: dir}
	i.paths = append([]*pathEntry{entry}, i.paths...)

	var once sync.Once
	return func() {
		once.Do(func() {
			i.paths = slices.DeleteFunc(i.paths, func(e *pathEntry) bool { return e == entry })
		})
	}
}

// SearchPath returns the current search roots, first match wins.
func (i *Importer) SearchPath() []string {
	dirs := make([]string, len(i.paths))
	for idx, p := range i.paths {
		dirs[idx] = p.dir
	}
	return dirs
}

// Cached reports whether name is in the module cache.
func (i *Importer) Cached(name string) bool {
	_, ok := i.cache[name]
	return ok
}

// Forget drops name from the module cache.
func (i *Importer) Forget(name string) {
	delete(i.cache, name)
}
