package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/resprobe/internal/probe"
	"github.com/specialistvlad/resprobe/internal/script"
)

// Probe runs target under interception and writes the resource basename to
// the result stream. It returns probe.ErrResourceNotFound when the target
// never reached the entry point; the result carries any unrelated failure.
func (a *App) Probe(ctx context.Context, target string) (*probe.Result, error) {
	ctx = a.context(ctx)
	a.logger.Debug("App.Probe method started.", "target", target)

	p := probe.New(a.importer, probe.Options{
		Dependency: a.config.Probe.Dependency,
		Entry:      a.config.Probe.Entry,
		ModelsPath: a.config.ModelsPath,
	})
	res := p.Run(ctx, target)
	if err := p.Emit(a.streams.Result, res); err != nil {
		if errors.Is(err, probe.ErrResourceNotFound) {
			a.logger.Warn("No resource path was captured.", "target", target)
		}
		return res, err
	}

	a.logger.Info("Resource captured.", "target", target, "path", res.Path)
	return res, nil
}

// RunModule executes name for real, with every dependency resolved
// normally and its side effects performed.
func (a *App) RunModule(ctx context.Context, name string) error {
	ctx = a.context(ctx)
	if a.config.ModelsPath != "" {
		pop := a.importer.PushPath(a.config.ModelsPath)
		defer pop()
	}

	a.logger.Info("🚀 Running module...", "module", name)
	if _, err := a.importer.Exec(ctx, name); err != nil {
		return fmt.Errorf("running module %q: %w", name, err)
	}
	a.logger.Info("🏁 Module finished.", "module", name)
	return nil
}

// ListModules returns the dotted names of the modules under the models path.
func (a *App) ListModules() ([]string, error) {
	if a.config.ModelsPath == "" {
		return nil, errors.New("models path is not set")
	}
	return script.ModuleNames(a.config.ModelsPath)
}

// DependencyInfo describes one Go-native dependency.
type DependencyInfo struct {
	Name        string
	Description string
}

// Dependencies lists the Go-native dependencies in name order.
func (a *App) Dependencies() []DependencyInfo {
	names := a.registry.Names()
	out := make([]DependencyInfo, 0, len(names))
	for _, name := range names {
		dep, _ := a.registry.Lookup(name)
		out = append(out, DependencyInfo{Name: name, Description: dep.Description})
	}
	return out
}
