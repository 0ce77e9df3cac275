// Package http_client provides the "http" dependency: plain HTTP requests
// over a pooled client.
package http_client

import (
	"context"

	"github.com/specialistvlad/resprobe/internal/registry"
	"github.com/zclconf/go-cty/cty/function"
)

// Name is the import name of the dependency.
const Name = "http"

// Module implements the registry.Module interface. It's the main entrypoint
// for the http_client module.
type Module struct{}

// Register registers the dependency with the central registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterDependency(Name, &registry.RegisteredDependency{
		Description: "Makes HTTP requests.",
		Build:       build,
	})
}

func build(ctx context.Context, env *registry.Env) (registry.Dependency, error) {
	client := NewClient(DefaultTimeout)
	return &registry.Native{
		DepName: Name,
		Funcs: map[string]function.Function{
			"get":     getFunc(ctx, client),
			"request": requestFunc(ctx, client),
		},
	}, nil
}
